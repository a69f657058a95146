package hub

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AmanShaikh33/HUDDLENEW/internal/event"
)

var (
	// tuning parameters
	writeWait          = 10 * time.Second       // time allowed to write a message to the peer
	pongWait           = 20 * time.Second       // time allowed to read the next pong message from the peer
	pingInterval       = (pongWait * 9) / 10    // send pings to peer with this period
	maxMessageSize     = 64 * 1024              // max inbound message size (64KB)
	sendBufSize        = 256                    // per-connection outbound buffer size
	workerPoolSize     = 16                     // number of workers to process inbound messages
	inboundQueueSize   = 256                    // per-worker inbound queue size
	sendTimeout        = 2 * time.Second        // timeout for enqueuing outbound messages
	registerTimeout    = 5 * time.Second        // timeout for client registration
	unregisterTimeout  = 5 * time.Second        // timeout for client unregistration
	inboundSendTimeout = 500 * time.Millisecond // timeout for sending to inbound channel
)

var _ Session = (*Client)(nil)

// Client is the gorilla-backed Session: one read pump, one write pump,
// and a buffered egress channel between the hub and the wire.
type Client struct {
	id     string
	userID string
	conn   *websocket.Conn
	hub    *Hub
	egress chan event.Envelope
	logger *zap.Logger

	cancel         context.CancelFunc
	ctx            context.Context
	once           sync.Once
	connClosed     chan struct{}
	connClosedOnce sync.Once
	closed         bool
	closedMu       sync.RWMutex
}

func newClient(userID string, conn *websocket.Conn, h *Hub) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New().String()

	return &Client{
		id:     id,
		userID: userID,
		conn:   conn,
		hub:    h,
		egress: make(chan event.Envelope, sendBufSize),
		logger: h.logger.With(zap.String("client_id", id), zap.String("user_id", userID)),
		cancel: cancel,
		ctx:    ctx,

		connClosed: make(chan struct{}),
	}
}

func (c *Client) ID() string     { return c.id }
func (c *Client) UserID() string { return c.userID }

// Send enqueues an event for the write pump. Returns false when the
// client is closed or the egress queue stayed full past the timeout.
func (c *Client) Send(env event.Envelope) bool {
	if c.isClosed() {
		return false
	}

	select {
	case <-c.ctx.Done():
		return false
	case c.egress <- env:
		return true
	case <-time.After(sendTimeout):
		c.logger.Warn("egress full, dropping event", zap.String("event", env.Event))
		return false
	}
}

func (c *Client) readMessages() {
	defer func() {
		select {
		case c.hub.unregister <- c:
			// unregistered
		case <-time.After(unregisterTimeout):
			c.logger.Error("failed to unregister client: timeout")
		}
		c.Close()
	}()

	c.conn.SetReadLimit(int64(maxMessageSize))
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(c.pongHandler)

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			var env event.Envelope

			if err := c.conn.ReadJSON(&env); err != nil {
				if websocket.IsCloseError(err,
					websocket.CloseNormalClosure,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
				) {
					c.logger.Info("client disconnected")
					return
				}

				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseInternalServerErr,
					websocket.CloseProtocolError,
				) {
					c.logger.Warn("unexpected close", zap.Error(err))
				}

				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					c.logger.Warn("client timed out, closing connection")
					return
				}

				c.logger.Warn("error reading from client", zap.Error(err))
				return
			}

			// Bounded handoff to this connection's worker queue so a
			// slow handler never blocks the read pump for long.
			if !c.hub.enqueue(c, env) {
				c.logger.Warn("inbound queue full, dropping client")
				c.cancel()
				c.conn.Close()
			}
		}
	}
}

func (c *Client) writeMessages() {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.conn.Close()

		c.connClosedOnce.Do(func() {
			close(c.connClosed)
		})
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
			return
		case env := <-c.egress:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				c.logger.Warn("write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.logger.Warn("ping failed", zap.Error(err))
				return
			}
		}
	}
}

func (c *Client) pongHandler(string) error {
	return c.conn.SetReadDeadline(time.Now().Add(pongWait))
}

// Close shuts the client down. Safe to call more than once.
func (c *Client) Close() {
	c.once.Do(func() {
		c.closedMu.Lock()
		c.closed = true
		c.closedMu.Unlock()

		c.cancel()
		// egress is never closed: concurrent Send calls may still be in
		// their enqueue select, and the write pump exits on the
		// cancelled context instead

		// Give the write pump a chance to close the conn; force it after
		// a timeout so the fd can never leak.
		go func() {
			select {
			case <-c.connClosed:
			case <-time.After(5 * time.Second):
				_ = c.conn.Close()
				c.logger.Warn("safety timeout: force closed connection")
			}
		}()
	})
}

func (c *Client) isClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed
}
