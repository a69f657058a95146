package hub

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AmanShaikh33/HUDDLENEW/internal/auth"
	"github.com/AmanShaikh33/HUDDLENEW/internal/event"
	"github.com/AmanShaikh33/HUDDLENEW/internal/model"
	"github.com/AmanShaikh33/HUDDLENEW/internal/repo"
)

type inboundMessage struct {
	env     event.Envelope
	session Session
}

// Hub is the connection gateway and event dispatcher. It authenticates
// incoming websocket upgrades, owns the presence registry and room
// router, and routes inbound events to a worker pool keyed by
// connection, so one connection's events run in order through the
// delivery pipeline and relay.
type Hub struct {
	presence *Presence
	rooms    *Rooms
	delivery *Delivery
	relay    *Relay
	tokens   *auth.TokenManager
	logger   *zap.Logger

	register   chan Session
	unregister chan Session
	// one queue per worker; a connection always hashes to the same
	// queue, so its events are handled in arrival order and each send
	// is persisted and broadcast before the next one starts
	inbound []chan inboundMessage

	upgrader websocket.Upgrader

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(store repo.MessageRepository, tokens *auth.TokenManager, allowedOrigins []string, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	presence := NewPresence(logger)
	rooms := NewRooms()

	h := &Hub{
		presence: presence,
		rooms:    rooms,
		delivery: NewDelivery(store, presence, rooms, logger),
		relay:    NewRelay(store, presence, logger),
		tokens:   tokens,
		logger:   logger,

		register:   make(chan Session, 1024),
		unregister: make(chan Session, 1024),
		inbound:    make([]chan inboundMessage, workerPoolSize),

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},

		ctx:    ctx,
		cancel: cancel,
	}

	// run manager loop
	go h.run()

	// start worker loop, one goroutine per queue
	for i := 0; i < workerPoolSize; i++ {
		h.inbound[i] = make(chan inboundMessage, inboundQueueSize)

		queue := h.inbound[i]
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			for {
				select {
				case <-h.ctx.Done():
					return
				case in := <-queue:
					h.handleEvent(in.env, in.session)
				}
			}
		}()
	}

	return h
}

// enqueue hands an inbound event to the worker pool. Returns false when
// the hub is stopped or the queue stayed full past the timeout.
func (h *Hub) enqueue(s Session, env event.Envelope) bool {
	select {
	case <-h.ctx.Done():
		return false
	default:
	}

	queue := h.inbound[queueIndex(s.ID())]

	select {
	case queue <- inboundMessage{env: env, session: s}:
		return true
	case <-time.After(inboundSendTimeout):
		return false
	case <-h.ctx.Done():
		return false
	}
}

func queueIndex(clientID string) int {
	sum := sha1.Sum([]byte(clientID))
	return int(binary.BigEndian.Uint32(sum[:4]) % uint32(workerPoolSize))
}

// Component accessors for the request/response surface, which shares the
// same pipeline and relay as the live channel.
func (h *Hub) Presence() *Presence { return h.presence }
func (h *Hub) Rooms() *Rooms       { return h.rooms }
func (h *Hub) Delivery() *Delivery { return h.delivery }
func (h *Hub) Relay() *Relay       { return h.relay }

func (h *Hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case s := <-h.register:
			h.handleConnect(s)
		case s := <-h.unregister:
			h.handleDisconnect(s)
		}
	}
}

// handleConnect registers the session as the user's live connection. A
// prior connection for the same user is superseded and explicitly
// evicted. The userOnline broadcast goes out only on the absent->present
// transition, strictly after the registry insertion.
func (h *Hub) handleConnect(s Session) {
	prev, fresh := h.presence.Register(s)
	if prev != nil {
		prev.Send(event.NewEnvelope(event.EventError, model.ErrorPayload{
			Code:    "SESSION_REPLACED",
			Message: "another connection was opened for this account",
		}))
		prev.Close()
	}

	if fresh {
		h.broadcastAll(event.NewEnvelope(event.EventUserOnline, s.UserID()))
	}
	h.logger.Info("client connected",
		zap.String("client_id", s.ID()),
		zap.String("user_id", s.UserID()),
	)
}

// handleDisconnect leaves all rooms and clears the presence entry,
// unless a newer connection already replaced it. The userOffline
// broadcast goes out strictly after the registry removal.
func (h *Hub) handleDisconnect(s Session) {
	h.rooms.LeaveAll(s)
	if h.presence.Unregister(s) {
		h.broadcastAll(event.NewEnvelope(event.EventUserOffline, s.UserID()))
	}
	s.Close()

	h.logger.Info("client disconnected",
		zap.String("client_id", s.ID()),
		zap.String("user_id", s.UserID()),
	)
}

func (h *Hub) broadcastAll(env event.Envelope) {
	for _, s := range h.presence.Sessions() {
		s.Send(env)
	}
}

// handleEvent dispatches one inbound event. Errors here have no natural
// reply channel: the operation simply does not execute, and the cause is
// logged. No partial state change escapes.
func (h *Hub) handleEvent(env event.Envelope, s Session) {
	switch env.Event {
	case event.EventJoinChat:
		payload, err := event.Decode[event.JoinChat](env)
		if err != nil {
			h.dropEvent(s, err)
			return
		}
		h.rooms.Join(s, RoomID(s.UserID(), payload.OtherUserID))
		// opening a conversation marks the counterpart's messages as seen
		if _, err := h.relay.MarkSeen(h.ctx, s.UserID(), payload.OtherUserID); err != nil {
			h.logger.Error("seen transition on join failed",
				zap.Error(err),
				zap.String("user_id", s.UserID()),
			)
		}

	case event.EventSendMessage:
		payload, err := event.Decode[event.SendMessage](env)
		if err != nil {
			h.dropEvent(s, err)
			return
		}
		if _, err := h.delivery.Send(h.ctx, s.UserID(), payload.ReceiverID, payload.Content); err != nil {
			h.dropEvent(s, err)
		}

	case event.EventTyping, event.EventStopTyping:
		payload, err := event.Decode[event.Typing](env)
		if err != nil {
			h.dropEvent(s, err)
			return
		}
		h.relay.Typing(s.UserID(), payload.ReceiverID, env.Event == event.EventStopTyping)

	case event.EventMessageSeen:
		payload, err := event.Decode[event.MessageSeen](env)
		if err != nil {
			h.dropEvent(s, err)
			return
		}
		if _, err := h.relay.MarkSeen(h.ctx, s.UserID(), payload.SenderID); err != nil {
			h.logger.Error("seen transition failed",
				zap.Error(err),
				zap.String("user_id", s.UserID()),
			)
		}

	default:
		h.logger.Warn("unknown event",
			zap.String("event", env.Event),
			zap.String("user_id", s.UserID()),
		)
	}
}

// dropEvent records a rejected live-channel operation and tells the
// offending client when the cause was its own payload.
func (h *Hub) dropEvent(s Session, err error) {
	h.logger.Warn("event dropped", zap.Error(err), zap.String("user_id", s.UserID()))

	if errors.Is(err, model.ErrValidation) {
		s.Send(event.NewEnvelope(event.EventError, model.ErrorPayload{
			Code:    "VALIDATION",
			Message: err.Error(),
		}))
	}
}

// ServeWS authenticates the handshake and upgrades it. Verification
// failure refuses the connection before any event is processed.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.FromRequest(r)
	if err != nil {
		h.logger.Warn("socket auth refused", zap.Error(err))
		http.Error(w, "authentication error", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", zap.Error(err))
		return
	}

	c := newClient(userID, conn, h)
	select {
	case h.register <- c:
		go c.readMessages()
		go c.writeMessages()
	case <-time.After(registerTimeout):
		h.logger.Error("failed to register client: timeout", zap.String("user_id", userID))
		c.cancel()
		conn.Close()
	}
}

// Stop shuts the hub down: no new events are processed and every client
// connection is closed.
func (h *Hub) Stop() {
	h.cancel()

	for _, s := range h.presence.Sessions() {
		s.Close()
	}

	// the queues stay open: read pumps may still be handing events off,
	// and the workers exit on the cancelled context anyway
	h.wg.Wait()
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if origin == a {
				return true
			}
		}
		return false
	}
}
