package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AmanShaikh33/HUDDLENEW/internal/auth"
	"github.com/AmanShaikh33/HUDDLENEW/internal/event"
	"github.com/AmanShaikh33/HUDDLENEW/internal/model"
)

const testSecret = "test-secret"

func newTestHub(t *testing.T, store *memStore) *Hub {
	t.Helper()

	tokens, err := auth.NewTokenManager(testSecret)
	require.NoError(t, err)

	h := NewHub(store, tokens, nil, zap.NewNop())
	t.Cleanup(h.Stop)
	return h
}

func TestHub_ConnectBroadcastsOnlineOncePerTransition(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t, newMemStore())

	observer := newFakeSession("c0", "observer")
	h.handleConnect(observer)

	alice := newFakeSession("c1", "alice")
	h.handleConnect(alice)

	// the observer hears its own transition first, then alice's, and
	// alice's exactly once
	req.Equal([]string{"observer", "alice"}, observer.receivedUserIDs(event.EventUserOnline))
}

func TestHub_ReconnectEvictsSupersededSessionWithoutRebroadcast(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t, newMemStore())

	observer := newFakeSession("c0", "observer")
	h.handleConnect(observer)

	first := newFakeSession("c1", "alice")
	second := newFakeSession("c2", "alice")
	h.handleConnect(first)
	h.handleConnect(second)

	// the old session is told why and closed
	req.Len(first.received(event.EventError), 1)
	req.True(first.isClosed())

	// still exactly one online broadcast for alice
	req.Equal([]string{"observer", "alice"}, observer.receivedUserIDs(event.EventUserOnline))

	current, ok := h.presence.Lookup("alice")
	req.True(ok)
	req.Equal(Session(second), current)
}

func TestHub_StaleDisconnectDoesNotBroadcastOffline(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t, newMemStore())

	observer := newFakeSession("c0", "observer")
	h.handleConnect(observer)

	first := newFakeSession("c1", "alice")
	second := newFakeSession("c2", "alice")
	h.handleConnect(first)
	h.handleConnect(second)

	// superseded session's read pump finally exits
	h.handleDisconnect(first)
	req.Empty(observer.received(event.EventUserOffline))

	h.handleDisconnect(second)
	req.Len(observer.received(event.EventUserOffline), 1)

	_, ok := h.presence.Lookup("alice")
	req.False(ok)
}

func TestHub_JoinChatMarksEarlierMessagesSeen(t *testing.T) {
	req := require.New(t)
	store := newMemStore()
	h := newTestHub(t, store)

	// alice messaged bob while bob was offline
	alice := newFakeSession("c1", "alice")
	h.handleConnect(alice)
	_, err := h.delivery.Send(context.Background(), "alice", "bob", "hello")
	req.NoError(err)

	// bob connects and opens the conversation
	bob := newFakeSession("c2", "bob")
	h.handleConnect(bob)
	h.handleEvent(event.NewEnvelope(event.EventJoinChat, event.JoinChat{OtherUserID: "alice"}), bob)

	history, err := store.History(context.Background(), "alice", "bob")
	req.NoError(err)
	req.Len(history, 1)
	req.True(history[0].Seen)

	updates := alice.received(event.EventSeenUpdate)
	req.Len(updates, 1)
	var readerID string
	req.NoError(json.Unmarshal(updates[0].Data, &readerID))
	req.Equal("bob", readerID)

	req.True(h.rooms.Contains(RoomID("alice", "bob"), bob))
}

func TestHub_SendMessageEventRunsPipeline(t *testing.T) {
	req := require.New(t)
	store := newMemStore()
	h := newTestHub(t, store)

	alice := newFakeSession("c1", "alice")
	bob := newFakeSession("c2", "bob")
	h.handleConnect(alice)
	h.handleConnect(bob)

	h.handleEvent(event.NewEnvelope(event.EventSendMessage, event.SendMessage{
		ReceiverID: "bob",
		Content:    "hey",
	}), alice)

	req.Equal(1, store.count())
	req.Len(bob.received(event.EventNewMessageNotification), 1)
}

func TestHub_MalformedPayloadIsDroppedWithoutSideEffects(t *testing.T) {
	req := require.New(t)
	store := newMemStore()
	h := newTestHub(t, store)

	alice := newFakeSession("c1", "alice")
	h.handleConnect(alice)

	h.handleEvent(event.Envelope{Event: event.EventSendMessage, Data: json.RawMessage(`{"content":"x"}`)}, alice)
	h.handleEvent(event.Envelope{Event: event.EventSendMessage, Data: json.RawMessage(`not json`)}, alice)
	h.handleEvent(event.Envelope{Event: "bogusEvent"}, alice)

	req.Equal(0, store.count())
	req.NotEmpty(alice.received(event.EventError))
}

func TestHub_EmptyContentRejectedWithValidationError(t *testing.T) {
	req := require.New(t)
	store := newMemStore()
	h := newTestHub(t, store)

	alice := newFakeSession("c1", "alice")
	h.handleConnect(alice)

	_, err := h.delivery.Send(context.Background(), "alice", "bob", "")
	req.ErrorIs(err, model.ErrValidation)
	req.Equal(0, store.count())
}

func TestHub_TypingEventsRelayed(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t, newMemStore())

	alice := newFakeSession("c1", "alice")
	bob := newFakeSession("c2", "bob")
	h.handleConnect(alice)
	h.handleConnect(bob)

	h.handleEvent(event.NewEnvelope(event.EventTyping, event.Typing{ReceiverID: "bob"}), alice)
	h.handleEvent(event.NewEnvelope(event.EventStopTyping, event.Typing{ReceiverID: "bob"}), alice)

	req.Len(bob.received(event.EventTyping), 1)
	req.Len(bob.received(event.EventStopTyping), 1)
	req.Empty(alice.received(event.EventTyping))
}

func TestHub_SendsFromOneConnectionDeliverInOrder(t *testing.T) {
	req := require.New(t)
	store := newMemStore()

	// stall the first persist so a second event handled concurrently
	// would overtake it
	gate := make(chan struct{})
	store.onInsert = func(m *model.Message) {
		if m.Content == "first" {
			<-gate
		}
	}

	h := newTestHub(t, store)

	alice := newFakeSession("c1", "alice")
	bob := newFakeSession("c2", "bob")
	h.handleConnect(alice)
	h.handleConnect(bob)
	h.rooms.Join(bob, RoomID("alice", "bob"))

	done := make(chan struct{})
	var delivered int
	bob.onSend = func(env event.Envelope) {
		if env.Event == event.EventReceiveMessage {
			delivered++
			if delivered == 2 {
				close(done)
			}
		}
	}

	// both events reach the pool before the first persist completes
	req.True(h.enqueue(alice, event.NewEnvelope(event.EventSendMessage, event.SendMessage{ReceiverID: "bob", Content: "first"})))
	req.True(h.enqueue(alice, event.NewEnvelope(event.EventSendMessage, event.SendMessage{ReceiverID: "bob", Content: "second"})))
	close(gate)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for deliveries")
	}

	var contents []string
	for _, env := range bob.received(event.EventReceiveMessage) {
		var msg model.Message
		req.NoError(json.Unmarshal(env.Data, &msg))
		contents = append(contents, msg.Content)
	}
	req.Equal([]string{"first", "second"}, contents)
}

func TestHub_EnqueueRejectedAfterStop(t *testing.T) {
	req := require.New(t)

	tokens, err := auth.NewTokenManager(testSecret)
	req.NoError(err)
	h := NewHub(newMemStore(), tokens, nil, zap.NewNop())
	h.Stop()

	alice := newFakeSession("c1", "alice")
	req.False(h.enqueue(alice, event.NewEnvelope(event.EventTyping, event.Typing{ReceiverID: "bob"})))
}

func TestHub_DisconnectLeavesAllRooms(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t, newMemStore())

	alice := newFakeSession("c1", "alice")
	h.handleConnect(alice)
	h.handleEvent(event.NewEnvelope(event.EventJoinChat, event.JoinChat{OtherUserID: "bob"}), alice)
	req.True(h.rooms.Contains(RoomID("alice", "bob"), alice))

	h.handleDisconnect(alice)
	req.False(h.rooms.Contains(RoomID("alice", "bob"), alice))
}
