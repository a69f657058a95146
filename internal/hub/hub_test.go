package hub

import (
	"context"
	"encoding/json"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AmanShaikh33/HUDDLENEW/internal/event"
	"github.com/AmanShaikh33/HUDDLENEW/internal/model"
)

// fakeSession captures everything sent to it.
type fakeSession struct {
	id     string
	userID string

	mu     sync.Mutex
	sent   []event.Envelope
	closed bool
	onSend func(env event.Envelope)
}

func newFakeSession(id, userID string) *fakeSession {
	return &fakeSession{id: id, userID: userID}
}

func (f *fakeSession) ID() string     { return f.id }
func (f *fakeSession) UserID() string { return f.userID }

func (f *fakeSession) Send(env event.Envelope) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	if f.onSend != nil {
		f.onSend(env)
	}
	f.sent = append(f.sent, env)
	return true
}

func (f *fakeSession) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSession) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeSession) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.sent))
	for _, env := range f.sent {
		names = append(names, env.Event)
	}
	return names
}

func (f *fakeSession) received(name string) []event.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []event.Envelope
	for _, env := range f.sent {
		if env.Event == name {
			out = append(out, env)
		}
	}
	return out
}

// receivedUserIDs decodes the bare user-id payloads of every received
// event with the given name, in arrival order.
func (f *fakeSession) receivedUserIDs(name string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, env := range f.sent {
		if env.Event != name {
			continue
		}
		var id string
		if err := json.Unmarshal(env.Data, &id); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// memStore is an in-memory MessageRepository with the same observable
// semantics as the Mongo-backed one.
type memStore struct {
	mu       sync.Mutex
	messages []*model.Message

	insertErr error
	markErr   error
	onInsert  func(msg *model.Message)
}

func newMemStore() *memStore {
	return &memStore{}
}

func (s *memStore) Insert(_ context.Context, msg *model.Message) (*model.Message, error) {
	// hook runs outside the lock so a stalled insert does not
	// serialize unrelated callers
	if s.onInsert != nil {
		s.onInsert(msg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insertErr != nil {
		return nil, s.insertErr
	}

	stored := *msg
	stored.ID = primitive.NewObjectID()
	stored.Seen = false
	s.messages = append(s.messages, &stored)
	return &stored, nil
}

func (s *memStore) History(_ context.Context, userA, userB string) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Message
	for _, m := range s.messages {
		if (m.Sender == userA && m.Receiver == userB) || (m.Sender == userB && m.Receiver == userA) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *memStore) MarkSeen(_ context.Context, sender, receiver string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.markErr != nil {
		return 0, s.markErr
	}

	var modified int64
	for _, m := range s.messages {
		if m.Sender == sender && m.Receiver == receiver && !m.Seen {
			m.Seen = true
			modified++
		}
	}
	return modified, nil
}

func (s *memStore) UnreadCounts(_ context.Context, receiver string) ([]model.UnreadCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bySender := make(map[string]int64)
	for _, m := range s.messages {
		if m.Receiver == receiver && !m.Seen {
			bySender[m.Sender]++
		}
	}

	var out []model.UnreadCount
	for sender, count := range bySender {
		out = append(out, model.UnreadCount{UserID: sender, Count: count})
	}
	return out, nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}
