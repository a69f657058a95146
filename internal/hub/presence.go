package hub

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Presence is the authoritative map of online users. It is the single
// shared mutable resource in the system; every operation is atomic with
// respect to the others, and no lock is ever held across I/O.
type Presence struct {
	mu     sync.RWMutex
	online map[string]Session
	logger *zap.Logger
}

func NewPresence(logger *zap.Logger) *Presence {
	return &Presence{
		online: make(map[string]Session),
		logger: logger,
	}
}

// Register inserts or replaces the entry for the session's user. It
// returns the superseded session, if any, and whether this was a
// transition from absent to present (the only case that warrants a
// userOnline broadcast).
func (p *Presence) Register(s Session) (prev Session, fresh bool) {
	p.mu.Lock()
	prev = p.online[s.UserID()]
	p.online[s.UserID()] = s
	p.mu.Unlock()

	if prev != nil {
		p.logger.Info("presence entry superseded",
			zap.String("user_id", s.UserID()),
			zap.String("old_client", prev.ID()),
			zap.String("new_client", s.ID()),
		)
	}
	return prev, prev == nil
}

// Unregister removes the entry only if s is still the session on record,
// so a stale disconnect never evicts a newer registration. It returns
// whether the user transitioned from present to absent.
func (p *Presence) Unregister(s Session) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	current, ok := p.online[s.UserID()]
	if !ok || current.ID() != s.ID() {
		return false
	}
	delete(p.online, s.UserID())
	return true
}

// Lookup returns the live session for userID. Absence means deliver via
// persistence only.
func (p *Presence) Lookup(userID string) (Session, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s, ok := p.online[userID]
	return s, ok
}

// Online returns the ids of all currently online users, sorted.
func (p *Presence) Online() []string {
	p.mu.RLock()
	ids := make([]string, 0, len(p.online))
	for id := range p.online {
		ids = append(ids, id)
	}
	p.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Sessions returns a snapshot of every registered session.
func (p *Presence) Sessions() []Session {
	p.mu.RLock()
	defer p.mu.RUnlock()

	sessions := make([]Session, 0, len(p.online))
	for _, s := range p.online {
		sessions = append(sessions, s)
	}
	return sessions
}
