package hub

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPresence_RegisterLookupUnregister(t *testing.T) {
	req := require.New(t)
	p := NewPresence(zap.NewNop())

	s := newFakeSession("c1", "alice")

	prev, fresh := p.Register(s)
	req.Nil(prev)
	req.True(fresh)

	got, ok := p.Lookup("alice")
	req.True(ok)
	req.Equal(s, got)

	req.True(p.Unregister(s))

	_, ok = p.Lookup("alice")
	req.False(ok)
}

func TestPresence_SecondConnectionSupersedesFirst(t *testing.T) {
	req := require.New(t)
	p := NewPresence(zap.NewNop())

	first := newFakeSession("c1", "alice")
	second := newFakeSession("c2", "alice")

	_, fresh := p.Register(first)
	req.True(fresh)

	prev, fresh := p.Register(second)
	req.Equal(Session(first), prev)
	req.False(fresh, "replacement is not an absent->present transition")

	got, _ := p.Lookup("alice")
	req.Equal(Session(second), got)
}

func TestPresence_StaleUnregisterKeepsNewerRegistration(t *testing.T) {
	req := require.New(t)
	p := NewPresence(zap.NewNop())

	first := newFakeSession("c1", "alice")
	second := newFakeSession("c2", "alice")

	p.Register(first)
	p.Register(second)

	// the superseded connection's disconnect arrives late
	req.False(p.Unregister(first))

	got, ok := p.Lookup("alice")
	req.True(ok)
	req.Equal(Session(second), got)
}

func TestPresence_OnlineSnapshot(t *testing.T) {
	req := require.New(t)
	p := NewPresence(zap.NewNop())

	p.Register(newFakeSession("c1", "carol"))
	p.Register(newFakeSession("c2", "alice"))
	p.Register(newFakeSession("c3", "bob"))

	req.Equal([]string{"alice", "bob", "carol"}, p.Online())
}

func TestPresence_ConcurrentRegisterUnregisterLookup(t *testing.T) {
	p := NewPresence(zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("user%d", i%8)
			s := newFakeSession(fmt.Sprintf("c%d", i), userID)
			p.Register(s)
			p.Lookup(userID)
			p.Online()
			p.Unregister(s)
		}(i)
	}
	wg.Wait()

	// every remaining entry must still satisfy the registry invariant
	for _, id := range p.Online() {
		s, ok := p.Lookup(id)
		require.True(t, ok)
		require.Equal(t, id, s.UserID())
	}
}
