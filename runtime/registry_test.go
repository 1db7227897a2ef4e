package runtime

import (
	"fmt"
	"iter"
	"live-poll/contract"
	"live-poll/domain"
	"live-poll/errors"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConnection records every payload it is handed.
type fakeConnection struct {
	id     string
	user   domain.UserID
	mu     sync.Mutex
	inbox  [][]byte
	failed bool
	onSend func()
}

func newFakeConnection(id string, user domain.UserID) *fakeConnection {
	return &fakeConnection{id: id, user: user}
}

func (f *fakeConnection) ID() string { return f.id }

func (f *fakeConnection) UserID() (domain.UserID, bool) { return f.user, f.user != "" }

func (f *fakeConnection) Send(payload []byte) error {
	if f.onSend != nil {
		f.onSend()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return errors.ErrConnectionClosed
	}
	f.inbox = append(f.inbox, payload)
	return nil
}

func (f *fakeConnection) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.inbox...)
}

func sliceSeq(conns ...contract.Connection) iter.Seq[contract.Connection] {
	return slices.Values(conns)
}

func collect(r *Registry) []contract.Connection {
	var out []contract.Connection
	for c := range r.All() {
		out = append(out, c)
	}
	return out
}

func TestRegistry_RegisterIsIdempotent(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(nil)
	conn := newFakeConnection("c1", "u1")

	r.Register(conn)
	r.Register(conn)

	req.Equal(1, r.Len())
	req.Len(collect(r), 1)
}

func TestRegistry_UnregisterUnknownIsNoOp(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(nil)
	kept := newFakeConnection("c1", "u1")
	r.Register(kept)

	r.Unregister(newFakeConnection("c2", "u2"))
	r.Unregister(newFakeConnection("c1", "impostor"))

	req.Equal(1, r.Len())
	r.Unregister(kept)
	r.Unregister(kept)
	req.Zero(r.Len())
}

func TestRegistry_AllIsASnapshot(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(nil)
	a := newFakeConnection("a", "")
	b := newFakeConnection("b", "")
	r.Register(a)
	r.Register(b)

	// Given an iteration that mutates the registry while it runs
	seen := 0
	for range r.All() {
		seen++
		r.Unregister(a)
		r.Unregister(b)
		r.Register(newFakeConnection(fmt.Sprintf("late-%d", seen), ""))
	}

	// Then the iteration only covers the connections present when it began
	req.Equal(2, seen)
	req.Equal(2, r.Len())
}

func TestRegistry_ConcurrentMutationDuringIteration(t *testing.T) {
	r := NewRegistry(nil)
	for i := 0; i < 50; i++ {
		r.Register(newFakeConnection(fmt.Sprintf("seed-%d", i), ""))
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				c := newFakeConnection(fmt.Sprintf("w%d-%d", w, i), "")
				r.Register(c)
				r.Unregister(c)
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				ids := map[string]struct{}{}
				for c := range r.All() {
					_, dup := ids[c.ID()]
					assert.False(t, dup)
					ids[c.ID()] = struct{}{}
				}
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 50, r.Len())
}
