package runtime

import (
	"iter"
	"live-poll/contract"
	"live-poll/observability"
	"sync"
)

var _ contract.IRegistry = (*Registry)(nil)

// Registry holds the live connections currently eligible for broadcasts.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]contract.Connection // map connection ID -> Connection
	metrics     *observability.Metrics
}

func NewRegistry(metrics *observability.Metrics) *Registry {
	return &Registry{
		connections: make(map[string]contract.Connection),
		metrics:     metrics,
	}
}

// Register adds a connection. Registering the same connection twice keeps a single entry.
func (r *Registry) Register(conn contract.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[conn.ID()] = conn
	r.metrics.SetConnections(len(r.connections))
}

// Unregister removes a connection, a no-op if it is already gone.
func (r *Registry) Unregister(conn contract.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.connections[conn.ID()]; !ok || current != conn {
		return
	}
	delete(r.connections, conn.ID())
	r.metrics.SetConnections(len(r.connections))
}

// All yields the connections registered at the moment of the call.
// The snapshot is taken under the read lock and iterated without it, so
// register and unregister can proceed while a broadcast walks the sequence.
func (r *Registry) All() iter.Seq[contract.Connection] {
	r.mu.RLock()
	snapshot := make([]contract.Connection, 0, len(r.connections))
	for _, conn := range r.connections {
		snapshot = append(snapshot, conn)
	}
	r.mu.RUnlock()

	return func(yield func(contract.Connection) bool) {
		for _, conn := range snapshot {
			if !yield(conn) {
				return
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}
