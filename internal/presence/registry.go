// --- File: internal/presence/registry.go ---
package presence

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/TalkNest/backend/pkg/signaling"
)

// Sender is the write side of one live transport connection. Implementations
// must be safe for concurrent use and must not block indefinitely; a send to
// a backpressured connection should fail rather than stall the relay.
type Sender interface {
	Send(ctx context.Context, env signaling.Envelope) error
}

type connection struct {
	sender Sender
	userID string
}

// Registry tracks every currently-open connection and the user id it was
// registered under. A connection either has a bound user id or is anonymous;
// the reverse link is what lets a transport close be translated into "which
// presence entry must be cleared".
type Registry struct {
	mu    sync.Mutex
	conns map[string]*connection
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*connection)}
}

// Open allocates a process-unique handle for a newly established connection
// and retains its send side. No user id is bound yet.
func (r *Registry) Open(sender Sender) string {
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connection{sender: sender}
	return id
}

// Bind records the user id for connID, overwriting any previous binding.
// Idempotent for the same pair; unknown connIDs are a no-op since a
// connection cannot be referenced externally before Open completes.
func (r *Registry) Bind(connID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conns[connID]; ok {
		c.userID = userID
	}
}

// UserFor returns the user id bound to connID, if any.
func (r *Registry) UserFor(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[connID]
	if !ok || c.userID == "" {
		return "", false
	}
	return c.userID, true
}

// Close removes the connection and returns the user id it was bound to.
// ok is false when the connection was anonymous or already closed;
// registering was optional, so that is not an error.
func (r *Registry) Close(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[connID]
	if !ok {
		return "", false
	}
	delete(r.conns, connID)
	if c.userID == "" {
		return "", false
	}
	return c.userID, true
}

// Sender resolves the live send handle for connID. ok is false once the
// connection has been closed, which the relay reports as a failed send.
func (r *Registry) Sender(connID string) (Sender, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[connID]
	if !ok {
		return nil, false
	}
	return c.sender, true
}

// Len reports the number of currently-open connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
