// --- File: internal/presence/registry_test.go ---
package presence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TalkNest/backend/pkg/signaling"
)

type nopSender struct{}

func (nopSender) Send(_ context.Context, _ signaling.Envelope) error { return nil }

func TestRegistry_OpenBindClose(t *testing.T) {
	reg := NewRegistry()

	connID := reg.Open(nopSender{})
	require.NotEmpty(t, connID)
	assert.Equal(t, 1, reg.Len())

	_, bound := reg.UserFor(connID)
	assert.False(t, bound, "Fresh connection should be anonymous")

	reg.Bind(connID, "alice")
	reg.Bind(connID, "alice") // idempotent

	userID, bound := reg.UserFor(connID)
	require.True(t, bound)
	assert.Equal(t, "alice", userID)

	userID, ok := reg.Close(connID)
	require.True(t, ok)
	assert.Equal(t, "alice", userID)
	assert.Equal(t, 0, reg.Len())

	_, ok = reg.Close(connID)
	assert.False(t, ok, "Double close should be a silent no-op")
}

func TestRegistry_CloseAnonymousConnection(t *testing.T) {
	reg := NewRegistry()
	connID := reg.Open(nopSender{})

	userID, ok := reg.Close(connID)
	assert.False(t, ok, "Registering was optional; close must not report a user")
	assert.Empty(t, userID)
}

func TestRegistry_Sender(t *testing.T) {
	reg := NewRegistry()
	sender := nopSender{}
	connID := reg.Open(sender)

	got, ok := reg.Sender(connID)
	require.True(t, ok)
	assert.Equal(t, sender, got)

	_, _ = reg.Close(connID)
	_, ok = reg.Sender(connID)
	assert.False(t, ok, "Closed connection must not resolve to a sender")
}

func TestRegistry_BindUnknownConnection(t *testing.T) {
	reg := NewRegistry()
	reg.Bind("no-such-conn", "alice") // must not panic or create an entry
	assert.Equal(t, 0, reg.Len())
}
