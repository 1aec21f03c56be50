// --- File: internal/relay/relay_test.go ---
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TalkNest/backend/internal/presence"
	"github.com/TalkNest/backend/pkg/signaling"
)

// capturingSender records every envelope handed to it.
type capturingSender struct {
	envelopes []signaling.Envelope
	err       error
}

func (s *capturingSender) Send(_ context.Context, env signaling.Envelope) error {
	if s.err != nil {
		return s.err
	}
	s.envelopes = append(s.envelopes, env)
	return nil
}

type fixture struct {
	registry *presence.Registry
	store    *presence.Store
	relay    *Relay
}

func setup(t *testing.T) *fixture {
	t.Helper()
	registry := presence.NewRegistry()
	store := presence.NewStore()
	return &fixture{
		registry: registry,
		store:    store,
		relay:    New(registry, store, zerolog.Nop()),
	}
}

// connect opens a connection, registers it for userID, and returns the
// sender so the test can inspect what was delivered.
func (fx *fixture) connect(userID string) (string, *capturingSender) {
	sender := &capturingSender{}
	connID := fx.registry.Open(sender)
	fx.relay.Register(connID, userID)
	return connID, sender
}

func TestRelay_RegisterThenDisconnect(t *testing.T) {
	fx := setup(t)
	connID, _ := fx.connect("alice")

	entry, ok := fx.store.Get("alice")
	require.True(t, ok)
	assert.True(t, entry.Online)
	assert.Equal(t, connID, entry.ConnectionID)

	fx.relay.Disconnect(connID)

	entry, ok = fx.store.Get("alice")
	require.True(t, ok)
	assert.False(t, entry.Online, "Disconnect should flip presence offline")
}

func TestRelay_StaleDisconnectKeepsNewerRegistration(t *testing.T) {
	fx := setup(t)

	c1, _ := fx.connect("alice")
	c2, _ := fx.connect("alice") // alice reconnects before c1's disconnect lands

	fx.relay.Disconnect(c1)

	entry, ok := fx.store.Get("alice")
	require.True(t, ok)
	assert.True(t, entry.Online, "Stale disconnect cleared a newer registration")
	assert.Equal(t, c2, entry.ConnectionID)
}

func TestRelay_DisconnectAnonymousConnection(t *testing.T) {
	fx := setup(t)
	connID := fx.registry.Open(&capturingSender{})

	// Must be a silent no-op.
	fx.relay.Disconnect(connID)
	assert.Equal(t, 0, fx.registry.Len())
}

func TestRelayCall_Delivered(t *testing.T) {
	fx := setup(t)
	_, aliceSender := fx.connect("alice")

	payload := json.RawMessage(`{"sdp":"offer"}`)
	outcome := fx.relay.RelayCall(context.Background(), "bob", "alice", payload)

	assert.Equal(t, signaling.OutcomeDelivered, outcome)
	require.Len(t, aliceSender.envelopes, 1, "Target must receive exactly one envelope")

	env := aliceSender.envelopes[0]
	assert.Equal(t, signaling.KindCallInitiate, env.Kind)
	assert.Equal(t, "bob", env.From)
	assert.JSONEq(t, string(payload), string(env.Payload))
}

func TestRelayCall_TargetUnknown(t *testing.T) {
	fx := setup(t)
	_, aliceSender := fx.connect("alice")

	outcome := fx.relay.RelayCall(context.Background(), "bob", "carol", json.RawMessage(`{}`))

	assert.Equal(t, signaling.OutcomeTargetUnknown, outcome)
	assert.Empty(t, aliceSender.envelopes, "No message may be sent to any connection")
}

func TestRelayCall_TargetOffline(t *testing.T) {
	fx := setup(t)
	connID, aliceSender := fx.connect("alice")
	fx.relay.Disconnect(connID)

	outcome := fx.relay.RelayCall(context.Background(), "bob", "alice", json.RawMessage(`{}`))

	assert.Equal(t, signaling.OutcomeTargetOffline, outcome)
	assert.Empty(t, aliceSender.envelopes)
}

func TestRelayCall_SendFailure(t *testing.T) {
	fx := setup(t)
	sender := &capturingSender{err: errors.New("connection reset")}
	connID := fx.registry.Open(sender)
	fx.relay.Register(connID, "alice")

	outcome := fx.relay.RelayCall(context.Background(), "bob", "alice", json.RawMessage(`{}`))
	assert.Equal(t, signaling.OutcomeSendFailed, outcome)
}

func TestRelayHangup_OfflineIsSilentlyDropped(t *testing.T) {
	fx := setup(t)
	connID, _ := fx.connect("alice")
	fx.relay.Disconnect(connID)

	outcome := fx.relay.RelayHangup(context.Background(), "alice")
	assert.Equal(t, signaling.OutcomeTargetOffline, outcome)
}

func TestRelay_FullCallRoundTrip(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	_, aliceSender := fx.connect("a")
	_, bobSender := fx.connect("b")

	// a rings b
	offer := json.RawMessage(`{"type":"offer"}`)
	require.True(t, fx.relay.RelayCall(ctx, "a", "b", offer).Delivered())
	require.Len(t, bobSender.envelopes, 1)
	assert.Equal(t, signaling.KindCallInitiate, bobSender.envelopes[0].Kind)
	assert.Equal(t, "a", bobSender.envelopes[0].From)
	assert.Empty(t, aliceSender.envelopes, "Caller must not receive their own initiate")

	// b answers a
	answer := json.RawMessage(`{"type":"answer"}`)
	require.True(t, fx.relay.RelayAnswer(ctx, "a", answer).Delivered())
	require.Len(t, aliceSender.envelopes, 1)
	assert.Equal(t, signaling.KindCallAnswer, aliceSender.envelopes[0].Kind)
	assert.JSONEq(t, string(answer), string(aliceSender.envelopes[0].Payload))
	assert.Len(t, bobSender.envelopes, 1, "Answer must not echo back to the answering party")

	// a hangs up on b
	require.True(t, fx.relay.RelayHangup(ctx, "b").Delivered())
	require.Len(t, bobSender.envelopes, 2)
	terminate := bobSender.envelopes[1]
	assert.Equal(t, signaling.KindCallTerminate, terminate.Kind)
	assert.Empty(t, terminate.Payload, "Terminate carries no payload")
	assert.Len(t, aliceSender.envelopes, 1)
}

func TestRelayCall_CallerOfflineStillRelays(t *testing.T) {
	fx := setup(t)
	_, aliceSender := fx.connect("alice")

	// "mallory" never registered; the call is relayed regardless.
	outcome := fx.relay.RelayCall(context.Background(), "mallory", "alice", json.RawMessage(`{}`))
	assert.Equal(t, signaling.OutcomeDelivered, outcome)
	assert.Len(t, aliceSender.envelopes, 1)
}
