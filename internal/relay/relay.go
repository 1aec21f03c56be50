// Package relay implements the presence-aware signaling relay: the
// registration/disconnect lifecycle and the three call-signaling operations,
// forwarding opaque handshake payloads between exactly the two parties of a
// call. The relay never interprets a payload and never persists a message.
package relay

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/TalkNest/backend/internal/presence"
	"github.com/TalkNest/backend/pkg/signaling"
)

// Relay owns the register/disconnect lifecycle of the presence tables and
// the call-initiate/call-answer/call-terminate forwarding logic. All three
// relay operations are pure reads of presence plus a forward; they never
// mutate it. Forwards are fire-and-forget: the presence lookup completes and
// the table lock is released before the target's transport is touched, so a
// slow target cannot stall registrations from unrelated users.
type Relay struct {
	registry *presence.Registry
	store    *presence.Store
	logger   zerolog.Logger
}

// New wires a relay over the shared presence tables.
func New(registry *presence.Registry, store *presence.Store, logger zerolog.Logger) *Relay {
	return &Relay{
		registry: registry,
		store:    store,
		logger:   logger.With().Str("component", "Relay").Logger(),
	}
}

// Register binds the connection to the user id and marks the user online.
// The newest registration wins: an older connection for the same user stays
// open and bound in the registry, but presence no longer points at it.
func (r *Relay) Register(connID, userID string) {
	r.registry.Bind(connID, userID)
	r.store.Set(userID, connID)
	r.logger.Info().Str("user", userID).Str("conn", connID).Msg("User registered.")
}

// Disconnect translates a transport close into a presence update. The clear
// is conditional on the presence entry still naming the disconnecting
// connection, so a disconnect arriving after the user re-registered
// elsewhere leaves the newer entry untouched.
func (r *Relay) Disconnect(connID string) {
	userID, ok := r.registry.Close(connID)
	if !ok {
		// The connection never registered. Nothing to clear.
		return
	}
	if r.store.CompareAndClear(userID, connID) {
		r.logger.Info().Str("user", userID).Str("conn", connID).Msg("User disconnected.")
		return
	}
	r.logger.Debug().Str("user", userID).Str("conn", connID).
		Msg("Stale disconnect ignored; user re-registered on another connection.")
}

// RelayCall forwards a call-initiate envelope to the target user, tagged
// with the caller's id. The caller's own presence is checked only to log:
// a call may be initiated by an identity not currently tracked as present.
func (r *Relay) RelayCall(ctx context.Context, fromUserID, toUserID string, payload json.RawMessage) signaling.Outcome {
	log := r.logger.With().Str("from", fromUserID).Str("to", toUserID).Logger()

	if _, ok := r.store.Get(fromUserID); !ok {
		log.Warn().Msg("Caller is not tracked as present; relaying anyway.")
	}

	outcome := r.forward(ctx, toUserID, signaling.Envelope{
		Kind:    signaling.KindCallInitiate,
		From:    fromUserID,
		Payload: payload,
	})
	log.Info().Stringer("outcome", outcome).Msg("Call initiated.")
	return outcome
}

// RelayAnswer forwards a call-answer envelope back at the original caller.
// The target of this lookup is the caller, not the answering party.
func (r *Relay) RelayAnswer(ctx context.Context, toCallerUserID string, payload json.RawMessage) signaling.Outcome {
	outcome := r.forward(ctx, toCallerUserID, signaling.Envelope{
		Kind:    signaling.KindCallAnswer,
		Payload: payload,
	})
	r.logger.Info().Str("to", toCallerUserID).Stringer("outcome", outcome).Msg("Call answered.")
	return outcome
}

// RelayHangup forwards a call-terminate envelope with no payload. Hangup is
// best-effort: an offline target is silently dropped.
func (r *Relay) RelayHangup(ctx context.Context, toUserID string) signaling.Outcome {
	outcome := r.forward(ctx, toUserID, signaling.Envelope{
		Kind: signaling.KindCallTerminate,
	})
	r.logger.Debug().Str("to", toUserID).Stringer("outcome", outcome).Msg("Hangup relayed.")
	return outcome
}

// forward resolves the target's connection via presence and hands the
// envelope to its transport. The send happens outside any table lock.
func (r *Relay) forward(ctx context.Context, toUserID string, env signaling.Envelope) signaling.Outcome {
	entry, ok := r.store.Get(toUserID)
	if !ok {
		return signaling.OutcomeTargetUnknown
	}
	if !entry.Online {
		return signaling.OutcomeTargetOffline
	}

	sender, ok := r.registry.Sender(entry.ConnectionID)
	if !ok {
		// The connection closed between the presence lookup and now; the
		// disconnect path owns clearing the entry, so this is not cleanup.
		return signaling.OutcomeSendFailed
	}
	if err := sender.Send(ctx, env); err != nil {
		r.logger.Warn().Err(err).Str("to", toUserID).Str("conn", entry.ConnectionID).
			Msg("Transport send failed; treating target as unreachable.")
		return signaling.OutcomeSendFailed
	}
	return signaling.OutcomeDelivered
}
