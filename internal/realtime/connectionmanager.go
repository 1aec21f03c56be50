// Package realtime provides components for managing real-time client
// connections. It runs the dedicated WebSocket server, decodes inbound
// signaling events, and drives the relay's registration and disconnect
// lifecycle.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"

	"github.com/TalkNest/backend/internal/presence"
	"github.com/TalkNest/backend/internal/relay"
	"github.com/TalkNest/backend/pkg/signaling"
)

const eventRegister = "register"

// clientEvent is the single frame shape for every inbound event. Which
// fields are required depends on Type; Payload is an opaque blob passed
// through untouched.
type clientEvent struct {
	Type    string          `json:"type"`
	UserID  string          `json:"userId,omitempty"`
	From    string          `json:"from,omitempty"`
	To      string          `json:"to,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// callUnavailableEvent is the synchronous failure notice written back to a
// caller's own connection when a call-initiate could not be delivered.
type callUnavailableEvent struct {
	Type   string `json:"type"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// ConnectionManager manages all active WebSocket connections. It runs its
// own dedicated HTTP server and hands lifecycle and signaling events to the
// relay.
type ConnectionManager struct {
	server     *http.Server
	upgrader   websocket.Upgrader
	registry   *presence.Registry
	relay      *relay.Relay
	clients    sync.Map // map[string]*client, keyed by connection id
	logger     zerolog.Logger
	instanceID string
}

// NewConnectionManager creates and wires up a new WebSocket connection manager.
func NewConnectionManager(
	port string,
	authMiddleware func(http.Handler) http.Handler,
	registry *presence.Registry,
	signalRelay *relay.Relay,
	logger zerolog.Logger,
) (*ConnectionManager, error) {
	if registry == nil || signalRelay == nil {
		return nil, fmt.Errorf("registry and relay cannot be nil")
	}

	instanceID := uuid.NewString()
	cmLogger := logger.With().Str("component", "ConnectionManager").Str("instance", instanceID).Logger()

	cm := &ConnectionManager{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: Implement a real origin check
				return true
			},
		},
		registry:   registry,
		relay:      signalRelay,
		logger:     cmLogger,
		instanceID: instanceID,
	}

	mux := http.NewServeMux()
	mux.Handle("/connect", authMiddleware(http.HandlerFunc(cm.connectHandler)))
	cm.server = &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	return cm, nil
}

// Start runs the HTTP server for WebSocket connections.
func (cm *ConnectionManager) Start(ctx context.Context) error {
	cm.logger.Info().Str("addr", cm.server.Addr).Msg("WebSocket server starting...")
	if err := cm.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("websocket server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and closes every connection.
func (cm *ConnectionManager) Shutdown(ctx context.Context) error {
	cm.logger.Info().Msg("Shutting down WebSocket service...")
	var finalErr error

	if err := cm.server.Shutdown(ctx); err != nil {
		cm.logger.Error().Err(err).Msg("WebSocket server shutdown failed.")
		finalErr = err
	}

	cm.clients.Range(func(_, value any) bool {
		value.(*client).shutdown()
		return true
	})

	cm.logger.Info().Msg("WebSocket service shut down.")
	return finalErr
}

// connectHandler upgrades a new HTTP request to a WebSocket and manages its
// lifecycle: registry open on upgrade, relay disconnect on close.
func (cm *ConnectionManager) connectHandler(w http.ResponseWriter, r *http.Request) {
	authedUserID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		cm.logger.Error().Err(err).Msg("Failed to upgrade connection.")
		return
	}

	c := newClient(conn, cm.logger)
	connID := cm.registry.Open(c)
	cm.clients.Store(connID, c)
	go c.writePump()

	cm.logger.Info().Str("conn", connID).Str("auth_user", authedUserID).Msg("Client connected via WebSocket.")

	defer func() {
		cm.relay.Disconnect(connID)
		cm.clients.Delete(connID)
		c.shutdown()
		if err := conn.Close(); err != nil {
			cm.logger.Debug().Err(err).Msg("error closing connection")
		}
		cm.logger.Info().Str("conn", connID).Msg("Client disconnected.")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break // Client disconnected or read error; cleanup runs in the defer.
		}
		cm.handleEvent(r.Context(), connID, c, data)
	}
}

// handleEvent decodes one inbound frame and dispatches it. Malformed events
// are dropped with a log; nothing here is fatal to the connection.
func (cm *ConnectionManager) handleEvent(ctx context.Context, connID string, c *client, data []byte) {
	var ev clientEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		cm.logger.Warn().Err(err).Str("conn", connID).Msg("Dropping malformed event.")
		return
	}

	switch ev.Type {
	case eventRegister:
		if ev.UserID == "" {
			cm.logger.Warn().Str("conn", connID).Msg("Dropping register event with no userId.")
			return
		}
		cm.relay.Register(connID, ev.UserID)

	case string(signaling.KindCallInitiate):
		if ev.To == "" {
			cm.logger.Warn().Str("conn", connID).Msg("Dropping call-initiate with no target.")
			return
		}
		from := ev.From
		if from == "" {
			// Fall back to the identity this connection registered under.
			from, _ = cm.registry.UserFor(connID)
		}
		outcome := cm.relay.RelayCall(ctx, from, ev.To, ev.Payload)
		if !outcome.Delivered() {
			cm.notifyCallUnavailable(c, ev.To, outcome)
		}

	case string(signaling.KindCallAnswer):
		if ev.To == "" {
			cm.logger.Warn().Str("conn", connID).Msg("Dropping call-answer with no target.")
			return
		}
		if outcome := cm.relay.RelayAnswer(ctx, ev.To, ev.Payload); !outcome.Delivered() {
			cm.logger.Info().Str("to", ev.To).Stringer("outcome", outcome).
				Msg("Call answer could not be delivered.")
		}

	case string(signaling.KindCallTerminate):
		if ev.To == "" {
			cm.logger.Warn().Str("conn", connID).Msg("Dropping call-terminate with no target.")
			return
		}
		// Hangup is best-effort: an undeliverable terminate is dropped.
		_ = cm.relay.RelayHangup(ctx, ev.To)

	default:
		cm.logger.Warn().Str("conn", connID).Str("type", ev.Type).Msg("Dropping event of unknown type.")
	}
}

// notifyCallUnavailable tells the caller, on their own connection, that the
// call could not be placed. Surfacing the outcome is this layer's job; the
// relay itself never messages the caller.
func (cm *ConnectionManager) notifyCallUnavailable(c *client, target string, outcome signaling.Outcome) {
	reason := outcome
	if reason == signaling.OutcomeSendFailed {
		// A stale connection at send time is indistinguishable from an
		// offline target as far as the caller is concerned.
		reason = signaling.OutcomeTargetOffline
	}
	data, err := json.Marshal(callUnavailableEvent{
		Type:   "call-unavailable",
		To:     target,
		Reason: reason.String(),
	})
	if err != nil {
		return
	}
	if err := c.enqueue(data); err != nil {
		cm.logger.Debug().Err(err).Msg("Failed to notify caller of unavailable target.")
	}
}
