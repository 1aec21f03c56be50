/*
File: signalingservice/signalingservice.go
Description: Wires the user-directory and chat REST API onto the standard
base server, with CORS and per-route auth.
*/
package signalingservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/tinywideclouds/go-microservice-base/pkg/microservice"

	"github.com/TalkNest/backend/internal/api"
	"github.com/TalkNest/backend/pkg/signaling"
	"github.com/TalkNest/backend/signalingservice/config"
)

// Wrapper embeds BaseServer to get standard server functionality.
type Wrapper struct {
	*microservice.BaseServer
	apiHandler    *api.API
	logger        zerolog.Logger
	httpReadyChan chan struct{}
}

// New creates and wires up the REST API service using the base server.
func New(
	cfg *config.AppConfig,
	dependencies *signaling.ServiceDependencies,
	authMiddleware func(http.Handler) http.Handler,
	logger zerolog.Logger,
) (*Wrapper, error) {
	if dependencies == nil || dependencies.Users == nil || dependencies.Chats == nil {
		return nil, fmt.Errorf("service dependencies are incomplete")
	}

	// 1. Create the standard base server.
	baseServer := microservice.NewBaseServer(logger, ":"+cfg.APIPort)

	httpReadyChan := make(chan struct{})
	baseServer.SetReadyChannel(httpReadyChan)

	// 2. Create the API handlers.
	apiHandler := api.NewAPI(
		dependencies.Users,
		dependencies.Chats,
		logger.With().Str("component", "API").Logger(),
	)

	// 3. Attach routes. Profile mutations require the caller to prove an
	// identity; reads and registration are open, matching the client flow
	// where registration happens before a token exists.
	apiMux := http.NewServeMux()

	apiMux.Handle("POST /api/users", http.HandlerFunc(apiHandler.CreateUserHandler))
	apiMux.Handle("GET /api/users/search", http.HandlerFunc(apiHandler.SearchUsersHandler))
	apiMux.Handle("GET /api/user/{id}", http.HandlerFunc(apiHandler.GetUserHandler))
	apiMux.Handle("PATCH /api/user/{id}", authMiddleware(http.HandlerFunc(apiHandler.UpdateUserHandler)))
	apiMux.Handle("DELETE /api/user/{id}", authMiddleware(http.HandlerFunc(apiHandler.DeleteUserHandler)))

	apiMux.Handle("POST /api/chats/select", http.HandlerFunc(apiHandler.SelectChatHandler))
	apiMux.Handle("GET /api/chats/{userId}", http.HandlerFunc(apiHandler.GetUserChatsHandler))
	apiMux.Handle("POST /api/chats/{userId}", http.HandlerFunc(apiHandler.UpdateUserChatHandler))

	// 4. The whole API subtree sits behind one CORS policy.
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Cors.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(apiMux)

	baseServer.Mux().Handle("/api/", corsHandler)

	return &Wrapper{
		BaseServer:    baseServer,
		apiHandler:    apiHandler,
		logger:        logger,
		httpReadyChan: httpReadyChan,
	}, nil
}

// Start runs the base HTTP server and waits for the listener to come up
// before marking the service ready.
func (w *Wrapper) Start(ctx context.Context) error {
	serverErrChan := make(chan error, 1)
	go func() {
		if err := w.BaseServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.logger.Error().Err(err).Msg("HTTP server failed")
			serverErrChan <- err
		}
		close(serverErrChan)
	}()

	// Wait for EITHER the server to be ready OR for it to fail on startup.
	select {
	case <-w.httpReadyChan:
		// Closed by BaseServer.Start() after net.Listen() succeeds.
		w.logger.Info().Msg("HTTP listener is active.")
		w.SetReady(true)
		w.logger.Info().Msg("Service is now ready.")

	case err := <-serverErrChan:
		return fmt.Errorf("HTTP server failed to start: %w", err)

	case <-ctx.Done():
		return ctx.Err()
	}

	// Wait for the server goroutine to exit (which happens on Shutdown).
	if err := <-serverErrChan; err != nil {
		return err
	}

	return nil
}

// Shutdown gracefully stops the HTTP server.
func (w *Wrapper) Shutdown(ctx context.Context) error {
	w.logger.Info().Msg("Shutting down service components...")

	if err := w.BaseServer.Shutdown(ctx); err != nil {
		w.logger.Error().Err(err).Msg("HTTP server shutdown failed.")
		return err
	}

	w.logger.Info().Msg("All components shut down.")
	return nil
}
