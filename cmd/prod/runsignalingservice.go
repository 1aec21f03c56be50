/*
File: cmd/prod/runsignalingservice.go
Description: Production entrypoint. Wires Firestore-backed stores, JWKS
auth, the REST API service, and the WebSocket connection manager.
*/
package main

import (
	"context"
	"fmt"
	"net/http"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"

	"github.com/TalkNest/backend/cmd"
	"github.com/TalkNest/backend/internal/app"
	"github.com/TalkNest/backend/internal/platform/persistence"
	"github.com/TalkNest/backend/internal/presence"
	"github.com/TalkNest/backend/internal/realtime"
	"github.com/TalkNest/backend/internal/relay"
	"github.com/TalkNest/backend/pkg/signaling"
	"github.com/TalkNest/backend/signalingservice"
	"github.com/TalkNest/backend/signalingservice/config"
)

func main() {
	// 1. Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := log.With().Str("service", "talknest-backend").Logger()

	// 2. Load config.yaml
	cfg, err := cmd.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 3. Create dependencies
	ctx := context.Background()
	deps, err := newDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize dependencies")
	}

	// 4. Create Authentication Middleware
	authMiddleware, err := newAuthMiddleware(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize authentication middleware")
	}

	// 5. Presence and relay are in-memory: a connection's registration lives
	// and dies with the process that holds its socket.
	registry := presence.NewRegistry()
	store := presence.NewStore()
	signalRelay := relay.New(registry, store, logger)

	// 6. Create the two main services
	apiService, err := signalingservice.New(
		cfg,
		deps,
		authMiddleware,
		logger.With().Str("component", "ApiService").Logger(),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create API service")
	}

	connManager, err := realtime.NewConnectionManager(
		cfg.WebSocketPort,
		authMiddleware,
		registry,
		signalRelay,
		logger.With().Str("component", "ConnManager").Logger(),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Connection Manager")
	}

	// 7. Run the application
	app.Run(ctx, logger, apiService, connManager)
}

// newAuthMiddleware creates the JWT-validating middleware.
func newAuthMiddleware(cfg *config.AppConfig, logger zerolog.Logger) (func(http.Handler) http.Handler, error) {
	if cfg.RunMode == "local" {
		logger.Warn().Msg("Running in 'local' mode. Authentication is faked.")
		return middleware.NoopAuth(true, "local-dev-user"), nil
	}
	jwksURL, err := middleware.DiscoverAndValidateJWTConfig(cfg.IdentityServiceURL, "RS256", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC config: %w", err)
	}
	return middleware.NewJWKSAuthMiddleware(jwksURL)
}

// newDependencies builds the service dependency container.
func newDependencies(ctx context.Context, cfg *config.AppConfig, logger zerolog.Logger) (*signaling.ServiceDependencies, error) {
	if cfg.RunMode == "local" {
		logger.Warn().Msg("Running in 'local' mode. All external dependencies will be faked.")
		return cmd.NewFakeDependencies(ctx, cfg, logger)
	}
	return newProdDependencies(ctx, cfg, logger)
}

// newProdDependencies creates real, production-ready dependencies.
func newProdDependencies(ctx context.Context, cfg *config.AppConfig, logger zerolog.Logger) (*signaling.ServiceDependencies, error) {
	fsClient, err := firestore.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to firestore: %w", err)
	}

	users, err := persistence.NewFirestoreUserStore(fsClient, cfg.Firestore.UsersCollectionName, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user store: %w", err)
	}
	chats, err := persistence.NewFirestoreChatStore(
		fsClient,
		cfg.Firestore.ChatsCollectionName,
		cfg.Firestore.UserChatsCollectionName,
		users,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat store: %w", err)
	}

	return &signaling.ServiceDependencies{
		Users: users,
		Chats: chats,
	}, nil
}
