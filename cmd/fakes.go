package cmd

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/TalkNest/backend/internal/test/fakes"
	"github.com/TalkNest/backend/pkg/signaling"
	"github.com/TalkNest/backend/signalingservice/config"
)

// NewFakeDependencies builds an in-memory dependency container for
// run_mode=local, where no Firestore project is available.
func NewFakeDependencies(_ context.Context, _ *config.AppConfig, logger zerolog.Logger) (*signaling.ServiceDependencies, error) {
	logger.Info().Msg("Building in-memory fake dependencies.")

	users := fakes.NewUserStore()
	chats := fakes.NewChatStore(users)

	return &signaling.ServiceDependencies{
		Users: users,
		Chats: chats,
	}, nil
}
