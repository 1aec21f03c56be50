// --- File: internal/platform/persistence/firestore_users.go ---

// Package persistence provides Firestore-backed implementations of the
// directory stores.
package persistence

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/TalkNest/backend/pkg/directory"
)

// FirestoreUserStore implements directory.UserStore on Firestore. Each user
// profile is one document keyed by uid.
type FirestoreUserStore struct {
	client     *firestore.Client
	collection string
	logger     zerolog.Logger
}

// NewFirestoreUserStore creates a user store backed by the given collection.
func NewFirestoreUserStore(client *firestore.Client, collection string, logger zerolog.Logger) (*FirestoreUserStore, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client cannot be nil")
	}
	return &FirestoreUserStore{
		client:     client,
		collection: collection,
		logger:     logger.With().Str("component", "FirestoreUserStore").Logger(),
	}, nil
}

func (s *FirestoreUserStore) Create(ctx context.Context, user *directory.User) error {
	_, err := s.client.Collection(s.collection).Doc(user.UID).Set(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to create user document %s: %w", user.UID, err)
	}
	return nil
}

func (s *FirestoreUserStore) Get(ctx context.Context, id string) (*directory.User, error) {
	doc, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, directory.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user document %s: %w", id, err)
	}

	var user directory.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user document %s: %w", id, err)
	}
	return &user, nil
}

func (s *FirestoreUserStore) Update(ctx context.Context, id string, updates map[string]any) error {
	_, err := s.client.Collection(s.collection).Doc(id).Set(ctx, updates, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update user document %s: %w", id, err)
	}
	return nil
}

func (s *FirestoreUserStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.Collection(s.collection).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user document %s: %w", id, err)
	}
	return nil
}

// Search scans the collection and matches the query case-insensitively
// against display name and email. The user base is small enough that a full
// scan is acceptable; a search index is not worth the operational cost yet.
func (s *FirestoreUserStore) Search(ctx context.Context, query string) ([]directory.UserSummary, error) {
	needle := strings.ToLower(query)
	var results []directory.UserSummary

	iter := s.client.Collection(s.collection).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("user search iteration failed: %w", err)
		}

		var user directory.User
		if err := doc.DataTo(&user); err != nil {
			s.logger.Warn().Err(err).Str("doc", doc.Ref.ID).Msg("Skipping undecodable user document.")
			continue
		}
		if strings.Contains(strings.ToLower(user.DisplayName), needle) ||
			strings.Contains(strings.ToLower(user.Email), needle) ||
			strings.Contains(user.UID, query) {
			results = append(results, directory.UserSummary{
				UID:         user.UID,
				DisplayName: user.DisplayName,
				PhotoURL:    user.PhotoURL,
			})
		}
	}

	return results, nil
}
