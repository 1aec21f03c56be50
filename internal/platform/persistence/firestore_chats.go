// --- File: internal/platform/persistence/firestore_chats.go ---
package persistence

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/TalkNest/backend/pkg/directory"
)

// FirestoreChatStore implements directory.ChatStore on two collections: one
// document per conversation (message history), and one document per user
// holding that user's chat metadata map.
type FirestoreChatStore struct {
	client              *firestore.Client
	chatsCollection     string
	userChatsCollection string
	users               directory.UserStore
	logger              zerolog.Logger
}

// NewFirestoreChatStore creates a chat store. The user store is consulted
// when a new conversation is created, to denormalize each party's profile
// summary into the other party's chat list.
func NewFirestoreChatStore(
	client *firestore.Client,
	chatsCollection, userChatsCollection string,
	users directory.UserStore,
	logger zerolog.Logger,
) (*FirestoreChatStore, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client cannot be nil")
	}
	if users == nil {
		return nil, fmt.Errorf("user store cannot be nil")
	}
	return &FirestoreChatStore{
		client:              client,
		chatsCollection:     chatsCollection,
		userChatsCollection: userChatsCollection,
		users:               users,
		logger:              logger.With().Str("component", "FirestoreChatStore").Logger(),
	}, nil
}

// Select resolves the conversation between two users, creating it on first
// contact. Creation also seeds both users' chat metadata with the other
// party's summary so the client can render the chat list without extra
// lookups.
func (s *FirestoreChatStore) Select(ctx context.Context, currentUID, otherUID string) (string, bool, error) {
	chatID := directory.CombinedChatID(currentUID, otherUID)
	chatRef := s.client.Collection(s.chatsCollection).Doc(chatID)

	_, err := chatRef.Get(ctx)
	if err == nil {
		return chatID, false, nil
	}
	if status.Code(err) != codes.NotFound {
		return "", false, fmt.Errorf("failed to check chat %s: %w", chatID, err)
	}

	if _, err := chatRef.Set(ctx, map[string]any{"messages": []any{}}); err != nil {
		return "", false, fmt.Errorf("failed to create chat %s: %w", chatID, err)
	}

	if err := s.seedUserChat(ctx, currentUID, otherUID, chatID); err != nil {
		return "", false, err
	}
	if err := s.seedUserChat(ctx, otherUID, currentUID, chatID); err != nil {
		return "", false, err
	}

	return chatID, true, nil
}

// seedUserChat writes the initial metadata entry for chatID into ownerUID's
// chat map, carrying the peer's profile summary.
func (s *FirestoreChatStore) seedUserChat(ctx context.Context, ownerUID, peerUID, chatID string) error {
	peer, err := s.users.Get(ctx, peerUID)
	if err != nil {
		return fmt.Errorf("failed to load peer profile %s: %w", peerUID, err)
	}

	entry := map[string]any{
		chatID: map[string]any{
			"userInfo": map[string]any{
				"uid":         peer.UID,
				"displayName": peer.DisplayName,
				"photoURL":    peer.PhotoURL,
			},
			"date": firestore.ServerTimestamp,
		},
	}
	_, err = s.client.Collection(s.userChatsCollection).Doc(ownerUID).Set(ctx, entry, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to seed chat metadata for %s: %w", ownerUID, err)
	}
	return nil
}

// UserChats returns the full chat metadata map for one user. A user with no
// document yet gets an empty map.
func (s *FirestoreChatStore) UserChats(ctx context.Context, userID string) (map[string]any, error) {
	doc, err := s.client.Collection(s.userChatsCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to get chats for %s: %w", userID, err)
	}
	return doc.Data(), nil
}

// SetUserChat merges new metadata for one chat into a user's chat map.
func (s *FirestoreChatStore) SetUserChat(ctx context.Context, userID, chatID string, chatData map[string]any) error {
	_, err := s.client.Collection(s.userChatsCollection).Doc(userID).
		Set(ctx, map[string]any{chatID: chatData}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update chat %s for %s: %w", chatID, userID, err)
	}
	return nil
}
