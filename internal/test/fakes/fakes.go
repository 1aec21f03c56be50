// --- File: internal/test/fakes/fakes.go ---

// Package fakes provides in-memory store implementations for local
// development and end-to-end tests, where a Firestore emulator would be
// overkill.
package fakes

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/TalkNest/backend/pkg/directory"
)

// UserStore is an in-memory directory.UserStore.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*directory.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*directory.User)}
}

func (s *UserStore) Create(_ context.Context, user *directory.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.users[user.UID] = &u
	return nil
}

func (s *UserStore) Get(_ context.Context, id string) (*directory.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, directory.ErrNotFound
	}
	u := *user
	return &u, nil
}

func (s *UserStore) Update(_ context.Context, id string, updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return directory.ErrNotFound
	}
	for key, value := range updates {
		switch key {
		case "email":
			user.Email, _ = value.(string)
		case "displayName":
			user.DisplayName, _ = value.(string)
		case "photoURL":
			user.PhotoURL, _ = value.(string)
		case "bio":
			user.Bio, _ = value.(string)
		case "location":
			user.Location, _ = value.(string)
		case "updatedAt":
			if ts, ok := value.(time.Time); ok {
				user.UpdatedAt = ts
			}
		default:
			return fmt.Errorf("fakes: unsupported update field %q", key)
		}
	}
	return nil
}

func (s *UserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

func (s *UserStore) Search(_ context.Context, query string) ([]directory.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(query)
	var results []directory.UserSummary
	for _, user := range s.users {
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

// ChatStore is an in-memory directory.ChatStore.
type ChatStore struct {
	mu        sync.RWMutex
	chats     map[string]bool
	userChats map[string]map[string]any
	users     directory.UserStore
}

func NewChatStore(users directory.UserStore) *ChatStore {
	return &ChatStore{
		chats:     make(map[string]bool),
		userChats: make(map[string]map[string]any),
		users:     users,
	}
}

func (s *ChatStore) Select(ctx context.Context, currentUID, otherUID string) (string, bool, error) {
	chatID := directory.CombinedChatID(currentUID, otherUID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chats[chatID] {
		return chatID, false, nil
	}
	s.chats[chatID] = true

	for owner, peer := range map[string]string{currentUID: otherUID, otherUID: currentUID} {
		peerUser, err := s.users.Get(ctx, peer)
		if err != nil {
			return "", false, err
		}
		if s.userChats[owner] == nil {
			s.userChats[owner] = make(map[string]any)
		}
		s.userChats[owner][chatID] = map[string]any{
			"userInfo": map[string]any{
				"uid":         peerUser.UID,
				"displayName": peerUser.DisplayName,
				"photoURL":    peerUser.PhotoURL,
			},
			"date": time.Now().UTC(),
		}
	}
	return chatID, true, nil
}

func (s *ChatStore) UserChats(_ context.Context, userID string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chats, ok := s.userChats[userID]
	if !ok {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(chats))
	for k, v := range chats {
		out[k] = v
	}
	return out, nil
}

func (s *ChatStore) SetUserChat(_ context.Context, userID, chatID string, chatData map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userChats[userID] == nil {
		s.userChats[userID] = make(map[string]any)
	}
	existing, ok := s.userChats[userID][chatID].(map[string]any)
	if !ok {
		existing = make(map[string]any)
	}
	for k, v := range chatData {
		existing[k] = v
	}
	s.userChats[userID][chatID] = existing
	return nil
}
