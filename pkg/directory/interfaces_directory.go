// --- File: pkg/directory/interfaces_directory.go ---
package directory

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no document exists for the id.
var ErrNotFound = errors.New("directory: not found")

// UserStore defines the document-store contract for user profiles.
type UserStore interface {
	// Create writes a new user profile document keyed by User.UID.
	Create(ctx context.Context, user *User) error

	// Get fetches a user profile by id. Returns ErrNotFound when absent.
	Get(ctx context.Context, id string) (*User, error)

	// Update merge-writes a partial profile document. The caller is
	// responsible for refreshing the updatedAt field.
	Update(ctx context.Context, id string, updates map[string]any) error

	// Delete removes the profile document.
	Delete(ctx context.Context, id string) error

	// Search scans all user documents and returns summaries of those whose
	// email or display name contains the query (case-insensitive), or whose
	// uid contains it verbatim.
	Search(ctx context.Context, query string) ([]UserSummary, error)
}

// ChatStore defines the document-store contract for chat-thread bookkeeping.
type ChatStore interface {
	// Select ensures a chat exists between the two users, creating the chat
	// document and both users' chat-list entries when absent. It returns the
	// combined chat id and whether a new chat was created.
	Select(ctx context.Context, currentUserUID, otherUserUID string) (chatID string, created bool, err error)

	// UserChats returns the user's chat-list document as a raw map, or an
	// empty map when the user has no chats yet.
	UserChats(ctx context.Context, userID string) (map[string]any, error)

	// SetUserChat merge-writes a single entry in the user's chat list.
	SetUserChat(ctx context.Context, userID, chatID string, chatData map[string]any) error
}

// CombinedChatID derives the deterministic id shared by both parties of a
// 1:1 chat: the lexicographically greater uid is concatenated first, matching
// the ids already present in production data.
func CombinedChatID(a, b string) string {
	if a > b {
		return a + b
	}
	return b + a
}
