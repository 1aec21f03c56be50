//go:build integration

// --- File: internal/platform/persistence/firestore_integration_test.go ---
package persistence_test

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illmade-knight/go-test/emulators"

	"github.com/TalkNest/backend/internal/platform/persistence"
	"github.com/TalkNest/backend/pkg/directory"
)

const testProjectID = "talknest-test-project"

func setupStores(t *testing.T, ctx context.Context) (*persistence.FirestoreUserStore, *persistence.FirestoreChatStore) {
	t.Helper()

	conn := emulators.SetupFirestoreEmulator(t, ctx, emulators.GetDefaultFirestoreConfig(testProjectID))
	client, err := firestore.NewClient(ctx, testProjectID, conn.ClientOptions...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	users, err := persistence.NewFirestoreUserStore(client, "users", zerolog.Nop())
	require.NoError(t, err)
	chats, err := persistence.NewFirestoreChatStore(client, "chats", "userChats", users, zerolog.Nop())
	require.NoError(t, err)
	return users, chats
}

func TestFirestoreUserStore_Lifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	users, _ := setupStores(t, ctx)

	now := time.Now().UTC().Truncate(time.Second)
	alice := &directory.User{
		UID:         "alice-uid",
		Email:       "alice@example.com",
		DisplayName: "Alice",
		CreatedAt:   now,
		UpdatedAt:   now,
		Chats:       []string{},
	}

	require.NoError(t, users.Create(ctx, alice))

	got, err := users.Get(ctx, "alice-uid")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.DisplayName)
	assert.Equal(t, "alice@example.com", got.Email)

	err = users.Update(ctx, "alice-uid", map[string]any{"bio": "hello there"})
	require.NoError(t, err)

	got, err = users.Get(ctx, "alice-uid")
	require.NoError(t, err)
	assert.Equal(t, "hello there", got.Bio)
	assert.Equal(t, "Alice", got.DisplayName, "Partial update must not clobber other fields")

	require.NoError(t, users.Delete(ctx, "alice-uid"))
	_, err = users.Get(ctx, "alice-uid")
	assert.ErrorIs(t, err, directory.ErrNotFound)
}

func TestFirestoreUserStore_Search(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	users, _ := setupStores(t, ctx)

	for _, u := range []*directory.User{
		{UID: "u1", DisplayName: "Alice Smith", Email: "alice@example.com"},
		{UID: "u2", DisplayName: "Bob Jones", Email: "bob@example.com"},
		{UID: "u3", DisplayName: "Alicia Keys", Email: "ak@example.com"},
	} {
		require.NoError(t, users.Create(ctx, u))
	}

	results, err := users.Search(ctx, "ALI")
	require.NoError(t, err)
	require.Len(t, results, 2, "Search should match case-insensitively on display name")

	results, err = users.Search(ctx, "bob@")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Bob Jones", results[0].DisplayName)
}

func TestFirestoreChatStore_SelectAndMetadata(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	users, chats := setupStores(t, ctx)

	require.NoError(t, users.Create(ctx, &directory.User{UID: "alice", DisplayName: "Alice", PhotoURL: "a.png"}))
	require.NoError(t, users.Create(ctx, &directory.User{UID: "bob", DisplayName: "Bob", PhotoURL: "b.png"}))

	chatID, created, err := chats.Select(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, directory.CombinedChatID("alice", "bob"), chatID)

	// Selecting from the other side resolves to the same conversation.
	chatID2, created2, err := chats.Select(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.False(t, created2, "Second select must not recreate the chat")
	assert.Equal(t, chatID, chatID2)

	// Each party's chat list carries the other party's summary.
	aliceChats, err := chats.UserChats(ctx, "alice")
	require.NoError(t, err)
	require.Contains(t, aliceChats, chatID)
	entry := aliceChats[chatID].(map[string]any)
	userInfo := entry["userInfo"].(map[string]any)
	assert.Equal(t, "Bob", userInfo["displayName"])

	bobChats, err := chats.UserChats(ctx, "bob")
	require.NoError(t, err)
	bobInfo := bobChats[chatID].(map[string]any)["userInfo"].(map[string]any)
	assert.Equal(t, "Alice", bobInfo["displayName"])

	// Merging a message preview preserves the seeded userInfo.
	err = chats.SetUserChat(ctx, "alice", chatID, map[string]any{
		"lastMessage": map[string]any{"text": "hi bob"},
	})
	require.NoError(t, err)

	aliceChats, err = chats.UserChats(ctx, "alice")
	require.NoError(t, err)
	entry = aliceChats[chatID].(map[string]any)
	assert.Contains(t, entry, "lastMessage")
	assert.Contains(t, entry, "userInfo", "Merge must not clobber existing metadata")
}

func TestFirestoreChatStore_UserChatsEmpty(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	_, chats := setupStores(t, ctx)

	got, err := chats.UserChats(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}
