// --- File: pkg/signaling/signaling.go ---
package signaling

import (
	"github.com/TalkNest/backend/pkg/directory"
)

// ServiceDependencies holds the external collaborators the API service needs
// to operate. This struct is used for dependency injection; the signaling
// relay core never touches these stores.
type ServiceDependencies struct {
	// --- Document stores ---
	Users directory.UserStore
	Chats directory.ChatStore
}
