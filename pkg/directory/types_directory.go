// Package directory contains the public domain models and store contracts for
// user profiles and chat-thread bookkeeping. It defines the document-store
// interface the API layer consumes; implementations live under
// internal/platform/persistence.
package directory

import "time"

// User is a user profile document.
type User struct {
	UID         string    `json:"uid" firestore:"uid"`
	Email       string    `json:"email,omitempty" firestore:"email"`
	DisplayName string    `json:"displayName" firestore:"displayName"`
	PhotoURL    string    `json:"photoURL,omitempty" firestore:"photoURL"`
	Bio         string    `json:"bio,omitempty" firestore:"bio"`
	Location    string    `json:"location,omitempty" firestore:"location"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt"`
	Chats       []string  `json:"chats" firestore:"chats"`
}

// UserSummary is the reduced shape returned by search and embedded in
// another user's chat list.
type UserSummary struct {
	UID         string `json:"uid" firestore:"uid"`
	DisplayName string `json:"displayName" firestore:"displayName"`
	PhotoURL    string `json:"photoURL,omitempty" firestore:"photoURL"`
}
