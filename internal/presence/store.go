// Package presence owns the two process-wide tables behind the signaling
// relay: the user presence table (Store) and the live-connection registry
// (Registry). Both are transient, in-memory, process-lifetime state; nothing
// here survives a restart and clients rebuild it by re-registering.
package presence

import (
	"sync"
	"time"
)

// Entry is one user's reachability record.
//
// Invariant: Online == true implies ConnectionID refers to a currently-open
// connection that was bound to this user via register. A disconnect of that
// connection must flip the entry offline before any later lookup observes it.
type Entry struct {
	UserID       string
	Online       bool
	ConnectionID string
	ConnectedAt  int64
}

// Store is the userID -> Entry presence table. A single mutex guards the
// map: every operation is a read-then-write critical section and none of
// them performs I/O, so global serialization is cheap at this scale.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewStore creates an empty presence table.
func NewStore() *Store {
	return &Store{entries: make(map[string]Entry)}
}

// Set upserts the entry for userID, marking it online via connID. The newest
// registration always wins; an entry pointing at an older connection is
// overwritten without ceremony.
func (s *Store) Set(userID, connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = Entry{
		UserID:       userID,
		Online:       true,
		ConnectionID: connID,
		ConnectedAt:  time.Now().Unix(),
	}
}

// Get returns the entry for userID. ok is false when the user has never
// registered; an entry with Online == false means the user registered at
// some point but has no live connection.
func (s *Store) Get(userID string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[userID]
	return e, ok
}

// CompareAndClear flips the entry offline only if it still records connID as
// the serving connection. A mismatch means a newer registration has already
// superseded the disconnecting connection; that is an expected race and the
// call is a no-op. Reports whether the entry was cleared.
func (s *Store) CompareAndClear(userID, connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	if !ok || e.ConnectionID != connID {
		return false
	}
	e.Online = false
	e.ConnectionID = ""
	s.entries[userID] = e
	return true
}

// OnlineCount reports how many users currently have a live connection.
func (s *Store) OnlineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.entries {
		if e.Online {
			n++
		}
	}
	return n
}
