// Package session provides server-side session bookkeeping.
package session

// Store defines a set of methods for types implementing a session store.
// A session maps an opaque identifier to a user identifier; closing an
// unknown session is a no-op.
type Store interface {
	Open(userID string) string
	Resolve(sessionID string) (string, bool)
	Close(sessionID string)
}
