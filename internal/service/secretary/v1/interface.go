// Package secretary provides methods for session token signing.
package secretary

// Secretary defines a set of methods for types implementing Secretary.
type Secretary interface {
	Sign(sessionID string) (string, error)
	Validate(token string) (string, error)
}
