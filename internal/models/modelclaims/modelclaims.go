// Package modelclaims provides types for session token authorization.

package modelclaims

import "github.com/golang-jwt/jwt"

type SessionClaims struct {
	SessionID string `json:"sessionID"`
	jwt.StandardClaims
}
