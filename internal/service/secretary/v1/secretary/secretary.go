// Package secretary provides methods for session token signing.
package secretary

import (
	"errors"
	"time"

	"github.com/danilovkiri/dk-go-smmpanel/internal/config"
	"github.com/danilovkiri/dk-go-smmpanel/internal/models/modelclaims"
	"github.com/golang-jwt/jwt"
)

const tokenTTL = 24 * time.Hour

// Secretary signs and validates session tokens carried in cookies.
type Secretary struct {
	key []byte
}

// NewSecretaryService initializes a secretary service with token signing functionality.
func NewSecretaryService(c *config.SecretConfig) (*Secretary, error) {
	if c.SecretKey == "" {
		return nil, errors.New("empty secret key was found")
	}
	return &Secretary{key: []byte(c.SecretKey)}, nil
}

// Sign produces a signed token embedding a session identifier.
func (s *Secretary) Sign(sessionID string) (string, error) {
	claims := modelclaims.SessionClaims{
		SessionID: sessionID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// Validate checks the token signature and expiry and returns the embedded
// session identifier.
func (s *Secretary) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &modelclaims.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*modelclaims.SessionClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	return claims.SessionID, nil
}
