// Package middleware provides various middleware functionality.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danilovkiri/dk-go-smmpanel/internal/service/processor/v1"
	"github.com/danilovkiri/dk-go-smmpanel/internal/service/secretary/v1"
	"github.com/danilovkiri/dk-go-smmpanel/internal/service/session/v1"
	"github.com/rs/zerolog"
)

// SessionCookieName is the name of the cookie carrying the signed session token.
const SessionCookieName = "sessionID"

type contextKey string

const identityContextKey contextKey = "identity"

// Identity carries the resolved caller identity attached to the request context.
type Identity struct {
	UserID  string
	IsAdmin bool
}

// IdentityFromContext retrieves the caller identity resolved by AuthHandler.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	return identity, ok
}

// AuthHandler sets object structure.
type AuthHandler struct {
	sec      secretary.Secretary
	sessions session.Store
	service  processor.UserProcessor
	log      *zerolog.Logger
}

// NewAuthHandler initializes a new auth handler.
func NewAuthHandler(sec secretary.Secretary, sessions session.Store, service processor.UserProcessor, log *zerolog.Logger) (*AuthHandler, error) {
	if sec == nil {
		return nil, errors.New("nil secretary object was found")
	}
	if sessions == nil {
		return nil, errors.New("nil session store object was found")
	}
	if service == nil {
		return nil, errors.New("nil processor object was found")
	}
	return &AuthHandler{
		sec:      sec,
		sessions: sessions,
		service:  service,
		log:      log,
	}, nil
}

// resolve follows the cookie -> token -> session -> user chain.
func (a *AuthHandler) resolve(r *http.Request) (*Identity, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, err
	}
	sessionID, err := a.sec.Validate(cookie.Value)
	if err != nil {
		return nil, err
	}
	userID, ok := a.sessions.Resolve(sessionID)
	if !ok {
		return nil, errors.New("no session found for token")
	}
	user, err := a.service.GetUser(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: user.ID, IsAdmin: user.IsAdmin}, nil
}

// Authenticate rejects requests without a valid session.
func (a *AuthHandler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.resolve(r)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityContextKey, identity)))
	})
}

// RequireAdmin rejects authenticated requests from non-admin users. It must
// be used downstream of Authenticate.
func (a *AuthHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !identity.IsAdmin {
			writeAuthError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Identify attaches the caller identity when a valid session is present and
// passes the request through either way.
func (a *AuthHandler) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.resolve(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityContextKey, identity)))
	})
}

func writeAuthError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
