package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// ErrBadToken is returned by verifiers for unknown or empty tokens.
var ErrBadToken = errors.New("missing or invalid token")

// TokenVerifier resolves a bearer token to a user id. The platform's
// identity service implements this in production; the static map below
// stands in for it.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// StaticTokenVerifier maps tokens to user ids from configuration.
type StaticTokenVerifier map[string]string

// Verify compares the candidate against every known token in constant
// time per comparison.
func (v StaticTokenVerifier) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrBadToken
	}
	for known, userID := range v {
		if subtle.ConstantTimeCompare([]byte(token), []byte(known)) == 1 {
			return userID, nil
		}
	}
	return "", ErrBadToken
}

type contextKey string

const userIDKey contextKey = "userID"

// UserID returns the authenticated user id stored in the request
// context, or "".
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// requireAuth rejects requests without a valid bearer token before the
// conversation loop is ever entered.
func requireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			token := ""
			if strings.HasPrefix(strings.ToLower(header), "bearer ") {
				token = strings.TrimSpace(header[7:])
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid credential")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
