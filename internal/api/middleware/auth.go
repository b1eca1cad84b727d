// Package middleware provides HTTP middleware for the Inkpad API.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/inkpad/inkpad/internal/session"
	"github.com/inkpad/inkpad/pkg/models"
)

// Context key type for storing the authenticated user
type contextKey string

const userContextKey contextKey = "user"

// UserFromContext retrieves the authenticated user from the request context.
// Returns nil if the request did not pass through RequireSession.
func UserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(userContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// WithUser returns a context carrying the authenticated user. Used by
// RequireSession and by handler tests.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// RequireSession is the authorization gate in front of protected resources.
//
// It resolves the request's session cookie to a live account and attaches it
// to the request context. Every failure mode (cookie absent, bad signature,
// expired or unknown session, account no longer resolvable) produces the
// same fixed 401 response. A store outage is the one exception and surfaces
// as a 500.
func RequireSession(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := sessions.Resolve(r.Context(), r)
			if err != nil {
				if errors.Is(err, session.ErrUnauthenticated) {
					writeError(w, http.StatusUnauthorized, "Unauthorized")
					return
				}
				writeError(w, http.StatusInternalServerError, "Server error")
				return
			}

			ctx := WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeError emits the gate's fixed JSON error body. The middleware writes
// its responses itself so it stays importable by the handler packages it
// fronts.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"message":%q}`+"\n", message)
}
