// Package auth implements the authenticators: local email+password
// verification, registration, and Google identity federation.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/inkpad/inkpad/pkg/models"
	"github.com/inkpad/inkpad/pkg/store"
)

var validate = validator.New()

// ValidEmail reports whether the address is syntactically valid. Both the
// registration and login paths validate format, so a malformed address never
// reaches the store.
func ValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// Local authenticates email+password credentials against the user store.
type Local struct {
	users store.UserStore
}

// NewLocal creates a local authenticator.
func NewLocal(users store.UserStore) *Local {
	return &Local{users: users}
}

// Authenticate verifies the credentials and returns the account on success.
//
// Failures are typed for logging and metrics: models.ErrInvalidEmail,
// models.ErrUserNotFound, models.ErrNoLocalPassword, or
// models.ErrInvalidPassword. Handlers must collapse all of them into one
// generic unauthorized response so the API does not leak which accounts
// exist. Store failures are returned wrapped and are the only errors that
// should surface as 5xx.
func (a *Local) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if !ValidEmail(email) {
		return nil, models.ErrInvalidEmail
	}

	user, err := a.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// Federated-only accounts have no verifiable hash. Reject before any
	// comparison so a legacy placeholder value can never match.
	if !user.HasLocalPassword() {
		return nil, models.ErrNoLocalPassword
	}

	if !models.VerifyPassword(password, *user.PasswordHash) {
		return nil, models.ErrInvalidPassword
	}

	return user, nil
}
