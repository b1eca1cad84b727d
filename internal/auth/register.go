package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inkpad/inkpad/pkg/models"
	"github.com/inkpad/inkpad/pkg/store"
)

// MsgInvalidEmail is the validation message for a malformed email address.
const MsgInvalidEmail = "Invalid email format"

// ValidationError carries every violated registration rule, in the order
// they are checked: email format first, then the password policy.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// Registrar creates local accounts.
type Registrar struct {
	users store.UserStore
	cost  int
}

// NewRegistrar creates a registrar hashing with the given bcrypt cost.
// A cost of 0 selects the default.
func NewRegistrar(users store.UserStore, cost int) *Registrar {
	if cost == 0 {
		cost = models.DefaultBcryptCost
	}
	return &Registrar{users: users, cost: cost}
}

// Register validates, hashes, and inserts a new local account.
//
// Returns *ValidationError with all violated rules, models.ErrDuplicateUser
// on conflict, or a wrapped store error. The pre-insert existence check is
// only a fast path; the unique index on email is what actually guards two
// concurrent registrations, surfacing as ErrDuplicateUser at insert time.
func (r *Registrar) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = models.NormalizeEmail(email)

	var violations []string
	if !ValidEmail(email) {
		violations = append(violations, MsgInvalidEmail)
	}
	violations = append(violations, models.ValidatePassword(password)...)
	if len(violations) > 0 {
		return nil, &ValidationError{Errors: violations}
	}

	if _, err := r.users.GetUserByEmail(ctx, email); err == nil {
		return nil, models.ErrDuplicateUser
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := models.HashPasswordWithCost(password, r.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: &hash,
		Provider:     string(models.ProviderLocal),
	}
	if err := r.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
