package auth

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/inkpad/inkpad/pkg/models"
)

func TestRegister(t *testing.T) {
	users := newFakeUserStore()
	registrar := NewRegistrar(users, 4)
	ctx := context.Background()

	t.Run("success normalizes and hashes", func(t *testing.T) {
		user, err := registrar.Register(ctx, "  Alice@Example.COM ", "Secret123")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if user.Email != "alice@example.com" {
			t.Errorf("expected normalized email, got %q", user.Email)
		}
		if user.Provider != string(models.ProviderLocal) {
			t.Errorf("expected local provider, got %q", user.Provider)
		}
		if !user.HasLocalPassword() {
			t.Fatal("expected a stored password hash")
		}
		if !models.VerifyPassword("Secret123", *user.PasswordHash) {
			t.Error("stored hash does not verify the password")
		}
		if *user.PasswordHash == "Secret123" {
			t.Error("password stored in plaintext")
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := registrar.Register(ctx, "alice@example.com", "Secret123")
		if !errors.Is(err, models.ErrDuplicateUser) {
			t.Errorf("expected ErrDuplicateUser, got %v", err)
		}
	})

	t.Run("duplicate at insert time", func(t *testing.T) {
		// Simulate losing the race: the pre-check passes but the unique
		// index rejects the insert.
		users.createErr = models.ErrDuplicateUser
		_, err := registrar.Register(ctx, "race@example.com", "Secret123")
		if !errors.Is(err, models.ErrDuplicateUser) {
			t.Errorf("expected ErrDuplicateUser, got %v", err)
		}
	})
}

func TestRegisterValidation(t *testing.T) {
	registrar := NewRegistrar(newFakeUserStore(), 4)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		want     []string
	}{
		{
			name:     "invalid email",
			email:    "not-an-email",
			password: "Secret123",
			want:     []string{MsgInvalidEmail},
		},
		{
			name:     "weak password",
			email:    "alice@example.com",
			password: "abcdefg1",
			want:     []string{models.MsgPasswordNeedsUpper},
		},
		{
			name:     "everything wrong at once",
			email:    "nope",
			password: "abc",
			want: []string{
				MsgInvalidEmail,
				models.MsgPasswordTooShort,
				models.MsgPasswordNeedsUpper,
				models.MsgPasswordNeedsDigit,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registrar.Register(ctx, tt.email, tt.password)

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if !reflect.DeepEqual(verr.Errors, tt.want) {
				t.Errorf("violations = %v, want %v", verr.Errors, tt.want)
			}
		})
	}
}
