//go:build integration

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/inkpad/inkpad/pkg/models"
)

// createTestStore creates an in-memory SQLite store for testing.
func createTestStore(t *testing.T) *GORMStore {
	t.Helper()
	store, err := New(&Config{
		Type: DatabaseTypeSQLite,
		SQLite: SQLiteConfig{
			Path: ":memory:",
		},
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return store
}

func newLocalUser(email, hash string) *models.User {
	return &models.User{
		Email:        email,
		PasswordHash: &hash,
		Provider:     string(models.ProviderLocal),
	}
}

func TestNew(t *testing.T) {
	t.Run("default config uses sqlite", func(t *testing.T) {
		config := &Config{}
		config.ApplyDefaults()

		if config.Type != DatabaseTypeSQLite {
			t.Errorf("expected SQLite, got %s", config.Type)
		}
	})

	t.Run("invalid config returns error", func(t *testing.T) {
		config := &Config{
			Type: "invalid",
		}
		_, err := New(config)
		if err == nil {
			t.Error("expected error for invalid config")
		}
	})

	t.Run("creates in-memory store", func(t *testing.T) {
		store := createTestStore(t)
		defer store.Close()

		if err := store.Ping(context.Background()); err != nil {
			t.Errorf("expected healthy store, got %v", err)
		}
	})
}

func TestUserOperations(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()
	ctx := context.Background()

	t.Run("create user assigns ID", func(t *testing.T) {
		user := newLocalUser("alice@example.com", "hashed-password")

		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		if user.ID == 0 {
			t.Error("expected auto-assigned user ID")
		}
	})

	t.Run("duplicate email fails", func(t *testing.T) {
		user := newLocalUser("alice@example.com", "other-hash")

		err := store.CreateUser(ctx, user)
		if !errors.Is(err, models.ErrDuplicateUser) {
			t.Errorf("expected ErrDuplicateUser, got %v", err)
		}
	})

	t.Run("duplicate email differing in case fails", func(t *testing.T) {
		user := newLocalUser("ALICE@example.com", "other-hash")

		err := store.CreateUser(ctx, user)
		if !errors.Is(err, models.ErrDuplicateUser) {
			t.Errorf("expected ErrDuplicateUser, got %v", err)
		}
	})

	t.Run("get user by email is case-insensitive", func(t *testing.T) {
		user, err := store.GetUserByEmail(ctx, "Alice@Example.COM")
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if user.Email != "alice@example.com" {
			t.Errorf("expected normalized email, got %q", user.Email)
		}
	})

	t.Run("get user by ID", func(t *testing.T) {
		created, _ := store.GetUserByEmail(ctx, "alice@example.com")

		user, err := store.GetUserByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get user by ID: %v", err)
		}
		if user.Email != "alice@example.com" {
			t.Errorf("expected alice@example.com, got %q", user.Email)
		}
	})

	t.Run("get user not found", func(t *testing.T) {
		_, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if !errors.Is(err, models.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}

		_, err = store.GetUserByID(ctx, 999999)
		if !errors.Is(err, models.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("federated user without password", func(t *testing.T) {
		user := &models.User{
			Email:    "bob@example.com",
			Provider: string(models.ProviderGoogle),
		}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("failed to create federated user: %v", err)
		}

		got, err := store.GetUserByEmail(ctx, "bob@example.com")
		if err != nil {
			t.Fatalf("failed to get federated user: %v", err)
		}
		if got.HasLocalPassword() {
			t.Error("federated user should not have a local password")
		}
	})

	t.Run("list users", func(t *testing.T) {
		users, err := store.ListUsers(ctx)
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(users) != 2 {
			t.Errorf("expected 2 users, got %d", len(users))
		}
	})

	t.Run("delete user", func(t *testing.T) {
		user, _ := store.GetUserByEmail(ctx, "bob@example.com")

		if err := store.DeleteUser(ctx, user.ID); err != nil {
			t.Fatalf("failed to delete user: %v", err)
		}

		_, err := store.GetUserByEmail(ctx, "bob@example.com")
		if !errors.Is(err, models.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound after delete, got %v", err)
		}
	})
}

func TestNoteOperations(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()
	ctx := context.Background()

	alice := newLocalUser("alice@example.com", "hash")
	bob := newLocalUser("bob@example.com", "hash")
	if err := store.CreateUser(ctx, alice); err != nil {
		t.Fatalf("failed to create alice: %v", err)
	}
	if err := store.CreateUser(ctx, bob); err != nil {
		t.Fatalf("failed to create bob: %v", err)
	}

	var first, second *models.Note

	t.Run("create notes", func(t *testing.T) {
		first = &models.Note{UserID: alice.ID, Title: "first", Content: "one"}
		second = &models.Note{UserID: alice.ID, Title: "second", Content: "two"}

		if err := store.CreateNote(ctx, first); err != nil {
			t.Fatalf("failed to create note: %v", err)
		}
		if err := store.CreateNote(ctx, second); err != nil {
			t.Fatalf("failed to create note: %v", err)
		}
	})

	t.Run("list is scoped to owner", func(t *testing.T) {
		notes, err := store.ListNotes(ctx, alice.ID)
		if err != nil {
			t.Fatalf("failed to list notes: %v", err)
		}
		if len(notes) != 2 {
			t.Fatalf("expected 2 notes, got %d", len(notes))
		}

		other, err := store.ListNotes(ctx, bob.ID)
		if err != nil {
			t.Fatalf("failed to list notes: %v", err)
		}
		if len(other) != 0 {
			t.Errorf("expected no notes for bob, got %d", len(other))
		}
	})

	t.Run("delete is soft and scoped to owner", func(t *testing.T) {
		// Bob cannot delete Alice's note
		err := store.DeleteNote(ctx, first.ID, bob.ID)
		if !errors.Is(err, models.ErrNoteNotFound) {
			t.Errorf("expected ErrNoteNotFound for foreign note, got %v", err)
		}

		if err := store.DeleteNote(ctx, first.ID, alice.ID); err != nil {
			t.Fatalf("failed to delete note: %v", err)
		}

		notes, err := store.ListNotes(ctx, alice.ID)
		if err != nil {
			t.Fatalf("failed to list notes: %v", err)
		}
		if len(notes) != 1 || notes[0].ID != second.ID {
			t.Errorf("expected only the second note to remain, got %d notes", len(notes))
		}
	})

	t.Run("delete unknown note", func(t *testing.T) {
		err := store.DeleteNote(ctx, 999999, alice.ID)
		if !errors.Is(err, models.ErrNoteNotFound) {
			t.Errorf("expected ErrNoteNotFound, got %v", err)
		}
	})
}
