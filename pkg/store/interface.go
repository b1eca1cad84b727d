package store

import (
	"context"

	"github.com/inkpad/inkpad/pkg/models"
)

// UserStore is the credential store consumed by the authenticators and the
// session resolver. "Not found" is reported as models.ErrUserNotFound, never
// as a nil row.
type UserStore interface {
	// GetUserByEmail retrieves a user by normalized email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by its numeric ID.
	GetUserByID(ctx context.Context, id uint) (*models.User, error)

	// CreateUser inserts a new user. A unique-index violation on email is
	// reported as models.ErrDuplicateUser; this is the authoritative conflict
	// signal for concurrent registrations.
	CreateUser(ctx context.Context, user *models.User) error

	// ListUsers returns all users.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// DeleteUser removes a user by ID.
	DeleteUser(ctx context.Context, id uint) error
}

// NoteStore is the note collaborator behind the authorization gate. Every
// operation is scoped to the owning user.
type NoteStore interface {
	// ListNotes returns the user's notes, newest first, excluding deleted ones.
	ListNotes(ctx context.Context, userID uint) ([]*models.Note, error)

	// CreateNote inserts a new note for the user.
	CreateNote(ctx context.Context, note *models.Note) error

	// DeleteNote soft-deletes a note owned by the user. Returns
	// models.ErrNoteNotFound when the note does not exist or belongs to
	// someone else.
	DeleteNote(ctx context.Context, noteID, userID uint) error
}

// Store combines all store capabilities plus a connectivity probe.
type Store interface {
	UserStore
	NoteStore

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error
}

var _ Store = (*GORMStore)(nil)
