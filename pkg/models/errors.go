package models

import "errors"

// Common errors for account and note operations.
var (
	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("email already registered")

	// Authentication errors
	ErrInvalidPassword = errors.New("invalid password")
	ErrNoLocalPassword = errors.New("account has no local password")
	ErrInvalidEmail    = errors.New("invalid email address")

	// Note errors
	ErrNoteNotFound = errors.New("note not found")
)
