package models

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the default cost parameter for bcrypt hashing.
// Cost 10 provides a good balance between security and performance.
const DefaultBcryptCost = 10

// Password length constraints.
const (
	// MinPasswordLength is the minimum required password length.
	MinPasswordLength = 8

	// MaxPasswordLength is the maximum allowed password length.
	// bcrypt silently truncates at 72 bytes, so we enforce this limit.
	MaxPasswordLength = 72
)

// Password policy violation messages, in the order they are reported.
const (
	MsgPasswordTooShort   = "Password must be at least 8 characters"
	MsgPasswordTooLong    = "Password must be at most 72 characters"
	MsgPasswordNeedsLower = "Password must contain a lowercase letter"
	MsgPasswordNeedsUpper = "Password must contain an uppercase letter"
	MsgPasswordNeedsDigit = "Password must contain a digit"
)

// HashPassword creates a bcrypt hash of the given password using the
// default cost.
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, DefaultBcryptCost)
}

// HashPasswordWithCost creates a bcrypt hash with a custom cost.
// Higher cost values increase security but also increase hashing time.
// Valid cost values are between 4 and 31.
func HashPasswordWithCost(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks if a password matches a bcrypt hash.
// A malformed hash verifies as false rather than returning an error.
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ValidatePassword checks a password against the registration policy and
// returns every violated rule, in a fixed order. An empty slice means the
// password is acceptable.
func ValidatePassword(password string) []string {
	var violations []string

	if len(password) < MinPasswordLength {
		violations = append(violations, MsgPasswordTooShort)
	}
	if len(password) > MaxPasswordLength {
		violations = append(violations, MsgPasswordTooLong)
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLower {
		violations = append(violations, MsgPasswordNeedsLower)
	}
	if !hasUpper {
		violations = append(violations, MsgPasswordNeedsUpper)
	}
	if !hasDigit {
		violations = append(violations, MsgPasswordNeedsDigit)
	}

	return violations
}

// NormalizeEmail canonicalizes an email address for storage and lookup.
// Addresses are compared case-insensitively everywhere, so both write and
// read paths must normalize identically.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
