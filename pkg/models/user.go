package models

import "time"

// AuthProvider identifies how an account was created.
type AuthProvider string

const (
	// ProviderLocal is an account registered with an email and password.
	ProviderLocal AuthProvider = "local"
	// ProviderGoogle is an account provisioned through Google sign-in.
	ProviderGoogle AuthProvider = "google"
)

// legacySentinelHash is the placeholder some older rows carry in place of a
// real bcrypt hash for accounts provisioned through federation. It must never
// be accepted as a verifiable credential.
const legacySentinelHash = "google"

// User represents an Inkpad account.
//
// The numeric ID is assigned by the store and immutable. Emails are stored
// lowercase and carry a unique index; the index is the authoritative guard
// against duplicate registration, the handler-level existence check is only
// a fast path.
//
// PasswordHash is nil for accounts provisioned through federation. Such
// accounts must never authenticate through the local password path.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash *string   `json:"-"`
	Provider     string    `gorm:"default:local;size:50" json:"provider"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// HasLocalPassword reports whether the account has a verifiable local
// password hash. Nil and empty hashes mean "no password set", as does the
// legacy literal marker written by old federated provisioning.
func (u *User) HasLocalPassword() bool {
	if u.PasswordHash == nil || *u.PasswordHash == "" {
		return false
	}
	return *u.PasswordHash != legacySentinelHash
}

// Note is a user-owned note. Deletion is logical: deleted notes stay in the
// table but are excluded from listings.
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	Title     string    `gorm:"size:255" json:"title"`
	Content   string    `json:"content"`
	Deleted   bool      `gorm:"default:false" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for Note.
func (Note) TableName() string {
	return "notes"
}
