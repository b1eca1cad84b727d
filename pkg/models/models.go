// Package models defines the persisted entities and credential primitives
// for the Inkpad backend.
package models

// AllModels returns all GORM models for auto-migration.
func AllModels() []any {
	return []any{
		&User{},
		&Note{},
	}
}
