package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Store.Load when the session does not exist or
// has expired.
var ErrNotFound = errors.New("session not found")

// Supported session store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Store holds serialized session payloads under opaque session IDs.
// Implementations must treat Delete as idempotent.
type Store interface {
	// Save persists the session payload under sid with the given lifetime.
	Save(ctx context.Context, sid string, data Data, ttl time.Duration) error

	// Load retrieves the payload for sid. Expired or unknown sessions
	// return ErrNotFound.
	Load(ctx context.Context, sid string) (Data, error)

	// Delete removes the session. Deleting an unknown session is a no-op.
	Delete(ctx context.Context, sid string) error
}

// NewStore creates a session store from configuration: "memory" (default)
// or "redis".
func NewStore(cfg Config) (Store, error) {
	switch cfg.Store {
	case "", StoreMemory:
		return NewMemoryStore(), nil
	case StoreRedis:
		return NewRedisStore(cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.Store)
	}
}
