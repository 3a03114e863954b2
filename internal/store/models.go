package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a snapshot key has never been written.
var ErrNotFound = errors.New("not found")

type User struct {
	ID             int64     `json:"id"`
	ExternalUserID string    `json:"external_user_id"`
	PasswordHash   string    `json:"-"` // Do not expose this in JSON responses
	CreatedAt      time.Time `json:"created_at"`
}

// Snapshot is one serialized state container, keyed by container name.
type Snapshot struct {
	Key       string    `json:"key"`
	Payload   []byte    `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Persister saves and restores whole-container snapshots. Each state
// container writes its full state under its own key after every mutation.
type Persister interface {
	SaveSnapshot(ctx context.Context, key string, payload []byte) error
	LoadSnapshot(ctx context.Context, key string) ([]byte, error)
}
