package ports

import (
	"context"
	"time"

	"github.com/sandia/users-manager/internal/core/domain"
)

// Session is one authenticated presence. Multiple sessions may be live at
// once; there is no process-wide "current" profile.
type Session struct {
	ID        string
	Profile   domain.Profile
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionStore holds authenticated sessions keyed by session id.
type SessionStore interface {
	// Create registers a new session for the given profile.
	Create(ctx context.Context, profile domain.Profile) (*Session, error)

	// Get retrieves a live session. An unknown or expired id is (nil, nil).
	Get(ctx context.Context, id string) (*Session, error)

	// Delete ends a session. Deleting an unknown id is a no-op.
	Delete(ctx context.Context, id string) error
}
