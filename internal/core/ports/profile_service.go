package ports

import (
	"context"

	"github.com/sandia/users-manager/internal/core/domain"
)

// ProfileService exposes the operations consumed by the transport layer.
type ProfileService interface {
	// Register validates credential uniqueness and persists the candidate,
	// assigning the generated id back onto it.
	Register(ctx context.Context, candidate *domain.User) (*domain.User, error)

	// Login authenticates by email-or-username plus password. A failed
	// match returns (nil, nil, nil); on success the profile is stored in a
	// fresh session and both are returned.
	Login(ctx context.Context, credential, password string) (domain.Profile, *Session, error)

	// Logout ends the session with the given id. Unknown ids are a no-op.
	Logout(ctx context.Context, sessionID string) error

	// CurrentProfile returns the profile attached to a live session, or
	// (nil, nil) when the session is unknown or expired.
	CurrentProfile(ctx context.Context, sessionID string) (domain.Profile, error)

	// ListUsers returns all user-variant profiles.
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// UpdateUser replaces the mutable profile fields of the record with the
	// same id and reports whether anything actually changed.
	UpdateUser(ctx context.Context, user *domain.User) (bool, error)

	// DeleteUser removes a profile by id and reports whether a record was
	// actually removed.
	DeleteUser(ctx context.Context, id string) (bool, error)
}
