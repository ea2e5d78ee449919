package ports

import (
	"context"

	"github.com/sandia/users-manager/internal/core/domain"
)

// CredentialExistence reports which credentials of a registration candidate
// already belong to stored records.
type CredentialExistence struct {
	Email    bool
	Username bool
}

// UpdateResult carries the outcome of an update: whether a record matched
// the id at all, and whether any field value actually changed.
type UpdateResult struct {
	Matched  bool
	Modified bool
}

// ProfileRepository defines persistence operations over the users collection.
type ProfileRepository interface {
	// CheckCredentials reports which of email/username already exist.
	// Failures are wrapped as domain.ErrLookup.
	CheckCredentials(ctx context.Context, email, username string) (CredentialExistence, error)

	// InsertUser persists a new user record and returns the generated id.
	// A unique-index violation surfaces as *domain.DuplicateCredentialError;
	// other failures as domain.ErrPersistence.
	InsertUser(ctx context.Context, user *domain.User) (string, error)

	// FindByCredentials matches a record whose email or username equals
	// credential and whose password matches exactly. A missing record is
	// (nil, nil), not an error. Failures are wrapped as domain.ErrAuth.
	FindByCredentials(ctx context.Context, credential, password string) (domain.Profile, error)

	// ListUsers returns every record of the user variant. Administrator
	// records are excluded. Failures are wrapped as domain.ErrRetrieval.
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// UpdateUser replaces the mutable fields (password, name, lastname,
	// telephone, gender, card) of the record identified by user.Ident.ID.
	// Email, username and id are never touched.
	UpdateUser(ctx context.Context, user *domain.User) (UpdateResult, error)

	// DeleteUser removes the record by id. A malformed id fails with
	// domain.ErrInvalidProfileID; a well-formed but absent id returns
	// (false, nil).
	DeleteUser(ctx context.Context, id string) (bool, error)
}
