package domain

import (
	"errors"
	"fmt"
)

// CredentialKind names which credential collided during registration.
type CredentialKind string

const (
	CredentialEmail    CredentialKind = "email"
	CredentialUsername CredentialKind = "username"
	CredentialBoth     CredentialKind = "both"
)

// DuplicateCredentialError reports that the email, the username, or both
// already belong to an existing record.
type DuplicateCredentialError struct {
	Kind CredentialKind
}

func (e *DuplicateCredentialError) Error() string {
	switch e.Kind {
	case CredentialBoth:
		return "email and username already exist"
	case CredentialUsername:
		return "username already exists"
	default:
		return "email already exists"
	}
}

var ErrProfileNotFound = errors.New("profile not found")
var ErrInvalidProfileID = errors.New("invalid profile id")

// Category sentinels. Every store failure is wrapped into exactly one of
// these at the repository boundary; no raw driver error escapes it.
var (
	ErrLookup      = errors.New("credential lookup failed")
	ErrAuth        = errors.New("authentication failed")
	ErrRetrieval   = errors.New("profile retrieval failed")
	ErrPersistence = errors.New("profile persistence failed")
)

// WrapStore attaches a category sentinel to a store error, keeping the
// driver message for logs while letting callers match with errors.Is.
func WrapStore(category, err error) error {
	return fmt.Errorf("%w: %v", category, err)
}
