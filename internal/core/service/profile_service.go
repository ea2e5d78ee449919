package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandia/users-manager/internal/core/domain"
	"github.com/sandia/users-manager/internal/core/ports"
)

// ProfileService implements registration, authentication and user-profile
// management on top of a ProfileRepository.
type ProfileService struct {
	repo     ports.ProfileRepository
	sessions ports.SessionStore
	audit    ports.AuditSink // optional, nil disables auditing
	log      zerolog.Logger
}

func NewProfileService(repo ports.ProfileRepository, sessions ports.SessionStore, audit ports.AuditSink, log zerolog.Logger) *ProfileService {
	return &ProfileService{repo: repo, sessions: sessions, audit: audit, log: log}
}

// Register checks credential uniqueness and persists the candidate. The
// existence pre-check is advisory only: two concurrent registrations can
// both pass it, so the unique indexes on email and username remain the
// authoritative guard and an index violation at insert time also surfaces
// as a DuplicateCredentialError.
func (s *ProfileService) Register(ctx context.Context, candidate *domain.User) (*domain.User, error) {
	existing, err := s.repo.CheckCredentials(ctx, candidate.Ident.Email, candidate.Ident.Username)
	if err != nil {
		return nil, err
	}

	switch {
	case existing.Email && existing.Username:
		return nil, &domain.DuplicateCredentialError{Kind: domain.CredentialBoth}
	case existing.Email:
		return nil, &domain.DuplicateCredentialError{Kind: domain.CredentialEmail}
	case existing.Username:
		return nil, &domain.DuplicateCredentialError{Kind: domain.CredentialUsername}
	}

	if !candidate.Gender.Valid() {
		candidate.Gender = domain.GenderOther
	}

	id, err := s.repo.InsertUser(ctx, candidate)
	if err != nil {
		s.log.Error().Err(err).Str("username", candidate.Ident.Username).Msg("failed to register profile")
		return nil, err
	}
	candidate.Ident.ID = id

	s.log.Info().Str("profile_id", id).Str("username", candidate.Ident.Username).Msg("profile registered")
	s.enqueueAudit(id, candidate.Ident.Username, ports.AuditRegister)

	return candidate, nil
}

// Login matches a record by email-or-username and exact password. A failed
// match is a normal (nil, nil, nil) return, never an error; only a store
// failure is reported. On success a new session is created in the injected
// session store.
func (s *ProfileService) Login(ctx context.Context, credential, password string) (domain.Profile, *ports.Session, error) {
	profile, err := s.repo.FindByCredentials(ctx, credential, password)
	if err != nil {
		return nil, nil, err
	}
	if profile == nil {
		s.log.Debug().Str("credential", credential).Msg("login rejected: no matching record")
		return nil, nil, nil
	}

	session, err := s.sessions.Create(ctx, profile)
	if err != nil {
		return nil, nil, domain.WrapStore(domain.ErrAuth, err)
	}

	ident := profile.Identity()
	s.log.Info().Str("profile_id", ident.ID).Str("kind", string(profile.Kind())).Msg("login succeeded")
	s.enqueueAudit(ident.ID, ident.Username, ports.AuditLogin)

	return profile, session, nil
}

// Logout ends the given session.
func (s *ProfileService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// CurrentProfile resolves a session id to its authenticated profile.
// Unknown and expired sessions are (nil, nil).
func (s *ProfileService) CurrentProfile(ctx context.Context, sessionID string) (domain.Profile, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, domain.WrapStore(domain.ErrAuth, err)
	}
	if session == nil {
		return nil, nil
	}
	return session.Profile, nil
}

// ListUsers returns all user-variant profiles. Administrator records are
// never included.
func (s *ProfileService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list users")
		return nil, err
	}
	return users, nil
}

// UpdateUser replaces the mutable profile fields of the record identified
// by the user's id. Matching zero records is ErrProfileNotFound; matching
// without modifying reports false without error.
func (s *ProfileService) UpdateUser(ctx context.Context, user *domain.User) (bool, error) {
	if !user.Gender.Valid() {
		user.Gender = domain.GenderOther
	}

	res, err := s.repo.UpdateUser(ctx, user)
	if err != nil {
		return false, err
	}
	if !res.Matched {
		return false, domain.ErrProfileNotFound
	}

	s.log.Info().Str("profile_id", user.Ident.ID).Bool("modified", res.Modified).Msg("profile updated")
	s.enqueueAudit(user.Ident.ID, user.Ident.Username, ports.AuditUpdate)

	return res.Modified, nil
}

// DeleteUser removes the record by id, reporting whether anything was
// actually deleted.
func (s *ProfileService) DeleteUser(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.DeleteUser(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info().Str("profile_id", id).Msg("profile deleted")
		s.enqueueAudit(id, "", ports.AuditDelete)
	}
	return deleted, nil
}

func (s *ProfileService) enqueueAudit(profileID, username, action string) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(ports.AuditEntry{
		ProfileID: profileID,
		Username:  username,
		Action:    action,
		Timestamp: time.Now().UTC(),
	})
}
