package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sandia/users-manager/internal/core/domain"
	"github.com/sandia/users-manager/internal/core/ports"
)

const defaultSessionTTL = 24 * time.Hour

// SessionStore is the Redis-backed ports.SessionStore. Sessions survive
// process restarts and are shared between replicas; expiry is delegated to
// the key TTL. Key format: session:<id>
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
// A non-positive ttl falls back to 24h.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{client: client, ttl: ttl}
}

// sessionRecord flattens both profile variants into one JSON shape, the
// same unified-record approach the users collection uses. The password is
// deliberately not carried into the session.
type sessionRecord struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	ProfileID      string    `json:"profile_id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	LastName       string    `json:"lastname"`
	Telephone      string    `json:"telephone"`
	Gender         string    `json:"gender,omitempty"`
	Card           string    `json:"card,omitempty"`
	CurrentAccount string    `json:"current_account,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

func (s *SessionStore) Create(ctx context.Context, profile domain.Profile) (*ports.Session, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}
	id := hex.EncodeToString(b)

	now := time.Now().UTC()
	rec := recordFromProfile(id, profile, now, now.Add(s.ttl))

	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(id), payload, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &ports.Session{
		ID:        id,
		Profile:   profile,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*ports.Session, error) {
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	profile, ok := rec.toProfile()
	if !ok {
		// Unknown variant in storage: treat as absent.
		return nil, nil
	}

	return &ports.Session{
		ID:        rec.ID,
		Profile:   profile,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *SessionStore) key(id string) string {
	return "session:" + id
}

func recordFromProfile(id string, profile domain.Profile, createdAt, expiresAt time.Time) sessionRecord {
	ident := profile.Identity()
	rec := sessionRecord{
		ID:        id,
		Kind:      string(profile.Kind()),
		ProfileID: ident.ID,
		Email:     ident.Email,
		Username:  ident.Username,
		Name:      ident.Name,
		LastName:  ident.LastName,
		Telephone: ident.Telephone,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}

	switch p := profile.(type) {
	case *domain.User:
		rec.Gender = string(p.Gender)
		rec.Card = p.Card
	case *domain.Administrator:
		rec.CurrentAccount = p.CurrentAccount
	}
	return rec
}

func (r sessionRecord) toProfile() (domain.Profile, bool) {
	ident := domain.Identity{
		ID:        r.ProfileID,
		Email:     r.Email,
		Username:  r.Username,
		Name:      r.Name,
		LastName:  r.LastName,
		Telephone: r.Telephone,
	}

	switch domain.Kind(r.Kind) {
	case domain.KindUser:
		return &domain.User{Ident: ident, Gender: domain.ParseGender(r.Gender), Card: r.Card}, true
	case domain.KindAdministrator:
		return &domain.Administrator{Ident: ident, CurrentAccount: r.CurrentAccount}, true
	default:
		return nil, false
	}
}
