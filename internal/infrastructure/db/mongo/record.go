package mongo

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sandia/users-manager/internal/core/domain"
)

// profileRecord is the flat document shape persisted to the users
// collection. Every variant shares this one schema; the kind field
// discriminates them explicitly. Records written by the legacy system lack
// kind, so decoding falls back to field presence: gender marks a user,
// current_account marks an administrator.
type profileRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Kind           string             `bson:"kind,omitempty"`
	Email          string             `bson:"email"`
	Username       string             `bson:"username"`
	Password       string             `bson:"password"`
	Name           string             `bson:"name"`
	LastName       string             `bson:"lastname"`
	Telephone      string             `bson:"telephone"`
	Gender         string             `bson:"gender,omitempty"`
	Card           string             `bson:"card,omitempty"`
	CurrentAccount string             `bson:"current_account,omitempty"`
}

func recordFromUser(u *domain.User) profileRecord {
	return profileRecord{
		Kind:      string(domain.KindUser),
		Email:     u.Ident.Email,
		Username:  u.Ident.Username,
		Password:  u.Ident.Password,
		Name:      u.Ident.Name,
		LastName:  u.Ident.LastName,
		Telephone: u.Ident.Telephone,
		Gender:    string(u.Gender),
		Card:      u.Card,
	}
}

func recordFromAdministrator(a *domain.Administrator) profileRecord {
	return profileRecord{
		Kind:           string(domain.KindAdministrator),
		Email:          a.Ident.Email,
		Username:       a.Ident.Username,
		Password:       a.Ident.Password,
		Name:           a.Ident.Name,
		LastName:       a.Ident.LastName,
		Telephone:      a.Ident.Telephone,
		CurrentAccount: a.CurrentAccount,
	}
}

// toProfile reconstructs the proper variant. Records that match no known
// variant are reported with ok=false and skipped by callers; the flat
// schema has no way to represent them.
func (r profileRecord) toProfile() (profile domain.Profile, ok bool) {
	switch domain.Kind(r.Kind) {
	case domain.KindUser:
		return r.toUser(), true
	case domain.KindAdministrator:
		return r.toAdministrator(), true
	}

	// Legacy record without a discriminator.
	if r.Gender != "" {
		return r.toUser(), true
	}
	if r.CurrentAccount != "" {
		return r.toAdministrator(), true
	}
	return nil, false
}

func (r profileRecord) identity() domain.Identity {
	return domain.Identity{
		ID:        r.ID.Hex(),
		Email:     r.Email,
		Username:  r.Username,
		Password:  r.Password,
		Name:      r.Name,
		LastName:  r.LastName,
		Telephone: r.Telephone,
	}
}

func (r profileRecord) toUser() *domain.User {
	return &domain.User{
		Ident:  r.identity(),
		Gender: domain.ParseGender(r.Gender),
		Card:   r.Card,
	}
}

func (r profileRecord) toAdministrator() *domain.Administrator {
	return &domain.Administrator{
		Ident:          r.identity(),
		CurrentAccount: r.CurrentAccount,
	}
}
