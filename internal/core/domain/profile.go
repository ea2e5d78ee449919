package domain

import "fmt"

// Kind discriminates the stored profile variants.
type Kind string

const (
	KindUser          Kind = "user"
	KindAdministrator Kind = "admin"
)

// Gender is the self-reported gender of a regular user.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// ParseGender converts a stored string into a Gender, defaulting to
// GenderOther for empty or unrecognised values.
func ParseGender(s string) Gender {
	switch Gender(s) {
	case GenderMale, GenderFemale, GenderOther:
		return Gender(s)
	default:
		return GenderOther
	}
}

// Valid reports whether g is one of the three known gender values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Identity holds the fields shared by every profile variant. ID is the
// hex-encoded ObjectID assigned by the store at registration and never
// changes afterwards. Email and Username are each unique across all records.
//
// Password is stored and compared in plaintext. This mirrors the legacy
// system this service replaces; hashing is an explicit non-goal for now.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"-"`
	Name      string `json:"name"`
	LastName  string `json:"lastname"`
	Telephone string `json:"telephone"`
}

// Profile is implemented by both account variants. Exactly one variant
// applies to any stored record.
type Profile interface {
	Kind() Kind
	Identity() *Identity
}

// User is a regular account holder.
type User struct {
	Ident  Identity `json:"identity"`
	Gender Gender   `json:"gender"`
	Card   string   `json:"card"`
}

func (u *User) Kind() Kind          { return KindUser }
func (u *User) Identity() *Identity { return &u.Ident }

// Administrator manages user accounts and carries the current account
// identifier used for billing.
type Administrator struct {
	Ident          Identity `json:"identity"`
	CurrentAccount string   `json:"current_account"`
}

func (a *Administrator) Kind() Kind          { return KindAdministrator }
func (a *Administrator) Identity() *Identity { return &a.Ident }

// String implements fmt.Stringer without leaking the password.
func (i Identity) String() string {
	return fmt.Sprintf("profile(id=%s username=%s)", i.ID, i.Username)
}
