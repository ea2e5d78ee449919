package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx
// responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type registerRequest struct {
	Email     string `json:"email"     validate:"required,email"`
	Username  string `json:"username"  validate:"required,min=3"`
	Password  string `json:"password"  validate:"required,min=8"`
	Name      string `json:"name"      validate:"required"`
	LastName  string `json:"lastname"  validate:"required"`
	Telephone string `json:"telephone" validate:"required"`
	Gender    string `json:"gender"    validate:"required,oneof=MALE FEMALE OTHER"`
	Card      string `json:"card"      validate:"required"`
}

type loginRequest struct {
	// Credential is the email or the username; both are accepted.
	Credential string `json:"credential" validate:"required"`
	Password   string `json:"password"   validate:"required"`
}

type updateUserRequest struct {
	Password  string `json:"password"  validate:"required,min=8"`
	Name      string `json:"name"      validate:"required"`
	LastName  string `json:"lastname"  validate:"required"`
	Telephone string `json:"telephone" validate:"required"`
	Gender    string `json:"gender"    validate:"required,oneof=MALE FEMALE OTHER"`
	Card      string `json:"card"      validate:"required"`
}

// --- Response types ---

// profileResponse is the flat JSON shape shared by both variants. Gender
// and card are present only for users, current_account only for
// administrators.
type profileResponse struct {
	ID             string `json:"id"`
	Kind           string `json:"kind"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	LastName       string `json:"lastname"`
	Telephone      string `json:"telephone"`
	Gender         string `json:"gender,omitempty"`
	Card           string `json:"card,omitempty"`
	CurrentAccount string `json:"current_account,omitempty"`
}

type registerResponse struct {
	Profile profileResponse `json:"profile"`
}

type loginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Profile   profileResponse `json:"profile"`
}

type listUsersResponse struct {
	Users []profileResponse `json:"users"`
	Count int               `json:"count"`
}

type updateUserResponse struct {
	Modified bool `json:"modified"`
}

type deleteUserResponse struct {
	Deleted bool `json:"deleted"`
}

type messageResponse struct {
	Message string `json:"message"`
}
