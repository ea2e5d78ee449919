package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/sandia/users-manager/internal/api/metrics"
	"github.com/sandia/users-manager/internal/core/domain"
	"github.com/sandia/users-manager/internal/core/ports"
)

// ProfileHandler exposes registration, authentication and user management
// over HTTP. Session tokens are HS256 JWTs carrying the session id; the
// session store remains the source of truth for liveness.
type ProfileHandler struct {
	service   ports.ProfileService
	jwtSecret string
}

func NewProfileHandler(service ports.ProfileService, jwtSecret string) *ProfileHandler {
	return &ProfileHandler{service: service, jwtSecret: jwtSecret}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *ProfileHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.service.Register(c.Request().Context(), toCandidate(req))
	if err != nil {
		var dup *domain.DuplicateCredentialError
		if errors.As(err, &dup) {
			metrics.RegistrationDuplicatesTotal.WithLabelValues(string(dup.Kind)).Inc()
		}
		return err
	}

	metrics.RegistrationsTotal.Inc()
	return c.JSON(http.StatusCreated, registerResponse{Profile: toProfileResponse(user)})
}

// Login authenticates by email or username plus password.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials (email or username)"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *ProfileHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	profile, session, err := h.service.Login(c.Request().Context(), req.Credential, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return err
	}
	if profile == nil {
		// Wrong credentials are a normal outcome, not a server error.
		metrics.LoginsTotal.WithLabelValues("no_match").Inc()
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	}

	token, err := h.signSessionToken(session, profile.Kind())
	if err != nil {
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Profile:   toProfileResponse(profile),
	})
}

// Logout ends the caller's session.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/logout [post]
func (h *ProfileHandler) Logout(c echo.Context) error {
	sid, err := ctxSessionID(c)
	if err != nil {
		return err
	}
	if err := h.service.Logout(c.Request().Context(), sid); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "session ended"})
}

// Me returns the profile attached to the caller's session.
//
// @Summary      Current profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	sid, err := ctxSessionID(c)
	if err != nil {
		return err
	}

	profile, err := h.service.CurrentProfile(c.Request().Context(), sid)
	if err != nil {
		return err
	}
	if profile == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
	}
	return c.JSON(http.StatusOK, toProfileResponse(profile))
}

// ListUsers returns all user-variant profiles. Administrators are excluded.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listUsersResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/users [get]
func (h *ProfileHandler) ListUsers(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	resp := listUsersResponse{Users: make([]profileResponse, 0, len(users)), Count: len(users)}
	for _, u := range users {
		resp.Users = append(resp.Users, toProfileResponse(u))
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateUser replaces the mutable profile fields of one user.
//
// @Summary      Update a user profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Profile id"
// @Param        body  body      updateUserRequest  true  "Replacement field values"
// @Success      200   {object}  updateUserResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/users/{id} [put]
func (h *ProfileHandler) UpdateUser(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	modified, err := h.service.UpdateUser(c.Request().Context(), applyUpdate(c.Param("id"), req))
	if err != nil {
		return err
	}

	metrics.ProfileOpsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, updateUserResponse{Modified: modified})
}

// DeleteUser removes a user profile by id.
//
// @Summary      Delete a user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Profile id"
// @Success      200  {object}  deleteUserResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/users/{id} [delete]
func (h *ProfileHandler) DeleteUser(c echo.Context) error {
	deleted, err := h.service.DeleteUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	metrics.ProfileOpsTotal.WithLabelValues("delete").Inc()
	return c.JSON(http.StatusOK, deleteUserResponse{Deleted: deleted})
}

// signSessionToken issues the HS256 JWT handed to the client. The token
// references the session; revoking the session invalidates the token even
// before exp.
func (h *ProfileHandler) signSessionToken(session *ports.Session, kind domain.Kind) (string, error) {
	claims := jwt.MapClaims{
		"sid":  session.ID,
		"kind": string(kind),
		"exp":  session.ExpiresAt.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(h.jwtSecret))
}
