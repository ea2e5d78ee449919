package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/sandia/users-manager/internal/core/domain"
	"github.com/sandia/users-manager/internal/core/ports"
)

type stubProfileService struct {
	registerFn func(ctx context.Context, candidate *domain.User) (*domain.User, error)
	loginFn    func(ctx context.Context, credential, password string) (domain.Profile, *ports.Session, error)
	listFn     func(ctx context.Context) ([]*domain.User, error)
	updateFn   func(ctx context.Context, user *domain.User) (bool, error)
	deleteFn   func(ctx context.Context, id string) (bool, error)
	currentFn  func(ctx context.Context, sessionID string) (domain.Profile, error)
	logoutFn   func(ctx context.Context, sessionID string) error
}

func (s *stubProfileService) Register(ctx context.Context, candidate *domain.User) (*domain.User, error) {
	return s.registerFn(ctx, candidate)
}

func (s *stubProfileService) Login(ctx context.Context, credential, password string) (domain.Profile, *ports.Session, error) {
	return s.loginFn(ctx, credential, password)
}

func (s *stubProfileService) Logout(ctx context.Context, sessionID string) error {
	if s.logoutFn != nil {
		return s.logoutFn(ctx, sessionID)
	}
	return nil
}

func (s *stubProfileService) CurrentProfile(ctx context.Context, sessionID string) (domain.Profile, error) {
	if s.currentFn != nil {
		return s.currentFn(ctx, sessionID)
	}
	return nil, nil
}

func (s *stubProfileService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubProfileService) UpdateUser(ctx context.Context, user *domain.User) (bool, error) {
	return s.updateFn(ctx, user)
}

func (s *stubProfileService) DeleteUser(ctx context.Context, id string) (bool, error) {
	return s.deleteFn(ctx, id)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

const registerBody = `{
	"email": "alice@example.com",
	"username": "alice",
	"password": "Ab123456",
	"name": "Alice",
	"lastname": "Smith",
	"telephone": "600111222",
	"gender": "FEMALE",
	"card": "4111111111111111"
}`

func TestProfileHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubProfileService{
		registerFn: func(_ context.Context, candidate *domain.User) (*domain.User, error) {
			if candidate.Ident.Username != "alice" || candidate.Gender != domain.GenderFemale {
				t.Fatalf("unexpected candidate: %+v", candidate)
			}
			candidate.Ident.ID = "0123456789abcdef01234567"
			return candidate, nil
		},
	}
	h := NewProfileHandler(stub, "secret")

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(registerBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	profile, ok := resp["profile"].(map[string]any)
	if !ok {
		t.Fatalf("expected profile in response")
	}
	if profile["id"] != "0123456789abcdef01234567" || profile["kind"] != "user" {
		t.Fatalf("unexpected profile payload: %+v", profile)
	}
	if _, leaked := profile["password"]; leaked {
		t.Fatalf("password must never appear in responses")
	}
}

func TestProfileHandler_Register_Duplicate(t *testing.T) {
	e := newTestEcho()
	e.HTTPErrorHandler = testErrorHandler()
	stub := &stubProfileService{
		registerFn: func(_ context.Context, _ *domain.User) (*domain.User, error) {
			return nil, &domain.DuplicateCredentialError{Kind: domain.CredentialEmail}
		},
	}
	h := NewProfileHandler(stub, "secret")

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(registerBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "email already exists") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestProfileHandler_Register_ValidationFailure(t *testing.T) {
	e := newTestEcho()
	e.HTTPErrorHandler = testErrorHandler()
	stub := &stubProfileService{
		registerFn: func(_ context.Context, _ *domain.User) (*domain.User, error) {
			t.Fatalf("service must not be called on invalid input")
			return nil, nil
		},
	}
	h := NewProfileHandler(stub, "secret")

	body := `{"email":"not-an-email","username":"al","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestProfileHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	expires := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	stub := &stubProfileService{
		loginFn: func(_ context.Context, credential, password string) (domain.Profile, *ports.Session, error) {
			if credential != "admin@sandia.com" || password != "Ab123456" {
				t.Fatalf("unexpected args: %s %s", credential, password)
			}
			admin := &domain.Administrator{
				Ident:          domain.Identity{ID: "0123456789abcdef01234567", Email: credential, Username: "admin"},
				CurrentAccount: "1234123412341234",
			}
			return admin, &ports.Session{ID: "sess-1", Profile: admin, ExpiresAt: expires}, nil
		},
	}
	h := NewProfileHandler(stub, "secret")

	body := `{"credential":"admin@sandia.com","password":"Ab123456"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatalf("expected token in response")
	}
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sid"] != "sess-1" || claims["kind"] != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	profile, _ := resp["profile"].(map[string]any)
	if profile["current_account"] != "1234123412341234" {
		t.Fatalf("unexpected profile payload: %+v", profile)
	}
}

func TestProfileHandler_Login_NoMatchIs401(t *testing.T) {
	e := newTestEcho()
	stub := &stubProfileService{
		loginFn: func(_ context.Context, _, _ string) (domain.Profile, *ports.Session, error) {
			return nil, nil, nil
		},
	}
	h := NewProfileHandler(stub, "secret")

	body := `{"credential":"admin@sandia.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("no-match must not bubble an error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestProfileHandler_ListUsers(t *testing.T) {
	e := newTestEcho()
	stub := &stubProfileService{
		listFn: func(_ context.Context) ([]*domain.User, error) {
			return []*domain.User{
				{Ident: domain.Identity{ID: "0123456789abcdef01234567", Username: "alice"}, Gender: domain.GenderFemale},
			}, nil
		},
	}
	h := NewProfileHandler(stub, "secret")

	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListUsers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["count"] != float64(1) {
		t.Fatalf("expected count=1, got %v", resp["count"])
	}
}

func TestProfileHandler_UpdateUser_NotFound(t *testing.T) {
	e := newTestEcho()
	e.HTTPErrorHandler = testErrorHandler()
	stub := &stubProfileService{
		updateFn: func(_ context.Context, _ *domain.User) (bool, error) {
			return false, domain.ErrProfileNotFound
		},
	}
	h := NewProfileHandler(stub, "secret")

	body := `{
		"password": "Ab123456",
		"name": "Alice",
		"lastname": "Smith",
		"telephone": "699000111",
		"gender": "FEMALE",
		"card": "4111111111111111"
	}`
	req := httptest.NewRequest(http.MethodPut, "/v1/users/ffffffffffffffffffffffff", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("ffffffffffffffffffffffff")

	if err := h.UpdateUser(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestProfileHandler_DeleteUser_MalformedID(t *testing.T) {
	e := newTestEcho()
	e.HTTPErrorHandler = testErrorHandler()
	stub := &stubProfileService{
		deleteFn: func(_ context.Context, _ string) (bool, error) {
			return false, domain.ErrInvalidProfileID
		},
	}
	h := NewProfileHandler(stub, "secret")

	req := httptest.NewRequest(http.MethodDelete, "/v1/users/garbage", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("garbage")

	if err := h.DeleteUser(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestProfileHandler_DeleteUser_AbsentID(t *testing.T) {
	e := newTestEcho()
	stub := &stubProfileService{
		deleteFn: func(_ context.Context, _ string) (bool, error) {
			return false, nil
		},
	}
	h := NewProfileHandler(stub, "secret")

	req := httptest.NewRequest(http.MethodDelete, "/v1/users/ffffffffffffffffffffffff", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("ffffffffffffffffffffffff")

	if err := h.DeleteUser(c); err != nil {
		t.Fatalf("absent id must not be an error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"deleted":false`) {
		t.Fatalf("expected deleted=false, got %s", rec.Body.String())
	}
}

func TestProfileHandler_Me_SessionExpired(t *testing.T) {
	e := newTestEcho()
	e.HTTPErrorHandler = testErrorHandler()
	stub := &stubProfileService{
		currentFn: func(_ context.Context, _ string) (domain.Profile, error) {
			return nil, nil
		},
	}
	h := NewProfileHandler(stub, "secret")

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("sid", "sess-1")

	if err := h.Me(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

// testErrorHandler mirrors the status mapping the router-level error
// handler installs, so handler tests observe the same codes as production.
func testErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		var he *echo.HTTPError
		var dup *domain.DuplicateCredentialError
		switch {
		case errors.As(err, &he):
			code = he.Code
		case errors.As(err, &dup):
			code = http.StatusConflict
		case errors.Is(err, domain.ErrProfileNotFound):
			code = http.StatusNotFound
		case errors.Is(err, domain.ErrInvalidProfileID):
			code = http.StatusBadRequest
		}
		_ = c.JSON(code, map[string]string{"error": err.Error()})
	}
}
