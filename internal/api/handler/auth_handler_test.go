package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/fooddelivery/delivery-platform/internal/core/domain"
	"github.com/fooddelivery/delivery-platform/internal/core/ports"
)

type stubAuthService struct {
	authenticateFn  func(ctx context.Context, identifier, password string) (*ports.AuthResult, error)
	registerFn      func(ctx context.Context, in ports.RegisterInput) (string, error)
	confirmFn       func(ctx context.Context, token string) error
	forgotFn        func(ctx context.Context, email string) error
	validateResetFn func(ctx context.Context, token string) error
	resetPasswordFn func(ctx context.Context, token, newPassword string) error
}

func (s *stubAuthService) Authenticate(ctx context.Context, identifier, password string) (*ports.AuthResult, error) {
	return s.authenticateFn(ctx, identifier, password)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Confirm(ctx context.Context, token string) error {
	return s.confirmFn(ctx, token)
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, email string) error {
	return s.forgotFn(ctx, email)
}

func (s *stubAuthService) ValidateResetToken(ctx context.Context, token string) error {
	return s.validateResetFn(ctx, token)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return s.resetPasswordFn(ctx, token, newPassword)
}

type stubGoogleService struct {
	processFn func(ctx context.Context, in ports.GoogleAuthInput) (*ports.AuthResult, error)
}

func (s *stubGoogleService) Process(ctx context.Context, in ports.GoogleAuthInput) (*ports.AuthResult, error) {
	return s.processFn(ctx, in)
}

func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_SignIn_Success(t *testing.T) {
	stub := &stubAuthService{
		authenticateFn: func(_ context.Context, identifier, password string) (*ports.AuthResult, error) {
			if identifier != "alice" || password != "s3cret1" {
				t.Fatalf("unexpected args: %s %s", identifier, password)
			}
			return &ports.AuthResult{
				Token: "signed-token",
				User:  &domain.User{ID: "u1", Username: "alice", Roles: []string{domain.RoleCustomer}},
			}, nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newTestContext(t, http.MethodPost, "/api/auth/signin", `{"username":"alice","password":"s3cret1"}`)
	if err := h.SignIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "signed-token" {
		t.Fatalf("unexpected token: %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "alice" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
	if _, leaked := user["PasswordHash"]; leaked {
		t.Fatalf("credential hash must never serialize")
	}
}

func TestAuthHandler_SignIn_EmailIdentifier(t *testing.T) {
	stub := &stubAuthService{
		authenticateFn: func(_ context.Context, identifier, _ string) (*ports.AuthResult, error) {
			if identifier != "alice@example.com" {
				t.Fatalf("expected email identifier, got %q", identifier)
			}
			return &ports.AuthResult{Token: "x", User: &domain.User{Username: "alice"}}, nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newTestContext(t, http.MethodPost, "/api/auth/signin", `{"email":"alice@example.com","password":"s3cret1"}`)
	if err := h.SignIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_SignIn_PropagatesDomainError(t *testing.T) {
	stub := &stubAuthService{
		authenticateFn: func(_ context.Context, _, _ string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, nil)

	c, _ := newTestContext(t, http.MethodPost, "/api/auth/signin", `{"username":"alice","password":"wrong!"}`)
	if err := h.SignIn(c); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected domain error to propagate, got %v", err)
	}
}

func TestAuthHandler_SignUp_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (string, error) {
			if in.Username != "bob" || in.Email != "bob@example.com" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return "User registered successfully! Please check your email to verify your account.", nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newTestContext(t, http.MethodPost, "/api/auth/signup",
		`{"username":"bob","email":"bob@example.com","password":"s3cret1","first_name":"Bob"}`)
	if err := h.SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "verify your account") {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestAuthHandler_SignUp_RejectsInvalidPayload(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(_ context.Context, _ ports.RegisterInput) (string, error) {
			t.Fatalf("service must not be called on invalid payloads")
			return "", nil
		},
	}, nil)

	cases := []string{
		`{"email":"bob@example.com","password":"s3cret1"}`,
		`{"username":"bob","email":"not-an-email","password":"s3cret1"}`,
		`{"username":"bob","email":"bob@example.com","password":"abc"}`,
	}
	for _, body := range cases {
		c, _ := newTestContext(t, http.MethodPost, "/api/auth/signup", body)
		err := h.SignUp(c)
		httpErr, ok := err.(*echo.HTTPError)
		if !ok || httpErr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("body %s: expected 422, got %v", body, err)
		}
	}
}

func TestAuthHandler_Confirm(t *testing.T) {
	stub := &stubAuthService{
		confirmFn: func(_ context.Context, token string) error {
			if token != "tok-123" {
				t.Fatalf("unexpected token: %q", token)
			}
			return nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newTestContext(t, http.MethodGet, "/api/auth/confirm?token=tok-123", "")
	if err := h.Confirm(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Missing token is rejected before the service runs.
	c, _ = newTestContext(t, http.MethodGet, "/api/auth/confirm", "")
	err := h.Confirm(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing token, got %v", err)
	}
}

func TestAuthHandler_ForgotPassword_GenericResponse(t *testing.T) {
	var gotEmail string
	stub := &stubAuthService{
		forgotFn: func(_ context.Context, email string) error {
			gotEmail = email
			return nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newTestContext(t, http.MethodPost, "/api/auth/forgot-password?email=any@example.com", "")
	if err := h.ForgotPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gotEmail != "any@example.com" {
		t.Fatalf("unexpected email: %q", gotEmail)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	// The body never discloses whether the email matched an account.
	if !strings.Contains(rec.Body.String(), "If the email exists") {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	stub := &stubAuthService{
		resetPasswordFn: func(_ context.Context, token, newPassword string) error {
			if token != "tok-9" || newPassword != "n3wpass" {
				t.Fatalf("unexpected args: %q %q", token, newPassword)
			}
			return nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newTestContext(t, http.MethodPost, "/api/auth/reset-password",
		`{"token":"tok-9","new_password":"n3wpass"}`)
	if err := h.ResetPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Google(t *testing.T) {
	stub := &stubGoogleService{
		processFn: func(_ context.Context, in ports.GoogleAuthInput) (*ports.AuthResult, error) {
			if in.Email != "maria@example.com" || in.Name != "Maria Lopez" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{Token: "g-token", User: &domain.User{Username: "marialopez1234"}}, nil
		},
	}
	h := NewAuthHandler(&stubAuthService{}, stub)

	c, rec := newTestContext(t, http.MethodPost, "/api/auth/google",
		`{"email":"maria@example.com","name":"Maria Lopez","photo_url":"https://lh3.example.com/p.jpg"}`)
	if err := h.Google(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "g-token") {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}
