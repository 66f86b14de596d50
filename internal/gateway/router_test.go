package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fooddelivery/delivery-platform/internal/core/domain"
	"github.com/fooddelivery/delivery-platform/internal/core/service"
	"github.com/fooddelivery/delivery-platform/internal/infrastructure/config"
)

const testSecret = "gateway-test-secret"

// newTestGateway builds a gateway pointed at the given user-service URL.
// The other backends point at a closed port; routes to them fail fast.
func newTestGateway(t *testing.T, userServiceURL string) (*Gateway, *echo.Echo) {
	t.Helper()

	cfg := &config.GatewayConfig{
		JWTSecret:            testSecret,
		UserServiceURL:       userServiceURL,
		RestaurantServiceURL: "http://127.0.0.1:1",
		OrderServiceURL:      "http://127.0.0.1:1",
		DeliveryServiceURL:   "http://127.0.0.1:1",
		Breaker: config.BreakerConfig{
			WindowSeconds:    10,
			FailureThreshold: 0.5,
			MinRequests:      2,
			CooldownSeconds:  60,
		},
	}

	codec := service.NewSessionCodec(testSecret, time.Hour)
	g, err := New(cfg, codec, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Bare echo instance with the route table registered; the production
	// router adds observability middleware the tests do not need.
	e := echo.New()
	for _, route := range Routes() {
		h := g.handler(route)
		e.Any(route.Prefix, h)
		e.Any(route.Prefix+"/*", h)
	}
	return g, e
}

func bearerToken(t *testing.T) string {
	t.Helper()
	token, err := service.NewSessionCodec(testSecret, time.Hour).Issue("u1", "alice", []string{domain.RoleCustomer}, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestGateway_PublicRouteForwarded(t *testing.T) {
	var hits atomic.Int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("signin ok"))
	}))
	defer backend.Close()

	_, e := newTestGateway(t, backend.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "signin ok" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 backend hit, got %d", hits.Load())
	}
}

func TestGateway_ProtectedRouteRequiresToken(t *testing.T) {
	var hits atomic.Int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer backend.Close()

	_, e := newTestGateway(t, backend.URL)

	for _, header := range []string{"", "Bearer not-a-token", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
		if rec.Body.String() != "Access denied: Authentication required" {
			t.Fatalf("header %q: unexpected body %q", header, rec.Body.String())
		}
	}
	if hits.Load() != 0 {
		t.Fatalf("unauthenticated requests must never reach the backend, got %d hits", hits.Load())
	}
}

func TestGateway_ProtectedRouteForwardsWithToken(t *testing.T) {
	var gotPath, gotAuth string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	_, e := newTestGateway(t, backend.URL)
	token := bearerToken(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotPath != "/api/users/profile" {
		t.Fatalf("unexpected forwarded path: %q", gotPath)
	}
	// The backend validates the token itself; the header must survive.
	if gotAuth != "Bearer "+token {
		t.Fatalf("authorization header not forwarded: %q", gotAuth)
	}
}

func TestGateway_BreakerOpensAndServesFallback(t *testing.T) {
	var hits atomic.Int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer backend.Close()

	_, e := newTestGateway(t, backend.URL)

	// Two 5xx responses at MinRequests=2 trip the breaker.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("call %d: expected 500 passthrough, got %d", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from open breaker, got %d", rec.Code)
	}
	if rec.Body.String() != fallbackMessage {
		t.Fatalf("unexpected fallback body: %q", rec.Body.String())
	}
	if hits.Load() != 2 {
		t.Fatalf("open breaker must not contact the backend, got %d hits", hits.Load())
	}
}

func TestGateway_SharedBreakerPerBackend(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer backend.Close()

	_, e := newTestGateway(t, backend.URL)
	token := bearerToken(t)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
		e.ServeHTTP(httptest.NewRecorder(), req)
	}

	// /api/users shares the user-service breaker with /api/auth.
	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected shared breaker to reject, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "try again later") {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestGateway_UnreachableBackend(t *testing.T) {
	_, e := newTestGateway(t, "http://127.0.0.1:1")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for unreachable backend, got %d", rec.Code)
	}
	if rec.Body.String() != fallbackMessage {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}
