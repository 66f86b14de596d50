package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/fooddelivery/delivery-platform/internal/api/metrics"
	"github.com/fooddelivery/delivery-platform/internal/core/ports"
	"github.com/fooddelivery/delivery-platform/internal/gateway/breaker"
	"github.com/fooddelivery/delivery-platform/internal/infrastructure/config"
)

// fallbackMessage is the fixed payload returned when a breaker is open.
const fallbackMessage = "Service unavailable. Please try again later."

var errBackendFailure = errors.New("backend call failed")

// backend bundles one routed service's proxy with its circuit breaker.
type backend struct {
	name    string
	proxy   *httputil.ReverseProxy
	breaker *breaker.Breaker
}

// Gateway routes inbound traffic to backend services, gating protected
// routes on a verified session token and isolating backend failures behind
// per-backend circuit breakers.
type Gateway struct {
	backends map[string]*backend
	codec    ports.SessionCodec
	log      zerolog.Logger
}

// New builds a Gateway from the configured backend URLs.
func New(cfg *config.GatewayConfig, codec ports.SessionCodec, log zerolog.Logger) (*Gateway, error) {
	settings := breaker.Settings{
		Window:           time.Duration(cfg.Breaker.WindowSeconds) * time.Second,
		FailureThreshold: cfg.Breaker.FailureThreshold,
		MinRequests:      cfg.Breaker.MinRequests,
		Cooldown:         time.Duration(cfg.Breaker.CooldownSeconds) * time.Second,
		OnStateChange: func(name string, from, to breaker.State) {
			log.Warn().
				Str("backend", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.BreakerTransitionsTotal.WithLabelValues(name, to.String()).Inc()
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
		},
	}

	g := &Gateway{
		backends: make(map[string]*backend),
		codec:    codec,
		log:      log,
	}

	for name, rawURL := range BackendURLs(cfg) {
		target, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("parse backend url %s: %w", name, err)
		}

		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = func(rw http.ResponseWriter, req *http.Request, err error) {
			log.Error().Err(err).Str("backend", name).Str("path", req.URL.Path).Msg("backend unreachable")
			rw.WriteHeader(http.StatusBadGateway)
			_, _ = rw.Write([]byte(fallbackMessage))
		}

		g.backends[name] = &backend{
			name:    name,
			proxy:   proxy,
			breaker: breaker.New(name, settings),
		}
	}

	return g, nil
}

// NewRouter builds the gateway's Echo instance with the route table
// registered.
func NewRouter(g *Gateway, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("gateway"))

	for _, route := range Routes() {
		h := g.handler(route)
		e.Any(route.Prefix, h)
		e.Any(route.Prefix+"/*", h)
	}

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return e
}

// handler returns the forwarding handler for one route: authentication gate
// first, then the breaker-guarded proxy call.
func (g *Gateway) handler(route Route) echo.HandlerFunc {
	be := g.backends[route.Backend]

	return func(c echo.Context) error {
		if route.RequireAuth && !g.authenticated(c.Request()) {
			metrics.GatewayRequestsTotal.WithLabelValues(be.name, "unauthorized").Inc()
			return c.String(http.StatusUnauthorized, "Access denied: Authentication required")
		}

		err := be.breaker.Do(func() error {
			be.proxy.ServeHTTP(c.Response(), c.Request())
			if c.Response().Status >= http.StatusInternalServerError {
				return errBackendFailure
			}
			return nil
		})

		switch {
		case errors.Is(err, breaker.ErrOpen):
			// The backend was never contacted; serve the fixed fallback.
			metrics.GatewayRequestsTotal.WithLabelValues(be.name, "rejected").Inc()
			return c.String(http.StatusServiceUnavailable, fallbackMessage)
		case err != nil:
			// The failure response has already been written by the proxy.
			metrics.GatewayRequestsTotal.WithLabelValues(be.name, "failed").Inc()
			return nil
		default:
			metrics.GatewayRequestsTotal.WithLabelValues(be.name, "forwarded").Inc()
			return nil
		}
	}
}

// authenticated reports whether the request carries a valid bearer token.
// A missing or malformed header is treated identically to an invalid token.
func (g *Gateway) authenticated(req *http.Request) bool {
	header := req.Header.Get("Authorization")
	if header == "" {
		return false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return false
	}

	if _, err := g.codec.Verify(parts[1]); err != nil {
		g.log.Debug().Err(err).Msg("gateway token rejected")
		return false
	}
	return true
}
