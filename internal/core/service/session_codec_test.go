package service

import (
	"errors"
	"testing"
	"time"

	"github.com/fooddelivery/delivery-platform/internal/core/domain"
)

func TestSessionCodec_RoundTrip(t *testing.T) {
	codec := NewSessionCodec("test-secret", time.Hour)

	token, err := codec.Issue("u1", "alice", []string{domain.RoleCustomer, domain.RoleAdmin}, time.Now())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	identity, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if identity.UserID != "u1" || identity.Username != "alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if len(identity.Roles) != 2 || identity.Roles[0] != domain.RoleCustomer || identity.Roles[1] != domain.RoleAdmin {
		t.Fatalf("unexpected roles: %v", identity.Roles)
	}
}

func TestSessionCodec_Verify_WrongSecret(t *testing.T) {
	token, err := NewSessionCodec("secret-a", time.Hour).Issue("u1", "alice", nil, time.Now())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := NewSessionCodec("secret-b", time.Hour).Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestSessionCodec_Verify_Expired(t *testing.T) {
	codec := NewSessionCodec("test-secret", time.Hour)

	token, err := codec.Issue("u1", "alice", nil, time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := codec.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestSessionCodec_Verify_Malformed(t *testing.T) {
	codec := NewSessionCodec("test-secret", time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := codec.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}
