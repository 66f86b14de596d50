package domain

import "time"

// TokenTTL is the validity window for lifecycle tokens.
const TokenTTL = 24 * time.Hour

// LifecycleTokenKind distinguishes the two lifecycle token namespaces.
type LifecycleTokenKind string

const (
	TokenKindConfirmation  LifecycleTokenKind = "confirmation"
	TokenKindPasswordReset LifecycleTokenKind = "password_reset"
)

// LifecycleToken is a random single-purpose token bound to exactly one
// account. Confirmation tokens are multi-use and survive consumption;
// password-reset tokens enforce expiry and are deleted on use.
type LifecycleToken struct {
	Token     string             `json:"token"`
	Kind      LifecycleTokenKind `json:"kind"`
	UserID    string             `json:"user_id"`
	CreatedAt time.Time          `json:"created_at"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *LifecycleToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
