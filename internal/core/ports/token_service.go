package ports

import (
	"context"

	"github.com/fooddelivery/delivery-platform/internal/core/domain"
)

// LifecycleTokenService manages single-purpose, time-bounded tokens for
// email confirmation and password reset.
type LifecycleTokenService interface {
	// IssueConfirmation creates a fresh confirmation token for the user.
	// Outstanding tokens are not checked; several may coexist.
	IssueConfirmation(ctx context.Context, user *domain.User) (*domain.LifecycleToken, error)

	// IssuePasswordReset creates a reset token and publishes the reset
	// notification carrying the reset URL.
	IssuePasswordReset(ctx context.Context, user *domain.User) (*domain.LifecycleToken, error)

	// Confirm flips the bound account's enabled gate. The token record is
	// kept and expiry is ignored, so confirmation is idempotent.
	Confirm(ctx context.Context, token string) error

	// ValidateReset checks a reset token without consuming it. Returns
	// domain.ErrInvalidToken or domain.ErrTokenExpired on failure.
	ValidateReset(ctx context.Context, token string) (*domain.LifecycleToken, error)

	// ConsumeReset overwrites the bound account's credential and deletes
	// the token. Strictly single-use.
	ConsumeReset(ctx context.Context, token, newPassword string) error
}
