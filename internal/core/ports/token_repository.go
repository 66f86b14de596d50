package ports

import (
	"context"

	"github.com/fooddelivery/delivery-platform/internal/core/domain"
)

// TokenRepository stores lifecycle tokens keyed by kind and raw token string.
// Find returns domain.ErrInvalidToken when no record exists.
type TokenRepository interface {
	Save(ctx context.Context, token *domain.LifecycleToken) error
	Find(ctx context.Context, kind domain.LifecycleTokenKind, token string) (*domain.LifecycleToken, error)
	Delete(ctx context.Context, kind domain.LifecycleTokenKind, token string) error
}
