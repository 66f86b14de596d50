package ports

import (
	"context"

	"github.com/fooddelivery/delivery-platform/internal/core/domain"
)

// UserRepository defines the persistence surface for account records.
// Implementations are the final arbiter of uniqueness: a constraint
// violation at write time surfaces as domain.ErrUserExists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)

	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindAll(ctx context.Context) ([]*domain.User, error)
	FindByRole(ctx context.Context, role string) ([]*domain.User, error)

	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhoneNumber(ctx context.Context, phone string) (bool, error)
	ExistsByIdentificationNumber(ctx context.Context, idNumber string) (bool, error)
}
