package ports

import (
	"context"

	"github.com/fooddelivery/delivery-platform/internal/core/domain"
)

// ProfilePatch carries the fields a user may change on their own profile.
// Nil pointers mean "leave unchanged".
type ProfilePatch struct {
	Username     *string
	Email        *string
	FirstName    *string
	LastName     *string
	PhoneNumber  *string
	ProfileImage *string
	Address      *string
	Location     *domain.Location
}

// AdminPatch extends ProfilePatch with the fields only admins may touch.
// A non-nil Roles slice replaces the full role set.
type AdminPatch struct {
	ProfilePatch
	IdentificationNumber *string
	VehicleNumber        *string
	Roles                []string
	Enabled              *bool
	Disabled             *bool
	Deleted              *bool
	Verified             *bool
}

// UserService owns profile reads and writes plus admin account management.
type UserService interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListAll(ctx context.Context) ([]*domain.User, error)
	ListByRole(ctx context.Context, role string) ([]*domain.User, error)

	UpdateProfile(ctx context.Context, username string, patch ProfilePatch) (*domain.User, error)
	ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error

	CreateByAdmin(ctx context.Context, in RegisterInput) (*domain.User, error)
	UpdateByAdmin(ctx context.Context, id string, patch AdminPatch) (*domain.User, error)

	// Role checks used by sibling services through the internal API.
	ValidateRole(ctx context.Context, id, role string) (bool, error)
	ValidateRoleAndEnabled(ctx context.Context, id, role string) (bool, error)
}
