package ports

import (
	"context"

	"github.com/fooddelivery/delivery-platform/internal/core/domain"
)

// RegisterInput carries the fields accepted at sign-up. Roles is honored
// only by admin creation; self-registration always gets RoleCustomer.
type RegisterInput struct {
	Username             string
	Email                string
	Password             string
	FirstName            string
	LastName             string
	PhoneNumber          string
	ProfileImage         string
	Address              string
	Location             *domain.Location
	IdentificationNumber string
	VehicleNumber        string
	Roles                []string
}

// AuthResult is a successful sign-in: the session token plus the account.
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthService is the authentication engine: credential verification,
// account-state gating, registration, and the password-reset flow.
type AuthService interface {
	// Authenticate accepts a username or an email as identifier.
	Authenticate(ctx context.Context, identifier, password string) (*AuthResult, error)

	// Register creates a disabled account, issues a confirmation token and
	// publishes the registration event. Returns the caller-facing message.
	Register(ctx context.Context, in RegisterInput) (string, error)

	// Confirm marks the account bound to the token as email-verified.
	Confirm(ctx context.Context, token string) error

	// ForgotPassword starts a reset. It returns nil whether or not the
	// email matched an account, to prevent enumeration.
	ForgotPassword(ctx context.Context, email string) error

	ValidateResetToken(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}
