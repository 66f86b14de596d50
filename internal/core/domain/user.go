package domain

import (
	"errors"
	"time"
)

// Role labels are the fixed capability catalog. Unknown role names
// requested at assignment time fall back to RoleCustomer.
const (
	RoleCustomer          = "ROLE_CUSTOMER"
	RoleAdmin             = "ROLE_ADMIN"
	RoleRestaurantAdmin   = "ROLE_RESTAURANT_ADMIN"
	RoleDeliveryPersonnel = "ROLE_DELIVERY_PERSONNEL"
)

var knownRoles = map[string]struct{}{
	RoleCustomer:          {},
	RoleAdmin:             {},
	RoleRestaurantAdmin:   {},
	RoleDeliveryPersonnel: {},
}

// NormalizeRole maps a requested role name to the fixed catalog,
// falling back to RoleCustomer for anything unrecognized.
func NormalizeRole(name string) string {
	if _, ok := knownRoles[name]; ok {
		return name
	}
	return RoleCustomer
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrNotVerified        = errors.New("account is not verified")
	ErrDisabled           = errors.New("account is disabled")
	ErrDeleted            = errors.New("account is deleted")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
)

// ValidationError reports a caller-fixable input problem on a named field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Location is an optional geographic point attached to a user profile.
type Location struct {
	Type      string  `json:"type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// User is the account identity record. Username and Email are globally
// unique; IdentificationNumber, when non-empty, is unique as well.
// Accounts are never hard-deleted; Deleted is a soft-delete gate.
type User struct {
	ID                   string    `json:"id"`
	Username             string    `json:"username"`
	Email                string    `json:"email"`
	PasswordHash         string    `json:"-"`
	FirstName            string    `json:"first_name"`
	LastName             string    `json:"last_name"`
	PhoneNumber          string    `json:"phone_number,omitempty"`
	ProfileImage         string    `json:"profile_image,omitempty"`
	Address              string    `json:"address,omitempty"`
	Location             *Location `json:"location,omitempty"`
	IdentificationNumber string    `json:"identification_number,omitempty"`
	VehicleNumber        string    `json:"vehicle_number,omitempty"`
	Roles                []string  `json:"roles"`

	// Account gates. Enabled means email-verified; Verified is a
	// separate trust flag set on admin-created accounts.
	Enabled  bool `json:"enabled"`
	Disabled bool `json:"disabled"`
	Deleted  bool `json:"deleted"`
	Verified bool `json:"verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasRole reports whether the user carries the given role label.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
