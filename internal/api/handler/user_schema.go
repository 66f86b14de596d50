package handler

import "github.com/fooddelivery/delivery-platform/internal/core/ports"

// profileUpdateRequest uses pointers so absent fields are left unchanged.
type profileUpdateRequest struct {
	Username       *string          `json:"username"`
	Email          *string          `json:"email"           validate:"omitempty,email"`
	FirstName      *string          `json:"first_name"`
	LastName       *string          `json:"last_name"`
	PhoneNumber    *string          `json:"phone_number"`
	ProfilePicture *string          `json:"profile_picture"`
	Address        *string          `json:"address"`
	Location       *locationRequest `json:"location"`
}

func (r profileUpdateRequest) toPatch() ports.ProfilePatch {
	return ports.ProfilePatch{
		Username:     r.Username,
		Email:        r.Email,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PhoneNumber:  r.PhoneNumber,
		ProfileImage: r.ProfilePicture,
		Address:      r.Address,
		Location:     r.Location.toDomain(),
	}
}

type adminUpdateRequest struct {
	profileUpdateRequest
	IdentificationNumber *string  `json:"identification_number"`
	VehicleNumber        *string  `json:"vehicle_number"`
	Roles                []string `json:"roles"`
	Enabled              *bool    `json:"enabled"`
	Disabled             *bool    `json:"disabled"`
	Deleted              *bool    `json:"deleted"`
	Verified             *bool    `json:"verified"`
}

func (r adminUpdateRequest) toPatch() ports.AdminPatch {
	return ports.AdminPatch{
		ProfilePatch:         r.profileUpdateRequest.toPatch(),
		IdentificationNumber: r.IdentificationNumber,
		VehicleNumber:        r.VehicleNumber,
		Roles:                r.Roles,
		Enabled:              r.Enabled,
		Disabled:             r.Disabled,
		Deleted:              r.Deleted,
		Verified:             r.Verified,
	}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=6"`
}

type roleCheckResponse struct {
	Valid bool `json:"valid"`
}
