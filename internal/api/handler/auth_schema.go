package handler

import (
	"github.com/fooddelivery/delivery-platform/internal/core/domain"
	"github.com/fooddelivery/delivery-platform/internal/core/ports"
)

type locationRequest struct {
	Type      string  `json:"type"      validate:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

func (l *locationRequest) toDomain() *domain.Location {
	if l == nil {
		return nil
	}
	return &domain.Location{
		Type:      l.Type,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		Address:   l.Address,
	}
}

type signupRequest struct {
	Username             string           `json:"username"              validate:"required"`
	Email                string           `json:"email"                 validate:"required,email"`
	Password             string           `json:"password"              validate:"required,min=6"`
	FirstName            string           `json:"first_name"`
	LastName             string           `json:"last_name"`
	PhoneNumber          string           `json:"phone_number"`
	ProfilePicture       string           `json:"profile_picture"`
	Address              string           `json:"address"`
	Location             *locationRequest `json:"location"`
	IdentificationNumber string           `json:"identification_number"`
	VehicleNumber        string           `json:"vehicle_number"`
	Roles                []string         `json:"roles"`
}

func (r signupRequest) toInput() ports.RegisterInput {
	return ports.RegisterInput{
		Username:             r.Username,
		Email:                r.Email,
		Password:             r.Password,
		FirstName:            r.FirstName,
		LastName:             r.LastName,
		PhoneNumber:          r.PhoneNumber,
		ProfileImage:         r.ProfilePicture,
		Address:              r.Address,
		Location:             r.Location.toDomain(),
		IdentificationNumber: r.IdentificationNumber,
		VehicleNumber:        r.VehicleNumber,
		Roles:                r.Roles,
	}
}

// signinRequest accepts either a username or an email as the identifier.
type signinRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

type googleAuthRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Name     string `json:"name"      validate:"required"`
	PhotoURL string `json:"photo_url"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}
