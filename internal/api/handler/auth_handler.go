package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fooddelivery/delivery-platform/internal/api/metrics"
	"github.com/fooddelivery/delivery-platform/internal/core/domain"
	"github.com/fooddelivery/delivery-platform/internal/core/ports"
)

type AuthHandler struct {
	authService   ports.AuthService
	googleService ports.GoogleAuthService
}

func NewAuthHandler(authService ports.AuthService, googleService ports.GoogleAuthService) *AuthHandler {
	return &AuthHandler{authService: authService, googleService: googleService}
}

// SignIn authenticates a user and returns a session token.
//
// @Summary      Sign in with username or email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signinRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	// Username takes precedence; the email is the fallback identifier.
	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}

	result, err := h.authService.Authenticate(c.Request().Context(), identifier, req.Password)
	if err != nil {
		metrics.SigninsTotal.WithLabelValues(signinResult(err)).Inc()
		return err
	}

	metrics.SigninsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, authResponse{Token: result.Token, User: result.User})
}

func signinResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotVerified):
		return "not_verified"
	case errors.Is(err, domain.ErrDisabled):
		return "disabled"
	case errors.Is(err, domain.ErrDeleted):
		return "deleted"
	default:
		return "invalid_credentials"
	}
}

// SignUp registers a new account and triggers the confirmation email.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Registration details"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	msg, err := h.authService.Register(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("self").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}

// Confirm marks the account bound to the token as email-verified.
//
// @Summary      Confirm an email address
// @Tags         auth
// @Produce      json
// @Param        token  query     string  true  "Confirmation token"
// @Success      200    {object}  messageResponse
// @Failure      400    {object}  errorResponse
// @Router       /api/auth/confirm [get]
func (h *AuthHandler) Confirm(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	if err := h.authService.Confirm(c.Request().Context(), token); err != nil {
		metrics.TokenChecksTotal.WithLabelValues("confirmation", "invalid").Inc()
		return err
	}

	metrics.TokenChecksTotal.WithLabelValues("confirmation", "ok").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Email confirmed successfully!"})
}

// ForgotPassword starts a password reset. The response is the same whether
// or not the email matches an account.
//
// @Summary      Request a password reset
// @Tags         auth
// @Produce      json
// @Param        email  query     string  true  "Account email"
// @Success      200    {object}  messageResponse
// @Router       /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	_ = h.authService.ForgotPassword(c.Request().Context(), email)

	return c.JSON(http.StatusOK, messageResponse{
		Message: "If the email exists in our system, password reset instructions have been sent.",
	})
}

// ValidateResetToken checks a reset token without consuming it.
//
// @Summary      Validate a password reset token
// @Tags         auth
// @Produce      json
// @Param        token  query     string  true  "Reset token"
// @Success      200    {object}  messageResponse
// @Failure      400    {object}  errorResponse
// @Router       /api/auth/password/validate [get]
func (h *AuthHandler) ValidateResetToken(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	if err := h.authService.ValidateResetToken(c.Request().Context(), token); err != nil {
		metrics.TokenChecksTotal.WithLabelValues("password_reset", resetResult(err)).Inc()
		return err
	}

	metrics.TokenChecksTotal.WithLabelValues("password_reset", "ok").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Token is valid"})
}

// ResetPassword consumes a reset token and stores the new credential.
//
// @Summary      Reset a password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Token and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		metrics.TokenChecksTotal.WithLabelValues("password_reset", resetResult(err)).Inc()
		return err
	}

	metrics.TokenChecksTotal.WithLabelValues("password_reset", "ok").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Password has been reset successfully!"})
}

func resetResult(err error) string {
	if errors.Is(err, domain.ErrTokenExpired) {
		return "expired"
	}
	return "invalid"
}

// Google signs a federated identity in, creating the account when needed.
//
// @Summary      Sign in with a Google identity
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      googleAuthRequest  true  "Google identity"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/auth/google [post]
func (h *AuthHandler) Google(c echo.Context) error {
	var req googleAuthRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.googleService.Process(c.Request().Context(), ports.GoogleAuthInput{
		Email:    req.Email,
		Name:     req.Name,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: result.Token, User: result.User})
}
