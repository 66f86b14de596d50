package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fooddelivery/delivery-platform/internal/api/metrics"
	"github.com/fooddelivery/delivery-platform/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile returns the calling user's own profile.
//
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /api/users/profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.userService.GetByUsername(c.Request().Context(), identity.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile applies a partial update to the caller's own profile.
//
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      profileUpdateRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Router       /api/users/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req profileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), identity.Username, req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ChangePassword replaces the caller's credential after verifying the
// current one.
//
// @Summary      Change own password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/users/change-password [post]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.userService.ChangePassword(c.Request().Context(), identity.Username, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Password changed successfully"})
}

// ListUsers returns all accounts. Admin only.
//
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.User
// @Router       /api/users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// ListByRole returns accounts carrying the given role. Admin only.
//
// @Summary      List users by role
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role  path      string  true  "Role name, with or without ROLE_ prefix"
// @Success      200   {array}   domain.User
// @Router       /api/users/role/{role} [get]
func (h *UserHandler) ListByRole(c echo.Context) error {
	users, err := h.userService.ListByRole(c.Request().Context(), c.Param("role"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// GetByID returns a single account. Admin only.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetByID(c echo.Context) error {
	user, err := h.userService.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// CreateByAdmin registers a pre-verified account with explicit roles.
//
// @Summary      Create a user as admin
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      signupRequest  true  "Account details including roles"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Router       /api/users [post]
func (h *UserHandler) CreateByAdmin(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.userService.CreateByAdmin(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("admin").Inc()
	return c.JSON(http.StatusCreated, user)
}

// UpdateByAdmin applies a partial update to any account.
//
// @Summary      Update a user as admin
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "User id"
// @Param        body  body      adminUpdateRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/users/{id} [put]
func (h *UserHandler) UpdateByAdmin(c echo.Context) error {
	var req adminUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.userService.UpdateByAdmin(c.Request().Context(), c.Param("id"), req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ValidateRole reports whether a user carries a role, optionally requiring
// the account to be enabled. Used by sibling services.
//
// @Summary      Check a user's role
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true   "User id"
// @Param        role     query     string  true   "Role name"
// @Param        enabled  query     bool    false  "Also require the enabled gate"
// @Success      200      {object}  roleCheckResponse
// @Router       /api/users/{id}/validate-role [get]
func (h *UserHandler) ValidateRole(c echo.Context) error {
	role := c.QueryParam("role")
	if role == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "role is required")
	}
	requireEnabled, _ := strconv.ParseBool(c.QueryParam("enabled"))

	var (
		valid bool
		err   error
	)
	if requireEnabled {
		valid, err = h.userService.ValidateRoleAndEnabled(c.Request().Context(), c.Param("id"), role)
	} else {
		valid, err = h.userService.ValidateRole(c.Request().Context(), c.Param("id"), role)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roleCheckResponse{Valid: valid})
}
