package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fooddelivery/delivery-platform/internal/core/ports"
)

// ctxIdentity extracts the identity injected by the Auth middleware and
// fast-fails before any service call. Presence of the username proves the
// middleware ran on this route.
func ctxIdentity(c echo.Context) (ports.Identity, error) {
	username, _ := c.Get("username").(string)
	if username == "" {
		return ports.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	userID, _ := c.Get("user_id").(string)
	roles, _ := c.Get("roles").([]string)

	return ports.Identity{UserID: userID, Username: username, Roles: roles}, nil
}
