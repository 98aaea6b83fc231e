// Package base holds the request helpers shared by the route packages.
package base

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	appctx "github.com/starsandeep/sfsync/pkg/context"
)

// ParseUUID reads a path parameter that must be a UUID and returns it in
// canonical form.
func ParseUUID(c echo.Context, param string) (string, error) {
	raw := c.Param(param)
	if raw == "" {
		return "", httperror.NewHTTPError(http.StatusBadRequest, "missing "+param)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return "", httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid %s: must be a valid UUID", param)
	}
	return id.String(), nil
}

// UserID returns the caller's id, which may be empty.
func UserID(c echo.Context) string {
	return appctx.GetUserID(c.Request().Context())
}

// RequireUserID is UserID for routes that need a known caller.
func RequireUserID(c echo.Context) (string, error) {
	userID := UserID(c)
	if userID == "" {
		return "", httperror.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return userID, nil
}
