package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bootcamp-directory/internal/httperr"
)

// Authorize enforces that the authenticated identity holds one of the
// allowed roles. Protect must run first; a missing identity is an
// authentication failure (401), not an authorization one.
func Authorize(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := CurrentIdentity(c)
			if !ok {
				return notAuthorized()
			}
			if !allowed[ident.Role] {
				return httperr.Forbidden(
					"User role '%s' is not authorized to access this route", ident.Role)
			}
			return next(c)
		}
	}
}
