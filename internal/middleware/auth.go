// Package middleware holds the request guards: bearer authentication,
// role authorization, list-query parsing, response caching and rate
// limiting.
package middleware

import (
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bootcamp-directory/internal/httperr"
	"github.com/iliyamo/bootcamp-directory/internal/model"
	"github.com/iliyamo/bootcamp-directory/internal/repository"
)

const identityKey = "identity"

// notAuthorized is the single message for every authentication
// failure mode so callers can't probe which part failed.
func notAuthorized() error {
	return httperr.Unauthorized("Not authorized to access this route")
}

// Protect authenticates the request by bearer token and attaches the
// resolved Identity to the context. The token subject must resolve to
// a stored user; a valid token for a deleted account is rejected.
func Protect(secret string, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return notAuthorized()
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, notAuthorized()
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return notAuthorized()
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return notAuthorized()
			}
			uid, ok := subjectID(claims["sub"])
			if !ok {
				return notAuthorized()
			}

			u, err := users.GetByID(c.Request().Context(), uid)
			if err != nil {
				// Unknown subject and database failure look the same to
				// the client; the boundary still logs the latter.
				return notAuthorized()
			}

			c.Set(identityKey, &model.Identity{ID: u.ID, Role: u.Role})
			return next(c)
		}
	}
}

// CurrentIdentity returns the identity attached by Protect, if any.
func CurrentIdentity(c echo.Context) (*model.Identity, bool) {
	ident, ok := c.Get(identityKey).(*model.Identity)
	return ident, ok && ident != nil
}

// subjectID normalizes the sub claim; numbers decode as float64,
// some issuers use strings.
func subjectID(v any) (uint64, bool) {
	switch t := v.(type) {
	case float64:
		if t >= 0 {
			return uint64(t), true
		}
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
