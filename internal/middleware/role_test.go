package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/bootcamp-directory/internal/httperr"
	"github.com/iliyamo/bootcamp-directory/internal/model"
)

// withIdentity simulates Protect having resolved the given principal.
func withIdentity(ident *model.Identity) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ident != nil {
				c.Set(identityKey, ident)
			}
			return next(c)
		}
	}
}

func authorizeRequest(ident *model.Identity, roles ...string) *httptest.ResponseRecorder {
	e := echo.New()
	e.HTTPErrorHandler = httperr.Handler(zerolog.Nop(), "test")
	e.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, withIdentity(ident), Authorize(roles...))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthorizeAllowsListedRole(t *testing.T) {
	rec := authorizeRequest(&model.Identity{ID: 1, Role: model.RoleAdmin}, model.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthorizeRejectsOtherRoles(t *testing.T) {
	rec := authorizeRequest(&model.Identity{ID: 1, Role: model.RoleUser},
		model.RolePublisher, model.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t,
		`{"success":false,"error":"User role 'user' is not authorized to access this route"}`,
		rec.Body.String())
}

func TestAuthorizeWithoutIdentityIsAuthFailure(t *testing.T) {
	rec := authorizeRequest(nil, model.RoleAdmin)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
