// Package handler implements the HTTP surface. Handlers are thin
// orchestrators: they parse input, call the repositories and return
// either the uniform success envelope or a classified error for the
// central boundary.
package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bootcamp-directory/internal/httperr"
	"github.com/iliyamo/bootcamp-directory/internal/middleware"
	"github.com/iliyamo/bootcamp-directory/internal/model"
	"github.com/iliyamo/bootcamp-directory/internal/query"
)

// dataEnvelope is the single-resource success shape.
type dataEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// listEnvelope is the collection success shape. Pagination is only
// present on query-builder routes.
type listEnvelope struct {
	Success    bool              `json:"success"`
	Count      int               `json:"count"`
	Pagination *query.Pagination `json:"pagination,omitempty"`
	Data       any               `json:"data"`
}

func okData(c echo.Context, status int, data any) error {
	return c.JSON(status, dataEnvelope{Success: true, Data: data})
}

func okList(c echo.Context, count int, pagination *query.Pagination, data any) error {
	return c.JSON(http.StatusOK, listEnvelope{Success: true, Count: count, Pagination: pagination, Data: data})
}

// paramID parses a numeric path parameter. A non-numeric value is the
// malformed-identifier case and maps to 400.
func paramID(c echo.Context, name string) (uint64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, httperr.BadRequest("Invalid id format: %s", raw)
	}
	return id, nil
}

// requireIdentity returns the authenticated identity. Protect should
// have run on the route; absence is treated as an auth failure.
func requireIdentity(c echo.Context) (*model.Identity, error) {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return nil, httperr.Unauthorized("Not authorized to access this route")
	}
	return ident, nil
}

// canModify is the single ownership predicate used by every mutating
// handler: admins may touch anything, everyone else only what they
// own.
func canModify(ident *model.Identity, ownerID uint64) bool {
	return ident.IsAdmin() || ident.ID == ownerID
}

// validate turns aggregated schema violations into one 400 error.
func validate(violations []string) error {
	if len(violations) > 0 {
		return httperr.Validation(violations)
	}
	return nil
}
