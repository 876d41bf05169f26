package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bootcamp-directory/internal/httperr"
	"github.com/iliyamo/bootcamp-directory/internal/query"
)

const listQueryKey = "list_query"

// ListQuery parses the request's query string against the resource's
// field allow-list and attaches the typed result for the handler.
// Malformed filters (unknown fields, unknown operators) are rejected
// here with a 400 before any database work happens.
func ListQuery(fields query.FieldMap) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lq, err := query.Parse(c.QueryParams(), fields)
			if err != nil {
				return httperr.BadRequest("%s", err.Error())
			}
			c.Set(listQueryKey, lq)
			return next(c)
		}
	}
}

// ListQueryFrom returns the query parsed by ListQuery. Calling it on
// a route without the middleware is a programming error; an empty
// default keeps the handler total.
func ListQueryFrom(c echo.Context) *query.ListQuery {
	if lq, ok := c.Get(listQueryKey).(*query.ListQuery); ok {
		return lq
	}
	return &query.ListQuery{Page: query.DefaultPage, Limit: query.DefaultLimit}
}
