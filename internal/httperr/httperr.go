// Package httperr defines the tagged error type handlers return for
// business failures and the centralized boundary that turns any error
// into the uniform response envelope. Handlers never write error JSON
// themselves; they return an *Error (or let a lower-level failure
// bubble up) and the boundary picks the status code and message.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/bootcamp-directory/internal/repository"
)

// Error carries a message plus the HTTP status it should map to.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// New builds an Error with an arbitrary status.
func New(status int, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) *Error {
	return New(http.StatusBadRequest, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(http.StatusForbidden, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, format, args...)
}

// Validation aggregates field violations into a single 400 message,
// matching the schema-validation contract: all violations at once,
// comma separated.
func Validation(violations []string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: strings.Join(violations, ", ")}
}

// envelope mirrors the success responses: {success:false, error:"..."}.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Handler returns the Echo HTTPErrorHandler acting as the single error
// boundary. Mapping order: explicit *Error first, then known failure
// classes (missing row, duplicate key, framework errors), finally a
// sanitized 500. Full detail is logged only outside prod so stack-level
// information never reaches clients.
func Handler(log zerolog.Logger, env string) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "Server error"

		var tagged *Error
		var he *echo.HTTPError
		var myErr *mysql.MySQLError
		switch {
		case errors.As(err, &tagged):
			status = tagged.Status
			msg = tagged.Message
		case errors.Is(err, repository.ErrNotFound):
			status = http.StatusNotFound
			msg = "Resource not found"
		case errors.As(err, &myErr) && myErr.Number == 1062:
			status = http.StatusBadRequest
			msg = "Duplicate field value entered"
		case errors.As(err, &myErr) && myErr.Number == 1451:
			status = http.StatusBadRequest
			msg = "Resource is referenced by other records and can not be deleted"
		case errors.As(err, &he):
			status = he.Code
			msg = fmt.Sprint(he.Message)
		}

		if env != "prod" {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", status).
				Msg("request failed")
		} else if status == http.StatusInternalServerError {
			log.Error().Int("status", status).Msg("request failed")
		}

		_ = c.JSON(status, envelope{Success: false, Error: msg})
	}
}
