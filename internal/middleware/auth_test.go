package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bootcamp-directory/internal/httperr"
	"github.com/iliyamo/bootcamp-directory/internal/model"
	"github.com/iliyamo/bootcamp-directory/internal/repository"
	"github.com/iliyamo/bootcamp-directory/internal/utils"
)

const testSecret = "test-secret"

func protectedEcho(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	e := echo.New()
	e.HTTPErrorHandler = httperr.Handler(zerolog.Nop(), "test")
	e.GET("/private", func(c echo.Context) error {
		ident, ok := CurrentIdentity(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, ident)
	}, Protect(testSecret, repository.NewUserRepo(db)))
	return e, mock
}

func doRequest(e *echo.Echo, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func assertNotAuthorized(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t,
		`{"success":false,"error":"Not authorized to access this route"}`,
		rec.Body.String())
}

func userRow(id uint64, role string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at"}).
		AddRow(id, "John Doe", "john@gmail.com", "x", role, time.Now())
}

func TestProtectMissingHeader(t *testing.T) {
	e, _ := protectedEcho(t)
	assertNotAuthorized(t, doRequest(e, ""))
}

func TestProtectMalformedHeader(t *testing.T) {
	e, _ := protectedEcho(t)
	assertNotAuthorized(t, doRequest(e, "Token abc"))
}

func TestProtectInvalidToken(t *testing.T) {
	e, _ := protectedEcho(t)
	assertNotAuthorized(t, doRequest(e, "Bearer not-a-jwt"))
}

func TestProtectWrongSecret(t *testing.T) {
	e, _ := protectedEcho(t)
	tok, err := utils.NewAccessToken("other-secret", 1, model.RoleUser, 5)
	require.NoError(t, err)
	assertNotAuthorized(t, doRequest(e, "Bearer "+tok.Token))
}

func TestProtectUnknownSubject(t *testing.T) {
	e, mock := protectedEcho(t)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	tok, err := utils.NewAccessToken(testSecret, 42, model.RoleUser, 5)
	require.NoError(t, err)
	assertNotAuthorized(t, doRequest(e, "Bearer "+tok.Token))
}

func TestProtectAttachesIdentity(t *testing.T) {
	e, mock := protectedEcho(t)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WithArgs(uint64(7)).
		WillReturnRows(userRow(7, model.RolePublisher))

	tok, err := utils.NewAccessToken(testSecret, 7, model.RolePublisher, 5)
	require.NoError(t, err)

	rec := doRequest(e, "Bearer "+tok.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	var ident model.Identity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ident))
	assert.Equal(t, uint64(7), ident.ID)
	assert.Equal(t, model.RolePublisher, ident.Role)
}
