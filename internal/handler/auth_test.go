package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bootcamp-directory/internal/config"
	"github.com/iliyamo/bootcamp-directory/internal/model"
	"github.com/iliyamo/bootcamp-directory/internal/repository"
	"github.com/iliyamo/bootcamp-directory/internal/utils"
)

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   5,
		RefreshTTLDays: 30,
		BcryptCost:     4,
	}
	return NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)), mock
}

func storedUserRow(id uint64, role string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at"}).
		AddRow(id, "John Doe", "john@gmail.com", "x", role, time.Now())
}

func refreshTokenRow(userID uint64, expires time.Time, revoked any) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
		AddRow(userID, expires, revoked)
}

func TestRefreshRotatesTokenPair(t *testing.T) {
	h, mock := newAuthHandler(t)
	raw := "old-refresh-token"
	hash := utils.HashRefreshRaw(raw)

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=").
		WithArgs(hash).
		WillReturnRows(refreshTokenRow(7, time.Now().Add(24*time.Hour), nil))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW\\(\\) WHERE token_hash=").
		WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WithArgs(uint64(7)).
		WillReturnRows(storedUserRow(7, model.RolePublisher))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(2, 1))

	c, rec := jsonContext(t, http.MethodPost, `{"refreshToken":"`+raw+`"}`, nil)
	require.NoError(t, h.Refresh(c))
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success      bool       `json:"success"`
		Token        string     `json:"token"`
		RefreshToken string     `json:"refreshToken"`
		Data         model.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEqual(t, raw, resp.RefreshToken, "rotation must issue a fresh refresh token")
	assert.Equal(t, uint64(7), resp.Data.ID)
}

// A rotated (revoked) token presented again is an auth failure, not a
// second rotation.
func TestRefreshRejectsRotatedToken(t *testing.T) {
	h, mock := newAuthHandler(t)
	raw := "already-rotated"

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=").
		WithArgs(utils.HashRefreshRaw(raw)).
		WillReturnRows(refreshTokenRow(7, time.Now().Add(24*time.Hour), time.Now()))

	c, _ := jsonContext(t, http.MethodPost, `{"refreshToken":"`+raw+`"}`, nil)
	err := h.Refresh(c)
	tagged := requireTagged(t, err, http.StatusUnauthorized)
	assert.Equal(t, "Not authorized to access this route", tagged.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	h, mock := newAuthHandler(t)
	raw := "expired-token"

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=").
		WithArgs(utils.HashRefreshRaw(raw)).
		WillReturnRows(refreshTokenRow(7, time.Now().Add(-time.Hour), nil))

	c, _ := jsonContext(t, http.MethodPost, `{"refreshToken":"`+raw+`"}`, nil)
	requireTagged(t, h.Refresh(c), http.StatusUnauthorized)
}

func TestRefreshRequiresToken(t *testing.T) {
	h, _ := newAuthHandler(t)
	c, _ := jsonContext(t, http.MethodPost, `{}`, nil)
	requireTagged(t, h.Refresh(c), http.StatusBadRequest)
}

func TestLogoutRevokesToken(t *testing.T) {
	h, mock := newAuthHandler(t)
	raw := "active-session"
	hash := utils.HashRefreshRaw(raw)

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=").
		WithArgs(hash).
		WillReturnRows(refreshTokenRow(7, time.Now().Add(24*time.Hour), nil))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW\\(\\) WHERE token_hash=").
		WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := jsonContext(t, http.MethodPost, `{"refreshToken":"`+raw+`"}`, nil)
	require.NoError(t, h.Logout(c))
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLogoutRejectsUnknownToken(t *testing.T) {
	h, mock := newAuthHandler(t)
	raw := "never-issued"

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=").
		WithArgs(utils.HashRefreshRaw(raw)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	c, _ := jsonContext(t, http.MethodPost, `{"refreshToken":"`+raw+`"}`, nil)
	requireTagged(t, h.Logout(c), http.StatusUnauthorized)
}
