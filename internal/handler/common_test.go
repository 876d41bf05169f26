package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bootcamp-directory/internal/httperr"
	"github.com/iliyamo/bootcamp-directory/internal/model"
)

func paramContext(name, value string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

func TestParamID(t *testing.T) {
	id, err := paramID(paramContext("id", "42"), "id")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	for _, raw := range []string{"abc", "-1", "0", "1.5", ""} {
		_, err := paramID(paramContext("id", raw), "id")
		require.Error(t, err, "raw %q", raw)
		var tagged *httperr.Error
		require.ErrorAs(t, err, &tagged)
		assert.Equal(t, http.StatusBadRequest, tagged.Status)
	}
}

func TestCanModify(t *testing.T) {
	admin := &model.Identity{ID: 1, Role: model.RoleAdmin}
	owner := &model.Identity{ID: 7, Role: model.RolePublisher}
	other := &model.Identity{ID: 8, Role: model.RolePublisher}

	assert.True(t, canModify(admin, 7))
	assert.True(t, canModify(owner, 7))
	assert.False(t, canModify(other, 7))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validate(nil))

	err := validate([]string{"Please add a name", "Please add a description"})
	var tagged *httperr.Error
	require.ErrorAs(t, err, &tagged)
	assert.Equal(t, http.StatusBadRequest, tagged.Status)
	assert.Equal(t, "Please add a name, Please add a description", tagged.Message)
}
