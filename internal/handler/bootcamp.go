package handler

import (
	"context"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bootcamp-directory/internal/config"
	"github.com/iliyamo/bootcamp-directory/internal/geocoder"
	"github.com/iliyamo/bootcamp-directory/internal/httperr"
	"github.com/iliyamo/bootcamp-directory/internal/middleware"
	"github.com/iliyamo/bootcamp-directory/internal/model"
	"github.com/iliyamo/bootcamp-directory/internal/repository"
	"github.com/iliyamo/bootcamp-directory/internal/utils"
)

// BootcampHandler bundles dependencies for bootcamp endpoints.
type BootcampHandler struct {
	Cfg       config.Config
	Bootcamps *repository.BootcampRepo
	Geo       *geocoder.Client
}

func NewBootcampHandler(cfg config.Config, repo *repository.BootcampRepo, geo *geocoder.Client) *BootcampHandler {
	return &BootcampHandler{Cfg: cfg, Bootcamps: repo, Geo: geo}
}

// List handles GET /api/v1/bootcamps via the query builder.
func (h *BootcampHandler) List(c echo.Context) error {
	lq := middleware.ListQueryFrom(c)
	rows, total, err := h.Bootcamps.List(c.Request().Context(), lq)
	if err != nil {
		return err
	}
	pagination := lq.Paginate(total)
	return okList(c, len(rows), &pagination, rows)
}

// Get handles GET /api/v1/bootcamps/:id.
func (h *BootcampHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.Bootcamps.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("Bootcamp with id %d was not found", id)
		}
		return err
	}
	return okData(c, http.StatusOK, b)
}

// Create handles POST /api/v1/bootcamps. Restricted to publishers and
// admins by route middleware; a non-admin publisher may own at most
// one bootcamp.
func (h *BootcampHandler) Create(c echo.Context) error {
	ident, err := requireIdentity(c)
	if err != nil {
		return err
	}

	var b model.Bootcamp
	if err := c.Bind(&b); err != nil {
		return httperr.BadRequest("Invalid request body")
	}
	b.ID = 0
	b.UserID = ident.ID
	b.Slug = utils.Slugify(b.Name)
	if err := validate(b.Validate()); err != nil {
		return err
	}

	ctx := c.Request().Context()

	if !ident.IsAdmin() {
		exists, err := h.Bootcamps.ExistsForOwner(ctx, ident.ID)
		if err != nil {
			return err
		}
		if exists {
			return httperr.BadRequest("The user with ID %d has already published a bootcamp", ident.ID)
		}
	}

	h.geocode(ctx, &b)

	if err := h.Bootcamps.Create(ctx, &b); err != nil {
		return err
	}
	created, err := h.Bootcamps.GetByID(ctx, b.ID)
	if err != nil {
		return err
	}
	return okData(c, http.StatusCreated, created)
}

// geocode resolves the address to coordinates, best-effort. A missing
// key or provider failure leaves the coordinates empty rather than
// failing the write.
func (h *BootcampHandler) geocode(ctx context.Context, b *model.Bootcamp) {
	if b.Address == "" || h.Geo == nil {
		return
	}
	loc, err := h.Geo.Geocode(ctx, b.Address)
	if err != nil {
		return
	}
	b.Latitude, b.Longitude = &loc.Lat, &loc.Lng
}

// Update handles PUT /api/v1/bootcamps/:id with a partial body.
func (h *BootcampHandler) Update(c echo.Context) error {
	ident, err := requireIdentity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	b, err := h.Bootcamps.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("Bootcamp with id %d was not found", id)
		}
		return err
	}
	if !canModify(ident, b.UserID) {
		return httperr.Unauthorized("User %d is not authorized to update bootcamp %d", ident.ID, id)
	}

	// Bind over the loaded record: absent fields keep their values.
	owner, oldAddress := b.UserID, b.Address
	if err := c.Bind(&b); err != nil {
		return httperr.BadRequest("Invalid request body")
	}
	b.ID, b.UserID = id, owner // identifier and owner are immutable
	b.Slug = utils.Slugify(b.Name)
	if err := validate(b.Validate()); err != nil {
		return err
	}
	if b.Address != oldAddress {
		b.Latitude, b.Longitude = nil, nil
		h.geocode(ctx, &b)
	}

	if err := h.Bootcamps.Update(ctx, &b); err != nil {
		return err
	}
	updated, err := h.Bootcamps.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return okData(c, http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/bootcamps/:id and returns the deleted
// record's last known state for client confirmation.
func (h *BootcampHandler) Delete(c echo.Context) error {
	ident, err := requireIdentity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	b, err := h.Bootcamps.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("Bootcamp with id %d was not found", id)
		}
		return err
	}
	if !canModify(ident, b.UserID) {
		return httperr.Unauthorized("User %d is not authorized to delete bootcamp %d", ident.ID, id)
	}
	if err := h.Bootcamps.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("Bootcamp with id %d was not found", id)
		}
		return err
	}
	return okData(c, http.StatusOK, b)
}

// UploadPhoto handles PUT /api/v1/bootcamps/:id/photo. Only image
// uploads up to the configured size are accepted; the file is stored
// as photo_<id><ext> under the upload path.
func (h *BootcampHandler) UploadPhoto(c echo.Context) error {
	ident, err := requireIdentity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	b, err := h.Bootcamps.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("Bootcamp with id %d was not found", id)
		}
		return err
	}
	if !canModify(ident, b.UserID) {
		return httperr.Unauthorized("User %d is not authorized to update bootcamp %d", ident.ID, id)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return httperr.BadRequest("Please upload a file")
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		return httperr.BadRequest("Please upload an image file")
	}
	if file.Size > h.Cfg.MaxFileUpload {
		return httperr.BadRequest("Please upload an image less than %d bytes", h.Cfg.MaxFileUpload)
	}

	name := "photo_" + strconv.FormatUint(id, 10) + filepath.Ext(file.Filename)
	if err := utils.SaveUpload(file, filepath.Join(h.Cfg.FileUploadPath, name)); err != nil {
		return err
	}
	if err := h.Bootcamps.UpdatePhoto(ctx, id, name); err != nil {
		return err
	}
	return okData(c, http.StatusOK, name)
}

// WithinRadius handles GET /api/v1/bootcamps/radius/:zipcode/:distance
// (distance in miles).
func (h *BootcampHandler) WithinRadius(c echo.Context) error {
	zipcode := c.Param("zipcode")
	miles, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil || miles <= 0 {
		return httperr.BadRequest("Invalid distance: %s", c.Param("distance"))
	}
	if h.Geo == nil {
		return httperr.BadRequest("Geocoding is not configured")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	loc, err := h.Geo.Geocode(ctx, zipcode)
	if err != nil {
		return httperr.BadRequest("Could not geocode zipcode %s", zipcode)
	}
	rows, err := h.Bootcamps.WithinRadius(ctx, loc.Lat, loc.Lng, miles)
	if err != nil {
		return err
	}
	return okList(c, len(rows), nil, rows)
}
