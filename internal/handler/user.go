package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bootcamp-directory/internal/config"
	"github.com/iliyamo/bootcamp-directory/internal/httperr"
	"github.com/iliyamo/bootcamp-directory/internal/middleware"
	"github.com/iliyamo/bootcamp-directory/internal/model"
	"github.com/iliyamo/bootcamp-directory/internal/repository"
)

// UserHandler covers the admin-only user management endpoints. All of
// its routes sit behind Protect and Authorize(admin).
type UserHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewUserHandler(cfg config.Config, users *repository.UserRepo, tokens *repository.TokenRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users, Tokens: tokens}
}

type userReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// List handles GET /api/v1/users via the query builder.
func (h *UserHandler) List(c echo.Context) error {
	lq := middleware.ListQueryFrom(c)
	rows, total, err := h.Users.List(c.Request().Context(), lq)
	if err != nil {
		return err
	}
	pagination := lq.Paginate(total)
	return okList(c, len(rows), &pagination, rows)
}

// Get handles GET /api/v1/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("User with id %d was not found", id)
		}
		return err
	}
	return okData(c, http.StatusOK, u)
}

// Create handles POST /api/v1/users. Unlike self-registration an admin
// may assign any role, including admin.
func (h *UserHandler) Create(c echo.Context) error {
	var req userReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("Invalid request body")
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RoleUser
	}
	u := model.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Role:  role,
	}
	violations := u.Validate()
	if len(req.Password) < 6 {
		violations = append(violations, "Please add a password with 6 or more characters")
	}
	if err := validate(violations); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.Users.Create(ctx, &u, req.Password, h.Cfg.BcryptCost); err != nil {
		if err == repository.ErrEmailExists {
			return httperr.BadRequest("Duplicate field value entered")
		}
		return err
	}
	return okData(c, http.StatusCreated, u)
}

// Update handles PUT /api/v1/users/:id with a partial body. A new
// password, if supplied, replaces the stored hash.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("User with id %d was not found", id)
		}
		return err
	}

	req := userReq{Name: u.Name, Email: u.Email, Role: u.Role}
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("Invalid request body")
	}
	u.Name = strings.TrimSpace(req.Name)
	u.Email = strings.ToLower(strings.TrimSpace(req.Email))
	u.Role = strings.ToLower(strings.TrimSpace(req.Role))
	violations := u.Validate()
	if req.Password != "" && len(req.Password) < 6 {
		violations = append(violations, "Please add a password with 6 or more characters")
	}
	if err := validate(violations); err != nil {
		return err
	}

	if err := h.Users.Update(ctx, &u, req.Password, h.Cfg.BcryptCost); err != nil {
		if err == repository.ErrEmailExists {
			return httperr.BadRequest("Duplicate field value entered")
		}
		return err
	}
	if req.Password != "" {
		// A reset password invalidates every existing session.
		_ = h.Tokens.RevokeAllForUser(ctx, id)
	}
	return okData(c, http.StatusOK, u)
}

// Delete handles DELETE /api/v1/users/:id and returns the deleted
// record.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("User with id %d was not found", id)
		}
		return err
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("User with id %d was not found", id)
		}
		return err
	}
	return okData(c, http.StatusOK, u)
}
