package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bootcamp-directory/internal/httperr"
	"github.com/iliyamo/bootcamp-directory/internal/middleware"
	"github.com/iliyamo/bootcamp-directory/internal/model"
	"github.com/iliyamo/bootcamp-directory/internal/queue"
	"github.com/iliyamo/bootcamp-directory/internal/repository"
	queue_publisher "github.com/iliyamo/bootcamp-directory/internal/service"
)

// ReviewHandler bundles dependencies for review endpoints.
type ReviewHandler struct {
	Reviews   *repository.ReviewRepo
	Bootcamps *repository.BootcampRepo
}

func NewReviewHandler(reviews *repository.ReviewRepo, bootcamps *repository.BootcampRepo) *ReviewHandler {
	return &ReviewHandler{Reviews: reviews, Bootcamps: bootcamps}
}

func recomputeRating(bootcampID uint64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishRecompute(ctx, bootcampID, queue.AggregateRating)
	}()
}

// List handles GET /api/v1/reviews and the nested
// GET /api/v1/bootcamps/:bootcampId/reviews.
func (h *ReviewHandler) List(c echo.Context) error {
	if c.Param("bootcampId") != "" {
		bootcampID, err := paramID(c, "bootcampId")
		if err != nil {
			return err
		}
		rows, err := h.Reviews.ListByBootcamp(c.Request().Context(), bootcampID)
		if err != nil {
			return err
		}
		return okList(c, len(rows), nil, rows)
	}

	lq := middleware.ListQueryFrom(c)
	rows, total, err := h.Reviews.List(c.Request().Context(), lq)
	if err != nil {
		return err
	}
	pagination := lq.Paginate(total)
	return okList(c, len(rows), &pagination, rows)
}

// Get handles GET /api/v1/reviews/:id.
func (h *ReviewHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	review, err := h.Reviews.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("Review with id %d was not found", id)
		}
		return err
	}
	return okData(c, http.StatusOK, review)
}

// Create handles POST /api/v1/bootcamps/:bootcampId/reviews. Route
// middleware restricts it to users and admins; one review per user
// per bootcamp.
func (h *ReviewHandler) Create(c echo.Context) error {
	ident, err := requireIdentity(c)
	if err != nil {
		return err
	}
	bootcampID, err := paramID(c, "bootcampId")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.Bootcamps.GetByID(ctx, bootcampID); err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("Bootcamp with id %d was not found", bootcampID)
		}
		return err
	}

	var review model.Review
	if err := c.Bind(&review); err != nil {
		return httperr.BadRequest("Invalid request body")
	}
	review.ID = 0
	review.BootcampID = bootcampID
	review.UserID = ident.ID
	if err := validate(review.Validate()); err != nil {
		return err
	}

	if err := h.Reviews.Create(ctx, &review); err != nil {
		if err == repository.ErrAlreadyReviewed {
			return httperr.BadRequest("User %d has already reviewed bootcamp %d", ident.ID, bootcampID)
		}
		return err
	}
	recomputeRating(bootcampID)

	created, err := h.Reviews.GetByID(ctx, review.ID)
	if err != nil {
		return err
	}
	return okData(c, http.StatusCreated, created)
}

// Update handles PUT /api/v1/reviews/:id with a partial body.
func (h *ReviewHandler) Update(c echo.Context) error {
	ident, err := requireIdentity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	review, err := h.Reviews.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("Review with id %d was not found", id)
		}
		return err
	}
	if !canModify(ident, review.UserID) {
		return httperr.Unauthorized("User %d is not authorized to update review %d", ident.ID, id)
	}

	owner, bootcampID := review.UserID, review.BootcampID
	if err := c.Bind(&review); err != nil {
		return httperr.BadRequest("Invalid request body")
	}
	review.ID, review.UserID, review.BootcampID = id, owner, bootcampID
	if err := validate(review.Validate()); err != nil {
		return err
	}

	if err := h.Reviews.Update(ctx, &review); err != nil {
		return err
	}
	recomputeRating(bootcampID)

	updated, err := h.Reviews.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return okData(c, http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/reviews/:id and returns the deleted
// record.
func (h *ReviewHandler) Delete(c echo.Context) error {
	ident, err := requireIdentity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	review, err := h.Reviews.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("Review with id %d was not found", id)
		}
		return err
	}
	if !canModify(ident, review.UserID) {
		return httperr.Unauthorized("User %d is not authorized to delete review %d", ident.ID, id)
	}
	if err := h.Reviews.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("Review with id %d was not found", id)
		}
		return err
	}
	recomputeRating(review.BootcampID)
	return okData(c, http.StatusOK, review)
}
