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

// CourseHandler bundles dependencies for course endpoints.
type CourseHandler struct {
	Courses   *repository.CourseRepo
	Bootcamps *repository.BootcampRepo
}

func NewCourseHandler(courses *repository.CourseRepo, bootcamps *repository.BootcampRepo) *CourseHandler {
	return &CourseHandler{Courses: courses, Bootcamps: bootcamps}
}

// recomputeCost enqueues an average-cost refresh, best-effort and off
// the request path.
func recomputeCost(bootcampID uint64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishRecompute(ctx, bootcampID, queue.AggregateCost)
	}()
}

// List handles GET /api/v1/courses and the nested
// GET /api/v1/bootcamps/:bootcampId/courses. The nested form filters
// by parent directly; zero matches for a valid parent is an empty
// 200, consistent with the generic list path.
func (h *CourseHandler) List(c echo.Context) error {
	if c.Param("bootcampId") != "" {
		bootcampID, err := paramID(c, "bootcampId")
		if err != nil {
			return err
		}
		rows, err := h.Courses.ListByBootcamp(c.Request().Context(), bootcampID)
		if err != nil {
			return err
		}
		return okList(c, len(rows), nil, rows)
	}

	lq := middleware.ListQueryFrom(c)
	rows, total, err := h.Courses.List(c.Request().Context(), lq)
	if err != nil {
		return err
	}
	pagination := lq.Paginate(total)
	return okList(c, len(rows), &pagination, rows)
}

// Get handles GET /api/v1/courses/:id with the parent expanded.
func (h *CourseHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	course, err := h.Courses.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("Course with id %d was not found", id)
		}
		return err
	}
	return okData(c, http.StatusOK, course)
}

// Create handles POST /api/v1/bootcamps/:bootcampId/courses. Only the
// bootcamp's owner (or an admin) may add courses to it.
func (h *CourseHandler) Create(c echo.Context) error {
	ident, err := requireIdentity(c)
	if err != nil {
		return err
	}
	bootcampID, err := paramID(c, "bootcampId")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	parent, err := h.Bootcamps.GetByID(ctx, bootcampID)
	if err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("Bootcamp with id %d was not found", bootcampID)
		}
		return err
	}
	if !canModify(ident, parent.UserID) {
		return httperr.Unauthorized("User %d is not authorized to add a course to bootcamp %d",
			ident.ID, bootcampID)
	}

	var course model.Course
	if err := c.Bind(&course); err != nil {
		return httperr.BadRequest("Invalid request body")
	}
	course.ID = 0
	course.BootcampID = bootcampID
	course.UserID = ident.ID
	if err := validate(course.Validate()); err != nil {
		return err
	}

	if err := h.Courses.Create(ctx, &course); err != nil {
		return err
	}
	recomputeCost(bootcampID)

	created, err := h.Courses.GetByID(ctx, course.ID)
	if err != nil {
		return err
	}
	return okData(c, http.StatusCreated, created)
}

// Update handles PUT /api/v1/courses/:id with a partial body.
func (h *CourseHandler) Update(c echo.Context) error {
	ident, err := requireIdentity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	course, err := h.Courses.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("Course with id %d was not found", id)
		}
		return err
	}
	if !canModify(ident, course.UserID) {
		return httperr.Unauthorized("User %d is not authorized to update course %d", ident.ID, id)
	}

	owner, bootcampID := course.UserID, course.BootcampID
	if err := c.Bind(&course); err != nil {
		return httperr.BadRequest("Invalid request body")
	}
	course.ID, course.UserID, course.BootcampID = id, owner, bootcampID
	if err := validate(course.Validate()); err != nil {
		return err
	}

	if err := h.Courses.Update(ctx, &course); err != nil {
		return err
	}
	recomputeCost(bootcampID)

	updated, err := h.Courses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return okData(c, http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/courses/:id and returns the deleted
// record.
func (h *CourseHandler) Delete(c echo.Context) error {
	ident, err := requireIdentity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	course, err := h.Courses.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("Course with id %d was not found", id)
		}
		return err
	}
	if !canModify(ident, course.UserID) {
		return httperr.Unauthorized("User %d is not authorized to delete course %d", ident.ID, id)
	}
	if err := h.Courses.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return httperr.NotFound("Course with id %d was not found", id)
		}
		return err
	}
	recomputeCost(course.BootcampID)
	return okData(c, http.StatusOK, course)
}
