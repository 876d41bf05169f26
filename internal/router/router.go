// Package router wires handlers and middleware onto the Echo
// instance. Route registration is split per resource so each group
// declares its own guards.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/bootcamp-directory/internal/config"
	"github.com/iliyamo/bootcamp-directory/internal/handler"
	"github.com/iliyamo/bootcamp-directory/internal/middleware"
	"github.com/iliyamo/bootcamp-directory/internal/model"
	"github.com/iliyamo/bootcamp-directory/internal/repository"
)

// Deps collects everything route registration needs.
type Deps struct {
	Cfg       config.Config
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	RDB       *redis.Client

	Users *repository.UserRepo

	Auth      *handler.AuthHandler
	Bootcamps *handler.BootcampHandler
	Courses   *handler.CourseHandler
	Reviews   *handler.ReviewHandler
	Admin     *handler.UserHandler
}

// Register mounts all API routes under /api/v1 plus the health check.
func Register(e *echo.Echo, d Deps) {
	e.Use(middleware.RateLimit(d.RateLimit, d.RDB))

	e.GET("/healthz", handler.Health)

	protect := middleware.Protect(d.Cfg.JWTSecret, d.Users)
	publishers := middleware.Authorize(model.RolePublisher, model.RoleAdmin)
	reviewers := middleware.Authorize(model.RoleUser, model.RoleAdmin)
	admins := middleware.Authorize(model.RoleAdmin)
	cached := middleware.ResponseCache(d.Cache, d.RDB)

	registerAuth(e, d, protect)
	registerBootcamps(e, d, protect, publishers, reviewers, cached)
	registerCourses(e, d, protect, publishers, cached)
	registerReviews(e, d, protect, reviewers, cached)
	registerUsers(e, d, protect, admins)
}

func registerAuth(e *echo.Echo, d Deps, protect echo.MiddlewareFunc) {
	g := e.Group("/api/v1/auth")
	g.POST("/register", d.Auth.Register)
	g.POST("/login", d.Auth.Login)
	g.POST("/refresh", d.Auth.Refresh)
	g.POST("/logout", d.Auth.Logout)
	g.GET("/me", d.Auth.Me, protect)
}

func registerBootcamps(e *echo.Echo, d Deps, protect, publishers, reviewers, cached echo.MiddlewareFunc) {
	g := e.Group("/api/v1/bootcamps")

	g.GET("", d.Bootcamps.List, middleware.ListQuery(repository.BootcampFields), cached)
	g.GET("/:id", d.Bootcamps.Get, cached)
	g.GET("/radius/:zipcode/:distance", d.Bootcamps.WithinRadius)
	g.POST("", d.Bootcamps.Create, protect, publishers)
	g.PUT("/:id", d.Bootcamps.Update, protect, publishers)
	g.DELETE("/:id", d.Bootcamps.Delete, protect, publishers)
	g.PUT("/:id/photo", d.Bootcamps.UploadPhoto, protect, publishers)

	// Nested collections live under their parent bootcamp.
	g.GET("/:bootcampId/courses", d.Courses.List, cached)
	g.POST("/:bootcampId/courses", d.Courses.Create, protect, publishers)
	g.GET("/:bootcampId/reviews", d.Reviews.List, cached)
	g.POST("/:bootcampId/reviews", d.Reviews.Create, protect, reviewers)
}

func registerCourses(e *echo.Echo, d Deps, protect, publishers, cached echo.MiddlewareFunc) {
	g := e.Group("/api/v1/courses")
	g.GET("", d.Courses.List, middleware.ListQuery(repository.CourseFields), cached)
	g.GET("/:id", d.Courses.Get, cached)
	g.PUT("/:id", d.Courses.Update, protect, publishers)
	g.DELETE("/:id", d.Courses.Delete, protect, publishers)
}

func registerReviews(e *echo.Echo, d Deps, protect, reviewers, cached echo.MiddlewareFunc) {
	g := e.Group("/api/v1/reviews")
	g.GET("", d.Reviews.List, middleware.ListQuery(repository.ReviewFields), cached)
	g.GET("/:id", d.Reviews.Get, cached)
	g.PUT("/:id", d.Reviews.Update, protect, reviewers)
	g.DELETE("/:id", d.Reviews.Delete, protect, reviewers)
}

func registerUsers(e *echo.Echo, d Deps, protect, admins echo.MiddlewareFunc) {
	g := e.Group("/api/v1/users", protect, admins)
	g.GET("", d.Admin.List, middleware.ListQuery(repository.UserFields))
	g.GET("/:id", d.Admin.Get)
	g.POST("", d.Admin.Create)
	g.PUT("/:id", d.Admin.Update)
	g.DELETE("/:id", d.Admin.Delete)
}
