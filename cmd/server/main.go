package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/iliyamo/bootcamp-directory/internal/config"
	"github.com/iliyamo/bootcamp-directory/internal/database"
	"github.com/iliyamo/bootcamp-directory/internal/geocoder"
	"github.com/iliyamo/bootcamp-directory/internal/handler"
	"github.com/iliyamo/bootcamp-directory/internal/httperr"
	"github.com/iliyamo/bootcamp-directory/internal/queue"
	"github.com/iliyamo/bootcamp-directory/internal/repository"
	"github.com/iliyamo/bootcamp-directory/internal/router"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := newLogger(cfg.Env)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = database.EnsureSchema(ctx, db)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("schema bootstrap failed")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable; caching and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	bootcamps := repository.NewBootcampRepo(db)
	courses := repository.NewCourseRepo(db)
	reviews := repository.NewReviewRepo(db)

	geo := geocoder.New(cfg.GeocoderURL, cfg.GeocoderKey)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httperr.Handler(log, cfg.Env)
	e.Use(echomw.Recover())
	e.Static("/uploads", cfg.FileUploadPath)

	router.Register(e, router.Deps{
		Cfg:       cfg,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		RDB:       rdb,
		Users:     users,
		Auth:      handler.NewAuthHandler(cfg, users, tokens),
		Bootcamps: handler.NewBootcampHandler(cfg, bootcamps, geo),
		Courses:   handler.NewCourseHandler(courses, bootcamps),
		Reviews:   handler.NewReviewHandler(reviews, bootcamps),
		Admin:     handler.NewUserHandler(cfg, users, tokens),
	})

	go func() {
		if err := queue.StartRecomputeConsumer(courses, reviews); err != nil {
			log.Error().Err(err).Msg("recompute consumer stopped")
		}
	}()

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// newLogger builds the process logger: console output for local
// development, plain JSON elsewhere.
func newLogger(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "dev" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
