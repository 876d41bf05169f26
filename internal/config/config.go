// Package config loads application configuration from environment
// variables. Missing required variables abort startup.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values.
type Config struct {
	Env  string // dev | test | prod
	Port string

	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int

	FileUploadPath string
	MaxFileUpload  int64 // bytes

	GeocoderURL string
	GeocoderKey string
}

// Load reads configuration from environment variables. Optional
// settings (uploads, geocoder) have defaults or may stay empty.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		FileUploadPath: getenv("FILE_UPLOAD_PATH", "./public/uploads"),
		MaxFileUpload:  int64(atoi(getenv("MAX_FILE_UPLOAD", "1048576"))),
		GeocoderURL:    os.Getenv("GEOCODER_URL"),
		GeocoderKey:    os.Getenv("GEOCODER_API_KEY"),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
