// Package config gathers every environment-driven setting in one place.
// Values are read once at startup; services receive the struct instead of
// calling os.Getenv themselves.
package config

import (
	"errors"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	// DefaultWalkingSpeedKmh feeds the boundary ETA estimate when no
	// override is configured.
	DefaultWalkingSpeedKmh = 5.0
)

type Config struct {
	Port           string
	AllowedOrigins string
	JWTSecret      string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// NominatimURL enables reverse geocoding of new areas when set.
	NominatimURL       string
	NominatimUserAgent string

	// PersonWalkingSpeedKmh is the assumed walking speed for the
	// time-to-boundary estimate.
	PersonWalkingSpeedKmh float64

	// AutomaticallyCleanupGroupsAndAreas gates the deactivation cascade:
	// when false, emptied groups and orphaned areas keep their active flag.
	AutomaticallyCleanupGroupsAndAreas bool
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		JWTSecret:      os.Getenv("JWT_SECRET"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		NominatimURL:       os.Getenv("NOMINATIM_URL"),
		NominatimUserAgent: getEnv("NOMINATIM_USER_AGENT", "likkle-backend"),

		PersonWalkingSpeedKmh:              getEnvFloat("PERSON_WALKING_SPEED_KMH", DefaultWalkingSpeedKmh),
		AutomaticallyCleanupGroupsAndAreas: getEnvBool("AUTO_CLEANUP_GROUPS_AREAS", true),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.PersonWalkingSpeedKmh <= 0 {
		cfg.PersonWalkingSpeedKmh = DefaultWalkingSpeedKmh
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
