// internal/config/config.go
//
// Runtime configuration for the Battleship server, read from the environment
// (main loads a .env file first via godotenv).
//
// Environment variables:
//   PORT            listen port (default 5175)
//   LOG_LEVEL       zerolog level name (default info)
//   LAYOUT_DIR      directory searched first for layout files (default unset)
//   DEFAULT_LAYOUT  layout used when a request names none (default example.txt)
//   STORE           "memory" or "sqlite" (default memory)
//   DATABASE_DSN    SQLite DSN (default a shared in-memory database)
//   SERVER_SECRET   root secret for token/daily keys (dev default)
//   CLIENT_ORIGIN   CORS origin (default http://localhost:5173)
//   DAILY_SALT      mixed into the daily layout choice (default local_dev_salt)
//   TOKEN_TTL_HOURS lifetime of session tokens (default 24)
//   SECURE_COOKIES  mark the player cookie Secure + SameSite=None (default false)

package config

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/hkdf"
)

const devSecret = "dev_secret_change_me"

// Config holds everything main needs to wire the server.
type Config struct {
	Port          string
	LogLevel      zerolog.Level
	LayoutDir     string
	DefaultLayout string
	Store         string
	DatabaseDSN   string
	ServerSecret  string
	ClientOrigin  string
	DailySalt     string
	TokenTTL      time.Duration
	SecureCookies bool
}

// Load reads the configuration from the environment.
// Unknown store kinds, bad log levels, non-numeric TTLs and non-boolean
// SECURE_COOKIES values are errors.
func Load() (*Config, error) {
	c := &Config{
		Port:          getEnv("PORT", "5175"),
		LayoutDir:     os.Getenv("LAYOUT_DIR"),
		DefaultLayout: getEnv("DEFAULT_LAYOUT", "example.txt"),
		Store:         getEnv("STORE", "memory"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "file:battleship?mode=memory&cache=shared"),
		ServerSecret:  getEnv("SERVER_SECRET", devSecret),
		ClientOrigin:  getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		DailySalt:     getEnv("DAILY_SALT", "local_dev_salt"),
	}

	lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	c.LogLevel = lvl

	hours, err := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "24"))
	if err != nil || hours <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL_HOURS: want a positive integer, got %q", os.Getenv("TOKEN_TTL_HOURS"))
	}
	c.TokenTTL = time.Duration(hours) * time.Hour

	secure, err := strconv.ParseBool(getEnv("SECURE_COOKIES", "false"))
	if err != nil {
		return nil, fmt.Errorf("SECURE_COOKIES: %w", err)
	}
	c.SecureCookies = secure

	switch c.Store {
	case "memory", "sqlite":
	default:
		return nil, fmt.Errorf("STORE: unknown kind %q", c.Store)
	}
	return c, nil
}

// UsingDevSecret reports whether SERVER_SECRET was left at its default.
func (c *Config) UsingDevSecret() bool { return c.ServerSecret == devSecret }

// DeriveKey returns a 32-byte key for purpose, derived from ServerSecret with
// HKDF-SHA256. Different purposes yield independent keys.
func (c *Config) DeriveKey(purpose string) []byte {
	r := hkdf.New(sha256.New, []byte(c.ServerSecret), nil, []byte("battleship/"+purpose))
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		// HKDF-SHA256 can produce up to 8160 bytes.
		panic(err)
	}
	return key
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
