// Package config reads settings from a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the client and dev backend settings.
type Config struct {
	APIURL      string        // backend root, without /api
	FrontendURL string        // base of the CAS callback URL
	CASURL      string        // CAS server
	SessionDB   string        // sqlite file holding the session
	Timeout     time.Duration // per-request HTTP timeout

	DevAddr string // dev backend listen address
	DevDB   string // dev backend sqlite file
}

// Defaults.
const (
	DefaultAPIURL      = "http://localhost:8000"
	DefaultFrontendURL = "http://localhost:3000"
	DefaultCASURL      = "https://fed.princeton.edu/cas"
	DefaultSessionDB   = "tigerpop-session.sqlite3"
	DefaultTimeout     = 30 * time.Second
	DefaultDevAddr     = ":8000"
	DefaultDevDB       = "tigerpop-dev.sqlite3"
)

// Load reads the given .env files (".env" when none are named) and then the
// environment. Missing files are ignored; variables already set in the
// environment win over file values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	timeout, err := time.ParseDuration(getEnv("TIGERPOP_TIMEOUT", DefaultTimeout.String()))
	if err != nil {
		return nil, fmt.Errorf("parsing TIGERPOP_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("TIGERPOP_TIMEOUT must be positive, got %s", timeout)
	}

	return &Config{
		APIURL:      getEnv("TIGERPOP_API_URL", DefaultAPIURL),
		FrontendURL: getEnv("TIGERPOP_FRONTEND_URL", DefaultFrontendURL),
		CASURL:      getEnv("TIGERPOP_CAS_URL", DefaultCASURL),
		SessionDB:   getEnv("TIGERPOP_SESSION_DB", DefaultSessionDB),
		Timeout:     timeout,
		DevAddr:     getEnv("TIGERPOP_DEV_ADDR", DefaultDevAddr),
		DevDB:       getEnv("TIGERPOP_DEV_DB", DefaultDevDB),
	}, nil
}

// getEnv returns the environment value of key, or def when unset or empty.
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
