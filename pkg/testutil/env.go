// ABOUTME: Test utilities for loading SAP credentials from .env files.
// ABOUTME: Used by integration tests that need a real SAP system.

package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/joho/godotenv"
)

var (
	envOnce   sync.Once
	envLoaded bool
)

// LoadEnv loads the nearest .env file, searching the current directory and
// up to 5 parent directories. Variables already set in the environment take
// precedence. Safe to call multiple times - only loads once.
func LoadEnv() {
	envOnce.Do(func() {
		dir, err := os.Getwd()
		if err != nil {
			return
		}

		for range 6 {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				envLoaded = godotenv.Load(envPath) == nil
				return
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				return
			}
			dir = parent
		}
	})
}

// EnvLoaded returns true if a .env file was successfully loaded.
func EnvLoaded() bool {
	return envLoaded
}

// Credentials holds the connection settings for integration tests.
type Credentials struct {
	URL      string
	User     string
	Password string
	Client   string
	Language string
	Insecure bool
}

// SAPCredentials returns the SAP_* settings, skipping t when the system is
// not configured.
func SAPCredentials(t testing.TB) Credentials {
	t.Helper()
	LoadEnv()

	c := Credentials{
		URL:      os.Getenv("SAP_URL"),
		User:     os.Getenv("SAP_USER"),
		Password: os.Getenv("SAP_PASSWORD"),
		Client:   os.Getenv("SAP_CLIENT"),
		Language: os.Getenv("SAP_LANGUAGE"),
		Insecure: os.Getenv("SAP_INSECURE") == "true",
	}
	if c.URL == "" || c.User == "" || c.Password == "" {
		t.Skip("SAP_URL, SAP_USER, SAP_PASSWORD required for integration tests (set in .env or environment)")
	}
	if c.Client == "" {
		c.Client = "001"
	}
	if c.Language == "" {
		c.Language = "EN"
	}
	return c
}
