package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds everything the composition root needs to wire the app.
// The API base URL is the only configuration the core contract requires;
// the rest derives from the data directory or carries sane defaults.
type Config struct {
	HomeDir         string
	DBPath          string
	CredentialsPath string
	ProvidersPath   string
	ExportDir       string
	API             APIConfig
}

// APIConfig holds the remote service surface.
type APIConfig struct {
	BaseURL         string
	RequestTimeout  time.Duration
	GenerateTimeout time.Duration
	PollInterval    time.Duration
}

// New resolves configuration from the given home directory and the
// process environment. An empty homeDir falls back to PATHLIGHT_HOME,
// then to ~/.pathlight.
func New(homeDir string) (Config, error) {
	if homeDir == "" {
		homeDir = os.Getenv("PATHLIGHT_HOME")
	}
	if homeDir == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home dir: %w", err)
		}
		homeDir = filepath.Join(userHome, ".pathlight")
	}
	cfg := Config{
		HomeDir:         homeDir,
		DBPath:          filepath.Join(homeDir, "pathlight.db"),
		CredentialsPath: filepath.Join(homeDir, "credentials.json"),
		ProvidersPath:   filepath.Join(homeDir, "providers"),
		ExportDir:       filepath.Join(homeDir, "exports"),
		API: APIConfig{
			BaseURL:         getEnv("PATHLIGHT_API_URL", "http://localhost:8000"),
			RequestTimeout:  getEnvAsDuration("PATHLIGHT_REQUEST_TIMEOUT", 15*time.Second),
			GenerateTimeout: getEnvAsDuration("PATHLIGHT_GENERATE_TIMEOUT", 5*time.Minute),
			PollInterval:    getEnvAsDuration("PATHLIGHT_POLL_INTERVAL", 3*time.Second),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the resolved configuration.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base url is required")
	}
	if c.API.RequestTimeout <= 0 || c.API.GenerateTimeout <= 0 {
		return fmt.Errorf("api timeouts must be positive")
	}
	if c.API.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
