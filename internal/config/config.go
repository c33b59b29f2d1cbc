// Package config holds the server and generation configuration,
// populated from SKED_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ServerConfig holds configuration for the sked server.
type ServerConfig struct {
	Addr      string // Listen address (default ":8080")
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: text, json
	DBPath    string // SQLite database path (default ~/.sked/sked.db, ":memory:" for testing)

	// WeightsFile optionally points at a YAML constraint-weights file.
	WeightsFile string

	// ArchiveDir and ArchiveBucket select the export payload archive
	// target; both empty disables archiving.
	ArchiveDir    string
	ArchiveBucket string

	Optimizer OptimizerConfig
}

// OptimizerConfig holds the optimizer integration settings.
type OptimizerConfig struct {
	// Enabled gates the whole generation subsystem.
	Enabled bool

	// BaseURL is the optimizer service root URL.
	BaseURL string

	// DefaultTimeSeconds is the solve time budget when a request does
	// not specify one.
	DefaultTimeSeconds int

	// PollSeconds is the status poll interval.
	PollSeconds int

	// AutoStart launches the optimizer as a child process when it is
	// not reachable.
	AutoStart bool

	// ArtifactPath is the optimizer executable artifact, absolute or
	// relative to the working directory.
	ArtifactPath string

	// LauncherPath is an optional runtime launcher (e.g. a JVM) that
	// runs the artifact. Empty means the artifact is executed directly.
	LauncherPath string

	// StartupTimeoutSeconds bounds the wait for a launched optimizer to
	// become healthy.
	StartupTimeoutSeconds int

	// PushData selects push vs pull data deployment mode.
	PushData bool
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
		Optimizer: DefaultOptimizerConfig(),
	}
}

// DefaultOptimizerConfig returns sensible optimizer defaults.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		Enabled:               true,
		BaseURL:               "http://localhost:8090",
		DefaultTimeSeconds:    300,
		PollSeconds:           5,
		AutoStart:             false,
		StartupTimeoutSeconds: 60,
		PushData:              true,
	}
}

// PollInterval returns the poll interval as a duration.
func (c OptimizerConfig) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

// DefaultTimeBudget returns the default solve budget as a duration.
func (c OptimizerConfig) DefaultTimeBudget() time.Duration {
	return time.Duration(c.DefaultTimeSeconds) * time.Second
}

// StartupTimeout returns the startup timeout as a duration.
func (c OptimizerConfig) StartupTimeout() time.Duration {
	return time.Duration(c.StartupTimeoutSeconds) * time.Second
}

// FromEnv returns a ServerConfig populated from SKED_* environment
// variables, falling back to defaults for anything unset.
func FromEnv() ServerConfig {
	cfg := DefaultServerConfig()

	cfg.Addr = envString("SKED_ADDR", cfg.Addr)
	cfg.LogLevel = envString("SKED_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envString("SKED_LOG_FORMAT", cfg.LogFormat)
	cfg.DBPath = envString("SKED_DB_PATH", cfg.DBPath)
	cfg.WeightsFile = envString("SKED_WEIGHTS_FILE", cfg.WeightsFile)
	cfg.ArchiveDir = envString("SKED_ARCHIVE_DIR", cfg.ArchiveDir)
	cfg.ArchiveBucket = envString("SKED_ARCHIVE_BUCKET", cfg.ArchiveBucket)

	o := &cfg.Optimizer
	o.Enabled = envBool("SKED_OPTIMIZER_ENABLED", o.Enabled)
	o.BaseURL = envString("SKED_OPTIMIZER_URL", o.BaseURL)
	o.DefaultTimeSeconds = envInt("SKED_OPTIMIZER_TIME_SECONDS", o.DefaultTimeSeconds)
	o.PollSeconds = envInt("SKED_OPTIMIZER_POLL_SECONDS", o.PollSeconds)
	o.AutoStart = envBool("SKED_OPTIMIZER_AUTOSTART", o.AutoStart)
	o.ArtifactPath = envString("SKED_OPTIMIZER_ARTIFACT", o.ArtifactPath)
	o.LauncherPath = envString("SKED_OPTIMIZER_LAUNCHER", o.LauncherPath)
	o.StartupTimeoutSeconds = envInt("SKED_OPTIMIZER_STARTUP_TIMEOUT_SECONDS", o.StartupTimeoutSeconds)
	o.PushData = envBool("SKED_OPTIMIZER_PUSH_DATA", o.PushData)

	return cfg
}

// Validate checks the configuration for obvious misconfiguration.
func (c ServerConfig) Validate() error {
	if c.Optimizer.PollSeconds <= 0 {
		return fmt.Errorf("poll interval must be positive, got %d", c.Optimizer.PollSeconds)
	}
	if c.Optimizer.DefaultTimeSeconds <= 0 {
		return fmt.Errorf("default optimization time must be positive, got %d", c.Optimizer.DefaultTimeSeconds)
	}
	if c.Optimizer.AutoStart && c.Optimizer.ArtifactPath == "" {
		return fmt.Errorf("auto-start enabled but no artifact path configured")
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
