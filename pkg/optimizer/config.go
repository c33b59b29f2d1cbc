// Package optimizer provides a Go client for the external schedule
// optimization engine's HTTP job API: health, data import, solve
// submission, status polling, and result retrieval.
package optimizer

import "time"

// Default client settings.
const (
	DefaultBaseURL = "http://localhost:8090"
	DefaultPort    = "8090"
	DefaultTimeout = 30 * time.Second
)

// Config holds all configuration for the optimizer API client.
type Config struct {
	// BaseURL is the root URL of the optimizer service.
	BaseURL string

	// Timeout is the HTTP client timeout for each request.
	Timeout time.Duration

	// PushData selects the data deployment mode. When true the client
	// pushes the full export payload to the optimizer before a solve;
	// when false the optimizer pulls the data itself and ImportData is
	// a no-op.
	PushData bool
}

// DefaultConfig returns a Config with default settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:  DefaultBaseURL,
		Timeout:  DefaultTimeout,
		PushData: true,
	}
}

// WithBaseURL returns a copy of the config with the specified base URL.
func (c Config) WithBaseURL(url string) Config {
	c.BaseURL = url
	return c
}

// WithTimeout returns a copy of the config with the specified timeout.
func (c Config) WithTimeout(timeout time.Duration) Config {
	c.Timeout = timeout
	return c
}

// WithPushData returns a copy of the config with the data deployment
// mode set.
func (c Config) WithPushData(push bool) Config {
	c.PushData = push
	return c
}
