// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - Load layers a YAML file and HIREFLOW_ env vars on top of the defaults.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// HRBaseURL is the base URL of the external HR service.
	HRBaseURL string `koanf:"hr_base_url"`

	// HRToken is sent as a bearer token when set.
	HRToken string `koanf:"hr_token"`

	// HRTimeoutMS bounds a single HR service call.
	HRTimeoutMS int `koanf:"hr_timeout_ms"`

	// RedisAddr enables the shared Redis session store when set.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// SessionTTLSeconds expires idle session entries; 0 keeps them until restart.
	SessionTTLSeconds int `koanf:"session_ttl_s"`

	// DriftTolerance is the allowed gap between derived and backend scores
	// before an application is flagged inconsistent.
	DriftTolerance float64 `koanf:"drift_tolerance"`

	// Timezone is the IANA zone interview date/time pairs are read in.
	Timezone string `koanf:"timezone"`

	// OptionPoints maps answer options (high, neutral, low, unanswered) to points.
	OptionPoints map[string]float64 `koanf:"option_points"`

	// AllowedOrigins lists CORS origins for the browser front end.
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		HRBaseURL:         "http://localhost:8000",
		HRTimeoutMS:       10_000,
		SessionTTLSeconds: 8 * 60 * 60,
		DriftTolerance:    3.0,
		Timezone:          "UTC",
		OptionPoints: map[string]float64{
			"high":       2,
			"neutral":    1,
			"low":        0,
			"unanswered": 0,
		},
		AllowedOrigins: []string{"*"},
	}
}

// HRTimeout returns the HR call timeout as a duration.
func (c *Config) HRTimeout() time.Duration {
	return time.Duration(c.HRTimeoutMS) * time.Millisecond
}

// SessionTTL returns the session entry lifetime; zero means no expiry.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// Validate checks the loaded values and normalizes list fields.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.HRBaseURL == "" {
		return fmt.Errorf("%w: hr_base_url must not be empty", ErrInvalidConfig)
	}
	if c.HRTimeoutMS <= 0 {
		return fmt.Errorf("%w: hr_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.SessionTTLSeconds < 0 {
		return fmt.Errorf("%w: session_ttl_s must not be negative", ErrInvalidConfig)
	}
	if c.DriftTolerance < 0 {
		return fmt.Errorf("%w: drift_tolerance must not be negative", ErrInvalidConfig)
	}
	for name, pts := range c.OptionPoints {
		switch name {
		case "high", "neutral", "low", "unanswered":
		default:
			return fmt.Errorf("%w: unknown option %q in option_points", ErrInvalidConfig, name)
		}
		if pts < 0 {
			return fmt.Errorf("%w: option_points.%s must not be negative", ErrInvalidConfig, name)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	// HIREFLOW_ALLOWED_ORIGINS arrives as one comma separated value.
	origins := make([]string, 0, len(c.AllowedOrigins))
	for _, o := range c.AllowedOrigins {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
	}
	c.AllowedOrigins = origins
	return nil
}
