// Package config loads daytrip settings.
//
// Values are layered from defaults, an optional YAML file named by
// DAYTRIP_CONFIG, and DAYTRIP_* environment variables, in increasing order of
// precedence.
package config

import (
	"fmt"
	"time"

	"github.com/sosodev/duration"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is json or console.
	LogFormat string `koanf:"log_format"`

	// Seed, Restarts and MaxIterations tune the k-means search.
	Seed          int64 `koanf:"seed"`
	Restarts      int   `koanf:"restarts"`
	MaxIterations int   `koanf:"max_iterations"`

	// DBPath is the sqlite landmark catalog.
	DBPath string `koanf:"db_path"`

	FoursquareAPIKey string `koanf:"foursquare_api_key"`
	OpenAIAPIKey     string `koanf:"openai_api_key"`
	OpenAIModel      string `koanf:"openai_model"`

	// HTTPTimeout bounds every outbound request, e.g. "15s".
	HTTPTimeout string `koanf:"http_timeout"`

	// EnrichBatchSize landmarks are looked up concurrently; batches start no
	// more often than EnrichBatchInterval (ISO-8601, e.g. "PT1S").
	EnrichBatchSize     int    `koanf:"enrich_batch_size"`
	EnrichBatchInterval string `koanf:"enrich_batch_interval"`

	// ForecastHorizon is an ISO-8601 period such as "P90D".
	ForecastHorizon string `koanf:"forecast_horizon"`

	// HistoryYears of daily weather feed the forecast.
	HistoryYears int `koanf:"history_years"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "console",
		Seed:                42,
		Restarts:            10,
		MaxIterations:       300,
		DBPath:              "landmarks.db",
		OpenAIModel:         "gpt-4o-mini",
		HTTPTimeout:         "15s",
		EnrichBatchSize:     5,
		EnrichBatchInterval: "PT1S",
		ForecastHorizon:     "P90D",
		HistoryYears:        5,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Restarts < 1 {
		return fmt.Errorf("%w: restarts must be positive, got %d", ErrInvalidConfig, c.Restarts)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: max_iterations must be positive, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	}
	if c.EnrichBatchSize < 1 {
		return fmt.Errorf("%w: enrich_batch_size must be positive, got %d", ErrInvalidConfig, c.EnrichBatchSize)
	}
	if c.HistoryYears < 1 {
		return fmt.Errorf("%w: history_years must be positive, got %d", ErrInvalidConfig, c.HistoryYears)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if _, err := c.BatchInterval(); err != nil {
		return err
	}
	if _, err := c.Horizon(); err != nil {
		return err
	}
	return nil
}

// Timeout parses HTTPTimeout.
func (c *Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil {
		return 0, fmt.Errorf("%w: http_timeout: %v", ErrInvalidConfig, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: http_timeout must be positive", ErrInvalidConfig)
	}
	return d, nil
}

// BatchInterval parses EnrichBatchInterval.
func (c *Config) BatchInterval() (time.Duration, error) {
	return isoDuration("enrich_batch_interval", c.EnrichBatchInterval)
}

// Horizon parses ForecastHorizon.
func (c *Config) Horizon() (time.Duration, error) {
	d, err := isoDuration("forecast_horizon", c.ForecastHorizon)
	if err != nil {
		return 0, err
	}
	if d < 24*time.Hour {
		return 0, fmt.Errorf("%w: forecast_horizon must be at least one day", ErrInvalidConfig)
	}
	return d, nil
}

func isoDuration(key, value string) (time.Duration, error) {
	d, err := duration.Parse(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	td := d.ToTimeDuration()
	if td < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, key)
	}
	return td, nil
}
