// Package daemon manages the SnapSolve daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/snapsolve/snapsolve/internal/app/progression"
	"github.com/snapsolve/snapsolve/internal/domain"
)

// Config holds all daemon configuration.
type Config struct {
	Quota     QuotaConfig     `toml:"quota"`
	Points    PointsConfig    `toml:"points"`
	Clock     ClockConfig     `toml:"clock"`
	API       APIConfig       `toml:"api"`
	Reminders RemindersConfig `toml:"reminders"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// QuotaConfig controls the free daily allowance.
type QuotaConfig struct {
	DailyBase int `toml:"daily_base"`
}

// PointsConfig controls the points economy.
type PointsConfig struct {
	PerSolve int64 `toml:"per_solve"`
}

// ClockConfig picks the timezone calendar days roll over in.
type ClockConfig struct {
	Timezone string `toml:"timezone"` // IANA name; "" or "Local" = system zone
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// RemindersConfig controls streak-risk reminders.
type RemindersConfig struct {
	Enabled    bool   `toml:"enabled"`
	Hour       string `toml:"hour"`
	MaxPerDay  int    `toml:"max_per_day"`
	QuietStart string `toml:"quiet_start"`
	QuietEnd   string `toml:"quiet_end"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text, json
}

// TelemetryConfig controls metrics exposure.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	policy := domain.DefaultReminderPolicy()
	return Config{
		Quota:  QuotaConfig{DailyBase: progression.DefaultDailyBase},
		Points: PointsConfig{PerSolve: progression.DefaultPointsPerSolve},
		Clock:  ClockConfig{Timezone: "Local"},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8765,
		},
		Reminders: RemindersConfig{
			Enabled:    policy.Enabled,
			Hour:       policy.Hour,
			MaxPerDay:  policy.MaxPerDay,
			QuietStart: policy.QuietStart,
			QuietEnd:   policy.QuietEnd,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{Prometheus: true},
	}
}

// LoadConfig reads config from $SNAPSOLVE_HOME/config.toml, falling back to
// defaults.
func LoadConfig() (Config, error) {
	return LoadConfigFrom(filepath.Join(snapsolveHome(), "config.toml"))
}

// LoadConfigFrom reads config from path over the defaults. A missing file
// yields the defaults.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet, use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the engine cannot fall back from.
func (c Config) Validate() error {
	if c.Quota.DailyBase < 0 {
		return fmt.Errorf("quota.daily_base must be >= 0, got %d", c.Quota.DailyBase)
	}
	if c.Points.PerSolve < 0 {
		return fmt.Errorf("points.per_solve must be >= 0, got %d", c.Points.PerSolve)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port out of range: %d", c.API.Port)
	}
	if err := c.ReminderPolicy().Validate(); err != nil {
		return fmt.Errorf("reminders: %w", err)
	}
	return nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	switch c.Clock.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Clock.Timezone)
	if err != nil {
		return nil, fmt.Errorf("clock.timezone: %w", err)
	}
	return loc, nil
}

// ReminderPolicy converts the reminders section to the domain policy.
func (c Config) ReminderPolicy() domain.ReminderPolicy {
	return domain.ReminderPolicy{
		Enabled:    c.Reminders.Enabled,
		Hour:       c.Reminders.Hour,
		MaxPerDay:  c.Reminders.MaxPerDay,
		QuietStart: c.Reminders.QuietStart,
		QuietEnd:   c.Reminders.QuietEnd,
	}
}

// SaveConfig writes the config to $SNAPSOLVE_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(snapsolveHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// snapsolveHome returns the SnapSolve data directory.
func snapsolveHome() string {
	if env := os.Getenv("SNAPSOLVE_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".snapsolve")
}

// Home is exported for use by other packages.
func Home() string {
	return snapsolveHome()
}
