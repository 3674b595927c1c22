// Package config provides YAML-based configuration loading for the chat router.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"chat-router/scheduler"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration, loaded from chatrouter.yaml.
// Zero numeric values take their defaults.
type Config struct {
	Listen             string        `yaml:"listen"`
	LogLevel           string        `yaml:"log_level"`
	LogFormat          string        `yaml:"log_format"`
	PeriodicRunSeconds int           `yaml:"periodic_run_seconds"`
	Timezone           string        `yaml:"timezone"`
	RostersFile        string        `yaml:"rosters_file"`
	Chat               ChatConfig    `yaml:"chat"`
	Queue              QueueConfig   `yaml:"queue"`
	Shift              ShiftConfig   `yaml:"shift"`
	Events             EventsConfig  `yaml:"events"`
	Metrics            MetricsConfig `yaml:"metrics"`
}

// ChatConfig controls session lifetime.
type ChatConfig struct {
	MaxRetry             int `yaml:"max_retry"`
	ExpiryHorizonSeconds int `yaml:"expiry_horizon_seconds"`
}

// QueueConfig sets how often the maintenance tasks over the queues run.
type QueueConfig struct {
	CheckLiveIntervalSeconds    int `yaml:"check_live_interval_seconds"`
	CheckExpiredIntervalSeconds int `yaml:"check_expired_interval_seconds"`
}

// ShiftConfig controls team rotation.
type ShiftConfig struct {
	AutoAssign                 *bool  `yaml:"auto_assign"`
	CheckChangeIntervalSeconds int    `yaml:"check_change_interval_seconds"`
	DefaultShift               string `yaml:"default_shift"`
}

// EventsConfig holds the RabbitMQ settings. An empty URL disables publishing.
type EventsConfig struct {
	AMQPURL       string `yaml:"amqp_url"`
	Exchange      string `yaml:"exchange"`
	RetryAttempts int    `yaml:"retry_attempts"`
}

// MetricsConfig holds the optional Pushgateway target.
type MetricsConfig struct {
	PushURL string `yaml:"push_url"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.PeriodicRunSeconds == 0 {
		c.PeriodicRunSeconds = 5
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.Chat.MaxRetry == 0 {
		c.Chat.MaxRetry = 3
	}
	if c.Chat.ExpiryHorizonSeconds == 0 {
		c.Chat.ExpiryHorizonSeconds = 60
	}
	if c.Queue.CheckLiveIntervalSeconds == 0 {
		c.Queue.CheckLiveIntervalSeconds = 10
	}
	if c.Queue.CheckExpiredIntervalSeconds == 0 {
		c.Queue.CheckExpiredIntervalSeconds = 5
	}
	if c.Shift.AutoAssign == nil {
		on := true
		c.Shift.AutoAssign = &on
	}
	if c.Shift.CheckChangeIntervalSeconds == 0 {
		c.Shift.CheckChangeIntervalSeconds = 60
	}
	if c.Shift.DefaultShift == "" {
		c.Shift.DefaultShift = "Day"
	}
	if c.Events.Exchange == "" {
		c.Events.Exchange = "chat-router"
	}
	if c.Events.RetryAttempts == 0 {
		c.Events.RetryAttempts = 5
	}
}

// validate checks that all values are present and consistent. An unknown
// default_shift is not an error; the router falls back to Day and warns.
func (c *Config) validate() error {
	var errs []string
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log_level %q must be debug, info, warn or error", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log_format %q must be text or json", c.LogFormat))
	}
	if _, err := scheduler.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("timezone: %v", err))
	}

	positive := []struct {
		name  string
		value int
	}{
		{"periodic_run_seconds", c.PeriodicRunSeconds},
		{"chat.max_retry", c.Chat.MaxRetry},
		{"chat.expiry_horizon_seconds", c.Chat.ExpiryHorizonSeconds},
		{"queue.check_live_interval_seconds", c.Queue.CheckLiveIntervalSeconds},
		{"queue.check_expired_interval_seconds", c.Queue.CheckExpiredIntervalSeconds},
		{"shift.check_change_interval_seconds", c.Shift.CheckChangeIntervalSeconds},
		{"events.retry_attempts", c.Events.RetryAttempts},
	}
	for _, p := range positive {
		if p.value < 0 {
			errs = append(errs, fmt.Sprintf("%s must not be negative", p.name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// PeriodicRun is the driver's tick interval.
func (c *Config) PeriodicRun() time.Duration {
	return seconds(c.PeriodicRunSeconds)
}

// ExpiryHorizon is how long a live chat stays valid without a message.
func (c *Config) ExpiryHorizon() time.Duration {
	return seconds(c.Chat.ExpiryHorizonSeconds)
}

// CheckLiveInterval gates the liveness task.
func (c *Config) CheckLiveInterval() time.Duration {
	return seconds(c.Queue.CheckLiveIntervalSeconds)
}

// CheckExpiredInterval gates the expiry task.
func (c *Config) CheckExpiredInterval() time.Duration {
	return seconds(c.Queue.CheckExpiredIntervalSeconds)
}

// CheckChangeInterval gates the shift change task.
func (c *Config) CheckChangeInterval() time.Duration {
	return seconds(c.Shift.CheckChangeIntervalSeconds)
}

// AutoAssign reports whether teams rotate with the wall clock.
func (c *Config) AutoAssign() bool {
	return c.Shift.AutoAssign == nil || *c.Shift.AutoAssign
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	return scheduler.LoadLocation(c.Timezone)
}

// Level parses log_level for slog.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
