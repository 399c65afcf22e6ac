// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Data     DataConfig
	Session  SessionConfig
	Reminder ReminderConfig
	Push     PushConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// DataConfig holds data storage configuration.
type DataConfig struct {
	// BasePath is the root directory for all persisted data.
	BasePath string
	// DatabasePath is the sqlite database file (default: {base}/pagepace.db).
	DatabasePath string
	// TimerPath is the directory for the timer checkpoint store (default: {base}/timer).
	TimerPath string
}

// SessionConfig holds reading session configuration.
type SessionConfig struct {
	// StaleAfter is how long a session may go without a timer checkpoint
	// before the cleanup job abandons it (default: 6h).
	StaleAfter time.Duration
	// CleanupInterval is how often the cleanup job runs (default: 30m).
	CleanupInterval time.Duration
}

// ReminderConfig holds reminder dispatch configuration.
type ReminderConfig struct {
	// Enabled runs the in-process dispatch worker. Disable when scheduling
	// dispatch externally via the remind binary (default: true).
	Enabled bool
	// WindowMinutes is the match window around each user's preferred time,
	// inclusive on both sides (default: 5).
	WindowMinutes int
	// DispatchInterval must be at most 2x the window so no preferred time
	// falls between two ticks (default: 10m).
	DispatchInterval time.Duration
	// Timezone is the reference location for window matching and streak
	// day-bucketing (default: UTC).
	Timezone string
}

// PushConfig holds push delivery configuration.
type PushConfig struct {
	// TTLSeconds is how long the push service may queue an undelivered
	// notification (default: 86400).
	TTLSeconds int
	// RatePerSecond limits outbound deliveries per endpoint host (default: 5).
	RatePerSecond float64
	// Burst is the rate limiter burst size (default: 10).
	Burst int
	// Timeout bounds a single delivery attempt (default: 10s).
	Timeout time.Duration
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for data storage")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	staleAfter := flag.String("session-stale-after", "", "Abandon sessions without a checkpoint for this long (default: 6h)")
	cleanupInterval := flag.String("session-cleanup-interval", "", "How often to run stale session cleanup (default: 30m)")

	reminderEnabled := flag.String("reminder-enabled", "", "Run the in-process reminder worker (default: true)")
	reminderWindow := flag.String("reminder-window", "", "Reminder match window in minutes (default: 5)")
	reminderInterval := flag.String("reminder-interval", "", "Reminder dispatch interval (default: 10m)")
	reminderTimezone := flag.String("reminder-timezone", "", "Reference timezone for reminders and streaks (default: UTC)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	// Parse flags but don't exit on error - we want to handle it gracefully.
	flag.Parse()

	// Load .env file if it exists (silently ignore if not found). Real
	// environment variables keep precedence over file values.
	_ = godotenv.Load(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Reminder: ReminderConfig{
			Enabled:       getBoolConfigValue(*reminderEnabled, "REMINDER_ENABLED", true),
			WindowMinutes: getIntConfigValue(*reminderWindow, "REMINDER_WINDOW_MINUTES", 5),
			Timezone:      getConfigValue(*reminderTimezone, "REMINDER_TIMEZONE", "UTC"),
		},
		Push: PushConfig{
			TTLSeconds:    getIntConfigValue("", "PUSH_TTL_SECONDS", 86400),
			RatePerSecond: float64(getIntConfigValue("", "PUSH_RATE_PER_SECOND", 5)),
			Burst:         getIntConfigValue("", "PUSH_BURST", 10),
		},
	}

	// Parse durations.
	var err error
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Session.StaleAfter, err = parseDurationValue(*staleAfter, "SESSION_STALE_AFTER", "6h"); err != nil {
		return nil, err
	}
	if cfg.Session.CleanupInterval, err = parseDurationValue(*cleanupInterval, "SESSION_CLEANUP_INTERVAL", "30m"); err != nil {
		return nil, err
	}
	if cfg.Reminder.DispatchInterval, err = parseDurationValue(*reminderInterval, "REMINDER_DISPATCH_INTERVAL", "10m"); err != nil {
		return nil, err
	}
	if cfg.Push.Timeout, err = parseDurationValue("", "PUSH_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	// Expand and derive data paths.
	if err := cfg.expandDataPaths(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Reminder.WindowMinutes < 0 {
		return fmt.Errorf("reminder window must not be negative, got %d", c.Reminder.WindowMinutes)
	}

	// A longer interval would let a preferred time fall between two ticks.
	window := time.Duration(c.Reminder.WindowMinutes) * time.Minute
	if c.Reminder.Enabled && c.Reminder.DispatchInterval > 2*window {
		return fmt.Errorf("reminder dispatch interval %s exceeds twice the window (%s)",
			c.Reminder.DispatchInterval, window)
	}

	if _, err := time.LoadLocation(c.Reminder.Timezone); err != nil {
		return fmt.Errorf("invalid reminder timezone %q: %w", c.Reminder.Timezone, err)
	}

	return nil
}

// Location resolves the configured reference timezone. Validate guarantees
// this cannot fail after LoadConfig.
func (c *ReminderConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// expandDataPaths expands ~ in the base path and derives the database and
// timer paths from it when they are not set explicitly.
func (c *Config) expandDataPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "PagePace", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded

	if c.Data.DatabasePath == "" {
		c.Data.DatabasePath = filepath.Join(c.Data.BasePath, "pagepace.db")
	}
	if c.Data.TimerPath == "" {
		c.Data.TimerPath = filepath.Join(c.Data.BasePath, "timer")
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts "true"/"1"/"yes" and "false"/"0"/"no" (case-insensitive);
// anything unrecognized keeps the default rather than silently flipping off.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	switch strings.ToLower(strValue) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(strings.ReplaceAll(envKey, "_", " ")), strValue, err)
	}
	return d, nil
}
