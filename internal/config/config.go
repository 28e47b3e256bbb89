// Package config holds the engine's runtime configuration: TOML file
// loading, environment overrides, validation, and live reload.
package config

import (
	"fmt"
	"time"
)

// Config is the full engine configuration.
type Config struct {
	Poll    PollConfig    `toml:"poll"`
	Render  RenderConfig  `toml:"render"`
	Logging LoggingConfig `toml:"logging"`
	Script  ScriptConfig  `toml:"script"`
}

// PollConfig controls the input polling loop.
type PollConfig struct {
	// TimeoutMS is how long one poll waits for input before reporting
	// a timeout, in milliseconds.
	TimeoutMS int `toml:"timeout_ms"`
}

// RenderConfig controls frame pacing and failure handling.
type RenderConfig struct {
	// MaxFPS caps how many frames per second are presented. Zero
	// disables the cap.
	MaxFPS int `toml:"max_fps"`

	// FailureBudget is how many consecutive flush failures are
	// tolerated before the loop terminates.
	FailureBudget int `toml:"failure_budget"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// ScriptConfig controls the embedded scripting host.
type ScriptConfig struct {
	// Path is the startup script. Empty disables scripting.
	Path string `toml:"path"`

	// HandlerTimeoutMS bounds each script handler invocation, in
	// milliseconds.
	HandlerTimeoutMS int `toml:"handler_timeout_ms"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Poll:   PollConfig{TimeoutMS: 50},
		Render: RenderConfig{MaxFPS: 60, FailureBudget: 3},
		Logging: LoggingConfig{
			Level: "info",
		},
		Script: ScriptConfig{
			HandlerTimeoutMS: 100,
		},
	}
}

// PollTimeout returns the poll timeout as a duration.
func (c Config) PollTimeout() time.Duration {
	return time.Duration(c.Poll.TimeoutMS) * time.Millisecond
}

// HandlerTimeout returns the script handler deadline as a duration.
func (c Config) HandlerTimeout() time.Duration {
	return time.Duration(c.Script.HandlerTimeoutMS) * time.Millisecond
}

// Validate checks the configuration for values the engine cannot run
// with.
func (c Config) Validate() error {
	if c.Poll.TimeoutMS < 0 {
		return fmt.Errorf("poll.timeout_ms must be >= 0, got %d", c.Poll.TimeoutMS)
	}
	if c.Render.MaxFPS < 0 {
		return fmt.Errorf("render.max_fps must be >= 0, got %d", c.Render.MaxFPS)
	}
	if c.Render.FailureBudget < 1 {
		return fmt.Errorf("render.failure_budget must be >= 1, got %d", c.Render.FailureBudget)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug/info/warn/error, got %q", c.Logging.Level)
	}
	if c.Script.HandlerTimeoutMS < 0 {
		return fmt.Errorf("script.handler_timeout_ms must be >= 0, got %d", c.Script.HandlerTimeoutMS)
	}
	return nil
}
