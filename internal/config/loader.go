package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "TERCEL_"

// ParseError reports a malformed configuration file.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing config %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads the configuration file at path, overlays environment
// variables, and validates the result. A missing file is not an
// error: defaults plus environment apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Fall through to defaults.
		case err != nil:
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, &ParseError{Path: path, Message: err.Error(), Err: err}
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays TERCEL_* environment variables onto cfg. Unset
// variables leave the file/default value in place.
func applyEnv(cfg *Config) {
	if v, ok := lookupInt("POLL_TIMEOUT_MS"); ok {
		cfg.Poll.TimeoutMS = v
	}
	if v, ok := lookupInt("MAX_FPS"); ok {
		cfg.Render.MaxFPS = v
	}
	if v, ok := lookupInt("FAILURE_BUDGET"); ok {
		cfg.Render.FailureBudget = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "LOG_LEVEL"); ok {
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := os.LookupEnv(EnvPrefix + "LOG_FILE"); ok {
		cfg.Logging.File = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "SCRIPT"); ok {
		cfg.Script.Path = v
	}
	if v, ok := lookupInt("SCRIPT_TIMEOUT_MS"); ok {
		cfg.Script.HandlerTimeoutMS = v
	}
}

func lookupInt(name string) (int, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}
