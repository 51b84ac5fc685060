package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TASKCHAT_BASE_URL
const EnvPrefix = "TASKCHAT"

// ConfigError reports an invalid or unreadable configuration value
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("config error: %v", e.Err)
	}
	return fmt.Sprintf("config error [%s]: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewViper returns a viper instance carrying the defaults and the
// environment binding. Callers may bind command flags to it before Load.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load resolves the configuration from v. With an explicit path only that
// file is read and it must exist. Otherwise the global file and then the
// project file are merged when present.
func Load(v *viper.Viper, path string) (*Config, error) {
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &ConfigError{Err: fmt.Errorf("failed to read %s: %w", path, err)}
		}
	} else {
		for _, candidate := range []string{GlobalConfigPath(), ProjectConfigPath()} {
			if err := mergeFile(v, candidate); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("failed to decode config: %w", err)}
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.BaseURL == "" && cfg.Env == EnvDevelopment {
		cfg.BaseURL = DevelopmentBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &ConfigError{Err: err}
	}
	defer f.Close()

	if err := v.MergeConfig(f); err != nil {
		return &ConfigError{Err: fmt.Errorf("failed to read %s: %w", path, err)}
	}
	return nil
}

// Validate checks value ranges and that a backend address is known
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return &ConfigError{Key: "env", Err: fmt.Errorf("unknown environment %q", c.Env)}
	}
	if c.BaseURL == "" {
		return &ConfigError{Key: "base_url", Err: fmt.Errorf("required in %s", c.Env)}
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return &ConfigError{Key: "base_url", Err: fmt.Errorf("%q is not an http(s) URL", c.BaseURL)}
	}
	if c.Timeout <= 0 {
		return &ConfigError{Key: "timeout", Err: fmt.Errorf("must be positive, got %s", c.Timeout)}
	}
	if c.HistoryLimit < 1 || c.HistoryLimit > MaxHistoryLimit {
		return &ConfigError{Key: "history_limit", Err: fmt.Errorf("must be between 1 and %d, got %d", MaxHistoryLimit, c.HistoryLimit)}
	}
	return nil
}

// GlobalConfigPath returns the path to the per-user config file
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".taskchat", "config.yaml")
}

// ProjectConfigPath returns the path to the config file of the working directory
func ProjectConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".taskchat", "config.yaml")
}
