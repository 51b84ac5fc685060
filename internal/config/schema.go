package config

import "time"

// Environments with a built-in backend address
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the resolved client configuration
type Config struct {
	Env          string        `yaml:"env" mapstructure:"env"`
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url"`
	ChatPath     string        `yaml:"chat_path" mapstructure:"chat_path"`
	StartPath    string        `yaml:"start_path" mapstructure:"start_path"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	HistoryLimit int           `yaml:"history_limit" mapstructure:"history_limit"`
}
