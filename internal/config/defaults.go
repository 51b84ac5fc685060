package config

import (
	"time"

	"github.com/spf13/viper"
)

// DevelopmentBaseURL is the backend address used when env is development
// and no base_url is configured
const DevelopmentBaseURL = "http://localhost:8001"

// MaxHistoryLimit is the most history the backend accepts with a message
const MaxHistoryLimit = 10

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Env:          EnvDevelopment,
		ChatPath:     "/api/assistant/chat",
		StartPath:    "/chat",
		Timeout:      10 * time.Second,
		HistoryLimit: MaxHistoryLimit,
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("env", d.Env)
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("chat_path", d.ChatPath)
	v.SetDefault("start_path", d.StartPath)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("history_limit", d.HistoryLimit)
}
