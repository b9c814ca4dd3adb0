package configuration

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Environment variables are read with this prefix, e.g. COBRACHAT_API_KEY.
const envPrefix = "COBRACHAT"

const (
	defaultAPIURL         = "https://api.openai.com/v1/chat/completions"
	defaultModel          = "gpt-3.5-turbo"
	defaultRequestTimeout = 60
)

// Config holds configuration for the cobrachat tool.
type Config struct {
	// Full URL of the chat-completion endpoint.
	APIURL string
	// Credential for the endpoint. Empty disables live calls.
	APIKey string
	// Model identifier sent on chat/completions requests.
	Model string
	// Provider pins the wire shape ("openai" or "gemini"). Empty means
	// the shape is detected from the endpoint host.
	Provider string
	// Timeout applied to provider requests, in seconds.
	RequestTimeout int
	// Path of the persisted state slot.
	StateFile string
}

// Parse configuration from the environment, applying defaults.
func Parse() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "getting home directory")
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault("api_url", defaultAPIURL)
	v.SetDefault("api_key", "")
	v.SetDefault("model", defaultModel)
	v.SetDefault("provider", "")
	v.SetDefault("request_timeout", defaultRequestTimeout)
	v.SetDefault("state_file", filepath.Join(home, ".config", "cobrachat", "state.json"))

	config := &Config{
		APIURL:         v.GetString("api_url"),
		APIKey:         v.GetString("api_key"),
		Model:          v.GetString("model"),
		Provider:       v.GetString("provider"),
		RequestTimeout: v.GetInt("request_timeout"),
		StateFile:      v.GetString("state_file"),
	}
	switch config.Provider {
	case "", "openai", "gemini":
	default:
		return nil, errors.Errorf("unknown provider (%s)", config.Provider)
	}
	if config.RequestTimeout <= 0 {
		return nil, errors.Errorf("request timeout must be positive, got %d", config.RequestTimeout)
	}
	return config, nil
}

// MockMode reports whether live provider calls are disabled.
func (c *Config) MockMode() bool {
	return c.APIKey == ""
}
