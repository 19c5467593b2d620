package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig configures the interactive client.
type ClientConfig struct {
	BackendURL     string        `mapstructure:"backend_url"`
	PreferredModel string        `mapstructure:"preferred_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// NewClientViper returns a viper instance bound to the client's environment
// variables (BACKEND_URL, PREFERRED_MODEL, CLIENT_TIMEOUT). Callers may bind
// command-line flags on top before calling ClientFromViper.
func NewClientViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("backend_url", "http://localhost:8000")
	v.SetDefault("preferred_model", "llama3.2:latest")
	v.SetDefault("timeout", time.Duration(0))

	_ = v.BindEnv("backend_url", "BACKEND_URL")
	_ = v.BindEnv("preferred_model", "PREFERRED_MODEL")
	_ = v.BindEnv("timeout", "CLIENT_TIMEOUT")
	return v
}

func ClientFromViper(v *viper.Viper) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	return &cfg, nil
}
