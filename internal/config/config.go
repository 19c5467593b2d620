package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "SENTIMENT"

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// DefaultModels is the catalog served when none is configured.
var DefaultModels = []string{
	"gpt-oss:20b",
	"mistral-nemo:12b",
	"aya:latest",
	"qwen2.5:latest",
	"tinyllama:latest",
	"llama3.2:latest",
	"mistral:latest",
	"deepseek-r1:1.5b",
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Provider ProviderConfig `mapstructure:"provider"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ProviderConfig points at the locally hosted model runtime.
type ProviderConfig struct {
	Kind        string  `mapstructure:"kind"`
	Endpoint    string  `mapstructure:"endpoint"`
	APIKey      string  `mapstructure:"api_key"`
	Temperature float64 `mapstructure:"temperature"`
	// MaxTokens caps the generated output; 0 leaves it to the runtime.
	MaxTokens int64 `mapstructure:"max_tokens"`
}

type CatalogConfig struct {
	Models []string `mapstructure:"models"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.read_timeout", 30*time.Second)
	// Local models can take minutes to answer, so writes are not cut off.
	v.SetDefault("server.write_timeout", time.Duration(0))
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("provider.kind", ProviderOpenAI)
	v.SetDefault("provider.endpoint", "http://localhost:11434")
	v.SetDefault("provider.api_key", "ollama")
	v.SetDefault("provider.temperature", 0.0)
	v.SetDefault("provider.max_tokens", 0)

	v.SetDefault("catalog.models", DefaultModels)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// LoadConfig reads defaults, then the optional config file at path, then
// SENTIMENT_* environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Catalog.Models = cleanModels(cfg.Catalog.Models)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("configuration loaded successfully", "provider", cfg.Provider.Kind, "models", len(cfg.Catalog.Models))
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.Catalog.Models) == 0 {
		errs = append(errs, errors.New("catalog.models must contain at least one model"))
	}
	switch c.Provider.Kind {
	case ProviderOpenAI, ProviderOllama:
	default:
		errs = append(errs, fmt.Errorf("provider.kind %q is not supported (want %s or %s)", c.Provider.Kind, ProviderOpenAI, ProviderOllama))
	}
	if c.Provider.Endpoint == "" {
		errs = append(errs, errors.New("provider.endpoint cannot be empty"))
	}
	if c.Provider.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("provider.max_tokens %d cannot be negative", c.Provider.MaxTokens))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path %q must start with /", c.Metrics.Path))
	}
	return errors.Join(errs...)
}

func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// cleanModels trims entries and drops blanks, keeping order.
func cleanModels(models []string) []string {
	out := make([]string, 0, len(models))
	for _, m := range models {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}
