// cmd/server/main.go
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/analyzer"
	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/config"
	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/llm"
	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/logging"
	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/server"
)

var (
	version    = "dev"
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "sentiment-server",
	Short: "Sentiment analysis gateway backed by Ollama models",
	Long: `sentiment-server classifies text as positive, negative or neutral by
prompting a locally hosted Ollama model.

Settings come from an optional config file and SENTIMENT_* environment
variables, e.g. SENTIMENT_SERVER_PORT=8000 or SENTIMENT_PROVIDER_ENDPOINT.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a config file (yaml, json or toml)")
}

func main() {
	// A missing .env file is fine; real environment variables win.
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.SetDefault(logging.New(cfg.Log, os.Stderr))

	llmProvider, err := llm.New(&cfg.Provider)
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}

	srv := server.New(*cfg, analyzer.New(llmProvider))
	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"provider", cfg.Provider.Kind,
		"endpoint", cfg.Provider.Endpoint,
		"models", len(cfg.Catalog.Models),
	)
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
