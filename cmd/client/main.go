// cmd/client/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/client"
	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/config"
)

var (
	version = "dev"
	v       = config.NewClientViper()
	model   string
)

var rootCmd = &cobra.Command{
	Use:   "sentiment",
	Short: "Interactive client for the sentiment gateway",
	Long: `sentiment talks to a running sentiment-server.

  sentiment                         Start an interactive session
  sentiment models                  List the models the gateway offers
  sentiment analyze "great game!"   Analyze a single text

The gateway address comes from --backend-url or BACKEND_URL
(default http://localhost:8000).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.ClientFromViper(v)
		if err != nil {
			return err
		}

		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "text> ",
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			return fmt.Errorf("failed to start readline: %w", err)
		}
		defer rl.Close()

		console := client.NewConsole(client.NewClient(cfg.BackendURL, cfg.Timeout), rl.Stdout(), cfg.PreferredModel)
		return client.NewREPL(console, rl, rl.Stdout()).Run(cmd.Context())
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models the gateway offers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.ClientFromViper(v)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		console := client.NewConsole(client.NewClient(cfg.BackendURL, cfg.Timeout), out, cfg.PreferredModel)
		models := console.ListModels(cmd.Context())
		selected, _ := console.SelectModel(models)
		for _, m := range models {
			marker := " "
			if m == selected {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s\n", marker, m)
		}
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <text>",
	Short: "Analyze a single text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.ClientFromViper(v)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		console := client.NewConsole(client.NewClient(cfg.BackendURL, cfg.Timeout), out, cfg.PreferredModel)

		selected := model
		if selected == "" {
			var ok bool
			if selected, ok = console.SelectModel(console.ListModels(cmd.Context())); !ok {
				return fmt.Errorf("no model available")
			}
		}
		if !console.Submit(cmd.Context(), strings.Join(args, " "), selected) {
			return fmt.Errorf("analysis failed")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("backend-url", "", "sentiment gateway URL (env BACKEND_URL)")
	rootCmd.PersistentFlags().String("preferred-model", "", "model selected by default when the gateway offers it")
	rootCmd.PersistentFlags().Duration("timeout", 0, "per-request timeout, 0 waits indefinitely")
	bindFlag("backend_url", rootCmd.PersistentFlags().Lookup("backend-url"))
	bindFlag("preferred_model", rootCmd.PersistentFlags().Lookup("preferred-model"))
	bindFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))

	analyzeCmd.Flags().StringVarP(&model, "model", "m", "", "model to use instead of the default selection")

	rootCmd.AddCommand(modelsCmd, analyzeCmd)
}

func bindFlag(key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func main() {
	// A missing .env file is fine; real environment variables win.
	godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
