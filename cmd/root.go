package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/iksnae/taskchat/internal"
	"github.com/iksnae/taskchat/internal/config"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	baseURL    string
	timeout    time.Duration
	envName    string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"

	// cfg is resolved before every subcommand runs
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "taskchat",
	Short: "Chat with your task assistant from the terminal",
	Long: `A terminal client for the conversational task assistant.

Talk to the assistant in plain language or with slash commands, and keep a
live view of your task list next to the conversation.

Features:
  • Interactive chat with a task side panel
  • One-shot messages for scripting
  • Task list, add and complete commands
  • Transcript export (JSON, JSONL, Markdown, YAML, SQLite)

Quick Start:
  taskchat chat                          # Start an interactive session
  taskchat chat "/task list"             # Send one message and print the reply
  taskchat tasks add "Pay rent" --due 2025-02-01
  taskchat export --format md -o chat.md "what's due this week?"

Configuration is read from ~/.taskchat/config.yaml, ./.taskchat/config.yaml
and TASKCHAT_* environment variables.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)
		return loadConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig resolves the layered configuration. Flags set on the command
// line win over every other source.
func loadConfig(cmd *cobra.Command) error {
	v := config.NewViper()
	flags := cmd.Flags()
	for key, name := range map[string]string{"base_url": "base-url", "timeout": "timeout", "env": "env"} {
		if f := flags.Lookup(name); f != nil && f.Changed {
			v.Set(key, f.Value.String())
		}
	}

	loaded, err := config.Load(v, configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	internal.LogDebug("Using backend %s (env %s, timeout %s)", cfg.BaseURL, cfg.Env, cfg.Timeout)
	return nil
}

// newSession builds a client and a session from the resolved configuration
func newSession() *internal.Session {
	client := internal.NewClient(internal.ClientOptions{
		BaseURL:      cfg.BaseURL,
		ChatPath:     cfg.ChatPath,
		StartPath:    cfg.StartPath,
		Timeout:      cfg.Timeout,
		HistoryLimit: cfg.HistoryLimit,
	})
	return internal.NewSession(client, internal.SessionOptions{})
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.taskchat/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Assistant backend URL (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (overrides config)")
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "Environment: development or production")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
