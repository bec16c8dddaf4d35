// Package cmd provides the CLI commands for bulk-mailer.
package cmd

import (
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/shineum/bulk-mailer/internal/config"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bulk-mailer",
	Short: "Send a personalized email to a list of recipients over SMTP",
	Long: `bulk-mailer sends one email per recipient over a single authenticated
SMTP session, shows live progress, and writes a CSV delivery report.

Recipients come from a CSV file (first column, or a column named "email")
or an inline comma/semicolon/newline separated list.

Sender credentials are read from SENDER_EMAIL and SENDER_PASSWORD (a .env
file is honored); the password is prompted for interactively when unset.
For Gmail with 2FA, use an App Password.

Example:
  bulk-mailer check --csv members.csv
  bulk-mailer send --csv members.csv --subject "Meeting" --body-file body.txt
  bulk-mailer send --to "a@x.com, b@y.com" --subject "Hi" --body "Hello" --dry-run`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML configuration file (optional)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
}

// loadConfig loads configuration from the --config path when given, or from
// environment variables only, then applies the logging flag overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}

// setupLogger configures the global slog logger. Text format renders through
// the charmbracelet handler for readable terminal output; json emits
// machine-readable lines on stderr.
func setupLogger(cfg *config.Config) {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if cfg.Logging.Format == "json" {
		handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		slog.SetDefault(slog.New(handler))
		return
	}

	charmLevel, err := charmlog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		charmLevel = charmlog.InfoLevel
	}
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:           charmLevel,
		ReportTimestamp: true,
	})
	slog.SetDefault(slog.New(handler))
}
