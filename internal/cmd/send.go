package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/shineum/bulk-mailer/internal/config"
	"github.com/shineum/bulk-mailer/internal/email"
	"github.com/shineum/bulk-mailer/internal/report"
	"github.com/shineum/bulk-mailer/internal/runner"
	"github.com/shineum/bulk-mailer/internal/smtp"
	"github.com/shineum/bulk-mailer/internal/tlsconfig"
)

var (
	sendCSVPath     string
	sendToList      string
	sendFrom        string
	sendSubject     string
	sendBody        string
	sendBodyFile    string
	sendHTMLFile    string
	sendAttachments []string
	sendReportPath  string
	sendDryRun      bool
	sendYes         bool
	sendHost        string
	sendPort        int
	sendSecurity    string
	sendTimeout     int
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send the message to every recipient and write a delivery report",
	Long: `Send composes one message per recipient and delivers them sequentially
over a single SMTP session. Individual delivery failures do not stop the
run; every recipient gets exactly one attempt and one row in the report.

The {email} placeholder in the subject and body is replaced with each
recipient's address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applySendOverrides(cmd, cfg)
		setupLogger(cfg)

		recipients, err := resolveRecipients(sendCSVPath, sendToList)
		if err != nil {
			return err
		}

		composer, err := buildComposer(cfg)
		if err != nil {
			return err
		}

		if !sendDryRun {
			if err := ensureCredentials(cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if !sendYes && !confirm(cmd, len(recipients), cfg) {
				slog.Info("aborted")
				return nil
			}
		}

		opener, err := buildOpener(cmd, cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		progress := func(index, total int, _ report.Outcome) {
			fmt.Fprintf(cmd.ErrOrStderr(), "\rsent %d/%d", index, total)
			if index == total {
				fmt.Fprintln(cmd.ErrOrStderr())
			}
		}

		rep, runErr := runner.New(opener, slog.Default()).Run(ctx, composer, recipients, progress)
		if rep == nil {
			return runErr
		}
		if runErr != nil {
			// Cancelled mid-run; the partial report is still worth keeping.
			fmt.Fprintln(cmd.ErrOrStderr())
		}

		path, err := writeReport(rep)
		if err != nil {
			return err
		}

		slog.Info("report written",
			"path", path,
			"sent", rep.SentCount(),
			"failed", rep.FailedCount(),
		)
		if rep.FailedCount() > 0 {
			slog.Warn("some messages failed; see report for details",
				"failed", rep.FailedCount(),
			)
		}
		return runErr
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendCSVPath, "csv", "", "CSV file with recipient emails (first column or 'email' column)")
	sendCmd.Flags().StringVar(&sendToList, "to", "", "recipients as a comma, semicolon, or newline separated list")
	sendCmd.Flags().StringVar(&sendFrom, "from", "", "sender address (overrides SENDER_EMAIL)")
	sendCmd.Flags().StringVar(&sendSubject, "subject", "", "message subject")
	sendCmd.Flags().StringVar(&sendBody, "body", "", "plain text body")
	sendCmd.Flags().StringVar(&sendBodyFile, "body-file", "", "file containing the plain text body")
	sendCmd.Flags().StringVar(&sendHTMLFile, "html-file", "", "file containing an HTML body")
	sendCmd.Flags().StringArrayVar(&sendAttachments, "attach", nil, "attachment file (repeatable)")
	sendCmd.Flags().StringVar(&sendReportPath, "report", "", "delivery report output path (default send-report-<run id>.csv)")
	sendCmd.Flags().BoolVar(&sendDryRun, "dry-run", false, "print messages instead of sending them")
	sendCmd.Flags().BoolVarP(&sendYes, "yes", "y", false, "skip the confirmation prompt")
	sendCmd.Flags().StringVar(&sendHost, "host", "", "SMTP host (overrides config)")
	sendCmd.Flags().IntVar(&sendPort, "port", 0, "SMTP port (overrides config)")
	sendCmd.Flags().StringVar(&sendSecurity, "security", "", "connection security: ssl, starttls, or plain")
	sendCmd.Flags().IntVar(&sendTimeout, "timeout", 0, "SMTP timeout in seconds (overrides config)")

	rootCmd.AddCommand(sendCmd)
}

// applySendOverrides copies the connection flags the user set onto the
// loaded configuration.
func applySendOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.SMTP.Host = sendHost
	}
	if cmd.Flags().Changed("port") {
		cfg.SMTP.Port = sendPort
	}
	if cmd.Flags().Changed("security") {
		cfg.SMTP.Security = strings.ToLower(sendSecurity)
	}
	if cmd.Flags().Changed("timeout") {
		cfg.SMTP.TimeoutSeconds = sendTimeout
	}
	if cmd.Flags().Changed("from") {
		cfg.Sender.Address = sendFrom
	}
}

// buildComposer assembles the message template: subject, bodies, and the
// attachment set shared across all recipients.
func buildComposer(cfg *config.Config) (*email.Composer, error) {
	if sendSubject == "" {
		return nil, fmt.Errorf("--subject is required")
	}

	body := sendBody
	if sendBodyFile != "" {
		data, err := os.ReadFile(sendBodyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read body file: %w", err)
		}
		body = string(data)
	}

	var htmlBody string
	if sendHTMLFile != "" {
		data, err := os.ReadFile(sendHTMLFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read html file: %w", err)
		}
		htmlBody = string(data)
	}

	if body == "" && htmlBody == "" {
		return nil, fmt.Errorf("a message body is required (--body, --body-file, or --html-file)")
	}

	attachments := make([]email.Attachment, 0, len(sendAttachments))
	for _, path := range sendAttachments {
		att, err := email.LoadAttachment(path)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, att)
	}

	return &email.Composer{
		From:        cfg.Sender.Address,
		Subject:     sendSubject,
		TextBody:    body,
		HtmlBody:    htmlBody,
		Attachments: attachments,
	}, nil
}

// ensureCredentials prompts for the sender password when it is not already
// set through the environment or config file. The prompt never echoes.
func ensureCredentials(cfg *config.Config) error {
	if cfg.Sender.Password != "" {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("sender password is required (set SENDER_PASSWORD or run interactively)")
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", cfg.Sender.Address)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	cfg.Sender.Password = string(secret)
	return nil
}

// confirm asks the user to approve the run before any connection is made.
func confirm(cmd *cobra.Command, count int, cfg *config.Config) bool {
	fmt.Fprintf(cmd.ErrOrStderr(), "Send to %d recipients via %s:%d? [y/N]: ",
		count, cfg.SMTP.Host, cfg.SMTP.Port)

	reader := bufio.NewReader(cmd.InOrStdin())
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// buildOpener returns the session opener for the run: a real SMTP dialer,
// or the dry-run printer when --dry-run is set.
func buildOpener(cmd *cobra.Command, cfg *config.Config) (smtp.Opener, error) {
	if sendDryRun {
		return smtp.OpenerFunc(func(context.Context) (smtp.Session, error) {
			return smtp.NewDryRun(cmd.OutOrStdout()), nil
		}), nil
	}

	tlsCfg, err := tlsconfig.Client(cfg.SMTP.Host, cfg.SMTP.CAFile, cfg.SMTP.InsecureSkipVerify)
	if err != nil {
		return nil, err
	}

	return &smtp.Dialer{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.Sender.Address,
		Password:  cfg.Sender.Password,
		Security:  smtp.Security(cfg.SMTP.Security),
		Timeout:   cfg.Timeout(),
		TLSConfig: tlsCfg,
	}, nil
}

// writeReport writes the delivery report CSV and returns its path.
func writeReport(rep *report.Report) (string, error) {
	path := sendReportPath
	if path == "" {
		path = fmt.Sprintf("send-report-%s.csv", rep.RunID)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := rep.WriteCSV(f); err != nil {
		return "", err
	}
	return path, nil
}
