// Package runner drives a delivery run: it opens one SMTP session, sends a
// composed message to each recipient in order, and accumulates the
// per-recipient outcomes into a report.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/shineum/bulk-mailer/internal/email"
	"github.com/shineum/bulk-mailer/internal/report"
	"github.com/shineum/bulk-mailer/internal/smtp"
)

// Composer builds the outbound message for a recipient.
type Composer interface {
	Compose(recipient string) *email.Message
}

// ProgressFunc is invoked synchronously after each recipient with the
// 1-based index of the recipient just processed and the total count.
type ProgressFunc func(index, total int, outcome report.Outcome)

// ConnectError indicates the SMTP session could not be opened or
// authenticated. It is fatal to the whole run: no recipients are processed.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string {
	return "failed to open smtp session: " + e.Err.Error()
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// Runner executes delivery runs sequentially over a single session.
type Runner struct {
	opener smtp.Opener
	logger *slog.Logger
}

// New creates a Runner that opens sessions through the given opener.
// A nil logger falls back to slog.Default().
func New(opener smtp.Opener, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{opener: opener, logger: logger}
}

// Run delivers one message per recipient, in parse order, over a single
// session. A failed open returns a *ConnectError and a nil report. A
// failed send is recorded as a failed outcome and the run continues; the
// session stays open and is closed after the loop regardless of individual
// outcomes. Cancelling the context stops the run between sends and returns
// the partial report with the context's error.
func (r *Runner) Run(ctx context.Context, composer Composer, recipients []string, onProgress ProgressFunc) (*report.Report, error) {
	sess, err := r.opener.Open(ctx)
	if err != nil {
		return nil, &ConnectError{Err: err}
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			r.logger.Debug("failed to close smtp session", "error", cerr)
		}
	}()

	rep := report.New()
	total := len(recipients)

	r.logger.Info("starting delivery run",
		"run_id", rep.RunID,
		"recipients", total,
	)

	for i, recipient := range recipients {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("delivery run cancelled",
				"run_id", rep.RunID,
				"processed", i,
				"total", total,
			)
			rep.Finish()
			return rep, err
		}

		outcome := report.Outcome{
			Recipient: recipient,
			Status:    report.StatusSent,
			Timestamp: time.Now().UTC(),
		}

		if err := sess.Send(composer.Compose(recipient)); err != nil {
			outcome.Status = report.StatusFailed
			outcome.Error = err.Error()
			r.logger.Warn("delivery failed",
				"run_id", rep.RunID,
				"recipient", recipient,
				"error", err,
			)
		} else {
			r.logger.Debug("delivered",
				"run_id", rep.RunID,
				"recipient", recipient,
			)
		}

		rep.Append(outcome)
		if onProgress != nil {
			onProgress(i+1, total, outcome)
		}
	}

	rep.Finish()
	r.logger.Info("delivery run complete",
		"run_id", rep.RunID,
		"sent", rep.SentCount(),
		"failed", rep.FailedCount(),
	)
	return rep, nil
}
