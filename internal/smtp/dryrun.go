package smtp

import (
	"fmt"
	"io"
	"strings"

	"github.com/shineum/bulk-mailer/internal/email"
)

// DryRunSession is a Session that prints each message to a writer instead
// of delivering it. Every send succeeds, which makes it useful both for
// the --dry-run flag and for exercising the delivery loop in tests.
type DryRunSession struct {
	writer io.Writer
	sent   int
	closed bool
}

// NewDryRun creates a DryRunSession writing to w.
func NewDryRun(w io.Writer) *DryRunSession {
	return &DryRunSession{writer: w}
}

// Send prints the message in a human-readable format and reports success.
func (s *DryRunSession) Send(msg *email.Message) error {
	var b strings.Builder

	b.WriteString("========================================\n")
	fmt.Fprintf(&b, "From: %s\n", msg.From)
	fmt.Fprintf(&b, "To: %s\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	b.WriteString("Body:\n")

	body := msg.TextBody
	if body == "" {
		body = msg.HtmlBody
	}
	b.WriteString(body + "\n")

	if len(msg.Attachments) > 0 {
		names := make([]string, 0, len(msg.Attachments))
		for _, att := range msg.Attachments {
			names = append(names, fmt.Sprintf("%s (%s)", att.Filename, formatSize(len(att.Content))))
		}
		fmt.Fprintf(&b, "Attachments: %s\n", strings.Join(names, ", "))
	}

	b.WriteString("========================================\n")

	fmt.Fprint(s.writer, b.String())
	s.sent++
	return nil
}

// Close marks the session closed.
func (s *DryRunSession) Close() error {
	s.closed = true
	return nil
}

// SentCount returns the number of messages printed so far.
func (s *DryRunSession) SentCount() int {
	return s.sent
}

// Closed reports whether Close has been called.
func (s *DryRunSession) Closed() bool {
	return s.closed
}

// formatSize formats a byte count into a human-readable string.
func formatSize(bytes int) string {
	const (
		kb = 1024
		mb = kb * 1024
	)

	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
