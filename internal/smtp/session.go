// Package smtp provides the client-side SMTP session used to deliver
// outbound messages. One session is opened per run, authenticated once,
// and reused for every recipient.
package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"time"

	mail "gopkg.in/mail.v2"

	"github.com/shineum/bulk-mailer/internal/email"
)

// Security selects how the connection to the SMTP server is protected.
type Security string

const (
	// SecuritySSL uses implicit TLS from the first byte (port 465).
	SecuritySSL Security = "ssl"
	// SecurityStartTLS connects in plaintext and requires a STARTTLS upgrade.
	SecurityStartTLS Security = "starttls"
	// SecurityPlain disables TLS entirely; local test servers only.
	SecurityPlain Security = "plain"
)

// textFallback is the plain-text part used when a message has an HTML body
// but no text body, for clients that cannot render HTML.
const textFallback = "This message contains HTML content. Please view it in an HTML-capable client."

// Session is a single authenticated SMTP connection. Send may be called
// repeatedly; Close must be called once the run is finished.
type Session interface {
	Send(msg *email.Message) error
	Close() error
}

// Opener establishes sessions. The delivery runner opens exactly one
// session per run through this seam.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context) (Session, error)

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context) (Session, error) {
	return f(ctx)
}

// Dialer opens authenticated SMTP sessions against a single server.
type Dialer struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Security  Security
	Timeout   time.Duration
	TLSConfig *tls.Config
}

// Open connects to the server and authenticates, returning a live session.
// The underlying dial does not take a context; cancellation is checked up
// front and the configured timeout bounds the connection attempt.
func (d *Dialer) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dialer := mail.NewDialer(d.Host, d.Port, d.Username, d.Password)
	dialer.Timeout = d.Timeout
	dialer.TLSConfig = d.TLSConfig

	switch d.Security {
	case SecurityStartTLS:
		dialer.StartTLSPolicy = mail.MandatoryStartTLS
	case SecurityPlain:
		dialer.StartTLSPolicy = mail.NoStartTLS
	default:
		dialer.SSL = true
	}

	sc, err := dialer.Dial()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s:%d: %w", d.Host, d.Port, err)
	}

	return &session{sc: sc}, nil
}

// session wraps an open mail.v2 SendCloser.
type session struct {
	sc mail.SendCloser
}

func (s *session) Send(msg *email.Message) error {
	return mail.Send(s.sc, BuildMessage(msg))
}

func (s *session) Close() error {
	return s.sc.Close()
}

// BuildMessage converts the internal message model into a wire-ready
// mail.v2 message. Attachment payloads are streamed from the shared byte
// slices; nothing is copied per recipient.
func BuildMessage(msg *email.Message) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	if msg.HtmlBody != "" {
		text := msg.TextBody
		if text == "" {
			text = textFallback
		}
		m.SetBody("text/plain", text)
		m.AddAlternative("text/html", msg.HtmlBody)
	} else {
		m.SetBody("text/plain", msg.TextBody)
	}

	for _, att := range msg.Attachments {
		content := att.Content
		m.Attach(att.Filename,
			mail.SetHeader(map[string][]string{"Content-Type": {att.ContentType}}),
			mail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
		)
	}

	return m
}
