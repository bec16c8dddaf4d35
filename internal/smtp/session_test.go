package smtp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shineum/bulk-mailer/internal/email"
)

func TestBuildMessage_TextOnly(t *testing.T) {
	t.Parallel()

	m := BuildMessage(&email.Message{
		From:     "sender@example.com",
		To:       "alice@example.com",
		Subject:  "Hello",
		TextBody: "plain text body",
	})

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)

	wire := buf.String()
	assert.Contains(t, wire, "From: sender@example.com")
	assert.Contains(t, wire, "To: alice@example.com")
	assert.Contains(t, wire, "Subject: Hello")
	assert.Contains(t, wire, "text/plain")
	assert.Contains(t, wire, "plain text body")
	assert.NotContains(t, wire, "text/html")
}

func TestBuildMessage_HtmlWithTextFallback(t *testing.T) {
	t.Parallel()

	m := BuildMessage(&email.Message{
		From:     "sender@example.com",
		To:       "alice@example.com",
		Subject:  "Hello",
		HtmlBody: "<p>hi</p>",
	})

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)

	wire := buf.String()
	assert.Contains(t, wire, "text/html")
	assert.Contains(t, wire, "text/plain")
	assert.Contains(t, wire, "HTML-capable client")
}

func TestBuildMessage_Attachment(t *testing.T) {
	t.Parallel()

	m := BuildMessage(&email.Message{
		From:     "sender@example.com",
		To:       "alice@example.com",
		Subject:  "Docs",
		TextBody: "see attached",
		Attachments: []email.Attachment{
			{Filename: "notes.txt", ContentType: "text/plain; charset=utf-8", Content: []byte("attached content")},
		},
	})

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)

	wire := buf.String()
	assert.Contains(t, wire, "notes.txt")
	assert.Contains(t, wire, "multipart/mixed")
}

func TestDryRunSession_AlwaysSucceeds(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	sess := NewDryRun(&out)

	msg := &email.Message{
		From:     "sender@example.com",
		To:       "alice@example.com",
		Subject:  "Hello",
		TextBody: "body",
		Attachments: []email.Attachment{
			{Filename: "a.bin", ContentType: "application/octet-stream", Content: make([]byte, 2048)},
		},
	}

	require.NoError(t, sess.Send(msg))
	require.NoError(t, sess.Send(msg))
	require.NoError(t, sess.Close())

	assert.Equal(t, 2, sess.SentCount())
	assert.True(t, sess.Closed())

	printed := out.String()
	assert.Contains(t, printed, "To: alice@example.com")
	assert.Contains(t, printed, "Subject: Hello")
	assert.Contains(t, printed, "a.bin (2.0 KB)")
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.0 KB", formatSize(1024))
	assert.Equal(t, "1.5 MB", formatSize(3*1024*1024/2))
}
