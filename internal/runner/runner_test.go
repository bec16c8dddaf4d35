package runner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shineum/bulk-mailer/internal/email"
	"github.com/shineum/bulk-mailer/internal/report"
	"github.com/shineum/bulk-mailer/internal/smtp"
)

// mockSession implements smtp.Session with a programmable send function.
type mockSession struct {
	sendFn    func(msg *email.Message) error
	sent      []string
	closeCall int
}

func (m *mockSession) Send(msg *email.Message) error {
	m.sent = append(m.sent, msg.To)
	if m.sendFn != nil {
		return m.sendFn(msg)
	}
	return nil
}

func (m *mockSession) Close() error {
	m.closeCall++
	return nil
}

func openerFor(sess smtp.Session) smtp.Opener {
	return smtp.OpenerFunc(func(context.Context) (smtp.Session, error) {
		return sess, nil
	})
}

func testComposer() *email.Composer {
	return &email.Composer{
		From:     "sender@example.com",
		Subject:  "Hello",
		TextBody: "body",
	}
}

func TestRun_AllSent(t *testing.T) {
	t.Parallel()

	sess := &mockSession{}
	r := New(openerFor(sess), nil)

	list := []string{"a@example.com", "b@example.com", "c@example.com"}
	rep, err := r.Run(context.Background(), testComposer(), list, nil)
	require.NoError(t, err)

	require.Len(t, rep.Outcomes, 3)
	for i, o := range rep.Outcomes {
		assert.Equal(t, list[i], o.Recipient)
		assert.Equal(t, report.StatusSent, o.Status)
		assert.Empty(t, o.Error)
		assert.False(t, o.Timestamp.IsZero())
	}
	assert.Equal(t, list, sess.sent)
	assert.Equal(t, 1, sess.closeCall)
	assert.Equal(t, 3, rep.SentCount())
	assert.Equal(t, 0, rep.FailedCount())
}

func TestRun_LocalFailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	sess := &mockSession{
		sendFn: func(msg *email.Message) error {
			if msg.To == "bad@example.com" {
				return errors.New("550 mailbox unavailable")
			}
			return nil
		},
	}
	r := New(openerFor(sess), nil)

	list := []string{"a@example.com", "b@example.com", "bad@example.com", "d@example.com", "e@example.com"}
	rep, err := r.Run(context.Background(), testComposer(), list, nil)
	require.NoError(t, err)

	require.Len(t, rep.Outcomes, 5)
	for i, o := range rep.Outcomes {
		assert.Equal(t, list[i], o.Recipient)
		if i == 2 {
			assert.Equal(t, report.StatusFailed, o.Status)
			assert.NotEmpty(t, o.Error)
		} else {
			assert.Equal(t, report.StatusSent, o.Status)
		}
	}
	// The run completed and the session was closed afterward.
	assert.Equal(t, 5, len(sess.sent))
	assert.Equal(t, 1, sess.closeCall)
	assert.Equal(t, 4, rep.SentCount())
	assert.Equal(t, 1, rep.FailedCount())
}

func TestRun_OpenFailureIsFatal(t *testing.T) {
	t.Parallel()

	dialErr := errors.New("535 authentication failed")
	opener := smtp.OpenerFunc(func(context.Context) (smtp.Session, error) {
		return nil, dialErr
	})
	r := New(opener, nil)

	rep, err := r.Run(context.Background(), testComposer(), []string{"a@example.com"}, nil)
	assert.Nil(t, rep)
	require.Error(t, err)

	var connErr *ConnectError
	require.ErrorAs(t, err, &connErr)
	assert.ErrorIs(t, err, dialErr)
}

func TestRun_ProgressCallback(t *testing.T) {
	t.Parallel()

	sess := &mockSession{}
	r := New(openerFor(sess), nil)

	type call struct {
		index, total int
		status       report.Status
	}
	var calls []call

	list := []string{"a@example.com", "b@example.com"}
	_, err := r.Run(context.Background(), testComposer(), list, func(index, total int, o report.Outcome) {
		calls = append(calls, call{index, total, o.Status})
	})
	require.NoError(t, err)

	require.Len(t, calls, 2)
	assert.Equal(t, call{1, 2, report.StatusSent}, calls[0])
	assert.Equal(t, call{2, 2, report.StatusSent}, calls[1])
}

func TestRun_DuplicatesSentTwice(t *testing.T) {
	t.Parallel()

	sess := &mockSession{}
	r := New(openerFor(sess), nil)

	list := []string{"dup@example.com", "dup@example.com"}
	rep, err := r.Run(context.Background(), testComposer(), list, nil)
	require.NoError(t, err)

	assert.Len(t, rep.Outcomes, 2)
	assert.Equal(t, list, sess.sent)
}

func TestRun_CancelStopsBetweenSends(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	sess := &mockSession{}
	r := New(openerFor(sess), nil)

	list := []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com"}
	rep, err := r.Run(ctx, testComposer(), list, func(index, total int, _ report.Outcome) {
		if index == 2 {
			cancel()
		}
	})

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, rep)
	assert.Len(t, rep.Outcomes, 2)
	assert.Equal(t, 1, sess.closeCall)
}

func TestRun_EmptyRecipientList(t *testing.T) {
	t.Parallel()

	sess := &mockSession{}
	r := New(openerFor(sess), nil)

	rep, err := r.Run(context.Background(), testComposer(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, rep.Outcomes)
	assert.Equal(t, 1, sess.closeCall)
}

func TestRun_WithDryRunSession(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	dry := smtp.NewDryRun(&out)
	r := New(openerFor(dry), nil)

	rep, err := r.Run(context.Background(), testComposer(), []string{"x@example.com"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.SentCount())
	assert.Contains(t, out.String(), "To: x@example.com")
	assert.True(t, dry.Closed())
}
