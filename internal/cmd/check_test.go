package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shineum/bulk-mailer/internal/recipients"
)

func TestResolveRecipients_FromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.csv")
	require.NoError(t, os.WriteFile(path, []byte("email\na@x.com\nb@y.com\n"), 0o600))

	got, err := resolveRecipients(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@y.com"}, got)
}

func TestResolveRecipients_CSVTakesPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.csv")
	require.NoError(t, os.WriteFile(path, []byte("email\ncsv@x.com\n"), 0o600))

	got, err := resolveRecipients(path, "inline@y.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"csv@x.com"}, got)
}

func TestResolveRecipients_FromText(t *testing.T) {
	got, err := resolveRecipients("", "a@x.com; b@y.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@y.com"}, got)
}

func TestResolveRecipients_EmptyText(t *testing.T) {
	_, err := resolveRecipients("", " ,;\n ")
	assert.ErrorIs(t, err, recipients.ErrNoRecipients)
}

func TestResolveRecipients_NoSource(t *testing.T) {
	_, err := resolveRecipients("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recipients provided")
}

func TestResolveRecipients_MissingFile(t *testing.T) {
	_, err := resolveRecipients(filepath.Join(t.TempDir(), "absent.csv"), "")
	assert.Error(t, err)
}
