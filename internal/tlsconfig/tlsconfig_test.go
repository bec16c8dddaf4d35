package tlsconfig

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Client("smtp.gmail.com", "", false)
	require.NoError(t, err)

	assert.Equal(t, "smtp.gmail.com", cfg.ServerName)
	assert.False(t, cfg.InsecureSkipVerify)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	assert.Nil(t, cfg.RootCAs)
}

func TestClient_SkipVerify(t *testing.T) {
	t.Parallel()

	cfg, err := Client("localhost", "", true)
	require.NoError(t, err)
	assert.True(t, cfg.InsecureSkipVerify)
}

func TestClient_MissingCAFile(t *testing.T) {
	t.Parallel()

	_, err := Client("smtp.example.com", filepath.Join(t.TempDir(), "absent.pem"), false)
	assert.Error(t, err)
}

func TestClient_InvalidCAFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))

	_, err := Client("smtp.example.com", path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no certificates parsed")
}
