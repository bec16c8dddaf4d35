// Package tlsconfig builds the client TLS configuration for the SMTP dialer.
package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// Client returns a tls.Config for connecting to the SMTP server. If caFile
// is non-empty, the file is loaded as an additional trusted root on top of
// the system pool, which covers internal relays with private CAs.
// skipVerify disables certificate verification entirely and should only be
// used against local test servers.
func Client(serverName, caFile string, skipVerify bool) (*tls.Config, error) {
	cfg := &tls.Config{
		ServerName:         serverName,
		InsecureSkipVerify: skipVerify,
		MinVersion:         tls.VersionTLS12,
	}

	if caFile == "" {
		return cfg, nil
	}

	if _, err := os.Stat(caFile); err != nil {
		return nil, fmt.Errorf("CA file not found: %w", err)
	}

	pem, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates parsed from CA file %s", caFile)
	}

	cfg.RootCAs = pool
	return cfg, nil
}
