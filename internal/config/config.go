// Package config provides layered configuration loading: built-in defaults,
// an optional YAML file, then environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// defaultTimeoutSeconds bounds the SMTP connection and send calls.
const defaultTimeoutSeconds = 60

// Config holds the complete application configuration.
type Config struct {
	SMTP    SMTPConfig    `yaml:"smtp"`
	Sender  SenderConfig  `yaml:"sender"`
	Logging LoggingConfig `yaml:"logging"`
}

// SMTPConfig holds SMTP server connection settings.
type SMTPConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Security           string `yaml:"security"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
	CAFile             string `yaml:"ca_file"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// SenderConfig holds the sender identity and credentials. The password is
// typically an app password when the provider enforces 2FA.
type SenderConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads configuration from environment variables with sensible defaults.
// Environment variables always take precedence.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file as the base layer,
// then overrides with environment variables. Returns an error if the
// specified file path does not exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables always override YAML values
	cfg.applyEnvVars()

	return cfg, nil
}

// Validate checks that everything required to start a run is present.
func (c *Config) Validate() error {
	if c.Sender.Address == "" {
		return fmt.Errorf("sender address is required (set SENDER_EMAIL or sender.address)")
	}
	if c.Sender.Password == "" {
		return fmt.Errorf("sender password is required (set SENDER_PASSWORD or sender.password)")
	}
	switch c.SMTP.Security {
	case "ssl", "starttls", "plain":
	default:
		return fmt.Errorf("unknown security mode %q (want ssl, starttls, or plain)", c.SMTP.Security)
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("invalid SMTP port %d", c.SMTP.Port)
	}
	return nil
}

// Timeout returns the SMTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.SMTP.TimeoutSeconds) * time.Second
}

// applyDefaults sets sensible default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.SMTP.Host = "smtp.gmail.com"
	c.SMTP.Port = 465
	c.SMTP.Security = "ssl"
	c.SMTP.TimeoutSeconds = defaultTimeoutSeconds
	c.Logging.Level = "info"
	c.Logging.Format = "text"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("SMTP_HOST"); v != "" {
		c.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.SMTP.Port = port
		}
	}
	if v := os.Getenv("SMTP_SECURITY"); v != "" {
		c.SMTP.Security = strings.ToLower(v)
	}
	if v := os.Getenv("SMTP_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.SMTP.TimeoutSeconds = secs
		}
	}
	if v := os.Getenv("SMTP_CA_FILE"); v != "" {
		c.SMTP.CAFile = v
	}
	if v := os.Getenv("SMTP_INSECURE_SKIP_VERIFY"); v != "" {
		if skip, err := strconv.ParseBool(v); err == nil {
			c.SMTP.InsecureSkipVerify = skip
		}
	}

	if v := os.Getenv("SENDER_EMAIL"); v != "" {
		c.Sender.Address = v
	}
	if v := os.Getenv("SENDER_PASSWORD"); v != "" {
		c.Sender.Password = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
}
