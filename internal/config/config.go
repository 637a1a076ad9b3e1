// Package config reads close-games settings from the environment.
//
// Values are read once at startup. A .env file in the working directory is
// loaded first when present; variables already set in the environment win.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultSMTPServer     = "smtp.mailersend.net"
	DefaultSMTPPort       = 587
	DefaultScoresURL      = "https://api.balldontlie.io/v1/games"
	DefaultThreshold      = 10
	DefaultUTCOffsetHours = 5
	DefaultLogLevel       = "INFO"
)

// ErrMissingCredentials is returned when email delivery is enabled without
// the mandatory EMAIL_USER, EMAIL_PASS or EMAIL_TO settings.
var ErrMissingCredentials = errors.New("missing required email configuration")

// Config holds all settings for a run
type Config struct {
	// SMTP delivery
	EmailUser  string
	EmailPass  string
	EmailTo    string
	EmailFrom  string
	SMTPServer string
	SMTPPort   int

	// Scores API
	ScoresURL    string
	ScoresAPIKey string

	// Selection
	Threshold int
	UTCOffset time.Duration

	LogLevel string
}

// Load reads the configuration from the environment. It fails only on values
// that are present but malformed; use Validate to check mandatory settings.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := envInt("SMTP_PORT", DefaultSMTPPort)
	if err != nil {
		return nil, err
	}
	threshold, err := envInt("MARGIN_THRESHOLD", DefaultThreshold)
	if err != nil {
		return nil, err
	}
	offsetHours, err := envInt("TARGET_UTC_OFFSET_HOURS", DefaultUTCOffsetHours)
	if err != nil {
		return nil, err
	}

	user := envStr("EMAIL_USER", "")

	return &Config{
		EmailUser:  user,
		EmailPass:  os.Getenv("EMAIL_PASS"),
		EmailTo:    envStr("EMAIL_TO", ""),
		EmailFrom:  envStr("EMAIL_FROM", user),
		SMTPServer: envStr("SMTP_SERVER", DefaultSMTPServer),
		SMTPPort:   port,

		ScoresURL:    envStr("SCORES_API_URL", DefaultScoresURL),
		ScoresAPIKey: envStr("SCORES_API_KEY", ""),

		Threshold: threshold,
		UTCOffset: time.Duration(offsetHours) * time.Hour,

		LogLevel: envStr("LOG_LEVEL", DefaultLogLevel),
	}, nil
}

// Validate checks the settings needed for email delivery
func (c *Config) Validate() error {
	var missing []string
	if c.EmailUser == "" {
		missing = append(missing, "EMAIL_USER")
	}
	if c.EmailPass == "" {
		missing = append(missing, "EMAIL_PASS")
	}
	if c.EmailTo == "" {
		missing = append(missing, "EMAIL_TO")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("invalid SMTP_PORT: %d", c.SMTPPort)
	}
	if c.Threshold <= 0 {
		return fmt.Errorf("invalid MARGIN_THRESHOLD: %d (must be positive)", c.Threshold)
	}
	return nil
}

// envStr returns the trimmed value of key. Secrets are read with os.Getenv
// directly so that surrounding spaces are kept.
func envStr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", key, v)
	}
	return n, nil
}
