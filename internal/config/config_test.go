package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func setEnv(t *testing.T, values map[string]string) {
	t.Helper()
	keys := []string{
		"EMAIL_USER", "EMAIL_PASS", "EMAIL_TO", "EMAIL_FROM",
		"SMTP_SERVER", "SMTP_PORT", "SCORES_API_URL", "SCORES_API_KEY",
		"MARGIN_THRESHOLD", "TARGET_UTC_OFFSET_HOURS", "LOG_LEVEL",
	}
	for _, k := range keys {
		t.Setenv(k, values[k])
	}
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	setEnv(t, map[string]string{
		"EMAIL_USER": "bot@example.com",
		"EMAIL_PASS": "secret",
		"EMAIL_TO":   "fan@example.com",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SMTPServer != DefaultSMTPServer {
		t.Errorf("SMTPServer = %q, want %q", cfg.SMTPServer, DefaultSMTPServer)
	}
	if cfg.SMTPPort != 587 {
		t.Errorf("SMTPPort = %d, want 587", cfg.SMTPPort)
	}
	if cfg.EmailFrom != "bot@example.com" {
		t.Errorf("EmailFrom = %q, want EMAIL_USER fallback", cfg.EmailFrom)
	}
	if cfg.ScoresURL != DefaultScoresURL {
		t.Errorf("ScoresURL = %q", cfg.ScoresURL)
	}
	if cfg.Threshold != 10 {
		t.Errorf("Threshold = %d, want 10", cfg.Threshold)
	}
	if cfg.UTCOffset != 5*time.Hour {
		t.Errorf("UTCOffset = %v, want 5h", cfg.UTCOffset)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	setEnv(t, map[string]string{
		"EMAIL_USER":              "bot@example.com",
		"EMAIL_PASS":              "secret",
		"EMAIL_TO":                "fan@example.com",
		"EMAIL_FROM":              "scores@example.com",
		"SMTP_SERVER":             "smtp.example.com",
		"SMTP_PORT":               "2525",
		"MARGIN_THRESHOLD":        "5",
		"TARGET_UTC_OFFSET_HOURS": "8",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SMTPServer != "smtp.example.com" || cfg.SMTPPort != 2525 {
		t.Errorf("SMTP = %s:%d, want smtp.example.com:2525", cfg.SMTPServer, cfg.SMTPPort)
	}
	if cfg.EmailFrom != "scores@example.com" {
		t.Errorf("EmailFrom = %q", cfg.EmailFrom)
	}
	if cfg.Threshold != 5 {
		t.Errorf("Threshold = %d, want 5", cfg.Threshold)
	}
	if cfg.UTCOffset != 8*time.Hour {
		t.Errorf("UTCOffset = %v, want 8h", cfg.UTCOffset)
	}
}

func TestLoad_PasswordKeepsSpaces(t *testing.T) {
	chdir(t, t.TempDir())
	setEnv(t, map[string]string{
		"EMAIL_USER": " bot@example.com ",
		"EMAIL_PASS": "  pass phrase ",
		"EMAIL_TO":   "fan@example.com",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.EmailPass != "  pass phrase " {
		t.Errorf("EmailPass = %q, want value unchanged", cfg.EmailPass)
	}
	if cfg.EmailUser != "bot@example.com" {
		t.Errorf("EmailUser = %q, want trimmed", cfg.EmailUser)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	chdir(t, t.TempDir())
	setEnv(t, map[string]string{"SMTP_PORT": "submission"})

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "SMTP_PORT") {
		t.Errorf("Load() error = %v, want SMTP_PORT error", err)
	}
}

func TestValidate_MissingCredentials(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		missing string
	}{
		{"no user", Config{EmailPass: "p", EmailTo: "t@example.com"}, "EMAIL_USER"},
		{"no pass", Config{EmailUser: "u", EmailTo: "t@example.com"}, "EMAIL_PASS"},
		{"no recipient", Config{EmailUser: "u", EmailPass: "p"}, "EMAIL_TO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.SMTPPort = DefaultSMTPPort
			tt.cfg.Threshold = DefaultThreshold

			err := tt.cfg.Validate()
			if !errors.Is(err, ErrMissingCredentials) {
				t.Fatalf("Validate() error = %v, want ErrMissingCredentials", err)
			}
			if !strings.Contains(err.Error(), tt.missing) {
				t.Errorf("Validate() error %q should name %s", err, tt.missing)
			}
		})
	}
}

func TestValidate_Ranges(t *testing.T) {
	base := Config{EmailUser: "u", EmailPass: "p", EmailTo: "t@example.com", SMTPPort: 587, Threshold: 10}

	badPort := base
	badPort.SMTPPort = 70000
	if err := badPort.Validate(); err == nil {
		t.Error("Validate() should reject port 70000")
	}

	badThreshold := base
	badThreshold.Threshold = 0
	if err := badThreshold.Validate(); err == nil {
		t.Error("Validate() should reject threshold 0")
	}
}
