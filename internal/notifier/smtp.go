package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/close-games/internal/game"
	"github.com/pfrederiksen/close-games/internal/logger"
	"github.com/wneessen/go-mail"
)

// SMTPTimeout bounds the dial and each SMTP command
const SMTPTimeout = 30 * time.Second

// ErrMissingSMTPConfig is returned when mandatory SMTP settings are empty
var ErrMissingSMTPConfig = errors.New("missing required SMTP configuration")

// SMTPConfig holds the relay address, credentials and envelope addresses
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// mailClient is the part of *mail.Client used for one delivery
type mailClient interface {
	DialWithContext(ctx context.Context) error
	Send(messages ...*mail.Msg) error
	Close() error
}

type dialFunc func(cfg SMTPConfig) (mailClient, error)

// SMTPNotifier sends the summary through an authenticated SMTP relay
type SMTPNotifier struct {
	cfg       SMTPConfig
	newClient dialFunc
}

// NewSMTPNotifier creates an SMTP notifier. Username, password and recipient
// are mandatory; From defaults to the username.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Username == "" || cfg.Password == "" || cfg.To == "" {
		return nil, ErrMissingSMTPConfig
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: host", ErrMissingSMTPConfig)
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid SMTP port: %d", cfg.Port)
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}

	return &SMTPNotifier{cfg: cfg, newClient: newMailClient}, nil
}

// newMailClient builds a go-mail client that requires STARTTLS and
// authenticates with SMTP AUTH PLAIN.
func newMailClient(cfg SMTPConfig) (mailClient, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(SMTPTimeout),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Notify sends one summary email. The SMTP connection is closed before
// returning, whether or not the send succeeded.
func (n *SMTPNotifier) Notify(ctx context.Context, matchups []game.Matchup) error {
	msg, err := n.buildMsg(NewMessage(n.cfg.From, n.cfg.To, matchups))
	if err != nil {
		return err
	}

	client, err := n.newClient(n.cfg)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}

	// A dial can fail after the TCP session is up (for example when the relay
	// refuses STARTTLS), so the client is closed on that path too.
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("Failed to close SMTP connection", logger.Fields{
				"host":  n.cfg.Host,
				"error": closeErr.Error(),
			})
		}
	}()

	if err := client.DialWithContext(ctx); err != nil {
		logger.IncrCounter("email.failures")
		return fmt.Errorf("connecting to %s:%d: %w", n.cfg.Host, n.cfg.Port, err)
	}

	start := time.Now()
	if err := client.Send(msg); err != nil {
		logger.IncrCounter("email.failures")
		return fmt.Errorf("sending email to %s: %w", n.cfg.To, err)
	}
	logger.RecordTiming("email.duration", time.Since(start))
	logger.IncrCounter("email.sent")

	logger.Info("Sent summary email", logger.Fields{
		"to":       n.cfg.To,
		"host":     n.cfg.Host,
		"matchups": len(matchups),
	})
	return nil
}

// buildMsg converts a Message into a go-mail message
func (n *SMTPNotifier) buildMsg(m Message) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", m.From, err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", m.To, err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Body)
	return msg, nil
}
