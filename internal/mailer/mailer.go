// Package mailer emails candidates when the status of their application
// changes.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/jhillyerd/enmime"
	"github.com/welldanyogia/job-application-tracker/internal/models"
)

// DefaultSendTimeout bounds one delivery attempt
const DefaultSendTimeout = 10 * time.Second

// DefaultFromName is the display name on outgoing mail
const DefaultFromName = "Recruitment Team"

// ErrNoRecipient is returned for applications without an email address
var ErrNoRecipient = errors.New("application has no email address")

// SendFunc delivers a raw message to addr
type SendFunc func(addr, from string, to []string, msg io.Reader) error

// Config holds mailer settings
type Config struct {
	// Addr is the SMTP relay host:port. Empty disables sending.
	Addr     string
	From     string
	FromName string
	Timeout  time.Duration
	Logger   *slog.Logger
	// Send overrides delivery, mainly for tests
	Send SendFunc
}

// Mailer sends status change notifications over SMTP
type Mailer struct {
	addr     string
	from     string
	fromName string
	timeout  time.Duration
	logger   *slog.Logger
	send     SendFunc
}

// New creates a Mailer
func New(cfg Config) *Mailer {
	m := &Mailer{
		addr:     cfg.Addr,
		from:     cfg.From,
		fromName: cfg.FromName,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
		send:     cfg.Send,
	}
	if m.fromName == "" {
		m.fromName = DefaultFromName
	}
	if m.timeout <= 0 {
		m.timeout = DefaultSendTimeout
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.send == nil {
		m.send = sendMail
	}
	return m
}

// sendMail delivers without auth. TLS is negotiated only when the relay
// offers STARTTLS, so plain internal relays still accept mail.
func sendMail(addr, from string, to []string, msg io.Reader) error {
	c, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Hello("localhost"); err != nil {
		return err
	}
	if ok, _ := c.Extension("STARTTLS"); ok {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if err := c.SendMail(from, to, msg); err != nil {
		return err
	}
	return c.Quit()
}

// Enabled reports whether a relay is configured
func (m *Mailer) Enabled() bool {
	return m.addr != ""
}

// NotifyStatusChange emails the candidate about their new status. It is a
// no-op when no relay is configured.
func (m *Mailer) NotifyStatusChange(ctx context.Context, application *models.Application, previousStatus string) error {
	if !m.Enabled() {
		return nil
	}
	if application.EmailID == "" {
		return ErrNoRecipient
	}

	msg, err := m.BuildStatusMessage(application, previousStatus)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- m.send(m.addr, m.from, []string{application.EmailID}, bytes.NewReader(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send status mail: %w", err)
		}
	case <-ctx.Done():
		return fmt.Errorf("failed to send status mail: %w", ctx.Err())
	}

	m.logger.Info("status mail sent",
		slog.Uint64("application_id", uint64(application.ID)),
		slog.String("status", application.Status))
	return nil
}

// BuildStatusMessage renders the notification as an RFC 5322 message
func (m *Mailer) BuildStatusMessage(application *models.Application, previousStatus string) ([]byte, error) {
	body := fmt.Sprintf("Hello %s,\n\n"+
		"The status of your application for %s (reference #%d) changed from %s to %s.\n\n"+
		"Thank you for your interest.\n%s\n",
		application.Name, application.JobRole, application.ID,
		orUnknown(previousStatus), application.Status, m.fromName)

	part, err := enmime.Builder().
		From(m.fromName, m.from).
		To(application.Name, application.EmailID).
		Subject(fmt.Sprintf("Your application status: %s", application.Status)).
		Date(time.Now()).
		Text([]byte(body)).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build status mail: %w", err)
	}

	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode status mail: %w", err)
	}
	return buf.Bytes(), nil
}

func orUnknown(status string) string {
	if status == "" {
		return "(none)"
	}
	return status
}
