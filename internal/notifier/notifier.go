// Package notifier delivers outbound user notifications. Delivery is
// fire-and-forget: a failure is logged and never rolled back into the ledger
// transaction that triggered it.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Notification kinds emitted by the wallet lifecycle.
const (
	KindMovementCompleted = "movement_completed"
	KindMovementFailed    = "movement_failed"
	KindOTPIssued         = "otp_issued"
)

// Message describes one notification payload.
type Message struct {
	Kind      string
	Recipient string // email address
	Subject   string
	Body      string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger. Used in
// development and as the fallback when SMTP is not configured.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	n.logger.Info("notification",
		slog.String("kind", message.Kind),
		slog.String("recipient", message.Recipient),
		slog.String("subject", message.Subject))
	return nil
}

// SMTPConfig holds mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier delivers notifications over a plain SMTP relay.
type SMTPNotifier struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

// NewSMTPNotifier constructs an SMTP-backed notifier.
func NewSMTPNotifier(cfg SMTPConfig, logger *slog.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, logger: logger}
}

// Send delivers the message via the configured relay.
func (n *SMTPNotifier) Send(_ context.Context, message Message) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	var sb strings.Builder
	sb.WriteString("From: " + n.cfg.From + "\r\n")
	sb.WriteString("To: " + message.Recipient + "\r\n")
	sb.WriteString("Subject: " + message.Subject + "\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(message.Body)

	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{message.Recipient}, []byte(sb.String())); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", message.Recipient, err)
	}
	n.logger.Info("notification sent",
		slog.String("kind", message.Kind),
		slog.String("recipient", message.Recipient))
	return nil
}
