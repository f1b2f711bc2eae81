package notification

import (
	"context"
	"errors"
	"log/slog"
)

const (
	// KindRequestPosted indicates a new blood request entered the feed.
	KindRequestPosted = "request_posted"
	// KindRequestUpdated indicates an owner edited a request.
	KindRequestUpdated = "request_updated"
	// KindRequestDeleted indicates a request was removed.
	KindRequestDeleted = "request_deleted"
)

// ErrDeliveryFailed reports that the email API did not accept a message.
// It never fails an authentication flow; the code is disclosed instead.
var ErrDeliveryFailed = errors.New("email delivery failed")

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// OTPMailer emails a one-time code. It reports whether delivery succeeded
// instead of returning an error.
type OTPMailer interface {
	SendOTPEmail(ctx context.Context, address, displayName, code string) bool
}

// LoggerNotifier writes notifications to the logger. As an OTPMailer it
// never delivers, so callers fall back to disclosing the code.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
	return nil
}

// SendOTPEmail logs that no email transport is configured and reports failure.
func (n *LoggerNotifier) SendOTPEmail(_ context.Context, address, _, _ string) bool {
	if n != nil && n.logger != nil {
		n.logger.Warn("otp email not sent: no email service configured", "recipient", address)
	}
	return false
}
