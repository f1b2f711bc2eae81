package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultEmailJSBaseURL is the public EmailJS REST endpoint.
	DefaultEmailJSBaseURL = "https://api.emailjs.com"
	emailJSSendPath       = "/api/v1.0/email/send"
	defaultRecipientName  = "User"
)

// EmailJSConfig identifies the EmailJS service, template and keys.
type EmailJSConfig struct {
	BaseURL    string
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
	Timeout    time.Duration
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// EmailJSMailer sends OTP emails through the EmailJS REST API.
type EmailJSMailer struct {
	http   *resty.Client
	cfg    EmailJSConfig
	logger *slog.Logger
}

// NewEmailJSMailer builds a mailer. The client does not retry: a failed send
// is reported to the caller, which discloses the code instead.
func NewEmailJSMailer(cfg EmailJSConfig, logger *slog.Logger) *EmailJSMailer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultEmailJSBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	return &EmailJSMailer{http: client, cfg: cfg, logger: logger}
}

// templateParams fills every variable name a template might use for the
// recipient, since the template schema is not known here.
func templateParams(address, displayName, code string) map[string]string {
	if displayName == "" {
		displayName = defaultRecipientName
	}
	return map[string]string{
		"to_name":    displayName,
		"otp":        code,
		"to_email":   address,
		"user_email": address,
		"email":      address,
		"recipient":  address,
	}
}

// Send posts one OTP email. Any transport error or non-2xx response is
// reported as ErrDeliveryFailed.
func (m *EmailJSMailer) Send(ctx context.Context, address, displayName, code string) error {
	body := emailJSRequest{
		ServiceID:      m.cfg.ServiceID,
		TemplateID:     m.cfg.TemplateID,
		UserID:         m.cfg.PublicKey,
		AccessToken:    m.cfg.PrivateKey,
		TemplateParams: templateParams(address, displayName, code),
	}
	resp, err := m.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(emailJSSendPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: status %d: %s", ErrDeliveryFailed, resp.StatusCode(), resp.String())
	}
	return nil
}

// SendOTPEmail wraps Send and reports success as a boolean.
func (m *EmailJSMailer) SendOTPEmail(ctx context.Context, address, displayName, code string) bool {
	if err := m.Send(ctx, address, displayName, code); err != nil {
		if m.logger != nil {
			m.logger.Warn("otp email failed", slog.String("recipient", address), slog.Any("error", err))
		}
		return false
	}
	if m.logger != nil {
		m.logger.Info("otp email sent", slog.String("recipient", address))
	}
	return true
}
