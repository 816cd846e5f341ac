package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storeops/internal/common"
	"storeops/internal/models"
)

// ErrNotConfigured is returned when neither the tenant nor the server configured a channel.
var ErrNotConfigured = errors.New("notification channel is not configured")

// Dispatcher resolves channel configuration per tenant and delivers messages.
// Tenant settings win over the server environment when they name a host or gateway.
type Dispatcher struct {
	emailDefaults    EmailConfig
	whatsAppDefaults WhatsAppConfig
	timeout          time.Duration

	newEmail    func(EmailConfig) emailSender
	newWhatsApp func(WhatsAppConfig, time.Duration) whatsAppSender
}

type emailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type whatsAppSender interface {
	Send(ctx context.Context, phone, message string) error
}

func NewDispatcher(email EmailConfig, whatsApp WhatsAppConfig, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		emailDefaults:    email,
		whatsAppDefaults: whatsApp,
		timeout:          timeout,
		newEmail:         func(c EmailConfig) emailSender { return NewEmailSender(c) },
		newWhatsApp:      func(c WhatsAppConfig, t time.Duration) whatsAppSender { return NewWhatsAppClient(c, t) },
	}
}

func (d *Dispatcher) EmailConfigFor(s *models.Setting) EmailConfig {
	if s == nil || common.SafeString(s.SMTPHost) == "" {
		return d.emailDefaults
	}
	cfg := EmailConfig{
		Host:     common.SafeString(s.SMTPHost),
		Port:     587,
		User:     common.SafeString(s.SMTPUser),
		Password: common.SafeString(s.SMTPPassword),
		From:     common.SafeString(s.SMTPFrom),
		FromName: s.CompanyName,
	}
	if s.SMTPPort != nil {
		cfg.Port = *s.SMTPPort
	}
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	return cfg
}

func (d *Dispatcher) WhatsAppConfigFor(s *models.Setting) WhatsAppConfig {
	if s == nil || common.SafeString(s.WhatsAppAPIURL) == "" {
		return d.whatsAppDefaults
	}
	return WhatsAppConfig{
		APIURL:   common.SafeString(s.WhatsAppAPIURL),
		Token:    common.SafeString(s.WhatsAppToken),
		Instance: common.SafeString(s.WhatsAppInstance),
	}
}

// Ready reports whether channel can be used for the tenant.
func (d *Dispatcher) Ready(s *models.Setting, channel string) bool {
	switch channel {
	case models.ChannelEmail:
		return d.EmailConfigFor(s).Configured()
	case models.ChannelWhatsApp:
		return d.WhatsAppConfigFor(s).Configured()
	}
	return false
}

// Deliver sends one logged notification through its channel.
func (d *Dispatcher) Deliver(ctx context.Context, s *models.Setting, n *models.NotificationLog) error {
	switch n.Channel {
	case models.ChannelEmail:
		return d.newEmail(d.EmailConfigFor(s)).Send(ctx, n.Recipient, common.SafeString(n.Subject), n.Message)
	case models.ChannelWhatsApp:
		return d.newWhatsApp(d.WhatsAppConfigFor(s), d.timeout).Send(ctx, n.Recipient, n.Message)
	}
	return fmt.Errorf("unsupported channel %q", n.Channel)
}
