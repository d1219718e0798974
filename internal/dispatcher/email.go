package dispatcher

import (
	"context"

	"github.com/smallbiznis/beacon/internal/config"
	"gopkg.in/gomail.v2"
)

// EmailDispatcher delivers over SMTP. Per-channel config may override the
// sender with a "from" key.
type EmailDispatcher struct {
	cfg config.EmailConfig
}

func NewEmail(cfg config.EmailConfig) *EmailDispatcher {
	return &EmailDispatcher{cfg: cfg}
}

func (d *EmailDispatcher) Name() string { return "email" }

func (d *EmailDispatcher) Send(ctx context.Context, payload Payload) error {
	if payload.Address == "" {
		return ErrMissingAddress
	}

	from := d.cfg.SMTPFrom
	if v, ok := payload.Config["from"].(string); ok && v != "" {
		from = v
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", payload.Address)
	m.SetHeader("Subject", payload.Subject)
	m.SetBody("text/plain", payload.Text)
	if payload.HTML != "" {
		m.AddAlternative("text/html", payload.HTML)
	}

	dialer := gomail.NewDialer(d.cfg.SMTPHost, d.cfg.SMTPPort, d.cfg.SMTPUsername, d.cfg.SMTPPassword)

	done := make(chan error, 1)
	go func() {
		done <- dialer.DialAndSend(m)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
