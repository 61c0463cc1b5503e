package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/wneessen/go-mail"

	"github.com/Fraol-12/WhisperBox/internal/config"
)

// SMTP sends notifications as HTML email.
type SMTP struct {
	cfg config.EmailConfig
}

// NewSMTP returns an SMTP notifier, or Disabled when credentials are missing.
func NewSMTP(cfg config.EmailConfig) Notifier {
	if !cfg.Enabled() {
		return Disabled{}
	}
	return &SMTP{cfg: cfg}
}

func (s *SMTP) Enabled() bool { return true }

func (s *SMTP) Notify(ctx context.Context, n Notification) error {
	msg, err := buildMessage(s.cfg, n)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.User),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(cfg config.EmailConfig, n Notification) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(cfg.User); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(cfg.To); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	msg.Subject(Subject(n))
	msg.SetBodyString(mail.TypeTextHTML, Body(n))
	return msg, nil
}

func Subject(n Notification) string {
	return "New Complaint - " + n.TicketID
}

func Body(n Notification) string {
	return fmt.Sprintf(`<h2>New Complaint Received</h2>
<p><strong>Ticket ID:</strong> %s</p>
<p><strong>Department:</strong> %s</p>
<p>Please log in to the admin dashboard to review and respond to this complaint.</p>
`, html.EscapeString(n.TicketID), html.EscapeString(string(n.Department)))
}
