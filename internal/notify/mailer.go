package notify

import (
	"context"
	"fmt"
	"os"

	gomail "github.com/wneessen/go-mail"

	"github.com/eventtix/eventtix/internal/config"
	"github.com/eventtix/eventtix/internal/model"
	"github.com/eventtix/eventtix/pkg/logger"
)

// SMTPMailer delivers mail over SMTP using go-mail.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer constructs an SMTPMailer.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) client() (*gomail.Client, error) {
	return gomail.NewClient(m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.From),
		gomail.WithPassword(m.cfg.Password),
	)
}

// SendRegistrationConfirmation mails a ticket confirmation with the QR image
// embedded inline when it exists on disk.
func (m *SMTPMailer) SendRegistrationConfirmation(ctx context.Context, email, name, ticketNumber, artifactFile string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject("Event Registration Confirmation")

	body := fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif;">
<h2>Registration Confirmed</h2>
<p>Hi %s,</p>
<p>Thank you for registering. Your ticket number is <strong>%s</strong>.</p>
<p><img src="cid:qrcode.png" alt="Event Ticket QR Code" style="max-width: 200px;"></p>
<p>Please present this QR code at the event venue.</p>
<hr>
<p style="color: #666; font-size: 12px;">This is an automated email, please do not reply.</p>
</body></html>`, name, ticketNumber)
	msg.SetBodyString(gomail.TypeTextHTML, body)

	// The artifact may be missing if rendering failed; send without it.
	if _, err := os.Stat(artifactFile); err == nil {
		msg.EmbedFile(artifactFile, gomail.WithFileName("qrcode.png"))
	}

	client, err := m.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// SendEventCreated mails the organizer after their event is created.
func (m *SMTPMailer) SendEventCreated(ctx context.Context, email string, event *model.Event) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject("Event Created Successfully")

	body := fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif;">
<h2>Event Created</h2>
<p><strong>Title:</strong> %s</p>
<p><strong>Date:</strong> %s %s</p>
<p><strong>Venue:</strong> %s</p>
<p>%s</p>
<p>Users can now register for your event.</p>
</body></html>`, event.Title, event.Date, event.Time, event.Venue, event.Description)
	msg.SetBodyString(gomail.TypeTextHTML, body)

	client, err := m.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// LogMailer is a Mailer that only logs. Used when SMTP is not configured,
// so local development keeps the full registration flow without a mail
// server.
type LogMailer struct {
	log logger.Logger
}

// NewLogMailer constructs a LogMailer.
func NewLogMailer(log logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendRegistrationConfirmation(_ context.Context, email, name, ticketNumber, _ string) error {
	m.log.Info("mail disabled: registration confirmation skipped",
		"email", email, "name", name, "ticket", ticketNumber)
	return nil
}

func (m *LogMailer) SendEventCreated(_ context.Context, email string, event *model.Event) error {
	m.log.Info("mail disabled: event created mail skipped",
		"email", email, "event_id", event.ID)
	return nil
}
