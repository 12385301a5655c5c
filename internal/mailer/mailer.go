// Package mailer sends transactional email through MailerSend.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mailersend/mailersend-go"

	"github.com/emldov7/evMonde--sub000/pkg/logger"
)

// Mailer sends the platform's transactional email. When disabled every
// send is a logged no-op so free-tier deployments still work.
type Mailer struct {
	client    *mailersend.Mailersend
	fromName  string
	fromEmail string
	enabled   bool
}

// New creates a Mailer. An empty API key disables sending.
func New(apiKey, fromName, fromEmail string, enabled bool) *Mailer {
	m := &Mailer{
		fromName:  fromName,
		fromEmail: fromEmail,
		enabled:   enabled && apiKey != "",
	}
	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}
	return m
}

// TicketEmail is the payload of a registration confirmation email
type TicketEmail struct {
	To            string
	Name          string
	EventTitle    string
	EventDate     time.Time
	EventLocation string
	QRCodeURL     string
}

// SendTicket emails the registration confirmation with the QR ticket
func (m *Mailer) SendTicket(ctx context.Context, email TicketEmail) error {
	if !m.enabled {
		logger.InfoCtx(ctx, fmt.Sprintf("mailer disabled, skipping ticket email to %s", email.To))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	message := m.client.Email.NewMessage()
	message.SetFrom(mailersend.From{Name: m.fromName, Email: m.fromEmail})
	message.SetRecipients([]mailersend.Recipient{{Name: email.Name, Email: email.To}})
	message.SetSubject(fmt.Sprintf("Votre billet pour %s", email.EventTitle))
	message.SetHTML(ticketHTML(email))
	message.SetText(ticketText(email))

	res, err := m.client.Email.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("send ticket email: %w", err)
	}

	logger.InfoCtx(ctx, fmt.Sprintf("ticket email sent, message id %s", res.Header.Get("X-Message-Id")))
	return nil
}

// ReminderEmail is the payload of a scheduled event reminder
type ReminderEmail struct {
	To            string
	Name          string
	EventTitle    string
	EventDate     time.Time
	TimeRemaining string
	Message       string
}

// SendReminder emails an attendee that their event starts soon
func (m *Mailer) SendReminder(ctx context.Context, email ReminderEmail) error {
	if !m.enabled {
		logger.InfoCtx(ctx, fmt.Sprintf("mailer disabled, skipping reminder email to %s", email.To))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	message := m.client.Email.NewMessage()
	message.SetFrom(mailersend.From{Name: m.fromName, Email: m.fromEmail})
	message.SetRecipients([]mailersend.Recipient{{Name: email.Name, Email: email.To}})
	message.SetSubject(fmt.Sprintf("⏰ Rappel : %s (%s)", email.EventTitle, email.TimeRemaining))
	message.SetHTML(reminderHTML(email))
	message.SetText(reminderText(email))

	res, err := m.client.Email.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("send reminder email: %w", err)
	}

	logger.InfoCtx(ctx, fmt.Sprintf("reminder email sent, message id %s", res.Header.Get("X-Message-Id")))
	return nil
}

func reminderHTML(e ReminderEmail) string {
	extra := ""
	if e.Message != "" {
		extra = fmt.Sprintf("<p><strong>Message :</strong> %s</p>", e.Message)
	}
	return fmt.Sprintf(`<h2>Bonjour %s,</h2>
<p>Petit rappel : votre événement <strong>%s</strong> commence dans <strong>%s</strong>.</p>
<p>Date : %s</p>
%s<p style="color:#6b7280; font-size:12px;">Cet email a été envoyé automatiquement.</p>`,
		e.Name, e.EventTitle, e.TimeRemaining, e.EventDate.Format("02/01/2006 15:04"), extra)
}

func reminderText(e ReminderEmail) string {
	extra := ""
	if e.Message != "" {
		extra = "Message : " + e.Message + "\n"
	}
	return fmt.Sprintf("Bonjour %s,\n\nPetit rappel : votre événement %s commence dans %s.\nDate : %s\n%s",
		e.Name, e.EventTitle, e.TimeRemaining, e.EventDate.Format("02/01/2006 15:04"), extra)
}

func ticketHTML(e TicketEmail) string {
	return fmt.Sprintf(`<h2>Bonjour %s,</h2>
<p>Votre inscription à <strong>%s</strong> est confirmée.</p>
<p>Date : %s<br>Lieu : %s</p>
<p>Présentez ce QR code à l'entrée :</p>
<img src="%s" alt="QR code" width="256" height="256">`,
		e.Name, e.EventTitle, e.EventDate.Format("02/01/2006 15:04"), e.EventLocation, e.QRCodeURL)
}

func ticketText(e TicketEmail) string {
	return fmt.Sprintf("Bonjour %s,\n\nVotre inscription à %s est confirmée.\nDate : %s\nLieu : %s\n\nVotre billet : %s\n",
		e.Name, e.EventTitle, e.EventDate.Format("02/01/2006 15:04"), e.EventLocation, e.QRCodeURL)
}
