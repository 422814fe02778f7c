// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mailersend/mailersend-go"
)

// MailerSender delivers email through the MailerSend API.
type MailerSender struct {
	client *mailersend.Mailersend
}

func NewMailerSender(apiToken string) (*MailerSender, error) {
	if apiToken == "" {
		return nil, fmt.Errorf("mailersend API token is required")
	}
	return &MailerSender{client: mailersend.NewMailersend(apiToken)}, nil
}

func (m *MailerSender) Send(ctx context.Context, email *Email) error {
	msg := m.client.Email.NewMessage()
	msg.SetFrom(mailersend.From{Name: email.From.Name, Email: email.From.Email})

	recipients := make([]mailersend.Recipient, len(email.To))
	for i, r := range email.To {
		recipients[i] = mailersend.Recipient{Name: r.Name, Email: r.Email}
	}
	msg.SetRecipients(recipients)
	msg.SetSubject(email.Subject)
	msg.SetHTML(email.HTML)
	msg.SetText(email.Text)

	for _, a := range email.Attachments {
		msg.AddAttachment(mailersend.Attachment{
			Filename: a.Filename,
			Content:  a.Content,
		})
	}

	if _, err := m.client.Email.Send(ctx, msg); err != nil {
		return fmt.Errorf("mailersend: %w", err)
	}
	return nil
}

// NopSender drops every email. Used when no API token is configured,
// so a local setup still records RSVPs.
type NopSender struct{}

func (NopSender) Send(ctx context.Context, email *Email) error {
	slog.Default().WarnContext(ctx, "email dropped, no sender configured",
		"subject", email.Subject, "recipients", len(email.To))
	return nil
}
