// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

// Package notify formats and sends the confirmation email after a
// successful RSVP write. Dispatch is fire-and-forget relative to the
// write: a failure here is reported and counted, never rolled back
// into the RSVP.
package notify

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/mail"
	txttemplate "text/template"

	"go.opentelemetry.io/otel/trace"

	"github.com/mbaskhairoun/MMEngagement/internal/metrics"
	"github.com/mbaskhairoun/MMEngagement/internal/model"
)

//go:embed email.html email.txt event.ics
var assets embed.FS

const (
	maxNameLength = 100
	maxRecipients = 10
	maxMembers    = 20

	icsFilename = "engagement-celebration.ics"
)

var (
	ErrNameTooLong       = errors.New("recipient name exceeds the length bound")
	ErrInvalidStatus     = errors.New("status is not a recognized response")
	ErrNoRecipients      = errors.New("no recipients")
	ErrTooManyRecipients = fmt.Errorf("more than %d recipients", maxRecipients)
	ErrInvalidRecipient  = errors.New("invalid recipient address")
	ErrTooManyMembers    = fmt.Errorf("more than %d member names", maxMembers)
)

// Recipient is one confirmation addressee.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Attachment content is base64 encoded.
type Attachment struct {
	Filename string
	Content  string
}

// Email is the rendered message handed to the sending capability.
type Email struct {
	From        Recipient
	To          []Recipient
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Sender is the external email capability.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Request describes one confirmation to dispatch.
type Request struct {
	RecipientName    string
	Status           string
	AttendingMembers []string
	DecliningMembers []string
	Recipients       []Recipient
	IsUpdate         bool
}

type Dispatcher struct {
	sender   Sender
	event    EventDetails
	tmplHTML *template.Template
	tmplText *txttemplate.Template
	ics      string
	logger   *slog.Logger
}

func NewDispatcher(sender Sender, event EventDetails) *Dispatcher {
	raw, err := assets.ReadFile("event.ics")
	if err != nil {
		panic(err)
	}
	return &Dispatcher{
		sender: sender,
		event:  event,
		// NOTE: text/template for the plain part, html/template for
		// the document, both from the same content variant.
		tmplHTML: template.Must(template.ParseFS(assets, "email.html")),
		tmplText: txttemplate.Must(txttemplate.ParseFS(assets, "email.txt")),
		ics:      base64.StdEncoding.EncodeToString(raw),
		logger:   slog.Default().WithGroup("notify"),
	}
}

// Send validates the request, renders the matching content variant
// and forwards it to the email capability. Every validation failure
// aborts before any external call.
func (d *Dispatcher) Send(ctx context.Context, req Request) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Dispatcher.Send")
	defer span.End()

	if err := d.validate(req); err != nil {
		span.RecordError(err)
		metrics.EmailsSent.WithLabelValues("rejected").Inc()
		return err
	}

	attending := req.Status == StatusAttending
	members := req.AttendingMembers
	if attending && len(members) == 0 {
		members = []string{req.RecipientName}
	}

	data := map[string]any{
		"Name":      req.RecipientName,
		"Status":    req.Status,
		"Attending": attending,
		"Members":   members,
		"Declined":  req.DecliningMembers,
		"Content":   contentFor(d.event, attending, req.IsUpdate),
		"Event":     d.event,
	}

	var html, text bytes.Buffer
	if err := d.tmplHTML.ExecuteTemplate(&html, "EMAIL_HTML", data); err != nil {
		span.RecordError(err)
		return fmt.Errorf("render html body: %w", err)
	}
	if err := d.tmplText.ExecuteTemplate(&text, "EMAIL_TEXT", data); err != nil {
		span.RecordError(err)
		return fmt.Errorf("render text body: %w", err)
	}

	email := &Email{
		From:    Recipient{Name: d.event.FromName, Email: d.event.FromEmail},
		To:      dedupeRecipients(req.Recipients),
		Subject: contentFor(d.event, attending, req.IsUpdate).Subject,
		HTML:    html.String(),
		Text:    text.String(),
		Attachments: []Attachment{
			{Filename: icsFilename, Content: d.ics},
		},
	}

	if err := d.sender.Send(ctx, email); err != nil {
		span.RecordError(err)
		metrics.EmailsSent.WithLabelValues("failure").Inc()
		d.logger.ErrorContext(ctx, "confirmation dispatch failed",
			"recipients", len(email.To), "error", err)
		return fmt.Errorf("send confirmation: %w", err)
	}
	metrics.EmailsSent.WithLabelValues("success").Inc()
	d.logger.InfoContext(ctx, "confirmation sent",
		"recipients", len(email.To), "update", req.IsUpdate)
	return nil
}

func (d *Dispatcher) validate(req Request) error {
	if req.RecipientName == "" || len(req.RecipientName) > maxNameLength {
		return ErrNameTooLong
	}
	if req.Status != StatusAttending && req.Status != StatusDeclining {
		return ErrInvalidStatus
	}
	if len(req.Recipients) == 0 {
		return ErrNoRecipients
	}
	if len(req.Recipients) > maxRecipients {
		return ErrTooManyRecipients
	}
	for _, r := range req.Recipients {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidRecipient, r.Email)
		}
	}
	if len(req.AttendingMembers) > maxMembers || len(req.DecliningMembers) > maxMembers {
		return ErrTooManyMembers
	}
	return nil
}

// dedupeRecipients drops duplicate addresses under case folding,
// keeping the first occurrence.
func dedupeRecipients(in []Recipient) []Recipient {
	seen := make(map[string]struct{}, len(in))
	out := make([]Recipient, 0, len(in))
	for _, r := range in {
		key := model.Fold(r.Email)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
