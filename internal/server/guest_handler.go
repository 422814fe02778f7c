// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/mbaskhairoun/MMEngagement/internal/db"
	"github.com/mbaskhairoun/MMEngagement/internal/guestlist"
	"github.com/mbaskhairoun/MMEngagement/internal/model"
	"github.com/mbaskhairoun/MMEngagement/internal/notify"
	"github.com/mbaskhairoun/MMEngagement/internal/rsvp"
)

const dispatchTimeout = 30 * time.Second

// Mailer sends one confirmation email. The dispatcher satisfies it;
// tests swap in a fake.
type Mailer interface {
	Send(ctx context.Context, req notify.Request) error
}

func NewGuestHandler(
	resolver *guestlist.Resolver,
	manager *rsvp.Manager,
	mailer Mailer,
	event notify.EventDetails,
) *GuestHandler {
	return &GuestHandler{
		resolver: resolver,
		manager:  manager,
		mailer:   mailer,
		event:    event,
		logger:   slog.Default().WithGroup("http"),
	}
}

type GuestHandler struct {
	resolver *guestlist.Resolver
	manager  *rsvp.Manager
	mailer   Mailer
	event    notify.EventDetails
	logger   *slog.Logger
}

type lookupRequest struct {
	Name string `json:"name"`
}

type lookupResponse struct {
	Household        *model.Household    `json:"household"`
	MatchedMember    string              `json:"matched_member"`
	ExistingResponse *model.RsvpResponse `json:"existing_response,omitempty"`
}

// Lookup resolves a typed name against the guest list and, when a
// household matches, returns it together with any prior submission so
// the form can pre-fill for editing.
func (g *GuestHandler) Lookup(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "GuestHandler.Lookup")
	defer span.End()

	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "could not parse request"})
		return
	}

	match, err := g.resolver.Resolve(ctx, req.Name)
	switch {
	case errors.Is(err, guestlist.ErrEmptyName):
		c.JSON(http.StatusBadRequest, gin.H{"message": "please enter your name"})
		return
	case errors.Is(err, guestlist.ErrNoMatch):
		c.JSON(http.StatusNotFound, gin.H{
			"message": "We couldn't find your name on the guest list. Please try the name on your invitation, or contact the hosts.",
		})
		return
	case err != nil:
		span.RecordError(err)
		g.logger.ErrorContext(ctx, "could not search guest list", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not search guest list"})
		return
	}

	existing, err := g.manager.FindExisting(ctx, match.Household.ID)
	if err != nil {
		span.RecordError(err)
		g.logger.ErrorContext(ctx, "could not load prior response", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not load prior response"})
		return
	}

	c.JSON(http.StatusOK, lookupResponse{
		Household:        match.Household,
		MatchedMember:    match.MemberName,
		ExistingResponse: existing,
	})
}

// Submit records an RSVP and kicks off the confirmation email in the
// background. The write never waits on the mail provider.
func (g *GuestHandler) Submit(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "GuestHandler.Submit")
	defer span.End()

	var payload model.RsvpResponse
	if err := c.ShouldBindJSON(&payload); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "could not parse request"})
		return
	}

	prior, err := g.manager.FindExisting(ctx, payload.HouseholdID)
	if err != nil {
		span.RecordError(err)
		g.logger.ErrorContext(ctx, "could not load prior response", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not record response"})
		return
	}
	isUpdate := prior != nil

	saved, err := g.manager.Submit(ctx, &payload)
	switch {
	case errors.Is(err, model.ErrMissingRespondent),
		errors.Is(err, model.ErrMissingHousehold),
		errors.Is(err, model.ErrInvalidAttendance):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "household not found"})
		return
	case err != nil:
		span.RecordError(err)
		g.logger.ErrorContext(ctx, "could not record response", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not record response"})
		return
	}

	household, err := g.manager.Household(ctx, saved.HouseholdID)
	if err != nil {
		span.RecordError(err)
		g.logger.WarnContext(ctx, "could not reload household for confirmation", "error", err)
	} else {
		go g.dispatchConfirmation(household, saved, isUpdate)
	}

	status := http.StatusCreated
	if isUpdate {
		status = http.StatusOK
	}
	c.JSON(status, saved)
}

// dispatchConfirmation runs detached from the request. Failures are
// logged and counted, never surfaced to the guest.
func (g *GuestHandler) dispatchConfirmation(household *model.Household, resp *model.RsvpResponse, isUpdate bool) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	var span trace.Span
	ctx, span = tracer.Start(ctx, "GuestHandler.dispatchConfirmation")
	defer span.End()

	status := notify.StatusDeclining
	var declining []string
	if resp.IsAttending() {
		status = notify.StatusAttending
	} else {
		declining = household.Members
	}

	var recipients []notify.Recipient
	if household.Email != "" {
		recipients = append(recipients, notify.Recipient{Name: household.InvitationName, Email: household.Email})
	}
	if resp.RespondentEmail != "" {
		recipients = append(recipients, notify.Recipient{Name: resp.RespondentName, Email: resp.RespondentEmail})
	}
	if len(recipients) == 0 {
		g.logger.InfoContext(ctx, "no confirmation recipients", "household", household.ID.String())
		return
	}

	err := g.mailer.Send(ctx, notify.Request{
		RecipientName:    resp.RespondentName,
		Status:           status,
		AttendingMembers: resp.AttendingMembers,
		DecliningMembers: declining,
		Recipients:       recipients,
		IsUpdate:         isUpdate,
	})
	if err != nil {
		span.RecordError(err)
		g.logger.ErrorContext(ctx, "could not send confirmation", "error", err, "household", household.ID.String())
	}
}
