// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package rsvp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/mbaskhairoun/MMEngagement/internal/db"
	"github.com/mbaskhairoun/MMEngagement/internal/metrics"
	"github.com/mbaskhairoun/MMEngagement/internal/model"
)

// Manager owns the RSVP response lifecycle: at most one live response
// per household, re-submission edits in place, and the household's
// has-responded flag stays in step with the record.
type Manager struct {
	responses  db.ResponseStore
	households db.HouseholdStore
	logger     *slog.Logger
}

func NewManager(responses db.ResponseStore, households db.HouseholdStore) *Manager {
	return &Manager{
		responses:  responses,
		households: households,
		logger:     slog.Default().WithGroup("rsvp"),
	}
}

// FindExisting returns the household's live response, or nil when the
// household has not answered yet.
func (m *Manager) FindExisting(ctx context.Context, householdID uuid.UUID) (*model.RsvpResponse, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Manager.FindExisting")
	defer span.End()

	response, err := m.responses.FindResponseByHousehold(ctx, householdID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return response, nil
}

// Household loads the household a response belongs to.
func (m *Manager) Household(ctx context.Context, id uuid.UUID) (*model.Household, error) {
	return m.households.GetHouseholdByID(ctx, id)
}

// Submit records a household's answer. A household that already has a
// response gets an edit in place: all payload fields replace the old
// ones, UpdatedAt is refreshed, CreatedAt is kept. Otherwise the
// response is inserted and the household marked responded, in one
// transaction when the store supports it.
//
// Declining forces AttendingMembers empty regardless of what was
// checked.
func (m *Manager) Submit(ctx context.Context, payload *model.RsvpResponse) (*model.RsvpResponse, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Manager.Submit")
	defer span.End()

	if err := payload.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	household, err := m.households.GetHouseholdByID(ctx, payload.HouseholdID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load household: %w", err)
	}

	// Attending members must belong to the household.
	members := payload.AttendingMembers[:0]
	for _, name := range payload.AttendingMembers {
		if household.HasMember(name) {
			members = append(members, name)
		}
	}
	payload.AttendingMembers = members

	existing, err := m.FindExisting(ctx, payload.HouseholdID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		span.AddEvent("updating existing response")
		payload.ID = existing.ID
		payload.CreatedAt = existing.CreatedAt
		if err := m.responses.UpdateResponse(ctx, payload); err != nil {
			span.RecordError(err)
			return nil, err
		}
		metrics.Submissions.WithLabelValues(string(payload.Attending), "update").Inc()
		return payload, nil
	}

	span.AddEvent("inserting new response")
	if atomic, ok := m.responses.(db.AtomicSubmitter); ok {
		if err := atomic.SubmitResponse(ctx, payload); err != nil {
			span.RecordError(err)
			return nil, err
		}
	} else {
		if _, err := m.responses.CreateResponse(ctx, payload); err != nil {
			span.RecordError(err)
			return nil, err
		}
		// The response is recorded; a stale flag is a logged
		// inconsistency, not a submission failure.
		if err := m.households.SetResponded(ctx, payload.HouseholdID, true); err != nil {
			span.RecordError(err)
			m.logger.WarnContext(ctx, "response stored but household flag not updated",
				"household", payload.HouseholdID.String(), "error", err)
		}
	}
	metrics.Submissions.WithLabelValues(string(payload.Attending), "create").Inc()
	return payload, nil
}

// Delete removes a response and resets the owning household's flag.
// Failure to reset the flag is logged, not fatal.
func (m *Manager) Delete(ctx context.Context, responseID uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Manager.Delete")
	defer span.End()

	response, err := m.responses.GetResponseByID(ctx, responseID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := m.responses.DeleteResponse(ctx, responseID); err != nil {
		span.RecordError(err)
		return err
	}
	if err := m.households.SetResponded(ctx, response.HouseholdID, false); err != nil {
		span.RecordError(err)
		m.logger.WarnContext(ctx, "response deleted but household flag not reset",
			"household", response.HouseholdID.String(), "error", err)
	}
	return nil
}
