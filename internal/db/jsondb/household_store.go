// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package jsondb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/mbaskhairoun/MMEngagement/internal/db"
	"github.com/mbaskhairoun/MMEngagement/internal/model"
)

// HouseholdStore keeps the guest list in a JSON file. Intended for
// development and tests; kvdb is the production store.
type HouseholdStore struct {
	filename   string
	mu         sync.RWMutex
	households map[uuid.UUID]*model.Household
}

func NewHouseholdStore(filename string) (*HouseholdStore, error) {
	store := &HouseholdStore{
		filename:   filename,
		households: make(map[uuid.UUID]*model.Household),
	}
	if err := store.loadFromFile(); err != nil {
		return nil, err
	}
	return store, nil
}

func (h *HouseholdStore) CreateHousehold(ctx context.Context, household *model.Household) (uuid.UUID, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateHousehold")
	defer span.End()

	span.AddEvent("Lock")
	h.mu.Lock()
	defer span.AddEvent("Unlock")
	defer h.mu.Unlock()

	if household.ID == uuid.Nil {
		household.ID = uuid.New()
	}
	if _, ok := h.households[household.ID]; ok {
		err := errors.New("household already exists")
		span.RecordError(err)
		return uuid.Nil, err
	}
	if err := household.Normalize(); err != nil {
		span.RecordError(err)
		return uuid.Nil, err
	}
	now := time.Now()
	household.CreatedAt = &now
	h.households[household.ID] = household

	span.AddEvent("save to file")
	if err := h.saveToFile(ctx); err != nil {
		return uuid.Nil, err
	}
	return household.ID, nil
}

func (h *HouseholdStore) UpdateHousehold(ctx context.Context, household *model.Household) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateHousehold")
	defer span.End()

	if household.ID == uuid.Nil {
		err := errors.New("household ID is required for updating")
		span.RecordError(err)
		return err
	}
	if err := household.Normalize(); err != nil {
		span.RecordError(err)
		return err
	}

	span.AddEvent("Lock")
	h.mu.Lock()
	defer span.AddEvent("Unlock")
	defer h.mu.Unlock()

	if _, ok := h.households[household.ID]; !ok {
		span.RecordError(db.ErrNotFound)
		return db.ErrNotFound
	}
	now := time.Now()
	household.UpdatedAt = &now
	h.households[household.ID] = household

	return h.saveToFile(ctx)
}

func (h *HouseholdStore) DeleteHousehold(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DeleteHousehold")
	defer span.End()

	span.AddEvent("Lock")
	h.mu.Lock()
	defer span.AddEvent("Unlock")
	defer h.mu.Unlock()

	if _, ok := h.households[id]; !ok {
		span.RecordError(db.ErrNotFound)
		return db.ErrNotFound
	}
	delete(h.households, id)

	return h.saveToFile(ctx)
}

func (h *HouseholdStore) GetHouseholdByID(ctx context.Context, id uuid.UUID) (*model.Household, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetHouseholdByID")
	defer span.End()

	span.AddEvent("RLock")
	h.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer h.mu.RUnlock()

	household, ok := h.households[id]
	if !ok {
		span.RecordError(db.ErrNotFound)
		return nil, db.ErrNotFound
	}
	return household, nil
}

func (h *HouseholdStore) ListHouseholds(ctx context.Context) ([]*model.Household, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListHouseholds")
	defer span.End()

	span.AddEvent("RLock")
	h.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer h.mu.RUnlock()

	list := make([]*model.Household, 0, len(h.households))
	for _, household := range h.households {
		list = append(list, household)
	}
	return list, nil
}

func (h *HouseholdStore) SetResponded(ctx context.Context, id uuid.UUID, responded bool) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "SetResponded")
	defer span.End()

	span.AddEvent("Lock")
	h.mu.Lock()
	defer span.AddEvent("Unlock")
	defer h.mu.Unlock()

	household, ok := h.households[id]
	if !ok {
		span.RecordError(db.ErrNotFound)
		return db.ErrNotFound
	}
	household.HasResponded = responded
	now := time.Now()
	household.UpdatedAt = &now

	return h.saveToFile(ctx)
}

func (h *HouseholdStore) ImportHouseholds(ctx context.Context, households []*model.Household, mode db.ImportMode) (*db.ImportResult, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ImportHouseholds")
	defer span.End()

	for _, household := range households {
		if household.ID == uuid.Nil {
			household.ID = uuid.New()
		}
		if err := household.Normalize(); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	span.AddEvent("Lock")
	h.mu.Lock()
	defer span.AddEvent("Unlock")
	defer h.mu.Unlock()

	existing := make(map[string]struct{})
	switch mode {
	case db.ImportReplace:
		h.households = make(map[uuid.UUID]*model.Household)
	case db.ImportAppend:
		for _, household := range h.households {
			existing[household.InvitationNameLower] = struct{}{}
		}
	default:
		return nil, fmt.Errorf("unknown import mode %q", mode)
	}

	now := time.Now()
	result := &db.ImportResult{}
	for _, household := range households {
		if _, ok := existing[household.InvitationNameLower]; ok {
			result.Skipped++
			continue
		}
		household.CreatedAt = &now
		h.households[household.ID] = household
		existing[household.InvitationNameLower] = struct{}{}
		result.Added++
	}

	span.AddEvent("save to file")
	if err := h.saveToFile(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

func (h *HouseholdStore) saveToFile(ctx context.Context) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "SaveToFile")
	defer span.End()

	fileData, err := json.MarshalIndent(h.households, "", "  ")
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := os.WriteFile(h.filename, fileData, 0644); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (h *HouseholdStore) loadFromFile() error {
	if _, err := os.Stat(h.filename); os.IsNotExist(err) {
		// File does not exist, no households to load
		return nil
	}

	fileData, err := os.ReadFile(h.filename)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := json.Unmarshal(fileData, &h.households); err != nil {
		return err
	}
	for _, household := range h.households {
		if err := household.Validate(); err != nil {
			return err
		}
	}
	return nil
}
