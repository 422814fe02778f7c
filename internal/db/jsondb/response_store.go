// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package jsondb

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/mbaskhairoun/MMEngagement/internal/db"
	"github.com/mbaskhairoun/MMEngagement/internal/model"
)

// ResponseStore keeps RSVP responses in a JSON file.
type ResponseStore struct {
	filename  string
	mu        sync.RWMutex
	responses map[uuid.UUID]*model.RsvpResponse
}

func NewResponseStore(filename string) (*ResponseStore, error) {
	store := &ResponseStore{
		filename:  filename,
		responses: make(map[uuid.UUID]*model.RsvpResponse),
	}
	if err := store.loadFromFile(); err != nil {
		return nil, err
	}
	return store, nil
}

func (r *ResponseStore) CreateResponse(ctx context.Context, response *model.RsvpResponse) (uuid.UUID, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateResponse")
	defer span.End()

	if response.ID == uuid.Nil {
		response.ID = uuid.New()
	}
	if err := response.Validate(); err != nil {
		span.RecordError(err)
		return uuid.Nil, err
	}

	span.AddEvent("Lock")
	r.mu.Lock()
	defer span.AddEvent("Unlock")
	defer r.mu.Unlock()

	if _, ok := r.responses[response.ID]; ok {
		err := errors.New("response already exists")
		span.RecordError(err)
		return uuid.Nil, err
	}
	now := time.Now()
	response.CreatedAt = &now
	response.UpdatedAt = &now
	r.responses[response.ID] = response

	span.AddEvent("save to file")
	if err := r.saveToFile(ctx); err != nil {
		return uuid.Nil, err
	}
	return response.ID, nil
}

func (r *ResponseStore) UpdateResponse(ctx context.Context, response *model.RsvpResponse) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateResponse")
	defer span.End()

	if response.ID == uuid.Nil {
		err := errors.New("response ID is required for updating")
		span.RecordError(err)
		return err
	}
	if err := response.Validate(); err != nil {
		span.RecordError(err)
		return err
	}

	span.AddEvent("Lock")
	r.mu.Lock()
	defer span.AddEvent("Unlock")
	defer r.mu.Unlock()

	if _, ok := r.responses[response.ID]; !ok {
		span.RecordError(db.ErrNotFound)
		return db.ErrNotFound
	}
	now := time.Now()
	response.UpdatedAt = &now
	r.responses[response.ID] = response

	return r.saveToFile(ctx)
}

func (r *ResponseStore) DeleteResponse(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DeleteResponse")
	defer span.End()

	span.AddEvent("Lock")
	r.mu.Lock()
	defer span.AddEvent("Unlock")
	defer r.mu.Unlock()

	if _, ok := r.responses[id]; !ok {
		span.RecordError(db.ErrNotFound)
		return db.ErrNotFound
	}
	delete(r.responses, id)

	return r.saveToFile(ctx)
}

func (r *ResponseStore) GetResponseByID(ctx context.Context, id uuid.UUID) (*model.RsvpResponse, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetResponseByID")
	defer span.End()

	span.AddEvent("RLock")
	r.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer r.mu.RUnlock()

	response, ok := r.responses[id]
	if !ok {
		span.RecordError(db.ErrNotFound)
		return nil, db.ErrNotFound
	}
	return response, nil
}

func (r *ResponseStore) FindResponseByHousehold(ctx context.Context, householdID uuid.UUID) (*model.RsvpResponse, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "FindResponseByHousehold")
	defer span.End()

	span.AddEvent("RLock")
	r.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer r.mu.RUnlock()

	for _, response := range r.responses {
		if response.HouseholdID == householdID {
			return response, nil
		}
	}
	span.RecordError(db.ErrNotFound)
	return nil, db.ErrNotFound
}

func (r *ResponseStore) ListResponses(ctx context.Context) ([]*model.RsvpResponse, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListResponses")
	defer span.End()

	span.AddEvent("RLock")
	r.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer r.mu.RUnlock()

	list := make([]*model.RsvpResponse, 0, len(r.responses))
	for _, response := range r.responses {
		list = append(list, response)
	}
	return list, nil
}

func (r *ResponseStore) saveToFile(ctx context.Context) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "SaveToFile")
	defer span.End()

	fileData, err := json.MarshalIndent(r.responses, "", "  ")
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := os.WriteFile(r.filename, fileData, 0644); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (r *ResponseStore) loadFromFile() error {
	if _, err := os.Stat(r.filename); os.IsNotExist(err) {
		// File does not exist, no responses to load
		return nil
	}

	fileData, err := os.ReadFile(r.filename)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return json.Unmarshal(fileData, &r.responses)
}
