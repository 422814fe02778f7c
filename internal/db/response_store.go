// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/mbaskhairoun/MMEngagement/internal/model"
)

type ResponseStore interface {
	CreateResponse(context.Context, *model.RsvpResponse) (uuid.UUID, error)
	UpdateResponse(context.Context, *model.RsvpResponse) error
	DeleteResponse(context.Context, uuid.UUID) error
	GetResponseByID(context.Context, uuid.UUID) (*model.RsvpResponse, error)
	// FindResponseByHousehold returns the household's live response
	// or ErrNotFound. At most one exists at a time.
	FindResponseByHousehold(context.Context, uuid.UUID) (*model.RsvpResponse, error)
	ListResponses(context.Context) ([]*model.RsvpResponse, error)
}

// AtomicSubmitter is implemented by stores that can write a response
// and the owning household's has-responded flag in one transaction.
// The record manager prefers it over the two-step write.
type AtomicSubmitter interface {
	SubmitResponse(context.Context, *model.RsvpResponse) error
}
