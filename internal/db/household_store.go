// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mbaskhairoun/MMEngagement/internal/model"
)

// ErrNotFound is returned by every store when no record matches.
var ErrNotFound = errors.New("record not found")

// ImportMode selects how a bulk import treats the existing guest list.
type ImportMode string

const (
	// ImportAppend adds new households and skips rows whose
	// invitation name already exists.
	ImportAppend ImportMode = "append"
	// ImportReplace drops the entire guest list first.
	ImportReplace ImportMode = "replace"
)

// ImportResult reports what a bulk import did.
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

type HouseholdStore interface {
	CreateHousehold(context.Context, *model.Household) (uuid.UUID, error)
	UpdateHousehold(context.Context, *model.Household) error
	DeleteHousehold(context.Context, uuid.UUID) error
	GetHouseholdByID(context.Context, uuid.UUID) (*model.Household, error)
	ListHouseholds(context.Context) ([]*model.Household, error)
	// SetResponded flips the denormalized has-responded flag.
	SetResponded(ctx context.Context, id uuid.UUID, responded bool) error
	// ImportHouseholds applies one spreadsheet import as a single
	// batch. The batch is all-or-nothing.
	ImportHouseholds(ctx context.Context, households []*model.Household, mode ImportMode) (*ImportResult, error)
}
