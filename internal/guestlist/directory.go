// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package guestlist

import (
	"context"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/mbaskhairoun/MMEngagement/internal/db"
	"github.com/mbaskhairoun/MMEngagement/internal/model"
)

// Directory is a read-only view of the household records with exact
// and fuzzy lookup by name. Fuzzy means substring containment under
// case folding, not edit distance.
//
// Households are scanned in ascending ID order, so an ambiguous name
// that several households could claim always resolves to the same
// one. Exactly which household wins among equally good candidates is
// a tie-break, not a quality ranking.
type Directory struct {
	households db.HouseholdStore
}

func NewDirectory(households db.HouseholdStore) *Directory {
	return &Directory{households: households}
}

// All returns every household, sorted by ID.
func (d *Directory) All(ctx context.Context) ([]*model.Household, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Directory.All")
	defer span.End()

	households, err := d.households.ListHouseholds(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	sort.Slice(households, func(i, j int) bool {
		return households[i].ID.String() < households[j].ID.String()
	})
	return households, nil
}

// FindByExactName returns the household whose invitation name equals
// name under case folding, or ErrNoMatch.
func (d *Directory) FindByExactName(ctx context.Context, name string) (*model.Household, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Directory.FindByExactName")
	defer span.End()

	folded := model.Fold(name)
	households, err := d.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, h := range households {
		if h.InvitationNameLower == folded {
			return h, nil
		}
	}
	return nil, ErrNoMatch
}

// FindByFuzzyName scans all households and returns the first one
// matching name by, in priority order: invitation-name substring in
// either direction, exact member name, member-name substring in
// either direction.
func (d *Directory) FindByFuzzyName(ctx context.Context, name string) (*model.Household, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Directory.FindByFuzzyName")
	defer span.End()

	folded := model.Fold(name)
	if folded == "" {
		return nil, ErrNoMatch
	}
	households, err := d.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, h := range households {
		if containsEitherWay(h.InvitationNameLower, folded) {
			return h, nil
		}
	}
	for _, h := range households {
		for _, m := range h.MembersLower {
			if m == folded {
				return h, nil
			}
		}
	}
	for _, h := range households {
		for _, m := range h.MembersLower {
			if containsEitherWay(m, folded) {
				return h, nil
			}
		}
	}
	return nil, ErrNoMatch
}

func containsEitherWay(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
