// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package guestlist

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/trace"

	"github.com/mbaskhairoun/MMEngagement/internal/model"
)

var (
	// ErrEmptyName rejects blank input before any lookup runs.
	ErrEmptyName = errors.New("no name entered")
	// ErrNoMatch means the typed name matches no household. The
	// caller surfaces it as guidance, not as a failure.
	ErrNoMatch = errors.New("name not on the guest list")
)

// Match is a resolved identity: the household the guest belongs to
// and the specific name that matched. MemberName is the invitation
// name itself when the match was on the invitation rather than on a
// person, so the form can pre-check "(You)" only for real members.
type Match struct {
	Household  *model.Household
	MemberName string
}

// Resolver maps a freely typed name to a household record.
type Resolver struct {
	directory *Directory
}

func NewResolver(directory *Directory) *Resolver {
	return &Resolver{directory: directory}
}

// Resolve tries, in order: exact invitation name, exact member name,
// invitation-name substring either direction, member-name substring
// either direction. An exact invitation-name match always wins; a
// miss on every rule is ErrNoMatch.
func (r *Resolver) Resolve(ctx context.Context, typedName string) (*Match, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Resolver.Resolve")
	defer span.End()

	folded := model.Fold(typedName)
	if folded == "" {
		span.RecordError(ErrEmptyName)
		return nil, ErrEmptyName
	}

	if h, err := r.directory.FindByExactName(ctx, typedName); err == nil {
		return &Match{Household: h, MemberName: h.InvitationName}, nil
	} else if !errors.Is(err, ErrNoMatch) {
		span.RecordError(err)
		return nil, err
	}

	households, err := r.directory.All(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	for _, h := range households {
		for i, m := range h.MembersLower {
			if m == folded {
				return &Match{Household: h, MemberName: h.Members[i]}, nil
			}
		}
	}

	for _, h := range households {
		if containsEitherWay(h.InvitationNameLower, folded) {
			return &Match{Household: h, MemberName: h.InvitationName}, nil
		}
	}

	for _, h := range households {
		for i, m := range h.MembersLower {
			if containsEitherWay(m, folded) {
				return &Match{Household: h, MemberName: h.Members[i]}, nil
			}
		}
	}

	span.AddEvent("no household matched")
	return nil, ErrNoMatch
}
