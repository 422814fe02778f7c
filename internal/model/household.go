// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Household is one invitation unit. It may cover several people; the
// member list is never empty, a household without explicit members
// treats the invitation name as its sole member.
type Household struct {
	ID             uuid.UUID  `json:"id"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
	InvitationName string     `json:"invitation_name"`
	Members        []string   `json:"members"`
	Email          string     `json:"email,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	HasResponded   bool       `json:"has_responded"`

	// Case-folded match keys. Derived, never serialized; the stores
	// rebuild them on read via Validate.
	InvitationNameLower string   `json:"-"`
	MembersLower        []string `json:"-"`
}

var ErrMissingInvitationName = errors.New("household requires an invitation name")

// Normalize trims the source fields, fills in the sole-member default
// and recomputes the case-folded match keys.
func (h *Household) Normalize() error {
	h.InvitationName = strings.TrimSpace(h.InvitationName)
	if h.InvitationName == "" {
		return ErrMissingInvitationName
	}

	members := make([]string, 0, len(h.Members))
	for _, m := range h.Members {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}
	if len(members) == 0 {
		members = []string{h.InvitationName}
	}
	h.Members = members

	h.InvitationNameLower = Fold(h.InvitationName)
	h.MembersLower = make([]string, len(h.Members))
	for i, m := range h.Members {
		h.MembersLower[i] = Fold(m)
	}
	return nil
}

// Validate checks a record read from the store and rebuilds the
// derived match keys, which are not serialized.
func (h *Household) Validate() error {
	if h.ID == uuid.Nil {
		return errors.New("household ID is missing")
	}
	return h.Normalize()
}

// MaxAttendees is the upper bound on the attendee count, implicit in
// the member list.
func (h *Household) MaxAttendees() int {
	return len(h.Members)
}

// HasMember reports whether name equals one of the household members
// under case folding.
func (h *Household) HasMember(name string) bool {
	folded := Fold(name)
	for _, m := range h.MembersLower {
		if m == folded {
			return true
		}
	}
	return false
}
