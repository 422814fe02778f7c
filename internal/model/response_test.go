// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package model

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestRsvpResponse_Validate(t *testing.T) {
	householdID := uuid.MustParse("0eac703a-40f3-4318-ae96-f28e026a23c6")

	tt := []struct {
		name     string
		response RsvpResponse
		wantErr  error
	}{
		{
			name:     "missing household",
			response: RsvpResponse{RespondentName: "John", Attending: AttendanceYes},
			wantErr:  ErrMissingHousehold,
		},
		{
			name:     "missing respondent",
			response: RsvpResponse{HouseholdID: householdID, Attending: AttendanceYes},
			wantErr:  ErrMissingRespondent,
		},
		{
			name:     "bad attendance literal",
			response: RsvpResponse{HouseholdID: householdID, RespondentName: "John", Attending: "maybe"},
			wantErr:  ErrInvalidAttendance,
		},
		{
			name:     "valid yes",
			response: RsvpResponse{HouseholdID: householdID, RespondentName: "John", Attending: AttendanceYes},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.response.Validate()
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestRsvpResponse_DecliningClearsMembers(t *testing.T) {
	r := RsvpResponse{
		HouseholdID:      uuid.New(),
		RespondentName:   "Jane",
		Attending:        AttendanceNo,
		AttendingMembers: []string{"Jane Smith", "John Smith"},
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.AttendingMembers) != 0 {
		t.Fatalf("declining must clear attending members, got %v", r.AttendingMembers)
	}
	if r.Headcount() != 0 {
		t.Fatalf("declined headcount: want 0, got %d", r.Headcount())
	}
}

func TestRsvpResponse_Headcount(t *testing.T) {
	r := RsvpResponse{
		HouseholdID:    uuid.New(),
		RespondentName: "Jane",
		Attending:      AttendanceYes,
	}
	if r.Headcount() != 1 {
		t.Fatalf("attending with no member list counts the respondent, got %d", r.Headcount())
	}
	r.AttendingMembers = []string{"Jane Smith", "John Smith", "Jimmy Smith"}
	if r.Headcount() != 3 {
		t.Fatalf("want 3, got %d", r.Headcount())
	}
}

func TestFormConfig_Shown(t *testing.T) {
	defaults := DefaultFormConfig()
	if !defaults.Shown("phone") {
		t.Fatal("phone should default to shown")
	}
	if defaults.Shown("transportNeeded") {
		t.Fatal("transportNeeded should default to hidden")
	}

	stored := &FormConfig{Fields: map[string]bool{"phone": false}}
	if stored.Shown("phone") {
		t.Fatal("stored override should win")
	}
	if !stored.Shown("message") {
		t.Fatal("field absent from the stored document falls back to its default")
	}
}
