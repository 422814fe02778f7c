// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Attendance string

const (
	AttendanceYes Attendance = "yes"
	AttendanceNo  Attendance = "no"
)

// RsvpResponse is one household's attendance answer. A household has
// at most one live response; re-submission edits it in place.
type RsvpResponse struct {
	ID          uuid.UUID  `json:"id"`
	HouseholdID uuid.UUID  `json:"household_id"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`

	RespondentName  string     `json:"respondent_name"`
	RespondentEmail string     `json:"respondent_email"`
	Phone           string     `json:"phone,omitempty"`
	Attending       Attendance `json:"attending"`

	// AttendingMembers is a subset of the household members and is
	// meaningful only when attending; declining forces it empty.
	AttendingMembers []string `json:"attending_members"`

	// Situational fields, each individually toggled by FormConfig.
	Relationship        string `json:"relationship,omitempty"`
	MealPreference      string `json:"meal_preference,omitempty"`
	DietaryRestrictions string `json:"dietary_restrictions,omitempty"`
	ChildrenCount       int    `json:"children_count,omitempty"`
	ChildrenAges        string `json:"children_ages,omitempty"`
	SongRequest         string `json:"song_request,omitempty"`
	TransportNeeded     bool   `json:"transport_needed,omitempty"`
	AccommodationNeeded bool   `json:"accommodation_needed,omitempty"`
	SpecialRequests     string `json:"special_requests,omitempty"`
	Message             string `json:"message,omitempty"`
}

var (
	ErrMissingRespondent = errors.New("response requires a respondent name")
	ErrMissingHousehold  = errors.New("response requires a household reference")
	ErrInvalidAttendance = errors.New(`attendance must be "yes" or "no"`)
)

func (r *RsvpResponse) Validate() error {
	if r.HouseholdID == uuid.Nil {
		return ErrMissingHousehold
	}
	if r.RespondentName == "" {
		return ErrMissingRespondent
	}
	switch r.Attending {
	case AttendanceYes:
	case AttendanceNo:
		r.AttendingMembers = []string{}
	default:
		return ErrInvalidAttendance
	}
	return nil
}

// IsAttending reports a yes answer.
func (r *RsvpResponse) IsAttending() bool {
	return r.Attending == AttendanceYes
}

// Headcount is the number of people this response brings.
func (r *RsvpResponse) Headcount() int {
	if !r.IsAttending() {
		return 0
	}
	if len(r.AttendingMembers) == 0 {
		return 1
	}
	return len(r.AttendingMembers)
}
