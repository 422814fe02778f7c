// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package rsvp

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/trace"
)

// Summary is the aggregate view the admin dashboard shows.
type Summary struct {
	Households       int `json:"households"`
	Individuals      int `json:"individuals"`
	Responded        int `json:"responded"`
	Attending        int `json:"attending"`
	Declined         int `json:"declined"`
	Pending          int `json:"pending"`
	ExpectedGuests   int `json:"expected_guests"`
	ResponseRatePct  int `json:"response_rate_pct"`
	AttendanceRate   int `json:"attendance_rate_pct"`
	MealPreferences  map[string]int  `json:"meal_preferences"`
	HouseholdSizes   map[int]int     `json:"household_sizes"`
	SubmissionsByDay []DailyActivity `json:"submissions_by_day"`
}

// DailyActivity is one point of the cumulative submission timeline.
type DailyActivity struct {
	Day        string `json:"day"`
	Count      int    `json:"count"`
	Cumulative int    `json:"cumulative"`
}

// Summarize computes the aggregate counts from the current guest list
// and responses.
func (m *Manager) Summarize(ctx context.Context) (*Summary, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Manager.Summarize")
	defer span.End()

	households, err := m.households.ListHouseholds(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	responses, err := m.responses.ListResponses(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s := &Summary{
		Households:      len(households),
		Responded:       len(responses),
		MealPreferences: make(map[string]int),
		HouseholdSizes:  make(map[int]int),
	}
	for _, h := range households {
		s.Individuals += len(h.Members)
		s.HouseholdSizes[len(h.Members)]++
	}

	byDay := make(map[string]int)
	for _, r := range responses {
		if r.IsAttending() {
			s.Attending++
			s.ExpectedGuests += r.Headcount()
			if r.MealPreference != "" {
				s.MealPreferences[r.MealPreference]++
			}
		} else {
			s.Declined++
		}
		if r.CreatedAt != nil {
			byDay[r.CreatedAt.Format("2006-01-02")]++
		}
	}

	s.Pending = s.Households - s.Responded
	if s.Pending < 0 {
		s.Pending = 0
	}
	if s.Households > 0 {
		s.ResponseRatePct = 100 * s.Responded / s.Households
	}
	if s.Responded > 0 {
		s.AttendanceRate = 100 * s.Attending / s.Responded
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	cumulative := 0
	for _, day := range days {
		cumulative += byDay[day]
		s.SubmissionsByDay = append(s.SubmissionsByDay, DailyActivity{
			Day:        day,
			Count:      byDay[day],
			Cumulative: cumulative,
		})
	}
	return s, nil
}
