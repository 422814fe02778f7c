// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package spreadsheet

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/mbaskhairoun/MMEngagement/internal/model"
)

var exportHeader = []interface{}{
	"Invitation Name",
	"Respondent",
	"Email",
	"Attendance",
	"Attending Members",
	"Headcount",
	"Phone",
	"Relationship",
	"Meal Preference",
	"Dietary Restrictions",
	"Children",
	"Children Ages",
	"Song Request",
	"Transport Needed",
	"Accommodation Needed",
	"Special Requests",
	"Message",
	"Submitted At",
}

// ExportResponses lays every submitted response out as one row,
// joined with its household for the invitation name and email.
// Households without a matching record in responses do not appear.
func ExportResponses(households []*model.Household, responses []*model.RsvpResponse) (*excelize.File, error) {
	byID := make(map[uuid.UUID]*model.Household, len(households))
	for _, h := range households {
		byID[h.ID] = h
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return nil, err
	}

	rowNum := 2
	for _, resp := range responses {
		invitationName := ""
		email := ""
		if h, ok := byID[resp.HouseholdID]; ok {
			invitationName = h.InvitationName
			email = h.Email
		}

		attendance := "Declined"
		if resp.IsAttending() {
			attendance = "Attending"
		}
		submittedAt := ""
		if resp.UpdatedAt != nil {
			submittedAt = resp.UpdatedAt.Format(time.RFC3339)
		} else if resp.CreatedAt != nil {
			submittedAt = resp.CreatedAt.Format(time.RFC3339)
		}

		row := []interface{}{
			invitationName,
			resp.RespondentName,
			email,
			attendance,
			strings.Join(resp.AttendingMembers, ", "),
			resp.Headcount(),
			resp.Phone,
			resp.Relationship,
			resp.MealPreference,
			resp.DietaryRestrictions,
			resp.ChildrenCount,
			resp.ChildrenAges,
			resp.SongRequest,
			yesNo(resp.TransportNeeded),
			yesNo(resp.AccommodationNeeded),
			resp.SpecialRequests,
			resp.Message,
			submittedAt,
		}
		cell := "A" + strconv.Itoa(rowNum)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
		rowNum++
	}

	if err := f.SetColWidth(sheet, "A", "E", 24); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "F", "Q", 18); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "R", "R", 22); err != nil {
		return nil, err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "R1", style); err != nil {
		return nil, err
	}
	return f, nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
