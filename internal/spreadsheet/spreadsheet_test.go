// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package spreadsheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mbaskhairoun/MMEngagement/internal/model"
)

func workbookFromRows(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())
	return bytes.NewReader(buf.Bytes())
}

func TestParseWorkbook_GroupsByInvitation(t *testing.T) {
	r := workbookFromRows(t, [][]interface{}{
		{"Invitation Name", "Member Name", "Email", "Notes"},
		{"Smith Family", "John Smith", "smiths@example.com", "Table near the window"},
		{"Smith Family", "Jane Smith", "", ""},
		{"Smith Family", "Jimmy Smith", "ignored@example.com", "ignored note"},
		{"Alex Johnson", "Alex Johnson", "alex@example.com", ""},
	})

	households, err := ParseWorkbook(r)
	require.NoError(t, err)
	require.Len(t, households, 2)

	smiths := households[0]
	assert.Equal(t, "Smith Family", smiths.InvitationName)
	assert.Equal(t, []string{"John Smith", "Jane Smith", "Jimmy Smith"}, smiths.Members)
	assert.Equal(t, "smiths@example.com", smiths.Email, "first non-empty email wins")
	assert.Equal(t, "Table near the window", smiths.Notes, "first non-empty notes win")

	assert.Equal(t, "Alex Johnson", households[1].InvitationName)
	assert.Equal(t, "alex@example.com", households[1].Email)
}

func TestParseWorkbook_SkipsIncompleteRows(t *testing.T) {
	r := workbookFromRows(t, [][]interface{}{
		{"Invitation Name", "Member Name", "Email", "Notes"},
		{"", "Orphan Member", "", ""},
		{"Nameless Household", "", "", ""},
		{"  Smith Family  ", "  John Smith  ", "", ""},
	})

	households, err := ParseWorkbook(r)
	require.NoError(t, err)
	require.Len(t, households, 1)
	assert.Equal(t, "Smith Family", households[0].InvitationName)
	assert.Equal(t, []string{"John Smith"}, households[0].Members)
}

func TestParseWorkbook_InvitationNameCaseFolds(t *testing.T) {
	r := workbookFromRows(t, [][]interface{}{
		{"Invitation Name", "Member Name", "Email", "Notes"},
		{"Smith Family", "John Smith", "", ""},
		{"SMITH FAMILY", "Jane Smith", "", ""},
	})

	households, err := ParseWorkbook(r)
	require.NoError(t, err)
	require.Len(t, households, 1)
	assert.Equal(t, []string{"John Smith", "Jane Smith"}, households[0].Members)
}

func TestParseWorkbook_NotAWorkbook(t *testing.T) {
	_, err := ParseWorkbook(bytes.NewReader([]byte("definitely,a,csv\n")))
	require.Error(t, err)
}

func TestTemplate(t *testing.T) {
	f, err := Template()
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"Invitation Name", "Member Name", "Email", "Notes"}, rows[0])

	// The example rows must round-trip through the importer.
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	households, err := ParseWorkbook(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, households, 2)
	assert.Equal(t, "Smith Family", households[0].InvitationName)
	assert.Len(t, households[0].Members, 3)
}

func TestExportResponses(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	household := &model.Household{
		ID:             uuid.New(),
		InvitationName: "Smith Family",
		Members:        []string{"John Smith", "Jane Smith"},
		Email:          "smiths@example.com",
	}
	responses := []*model.RsvpResponse{
		{
			ID:               uuid.New(),
			HouseholdID:      household.ID,
			CreatedAt:        &now,
			RespondentName:   "John Smith",
			Attending:        model.AttendanceYes,
			AttendingMembers: []string{"John Smith", "Jane Smith"},
			MealPreference:   "Vegetarian",
			TransportNeeded:  true,
		},
		{
			ID:             uuid.New(),
			HouseholdID:    uuid.New(), // household no longer on the list
			RespondentName: "Ghost",
			Attending:      model.AttendanceNo,
		},
	}

	f, err := ExportResponses([]*model.Household{household}, responses)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Invitation Name", rows[0][0])

	smith := rows[1]
	assert.Equal(t, "Smith Family", smith[0])
	assert.Equal(t, "John Smith", smith[1])
	assert.Equal(t, "smiths@example.com", smith[2])
	assert.Equal(t, "Attending", smith[3])
	assert.Equal(t, "John Smith, Jane Smith", smith[4])
	assert.Equal(t, "2", smith[5])
	assert.Equal(t, "Vegetarian", smith[8])
	assert.Equal(t, "Yes", smith[13])

	ghost := rows[2]
	assert.Equal(t, "", ghost[0], "unknown household leaves the join columns blank")
	assert.Equal(t, "Declined", ghost[3])
}
