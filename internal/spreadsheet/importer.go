// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

// Package spreadsheet reads and writes the .xlsx documents the admin
// surface exchanges: guest-list imports, the import template and the
// RSVP export.
package spreadsheet

import (
	"errors"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mbaskhairoun/MMEngagement/internal/model"
)

// Column order of the import contract:
// invitation name, member name, email, notes.
const (
	colInvitationName = 0
	colMemberName     = 1
	colEmail          = 2
	colNotes          = 3
)

var ErrNoSheet = errors.New("workbook has no sheets")

// ParseWorkbook reads the first sheet of an uploaded workbook and
// groups its rows into households. Rows sharing an invitation name
// accumulate into one household's member list; the first non-empty
// email and notes per invitation win; rows missing the invitation or
// member name are skipped. The header row is ignored.
func ParseWorkbook(r io.Reader) ([]*model.Household, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*model.Household)
	var order []string
	for i, row := range rows {
		if i == 0 {
			continue
		}
		invitationName := cell(row, colInvitationName)
		memberName := cell(row, colMemberName)
		if invitationName == "" || memberName == "" {
			continue
		}

		key := model.Fold(invitationName)
		household, ok := byName[key]
		if !ok {
			household = &model.Household{InvitationName: invitationName}
			byName[key] = household
			order = append(order, key)
		}
		household.Members = append(household.Members, memberName)
		if household.Email == "" {
			household.Email = cell(row, colEmail)
		}
		if household.Notes == "" {
			household.Notes = cell(row, colNotes)
		}
	}

	households := make([]*model.Household, 0, len(order))
	for _, key := range order {
		households = append(households, byName[key])
	}
	return households, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
