// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package spreadsheet

import (
	"github.com/xuri/excelize/v2"
)

var templateHeader = []interface{}{"Invitation Name", "Member Name", "Email", "Notes"}

// Rows illustrating the grouping rules: one invitation name per
// household, one row per member, email and notes on the first row.
var templateExamples = [][]interface{}{
	{"Smith Family", "John Smith", "john@example.com", "Table near the window"},
	{"Smith Family", "Jane Smith", "", ""},
	{"Smith Family", "Jimmy Smith", "", ""},
	{"Alex Johnson", "Alex Johnson", "alex@example.com", ""},
}

// Template builds the empty import workbook handed out by the admin
// surface. Callers own closing the returned file.
func Template() (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	if err := f.SetSheetRow(sheet, "A1", &templateHeader); err != nil {
		return nil, err
	}
	for i, row := range templateExamples {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(sheet, "A", "B", 24); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "C", "C", 32); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "D", "D", 40); err != nil {
		return nil, err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", style); err != nil {
		return nil, err
	}
	return f, nil
}
