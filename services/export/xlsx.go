package export

import (
	"bytes"
	"fmt"

	"github.com/gapindang/rapor-api/services"
	"github.com/xuri/excelize/v2"
)

// Sheet names for the two workbook variants
const (
	SheetRapor       = "Rapor"
	SheetRaporDetail = "Rapor Detail"
)

// Column character widths for the simple sheet, index-aligned with
// csvHeader
var xlsxColWidths = []float64{25, 15, 12, 15, 15, 40, 40, 14}

// Column character widths for the detail sheet, index-aligned with
// csvDetailHeader
var xlsxDetailColWidths = []float64{25, 15, 12, 15, 25, 25, 10, 10, 12, 40, 40}

// WriteXLSX builds a single-sheet workbook with a header row and one row
// per student
func WriteXLSX(views []services.ReportCardView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetRapor); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := make([][]interface{}, 0, len(views)+1)
	header := make([]interface{}, len(csvHeader))
	for i, h := range csvHeader {
		header[i] = h
	}
	rows = append(rows, header)

	for i := range views {
		v := &views[i]
		rows = append(rows, []interface{}{
			v.StudentName,
			v.NISN,
			v.ClassName,
			v.SchoolYear,
			v.Average,
			v.HomeroomComment,
			v.HomeroomCommendation,
			formatDate(v.IssuedAt),
		})
	}

	if err := fillSheet(f, SheetRapor, rows, xlsxColWidths); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

// WriteXLSXDetail builds the detailed workbook variant: one row per
// student+subject pair with UTS/UAS/final/comment columns
func WriteXLSXDetail(views []services.ReportCardView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetRaporDetail); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := make([][]interface{}, 0, len(views)+1)
	header := make([]interface{}, len(csvDetailHeader))
	for i, h := range csvDetailHeader {
		header[i] = h
	}
	rows = append(rows, header)

	for i := range views {
		v := &views[i]
		if len(v.Grades) == 0 {
			rows = append(rows, []interface{}{
				v.StudentName, v.NISN, v.ClassName, v.SchoolYear,
				"", "", "", "", "", "", "",
			})
			continue
		}
		for _, g := range v.Grades {
			rows = append(rows, []interface{}{
				v.StudentName,
				v.NISN,
				v.ClassName,
				v.SchoolYear,
				g.SubjectName,
				g.TeacherName,
				cellScore(g.UTS),
				cellScore(g.UAS),
				cellScore(g.Final),
				g.Comment,
				g.Commendation,
			})
		}
	}

	if err := fillSheet(f, SheetRaporDetail, rows, xlsxDetailColWidths); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

// fillSheet writes the grid and applies the explicit column widths
func fillSheet(f *excelize.File, sheet string, rows [][]interface{}, widths []float64) error {
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("failed to compute cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to compute column name: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	return nil
}

// cellScore renders a nullable score for a spreadsheet cell: the numeric
// value when present, empty string when absent (never zero)
func cellScore(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
