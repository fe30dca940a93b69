// Package report exports overstay evaluations as spreadsheets.
package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/evcraddock/gatekeeper/internal/duration"
	"github.com/evcraddock/gatekeeper/internal/overstay"
)

const (
	visitorsSheet = "Visitors"
	summarySheet  = "Summary"
)

// Header is the column layout of the visitors sheet.
var Header = []string{
	"Visitor",
	"Type",
	"Flat",
	"Checked In",
	"Elapsed (min)",
	"Elapsed",
	"Limit (min)",
	"Over By",
	"Severity",
}

var columnWidths = []float64{24, 12, 10, 20, 14, 12, 12, 12, 18}

// Generate builds a workbook with one row per evaluation plus a summary sheet.
func Generate(evals []overstay.Evaluation, generatedAt time.Time) ([]byte, error) {
	f, err := build(evals, generatedAt)
	if err != nil {
		return nil, err
	}
	defer closeFile(f)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

// SaveFile writes the workbook for evals to path.
func SaveFile(path string, evals []overstay.Evaluation, generatedAt time.Time) error {
	f, err := build(evals, generatedAt)
	if err != nil {
		return err
	}
	defer closeFile(f)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func build(evals []overstay.Evaluation, generatedAt time.Time) (_ *excelize.File, err error) {
	f := excelize.NewFile()
	defer func() {
		if err != nil {
			closeFile(f)
		}
	}()

	if err := f.SetSheetName("Sheet1", visitorsSheet); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	for col, h := range Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("converting coordinates: %w", err)
		}
		if err := f.SetCellValue(visitorsSheet, cell, h); err != nil {
			return nil, fmt.Errorf("setting header %s: %w", cell, err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(visitorsSheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("setting header style: %w", err)
	}

	for i, w := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("converting column number: %w", err)
		}
		if err := f.SetColWidth(visitorsSheet, col, col, w); err != nil {
			return nil, fmt.Errorf("setting column width: %w", err)
		}
	}

	severityStyles := make(map[overstay.Severity]int)
	for _, s := range []overstay.Severity{overstay.SeverityAlert, overstay.SeverityWarning, overstay.SeverityCritical} {
		id, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
			Fill: excelize.Fill{Type: "pattern", Color: []string{s.Color()}, Pattern: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("creating severity style: %w", err)
		}
		severityStyles[s] = id
	}

	for i, e := range evals {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := rowValues(e)
		if err := f.SetSheetRow(visitorsSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", row, err)
		}
		if id, ok := severityStyles[e.Severity]; ok {
			sev, _ := excelize.CoordinatesToCellName(len(Header), row)
			if err := f.SetCellStyle(visitorsSheet, sev, sev, id); err != nil {
				return nil, fmt.Errorf("styling row %d: %w", row, err)
			}
		}
	}

	if err := writeSummary(f, overstay.Summarize(evals), generatedAt); err != nil {
		return nil, err
	}

	return f, nil
}

func closeFile(f *excelize.File) {
	if err := f.Close(); err != nil {
		slog.Warn("closing workbook", "error", err)
	}
}

func rowValues(e overstay.Evaluation) []interface{} {
	var name, vtype, flat, checkedIn string
	if v := e.Visitor; v != nil {
		name = v.DisplayName()
		vtype = v.Type().Label()
		flat = v.Flat
		if v.CheckInAt != nil {
			checkedIn = v.CheckInAt.Local().Format("2006-01-02 15:04")
		}
	}

	over := ""
	if e.Overstaying {
		over = duration.Format(e.Overstay)
	}

	return []interface{}{
		name,
		vtype,
		flat,
		checkedIn,
		e.Elapsed,
		duration.Format(e.Elapsed),
		e.Limit,
		over,
		e.Severity.Label(),
	}
}

func writeSummary(f *excelize.File, s overstay.Summary, generatedAt time.Time) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Generated", generatedAt.Format(time.RFC3339)},
		{"Inside", s.Inside},
		{"Overstaying", s.Overstaying},
		{overstay.SeverityAlert.Label(), s.BySeverity[overstay.SeverityAlert]},
		{overstay.SeverityWarning.Label(), s.BySeverity[overstay.SeverityWarning]},
		{overstay.SeverityCritical.Label(), s.BySeverity[overstay.SeverityCritical]},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &r); err != nil {
			return fmt.Errorf("writing summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 20); err != nil {
		return fmt.Errorf("setting summary width: %w", err)
	}
	return nil
}
