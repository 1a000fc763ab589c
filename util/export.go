package util

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"match-occupancy/models/occupancy"
)

const (
	statsSummarySheet = "Summary"
	statsRowsSheet    = "Rows"
)

// StatsMeta describes the request a set of result rows answers.
type StatsMeta struct {
	Date        string `json:"date"`
	Metric      string `json:"metric"`
	KickoffHour int    `json:"kickoff_hour"`
	Normalized  bool   `json:"normalized"`
}

// BuildStatsXLSX writes result rows to a workbook with a summary sheet and a
// rows sheet laid out as country, gym, week, value.
func BuildStatsXLSX(meta StatsMeta, rows []occupancy.LongResultRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", statsSummarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(statsRowsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(statsSummarySheet, "A1", "Match Occupancy Stats")
	_ = f.SetCellValue(statsSummarySheet, "A3", "Date")
	_ = f.SetCellValue(statsSummarySheet, "B3", meta.Date)
	_ = f.SetCellValue(statsSummarySheet, "A4", "Metric")
	_ = f.SetCellValue(statsSummarySheet, "B4", meta.Metric)
	_ = f.SetCellValue(statsSummarySheet, "A5", "Kick-off hour")
	_ = f.SetCellValue(statsSummarySheet, "B5", meta.KickoffHour)
	_ = f.SetCellValue(statsSummarySheet, "A6", "Normalized")
	_ = f.SetCellValue(statsSummarySheet, "B6", meta.Normalized)
	_ = f.SetCellValue(statsSummarySheet, "A7", "Rows")
	_ = f.SetCellValue(statsSummarySheet, "B7", len(rows))

	_ = f.SetCellValue(statsRowsSheet, "A1", "country")
	_ = f.SetCellValue(statsRowsSheet, "B1", "gym")
	_ = f.SetCellValue(statsRowsSheet, "C1", "week")
	_ = f.SetCellValue(statsRowsSheet, "D1", "value")
	for i, r := range rows {
		row := i + 2
		_ = f.SetCellValue(statsRowsSheet, fmt.Sprintf("A%d", row), r.Country)
		_ = f.SetCellValue(statsRowsSheet, fmt.Sprintf("B%d", row), r.Facility)
		_ = f.SetCellValue(statsRowsSheet, fmt.Sprintf("C%d", row), string(r.Week))
		_ = f.SetCellValue(statsRowsSheet, fmt.Sprintf("D%d", row), r.Value)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write stats workbook: %w", err)
	}
	return buf.Bytes(), nil
}
