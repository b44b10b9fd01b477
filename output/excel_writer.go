package output

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"togglepace/worklog"
)

const (
	worklogSheet  = "Worklogs"
	categorySheet = "Categories"
)

// ExcelWriter writes the worklogs plus a per-activity summary sheet.
type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, entries []worklog.Entry) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), worklogSheet); err != nil {
		return fmt.Errorf("rename excel sheet: %w", err)
	}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, entryRow(entry))
	}
	if err := writeSheet(file, worklogSheet, entryHeaders, rows); err != nil {
		return err
	}

	if _, err := file.NewSheet(categorySheet); err != nil {
		return fmt.Errorf("create excel sheet %s: %w", categorySheet, err)
	}
	summaries := BuildCategorySummaries(entries)
	summaryRows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		summaryRows = append(summaryRows, []string{
			summary.Activity,
			summary.ActivityTypeID,
			strconv.Itoa(summary.WorklogCount),
			worklog.FormatLength(summary.Seconds),
			fmt.Sprintf("%.2f", summary.Hours),
		})
	}
	if err := writeSheet(file, categorySheet, categoryHeaders, summaryRows); err != nil {
		return err
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}

	return nil
}

func writeSheet(file *excelize.File, sheet string, headers []string, rows [][]string) error {
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, values := range rows {
		row := i + 2
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}
	return nil
}
