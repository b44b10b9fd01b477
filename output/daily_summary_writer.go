package output

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

var dailyHeaders = []string{"Date", "StartTime", "EndTime", "BookedHours", "WorkedHours", "BreakHours", "WorklogCount"}

func dailyRows(summaries []DailySummary) [][]string {
	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, []string{
			summary.Date,
			summary.StartDateTime.Format("15:04"),
			summary.EndDateTime.Format("15:04"),
			fmt.Sprintf("%.2f", summary.BookedHours),
			fmt.Sprintf("%.2f", summary.WorkedHours),
			fmt.Sprintf("%.2f", summary.BreakHours),
			strconv.Itoa(summary.WorklogCount),
		})
	}
	return rows
}

func writeDailySummariesCSV(path string, summaries []DailySummary) error {
	return writeCSV(path, dailyHeaders, dailyRows(summaries))
}

func writeDailySummariesExcel(path string, summaries []DailySummary) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := writeSheet(file, file.GetSheetName(0), dailyHeaders, dailyRows(summaries)); err != nil {
		return err
	}
	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}
	return nil
}
