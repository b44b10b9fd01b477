package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"togglepace/worklog"
)

type CSVWriter struct{}

func (w *CSVWriter) Write(path string, entries []worklog.Entry) error {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, entryRow(entry))
	}
	return writeCSV(path, entryHeaders, rows)
}

func writeCSV(path string, headers []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close csv output %s: %w", path, err)
	}
	return nil
}
