package importer

import (
	"strings"
)

// Record is one data row keyed by normalized header.
type Record struct {
	RowNumber int
	Values    map[string]string
}

// Get returns the first non-missing column among keys, trimmed.
func (r Record) Get(keys ...string) string {
	for _, key := range keys {
		normalized := normalizeHeader(key)
		if value, ok := r.Values[normalized]; ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// normalizeHeader folds "Start date", "start_date" and "START-DATE" to the
// same key.
func normalizeHeader(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(strings.TrimPrefix(input, "\ufeff")))
	trimmed = strings.ReplaceAll(trimmed, "_", "")
	trimmed = strings.ReplaceAll(trimmed, "-", "")
	trimmed = strings.ReplaceAll(trimmed, " ", "")
	return trimmed
}

// recordsFromRows pairs each row with the header row. Missing trailing cells
// become empty values. firstRow is the 1-based row number of rows[0].
func recordsFromRows(headers []string, rows [][]string, firstRow int) []Record {
	normalizedHeaders := make([]string, len(headers))
	for i, header := range headers {
		normalizedHeaders[i] = normalizeHeader(header)
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}
		values := make(map[string]string, len(normalizedHeaders))
		for col, header := range normalizedHeaders {
			if col < len(row) {
				values[header] = row[col]
			} else {
				values[header] = ""
			}
		}
		records = append(records, Record{RowNumber: firstRow + i, Values: values})
	}
	return records
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
