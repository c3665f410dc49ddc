package question

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
)

// Expected workbook columns, first sheet, header row first:
// Title | Description | Domain | Required | Tags
// Tags are comma-separated; Required accepts yes/no, true/false, 1/0.

// ParseWorkbook reads an uploaded .xlsx into bulk rows.
func ParseWorkbook(r io.Reader) ([]BulkQuestionRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.Validationf("could not read workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.Validationf("workbook has no sheets")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.Validationf("could not read sheet %q: %v", sheets[0], err)
	}
	if len(cells) < 2 {
		return nil, apperrors.Validationf("workbook has no data rows")
	}

	var rows []BulkQuestionRow
	for _, record := range cells[1:] {
		row := BulkQuestionRow{
			Title:       cell(record, 0),
			Description: cell(record, 1),
			Domain:      cell(record, 2),
			Required:    parseBool(cell(record, 3)),
			Tags:        parseTags(cell(record, 4)),
		}
		// Trailing empty rows are common in exported sheets.
		if row.Title == "" && row.Description == "" && row.Domain == "" {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func cell(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "true", "1", "y":
		return true
	default:
		return false
	}
}

func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
