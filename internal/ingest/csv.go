package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/candemiralp/leadflow/internal/domain"
)

// Column aliases accepted in the upload header, lowered and trimmed.
var (
	subjectNameColumns = []string{"subject_name", "subjectname", "subject", "name"}
	contactColumns     = []string{"contact", "contact_number", "phone", "phone_number"}
	noteColumns        = []string{"note", "notes", "description"}
)

// ParseCSV reads an uploaded contact list into records. The first row must
// be a header naming at least a subject column; contact and note columns are
// optional and default to the empty string. Rows whose cells are all empty
// are skipped.
func ParseCSV(r io.Reader) ([]domain.Record, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: upload body is required", domain.ErrValidation)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: uploaded file is empty", domain.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header row: %v", domain.ErrValidation, err)
	}

	subjectIdx := columnIndex(header, subjectNameColumns)
	if subjectIdx < 0 {
		return nil, fmt.Errorf("%w: header must contain a subject name column (one of %s)",
			domain.ErrValidation, strings.Join(subjectNameColumns, ", "))
	}
	contactIdx := columnIndex(header, contactColumns)
	noteIdx := columnIndex(header, noteColumns)

	var records []domain.Record
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: malformed row at line %d: %v", domain.ErrValidation, line, err)
		}

		if isBlankRow(row) {
			continue
		}

		record := domain.Record{
			SubjectName: cell(row, subjectIdx),
			Contact:     cell(row, contactIdx),
			Note:        cell(row, noteIdx),
		}
		if err := record.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: uploaded file contains no records", domain.ErrValidation)
	}

	return records, nil
}

func columnIndex(header []string, aliases []string) int {
	for i, name := range header {
		normalized := strings.ToLower(strings.TrimSpace(name))
		for _, alias := range aliases {
			if normalized == alias {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
