package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/candemiralp/leadflow/internal/domain"
)

func TestParseCSV(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"subject_name,contact,note",
		"Ayse Yilmaz,+905551112233,call after 6pm",
		"Mehmet Demir,+905551112234,",
		",,",
		"Fatma Kaya,+905551112235,prefers email",
	}, "\n")

	records, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV() unexpected error = %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3 (blank row skipped)", len(records))
	}
	if records[0].SubjectName != "Ayse Yilmaz" || records[0].Contact != "+905551112233" || records[0].Note != "call after 6pm" {
		t.Fatalf("records[0] = %+v, want first data row", records[0])
	}
	if records[1].Note != "" {
		t.Fatalf("records[1].Note = %q, want empty default", records[1].Note)
	}
	if records[2].SubjectName != "Fatma Kaya" {
		t.Fatalf("records[2].SubjectName = %q, want Fatma Kaya", records[2].SubjectName)
	}
}

func TestParseCSVHeaderAliases(t *testing.T) {
	t.Parallel()

	input := "Name,Phone,Description\nAyse Yilmaz,+905551112233,warm lead\n"

	records, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV() unexpected error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Contact != "+905551112233" {
		t.Fatalf("Contact = %q, want phone column mapped", records[0].Contact)
	}
	if records[0].Note != "warm lead" {
		t.Fatalf("Note = %q, want description column mapped", records[0].Note)
	}
}

func TestParseCSVFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty file", input: ""},
		{name: "missing subject column", input: "contact,note\n+905551112233,hi\n"},
		{name: "header only", input: "subject_name,contact,note\n"},
		{name: "oversized subject", input: "subject_name\n" + strings.Repeat("a", domain.MaxSubjectNameLen+1) + "\n"},
		{name: "ragged row", input: "subject_name,contact\nAyse,+90555,extra,cells\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseCSV(strings.NewReader(tt.input))
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("ParseCSV() error = %v, want ErrValidation", err)
			}
		})
	}
}
