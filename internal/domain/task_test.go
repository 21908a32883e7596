package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseTaskStatusFromString(t *testing.T) {
	t.Parallel()

	got, err := ParseTaskStatusFromString(" in_progress ")
	if err != nil {
		t.Fatalf("ParseTaskStatusFromString() unexpected error = %v", err)
	}
	if got != TaskStatusInProgress {
		t.Fatalf("ParseTaskStatusFromString() = %s, want %s", got, TaskStatusInProgress)
	}

	_, err = ParseTaskStatusFromString("archived")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("ParseTaskStatusFromString() error = %v, want ErrValidation", err)
	}
}

func TestRecordValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		record  Record
		wantErr bool
	}{
		{name: "valid", record: Record{SubjectName: "Ayse Yilmaz", Contact: "+905551112233", Note: "call after 6pm"}},
		{name: "empty note is fine", record: Record{SubjectName: "Ayse Yilmaz", Contact: "+905551112233"}},
		{name: "missing subject", record: Record{Contact: "+905551112233"}, wantErr: true},
		{name: "subject at limit", record: Record{SubjectName: strings.Repeat("a", MaxSubjectNameLen)}},
		{name: "subject over limit", record: Record{SubjectName: strings.Repeat("a", MaxSubjectNameLen+1)}, wantErr: true},
		{name: "note over limit", record: Record{SubjectName: "Ayse", Note: strings.Repeat("n", MaxNoteLen+1)}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.record.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("Validate() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestTaskLifecycle(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	task := &Task{
		ID:             "t-1",
		DistributionID: "d-1",
		AgentID:        "a-1",
		SubjectName:    "Ayse Yilmaz",
		Status:         TaskStatusAssigned,
		AssignedAt:     now,
	}

	// Completing before starting is rejected.
	if err := task.Complete(now); !errors.Is(err, ErrConflict) {
		t.Fatalf("Complete() on ASSIGNED error = %v, want ErrConflict", err)
	}

	if err := task.Start(now); err != nil {
		t.Fatalf("Start() unexpected error = %v", err)
	}
	if task.Status != TaskStatusInProgress {
		t.Fatalf("status = %s, want IN_PROGRESS", task.Status)
	}
	if task.StartedAt == nil || !task.StartedAt.Equal(now) {
		t.Fatalf("StartedAt = %v, want %v", task.StartedAt, now)
	}

	if err := task.Start(now); !errors.Is(err, ErrConflict) {
		t.Fatalf("second Start() error = %v, want ErrConflict", err)
	}

	completedAt := now.Add(time.Hour)
	if err := task.Complete(completedAt); err != nil {
		t.Fatalf("Complete() unexpected error = %v", err)
	}
	if task.Status != TaskStatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", task.Status)
	}
	if task.CompletedAt == nil || !task.CompletedAt.Equal(completedAt) {
		t.Fatalf("CompletedAt = %v, want %v", task.CompletedAt, completedAt)
	}

	if err := task.Complete(completedAt); !errors.Is(err, ErrConflict) {
		t.Fatalf("second Complete() error = %v, want ErrConflict", err)
	}
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()

	task := Task{
		DistributionID: "d-1",
		AgentID:        "a-1",
		SubjectName:    "Ayse Yilmaz",
		Status:         TaskStatusAssigned,
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error = %v", err)
	}

	orphan := Task{AgentID: "a-1", SubjectName: "Ayse", Status: TaskStatusAssigned}
	if err := orphan.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("Validate() error = %v, want ErrValidation for missing distribution id", err)
	}

	unassigned := Task{DistributionID: "d-1", SubjectName: "Ayse", Status: TaskStatusAssigned}
	if err := unassigned.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("Validate() error = %v, want ErrValidation for missing agent id", err)
	}
}

func TestAgentValidate(t *testing.T) {
	t.Parallel()

	agent := Agent{Name: "Mehmet Demir", Email: "mehmet@example.com", Phone: "+905551112233"}
	if err := agent.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error = %v", err)
	}

	badEmail := Agent{Name: "Mehmet", Email: "not-an-email", Phone: "+905551112233"}
	if err := badEmail.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("Validate() error = %v, want ErrValidation for bad email", err)
	}

	missingPhone := Agent{Name: "Mehmet", Email: "mehmet@example.com"}
	if err := missingPhone.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("Validate() error = %v, want ErrValidation for missing phone", err)
	}
}
