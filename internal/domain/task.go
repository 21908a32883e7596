package domain

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusAssigned   TaskStatus = "ASSIGNED"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

func (s TaskStatus) String() string { return string(s) }

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusAssigned, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

func ParseTaskStatusFromString(s string) (TaskStatus, error) {
	st := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid task status %q", ErrValidation, s)
	}
	return st, nil
}

// Field limits for task payloads (in characters).
const (
	MaxSubjectNameLen = 100
	MaxNoteLen        = 1000
)

// Record is one parsed row of an uploaded contact list, before assignment.
type Record struct {
	SubjectName string
	Contact     string
	Note        string
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.SubjectName) == "" {
		return fmt.Errorf("%w: subject name is required", ErrValidation)
	}
	if nameLen := len([]rune(r.SubjectName)); nameLen > MaxSubjectNameLen {
		return fmt.Errorf("%w: subject name exceeds %d characters (got %d)", ErrValidation, MaxSubjectNameLen, nameLen)
	}
	if noteLen := len([]rune(r.Note)); noteLen > MaxNoteLen {
		return fmt.Errorf("%w: note exceeds %d characters (got %d)", ErrValidation, MaxNoteLen, noteLen)
	}
	return nil
}

// Task is one unit of distributed work: a single record assigned to one agent.
type Task struct {
	ID             string
	DistributionID string
	AgentID        string
	SubjectName    string
	Contact        string
	Note           string
	Status         TaskStatus
	AssignedAt     time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (t *Task) Validate() error {
	if strings.TrimSpace(t.DistributionID) == "" {
		return fmt.Errorf("%w: distribution id is required", ErrValidation)
	}
	if strings.TrimSpace(t.AgentID) == "" {
		return fmt.Errorf("%w: agent id is required", ErrValidation)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: invalid task status %q", ErrValidation, t.Status)
	}
	record := Record{SubjectName: t.SubjectName, Contact: t.Contact, Note: t.Note}
	return record.Validate()
}

// Start moves an assigned task into progress.
func (t *Task) Start(now time.Time) error {
	if t.Status != TaskStatusAssigned {
		return fmt.Errorf("%w: task %s is %s, only ASSIGNED tasks can start", ErrConflict, t.ID, t.Status)
	}
	startedAt := now.UTC()
	t.Status = TaskStatusInProgress
	t.StartedAt = &startedAt
	return nil
}

// Complete finishes an in-progress task.
func (t *Task) Complete(now time.Time) error {
	if t.Status != TaskStatusInProgress {
		return fmt.Errorf("%w: task %s is %s, only IN_PROGRESS tasks can complete", ErrConflict, t.ID, t.Status)
	}
	completedAt := now.UTC()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &completedAt
	return nil
}
