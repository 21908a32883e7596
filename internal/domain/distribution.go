package domain

import (
	"fmt"
	"strings"
	"time"
)

// DistributionStatus represents the processing state of a distribution.
type DistributionStatus string

const (
	DistributionStatusProcessing DistributionStatus = "PROCESSING"
	DistributionStatusCompleted  DistributionStatus = "COMPLETED"
	DistributionStatusFailed     DistributionStatus = "FAILED"
)

func (s DistributionStatus) String() string { return string(s) }

func (s DistributionStatus) IsValid() bool {
	switch s {
	case DistributionStatusProcessing, DistributionStatusCompleted, DistributionStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s DistributionStatus) IsTerminal() bool {
	return s == DistributionStatusCompleted || s == DistributionStatusFailed
}

func ParseDistributionStatusFromString(s string) (DistributionStatus, error) {
	st := DistributionStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid distribution status %q", ErrValidation, s)
	}
	return st, nil
}

// Summary captures the allocation shape of a completed distribution.
type Summary struct {
	AgentCount     int
	ItemsPerAgent  int
	RemainderItems int
}

// Validate checks that the summary accounts for every item exactly once.
func (s Summary) Validate(totalItems int) error {
	if s.AgentCount < 1 {
		return fmt.Errorf("%w: summary agent count must be >= 1", ErrValidation)
	}
	if s.ItemsPerAgent < 0 || s.RemainderItems < 0 {
		return fmt.Errorf("%w: summary counts must be non-negative", ErrValidation)
	}
	if s.AgentCount*s.ItemsPerAgent+s.RemainderItems != totalItems {
		return fmt.Errorf("%w: summary accounts for %d items, distribution has %d",
			ErrValidation, s.AgentCount*s.ItemsPerAgent+s.RemainderItems, totalItems)
	}
	return nil
}

// Distribution is one bulk upload's unit of work, tracked from processing
// to completion or failure.
type Distribution struct {
	ID              string
	Name            string
	FileName        string
	TotalItems      int
	CreatedBy       string
	Status          DistributionStatus
	ProcessingError *string
	AgentCount      *int
	ItemsPerAgent   *int
	RemainderItems  *int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (d *Distribution) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: distribution name is required", ErrValidation)
	}
	if d.TotalItems < 1 {
		return fmt.Errorf("%w: distribution must cover at least one item", ErrValidation)
	}
	if !d.Status.IsValid() {
		return fmt.Errorf("%w: invalid distribution status %q", ErrValidation, d.Status)
	}
	return nil
}

// Complete transitions a processing distribution to its completed terminal
// state, carrying the allocation summary. The transition is allowed once.
func (d *Distribution) Complete(sum Summary) error {
	if d.Status != DistributionStatusProcessing {
		return fmt.Errorf("%w: distribution %s is %s, only PROCESSING distributions can complete",
			ErrConflict, d.ID, d.Status)
	}
	if err := sum.Validate(d.TotalItems); err != nil {
		return err
	}

	agentCount := sum.AgentCount
	itemsPerAgent := sum.ItemsPerAgent
	remainder := sum.RemainderItems

	d.Status = DistributionStatusCompleted
	d.AgentCount = &agentCount
	d.ItemsPerAgent = &itemsPerAgent
	d.RemainderItems = &remainder
	d.ProcessingError = nil
	return nil
}

// Fail transitions a processing distribution to its failed terminal state,
// recording the fault text.
func (d *Distribution) Fail(reason string) error {
	if d.Status != DistributionStatusProcessing {
		return fmt.Errorf("%w: distribution %s is %s, only PROCESSING distributions can fail",
			ErrConflict, d.ID, d.Status)
	}

	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		trimmed = "unknown error"
	}

	d.Status = DistributionStatusFailed
	d.ProcessingError = &trimmed
	return nil
}

// SummaryValues returns the persisted summary of a completed distribution.
// The second return is false unless all three fields are present.
func (d *Distribution) SummaryValues() (Summary, bool) {
	if d.AgentCount == nil || d.ItemsPerAgent == nil || d.RemainderItems == nil {
		return Summary{}, false
	}
	return Summary{
		AgentCount:     *d.AgentCount,
		ItemsPerAgent:  *d.ItemsPerAgent,
		RemainderItems: *d.RemainderItems,
	}, true
}
