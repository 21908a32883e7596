package service

import (
	"fmt"

	"github.com/candemiralp/leadflow/internal/domain"
)

// MaxAgentFanout bounds how many agents a single distribution may target.
const MaxAgentFanout = 10

// ValidationResult reports every violated precondition of a distribution
// request, not just the first.
type ValidationResult struct {
	IsValid bool
	Errors  []string
}

// ValidateParams checks the batch-level preconditions of a distribution pass.
func ValidateParams(records []domain.Record, targetAgentCount int) ValidationResult {
	var reasons []string

	if records == nil {
		reasons = append(reasons, "records are required")
	} else if len(records) == 0 {
		reasons = append(reasons, "at least one record is required")
	}

	if targetAgentCount < 1 {
		reasons = append(reasons, "target agent count must be a positive integer")
	} else if targetAgentCount > MaxAgentFanout {
		reasons = append(reasons, fmt.Sprintf("target agent count exceeds the maximum of %d", MaxAgentFanout))
	}

	return ValidationResult{
		IsValid: len(reasons) == 0,
		Errors:  reasons,
	}
}
