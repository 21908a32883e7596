package domain

import (
	"fmt"
	"strings"
	"time"
)

// Agent is an active participant eligible to receive tasks. Enrollment time
// is the sole ordering key used for allocation fairness.
type Agent struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	Active     bool
	EnrolledAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (a *Agent) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: agent name is required", ErrValidation)
	}
	if strings.TrimSpace(a.Email) == "" {
		return fmt.Errorf("%w: agent email is required", ErrValidation)
	}
	if !strings.Contains(a.Email, "@") {
		return fmt.Errorf("%w: invalid agent email %q", ErrValidation, a.Email)
	}
	if strings.TrimSpace(a.Phone) == "" {
		return fmt.Errorf("%w: agent phone is required", ErrValidation)
	}
	return nil
}
