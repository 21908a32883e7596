package queue

import (
	"fmt"
	"strings"
)

// AssignmentMessage is the broker payload announcing that an agent received
// tasks from a completed distribution.
type AssignmentMessage struct {
	DistributionID string `json:"distributionId"`
	AgentID        string `json:"agentId"`
	TaskCount      int    `json:"taskCount"`
	CorrelationID  string `json:"correlationId,omitempty"`
}

func (m AssignmentMessage) Validate() error {
	if strings.TrimSpace(m.DistributionID) == "" {
		return fmt.Errorf("distributionId is required")
	}
	if strings.TrimSpace(m.AgentID) == "" {
		return fmt.Errorf("agentId is required")
	}
	if m.TaskCount < 1 {
		return fmt.Errorf("taskCount must be >= 1, got %d", m.TaskCount)
	}
	return nil
}
