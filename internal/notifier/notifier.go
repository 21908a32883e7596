package notifier

import "context"

// DistributionEvent describes a terminal distribution outcome pushed to an
// external consumer.
type DistributionEvent struct {
	DistributionID string `json:"distributionId"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	TotalItems     int    `json:"totalItems"`
	TasksCreated   int    `json:"tasksCreated"`
	Error          string `json:"error,omitempty"`
}

// Notifier is the outbound port for distribution outcome callbacks.
type Notifier interface {
	NotifyDistribution(ctx context.Context, event DistributionEvent) error
}

// Noop discards events. Used when no webhook endpoint is configured.
type Noop struct{}

func (Noop) NotifyDistribution(context.Context, DistributionEvent) error { return nil }
