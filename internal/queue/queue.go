package queue

import "context"

const (
	// AssignmentQueueName is the work queue agent applications consume
	// freshly-assigned task batches from.
	AssignmentQueueName = "assignments"

	// AssignmentDLQName receives assignment messages that could not be
	// delivered.
	AssignmentDLQName = "dlq.assignments"
)

// Publisher publishes assignment messages to a queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, msg AssignmentMessage) error
	Close() error
}
