package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/candemiralp/leadflow/internal/domain"
	"github.com/candemiralp/leadflow/internal/notifier"
	"github.com/candemiralp/leadflow/internal/observability"
	"github.com/candemiralp/leadflow/internal/queue"
	"github.com/candemiralp/leadflow/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DistributionService orchestrates a distribution pass: validate the request,
// snapshot the eligible agents, compute the fair split, persist the resulting
// tasks, and drive the distribution's status machine.
type DistributionService struct {
	distributions repository.DistributionRepository
	tasks         repository.TaskRepository
	agents        repository.AgentRepository
	publisher     queue.Publisher
	notifier      notifier.Notifier
	logger        *zap.Logger
	metrics       *observability.Metrics
	now           func() time.Time
}

// AgentAllocation is one agent's share of a distribution pass.
type AgentAllocation struct {
	AgentID   string
	AgentName string
	TaskCount int
}

// PreviewResult is the read-only outcome of a dry-run allocation.
type PreviewResult struct {
	TotalItems     int
	TotalAgents    int
	ItemsPerAgent  int
	RemainderItems int
	Agents         []AgentAllocation
}

// DistributeResult reports a persisted allocation pass.
type DistributeResult struct {
	TasksCreated          int
	TotalItemsDistributed int
	Summary               domain.Summary
	Assignments           []AgentAllocation
}

// CreateDistributionResult reports the combined distribute-and-transition
// entry point.
type CreateDistributionResult struct {
	Success        bool
	DistributionID string
	TasksCreated   int
}

// AgentTaskSummary is the per-agent task breakdown of one distribution.
type AgentTaskSummary struct {
	AgentID    string
	AgentName  string
	Total      int
	Assigned   int
	InProgress int
	Completed  int
}

// DistributionSummary is the after-the-fact report for one distribution.
type DistributionSummary struct {
	Distribution *domain.Distribution
	Agents       []AgentTaskSummary
}

func NewDistributionService(
	distributions repository.DistributionRepository,
	tasks repository.TaskRepository,
	agents repository.AgentRepository,
	publisher queue.Publisher,
	outcomes notifier.Notifier,
	logger *zap.Logger,
) (*DistributionService, error) {
	if distributions == nil {
		return nil, fmt.Errorf("distribution repository is required")
	}
	if tasks == nil {
		return nil, fmt.Errorf("task repository is required")
	}
	if agents == nil {
		return nil, fmt.Errorf("agent repository is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if outcomes == nil {
		outcomes = notifier.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DistributionService{
		distributions: distributions,
		tasks:         tasks,
		agents:        agents,
		publisher:     publisher,
		notifier:      outcomes,
		logger:        logger,
		now:           time.Now,
	}, nil
}

func (s *DistributionService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// selectAgents snapshots the eligible agents for one allocation pass. The
// effective fan-out is min(target, active count); fewer active agents than
// requested silently narrows the pass, zero active agents is a hard stop.
func (s *DistributionService) selectAgents(ctx context.Context, target int) ([]domain.Agent, error) {
	active, err := s.agents.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active agents: %w", err)
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("%w: no active agents available for distribution", domain.ErrNoEligibleAgents)
	}

	effective := min(target, len(active))
	return active[:effective], nil
}

// Preview runs a full allocation pass without persisting anything. Calling it
// twice with identical inputs yields identical output.
func (s *DistributionService) Preview(ctx context.Context, records []domain.Record, targetAgentCount int) (*PreviewResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if result := ValidateParams(records, targetAgentCount); !result.IsValid {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(result.Errors, "; "))
	}

	agents, err := s.selectAgents(ctx, targetAgentCount)
	if err != nil {
		return nil, err
	}

	alloc, err := ComputeAllocation(len(records), len(agents))
	if err != nil {
		return nil, err
	}

	breakdown := make([]AgentAllocation, 0, len(agents))
	for i, agent := range agents {
		breakdown = append(breakdown, AgentAllocation{
			AgentID:   agent.ID,
			AgentName: agent.Name,
			TaskCount: alloc.Counts[i],
		})
	}

	return &PreviewResult{
		TotalItems:     len(records),
		TotalAgents:    len(agents),
		ItemsPerAgent:  alloc.ItemsPerAgent,
		RemainderItems: alloc.RemainderItems,
		Agents:         breakdown,
	}, nil
}

// Distribute persists one task per record, handing records to agents in
// input order: the first agent receives the first count[0] records, the
// second the next count[1], and so on. Agents allocated zero items get no
// tasks. Per-agent writes run concurrently; there is no rollback of
// already-persisted tasks when a later write fails, the caller reflects that
// as a failed distribution.
func (s *DistributionService) Distribute(ctx context.Context, records []domain.Record, distributionID string, targetAgentCount int) (*DistributeResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	distributionID = strings.TrimSpace(distributionID)
	if distributionID == "" {
		return nil, fmt.Errorf("%w: distribution id is required", domain.ErrValidation)
	}

	if result := ValidateParams(records, targetAgentCount); !result.IsValid {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(result.Errors, "; "))
	}
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
	}

	agents, err := s.selectAgents(ctx, targetAgentCount)
	if err != nil {
		return nil, err
	}

	alloc, err := ComputeAllocation(len(records), len(agents))
	if err != nil {
		return nil, err
	}

	assignedAt := s.now().UTC()
	assignments := make([]AgentAllocation, 0, len(agents))
	batches := make([][]*domain.Task, 0, len(agents))

	offset := 0
	for i, agent := range agents {
		count := alloc.Counts[i]
		if count == 0 {
			continue
		}

		batch := make([]*domain.Task, 0, count)
		for _, record := range records[offset : offset+count] {
			batch = append(batch, &domain.Task{
				ID:             uuid.NewString(),
				DistributionID: distributionID,
				AgentID:        agent.ID,
				SubjectName:    strings.TrimSpace(record.SubjectName),
				Contact:        strings.TrimSpace(record.Contact),
				Note:           strings.TrimSpace(record.Note),
				Status:         domain.TaskStatusAssigned,
				AssignedAt:     assignedAt,
			})
		}
		offset += count

		batches = append(batches, batch)
		assignments = append(assignments, AgentAllocation{
			AgentID:   agent.ID,
			AgentName: agent.Name,
			TaskCount: count,
		})
	}

	g, groupCtx := errgroup.WithContext(ctx)
	for _, batch := range batches {
		batch := batch
		g.Go(func() error {
			return s.tasks.CreateBatch(groupCtx, batch)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to persist tasks: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AddTasksCreated(offset)
		s.metrics.ObserveAgentFanout(len(agents))
	}

	return &DistributeResult{
		TasksCreated:          offset,
		TotalItemsDistributed: offset,
		Summary: domain.Summary{
			AgentCount:     len(agents),
			ItemsPerAgent:  alloc.ItemsPerAgent,
			RemainderItems: alloc.RemainderItems,
		},
		Assignments: assignments,
	}, nil
}

// CreateDistribution runs Distribute against an already-persisted PROCESSING
// distribution and drives the single terminal transition: COMPLETED with the
// allocation summary on success, FAILED with the fault text on any fault.
func (s *DistributionService) CreateDistribution(ctx context.Context, records []domain.Record, dist *domain.Distribution, targetAgentCount int) (*CreateDistributionResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if dist == nil {
		return nil, fmt.Errorf("%w: distribution is required", domain.ErrValidation)
	}

	logger := observability.WithContextLogger(s.logger, ctx)

	result, err := s.Distribute(ctx, records, dist.ID, targetAgentCount)
	if err != nil {
		s.markFailed(ctx, dist, err)
		if s.metrics != nil {
			s.metrics.IncDistributionProcessed("failed")
		}
		s.notifyOutcome(ctx, dist, 0)
		return &CreateDistributionResult{DistributionID: dist.ID}, err
	}

	if err := dist.Complete(result.Summary); err != nil {
		return &CreateDistributionResult{DistributionID: dist.ID}, err
	}
	if err := s.distributions.Complete(ctx, dist.ID, result.Summary); err != nil {
		return &CreateDistributionResult{DistributionID: dist.ID}, fmt.Errorf("failed to complete distribution: %w", err)
	}

	logger.Info("distribution completed",
		zap.String("distributionId", dist.ID),
		zap.Int("tasksCreated", result.TasksCreated),
		zap.Int("agents", result.Summary.AgentCount),
	)

	s.publishAssignments(ctx, dist.ID, result.Assignments)
	s.notifyOutcome(ctx, dist, result.TasksCreated)
	if s.metrics != nil {
		s.metrics.IncDistributionProcessed("completed")
	}

	return &CreateDistributionResult{
		Success:        true,
		DistributionID: dist.ID,
		TasksCreated:   result.TasksCreated,
	}, nil
}

// Create persists a fresh PROCESSING distribution for the records and
// immediately runs the combined distribute-and-transition pass on it.
// Batch-level validation runs before anything is written, so a malformed
// request leaves no trace.
func (s *DistributionService) Create(ctx context.Context, dist *domain.Distribution, records []domain.Record, targetAgentCount int) (*CreateDistributionResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if dist == nil {
		return nil, fmt.Errorf("%w: distribution is required", domain.ErrValidation)
	}

	if result := ValidateParams(records, targetAgentCount); !result.IsValid {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(result.Errors, "; "))
	}

	dist.ID = strings.TrimSpace(dist.ID)
	if dist.ID == "" {
		dist.ID = uuid.NewString()
	}
	dist.Name = strings.TrimSpace(dist.Name)
	dist.FileName = strings.TrimSpace(dist.FileName)
	dist.CreatedBy = strings.TrimSpace(dist.CreatedBy)
	dist.Status = domain.DistributionStatusProcessing
	dist.TotalItems = len(records)
	dist.ProcessingError = nil
	dist.AgentCount = nil
	dist.ItemsPerAgent = nil
	dist.RemainderItems = nil

	if err := dist.Validate(); err != nil {
		return nil, err
	}

	if err := s.distributions.Create(ctx, dist); err != nil {
		return nil, fmt.Errorf("failed to create distribution: %w", err)
	}

	return s.CreateDistribution(ctx, records, dist, targetAgentCount)
}

// GetDistributionSummary reconstructs the per-agent report for a
// distribution from its persisted tasks.
func (s *DistributionService) GetDistributionSummary(ctx context.Context, distributionID string) (*DistributionSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	distributionID = strings.TrimSpace(distributionID)
	if distributionID == "" {
		return nil, fmt.Errorf("%w: distribution id is required", domain.ErrValidation)
	}

	dist, err := s.distributions.GetByID(ctx, distributionID)
	if err != nil {
		return nil, err
	}

	counts, err := s.tasks.CountByAgent(ctx, distributionID)
	if err != nil {
		return nil, err
	}

	byAgent := make(map[string]*AgentTaskSummary, len(counts))
	order := make([]string, 0, len(counts))
	for _, row := range counts {
		summary, ok := byAgent[row.AgentID]
		if !ok {
			summary = &AgentTaskSummary{AgentID: row.AgentID, AgentName: row.AgentName}
			byAgent[row.AgentID] = summary
			order = append(order, row.AgentID)
		}

		summary.Total += row.Count
		switch row.Status {
		case domain.TaskStatusAssigned:
			summary.Assigned += row.Count
		case domain.TaskStatusInProgress:
			summary.InProgress += row.Count
		case domain.TaskStatusCompleted:
			summary.Completed += row.Count
		}
	}

	agents := make([]AgentTaskSummary, 0, len(order))
	for _, agentID := range order {
		agents = append(agents, *byAgent[agentID])
	}

	return &DistributionSummary{
		Distribution: dist,
		Agents:       agents,
	}, nil
}

// List pages persisted distributions, newest first.
func (s *DistributionService) List(ctx context.Context, params repository.ListParams) ([]domain.Distribution, int64, error) {
	return s.distributions.List(ctx, params)
}

func (s *DistributionService) markFailed(ctx context.Context, dist *domain.Distribution, cause error) {
	reason := cause.Error()
	if err := dist.Fail(reason); err != nil {
		s.logger.Error("distribution cannot transition to failed",
			zap.String("distributionId", dist.ID),
			zap.Error(err),
		)
		return
	}

	if err := s.distributions.Fail(ctx, dist.ID, reason); err != nil {
		s.logger.Error("failed to persist failed distribution status",
			zap.String("distributionId", dist.ID),
			zap.Error(err),
		)
	}
}

// publishAssignments announces per-agent task batches on the assignments
// queue. Delivery is best-effort: the distribution is already committed, a
// broker outage must not fail it.
func (s *DistributionService) publishAssignments(ctx context.Context, distributionID string, assignments []AgentAllocation) {
	correlationID, _ := observability.CorrelationIDFromContext(ctx)

	for _, assignment := range assignments {
		msg := queue.AssignmentMessage{
			DistributionID: distributionID,
			AgentID:        assignment.AgentID,
			TaskCount:      assignment.TaskCount,
			CorrelationID:  correlationID,
		}
		if err := s.publisher.Publish(ctx, queue.AssignmentQueueName, msg); err != nil {
			s.logger.Warn("failed to publish assignment message",
				zap.String("distributionId", distributionID),
				zap.String("agentId", assignment.AgentID),
				zap.Error(err),
			)
		}
	}
}

// notifyOutcome pushes the terminal outcome to the configured webhook,
// best-effort.
func (s *DistributionService) notifyOutcome(ctx context.Context, dist *domain.Distribution, tasksCreated int) {
	event := notifier.DistributionEvent{
		DistributionID: dist.ID,
		Name:           dist.Name,
		Status:         dist.Status.String(),
		TotalItems:     dist.TotalItems,
		TasksCreated:   tasksCreated,
	}
	if dist.ProcessingError != nil {
		event.Error = *dist.ProcessingError
	}

	if err := s.notifier.NotifyDistribution(ctx, event); err != nil {
		s.logger.Warn("failed to deliver distribution outcome webhook",
			zap.String("distributionId", dist.ID),
			zap.Error(err),
		)
	}
}
