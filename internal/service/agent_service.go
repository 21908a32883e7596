package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/candemiralp/leadflow/internal/domain"
	"github.com/candemiralp/leadflow/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AgentService maintains the agent directory consumed by distribution passes.
type AgentService struct {
	agents repository.AgentRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewAgentService(agents repository.AgentRepository, logger *zap.Logger) (*AgentService, error) {
	if agents == nil {
		return nil, fmt.Errorf("agent repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AgentService{
		agents: agents,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Enroll registers a new active agent. Email and phone are unique across the
// directory; a duplicate surfaces as ErrConflict.
func (s *AgentService) Enroll(ctx context.Context, agent *domain.Agent) (*domain.Agent, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if agent == nil {
		return nil, fmt.Errorf("%w: agent is required", domain.ErrValidation)
	}

	agent.ID = strings.TrimSpace(agent.ID)
	if agent.ID == "" {
		agent.ID = uuid.NewString()
	}
	agent.Name = strings.TrimSpace(agent.Name)
	agent.Email = strings.ToLower(strings.TrimSpace(agent.Email))
	agent.Phone = strings.TrimSpace(agent.Phone)
	agent.Active = true
	if agent.EnrolledAt.IsZero() {
		agent.EnrolledAt = s.now().UTC()
	}

	if err := agent.Validate(); err != nil {
		return nil, err
	}

	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, err
	}

	return agent, nil
}

// ListActive returns the agents eligible for allocation, in enrollment order.
func (s *AgentService) ListActive(ctx context.Context) ([]domain.Agent, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.agents.ListActive(ctx)
}
