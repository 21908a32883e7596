package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/candemiralp/leadflow/internal/domain"
	"github.com/gofiber/fiber/v2"
)

type AgentService interface {
	Enroll(ctx context.Context, agent *domain.Agent) (*domain.Agent, error)
	ListActive(ctx context.Context) ([]domain.Agent, error)
}

type TaskLister interface {
	ListByAgent(ctx context.Context, agentID string, page, pageSize int) ([]domain.Task, int64, error)
}

type AgentHandler struct {
	agents AgentService
	tasks  TaskLister
}

func NewAgentHandler(agents AgentService, tasks TaskLister) (*AgentHandler, error) {
	if agents == nil {
		return nil, fmt.Errorf("agent service is required")
	}
	if tasks == nil {
		return nil, fmt.Errorf("task service is required")
	}
	return &AgentHandler{agents: agents, tasks: tasks}, nil
}

func RegisterAgentRoutes(router fiber.Router, agents AgentService, tasks TaskLister) error {
	h, err := NewAgentHandler(agents, tasks)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/agents", h.EnrollAgent)
	v1.Get("/agents", h.ListAgents)
	v1.Get("/agents/:id/tasks", h.ListAgentTasks)

	return nil
}

type enrollAgentRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type agentResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Active     bool      `json:"active"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

type listAgentsResponse struct {
	Data []agentResponse `json:"data"`
}

type taskResponse struct {
	ID             string     `json:"id"`
	DistributionID string     `json:"distributionId"`
	AgentID        string     `json:"agentId"`
	SubjectName    string     `json:"subjectName"`
	Contact        string     `json:"contact,omitempty"`
	Note           string     `json:"note,omitempty"`
	Status         string     `json:"status"`
	AssignedAt     time.Time  `json:"assignedAt"`
	StartedAt      *time.Time `json:"startedAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

type listTasksResponse struct {
	Data []taskResponse `json:"data"`
	Meta listMeta       `json:"meta"`
}

func (h *AgentHandler) EnrollAgent(c *fiber.Ctx) error {
	var req enrollAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	agent, err := h.agents.Enroll(c.Context(), &domain.Agent{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toAgentResponse(agent))
}

func (h *AgentHandler) ListAgents(c *fiber.Ctx) error {
	agents, err := h.agents.ListActive(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]agentResponse, 0, len(agents))
	for i := range agents {
		data = append(data, toAgentResponse(&agents[i]))
	}

	return c.Status(fiber.StatusOK).JSON(listAgentsResponse{Data: data})
}

func (h *AgentHandler) ListAgentTasks(c *fiber.Ctx) error {
	agentID := strings.TrimSpace(c.Params("id"))

	page := c.QueryInt("page", defaultPage)
	pageSize := c.QueryInt("pageSize", defaultPageSize)
	if page < 1 {
		return toHTTPError(fmt.Errorf("%w: page must be >= 1", domain.ErrValidation))
	}
	if pageSize < 1 || pageSize > maxPageSize {
		return toHTTPError(fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, maxPageSize))
	}

	tasks, total, err := h.tasks.ListByAgent(c.Context(), agentID, page, pageSize)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		data = append(data, toTaskResponse(&tasks[i]))
	}

	return c.Status(fiber.StatusOK).JSON(listTasksResponse{
		Data: data,
		Meta: listMeta{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	})
}

func toAgentResponse(a *domain.Agent) agentResponse {
	if a == nil {
		return agentResponse{}
	}

	return agentResponse{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Phone:      a.Phone,
		Active:     a.Active,
		EnrolledAt: a.EnrolledAt,
	}
}

func toTaskResponse(t *domain.Task) taskResponse {
	if t == nil {
		return taskResponse{}
	}

	return taskResponse{
		ID:             t.ID,
		DistributionID: t.DistributionID,
		AgentID:        t.AgentID,
		SubjectName:    t.SubjectName,
		Contact:        t.Contact,
		Note:           t.Note,
		Status:         t.Status.String(),
		AssignedAt:     t.AssignedAt,
		StartedAt:      t.StartedAt,
		CompletedAt:    t.CompletedAt,
	}
}
