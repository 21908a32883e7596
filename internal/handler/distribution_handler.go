package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/candemiralp/leadflow/internal/domain"
	"github.com/candemiralp/leadflow/internal/ingest"
	"github.com/candemiralp/leadflow/internal/repository"
	"github.com/candemiralp/leadflow/internal/service"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 100

	maxUploadBytes = 10 << 20
)

type DistributionService interface {
	Preview(ctx context.Context, records []domain.Record, targetAgentCount int) (*service.PreviewResult, error)
	Create(ctx context.Context, dist *domain.Distribution, records []domain.Record, targetAgentCount int) (*service.CreateDistributionResult, error)
	GetDistributionSummary(ctx context.Context, distributionID string) (*service.DistributionSummary, error)
	List(ctx context.Context, params repository.ListParams) ([]domain.Distribution, int64, error)
}

type DistributionHandler struct {
	service DistributionService
}

func NewDistributionHandler(service DistributionService) (*DistributionHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("distribution service is required")
	}
	return &DistributionHandler{service: service}, nil
}

// RegisterDistributionRoutes mounts the distribution endpoints. The upload
// route additionally runs uploadMiddleware when provided, which is where the
// per-client rate limit hooks in.
func RegisterDistributionRoutes(router fiber.Router, service DistributionService, uploadMiddleware ...fiber.Handler) error {
	h, err := NewDistributionHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/distributions/preview", h.PreviewDistribution)
	v1.Post("/distributions", h.CreateDistribution)

	uploadHandlers := append(append([]fiber.Handler{}, uploadMiddleware...), h.UploadDistribution)
	v1.Post("/distributions/upload", uploadHandlers...)

	v1.Get("/distributions", h.ListDistributions)
	v1.Get("/distributions/:id", h.GetDistributionSummary)

	return nil
}

type recordRequest struct {
	SubjectName string `json:"subjectName"`
	Contact     string `json:"contact"`
	Note        string `json:"note"`
}

type previewDistributionRequest struct {
	Records          []recordRequest `json:"records"`
	TargetAgentCount int             `json:"targetAgentCount"`
}

type createDistributionRequest struct {
	Name             string          `json:"name"`
	CreatedBy        string          `json:"createdBy"`
	Records          []recordRequest `json:"records"`
	TargetAgentCount int             `json:"targetAgentCount"`
}

type agentAllocationResponse struct {
	AgentID   string `json:"agentId"`
	AgentName string `json:"agentName"`
	TaskCount int    `json:"taskCount"`
}

type previewDistributionResponse struct {
	TotalItems     int                       `json:"totalItems"`
	TotalAgents    int                       `json:"totalAgents"`
	ItemsPerAgent  int                       `json:"itemsPerAgent"`
	RemainderItems int                       `json:"remainderItems"`
	Agents         []agentAllocationResponse `json:"agents"`
}

type createDistributionResponse struct {
	Success        bool   `json:"success"`
	DistributionID string `json:"distributionId"`
	TasksCreated   int    `json:"tasksCreated"`
	Error          string `json:"error,omitempty"`
}

type distributionResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	FileName        string    `json:"fileName,omitempty"`
	TotalItems      int       `json:"totalItems"`
	CreatedBy       string    `json:"createdBy,omitempty"`
	Status          string    `json:"status"`
	ProcessingError *string   `json:"processingError,omitempty"`
	AgentCount      *int      `json:"agentCount,omitempty"`
	ItemsPerAgent   *int      `json:"itemsPerAgent,omitempty"`
	RemainderItems  *int      `json:"remainderItems,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type agentTaskSummaryResponse struct {
	AgentID    string `json:"agentId"`
	AgentName  string `json:"agentName"`
	Total      int    `json:"total"`
	Assigned   int    `json:"assigned"`
	InProgress int    `json:"inProgress"`
	Completed  int    `json:"completed"`
}

type distributionSummaryResponse struct {
	Distribution distributionResponse       `json:"distribution"`
	Agents       []agentTaskSummaryResponse `json:"agents"`
}

type listDistributionsResponse struct {
	Data []distributionResponse `json:"data"`
	Meta listMeta               `json:"meta"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

func (h *DistributionHandler) PreviewDistribution(c *fiber.Ctx) error {
	var req previewDistributionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Preview(c.Context(), toDomainRecords(req.Records), req.TargetAgentCount)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toPreviewResponse(result))
}

func (h *DistributionHandler) CreateDistribution(c *fiber.Ctx) error {
	var req createDistributionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	dist := &domain.Distribution{
		Name:      strings.TrimSpace(req.Name),
		CreatedBy: strings.TrimSpace(req.CreatedBy),
	}

	return h.runCreate(c, dist, toDomainRecords(req.Records), req.TargetAgentCount)
}

// UploadDistribution ingests a CSV file and runs the same pass as the JSON
// endpoint. Form fields: file, name, createdBy, targetAgentCount.
func (h *DistributionHandler) UploadDistribution(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "csv file is required")
	}
	if fileHeader.Size > maxUploadBytes {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "csv file exceeds the upload limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()

	records, err := ingest.ParseCSV(file)
	if err != nil {
		return toHTTPError(err)
	}

	targetAgentCount, err := formInt(c, "targetAgentCount")
	if err != nil {
		return toHTTPError(err)
	}

	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		name = strings.TrimSpace(fileHeader.Filename)
	}

	dist := &domain.Distribution{
		Name:      name,
		FileName:  strings.TrimSpace(fileHeader.Filename),
		CreatedBy: strings.TrimSpace(c.FormValue("createdBy")),
	}

	return h.runCreate(c, dist, records, targetAgentCount)
}

// runCreate drives the distribute-and-transition pass and maps its two
// failure shapes: a rejection before anything was persisted surfaces as a
// plain HTTP error, while a fault after the distribution row exists returns
// its id alongside the failure so the caller can inspect the FAILED row.
func (h *DistributionHandler) runCreate(c *fiber.Ctx, dist *domain.Distribution, records []domain.Record, targetAgentCount int) error {
	result, err := h.service.Create(c.Context(), dist, records, targetAgentCount)
	if err != nil {
		if result == nil || result.DistributionID == "" {
			return toHTTPError(err)
		}

		return c.Status(httpStatusFor(err)).JSON(createDistributionResponse{
			Success:        false,
			DistributionID: result.DistributionID,
			Error:          err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(createDistributionResponse{
		Success:        true,
		DistributionID: result.DistributionID,
		TasksCreated:   result.TasksCreated,
	})
}

func (h *DistributionHandler) GetDistributionSummary(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	summary, err := h.service.GetDistributionSummary(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	agents := make([]agentTaskSummaryResponse, 0, len(summary.Agents))
	for _, agent := range summary.Agents {
		agents = append(agents, agentTaskSummaryResponse{
			AgentID:    agent.AgentID,
			AgentName:  agent.AgentName,
			Total:      agent.Total,
			Assigned:   agent.Assigned,
			InProgress: agent.InProgress,
			Completed:  agent.Completed,
		})
	}

	return c.Status(fiber.StatusOK).JSON(distributionSummaryResponse{
		Distribution: toDistributionResponse(summary.Distribution),
		Agents:       agents,
	})
}

func (h *DistributionHandler) ListDistributions(c *fiber.Ctx) error {
	params, err := parseListParams(c)
	if err != nil {
		return toHTTPError(err)
	}

	distributions, total, err := h.service.List(c.Context(), params)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]distributionResponse, 0, len(distributions))
	for i := range distributions {
		data = append(data, toDistributionResponse(&distributions[i]))
	}

	return c.Status(fiber.StatusOK).JSON(listDistributionsResponse{
		Data: data,
		Meta: listMeta{
			Page:     params.Page,
			PageSize: params.PageSize,
			Total:    total,
		},
	})
}

func parseListParams(c *fiber.Ctx) (repository.ListParams, error) {
	params := repository.ListParams{
		Page:     c.QueryInt("page", defaultPage),
		PageSize: c.QueryInt("pageSize", defaultPageSize),
	}

	if params.Page < 1 {
		return repository.ListParams{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return repository.ListParams{}, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, maxPageSize)
	}

	if rawStatus := strings.TrimSpace(c.Query("status")); rawStatus != "" {
		status, err := domain.ParseDistributionStatusFromString(rawStatus)
		if err != nil {
			return repository.ListParams{}, err
		}
		params.Status = &status
	}

	return params, nil
}

func formInt(c *fiber.Ctx, field string) (int, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}

	var value int
	if _, err := fmt.Sscanf(raw, "%d", &value); err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, field)
	}
	return value, nil
}

func toDomainRecords(records []recordRequest) []domain.Record {
	if records == nil {
		return nil
	}

	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		out = append(out, domain.Record{
			SubjectName: strings.TrimSpace(r.SubjectName),
			Contact:     strings.TrimSpace(r.Contact),
			Note:        strings.TrimSpace(r.Note),
		})
	}
	return out
}

func toPreviewResponse(result *service.PreviewResult) previewDistributionResponse {
	agents := make([]agentAllocationResponse, 0, len(result.Agents))
	for _, agent := range result.Agents {
		agents = append(agents, agentAllocationResponse{
			AgentID:   agent.AgentID,
			AgentName: agent.AgentName,
			TaskCount: agent.TaskCount,
		})
	}

	return previewDistributionResponse{
		TotalItems:     result.TotalItems,
		TotalAgents:    result.TotalAgents,
		ItemsPerAgent:  result.ItemsPerAgent,
		RemainderItems: result.RemainderItems,
		Agents:         agents,
	}
}

func toDistributionResponse(d *domain.Distribution) distributionResponse {
	if d == nil {
		return distributionResponse{}
	}

	return distributionResponse{
		ID:              d.ID,
		Name:            d.Name,
		FileName:        d.FileName,
		TotalItems:      d.TotalItems,
		CreatedBy:       d.CreatedBy,
		Status:          d.Status.String(),
		ProcessingError: d.ProcessingError,
		AgentCount:      d.AgentCount,
		ItemsPerAgent:   d.ItemsPerAgent,
		RemainderItems:  d.RemainderItems,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrNoEligibleAgents):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func toHTTPError(err error) error {
	if status := httpStatusFor(err); status != fiber.StatusInternalServerError {
		return fiber.NewError(status, err.Error())
	}
	return err
}
