package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/candemiralp/leadflow/internal/domain"
	"github.com/gofiber/fiber/v2"
)

type TaskService interface {
	Start(ctx context.Context, id string) (*domain.Task, error)
	Complete(ctx context.Context, id string) (*domain.Task, error)
}

type TaskHandler struct {
	service TaskService
}

func NewTaskHandler(service TaskService) (*TaskHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("task service is required")
	}
	return &TaskHandler{service: service}, nil
}

func RegisterTaskRoutes(router fiber.Router, service TaskService) error {
	h, err := NewTaskHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/tasks/:id/start", h.StartTask)
	v1.Post("/tasks/:id/complete", h.CompleteTask)

	return nil
}

func (h *TaskHandler) StartTask(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	task, err := h.service.Start(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toTaskResponse(task))
}

func (h *TaskHandler) CompleteTask(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	task, err := h.service.Complete(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toTaskResponse(task))
}
