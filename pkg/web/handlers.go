// Package web provides the HTTP handlers and REST endpoints for canvas
// session management.
package web

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/flowdeck/flowdeck/pkg/registry"
	"github.com/flowdeck/flowdeck/pkg/session"
)

type APIHandlers struct {
	manager   *session.Manager
	registry  *registry.Registry
	validator *validator.Validate
}

func NewAPIHandlers(
	manager *session.Manager,
	registry *registry.Registry,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		manager:   manager,
		registry:  registry,
		validator: validator,
	}
}

// GetKinds lists the registered node kinds with their param schemas, the
// capability catalogue the canvas UI builds its node palette from.
func (h *APIHandlers) GetKinds(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"kinds": h.registry.Kinds(),
	})
}

func (h *APIHandlers) CreateSession(c fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	sess, err := h.manager.CreateSession(c.Context(), req.Name)
	if err != nil {
		return handleSessionError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(TransformSessionResponse(sess))
}

func (h *APIHandlers) GetSessions(c fiber.Ctx) error {
	sessions := h.manager.ListSessions()

	out := make([]SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, TransformSessionResponse(sess))
	}

	return c.JSON(fiber.Map{
		"sessions":    out,
		"total_count": len(out),
	})
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	sess, err := h.manager.GetSession(id)
	if err != nil {
		return handleSessionError(c, err)
	}

	nodes, err := h.manager.Nodes(id)
	if err != nil {
		return handleSessionError(c, err)
	}

	edges, err := h.manager.Edges(id)
	if err != nil {
		return handleSessionError(c, err)
	}

	return c.JSON(SessionDetailResponse{
		SessionResponse: TransformSessionResponse(sess),
		Nodes:           nodes,
		Edges:           edges,
	})
}

func (h *APIHandlers) DeleteSession(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	if err := h.manager.RemoveSession(c.Context(), id); err != nil {
		return handleSessionError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
