package web

import (
	"github.com/gofiber/fiber/v3"

	"github.com/flowdeck/flowdeck/pkg/session"
)

// CreateEdge connects two nodes. Connecting an already connected pair
// answers 200 with the existing edge instead of 201, mirroring the canvas
// semantics of absorbing duplicate connections.
func (h *APIHandlers) CreateEdge(c fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return badRequest(c, "Session ID is required")
	}

	var req CreateEdgeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	conn, created, err := h.manager.ConnectNodes(c.Context(), sessionID, &session.ConnectRequest{
		SourceNodeID: req.SourceNodeID,
		TargetNodeID: req.TargetNodeID,
		SourceHandle: req.SourceHandle,
		TargetHandle: req.TargetHandle,
	})
	if err != nil {
		return handleSessionError(c, err)
	}

	if !created {
		return c.JSON(conn)
	}

	return c.Status(fiber.StatusCreated).JSON(conn)
}

func (h *APIHandlers) GetEdges(c fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return badRequest(c, "Session ID is required")
	}

	edges, err := h.manager.Edges(sessionID)
	if err != nil {
		return handleSessionError(c, err)
	}

	return c.JSON(fiber.Map{
		"edges": edges,
	})
}

// DeleteEdge removes the edge named by the source and target query
// parameters. Handles take no part in edge identity.
func (h *APIHandlers) DeleteEdge(c fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return badRequest(c, "Session ID is required")
	}

	source := c.Query("source")
	target := c.Query("target")

	if source == "" || target == "" {
		return badRequest(c, "source and target query parameters are required")
	}

	if err := h.manager.DisconnectNodes(c.Context(), sessionID, source, target); err != nil {
		return handleSessionError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
