package web

import (
	"github.com/gofiber/fiber/v3"

	"github.com/flowdeck/flowdeck/pkg/models"
	"github.com/flowdeck/flowdeck/pkg/session"
)

func (h *APIHandlers) CreateNode(c fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return badRequest(c, "Session ID is required")
	}

	var req CreateNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := h.manager.AddNode(c.Context(), sessionID, &session.CreateNodeRequest{
		ID:        req.ID,
		Kind:      models.NodeKind(req.Kind),
		Name:      req.Name,
		Params:    req.Params,
		PositionX: req.PositionX,
		PositionY: req.PositionY,
	})
	if err != nil {
		return handleSessionError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(node)
}

func (h *APIHandlers) GetNodes(c fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return badRequest(c, "Session ID is required")
	}

	nodes, err := h.manager.Nodes(sessionID)
	if err != nil {
		return handleSessionError(c, err)
	}

	return c.JSON(fiber.Map{
		"nodes": nodes,
	})
}

func (h *APIHandlers) GetNode(c fiber.Ctx) error {
	sessionID := c.Params("id")
	nodeID := c.Params("nodeId")

	if sessionID == "" || nodeID == "" {
		return badRequest(c, "Session ID and node ID are required")
	}

	node, err := h.manager.Node(sessionID, nodeID)
	if err != nil {
		return handleSessionError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) UpdateNode(c fiber.Ctx) error {
	sessionID := c.Params("id")
	nodeID := c.Params("nodeId")

	if sessionID == "" || nodeID == "" {
		return badRequest(c, "Session ID and node ID are required")
	}

	var req UpdateNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := h.manager.UpdateNode(c.Context(), sessionID, nodeID, &session.UpdateNodeRequest{
		Name:      req.Name,
		Params:    req.Params,
		PositionX: req.PositionX,
		PositionY: req.PositionY,
	})
	if err != nil {
		return handleSessionError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) DeleteNode(c fiber.Ctx) error {
	sessionID := c.Params("id")
	nodeID := c.Params("nodeId")

	if sessionID == "" || nodeID == "" {
		return badRequest(c, "Session ID and node ID are required")
	}

	if err := h.manager.RemoveNode(c.Context(), sessionID, nodeID); err != nil {
		return handleSessionError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RunNode accepts an asynchronous producer run for the node. The run
// resolves through the event feed; the response only acknowledges the
// start.
func (h *APIHandlers) RunNode(c fiber.Ctx) error {
	sessionID := c.Params("id")
	nodeID := c.Params("nodeId")

	if sessionID == "" || nodeID == "" {
		return badRequest(c, "Session ID and node ID are required")
	}

	runID, err := h.manager.RunNode(c.Context(), sessionID, nodeID)
	if err != nil {
		return handleSessionError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(RunResponse{
		RunID:  runID,
		NodeID: nodeID,
		Status: string(models.RunStatusRunning),
	})
}
