package web

import (
	"github.com/gofiber/fiber/v3"
)

// GetInputs resolves what the node currently sees from its connected
// sources. With ?format=context the records are rendered through their
// kind formatters into one prompt-ready block instead.
func (h *APIHandlers) GetInputs(c fiber.Ctx) error {
	sessionID := c.Params("id")
	nodeID := c.Params("nodeId")

	if sessionID == "" || nodeID == "" {
		return badRequest(c, "Session ID and node ID are required")
	}

	if c.Query("format") == "context" {
		assembled, err := h.manager.AssembleContext(sessionID, nodeID)
		if err != nil {
			return handleSessionError(c, err)
		}

		return c.JSON(fiber.Map{
			"context": assembled,
		})
	}

	inputs, err := h.manager.ResolveInputs(sessionID, nodeID)
	if err != nil {
		return handleSessionError(c, err)
	}

	return c.JSON(fiber.Map{
		"inputs": inputs,
	})
}

func (h *APIHandlers) GetOutput(c fiber.Ctx) error {
	sessionID := c.Params("id")
	nodeID := c.Params("nodeId")

	if sessionID == "" || nodeID == "" {
		return badRequest(c, "Session ID and node ID are required")
	}

	record, err := h.manager.NodeOutput(sessionID, nodeID)
	if err != nil {
		return handleSessionError(c, err)
	}

	return c.JSON(record)
}

// SetOutput manually replaces the node's output, the same write path a
// producer run uses.
func (h *APIHandlers) SetOutput(c fiber.Ctx) error {
	sessionID := c.Params("id")
	nodeID := c.Params("nodeId")

	if sessionID == "" || nodeID == "" {
		return badRequest(c, "Session ID and node ID are required")
	}

	var req SetOutputRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	record, err := h.manager.SetNodeOutput(c.Context(), sessionID, nodeID, req.Content, req.Label)
	if err != nil {
		return handleSessionError(c, err)
	}

	return c.JSON(record)
}

// DeleteOutput drops the node's output. Deleting an absent output still
// answers 204; only an unknown node or session is an error.
func (h *APIHandlers) DeleteOutput(c fiber.Ctx) error {
	sessionID := c.Params("id")
	nodeID := c.Params("nodeId")

	if sessionID == "" || nodeID == "" {
		return badRequest(c, "Session ID and node ID are required")
	}

	if err := h.manager.RemoveNodeOutput(c.Context(), sessionID, nodeID); err != nil {
		return handleSessionError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
