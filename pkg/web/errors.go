package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/flowdeck/flowdeck/pkg/session"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func conflict(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleSessionError provides typed error handling for session layer errors.
func handleSessionError(c fiber.Ctx, err error) error {
	switch {
	case session.IsSessionNotFound(err):
		return notFound(c, "session_not_found", "session not found")

	case session.IsNodeNotFound(err):
		return notFound(c, "node_not_found", "node not found")

	case session.IsOutputNotFound(err):
		return notFound(c, "output_not_found", "node has no output")

	case session.IsEdgeNotFound(err):
		return notFound(c, "edge_not_found", "edge not found")

	case session.IsNodeExists(err):
		return conflict(c, "node_exists", err.Error())

	case session.IsRunInProgress(err):
		return conflict(c, "run_in_progress", "a run is already in progress for this node")

	case session.IsInvalidRequest(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	default:
		return internalError(c, err)
	}
}
