package web_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdeck/flowdeck/pkg/cache"
	"github.com/flowdeck/flowdeck/pkg/channels/gochannel"
	"github.com/flowdeck/flowdeck/pkg/eventbus"
	"github.com/flowdeck/flowdeck/pkg/events"
	"github.com/flowdeck/flowdeck/pkg/models"
	"github.com/flowdeck/flowdeck/pkg/producers/prompt"
	"github.com/flowdeck/flowdeck/pkg/registry"
	"github.com/flowdeck/flowdeck/pkg/session"
	"github.com/flowdeck/flowdeck/pkg/web"
)

// setupLifecycleApp wires the full stack the way cmd/flowdeck-api does,
// with the in-memory bus and the built-in kinds alongside the stub.
func setupLifecycleApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() {
		_ = bus.Close()
	})

	reg := registry.NewRegistry(logger)
	reg.RegisterDefaults(cache.NewNoopCache(), prompt.Config{Model: "gpt-4o-mini"})
	reg.RegisterProducer(&stubFactory{})

	manager := session.NewManager(logger, bus, reg)
	require.NoError(t, manager.Start(context.Background()))
	t.Cleanup(func() {
		manager.Stop(context.Background())
	})

	handlers := web.NewAPIHandlers(manager, reg, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()

	app.Get("/kinds", handlers.GetKinds)

	s := app.Group("/sessions")
	s.Post("/", handlers.CreateSession)
	s.Get("/", handlers.GetSessions)
	s.Get("/:id", handlers.GetSession)
	s.Delete("/:id", handlers.DeleteSession)
	s.Get("/:id/events", handlers.GetEvents)

	s.Post("/:id/nodes", handlers.CreateNode)
	s.Get("/:id/nodes", handlers.GetNodes)
	s.Get("/:id/nodes/:nodeId", handlers.GetNode)
	s.Patch("/:id/nodes/:nodeId", handlers.UpdateNode)
	s.Delete("/:id/nodes/:nodeId", handlers.DeleteNode)
	s.Post("/:id/nodes/:nodeId/run", handlers.RunNode)

	s.Get("/:id/nodes/:nodeId/inputs", handlers.GetInputs)
	s.Get("/:id/nodes/:nodeId/output", handlers.GetOutput)
	s.Put("/:id/nodes/:nodeId/output", handlers.SetOutput)
	s.Delete("/:id/nodes/:nodeId/output", handlers.DeleteOutput)

	s.Post("/:id/edges", handlers.CreateEdge)
	s.Get("/:id/edges", handlers.GetEdges)
	s.Delete("/:id/edges", handlers.DeleteEdge)

	return app
}

// waitForFeedLength blocks until the session feed has absorbed at least n
// events. Run completions flip node status before the tail events land, so
// assertions on feed contents settle through this first.
func waitForFeedLength(t *testing.T, app *fiber.App, sessionID string, n uint64) {
	t.Helper()

	require.Eventually(t, func() bool {
		resp, body := performRequest(t, app, http.MethodGet, "/sessions/"+sessionID+"/events", nil)
		if resp.StatusCode != http.StatusOK {
			return false
		}

		var page web.EventsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return false
		}

		return page.LastSeq >= n
	}, 5*time.Second, 10*time.Millisecond)
}

func TestCanvasLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	app := setupLifecycleApp(t)

	var sessionID string

	t.Run("Kind Catalogue", func(t *testing.T) {
		resp, body := performRequest(t, app, http.MethodGet, "/kinds", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var listing struct {
			Kinds []registry.KindInfo `json:"kinds"`
		}
		require.NoError(t, json.Unmarshal(body, &listing))

		require.Len(t, listing.Kinds, 3)
		assert.Equal(t, models.KindFetch, listing.Kinds[0].Kind)
		assert.Equal(t, models.KindPrompt, listing.Kinds[1].Kind)
		assert.Equal(t, stubKind, listing.Kinds[2].Kind)
	})

	t.Run("Create Session", func(t *testing.T) {
		resp, body := performRequest(t, app, http.MethodPost, "/sessions",
			web.CreateSessionRequest{Name: "Lifecycle Board"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var created web.SessionResponse
		require.NoError(t, json.Unmarshal(body, &created))
		require.NotEmpty(t, created.ID)

		sessionID = created.ID
	})

	t.Run("Add Nodes", func(t *testing.T) {
		for _, req := range []web.CreateNodeRequest{
			{ID: "source", Kind: "stub", Name: "Source", Params: map[string]any{"content": "alpha"}},
			{ID: "sink", Kind: "stub", Name: "Sink"},
			{ID: "scratchpad", Kind: "note", Name: "Scratchpad"},
		} {
			resp, _ := performRequest(t, app, http.MethodPost, "/sessions/"+sessionID+"/nodes", req)
			require.Equal(t, http.StatusCreated, resp.StatusCode, "creating node %s", req.ID)
		}

		resp, body := performRequest(t, app, http.MethodGet, "/sessions/"+sessionID, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var detail web.SessionDetailResponse
		require.NoError(t, json.Unmarshal(body, &detail))
		assert.Equal(t, 3, detail.NodeCount)
	})

	t.Run("Connect Source To Sink", func(t *testing.T) {
		resp, _ := performRequest(t, app, http.MethodPost, "/sessions/"+sessionID+"/edges",
			web.CreateEdgeRequest{SourceNodeID: "source", TargetNodeID: "sink"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("Run Source Node", func(t *testing.T) {
		resp, _ := performRequest(t, app, http.MethodPost, "/sessions/"+sessionID+"/nodes/source/run", nil)
		require.Equal(t, http.StatusAccepted, resp.StatusCode)

		waitForNodeStatus(t, app, sessionID, "source", models.RunStatusSucceeded)

		resp, body := performRequest(t, app, http.MethodGet, "/sessions/"+sessionID+"/nodes/source/output", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var record models.OutputRecord
		require.NoError(t, json.Unmarshal(body, &record))
		assert.Equal(t, "alpha", record.Content)

		waitForFeedLength(t, app, sessionID, 9)
	})

	t.Run("Sink Sees The Output As Input", func(t *testing.T) {
		resp, body := performRequest(t, app, http.MethodGet, "/sessions/"+sessionID+"/nodes/sink/inputs", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var listing struct {
			Inputs []models.OutputRecord `json:"inputs"`
		}
		require.NoError(t, json.Unmarshal(body, &listing))
		require.Len(t, listing.Inputs, 1)
		assert.Equal(t, "alpha", listing.Inputs[0].Content)

		resp, body = performRequest(t, app, http.MethodGet,
			"/sessions/"+sessionID+"/nodes/sink/inputs?format=context", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var assembled struct {
			Context string `json:"context"`
		}
		require.NoError(t, json.Unmarshal(body, &assembled))
		assert.Equal(t, "alpha", assembled.Context)
	})

	t.Run("Run Sink Node", func(t *testing.T) {
		resp, _ := performRequest(t, app, http.MethodPost, "/sessions/"+sessionID+"/nodes/sink/run", nil)
		require.Equal(t, http.StatusAccepted, resp.StatusCode)

		waitForNodeStatus(t, app, sessionID, "sink", models.RunStatusSucceeded)

		resp, body := performRequest(t, app, http.MethodGet, "/sessions/"+sessionID+"/nodes/sink/output", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var record models.OutputRecord
		require.NoError(t, json.Unmarshal(body, &record))
		assert.Equal(t, "stub output|alpha", record.Content)

		waitForFeedLength(t, app, sessionID, 12)
	})

	t.Run("Feed Records The Whole Story", func(t *testing.T) {
		resp, body := performRequest(t, app, http.MethodGet, "/sessions/"+sessionID+"/events", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var page web.EventsResponse
		require.NoError(t, json.Unmarshal(body, &page))

		types := make([]events.EventType, 0, len(page.Events))
		for _, entry := range page.Events {
			types = append(types, entry.Type)
		}

		assert.Equal(t, []events.EventType{
			events.NodeCreatedEvent,
			events.NodeCreatedEvent,
			events.NodeCreatedEvent,
			events.EdgeCreatedEvent,
			events.InputsInvalidatedEvent,
			events.RunStartedEvent,
			events.OutputUpdatedEvent,
			events.InputsInvalidatedEvent,
			events.RunSucceededEvent,
			events.RunStartedEvent,
			events.OutputUpdatedEvent,
			events.RunSucceededEvent,
		}, types)
	})

	t.Run("Remove Source Node", func(t *testing.T) {
		resp, _ := performRequest(t, app, http.MethodDelete, "/sessions/"+sessionID+"/nodes/source", nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = performRequest(t, app, http.MethodGet, "/sessions/"+sessionID+"/nodes/source", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		// The sink's input set shrinks with the departed source.
		resp, body := performRequest(t, app, http.MethodGet, "/sessions/"+sessionID+"/nodes/sink/inputs", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var listing struct {
			Inputs []models.OutputRecord `json:"inputs"`
		}
		require.NoError(t, json.Unmarshal(body, &listing))
		assert.Empty(t, listing.Inputs)
	})

	t.Run("Delete Session", func(t *testing.T) {
		resp, _ := performRequest(t, app, http.MethodDelete, "/sessions/"+sessionID, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = performRequest(t, app, http.MethodGet, "/sessions/"+sessionID, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, _ = performRequest(t, app, http.MethodGet, "/sessions/"+sessionID+"/events", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
