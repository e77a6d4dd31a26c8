package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdeck/flowdeck/pkg/channels/gochannel"
	"github.com/flowdeck/flowdeck/pkg/eventbus"
	"github.com/flowdeck/flowdeck/pkg/models"
	"github.com/flowdeck/flowdeck/pkg/protocol"
	"github.com/flowdeck/flowdeck/pkg/registry"
	"github.com/flowdeck/flowdeck/pkg/session"
	"github.com/flowdeck/flowdeck/pkg/web"
)

const stubKind = models.NodeKind("stub")

type stubProducer struct {
	id      string
	content string
	fail    bool
	delay   time.Duration
}

func (p *stubProducer) Kind() models.NodeKind {
	return stubKind
}

func (p *stubProducer) Produce(ctx context.Context, inputs []models.OutputRecord) (*protocol.ProducerResult, error) {
	if p.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.delay):
		}
	}

	if p.fail {
		return nil, errors.New("stub producer exploded")
	}

	content := p.content
	for _, input := range inputs {
		content += "|" + input.Content
	}

	return &protocol.ProducerResult{Content: content, Label: p.id}, nil
}

type stubFactory struct{}

func (f *stubFactory) Create(_ context.Context, id string, params map[string]any) (protocol.Producer, error) {
	producer := &stubProducer{id: id, content: "stub output"}

	if content, ok := params["content"].(string); ok {
		producer.content = content
	}

	if fail, ok := params["fail"].(bool); ok {
		producer.fail = fail
	}

	switch value := params["delay_ms"].(type) {
	case int:
		producer.delay = time.Duration(value) * time.Millisecond
	case float64:
		producer.delay = time.Duration(value) * time.Millisecond
	}

	return producer, nil
}

func (f *stubFactory) Kind() models.NodeKind {
	return stubKind
}

func (f *stubFactory) Name() string {
	return "Stub"
}

func (f *stubFactory) Description() string {
	return "Produces canned content"
}

func (f *stubFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content":      map[string]any{"type": "string"},
			"fail":         map[string]any{"type": "boolean"},
			"delay_ms":     map[string]any{"type": "number"},
			"refresh_cron": map[string]any{"type": "string"},
		},
	}
}

func setupTestApp(t *testing.T) (*fiber.App, *session.Manager) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() {
		_ = bus.Close()
	})

	reg := registry.NewRegistry(logger)
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

	return app, manager
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	switch value := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(value)
	default:
		data, err := json.Marshal(value)
		require.NoError(t, err)

		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second, FailOnTimeout: true})
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, data
}

func createTestSession(t *testing.T, app *fiber.App, name string) string {
	t.Helper()

	resp, body := performRequest(t, app, http.MethodPost, "/sessions", web.CreateSessionRequest{Name: name})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created web.SessionResponse
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.ID)

	return created.ID
}

func createTestNode(t *testing.T, app *fiber.App, sessionID string, req web.CreateNodeRequest) {
	t.Helper()

	resp, _ := performRequest(t, app, http.MethodPost, "/sessions/"+sessionID+"/nodes", req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func stringPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func TestAPIHandlers_CreateSession(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		requestBody    any
		expectedStatus int
	}{
		{
			name:           "successful creation",
			requestBody:    web.CreateSessionRequest{Name: "Research Board"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "validation error - missing name",
			requestBody:    web.CreateSessionRequest{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			requestBody:    "not-json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, _ := setupTestApp(t)

			resp, body := performRequest(t, app, http.MethodPost, "/sessions", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusCreated {
				var created web.SessionResponse
				require.NoError(t, json.Unmarshal(body, &created))
				assert.NotEmpty(t, created.ID)
				assert.Equal(t, "Research Board", created.Name)
				assert.Zero(t, created.NodeCount)
			}
		})
	}
}

func TestAPIHandlers_GetSessions(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp, body := performRequest(t, app, http.MethodGet, "/sessions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Sessions   []web.SessionResponse `json:"sessions"`
		TotalCount int                   `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(body, &listing))
	assert.Empty(t, listing.Sessions)

	first := createTestSession(t, app, "first")
	second := createTestSession(t, app, "second")

	resp, body = performRequest(t, app, http.MethodGet, "/sessions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &listing))

	require.Equal(t, 2, listing.TotalCount)
	assert.Equal(t, first, listing.Sessions[0].ID)
	assert.Equal(t, second, listing.Sessions[1].ID)
}

func TestAPIHandlers_GetSession(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)
	sessionID := createTestSession(t, app, "detail")

	createTestNode(t, app, sessionID, web.CreateNodeRequest{ID: "stub-1", Kind: "stub"})

	resp, body := performRequest(t, app, http.MethodGet, "/sessions/"+sessionID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var detail web.SessionDetailResponse
	require.NoError(t, json.Unmarshal(body, &detail))
	assert.Equal(t, sessionID, detail.ID)
	assert.Equal(t, 1, detail.NodeCount)
	require.Len(t, detail.Nodes, 1)
	assert.Equal(t, "stub-1", detail.Nodes[0].ID)
	assert.NotNil(t, detail.Edges)

	resp, _ = performRequest(t, app, http.MethodGet, "/sessions/ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_DeleteSession(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)
	sessionID := createTestSession(t, app, "short lived")

	resp, _ := performRequest(t, app, http.MethodDelete, "/sessions/"+sessionID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = performRequest(t, app, http.MethodGet, "/sessions/"+sessionID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = performRequest(t, app, http.MethodDelete, "/sessions/"+sessionID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_GetKinds(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp, body := performRequest(t, app, http.MethodGet, "/kinds", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Kinds []registry.KindInfo `json:"kinds"`
	}
	require.NoError(t, json.Unmarshal(body, &listing))

	require.Len(t, listing.Kinds, 1)
	assert.Equal(t, stubKind, listing.Kinds[0].Kind)
	assert.Equal(t, "Stub", listing.Kinds[0].Name)
	assert.NotEmpty(t, listing.Kinds[0].Schema)
}
