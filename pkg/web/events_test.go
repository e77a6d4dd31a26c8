package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdeck/flowdeck/pkg/events"
	"github.com/flowdeck/flowdeck/pkg/web"
)

func TestAPIHandlers_GetEvents(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)
	sessionID := createTestSession(t, app, "events")

	resp, body := performRequest(t, app, http.MethodGet, "/sessions/"+sessionID+"/events", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page web.EventsResponse
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Empty(t, page.Events)
	assert.Zero(t, page.LastSeq)

	createTestNode(t, app, sessionID, web.CreateNodeRequest{ID: "stub-1", Kind: "stub"})
	createTestNode(t, app, sessionID, web.CreateNodeRequest{ID: "stub-2", Kind: "stub"})

	resp, body = performRequest(t, app, http.MethodGet, "/sessions/"+sessionID+"/events", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &page))

	require.Len(t, page.Events, 2)
	assert.Equal(t, events.NodeCreatedEvent, page.Events[0].Type)
	assert.Equal(t, uint64(1), page.Events[0].Seq)
	assert.Equal(t, uint64(2), page.LastSeq)
}

func TestAPIHandlers_GetEvents_AfterCursor(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)
	sessionID := createTestSession(t, app, "cursors")

	createTestNode(t, app, sessionID, web.CreateNodeRequest{ID: "stub-1", Kind: "stub"})
	createTestNode(t, app, sessionID, web.CreateNodeRequest{ID: "stub-2", Kind: "stub"})

	resp, body := performRequest(t, app, http.MethodGet, "/sessions/"+sessionID+"/events?after=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page web.EventsResponse
	require.NoError(t, json.Unmarshal(body, &page))

	require.Len(t, page.Events, 1)
	assert.Equal(t, uint64(2), page.Events[0].Seq)
	assert.Equal(t, uint64(2), page.LastSeq)

	// A cursor past the end of the feed comes straight back.
	resp, body = performRequest(t, app, http.MethodGet, "/sessions/"+sessionID+"/events?after=99", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Empty(t, page.Events)
	assert.Equal(t, uint64(99), page.LastSeq)
}

func TestAPIHandlers_GetEvents_BadQuery(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)
	sessionID := createTestSession(t, app, "bad queries")

	resp, _ := performRequest(t, app, http.MethodGet, "/sessions/"+sessionID+"/events?after=banana", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = performRequest(t, app, http.MethodGet, "/sessions/"+sessionID+"/events?wait=-1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = performRequest(t, app, http.MethodGet, "/sessions/ghost/events", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_GetEvents_LongPollWakesOnActivity(t *testing.T) {
	t.Parallel()

	app, manager := setupTestApp(t)
	sessionID := createTestSession(t, app, "long poll")

	createTestNode(t, app, sessionID, web.CreateNodeRequest{ID: "stub-1", Kind: "stub"})

	go func() {
		time.Sleep(100 * time.Millisecond)

		_, err := manager.SetNodeOutput(context.Background(), sessionID, "stub-1", "late arrival", "")
		assert.NoError(t, err)
	}()

	start := time.Now()
	resp, body := performRequest(t, app, http.MethodGet, "/sessions/"+sessionID+"/events?after=1&wait=3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page web.EventsResponse
	require.NoError(t, json.Unmarshal(body, &page))

	require.NotEmpty(t, page.Events)
	assert.Equal(t, events.OutputUpdatedEvent, page.Events[0].Type)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestAPIHandlers_GetEvents_LongPollTimesOutEmpty(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)
	sessionID := createTestSession(t, app, "quiet poll")

	start := time.Now()
	resp, body := performRequest(t, app, http.MethodGet, "/sessions/"+sessionID+"/events?wait=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page web.EventsResponse
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Empty(t, page.Events)
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}
