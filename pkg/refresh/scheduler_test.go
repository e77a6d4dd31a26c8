package refresh

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopRun(_ context.Context, _, _ string) error {
	return nil
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("*/5 * * * *"))
	assert.NoError(t, Validate("@hourly"))
	assert.Error(t, Validate(""))
	assert.Error(t, Validate("not a cron expression"))
}

func TestScheduler_Schedule(t *testing.T) {
	s := NewScheduler(noopRun, slog.Default())
	defer s.Stop()

	require.NoError(t, s.Schedule("session-1", "firecrawl-1", "*/10 * * * *"))
	assert.Equal(t, 1, s.Jobs())

	// Re-scheduling the same node replaces the previous job.
	require.NoError(t, s.Schedule("session-1", "firecrawl-1", "*/5 * * * *"))
	assert.Equal(t, 1, s.Jobs())

	require.NoError(t, s.Schedule("session-1", "firecrawl-2", "@hourly"))
	assert.Equal(t, 2, s.Jobs())
}

func TestScheduler_Schedule_InvalidExpression(t *testing.T) {
	s := NewScheduler(noopRun, slog.Default())
	defer s.Stop()

	err := s.Schedule("session-1", "firecrawl-1", "every day at noon")

	require.Error(t, err)
	assert.Equal(t, 0, s.Jobs())
}

func TestScheduler_Unschedule(t *testing.T) {
	s := NewScheduler(noopRun, slog.Default())
	defer s.Stop()

	require.NoError(t, s.Schedule("session-1", "firecrawl-1", "@hourly"))
	require.NoError(t, s.Schedule("session-1", "openai-1", "@hourly"))

	s.Unschedule("session-1", "firecrawl-1")
	assert.Equal(t, 1, s.Jobs())

	// Unscheduling a node without a job is a no-op.
	s.Unschedule("session-1", "firecrawl-1")
	assert.Equal(t, 1, s.Jobs())
}

func TestScheduler_UnscheduleSession(t *testing.T) {
	s := NewScheduler(noopRun, slog.Default())
	defer s.Stop()

	require.NoError(t, s.Schedule("session-1", "firecrawl-1", "@hourly"))
	require.NoError(t, s.Schedule("session-1", "openai-1", "@hourly"))
	require.NoError(t, s.Schedule("session-2", "firecrawl-1", "@hourly"))

	s.UnscheduleSession("session-1")

	assert.Equal(t, 1, s.Jobs())
}
