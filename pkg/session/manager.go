package session

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowdeck/flowdeck/pkg/eventbus"
	"github.com/flowdeck/flowdeck/pkg/events"
	"github.com/flowdeck/flowdeck/pkg/metrics"
	"github.com/flowdeck/flowdeck/pkg/refresh"
	"github.com/flowdeck/flowdeck/pkg/registry"
)

// Manager owns every live session in the process. It performs the canvas
// operations the API exposes, publishes the resulting events on the bus,
// and routes the bus stream back into per-session feeds.
type Manager struct {
	logger    *slog.Logger
	bus       eventbus.EventBus
	registry  *registry.Registry
	scheduler *refresh.Scheduler
	tracer    trace.Tracer

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(logger *slog.Logger, bus eventbus.EventBus, reg *registry.Registry) *Manager {
	m := &Manager{
		logger:   logger.With("module", "session_manager"),
		bus:      bus,
		registry: reg,
		tracer:   otel.Tracer("flowdeck.session"),
		sessions: make(map[string]*Session),
	}
	m.scheduler = refresh.NewScheduler(m.refreshNode, logger)

	return m
}

// Start registers the feed routing handlers, begins consuming the event
// bus, and starts the refresh scheduler.
func (m *Manager) Start(ctx context.Context) error {
	for _, eventType := range events.AllEventTypes() {
		if err := m.bus.Handle(eventType, m.routeEvent); err != nil {
			return err
		}
	}

	if err := m.bus.Subscribe(ctx); err != nil {
		return err
	}

	m.scheduler.Start()
	m.logger.InfoContext(ctx, "Session manager started")

	return nil
}

// Stop halts the refresh scheduler. The bus is owned by the caller and
// closed separately.
func (m *Manager) Stop(ctx context.Context) {
	m.scheduler.Stop()
	m.logger.InfoContext(ctx, "Session manager stopped")
}

// CreateSession opens a new empty canvas session.
func (m *Manager) CreateSession(ctx context.Context, name string) (*Session, error) {
	sess := newSession(uuid.New().String(), name)

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	metrics.SessionsActive.Inc()
	m.logger.InfoContext(ctx, "Session created", "session_id", sess.ID, "name", name)

	return sess, nil
}

// GetSession returns the session, or ErrSessionNotFound.
func (m *Manager) GetSession(sessionID string) (*Session, error) {
	return m.session(sessionID)
}

// ListSessions returns every live session ordered by creation time.
func (m *Manager) ListSessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}

		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}

// RemoveSession closes the session: its refresh jobs are unscheduled and
// its feed released. In-flight runs finish against the detached session and
// their results are dropped.
func (m *Manager) RemoveSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	sess, exists := m.sessions[sessionID]
	if exists {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !exists {
		return NewSessionError("RemoveSession", sessionID, "", ErrSessionNotFound)
	}

	m.scheduler.UnscheduleSession(sessionID)
	sess.Feed().Close()
	metrics.SessionsActive.Dec()
	m.logger.InfoContext(ctx, "Session removed", "session_id", sessionID)

	return nil
}

func (m *Manager) session(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, exists := m.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	return sess, nil
}

// sessionEvent is what every canvas event satisfies through BaseEvent.
type sessionEvent interface {
	GetType() events.EventType
	GetSessionID() string
	GetTimestamp() time.Time
}

// routeEvent appends a bus event to the feed of the session it belongs to.
// Events for unknown sessions are acked and dropped; on a shared bus they
// belong to another instance.
func (m *Manager) routeEvent(_ context.Context, event any) error {
	evt, ok := event.(sessionEvent)
	if !ok {
		return nil
	}

	m.mu.RLock()
	sess, exists := m.sessions[evt.GetSessionID()]
	m.mu.RUnlock()

	if !exists {
		return nil
	}

	sess.Feed().Append(evt.GetType(), evt.GetTimestamp(), event)

	return nil
}

// publish sends one event to the bus, keyed by session so a partitioned
// bus preserves per-session ordering. Publish failures are logged, not
// propagated; the canvas mutation has already happened.
func (m *Manager) publish(ctx context.Context, sessionID string, event eventbus.Event) {
	metrics.EventsPublished.WithLabelValues(string(event.GetType())).Inc()

	if err := m.bus.Publish(ctx, sessionID, event); err != nil {
		m.logger.ErrorContext(ctx, "Failed to publish canvas event",
			"event_type", event.GetType(),
			"session_id", sessionID,
			"error", err)
	}
}

// publishInvalidated emits inputs.invalidated for each downstream node a
// mutation touched, after the event describing the mutation itself.
func (m *Manager) publishInvalidated(ctx context.Context, sessionID string, nodeIDs []string) {
	for _, nodeID := range nodeIDs {
		m.publish(ctx, sessionID, events.InputsInvalidated{
			BaseEvent: events.NewBaseEvent(events.InputsInvalidatedEvent, sessionID),
			NodeID:    nodeID,
		})
	}
}
