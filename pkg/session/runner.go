package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowdeck/flowdeck/pkg/events"
	"github.com/flowdeck/flowdeck/pkg/metrics"
	"github.com/flowdeck/flowdeck/pkg/models"
	"github.com/flowdeck/flowdeck/pkg/otelhelper"
	"github.com/flowdeck/flowdeck/pkg/protocol"
)

// defaultRunTimeout bounds one producer run end to end. Producers carry
// their own finer-grained timeouts; this is the backstop.
const defaultRunTimeout = 2 * time.Minute

// RunNode starts an asynchronous producer run for the node and returns the
// run id. The node transitions to running immediately; everything after
// that, including producer construction, happens in the background and
// resolves into run.succeeded or run.failed on the bus. A node already
// running is a conflict.
func (m *Manager) RunNode(ctx context.Context, sessionID, nodeID string) (string, error) {
	sess, err := m.session(sessionID)
	if err != nil {
		return "", NewSessionError("RunNode", sessionID, nodeID, err)
	}

	node, err := sess.BeginRun(nodeID)
	if err != nil {
		return "", NewSessionError("RunNode", sessionID, nodeID, err)
	}

	runID := "run-" + uuid.New().String()[:8]

	m.publish(ctx, sessionID, events.RunStarted{
		BaseEvent: events.NewBaseEvent(events.RunStartedEvent, sessionID),
		RunID:     runID,
		NodeID:    nodeID,
		Kind:      node.Kind,
	})
	m.logger.InfoContext(ctx, "Node run started",
		"session_id", sessionID, "node_id", nodeID, "run_id", runID, "kind", node.Kind)

	// Detach from the request context so an aborted HTTP call does not
	// cancel the run, while keeping trace propagation intact.
	go m.executeRun(context.WithoutCancel(ctx), sess, node, runID)

	return runID, nil
}

func (m *Manager) executeRun(ctx context.Context, sess *Session, node *models.CanvasNode, runID string) {
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	ctx, span := m.tracer.Start(ctx, "flowdeck.run", trace.WithAttributes(
		attribute.String(otelhelper.SessionIDKey, sess.ID),
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeKindKey, string(node.Kind)),
		attribute.String(otelhelper.RunIDKey, runID),
	))
	defer span.End()

	start := time.Now()

	result, err := m.produce(ctx, sess, node)

	durationMs := time.Since(start).Milliseconds()
	metrics.RunDuration.Observe(float64(durationMs))

	if err != nil {
		otelhelper.SetError(span, err)
		metrics.ProducerRuns.WithLabelValues(string(node.Kind), "failed").Inc()

		sess.FailRun(node.ID, err)
		m.publish(ctx, sess.ID, events.RunFailed{
			BaseEvent:  events.NewBaseEvent(events.RunFailedEvent, sess.ID),
			RunID:      runID,
			NodeID:     node.ID,
			Kind:       node.Kind,
			DurationMs: durationMs,
			Error:      err.Error(),
		})
		m.logger.ErrorContext(ctx, "Node run failed",
			"session_id", sess.ID, "node_id", node.ID, "run_id", runID,
			"duration_ms", durationMs, "error", err)

		return
	}

	stored, invalidated, ok := sess.CompleteRun(node.ID, result.Content, result.Label)
	if !ok {
		m.logger.WarnContext(ctx, "Node removed during run, dropping result",
			"session_id", sess.ID, "node_id", node.ID, "run_id", runID)

		return
	}

	metrics.ProducerRuns.WithLabelValues(string(node.Kind), "succeeded").Inc()
	metrics.OutputsSet.Inc()

	m.publish(ctx, sess.ID, events.OutputUpdated{
		BaseEvent:   events.NewBaseEvent(events.OutputUpdatedEvent, sess.ID),
		NodeID:      node.ID,
		Kind:        stored.NodeKind,
		Label:       stored.Label,
		ContentSize: len(stored.Content),
		ProducedAt:  stored.ProducedAt,
	})
	m.publishInvalidated(ctx, sess.ID, invalidated)

	// run.succeeded closes the run; clients rely on it arriving after the
	// output and invalidation events it caused.
	m.publish(ctx, sess.ID, events.RunSucceeded{
		BaseEvent:   events.NewBaseEvent(events.RunSucceededEvent, sess.ID),
		RunID:       runID,
		NodeID:      node.ID,
		Kind:        node.Kind,
		DurationMs:  durationMs,
		ContentSize: len(stored.Content),
	})
	m.logger.InfoContext(ctx, "Node run succeeded",
		"session_id", sess.ID, "node_id", node.ID, "run_id", runID,
		"duration_ms", durationMs, "content_size", len(stored.Content))
}

// produce resolves the node's inputs, builds its producer, and runs it.
// Inputs are resolved once at run start; outputs landing upstream mid-run
// do not leak into this run.
func (m *Manager) produce(ctx context.Context, sess *Session, node *models.CanvasNode) (*protocol.ProducerResult, error) {
	inputs, err := sess.Inputs(node.ID)
	if err != nil {
		return nil, err
	}

	producer, err := m.registry.CreateProducer(ctx, node)
	if err != nil {
		return nil, err
	}

	return producer.Produce(ctx, inputs)
}

// refreshNode is the scheduler callback behind refresh_cron parameters. A
// run already in progress is not an error, the firing is simply skipped.
func (m *Manager) refreshNode(ctx context.Context, sessionID, nodeID string) error {
	_, err := m.RunNode(ctx, sessionID, nodeID)
	if err != nil {
		if IsRunInProgress(err) {
			return nil
		}

		return err
	}

	return nil
}
