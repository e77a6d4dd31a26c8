// Package refresh schedules periodic re-runs of canvas nodes that carry a
// refresh_cron parameter.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
)

// RunFunc triggers a node run; the scheduler calls it on every tick of a
// node's refresh expression.
type RunFunc func(ctx context.Context, sessionID, nodeID string) error

// Scheduler owns one cron instance and a job per refreshing node, keyed by
// sessionID/nodeID.
type Scheduler struct {
	run    RunFunc
	logger *slog.Logger
	cron   *cron.Cron
	jobs   map[string]cron.EntryID
	mutex  sync.Mutex
}

// NewScheduler creates a refresh scheduler. Jobs that are still running
// when their next tick arrives are skipped, and panics inside a job are
// recovered.
func NewScheduler(run RunFunc, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		run:    run,
		logger: logger.With("module", "refresh_scheduler"),
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
			cron.Recover(cron.DefaultLogger),
		)),
		jobs: make(map[string]cron.EntryID),
	}
}

// Validate checks a refresh cron expression without scheduling it.
func Validate(cronExpr string) error {
	if cronExpr == "" {
		return errors.New("cron expression is required")
	}

	if _, err := cron.ParseStandard(cronExpr); err != nil {
		return fmt.Errorf("invalid cron expression '%s': %w", cronExpr, err)
	}

	return nil
}

// Start begins firing scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Refresh scheduler started")
}

// Schedule registers a periodic run for the node, replacing any previous
// schedule it had.
func (s *Scheduler) Schedule(sessionID, nodeID, cronExpr string) error {
	err := Validate(cronExpr)
	if err != nil {
		return err
	}

	key := jobKey(sessionID, nodeID)
	logger := s.logger.With("session_id", sessionID, "node_id", nodeID)

	jobFunc := func() {
		if err := s.run(context.Background(), sessionID, nodeID); err != nil {
			logger.Error("Scheduled refresh failed", "error", err)
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if entryID, exists := s.jobs[key]; exists {
		s.cron.Remove(entryID)
	}

	entryID, err := s.cron.AddFunc(cronExpr, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add cron job for node %s: %w", nodeID, err)
	}

	s.jobs[key] = entryID
	logger.Info("Scheduled node refresh", "cron", cronExpr, "entry_id", entryID)

	return nil
}

// Unschedule drops the node's refresh job if it has one.
func (s *Scheduler) Unschedule(sessionID, nodeID string) {
	key := jobKey(sessionID, nodeID)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if entryID, exists := s.jobs[key]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, key)
		s.logger.Info("Unscheduled node refresh", "session_id", sessionID, "node_id", nodeID)
	}
}

// UnscheduleSession drops every refresh job belonging to a session.
func (s *Scheduler) UnscheduleSession(sessionID string) {
	prefix := sessionID + "/"

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for key, entryID := range s.jobs {
		if strings.HasPrefix(key, prefix) {
			s.cron.Remove(entryID)
			delete(s.jobs, key)
		}
	}
}

// Jobs returns the number of scheduled refresh jobs.
func (s *Scheduler) Jobs() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return len(s.jobs)
}

// Stop halts the cron scheduler and forgets all jobs.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("Stopped refresh scheduler")

	s.mutex.Lock()
	s.jobs = make(map[string]cron.EntryID)
	s.mutex.Unlock()
}

func jobKey(sessionID, nodeID string) string {
	return sessionID + "/" + nodeID
}
