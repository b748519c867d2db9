package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/pkg/metrics"
)

// Counters supplies the record totals shown on the dashboard.
type Counters struct {
	Patients     Counter
	Doctors      Counter
	Appointments Counter
}

type Dashboard struct {
	Counts domain.Counts            `json:"counts"`
	Recent []*domain.ActivityEntry `json:"recent_activity"`
}

// ActivityService persists the clinic's activity feed in the background.
type ActivityService struct {
	repo          ActivityRepository
	counters      Counters
	defaultRecent int
	log           *zap.Logger
	metrics       *metrics.Collector

	mu      sync.RWMutex
	closed  bool
	entries chan *domain.ActivityEntry
	done    chan struct{}
	now     func() time.Time
}

const (
	activityBufferSize      = 10_000
	activityShutdownTimeout = 10 * time.Second
)

func NewActivityService(repo ActivityRepository, counters Counters, defaultRecent int, log *zap.Logger, m *metrics.Collector) *ActivityService {
	svc := &ActivityService{
		repo:          repo,
		counters:      counters,
		defaultRecent: defaultRecent,
		log:           log,
		metrics:       m,
		entries:       make(chan *domain.ActivityEntry, activityBufferSize),
		done:          make(chan struct{}),
		now:           time.Now,
	}
	go svc.worker()
	return svc
}

// Record enqueues an entry for asynchronous persistence. If the buffer is
// full, or the service has shut down, the entry is dropped with a warning.
func (s *ActivityService) Record(kind domain.ActivityKind, action domain.ActivityAction, resourceID int64, description string) {
	entry := &domain.ActivityEntry{
		OccurredAt:  s.now().UTC(),
		Kind:        kind,
		Action:      action,
		ResourceID:  resourceID,
		Description: description,
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.log.Warn("activity service stopped, dropping entry",
			zap.String("kind", string(kind)),
			zap.String("action", string(action)),
		)
		return
	}

	select {
	case s.entries <- entry:
	default:
		s.metrics.ActivityBufferDropped.Inc()
		s.log.Warn("activity buffer full, dropping entry",
			zap.String("kind", string(kind)),
			zap.String("action", string(action)),
			zap.Int64("resource_id", resourceID),
		)
	}
}

// Recent returns the newest entries first. A non-positive limit falls back to
// the configured default.
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]*domain.ActivityEntry, error) {
	if limit <= 0 {
		limit = s.defaultRecent
	}
	entries, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent activity: %w", err)
	}
	return entries, nil
}

func (s *ActivityService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Counts.Patients, err = s.counters.Patients.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Counts.Doctors, err = s.counters.Doctors.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Counts.Appointments, err = s.counters.Appointments.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Recent, err = s.Recent(gctx, s.defaultRecent)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building dashboard: %w", err)
	}

	return &d, nil
}

// Shutdown stops accepting entries and waits for the worker to drain the
// buffer. It is safe to call more than once.
func (s *ActivityService) Shutdown() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
	case <-time.After(activityShutdownTimeout):
		s.log.Warn("activity service shutdown timed out; some entries may be lost")
	}
}

func (s *ActivityService) worker() {
	defer close(s.done)
	for entry := range s.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Create(ctx, entry); err != nil {
			s.log.Error("failed to persist activity entry", zap.Error(err))
		} else {
			s.metrics.ActivityEntriesTotal.Inc()
		}
		cancel()
	}
}
