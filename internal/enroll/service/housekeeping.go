package service

import (
	"log/slog"
	"time"
)

// HousekeepingService periodically expires enrollment sessions that were
// never confirmed, so their secrets do not linger in memory.
type HousekeepingService struct {
	Enrollments *EnrollmentService
	Logger      *slog.Logger
	Interval    time.Duration
	Now         func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 minute.
func NewHousekeepingService(enrollments *EnrollmentService, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}

	return &HousekeepingService{
		Enrollments: enrollments,
		Logger:      logger,
		Interval:    interval,
		Now:         time.Now,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop() to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) cleanup() {
	n := s.Enrollments.ExpireStale(s.Now())
	if n > 0 {
		s.Logger.Info("expired stale enrollments", "count", n)
		return
	}
	s.Logger.Debug("no stale enrollments")
}
