// Package sweeper periodically advances confirmed appointments whose
// scheduled civil time has elapsed. It is a safety net behind the explicit
// prepare/join flow: a run-guard lock keeps concurrent pods from sweeping
// the same batch, and the status predicate on each update makes reruns
// harmless either way.
package sweeper

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/clinova/consult/internal/config"
	"github.com/clinova/consult/internal/model"
	"github.com/clinova/consult/internal/timing"
	"github.com/clinova/consult/internal/worker"
)

// lockName is the single run-guard lock shared by all pods
const lockName = "appointment-sweep"

// AppointmentStore is the slice of the appointment repository the sweeper
// needs
type AppointmentStore interface {
	FindDueConfirmed(ctx context.Context, maxDate string) ([]model.Appointment, error)
	MarkConsulting(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// LockStore is the run-guard lock repository
type LockStore interface {
	Acquire(ctx context.Context, name, podID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name, podID string) error
	CleanExpired(ctx context.Context) (int64, error)
}

// Sweeper runs the periodic appointment sweep
type Sweeper struct {
	cfg          *config.Config
	appointments AppointmentStore
	locks        LockStore
	pool         *worker.Pool
	loc          *time.Location
	podID        string
	cron         *cron.Cron
	sweepMu      sync.Mutex // one sweep per pod at a time
}

// sweepStats summarizes one sweep pass
type sweepStats struct {
	scanned  int
	due      int
	advanced int
	failed   int
}

// New creates a new sweeper instance
func New(cfg *config.Config, appointments AppointmentStore, locks LockStore) *Sweeper {
	// Pod identifier (hostname in Kubernetes)
	podID, err := os.Hostname()
	if err != nil {
		podID = uuid.New().String()
		slog.Warn("Failed to get hostname, using UUID as pod ID", "pod_id", podID)
	}

	pool := worker.NewPool(cfg.SweepConcurrency, cfg.SweepQueueSize)
	s := &Sweeper{
		cfg:          cfg,
		appointments: appointments,
		locks:        locks,
		pool:         pool,
		loc:          cfg.ClinicLocation(),
		podID:        podID,
	}
	pool.SetAdvancer(s.advance)

	return s
}

// Start begins the sweep schedule. The first sweep runs immediately so a
// restart never waits a full period to catch up.
func (s *Sweeper) Start(ctx context.Context) error {
	if !s.cfg.SweepEnabled {
		slog.Info("Sweeper is disabled by configuration")
		return nil
	}

	slog.Info("Starting sweeper",
		"pod_id", s.podID,
		"schedule", s.cfg.SweepSchedule,
		"lock_ttl", s.cfg.SweepLockTTL,
		"concurrency", s.cfg.SweepConcurrency,
	)

	s.pool.Start()

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.cfg.SweepSchedule, func() {
		s.Sweep(ctx)
	}); err != nil {
		return err
	}
	s.cron.Start()

	go s.Sweep(ctx)

	return nil
}

// Stop gracefully stops the sweeper, waiting for an in-flight sweep
func (s *Sweeper) Stop(ctx context.Context) {
	if !s.cfg.SweepEnabled {
		return
	}

	slog.Info("Stopping sweeper", "pod_id", s.podID)

	if s.cron != nil {
		stopCtx := s.cron.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
			slog.Warn("Timeout waiting for in-flight sweep to complete")
		}
	}

	// Serializes against a sweep the cron context missed.
	s.sweepMu.Lock()
	s.sweepMu.Unlock()

	s.pool.Stop()

	slog.Info("Sweeper stopped", "pod_id", s.podID)
}

// Sweep processes one sweep pass: clean expired locks, take the run
// guard, advance every due confirmed appointment through the worker pool,
// release the guard. Skipped entirely when another pod holds the lock.
func (s *Sweeper) Sweep(ctx context.Context) {
	if !s.sweepMu.TryLock() {
		slog.Debug("Sweep already running on this pod", "pod_id", s.podID)
		return
	}
	defer s.sweepMu.Unlock()

	if cleaned, err := s.locks.CleanExpired(ctx); err != nil {
		slog.Error("Failed to clean expired sweep locks", "error", err)
	} else if cleaned > 0 {
		slog.Info("Cleaned expired sweep locks", "count", cleaned)
	}

	acquired, err := s.locks.Acquire(ctx, lockName, s.podID, s.cfg.SweepLockTTL)
	if err != nil {
		slog.Error("Failed to acquire sweep lock", "error", err)
		return
	}
	if !acquired {
		slog.Debug("Sweep lock held by another pod", "pod_id", s.podID)
		return
	}
	defer func() {
		if err := s.locks.Release(context.Background(), lockName, s.podID); err != nil {
			slog.Error("Failed to release sweep lock", "error", err)
		}
	}()

	stats := s.sweep(ctx)

	slog.Info("Sweep completed",
		"pod_id", s.podID,
		"scanned", stats.scanned,
		"due", stats.due,
		"advanced", stats.advanced,
		"failed", stats.failed,
	)
}

// sweep runs the batch under an already-held lock
func (s *Sweeper) sweep(ctx context.Context) sweepStats {
	var stats sweepStats

	now := time.Now().In(s.loc)
	correlationID := uuid.New().String()

	candidates, err := s.appointments.FindDueConfirmed(ctx, now.Format(timing.DateLayout))
	if err != nil {
		slog.Error("Failed to load due appointments",
			"correlation_id", correlationID,
			"error", err,
		)
		return stats
	}
	stats.scanned = len(candidates)

	var jobs []worker.Job
	for _, appointment := range candidates {
		scheduled, err := timing.CombineDateTime(appointment.AppointmentDate, appointment.AppointmentTime, s.loc)
		if err != nil {
			// Malformed rows are never advanced, only reported.
			slog.Warn("Skipping appointment with malformed schedule",
				"appointment_id", appointment.ID.Hex(),
				"appointment_date", appointment.AppointmentDate,
				"appointment_time", appointment.AppointmentTime,
				"correlation_id", correlationID,
			)
			continue
		}
		if scheduled.After(now) {
			continue
		}

		jobs = append(jobs, worker.Job{
			Appointment:   appointment,
			CorrelationID: correlationID,
			Context:       ctx,
		})
	}
	stats.due = len(jobs)

	// Submit from a separate goroutine so results are drained while jobs
	// are still queueing; a batch larger than the channel buffers must not
	// wedge the sweep.
	type submitOutcome struct {
		submitted int
		failed    int
	}
	outcomeCh := make(chan submitOutcome, 1)
	go func() {
		var outcome submitOutcome
		for _, job := range jobs {
			if err := s.pool.Submit(job); err != nil {
				slog.Error("Failed to submit sweep job",
					"appointment_id", job.Appointment.ID.Hex(),
					"correlation_id", correlationID,
					"error", err,
				)
				outcome.failed++
				continue
			}
			outcome.submitted++
		}
		outcomeCh <- outcome
	}()

	// One result per submitted job; the lock is only released after the
	// whole batch settled.
	expected := -1
	collected := 0
	for expected == -1 || collected < expected {
		select {
		case outcome := <-outcomeCh:
			expected = outcome.submitted
			stats.failed += outcome.failed
		case result := <-s.pool.Results():
			collected++
			switch {
			case result.Error != nil:
				stats.failed++
			case result.Advanced:
				stats.advanced++
			default:
				// Lost the race to another writer; already consulting.
				slog.Debug("Appointment already advanced",
					"appointment_id", result.AppointmentID,
					"correlation_id", correlationID,
				)
			}
		}
	}

	return stats
}

// advance moves one confirmed appointment to consulting
func (s *Sweeper) advance(ctx context.Context, job worker.Job) (bool, error) {
	advanced, err := s.appointments.MarkConsulting(ctx, job.Appointment.ID)
	if err != nil {
		return false, err
	}
	if advanced {
		slog.Info("Appointment advanced to consulting",
			"appointment_id", job.Appointment.ID.Hex(),
			"correlation_id", job.CorrelationID,
		)
	}
	return advanced, nil
}
