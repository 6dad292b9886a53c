package worker

import (
	"context"
	"log/slog"
	"sync"
)

// AdvanceFunc advances a single appointment; returns whether the record
// was actually transitioned
type AdvanceFunc func(ctx context.Context, job Job) (bool, error)

// Pool manages a fixed set of worker goroutines that advance due
// appointments concurrently. One record failing never affects the rest of
// the batch; the sweeper collects per-record results and moves on.
type Pool struct {
	workers   int
	jobs      chan Job
	results   chan Result
	advanceFn AdvanceFunc
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewPool creates a new worker pool
func NewPool(workers int, queueSize int) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers: workers,
		jobs:    make(chan Job, queueSize),
		results: make(chan Result, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetAdvancer sets the function that will process jobs
func (p *Pool) SetAdvancer(fn AdvanceFunc) {
	p.advanceFn = fn
}

// Start starts the worker pool
func (p *Pool) Start() {
	slog.Info("Starting sweep worker pool", "workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop stops the worker pool gracefully
func (p *Pool) Stop() {
	slog.Info("Stopping sweep worker pool")

	close(p.jobs)
	p.wg.Wait()
	close(p.results)
	p.cancel()

	slog.Info("Sweep worker pool stopped")
}

// Submit submits a job to the worker pool
func (p *Pool) Submit(job Job) error {
	select {
	case p.jobs <- job:
		slog.Debug("Sweep job submitted",
			"appointment_id", job.Appointment.ID.Hex(),
			"correlation_id", job.CorrelationID,
		)
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// Results returns the results channel; the sweeper reads one result per
// submitted job
func (p *Pool) Results() <-chan Result {
	return p.results
}

// worker is the worker goroutine that processes jobs
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		advanced, err := p.advanceFn(job.Context, job)

		if err != nil {
			slog.Error("Sweep job failed",
				"worker_id", id,
				"appointment_id", job.Appointment.ID.Hex(),
				"correlation_id", job.CorrelationID,
				"error", err,
			)
		}

		select {
		case p.results <- Result{
			AppointmentID: job.Appointment.ID.Hex(),
			Advanced:      advanced,
			Error:         err,
		}:
		case <-p.ctx.Done():
			return
		}
	}
}
