package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/delicious2fluid/internal/logger"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Reimporter runs an import now and again on every tick or manual trigger.
// A zero interval disables the ticker and leaves only the trigger.
type Reimporter struct {
	job           Job
	logger        logger.Logger
	interval      time.Duration
	manualTrigger <-chan struct{}
	runs          int
}

// NewReimporter creates a new reimporter. manualTrigger may be nil.
func NewReimporter(job Job, log logger.Logger, interval time.Duration, manualTrigger <-chan struct{}) *Reimporter {
	return &Reimporter{
		job:           job,
		logger:        log,
		interval:      interval,
		manualTrigger: manualTrigger,
	}
}

// Run blocks until ctx ends. A failing first run is returned; later
// failures are logged and the next tick retries.
func (r *Reimporter) Run(ctx context.Context) error {
	if r.interval < 0 || (r.interval == 0 && r.manualTrigger == nil) {
		return fmt.Errorf("reimport needs a positive interval or a trigger, got %v", r.interval)
	}

	if err := r.once(ctx); err != nil {
		return fmt.Errorf("initial import failed: %w", err)
	}

	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	r.logger.Info("scheduled reimport", logger.Duration("every", r.interval))
	for {
		select {
		case <-tick:
			r.logErr(r.once(ctx))
		case <-r.manualTrigger:
			r.logger.Info("manual reimport triggered")
			r.logErr(r.once(ctx))
		case <-ctx.Done():
			r.logger.Info("reimport stopped", logger.Int("runs", r.runs))
			return nil
		}
	}
}

// Runs returns how many imports were attempted.
func (r *Reimporter) Runs() int { return r.runs }

func (r *Reimporter) once(ctx context.Context) error {
	r.runs++
	start := time.Now()
	err := r.job(ctx)
	r.logger.Debug("reimport finished",
		logger.Int("run", r.runs),
		logger.Duration("took", time.Since(start)),
		logger.Bool("ok", err == nil))
	return err
}

func (r *Reimporter) logErr(err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Error("failed to reimport", logger.Error(err))
	}
}
