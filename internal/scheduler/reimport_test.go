package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/delicious2fluid/internal/logger"
)

func TestReimporter_RunsUntilCancelled(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	job := func(ctx context.Context) error {
		if calls.Add(1) == 3 {
			cancel()
		}
		return nil
	}

	r := NewReimporter(job, logger.NewNop(), 5*time.Millisecond, nil)
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("Run() did not return after cancel")
	}
	if got := calls.Load(); got < 3 {
		t.Errorf("job ran %d times, want at least 3", got)
	}
}

func TestReimporter_InitialFailure(t *testing.T) {
	boom := errors.New("boom")
	r := NewReimporter(func(context.Context) error { return boom }, logger.NewNop(), time.Hour, nil)

	if err := r.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
	if r.Runs() != 1 {
		t.Errorf("Runs() = %d, want 1", r.Runs())
	}
}

func TestReimporter_LaterFailuresKeepRunning(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job := func(context.Context) error {
		n := calls.Add(1)
		if n == 3 {
			cancel()
		}
		if n > 1 {
			return errors.New("transient")
		}
		return nil
	}

	r := NewReimporter(job, logger.NewNop(), 5*time.Millisecond, nil)
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if calls.Load() < 3 {
		t.Errorf("job ran %d times, want at least 3", calls.Load())
	}
}

func TestReimporter_ManualTrigger(t *testing.T) {
	trigger := make(chan struct{})
	ran := make(chan struct{}, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job := func(context.Context) error {
		ran <- struct{}{}
		return nil
	}

	r := NewReimporter(job, logger.NewNop(), 0, trigger)
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	<-ran
	trigger <- struct{}{}
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("manual trigger did not run the job")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestReimporter_RejectsBadSchedule(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		trigger  <-chan struct{}
	}{
		{name: "zero interval without trigger", interval: 0},
		{name: "negative interval", interval: -time.Second, trigger: make(chan struct{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReimporter(func(context.Context) error { return nil }, logger.NewNop(), tt.interval, tt.trigger)
			if err := r.Run(context.Background()); err == nil {
				t.Error("Run() should reject the schedule")
			}
			if r.Runs() != 0 {
				t.Error("job should not run on a rejected schedule")
			}
		})
	}
}
