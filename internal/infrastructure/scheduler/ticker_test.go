package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerSchedulerRunsAndStops(t *testing.T) {
	t.Parallel()

	s := NewTickerScheduler(5 * time.Millisecond)
	var runs atomic.Int32

	if err := s.Start(context.Background(), func(time.Time) { runs.Add(1) }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// second start is ignored
	if err := s.Start(context.Background(), func(time.Time) { runs.Add(100) }); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for runs.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("job never ran twice")
		}
		time.Sleep(time.Millisecond)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	after := runs.Load()
	if after >= 100 {
		t.Fatalf("second Start must not register another job, runs=%d", after)
	}
	time.Sleep(20 * time.Millisecond)
	if runs.Load() != after {
		t.Fatal("job ran after Stop")
	}
}

func TestTickerSchedulerDisabled(t *testing.T) {
	t.Parallel()

	s := NewTickerScheduler(0)
	if err := s.Start(context.Background(), func(time.Time) { t.Error("must not run") }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
