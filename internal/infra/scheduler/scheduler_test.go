package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSchedulerRunsJobAndSurvivesFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	s := New(zap.New(core))

	var runs atomic.Int32
	done := make(chan struct{})

	err := s.Every("sweep", time.Second, func(context.Context) error {
		n := runs.Add(1)
		switch n {
		case 1:
			panic("first run explodes")
		case 2:
			return errors.New("second run fails")
		case 3:
			close(done)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Every returned error: %v", err)
	}

	s.Start()
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	select {
	case <-done:
	case <-time.After(6 * time.Second):
		t.Fatalf("expected third run, got %d runs", runs.Load())
	}

	if logs.FilterMessage("job failed").Len() == 0 {
		t.Fatal("expected job failure to be logged")
	}
}

func TestSchedulerRejectsInvalidJobs(t *testing.T) {
	s := New(nil)

	if err := s.Every("zero", 0, func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected error for zero interval")
	}
	if err := s.Every("nil", time.Minute, nil); err == nil {
		t.Fatal("expected error for nil job")
	}
}

func TestSchedulerRunNowRecoversPanics(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	s := New(zap.New(core))

	s.RunNow("boom", func(context.Context) error { panic("bad") })
	s.RunNow("fail", func(context.Context) error { return errors.New("nope") })

	if logs.FilterMessage("job panicked").Len() != 1 {
		t.Fatal("expected panic to be logged")
	}
	if logs.FilterMessage("job failed").Len() != 1 {
		t.Fatal("expected failure to be logged")
	}
}

func TestSchedulerStopCancelsJobContext(t *testing.T) {
	s := New(nil)

	var seen context.Context
	s.RunNow("capture", func(ctx context.Context) error {
		seen = ctx
		return nil
	})

	s.Start()
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	select {
	case <-seen.Done():
	default:
		t.Fatal("expected job context to be cancelled after Stop")
	}
}
