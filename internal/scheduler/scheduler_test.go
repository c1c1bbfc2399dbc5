package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func waitFor(t *testing.T, ch <-chan int, want int) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Fatalf("expected cycle %d, got %d", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for cycle %d", want)
	}
}

func TestRunImmediatelyThenPerTick(t *testing.T) {
	ticks := make(chan time.Time)
	started := make(chan int, 10)
	var n atomic.Int32

	s := New(time.Hour, func(ctx context.Context) {
		started <- int(n.Add(1))
	}, zap.NewNop().Sugar()).WithTicks(ticks)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	waitFor(t, started, 1)
	for i := 2; i <= 4; i++ {
		ticks <- time.Now()
		waitFor(t, started, i)
	}

	cancel()
	<-done

	st := s.Stats()
	if st.Started != 4 || st.Skipped != 0 {
		t.Errorf("unexpected stats %+v", st)
	}
	if st.Running {
		t.Error("expected no cycle in flight after Run returned")
	}
}

func TestOverlappingTicksAreSkipped(t *testing.T) {
	ticks := make(chan time.Time)
	started := make(chan int, 10)
	release := make(chan struct{})
	var n atomic.Int32

	s := New(time.Hour, func(ctx context.Context) {
		k := int(n.Add(1))
		started <- k
		if k == 2 {
			<-release
		}
	}, zap.NewNop().Sugar()).WithTicks(ticks)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	waitFor(t, started, 1)
	ticks <- time.Now()
	waitFor(t, started, 2)

	// both ticks arrive while cycle 2 is blocked
	ticks <- time.Now()
	ticks <- time.Now()

	if got := s.Stats().Skipped; got < 1 {
		t.Errorf("expected at least one skipped tick, got %d", got)
	}

	close(release)
	cancel()
	<-done

	st := s.Stats()
	if st.Started != 2 || st.Skipped != 2 {
		t.Errorf("expected 2 started and 2 skipped, got %+v", st)
	}
	select {
	case k := <-started:
		t.Errorf("skipped tick must not be queued, but cycle %d ran", k)
	default:
	}
}

func TestPanickingCycleDoesNotStopScheduling(t *testing.T) {
	ticks := make(chan time.Time)
	started := make(chan int, 10)
	var n atomic.Int32

	s := New(time.Hour, func(ctx context.Context) {
		k := int(n.Add(1))
		started <- k
		if k == 1 {
			panic("boom")
		}
	}, zap.NewNop().Sugar()).WithTicks(ticks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	waitFor(t, started, 1)
	ticks <- time.Now()
	waitFor(t, started, 2)
}

func TestRealTicker(t *testing.T) {
	var n atomic.Int32
	s := New(10*time.Millisecond, func(ctx context.Context) { n.Add(1) }, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for n.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if n.Load() < 3 {
		t.Errorf("expected at least 3 cycles, got %d", n.Load())
	}
}

func TestDefaultInterval(t *testing.T) {
	s := New(0, func(context.Context) {}, zap.NewNop().Sugar())
	if s.Stats().Interval != "30s" {
		t.Errorf("expected 30s default, got %s", s.Stats().Interval)
	}
}
