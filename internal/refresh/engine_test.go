package refresh

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNextRun(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		hour int
		min  int
		want time.Time
	}{
		{
			name: "later today",
			now:  time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
			hour: 9, min: 30,
			want: time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
		},
		{
			name: "already passed rolls to tomorrow",
			now:  time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
			hour: 9, min: 30,
			want: time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC),
		},
		{
			name: "exactly at trigger rolls to tomorrow",
			now:  time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
			hour: 9, min: 30,
			want: time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC),
		},
		{
			name: "month boundary",
			now:  time.Date(2026, 1, 31, 23, 59, 0, 0, time.UTC),
			hour: 0, min: 5,
			want: time.Date(2026, 2, 1, 0, 5, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextRun(tt.now, tt.hour, tt.min)
			if !got.Equal(tt.want) {
				t.Errorf("nextRun(%v, %d, %d) = %v, want %v", tt.now, tt.hour, tt.min, got, tt.want)
			}
		})
	}
}

func TestCycleStartupDoesNotNotify(t *testing.T) {
	var ran, notified atomic.Int64
	e := New("test", 0, 0,
		func(ctx context.Context) error { ran.Add(1); return nil },
		func(ctx context.Context) { notified.Add(1) },
		zap.NewNop())

	e.cycle(context.Background(), false)
	assert.Equal(t, int64(1), ran.Load())
	assert.Equal(t, int64(0), notified.Load(), "startup refresh must not notify")
}

func TestCycleScheduledNotifies(t *testing.T) {
	var notified atomic.Int64
	e := New("test", 0, 0,
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) { notified.Add(1) },
		zap.NewNop())

	e.cycle(context.Background(), true)
	assert.Equal(t, int64(1), notified.Load())
}

func TestCycleFailedRunSkipsNotify(t *testing.T) {
	var notified atomic.Int64
	e := New("test", 0, 0,
		func(ctx context.Context) error { return context.Canceled },
		func(ctx context.Context) { notified.Add(1) },
		zap.NewNop())

	e.cycle(context.Background(), true)
	assert.Equal(t, int64(0), notified.Load(), "aborted refresh must not notify")
}

func TestCycleOverlapGuard(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var runs atomic.Int64

	e := New("test", 0, 0,
		func(ctx context.Context) error {
			runs.Add(1)
			close(entered)
			<-release
			return nil
		},
		nil,
		zap.NewNop())

	done := make(chan struct{})
	go func() {
		e.cycle(context.Background(), true)
		close(done)
	}()
	<-entered

	// A second trigger while the first is in flight must be skipped.
	e.cycle(context.Background(), true)
	assert.Equal(t, int64(1), runs.Load(), "overlapping cycle must be skipped, not queued")

	close(release)
	<-done
}

func TestStartStopsOnCancel(t *testing.T) {
	var runs atomic.Int64
	e := New("test", 0, 0,
		func(ctx context.Context) error { runs.Add(1); return nil },
		nil,
		zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- e.Start(ctx) }()

	// Give the startup cycle time to run, then shut down.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop on cancellation")
	}
	assert.Equal(t, int64(1), runs.Load(), "only the startup cycle should have run")
}
