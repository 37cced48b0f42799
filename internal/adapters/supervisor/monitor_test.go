package supervisor_test

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.halyard.dev/halyard/internal/adapters/supervisor"
	"go.halyard.dev/halyard/internal/core/domain"
	"go.halyard.dev/halyard/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

// testLogger discards log output while satisfying ports.Logger.
type testLogger struct{}

func (testLogger) Info(string) {}
func (testLogger) Warn(string) {}
func (testLogger) Error(error) {}

// scriptedProber fails a fixed number of times, then succeeds forever.
type scriptedProber struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (p *scriptedProber) Check(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failures {
		return zerr.New("connection refused")
	}
	return nil
}

func (p *scriptedProber) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// hungProber never answers within any reasonable deadline. It still honors
// cancellation, like a probe command killed when its deadline passes.
type hungProber struct{}

func (hungProber) Check(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Hour):
		return nil
	}
}

// stallingProber hangs a fixed number of times, then answers immediately.
type stallingProber struct {
	mu    sync.Mutex
	hangs int
	calls int
}

func (p *stallingProber) Check(ctx context.Context) error {
	p.mu.Lock()
	p.calls++
	hang := p.calls <= p.hangs
	p.mu.Unlock()

	if hang {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Hour):
		}
	}
	return nil
}

func testPolicy() domain.ProbePolicy {
	return domain.ProbePolicy{
		Interval: time.Second,
		Grace:    2 * time.Second,
		Timeout:  500 * time.Millisecond,
		Retries:  3,
	}
}

func TestMonitor_UnhealthyAfterRetryBudget(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		prober := &scriptedProber{failures: 1 << 30}
		m := supervisor.NewMonitor(prober, testPolicy(), testLogger{})

		err := m.Run(context.Background())
		require.ErrorIs(t, err, domain.ErrUnhealthy)
		assert.Equal(t, domain.HealthUnhealthy, m.State())
		assert.Equal(t, 3, prober.callCount(), "exactly the retry budget is spent")
	})
}

func TestMonitor_SuccessResetsFailureBudget(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		// Two failures, then sustained success: never reaches the budget of 3.
		prober := &scriptedProber{failures: 2}
		m := supervisor.NewMonitor(prober, testPolicy(), testLogger{})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- m.Run(ctx) }()

		// Grace period plus enough intervals to cover the failures and a
		// couple of successes.
		time.Sleep(2*time.Second + 5*time.Second + 100*time.Millisecond)
		synctest.Wait()

		assert.Equal(t, domain.HealthHealthy, m.State())

		cancel()
		require.NoError(t, <-done, "cancellation is a clean stop, not a failure")
	})
}

func TestMonitor_NoProbeDuringGrace(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		prober := &scriptedProber{}
		m := supervisor.NewMonitor(prober, testPolicy(), testLogger{})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- m.Run(ctx) }()

		// Just shy of grace plus the first interval: no check may have run.
		time.Sleep(2*time.Second + 900*time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 0, prober.callCount())

		cancel()
		require.NoError(t, <-done)
	})
}

func TestMonitor_HungProbeCountsAsFailure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := supervisor.NewMonitor(hungProber{}, testPolicy(), testLogger{})

		err := m.Run(context.Background())
		require.ErrorIs(t, err, domain.ErrUnhealthy)
	})
}

func TestMonitor_RecoveryAfterHungProbes(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		// Two timed-out checks, then immediate answers: the budget of 3 is
		// never reached and the instance stays healthy.
		prober := &stallingProber{hangs: 2}
		m := supervisor.NewMonitor(prober, testPolicy(), testLogger{})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- m.Run(ctx) }()

		// Grace, two hung checks (each held to the probe timeout), then a
		// successful one.
		time.Sleep(2*time.Second + 3*time.Second + 100*time.Millisecond)
		synctest.Wait()
		assert.Equal(t, domain.HealthHealthy, m.State())

		cancel()
		require.NoError(t, <-done, "cancellation is a clean stop, not a failure")
	})
}

func TestMonitor_LogsEachProbeFailure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		prober := mocks.NewMockProber(ctrl)
		prober.EXPECT().Check(gomock.Any()).Return(zerr.New("connection refused")).Times(3)
		log := mocks.NewMockLogger(ctrl)
		log.EXPECT().Warn(gomock.Any()).Times(3)

		m := supervisor.NewMonitor(prober, testPolicy(), log)
		require.ErrorIs(t, m.Run(context.Background()), domain.ErrUnhealthy)
	})
}

func TestMonitor_CheckOnce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		healthy := supervisor.NewMonitor(&scriptedProber{}, testPolicy(), testLogger{})
		require.NoError(t, healthy.CheckOnce(context.Background()))

		hung := supervisor.NewMonitor(hungProber{}, testPolicy(), testLogger{})
		require.ErrorIs(t, hung.CheckOnce(context.Background()), domain.ErrProbeTimeout)
	})
}

func TestMonitor_CancellationBeforeGrace(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := supervisor.NewMonitor(&scriptedProber{}, testPolicy(), testLogger{})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.NoError(t, m.Run(ctx))
	})
}
