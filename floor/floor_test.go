package floor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/tradingfloor/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	name  string
	err   error
	panic bool
	calls atomic.Int32
	run   func(ctx context.Context) error
}

func (r *fakeRunner) Name() string { return r.name }

func (r *fakeRunner) Run(ctx context.Context) error {
	r.calls.Add(1)
	if r.panic {
		panic("boom")
	}
	if r.run != nil {
		return r.run(ctx)
	}
	return r.err
}

func runners(rs ...*fakeRunner) []Runner {
	out := make([]Runner, len(rs))
	for i, r := range rs {
		out[i] = r
	}
	return out
}

func ungated(o *Options) { o.RunWhenClosed = true }

func closedClock(o *Options) {
	o.Clock = market.ClockFunc(func(context.Context, time.Time) (bool, error) { return false, nil })
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, ungated)
	assert.ErrorIs(t, err, ErrEmptyRoster)

	_, err = New(runners(&fakeRunner{name: "Warren"}, &fakeRunner{name: "Warren"}), ungated)
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = New(runners(&fakeRunner{name: "Warren"}, &fakeRunner{name: "warren"}), ungated)
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = New(runners(&fakeRunner{name: "Ray.D"}, &fakeRunner{name: "Ray_D"}), ungated)
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = New(runners(&fakeRunner{name: "Warren"}))
	assert.ErrorContains(t, err, "without a clock")

	f, err := New(runners(&fakeRunner{name: "Warren"}), closedClock)
	require.NoError(t, err)
	assert.Len(t, f.Runners(), 1)
}

func TestRunOnce_OneOutcomePerTrader(t *testing.T) {
	warren := &fakeRunner{name: "Warren"}
	george := &fakeRunner{name: "George", err: errors.New("rate limited")}
	ray := &fakeRunner{name: "Ray"}
	cathie := &fakeRunner{name: "Cathie", panic: true}

	var cycles []Summary
	f, err := New(runners(warren, george, ray, cathie), closedClock, func(o *Options) {
		o.OnCycle = func(s Summary) { cycles = append(cycles, s) }
	})
	require.NoError(t, err)

	s := f.RunOnce(context.Background())
	require.Len(t, s.Outcomes, 4)
	assert.Equal(t, 2, s.Succeeded())
	assert.Equal(t, 2, s.Failed())
	assert.False(t, s.AllSucceeded())

	names := []string{}
	for _, o := range s.Outcomes {
		names = append(names, o.Trader)
	}
	assert.Equal(t, []string{"Warren", "George", "Ray", "Cathie"}, names)
	assert.True(t, s.Outcomes[0].OK())
	assert.EqualError(t, s.Outcomes[1].Err, "rate limited")
	assert.ErrorContains(t, s.Outcomes[3].Err, "trader Cathie panicked: boom")
	assert.Len(t, cycles, 1)
}

func TestRunCycle_RunsTradersConcurrently(t *testing.T) {
	const n = 4
	var started sync.WaitGroup
	started.Add(n)
	barrier := func(ctx context.Context) error {
		started.Done()
		done := make(chan struct{})
		go func() { started.Wait(); close(done) }()
		select {
		case <-done:
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("traders did not run concurrently")
		}
	}

	var rs []*fakeRunner
	for _, name := range []string{"Warren", "George", "Ray", "Cathie"} {
		rs = append(rs, &fakeRunner{name: name, run: barrier})
	}
	f, err := New(runners(rs...), ungated)
	require.NoError(t, err)

	s := f.RunCycle(context.Background())
	assert.True(t, s.AllSucceeded())
}

func TestTick_GateClosedInvokesNobody(t *testing.T) {
	for name, clock := range map[string]market.Clock{
		"closed": market.ClockFunc(func(context.Context, time.Time) (bool, error) { return false, nil }),
		"error": market.ClockFunc(func(context.Context, time.Time) (bool, error) {
			return false, market.ErrCalendarUnavailable
		}),
	} {
		t.Run(name, func(t *testing.T) {
			warren := &fakeRunner{name: "Warren"}
			skipped := 0
			f, err := New(runners(warren), func(o *Options) {
				o.Clock = clock
				o.OnSkip = func(time.Time) { skipped++ }
			})
			require.NoError(t, err)

			_, ran := f.Tick(context.Background())
			assert.False(t, ran)
			assert.Zero(t, warren.calls.Load())
			assert.Equal(t, 1, skipped)
		})
	}
}

func TestTick_OpenOrUngated(t *testing.T) {
	warren := &fakeRunner{name: "Warren"}
	f, err := New(runners(warren), func(o *Options) {
		o.Clock = market.ClockFunc(func(context.Context, time.Time) (bool, error) { return true, nil })
	})
	require.NoError(t, err)
	s, ran := f.Tick(context.Background())
	assert.True(t, ran)
	assert.Len(t, s.Outcomes, 1)

	g, err := New(runners(warren), ungated, func(o *Options) {
		o.Clock = market.ClockFunc(func(context.Context, time.Time) (bool, error) { return false, nil })
	})
	require.NoError(t, err)
	_, ran = g.Tick(context.Background())
	assert.True(t, ran)
	assert.Equal(t, int32(2), warren.calls.Load())
}

func TestRunOnce_IgnoresGate(t *testing.T) {
	warren := &fakeRunner{name: "Warren"}
	f, err := New(runners(warren), closedClock)
	require.NoError(t, err)
	s := f.RunOnce(context.Background())
	assert.Len(t, s.Outcomes, 1)
	assert.Equal(t, int32(1), warren.calls.Load())
}

func TestRunForever_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	warren := &fakeRunner{name: "Warren"}
	cycles := atomic.Int32{}
	f, err := New(runners(warren), ungated, func(o *Options) {
		o.Interval = 5 * time.Millisecond
		o.OnCycle = func(Summary) {
			if cycles.Add(1) == 3 {
				cancel()
			}
		}
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- f.RunForever(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunForever did not return after cancellation")
	}
	assert.Equal(t, int32(3), cycles.Load())
	assert.Equal(t, int32(3), warren.calls.Load())
}

func TestRunForever_CancelledDuringCycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	warren := &fakeRunner{name: "Warren", run: func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	}}
	var last Summary
	f, err := New(runners(warren), ungated, func(o *Options) {
		o.Interval = time.Hour
		o.OnCycle = func(s Summary) { last = s }
	})
	require.NoError(t, err)

	require.NoError(t, f.RunForever(ctx))
	require.Len(t, last.Outcomes, 1)
	assert.ErrorIs(t, last.Outcomes[0].Err, context.Canceled)
}
