// Package floor schedules the traders of a roster. Every tick it checks the
// market gate, runs all traders concurrently, waits for every one of them and
// reports one outcome per trader.
package floor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/tradingfloor/core"
	"github.com/hupe1980/tradingfloor/logging"
	"github.com/hupe1980/tradingfloor/market"
	"golang.org/x/sync/errgroup"
)

// DefaultInterval is the pause between ticks.
const DefaultInterval = 60 * time.Minute

var (
	// ErrEmptyRoster is returned by New when there are no traders.
	ErrEmptyRoster = errors.New("roster has no traders")
	// ErrDuplicateName is returned by New when two traders share a name.
	ErrDuplicateName = errors.New("duplicate trader name")
)

// Runner is one trader as seen by the floor.
type Runner interface {
	Name() string
	Run(ctx context.Context) error
}

// Outcome is the result of one trader in one cycle.
type Outcome struct {
	Trader string
	Err    error
}

// OK reports whether the trader completed its run.
func (o Outcome) OK() bool { return o.Err == nil }

// Summary aggregates one cycle.
type Summary struct {
	Started  time.Time
	Duration time.Duration
	Outcomes []Outcome
}

// Succeeded counts the successful outcomes.
func (s Summary) Succeeded() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// Failed counts the failed outcomes.
func (s Summary) Failed() int { return len(s.Outcomes) - s.Succeeded() }

// AllSucceeded reports whether every trader completed.
func (s Summary) AllSucceeded() bool { return s.Failed() == 0 }

// Options configure a Floor.
type Options struct {
	Interval time.Duration
	// RunWhenClosed skips the market gate.
	RunWhenClosed bool
	Clock         market.Clock
	Logger        logging.Logger
	// OnCycle is called after every completed cycle.
	OnCycle func(Summary)
	// OnSkip is called when the gate skips a tick.
	OnSkip func(now time.Time)
	Now    func() time.Time
}

// Floor owns a roster and drives it.
type Floor struct {
	runners       []Runner
	interval      time.Duration
	runWhenClosed bool
	clock         market.Clock
	logger        logging.Logger
	onCycle       func(Summary)
	onSkip        func(time.Time)
	now           func() time.Time
}

// New creates a floor over runners. Names must be unique.
func New(runners []Runner, optFns ...func(o *Options)) (*Floor, error) {
	opts := Options{
		Interval: DefaultInterval,
		Logger:   logging.NoOpLogger{},
		Now:      time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	if len(runners) == 0 {
		return nil, ErrEmptyRoster
	}
	seen := make(map[string]struct{}, len(runners))
	for _, r := range runners {
		key := core.TraderKey(r.Name())
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, r.Name())
		}
		seen[key] = struct{}{}
	}
	if !opts.RunWhenClosed && opts.Clock == nil {
		return nil, fmt.Errorf("market gate enabled without a clock")
	}

	return &Floor{
		runners:       runners,
		interval:      opts.Interval,
		runWhenClosed: opts.RunWhenClosed,
		clock:         opts.Clock,
		logger:        opts.Logger,
		onCycle:       opts.OnCycle,
		onSkip:        opts.OnSkip,
		now:           opts.Now,
	}, nil
}

// Runners returns the roster in order.
func (f *Floor) Runners() []Runner { return f.runners }

// RunCycle runs every trader concurrently and waits for all of them. One
// failing trader never stops the others; its error lands in its own outcome.
func (f *Floor) RunCycle(ctx context.Context) Summary {
	start := f.now()
	outcomes := make([]Outcome, len(f.runners))

	var g errgroup.Group
	for i, r := range f.runners {
		g.Go(func() error {
			outcomes[i] = Outcome{Trader: r.Name(), Err: runSafely(ctx, r)}
			return nil
		})
	}
	_ = g.Wait()

	s := Summary{Started: start, Duration: f.now().Sub(start), Outcomes: outcomes}
	for _, o := range outcomes {
		if !o.OK() {
			f.logger.Warn("floor.trader.failed", "trader", o.Trader, "error", o.Err.Error())
		}
	}
	logging.LogCycle(f.logger, s.Succeeded(), len(outcomes), s.Duration)
	return s
}

func runSafely(ctx context.Context, r Runner) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("trader %s panicked: %v", r.Name(), p)
		}
	}()
	return r.Run(ctx)
}

// Open reports whether the gate lets a tick through. A clock error counts as
// closed.
func (f *Floor) Open(ctx context.Context) bool {
	if f.runWhenClosed {
		return true
	}
	open, err := market.IsOpen(ctx, f.clock, f.now())
	if err != nil {
		f.logger.Warn("floor.clock.unavailable", "error", err.Error())
		return false
	}
	return open
}

// Tick runs one gated cycle. It reports false, with no trader invoked, when
// the gate is closed.
func (f *Floor) Tick(ctx context.Context) (Summary, bool) {
	if !f.Open(ctx) {
		f.logger.Info("floor.tick.skipped", "reason", "market closed")
		if f.onSkip != nil {
			f.onSkip(f.now())
		}
		return Summary{}, false
	}
	s := f.RunCycle(ctx)
	if f.onCycle != nil {
		f.onCycle(s)
	}
	return s, true
}

// RunOnce runs exactly one cycle, ignoring the gate.
func (f *Floor) RunOnce(ctx context.Context) Summary {
	s := f.RunCycle(ctx)
	if f.onCycle != nil {
		f.onCycle(s)
	}
	return s
}

// RunForever ticks until ctx is cancelled and then returns nil.
func (f *Floor) RunForever(ctx context.Context) error {
	f.logger.Info("floor.started", "traders", len(f.runners), "interval", f.interval, "gated", !f.runWhenClosed)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("floor.stopped", "reason", ctx.Err().Error())
			return nil
		case <-timer.C:
		}

		f.Tick(ctx)
		if ctx.Err() != nil {
			continue
		}
		f.logger.Info("floor.sleeping", "interval", f.interval)
		timer.Reset(f.interval)
	}
}
