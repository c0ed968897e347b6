package trader

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hupe1980/tradingfloor/account"
	"github.com/hupe1980/tradingfloor/core"
	"github.com/hupe1980/tradingfloor/logging"
	"github.com/hupe1980/tradingfloor/logstore"
	"github.com/hupe1980/tradingfloor/prompt"
)

// Options configure a Trader.
type Options struct {
	// InvocationTimeout bounds the agent invocation; 0 means no bound.
	InvocationTimeout time.Duration
	Sink              logstore.Sink
	Logger            logging.Logger
	Now               func() time.Time
}

// Trader owns one roster entry and its durable mode. A Trader is driven by a
// single scheduler; Run must not be called concurrently on the same Trader.
type Trader struct {
	id          Identity
	factory     *Factory
	provisioner Provisioner
	sink        logstore.Sink
	timeout     time.Duration
	logger      logging.Logger
	now         func() time.Time

	rebalance atomic.Bool // false: the next run trades
}

// New creates a trader whose first run trades.
func New(id Identity, factory *Factory, provisioner Provisioner, optFns ...func(o *Options)) *Trader {
	opts := Options{
		Logger: logging.NoOpLogger{},
		Now:    time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Sink == nil {
		opts.Sink = factory.Sink
	}
	return &Trader{
		id:          id,
		factory:     factory,
		provisioner: provisioner,
		sink:        opts.Sink,
		timeout:     opts.InvocationTimeout,
		logger:      opts.Logger,
		now:         opts.Now,
	}
}

// Name returns the trader's name.
func (t *Trader) Name() string { return t.id.Name }

// Identity returns the roster entry.
func (t *Trader) Identity() Identity { return t.id }

// Trading reports whether the next run trades (true) or rebalances (false).
func (t *Trader) Trading() bool { return !t.rebalance.Load() }

func modeName(trading bool) string {
	if trading {
		return "trading"
	}
	return "rebalancing"
}

// Run performs one trading or rebalancing run. The mode flips exactly once
// before Run returns, whether the run succeeded or not. Panics are recovered
// and returned as errors.
func (t *Trader) Run(ctx context.Context) (err error) {
	trading := t.Trading()
	mode := modeName(trading)
	traceName := fmt.Sprintf("%s-%s", t.id.Name, mode)
	traceID := MakeTraceID(strings.ToLower(t.id.Name))
	start := time.Now()

	defer t.rebalance.Store(trading)

	t.logger.Info("trader.run.start", "trader", t.id.Name, "mode", mode, "trace_id", traceID, "trace", "Started: "+traceName)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("trader %s panicked: %v", t.id.Name, r)
		}
		if err != nil {
			t.record(ctx, logstore.CategoryTrace, fmt.Sprintf("Error: %v", err))
			t.logger.Error("trader.run.failed", "trader", t.id.Name, "mode", mode, "trace_id", traceID,
				"duration_ms", time.Since(start).Milliseconds(), "error", err.Error())
			return
		}
		t.record(ctx, logstore.CategoryTrace, "Ended: "+traceName)
		t.logger.Info("trader.run.completed", "trader", t.id.Name, "mode", mode, "trace_id", traceID,
			"duration_ms", time.Since(start).Milliseconds())
	}()

	result, err := t.run(ctx, trading)
	if err != nil {
		return err
	}

	t.record(ctx, logstore.CategoryAgent, fmt.Sprintf("Completed %s - stop reason: %s", mode, result.StopReason))
	return nil
}

func (t *Trader) run(ctx context.Context, trading bool) (core.Result, error) {
	res, err := t.provisioner.Provision(ctx, t.id)
	if err != nil {
		return core.Result{}, err
	}
	defer func() {
		if cerr := res.Close(); cerr != nil {
			t.logger.Warn("trader.resources.close_failed", "trader", t.id.Name, "error", cerr.Error())
		}
	}()

	a, err := t.factory.Build(ctx, t.id, res.Researcher, res.Tools)
	if err != nil {
		return core.Result{}, err
	}

	report, err := account.Report(ctx, res.Accounts, t.id.Name)
	if err != nil {
		return core.Result{}, err
	}
	strategy, err := res.Accounts.ReadStrategy(ctx, t.id.Name)
	if err != nil {
		return core.Result{}, err
	}

	var message string
	if trading {
		message = prompt.TradeMessage(t.id.Name, strategy, report, t.factory.Plan, t.now())
	} else {
		message = prompt.RebalanceMessage(t.id.Name, strategy, report, t.factory.Plan, t.now())
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	result, err := a.Invoke(ctx, message)
	if err != nil {
		return core.Result{}, fmt.Errorf("invoke %s: %w", t.id.Name, err)
	}
	return result, nil
}

// record writes to the sink even when ctx is already cancelled; a failed
// write is logged and otherwise ignored.
func (t *Trader) record(ctx context.Context, category, message string) {
	if t.sink == nil {
		return
	}
	if err := t.sink.Write(context.WithoutCancel(ctx), t.id.Name, category, message); err != nil {
		t.logger.Warn("trader.log.write_failed", "trader", t.id.Name, "category", category, "error", err.Error())
	}
}

const traceAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// MakeTraceID returns "trace_" followed by tag, a "0" separator and random
// lowercase alphanumerics filling the id up to 32 characters.
func MakeTraceID(tag string) string {
	tag += "0"
	pad := 32 - len(tag)
	if pad < 0 {
		pad = 0
	}
	suffix := make([]byte, pad)
	for i := range suffix {
		suffix[i] = traceAlphabet[rand.IntN(len(traceAlphabet))]
	}
	return "trace_" + tag + string(suffix)
}
