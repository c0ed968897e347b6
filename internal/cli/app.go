package cli

import (
	"errors"
	"fmt"

	"github.com/hupe1980/tradingfloor/config"
	"github.com/hupe1980/tradingfloor/floor"
	"github.com/hupe1980/tradingfloor/logging"
	"github.com/hupe1980/tradingfloor/logstore"
	"github.com/hupe1980/tradingfloor/market"
	"github.com/hupe1980/tradingfloor/memory"
	"github.com/hupe1980/tradingfloor/model/provider"
	"github.com/hupe1980/tradingfloor/notify"
	"github.com/hupe1980/tradingfloor/research"
	"github.com/hupe1980/tradingfloor/tool"
	"github.com/hupe1980/tradingfloor/trader"
)

// App is a fully wired trading floor.
type App struct {
	Config  *config.Config
	Floor   *floor.Floor
	Traders []*trader.Trader
	Sink    *logstore.GormSink
	Clock   market.Clock
}

// NewClock picks Polygon's market status when a key is configured and the
// static NYSE calendar otherwise.
func NewClock(cfg *config.Config) (market.Clock, error) {
	if cfg.PolygonAPIKey != "" {
		return market.NewPolygonClock(cfg.PolygonAPIKey), nil
	}
	return market.NewSessionClock()
}

// NewApp wires every component from cfg. The floor options are applied on
// top of the configured interval and gate.
func NewApp(cfg *config.Config, logger logging.Logger, floorOpts ...func(o *floor.Options)) (*App, error) {
	sink, err := logstore.OpenGormSink(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	clock, err := NewClock(cfg)
	if err != nil {
		return nil, errors.Join(err, sink.Close())
	}

	resolver := provider.NewResolver(cfg.Credentials)

	researchFactory := &research.Factory{
		Resolver: resolver,
		Memory:   memory.SQLiteOpener(cfg.MemoryDir),
		Servers:  cfg.ResearcherServers,
		Sink:     sink,
		MaxTurns: cfg.MaxTurns,
		Logger:   logger,
	}

	traderServers := cfg.TraderServers
	var extra []tool.Tool
	if cfg.PushoverEnabled() {
		extra = append(extra, notify.Tool(notify.NewPushover(cfg.PushoverToken, cfg.PushoverUser)))
		traderServers = config.WithoutServer(traderServers, "push")
	}

	factory := &trader.Factory{
		Resolver: resolver,
		Sink:     sink,
		Plan:     cfg.PolygonPlan,
		MaxTurns: cfg.MaxTurns,
		Logger:   logger,
	}
	provisioner := &trader.MCPProvisioner{
		Servers:  traderServers,
		Research: researchFactory,
		Extra:    extra,
		Logger:   logger,
	}

	traders := make([]*trader.Trader, 0, len(cfg.Roster))
	runners := make([]floor.Runner, 0, len(cfg.Roster))
	for _, m := range cfg.Roster {
		traderLogger := logger
		if fl, ok := logger.(*logging.FloorLogger); ok {
			traderLogger = fl.WithComponent("trader").WithContext("trader", m.Name)
		}
		t := trader.New(trader.Identity{
			Name:      m.Name,
			Strategy:  m.Strategy,
			ModelID:   m.ModelID,
			ModelName: m.ModelName,
		}, factory, provisioner, func(o *trader.Options) {
			o.InvocationTimeout = cfg.InvocationTimeout
			o.Logger = traderLogger
		})
		traders = append(traders, t)
		runners = append(runners, t)
	}

	f, err := floor.New(runners, append([]func(o *floor.Options){func(o *floor.Options) {
		o.Interval = cfg.Interval
		o.RunWhenClosed = cfg.RunWhenClosed
		o.Clock = clock
		o.Logger = logger
	}}, floorOpts...)...)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%w: %v", config.ErrInvalidRoster, err), sink.Close())
	}

	return &App{Config: cfg, Floor: f, Traders: traders, Sink: sink, Clock: clock}, nil
}

// Close releases the log store.
func (a *App) Close() error { return a.Sink.Close() }
