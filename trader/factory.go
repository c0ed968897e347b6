// Package trader implements a single autonomous trader: the factory that
// configures its agent, the resources one run needs and the run lifecycle
// that alternates between trading and rebalancing.
package trader

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/tradingfloor/agent"
	"github.com/hupe1980/tradingfloor/core"
	"github.com/hupe1980/tradingfloor/logging"
	"github.com/hupe1980/tradingfloor/logstore"
	"github.com/hupe1980/tradingfloor/market"
	"github.com/hupe1980/tradingfloor/model"
	"github.com/hupe1980/tradingfloor/prompt"
	"github.com/hupe1980/tradingfloor/tool"
)

// Identity is the static description of a trader on the roster.
type Identity struct {
	Name      string
	Strategy  string // display tag, e.g. "Patience"
	ModelID   string
	ModelName string // display name, e.g. "GPT 4o mini"
}

// Factory builds configured trader agents. Build makes no network calls.
type Factory struct {
	Resolver    model.Resolver
	Sink        logstore.Sink
	Plan        market.Plan
	MaxTurns    int
	ToolTimeout time.Duration
	Logger      logging.Logger
}

// Build returns the agent for id with the researcher tool first, followed by
// the extra tools.
func (f *Factory) Build(ctx context.Context, id Identity, researcher tool.Tool, extra []tool.Tool) (core.Agent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id.Name == "" {
		return nil, fmt.Errorf("trader identity has no name")
	}

	llm, err := f.Resolver.Resolve(id.ModelID)
	if err != nil {
		return nil, fmt.Errorf("trader %s model: %w", id.Name, err)
	}

	tools := make([]tool.Tool, 0, len(extra)+1)
	if researcher != nil {
		tools = append(tools, researcher)
	}
	tools = append(tools, extra...)

	var hooks core.Hooks
	if f.Sink != nil {
		hooks = append(hooks, logstore.NewHook(f.Sink, id.Name, f.Logger))
	}

	return agent.NewModelAgent(id.Name, llm, func(o *agent.ModelAgentOptions) {
		o.Description = fmt.Sprintf("%s (%s) trading with %s", id.Name, id.Strategy, id.ModelID)
		o.Instruction = agent.NewInstructionFromText(prompt.TraderInstructions(id.Name, f.Plan))
		o.Tools = tools
		if f.MaxTurns > 0 {
			o.MaxTurns = f.MaxTurns
		}
		o.ToolTimeout = f.ToolTimeout
		o.Hooks = hooks
		if f.Logger != nil {
			o.Logger = f.Logger
		}
	}), nil
}
