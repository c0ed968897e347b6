// Package research builds the researcher agent each trader consults, wrapped
// as a tool. Every researcher gets its own memory store, keyed by the trader
// it works for.
package research

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/tradingfloor/agent"
	"github.com/hupe1980/tradingfloor/core"
	"github.com/hupe1980/tradingfloor/logging"
	"github.com/hupe1980/tradingfloor/logstore"
	"github.com/hupe1980/tradingfloor/memory"
	"github.com/hupe1980/tradingfloor/model"
	"github.com/hupe1980/tradingfloor/prompt"
	"github.com/hupe1980/tradingfloor/tool"
	"github.com/hupe1980/tradingfloor/tool/mcp"
)

// ToolName is the name the trader model sees for the researcher.
const ToolName = "Researcher"

// Factory creates researcher tools.
type Factory struct {
	Resolver model.Resolver
	Memory   memory.Opener
	Servers  []mcp.ServerSpec
	Sink     logstore.Sink
	MaxTurns int
	Logger   logging.Logger

	// Launch opens Servers; nil means mcp.OpenAll.
	Launch mcp.Launcher
	// Now stamps the instructions; nil means time.Now.
	Now func() time.Time
}

// MakeTool builds a fresh researcher for traderName backed by modelID. The
// returned closer releases the researcher's servers and memory store and
// must be called once the trader's run is over.
func (f *Factory) MakeTool(ctx context.Context, traderName, modelID string) (tool.Tool, func() error, error) {
	logger := f.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	llm, err := f.Resolver.Resolve(modelID)
	if err != nil {
		return nil, nil, fmt.Errorf("researcher model: %w", err)
	}

	store, err := f.Memory.Open(traderName)
	if err != nil {
		return nil, nil, fmt.Errorf("researcher memory for %s: %w", traderName, err)
	}

	launch := f.Launch
	if launch == nil {
		launch = mcp.OpenAll
	}
	sets, err := launch(ctx, f.Servers, logger)
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("researcher servers: %w", err), store.Close())
	}

	closer := func() error {
		return errors.Join(mcp.CloseAll(sets), store.Close())
	}

	tools := append(mcp.Tools(sets), memory.Tools(store)...)

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	var hooks core.Hooks
	if f.Sink != nil {
		hooks = append(hooks, logstore.NewHook(f.Sink, traderName, logger))
	}

	researcher := agent.NewModelAgent(ToolName, llm, func(o *agent.ModelAgentOptions) {
		o.Description = prompt.ResearchToolDescription()
		o.Instruction = agent.NewInstructionFromFunc(func(context.Context) (string, error) {
			return prompt.ResearcherInstructions(now()), nil
		})
		o.Tools = tools
		if f.MaxTurns > 0 {
			o.MaxTurns = f.MaxTurns
		}
		o.Hooks = hooks
		o.Logger = logger
	})

	logger.Debug("research.tool.created", "trader", traderName, "model", modelID, "tools", len(tools))

	return agent.AsTool(researcher, ToolName, prompt.ResearchToolDescription()), closer, nil
}
