package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/tradingfloor/core"
	"github.com/hupe1980/tradingfloor/logging"
	"github.com/hupe1980/tradingfloor/model"
	"github.com/hupe1980/tradingfloor/tool"
)

// DefaultMaxTurns is the number of model turns one invocation may take.
const DefaultMaxTurns = 30

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	Description      string
	Instruction      Instruction
	Tools            []tool.Tool
	MaxTurns         int           // 0 means unlimited
	MaxParallelTools int           // 0 means no limit
	ToolTimeout      time.Duration // 0 means no per-tool deadline
	Hooks            core.Hooks
	Logger           logging.Logger
}

// ModelAgent integrates a language model with a set of tools.
//
// One invocation runs the loop: ask the model, execute the tool calls it
// requested, feed the results back, until the model answers without tool
// calls or the turn budget is spent. A ModelAgent keeps no conversation state
// between invocations and is safe for concurrent use.
type ModelAgent struct {
	BaseAgent
	llm              model.Model
	instruction      Instruction
	tools            []tool.Tool
	maxTurns         int
	maxParallelTools int
	toolTimeout      time.Duration
	hooks            core.Hooks
	logger           logging.Logger
}

// NewModelAgent creates a new model-based agent with sensible defaults.
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction:      NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		MaxTurns:         DefaultMaxTurns,
		MaxParallelTools: 4,
		Logger:           logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	a := &ModelAgent{
		BaseAgent:        NewBaseAgent(name),
		llm:              llm,
		instruction:      opts.Instruction,
		tools:            opts.Tools,
		maxTurns:         opts.MaxTurns,
		maxParallelTools: opts.MaxParallelTools,
		toolTimeout:      opts.ToolTimeout,
		hooks:            opts.Hooks,
		logger:           opts.Logger,
	}
	if opts.Description != "" {
		a.SetDescription(opts.Description)
	}
	return a
}

// Tools returns the tools available to the model.
func (a *ModelAgent) Tools() []tool.Tool {
	return append([]tool.Tool(nil), a.tools...)
}

// Model returns the bound language model.
func (a *ModelAgent) Model() model.Model { return a.llm }

// Invoke implements core.Agent.
//
// Reaching the turn budget is not an error: the result carries
// core.StopMaxTurns and whatever text the last turn produced.
func (a *ModelAgent) Invoke(ctx context.Context, message string) (res core.Result, err error) {
	start := time.Now()
	modelName := a.llm.Info().Name

	a.hooks.OnEvent(ctx, core.HookEvent{Type: core.HookBeforeInvocation, Agent: a.Name(), Model: modelName})
	defer func() {
		a.hooks.OnEvent(ctx, core.HookEvent{
			Type:       core.HookAfterInvocation,
			Agent:      a.Name(),
			Model:      modelName,
			StopReason: res.StopReason,
			Duration:   time.Since(start),
			Err:        err,
		})
	}()

	instructions, err := a.instruction.Resolve(ctx)
	if err != nil {
		return core.Result{}, fmt.Errorf("resolve instructions for %s: %w", a.Name(), err)
	}

	exec := &toolExecutor{
		agent:       core.AgentInfo{Name: a.Name(), Type: "model"},
		tools:       a.tools,
		maxParallel: a.maxParallelTools,
		timeout:     a.toolTimeout,
		hooks:       a.hooks,
		logger:      a.logger,
	}

	defs := toolDefinitions(a.tools)
	contents := []core.Content{core.NewTextContent("user", message)}
	limiter := core.NewTurnLimiter(a.maxTurns)

	for {
		if limiter.Take() != nil {
			a.logger.Warn("agent.turn_limit", "agent", a.Name(), "turns", limiter.Taken())
			return core.Result{Text: lastText(contents), StopReason: core.StopMaxTurns, Turns: limiter.Taken()}, nil
		}

		resp, err := a.generate(ctx, model.Request{
			Instructions: instructions,
			Contents:     contents,
			Tools:        defs,
		})
		if err != nil {
			return core.Result{Turns: limiter.Taken()}, err
		}
		contents = append(contents, resp.Content)

		calls := resp.Content.FunctionCalls()
		if len(calls) == 0 {
			return core.Result{
				Text:       resp.Content.Text(),
				StopReason: model.StopReason(resp.FinishReason),
				Turns:      limiter.Taken(),
			}, nil
		}

		contents = append(contents, core.Content{Role: "tool", Parts: exec.execute(ctx, calls)})

		if err := ctx.Err(); err != nil {
			return core.Result{Turns: limiter.Taken()}, err
		}
	}
}

func (a *ModelAgent) generate(ctx context.Context, req model.Request) (model.Response, error) {
	info := a.llm.Info()
	a.hooks.OnEvent(ctx, core.HookEvent{Type: core.HookBeforeModelCall, Agent: a.Name(), Model: info.Name})

	start := time.Now()
	respCh, errCh := a.llm.Generate(ctx, req)
	resp, err := model.Collect(ctx, respCh, errCh)
	dur := time.Since(start)

	logging.LogLLMCall(a.logger, a.Name(), info.Name, dur, err)
	a.hooks.OnEvent(ctx, core.HookEvent{Type: core.HookAfterModelCall, Agent: a.Name(), Model: info.Name, Duration: dur, Err: err})

	if err != nil {
		return model.Response{}, fmt.Errorf("model %s: %w", info.Name, err)
	}
	return resp, nil
}

func toolDefinitions(tools []tool.Tool) []model.ToolDefinition {
	if len(tools) == 0 {
		return nil
	}
	defs := make([]model.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		params := t.Parameters()
		if params == nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  params,
			},
		})
	}
	return defs
}

func lastText(contents []core.Content) string {
	for i := len(contents) - 1; i >= 0; i-- {
		if contents[i].Role == "assistant" {
			if text := contents[i].Text(); text != "" {
				return text
			}
		}
	}
	return ""
}

var _ core.Agent = (*ModelAgent)(nil)
