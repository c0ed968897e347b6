package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/hupe1980/tradingfloor/core"
	"github.com/hupe1980/tradingfloor/logging"
	"github.com/hupe1980/tradingfloor/tool"
	"golang.org/x/sync/errgroup"
)

// toolExecutor runs the function calls of one model turn. Every call yields
// exactly one FunctionResponsePart, in the order the calls were requested,
// whether the tool succeeded, failed, panicked or was cancelled.
type toolExecutor struct {
	agent       core.AgentInfo
	tools       []tool.Tool
	maxParallel int
	timeout     time.Duration
	hooks       core.Hooks
	logger      logging.Logger
}

func (e *toolExecutor) execute(ctx context.Context, calls []core.FunctionCall) []core.Part {
	parts := make([]core.Part, len(calls))

	g := new(errgroup.Group)
	if e.maxParallel > 0 {
		g.SetLimit(e.maxParallel)
	}

	batchStart := time.Now()
	for i, fc := range calls {
		g.Go(func() error {
			parts[i] = core.FunctionResponsePart{FunctionResponse: e.executeOne(ctx, fc)}
			return nil
		})
	}
	_ = g.Wait()

	e.logger.Debug(
		"agent.functions.batch.complete",
		"agent", e.agent.Name,
		"count", len(calls),
		"parallelism", e.maxParallel,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)

	return parts
}

func (e *toolExecutor) executeOne(ctx context.Context, fc core.FunctionCall) core.FunctionResponse {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	e.hooks.OnEvent(ctx, core.HookEvent{Type: core.HookBeforeToolCall, Agent: e.agent.Name, Tool: fc.Name, CallID: fc.ID})

	start := time.Now()
	var (
		result any
		err    error
	)
	if err = ctx.Err(); err == nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = panicError(fc.Name, r)
					e.logger.Error("agent.function.panic", "agent", e.agent.Name, "function", fc.Name, "recover", r)
				}
			}()
			toolCtx := core.NewToolContext(ctx, e.agent, fc.ID, e.logger)
			result, err = executeTool(e.tools, toolCtx, fc.Name, fc.Arguments)
		}()
	}
	dur := time.Since(start)

	logging.LogToolCall(e.logger, e.agent.Name, fc.Name, dur, err)
	e.hooks.OnEvent(ctx, core.HookEvent{Type: core.HookAfterToolCall, Agent: e.agent.Name, Tool: fc.Name, CallID: fc.ID, Duration: dur, Err: err})

	resp := core.FunctionResponse{ID: fc.ID, Name: fc.Name, Response: result}
	if err != nil {
		resp.Response = nil
		resp.Error = err.Error()
	}
	return resp
}

// executeTool centralizes tool lookup and argument decoding.
func executeTool(tools []tool.Tool, toolCtx *core.ToolContext, toolName, args string) (any, error) {
	impl, ok := tool.Find(tools, toolName)
	if !ok {
		return nil, tool.NewToolError(toolName, fmt.Sprintf("tool %s not found", toolName), tool.CodeNotFound)
	}

	argMap := map[string]any{}
	if args != "" {
		if err := json.Unmarshal([]byte(args), &argMap); err != nil {
			return nil, tool.NewToolError(toolName, fmt.Sprintf("failed to unmarshal args: %v", err), tool.CodeValidation)
		}
	}

	return impl.Call(toolCtx, argMap)
}

// panicError converts a recovered panic value to a ToolError carrying the stack.
func panicError(toolName string, r any) error {
	return &tool.ToolError{
		Tool:    toolName,
		Message: fmt.Sprintf("panic recovered: %v", r),
		Code:    tool.CodePanic,
		Details: string(debug.Stack()),
	}
}
