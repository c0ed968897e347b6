package agent

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/tradingfloor/core"
	"github.com/hupe1980/tradingfloor/model"
	"github.com/hupe1980/tradingfloor/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHook struct {
	mu     sync.Mutex
	events []core.HookEvent
}

func (h *recordingHook) OnEvent(_ context.Context, ev core.HookEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
}

func (h *recordingHook) types() []core.HookType {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]core.HookType, len(h.events))
	for i, ev := range h.events {
		out[i] = ev.Type
	}
	return out
}

func echoTool(name string) tool.Tool {
	return tool.NewFunctionTool(name, "Echo the input",
		map[string]any{
			"type":       "object",
			"properties": map[string]any{"text": map[string]any{"type": "string"}},
			"required":   []string{"text"},
		},
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			return "echo:" + args["text"].(string), nil
		},
	)
}

func TestModelAgent_NewAgentDefaults(t *testing.T) {
	llm := model.NewMockModel("gpt-4o-mini", "openai")
	a := NewModelAgent("Warren", llm)

	assert.Equal(t, "Warren", a.Name())
	assert.Equal(t, "Agent Warren", a.Description())
	assert.Equal(t, DefaultMaxTurns, a.maxTurns)
	assert.Empty(t, a.Tools())
	assert.Same(t, llm, a.Model())

	described := NewModelAgent("Warren", llm, func(o *ModelAgentOptions) { o.Description = "Value investor" })
	assert.Equal(t, "Value investor", described.Description())
}

func TestModelAgent_InvokeTextOnly(t *testing.T) {
	llm := model.NewMockModel("gpt-4o-mini", "openai")
	llm.EnqueueText("done trading")

	a := NewModelAgent("Warren", llm, func(o *ModelAgentOptions) {
		o.Instruction = NewInstructionFromText("You are Warren")
	})

	res, err := a.Invoke(context.Background(), "trade now")
	require.NoError(t, err)
	assert.Equal(t, "done trading", res.Text)
	assert.Equal(t, core.StopEndTurn, res.StopReason)
	assert.Equal(t, 1, res.Turns)

	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "You are Warren", reqs[0].Instructions)
	assert.Equal(t, "trade now", reqs[0].Contents[0].Text())
}

func TestModelAgent_ToolLoopAndHooks(t *testing.T) {
	llm := model.NewMockModel("gpt-4o-mini", "openai")
	llm.EnqueueToolCall("c1", "echo", `{"text":"hi"}`)
	llm.EnqueueText("final")

	hook := &recordingHook{}
	a := NewModelAgent("Warren", llm, func(o *ModelAgentOptions) {
		o.Tools = []tool.Tool{echoTool("echo")}
		o.Hooks = core.Hooks{hook}
	})

	res, err := a.Invoke(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, "final", res.Text)
	assert.Equal(t, 2, res.Turns)

	assert.Equal(t, []core.HookType{
		core.HookBeforeInvocation,
		core.HookBeforeModelCall,
		core.HookAfterModelCall,
		core.HookBeforeToolCall,
		core.HookAfterToolCall,
		core.HookBeforeModelCall,
		core.HookAfterModelCall,
		core.HookAfterInvocation,
	}, hook.types())

	reqs := llm.Requests()
	require.Len(t, reqs, 2)
	require.Len(t, reqs[0].Tools, 1)
	assert.Equal(t, "echo", reqs[0].Tools[0].Function.Name)

	last := reqs[1].Contents[len(reqs[1].Contents)-1]
	assert.Equal(t, "tool", last.Role)
	fr := last.Parts[0].(core.FunctionResponsePart).FunctionResponse
	assert.Equal(t, "c1", fr.ID)
	assert.Equal(t, "echo:hi", fr.Response)
}

func TestModelAgent_ParallelToolCallsKeepOrder(t *testing.T) {
	var inFlight, peak atomic.Int32
	slow := tool.NewFunctionTool("slow", "Slow tool", map[string]any{"type": "object"},
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			return args["n"], nil
		},
	)

	llm := model.NewMockModel("gpt-4o-mini", "openai")
	llm.Enqueue(model.Response{
		Content: core.Content{Role: "assistant", Parts: []core.Part{
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "a", Name: "slow", Arguments: `{"n":1}`}},
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "b", Name: "slow", Arguments: `{"n":2}`}},
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "c", Name: "slow", Arguments: `{"n":3}`}},
		}},
		FinishReason: "tool_calls",
	})
	llm.EnqueueText("ok")

	a := NewModelAgent("George", llm, func(o *ModelAgentOptions) {
		o.Tools = []tool.Tool{slow}
		o.MaxParallelTools = 2
	})

	_, err := a.Invoke(context.Background(), "go")
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))

	reqs := llm.Requests()
	parts := reqs[1].Contents[len(reqs[1].Contents)-1].Parts
	require.Len(t, parts, 3)
	for i, id := range []string{"a", "b", "c"} {
		assert.Equal(t, id, parts[i].(core.FunctionResponsePart).FunctionResponse.ID)
	}
}

func TestModelAgent_ToolFailuresBecomeResponses(t *testing.T) {
	boom := tool.NewFunctionTool("boom", "Panics", map[string]any{"type": "object"},
		func(*core.ToolContext, map[string]any) (any, error) { panic("kaboom") },
	)

	llm := model.NewMockModel("gpt-4o-mini", "openai")
	llm.EnqueueToolCall("c1", "boom", `{}`)
	llm.EnqueueToolCall("c2", "missing", `{}`)
	llm.EnqueueToolCall("c3", "boom", `not json`)
	llm.EnqueueText("recovered")

	a := NewModelAgent("Ray", llm, func(o *ModelAgentOptions) {
		o.Tools = []tool.Tool{boom}
	})

	res, err := a.Invoke(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, "recovered", res.Text)

	reqs := llm.Requests()
	require.Len(t, reqs, 4)
	errorOf := func(r model.Request) string {
		last := r.Contents[len(r.Contents)-1]
		return last.Parts[0].(core.FunctionResponsePart).FunctionResponse.Error
	}
	assert.Contains(t, errorOf(reqs[1]), "PANIC")
	assert.Contains(t, errorOf(reqs[2]), "TOOL_NOT_FOUND")
	assert.Contains(t, errorOf(reqs[3]), "VALIDATION_ERROR")
}

func TestModelAgent_TurnLimit(t *testing.T) {
	llm := model.NewMockModel("gpt-4o-mini", "openai")
	for i := 0; i < 5; i++ {
		llm.EnqueueToolCall("c", "echo", `{"text":"again"}`)
	}

	a := NewModelAgent("Cathie", llm, func(o *ModelAgentOptions) {
		o.Tools = []tool.Tool{echoTool("echo")}
		o.MaxTurns = 3
	})

	res, err := a.Invoke(context.Background(), "loop")
	require.NoError(t, err)
	assert.Equal(t, core.StopMaxTurns, res.StopReason)
	assert.Equal(t, 3, res.Turns)
	assert.Len(t, llm.Requests(), 3)
}

func TestModelAgent_ModelErrorPropagates(t *testing.T) {
	llm := model.NewMockModel("deepseek-chat", "deepseek")
	llm.EnqueueError(errors.New("rate limited"))

	hook := &recordingHook{}
	a := NewModelAgent("George", llm, func(o *ModelAgentOptions) { o.Hooks = core.Hooks{hook} })

	_, err := a.Invoke(context.Background(), "go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model deepseek-chat: rate limited")

	last := hook.events[len(hook.events)-1]
	assert.Equal(t, core.HookAfterInvocation, last.Type)
	assert.Error(t, last.Err)
}

func TestModelAgent_InstructionError(t *testing.T) {
	llm := model.NewMockModel("gpt-4o-mini", "openai")
	a := NewModelAgent("Warren", llm, func(o *ModelAgentOptions) {
		o.Instruction = NewInstructionFromFunc(func(context.Context) (string, error) { return "", errors.New("no strategy") })
	})

	_, err := a.Invoke(context.Background(), "go")
	assert.ErrorContains(t, err, "no strategy")
	assert.Empty(t, llm.Requests())
}
