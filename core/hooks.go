package core

import (
	"context"
	"time"
)

// HookType identifies the lifecycle point at which a Hook fires.
type HookType string

const (
	// HookBeforeInvocation fires once before an agent starts processing a message.
	HookBeforeInvocation HookType = "before_invocation"
	// HookAfterInvocation fires once after an agent finished (successfully or not).
	HookAfterInvocation HookType = "after_invocation"
	// HookBeforeModelCall fires before every model generation request.
	HookBeforeModelCall HookType = "before_model_call"
	// HookAfterModelCall fires after every model generation request.
	HookAfterModelCall HookType = "after_model_call"
	// HookBeforeToolCall fires before each tool execution.
	HookBeforeToolCall HookType = "before_tool_call"
	// HookAfterToolCall fires after each tool execution.
	HookAfterToolCall HookType = "after_tool_call"
)

// HookEvent describes a single lifecycle transition. Fields that do not apply
// to the event type are left zero.
type HookEvent struct {
	Type       HookType
	Agent      string
	Model      string
	Tool       string
	CallID     string
	StopReason StopReason
	Duration   time.Duration
	Err        error
}

// Hook observes agent lifecycle events. Hooks run synchronously on the
// invoking goroutine and must not block for long; they cannot abort the
// operation they observe.
type Hook interface {
	OnEvent(ctx context.Context, ev HookEvent)
}

// HookFunc adapts an ordinary function to the Hook interface.
type HookFunc func(ctx context.Context, ev HookEvent)

// OnEvent implements Hook.
func (f HookFunc) OnEvent(ctx context.Context, ev HookEvent) { f(ctx, ev) }

// Hooks fans a single event out to several hooks in registration order.
type Hooks []Hook

// OnEvent implements Hook.
func (hs Hooks) OnEvent(ctx context.Context, ev HookEvent) {
	for _, h := range hs {
		if h != nil {
			h.OnEvent(ctx, ev)
		}
	}
}
