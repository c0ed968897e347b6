package logstore

import (
	"context"
	"fmt"

	"github.com/hupe1980/tradingfloor/core"
	"github.com/hupe1980/tradingfloor/logging"
)

// Hook writes agent lifecycle events for one trader to a Sink. The
// researcher's events are tagged with the trader's name as well.
type Hook struct {
	sink   Sink
	name   string
	logger logging.Logger
}

// NewHook creates a hook writing records under name.
func NewHook(sink Sink, name string, logger logging.Logger) *Hook {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Hook{sink: sink, name: name, logger: logger}
}

// OnEvent implements core.Hook.
func (h *Hook) OnEvent(ctx context.Context, ev core.HookEvent) {
	category, message := h.describe(ev)
	if category == "" {
		return
	}
	// records of a cancelled run are still written
	if err := h.sink.Write(context.WithoutCancel(ctx), h.name, category, message); err != nil {
		h.logger.Warn("logstore.write.failed", "trader", h.name, "category", category, "error", err.Error())
	}
}

func (h *Hook) describe(ev core.HookEvent) (string, string) {
	switch ev.Type {
	case core.HookBeforeInvocation:
		return CategoryAgent, "Started invocation"
	case core.HookAfterInvocation:
		reason := string(ev.StopReason)
		if reason == "" {
			reason = "unknown"
		}
		return CategoryAgent, "Ended invocation - stop reason: " + reason
	case core.HookBeforeToolCall:
		return CategoryFunction, "Started " + ev.Tool
	case core.HookAfterToolCall:
		if ev.Err != nil {
			return CategoryFunction, fmt.Sprintf("Ended %s - error: %v", ev.Tool, ev.Err)
		}
		return CategoryFunction, "Ended " + ev.Tool
	case core.HookBeforeModelCall:
		return CategoryGeneration, "Started model call"
	case core.HookAfterModelCall:
		return CategoryResponse, "Ended model call"
	default:
		return "", ""
	}
}

var _ core.Hook = (*Hook)(nil)
