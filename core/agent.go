package core

import "context"

// StopReason is an opaque terminal-condition tag reported by an agent
// invocation. It is consumed only for logging and diagnostics.
type StopReason string

const (
	// StopEndTurn means the model finished naturally.
	StopEndTurn StopReason = "end_turn"
	// StopMaxTokens means the model ran out of completion tokens.
	StopMaxTokens StopReason = "max_tokens"
	// StopMaxTurns means the agent hit its model/tool turn limit.
	StopMaxTurns StopReason = "max_turns"
	// StopToolUse means the last model turn still requested tools.
	StopToolUse StopReason = "tool_use"
	// StopContentFilter means the provider withheld the completion.
	StopContentFilter StopReason = "content_filter"
)

// Result is the outcome of one agent invocation.
type Result struct {
	Text       string
	StopReason StopReason
	Turns      int
}

// Agent is the capability every invocable agent exposes.
//
// Implementations must respect context cancellation and must be safe to
// invoke from the goroutine that owns them; concurrent invocations of the
// same instance are not required.
type Agent interface {
	Name() string
	Description() string
	Invoke(ctx context.Context, message string) (Result, error)
}

// AgentInfo carries identifying details about an agent used in tool contexts
// and hook events.
type AgentInfo struct{ Name, Type string }
