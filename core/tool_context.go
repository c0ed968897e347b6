package core

import (
	"context"

	"github.com/hupe1980/tradingfloor/logging"
)

// ToolContext provides the constrained surface handed to a tool implementation
// for a single function call: the cancellation context, the identity of the
// calling agent, the function call id and a logger.
type ToolContext struct {
	ctx            context.Context
	functionCallID string
	agentInfo      AgentInfo
	logger         logging.Logger
}

// NewToolContext constructs a tool context for one function call.
func NewToolContext(ctx context.Context, agent AgentInfo, functionCallID string, logger logging.Logger) *ToolContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &ToolContext{
		ctx:            ctx,
		functionCallID: functionCallID,
		agentInfo:      agent,
		logger:         logger,
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.logger }

// FunctionCallID returns the function call ID associated with the tool invocation.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// AgentName returns the name of the agent that requested the call.
func (tc *ToolContext) AgentName() string { return tc.agentInfo.Name }

// AgentType returns the type of the agent that requested the call.
func (tc *ToolContext) AgentType() string { return tc.agentInfo.Type }
