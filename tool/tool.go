// Package tool implements the function / tool calling subsystem that lets agents
// invoke structured capabilities (market data, account actions, notifications,
// research) with schema validated arguments and consistent error handling.
package tool

import (
	"fmt"

	"github.com/hupe1980/tradingfloor/core"
	"github.com/hupe1980/tradingfloor/internal/util"
)

// Error codes carried by ToolError.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
	CodeRemote     = "REMOTE_ERROR"
	CodePanic      = "PANIC"
	CodeNotFound   = "TOOL_NOT_FOUND"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// Implementations must be safe for concurrent use: an agent may execute
// several tool calls from the same model turn in parallel.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description is provided to the LLM to help it decide when to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	Parameters() map[string]any

	// Call executes the tool with already-decoded arguments.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// Find returns the tool with the given name.
func Find(tools []Tool, name string) (Tool, bool) {
	for _, t := range tools {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}
