package tool

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/tradingfloor/core"
	"github.com/hupe1980/tradingfloor/internal/util"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FunctionTool exposes a plain Go function as a tool.
//
// Arguments are validated against the declared schema before the function
// runs. Failures come back as *ToolError:
//
//	VALIDATION_ERROR -> schema / argument mismatch
//	EXECUTION_ERROR  -> the function returned a plain error
//	(custom codes are preserved if the function returns *ToolError directly)
//
// The schema is compiled on first use. A FunctionTool is safe for concurrent
// use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(toolCtx *core.ToolContext, args map[string]any) (any, error)

	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
//
// Example:
//
//	push := NewFunctionTool(
//	  "push",
//	  "Send a push notification to the user",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "message": map[string]any{"type": "string"},
//	    },
//	    "required": []string{"message"},
//	  },
//	  func(tc *core.ToolContext, args map[string]any) (any, error) {
//	    return "sent", nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// Name returns the unique tool name used in function call declarations and routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

func (t *FunctionTool) validate(args map[string]any) error {
	t.compileOnce.Do(func() {
		t.compiled, t.compileErr = util.CompileSchema(t.parameters)
	})
	if t.compileErr != nil {
		return fmt.Errorf("invalid parameter schema: %w", t.compileErr)
	}
	return util.ValidateArgs(args, t.compiled)
}

// Call validates args then invokes the wrapped function.
func (t *FunctionTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	logger := toolCtx.Logger()
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.name, "fc_id", toolCtx.FunctionCallID())

	if err := t.validate(args); err != nil {
		logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err,
		}
	}

	result, err := t.fn(toolCtx, args)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			logger.Error("tool.call.error", "tool", t.name, "error", toolErr.Message)
			return nil, toolErr
		}

		logger.Error("tool.call.error", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeExecution,
		}
	}

	logger.Debug("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}

// StringArg returns args[key] as a string, or "" if absent or of another type.
func StringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// IntArg returns args[key] as an int, accepting JSON numbers.
func IntArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return def
	}
}
