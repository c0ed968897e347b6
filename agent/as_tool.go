package agent

import (
	"fmt"
	"strings"

	"github.com/hupe1980/tradingfloor/core"
	"github.com/hupe1980/tradingfloor/tool"
)

// AsTool exposes an agent as a tool taking a single "query" string.
//
// The boundary is failure-opaque: whatever goes wrong inside the nested
// agent (an error, a panic, an empty answer) the caller receives a string
// explaining it instead of an error.
func AsTool(a core.Agent, name, description string) tool.Tool {
	if name == "" {
		name = a.Name()
	}
	if description == "" {
		description = a.Description()
	}

	return tool.NewFunctionTool(name, description,
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The research request, phrased as a question or task.",
				},
			},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (out any, err error) {
			defer func() {
				if r := recover(); r != nil {
					toolCtx.Logger().Error("agent.as_tool.panic", "agent", a.Name(), "recover", r)
					out, err = fmt.Sprintf("%s could not complete the request: internal failure (%v)", a.Name(), r), nil
				}
			}()

			query := strings.TrimSpace(tool.StringArg(args, "query"))
			if query == "" {
				return fmt.Sprintf("%s needs a non-empty query.", a.Name()), nil
			}

			res, invokeErr := a.Invoke(toolCtx.Context(), query)
			if invokeErr != nil {
				toolCtx.Logger().Warn("agent.as_tool.error", "agent", a.Name(), "error", invokeErr.Error())
				return fmt.Sprintf("%s could not complete the request: %v", a.Name(), invokeErr), nil
			}
			if strings.TrimSpace(res.Text) == "" {
				return fmt.Sprintf("%s returned no findings (stop reason: %s).", a.Name(), res.StopReason), nil
			}
			return res.Text, nil
		},
	)
}
