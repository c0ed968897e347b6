package anthropic

import (
	"testing"

	"github.com/hupe1980/tradingfloor/core"
	"github.com/hupe1980/tradingfloor/model"
	"github.com/stretchr/testify/assert"
)

func TestBuildMessages_ToolResultsGoInUserTurn(t *testing.T) {
	contents := []core.Content{
		core.NewTextContent("system", "ignored here"),
		core.NewTextContent("user", "hello"),
		{Role: "assistant", Parts: []core.Part{
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "t1", Name: "lookup", Arguments: `{"q":"AAPL"}`}},
		}},
		{Role: "tool", Parts: []core.Part{
			core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{ID: "t1", Name: "lookup", Response: "ok"}},
		}},
	}

	msgs := buildMessages(contents)
	assert.Len(t, msgs, 3)
	assert.Equal(t, "user", string(msgs[0].Role))
	assert.Equal(t, "assistant", string(msgs[1].Role))
	assert.Equal(t, "user", string(msgs[2].Role))
}

func TestSystemBlocks(t *testing.T) {
	blocks := systemBlocks(model.Request{
		Instructions: "be a trader",
		Contents:     []core.Content{core.NewTextContent("system", "extra")},
	})
	assert.Len(t, blocks, 2)
	assert.Equal(t, "be a trader", blocks[0].Text)
}

func TestBuildTools_Required(t *testing.T) {
	tools := buildTools([]model.ToolDefinition{{
		Type: "function",
		Function: model.FunctionDefinition{
			Name:        "Researcher",
			Description: "research",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{"query": map[string]any{"type": "string"}},
				"required":   []any{"query"},
			},
		},
	}})
	assert.Len(t, tools, 1)
	if assert.NotNil(t, tools[0].OfTool) {
		assert.Equal(t, "Researcher", tools[0].OfTool.Name)
		assert.Equal(t, []string{"query"}, tools[0].OfTool.InputSchema.Required)
	}
}
