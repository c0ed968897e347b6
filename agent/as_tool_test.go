package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/tradingfloor/core"
	"github.com/hupe1980/tradingfloor/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickyAgent struct{ BaseAgent }

func (p *panickyAgent) Invoke(context.Context, string) (core.Result, error) { panic("nil map") }

func callQuery(t *testing.T, a core.Agent, query any) string {
	t.Helper()
	tl := AsTool(a, "Researcher", "Research things")
	tc := core.NewToolContext(context.Background(), core.AgentInfo{Name: "Warren"}, "fc", nil)
	out, err := tl.Call(tc, map[string]any{"query": query})
	require.NoError(t, err)
	s, ok := out.(string)
	require.True(t, ok)
	return s
}

func TestAsTool_ReturnsAgentText(t *testing.T) {
	llm := model.NewMockModel("gpt-4o-mini", "openai")
	llm.EnqueueText("AAPL looks strong")
	researcher := NewModelAgent("Warren Researcher", llm)

	assert.Equal(t, "AAPL looks strong", callQuery(t, researcher, "AAPL news"))
}

func TestAsTool_FailureOpaque(t *testing.T) {
	llm := model.NewMockModel("gpt-4o-mini", "openai")
	llm.EnqueueError(errors.New("upstream down"))
	researcher := NewModelAgent("Warren Researcher", llm)

	out := callQuery(t, researcher, "AAPL news")
	assert.Contains(t, out, "could not complete the request")
	assert.Contains(t, out, "upstream down")

	out = callQuery(t, &panickyAgent{BaseAgent: NewBaseAgent("broken")}, "anything")
	assert.Contains(t, out, "internal failure")

	llm.EnqueueText("   ")
	out = callQuery(t, researcher, "empty please")
	assert.Contains(t, out, "returned no findings")

	out = callQuery(t, researcher, "  ")
	assert.Contains(t, out, "non-empty query")
}

func TestAsTool_SchemaAndNames(t *testing.T) {
	a := NewModelAgent("Researcher", model.NewMockModel("m", "p"), func(o *ModelAgentOptions) {
		o.Description = "Finds news"
	})
	tl := AsTool(a, "", "")
	assert.Equal(t, "Researcher", tl.Name())
	assert.Equal(t, "Finds news", tl.Description())
	assert.NotContains(t, tl.Parameters(), "required")
}

func TestAsTool_MissingQueryIsText(t *testing.T) {
	tl := AsTool(NewModelAgent("Warren Researcher", model.NewMockModel("m", "p")), "Researcher", "Research things")
	tc := core.NewToolContext(context.Background(), core.AgentInfo{Name: "Warren"}, "fc", nil)

	out, err := tl.Call(tc, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "Warren Researcher needs a non-empty query.", out)
}
