package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTurnLimiter(t *testing.T) {
	l := NewTurnLimiter(2)
	assert.Equal(t, 2, l.Remaining())
	assert.NoError(t, l.Take())
	assert.NoError(t, l.Take())
	assert.ErrorIs(t, l.Take(), ErrTurnLimit)
	assert.Equal(t, 2, l.Taken())
	assert.Equal(t, 0, l.Remaining())
}

func TestTurnLimiter_Unlimited(t *testing.T) {
	l := NewTurnLimiter(0)
	for i := 0; i < 100; i++ {
		assert.NoError(t, l.Take())
	}
	assert.Equal(t, -1, l.Remaining())
}

func TestContentHelpers(t *testing.T) {
	c := Content{Role: "assistant", Parts: []Part{
		TextPart{Text: "hello "},
		FunctionCallPart{FunctionCall: FunctionCall{ID: "1", Name: "a"}},
		TextPart{Text: "world"},
		FunctionCallPart{FunctionCall: FunctionCall{ID: "2", Name: "b"}},
	}}
	assert.Equal(t, "hello world", c.Text())
	calls := c.FunctionCalls()
	assert.Len(t, calls, 2)
	assert.Equal(t, "a", calls[0].Name)
	assert.Equal(t, "b", calls[1].Name)
}

func TestHooks_FanOut(t *testing.T) {
	var got []HookType
	rec := HookFunc(func(_ context.Context, ev HookEvent) { got = append(got, ev.Type) })
	hs := Hooks{rec, nil, rec}
	hs.OnEvent(context.Background(), HookEvent{Type: HookBeforeToolCall})
	assert.Equal(t, []HookType{HookBeforeToolCall, HookBeforeToolCall}, got)
}
