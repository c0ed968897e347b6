package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/tradingfloor/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input produced by agents.
type Request struct {
	Instructions string           `json:"instructions"` // System prompt
	Contents     []core.Content   `json:"contents"`     // Conversation so far
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Stream       bool             `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
type Response struct {
	ID           string       `json:"id"`
	Partial      bool         `json:"partial"`
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", "end_turn", ...
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "deepseek", "anthropic", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by agents to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Resolver binds a model identifier (e.g. "gpt-4o-mini", "deepseek-chat") to
// a concrete Model.
type Resolver interface {
	Resolve(modelID string) (Model, error)
}

// ResolverFunc adapts an ordinary function to the Resolver interface.
type ResolverFunc func(modelID string) (Model, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(modelID string) (Model, error) { return f(modelID) }

// StopReason maps a provider finish reason onto the normalized core.StopReason.
func StopReason(finishReason string) core.StopReason {
	switch finishReason {
	case "", "stop", "end_turn", "stop_sequence":
		return core.StopEndTurn
	case "length", "max_tokens":
		return core.StopMaxTokens
	case "tool_calls", "function_call", "tool_use":
		return core.StopToolUse
	case "content_filter", "refusal":
		return core.StopContentFilter
	default:
		return core.StopReason(finishReason)
	}
}

// Collect drains the channels returned by Generate and returns the final
// (non-partial) response. A terminal error wins over any response.
func Collect(ctx context.Context, respCh <-chan Response, errCh <-chan error) (Response, error) {
	var (
		final    Response
		gotFinal bool
	)
	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if !r.Partial {
				final, gotFinal = r, true
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return Response{}, err
			}
		}
	}
	if !gotFinal {
		return Response{}, fmt.Errorf("model returned no final response")
	}
	return final, nil
}

// MockModel is a lightweight in-memory Model useful for tests and dry runs.
// Scripted responses (Enqueue / EnqueueError) are consumed in order; once the
// script is empty the model answers with a canned or echo completion.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	script    []scripted
	requests  []Request
}

type scripted struct {
	resp Response
	err  error
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider, SupportsTools: true},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Enqueue appends a scripted response.
func (m *MockModel) Enqueue(resp Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, scripted{resp: resp})
}

// EnqueueToolCall scripts a response requesting a single tool call.
func (m *MockModel) EnqueueToolCall(id, name, args string) {
	m.Enqueue(Response{
		Content: core.Content{Role: "assistant", Parts: []core.Part{
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: id, Name: name, Arguments: args}},
		}},
		FinishReason: "tool_calls",
	})
}

// EnqueueText scripts a final text response.
func (m *MockModel) EnqueueText(text string) {
	m.Enqueue(Response{Content: core.NewTextContent("assistant", text), FinishReason: "stop"})
}

// EnqueueError scripts a failing generation.
func (m *MockModel) EnqueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, scripted{err: err})
}

// Requests returns a copy of every request received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 1)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.requests = append(m.requests, req)
	var next *scripted
	if len(m.script) > 0 {
		next = &m.script[0]
		m.script = m.script[1:]
	}
	canned := m.responses
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)
		if err := ctx.Err(); err != nil {
			errCh <- err
			return
		}
		if next != nil {
			if next.err != nil {
				errCh <- next.err
				return
			}
			respCh <- next.resp
			return
		}
		if len(req.Contents) == 0 {
			errCh <- fmt.Errorf("no contents provided")
			return
		}
		input := req.Contents[len(req.Contents)-1].Text()
		full, ok := canned[input]
		if !ok {
			full = fmt.Sprintf("Mock response to: %s", input)
		}
		respCh <- Response{Content: core.NewTextContent("assistant", full), FinishReason: "stop"}
	}()
	return respCh, errCh
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
