// Package mcp connects to Model Context Protocol servers over stdio and
// adapts their tools to tool.Tool. It also exposes resource reads, which the
// account service uses to fetch account and strategy documents.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hupe1980/tradingfloor/core"
	"github.com/hupe1980/tradingfloor/logging"
	"github.com/hupe1980/tradingfloor/tool"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// DefaultStartupTimeout bounds server initialization.
const DefaultStartupTimeout = 120 * time.Second

// ServerSpec describes how to launch one stdio MCP server.
type ServerSpec struct {
	Name           string            `mapstructure:"name" yaml:"name"`
	Command        string            `mapstructure:"command" yaml:"command"`
	Args           []string          `mapstructure:"args" yaml:"args"`
	Env            map[string]string `mapstructure:"env" yaml:"env"`
	StartupTimeout time.Duration     `mapstructure:"startup_timeout" yaml:"startup_timeout"`
}

// Client is the subset of the mcp-go client used here.
type Client interface {
	Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	ReadResource(ctx context.Context, req mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)
	Close() error
}

// Toolset is an initialized connection to one MCP server.
type Toolset struct {
	name   string
	client Client
	tools  []tool.Tool
	logger logging.Logger
}

// Open launches the server described by spec and connects to it.
func Open(ctx context.Context, spec ServerSpec, logger logging.Logger) (*Toolset, error) {
	if spec.Command == "" {
		return nil, fmt.Errorf("mcp server %q: empty command", spec.Name)
	}
	c, err := client.NewStdioMCPClient(spec.Command, envList(spec.Env), spec.Args...)
	if err != nil {
		return nil, fmt.Errorf("start mcp server %q: %w", spec.Name, err)
	}
	return Connect(ctx, spec.Name, c, spec.StartupTimeout, logger)
}

// Connect initializes an already started client and lists its tools. The
// client is closed if initialization fails.
func Connect(ctx context.Context, name string, c Client, timeout time.Duration, logger logging.Logger) (*Toolset, error) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	if timeout <= 0 {
		timeout = DefaultStartupTimeout
	}

	initCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{Name: "tradingfloor", Version: "1.0.0"}

	initRes, err := c.Initialize(initCtx, req)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("initialize mcp server %q: %w", name, err)
	}

	ts := &Toolset{name: name, client: c, logger: logger}
	if initRes == nil || initRes.Capabilities.Tools == nil {
		logger.Debug("mcp.server.connected", "server", name, "tools", 0)
		return ts, nil
	}

	listed, err := c.ListTools(initCtx, mcp.ListToolsRequest{})
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("list tools of mcp server %q: %w", name, err)
	}

	for _, t := range listed.Tools {
		ts.tools = append(ts.tools, &remoteTool{
			server:      name,
			name:        t.Name,
			description: t.Description,
			parameters:  inputSchema(t),
			client:      c,
		})
	}

	logger.Debug("mcp.server.connected", "server", name, "tools", len(ts.tools))

	return ts, nil
}

// Name returns the server name.
func (ts *Toolset) Name() string { return ts.name }

// Tools returns the server's tools adapted to tool.Tool.
func (ts *Toolset) Tools() []tool.Tool { return ts.tools }

// ReadResource fetches a resource and returns its text contents joined.
func (ts *Toolset) ReadResource(ctx context.Context, uri string) (string, error) {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri

	res, err := ts.client.ReadResource(ctx, req)
	if err != nil {
		return "", fmt.Errorf("read resource %s: %w", uri, err)
	}

	var parts []string
	for _, c := range res.Contents {
		switch v := c.(type) {
		case mcp.TextResourceContents:
			parts = append(parts, v.Text)
		case *mcp.TextResourceContents:
			parts = append(parts, v.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("read resource %s: no text contents", uri)
	}
	return strings.Join(parts, "\n"), nil
}

// Close shuts the server connection down.
func (ts *Toolset) Close() error {
	if err := ts.client.Close(); err != nil {
		return fmt.Errorf("close mcp server %q: %w", ts.name, err)
	}
	return nil
}

// Launcher opens a set of servers. OpenAll is the stdio implementation.
type Launcher func(ctx context.Context, specs []ServerSpec, logger logging.Logger) ([]*Toolset, error)

var _ Launcher = OpenAll

// OpenAll opens every spec in order. If one fails, the servers opened so far
// are closed before the error is returned.
func OpenAll(ctx context.Context, specs []ServerSpec, logger logging.Logger) ([]*Toolset, error) {
	sets := make([]*Toolset, 0, len(specs))
	for _, spec := range specs {
		ts, err := Open(ctx, spec, logger)
		if err != nil {
			return nil, errors.Join(err, CloseAll(sets))
		}
		sets = append(sets, ts)
	}
	return sets, nil
}

// CloseAll closes every toolset in reverse order and joins the errors.
func CloseAll(sets []*Toolset) error {
	var errs []error
	for i := len(sets) - 1; i >= 0; i-- {
		if err := sets[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Find returns the toolset called name, or nil.
func Find(sets []*Toolset, name string) *Toolset {
	for _, ts := range sets {
		if ts.name == name {
			return ts
		}
	}
	return nil
}

// Tools flattens the tools of several toolsets.
func Tools(sets []*Toolset) []tool.Tool {
	var out []tool.Tool
	for _, ts := range sets {
		out = append(out, ts.Tools()...)
	}
	return out
}

type remoteTool struct {
	server      string
	name        string
	description string
	parameters  map[string]any
	client      Client
}

func (t *remoteTool) Name() string               { return t.name }
func (t *remoteTool) Description() string        { return t.description }
func (t *remoteTool) Parameters() map[string]any { return t.parameters }

func (t *remoteTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = t.name
	req.Params.Arguments = args

	res, err := t.client.CallTool(toolCtx.Context(), req)
	if err != nil {
		return nil, &tool.ToolError{Tool: t.name, Message: err.Error(), Code: tool.CodeRemote, Details: t.server}
	}

	text := contentText(res.Content)
	if res.IsError {
		return nil, &tool.ToolError{Tool: t.name, Message: text, Code: tool.CodeRemote, Details: t.server}
	}
	return text, nil
}

func contentText(contents []mcp.Content) string {
	var parts []string
	for _, c := range contents {
		switch v := c.(type) {
		case mcp.TextContent:
			parts = append(parts, v.Text)
		case *mcp.TextContent:
			parts = append(parts, v.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func inputSchema(t mcp.Tool) map[string]any {
	if len(t.RawInputSchema) > 0 {
		var schema map[string]any
		if err := json.Unmarshal(t.RawInputSchema, &schema); err == nil {
			return schema
		}
	}
	props := t.InputSchema.Properties
	if props == nil {
		props = map[string]any{}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(t.InputSchema.Required) > 0 {
		schema["required"] = t.InputSchema.Required
	}
	return schema
}

func envList(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
