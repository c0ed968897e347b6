package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/tradingfloor/core"
	"github.com/hupe1980/tradingfloor/tool"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMarketServer() *server.MCPServer {
	s := server.NewMCPServer("market", "test",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
	)

	s.AddTool(
		mcp.NewTool("lookup_share_price",
			mcp.WithDescription("Look up the share price of a symbol"),
			mcp.WithString("symbol", mcp.Required()),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			symbol, _ := req.GetArguments()["symbol"].(string)
			if symbol == "NOPE" {
				return mcp.NewToolResultError("unknown symbol"), nil
			}
			return mcp.NewToolResultText(symbol + "=123.45"), nil
		},
	)

	s.AddResource(
		mcp.NewResource("accounts://accounts_server/Warren", "Warren account"),
		func(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return []mcp.ResourceContents{mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     `{"name":"warren","balance":10000}`,
			}}, nil
		},
	)
	return s
}

func connectInProcess(t *testing.T) *Toolset {
	t.Helper()
	c, err := client.NewInProcessClient(newMarketServer())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))

	ts, err := Connect(context.Background(), "market", c, time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ts.Close() })
	return ts
}

func toolCtx() *core.ToolContext {
	return core.NewToolContext(context.Background(), core.AgentInfo{Name: "Warren", Type: "model"}, "fc1", nil)
}

func TestConnect_ListsAndCallsTools(t *testing.T) {
	ts := connectInProcess(t)
	assert.Equal(t, "market", ts.Name())

	tools := ts.Tools()
	require.Len(t, tools, 1)
	price := tools[0]
	assert.Equal(t, "lookup_share_price", price.Name())
	assert.Equal(t, "Look up the share price of a symbol", price.Description())
	assert.Equal(t, "object", price.Parameters()["type"])

	out, err := price.Call(toolCtx(), map[string]any{"symbol": "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, "AAPL=123.45", out)

	_, err = price.Call(toolCtx(), map[string]any{"symbol": "NOPE"})
	var toolErr *tool.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, tool.CodeRemote, toolErr.Code)
	assert.Equal(t, "unknown symbol", toolErr.Message)
}

func TestToolset_ReadResource(t *testing.T) {
	ts := connectInProcess(t)

	text, err := ts.ReadResource(context.Background(), "accounts://accounts_server/Warren")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"warren","balance":10000}`, text)

	_, err = ts.ReadResource(context.Background(), "accounts://accounts_server/Nobody")
	assert.Error(t, err)
}

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*mcp.InitializeResult)
	return res, args.Error(1)
}

func (m *mockClient) ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*mcp.ListToolsResult)
	return res, args.Error(1)
}

func (m *mockClient) CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*mcp.CallToolResult)
	return res, args.Error(1)
}

func (m *mockClient) ReadResource(ctx context.Context, req mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*mcp.ReadResourceResult)
	return res, args.Error(1)
}

func (m *mockClient) Close() error {
	return m.Called().Error(0)
}

func TestConnect_InitializeFailureClosesClient(t *testing.T) {
	c := &mockClient{}
	c.On("Initialize", mock.Anything, mock.Anything).Return(nil, errors.New("handshake failed"))
	c.On("Close").Return(nil)

	_, err := Connect(context.Background(), "accounts", c, time.Second, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `initialize mcp server "accounts"`)
	c.AssertCalled(t, "Close")
	c.AssertNotCalled(t, "ListTools", mock.Anything, mock.Anything)
}

func TestRemoteTool_TransportError(t *testing.T) {
	c := &mockClient{}
	c.On("CallTool", mock.Anything, mock.Anything).Return(nil, errors.New("broken pipe"))

	rt := &remoteTool{server: "push", name: "push", client: c}
	_, err := rt.Call(toolCtx(), map[string]any{"message": "hi"})

	var toolErr *tool.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, tool.CodeRemote, toolErr.Code)
	assert.Equal(t, "push", toolErr.Details)
}

func TestCloseAll_ReverseOrderAndJoin(t *testing.T) {
	var order []string
	mk := func(name string, err error) *Toolset {
		c := &mockClient{}
		c.On("Close").Run(func(mock.Arguments) { order = append(order, name) }).Return(err)
		return &Toolset{name: name, client: c}
	}

	err := CloseAll([]*Toolset{mk("a", nil), mk("b", errors.New("stuck")), mk("c", nil)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"b"`)
	assert.Equal(t, []string{"c", "b", "a"}, order)
}

func TestOpenAll_EmptyCommand(t *testing.T) {
	_, err := OpenAll(context.Background(), []ServerSpec{{Name: "broken"}}, nil)
	assert.Error(t, err)
}

func TestInputSchemaAndEnv(t *testing.T) {
	schema := inputSchema(mcp.Tool{Name: "x"})
	assert.Equal(t, map[string]any{"type": "object", "properties": map[string]any{}}, schema)

	assert.Equal(t, []string{"A=1", "B=2"}, envList(map[string]string{"B": "2", "A": "1"}))
}

func TestFind(t *testing.T) {
	ts := connectInProcess(t)
	sets := []*Toolset{ts}
	assert.Same(t, ts, Find(sets, "market"))
	assert.Nil(t, Find(sets, "accounts"))
	assert.Len(t, Tools(sets), 1)
}
