package config

import (
	"fmt"

	"github.com/hupe1980/tradingfloor/market"
	"github.com/hupe1980/tradingfloor/tool/mcp"
)

var (
	traderNames   = []string{"Warren", "George", "Ray", "Cathie"}
	strategyTags  = []string{"Patience", "Bold", "Systematic", "Crypto"}
	manyModelIDs  = []string{"gpt-4.1-mini", "deepseek-chat", "gemini-2.5-flash-preview-04-17", "grok-3-mini-beta"}
	manyModelTags = []string{"GPT 4.1 Mini", "DeepSeek V3", "Gemini 2.5 Flash", "Grok 3 Mini"}
)

// BuildRoster zips names, strategy tags and model ids into a roster. The
// three lists must have the same length.
func BuildRoster(names, strategies, modelIDs, modelNames []string) ([]Member, error) {
	if len(names) != len(strategies) || len(names) != len(modelIDs) {
		return nil, fmt.Errorf("%w: %d names, %d strategies, %d models", ErrInvalidRoster, len(names), len(strategies), len(modelIDs))
	}
	roster := make([]Member, len(names))
	for i := range names {
		roster[i] = Member{Name: names[i], Strategy: strategies[i], ModelID: modelIDs[i], ModelName: modelIDs[i]}
		if i < len(modelNames) {
			roster[i].ModelName = modelNames[i]
		}
	}
	return roster, nil
}

// DefaultRoster is the four-trader floor, either on one model or on four.
func DefaultRoster(manyModels bool) []Member {
	ids, tags := manyModelIDs, manyModelTags
	if !manyModels {
		ids = []string{"gpt-4o-mini", "gpt-4o-mini", "gpt-4o-mini", "gpt-4o-mini"}
		tags = []string{"GPT 4o mini", "GPT 4o mini", "GPT 4o mini", "GPT 4o mini"}
	}
	roster, _ := BuildRoster(traderNames, strategyTags, ids, tags)
	return roster
}

func python(module string) []string { return []string{"run", "python", "-m", module} }

// MarketServer is the market data server for a Polygon plan.
func MarketServer(plan market.Plan, polygonKey string) mcp.ServerSpec {
	if plan.HostedMarketData() {
		return mcp.ServerSpec{
			Name:    "market",
			Command: "uvx",
			Args:    []string{"--from", "git+https://github.com/polygon-io/mcp_polygon@v0.1.0", "mcp_polygon"},
			Env:     map[string]string{"POLYGON_API_KEY": polygonKey},
		}
	}
	return mcp.ServerSpec{Name: "market", Command: "uv", Args: python("infrastructure.market_server")}
}

// DefaultTraderServers are the accounts, push and market servers.
func DefaultTraderServers(plan market.Plan, polygonKey string) []mcp.ServerSpec {
	return []mcp.ServerSpec{
		{Name: "accounts", Command: "uv", Args: python("infrastructure.accounts_server")},
		{Name: "push", Command: "uv", Args: python("infrastructure.push_server")},
		MarketServer(plan, polygonKey),
	}
}

// DefaultResearcherServers are the fetch and Brave search servers.
func DefaultResearcherServers(braveKey string) []mcp.ServerSpec {
	return []mcp.ServerSpec{
		{Name: "fetch", Command: "uvx", Args: []string{"mcp-server-fetch"}},
		{
			Name:    "brave",
			Command: "npx",
			Args:    []string{"-y", "@modelcontextprotocol/server-brave-search"},
			Env:     map[string]string{"BRAVE_API_KEY": braveKey},
		},
	}
}

// WithoutServer returns specs minus the server called name.
func WithoutServer(specs []mcp.ServerSpec, name string) []mcp.ServerSpec {
	out := make([]mcp.ServerSpec, 0, len(specs))
	for _, s := range specs {
		if s.Name != name {
			out = append(out, s)
		}
	}
	return out
}
