package market

import "strings"

// Plan is the Polygon subscription tier, which decides the market data
// tools a trader gets.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanPaid     Plan = "paid"
	PlanRealtime Plan = "realtime"
)

// ParsePlan maps a configuration value onto a Plan. Unknown values are free.
func ParsePlan(s string) Plan {
	switch Plan(strings.ToLower(strings.TrimSpace(s))) {
	case PlanPaid:
		return PlanPaid
	case PlanRealtime:
		return PlanRealtime
	default:
		return PlanFree
	}
}

// HostedMarketData reports whether Polygon's own MCP server serves market data.
func (p Plan) HostedMarketData() bool { return p == PlanPaid || p == PlanRealtime }
