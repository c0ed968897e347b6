package prompt

import (
	"testing"
	"time"

	"github.com/hupe1980/tradingfloor/market"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)

func TestTraderInstructions(t *testing.T) {
	out := TraderInstructions("Warren", market.PlanFree)
	assert.Contains(t, out, "You are Warren")
	assert.Contains(t, out, "lookup_share_price")
	assert.NotContains(t, out, "{{")
}

func TestTradeAndRebalanceMessages(t *testing.T) {
	account := `{"name":"warren","balance":10000}`

	trade := TradeMessage("Warren", "Value investing", account, market.PlanRealtime, now)
	assert.Contains(t, trade, "look for new opportunities")
	assert.Contains(t, trade, "Value investing")
	assert.Contains(t, trade, account)
	assert.Contains(t, trade, "2025-06-02 10:30:00")
	assert.Contains(t, trade, "get_last_trade")

	rebalance := RebalanceMessage("Warren", "Value investing", account, market.PlanPaid, now)
	assert.Contains(t, rebalance, "decide if you need to rebalance")
	assert.Contains(t, rebalance, "get_snapshot_ticker")
	assert.NotEqual(t, trade, rebalance)
}

func TestResearcherInstructions(t *testing.T) {
	out := ResearcherInstructions(now)
	assert.Contains(t, out, "financial researcher")
	assert.Contains(t, out, "remember")
	assert.Contains(t, out, "2025-06-02 10:30:00")
	assert.NotEmpty(t, ResearchToolDescription())
}

func TestTemplatesDoNotEscape(t *testing.T) {
	out := TradeMessage("Cathie", "Crypto & <ETFs>", `{"a":"b"}`, market.PlanFree, now)
	assert.Contains(t, out, "Crypto & <ETFs>")
	assert.Contains(t, out, `{"a":"b"}`)
}
