package floor_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/tradingfloor/floor"
	"github.com/hupe1980/tradingfloor/logstore"
	"github.com/hupe1980/tradingfloor/market"
	"github.com/hupe1980/tradingfloor/model"
	"github.com/hupe1980/tradingfloor/trader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accounts struct{}

func (accounts) ReadAccount(_ context.Context, name string) (string, error) {
	return `{"name":"` + strings.ToLower(name) + `","balance":10000,"portfolio_value_time_series":[]}`, nil
}

func (accounts) ReadStrategy(context.Context, string) (string, error) { return "Long term value.", nil }

// slowModel answers only once its context is done.
type slowModel struct{}

func (slowModel) Info() model.Info { return model.Info{Name: "slow", Provider: "mock"} }

func (slowModel) Generate(ctx context.Context, _ model.Request) (<-chan model.Response, <-chan error) {
	respCh := make(chan model.Response)
	errCh := make(chan error, 1)
	go func() {
		defer close(respCh)
		defer close(errCh)
		<-ctx.Done()
		errCh <- ctx.Err()
	}()
	return respCh, errCh
}

func TestScenario_OneTraderTimesOut(t *testing.T) {
	sink := logstore.NewMemorySink()
	models := map[string]model.Model{
		"gpt-4o-mini":   model.NewMockModel("gpt-4o-mini", "openai"),
		"deepseek-chat": slowModel{},
	}
	factory := &trader.Factory{
		Resolver: model.ResolverFunc(func(id string) (model.Model, error) { return models[id], nil }),
		Sink:     sink,
		Plan:     market.PlanFree,
	}
	prov := trader.ProvisionerFunc(func(context.Context, trader.Identity) (*trader.Resources, error) {
		return &trader.Resources{Accounts: accounts{}}, nil
	})
	withTimeout := func(o *trader.Options) { o.InvocationTimeout = 50 * time.Millisecond }

	warren := trader.New(trader.Identity{Name: "Warren", Strategy: "Patience", ModelID: "gpt-4o-mini"}, factory, prov, withTimeout)
	george := trader.New(trader.Identity{Name: "George", Strategy: "Bold", ModelID: "deepseek-chat"}, factory, prov, withTimeout)

	f, err := floor.New([]floor.Runner{warren, george}, func(o *floor.Options) { o.RunWhenClosed = true })
	require.NoError(t, err)

	s := f.RunOnce(context.Background())
	require.Len(t, s.Outcomes, 2)
	assert.True(t, s.Outcomes[0].OK())
	assert.False(t, s.Outcomes[1].OK())
	assert.ErrorIs(t, s.Outcomes[1].Err, context.DeadlineExceeded)

	assert.False(t, warren.Trading())
	assert.False(t, george.Trading())

	traces := sink.Records(logstore.CategoryTrace)
	require.Len(t, traces, 2)
	byName := map[string]string{}
	for _, r := range traces {
		byName[r.Name] = r.Message
	}
	assert.Equal(t, "Ended: Warren-trading", byName["warren"])
	assert.True(t, strings.HasPrefix(byName["george"], "Error: "), byName["george"])
}
