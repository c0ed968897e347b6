package logstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hupe1980/tradingfloor/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sinkContract(t *testing.T, s Sink) {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Write(ctx, "Warren", CategoryFunction, fmt.Sprintf("msg %d", i)))
	}
	require.NoError(t, s.Write(ctx, "George", CategoryTrace, "Ended: George-trading"))

	recs, err := s.Read(ctx, "warren", 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "msg 2", recs[0].Message)
	assert.Equal(t, "msg 4", recs[2].Message)
	assert.Equal(t, CategoryFunction, recs[0].Category)
	assert.Equal(t, "warren", recs[0].Name)
	assert.False(t, recs[0].Timestamp.IsZero())

	recs, err = s.Read(ctx, "George", 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, CategoryTrace, recs[0].Category)

	recs, err = s.Read(ctx, "Nobody", 5)
	require.NoError(t, err)
	assert.Empty(t, recs)

	require.NoError(t, s.Write(ctx, "Ray.D", CategoryAgent, "dotted"))
	recs, err = s.Read(ctx, "ray_d", 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, core.TraderKey("Ray.D"), recs[0].Name)
}

func concurrentAppends(t *testing.T, s Sink) {
	t.Helper()
	var wg sync.WaitGroup
	names := []string{"Warren", "George", "Ray", "Cathie"}
	for _, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				assert.NoError(t, s.Write(context.Background(), name, CategoryAgent, fmt.Sprintf("%s %d", name, i)))
			}
		}()
	}
	wg.Wait()

	for _, name := range names {
		recs, err := s.Read(context.Background(), name, 100)
		require.NoError(t, err)
		require.Len(t, recs, 20)
		for i, r := range recs {
			assert.Equal(t, fmt.Sprintf("%s %d", name, i), r.Message)
		}
	}
}

func TestMemorySink(t *testing.T) {
	sinkContract(t, NewMemorySink())
	concurrentAppends(t, NewMemorySink())
}

func TestGormSink(t *testing.T) {
	s, err := OpenGormSink(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	defer s.Close()
	sinkContract(t, s)
}

func TestGormSink_ConcurrentAppends(t *testing.T) {
	s, err := OpenGormSink(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	defer s.Close()
	concurrentAppends(t, s)
}

func TestHook_Messages(t *testing.T) {
	sink := NewMemorySink()
	h := NewHook(sink, "Warren", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := []core.HookEvent{
		{Type: core.HookBeforeInvocation},
		{Type: core.HookBeforeModelCall},
		{Type: core.HookAfterModelCall},
		{Type: core.HookBeforeToolCall, Tool: "Researcher"},
		{Type: core.HookAfterToolCall, Tool: "Researcher"},
		{Type: core.HookAfterToolCall, Tool: "buy_shares", Err: errors.New("insufficient funds")},
		{Type: core.HookAfterInvocation, StopReason: core.StopEndTurn},
		{Type: core.HookAfterInvocation},
		{Type: core.HookType("unknown")},
	}
	for _, ev := range events {
		h.OnEvent(ctx, ev)
	}

	recs := sink.Records("")
	got := make([][2]string, len(recs))
	for i, r := range recs {
		got[i] = [2]string{r.Category, r.Message}
	}
	assert.Equal(t, [][2]string{
		{CategoryAgent, "Started invocation"},
		{CategoryGeneration, "Started model call"},
		{CategoryResponse, "Ended model call"},
		{CategoryFunction, "Started Researcher"},
		{CategoryFunction, "Ended Researcher"},
		{CategoryFunction, "Ended buy_shares - error: insufficient funds"},
		{CategoryAgent, "Ended invocation - stop reason: end_turn"},
		{CategoryAgent, "Ended invocation - stop reason: unknown"},
	}, got)
}

type failingSink struct{ MemorySink }

func (f *failingSink) Write(context.Context, string, string, string) error {
	return errors.New("disk full")
}

func TestHook_WriteFailureIsSwallowed(t *testing.T) {
	h := NewHook(&failingSink{}, "Ray", nil)
	assert.NotPanics(t, func() {
		h.OnEvent(context.Background(), core.HookEvent{Type: core.HookBeforeInvocation})
	})
}
