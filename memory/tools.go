package memory

import (
	"fmt"
	"strings"

	"github.com/hupe1980/tradingfloor/core"
	"github.com/hupe1980/tradingfloor/tool"
)

// Tools exposes a store to a researcher as remember / recall / forget.
func Tools(store core.MemoryStore) []tool.Tool {
	remember := tool.NewFunctionTool(
		"remember",
		"Save a fact to long term memory. Use entity for the company, ticker or topic the fact is about.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"entity":  map[string]any{"type": "string", "description": "Company, ticker or topic"},
				"content": map[string]any{"type": "string", "description": "The fact to remember"},
			},
			"required": []string{"content"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			id, err := store.Store(tc.Context(), tool.StringArg(args, "entity"), tool.StringArg(args, "content"),
				map[string]any{"agent": tc.AgentName()})
			if err != nil {
				return nil, err
			}
			return fmt.Sprintf("Remembered (id %s).", id), nil
		},
	)

	recall := tool.NewFunctionTool(
		"recall",
		"Search long term memory for facts saved in earlier research.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "Words to search for"},
				"limit": map[string]any{"type": "integer", "description": "Maximum number of results"},
			},
			"required": []string{"query"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			results, err := store.Search(tc.Context(), tool.StringArg(args, "query"), tool.IntArg(args, "limit", DefaultSearchLimit))
			if err != nil {
				return nil, err
			}
			if len(results) == 0 {
				return "No memories found.", nil
			}
			var b strings.Builder
			for _, r := range results {
				fmt.Fprintf(&b, "- [%s] %s", r.ID, r.Content)
				if r.Entity != "" {
					fmt.Fprintf(&b, " (%s)", r.Entity)
				}
				fmt.Fprintf(&b, " saved %s\n", r.CreatedAt.Format("2006-01-02"))
			}
			return strings.TrimRight(b.String(), "\n"), nil
		},
	)

	forget := tool.NewFunctionTool(
		"forget",
		"Delete a memory by id when it is wrong or outdated.",
		map[string]any{
			"type":       "object",
			"properties": map[string]any{"id": map[string]any{"type": "string"}},
			"required":   []string{"id"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			if err := store.Delete(tc.Context(), tool.StringArg(args, "id")); err != nil {
				return nil, err
			}
			return "Forgotten.", nil
		},
	)

	return []tool.Tool{remember, recall, forget}
}
