package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hupe1980/tradingfloor/floor"
	"github.com/hupe1980/tradingfloor/logstore"
	"github.com/hupe1980/tradingfloor/trader"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2)

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	categoryStyles = map[string]lipgloss.Style{
		logstore.CategoryTrace:      lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")),
		logstore.CategoryAgent:      lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")),
		logstore.CategoryFunction:   lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		logstore.CategoryGeneration: lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		logstore.CategoryResponse:   lipgloss.NewStyle().Foreground(lipgloss.Color("#EC4899")),
	}
)

func renderRoster(traders []*trader.Trader) string {
	var b strings.Builder
	for _, t := range traders {
		id := t.Identity()
		fmt.Fprintf(&b, "  - %s (%s) using %s\n", id.Name, id.Strategy, id.ModelName)
	}
	return b.String()
}

func renderBanner(title string) string {
	return titleStyle.Render(title)
}

// renderSummary prints one line per trader followed by the success count.
func renderSummary(s floor.Summary) string {
	var b strings.Builder
	for _, o := range s.Outcomes {
		if o.OK() {
			b.WriteString(completedStyle.Render("✓ "+o.Trader+" completed") + "\n")
			continue
		}
		b.WriteString(errorStyle.Render("⚠ "+o.Trader+" error") + dimStyle.Render(": "+o.Err.Error()) + "\n")
	}
	fmt.Fprintf(&b, "\n%d/%d traders completed successfully", s.Succeeded(), len(s.Outcomes))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" in %s", s.Duration.Round(time.Second))))
	return boxStyle.Render(b.String())
}

func renderRecords(records []logstore.Record) string {
	if len(records) == 0 {
		return dimStyle.Render("no log records")
	}
	var b strings.Builder
	for _, r := range records {
		style, ok := categoryStyles[r.Category]
		if !ok {
			style = dimStyle
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			dimStyle.Render(r.Timestamp.Local().Format("2006-01-02 15:04:05")),
			style.Render(fmt.Sprintf("%-10s", r.Category)),
			r.Message)
	}
	return b.String()
}
