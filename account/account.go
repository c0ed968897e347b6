// Package account reads trader accounts and strategies from the accounts
// MCP server.
package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// TimeSeriesKey is the account field holding historical portfolio values.
const TimeSeriesKey = "portfolio_value_time_series"

// Service fetches account state for a trader.
type Service interface {
	// ReadAccount returns the raw JSON account document.
	ReadAccount(ctx context.Context, name string) (string, error)
	// ReadStrategy returns the trader's strategy description.
	ReadStrategy(ctx context.Context, name string) (string, error)
}

// ResourceReader reads MCP resources by URI.
type ResourceReader interface {
	ReadResource(ctx context.Context, uri string) (string, error)
}

// AccountURI is the resource holding a trader's account.
func AccountURI(name string) string { return "accounts://accounts_server/" + name }

// StrategyURI is the resource holding a trader's strategy.
func StrategyURI(name string) string { return "accounts://strategy/" + name }

// MCPService implements Service over the accounts server resources.
type MCPService struct {
	reader ResourceReader
}

// NewMCPService creates a Service reading from reader.
func NewMCPService(reader ResourceReader) *MCPService {
	return &MCPService{reader: reader}
}

// ReadAccount implements Service.
func (s *MCPService) ReadAccount(ctx context.Context, name string) (string, error) {
	raw, err := s.reader.ReadResource(ctx, AccountURI(name))
	if err != nil {
		return "", fmt.Errorf("read account %s: %w", name, err)
	}
	return raw, nil
}

// ReadStrategy implements Service.
func (s *MCPService) ReadStrategy(ctx context.Context, name string) (string, error) {
	raw, err := s.reader.ReadResource(ctx, StrategyURI(name))
	if err != nil {
		return "", fmt.Errorf("read strategy %s: %w", name, err)
	}
	return strings.TrimSpace(raw), nil
}

// StripTimeSeries removes the portfolio value history from an account
// document, keeping only current-state fields.
func StripTimeSeries(raw string) (string, error) {
	if !gjson.Valid(raw) {
		return "", fmt.Errorf("account report is not valid JSON")
	}
	if !gjson.Parse(raw).IsObject() {
		return "", fmt.Errorf("account report is not a JSON object")
	}
	// A document may repeat the key; each Delete drops one occurrence.
	for gjson.Get(raw, TimeSeriesKey).Exists() {
		out, err := sjson.Delete(raw, TimeSeriesKey)
		if err != nil {
			return "", fmt.Errorf("strip %s: %w", TimeSeriesKey, err)
		}
		if out == raw {
			return "", fmt.Errorf("strip %s: key not removed", TimeSeriesKey)
		}
		raw = out
	}
	return raw, nil
}

// Report reads the account of name and strips its time series.
func Report(ctx context.Context, svc Service, name string) (string, error) {
	raw, err := svc.ReadAccount(ctx, name)
	if err != nil {
		return "", err
	}
	report, err := StripTimeSeries(raw)
	if err != nil {
		return "", fmt.Errorf("account %s: %w", name, err)
	}
	return report, nil
}
