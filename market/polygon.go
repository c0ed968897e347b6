package market

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// DefaultPolygonBaseURL is Polygon's REST endpoint.
const DefaultPolygonBaseURL = "https://api.polygon.io"

// PolygonOptions configure PolygonClock.
type PolygonOptions struct {
	BaseURL            string
	Timeout            time.Duration
	RateLimitPerMinute int
}

// PolygonClock asks Polygon's market status endpoint whether the market is
// open. The answer reflects the current instant; the now argument is ignored.
type PolygonClock struct {
	client      *resty.Client
	apiKey      string
	rateLimiter *rate.Limiter
}

// NewPolygonClock creates a clock for the given API key.
func NewPolygonClock(apiKey string, optFns ...func(o *PolygonOptions)) *PolygonClock {
	opts := PolygonOptions{
		BaseURL:            DefaultPolygonBaseURL,
		Timeout:            10 * time.Second,
		RateLimitPerMinute: 5, // free plan allowance
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	client.SetTimeout(opts.Timeout)

	return &PolygonClock{
		client:      client,
		apiKey:      apiKey,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(opts.RateLimitPerMinute)/60), 1),
	}
}

// IsOpen implements Clock.
func (c *PolygonClock) IsOpen(ctx context.Context, _ time.Time) (bool, error) {
	if c.apiKey == "" {
		return false, fmt.Errorf("%w: polygon api key not configured", ErrCalendarUnavailable)
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("%w: %v", ErrCalendarUnavailable, err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("apiKey", c.apiKey).
		Get("/v1/marketstatus/now")
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCalendarUnavailable, err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("%w: polygon status %d", ErrCalendarUnavailable, resp.StatusCode())
	}

	body := resp.String()
	if !gjson.Valid(body) {
		return false, fmt.Errorf("%w: invalid polygon response", ErrCalendarUnavailable)
	}
	market := gjson.Get(body, "market")
	if !market.Exists() {
		return false, fmt.Errorf("%w: polygon response has no market field", ErrCalendarUnavailable)
	}
	return market.String() == "open", nil
}
