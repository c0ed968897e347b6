// Package notify sends push notifications to the human watching the floor.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hupe1980/tradingfloor/core"
	"github.com/hupe1980/tradingfloor/tool"
	"github.com/tidwall/gjson"
)

// DefaultPushoverURL is the Pushover message endpoint.
const DefaultPushoverURL = "https://api.pushover.net/1/messages.json"

// Notifier delivers a short message.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// PushoverOptions configure Pushover.
type PushoverOptions struct {
	URL     string
	Timeout time.Duration
}

// Pushover sends messages through the Pushover API.
type Pushover struct {
	client *resty.Client
	url    string
	token  string
	user   string
}

// NewPushover creates a Pushover notifier.
func NewPushover(token, user string, optFns ...func(o *PushoverOptions)) *Pushover {
	opts := PushoverOptions{URL: DefaultPushoverURL, Timeout: 10 * time.Second}
	for _, fn := range optFns {
		fn(&opts)
	}
	client := resty.New()
	client.SetTimeout(opts.Timeout)
	return &Pushover{client: client, url: opts.URL, token: token, user: user}
}

// Send implements Notifier.
func (p *Pushover) Send(ctx context.Context, message string) error {
	if p.token == "" || p.user == "" {
		return fmt.Errorf("pushover credentials not configured")
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"token":   p.token,
			"user":    p.user,
			"message": message,
		}).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("pushover: %w", err)
	}
	if resp.IsError() {
		errs := gjson.Get(resp.String(), "errors").String()
		return fmt.Errorf("pushover: status %d %s", resp.StatusCode(), errs)
	}
	if status := gjson.Get(resp.String(), "status"); status.Exists() && status.Int() != 1 {
		return fmt.Errorf("pushover: request rejected: %s", gjson.Get(resp.String(), "errors").String())
	}
	return nil
}

// Tool exposes n as the "push" tool.
func Tool(n Notifier) tool.Tool {
	return tool.NewFunctionTool(
		"push",
		"Send a push notification with this brief message",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message": map[string]any{"type": "string", "description": "A brief message"},
			},
			"required": []string{"message"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			if err := n.Send(tc.Context(), tool.StringArg(args, "message")); err != nil {
				return nil, err
			}
			return "Push notification sent", nil
		},
	)
}
