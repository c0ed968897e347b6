// Package provider maps model identifiers to concrete model clients.
//
// Dispatch follows the identifier naming convention:
//
//	contains "/"        -> OpenRouter
//	contains "deepseek" -> DeepSeek
//	contains "grok"     -> xAI Grok
//	contains "gemini"   -> Google Gemini (OpenAI-compatible endpoint)
//	contains "claude"   -> Anthropic
//	otherwise           -> OpenAI
package provider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/tradingfloor/model"
	anthropicmodel "github.com/hupe1980/tradingfloor/model/anthropic"
	openaimodel "github.com/hupe1980/tradingfloor/model/openai"
)

const (
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DeepSeekBaseURL   = "https://api.deepseek.com/v1"
	GrokBaseURL       = "https://api.x.ai/v1"
	GeminiBaseURL     = "https://generativelanguage.googleapis.com/v1beta/openai/"
)

// ErrMissingCredential is returned when the provider selected for a model id
// has no API key configured.
var ErrMissingCredential = errors.New("missing provider credential")

// Credentials holds per-vendor API keys.
type Credentials struct {
	OpenAI     string
	DeepSeek   string
	Grok       string
	Google     string
	OpenRouter string
	Anthropic  string
}

// Route describes which vendor serves a model id.
type Route struct {
	Provider string
	BaseURL  string
}

// RouteFor applies the naming convention to a model id.
func RouteFor(modelID string) Route {
	id := strings.ToLower(modelID)
	switch {
	case strings.Contains(id, "/"):
		return Route{Provider: "openrouter", BaseURL: OpenRouterBaseURL}
	case strings.Contains(id, "deepseek"):
		return Route{Provider: "deepseek", BaseURL: DeepSeekBaseURL}
	case strings.Contains(id, "grok"):
		return Route{Provider: "grok", BaseURL: GrokBaseURL}
	case strings.Contains(id, "gemini"):
		return Route{Provider: "google", BaseURL: GeminiBaseURL}
	case strings.Contains(id, "claude"):
		return Route{Provider: "anthropic"}
	default:
		return Route{Provider: "openai"}
	}
}

// Resolver builds model clients from model ids.
type Resolver struct {
	creds Credentials
}

// NewResolver returns a resolver backed by the given credentials.
func NewResolver(creds Credentials) *Resolver {
	return &Resolver{creds: creds}
}

// Resolve implements model.Resolver.
func (r *Resolver) Resolve(modelID string) (model.Model, error) {
	if modelID == "" {
		return nil, errors.New("empty model id")
	}
	route := RouteFor(modelID)
	key := r.creds.Key(route.Provider)
	if key == "" && route.Provider != "openai" {
		return nil, fmt.Errorf("%w: %s (model %q)", ErrMissingCredential, route.Provider, modelID)
	}

	if route.Provider == "anthropic" {
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.Model = anthropic.Model(modelID)
			o.APIKey = key
		}), nil
	}

	return openaimodel.NewModel(func(o *openaimodel.Options) {
		o.Model = modelID
		o.Provider = route.Provider
		o.BaseURL = route.BaseURL
		o.APIKey = key
	}), nil
}

// Key returns the API key for a provider name as reported by RouteFor.
func (c Credentials) Key(provider string) string {
	switch provider {
	case "openrouter":
		return c.OpenRouter
	case "deepseek":
		return c.DeepSeek
	case "grok":
		return c.Grok
	case "google":
		return c.Google
	case "anthropic":
		return c.Anthropic
	default:
		return c.OpenAI
	}
}

var _ model.Resolver = (*Resolver)(nil)
