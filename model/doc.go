// Package model defines the provider-agnostic abstractions for talking to
// language models.
//
// Providers (OpenAI-compatible endpoints, Anthropic) implement Model in their
// own subpackages; model/provider binds a model identifier to the right
// provider by naming convention. MockModel offers scripted responses for tests.
package model
