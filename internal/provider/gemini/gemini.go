// Package gemini implements the provider interface on top of the
// Google Gemini API.
package gemini

import (
	"context"
	"time"

	"github.com/campuslink/campuslink/internal/provider"
	"github.com/campuslink/campuslink/internal/tool"
)

// Provider implements provider.Provider for Google Gemini.
type Provider struct {
	client       Client
	modelName    string
	systemPrompt string
	timeout      time.Duration
}

// Option configures a Provider.
type Option func(*Provider)

// WithSystemPrompt sets the system instruction sent with every request.
func WithSystemPrompt(prompt string) Option {
	return func(p *Provider) { p.systemPrompt = prompt }
}

// WithTimeout bounds each round trip to the model service.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.timeout = d }
}

// New creates a Provider with the specified client and model.
func New(client Client, modelName string, opts ...Option) *Provider {
	p := &Provider{
		client:    client,
		modelName: modelName,
		timeout:   45 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Generate sends the turn sequence to the Gemini API and returns the
// model's reply.
func (p *Provider) Generate(ctx context.Context, turns []provider.Turn, tools []tool.Declaration) (*provider.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	contents := toContents(turns)
	config := generateConfig(p.systemPrompt, tools)

	resp, err := p.client.GenerateContent(ctx, p.modelName, contents, config)
	if err != nil {
		return nil, mapAPIError(err)
	}

	return fromResponse(resp), nil
}
