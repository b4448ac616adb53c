// Package client adapts the remote chat providers to eino chat models.
package client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog/log"
)

// KeySource returns the API key configured for a provider.
type KeySource interface {
	GetApiKey(provider string) (string, error)
}

// Factory builds and caches one chat model per model id.
type Factory struct {
	catalog  *Catalog
	keys     KeySource
	builders map[string]Builder

	mu    sync.Mutex
	gen   GenerationConfig
	cache map[string]model.BaseChatModel
}

type FactoryOption func(*Factory)

// WithBuilder replaces the builder used for a provider.
func WithBuilder(providerID string, b Builder) FactoryOption {
	return func(f *Factory) {
		f.builders[providerID] = b
	}
}

func NewFactory(catalog *Catalog, keys KeySource, gen GenerationConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		catalog: catalog,
		keys:    keys,
		gen:     gen,
		cache:   make(map[string]model.BaseChatModel),
		builders: map[string]Builder{
			ProviderGemini:    NewGeminiModel,
			ProviderOpenAI:    NewOpenAIModel,
			ProviderAnthropic: NewClaudeModel,
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Catalog returns the model catalog the factory resolves ids against.
func (f *Factory) Catalog() *Catalog {
	return f.catalog
}

// ChatModel returns the chat model for modelID, creating it on first use.
// The API key is read only when a model is created.
func (f *Factory) ChatModel(ctx context.Context, modelID string) (model.BaseChatModel, error) {
	info, err := f.catalog.Resolve(modelID)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if cm, ok := f.cache[info.APIName]; ok {
		return cm, nil
	}

	build, ok := f.builders[info.ProviderID]
	if !ok {
		return nil, fmt.Errorf("unsupported provider: %s", info.ProviderID)
	}
	if f.keys == nil {
		return nil, fmt.Errorf("no credential store configured")
	}
	apiKey, err := f.keys.GetApiKey(info.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get API key for %s: %w", info.ProviderID, err)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API key for %s is not configured", info.ProviderID)
	}

	cm, err := build(ctx, info.APIName, apiKey, f.gen)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", info.ProviderID, err)
	}
	f.cache[info.APIName] = cm
	log.Debug().Str("model", info.APIName).Str("provider", info.ProviderID).Msg("chat model created")
	return cm, nil
}

// Reset drops every cached model so the next call re-reads credentials.
func (f *Factory) Reset() {
	f.mu.Lock()
	f.cache = make(map[string]model.BaseChatModel)
	f.mu.Unlock()
}

// SetGenerationConfig changes the sampling parameters for models created from now on.
func (f *Factory) SetGenerationConfig(gen GenerationConfig) {
	f.mu.Lock()
	f.gen = gen
	f.cache = make(map[string]model.BaseChatModel)
	f.mu.Unlock()
}
