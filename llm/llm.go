package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/siherrmann/chipnews/helper"
)

// Generator turns a prompt into text.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds the settings of one provider instance.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Factory creates a generator from its config.
type Factory func(cfg Config) (Generator, error)

var registry = map[string]Factory{}

// Register makes a provider available under name. Names are case-insensitive.
func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

// New creates a generator of the named provider.
func New(name string, cfg Config) (Generator, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, helper.NewError("new generator", fmt.Errorf("%w: LLM_PROVIDER", helper.ErrMissingConfig))
	}
	factory := registry[key]
	if factory == nil {
		return nil, helper.NewError("new generator", fmt.Errorf("unsupported llm provider: %s", name))
	}
	return factory(cfg)
}

// FromConfiguration creates a generator for the given model using the
// provider and credentials of the configuration.
func FromConfiguration(c helper.LLMConfiguration, model string) (Generator, error) {
	cfg := Config{Model: model}
	switch strings.ToLower(c.Provider) {
	case helper.ProviderGemini:
		cfg.APIKey = c.GeminiAPIKey
	case helper.ProviderOpenAI:
		cfg.APIKey = c.OpenAIAPIKey
		cfg.BaseURL = c.OpenAIBaseURL
	}
	return New(c.Provider, cfg)
}

func (c Config) check(provider string, keyName string) error {
	if strings.TrimSpace(c.APIKey) == "" {
		return helper.NewError(provider, fmt.Errorf("%w: %s", helper.ErrMissingConfig, keyName))
	}
	if strings.TrimSpace(c.Model) == "" {
		return helper.NewError(provider, fmt.Errorf("%w: model", helper.ErrMissingConfig))
	}
	return nil
}
