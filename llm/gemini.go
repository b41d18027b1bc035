package llm

import (
	"context"
	"strings"

	"github.com/siherrmann/chipnews/helper"
	"google.golang.org/genai"
)

// Gemini generates text through the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini generator.
// A BaseURL overrides the API endpoint.
func NewGemini(cfg Config) (*Gemini, error) {
	if err := cfg.check(helper.ProviderGemini, "GEMINI_API_KEY"); err != nil {
		return nil, err
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, helper.NewError("gemini client", err)
	}

	return &Gemini{client: client, model: cfg.Model}, nil
}

// Name returns the provider name.
func (g *Gemini) Name() string {
	return helper.ProviderGemini
}

// Generate sends the prompt as a single user turn.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		[]*genai.Content{{Role: genai.RoleUser, Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return "", helper.NewError("gemini generate", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

func init() {
	Register(helper.ProviderGemini, func(cfg Config) (Generator, error) {
		return NewGemini(cfg)
	})
}
