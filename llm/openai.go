package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/siherrmann/chipnews/helper"
)

// OpenAI generates text through an OpenAI compatible chat completion API.
// Setting BaseURL to Gemini's OpenAI endpoint serves Gemini models.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI compatible generator.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if err := cfg.check(helper.ProviderOpenAI, "OPENAI_API_KEY"); err != nil {
		return nil, err
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
	}, nil
}

// Name returns the provider name.
func (o *OpenAI) Name() string {
	return helper.ProviderOpenAI
}

// Generate sends the prompt as a single user message.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", helper.NewError("openai generate", err)
	}
	if len(resp.Choices) == 0 {
		return "", helper.NewError("openai generate", fmt.Errorf("no choices returned"))
	}
	return resp.Choices[0].Message.Content, nil
}

func init() {
	Register(helper.ProviderOpenAI, func(cfg Config) (Generator, error) {
		return NewOpenAI(cfg)
	})
}
