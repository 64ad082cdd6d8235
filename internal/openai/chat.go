package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ChatAPI defines the interface for chat completion calls
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatClient wraps the OpenAI chat API for single-prompt generation.
// Analysis extraction and dialogue synthesis use separate instances with
// their own model and sampling temperature.
type ChatClient struct {
	api         ChatAPI
	model       string
	temperature float32
}

type ChatConfig struct {
	APIKey      string
	Model       string
	Temperature float32
}

// NewChatClient creates a chat client with the given model and temperature.
func NewChatClient(cfg ChatConfig) *ChatClient {
	model := cfg.Model
	if model == "" {
		model = DefaultChatModel
	}
	return &ChatClient{
		api:         openai.NewClient(cfg.APIKey),
		model:       model,
		temperature: cfg.Temperature,
	}
}

// NewChatClientWithAPI creates a chat client over an explicit API, for tests.
func NewChatClientWithAPI(api ChatAPI, model string, temperature float32) *ChatClient {
	if model == "" {
		model = DefaultChatModel
	}
	return &ChatClient{api: api, model: model, temperature: temperature}
}

// Generate sends a single user prompt and returns the raw completion text.
func (c *ChatClient) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyText
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	return resp.Choices[0].Message.Content, nil
}
