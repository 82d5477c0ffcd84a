// Package llm wraps the OpenAI chat API for report generation.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Completer produces a completion for a system/user prompt pair.
// Satisfied by Client; test doubles stand in during tests.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Model() string
}

// Client is an OpenAI-backed Completer.
type Client struct {
	client openai.Client
	model  string
}

// New creates a client for the given model. The API key comes from the
// OPENAI_API_KEY environment variable.
func New(model string) (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(3),
	)

	return &Client{client: client, model: model}, nil
}

// Complete sends one chat completion request. Low temperature keeps the
// reports reproducible across runs.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}
