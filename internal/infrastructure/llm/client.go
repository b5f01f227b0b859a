// Package llm wraps the OpenAI chat-completions API for content generation.
package llm

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"meetscribe-server/internal/domain/contentgen"
	"meetscribe-server/internal/infrastructure/metrics"
)

// Client issues chat-completion calls with a fixed model and per-call
// timeout.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// NewClient builds an OpenAI-backed LLM client.
func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		api:     openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

var _ contentgen.LLM = (*Client)(nil)

// Generate runs one chat completion with a system instruction and user
// content, returning the generated text.
func (c *Client) Generate(ctx context.Context, systemPrompt, userContent string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := time.Now()
	defer func() {
		metrics.RecordLLMDuration(c.model, time.Since(started).Seconds())
	}()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userContent},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
