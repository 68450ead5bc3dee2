// Package llm wraps an OpenAI-compatible chat completion endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultTimeout = 30 * time.Second
	systemPrompt   = "You are a professional Git commit message generator. " +
		"Reply with the commit message only, without code fences or commentary."
	branchSystemPrompt = "You name Git branches. Reply with the branch name only."
)

var (
	ErrMissingAPIKey = errors.New("API key not set, run `gsc init` or `gsc config set api_key YOUR_API_KEY`")
	ErrEmptyResponse = errors.New("LLM returned empty response")
)

type Options struct {
	APIKey  string
	APIBase string
	Timeout time.Duration
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client sends prompts to the configured model. Each request carries its
// own timeout; callers do not retry.
type Client struct {
	opts Options
	chat chatCompleter
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	c := &Client{opts: opts}
	if opts.APIKey != "" {
		clientConfig := openai.DefaultConfig(opts.APIKey)
		if opts.APIBase != "" {
			clientConfig.BaseURL = opts.APIBase
		}
		c.chat = openai.NewClientWithConfig(clientConfig)
	}
	return c
}

// GenerateCommitMessage sends prompt to model and returns the trimmed reply.
func (c *Client) GenerateCommitMessage(ctx context.Context, prompt string, model string) (string, error) {
	return c.complete(ctx, systemPrompt, prompt, model)
}

// GenerateBranchName sends a branch-naming prompt to model and returns the
// trimmed reply. The reply is not validated as a ref name.
func (c *Client) GenerateBranchName(ctx context.Context, prompt string, model string) (string, error) {
	return c.complete(ctx, branchSystemPrompt, prompt, model)
}

func (c *Client) complete(ctx context.Context, system, prompt, model string) (string, error) {
	if c.chat == nil {
		return "", ErrMissingAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("failed to call LLM: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// TestConnection sends a minimal request to verify credentials and model.
func (c *Client) TestConnection(ctx context.Context, model string) error {
	if c.chat == nil {
		return ErrMissingAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	_, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		Messages:  []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "ping"}},
		MaxTokens: 1,
	})
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}
