// Package openai implements the provider interface against the OpenAI chat
// completions API.
package openai

import (
	"context"
	"errors"
	"log/slog"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/attractorlabs/colloquy/pkg/chat"
	"github.com/attractorlabs/colloquy/pkg/model/provider"
)

// Client wraps the OpenAI SDK client.
type Client struct {
	client *openai.Client
}

// Opt customizes a Client.
type Opt func(*options)

type options struct {
	apiKey  string
	baseURL string
}

// WithAPIKey overrides the OPENAI_API_KEY environment variable.
func WithAPIKey(key string) Opt {
	return func(o *options) { o.apiKey = key }
}

// WithBaseURL overrides the default API endpoint.
func WithBaseURL(url string) Opt {
	return func(o *options) { o.baseURL = url }
}

// NewClient creates an OpenAI-backed provider.
func NewClient(opts ...Opt) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	apiKey := o.apiKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}

	slog.Debug("OpenAI client created")
	return &Client{client: openai.NewClientWithConfig(cfg)}, nil
}

// Generate sends one chat completion request and returns the response text.
func (c *Client) Generate(ctx context.Context, req provider.Request) (string, error) {
	slog.Debug("Creating OpenAI chat completion",
		"model", req.Model,
		"message_count", len(req.Messages),
		"max_tokens", req.MaxTokens)

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, msg := range req.Messages {
		role := openai.ChatMessageRoleUser
		if msg.Role == chat.MessageRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     req.Model,
		MaxTokens: int(req.MaxTokens),
		Messages:  messages,
	})
	if err != nil {
		return "", classifyError(ctx, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &provider.Error{
			Kind: provider.ErrorKindServerError,
			Err:  errors.New("response contained no text content"),
		}
	}

	return resp.Choices[0].Message.Content, nil
}

func classifyError(ctx context.Context, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		kind := provider.ClassifyStatus(apiErr.HTTPStatusCode)
		slog.Debug("OpenAI API error", "status", apiErr.HTTPStatusCode, "kind", string(kind))
		return &provider.Error{Kind: kind, Status: apiErr.HTTPStatusCode, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &provider.Error{Kind: provider.ErrorKindTimeout, Err: err}
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return err
	}

	return &provider.Error{Kind: provider.ErrorKindServerError, Err: err}
}
