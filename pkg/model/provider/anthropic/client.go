// Package anthropic implements the provider interface against the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/attractorlabs/colloquy/pkg/chat"
	"github.com/attractorlabs/colloquy/pkg/model/provider"
)

// Client wraps the Anthropic SDK client.
type Client struct {
	client anthropic.Client
}

// Opt customizes a Client.
type Opt func(*options)

type options struct {
	apiKey  string
	baseURL string
}

// WithAPIKey overrides the ANTHROPIC_API_KEY environment variable.
func WithAPIKey(key string) Opt {
	return func(o *options) { o.apiKey = key }
}

// WithBaseURL overrides the default API endpoint.
func WithBaseURL(url string) Opt {
	return func(o *options) { o.baseURL = url }
}

// NewClient creates an Anthropic-backed provider.
func NewClient(opts ...Opt) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	apiKey := o.apiKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY environment variable is required")
	}

	requestOptions := []option.RequestOption{option.WithAPIKey(apiKey)}
	if o.baseURL != "" {
		requestOptions = append(requestOptions, option.WithBaseURL(o.baseURL))
	}

	slog.Debug("Anthropic client created")
	return &Client{client: anthropic.NewClient(requestOptions...)}, nil
}

// Generate sends one non-streaming message request and returns the
// concatenated text of the response.
func (c *Client) Generate(ctx context.Context, req provider.Request) (string, error) {
	slog.Debug("Creating Anthropic message",
		"model", req.Model,
		"message_count", len(req.Messages),
		"max_tokens", req.MaxTokens)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages:  convertMessages(req.Messages),
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", classifyError(ctx, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text := sb.String()
	if text == "" {
		return "", &provider.Error{
			Kind: provider.ErrorKindServerError,
			Err:  errors.New("response contained no text content"),
		}
	}

	return text, nil
}

func convertMessages(messages []chat.Message) []anthropic.MessageParam {
	converted := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case chat.MessageRoleAssistant:
			converted = append(converted, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			converted = append(converted, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return converted
}

// classifyError maps SDK and transport failures onto the provider error
// taxonomy so the engine can decide whether to retry.
func classifyError(ctx context.Context, err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		kind := provider.ClassifyStatus(apiErr.StatusCode)
		slog.Debug("Anthropic API error", "status", apiErr.StatusCode, "kind", string(kind))
		return &provider.Error{Kind: kind, Status: apiErr.StatusCode, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &provider.Error{Kind: provider.ErrorKindTimeout, Err: err}
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		// Cancellation is not a model failure; let it propagate untouched.
		return err
	}

	// Transport-level failures (connection reset, DNS) are worth retrying.
	return &provider.Error{Kind: provider.ErrorKindServerError, Err: err}
}
