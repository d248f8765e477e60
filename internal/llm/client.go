package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrIncompleteConfig is returned when the base URL, key or model is missing.
var ErrIncompleteConfig = errors.New("api base, api key and model are required")

// Client calls any OpenAI-compatible chat completions endpoint.
// The endpoint is chosen per call, so one Client serves changing settings.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new LLM client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *Client) openAI(cfg Config) *openai.Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.APIBase, "/") + "/v1"
	oc.HTTPClient = c.httpClient
	return openai.NewClientWithConfig(oc)
}

func toOpenAI(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

// Chat sends the conversation and returns the first choice's content,
// or "" when the server returned no choices.
func (c *Client) Chat(ctx context.Context, cfg Config, messages []Message) (string, error) {
	if !cfg.Complete() {
		return "", ErrIncompleteConfig
	}

	resp, err := c.openAI(cfg).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    cfg.Model,
		Messages: toOpenAI(messages),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// StreamChat sends the conversation and calls callback for each content delta.
func (c *Client) StreamChat(ctx context.Context, cfg Config, messages []Message, callback func(chunk string) error) error {
	if !cfg.Complete() {
		return ErrIncompleteConfig
	}

	stream, err := c.openAI(cfg).CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    cfg.Model,
		Messages: toOpenAI(messages),
		Stream:   true,
	})
	if err != nil {
		return fmt.Errorf("chat completion stream: %w", err)
	}
	defer func() {
		_ = stream.Close()
	}()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read stream: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if chunk := resp.Choices[0].Delta.Content; chunk != "" {
			if err := callback(chunk); err != nil {
				return fmt.Errorf("callback error: %w", err)
			}
		}
		if resp.Choices[0].FinishReason != "" {
			return nil
		}
	}
}

// ListModels returns the model ids the endpoint advertises.
func (c *Client) ListModels(ctx context.Context, cfg Config) ([]string, error) {
	if cfg.APIBase == "" || cfg.APIKey == "" {
		return nil, ErrIncompleteConfig
	}

	list, err := c.openAI(cfg).ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}
