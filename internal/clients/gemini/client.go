// Package gemini talks to Gemini through its OpenAI-compatible endpoint.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel      = "gemini-1.5-flash"
	DefaultEmbedModel = "text-embedding-004"
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("Gemini API key is not configured")

type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	EmbedModel      string
	MaxOutputTokens int
	HTTPTimeout     time.Duration
}

type Client interface {
	GenerateText(ctx context.Context, system, prompt string) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// StatusError is an upstream failure with its HTTP status.
type StatusError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini error (%d): %s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error { return e.Err }

func (e *StatusError) HTTPStatusCode() int { return e.StatusCode }

type client struct {
	log        *logger.Logger
	api        openai.Client
	modelID    string
	embedModel string
	maxTokens  int
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = DefaultEmbedModel
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 4096
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}

	api := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(normalizeBaseURL(cfg.BaseURL)),
		// retries are owned by the caller's policy
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
	)

	return &client{
		log:        log.With("client", "Gemini"),
		api:        api,
		modelID:    cfg.Model,
		embedModel: cfg.EmbedModel,
		maxTokens:  cfg.MaxOutputTokens,
	}, nil
}

func normalizeBaseURL(raw string) string {
	u := strings.TrimSpace(raw)
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}

func (c *client) Model() string { return c.modelID }

func (c *client) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.modelID),
		Messages:  buildMessages(system, prompt),
		MaxTokens: openai.Int(int64(c.maxTokens)),
	})
	if err != nil {
		return "", wrapError(err)
	}
	return extractText(resp)
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		text = " "
	}
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(c.embedModel),
	})
	if err != nil {
		return nil, wrapError(err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return nil, fmt.Errorf("gemini embeddings: empty response")
	}
	raw := resp.Data[0].Embedding
	out := make([]float32, len(raw))
	for i, v := range raw {
		out[i] = float32(v)
	}
	return out, nil
}

func buildMessages(system, prompt string) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))
	return messages
}

var (
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrSafetyBlocked is returned when the completion was stopped by the
	// content filter.
	ErrSafetyBlocked = errors.New("response blocked by safety filters")
)

func extractText(resp *openai.ChatCompletion) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return "", ErrSafetyBlocked
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return choice.Message.Content, nil
}

func wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := strings.TrimSpace(apiErr.Message)
		if msg == "" {
			msg = err.Error()
		}
		return &StatusError{StatusCode: apiErr.StatusCode, Message: msg, Err: err}
	}
	return err
}
