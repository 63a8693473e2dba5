package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/urmzd/homecare/pkg/retry"
)

// OpenAI completes chats against any OpenAI-compatible endpoint.
type OpenAI struct {
	client     *openai.Client
	model      string
	embedModel string
	defaults   Options
}

// NewOpenAI creates a client. An empty baseURL uses the public API.
func NewOpenAI(baseURL, apiKey, model string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		defaults: DefaultOptions(),
	}
}

// WithOptions replaces the default sampling options. Zero fields keep
// the built-in defaults.
func (o *OpenAI) WithOptions(opts Options) *OpenAI {
	o.defaults = opts.merge(DefaultOptions())
	return o
}

// WithEmbedModel sets the embedding model.
func (o *OpenAI) WithEmbedModel(model string) *OpenAI {
	o.embedModel = model
	return o
}

// Complete returns the first choice's content.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	opts := req.Options.merge(o.defaults)

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}

	creq := openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    msgs,
		Temperature: float32(opts.Temperature),
		TopP:        float32(opts.TopP),
	}
	if opts.NumPredict > 0 {
		creq.MaxTokens = opts.NumPredict
	}

	resp, err := o.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return "", classifyOpenAI(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns one vector per text.
func (o *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(o.embedModel),
	})
	if err != nil {
		return nil, classifyOpenAI(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d texts", len(resp.Data), len(texts))
	}
	out := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("openai returned embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func classifyOpenAI(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 &&
		apiErr.HTTPStatusCode != http.StatusTooManyRequests {
		return retry.Permanent(fmt.Errorf("openai: %w", err))
	}
	return fmt.Errorf("openai: %w", err)
}
