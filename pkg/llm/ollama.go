package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/urmzd/homecare/pkg/retry"
)

// Ollama completes chats against an Ollama server.
type Ollama struct {
	client     *api.Client
	model      string
	embedModel string
	defaults   Options
}

// NewOllama creates a client for host (e.g. http://localhost:11434).
// httpClient may be nil.
func NewOllama(host, model string, httpClient *http.Client) (*Ollama, error) {
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Ollama{
		client:   api.NewClient(u, httpClient),
		model:    model,
		defaults: DefaultOptions(),
	}, nil
}

// WithOptions replaces the default sampling options. Zero fields keep
// the built-in defaults.
func (o *Ollama) WithOptions(opts Options) *Ollama {
	o.defaults = opts.merge(DefaultOptions())
	return o
}

// WithEmbedModel sets the model used by Embed. It defaults to the chat model.
func (o *Ollama) WithEmbedModel(model string) *Ollama {
	o.embedModel = model
	return o
}

// Model returns the chat model name.
func (o *Ollama) Model() string {
	return o.model
}

// Ping checks that the server is reachable.
func (o *Ollama) Ping(ctx context.Context) error {
	return o.client.Heartbeat(ctx)
}

// Complete runs a non-streaming chat and returns the reply text.
func (o *Ollama) Complete(ctx context.Context, req Request) (string, error) {
	opts := req.Options.merge(o.defaults)
	stream := false

	msgs := make([]api.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, api.Message{Role: string(m.Role), Content: m.Content})
	}

	options := map[string]any{
		"temperature": opts.Temperature,
		"top_p":       opts.TopP,
		"num_ctx":     opts.NumCtx,
	}
	if opts.NumPredict > 0 {
		options["num_predict"] = opts.NumPredict
	}

	var sb strings.Builder
	err := o.client.Chat(ctx, &api.ChatRequest{
		Model:    o.model,
		Messages: msgs,
		Stream:   &stream,
		Options:  options,
	}, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", classifyOllama(err)
	}
	return sb.String(), nil
}

// Embed returns one vector per text.
func (o *Ollama) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	model := o.embedModel
	if model == "" {
		model = o.model
	}
	resp, err := o.client.Embed(ctx, &api.EmbedRequest{Model: model, Input: texts})
	if err != nil {
		return nil, classifyOllama(err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}

// classifyOllama marks client errors other than rate limiting as permanent.
func classifyOllama(err error) error {
	var se api.StatusError
	if errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests {
		return retry.Permanent(fmt.Errorf("ollama: %w", err))
	}
	return fmt.Errorf("ollama: %w", err)
}
