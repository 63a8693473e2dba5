// Package llm talks to the language model: completion clients for Ollama
// and OpenAI-compatible servers, the system prompt, the per-turn state
// context and the rolling conversation memory.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/urmzd/homecare/pkg/retry"
)

// Role of a chat message.
type Role string

// Chat roles
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Options are sampling parameters. Zero fields fall back to the client's
// defaults.
type Options struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	NumCtx      int     `mapstructure:"num_ctx"`
	NumPredict  int     `mapstructure:"num_predict"`
}

// DefaultOptions are the chat sampling parameters.
func DefaultOptions() Options {
	return Options{Temperature: 0.7, TopP: 0.9, NumCtx: 16384}
}

func (o Options) merge(def Options) Options {
	if o.Temperature == 0 {
		o.Temperature = def.Temperature
	}
	if o.TopP == 0 {
		o.TopP = def.TopP
	}
	if o.NumCtx == 0 {
		o.NumCtx = def.NumCtx
	}
	if o.NumPredict == 0 {
		o.NumPredict = def.NumPredict
	}
	return o
}

// Request is a completion request.
type Request struct {
	Messages []Message
	Options  Options
}

// Completer produces the assistant's raw reply to a conversation.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrEmptyRequest indicates a request without messages
var ErrEmptyRequest = errors.New("completion request has no messages")

// Retrying wraps a Completer with bounded retries. Failures after the last
// attempt surface as *retry.TransportError.
type Retrying struct {
	next   Completer
	policy retry.Policy
}

// WithRetry wraps c.
func WithRetry(c Completer, p retry.Policy) *Retrying {
	return &Retrying{next: c, policy: p}
}

// Complete calls the wrapped completer until it succeeds.
func (r *Retrying) Complete(ctx context.Context, req Request) (string, error) {
	if len(req.Messages) == 0 {
		return "", ErrEmptyRequest
	}
	var out string
	err := retry.Do(ctx, "llm completion", r.policy, func(ctx context.Context) error {
		var err error
		out, err = r.next.Complete(ctx, req)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return out, nil
}
