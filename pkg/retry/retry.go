// Package retry runs calls to remote collaborators with bounded
// exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// ErrUnavailable matches every TransportError
var ErrUnavailable = errors.New("service unavailable")

// TransportError is returned once all attempts against a collaborator failed.
type TransportError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s unavailable after %d attempt(s): %v", e.Op, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrUnavailable) match.
func (e *TransportError) Is(target error) bool {
	return target == ErrUnavailable
}

// Policy bounds the retries.
type Policy struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
}

// DefaultPolicy returns three attempts starting at 500ms.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do calls fn until it succeeds, returns a permanent error, or the attempts
// are exhausted. Exhaustion yields a *TransportError.
func Do(ctx context.Context, op string, p Policy, fn func(ctx context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}

	eb := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		eb.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		eb.MaxInterval = p.MaxInterval
	}
	eb.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(p.MaxAttempts-1)), ctx)

	attempts := 0
	permanent := false
	err := backoff.RetryNotify(func() error {
		attempts++
		err := fn(ctx)
		var perr *backoff.PermanentError
		if errors.As(err, &perr) {
			permanent = true
		}
		return err
	}, b, func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("op", op).Int("attempt", attempts).Dur("retry_in", wait).Msg("Call failed, retrying")
	})

	if err == nil || permanent {
		return err
	}
	return &TransportError{Op: op, Attempts: attempts, Err: err}
}
