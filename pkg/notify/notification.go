// Package notify evaluates the schedule and the device matrix on a fixed
// cadence and delivers notifications to sinks.
package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/urmzd/homecare/pkg/device"
)

// Kind is the notification type.
type Kind string

// Notification kinds
const (
	KindScheduleDue    Kind = "schedule-due"
	KindScheduleMissed Kind = "schedule-missed"
	KindDeviceLeftOn   Kind = "device-left-on"
	KindCustom         Kind = "custom"
)

// ErrNotFound indicates an unknown notification id
var ErrNotFound = errors.New("notification not found")

// Notification is a message for the user.
type Notification struct {
	ID           string       `json:"id"`
	Kind         Kind         `json:"type"`
	Message      string       `json:"message"`
	Timestamp    time.Time    `json:"timestamp"`
	Acknowledged bool         `json:"acknowledged"`
	ItemID       string       `json:"item_id,omitempty"`
	ItemTime     string       `json:"item_time,omitempty"`
	Activity     string       `json:"activity,omitempty"`
	Devices      []device.Key `json:"devices,omitempty"`
}

// ErrEmptyMessage indicates a custom notification without text
var ErrEmptyMessage = errors.New("notification message must not be empty")

// NewCustom builds an operator-posted notification.
func NewCustom(message string, at time.Time) (Notification, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Notification{}, ErrEmptyMessage
	}
	return Notification{
		ID:        uuid.NewString(),
		Kind:      KindCustom,
		Message:   message,
		Timestamp: at,
	}, nil
}

// Sink receives notifications.
type Sink interface {
	Deliver(ctx context.Context, n Notification) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, n Notification) error

// Deliver calls f.
func (f SinkFunc) Deliver(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// Fanout delivers to every sink and joins their errors.
type Fanout []Sink

// Deliver sends n to each sink in order.
func (f Fanout) Deliver(ctx context.Context, n Notification) error {
	var errs []error
	for _, s := range f {
		if err := s.Deliver(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
