package notify

import (
	"context"
	"fmt"
	"sync"
)

// DefaultRetention is the number of notifications an Inbox keeps.
const DefaultRetention = 100

// Inbox is a bounded, in-memory notification list read by the UI. The
// oldest notifications are evicted first.
type Inbox struct {
	mu        sync.RWMutex
	items     []Notification
	retention int

	subMu       sync.Mutex
	subscribers map[chan Notification]struct{}

	onAck func(Notification)
}

// NewInbox creates an Inbox keeping at most retention notifications.
func NewInbox(retention int) *Inbox {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Inbox{
		retention:   retention,
		subscribers: make(map[chan Notification]struct{}),
	}
}

// Deliver stores n and forwards it to subscribers.
func (b *Inbox) Deliver(_ context.Context, n Notification) error {
	b.mu.Lock()
	b.items = append(b.items, n)
	if over := len(b.items) - b.retention; over > 0 {
		b.items = append([]Notification(nil), b.items[over:]...)
	}
	b.mu.Unlock()

	b.subMu.Lock()
	for ch := range b.subscribers {
		select {
		case ch <- n:
		default:
		}
	}
	b.subMu.Unlock()
	return nil
}

// List returns notifications newest first. With unackedOnly set, only
// unacknowledged ones are returned.
func (b *Inbox) List(unackedOnly bool) []Notification {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Notification, 0, len(b.items))
	for i := len(b.items) - 1; i >= 0; i-- {
		if unackedOnly && b.items[i].Acknowledged {
			continue
		}
		out = append(out, b.items[i])
	}
	return out
}

// OnAcknowledge registers fn to run after every acknowledgement. It must be
// set before the inbox is shared.
func (b *Inbox) OnAcknowledge(fn func(Notification)) {
	b.onAck = fn
}

// Acknowledge marks a notification acknowledged. Acknowledging twice is
// not an error; there is no way back to unacknowledged.
func (b *Inbox) Acknowledge(id string) (Notification, error) {
	b.mu.Lock()
	var (
		n     Notification
		found bool
	)
	for i := range b.items {
		if b.items[i].ID == id {
			b.items[i].Acknowledged = true
			n, found = b.items[i], true
			break
		}
	}
	b.mu.Unlock()

	if !found {
		return Notification{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if b.onAck != nil {
		b.onAck(n)
	}
	return n, nil
}

// Restore preloads notifications, oldest first, without notifying
// subscribers.
func (b *Inbox) Restore(ns []Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append([]Notification(nil), ns...)
	if over := len(b.items) - b.retention; over > 0 {
		b.items = b.items[over:]
	}
}

// Latest returns the newest notification of kind.
func (b *Inbox) Latest(kind Kind) (Notification, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i := len(b.items) - 1; i >= 0; i-- {
		if b.items[i].Kind == kind {
			return b.items[i], true
		}
	}
	return Notification{}, false
}

// Subscribe returns a channel receiving every delivered notification.
func (b *Inbox) Subscribe() chan Notification {
	ch := make(chan Notification, 16)
	b.subMu.Lock()
	b.subscribers[ch] = struct{}{}
	b.subMu.Unlock()
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Inbox) Unsubscribe(ch chan Notification) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}
