package home

import (
	"sort"
	"strings"
	"sync"

	"github.com/urmzd/homecare/pkg/device"
)

// Preferences holds the user's reminder and notification opt-outs.
type Preferences struct {
	mu          sync.RWMutex
	doNotRemind map[string]struct{}
	doNotNotify map[device.Key]struct{}
}

// NewPreferences creates empty preferences.
func NewPreferences() *Preferences {
	return &Preferences{
		doNotRemind: make(map[string]struct{}),
		doNotNotify: make(map[device.Key]struct{}),
	}
}

// AddDoNotRemind stores item lower-cased. Empty items are ignored.
func (p *Preferences) AddDoNotRemind(item string) {
	item = strings.ToLower(strings.TrimSpace(item))
	if item == "" {
		return
	}
	p.mu.Lock()
	p.doNotRemind[item] = struct{}{}
	p.mu.Unlock()
}

// RemoveDoNotRemind deletes item and reports whether it was present.
func (p *Preferences) RemoveDoNotRemind(item string) bool {
	item = strings.ToLower(strings.TrimSpace(item))
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.doNotRemind[item]; !ok {
		return false
	}
	delete(p.doNotRemind, item)
	return true
}

// DoNotRemind lists the entries in sorted order.
func (p *Preferences) DoNotRemind() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.doNotRemind))
	for k := range p.doNotRemind {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Suppresses returns the entry that message matches, if any. A message
// matches when either side contains the other, case-insensitively.
func (p *Preferences) Suppresses(message string) (string, bool) {
	msg := strings.ToLower(strings.TrimSpace(message))
	if msg == "" {
		return "", false
	}
	for _, item := range p.DoNotRemind() {
		if strings.Contains(msg, item) || strings.Contains(item, msg) {
			return item, true
		}
	}
	return "", false
}

// SetNotify enables or disables device-left-on notifications for key.
func (p *Preferences) SetNotify(key device.Key, notify bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if notify {
		delete(p.doNotNotify, key)
		return
	}
	p.doNotNotify[key] = struct{}{}
}

// ShouldNotify reports whether device-left-on notifications are enabled for key.
func (p *Preferences) ShouldNotify(key device.Key) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, muted := p.doNotNotify[key]
	return !muted
}

// Muted lists devices with notifications disabled, ordered by name.
func (p *Preferences) Muted() []device.Key {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]device.Key, 0, len(p.doNotNotify))
	for k := range p.doNotNotify {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func (p *Preferences) restore(doNotRemind []string, muted []device.Key) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.doNotRemind = make(map[string]struct{}, len(doNotRemind))
	for _, item := range doNotRemind {
		p.doNotRemind[strings.ToLower(item)] = struct{}{}
	}
	p.doNotNotify = make(map[device.Key]struct{}, len(muted))
	for _, k := range muted {
		p.doNotNotify[k] = struct{}{}
	}
}
