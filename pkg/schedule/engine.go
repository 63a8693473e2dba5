// Package schedule manages the user's daily schedule: recurring items that
// apply to every day and one-time items bound to a single date.
package schedule

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/urmzd/homecare/pkg/activity"
	"github.com/urmzd/homecare/pkg/device"
)

// Item is a schedule entry. An item without a Date recurs daily.
type Item struct {
	ID        string            `json:"id"`
	Time      string            `json:"time"`
	Activity  string            `json:"activity"`
	Actions   []activity.Action `json:"actions,omitempty"`
	Location  device.Room       `json:"location,omitempty"`
	Date      string            `json:"date,omitempty"`
	LastFired string            `json:"last_fired,omitempty"` // Date of the last consumed occurrence
	Expired   bool              `json:"expired,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Recurring reports whether the item applies to every day.
func (i Item) Recurring() bool {
	return i.Date == ""
}

// ActiveOn reports whether the item takes part in evaluation on day.
func (i Item) ActiveOn(day string) bool {
	if i.Expired {
		return false
	}
	return i.Recurring() || i.Date == day
}

// Inert reports whether a one-time item's date is strictly before today.
func (i Item) Inert(today string) bool {
	return i.Expired || (!i.Recurring() && i.Date < today)
}

// FiredOn reports whether the occurrence on day was already consumed.
func (i Item) FiredOn(day string) bool {
	return i.LastFired == day
}

// Selector locates an existing item. Activity and Date are optional.
type Selector struct {
	Time     string
	Activity string
	Date     string
}

// Update holds the new fields of a change. Empty fields are left as-is.
type Update struct {
	Time     string
	Activity string
}

// Engine owns the schedule items.
type Engine struct {
	mu        sync.RWMutex
	items     []Item
	table     activity.Table
	now       func() time.Time
	tolerance time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock; its location defines the user's calendar day.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithTable replaces the activity derivation table.
func WithTable(t activity.Table) Option {
	return func(e *Engine) {
		e.table = t
	}
}

// WithTolerance sets how late an occurrence may be and still count as due.
func WithTolerance(d time.Duration) Option {
	return func(e *Engine) {
		e.tolerance = d
	}
}

// NewEngine creates an empty schedule.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		table:     activity.DefaultTable(),
		now:       time.Now,
		tolerance: time.Minute,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today returns the current calendar day as YYYY-MM-DD.
func (e *Engine) Today() string {
	return e.now().Format(DateLayout)
}

// Add creates an item. A non-empty date makes it a one-time item for that
// date; otherwise it recurs daily.
func (e *Engine) Add(timeStr, label, date string) (Item, error) {
	hhmm, err := NormalizeTime(timeStr)
	if err != nil {
		return Item{}, err
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return Item{}, ErrEmptyActivity
	}

	now := e.now()
	today := now.Format(DateLayout)
	if date != "" {
		if date, err = ParseDate(date); err != nil {
			return Item{}, err
		}
		if date < today {
			return Item{}, fmt.Errorf("%w: %s", ErrPastDate, date)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if existing, ok := e.conflictLocked(hhmm, date, today, ""); ok {
		return Item{}, &ConflictError{Time: hhmm, Existing: existing}
	}

	d, _ := e.table.Derive(label)
	item := Item{
		ID:        uuid.NewString(),
		Time:      hhmm,
		Activity:  label,
		Actions:   d.Actions,
		Location:  d.Location,
		Date:      date,
		CreatedAt: now,
	}
	e.settleLocked(&item, now)
	e.items = append(e.items, item)
	return item, nil
}

// Delete removes the item selected by sel.
func (e *Engine) Delete(sel Selector) (Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx, err := e.findLocked(sel)
	if err != nil {
		return Item{}, err
	}
	removed := e.items[idx]
	e.items = append(e.items[:idx], e.items[idx+1:]...)
	return removed, nil
}

// Change applies upd to the item selected by sel and re-validates the
// result as Add does. It returns the item before and after the change.
func (e *Engine) Change(sel Selector, upd Update) (before, after Item, err error) {
	newTime := ""
	if strings.TrimSpace(upd.Time) != "" {
		if newTime, err = NormalizeTime(upd.Time); err != nil {
			return Item{}, Item{}, err
		}
	}
	newLabel := strings.TrimSpace(upd.Activity)
	if newTime == "" && newLabel == "" {
		return Item{}, Item{}, ErrNothingToChange
	}

	now := e.now()
	today := now.Format(DateLayout)

	e.mu.Lock()
	defer e.mu.Unlock()

	idx, err := e.findLocked(sel)
	if err != nil {
		return Item{}, Item{}, err
	}
	before = e.items[idx]
	after = before
	if len(before.Actions) > 0 {
		after.Actions = append([]activity.Action(nil), before.Actions...)
	}

	if newTime != "" && newTime != before.Time {
		if existing, ok := e.conflictLocked(newTime, before.Date, today, before.ID); ok {
			return Item{}, Item{}, &ConflictError{Time: newTime, Existing: existing}
		}
		after.Time = newTime
		after.LastFired = ""
		e.settleLocked(&after, now)
	}
	if newLabel != "" {
		d, _ := e.table.Derive(newLabel)
		after.Activity = newLabel
		after.Actions = d.Actions
		after.Location = d.Location
	}

	e.items[idx] = after
	return before, after, nil
}

// Rollover expires one-time items dated before today and returns how many
// were expired. Recurring items are untouched.
func (e *Engine) Rollover(today string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for i := range e.items {
		it := &e.items[i]
		if !it.Expired && !it.Recurring() && it.Date < today {
			it.Expired = true
			n++
		}
	}
	return n
}

// MarkFired records that the item's occurrence on day was consumed.
func (e *Engine) MarkFired(id, day string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.items {
		if e.items[i].ID == id {
			e.items[i].LastFired = day
			return nil
		}
	}
	return fmt.Errorf("%w: id %s", ErrNotFound, id)
}

// Active returns the items evaluated on day, ordered by time.
func (e *Engine) Active(day string) []Item {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []Item
	for _, it := range e.items {
		if it.ActiveOn(day) {
			out = append(out, it)
		}
	}
	sortItems(out, day)
	return out
}

// Upcoming returns today's active items followed by future one-time items.
// Inert items are never included.
func (e *Engine) Upcoming() []Item {
	today := e.Today()

	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []Item
	for _, it := range e.items {
		if !it.Inert(today) {
			out = append(out, it)
		}
	}
	sortItems(out, today)
	return out
}

// All returns every item including inert ones, for persistence.
func (e *Engine) All() []Item {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Item, len(e.items))
	copy(out, e.items)
	return out
}

// Restore replaces the schedule with stored items.
func (e *Engine) Restore(items []Item) error {
	for _, it := range items {
		if _, err := NormalizeTime(it.Time); err != nil {
			return fmt.Errorf("item %s: %w", it.ID, err)
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.items = append([]Item(nil), items...)
	return nil
}

// Verify reports an error if two items active on day share a time slot.
// Add and Change never produce that state; a failure means the schedule was
// mutated outside the engine.
func (e *Engine) Verify(day string) error {
	seen := make(map[string]string)
	for _, it := range e.Active(day) {
		if other, ok := seen[it.Time]; ok {
			return fmt.Errorf("schedule invariant violated: %q and %q share %s on %s", other, it.Activity, it.Time, day)
		}
		seen[it.Time] = it.Activity
	}
	return nil
}

// conflictLocked finds an active item that would share the slot hhmm with
// a new item dated date ("" for recurring).
func (e *Engine) conflictLocked(hhmm, date, today, excludeID string) (Item, bool) {
	for _, it := range e.items {
		if it.ID == excludeID || it.Time != hhmm || it.Inert(today) {
			continue
		}
		switch {
		case date == "":
			// A recurring item is active on every remaining day.
			return it, true
		case it.Recurring() || it.Date == date:
			return it, true
		}
	}
	return Item{}, false
}

// findLocked locates the item selected by sel. Without a date, today's
// active items are searched first, then future one-time items.
func (e *Engine) findLocked(sel Selector) (int, error) {
	hhmm, err := NormalizeTime(sel.Time)
	if err != nil {
		return -1, err
	}
	today := e.now().Format(DateLayout)

	match := func(day string) int {
		idx := -1
		for i, it := range e.items {
			if it.Time != hhmm || !it.ActiveOn(day) {
				continue
			}
			if idx == -1 || !it.Recurring() {
				idx = i
			}
		}
		return idx
	}

	idx := -1
	if sel.Date != "" {
		date, err := ParseDate(sel.Date)
		if err != nil {
			return -1, err
		}
		idx = match(date)
	} else {
		idx = match(today)
		if idx == -1 {
			for i, it := range e.items {
				if it.Time == hhmm && !it.Recurring() && !it.Inert(today) {
					if idx == -1 || it.Date < e.items[idx].Date {
						idx = i
					}
				}
			}
		}
	}

	if idx == -1 {
		return -1, fmt.Errorf("%w: nothing scheduled at %s", ErrNotFound, hhmm)
	}
	if sel.Activity != "" && !strings.EqualFold(strings.TrimSpace(sel.Activity), e.items[idx].Activity) {
		return -1, fmt.Errorf("%w: %s is '%s', not '%s'", ErrNotFound, hhmm, e.items[idx].Activity, sel.Activity)
	}
	return idx, nil
}

// settleLocked marks today's occurrence consumed when its due time is
// already behind the tolerance window, so new items never report as missed.
func (e *Engine) settleLocked(it *Item, now time.Time) {
	today := now.Format(DateLayout)
	if !it.ActiveOn(today) {
		return
	}
	if now.Sub(At(now, it.Time)) > e.tolerance {
		it.LastFired = today
	}
}

// sortItems orders items by the day they next occur, then by time.
// Recurring items occur on today.
func sortItems(items []Item, today string) {
	day := func(it Item) string {
		if it.Recurring() {
			return today
		}
		return it.Date
	}
	sort.SliceStable(items, func(i, j int) bool {
		di, dj := day(items[i]), day(items[j])
		if di != dj {
			return di < dj
		}
		return items[i].Time < items[j].Time
	})
}
