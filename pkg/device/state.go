package device

import (
	"fmt"
	"sync"
	"time"
)

// Transition describes the outcome of a successful SetDeviceState.
type Transition struct {
	Previous State `json:"previous_state"`
	Record
}

// Changed reports whether the write actually flipped the device.
func (t Transition) Changed() bool {
	return t.Previous != t.State
}

// StateManager owns the device matrix and the user's location.
// Every write is a single named operation that either fully applies or
// fails with a typed error. Reads return copies.
type StateManager struct {
	mu       sync.RWMutex
	devices  map[Key]Record
	location Room
	now      func() time.Time

	subMu       sync.Mutex
	subscribers map[chan Event]struct{}
}

// Option configures a StateManager.
type Option func(*StateManager)

// WithClock overrides the clock used to stamp state changes.
func WithClock(now func() time.Time) Option {
	return func(m *StateManager) {
		m.now = now
	}
}

// NewStateManager creates a StateManager with every device OFF and the user
// in the default location.
func NewStateManager(opts ...Option) *StateManager {
	m := &StateManager{
		now:         time.Now,
		subscribers: make(map[chan Event]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.devices = defaultMatrix(m.now())
	m.location = DefaultLocation
	return m
}

func defaultMatrix(at time.Time) map[Key]Record {
	devices := make(map[Key]Record, len(Rooms)*len(Types))
	for _, r := range Rooms {
		for _, t := range Types {
			devices[Key{Room: r, Type: t}] = Record{Room: r, Type: t, State: Off, Since: at}
		}
	}
	return devices
}

func validate(room Room, typ Type) error {
	if !ValidRoom(room) {
		return fmt.Errorf("%w: %q", ErrUnknownRoom, room)
	}
	if !ValidType(typ) {
		return fmt.Errorf("%w: %q", ErrUnknownDeviceType, typ)
	}
	return nil
}

// SetDeviceState switches one device. Writing the current state again is a
// no-op that keeps the original Since timestamp.
func (m *StateManager) SetDeviceState(room Room, typ Type, state State) (Transition, error) {
	if err := validate(room, typ); err != nil {
		return Transition{}, err
	}
	if state != On && state != Off {
		return Transition{}, fmt.Errorf("%w: %q", ErrInvalidState, state)
	}

	m.mu.Lock()
	key := Key{Room: room, Type: typ}
	prev := m.devices[key]
	rec := prev
	if prev.State != state {
		rec.State = state
		rec.Since = m.now()
		m.devices[key] = rec
	}
	m.mu.Unlock()

	tr := Transition{Previous: prev.State, Record: rec}
	if tr.Changed() {
		r := rec
		m.publish(Event{Type: EventDeviceState, Record: &r, Timestamp: rec.Since})
	}
	return tr, nil
}

// DeviceState returns the record for one device.
func (m *StateManager) DeviceState(room Room, typ Type) (Record, error) {
	if err := validate(room, typ); err != nil {
		return Record{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.devices[Key{Room: room, Type: typ}], nil
}

// SetLocation moves the user to room.
func (m *StateManager) SetLocation(room Room) error {
	if !ValidRoom(room) {
		return fmt.Errorf("%w: %q", ErrUnknownRoom, room)
	}
	m.mu.Lock()
	changed := m.location != room
	m.location = room
	m.mu.Unlock()

	if changed {
		m.publish(Event{Type: EventLocation, Location: room, Timestamp: m.now()})
	}
	return nil
}

// Location returns the room the user currently occupies.
func (m *StateManager) Location() Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.location
}

// Snapshot returns a consistent copy of the matrix, ordered by room then type.
func (m *StateManager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		Location: m.location,
		Devices:  make([]Record, 0, len(m.devices)),
	}
	for _, r := range Rooms {
		for _, t := range Types {
			snap.Devices = append(snap.Devices, m.devices[Key{Room: r, Type: t}])
		}
	}
	return snap
}

// Restore replaces the matrix and location with a stored snapshot. The
// snapshot is validated in full before anything is applied; devices missing
// from it keep their current record.
func (m *StateManager) Restore(s Snapshot) error {
	if !ValidRoom(s.Location) {
		return fmt.Errorf("%w: %q", ErrUnknownRoom, s.Location)
	}
	for _, r := range s.Devices {
		if err := validate(r.Room, r.Type); err != nil {
			return err
		}
		if r.State != On && r.State != Off {
			return fmt.Errorf("%w: %q", ErrInvalidState, r.State)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range s.Devices {
		m.devices[r.Key()] = r
	}
	m.location = s.Location
	return nil
}

// Reset switches every device off and returns the user to the default location.
func (m *StateManager) Reset() {
	m.mu.Lock()
	m.devices = defaultMatrix(m.now())
	m.location = DefaultLocation
	m.mu.Unlock()
}

// Subscribe returns a channel that receives state change events.
func (m *StateManager) Subscribe() chan Event {
	ch := make(chan Event, 16)
	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (m *StateManager) Unsubscribe(ch chan Event) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	if _, ok := m.subscribers[ch]; ok {
		delete(m.subscribers, ch)
		close(ch)
	}
}

// publish fans an event out without blocking; slow subscribers miss events.
func (m *StateManager) publish(ev Event) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for ch := range m.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
