// Package activity derives default device actions and a target room from
// schedule activity labels.
package activity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/urmzd/homecare/pkg/device"
)

// Action is one device switch derived from an activity.
type Action struct {
	Room   device.Room  `json:"room"`
	Device device.Type  `json:"device"`
	State  device.State `json:"state"`
}

// Derivation is the outcome of looking up an activity.
type Derivation struct {
	Actions  []Action    `json:"actions,omitempty"`
	Location device.Room `json:"location,omitempty"` // Empty when the activity has no fixed room
}

// Table maps normalized activity labels to derivations. A Table is never
// mutated after construction; With returns an extended copy.
type Table struct {
	entries map[string]Derivation
}

func on(room device.Room, typ device.Type) Action {
	return Action{Room: room, Device: typ, State: device.On}
}

var workDerivation = Derivation{
	Actions:  []Action{on(device.LivingRoom, device.Light), on(device.LivingRoom, device.AC)},
	Location: device.LivingRoom,
}

// DefaultTable returns the built-in activity table.
func DefaultTable() Table {
	return Table{entries: map[string]Derivation{
		"wake up": {
			Actions:  []Action{on(device.Bedroom, device.Alarm), on(device.Bedroom, device.Light)},
			Location: device.Bedroom,
		},
		"morning exercise": {},
		"breakfast":        {Location: device.Kitchen},
		"work":             workDerivation,
		"meeting":          workDerivation,
		"continue working": workDerivation,
		"lunch":            {Location: device.Kitchen},
		"dinner":           {Location: device.Kitchen},
		"relaxation time":  {},
		"prepare for bed": {
			Actions:  []Action{on(device.Bedroom, device.AC), on(device.Bedroom, device.Light)},
			Location: device.Bedroom,
		},
		"sleep": {
			Actions:  []Action{{Room: device.Bedroom, Device: device.Light, State: device.Off}},
			Location: device.Bedroom,
		},
	}}
}

func normalize(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), " ")
}

// Derive looks up label case-insensitively. ok is false when the table has
// no entry; the returned derivation is then empty.
func (t Table) Derive(label string) (d Derivation, ok bool) {
	d, ok = t.entries[normalize(label)]
	if !ok {
		return Derivation{}, false
	}
	out := Derivation{Location: d.Location}
	if len(d.Actions) > 0 {
		out.Actions = append([]Action(nil), d.Actions...)
	}
	return out, true
}

// With returns a copy of the table with label mapped to d. Every action and
// the location are validated against the device enumerations.
func (t Table) With(label string, d Derivation) (Table, error) {
	key := normalize(label)
	if key == "" {
		return t, fmt.Errorf("activity label must not be empty")
	}
	if d.Location != "" && !device.ValidRoom(d.Location) {
		return t, fmt.Errorf("%w: %q", device.ErrUnknownRoom, d.Location)
	}
	for _, a := range d.Actions {
		if !device.ValidRoom(a.Room) {
			return t, fmt.Errorf("%w: %q", device.ErrUnknownRoom, a.Room)
		}
		if !device.ValidType(a.Device) {
			return t, fmt.Errorf("%w: %q", device.ErrUnknownDeviceType, a.Device)
		}
		if a.State != device.On && a.State != device.Off {
			return t, fmt.Errorf("%w: %q", device.ErrInvalidState, a.State)
		}
	}

	entries := make(map[string]Derivation, len(t.entries)+1)
	for k, v := range t.entries {
		entries[k] = v
	}
	entries[key] = Derivation{Actions: append([]Action(nil), d.Actions...), Location: d.Location}
	return Table{entries: entries}, nil
}

// Labels returns the known labels in sorted order.
func (t Table) Labels() []string {
	labels := make([]string, 0, len(t.entries))
	for k := range t.entries {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return labels
}
