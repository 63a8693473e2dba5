package device

import "time"

// Room is one of the rooms of the simulated home.
type Room string

// Type is a device type. Every room carries one device of every type.
type Type string

// State is the switch state of a device.
type State string

// Room constants
const (
	Bedroom    Room = "Bedroom"
	Bathroom   Room = "Bathroom"
	Kitchen    Room = "Kitchen"
	LivingRoom Room = "Living Room"
)

// Device type constants
const (
	Light Type = "Light"
	AC    Type = "AC"
	TV    Type = "TV"
	Fan   Type = "Fan"
	Alarm Type = "Alarm"
)

// State constants
const (
	On  State = "ON"
	Off State = "OFF"
)

// DefaultLocation is the room the user is assumed to occupy at start.
const DefaultLocation = Bedroom

// Rooms lists the closed room enumeration in display order.
var Rooms = []Room{Bedroom, Bathroom, Kitchen, LivingRoom}

// Types lists the closed device type enumeration in display order.
var Types = []Type{Light, AC, TV, Fan, Alarm}

// Fixtures lists the devices physically installed per room. The state
// matrix still tracks every (room, type) pair; fixtures only drive what the
// assistant suggests.
var Fixtures = map[Room][]Type{
	Bedroom:    {Light, Alarm, AC},
	Bathroom:   {Light},
	Kitchen:    {Light, Alarm},
	LivingRoom: {Light, TV, AC, Fan},
}

// Key identifies a device by its room and type.
type Key struct {
	Room Room `json:"room"`
	Type Type `json:"device"`
}

// String renders the key the way the assistant talks about it ("Bedroom Light").
func (k Key) String() string {
	return string(k.Room) + " " + string(k.Type)
}

// Record is the state of one device.
type Record struct {
	Room  Room      `json:"room"`
	Type  Type      `json:"device"`
	State State     `json:"state"`
	Since time.Time `json:"since"` // When the device last changed state
}

// Key returns the record's device key.
func (r Record) Key() Key {
	return Key{Room: r.Room, Type: r.Type}
}

// IsOn reports whether the device is switched on.
func (r Record) IsOn() bool {
	return r.State == On
}

// Snapshot is a consistent copy of the device matrix and location.
type Snapshot struct {
	Location Room     `json:"location"`
	Devices  []Record `json:"devices"`
}

// Get returns the record for (room, typ) from the snapshot.
func (s Snapshot) Get(room Room, typ Type) (Record, bool) {
	for _, r := range s.Devices {
		if r.Room == room && r.Type == typ {
			return r, true
		}
	}
	return Record{}, false
}

// On returns the records that are switched on.
func (s Snapshot) On() []Record {
	var out []Record
	for _, r := range s.Devices {
		if r.IsOn() {
			out = append(out, r)
		}
	}
	return out
}

// Event is published to subscribers after every successful write.
type Event struct {
	Type      string    `json:"type"`             // Event type (device_state, location)
	Record    *Record   `json:"record,omitempty"` // Device record for device_state events
	Location  Room      `json:"location,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Event type constants
const (
	EventDeviceState = "device_state"
	EventLocation    = "location"
)
