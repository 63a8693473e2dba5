package device

import (
	"fmt"
	"strings"
)

var roomAliases = map[string]Room{
	"bedroom":    Bedroom,
	"bathroom":   Bathroom,
	"kitchen":    Kitchen,
	"livingroom": LivingRoom,
	"living":     LivingRoom,
	"lounge":     LivingRoom,
}

var typeAliases = map[string]Type{
	"light":            Light,
	"lights":           Light,
	"lamp":             Light,
	"lamps":            Light,
	"ac":               AC,
	"aircon":           AC,
	"air conditioner":  AC,
	"airconditioner":   AC,
	"air conditioning": AC,
	"tv":               TV,
	"television":       TV,
	"fan":              Fan,
	"fans":             Fan,
	"alarm":            Alarm,
	"alarms":           Alarm,
}

// ParseRoom resolves free-form room text ("living room", "livingroom")
// to a room of the enumeration.
func ParseRoom(s string) (Room, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "")
	if r, ok := roomAliases[key]; ok {
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRoom, s)
}

// ParseType resolves free-form device text ("lamp", "air conditioner")
// to a device type of the enumeration.
func ParseType(s string) (Type, error) {
	key := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	if t, ok := typeAliases[key]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDeviceType, s)
}

// ParseState resolves "on"/"off" in any case.
func ParseState(s string) (State, error) {
	switch State(strings.ToUpper(strings.TrimSpace(s))) {
	case On:
		return On, nil
	case Off:
		return Off, nil
	}
	return "", fmt.Errorf("%w: %q (must be ON or OFF)", ErrInvalidState, s)
}

// SplitRoomDevice splits device text that starts with a room name, such as
// "Kitchen Light", into the room and the remaining device text.
func SplitRoomDevice(s string) (Room, string, bool) {
	trimmed := strings.TrimSpace(s)
	lower := strings.ToLower(trimmed)
	for _, r := range Rooms {
		prefix := strings.ToLower(string(r)) + " "
		if strings.HasPrefix(lower, prefix) {
			return r, strings.TrimSpace(trimmed[len(prefix):]), true
		}
	}
	return "", trimmed, false
}

// ValidRoom reports whether r belongs to the room enumeration.
func ValidRoom(r Room) bool {
	for _, known := range Rooms {
		if r == known {
			return true
		}
	}
	return false
}

// ValidType reports whether t belongs to the device type enumeration.
func ValidType(t Type) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}
