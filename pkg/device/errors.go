package device

import "errors"

var (
	// ErrUnknownRoom indicates a room outside the room enumeration
	ErrUnknownRoom = errors.New("unknown room")

	// ErrUnknownDeviceType indicates a device type outside the type enumeration
	ErrUnknownDeviceType = errors.New("unknown device type")

	// ErrInvalidState indicates a state other than ON or OFF
	ErrInvalidState = errors.New("invalid device state")
)
