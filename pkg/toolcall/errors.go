package toolcall

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urmzd/homecare/pkg/retry"
)

// ValidationError reports missing or malformed arguments. It is shown to
// the user as a clarifying question and never retried.
type ValidationError struct {
	Tool   Name
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: invalid %s: %s", e.Tool, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Tool, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func missing(tool Name, field string) *ValidationError {
	return &ValidationError{Tool: tool, Field: field, Reason: fmt.Sprintf("%s is required", field)}
}

// InvalidDeviceError reports a device control call naming a room, device
// or action outside the enumerations.
type InvalidDeviceError struct {
	Room   string
	Device string
	Action string
	Err    error
}

func (e *InvalidDeviceError) Error() string {
	return fmt.Sprintf("invalid device %s %s -> %s: %v", e.Room, e.Device, e.Action, e.Err)
}

func (e *InvalidDeviceError) Unwrap() error {
	return e.Err
}

// ConflictError reports a schedule time collision.
type ConflictError struct {
	Time     string
	Activity string // Activity already occupying the slot
	Err      error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s is already taken by '%s'", e.Time, e.Activity)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a delete or change target that does not exist.
type NotFoundError struct {
	Time string
	Err  error
}

func (e *NotFoundError) Error() string {
	return e.Err.Error()
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// UserMessage renders err as text for the user.
func UserMessage(err error) string {
	var (
		verr     *ValidationError
		derr     *InvalidDeviceError
		conflict *ConflictError
		notFound *NotFoundError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return fmt.Sprintf("I need a bit more information: %s. Could you clarify?", verr.Reason)
	case errors.As(err, &derr):
		return fmt.Sprintf("I couldn't control that device (%v). Rooms are %s; devices are %s; the action must be ON or OFF.",
			derr.Err, roomList, deviceList)
	case errors.As(err, &conflict):
		return fmt.Sprintf("There is already '%s' scheduled at %s. Please choose a different time.", conflict.Activity, conflict.Time)
	case errors.As(err, &notFound):
		if notFound.Time != "" {
			return fmt.Sprintf("I couldn't find anything matching in your schedule at %s.", notFound.Time)
		}
		return "I couldn't find that item in your schedule."
	case errors.Is(err, retry.ErrUnavailable):
		return "Sorry, the service is unavailable right now. Please try again in a moment."
	default:
		return "Something went wrong while handling that request."
	}
}

var (
	roomList   = "Bedroom, Bathroom, Kitchen and Living Room"
	deviceList = strings.Join([]string{"Light", "AC", "TV", "Fan", "Alarm"}, ", ")
)
