package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTime indicates a time that is not HH:MM within 00:00-23:59
	ErrInvalidTime = errors.New("invalid time")

	// ErrInvalidDate indicates a date that is not YYYY-MM-DD
	ErrInvalidDate = errors.New("invalid date")

	// ErrPastDate indicates a one-time item dated before today
	ErrPastDate = errors.New("cannot schedule items for past dates")

	// ErrEmptyActivity indicates a missing activity label
	ErrEmptyActivity = errors.New("activity must not be empty")

	// ErrNothingToChange indicates a change without a new time or activity
	ErrNothingToChange = errors.New("change requires a new time or activity")

	// ErrTimeConflict indicates the time slot is already taken
	ErrTimeConflict = errors.New("time conflict")

	// ErrNotFound indicates no schedule item matched
	ErrNotFound = errors.New("schedule item not found")
)

// ConflictError reports the item already occupying a time slot.
type ConflictError struct {
	Time     string
	Existing Item
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time conflict: %s is already taken by '%s'", e.Time, e.Existing.Activity)
}

// Is makes errors.Is(err, ErrTimeConflict) match.
func (e *ConflictError) Is(target error) bool {
	return target == ErrTimeConflict
}
