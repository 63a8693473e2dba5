package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the layout of one-time item dates.
const DateLayout = "2006-01-02"

var timePattern = regexp.MustCompile(`^(\d{1,2})(?:[:.](\d{2}))?\s*(am|pm)?$`)

// NormalizeTime converts lenient time text ("14.00", "7:30", "2.30pm") into
// canonical HH:MM and rejects anything outside 00:00-23:59.
func NormalizeTime(s string) (string, error) {
	m := timePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return "", fmt.Errorf("%w: %q (expected HH:MM)", ErrInvalidTime, s)
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}

	switch m[3] {
	case "am", "pm":
		if hour < 1 || hour > 12 {
			return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		hour %= 12
		if m[3] == "pm" {
			hour += 12
		}
	}

	if hour > 23 || minute > 59 {
		return "", fmt.Errorf("%w: %q (must be between 00:00 and 23:59)", ErrInvalidTime, s)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// ParseDate validates a YYYY-MM-DD date and returns it unchanged.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q (expected YYYY-MM-DD)", ErrInvalidDate, s)
	}
	return s, nil
}

// At returns the instant of clock time hhmm on the calendar day of ref, in
// ref's location.
func At(ref time.Time, hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}
	}
	y, mo, d := ref.Date()
	return time.Date(y, mo, d, t.Hour(), t.Minute(), 0, 0, ref.Location())
}
