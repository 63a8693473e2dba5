package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRoom(t *testing.T) {
	tests := []struct {
		in   string
		want Room
	}{
		{"Bedroom", Bedroom},
		{"  kitchen ", Kitchen},
		{"living room", LivingRoom},
		{"LivingRoom", LivingRoom},
		{"living", LivingRoom},
		{"BATHROOM", Bathroom},
	}
	for _, tt := range tests {
		got, err := ParseRoom(tt.in)
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseRoom("garage")
	assert.ErrorIs(t, err, ErrUnknownRoom)
}

func TestParseType(t *testing.T) {
	tests := map[string]Type{
		"light":            Light,
		"Lamps":            Light,
		"air  conditioner": AC,
		"Air Conditioning": AC,
		"ac":               AC,
		"Television":       TV,
		"fans":             Fan,
		"alarm":            Alarm,
	}
	for in, want := range tests {
		got, err := ParseType(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseType("kettle")
	assert.ErrorIs(t, err, ErrUnknownDeviceType)
}

func TestParseState(t *testing.T) {
	s, err := ParseState("on")
	assert.NoError(t, err)
	assert.Equal(t, On, s)

	s, err = ParseState(" Off ")
	assert.NoError(t, err)
	assert.Equal(t, Off, s)

	_, err = ParseState("toggle")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSplitRoomDevice(t *testing.T) {
	room, rest, ok := SplitRoomDevice("Kitchen Light")
	assert.True(t, ok)
	assert.Equal(t, Kitchen, room)
	assert.Equal(t, "Light", rest)

	room, rest, ok = SplitRoomDevice("living room tv")
	assert.True(t, ok)
	assert.Equal(t, LivingRoom, room)
	assert.Equal(t, "tv", rest)

	_, rest, ok = SplitRoomDevice("Fan")
	assert.False(t, ok)
	assert.Equal(t, "Fan", rest)
}
