package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewStateManager_Defaults(t *testing.T) {
	m := NewStateManager()
	snap := m.Snapshot()

	assert.Equal(t, Bedroom, snap.Location)
	assert.Len(t, snap.Devices, len(Rooms)*len(Types))
	assert.Empty(t, snap.On())
}

func TestSetDeviceState_EveryPairReadsBack(t *testing.T) {
	m := NewStateManager()

	for _, r := range Rooms {
		for _, typ := range Types {
			for _, st := range []State{On, Off} {
				_, err := m.SetDeviceState(r, typ, st)
				require.NoError(t, err)

				rec, err := m.DeviceState(r, typ)
				require.NoError(t, err)
				assert.Equal(t, st, rec.State, "%s %s", r, typ)
			}
		}
	}
}

func TestSetDeviceState_InvalidPairNeverMutates(t *testing.T) {
	m := NewStateManager()
	before := m.Snapshot()

	_, err := m.SetDeviceState("Garage", Light, On)
	assert.ErrorIs(t, err, ErrUnknownRoom)

	_, err = m.SetDeviceState(Kitchen, "Toaster", On)
	assert.ErrorIs(t, err, ErrUnknownDeviceType)

	_, err = m.SetDeviceState(Kitchen, Light, "DIM")
	assert.ErrorIs(t, err, ErrInvalidState)

	assert.Equal(t, before, m.Snapshot())
}

func TestSetDeviceState_SinceTracksChanges(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	now := start
	m := NewStateManager(WithClock(func() time.Time { return now }))

	now = start.Add(time.Minute)
	tr, err := m.SetDeviceState(Kitchen, Light, On)
	require.NoError(t, err)
	assert.True(t, tr.Changed())
	assert.Equal(t, Off, tr.Previous)
	assert.Equal(t, now, tr.Since)

	now = start.Add(time.Hour)
	tr, err = m.SetDeviceState(Kitchen, Light, On)
	require.NoError(t, err)
	assert.False(t, tr.Changed())
	assert.Equal(t, start.Add(time.Minute), tr.Since)
}

func TestSetLocation(t *testing.T) {
	m := NewStateManager()

	require.NoError(t, m.SetLocation(Kitchen))
	assert.Equal(t, Kitchen, m.Location())

	assert.ErrorIs(t, m.SetLocation("Attic"), ErrUnknownRoom)
	assert.Equal(t, Kitchen, m.Location())
}

func TestRestore_ValidatesBeforeApplying(t *testing.T) {
	m := NewStateManager(WithClock(fixedClock(time.Unix(0, 0))))

	bad := Snapshot{
		Location: LivingRoom,
		Devices: []Record{
			{Room: Bedroom, Type: Light, State: On},
			{Room: "Cellar", Type: Light, State: On},
		},
	}
	assert.ErrorIs(t, m.Restore(bad), ErrUnknownRoom)
	assert.Equal(t, Bedroom, m.Location())
	assert.Empty(t, m.Snapshot().On())

	good := Snapshot{
		Location: LivingRoom,
		Devices:  []Record{{Room: Bedroom, Type: Light, State: On}},
	}
	require.NoError(t, m.Restore(good))
	assert.Equal(t, LivingRoom, m.Location())
	rec, _ := m.DeviceState(Bedroom, Light)
	assert.True(t, rec.IsOn())
}

func TestSubscribe_ReceivesChanges(t *testing.T) {
	m := NewStateManager()
	ch := m.Subscribe()
	defer m.Unsubscribe(ch)

	_, err := m.SetDeviceState(Bathroom, Fan, On)
	require.NoError(t, err)

	select {
	case ev := <-ch:
		assert.Equal(t, EventDeviceState, ev.Type)
		require.NotNil(t, ev.Record)
		assert.Equal(t, Key{Room: Bathroom, Type: Fan}, ev.Record.Key())
	case <-time.After(time.Second):
		t.Fatal("expected device_state event")
	}

	// Re-writing the same state publishes nothing.
	_, err = m.SetDeviceState(Bathroom, Fan, On)
	require.NoError(t, err)
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}
