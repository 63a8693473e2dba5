// Package home holds the single owned state object of the assistant: the
// device matrix, the schedule and the user's preferences, plus the gate
// that serializes every mutation.
package home

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/schedule"
)

// Snapshot is the persisted form of a Home.
type Snapshot struct {
	Devices     device.Snapshot `json:"devices"`
	Schedule    []schedule.Item `json:"schedule"`
	DoNotRemind []string        `json:"do_not_remind"`
	DoNotNotify []device.Key    `json:"do_not_notify"`
}

// Store persists snapshots. Load returns nil without error when nothing
// has been saved yet.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
}

// Home is passed by reference to the tool router and the notification
// scheduler. Both run their work inside Mutate so a dispatch never
// interleaves with a tick.
type Home struct {
	gate sync.Mutex

	Devices     *device.StateManager
	Schedule    *schedule.Engine
	Preferences *Preferences

	store Store
}

// New assembles a Home. store may be nil.
func New(devices *device.StateManager, sched *schedule.Engine, store Store) *Home {
	return &Home{
		Devices:     devices,
		Schedule:    sched,
		Preferences: NewPreferences(),
		store:       store,
	}
}

// Mutate runs fn while holding the gate and saves a snapshot afterwards.
// A failing save is logged; the in-memory state stays authoritative.
func (h *Home) Mutate(ctx context.Context, fn func() error) error {
	h.gate.Lock()
	defer h.gate.Unlock()

	if err := fn(); err != nil {
		return err
	}
	if h.store != nil {
		if err := h.store.Save(ctx, h.snapshot()); err != nil {
			log.Error().Err(err).Msg("Failed to persist home state")
		}
	}
	return nil
}

// Snapshot returns the current state.
func (h *Home) Snapshot() Snapshot {
	return h.snapshot()
}

func (h *Home) snapshot() Snapshot {
	return Snapshot{
		Devices:     h.Devices.Snapshot(),
		Schedule:    h.Schedule.All(),
		DoNotRemind: h.Preferences.DoNotRemind(),
		DoNotNotify: h.Preferences.Muted(),
	}
}

// Load restores the stored snapshot. Device states and location are only
// restored when restoreDevices is set; otherwise they keep their defaults.
// It reports whether a snapshot was found.
func (h *Home) Load(ctx context.Context, restoreDevices bool) (bool, error) {
	if h.store == nil {
		return false, nil
	}
	snap, err := h.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load home state: %w", err)
	}
	if snap == nil {
		return false, nil
	}

	h.gate.Lock()
	defer h.gate.Unlock()

	if restoreDevices {
		if err := h.Devices.Restore(snap.Devices); err != nil {
			return false, fmt.Errorf("failed to restore devices: %w", err)
		}
	}
	if err := h.Schedule.Restore(snap.Schedule); err != nil {
		return false, fmt.Errorf("failed to restore schedule: %w", err)
	}
	h.Preferences.restore(snap.DoNotRemind, snap.DoNotNotify)
	return true, nil
}
