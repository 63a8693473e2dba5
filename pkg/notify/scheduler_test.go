package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/home"
	"github.com/urmzd/homecare/pkg/schedule"
)

type fixture struct {
	now   time.Time
	home  *home.Home
	inbox *Inbox
	sched *Scheduler
}

func newFixture(t *testing.T, start time.Time) *fixture {
	t.Helper()
	f := &fixture{now: start}
	clock := func() time.Time { return f.now }
	f.home = home.New(
		device.NewStateManager(device.WithClock(clock)),
		schedule.NewEngine(schedule.WithClock(clock)),
		nil,
	)
	f.inbox = NewInbox(0)
	f.sched = NewScheduler(f.home, f.inbox, DefaultConfig(), WithClock(clock), WithLocation(time.UTC))
	return f
}

func (f *fixture) tick() []Notification {
	return f.sched.Tick(context.Background(), f.now)
}

func kinds(ns []Notification) []Kind {
	out := make([]Kind, len(ns))
	for i, n := range ns {
		out[i] = n.Kind
	}
	return out
}

func TestTick_DueOncePerOccurrence(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC))
	_, err := f.home.Schedule.Add("14:00", "Meeting", "")
	require.NoError(t, err)

	assert.Empty(t, f.tick(), "nothing is due an hour early")

	f.now = time.Date(2026, 3, 10, 14, 0, 30, 0, time.UTC)
	got := f.tick()
	require.Len(t, got, 1)
	assert.Equal(t, KindScheduleDue, got[0].Kind)
	assert.Equal(t, "It's time to: Meeting", got[0].Message)
	assert.Equal(t, "14:00", got[0].ItemTime)

	for i := 0; i < 3; i++ {
		assert.Empty(t, f.tick(), "re-ticking the same instant must not duplicate")
	}

	f.now = time.Date(2026, 3, 10, 14, 1, 0, 0, time.UTC)
	assert.Empty(t, f.tick())
	assert.Len(t, f.inbox.List(false), 1)
}

func TestTick_RecurringFiresAgainNextDay(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC))
	_, err := f.home.Schedule.Add("07:00", "Wake up", "")
	require.NoError(t, err)

	f.now = time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)
	require.Len(t, f.tick(), 1)

	f.now = time.Date(2026, 3, 11, 7, 0, 0, 0, time.UTC)
	got := f.tick()
	require.Len(t, got, 1)
	assert.Equal(t, KindScheduleDue, got[0].Kind)
}

func TestTick_MissedOnce(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC))
	_, err := f.home.Schedule.Add("08:00", "Breakfast", "")
	require.NoError(t, err)

	// The process was not running at 08:00.
	f.now = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	got := f.tick()
	require.Len(t, got, 1)
	assert.Equal(t, KindScheduleMissed, got[0].Kind)
	assert.Contains(t, got[0].Message, "Breakfast")

	f.now = f.now.Add(time.Minute)
	assert.Empty(t, f.tick())
}

func TestTick_MissedAcrossMidnight(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 23, 50, 0, 0, time.UTC))
	_, err := f.home.Schedule.Add("23:59", "Sleep", "")
	require.NoError(t, err)

	f.now = time.Date(2026, 3, 10, 23, 57, 0, 0, time.UTC)
	assert.Empty(t, f.tick())

	// Suspended from 23:57 until 00:03.
	f.now = time.Date(2026, 3, 11, 0, 3, 0, 0, time.UTC)
	got := f.tick()
	require.Len(t, got, 1)
	assert.Equal(t, KindScheduleMissed, got[0].Kind)
	assert.Equal(t, "23:59", got[0].ItemTime)
	assert.Equal(t, "You missed 'Sleep' scheduled at 23:59.", got[0].Message)

	f.now = time.Date(2026, 3, 11, 0, 4, 0, 0, time.UTC)
	assert.Empty(t, f.tick())

	// Tonight's occurrence is still pending.
	f.now = time.Date(2026, 3, 11, 23, 59, 0, 0, time.UTC)
	got = f.tick()
	require.Len(t, got, 1)
	assert.Equal(t, KindScheduleDue, got[0].Kind)
}

func TestRollover_ReportsPreviousDay(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 21, 50, 0, 0, time.UTC))
	_, err := f.home.Schedule.Add("22:00", "Prepare for bed", "")
	require.NoError(t, err)
	_, err = f.home.Schedule.Add("23:00", "Sleep", "")
	require.NoError(t, err)
	assert.Empty(t, f.tick())

	f.now = time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	got := f.sched.Rollover(context.Background())
	require.Len(t, got, 2)
	assert.Equal(t, []Kind{KindScheduleMissed, KindScheduleMissed}, kinds(got))
	assert.Equal(t, "Prepare for bed", got[0].Activity)
	assert.Equal(t, "Sleep", got[1].Activity)
	assert.Len(t, f.inbox.List(false), 2)

	assert.Empty(t, f.tick(), "the first tick of the day must not repeat the rollover")
	assert.Empty(t, f.sched.Rollover(context.Background()))
}

func TestTick_YesterdaysOneTimeItemIsExcluded(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC))
	_, err := f.home.Schedule.Add("10:00", "Doctor", "2026-03-09")
	require.NoError(t, err)

	f.now = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	assert.Empty(t, f.tick())
	assert.Empty(t, f.home.Schedule.Upcoming())
	assert.Len(t, f.home.Schedule.All(), 1, "the item is inert, not deleted")
}

func TestTick_OneTimeItemFiresOnItsDate(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	_, err := f.home.Schedule.Add("10:00", "Dentist", "2026-03-11")
	require.NoError(t, err)

	f.now = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	assert.Empty(t, f.tick())

	f.now = time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	got := f.tick()
	require.Len(t, got, 1)
	assert.Equal(t, "Dentist", got[0].Activity)
}

func TestTick_DeviceLeftOn(t *testing.T) {
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f := newFixture(t, start)

	_, err := f.home.Devices.SetDeviceState(device.Kitchen, device.Light, device.On)
	require.NoError(t, err)
	_, err = f.home.Devices.SetDeviceState(device.Bedroom, device.Light, device.On)
	require.NoError(t, err)

	f.now = start.Add(2 * time.Minute)
	assert.Empty(t, f.tick(), "dwell time not reached")

	f.now = start.Add(6 * time.Minute)
	got := f.tick()
	require.Equal(t, []Kind{KindDeviceLeftOn}, kinds(got))
	assert.Equal(t, "I noticed the Kitchen Light is still ON. Would you like me to turn it off?", got[0].Message)
	assert.Equal(t, []device.Key{{Room: device.Kitchen, Type: device.Light}}, got[0].Devices)

	f.now = start.Add(7 * time.Minute)
	assert.Empty(t, f.tick(), "each on-period is reported once")
}

func TestTick_DeviceLeftOnRespectsPreferences(t *testing.T) {
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f := newFixture(t, start)

	_, err := f.home.Devices.SetDeviceState(device.LivingRoom, device.TV, device.On)
	require.NoError(t, err)
	f.home.Preferences.SetNotify(device.Key{Room: device.LivingRoom, Type: device.TV}, false)

	f.now = start.Add(time.Hour)
	assert.Empty(t, f.tick())
}

func TestLeftOnMessage(t *testing.T) {
	msg := LeftOnMessage([]device.Key{
		{Room: device.Kitchen, Type: device.Light},
		{Room: device.LivingRoom, Type: device.TV},
		{Room: device.LivingRoom, Type: device.Fan},
	})
	assert.Equal(t, "I noticed these devices are still ON: Kitchen Light, Living Room TV, and Living Room Fan. Would you like me to turn them off?", msg)
}

func TestTick_ConcurrentWithMutations(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			f.sched.Tick(ctx, time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC))
		}()
		go func(i int) {
			defer wg.Done()
			_ = f.home.Mutate(ctx, func() error {
				_, err := f.home.Schedule.Add("12:00", "Lunch", "")
				return err
			})
		}(i)
	}
	wg.Wait()

	assert.Len(t, f.home.Schedule.All(), 1)
	assert.NoError(t, f.home.Schedule.Verify("2026-03-10"))
}

func TestStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t, time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC))
	s := NewScheduler(f.home, f.inbox, Config{Interval: 10 * time.Millisecond}, WithLocation(time.UTC))

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyRunning)
	time.Sleep(30 * time.Millisecond)
	s.Stop()
	s.Stop()
}

func TestRun_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t, time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.sched.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
