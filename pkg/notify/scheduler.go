package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/home"
	"github.com/urmzd/homecare/pkg/schedule"
)

// ErrAlreadyRunning is returned by Start on a running scheduler
var ErrAlreadyRunning = errors.New("scheduler already running")

// Config controls the evaluation cadence.
type Config struct {
	Interval  time.Duration `mapstructure:"interval"`  // Tick cadence
	Tolerance time.Duration `mapstructure:"tolerance"` // How far from the due time a tick still counts as on time
	Dwell     time.Duration `mapstructure:"dwell"`     // How long a device must be on in another room before notifying
}

// DefaultConfig returns the default cadence.
func DefaultConfig() Config {
	return Config{
		Interval:  60 * time.Second,
		Tolerance: time.Minute,
		Dwell:     5 * time.Minute,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.Tolerance <= 0 {
		c.Tolerance = d.Tolerance
	}
	if c.Dwell <= 0 {
		c.Dwell = d.Dwell
	}
}

// Scheduler emits schedule-due, schedule-missed and device-left-on
// notifications. Ticks run inside the home gate.
type Scheduler struct {
	home *home.Home
	sink Sink
	cfg  Config
	now  func() time.Time
	loc  *time.Location

	// Guarded by the home gate.
	lastDay  string
	leftOnAt map[device.Key]time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	cron    *cron.Cron
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithLocation sets the timezone used for the midnight rollover job.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		s.loc = loc
	}
}

// NewScheduler creates a scheduler delivering to sink.
func NewScheduler(h *home.Home, sink Sink, cfg Config, opts ...Option) *Scheduler {
	cfg.applyDefaults()
	s := &Scheduler{
		home:     h,
		sink:     sink,
		cfg:      cfg,
		now:      time.Now,
		loc:      time.Local,
		leftOnAt: make(map[device.Key]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tick evaluates the state at now and delivers the resulting notifications.
// Ticking the same instant twice emits nothing the second time.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) []Notification {
	var out []Notification
	_ = s.home.Mutate(ctx, func() error {
		out = s.evaluate(now)
		return nil
	})
	s.deliver(ctx, out)
	return out
}

// Rollover reports the previous day's unfired occurrences and expires past
// one-time items. It runs from the midnight job and from the first tick of
// each new day.
func (s *Scheduler) Rollover(ctx context.Context) []Notification {
	now := s.now()
	var out []Notification
	_ = s.home.Mutate(ctx, func() error {
		out = s.rolloverLocked(now)
		return nil
	})
	s.deliver(ctx, out)
	return out
}

func (s *Scheduler) rolloverLocked(now time.Time) []Notification {
	today := now.Format(schedule.DateLayout)
	if s.lastDay == today {
		return nil
	}

	var out []Notification
	if s.lastDay != "" && s.lastDay < today {
		out = s.closeDay(s.lastDay, now)
	}

	n := s.home.Schedule.Rollover(today)
	s.lastDay = today
	log.Info().Str("date", today).Int("expired", n).Int("missed", len(out)).Msg("Schedule rolled over")
	return out
}

// closeDay consumes the occurrences of day that never fired, typically
// because the process was suspended across midnight.
func (s *Scheduler) closeDay(day string, now time.Time) []Notification {
	ref, err := time.ParseInLocation(schedule.DateLayout, day, now.Location())
	if err != nil {
		return nil
	}
	var out []Notification
	for _, it := range s.home.Schedule.Active(day) {
		if it.FiredOn(day) {
			continue
		}
		n, ok := s.occurrence(it, day, schedule.At(ref, it.Time), now)
		if ok {
			out = append(out, n)
		}
	}
	return out
}

// occurrence builds the due or missed notification for it on day and marks
// the occurrence consumed. It reports false while the due time is still
// ahead of now by more than the tolerance.
func (s *Scheduler) occurrence(it schedule.Item, day string, due, now time.Time) (Notification, bool) {
	late := now.Sub(due)

	var n Notification
	switch {
	case late < -s.cfg.Tolerance:
		return Notification{}, false
	case late <= s.cfg.Tolerance:
		n = s.newNotification(KindScheduleDue, now, fmt.Sprintf("It's time to: %s", it.Activity))
	default:
		n = s.newNotification(KindScheduleMissed, now,
			fmt.Sprintf("You missed '%s' scheduled at %s.", it.Activity, it.Time))
	}
	n.ItemID = it.ID
	n.ItemTime = it.Time
	n.Activity = it.Activity

	if err := s.home.Schedule.MarkFired(it.ID, day); err != nil {
		log.Error().Err(err).Str("item", it.ID).Msg("Failed to mark schedule item fired")
		return Notification{}, false
	}
	return n, true
}

func (s *Scheduler) deliver(ctx context.Context, ns []Notification) {
	for _, n := range ns {
		if err := s.sink.Deliver(ctx, n); err != nil {
			log.Warn().Err(err).Str("type", string(n.Kind)).Msg("Failed to deliver notification")
		}
	}
}

func (s *Scheduler) evaluate(now time.Time) []Notification {
	today := now.Format(schedule.DateLayout)
	out := s.rolloverLocked(now)

	if err := s.home.Schedule.Verify(today); err != nil {
		log.Error().Err(err).Msg("Schedule invariant violated")
	}

	for _, it := range s.home.Schedule.Active(today) {
		if it.FiredOn(today) {
			continue
		}
		if n, ok := s.occurrence(it, today, schedule.At(now, it.Time), now); ok {
			out = append(out, n)
		}
	}

	if n, ok := s.checkLeftOn(now); ok {
		out = append(out, n)
	}
	return out
}

// checkLeftOn reports devices that have been on in a room other than the
// user's location for at least the dwell time. Each on-period is reported
// once.
func (s *Scheduler) checkLeftOn(now time.Time) (Notification, bool) {
	snap := s.home.Devices.Snapshot()

	on := make(map[device.Key]bool)
	var keys []device.Key
	for _, rec := range snap.On() {
		key := rec.Key()
		on[key] = true
		if rec.Room == snap.Location || !s.home.Preferences.ShouldNotify(key) {
			continue
		}
		if now.Sub(rec.Since) < s.cfg.Dwell {
			continue
		}
		if at, seen := s.leftOnAt[key]; seen && at.Equal(rec.Since) {
			continue
		}
		s.leftOnAt[key] = rec.Since
		keys = append(keys, key)
	}
	for key := range s.leftOnAt {
		if !on[key] {
			delete(s.leftOnAt, key)
		}
	}

	if len(keys) == 0 {
		return Notification{}, false
	}
	n := s.newNotification(KindDeviceLeftOn, now, LeftOnMessage(keys))
	n.Devices = keys
	return n, true
}

// LeftOnMessage phrases a device-left-on notification.
func LeftOnMessage(keys []device.Key) string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	if len(names) == 1 {
		return fmt.Sprintf("I noticed the %s is still ON. Would you like me to turn it off?", names[0])
	}
	list := strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	return fmt.Sprintf("I noticed these devices are still ON: %s. Would you like me to turn them off?", list)
}

func (s *Scheduler) newNotification(kind Kind, now time.Time, msg string) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   msg,
		Timestamp: now,
	}
}

// Start begins ticking every Interval and schedules the midnight rollover.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	c := cron.New(cron.WithLocation(s.loc))
	if _, err := c.AddFunc("@midnight", func() { s.Rollover(context.Background()) }); err != nil {
		return fmt.Errorf("failed to schedule rollover: %w", err)
	}
	c.Start()
	s.cron = c

	s.running = true
	s.stopCh = make(chan struct{})
	s.wg.Add(1)
	go s.loop(ctx)

	log.Info().
		Dur("interval", s.cfg.Interval).
		Dur("tolerance", s.cfg.Tolerance).
		Dur("dwell", s.cfg.Dwell).
		Msg("Notification scheduler started")
	return nil
}

// Stop halts ticking and waits for the loop and the cron runner to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	c := s.cron
	s.mu.Unlock()

	s.wg.Wait()
	<-c.Stop().Done()
	log.Info().Msg("Notification scheduler stopped")
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.Tick(ctx, s.now())
	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx, s.now())
		}
	}
}
