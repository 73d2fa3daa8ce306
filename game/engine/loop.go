package engine

import (
	"context"
	"sync"
	"time"
)

// Clock is the monotonic time source driving a Loop
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock's monotonic reading
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when advanced. Used for scripted runs and tests.
type ManualClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewManualClock starts a manual clock at start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{t: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward by d
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// Updater is anything advanced once per frame
type Updater interface {
	Update(dt time.Duration)
}

// Loop throttles frames to a fixed cadence and clamps the delta a single
// frame may consume, so a stalled process does not teleport the world.
type Loop struct {
	target   Updater
	clock    Clock
	interval time.Duration
	maxStep  time.Duration
	locker   sync.Locker

	// OnFrame runs after every update, outside the lock
	OnFrame func(dt time.Duration)

	last    time.Time
	started bool
}

// NewLoop creates a loop for target using the config cadence. locker, when
// set, is held around every update.
func NewLoop(target Updater, config *WorldConfig, clock Clock, locker sync.Locker) *Loop {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Loop{
		target:   target,
		clock:    clock,
		interval: config.TickInterval(),
		maxStep:  config.MaxStep(),
		locker:   locker,
	}
}

// Frame runs at most one update for the reading now. The first call only
// anchors the clock. Returns the delta used and whether an update ran.
func (l *Loop) Frame(now time.Time) (time.Duration, bool) {
	if !l.started {
		l.started = true
		l.last = now
		return 0, false
	}

	elapsed := now.Sub(l.last)
	if elapsed < l.interval {
		return 0, false
	}
	l.last = now
	dt := min(elapsed, l.maxStep)

	if l.locker != nil {
		l.locker.Lock()
	}
	l.target.Update(dt)
	if l.locker != nil {
		l.locker.Unlock()
	}

	if l.OnFrame != nil {
		l.OnFrame(dt)
	}
	return dt, true
}

// Run drives frames from the clock until ctx is cancelled
func (l *Loop) Run(ctx context.Context) error {
	poll := l.interval / 2
	if poll <= 0 {
		poll = time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	l.Frame(l.clock.Now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Frame(l.clock.Now())
		}
	}
}
