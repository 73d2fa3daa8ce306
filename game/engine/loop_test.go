package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type countingUpdater struct {
	mu     sync.Mutex
	deltas []time.Duration
}

func (c *countingUpdater) Update(dt time.Duration) {
	c.mu.Lock()
	c.deltas = append(c.deltas, dt)
	c.mu.Unlock()
}

func (c *countingUpdater) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.deltas)
}

func TestLoopFrame(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	target := &countingUpdater{}
	loop := NewLoop(target, DefaultConfig(), clock, &sync.Mutex{})

	frames := 0
	loop.OnFrame = func(time.Duration) { frames++ }

	if _, ran := loop.Frame(clock.Now()); ran {
		t.Fatal("First frame should only anchor the clock")
	}

	clock.Advance(10 * time.Millisecond)
	if _, ran := loop.Frame(clock.Now()); ran {
		t.Error("Frame ran before the tick interval elapsed")
	}

	clock.Advance(10 * time.Millisecond)
	dt, ran := loop.Frame(clock.Now())
	if !ran || dt != 20*time.Millisecond {
		t.Errorf("Expected 20ms frame, got %v (ran=%v)", dt, ran)
	}

	clock.Advance(2 * time.Second)
	dt, ran = loop.Frame(clock.Now())
	if !ran || dt != 50*time.Millisecond {
		t.Errorf("Expected delta clamped to 50ms, got %v (ran=%v)", dt, ran)
	}

	if target.count() != 2 || frames != 2 {
		t.Errorf("Expected 2 updates and 2 hooks, got %d and %d", target.count(), frames)
	}
}

func TestLoopDrivesEngine(t *testing.T) {
	g := NewGrid(10)
	e := newTestEngine(t, g, Position{X: 2, Y: 2}, Right.Facing(), nil)
	clock := NewManualClock(time.Unix(0, 0))
	loop := NewLoop(e, e.GetConfig(), clock, nil)

	e.Step(Right)
	loop.Frame(clock.Now())
	for i := 0; i < 30; i++ {
		clock.Advance(20 * time.Millisecond)
		loop.Frame(clock.Now())
	}

	if e.Player().Tile() != (Position{X: 3, Y: 2}) || e.Player().Mode != ModeIdle {
		t.Errorf("Expected arrival at (3,2), got %v %s", e.Player().Tile(), e.Player().Mode)
	}
	if e.Elapsed() != 600*time.Millisecond {
		t.Errorf("Expected 600ms elapsed, got %v", e.Elapsed())
	}
}

func TestLoopRun(t *testing.T) {
	target := &countingUpdater{}
	loop := NewLoop(target, DefaultConfig(), nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := loop.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
	if target.count() == 0 {
		t.Error("Expected at least one update")
	}
}
