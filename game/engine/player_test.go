package engine

import (
	"math"
	"testing"
)

func TestAngleDiff(t *testing.T) {
	tests := []struct {
		from, to float64
		want     float64
	}{
		{0, math.Pi / 2, math.Pi / 2},
		{math.Pi / 2, 0, -math.Pi / 2},
		{3, -3, 2*math.Pi - 6},
		{-3, 3, 6 - 2*math.Pi},
		{0, 0, 0},
	}

	for _, tt := range tests {
		got := AngleDiff(tt.from, tt.to)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AngleDiff(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
		if got < -math.Pi || got > math.Pi {
			t.Errorf("AngleDiff(%v, %v) = %v outside [-π, π]", tt.from, tt.to, got)
		}
	}
}

func TestDirectionFacing(t *testing.T) {
	tests := []struct {
		dir  Direction
		want float64
	}{
		{Down, 0},
		{Right, math.Pi / 2},
		{Left, -math.Pi / 2},
		{Up, math.Pi},
	}
	for _, tt := range tests {
		if got := tt.dir.Facing(); got != tt.want {
			t.Errorf("%s.Facing() = %v, want %v", tt.dir, got, tt.want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"up": Up, "w": Up, "s": Down, "west": Left, "d": Right} {
		got, err := ParseDirection(in)
		if err != nil || got != want {
			t.Errorf("ParseDirection(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseDirection("sideways"); err != ErrUnknownDirection {
		t.Errorf("Expected ErrUnknownDirection, got %v", err)
	}
}

func TestIntentPriority(t *testing.T) {
	tests := []struct {
		intent Intent
		want   Direction
		ok     bool
	}{
		{Intent{}, "", false},
		{Intent{Up: true, Down: true}, Up, true},
		{Intent{Down: true, Left: true}, Down, true},
		{Intent{Left: true, Right: true}, Left, true},
		{Intent{Right: true}, Right, true},
	}
	for _, tt := range tests {
		got, ok := tt.intent.Direction()
		if got != tt.want || ok != tt.ok {
			t.Errorf("%+v.Direction() = %q, %v; want %q, %v", tt.intent, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPlayerMoveTo(t *testing.T) {
	t.Run("aligned walks at once", func(t *testing.T) {
		p := NewPlayer(Position{X: 1, Y: 1}, 0.05)
		p.MoveTo(Position{X: 1, Y: 2}, 0, 0.1)
		if p.Mode != ModeTranslating {
			t.Errorf("Expected translating, got %s", p.Mode)
		}
		if p.Facing != 0 {
			t.Errorf("Expected facing snapped to target, got %v", p.Facing)
		}
	})

	t.Run("misaligned turns first", func(t *testing.T) {
		p := NewPlayer(Position{X: 1, Y: 1}, 0)
		p.MoveTo(Position{X: 2, Y: 1}, math.Pi/2, 0.1)
		if p.Mode != ModeRotating {
			t.Errorf("Expected rotating, got %s", p.Mode)
		}
	})

	t.Run("turn in place ends idle", func(t *testing.T) {
		p := NewPlayer(Position{X: 1, Y: 1}, 0)
		p.Face(math.Pi, 0.1)
		for i := 0; i < 20; i++ {
			p.Update(0.016, 25, 5)
		}
		if p.Mode != ModeIdle || p.Facing != math.Pi {
			t.Errorf("Expected idle facing π, got %s %v", p.Mode, p.Facing)
		}
	})
}

func TestPlayerPose(t *testing.T) {
	p := NewPlayer(Position{}, 0)
	if pose := p.Pose(); pose.LeftArm != 0 || pose.Bob != 0 {
		t.Errorf("Expected neutral pose when idle, got %+v", pose)
	}
}
