package engine

import (
	"math"
	"time"

	"github.com/wricardo/grovewalk/game/scene"
)

// TreeState is the destruction phase of a tree
type TreeState string

const (
	TreeHealthy TreeState = "healthy"
	TreeFalling TreeState = "falling"
	TreeFading  TreeState = "fading"
	TreeRemoved TreeState = "removed"
)

const (
	TreeMaxHealth = 100

	// canopy swing while toppling: sin(angle) * height * lean
	treeHeight = 1.2
	treeLean   = 0.3

	shakeFrequency = 0.05 // per millisecond
	shakeAmplitude = 0.1

	// phaseEpsilon absorbs float error at the fall and fade boundaries
	phaseEpsilon = 1e-9
)

// Tree is a destructible obstacle. It blocks the tile while Health > 0.
type Tree struct {
	decoration

	Health        int           `json:"health"`
	State         TreeState     `json:"state"`
	FallAngle     float64       `json:"fall_angle"`
	FallDirection *Vec2         `json:"fall_direction,omitempty"`
	Opacity       float64       `json:"opacity"`
	ShakeDeadline time.Duration `json:"shake_deadline"`
	Shake         float64       `json:"shake"`

	// time spent in the falling and fading phases; angle and opacity are
	// derived from these so frame size never changes when a phase ends
	fallElapsed time.Duration
	fadeElapsed time.Duration
}

// NewTree creates a full-health tree at tile
func NewTree(tile Position, variant int, offset Vec2) *Tree {
	return &Tree{
		decoration: decoration{tile: tile, variant: variant, offset: offset},
		Health:     TreeMaxHealth,
		State:      TreeHealthy,
		Opacity:    1,
	}
}

func (t *Tree) Kind() DecorationKind { return KindTree }

// Standing reports whether the tree still blocks its tile
func (t *Tree) Standing() bool {
	return t.State == TreeHealthy && t.Health > 0
}

// Chop damages the tree and arms the shake window. When health runs out the
// tree starts toppling along dir, which should point away from the chopper.
// Chopping a tree that is already down is a silent no-op.
func (t *Tree) Chop(dir Vec2, damage int, now, shakeWindow time.Duration) bool {
	if !t.Standing() {
		return false
	}

	t.Health -= damage
	t.ShakeDeadline = now + shakeWindow

	if t.Health <= 0 {
		d := dir.Normalize()
		t.State = TreeFalling
		t.FallAngle = 0
		t.fallElapsed = 0
		t.FallDirection = &d
		t.Shake = 0
	}
	return true
}

func (t *Tree) removed() bool {
	return t.State == TreeRemoved
}

func (t *Tree) update(f *frame) {
	switch t.State {
	case TreeHealthy:
		t.updateShake(f)
	case TreeFalling:
		t.updateFall(f)
	case TreeFading:
		t.updateFade(f)
	}
}

func (t *Tree) updateShake(f *frame) {
	if f.now < t.ShakeDeadline {
		damage := float64(TreeMaxHealth-t.Health) / TreeMaxHealth
		t.Shake = math.Sin(f.millis()*shakeFrequency) * shakeAmplitude * damage
	} else {
		t.Shake = 0
	}

	f.scene.SetTransform(t.handle, scene.Transform{
		Position: t.anchor(),
		Rotation: scene.Vec3{X: t.Shake * 0.5, Z: t.Shake},
		Scale:    scene.One,
	})
}

func (t *Tree) updateFall(f *frame) {
	t.fallElapsed += f.dt
	t.FallAngle = f.config.FallRate * t.fallElapsed.Seconds()
	if t.FallAngle >= math.Pi/2-phaseEpsilon {
		t.FallAngle = math.Pi / 2
		t.State = TreeFading
		t.fadeElapsed = 0
		f.emit(Event{Type: EventTreeFading, Tile: t.tile})
	}
	f.scene.SetTransform(t.handle, t.fallTransform())
}

// fallTransform tips the trunk about the horizontal axis perpendicular to
// the fall direction and lets the canopy drift outward; the base stays put.
func (t *Tree) fallTransform() scene.Transform {
	dir := Vec2{}
	if t.FallDirection != nil {
		dir = *t.FallDirection
	}
	axis := scene.Vec3{X: dir.Y, Z: -dir.X}.Normalize()
	drift := math.Sin(t.FallAngle) * treeHeight * treeLean

	return scene.Transform{
		Position: t.anchor().Add(scene.Vec3{X: dir.X * drift, Z: dir.Y * drift}),
		Rotation: axis.Scale(t.FallAngle),
		Scale:    scene.One,
	}
}

func (t *Tree) updateFade(f *frame) {
	t.fadeElapsed += f.dt
	t.Opacity = 1 - f.config.FadeRate*t.fadeElapsed.Seconds()
	if t.Opacity > phaseEpsilon {
		f.scene.SetOpacity(t.handle, t.Opacity)
		return
	}

	t.Opacity = 0
	t.State = TreeRemoved
	f.scene.Detach(t.handle)
	f.emit(Event{Type: EventTreeRemoved, Tile: t.tile})
}
