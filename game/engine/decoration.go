package engine

import (
	"time"

	"github.com/wricardo/grovewalk/game/scene"
)

// DecorationKind tags the decoration variants
type DecorationKind string

const (
	KindTree   DecorationKind = "tree"
	KindRock   DecorationKind = "rock"
	KindFlower DecorationKind = "flower"
)

// MaxJitter bounds the sub-tile offset applied to decorations
const MaxJitter = 0.3

// Decoration is an entity owned by exactly one tile
type Decoration interface {
	Kind() DecorationKind
	Variant() int
	Offset() Vec2
	Tile() Position
}

// decoration holds what every variant shares
type decoration struct {
	tile    Position
	variant int
	offset  Vec2
	handle  scene.Handle
}

func (d *decoration) Variant() int   { return d.variant }
func (d *decoration) Offset() Vec2   { return d.offset }
func (d *decoration) Tile() Position { return d.tile }

// anchor is the world-space base of the decoration
func (d *decoration) anchor() scene.Vec3 {
	return scene.Vec3{
		X: float64(d.tile.X) + d.offset.X,
		Z: float64(d.tile.Y) + d.offset.Y,
	}
}

// Rock is static and never walkable
type Rock struct {
	decoration
}

// NewRock creates a rock at tile
func NewRock(tile Position, variant int, offset Vec2) *Rock {
	return &Rock{decoration{tile: tile, variant: variant, offset: offset}}
}

func (r *Rock) Kind() DecorationKind { return KindRock }

// entity is anything the loop advances every frame
type entity interface {
	update(f *frame)
	removed() bool
}

// frame carries one tick's inputs to entity updates
type frame struct {
	now    time.Duration
	dt     time.Duration
	scene  scene.Scene
	config *WorldConfig
	emit   func(Event)
}

// seconds is dt converted for per-second rate equations
func (f *frame) seconds() float64 {
	return f.dt.Seconds()
}

// millis is the session clock in milliseconds, the time base for oscillations
func (f *frame) millis() float64 {
	return float64(f.now) / float64(time.Millisecond)
}
