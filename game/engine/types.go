package engine

import (
	"math"
	"time"

	"github.com/wricardo/grovewalk/game/scene"
)

// Terrain represents the ground kind of a tile
type Terrain string

const (
	Grass Terrain = "grass"
	Water Terrain = "water"
	Path  Terrain = "path"

	// Validation constants
	MinGridSize = 5
	MaxGridSize = 64
	MaxVariants = 8
	MaxClouds   = 64
)

// Mode is the player controller state
type Mode string

const (
	ModeIdle        Mode = "idle"
	ModeRotating    Mode = "rotating"
	ModeTranslating Mode = "translating"
)

// Position represents integer tile coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NoTile is the sentinel for "no hovered tile"
var NoTile = Position{X: -1, Y: -1}

// Add returns p shifted by d
func (p Position) Add(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Vec2 is a continuous position or direction on the grid plane
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Len returns the vector length
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns the unit vector, or the zero vector unchanged
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Round returns the nearest tile
func (v Vec2) Round() Position {
	return Position{X: int(math.Round(v.X)), Y: int(math.Round(v.Y))}
}

// Direction is a cardinal step intent
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists the cardinal directions in input priority order
var Directions = []Direction{Up, Down, Left, Right}

// Delta returns the tile offset for the direction
func (d Direction) Delta() (int, int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Valid reports whether d is one of the four cardinal directions
func (d Direction) Valid() bool {
	dx, dy := d.Delta()
	return dx != 0 || dy != 0
}

// Facing returns the facing angle implied by stepping in d
func (d Direction) Facing() float64 {
	dx, dy := d.Delta()
	return FacingFor(float64(dx), float64(dy))
}

// FacingFor converts a grid-plane direction into a facing angle.
// Down (+y) is 0, right (+x) is π/2.
func FacingFor(dx, dy float64) float64 {
	return math.Atan2(dx, dy)
}

// ParseDirection accepts the four direction names plus WASD letters
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up", "w", "north":
		return Up, nil
	case "down", "s", "south":
		return Down, nil
	case "left", "a", "west":
		return Left, nil
	case "right", "d", "east":
		return Right, nil
	}
	return "", ErrUnknownDirection
}

// Intent is the held-key snapshot supplied by the input collaborator
type Intent struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// Direction resolves the snapshot to a single axis. Vertical keys win over
// horizontal ones, up over down and left over right.
func (i Intent) Direction() (Direction, bool) {
	switch {
	case i.Up:
		return Up, true
	case i.Down:
		return Down, true
	case i.Left:
		return Left, true
	case i.Right:
		return Right, true
	}
	return "", false
}

// Outcome is what the interaction resolver did with an intent
type Outcome string

const (
	OutcomeIgnored Outcome = "ignored"
	OutcomeTurn    Outcome = "turn"
	OutcomeStep    Outcome = "step"
	OutcomeChop    Outcome = "chop"
)

// Resolution describes a single resolver decision
type Resolution struct {
	Outcome   Outcome   `json:"outcome"`
	Direction Direction `json:"direction,omitempty"`
	From      Position  `json:"from"`
	Target    Position  `json:"target"`
	Reason    string    `json:"reason,omitempty"`
}

// EventType names things the engine reports to observers
type EventType string

const (
	EventStep            EventType = "step"
	EventTurn            EventType = "turn"
	EventChop            EventType = "chop"
	EventTreeFalling     EventType = "tree_falling"
	EventTreeFading      EventType = "tree_fading"
	EventTreeRemoved     EventType = "tree_removed"
	EventFlowerDisturbed EventType = "flower_disturbed"
)

// Event is an observable engine occurrence
type Event struct {
	Type   EventType     `json:"type"`
	Tile   Position      `json:"tile"`
	At     time.Duration `json:"at"`
	Health int           `json:"health,omitempty"`
}

// TileView is a serializable summary of one tile
type TileView struct {
	X          int            `json:"x"`
	Y          int            `json:"y"`
	Terrain    Terrain        `json:"terrain"`
	Decoration DecorationKind `json:"decoration,omitempty"`
	Variant    int            `json:"variant,omitempty"`
	Health     *int           `json:"health,omitempty"`
	TreeState  TreeState      `json:"tree_state,omitempty"`
	Walkable   bool           `json:"walkable"`
}

// PlayerView is the player part of a snapshot
type PlayerView struct {
	Position     Vec2           `json:"position"`
	Tile         Position       `json:"tile"`
	Facing       float64        `json:"facing"`
	TargetTile   Position       `json:"target_tile"`
	TargetFacing float64        `json:"target_facing"`
	Mode         Mode           `json:"mode"`
	Phase        float64        `json:"phase"`
	Pose         scene.LimbPose `json:"pose"`
}

// TreeView is the animation state of a tree that is not fully healthy
type TreeView struct {
	Tile      Position  `json:"tile"`
	Health    int       `json:"health"`
	State     TreeState `json:"state"`
	FallAngle float64   `json:"fall_angle"`
	Opacity   float64   `json:"opacity"`
}

// Snapshot is the complete observable state of a session
type Snapshot struct {
	ConfigName string     `json:"config_name"`
	GridSize   int        `json:"grid_size"`
	Tick       uint64     `json:"tick"`
	ElapsedMS  int64      `json:"elapsed_ms"`
	Terrain    []string   `json:"terrain"`
	Objects    []string   `json:"objects"`
	Player     PlayerView `json:"player"`
	Trees      []TreeView `json:"trees,omitempty"`
	CooldownMS int64      `json:"cooldown_ms"`
	Hovered    Position   `json:"hovered"`
	Entities   int        `json:"entities"`
}
