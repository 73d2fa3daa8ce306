package engine

import (
	"math"

	"github.com/wricardo/grovewalk/game/scene"
)

const (
	// arrivalEpsilon is how close translation gets before snapping to the tile
	arrivalEpsilon = 0.01
	// walkCycleRate advances the limb animation phase, radians per tile walked
	walkCycleRate = 2 * math.Pi
)

// Player is the kinematic model of the player token. It knows nothing about
// meshes; presentation reads Position, Facing and Phase.
type Player struct {
	Position     Vec2     `json:"position"`
	Facing       float64  `json:"facing"`
	TargetTile   Position `json:"target_tile"`
	TargetFacing float64  `json:"target_facing"`
	Mode         Mode     `json:"mode"`
	PrevTile     Position `json:"prev_tile"`
	Phase        float64  `json:"phase"`

	handle scene.Handle
}

// NewPlayer places an idle player on tile
func NewPlayer(tile Position, facing float64) *Player {
	return &Player{
		Position:     Vec2{X: float64(tile.X), Y: float64(tile.Y)},
		Facing:       facing,
		TargetTile:   tile,
		TargetFacing: facing,
		Mode:         ModeIdle,
		PrevTile:     tile,
	}
}

// Tile is the rounded tile the player occupies
func (p *Player) Tile() Position {
	return p.Position.Round()
}

// Busy reports whether the player is mid-rotation or mid-translation
func (p *Player) Busy() bool {
	return p.Mode != ModeIdle
}

// Aligned reports whether the player already faces facing within threshold
func (p *Player) Aligned(facing, threshold float64) bool {
	return math.Abs(AngleDiff(p.Facing, facing)) <= threshold
}

// MoveTo targets a tile. A misaligned player turns first and only starts
// walking once the turn completes.
func (p *Player) MoveTo(target Position, facing, threshold float64) {
	p.TargetTile = target
	p.TargetFacing = facing

	if !p.Aligned(facing, threshold) {
		p.Mode = ModeRotating
		return
	}
	p.Facing = facing
	if target != p.Tile() {
		p.Mode = ModeTranslating
	} else {
		p.Mode = ModeIdle
	}
}

// Face turns in place
func (p *Player) Face(facing, threshold float64) {
	p.MoveTo(p.Tile(), facing, threshold)
}

// Update advances rotation or translation by dt seconds
func (p *Player) Update(dt, turnRate, walkSpeed float64) {
	switch p.Mode {
	case ModeRotating:
		p.rotate(dt, turnRate)
	case ModeTranslating:
		p.translate(dt, walkSpeed)
	}
}

func (p *Player) rotate(dt, turnRate float64) {
	step := turnRate * dt
	diff := AngleDiff(p.Facing, p.TargetFacing)
	if math.Abs(diff) < step {
		p.Facing = p.TargetFacing
		if p.TargetTile != p.Tile() {
			p.Mode = ModeTranslating
		} else {
			p.Mode = ModeIdle
		}
		return
	}
	p.Facing = WrapAngle(p.Facing + math.Copysign(step, diff))
}

func (p *Player) translate(dt, walkSpeed float64) {
	target := Vec2{X: float64(p.TargetTile.X), Y: float64(p.TargetTile.Y)}
	delta := Vec2{X: target.X - p.Position.X, Y: target.Y - p.Position.Y}
	dist := delta.Len()
	step := walkSpeed * dt

	if dist < arrivalEpsilon || step >= dist {
		p.Position = target
		p.Mode = ModeIdle
		p.Phase = 0
		return
	}

	p.Position.X += delta.X / dist * step
	p.Position.Y += delta.Y / dist * step
	p.Phase = math.Mod(p.Phase+step*walkCycleRate, 2*math.Pi)
}

// Pose maps the walk phase to limb angles for presentation
func (p *Player) Pose() scene.LimbPose {
	return scene.Pose(p.Phase, p.Mode == ModeTranslating)
}

func (p *Player) transform() scene.Transform {
	return scene.Transform{
		Position: scene.Vec3{X: p.Position.X, Y: p.Pose().Bob, Z: p.Position.Y},
		Rotation: scene.Vec3{Y: p.Facing},
		Scale:    scene.One,
	}
}

// WrapAngle maps a into [-π, π]
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// AngleDiff is the shortest signed rotation from one angle to another
func AngleDiff(from, to float64) float64 {
	return WrapAngle(to - from)
}
