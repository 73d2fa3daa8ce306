package engine

import (
	"math"
	"time"

	"github.com/wricardo/grovewalk/game/scene"
)

const (
	swayFrequency    = 0.003 // per millisecond
	swayAmplitude    = 0.08
	disturbFrequency = 0.015
	disturbStrength  = 0.2
	disturbWindow    = 250 * time.Millisecond
	disturbDecay     = 0.95
)

// Flower sways forever and shakes harder for a moment when walked into
type Flower struct {
	decoration

	BasePhase      float64       `json:"base_phase"`
	Disturbance    float64       `json:"disturbance"`
	DisturbanceEnd time.Duration `json:"disturbance_end"`
	Rotation       scene.Vec3    `json:"rotation"`
}

// NewFlower creates a flower at tile with its own sway phase
func NewFlower(tile Position, variant int, offset Vec2, phase float64) *Flower {
	return &Flower{
		decoration: decoration{tile: tile, variant: variant, offset: offset},
		BasePhase:  phase,
	}
}

func (fl *Flower) Kind() DecorationKind { return KindFlower }

// Disturb restarts the disturbance burst
func (fl *Flower) Disturb(now time.Duration) {
	fl.Disturbance = disturbStrength
	fl.DisturbanceEnd = now + disturbWindow
}

func (fl *Flower) removed() bool {
	return false
}

func (fl *Flower) update(f *frame) {
	if f.now >= fl.DisturbanceEnd {
		fl.Disturbance *= disturbDecay
	}

	t := f.millis()
	idle := math.Sin(t*swayFrequency+fl.BasePhase) * swayAmplitude
	shake := math.Sin(t*disturbFrequency+fl.BasePhase) * fl.Disturbance

	fl.Rotation = scene.Vec3{X: idle + shake, Z: idle*0.5 + shake*0.5}
	f.scene.SetTransform(fl.handle, scene.Transform{
		Position: fl.anchor(),
		Rotation: fl.Rotation,
		Scale:    scene.One,
	})
}
