package engine

import (
	"math"

	"github.com/wricardo/grovewalk/game/scene"
)

const (
	cloudAltitude  = 6.0
	cloudBob       = 0.2
	cloudBobFreq   = 0.001  // per millisecond
	cloudDriftFreq = 0.0005 // per millisecond
)

// Cloud drifts on a fixed oscillation. It has no state beyond its parameters.
type Cloud struct {
	Base      scene.Vec3 `json:"base"`
	Phase     float64    `json:"phase"`
	Speed     float64    `json:"speed"`
	Amplitude float64    `json:"amplitude"`
	Scale     float64    `json:"scale"`

	handle scene.Handle
}

// At returns the cloud position at session time t (milliseconds)
func (c *Cloud) At(t float64) scene.Vec3 {
	return scene.Vec3{
		X: c.Base.X + math.Sin(t*cloudDriftFreq*c.Speed+c.Phase)*c.Amplitude,
		Y: c.Base.Y + math.Sin(t*cloudBobFreq+c.Phase)*cloudBob,
		Z: c.Base.Z,
	}
}

func (c *Cloud) removed() bool {
	return false
}

func (c *Cloud) update(f *frame) {
	f.scene.SetTransform(c.handle, scene.Transform{
		Position: c.At(f.millis()),
		Scale:    scene.One.Scale(c.Scale),
	})
}
