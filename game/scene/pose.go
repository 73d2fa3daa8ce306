package scene

import "math"

const (
	limbSwing = 0.6
	bodyBob   = 0.05
)

// LimbPose is the presentation of the player's walk cycle
type LimbPose struct {
	LeftArm  float64 `json:"left_arm"`
	RightArm float64 `json:"right_arm"`
	LeftLeg  float64 `json:"left_leg"`
	RightLeg float64 `json:"right_leg"`
	Bob      float64 `json:"bob"`
}

// Pose maps an animation phase (radians) to limb angles. Standing still
// returns the rest pose regardless of phase.
func Pose(phase float64, walking bool) LimbPose {
	if !walking {
		return LimbPose{}
	}
	s := math.Sin(phase)
	return LimbPose{
		LeftArm:  -s * limbSwing,
		RightArm: s * limbSwing,
		LeftLeg:  s * limbSwing,
		RightLeg: -s * limbSwing,
		Bob:      math.Abs(math.Cos(phase)) * bodyBob,
	}
}
