package scene

import "math"

// Vec3 is a world-space vector. Y is up; grid rows run along Z.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// One is the unit scale
var One = Vec3{X: 1, Y: 1, Z: 1}

// Add returns v + o
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Scale returns v * s
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Normalize returns the unit vector, or v unchanged when it is zero
func (v Vec3) Normalize() Vec3 {
	l := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Transform positions a handle. Rotation is Euler XYZ in radians.
type Transform struct {
	Position Vec3 `json:"position"`
	Rotation Vec3 `json:"rotation"`
	Scale    Vec3 `json:"scale"`
}

// Handle identifies an instantiated visual
type Handle uint64

// Scene is the renderer collaborator. Implementations switch a handle's
// surfaces into a blend-capable mode on the first SetOpacity call.
type Scene interface {
	Instantiate(lib *Library, templateID string) (Handle, error)
	SetTransform(h Handle, t Transform)
	SetOpacity(h Handle, opacity float64)
	Attach(h Handle)
	Detach(h Handle)
}

// NopScene discards everything. Used by headless sessions.
type NopScene struct {
	next Handle
}

func (s *NopScene) Instantiate(lib *Library, templateID string) (Handle, error) {
	if lib != nil {
		if _, err := lib.Get(templateID); err != nil {
			return 0, err
		}
	}
	s.next++
	return s.next, nil
}

func (s *NopScene) SetTransform(Handle, Transform) {}
func (s *NopScene) SetOpacity(Handle, float64)     {}
func (s *NopScene) Attach(Handle)                  {}
func (s *NopScene) Detach(Handle)                  {}
