package component

import "github.com/go-gl/mathgl/mgl64"

// Camera is the perspective the player sees the world from. Its Orthogonal
// view selects the basis every physics query uses.
type Camera struct {
	Orthogonal     Orthogonal
	LastOrthogonal Orthogonal

	CanFollow bool
	CanRotate bool

	// Size is the vertical view size in units.
	Size float64
	// Offset is the free-look pan, in view space.
	Offset mgl64.Vec3

	Target Entity

	Rotation   CameraRotation
	ShakeLeft  float64
	ShakeSpan  float64
	ShakeTotal float64
}

var CameraComponent = NewComponent[Camera]()

// CameraRotation is an in-flight yaw tween between two views.
type CameraRotation struct {
	Active   bool
	From     Orthogonal
	To       Orthogonal
	FromYaw  float64
	ToYaw    float64
	Elapsed  float64
	Duration float64
}

// Step is the normalized tween progress, in [0, 1].
func (r CameraRotation) Step() float64 {
	if r.Duration <= 0 {
		return 1
	}
	s := r.Elapsed / r.Duration
	if s > 1 {
		return 1
	}
	return s
}
