package component

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/mathz"
)

// Axes is the view-relative frame derived from a basis and a facing sign.
// Forward points out of the screen, toward the camera.
type Axes struct {
	Right   mgl64.Vec3
	Up      mgl64.Vec3
	Forward mgl64.Vec3
	Facing  mgl64.Vec3

	XMask  mgl64.Vec3
	YMask  mgl64.Vec3
	ZMask  mgl64.Vec3
	XYMask mgl64.Vec3
	XZMask mgl64.Vec3
	YZMask mgl64.Vec3
}

// NewAxes normalizes the basis columns, discarding any scale.
func NewAxes(basis mgl64.Mat3, facing float64) Axes {
	a := Axes{
		Right:   normalized(basis.Col(0)),
		Up:      normalized(basis.Col(1)),
		Forward: normalized(basis.Col(2)),
	}
	a.Facing = a.Right.Mul(facing)
	a.XMask = mathz.Abs(a.Right)
	a.YMask = mathz.Abs(a.Up)
	a.ZMask = mathz.Abs(a.Forward)
	a.XYMask = mathz.Max(a.XMask, a.YMask)
	a.XZMask = mathz.Max(a.XMask, a.ZMask)
	a.YZMask = mathz.Max(a.YMask, a.ZMask)
	return a
}

func normalized(v mgl64.Vec3) mgl64.Vec3 {
	if v.LenSqr() == 0 {
		return v
	}
	return v.Normalize()
}
