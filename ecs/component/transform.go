package component

import "github.com/go-gl/mathgl/mgl64"

// Transform is a world-space pose. Basis columns are Right, Up and Forward.
type Transform struct {
	Origin mgl64.Vec3
	Basis  mgl64.Mat3
}

var TransformComponent = NewComponent[Transform]()

func NewTransform(origin mgl64.Vec3, basis mgl64.Mat3) Transform {
	return Transform{Origin: origin, Basis: basis}
}

// Translated returns a copy moved by offset.
func (t Transform) Translated(offset mgl64.Vec3) Transform {
	t.Origin = t.Origin.Add(offset)
	return t
}

// At returns a copy placed at origin.
func (t Transform) At(origin mgl64.Vec3) Transform {
	t.Origin = origin
	return t
}
