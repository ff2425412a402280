package component

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/mathz"
)

// Collider is an oriented box in the collision space. Areas are only seen
// by queries that ask for them.
type Collider struct {
	Extents  mgl64.Vec3
	Layer    PhysicsLayer
	Area     bool
	Disabled bool
	Hidden   bool
}

var ColliderComponent = NewComponent[Collider]()

// WorldExtents rotates local half extents into world axes.
func WorldExtents(extents mgl64.Vec3, basis mgl64.Mat3) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := 0; i < 3; i++ {
		out = out.Add(mathz.Abs(basis.Col(i)).Mul(extents[i]))
	}
	return out
}

// ViewExtents expresses world half extents along the axes of view.
func ViewExtents(world mgl64.Vec3, view mgl64.Mat3) mgl64.Vec3 {
	return mathz.Abs(mathz.ToLocal(view, world))
}
