package component

import "github.com/go-gl/mathgl/mgl64"

// Pickup is a body the player can lift, throw, drop or push.
type Pickup struct {
	IsHeavy         bool
	EnableCollision bool

	// Layer is restored when collision is re-enabled.
	Layer PhysicsLayer

	InitialOrigin mgl64.Vec3
	InitialBasis  mgl64.Mat3

	Swimming bool
	// SinceDrowned counts seconds a heavy pickup has spent under water.
	SinceDrowned float64
}

var PickupComponent = NewComponent[Pickup]()
