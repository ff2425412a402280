package component

import "github.com/go-gl/mathgl/mgl64"

// Player is the action state of the controllable character. The body,
// transform and collider live in their own components.
type Player struct {
	Action     ActionType
	LastAction ActionType
	NextAction ActionType
	Facing     Direction

	HeldBody    Entity
	CarriedBody Entity
	PushedBody  Entity

	ChangeArea        Entity
	CollectedTreasure Entity

	AirTime        float64
	CanDoubleJump  bool
	IgnoreDiePanic bool
	Hidden         bool

	BlinkSpeed float64
	Opacity    float64

	// BaseExtents is the collider size before carry scaling.
	BaseExtents mgl64.Vec3
}

var PlayerComponent = NewComponent[Player]()
