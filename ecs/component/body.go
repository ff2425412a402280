package component

import "github.com/go-gl/mathgl/mgl64"

// CollisionInfo is a perspective-relative contact. A zero Collider means no
// contact.
type CollisionInfo struct {
	Collider   Entity
	Contact    mgl64.Vec3
	HasContact bool
	Offset     mgl64.Vec3
	HasOffset  bool
	Normal     mgl64.Vec3
}

func (c CollisionInfo) Hit() bool {
	return c.Collider.Valid()
}

// Body is the kinematic state shared by the player and pickups. Velocity is
// expressed in the body's own basis.
type Body struct {
	Velocity     mgl64.Vec3
	Mask         PhysicsLayer
	Floor        CollisionInfo
	Wall         CollisionInfo
	Ceiling      CollisionInfo
	InBackground bool

	// Flags reported by the last MoveAndSlide sweep.
	SweepOnFloor   bool
	SweepOnWall    bool
	SweepOnCeiling bool
}

var BodyComponent = NewComponent[Body]()

func (b *Body) OnFloor() bool {
	return b.Floor.Hit() || b.SweepOnFloor
}

func (b *Body) OnWall() bool {
	return b.Wall.Hit()
}

func (b *Body) OnCeiling() bool {
	return b.Ceiling.Hit()
}

// ClearContacts forgets the floor, wall and ceiling from the previous test.
func (b *Body) ClearContacts() {
	b.Floor = CollisionInfo{}
	b.Wall = CollisionInfo{}
	b.Ceiling = CollisionInfo{}
}
