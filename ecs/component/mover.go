package component

import "github.com/go-gl/mathgl/mgl64"

// Mover tweens an entity between two origins.
type Mover struct {
	From     mgl64.Vec3
	To       mgl64.Vec3
	Duration float64
	Elapsed  float64
	Active   bool
	PingPong bool

	// Delta is how far the last update moved the entity.
	Delta mgl64.Vec3
}

var MoverComponent = NewComponent[Mover]()
