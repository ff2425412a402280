package component

import "github.com/go-gl/mathgl/mgl64"

// Respawn remembers where the player last stood safely.
type Respawn struct {
	Used bool

	LastAction    ActionType
	RespawnOrigin mgl64.Vec3
	Orthogonal    Orthogonal
	LastFacing    Direction
	HasRecord     bool

	FloorOriginOnLeave mgl64.Vec3
	OffsetOnFloorLeave float64

	LastFloor    Entity
	LastHeldBody Entity
	Checkpoint   Entity
}

var RespawnComponent = NewComponent[Respawn]()
