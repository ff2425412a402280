package system

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

// PickupPhysicsSystem moves the bodies the player can lift and push. A
// pickup falls, floats or sinks in the level's liquid, and goes back to
// where it was authored once it drops out of the world or stays drowned
// for too long.
type PickupPhysicsSystem struct {
	space  *SpaceState
	level  *Level
	tuning component.PickupTuning
	swim   component.SwimTuning
	pause  *Pause

	// chance decides the random dips of a floating pickup.
	chance func(p float64) bool
}

func NewPickupPhysicsSystem(space *SpaceState, level *Level, tuning *component.Tuning, pause *Pause) *PickupPhysicsSystem {
	return &PickupPhysicsSystem{
		space:  space,
		level:  level,
		tuning: tuning.Pickup,
		swim:   tuning.Swim,
		pause:  pause,
		chance: func(p float64) bool { return rand.Float64() < p },
	}
}

func (s *PickupPhysicsSystem) Update(w *ecs.World) {
	if w == nil || s.pause.Active() {
		return
	}
	ecs.ForEach(w, component.PickupComponent.Kind(), func(e ecs.Entity, pickup *component.Pickup) {
		if !pickup.EnableCollision {
			return
		}
		body, ok := LookupPhysicsBody(w, e)
		if !ok {
			return
		}
		s.step(pickup, body, FixedDelta)
	})
}

func (s *PickupPhysicsSystem) step(pickup *component.Pickup, p PhysicsBody, delta float64) {
	gravity := s.tuning.Gravity
	if !p.Body.OnFloor() {
		wasSwimming := pickup.Swimming
		height, hasLiquid := s.liquidHeight()
		pickup.Swimming = hasLiquid && p.Transform.Origin.Y() < height-s.tuning.FloatHeight
		if pickup.Swimming {
			if !wasSwimming {
				p.Body.Velocity[1] *= 0.25
			}
			s.float(pickup, p, height-s.tuning.FloatHeight, delta)
		} else {
			p.Body.Velocity[1] = math.Max(gravity, p.Body.Velocity.Y()+delta*gravity)
		}
	}
	p.Swimming = pickup.Swimming
	p.Sliding = p.Body.OnFloor() && !mathz.IsZeroApprox(p.Body.Velocity.X())

	floorDistance, hasFloor := TestAndCollide(s.space, p, p.Body.OnFloor(), delta)
	if !p.Body.InBackground {
		p.SetGlobalVelocity(HugResponse(s.space, p))
		if hasFloor {
			TryCorrectDepth(p, floorDistance)
		}
	}

	if p.GlobalVelocity().LenSqr() <= 0 {
		return
	}
	MoveAndSlide(s.space, p, p.GlobalVelocity(), mgl64.Vec3{}, delta)
	up := p.Transform.Basis.Col(1)
	if p.Transform.Origin.Dot(up) <= s.tuning.KillPlane || pickup.SinceDrowned >= s.tuning.DrownTime {
		pickup.SinceDrowned = 0
		p.Transform.Origin = pickup.InitialOrigin
		p.Transform.Basis = pickup.InitialBasis
		p.Body.Velocity = mgl64.Vec3{}
	}
}

// float pulls a light pickup toward the surface. Heavy pickups and
// pickups in a hazardous liquid sink slowly and count toward drowning.
func (s *PickupPhysicsSystem) float(pickup *component.Pickup, p PhysicsBody, height, delta float64) {
	liquid, _ := s.level.Liquid()
	origin := p.Transform.Origin
	if !mathz.IsEqualApproxTolerance(origin.Y(), height, mathz.Trixel) && !pickup.IsHeavy {
		diff := height - origin.Y()
		p.Body.Velocity[1] += s.swim.UpFactor * delta
		if diff > s.swim.DiffFactor {
			p.Body.Velocity[1] += diff * s.swim.StableFactor
		} else {
			p.Transform.Origin = mgl64.Vec3{origin.X(), height, origin.Z()}
		}
		pickup.SinceDrowned = 0
		return
	}
	if pickup.IsHeavy || liquid.Type.Hazardous() {
		pickup.SinceDrowned += delta
		sink := s.tuning.Gravity / 4
		p.Body.Velocity[1] = math.Max(sink, p.Body.Velocity.Y()+delta*sink)
		return
	}
	if s.chance(delta) {
		p.Body.Velocity[1] -= 0.25
	}
}

func (s *PickupPhysicsSystem) liquidHeight() (float64, bool) {
	if s.level == nil {
		return 0, false
	}
	return s.level.LiquidHeight()
}

// SetPickupCollision turns a pickup's collider on or off. A disabled
// pickup leaves every layer so the carrier does not collide with it; the
// authored layer comes back when it is re-enabled.
func SetPickupCollision(w *ecs.World, e ecs.Entity, enabled bool) {
	pickup, ok := ecs.Get(w, e, component.PickupComponent.Kind())
	if !ok {
		return
	}
	pickup.EnableCollision = enabled
	col, ok := ecs.Get(w, e, component.ColliderComponent.Kind())
	if !ok {
		return
	}
	if pickup.Layer == component.LayerNone && col.Layer != component.LayerNone {
		pickup.Layer = col.Layer
	}
	col.Disabled = !enabled
	if enabled {
		col.Layer = pickup.Layer
		return
	}
	col.Layer = component.LayerNone
	if body, ok := ecs.Get(w, e, component.BodyComponent.Kind()); ok {
		body.ClearContacts()
		body.SweepOnFloor = false
	}
}
