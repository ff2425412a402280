package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

// FixedDelta is the length of one physics tick.
const FixedDelta = 1.0 / 60.0

// Friction weights applied to the local x velocity every tick.
const (
	SlideFriction = 0.2
	WaterFriction = 0.075
	FloorFriction = 0.05
	AirFriction   = 0.0025

	// Snap is the vertical speed that keeps a grounded body pressed into
	// its floor.
	Snap = -0.25
)

const sweepEpsilon = 1e-6

// PhysicsBody is a view over the components a kinematic body is made of.
type PhysicsBody struct {
	Entity    ecs.Entity
	Transform *component.Transform
	Collider  *component.Collider
	Body      *component.Body

	Sliding  bool
	Swimming bool
}

// LookupPhysicsBody gathers the body components of e.
func LookupPhysicsBody(w *ecs.World, e ecs.Entity) (PhysicsBody, bool) {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return PhysicsBody{}, false
	}
	c, ok := ecs.Get(w, e, component.ColliderComponent.Kind())
	if !ok {
		return PhysicsBody{}, false
	}
	b, ok := ecs.Get(w, e, component.BodyComponent.Kind())
	if !ok {
		return PhysicsBody{}, false
	}
	return PhysicsBody{Entity: e, Transform: t, Collider: c, Body: b}, true
}

func (p PhysicsBody) Size() mgl64.Vec3 {
	return p.Collider.Extents
}

func (p PhysicsBody) Axes(facing float64) component.Axes {
	return component.NewAxes(p.Transform.Basis, facing)
}

func (p PhysicsBody) GlobalVelocity() mgl64.Vec3 {
	return mathz.ToGlobal(p.Transform.Basis, p.Body.Velocity)
}

func (p PhysicsBody) SetGlobalVelocity(v mgl64.Vec3) {
	p.Body.Velocity = mathz.ToLocal(p.Transform.Basis, v)
}

// TestAndCollide refreshes the floor, wall and ceiling of p from probes
// ahead of its velocity, applies friction and returns the floor contact
// the body should take its depth from, if any.
func TestAndCollide(space *SpaceState, p PhysicsBody, wasOnFloor bool, delta float64) (mgl64.Vec3, bool) {
	horizontal, vertical := space.IntersectRect(p.Entity, *p.Transform, p.GlobalVelocity(), p.Size(), p.Body.Mask, delta)
	inBackground := DetermineInBackground(space, p)

	var clamp mgl64.Vec3
	hasClamp := false

	p.Body.ClearContacts()
	vel := p.Body.Velocity

	if !mathz.VecIsZeroApprox(vertical.Normal) {
		if vel.Y() < 0 {
			p.Body.Floor = vertical
			clamp, hasClamp = vertical.Contact, true
		} else if vel.Y() > 0 {
			p.Body.Ceiling = vertical
		}
	} else {
		TryAvoidNoCollision(space, p, vertical, inBackground)
	}

	if !mathz.VecIsZeroApprox(horizontal.Normal) && math.Abs(vel.X()) > 0 {
		p.Body.Wall = horizontal
	} else {
		TryAvoidNoCollision(space, p, horizontal, inBackground)
	}

	ApplyFriction(p, wasOnFloor)

	if !p.Body.InBackground && inBackground {
		hasClamp = false
	}
	p.Body.InBackground = inBackground
	return clamp, hasClamp
}

// ApplyFriction decays the local x velocity at the rate of the body's
// state: sliding, swimming, grounded or airborne.
func ApplyFriction(p PhysicsBody, wasOnFloor bool) {
	grounded := p.Body.OnFloor() || wasOnFloor
	friction := AirFriction
	switch {
	case grounded && p.Sliding:
		friction = SlideFriction
	case p.Swimming:
		friction = WaterFriction
	case grounded:
		friction = FloorFriction
	}
	p.Body.Velocity[0] = mathz.Lerp(p.Body.Velocity.X(), 0, friction)
}

// HugResponse zeroes the global velocity along a ceiling normal, and along
// a wall normal unless the body already overlaps the wall on screen.
func HugResponse(space *SpaceState, p PhysicsBody) mgl64.Vec3 {
	vel := p.GlobalVelocity()
	var mask mgl64.Vec3

	if p.Body.OnCeiling() {
		mask = mathz.Abs(p.Body.Ceiling.Normal)
	}

	if p.Body.OnWall() && !mathz.VecIsZeroApprox(p.Body.Wall.Normal) {
		if wt, ok := ecs.Get(space.world, p.Body.Wall.Collider, component.TransformComponent.Kind()); ok {
			wc, _ := ecs.Get(space.world, p.Body.Wall.Collider, component.ColliderComponent.Kind())
			wall := mgl64.Vec3{}
			if wc != nil {
				wall = component.ViewExtents(component.WorldExtents(wc.Extents, wt.Basis), p.Transform.Basis)
			}
			if !footprintsOverlap(wt.Origin, wall, p.Transform.Origin, p.Size(), p.Transform.Basis) {
				mask = mathz.Max(mask, mathz.Abs(p.Body.Wall.Normal))
			}
		}
	}

	return mathz.Scale(vel, mathz.One.Sub(mask))
}

// TryAvoidNoCollision brings the body in front of a non-blocking hit that
// would otherwise hide it. It reports whether the depth changed.
func TryAvoidNoCollision(space *SpaceState, p PhysicsBody, info component.CollisionInfo, inBackground bool) bool {
	if !info.Hit() || p.Body.InBackground || !info.HasOffset {
		return false
	}
	ct, ok := ecs.Get(space.world, info.Collider, component.TransformComponent.Kind())
	if !ok {
		return false
	}
	sign := 1.0
	if inBackground {
		sign = -1
	}
	axes := p.Axes(1)
	dist := ct.Origin.Add(info.Offset.Mul(sign))
	if p.Transform.Origin.Dot(axes.Forward)-dist.Dot(axes.Forward) >= 0 {
		return false
	}
	TryCorrectDepth(p, dist)
	return true
}

// DetermineInBackground reports whether solid or climbable geometry hides
// the body from the camera.
func DetermineInBackground(space *SpaceState, p PhysicsBody) bool {
	hit := space.CastRect(*p.Transform, p.Size().Mul(0.5), component.LayerSolid|component.LayerClimbable, true).First
	return hit != nil && hit.Entity != p.Entity
}

// TryCorrectDepth moves the body onto the depth of dist, keeping its
// screen position.
func TryCorrectDepth(p PhysicsBody, dist mgl64.Vec3) {
	axes := p.Axes(1)
	p.Transform.Origin = mathz.Scale(dist, axes.ZMask).Add(mathz.Scale(mathz.One.Sub(axes.ZMask), p.Transform.Origin))
}

// MoveAndSlide moves the body by its global velocity one world axis at a
// time. AllSides colliders block every axis. TopOnly colliders block
// downward motion that starts above them. Colliders the body already
// overlaps never block. When snap points down and the body is not rising,
// it is pulled onto a floor within snap's length.
func MoveAndSlide(space *SpaceState, p PhysicsBody, vel, snap mgl64.Vec3, delta float64) mgl64.Vec3 {
	p.Body.SweepOnFloor = false
	p.Body.SweepOnWall = false
	p.Body.SweepOnCeiling = false

	ext := component.WorldExtents(p.Size(), p.Transform.Basis)
	start := p.Transform.Origin
	blockers := space.sweepCandidates(p, start, vel.Mul(delta), ext)

	for _, axis := range [3]int{1, 0, 2} {
		motion := vel[axis] * delta
		if motion == 0 {
			continue
		}
		origin, blocked := sweepAxis(p.Transform.Origin, ext, axis, motion, blockers)
		p.Transform.Origin = origin
		if !blocked {
			continue
		}
		vel[axis] = 0
		switch {
		case axis == 1 && motion < 0:
			p.Body.SweepOnFloor = true
		case axis == 1:
			p.Body.SweepOnCeiling = true
		default:
			p.Body.SweepOnWall = true
		}
	}

	if snap[1] < 0 && vel[1] <= 0 && !p.Body.SweepOnFloor {
		origin, blocked := sweepAxis(p.Transform.Origin, ext, 1, snap[1], blockers)
		if blocked {
			p.Transform.Origin = origin
			p.Body.SweepOnFloor = true
		}
	}

	p.SetGlobalVelocity(vel)
	return vel
}

type sweepBlocker struct {
	origin  mgl64.Vec3
	extents mgl64.Vec3
	topOnly bool
}

func (s *SpaceState) sweepCandidates(p PhysicsBody, start, motion, ext mgl64.Vec3) []sweepBlocker {
	if s == nil || s.world == nil {
		return nil
	}
	reach := mathz.Abs(motion).Add(mathz.One.Mul(-Snap + mathz.Trixel))
	var out []sweepBlocker
	ecs.ForEach2(s.world, component.TransformComponent.Kind(), component.ColliderComponent.Kind(), func(e ecs.Entity, ct *component.Transform, c *component.Collider) {
		if e == p.Entity || c.Disabled || c.Area || !c.Layer.Intersects(p.Body.Mask) {
			return
		}
		allSides := c.Layer.Has(component.LayerAllSides)
		topOnly := c.Layer.Has(component.LayerTopOnly)
		if !allSides && !topOnly {
			return
		}
		cext := component.WorldExtents(c.Extents, ct.Basis)
		if overlaps3(start, ext.Sub(mathz.One.Mul(sweepEpsilon)), ct.Origin, cext) {
			return
		}
		if !overlaps3(start, ext.Add(reach), ct.Origin, cext) {
			return
		}
		if !allSides && start.Y()-ext.Y() < ct.Origin.Y()+cext.Y()-sweepEpsilon {
			return
		}
		out = append(out, sweepBlocker{origin: ct.Origin, extents: cext, topOnly: !allSides})
	})
	return out
}

func sweepAxis(origin, ext mgl64.Vec3, axis int, motion float64, blockers []sweepBlocker) (mgl64.Vec3, bool) {
	target := origin
	target[axis] += motion
	blocked := false

	for _, b := range blockers {
		if b.topOnly && (axis != 1 || motion > 0) {
			continue
		}
		if !overlaps3(target, ext.Sub(mathz.One.Mul(sweepEpsilon)), b.origin, b.extents) {
			continue
		}
		if motion > 0 {
			limit := b.origin[axis] - b.extents[axis] - ext[axis]
			if limit < target[axis] {
				target[axis] = math.Max(limit, origin[axis])
				blocked = true
			}
		} else {
			limit := b.origin[axis] + b.extents[axis] + ext[axis]
			if limit > target[axis] {
				target[axis] = math.Min(limit, origin[axis])
				blocked = true
			}
		}
	}
	return target, blocked
}
