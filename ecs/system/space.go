package system

import (
	"slices"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
	"github.com/rs/zerolog"
)

const (
	// Margin pads every boxcast, matching the collision margin of the
	// shapes it is tested against.
	Margin = 0.07
	// MaxDepth is the half depth of a cast along the view axis.
	MaxDepth = 100.0
	MinDepth = 0.3125
	// MaxResults caps a single boxcast. Hits past the cap are dropped.
	MaxResults = 512
)

// Hit is a collider found by a cast, copied at query time.
type Hit struct {
	Entity    ecs.Entity
	Transform component.Transform
	Collider  component.Collider
}

// CastResult is the outcome of a depth-sorted rect cast. Near is the
// collider closest to the camera, Far the next distinct one behind it.
type CastResult struct {
	Near  *Hit
	Far   *Hit
	First *Hit
}

// SpaceState answers collision queries against the Transform+Collider
// entities of a world.
type SpaceState struct {
	world *ecs.World
	log   zerolog.Logger

	warned bool

	// CameraOrigin orders the hits of IntersectRect. Callers refresh it
	// every tick from the camera.
	CameraOrigin mgl64.Vec3
}

func NewSpaceState(w *ecs.World, log zerolog.Logger) *SpaceState {
	return &SpaceState{world: w, log: log}
}

// Boxcast returns every enabled collider overlapping the box at t with the
// given half extents grown by margin. Extents are along t's basis.
func (s *SpaceState) Boxcast(t component.Transform, half mgl64.Vec3, mask component.PhysicsLayer, includeAreas bool, margin float64) []Hit {
	if s == nil || s.world == nil {
		return nil
	}

	query := component.WorldExtents(mathz.Max(half.Add(mathz.One.Mul(margin)), mathz.Zero), t.Basis)

	var hits []Hit
	ecs.ForEach2(s.world, component.TransformComponent.Kind(), component.ColliderComponent.Kind(), func(e ecs.Entity, ct *component.Transform, c *component.Collider) {
		if c.Disabled || !c.Layer.Intersects(mask) {
			return
		}
		if c.Area && !includeAreas {
			return
		}
		ext := component.WorldExtents(c.Extents, ct.Basis)
		if !overlaps3(t.Origin, query, ct.Origin, ext) {
			return
		}
		hits = append(hits, Hit{Entity: e, Transform: *ct, Collider: *c})
	})

	if len(hits) > MaxResults {
		if !s.warned {
			s.warned = true
			s.log.Warn().Int("hits", len(hits)).Int("cap", MaxResults).Msg("boxcast result cap reached, dropping hits")
		}
		hits = hits[:MaxResults]
	}

	return hits
}

func overlaps3(a, ae, b, be mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		if d >= ae[i]+be[i] {
			return false
		}
	}
	return true
}

// CastRect casts a box of half size along the full depth of t's view and
// picks the nearest and next-farthest colliders. Solid colliders always
// take part so they can occlude hits from mask; a pick whose layer is not
// in mask is cleared afterwards. Backwards casts only look at colliders in
// front of t, toward the camera.
func (s *SpaceState) CastRect(t component.Transform, size mgl64.Vec3, mask component.PhysicsLayer, backwards bool) CastResult {
	axes := component.NewAxes(t.Basis, 1)
	far := mathz.Ceil(t.Origin.Add(axes.Forward.Mul(MaxDepth * 2)))

	resize := mgl64.Vec3{size.X() - Margin, size.Y() - Margin, MaxDepth}
	hits := s.Boxcast(t, resize, component.LayerSolid|mask, true, Margin)

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Transform.Origin.Sub(far).LenSqr() > hits[j].Transform.Origin.Sub(far).LenSqr()
	})

	depth := t.Origin.Dot(axes.Forward)
	var behind []Hit
	for _, h := range hits {
		if h.Transform.Origin.Dot(axes.Forward) > depth {
			behind = append(behind, h)
		}
	}

	pick := func(list []Hit, i int) *Hit {
		if i < 0 || i >= len(list) {
			return nil
		}
		h := list[i]
		return &h
	}

	var near, farHit *Hit
	if backwards {
		near = pick(behind, 0)
		farHit = pick(behind, 1)
	} else {
		near = pick(hits, len(hits)-1)
		farHit = pick(hits, len(hits)-2)
	}

	for inc := 0; sameFootprint(near, farHit, t.Basis); inc++ {
		if backwards {
			farHit = pick(behind, 2+inc)
		} else {
			farHit = pick(hits, len(hits)-(3+inc))
		}
	}

	if near != nil && !near.Collider.Layer.Intersects(mask) {
		near = nil
	}
	if farHit != nil && !farHit.Collider.Layer.Intersects(mask) {
		farHit = nil
	}

	res := CastResult{Near: near, Far: farHit, First: near}
	if res.First == nil {
		res.First = farHit
	}
	return res
}

// sameFootprint reports whether two hits sit on the same screen cell of
// the view.
func sameFootprint(a, b *Hit, view mgl64.Mat3) bool {
	if a == nil || b == nil {
		return false
	}
	la := mathz.ToLocal(view, a.Transform.Origin)
	lb := mathz.ToLocal(view, b.Transform.Origin)
	return mathz.IsEqualApprox(la.X(), lb.X()) && mathz.IsEqualApprox(la.Y(), lb.Y())
}

// CastPoint is a half-trixel CastRect returning the first hit.
func (s *SpaceState) CastPoint(t component.Transform, mask component.PhysicsLayer) *Hit {
	return s.CastRect(t, mathz.One.Mul(mathz.HalfTrixel), mask, false).First
}

// IntersectRect casts thin probes ahead of a moving box, one per view axis.
// velocity is global. self is never reported.
func (s *SpaceState) IntersectRect(self ecs.Entity, t component.Transform, velocity, half mgl64.Vec3, mask component.PhysicsLayer, delta float64) (horizontal, vertical component.CollisionInfo) {
	axes := component.NewAxes(t.Basis, 1)
	vx := mathz.Scale(axes.XMask, velocity)
	vy := mathz.Scale(axes.YMask, velocity)
	horizontal = s.intersectLine(self, t, vx, half, mask, delta, true)
	vertical = s.intersectLine(self, t, vy, half, mask, delta, false)
	return horizontal, vertical
}

func (s *SpaceState) intersectLine(self ecs.Entity, t component.Transform, velocity, half mgl64.Vec3, mask component.PhysicsLayer, delta float64, horizontal bool) component.CollisionInfo {
	var info component.CollisionInfo
	axes := component.NewAxes(t.Basis, 1)

	plane := mgl64.Vec3{half.X() - Margin, 0, MaxDepth}
	offset := half.Y()
	if horizontal {
		plane = mgl64.Vec3{0, half.Y() - Margin, MaxDepth}
		offset = half.X()
	}

	sign := mathz.SignVec(velocity)
	next := t.Translated(velocity.Mul(delta).Add(sign.Mul(offset)))
	hits := s.Boxcast(next, plane, mask, false, Margin)
	hits = slices.DeleteFunc(hits, func(h Hit) bool { return h.Entity == self })
	if len(hits) == 0 {
		return info
	}

	camera := mathz.Ceil(s.CameraOrigin)
	nearest := hits[0]
	for _, h := range hits[1:] {
		if h.Transform.Origin.Sub(camera).LenSqr() <= nearest.Transform.Origin.Sub(camera).LenSqr() {
			nearest = h
		}
	}

	info.Collider = nearest.Entity
	if mathz.VecIsZeroApprox(velocity) {
		return info
	}

	layer := nearest.Collider.Layer
	y := velocity.Dot(axes.Up)
	wall := component.ViewExtents(component.WorldExtents(nearest.Collider.Extents, nearest.Transform.Basis), t.Basis)
	if !layer.Has(component.LayerAllSides) && footprintsOverlap(nearest.Transform.Origin, wall, t.Origin, half, t.Basis) {
		return component.CollisionInfo{}
	}

	switch {
	case layer.Has(component.LayerBackground), layer.Has(component.LayerTopOnly) && y >= 0:
		ext := nearest.Collider.Extents
		info.Offset = axes.Forward.Mul(ext.Z() * 2)
		info.HasOffset = true
	case layer.Has(component.LayerAllSides), layer.Has(component.LayerTopOnly) && y < 0:
		info.Contact = nearest.Transform.Origin
		info.HasContact = true
		info.Normal = sign.Mul(-1)
	}
	return info
}

// footprintSkin shrinks one footprint before the overlap test, so boxes
// that only touch do not count.
const footprintSkin = 1e-9

// footprint is the screen-space box of an origin with view half extents.
func footprint(origin, half mgl64.Vec3, view mgl64.Mat3) cp.BB {
	l := mathz.ToLocal(view, origin)
	return cp.NewBBForExtents(cp.Vector{X: l.X(), Y: l.Y()}, half.X(), half.Y())
}

// footprintsOverlap is a strict overlap of the two screen footprints.
func footprintsOverlap(a, ae, b, be mgl64.Vec3, view mgl64.Mat3) bool {
	shrunk := mgl64.Vec3{ae.X() - footprintSkin, ae.Y() - footprintSkin, ae.Z()}
	return footprint(a, shrunk, view).Intersects(footprint(b, be, view))
}
