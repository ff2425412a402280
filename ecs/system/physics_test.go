package system

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/rs/zerolog"
)

var bodyExtents = mgl64.Vec3{0.25, 0.4375, 0.25}

func newTestBody(t *testing.T, w *ecs.World, origin mgl64.Vec3) PhysicsBody {
	t.Helper()
	e := addBox(t, w, origin, bodyExtents, component.LayerPlayer)
	if err := ecs.Add(w, e, component.BodyComponent.Kind(), &component.Body{Mask: component.LayerSolid}); err != nil {
		t.Fatalf("add body: %v", err)
	}
	p, ok := LookupPhysicsBody(w, e)
	if !ok {
		t.Fatalf("expected a physics body")
	}
	return p
}

func TestApplyFriction(t *testing.T) {
	cases := []struct {
		name       string
		onFloor    bool
		sliding    bool
		swimming   bool
		wantFactor float64
	}{
		{"sliding on the floor", true, true, false, SlideFriction},
		{"sliding in the air", false, true, false, AirFriction},
		{"swimming", false, false, true, WaterFriction},
		{"walking", true, false, false, FloorFriction},
		{"airborne", false, false, false, AirFriction},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			p := newTestBody(t, w, mgl64.Vec3{})
			p.Sliding = tc.sliding
			p.Swimming = tc.swimming
			p.Body.Velocity = mgl64.Vec3{2, 3, 0}

			ApplyFriction(p, tc.onFloor)

			if want := 2 * (1 - tc.wantFactor); math.Abs(p.Body.Velocity.X()-want) > 1e-12 {
				t.Fatalf("expected x velocity %v, got %v", want, p.Body.Velocity.X())
			}
			if p.Body.Velocity.Y() != 3 {
				t.Fatalf("expected y velocity to be kept, got %v", p.Body.Velocity.Y())
			}
		})
	}
}

func TestFrictionRatesAreOrdered(t *testing.T) {
	rates := []float64{SlideFriction, WaterFriction, FloorFriction, AirFriction}
	for i := 1; i < len(rates); i++ {
		if rates[i] >= rates[i-1] {
			t.Fatalf("expected slide > water > floor > air, got %v", rates)
		}
	}
}

func TestFrictionDecaysTowardZero(t *testing.T) {
	w := ecs.NewWorld()
	p := newTestBody(t, w, mgl64.Vec3{})
	p.Body.Velocity = mgl64.Vec3{-4, 0, 0}

	prev := math.Abs(p.Body.Velocity.X())
	for i := 0; i < 120; i++ {
		ApplyFriction(p, true)
		cur := math.Abs(p.Body.Velocity.X())
		if cur >= prev {
			t.Fatalf("expected speed to drop on tick %d, got %v after %v", i, cur, prev)
		}
		if p.Body.Velocity.X() > 0 {
			t.Fatalf("expected friction never to flip direction, got %v", p.Body.Velocity.X())
		}
		prev = cur
	}
}

func TestHugResponse(t *testing.T) {
	cases := []struct {
		name    string
		wallAt  mgl64.Vec3
		ceiling bool
		wall    bool
		want    mgl64.Vec3
	}{
		{"free", mgl64.Vec3{}, false, false, mgl64.Vec3{1, 2, 0}},
		{"ceiling stops rising", mgl64.Vec3{}, true, false, mgl64.Vec3{1, 0, 0}},
		{"wall stops running", mgl64.Vec3{1, 1, 0}, false, true, mgl64.Vec3{0, 2, 0}},
		{"wall already overlapping on screen", mgl64.Vec3{0.3, 1, -3}, false, true, mgl64.Vec3{1, 2, 0}},
		{"ceiling and wall", mgl64.Vec3{1, 1, 0}, true, true, mgl64.Vec3{0, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			s := NewSpaceState(w, zerolog.Nop())
			p := newTestBody(t, w, mgl64.Vec3{0, 1, 0})
			p.Body.Velocity = mgl64.Vec3{1, 2, 0}

			if tc.ceiling {
				roof := addBox(t, w, mgl64.Vec3{0, 2, 0}, unitBox, component.LayerAllSides)
				p.Body.Ceiling = component.CollisionInfo{Collider: roof, Normal: mgl64.Vec3{0, -1, 0}}
			}
			if tc.wall {
				wall := addBox(t, w, tc.wallAt, unitBox, component.LayerAllSides)
				p.Body.Wall = component.CollisionInfo{Collider: wall, Normal: mgl64.Vec3{-1, 0, 0}}
			}

			if got := HugResponse(s, p); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestTryCorrectDepthKeepsScreenPosition(t *testing.T) {
	cases := []struct {
		name string
		view component.Orthogonal
		want mgl64.Vec3
	}{
		{"front", component.ViewFront, mgl64.Vec3{1, 2, -4}},
		{"right", component.ViewRight, mgl64.Vec3{9, 2, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			p := newTestBody(t, w, mgl64.Vec3{1, 2, 3})
			p.Transform.Basis = tc.view.Basis()

			TryCorrectDepth(p, mgl64.Vec3{9, 9, -4})

			if !p.Transform.Origin.ApproxEqualThreshold(tc.want, 1e-9) {
				t.Fatalf("expected %v, got %v", tc.want, p.Transform.Origin)
			}
		})
	}
}

func TestTryAvoidNoCollision(t *testing.T) {
	cases := []struct {
		name         string
		origin       mgl64.Vec3
		hasOffset    bool
		inBackground bool
		bodyHidden   bool
		moved        bool
		wantZ        float64
	}{
		{"steps in front of the hit", mgl64.Vec3{0, 1, 0}, true, false, false, true, 6},
		{"already in front", mgl64.Vec3{0, 1, 7}, true, false, false, false, 7},
		{"no offset", mgl64.Vec3{0, 1, 0}, false, false, false, false, 0},
		{"body already hidden", mgl64.Vec3{0, 1, 0}, true, false, true, false, 0},
		{"hidden this tick stops short of the hit", mgl64.Vec3{0, 1, 0}, true, true, false, true, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			s := NewSpaceState(w, zerolog.Nop())
			p := newTestBody(t, w, tc.origin)
			p.Body.InBackground = tc.bodyHidden
			box := addBox(t, w, mgl64.Vec3{0, 0, 5}, unitBox, component.LayerBackground)
			info := component.CollisionInfo{Collider: box, Offset: mgl64.Vec3{0, 0, 1}, HasOffset: tc.hasOffset}

			if got := TryAvoidNoCollision(s, p, info, tc.inBackground); got != tc.moved {
				t.Fatalf("expected moved %v, got %v", tc.moved, got)
			}
			if p.Transform.Origin.Z() != tc.wantZ {
				t.Fatalf("expected z %v, got %v", tc.wantZ, p.Transform.Origin.Z())
			}
			if p.Transform.Origin.X() != tc.origin.X() || p.Transform.Origin.Y() != tc.origin.Y() {
				t.Fatalf("expected screen position %v to be kept, got %v", tc.origin, p.Transform.Origin)
			}
		})
	}
}

func TestTryAvoidNoCollisionWithoutHit(t *testing.T) {
	w := ecs.NewWorld()
	s := NewSpaceState(w, zerolog.Nop())
	p := newTestBody(t, w, mgl64.Vec3{})
	if TryAvoidNoCollision(s, p, component.CollisionInfo{HasOffset: true}, false) {
		t.Fatalf("expected no correction without a collider")
	}
}

func TestDetermineInBackground(t *testing.T) {
	cases := []struct {
		name  string
		box   mgl64.Vec3
		layer component.PhysicsLayer
		want  bool
	}{
		{"solid toward the camera", mgl64.Vec3{0, 1, 3}, component.LayerAllSides, true},
		{"climbable toward the camera", mgl64.Vec3{0, 1, 3}, component.LayerLadder, true},
		{"solid behind", mgl64.Vec3{0, 1, -3}, component.LayerAllSides, false},
		{"area toward the camera", mgl64.Vec3{0, 1, 3}, component.LayerActors, false},
		{"off to the side", mgl64.Vec3{2, 1, 3}, component.LayerAllSides, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			s := NewSpaceState(w, zerolog.Nop())
			p := newTestBody(t, w, mgl64.Vec3{0, 1, 0})
			addBox(t, w, tc.box, unitBox, tc.layer)

			if got := DetermineInBackground(s, p); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestTestAndCollideFloor(t *testing.T) {
	w := ecs.NewWorld()
	s := NewSpaceState(w, zerolog.Nop())
	floor := addBox(t, w, mgl64.Vec3{0, 0, -2}, unitBox, component.LayerAllSides)
	p := newTestBody(t, w, mgl64.Vec3{0, 1, 0})
	p.Body.Velocity = mgl64.Vec3{1, -5, 0}

	clamp, ok := TestAndCollide(s, p, false, FixedDelta)

	if !ok || clamp != (mgl64.Vec3{0, 0, -2}) {
		t.Fatalf("expected a floor clamp at the floor origin, got %v %v", clamp, ok)
	}
	if p.Body.Floor.Collider != floor || p.Body.Floor.Normal != (mgl64.Vec3{0, 1, 0}) {
		t.Fatalf("expected the floor contact, got %+v", p.Body.Floor)
	}
	if p.Body.OnCeiling() || p.Body.InBackground {
		t.Fatalf("expected no ceiling and not hidden")
	}
	if want := 1 - FloorFriction; math.Abs(p.Body.Velocity.X()-want) > 1e-12 {
		t.Fatalf("expected floor friction, got %v", p.Body.Velocity.X())
	}
}

func TestTestAndCollideCeiling(t *testing.T) {
	w := ecs.NewWorld()
	s := NewSpaceState(w, zerolog.Nop())
	roof := addBox(t, w, mgl64.Vec3{0, 2, 0}, unitBox, component.LayerAllSides)
	p := newTestBody(t, w, mgl64.Vec3{0, 1, 0})
	p.Body.Velocity = mgl64.Vec3{0, 5, 0}

	if _, ok := TestAndCollide(s, p, false, FixedDelta); ok {
		t.Fatalf("expected no floor clamp when rising")
	}
	if p.Body.Ceiling.Collider != roof {
		t.Fatalf("expected ceiling %v, got %v", roof, p.Body.Ceiling.Collider)
	}
	if got := HugResponse(s, p); got.Y() != 0 {
		t.Fatalf("expected the ceiling to stop the rise, got %v", got)
	}
}

func TestMoveAndSlide(t *testing.T) {
	cases := []struct {
		name      string
		layer     component.PhysicsLayer
		boxAt     mgl64.Vec3
		origin    mgl64.Vec3
		velocity  mgl64.Vec3
		snap      mgl64.Vec3
		wantY     float64
		onFloor   bool
		onCeiling bool
	}{
		{"lands on all sides", component.LayerAllSides, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, -5, 0}, mgl64.Vec3{}, 0.9375, true, false},
		{"lands on top only", component.LayerTopOnly, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, -5, 0}, mgl64.Vec3{}, 0.9375, true, false},
		{"rises through top only", component.LayerTopOnly, mgl64.Vec3{0, 1.5, 0}, mgl64.Vec3{0, 0.5, 0}, mgl64.Vec3{0, 30, 0}, mgl64.Vec3{}, 1, false, false},
		{"bumps all sides above", component.LayerAllSides, mgl64.Vec3{0, 2, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 30, 0}, mgl64.Vec3{}, 1.0625, false, true},
		{"snaps onto a floor below", component.LayerAllSides, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0.95, 0}, mgl64.Vec3{}, mgl64.Vec3{0, Snap, 0}, 0.9375, true, false},
		{"background never blocks", component.LayerBackground, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, -6, 0}, mgl64.Vec3{}, 0.9, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			s := NewSpaceState(w, zerolog.Nop())
			addBox(t, w, tc.boxAt, unitBox, tc.layer)
			p := newTestBody(t, w, tc.origin)

			MoveAndSlide(s, p, tc.velocity, tc.snap, FixedDelta)

			if math.Abs(p.Transform.Origin.Y()-tc.wantY) > 1e-9 {
				t.Fatalf("expected y %v, got %v", tc.wantY, p.Transform.Origin.Y())
			}
			if p.Body.SweepOnFloor != tc.onFloor || p.Body.SweepOnCeiling != tc.onCeiling {
				t.Fatalf("expected floor %v ceiling %v, got %v %v", tc.onFloor, tc.onCeiling, p.Body.SweepOnFloor, p.Body.SweepOnCeiling)
			}
		})
	}
}
