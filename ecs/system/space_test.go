package system

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/rs/zerolog"
)

var unitBox = mgl64.Vec3{0.5, 0.5, 0.5}

func addBox(t *testing.T, w *ecs.World, origin, extents mgl64.Vec3, layer component.PhysicsLayer) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	tr := component.NewTransform(origin, mgl64.Ident3())
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &tr); err != nil {
		t.Fatalf("add transform: %v", err)
	}
	if err := ecs.Add(w, e, component.ColliderComponent.Kind(), &component.Collider{Extents: extents, Layer: layer}); err != nil {
		t.Fatalf("add collider: %v", err)
	}
	return e
}

func hitEntity(h *Hit) ecs.Entity {
	if h == nil {
		return ecs.NoEntity
	}
	return h.Entity
}

func TestCastRectPicksNearAndFar(t *testing.T) {
	cases := []struct {
		name      string
		boxes     []mgl64.Vec3
		mask      component.PhysicsLayer
		backwards bool
		near, far int
	}{
		{
			name:  "nearest to the camera first",
			boxes: []mgl64.Vec3{{0, 0, 3}, {0.2, 0, -2}, {-0.2, 0, -6}},
			mask:  component.LayerSolid,
			near:  0, far: 1,
		},
		{
			name:  "same screen cell collapses",
			boxes: []mgl64.Vec3{{0, 0, 3}, {0, 0, -2}, {0.3, 0, -6}},
			mask:  component.LayerSolid,
			near:  0, far: 2,
		},
		{
			name:      "backwards looks toward the camera",
			boxes:     []mgl64.Vec3{{0, 0, -4}, {0.1, 0, 2}, {0.2, 0, 5}},
			mask:      component.LayerSolid,
			backwards: true,
			near:      1, far: 2,
		},
		{
			name:      "backwards with nothing in front",
			boxes:     []mgl64.Vec3{{0, 0, -4}, {0.1, 0, -1}},
			mask:      component.LayerSolid,
			backwards: true,
			near:      -1, far: -1,
		},
		{
			name:  "nothing under the rect",
			boxes: []mgl64.Vec3{{3, 0, 0}},
			mask:  component.LayerSolid,
			near:  -1, far: -1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			var boxes []ecs.Entity
			for _, o := range tc.boxes {
				boxes = append(boxes, addBox(t, w, o, unitBox, component.LayerAllSides))
			}
			want := func(i int) ecs.Entity {
				if i < 0 {
					return ecs.NoEntity
				}
				return boxes[i]
			}

			s := NewSpaceState(w, zerolog.Nop())
			res := s.CastRect(component.NewTransform(mgl64.Vec3{}, mgl64.Ident3()), unitBox, tc.mask, tc.backwards)

			if got := hitEntity(res.Near); got != want(tc.near) {
				t.Fatalf("expected near %v, got %v", want(tc.near), got)
			}
			if got := hitEntity(res.Far); got != want(tc.far) {
				t.Fatalf("expected far %v, got %v", want(tc.far), got)
			}
			first := want(tc.near)
			if tc.near < 0 {
				first = want(tc.far)
			}
			if got := hitEntity(res.First); got != first {
				t.Fatalf("expected first %v, got %v", first, got)
			}
		})
	}
}

func TestCastRectFiltersLayersAfterPicking(t *testing.T) {
	w := ecs.NewWorld()
	wall := addBox(t, w, mgl64.Vec3{0, 0, 3}, unitBox, component.LayerAllSides)
	ladder := addBox(t, w, mgl64.Vec3{0.2, 0, -2}, mgl64.Vec3{0.5, 0.5, 0.1}, component.LayerLadder)
	s := NewSpaceState(w, zerolog.Nop())
	origin := component.NewTransform(mgl64.Vec3{}, mgl64.Ident3())

	res := s.CastRect(origin, unitBox, component.LayerLadder, false)
	if res.Near != nil {
		t.Fatalf("expected the solid occluder to be cleared from near, got %v", res.Near.Entity)
	}
	if hitEntity(res.Far) != ladder || hitEntity(res.First) != ladder {
		t.Fatalf("expected ladder %v as far and first, got %v and %v", ladder, hitEntity(res.Far), hitEntity(res.First))
	}

	res = s.CastRect(origin, unitBox, component.LayerSolid, false)
	if hitEntity(res.Near) != wall || res.Far != nil {
		t.Fatalf("expected only the wall with a solid mask, got %v and %v", hitEntity(res.Near), hitEntity(res.Far))
	}
}

func TestCastPointReturnsFirstHit(t *testing.T) {
	w := ecs.NewWorld()
	front := addBox(t, w, mgl64.Vec3{0, 0, 2}, unitBox, component.LayerTopOnly)
	addBox(t, w, mgl64.Vec3{0, 0, -2}, unitBox, component.LayerAllSides)
	s := NewSpaceState(w, zerolog.Nop())

	if got := hitEntity(s.CastPoint(component.NewTransform(mgl64.Vec3{}, mgl64.Ident3()), component.LayerSolid)); got != front {
		t.Fatalf("expected %v, got %v", front, got)
	}
	if got := s.CastPoint(component.NewTransform(mgl64.Vec3{2, 0, 0}, mgl64.Ident3()), component.LayerSolid); got != nil {
		t.Fatalf("expected no hit beside the boxes, got %v", got.Entity)
	}
}

func TestBoxcastFilters(t *testing.T) {
	w := ecs.NewWorld()
	solid := addBox(t, w, mgl64.Vec3{}, unitBox, component.LayerAllSides)
	disabled := addBox(t, w, mgl64.Vec3{}, unitBox, component.LayerAllSides)
	c, _ := ecs.Get(w, disabled, component.ColliderComponent.Kind())
	c.Disabled = true
	area := addBox(t, w, mgl64.Vec3{}, unitBox, component.LayerActors)
	c, _ = ecs.Get(w, area, component.ColliderComponent.Kind())
	c.Area = true
	addBox(t, w, mgl64.Vec3{}, unitBox, component.LayerLadder)
	addBox(t, w, mgl64.Vec3{1, 0, 0}, unitBox, component.LayerAllSides)

	s := NewSpaceState(w, zerolog.Nop())
	query := component.NewTransform(mgl64.Vec3{}, mgl64.Ident3())

	cases := []struct {
		name  string
		mask  component.PhysicsLayer
		areas bool
		want  []ecs.Entity
	}{
		{"solid only", component.LayerSolid, false, []ecs.Entity{solid}},
		{"areas excluded", component.LayerSolid | component.LayerActors, false, []ecs.Entity{solid}},
		{"areas included", component.LayerSolid | component.LayerActors, true, []ecs.Entity{solid, area}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hits := s.Boxcast(query, unitBox, tc.mask, tc.areas, 0)
			if len(hits) != len(tc.want) {
				t.Fatalf("expected %d hits, got %d", len(tc.want), len(hits))
			}
			for i, h := range hits {
				if h.Entity != tc.want[i] {
					t.Fatalf("expected hit %d to be %v, got %v", i, tc.want[i], h.Entity)
				}
			}
		})
	}
}

func TestBoxcastCapsResultsAndWarnsOnce(t *testing.T) {
	w := ecs.NewWorld()
	for i := 0; i < MaxResults+88; i++ {
		addBox(t, w, mgl64.Vec3{}, unitBox, component.LayerAllSides)
	}
	var buf bytes.Buffer
	s := NewSpaceState(w, zerolog.New(&buf))
	query := component.NewTransform(mgl64.Vec3{}, mgl64.Ident3())

	for i := 0; i < 2; i++ {
		if hits := s.Boxcast(query, unitBox, component.LayerSolid, false, Margin); len(hits) != MaxResults {
			t.Fatalf("expected %d hits, got %d", MaxResults, len(hits))
		}
	}
	if n := strings.Count(buf.String(), "boxcast result cap reached"); n != 1 {
		t.Fatalf("expected one warning, got %d in %q", n, buf.String())
	}
}

func TestIntersectRectClassifiesHits(t *testing.T) {
	half := mgl64.Vec3{0.25, 0.4375, 0.25}
	falling := mgl64.Vec3{0, -5, 0}
	rising := mgl64.Vec3{0, 5, 0}

	cases := []struct {
		name     string
		box      mgl64.Vec3
		layer    component.PhysicsLayer
		velocity mgl64.Vec3
		hit      bool
		contact  bool
		offset   bool
	}{
		{"falling onto all sides", mgl64.Vec3{0, 0, 0}, component.LayerAllSides, falling, true, true, false},
		{"falling onto top only", mgl64.Vec3{0, 0, 0}, component.LayerTopOnly, falling, true, true, false},
		{"falling onto background", mgl64.Vec3{0, 0, 0}, component.LayerBackground, falling, true, false, true},
		{"rising into top only", mgl64.Vec3{0, 2, 0}, component.LayerTopOnly, rising, true, false, true},
		{"rising into all sides", mgl64.Vec3{0, 2, 0}, component.LayerAllSides, rising, true, true, false},
		{"top only already on screen", mgl64.Vec3{0, 0.5, -3}, component.LayerTopOnly, falling, false, false, false},
		{"all sides already on screen", mgl64.Vec3{0, 0.5, -3}, component.LayerAllSides, falling, true, true, false},
		{"standing still inside", mgl64.Vec3{0, 1, -3}, component.LayerAllSides, mgl64.Vec3{}, true, false, false},
		{"nothing ahead", mgl64.Vec3{5, 0, 0}, component.LayerAllSides, falling, false, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			self := addBox(t, w, mgl64.Vec3{0, 1, 0}, half, component.LayerAllSides)
			box := addBox(t, w, tc.box, unitBox, tc.layer)
			s := NewSpaceState(w, zerolog.Nop())
			s.CameraOrigin = mgl64.Vec3{0, 1, 10}

			_, info := s.IntersectRect(self, component.NewTransform(mgl64.Vec3{0, 1, 0}, mgl64.Ident3()), tc.velocity, half, component.LayerSolid, FixedDelta)

			if info.Hit() != tc.hit {
				t.Fatalf("expected hit %v, got %v", tc.hit, info.Hit())
			}
			if tc.hit && info.Collider != box {
				t.Fatalf("expected collider %v, got %v", box, info.Collider)
			}
			if info.HasContact != tc.contact || info.HasOffset != tc.offset {
				t.Fatalf("expected contact %v offset %v, got %v %v", tc.contact, tc.offset, info.HasContact, info.HasOffset)
			}
			if tc.contact {
				if info.Contact != tc.box {
					t.Fatalf("expected contact %v, got %v", tc.box, info.Contact)
				}
				if want := tc.velocity.Normalize().Mul(-1); info.Normal != want {
					t.Fatalf("expected normal %v, got %v", want, info.Normal)
				}
			}
			if tc.offset && info.Offset != (mgl64.Vec3{0, 0, 1}) {
				t.Fatalf("expected offset toward the camera, got %v", info.Offset)
			}
		})
	}
}

func TestIntersectRectHorizontalProbe(t *testing.T) {
	w := ecs.NewWorld()
	half := mgl64.Vec3{0.25, 0.4375, 0.25}
	wall := addBox(t, w, mgl64.Vec3{1, 1, -4}, unitBox, component.LayerAllSides)
	s := NewSpaceState(w, zerolog.Nop())

	horizontal, vertical := s.IntersectRect(ecs.NoEntity, component.NewTransform(mgl64.Vec3{0, 1, 0}, mgl64.Ident3()), mgl64.Vec3{20, 0, 0}, half, component.LayerSolid, FixedDelta)
	if horizontal.Collider != wall || !horizontal.HasContact {
		t.Fatalf("expected a wall contact, got %+v", horizontal)
	}
	if horizontal.Normal != (mgl64.Vec3{-1, 0, 0}) {
		t.Fatalf("expected normal facing back, got %v", horizontal.Normal)
	}
	if vertical.Hit() {
		t.Fatalf("expected no vertical hit, got %+v", vertical)
	}
}

func TestFootprintsOverlap(t *testing.T) {
	cases := []struct {
		name string
		b    mgl64.Vec3
		view mgl64.Mat3
		want bool
	}{
		{"touching", mgl64.Vec3{1, 0, 0}, mgl64.Ident3(), false},
		{"overlapping", mgl64.Vec3{0.9, 0, 0}, mgl64.Ident3(), true},
		{"depth ignored", mgl64.Vec3{0.9, 0, -50}, mgl64.Ident3(), true},
		{"touching vertically", mgl64.Vec3{0, -1, 3}, mgl64.Ident3(), false},
		{"apart in depth seen from the side", mgl64.Vec3{0, 0, 3}, component.ViewRight.Basis(), false},
		{"apart in x seen from the side", mgl64.Vec3{3, 0, 0}, component.ViewRight.Basis(), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := footprintsOverlap(mgl64.Vec3{}, unitBox, tc.b, unitBox, tc.view); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
