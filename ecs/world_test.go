package ecs

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs/component"
)

func newBox(t *testing.T, w *World, name string, origin mgl64.Vec3, layer component.PhysicsLayer) Entity {
	t.Helper()
	e := CreateEntity(w)
	tr := component.NewTransform(origin, mgl64.Ident3())
	if err := Add(w, e, component.TransformComponent.Kind(), &tr); err != nil {
		t.Fatalf("add transform: %v", err)
	}
	if err := Add(w, e, component.ColliderComponent.Kind(), &component.Collider{
		Extents: mgl64.Vec3{0.5, 0.5, 0.5},
		Layer:   layer,
	}); err != nil {
		t.Fatalf("add collider: %v", err)
	}
	if name != "" {
		if err := Add(w, e, component.NameComponent.Kind(), &component.Name{Value: name}); err != nil {
			t.Fatalf("add name: %v", err)
		}
	}
	return e
}

func names(w *World, ents []Entity) map[string]bool {
	out := map[string]bool{}
	for _, e := range ents {
		if n, ok := Get(w, e, component.NameComponent.Kind()); ok {
			out[n.Value] = true
		}
	}
	return out
}

func TestEntityLifecycle(t *testing.T) {
	cases := []struct {
		name    string
		create  int
		destroy []int
		alive   int
	}{
		{"single", 1, nil, 1},
		{"destroy_middle", 3, []int{1}, 2},
		{"destroy_all", 2, []int{0, 1}, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for range c.create {
				ents = append(ents, CreateEntity(w))
			}
			for _, i := range c.destroy {
				if !DestroyEntity(w, ents[i]) {
					t.Fatalf("expected destroy of live entity %d to succeed", i)
				}
				if DestroyEntity(w, ents[i]) {
					t.Fatalf("expected second destroy of entity %d to fail", i)
				}
			}
			if got := len(Entities(w)); got != c.alive {
				t.Fatalf("expected %d live entities, got %d", c.alive, got)
			}
		})
	}
}

func TestComponentsFollowTheirEntity(t *testing.T) {
	w := NewWorld()
	crate := newBox(t, w, "crate", mgl64.Vec3{2, 1, 0}, component.LayerAllSides)

	tr, ok := Get(w, crate, component.TransformComponent.Kind())
	if !ok || tr.Origin != (mgl64.Vec3{2, 1, 0}) {
		t.Fatalf("expected crate transform at (2,1,0), got %v ok=%v", tr, ok)
	}

	// Get hands out the stored pointer.
	tr.Origin = mgl64.Vec3{3, 1, 0}
	again, _ := Get(w, crate, component.TransformComponent.Kind())
	if again.Origin != (mgl64.Vec3{3, 1, 0}) {
		t.Fatalf("expected edit through pointer to stick, got %v", again.Origin)
	}

	if !Remove(w, crate, component.ColliderComponent.Kind()) {
		t.Fatalf("expected collider removal to succeed")
	}
	if Has(w, crate, component.ColliderComponent.Kind()) {
		t.Fatalf("expected collider to be gone")
	}
	if Remove(w, crate, component.MoverComponent.Kind()) {
		t.Fatalf("expected removal of a never-added kind to fail")
	}

	DestroyEntity(w, crate)
	if Has(w, crate, component.TransformComponent.Kind()) {
		t.Fatalf("expected dead entity to report no components")
	}
}

func TestAddErrors(t *testing.T) {
	w := NewWorld()
	e := CreateEntity(w)

	if err := Add[component.Collider](w, e, component.ColliderComponent.Kind(), nil); err != component.ErrNilComponent {
		t.Fatalf("expected ErrNilComponent, got %v", err)
	}
	var zero component.ComponentKind[component.Collider]
	if err := Add(w, e, zero, &component.Collider{}); err != component.ErrInvalidComponentKind {
		t.Fatalf("expected ErrInvalidComponentKind, got %v", err)
	}
	DestroyEntity(w, e)
	if err := Add(w, e, component.ColliderComponent.Kind(), &component.Collider{}); err != component.ErrEntityNotAlive {
		t.Fatalf("expected ErrEntityNotAlive, got %v", err)
	}
}

func TestQueriesIntersectKinds(t *testing.T) {
	w := NewWorld()
	newBox(t, w, "ground", mgl64.Vec3{0, 0, 0}, component.LayerAllSides)
	lift := newBox(t, w, "lift", mgl64.Vec3{3, 1, 0}, component.LayerTopOnly)
	gone := newBox(t, w, "gone", mgl64.Vec3{5, 1, 0}, component.LayerTopOnly)
	for _, e := range []Entity{lift, gone} {
		if err := Add(w, e, component.MoverComponent.Kind(), &component.Mover{Duration: 1}); err != nil {
			t.Fatalf("add mover: %v", err)
		}
	}
	DestroyEntity(w, gone)

	// A mover with no collider is left out of collider queries.
	ghost := CreateEntity(w)
	if err := Add(w, ghost, component.MoverComponent.Kind(), &component.Mover{}); err != nil {
		t.Fatalf("add mover: %v", err)
	}

	tests := []struct {
		name string
		run  func() []Entity
		want []string
	}{
		{
			name: "two_kinds",
			run: func() (out []Entity) {
				ForEach2(w, component.TransformComponent.Kind(), component.ColliderComponent.Kind(), func(e Entity, _ *component.Transform, _ *component.Collider) {
					out = append(out, e)
				})
				return out
			},
			want: []string{"ground", "lift"},
		},
		{
			name: "three_kinds",
			run: func() (out []Entity) {
				ForEach3(w, component.TransformComponent.Kind(), component.ColliderComponent.Kind(), component.MoverComponent.Kind(), func(e Entity, _ *component.Transform, _ *component.Collider, _ *component.Mover) {
					out = append(out, e)
				})
				return out
			},
			want: []string{"lift"},
		},
		{
			name: "four_kinds_missing_store",
			run: func() (out []Entity) {
				ForEach4(w, component.TransformComponent.Kind(), component.ColliderComponent.Kind(), component.MoverComponent.Kind(), component.TriggerComponent.Kind(), func(e Entity, _ *component.Transform, _ *component.Collider, _ *component.Mover, _ *component.Trigger) {
					out = append(out, e)
				})
				return out
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.run()
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %d entities", tc.want, len(got))
			}
			set := names(w, got)
			for _, n := range tc.want {
				if !set[n] {
					t.Fatalf("expected %q in result, got %v", n, set)
				}
			}
		})
	}
}

func TestForEachMayDestroy(t *testing.T) {
	w := NewWorld()
	for i := range 4 {
		e := CreateEntity(w)
		if err := Add(w, e, component.ReloadRequestComponent.Kind(), &component.ReloadRequest{}); err != nil {
			t.Fatalf("add request %d: %v", i, err)
		}
	}

	visited := 0
	ForEach(w, component.ReloadRequestComponent.Kind(), func(e Entity, _ *component.ReloadRequest) {
		visited++
		DestroyEntity(w, e)
	})
	if visited != 4 {
		t.Fatalf("expected to visit 4 requests, got %d", visited)
	}
	if _, ok := First(w, component.ReloadRequestComponent.Kind()); ok {
		t.Fatalf("expected every request to be consumed")
	}
}

func TestStaleHandleAfterSlotReuse(t *testing.T) {
	w := NewWorld()

	old := newBox(t, w, "old", mgl64.Vec3{}, component.LayerAllSides)
	DestroyEntity(w, old)

	fresh := CreateEntity(w)
	if fresh.Index() != old.Index() {
		t.Fatalf("expected slot %d to be reused, got %d", old.Index(), fresh.Index())
	}
	if fresh == old {
		t.Fatalf("expected a new generation for the reused slot")
	}
	if IsAlive(w, old) {
		t.Fatalf("expected stale handle to be dead")
	}
	if Has(w, fresh, component.ColliderComponent.Kind()) {
		t.Fatalf("expected fresh entity to start without components")
	}
	if err := Add(w, old, component.NameComponent.Kind(), &component.Name{Value: "old"}); err != component.ErrEntityNotAlive {
		t.Fatalf("expected ErrEntityNotAlive, got %v", err)
	}
}

func TestNilWorldIsInert(t *testing.T) {
	if e := CreateEntity(nil); e != NoEntity {
		t.Fatalf("expected NoEntity from nil world, got %v", e)
	}
	if DestroyEntity(nil, 1) || IsAlive(nil, 1) {
		t.Fatalf("expected nil world to hold no entities")
	}
	if _, ok := First(nil, component.PlayerTagComponent.Kind()); ok {
		t.Fatalf("expected no player in nil world")
	}
	ForEach(nil, component.PlayerTagComponent.Kind(), func(Entity, *component.PlayerTag) {
		t.Fatalf("unexpected visit")
	})
}
