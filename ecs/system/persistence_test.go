package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
)

func TestPersistenceInitialLoadPlacesPlayerAtSpawn(t *testing.T) {
	r := newRig(t, "village")

	if r.level().Name() != "village" {
		t.Fatalf("expected level village, got %q", r.level().Name())
	}
	if r.persistence.LoadSequence() != 1 {
		t.Fatalf("expected one load, got %d", r.persistence.LoadSequence())
	}
	if got := r.player().Origin(); !got.ApproxEqual(mgl64.Vec3{0, 1.5, 0}) {
		t.Fatalf("expected player at spawn, got %v", got)
	}
	if r.player().Action() != component.ActionIdle {
		t.Fatalf("expected Idle, got %s", r.player().Action())
	}
	if _, ok := r.level().FindByName("arch_door"); !ok {
		t.Fatalf("expected arch_door to be loaded")
	}
	if r.state.Data().Level != "village" {
		t.Fatalf("expected save to enter village, got %q", r.state.Data().Level)
	}
}

func TestPersistenceLevelChangeKeepsPersistentEntities(t *testing.T) {
	r := newRig(t, "village")
	player := r.player().Entity()

	r.request(t, func(e ecs.Entity) error {
		return ecs.Add(r.w, e, component.LevelChangeRequestComponent.Kind(), &component.LevelChangeRequest{
			NextLevel: "arch",
			Info:      component.NextChangeInfo{Volume: 1, Action: component.ActionExitDoor},
		})
	})

	if r.level().Name() != "arch" {
		t.Fatalf("expected level arch, got %q", r.level().Name())
	}
	if !ecs.IsAlive(r.w, player) {
		t.Fatalf("expected player entity to survive the level change")
	}
	if _, ok := r.level().FindByName("arch_door"); ok {
		t.Fatalf("expected village entities to be pruned")
	}
	if _, ok := r.level().FindByName("village_door"); !ok {
		t.Fatalf("expected arch entities to be loaded")
	}
	if got := r.player().Origin(); !got.ApproxEqual(mgl64.Vec3{0, 1, -1}) {
		t.Fatalf("expected player at volume 1, got %v", got)
	}
	if r.player().Action() != component.ActionExitDoor {
		t.Fatalf("expected ExitDoor, got %s", r.player().Action())
	}
	if _, ok := ecs.First(r.w, component.LevelChangeRequestComponent.Kind()); ok {
		t.Fatalf("expected the request to be consumed")
	}
}

func TestPersistenceMissingVolumeFallsBackToSpawn(t *testing.T) {
	r := newRig(t, "village")

	r.request(t, func(e ecs.Entity) error {
		return ecs.Add(r.w, e, component.LevelChangeRequestComponent.Kind(), &component.LevelChangeRequest{
			NextLevel: "arch",
			Info:      component.NextChangeInfo{Volume: 99, Action: component.ActionExitDoor},
		})
	})

	spawn, err := r.level().VolumeTransform(99)
	if err == nil {
		t.Fatalf("expected no volume 99, got %v", spawn.Origin)
	}
	if r.player().Action() != component.ActionIdle {
		t.Fatalf("expected Idle after falling back to spawn, got %s", r.player().Action())
	}
}

func TestPersistenceResetReturnsToInitialLevel(t *testing.T) {
	r := newRig(t, "village")
	r.request(t, func(e ecs.Entity) error {
		return ecs.Add(r.w, e, component.LevelChangeRequestComponent.Kind(), &component.LevelChangeRequest{
			NextLevel: "arch",
			Info:      component.NextChangeInfo{Volume: 1, Action: component.ActionExitDoor},
		})
	})

	r.request(t, func(e ecs.Entity) error {
		return ecs.Add(r.w, e, component.ResetToInitialLevelRequestComponent.Kind(), &component.ResetToInitialLevelRequest{})
	})

	if r.level().Name() != "village" {
		t.Fatalf("expected level village, got %q", r.level().Name())
	}
	if r.persistence.LoadSequence() != 3 {
		t.Fatalf("expected three loads, got %d", r.persistence.LoadSequence())
	}
	if got := r.player().Origin(); !got.ApproxEqual(mgl64.Vec3{0, 1.5, 0}) {
		t.Fatalf("expected player at spawn, got %v", got)
	}
}

func TestPersistenceDropsInactiveNodes(t *testing.T) {
	r := newRig(t, "village")
	chest, ok := r.level().FindByName("bridge_chest")
	if !ok {
		t.Fatalf("expected bridge_chest")
	}
	r.level().MakeNodeInactive(chest, true)

	r.request(t, func(e ecs.Entity) error {
		return ecs.Add(r.w, e, component.ResetToInitialLevelRequestComponent.Kind(), &component.ResetToInitialLevelRequest{})
	})

	if _, ok := r.level().FindByName("bridge_chest"); ok {
		t.Fatalf("expected inactive node to stay removed after reload")
	}
}
