package entity

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/levels"
	"github.com/milk9111/perspective/mathz"
)

// LoadLevelToWorld creates the entities of lvl: trile colliders, areas,
// pickups, collectables, spawn volumes, triggers, movers, npcs, code areas
// and the liquid.
func LoadLevelToWorld(world *ecs.World, lvl *levels.Level) error {
	if world == nil || lvl == nil {
		return fmt.Errorf("load level: world and level are required")
	}

	for i, trile := range lvl.Triles {
		if err := addTriles(world, trile); err != nil {
			return fmt.Errorf("load level %s: trile %d: %w", lvl.Name, i, err)
		}
	}
	for i, area := range lvl.Areas {
		if _, err := NewArea(world, area); err != nil {
			return fmt.Errorf("load level %s: area %d: %w", lvl.Name, i, err)
		}
	}
	for i, p := range lvl.Pickups {
		e, err := NewPickupAt(world, p.At.Vec3(), p.Heavy)
		if err != nil {
			return fmt.Errorf("load level %s: pickup %d: %w", lvl.Name, i, err)
		}
		if err := addName(world, e, p.Name); err != nil {
			return err
		}
	}
	for i, c := range lvl.Collectables {
		if _, err := NewCollectable(world, c); err != nil {
			return fmt.Errorf("load level %s: collectable %d: %w", lvl.Name, i, err)
		}
	}
	for _, v := range lvl.Volumes {
		e := ecs.CreateEntity(world)
		t := component.NewTransform(v.At.Vec3(), mgl64.Ident3())
		if err := ecs.Add(world, e, component.TransformComponent.Kind(), &t); err != nil {
			return err
		}
		if err := ecs.Add(world, e, component.VolumeComponent.Kind(), &component.Volume{ID: v.ID}); err != nil {
			return err
		}
	}
	for i, trig := range lvl.Triggers {
		if err := addTrigger(world, trig); err != nil {
			return fmt.Errorf("load level %s: trigger %d: %w", lvl.Name, i, err)
		}
	}
	for i, m := range lvl.Movers {
		if err := addMover(world, m); err != nil {
			return fmt.Errorf("load level %s: mover %d: %w", lvl.Name, i, err)
		}
	}
	for i, n := range lvl.Npcs {
		if _, err := NewNpc(world, n); err != nil {
			return fmt.Errorf("load level %s: npc %d: %w", lvl.Name, i, err)
		}
	}
	for i, c := range lvl.CodeAreas {
		if _, err := NewCodeArea(world, c); err != nil {
			return fmt.Errorf("load level %s: code area %d: %w", lvl.Name, i, err)
		}
	}
	if lvl.Liquid != nil {
		e := ecs.CreateEntity(world)
		if err := ecs.Add(world, e, component.LiquidComponent.Kind(), &component.Liquid{
			Type:           lvl.Liquid.Type,
			Height:         lvl.Liquid.Height,
			OriginalHeight: lvl.Liquid.Height,
		}); err != nil {
			return err
		}
	}

	return nil
}

// addTriles stamps a trile entry, once per repeat cell. A named entry that
// repeats becomes one collider spanning the run, since a name identifies a
// single node.
func addTriles(w *ecs.World, trile levels.Trile) error {
	repeat := trile.Repeat
	for i := range repeat {
		if repeat[i] <= 0 {
			repeat[i] = 1
		}
	}
	if trile.Name != "" && repeat[0]*repeat[1]*repeat[2] > 1 {
		return addTrileRun(w, trile, repeat)
	}
	extents := levels.HalfExtents(trile.Extents)
	for x := 0; x < repeat[0]; x++ {
		for y := 0; y < repeat[1]; y++ {
			for z := 0; z < repeat[2]; z++ {
				origin := trile.At.Vec3().Add(mgl64.Vec3{float64(x), float64(y), float64(z)})
				if _, err := newTrile(w, origin, extents, trile); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// addTrileRun merges a named repeated trile into one collider spanning the
// whole run. The run is laid out in world space and its extents are taken
// back into the trile's frame.
func addTrileRun(w *ecs.World, trile levels.Trile, repeat [3]int) error {
	unit := levels.HalfExtents(trile.Extents)
	span := mgl64.Vec3{float64(repeat[0] - 1), float64(repeat[1] - 1), float64(repeat[2] - 1)}
	origin := trile.At.Vec3().Add(span.Mul(0.5))
	extents := unit.Add(mathz.Abs(mathz.ToLocal(trile.Matrix(), span)).Mul(0.5))
	e, err := newTrile(w, origin, extents, trile)
	if err != nil {
		return err
	}
	return addName(w, e, trile.Name)
}

func newTrile(w *ecs.World, origin, extents mgl64.Vec3, trile levels.Trile) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	t := component.NewTransform(origin, trile.Matrix())
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &t); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.ColliderComponent.Kind(), &component.Collider{
		Extents:  extents,
		Layer:    trile.Layer,
		Hidden:   trile.Hidden,
		Disabled: trile.Hidden,
	}); err != nil {
		return 0, err
	}
	if trile.Checkpoint {
		if err := ecs.Add(w, e, component.CheckpointComponent.Kind(), &component.Checkpoint{}); err != nil {
			return 0, err
		}
	}
	if repeat := trile.Repeat; trile.Name != "" && repeat[0] <= 1 && repeat[1] <= 1 && repeat[2] <= 1 {
		if err := addName(w, e, trile.Name); err != nil {
			return 0, err
		}
	}
	return e, nil
}

// NewArea creates an area entity. Level change areas get door or warp gate
// child entities when the area asks for them.
func NewArea(w *ecs.World, area levels.Area) (ecs.Entity, error) {
	layer := component.LayerActors
	if area.Kind != levels.AreaChangeLevel {
		layer = component.LayerDeadly
	}
	e, err := newAreaEntity(w, area.At.Vec3(), levels.HalfExtents(area.Extents), area.Matrix(), layer)
	if err != nil {
		return 0, err
	}
	if err := addName(w, e, area.Name); err != nil {
		return 0, err
	}

	switch area.Kind {
	case levels.AreaBlackHole:
		return e, ecs.Add(w, e, component.BlackHoleComponent.Kind(), &component.BlackHole{})
	case levels.AreaHazard:
		return e, nil
	}

	change := &component.ChangeLevel{
		NextLevel:     area.Next,
		Volume:        area.Volume,
		DoSpin:        area.Spin,
		KeyRequired:   area.KeyRequired,
		ViewAfterWarp: area.ViewAfterWarp,
	}
	if area.Door || area.KeyRequired {
		door, err := newAreaChild(w, area, "door")
		if err != nil {
			return 0, err
		}
		if err := ecs.Add(w, door, component.DoorComponent.Kind(), &component.Door{ClosedBasis: area.Matrix()}); err != nil {
			return 0, err
		}
		change.Door = door
	}
	if area.BitDoor {
		bit, err := newAreaChild(w, area, "bit_door")
		if err != nil {
			return 0, err
		}
		change.BitDoor = bit
	}
	if area.Warp {
		gate, err := newAreaChild(w, area, "gate")
		if err != nil {
			return 0, err
		}
		if err := ecs.Add(w, gate, component.WarpComponent.Kind(), &component.Warp{}); err != nil {
			return 0, err
		}
		change.Warp = gate
	}
	return e, ecs.Add(w, e, component.ChangeLevelComponent.Kind(), change)
}

func newAreaEntity(w *ecs.World, origin, extents mgl64.Vec3, basis mgl64.Mat3, layer component.PhysicsLayer) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	t := component.NewTransform(origin, basis)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &t); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.ColliderComponent.Kind(), &component.Collider{
		Extents: extents,
		Layer:   layer,
		Area:    true,
	}); err != nil {
		return 0, err
	}
	return e, nil
}

// newAreaChild creates the visible part of a level change area, named
// after the area so the save can remove it on its own.
func newAreaChild(w *ecs.World, area levels.Area, suffix string) (ecs.Entity, error) {
	e, err := newAreaEntity(w, area.At.Vec3(), levels.HalfExtents(area.Extents), area.Matrix(), component.LayerNone)
	if err != nil {
		return 0, err
	}
	if area.Name != "" {
		if err := addName(w, e, area.Name+"_"+suffix); err != nil {
			return 0, err
		}
	}
	return e, nil
}

// NewPickupAt creates a body the player can carry, resting at origin.
func NewPickupAt(w *ecs.World, origin mgl64.Vec3, heavy bool) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	t := component.NewTransform(origin, mgl64.Ident3())
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &t); err != nil {
		return 0, err
	}
	layer := component.LayerAllSides | component.LayerActors
	if err := ecs.Add(w, e, component.ColliderComponent.Kind(), &component.Collider{
		Extents: levels.HalfExtents(nil),
		Layer:   layer,
	}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.BodyComponent.Kind(), &component.Body{Mask: component.LayerSolid}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.PickupComponent.Kind(), &component.Pickup{
		IsHeavy:         heavy,
		EnableCollision: true,
		Layer:           layer,
		InitialOrigin:   origin,
		InitialBasis:    t.Basis,
	}); err != nil {
		return 0, err
	}
	return e, nil
}

// NewCollectable creates a collectable area. Hidden collectables stay out
// of play until a script enables them.
func NewCollectable(w *ecs.World, c levels.Collectable) (ecs.Entity, error) {
	kind, ok := component.ParseCollectableKind(c.Kind)
	if !ok {
		return 0, fmt.Errorf("unknown collectable kind %q", c.Kind)
	}
	item := component.CollectableNone
	if c.Item != "" {
		if item, ok = component.ParseCollectableKind(c.Item); !ok {
			return 0, fmt.Errorf("unknown collectable item %q", c.Item)
		}
	}
	e, err := newAreaEntity(w, c.At.Vec3(), levels.HalfExtents(nil), mgl64.Ident3(), component.LayerActors)
	if err != nil {
		return 0, err
	}
	if c.Hidden {
		col, _ := ecs.Get(w, e, component.ColliderComponent.Kind())
		col.Hidden = true
		col.Disabled = true
	}
	if err := ecs.Add(w, e, component.CollectableComponent.Kind(), &component.Collectable{
		Kind:        kind,
		Item:        item,
		Monitorable: !c.Hidden,
	}); err != nil {
		return 0, err
	}
	return e, addName(w, e, c.Name)
}

func addTrigger(w *ecs.World, trig levels.Trigger) error {
	mask := trig.Mask
	if mask == component.LayerNone {
		mask = component.LayerPlayer
	}
	e, err := newAreaEntity(w, trig.At.Vec3(), levels.HalfExtents(trig.Extents), mgl64.Ident3(), component.LayerNone)
	if err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.TriggerComponent.Kind(), &component.Trigger{
		Script: trig.Script,
		Mask:   mask,
		Once:   trig.Once,
		Inside: map[ecs.Entity]bool{},
	}); err != nil {
		return err
	}
	return addName(w, e, trig.Name)
}

// addMover attaches a mover to the named entity it targets.
func addMover(w *ecs.World, m levels.Mover) error {
	var target ecs.Entity
	ecs.ForEach(w, component.NameComponent.Kind(), func(e ecs.Entity, n *component.Name) {
		if !target.Valid() && n.Value == m.Target {
			target = e
		}
	})
	if !target.Valid() {
		return fmt.Errorf("mover target %q not found", m.Target)
	}
	t, ok := ecs.Get(w, target, component.TransformComponent.Kind())
	if !ok {
		return fmt.Errorf("mover target %q has no transform", m.Target)
	}
	return ecs.Add(w, target, component.MoverComponent.Kind(), &component.Mover{
		From:     t.Origin,
		To:       m.To.Vec3(),
		Duration: m.Duration,
		Active:   m.Start,
		PingPong: m.PingPong,
	})
}

func addName(w *ecs.World, e ecs.Entity, name string) error {
	if name == "" {
		return nil
	}
	return ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: name})
}
