package entity

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/prefabs"
)

type buildContext struct {
	PrefabPath string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"player_tag": addPlayerTag,
	"camera_tag": addCameraTag,
	"persistent": addPersistent,
	"player":     addPlayer,
	"transform":  addTransform,
	"collider":   addCollider,
	"body":       addBody,
	"input":      addInput,
	"animation":  addAnimation,
	"respawn":    addRespawn,
	"camera":     addCamera,
}

var componentBuildOrder = []string{
	"player_tag",
	"camera_tag",
	"persistent",
	"player",
	"transform",
	"collider",
	"body",
	"input",
	"animation",
	"respawn",
	"camera",
}

// BuildEntity creates an entity from a prefab file. Components are added in
// componentBuildOrder; any others follow in name order.
func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	names := make([]string, 0, len(remaining))
	for _, name := range componentBuildOrder {
		if _, ok := remaining[name]; ok {
			names = append(names, name)
		}
	}
	var rest []string
	for name := range remaining {
		if _, known := componentRegistry[name]; !known {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	names = append(names, rest...)

	for _, name := range names {
		builder, ok := componentRegistry[name]
		if !ok {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: no builder for component %q", prefabPath, name)
		}
		if err := builder(w, e, remaining[name], ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
	}

	return e, nil
}

// SetEntityOrigin moves e, adding an identity transform if it has none.
func SetEntityOrigin(w *ecs.World, e ecs.Entity, origin mgl64.Vec3) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{Basis: mgl64.Ident3()}
	}
	t.Origin = origin
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func addPlayerTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
}

func addCameraTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.CameraTagComponent.Kind(), &component.CameraTag{})
}

func addPersistent(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.PersistentComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode persistent spec: %w", err)
	}
	return ecs.Add(w, e, component.PersistentComponent.Kind(), &component.Persistent{
		ID:                spec.ID,
		KeepOnLevelChange: spec.KeepOnLevelChange,
		KeepOnReload:      spec.KeepOnReload,
	})
}

func addPlayer(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.PlayerComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode player spec: %w", err)
	}
	action := spec.Action
	if action == component.ActionNone {
		action = component.ActionIdle
	}
	blink := spec.BlinkSpeed
	if blink == 0 {
		blink = 1
	}
	return ecs.Add(w, e, component.PlayerComponent.Kind(), &component.Player{
		Action:     action,
		LastAction: action,
		Facing:     component.DirRight,
		BlinkSpeed: blink,
		Opacity:    1,
	})
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TransformComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	t := component.NewTransform(mgl64.Vec3(spec.Origin), mgl64.Ident3())
	return ecs.Add(w, e, component.TransformComponent.Kind(), &t)
}

func addCollider(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.ColliderComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode collider spec: %w", err)
	}
	extents := mgl64.Vec3(spec.Extents)
	if extents == (mgl64.Vec3{}) {
		return fmt.Errorf("collider extents must be set")
	}
	return ecs.Add(w, e, component.ColliderComponent.Kind(), &component.Collider{
		Extents: extents,
		Layer:   spec.Layer,
		Area:    spec.Area,
	})
}

func addBody(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.BodyComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode body spec: %w", err)
	}
	mask := spec.Mask
	if mask == component.LayerNone {
		mask = component.LayerSolid
	}
	return ecs.Add(w, e, component.BodyComponent.Kind(), &component.Body{Mask: mask})
}

func addInput(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{})
}

func addAnimation(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.AnimationComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode animation spec: %w", err)
	}
	speed := spec.Speed
	if speed == 0 {
		speed = 1
	}
	return ecs.Add(w, e, component.AnimationComponent.Kind(), &component.Animation{
		Current: spec.Current,
		Speed:   speed,
	})
}

func addRespawn(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.RespawnComponent.Kind(), &component.Respawn{})
}

func addCamera(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.CameraComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode camera spec: %w", err)
	}
	view := spec.View
	if view == component.ViewNone {
		view = component.ViewFront
	}
	return ecs.Add(w, e, component.CameraComponent.Kind(), &component.Camera{
		Orthogonal: view,
		CanFollow:  true,
		CanRotate:  true,
		Size:       spec.Size,
	})
}
