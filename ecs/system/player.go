package system

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

// PlayerHandle is the behaviors' view of the player entity. Component
// pointers are looked up on every call so the handle survives storage
// growth.
type PlayerHandle struct {
	w       *ecs.World
	entity  ecs.Entity
	actions *component.ActionTable
	anim    Animator
}

func NewPlayerHandle(w *ecs.World, entity ecs.Entity, actions *component.ActionTable, clips map[string]component.AnimationClip) *PlayerHandle {
	anim, ok := ecs.Get(w, entity, component.AnimationComponent.Kind())
	if !ok {
		anim = &component.Animation{}
		_ = ecs.Add(w, entity, component.AnimationComponent.Kind(), anim)
		anim, _ = ecs.Get(w, entity, component.AnimationComponent.Kind())
	}
	return &PlayerHandle{
		w:       w,
		entity:  entity,
		actions: actions,
		anim:    NewAnimationPlayer(anim, clips),
	}
}

func (h *PlayerHandle) Entity() ecs.Entity               { return h.entity }
func (h *PlayerHandle) World() *ecs.World                { return h.w }
func (h *PlayerHandle) Actions() *component.ActionTable { return h.actions }
func (h *PlayerHandle) Animation() Animator              { return h.anim }

func (h *PlayerHandle) State() *component.Player {
	p, ok := ecs.Get(h.w, h.entity, component.PlayerComponent.Kind())
	if !ok {
		panic("player handle: entity has no Player component")
	}
	return p
}

func (h *PlayerHandle) Transform() *component.Transform {
	t, ok := ecs.Get(h.w, h.entity, component.TransformComponent.Kind())
	if !ok {
		panic("player handle: entity has no Transform component")
	}
	return t
}

func (h *PlayerHandle) Collider() *component.Collider {
	c, ok := ecs.Get(h.w, h.entity, component.ColliderComponent.Kind())
	if !ok {
		panic("player handle: entity has no Collider component")
	}
	return c
}

func (h *PlayerHandle) Body() *component.Body {
	b, ok := ecs.Get(h.w, h.entity, component.BodyComponent.Kind())
	if !ok {
		panic("player handle: entity has no Body component")
	}
	return b
}

func (h *PlayerHandle) Input() *component.Input {
	in, ok := ecs.Get(h.w, h.entity, component.InputComponent.Kind())
	if !ok {
		return &component.Input{}
	}
	return in
}

func (h *PlayerHandle) Respawn() *component.Respawn {
	r, ok := ecs.Get(h.w, h.entity, component.RespawnComponent.Kind())
	if !ok {
		panic("player handle: entity has no Respawn component")
	}
	return r
}

// Physics returns the body view used by the physics helpers.
func (h *PlayerHandle) Physics() PhysicsBody {
	return PhysicsBody{
		Entity:    h.entity,
		Transform: h.Transform(),
		Collider:  h.Collider(),
		Body:      h.Body(),
		Sliding:   h.IsSliding(),
		Swimming:  h.IsSwimming(),
	}
}

func (h *PlayerHandle) Action() component.ActionType     { return h.State().Action }
func (h *PlayerHandle) LastAction() component.ActionType { return h.State().LastAction }

// SetAction switches the action and starts its animation. Setting the
// current action again is a no-op.
func (h *PlayerHandle) SetAction(a component.ActionType) {
	p := h.State()
	if p.Action == a {
		return
	}
	p.LastAction = p.Action
	p.Action = a
	if a == component.ActionNone {
		h.anim.Stop()
		return
	}
	h.changeAnimation(a)
}

func (h *PlayerHandle) changeAnimation(a component.ActionType) {
	name := h.actions.AnimationName(a)
	if name == "" {
		panic(fmt.Sprintf("player handle: action %s has no animation", a))
	}
	if !h.anim.HasClip(name) {
		panic(fmt.Sprintf("player handle: no animation clip %q for action %s", name, a))
	}
	if h.anim.Loops(name) {
		h.anim.Stop()
	}
	h.anim.Play(name)
	h.anim.SetSpeed(1)
	h.anim.Advance(0)
}

func (h *PlayerHandle) Origin() mgl64.Vec3 { return h.Transform().Origin }

func (h *PlayerHandle) SetOrigin(v mgl64.Vec3) { h.Transform().Origin = v }

func (h *PlayerHandle) Basis() mgl64.Mat3 { return h.Transform().Basis }

// Velocity is expressed in the player's basis.
func (h *PlayerHandle) Velocity() mgl64.Vec3 { return h.Body().Velocity }

func (h *PlayerHandle) SetVelocity(v mgl64.Vec3) { h.Body().Velocity = v }

func (h *PlayerHandle) GlobalVelocity() mgl64.Vec3 {
	return mathz.ToGlobal(h.Basis(), h.Velocity())
}

func (h *PlayerHandle) SetGlobalVelocity(v mgl64.Vec3) {
	h.SetVelocity(mathz.ToLocal(h.Basis(), v))
}

func (h *PlayerHandle) Facing() component.Direction { return h.State().Facing }

func (h *PlayerHandle) SetFacing(d component.Direction) { h.State().Facing = d }

func (h *PlayerHandle) Axes() component.Axes {
	return component.NewAxes(h.Basis(), h.Facing().Sign())
}

// Size is the collider's half extents.
func (h *PlayerHandle) Size() mgl64.Vec3 { return h.Collider().Extents }

func (h *PlayerHandle) OnFloor() bool      { return h.Body().OnFloor() }
func (h *PlayerHandle) OnWall() bool       { return h.Body().OnWall() && h.Body().SweepOnWall }
func (h *PlayerHandle) OnCeiling() bool    { return h.Body().OnCeiling() && h.Body().SweepOnCeiling }
func (h *PlayerHandle) InBackground() bool { return h.Body().InBackground }

func (h *PlayerHandle) SetInBackground(v bool) { h.Body().InBackground = v }

// Floor is the entity the player stands on, if any.
func (h *PlayerHandle) Floor() (ecs.Entity, bool) {
	f := h.Body().Floor
	return f.Collider, f.Hit()
}

// FloorLayer is the layer of the floor, or LayerNone in the air.
func (h *PlayerHandle) FloorLayer() component.PhysicsLayer {
	f, ok := h.Floor()
	if !ok {
		return component.LayerNone
	}
	return LayerOf(h.w, f)
}

func (h *PlayerHandle) IsSliding() bool {
	a := h.Action()
	return a == component.ActionSlide || a == component.ActionLand
}

func (h *PlayerHandle) IsSwimming() bool { return h.actions.IsSwimming(h.Action()) }
func (h *PlayerHandle) IsClimbing() bool { return h.actions.IsClimbing(h.Action()) }
func (h *PlayerHandle) IsOnLedge() bool  { return h.actions.IsOnLedge(h.Action()) }
func (h *PlayerHandle) Alive() bool      { return h.actions.IsAlive(h.Action()) }
func (h *PlayerHandle) Visible() bool    { return !h.State().Hidden }

func (h *PlayerHandle) SetVisible(v bool) { h.State().Hidden = !v }

// Carried returns the carried pickup, if any.
func (h *PlayerHandle) Carried() (ecs.Entity, *component.Pickup, bool) {
	e := h.State().CarriedBody
	if !e.Valid() {
		return 0, nil, false
	}
	p, ok := ecs.Get(h.w, e, component.PickupComponent.Kind())
	if !ok {
		return 0, nil, false
	}
	return e, p, true
}

// CarryingHeavy reports whether the carried pickup is heavy.
func (h *PlayerHandle) CarryingHeavy() bool {
	_, p, ok := h.Carried()
	return ok && p.IsHeavy
}

// Reset restores the state the player has after a respawn.
func (h *PlayerHandle) Reset() {
	body := h.Body()
	body.ClearContacts()
	body.InBackground = false
	p := h.State()
	if p.BaseExtents != (mgl64.Vec3{}) {
		h.Collider().Extents = p.BaseExtents
	}
	h.SetAction(component.ActionIdle)
	p.Opacity = 1
}

// LayerOf returns the collider layer of e, or LayerNone.
func LayerOf(w *ecs.World, e ecs.Entity) component.PhysicsLayer {
	c, ok := ecs.Get(w, e, component.ColliderComponent.Kind())
	if !ok {
		return component.LayerNone
	}
	return c.Layer
}

// OriginOf returns the origin of e.
func OriginOf(w *ecs.World, e ecs.Entity) (mgl64.Vec3, bool) {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return mgl64.Vec3{}, false
	}
	return t.Origin, true
}
