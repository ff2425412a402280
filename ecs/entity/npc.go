package entity

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/levels"
)

const defaultNpcWalkSpeed = 1.5

var npcExtents = mgl64.Vec3{0.25, 0.4375, 0.25}

// NewNpc creates a character. Its collider is an area on no layer so the
// player walks through it and casts never stop on it.
func NewNpc(w *ecs.World, n levels.Npc) (ecs.Entity, error) {
	e, err := newAreaEntity(w, n.At.Vec3(), npcExtents, mgl64.Ident3(), component.LayerNone)
	if err != nil {
		return 0, err
	}
	speed := n.Speed
	if speed == 0 {
		speed = defaultNpcWalkSpeed
	}
	if err := ecs.Add(w, e, component.NpcComponent.Kind(), &component.Npc{
		WalkSpeed:        speed,
		AvoidsPlayer:     n.AvoidsPlayer,
		RandomizeSpeech:  n.RandomizeSpeech,
		SayFirstLineOnce: n.FirstLineOnce,
		Speech:           append([]string(nil), n.Speech...),
		Path:             n.Path.Vec3(),
		Can:              n.Actions(),
	}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.AnimationComponent.Kind(), &component.Animation{Speed: 1}); err != nil {
		return 0, err
	}
	return e, addName(w, e, n.Name)
}

// NewCodeArea creates the volume a button code is entered in. The area
// entity is the node the solved puzzle marks inactive.
func NewCodeArea(w *ecs.World, c levels.CodeArea) (ecs.Entity, error) {
	e, err := newAreaEntity(w, c.At.Vec3(), levels.HalfExtents(c.Extents), mgl64.Ident3(), component.LayerNone)
	if err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.CodeAreaComponent.Kind(), &component.CodeArea{
		Pattern: c.Actions(),
	}); err != nil {
		return 0, err
	}
	return e, addName(w, e, c.Name)
}
