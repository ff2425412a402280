package system

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
)

var (
	debugSolidColor   = color.NRGBA{R: 50, G: 255, B: 50, A: 230}
	debugAreaColor    = color.NRGBA{R: 255, G: 128, B: 25, A: 230}
	debugTriggerColor = color.NRGBA{R: 80, G: 160, B: 255, A: 230}
	debugFloorColor   = color.NRGBA{R: 255, G: 50, B: 50, A: 230}
)

// DrawPhysicsDebug outlines every enabled collider as seen from the camera
// and marks the player's floor and wall contacts.
func DrawPhysicsDebug(camera *CameraController, w *ecs.World, screen *ebiten.Image) {
	if camera == nil || w == nil || screen == nil {
		return
	}
	proj := newViewProjection(camera, screen)

	ecs.ForEach2(w, component.TransformComponent.Kind(), component.ColliderComponent.Kind(), func(e ecs.Entity, t *component.Transform, c *component.Collider) {
		if c.Disabled {
			return
		}
		clr := debugSolidColor
		switch {
		case ecs.Has(w, e, component.TriggerComponent.Kind()):
			clr = debugTriggerColor
		case c.Area:
			clr = debugAreaColor
		}
		x, y, bw, bh, _ := proj.rect(t, c.Extents)
		vector.StrokeRect(screen, float32(x), float32(y), float32(bw), float32(bh), 1, clr, false)
	})

	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	body, ok := ecs.Get(w, player, component.BodyComponent.Kind())
	if !ok {
		return
	}
	for _, contact := range []component.CollisionInfo{body.Floor, body.Wall, body.Ceiling} {
		if !contact.Hit() {
			continue
		}
		t, ok := ecs.Get(w, contact.Collider, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		c, ok := ecs.Get(w, contact.Collider, component.ColliderComponent.Kind())
		if !ok {
			continue
		}
		x, y, bw, bh, _ := proj.rect(t, c.Extents)
		vector.StrokeRect(screen, float32(x), float32(y), float32(bw), float32(bh), 2, debugFloorColor, false)
	}
}

// DrawPlayerStateDebug prints the player's action and contacts in the top
// left corner.
func DrawPlayerStateDebug(player *PlayerHandle, level *Level, screen *ebiten.Image) {
	if player == nil || screen == nil {
		return
	}
	levelName := ""
	if level != nil {
		levelName = level.Name()
	}
	origin := player.Origin()
	text := fmt.Sprintf("Level: %s\nAction: %s (last %s)\nView: %s\nOrigin: %.2f %.2f %.2f\nFloor: %v  Wall: %v  Ceiling: %v\nBackground: %v\nFPS: %.1f",
		levelName,
		player.Action(), player.LastAction(),
		component.OrthogonalOf(player.Basis()),
		origin.X(), origin.Y(), origin.Z(),
		player.OnFloor(), player.OnWall(), player.OnCeiling(),
		player.InBackground(),
		ebiten.ActualFPS(),
	)
	ebitenutil.DebugPrintAt(screen, text, 10, 10)
}
