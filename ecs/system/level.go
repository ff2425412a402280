package system

import (
	"fmt"

	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/rs/zerolog"
)

// Level is the running level as seen by the behaviors: named nodes,
// spawn volumes, the liquid and the puzzle and level change callbacks.
type Level struct {
	w      *ecs.World
	name   string
	state  *GameState
	tuning *component.Tuning
	log    zerolog.Logger
}

func NewLevel(w *ecs.World, name string, state *GameState, tuning *component.Tuning, log zerolog.Logger) *Level {
	if state == nil {
		state = NewGameState(nil, 0, log)
	}
	if tuning == nil {
		t := component.DefaultTuning()
		tuning = &t
	}
	return &Level{w: w, name: name, state: state, tuning: tuning, log: log}
}

func (l *Level) Name() string          { return l.name }
func (l *Level) World() *ecs.World     { return l.w }
func (l *Level) GameState() *GameState { return l.state }

// Enter makes name the running level once its entities are loaded: the
// save moves to it and the nodes it has removed are dropped.
func (l *Level) Enter(name string) int {
	l.name = name
	l.ReadSaveData()
	return l.RemoveInactiveNodes()
}

// ReadSaveData makes this level the current one in the save.
func (l *Level) ReadSaveData() {
	l.state.Data().EnterLevel(l.name)
}

// FindByName returns the entity authored under name.
func (l *Level) FindByName(name string) (ecs.Entity, bool) {
	var found ecs.Entity
	ok := false
	ecs.ForEach(l.w, component.NameComponent.Kind(), func(e ecs.Entity, n *component.Name) {
		if !ok && n.Value == name {
			found, ok = e, true
		}
	})
	return found, ok
}

// NameOf returns the authored name of e, or "".
func (l *Level) NameOf(e ecs.Entity) string {
	n, ok := ecs.Get(l.w, e, component.NameComponent.Kind())
	if !ok {
		return ""
	}
	return n.Value
}

// RemoveInactiveNodes destroys the nodes the save has removed from play.
func (l *Level) RemoveInactiveNodes() int {
	var doomed []ecs.Entity
	ecs.ForEach(l.w, component.NameComponent.Kind(), func(e ecs.Entity, n *component.Name) {
		if l.state.IsNodeInactive(n.Value) {
			doomed = append(doomed, e)
		}
	})
	for _, e := range doomed {
		ecs.DestroyEntity(l.w, e)
	}
	ecs.ForEach(l.w, component.ChangeLevelComponent.Kind(), func(_ ecs.Entity, area *component.ChangeLevel) {
		for _, child := range []*ecs.Entity{&area.Door, &area.BitDoor, &area.Warp} {
			if child.Valid() && !ecs.IsAlive(l.w, *child) {
				*child = 0
			}
		}
	})
	return len(doomed)
}

// VolumeTransform returns the transform of spawn volume id.
func (l *Level) VolumeTransform(id int) (component.Transform, error) {
	var out component.Transform
	found := false
	ecs.ForEach2(l.w, component.VolumeComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, v *component.Volume, t *component.Transform) {
		if !found && v.ID == id {
			out, found = *t, true
		}
	})
	if !found {
		return out, fmt.Errorf("level %s: volume %d not found", l.name, id)
	}
	return out, nil
}

// MakeNodeInactive records e as removed from play and optionally destroys
// it. Unnamed entities are only destroyed.
func (l *Level) MakeNodeInactive(e ecs.Entity, free bool) {
	if !e.Valid() {
		return
	}
	l.state.MakeNodeInactive(l.NameOf(e))
	if free {
		ecs.DestroyEntity(l.w, e)
	}
}

// ResolvePuzzle marks area solved, counts the secret and saves.
func (l *Level) ResolvePuzzle(area ecs.Entity) {
	name := l.NameOf(area)
	l.MakeNodeInactive(area, false)
	l.ResolvePuzzleSilent()
	l.w.Events().Queue(ecs.Event{Kind: ecs.EventPuzzleResolved, Entity: area, Name: name})
	l.log.Info().Str("level", l.name).Str("area", name).Msg("puzzle resolved")
}

// ResolvePuzzleSilent counts a secret without announcing it.
func (l *Level) ResolvePuzzleSilent() {
	l.state.Data().ThisLevel().FilledConditions.Secrets++
	l.state.SaveGame()
}

// ChangeLevel asks the game to load next, entering at volume. The
// player's next action and carried pickup are handed to the new level.
func (l *Level) ChangeLevel(next string, volume int, player *PlayerHandle) {
	l.changeLevel(next, component.NextChangeInfo{Volume: volume}, player)
}

// WarpTo is ChangeLevel for warp gates: the new level starts seen from
// view.
func (l *Level) WarpTo(next string, volume int, view component.Orthogonal, player *PlayerHandle) {
	l.changeLevel(next, component.NextChangeInfo{Volume: volume, View: view}, player)
}

func (l *Level) changeLevel(next string, info component.NextChangeInfo, player *PlayerHandle) {
	if player != nil {
		info.Action = player.State().NextAction
		if _, p, ok := player.Carried(); ok {
			info.HasPickup = true
			info.PickupHeavy = p.IsHeavy
		}
	}
	if next == l.name {
		l.state.Data().View = OrthogonalOfCamera(l.w)
	}
	l.state.NextChange = &info

	e := ecs.CreateEntity(l.w)
	_ = ecs.Add(l.w, e, component.LevelChangeRequestComponent.Kind(), &component.LevelChangeRequest{
		NextLevel: next,
		Info:      info,
	})
	l.log.Info().Str("from", l.name).Str("to", next).Int("volume", info.Volume).Msg("level change requested")
}

// ProcessLandmark places the player of a freshly loaded level according to
// the hand-off of the previous one. pickup is the body recreated from the
// hand-off, or zero.
func (l *Level) ProcessLandmark(player *PlayerHandle, info component.NextChangeInfo, pickup ecs.Entity) error {
	spawn, err := l.VolumeTransform(info.Volume)
	if err != nil {
		return err
	}
	switch {
	case info.View != component.ViewNone:
		data := l.state.Data()
		data.View = info.View
		data.Floor = [3]float64{spawn.Origin.X(), spawn.Origin.Y(), spawn.Origin.Z()}
		player.Respawn().Checkpoint = 0
		player.SetOrigin(spawn.Origin.Add(player.Axes().Up.Mul(player.Size().Y() * 2)))
		player.SetAction(component.ActionIdle)
		player.SetVisible(true)
	case info.Action != component.ActionNone:
		player.SetOrigin(spawn.Origin)
		player.SetAction(info.Action)
	}
	if pickup.Valid() {
		player.State().CarriedBody = pickup
		SetPickupCollision(l.w, pickup, false)
	}
	l.state.NextChange = nil
	return nil
}

// AirPanicCap is the world height a fall in this level ends at.
func (l *Level) AirPanicCap() (float64, bool) {
	v, ok := l.tuning.DiePanic.AirPanicCaps[l.name]
	return v, ok
}

// OrthogonalOfCamera returns the view of the world's camera.
func OrthogonalOfCamera(w *ecs.World) component.Orthogonal {
	e, ok := ecs.First(w, component.CameraComponent.Kind())
	if !ok {
		return component.ViewNone
	}
	c, _ := ecs.Get(w, e, component.CameraComponent.Kind())
	return c.Orthogonal
}
