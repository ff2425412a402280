package system

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/ecs/entity"
	"github.com/milk9111/perspective/levels"
	"github.com/rs/zerolog"
)

type PersistenceMode int

const (
	PersistenceOnLevelChange PersistenceMode = iota
	PersistenceOnReload
)

// PersistenceSystem loads levels into the world. Entities marked
// Persistent survive the reload; everything else is rebuilt from the level
// file.
type PersistenceSystem struct {
	levelName        string
	initialLevelName string

	level   *Level
	player  *PlayerHandle
	camera  *CameraController
	respawn *RespawnHelper
	log     zerolog.Logger

	spawn     mgl64.Vec3
	spawnView component.Orthogonal

	initialized  bool
	loadSequence uint64
}

func NewPersistenceSystem(initialLevelName string, ctx *ActionContext) *PersistenceSystem {
	return &PersistenceSystem{
		levelName:        initialLevelName,
		initialLevelName: initialLevelName,
		level:            ctx.Level,
		player:           ctx.Player,
		camera:           ctx.Camera,
		respawn:          ctx.Respawn,
		log:              ctx.Log,
	}
}

// LoadSequence counts completed loads.
func (p *PersistenceSystem) LoadSequence() uint64 { return p.loadSequence }

func (p *PersistenceSystem) Update(w *ecs.World) {
	if p == nil || w == nil {
		return
	}

	if !p.initialized {
		if err := p.loadInitial(w); err != nil {
			panic("persistence system: initial load failed: " + err.Error())
		}
		p.initialized = true
		return
	}

	if _, ok := ecs.First(w, component.ResetToInitialLevelRequestComponent.Kind()); ok {
		p.levelName = p.initialLevelName
		ecs.ForEach(w, component.ResetToInitialLevelRequestComponent.Kind(), func(e ecs.Entity, _ *component.ResetToInitialLevelRequest) {
			ecs.DestroyEntity(w, e)
		})
		if err := p.reloadWorld(w, PersistenceOnReload); err != nil {
			panic("persistence system: reset-to-initial failed: " + err.Error())
		}
		p.placeAtSpawn()
		p.level.ReestablishHeight(p.player)
		return
	}

	if _, ok := ecs.First(w, component.ReloadRequestComponent.Kind()); ok {
		ecs.ForEach(w, component.ReloadRequestComponent.Kind(), func(e ecs.Entity, _ *component.ReloadRequest) {
			ecs.DestroyEntity(w, e)
		})
		if err := p.reloadWorld(w, PersistenceOnReload); err != nil {
			panic("persistence system: reload failed: " + err.Error())
		}
		p.player.Reset()
		p.respawn.LoadAtCheckpoint()
		p.level.ReestablishHeight(p.player)
		return
	}

	if req, ok := p.firstLevelChangeRequest(w); ok {
		ecs.ForEach(w, component.LevelChangeRequestComponent.Kind(), func(e ecs.Entity, _ *component.LevelChangeRequest) {
			ecs.DestroyEntity(w, e)
		})

		if req.NextLevel != "" {
			p.levelName = req.NextLevel
		}

		if err := p.reloadWorld(w, PersistenceOnLevelChange); err != nil {
			panic("persistence system: level change failed: " + err.Error())
		}

		if err := p.processLandmark(w, req.Info); err != nil {
			p.log.Error().Err(err).Str("level", p.levelName).Int("volume", req.Info.Volume).Msg("landmark not found, using spawn")
			p.placeAtSpawn()
		}
		p.level.ReestablishHeight(p.player)
	}
}

// loadInitial continues the saved game when the save names a level, and
// starts at the initial level otherwise.
func (p *PersistenceSystem) loadInitial(w *ecs.World) error {
	data := p.level.GameState().Data()
	checkpoint := data.Level != "" && data.Floor != [3]float64{}
	if data.Level != "" {
		p.levelName = data.Level
	}
	if err := p.reloadWorld(w, PersistenceOnReload); err != nil {
		return err
	}
	if checkpoint {
		p.respawn.LoadAtCheckpoint()
	} else {
		p.placeAtSpawn()
	}
	p.level.ReestablishHeight(p.player)
	return nil
}

func (p *PersistenceSystem) firstLevelChangeRequest(w *ecs.World) (component.LevelChangeRequest, bool) {
	ent, ok := ecs.First(w, component.LevelChangeRequestComponent.Kind())
	if !ok {
		return component.LevelChangeRequest{}, false
	}
	req, ok := ecs.Get(w, ent, component.LevelChangeRequestComponent.Kind())
	if !ok || req == nil {
		return component.LevelChangeRequest{}, false
	}
	return *req, true
}

func (p *PersistenceSystem) pruneForReload(w *ecs.World, mode PersistenceMode) {
	if w == nil {
		return
	}

	toDestroy := make([]ecs.Entity, 0)
	for _, e := range ecs.Entities(w) {
		persistent, ok := ecs.Get(w, e, component.PersistentComponent.Kind())
		if !ok || persistent == nil || !p.shouldKeep(persistent, mode) {
			toDestroy = append(toDestroy, e)
		}
	}

	for _, e := range toDestroy {
		ecs.DestroyEntity(w, e)
	}
}

func (p *PersistenceSystem) reloadWorld(w *ecs.World, mode PersistenceMode) error {
	p.pruneForReload(w, mode)
	p.forgetLevelEntities()

	lvl, err := levels.LoadLevelFromFS(p.levelName)
	if err != nil {
		return fmt.Errorf("load level %q: %w", p.levelName, err)
	}
	if err = entity.LoadLevelToWorld(w, lvl); err != nil {
		return err
	}

	removed := p.level.Enter(lvl.Name)
	p.levelName = lvl.Name
	p.spawn = lvl.Spawn.Vec3()
	p.spawnView = lvl.View

	p.loadSequence++
	w.Events().Queue(ecs.Event{Kind: ecs.EventLevelChanged, Name: lvl.Name})

	p.log.Info().
		Str("level", lvl.Name).
		Int("triles", len(lvl.Triles)).
		Int("inactive", removed).
		Uint64("sequence", p.loadSequence).
		Msg("level loaded")
	return nil
}

// forgetLevelEntities drops the player's references into the level that
// was just pruned.
func (p *PersistenceSystem) forgetLevelEntities() {
	state := p.player.State()
	state.HeldBody = 0
	state.CarriedBody = 0
	state.PushedBody = 0
	state.ChangeArea = 0
	state.CollectedTreasure = 0
	p.player.Body().ClearContacts()

	r := p.player.Respawn()
	r.LastFloor = 0
	r.LastHeldBody = 0
	r.Checkpoint = 0
}

// processLandmark places the player at the volume the previous level
// handed off, recreating the pickup it carried through.
func (p *PersistenceSystem) processLandmark(w *ecs.World, info component.NextChangeInfo) error {
	var pickup ecs.Entity
	if info.HasPickup {
		origin := p.player.Origin().Add(p.player.Axes().Up.Mul(p.player.Size().Y() * 2))
		if spawn, err := p.level.VolumeTransform(info.Volume); err == nil {
			origin = spawn.Origin.Add(p.player.Axes().Up.Mul(p.player.Size().Y() * 2))
		}
		e, err := entity.NewPickupAt(w, origin, info.PickupHeavy)
		if err != nil {
			return err
		}
		pickup = e
	}
	if err := p.level.ProcessLandmark(p.player, info, pickup); err != nil {
		if pickup.Valid() {
			ecs.DestroyEntity(w, pickup)
		}
		return err
	}
	if p.camera != nil {
		p.camera.SetOrigin(p.player.Origin())
	}
	return nil
}

// placeAtSpawn puts the player at the level's authored spawn point, seen
// from the level's view.
func (p *PersistenceSystem) placeAtSpawn() {
	p.player.Reset()
	p.player.SetOrigin(p.spawn)
	p.player.SetFacing(component.DirRight)
	p.player.SetVelocity(mgl64.Vec3{})
	if p.camera != nil {
		p.camera.ChangeRotation(p.spawnView, 0)
		p.camera.SetOffset(mgl64.Vec3{})
		p.camera.SetOrigin(p.spawn)
	}
}

func (p *PersistenceSystem) shouldKeep(persistent *component.Persistent, mode PersistenceMode) bool {
	if persistent == nil {
		return false
	}
	if mode == PersistenceOnReload {
		return persistent.KeepOnReload
	}
	return persistent.KeepOnLevelChange
}
