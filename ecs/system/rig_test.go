package system

import (
	"testing"

	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/ecs/entity"
	"github.com/milk9111/perspective/prefabs"
	"github.com/milk9111/perspective/save"
	"github.com/rs/zerolog"
)

// rig is a world wired the way the game wires it, without input or
// rendering.
type rig struct {
	w           *ecs.World
	tuning      *component.Tuning
	state       *GameState
	ctx         *ActionContext
	machine     *ActionMachine
	persistence *PersistenceSystem
	pause       *Pause

	clips   map[string]component.AnimationClip
	physics *PlayerPhysicsSystem
	anim    *AnimationSystem
}

func newRig(t *testing.T, level string) *rig {
	t.Helper()

	tuning, err := prefabs.LoadTuning()
	if err != nil {
		t.Fatalf("load tuning: %v", err)
	}
	actions, err := prefabs.LoadActionTable()
	if err != nil {
		t.Fatalf("load actions: %v", err)
	}
	clips, err := prefabs.LoadClips()
	if err != nil {
		t.Fatalf("load clips: %v", err)
	}

	w := ecs.NewWorld()
	playerEntity, err := entity.NewPlayer(w)
	if err != nil {
		t.Fatalf("build player: %v", err)
	}
	cameraEntity, err := entity.NewCamera(w)
	if err != nil {
		t.Fatalf("build camera: %v", err)
	}
	cam, _ := ecs.Get(w, cameraEntity, component.CameraComponent.Kind())
	cam.Target = playerEntity

	log := zerolog.Nop()
	r := &rig{w: w, tuning: &tuning, pause: &Pause{}, clips: clips}
	r.state = NewGameState(save.NewMemoryStore(), 0, log)

	lvl := NewLevel(w, level, r.state, r.tuning, log)
	space := NewSpaceState(w, log)
	camera := NewCameraController(w, cameraEntity, tuning.Camera)
	player := NewPlayerHandle(w, playerEntity, actions, clips)
	respawn := NewRespawnHelper(player, camera, lvl)

	r.ctx = NewActionContext(w, player, space, camera, lvl, respawn, r.tuning, log)
	r.machine = NewActionMachine(DefaultActionOrder(r.ctx)...)
	t.Cleanup(r.machine.Close)

	r.persistence = NewPersistenceSystem(level, r.ctx)
	r.persistence.Update(w)
	w.Events().Flush()
	return r
}

func (r *rig) player() *PlayerHandle { return r.ctx.Player }

func (r *rig) level() *Level { return r.ctx.Level }

func (r *rig) request(t *testing.T, add func(e ecs.Entity) error) {
	t.Helper()
	e := ecs.CreateEntity(r.w)
	if err := add(e); err != nil {
		t.Fatalf("add request: %v", err)
	}
	r.persistence.Update(r.w)
	r.w.Events().Flush()
}

// tick runs one fixed step the way the game orders it: behaviors, player
// physics, animation, then queued events.
func (r *rig) tick() {
	if r.physics == nil {
		r.physics = NewPlayerPhysicsSystem(r.ctx, r.pause)
		r.anim = NewAnimationSystem(r.clips, r.pause)
	}
	r.machine.Update(r.player(), FixedDelta)
	r.physics.Update(r.w)
	r.anim.Update(r.w)
	r.w.Events().Flush()
}

func (r *rig) ticks(n int) {
	for i := 0; i < n; i++ {
		r.tick()
	}
}
