package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/ecs/entity"
	"github.com/milk9111/perspective/ecs/system"
	"github.com/milk9111/perspective/prefabs"
	"github.com/milk9111/perspective/save"
	"github.com/rs/zerolog"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

type GameOptions struct {
	Level    string
	Debug    bool
	SavePath string
	Slot     int
	Watch    bool
	Log      zerolog.Logger
}

type Game struct {
	frames int

	world     *ecs.World
	scheduler *ecs.Scheduler
	store     save.Store
	tuning    *component.Tuning

	ctx         *system.ActionContext
	machine     *system.ActionMachine
	state       *system.GameState
	physics     *system.PlayerPhysicsSystem
	cubes       *system.CubeAssemblySystem
	triggers    *system.TriggerSystem
	npcs        *system.NpcSystem
	persistence *system.PersistenceSystem
	render      *system.RenderSystem
	watcher     *prefabs.Watcher

	debug       bool
	log         zerolog.Logger
	unsubscribe []func()
}

func NewGame(opts GameOptions) (*Game, error) {
	log := opts.Log

	tuning, err := prefabs.LoadTuning()
	if err != nil {
		return nil, fmt.Errorf("load tuning: %w", err)
	}
	actions, err := prefabs.LoadActionTable()
	if err != nil {
		return nil, fmt.Errorf("load action table: %w", err)
	}
	clips, err := prefabs.LoadClips()
	if err != nil {
		return nil, fmt.Errorf("load animations: %w", err)
	}
	if err := prefabs.CheckAnimations(actions, clips); err != nil {
		return nil, err
	}

	var store save.Store = save.NewMemoryStore()
	if opts.SavePath != "" {
		sqlite, err := save.OpenSQLite(opts.SavePath)
		if err != nil {
			return nil, fmt.Errorf("open save %s: %w", opts.SavePath, err)
		}
		store = sqlite
	}

	g := &Game{
		world:  ecs.NewWorld(),
		store:  store,
		tuning: &tuning,
		debug:  opts.Debug,
		log:    log,
	}

	g.state = system.NewGameState(store, opts.Slot, log)
	if err := g.state.LoadGame(context.Background()); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load slot %d: %w", opts.Slot, err)
	}

	playerEntity, err := entity.NewPlayer(g.world)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	cameraEntity, err := entity.NewCamera(g.world)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if cam, ok := ecs.Get(g.world, cameraEntity, component.CameraComponent.Kind()); ok {
		cam.Target = playerEntity
	}

	level := system.NewLevel(g.world, opts.Level, g.state, g.tuning, log)
	space := system.NewSpaceState(g.world, log)
	camera := system.NewCameraController(g.world, cameraEntity, tuning.Camera)
	player := system.NewPlayerHandle(g.world, playerEntity, actions, clips)
	respawn := system.NewRespawnHelper(player, camera, level)

	g.ctx = system.NewActionContext(g.world, player, space, camera, level, respawn, g.tuning, log)
	g.ctx.Debug = opts.Debug
	g.machine = system.NewActionMachine(system.DefaultActionOrder(g.ctx)...)

	pause := &system.Pause{}
	g.physics = system.NewPlayerPhysicsSystem(g.ctx, pause)
	g.cubes = system.NewCubeAssemblySystem(level, log)
	g.triggers = system.NewTriggerSystem(g.ctx, pause)
	g.npcs = system.NewNpcSystem(g.ctx, clips, pause)
	g.persistence = system.NewPersistenceSystem(opts.Level, g.ctx)
	g.render = system.NewRenderSystem(camera, player)

	g.scheduler = ecs.NewScheduler(
		system.NewInputSystem(),
		g.persistence,
		system.NewPlayerControllerSystem(g.ctx, g.machine, pause),
		g.physics,
		system.NewPickupPhysicsSystem(space, level, g.tuning, pause),
		system.NewMoverSystem(pause),
		system.NewDoorSwingSystem(pause),
		g.triggers,
		system.NewCodeAreaSystem(g.ctx, pause),
		g.npcs,
		system.NewLiquidSystem(level),
		system.NewRespawnSystem(respawn),
		g.cubes,
		system.NewAnimationSystem(clips, pause),
		system.NewCameraSystem(camera, space, actions),
	)

	events := g.world.Events()
	g.unsubscribe = append(g.unsubscribe,
		events.Subscribe(ecs.EventEnterFirstPersonMode, func(ecs.Event) {
			ebiten.SetCursorMode(ebiten.CursorModeCaptured)
		}),
		events.Subscribe(ecs.EventExitFirstPersonMode, func(ecs.Event) {
			ebiten.SetCursorMode(ebiten.CursorModeVisible)
		}),
	)

	if opts.Watch {
		w, err := prefabs.NewWatcher(prefabs.Dir, prefabs.Dir+"/scripts")
		if err != nil {
			log.Warn().Err(err).Str("dir", prefabs.Dir).Msg("prefab watcher disabled")
		} else {
			g.watcher = w
		}
	}

	log.Info().
		Str("level", opts.Level).
		Int("slot", opts.Slot).
		Bool("debug", opts.Debug).
		Int("modules", len(g.machine.Modules())).
		Msg("game ready")
	return g, nil
}

func (g *Game) Update() error {
	g.frames++

	g.drainWatcher()
	g.scheduler.Update(g.world)
	g.state.Tick(context.Background(), system.FixedDelta)

	return nil
}

// drainWatcher applies prefab edits made on disk since the last tick.
func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.applyChange(change)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.log.Warn().Err(err).Msg("prefab watcher")
		default:
			return
		}
	}
}

func (g *Game) applyChange(change prefabs.Change) {
	switch change.Kind {
	case prefabs.ChangeScript:
		g.triggers.Invalidate(change.Name)
		g.log.Info().Str("script", change.Name).Msg("trigger script reloaded")
	case prefabs.ChangeSpec:
		if !strings.HasPrefix(change.Name, "tuning.") {
			g.log.Debug().Str("file", change.Name).Msg("prefab changed, restart to apply")
			return
		}
		tuning, err := prefabs.LoadTuning()
		if err != nil {
			g.log.Error().Err(err).Msg("tuning reload failed")
			return
		}
		*g.tuning = tuning
		g.log.Info().Msg("tuning reloaded")
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.render.Draw(g.world, screen)

	if g.debug {
		system.DrawPhysicsDebug(g.ctx.Camera, g.world, screen)
		system.DrawPlayerStateDebug(g.ctx.Player, g.ctx.Level, screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

// Close flushes the save slot and releases subscriptions and files.
func (g *Game) Close() {
	for _, fn := range g.unsubscribe {
		fn()
	}
	g.unsubscribe = nil
	g.machine.Close()
	g.physics.Close()
	g.npcs.Close()
	g.cubes.Close()
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	g.state.WriteSaveData(context.Background())
	if err := g.store.Close(); err != nil {
		g.log.Error().Err(err).Msg("close save store")
	}
}
