package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/rs/zerolog"
)

const (
	// CubesPerSet small cubes assemble into one big cube.
	CubesPerSet = 8
	// AssembleDelay is how long after the last small cube the set is
	// checked.
	AssembleDelay = 3.0
)

// CollectSmallCube counts cube as collected, removes it from the level for
// good and restarts the assembly countdown on the player.
func CollectSmallCube(level *Level, player *PlayerHandle, cube ecs.Entity) {
	w := player.World()
	data := level.GameState().Data()
	data.SmallCubes++

	assembly, ok := ecs.Get(w, player.Entity(), component.CubeAssemblyComponent.Kind())
	if !ok {
		_ = ecs.Add(w, player.Entity(), component.CubeAssemblyComponent.Kind(), &component.CubeAssembly{})
		assembly, _ = ecs.Get(w, player.Entity(), component.CubeAssemblyComponent.Kind())
	}
	assembly.Timer = AssembleDelay
	assembly.Counting = true

	w.Events().Emit(ecs.Event{Kind: ecs.EventCollectedSmallCube, Entity: cube})
	level.MakeNodeInactive(cube, true)
}

// CubeAssemblySystem checks the small cube count once the assembly
// countdown runs out. A full set turns into a big cube the player finds on
// the spot; otherwise the progress is saved.
type CubeAssemblySystem struct {
	level *Level
	log   zerolog.Logger

	unsubscribe func()
}

func NewCubeAssemblySystem(level *Level, log zerolog.Logger) *CubeAssemblySystem {
	s := &CubeAssemblySystem{level: level, log: log}
	s.unsubscribe = level.World().Events().Subscribe(ecs.EventCollectedBigCube, s.onCollectedBigCube)
	return s
}

func (s *CubeAssemblySystem) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *CubeAssemblySystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach2(w, component.CubeAssemblyComponent.Kind(), component.PlayerComponent.Kind(), func(e ecs.Entity, assembly *component.CubeAssembly, player *component.Player) {
		if !assembly.Counting {
			return
		}
		assembly.Timer -= FixedDelta
		if assembly.Timer > 0 {
			return
		}
		assembly.Counting = false

		state := s.level.GameState()
		data := state.Data()
		if data.SmallCubes < CubesPerSet {
			state.SaveGame()
			return
		}
		data.SmallCubes %= CubesPerSet

		cube := ecs.CreateEntity(w)
		origin, _ := OriginOf(w, e)
		t := component.Transform{Origin: origin, Basis: mgl64.Ident3()}
		if pt, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			t.Basis = pt.Basis
		}
		_ = ecs.Add(w, cube, component.TransformComponent.Kind(), &t)
		_ = ecs.Add(w, cube, component.CollectableComponent.Kind(), &component.Collectable{Kind: component.CollectableBigCube})
		assembly.Assembled = cube
		player.CollectedTreasure = cube
		s.log.Info().Str("level", s.level.Name()).Msg("small cubes assembled")
	})
}

// onCollectedBigCube drops the assembled cube once the player has it.
func (s *CubeAssemblySystem) onCollectedBigCube(ecs.Event) {
	w := s.level.World()
	ecs.ForEach(w, component.CubeAssemblyComponent.Kind(), func(_ ecs.Entity, assembly *component.CubeAssembly) {
		if assembly.Assembled.Valid() {
			ecs.DestroyEntity(w, assembly.Assembled)
			assembly.Assembled = 0
		}
	})
}
