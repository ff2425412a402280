package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

// carryScale widens the player while it holds a body over its head.
var carryScale = mgl64.Vec3{1.5, 1, 1.5}

// PlayerPhysicsSystem moves the player once per tick: it places the
// carried body, records the respawn pose, picks up areas, probes the
// surroundings, corrects depth and finally sweeps the body.
type PlayerPhysicsSystem struct {
	player  *PlayerHandle
	space   *SpaceState
	respawn *RespawnHelper
	level   *Level
	camera  *CameraController
	pause   *Pause
	tuning  *component.Tuning

	unsubscribe []func()
}

func NewPlayerPhysicsSystem(ctx *ActionContext, pause *Pause) *PlayerPhysicsSystem {
	s := &PlayerPhysicsSystem{
		player:  ctx.Player,
		space:   ctx.Space,
		respawn: ctx.Respawn,
		level:   ctx.Level,
		camera:  ctx.Camera,
		pause:   pause,
		tuning:  ctx.Tuning,
	}
	events := ctx.Player.World().Events()
	s.unsubscribe = append(s.unsubscribe,
		events.Subscribe(ecs.EventRotating, s.onRotating),
		events.Subscribe(ecs.EventRotated, s.onRotated),
	)
	return s
}

// Close drops the camera subscriptions.
func (s *PlayerPhysicsSystem) Close() {
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.unsubscribe = nil
}

// onRotating freezes the game and turns the player with the camera.
func (s *PlayerPhysicsSystem) onRotating(ecs.Event) {
	s.pause.Set(true)
	if s.camera != nil {
		s.player.Transform().Basis = s.camera.Basis()
	}
}

func (s *PlayerPhysicsSystem) onRotated(ecs.Event) {
	s.pause.Set(false)
	if s.camera != nil {
		s.player.Transform().Basis = s.camera.Orthogonal().Basis()
	}
}

func (s *PlayerPhysicsSystem) Update(w *ecs.World) {
	if w == nil || s.pause.Active() || !ecs.IsAlive(w, s.player.Entity()) {
		return
	}
	p := s.player
	state := p.State()
	body := p.Body()
	actions := p.Actions()

	scale := mathz.One
	if _, pickup, ok := p.Carried(); ok && !pickup.EnableCollision {
		scale = carryScale
	}
	if carried, pickup, ok := p.Carried(); ok && !pickup.EnableCollision && !isThrowing(p.Action()) {
		offset := mgl64.Vec3{0, s.tuning.Trile.CarryHeight, 0}
		offset[0] *= p.Facing().Sign()
		if t, ok := ecs.Get(w, carried, component.TransformComponent.Kind()); ok {
			t.Origin = p.Origin().Add(mathz.ToGlobal(p.Basis(), offset))
			t.Basis = p.Basis()
		}
	}
	if state.BaseExtents == (mgl64.Vec3{}) {
		state.BaseExtents = p.Collider().Extents
	}
	p.Collider().Extents = mathz.Scale(state.BaseExtents, scale)

	if body.SweepOnFloor {
		state.IgnoreDiePanic = false
	}
	s.respawn.SetUsed(false)
	s.respawn.Record(s.onNewCheckpoint())

	if p.Action() != component.ActionOpenTreasure {
		s.checkForAreas()
	}

	if actions.AllowsDirectionChange(p.Action()) {
		if x := p.Input().Movement.X(); !mathz.IsZeroApprox(x) {
			p.SetFacing(component.DirectionFrom(x))
		}
	}

	phys := p.Physics()
	floorDistance, hasFloor := TestAndCollide(s.space, phys, p.OnFloor(), FixedDelta)

	p.SetGlobalVelocity(HugResponse(s.space, phys))
	if hasFloor && !p.IsOnLedge() && !p.IsClimbing() && !p.InBackground() {
		TryCorrectDepth(phys, floorDistance)
	}
	if hasFloor && !body.SweepOnFloor && body.Floor.Hit() {
		body.SweepOnFloor = true
		TryCorrectDepth(phys, floorDistance)
	}

	var snap mgl64.Vec3
	if body.Floor.Hit() {
		snap = p.Axes().Up.Mul(Snap)
	}
	MoveAndSlide(s.space, phys, p.GlobalVelocity(), snap, FixedDelta)

	state.Opacity = 1
	if a := p.Action(); a == component.ActionHurt || a == component.ActionSink {
		state.Opacity = mathz.Clamp01((math.Sin(state.BlinkSpeed*math.Pi*10) + 0.5 - state.BlinkSpeed*1.25) * 2)
	}
}

// onNewCheckpoint reports whether the player stands on a checkpoint floor
// it has not recorded yet.
func (s *PlayerPhysicsSystem) onNewCheckpoint() bool {
	floor, ok := s.player.Floor()
	if !ok || floor == s.player.Respawn().Checkpoint {
		return false
	}
	return ecs.Has(s.player.World(), floor, component.CheckpointComponent.Kind())
}

// checkForAreas looks for the area in front of the player: a level change
// it could enter, or a collectable to pick up.
func (s *PlayerPhysicsSystem) checkForAreas() {
	p := s.player
	w := p.World()
	state := p.State()
	hit := s.space.CastRect(*p.Transform(), p.Size(), component.LayerActors, false).First
	if hit == nil {
		state.ChangeArea = 0
		return
	}
	if ecs.Has(w, hit.Entity, component.ChangeLevelComponent.Kind()) {
		state.ChangeArea = hit.Entity
		return
	}
	c, ok := ecs.Get(w, hit.Entity, component.CollectableComponent.Kind())
	if !ok {
		state.ChangeArea = 0
		return
	}
	switch c.Kind {
	case component.CollectableSmallCube:
		CollectSmallCube(s.level, p, hit.Entity)
	case component.CollectableBigCube, component.CollectableAntiCube:
		state.CollectedTreasure = hit.Entity
		s.level.MakeNodeInactive(hit.Entity, false)
		c.Monitorable = false
		if col, ok := ecs.Get(w, hit.Entity, component.ColliderComponent.Kind()); ok {
			col.Disabled = true
		}
	}
}
