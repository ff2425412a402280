package system

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/rs/zerolog"
)

// ActionModule is one behavior of the player. The machine runs its hooks
// while IsAllowed holds for the current action. Hooks are optional and
// discovered by interface assertion.
type ActionModule interface {
	Name() string
	IsAllowed(a component.ActionType) bool
}

type actionTransitioner interface{ TransitionAttempts() }

type actionEnterer interface{ OnEnter() }

type actionActor interface{ OnAct(delta float64) }

type actionEnder interface{ OnEnd() }

// ActionClaimer lists the actions a module owns. Every action except None
// has exactly one owner.
type ActionClaimer interface {
	Claims() []component.ActionType
}

// WalkToPlan is the destination handed to the WalkTo module by the
// behavior that needs the player lined up first.
type WalkToPlan struct {
	NextOrigin func() mgl64.Vec3
	NextAction component.ActionType
}

// Start stores the plan and switches the player to WalkTo.
func (p *WalkToPlan) Start(player *PlayerHandle, next component.ActionType, origin func() mgl64.Vec3) {
	p.NextOrigin = origin
	p.NextAction = next
	player.SetAction(component.ActionWalkTo)
}

// Movement holds the walk helpers and jump ballistics shared by the
// ground behaviors.
type Movement struct {
	Default *MoveHelper
	Carry   *MoveHelper

	Jump      JumpInfo
	CarryJump JumpInfo
}

func NewMovement(t *component.Tuning) *Movement {
	m := t.Move
	return &Movement{
		Default:   NewMoveHelper(m.DefaultSpeed*m.WalkFactor, m.DefaultSpeed*m.RunFactor, m.Acceleration, m.RunInputThreshold),
		Carry:     NewMoveHelper(0, 0, math.MaxFloat64, m.RunInputThreshold),
		Jump:      NewJumpInfo(t.Jump.MinHeight, t.Jump.MaxHeight, t.Jump.Time),
		CarryJump: NewJumpInfo(t.Jump.MinHeight/2, t.Jump.MaxHeight/2, t.Jump.Time),
	}
}

// Reset forgets the run timers of both helpers.
func (m *Movement) Reset() {
	m.Default.Reset()
	m.Carry.Reset()
}

// Helper returns the carry helper while a body is carried.
func (m *Movement) Helper(carrying bool) *MoveHelper {
	if carrying {
		return m.Carry
	}
	return m.Default
}

// ActionContext is what every action module is built from.
type ActionContext struct {
	World   *ecs.World
	Player  *PlayerHandle
	Space   *SpaceState
	Camera  *CameraController
	Level   *Level
	Respawn *RespawnHelper
	Tuning  *component.Tuning
	Log     zerolog.Logger

	WalkTo *WalkToPlan
	Move   *Movement

	// FreeMode lets the debug fly module take over. Debug allows toggling
	// it from input.
	FreeMode bool
	Debug    bool

	Rand *rand.Rand
}

func NewActionContext(w *ecs.World, player *PlayerHandle, space *SpaceState, camera *CameraController, level *Level, respawn *RespawnHelper, tuning *component.Tuning, log zerolog.Logger) *ActionContext {
	return &ActionContext{
		World:   w,
		Player:  player,
		Space:   space,
		Camera:  camera,
		Level:   level,
		Respawn: respawn,
		Tuning:  tuning,
		Log:     log,
		WalkTo:  &WalkToPlan{},
		Move:    NewMovement(tuning),
		Rand:    rand.New(rand.NewPCG(1, 2)),
	}
}

func (c *ActionContext) Input() *component.Input { return c.Player.Input() }

func (c *ActionContext) Anim() Animator { return c.Player.Animation() }

// Emit publishes a player event synchronously.
func (c *ActionContext) Emit(kind ecs.EventKind) {
	c.World.Events().Emit(ecs.Event{Kind: kind, Entity: c.Player.Entity()})
}

// Carry picks the carry variant of an action for the carried body, or
// plain when nothing is carried.
func (c *ActionContext) Carry(plain, light, heavy component.ActionType) component.ActionType {
	_, p, ok := c.Player.Carried()
	switch {
	case !ok:
		return plain
	case p.IsHeavy:
		return heavy
	default:
		return light
	}
}

// DropCarried lets go of the carried body where it is.
func (c *ActionContext) DropCarried() {
	state := c.Player.State()
	if state.CarriedBody.Valid() {
		SetPickupCollision(c.World, state.CarriedBody, true)
	}
	state.CarriedBody = 0
}

type actionSlot struct {
	module    ActionModule
	wasActive bool
	enabled   bool
}

// ActionMachine drives the action modules in priority order once per
// tick: transitions first, then enter, act or end depending on whether
// the module owns the current action.
type ActionMachine struct {
	slots []actionSlot
	index map[string]int
}

func NewActionMachine(modules ...ActionModule) *ActionMachine {
	m := &ActionMachine{index: make(map[string]int, len(modules))}
	for _, mod := range modules {
		if _, dup := m.index[mod.Name()]; dup {
			panic(fmt.Sprintf("action machine: duplicate module %q", mod.Name()))
		}
		m.index[mod.Name()] = len(m.slots)
		m.slots = append(m.slots, actionSlot{module: mod, enabled: true})
	}
	return m
}

// Order returns the module names in priority order.
func (m *ActionMachine) Order() []string {
	out := make([]string, len(m.slots))
	for i, s := range m.slots {
		out[i] = s.module.Name()
	}
	return out
}

// Modules returns the modules in priority order.
func (m *ActionMachine) Modules() []ActionModule {
	out := make([]ActionModule, len(m.slots))
	for i, s := range m.slots {
		out[i] = s.module
	}
	return out
}

// Module looks a module up by name.
func (m *ActionMachine) Module(name string) (ActionModule, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return m.slots[i].module, true
}

// SetEnabled turns a module on or off. A disabled module is skipped
// entirely and ends nothing.
func (m *ActionMachine) SetEnabled(name string, enabled bool) bool {
	i, ok := m.index[name]
	if !ok {
		return false
	}
	m.slots[i].enabled = enabled
	return true
}

// Update runs one tick for the player.
func (m *ActionMachine) Update(player *PlayerHandle, delta float64) {
	for i := range m.slots {
		s := &m.slots[i]
		if !s.enabled {
			continue
		}
		if t, ok := s.module.(actionTransitioner); ok {
			t.TransitionAttempts()
		}
		active := s.module.IsAllowed(player.Action())
		switch {
		case active && !s.wasActive:
			if e, ok := s.module.(actionEnterer); ok {
				e.OnEnter()
			}
		case active:
			if a, ok := s.module.(actionActor); ok {
				a.OnAct(delta)
			}
		case s.wasActive:
			if e, ok := s.module.(actionEnder); ok {
				e.OnEnd()
			}
		}
		s.wasActive = active
	}
}

// Close releases the event subscriptions modules hold.
func (m *ActionMachine) Close() {
	for _, s := range m.slots {
		if c, ok := s.module.(interface{ Close() }); ok {
			c.Close()
		}
	}
}

// DefaultActionOrder builds every player behavior in priority order.
func DefaultActionOrder(ctx *ActionContext) []ActionModule {
	return []ActionModule{
		NewFreeModeAction(ctx),
		NewGravityAction(ctx),
		NewHurtAction(ctx),
		NewDiePanicAction(ctx),
		NewCrushAction(ctx),
		NewSuckedInAction(ctx),
		NewSinkAction(ctx),
		NewSwimAction(ctx),
		NewEnterDoorAction(ctx),
		NewExitDoorAction(ctx),
		NewOpenDoorAction(ctx),
		NewWarpAction(ctx),
		NewFindTreasureAction(ctx),
		NewOpenTreasureAction(ctx),
		NewReadListenAction(ctx),
		NewFirstPersonAction(ctx),
		NewLookAction(ctx),
		NewLedgeGrabAction(ctx),
		NewLedgeShimmyAction(ctx),
		NewLedgeTransitionsAction(ctx),
		NewLedgePullUpAction(ctx),
		NewLedgeDropAction(ctx),
		NewLedgeLowerToAction(ctx),
		NewClimbAction(ctx),
		NewClimbTransitionAction(ctx),
		NewClimbOverAction(ctx),
		NewTrileLiftAction(ctx),
		NewTrileThrowAction(ctx),
		NewTrileDropAction(ctx),
		NewTrileGrabPushAction(ctx),
		NewWalkToAction(ctx),
		NewJumpAction(ctx),
		NewBounceAction(ctx),
		NewTeeterAction(ctx),
		NewSlideAction(ctx),
		NewWalkRunAction(ctx),
		NewIdleAction(ctx),
		NewScriptedAction(ctx),
	}
}

// PlayerControllerSystem runs the action machine for the player every
// tick the game is not paused.
type PlayerControllerSystem struct {
	player  *PlayerHandle
	machine *ActionMachine
	pause   *Pause
}

func NewPlayerControllerSystem(ctx *ActionContext, machine *ActionMachine, pause *Pause) *PlayerControllerSystem {
	return &PlayerControllerSystem{player: ctx.Player, machine: machine, pause: pause}
}

func (p *PlayerControllerSystem) Update(w *ecs.World) {
	if w == nil || p.pause.Active() || !ecs.IsAlive(w, p.player.Entity()) {
		return
	}
	p.machine.Update(p.player, FixedDelta)
}
