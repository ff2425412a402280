package system

import (
	"math"
	"slices"

	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

// GravityAction runs next to whichever module owns the action and pulls
// the player down while it is airborne. It also owns Fall and Land.
type GravityAction struct {
	ctx *ActionContext
}

func NewGravityAction(ctx *ActionContext) *GravityAction { return &GravityAction{ctx: ctx} }

func (a *GravityAction) Name() string { return "Gravity" }

func (a *GravityAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionFall, component.ActionLand}
}

// Overlay marks the module as running beside the action's owner.
func (a *GravityAction) Overlay() bool { return true }

func (a *GravityAction) IsAllowed(t component.ActionType) bool {
	return t != component.ActionNone && !a.ctx.Player.Actions().IgnoresGravity(t) &&
		a.ctx.Player.Visible() && !a.ctx.FreeMode
}

func (a *GravityAction) OnAct(delta float64) {
	p := a.ctx.Player
	state := p.State()
	tuning := a.ctx.Tuning.Gravity
	gravity := a.ctx.Move.Jump.Fall
	if state.CarriedBody.Valid() {
		gravity = a.ctx.Move.CarryJump.Fall
	}

	v := p.Velocity()
	if !p.OnFloor() && p.Action() != component.ActionHurt {
		v[0] = mathz.Lerp(v.X(), a.ctx.Input().Movement.X()*a.ctx.Tuning.Move.DefaultSpeed, tuning.AirControl*delta)
		v[1] = math.Max(gravity, v.Y()+delta*gravity)
		state.AirTime += delta
		state.CanDoubleJump = state.CanDoubleJump && state.AirTime < tuning.DoubleJumpTime
	} else {
		v[1] = Snap
		state.AirTime = 0
		state.CanDoubleJump = true
	}

	actions := p.Actions()
	if !p.OnFloor() && v.Y() <= 0 && !state.CarriedBody.Valid() &&
		!actions.PreventsFall(p.Action()) && p.Action() != component.ActionFall &&
		!actions.IsOnLedge(p.LastAction()) {
		p.SetAction(component.ActionFall)
	}

	if p.Action() == component.ActionFall && p.OnFloor() {
		p.SetAction(component.ActionLand)
		a.ctx.Anim().SetSpeed(tuning.LandAnimSpeed)
		a.ctx.Emit(ecs.EventLanded)
	}

	if p.Action() == component.ActionLand && !a.ctx.Anim().IsPlaying() {
		p.SetAction(component.ActionIdle)
	}
	p.SetVelocity(v)
}

// jumpFrom lists the actions a jump can start from besides the climbing,
// swimming, idle and looking groups.
var jumpFrom = []component.ActionType{
	component.ActionSlide, component.ActionCornerGrab, component.ActionRun,
	component.ActionWalk, component.ActionLand,
	component.ActionCarryIdle, component.ActionCarryWalk, component.ActionCarrySlide,
	component.ActionCarryHeavyIdle, component.ActionCarryHeavyWalk, component.ActionCarryHeavySlide,
	component.ActionGrab, component.ActionPush,
}

// JumpAction launches the player and cuts the rise short when the button
// is released early.
type JumpAction struct {
	ctx *ActionContext
}

func NewJumpAction(ctx *ActionContext) *JumpAction { return &JumpAction{ctx: ctx} }

func (a *JumpAction) Name() string { return "Jump" }

var jumpActions = []component.ActionType{
	component.ActionJump, component.ActionCarryJump, component.ActionCarryHeavyJump,
}

func (a *JumpAction) Claims() []component.ActionType { return jumpActions }

func (a *JumpAction) IsAllowed(t component.ActionType) bool {
	return slices.Contains(jumpActions, t)
}

func (a *JumpAction) canJumpFrom(current component.ActionType) bool {
	p := a.ctx.Player
	actions := p.Actions()
	switch {
	case slices.Contains(jumpFrom, current):
		return true
	case actions.IsClimbing(current), actions.IsSwimming(current), actions.IsIdle(current), actions.IsLooking(current):
		return true
	case current == component.ActionFall:
		return p.State().CanDoubleJump
	}
	return false
}

func (a *JumpAction) TransitionAttempts() {
	p := a.ctx.Player
	input := a.ctx.Input()
	current := p.Action()
	if !a.canJumpFrom(current) || !input.JustPressed(component.InputJump) {
		return
	}
	state := p.State()
	state.PushedBody = 0
	state.CanDoubleJump = false

	// Down+jump drops through a top-only floor or off a ladder instead.
	if input.AnyPressed(component.InputDown) &&
		(p.OnFloor() && p.FloorLayer().Has(component.LayerTopOnly) || p.IsClimbing()) {
		return
	}

	if current == component.ActionCornerGrab {
		dir := component.DirectionFrom(input.Movement.X())
		if dir != component.DirNone && dir != p.Facing() {
			p.SetOrigin(p.Origin().Sub(p.Axes().Facing))
			p.SetInBackground(DetermineInBackground(a.ctx.Space, p.Physics()))
		}
	}
	p.SetAction(a.ctx.Carry(component.ActionJump, component.ActionCarryJump, component.ActionCarryHeavyJump))
}

func (a *JumpAction) OnEnter() {
	p := a.ctx.Player
	state := p.State()
	tuning := a.ctx.Tuning.Jump
	v := p.Velocity()
	if state.CarriedBody.Valid() {
		a.ctx.Anim().Advance(tuning.CarryAdvance)
		v[1] = a.ctx.Move.CarryJump.Jump
	} else {
		held := p.Actions().IsClimbing(p.LastAction()) || state.HeldBody.Valid()
		if held {
			v[0] += a.ctx.Input().Movement.X() * tuning.SideFactor
		}
		factor := 1.0
		if held || p.Actions().IsSwimming(p.LastAction()) {
			factor = tuning.SwimFriction
		}
		v[1] = a.ctx.Move.Jump.Jump * factor
	}
	p.SetVelocity(v)
	a.ctx.Emit(ecs.EventJumped)
}

func (a *JumpAction) OnAct(delta float64) {
	p := a.ctx.Player
	input := a.ctx.Input()
	carrying := p.State().CarriedBody.Valid()
	v := p.Velocity()

	if p.OnFloor() {
		v[0] = a.ctx.Move.Helper(carrying).Update(delta, input.Movement.X(), v.X())
	}
	if input.JustReleased(component.InputJump) {
		termination := a.ctx.Move.Jump.Termination
		if carrying {
			termination = a.ctx.Move.CarryJump.Termination
		}
		v[1] = math.Min(termination, v.Y())
	}
	p.SetVelocity(v)

	if carrying {
		a.ctx.Anim().SetSpeed(a.ctx.Tuning.Jump.CarryAnimRate)
		if p.OnFloor() {
			p.SetAction(a.ctx.Carry(component.ActionIdle, component.ActionCarryIdle, component.ActionCarryHeavyIdle))
		}
		return
	}
	if v.Y() < 0 {
		p.SetAction(component.ActionFall)
	}
}

// BounceAction throws the player up when it touches a bounce floor.
type BounceAction struct {
	ctx *ActionContext
}

func NewBounceAction(ctx *ActionContext) *BounceAction { return &BounceAction{ctx: ctx} }

func (a *BounceAction) Name() string { return "Bounce" }

func (a *BounceAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionBounce}
}

func (a *BounceAction) IsAllowed(t component.ActionType) bool { return t == component.ActionBounce }

func (a *BounceAction) TransitionAttempts() {
	p := a.ctx.Player
	switch p.Action() {
	case component.ActionIdle, component.ActionWalk, component.ActionRun, component.ActionJump,
		component.ActionFall, component.ActionDropDown, component.ActionSlide, component.ActionLand,
		component.ActionTeeter, component.ActionIdlePlay, component.ActionIdleSleep,
		component.ActionIdleLookAround, component.ActionIdleYawn:
		if p.OnFloor() && p.FloorLayer().Has(component.LayerBounce) {
			p.SetAction(component.ActionBounce)
		}
	}
}

func (a *BounceAction) OnEnter() {
	p := a.ctx.Player
	v := p.Velocity()
	v[1] = a.ctx.Move.Jump.Jump * a.ctx.Tuning.Jump.BounceFactor
	p.SetVelocity(v)
}

func (a *BounceAction) OnAct(float64) {
	if a.ctx.Player.Velocity().Y() < 0 {
		a.ctx.Player.SetAction(component.ActionFall)
	}
}
