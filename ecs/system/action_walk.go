package system

import (
	"math"
	"slices"

	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

// WalkRunAction moves the player on the ground, switching between walk
// and run by how long the stick has been held.
type WalkRunAction struct {
	ctx *ActionContext
}

func NewWalkRunAction(ctx *ActionContext) *WalkRunAction { return &WalkRunAction{ctx: ctx} }

func (a *WalkRunAction) Name() string { return "WalkRun" }

var walkRunActions = []component.ActionType{
	component.ActionRun, component.ActionWalk, component.ActionRunSwitch,
	component.ActionCarryWalk, component.ActionCarryHeavyWalk,
}

func (a *WalkRunAction) Claims() []component.ActionType { return walkRunActions }

func (a *WalkRunAction) IsAllowed(t component.ActionType) bool {
	return slices.Contains(walkRunActions, t)
}

func (a *WalkRunAction) TransitionAttempts() {
	p := a.ctx.Player
	actions := p.Actions()
	switch current := p.Action(); {
	case actions.IsLooking(current), actions.IsIdle(current):
	case current == component.ActionSlide, current == component.ActionCarrySlide, current == component.ActionCarryHeavySlide:
	case current == component.ActionGrab, current == component.ActionPush, current == component.ActionTeeter:
	case current == component.ActionCarryIdle, current == component.ActionCarryHeavyIdle:
	default:
		return
	}
	if p.OnFloor() && a.ctx.Input().Movement.X() != 0 && !p.State().PushedBody.Valid() {
		p.SetAction(a.ctx.Carry(component.ActionWalk, component.ActionCarryWalk, component.ActionCarryHeavyWalk))
	}
	a.ctx.Move.Reset()
}

func (a *WalkRunAction) OnEnter() {
	a.ctx.Move.Reset()
}

func (a *WalkRunAction) OnAct(delta float64) {
	p := a.ctx.Player
	x := a.ctx.Input().Movement.X()
	v := p.Velocity()
	switch p.Action() {
	case component.ActionWalk, component.ActionRun:
		helper := a.ctx.Move.Default
		if helper.IsRunning() {
			p.SetAction(component.ActionRun)
			a.ctx.Anim().SetSpeed(a.ctx.Tuning.Move.RunAnimSpeed)
		} else {
			p.SetAction(component.ActionWalk)
			a.ctx.Anim().SetSpeed(mathz.OutCubic(math.Min(1, math.Abs(x))))
		}
		v[0] = helper.Update(delta, x, v.X())
	case component.ActionCarryWalk, component.ActionCarryHeavyWalk:
		helper := a.ctx.Move.Carry
		helper.WalkSpeed = a.ctx.Tuning.Move.CarrySpeed(p.CarryingHeavy())
		v[0] = helper.Update(delta, x, v.X())
	}
	p.SetVelocity(v)
}

// SlideAction brakes the player after the stick is released.
type SlideAction struct {
	ctx *ActionContext
}

func NewSlideAction(ctx *ActionContext) *SlideAction { return &SlideAction{ctx: ctx} }

func (a *SlideAction) Name() string { return "Slide" }

func (a *SlideAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionSlide, component.ActionCarrySlide, component.ActionCarryHeavySlide}
}

func (a *SlideAction) IsAllowed(t component.ActionType) bool {
	return slices.Contains(a.Claims(), t)
}

func (a *SlideAction) TransitionAttempts() {
	p := a.ctx.Player
	switch p.Action() {
	case component.ActionIdle, component.ActionWalk, component.ActionRun,
		component.ActionIdlePlay, component.ActionIdleSleep, component.ActionIdleLookAround, component.ActionIdleYawn:
		if !mathz.IsZeroApprox(p.Velocity().X()) && mathz.IsZeroApprox(a.ctx.Input().Movement.X()) {
			p.SetAction(component.ActionSlide)
		}
	}
}

func (a *SlideAction) OnAct(delta float64) {
	p := a.ctx.Player
	v := p.Velocity()
	v[0] = a.ctx.Move.Helper(p.State().CarriedBody.Valid()).Update(delta, 0, v.X())
	p.SetVelocity(v)
}

// WalkToAction lines the player up with a spot before another action
// starts there. The plan comes from the behavior that asked for it.
type WalkToAction struct {
	ctx *ActionContext

	original      component.Direction
	stoppedByWall bool
}

func NewWalkToAction(ctx *ActionContext) *WalkToAction { return &WalkToAction{ctx: ctx} }

func (a *WalkToAction) Name() string { return "WalkTo" }

func (a *WalkToAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionWalkTo}
}

func (a *WalkToAction) IsAllowed(t component.ActionType) bool { return t == component.ActionWalkTo }

func (a *WalkToAction) OnEnter() {
	a.original = a.ctx.Player.Facing()
	a.stoppedByWall = false
}

func (a *WalkToAction) OnAct(delta float64) {
	p := a.ctx.Player
	plan := a.ctx.WalkTo
	helper := a.ctx.Move.Default
	if plan.NextOrigin == nil {
		p.SetAction(component.ActionIdle)
		return
	}

	speed := 1.0
	if helper.IsRunning() {
		speed = a.ctx.Tuning.Move.RunAnimSpeed
	}
	a.ctx.Anim().SetSpeed(speed)

	target := plan.NextOrigin()
	directionTo := target.Sub(p.Origin()).Dot(p.Axes().Right)
	sign := 1.0
	if directionTo < 0 {
		sign = -1
	}
	p.SetFacing(component.DirectionFrom(sign))

	a.stoppedByWall = p.Body().Wall.Hit()
	if !mathz.IsEqualApproxTolerance(directionTo, 0, mathz.Trixel) && !a.stoppedByWall {
		v := p.Velocity()
		v[0] = helper.Update(delta, sign*0.75, v.X())
		v[0] += math.Min(math.Abs(v.X()), math.Abs(directionTo)) * sign
		p.SetVelocity(v)
		return
	}

	p.SetFacing(a.original)
	next := plan.NextAction
	plan.NextOrigin = nil
	plan.NextAction = component.ActionNone
	if next == component.ActionNone {
		next = component.ActionIdle
	}
	p.SetAction(next)
	v := p.Velocity()
	p.SetVelocity(mathz.Scale(v, mathz.WorldUp))
	if !a.stoppedByWall {
		p.SetOrigin(target)
		p.SetGlobalVelocity(HugResponse(a.ctx.Space, p.Physics()))
	}
	a.ctx.Emit(ecs.EventWalkedTo)
}
