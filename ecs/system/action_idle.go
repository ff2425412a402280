package system

import (
	"math"
	"slices"

	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

var idleVariants = []component.ActionType{
	component.ActionIdleSleep,
	component.ActionIdlePlay,
	component.ActionIdleLookAround,
	component.ActionIdleYawn,
}

// IdleAction rests the player once it stops moving. After a random wait
// it plays one of the idle variants and then waits again.
type IdleAction struct {
	ctx *ActionContext

	// wait counts down to the next variant; variant counts down the
	// variant playing now.
	wait    float64
	variant float64
}

func NewIdleAction(ctx *ActionContext) *IdleAction { return &IdleAction{ctx: ctx} }

func (a *IdleAction) Name() string { return "Idle" }

func (a *IdleAction) Claims() []component.ActionType {
	return append([]component.ActionType{
		component.ActionIdle, component.ActionCarryIdle, component.ActionCarryHeavyIdle,
	}, idleVariants...)
}

func (a *IdleAction) IsAllowed(t component.ActionType) bool {
	return slices.Contains(a.Claims(), t)
}

func (a *IdleAction) TransitionAttempts() {
	p := a.ctx.Player
	switch p.Action() {
	case component.ActionWalk, component.ActionRun, component.ActionDropDown, component.ActionSlide,
		component.ActionCarryWalk, component.ActionCarryHeavyWalk:
		v := p.Velocity()
		if mathz.IsZeroApprox(v.X()) && v.Y() <= 0 && mathz.IsZeroApprox(a.ctx.Input().Movement.X()) {
			p.SetAction(a.ctx.Carry(component.ActionIdle, component.ActionCarryIdle, component.ActionCarryHeavyIdle))
		}
	}
}

func (a *IdleAction) OnEnter() {
	a.wait, a.variant = 0, 0
	if !a.ctx.Player.State().CarriedBody.Valid() {
		a.scheduleNext()
	}
}

func (a *IdleAction) OnAct(delta float64) {
	switch {
	case a.variant > 0:
		a.variant -= delta
		if a.variant <= 0 {
			a.scheduleNext()
		}
	case a.wait > 0:
		a.wait -= delta
		if a.wait <= 0 {
			a.playVariant()
		}
	}
}

func (a *IdleAction) OnEnd() {
	a.wait, a.variant = 0, 0
}

func (a *IdleAction) scheduleNext() {
	a.ctx.Player.SetAction(component.ActionIdle)
	t := a.ctx.Tuning.Idle
	a.wait = t.MinWait + a.ctx.Rand.Float64()*(t.MaxWait-t.MinWait)
	a.variant = 0
}

func (a *IdleAction) playVariant() {
	next := idleVariants[a.ctx.Rand.IntN(len(idleVariants))]
	a.ctx.Player.SetAction(next)
	a.variant = a.ctx.Anim().Length()
	if a.variant <= 0 {
		a.variant = FixedDelta
	}
}

// TeeterAction balances the player on the edge of its floor.
type TeeterAction struct {
	ctx *ActionContext
}

func NewTeeterAction(ctx *ActionContext) *TeeterAction { return &TeeterAction{ctx: ctx} }

func (a *TeeterAction) Name() string { return "Teeter" }

func (a *TeeterAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionTeeter, component.ActionTeeterPaul}
}

func (a *TeeterAction) IsAllowed(t component.ActionType) bool {
	return t == component.ActionTeeter || t == component.ActionTeeterPaul
}

func (a *TeeterAction) TransitionAttempts() {
	p := a.ctx.Player
	switch p.Action() {
	case component.ActionIdle, component.ActionWalk, component.ActionRun, component.ActionDropDown,
		component.ActionSlide, component.ActionGrab, component.ActionPush,
		component.ActionIdlePlay, component.ActionIdleSleep, component.ActionIdleLookAround, component.ActionIdleYawn:
	default:
		return
	}
	state := p.State()
	floor, ok := p.Floor()
	if state.PushedBody.Valid() || state.CarriedBody.Valid() || !ok || a.ctx.Input().Movement.X() != 0 {
		return
	}
	floorOrigin, ok := OriginOf(p.World(), floor)
	if !ok {
		return
	}

	axes := p.Axes()
	origin := p.Origin()
	diff := math.Abs(floorOrigin.Dot(axes.Right) - origin.Dot(axes.Right))

	probe := *p.Transform()
	probe.Origin = probe.Origin.
		Add(axes.Facing.Mul(p.Size().X() + mathz.HalfTrixel)).
		Sub(axes.Up.Mul(p.Size().Y() + mathz.HalfTrixel))
	empty := a.ctx.Space.CastPoint(probe, component.LayerSolid) == nil

	t := a.ctx.Tuning.Teeter
	if diff > t.MinDistance && diff <= t.MaxDistance && empty {
		v := p.Velocity()
		v[0] = 0
		p.SetVelocity(v)
		p.SetAction(component.ActionTeeter)
	}
}

// LookAction turns the player's head toward the free-look input and holds
// the pose until the input changes.
type LookAction struct {
	ctx  *ActionContext
	next component.ActionType
}

func NewLookAction(ctx *ActionContext) *LookAction { return &LookAction{ctx: ctx} }

func (a *LookAction) Name() string { return "Look" }

var lookActions = []component.ActionType{
	component.ActionLookUp, component.ActionLookDown, component.ActionLookLeft, component.ActionLookRight,
}

func (a *LookAction) Claims() []component.ActionType { return lookActions }

func (a *LookAction) IsAllowed(t component.ActionType) bool {
	return slices.Contains(lookActions, t)
}

func (a *LookAction) TransitionAttempts() {
	p := a.ctx.Player
	actions := p.Actions()
	current := p.Action()
	if !actions.IsLooking(current) && !actions.IsIdle(current) && current != component.ActionTeeter {
		a.next = component.ActionNone
		return
	}

	v := a.ctx.Input().FreeLook
	offset := a.ctx.Tuning.Look.Offset
	switch {
	case v.Y() > offset:
		a.next = component.ActionLookUp
	case v.Y() < -offset:
		a.next = component.ActionLookDown
	case v.X() < -offset:
		a.next = component.ActionLookLeft
	case v.X() > offset:
		a.next = component.ActionLookRight
	case mathz.IsZeroApprox(v.X()) && mathz.IsZeroApprox(v.Y()):
		a.next = component.ActionIdle
	}

	// Left and right are relative to where the player faces.
	if p.Facing() == component.DirLeft {
		switch a.next {
		case component.ActionLookLeft:
			a.next = component.ActionLookRight
		case component.ActionLookRight:
			a.next = component.ActionLookLeft
		}
	}

	if actions.IsIdle(current) && a.next != component.ActionNone && a.next != component.ActionIdle {
		p.SetAction(a.next)
		a.next = component.ActionNone
	}
	if a.next == p.Action() {
		a.next = component.ActionNone
	}
}

func (a *LookAction) OnEnter() {
	a.ctx.Emit(ecs.EventLookedAround)
}

func (a *LookAction) OnAct(float64) {
	anim := a.ctx.Anim()
	if anim.Position() > anim.Length()/2 {
		anim.SetSpeed(0)
	}
	if !mathz.IsEqualApprox(anim.Position(), anim.Length()) && a.next != component.ActionNone {
		anim.SetSpeed(a.ctx.Tuning.Look.AnimSpeed)
	}
	if !anim.IsPlaying() && a.next != component.ActionNone {
		a.ctx.Player.SetAction(a.next)
		a.next = component.ActionNone
	}
}
