package system

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

var carryActions = []component.ActionType{
	component.ActionCarryIdle, component.ActionCarryWalk, component.ActionCarryJump, component.ActionCarrySlide,
	component.ActionCarryHeavyIdle, component.ActionCarryHeavyWalk, component.ActionCarryHeavyJump, component.ActionCarryHeavySlide,
}

func isThrowing(a component.ActionType) bool {
	return a == component.ActionThrowTrile || a == component.ActionThrowHeavy
}

func pickupOf(w *ecs.World, e ecs.Entity) (*component.Pickup, bool) {
	if !e.Valid() {
		return nil, false
	}
	return ecs.Get(w, e, component.PickupComponent.Kind())
}

// TrileLiftAction lifts a pickup next to the player over its head.
type TrileLiftAction struct {
	ctx *ActionContext
}

func NewTrileLiftAction(ctx *ActionContext) *TrileLiftAction { return &TrileLiftAction{ctx: ctx} }

func (a *TrileLiftAction) Name() string { return "TrileLift" }

func (a *TrileLiftAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionLiftTrile, component.ActionLiftHeavy}
}

func (a *TrileLiftAction) IsAllowed(t component.ActionType) bool {
	return t == component.ActionLiftTrile || t == component.ActionLiftHeavy
}

func (a *TrileLiftAction) TransitionAttempts() {
	p := a.ctx.Player
	current := p.Action()
	switch {
	case p.Actions().IsIdle(current):
	case slices.Contains([]component.ActionType{
		component.ActionWalk, component.ActionRun, component.ActionSlide, component.ActionLand,
		component.ActionGrab, component.ActionPush, component.ActionTeeter,
	}, current):
	default:
		return
	}
	if p.InBackground() || !p.OnFloor() || !a.ctx.Input().Pressed(component.InputGrabThrow) {
		return
	}

	state := p.State()
	target := state.PushedBody
	if !target.Valid() {
		if hit := a.ctx.Space.CastRect(*p.Transform(), p.Size().Mul(2), component.LayerActors, false).First; hit != nil {
			target = hit.Entity
		}
	}
	pickup, ok := pickupOf(p.World(), target)
	if !ok {
		return
	}
	next := component.ActionLiftTrile
	if pickup.IsHeavy {
		next = component.ActionLiftHeavy
	}
	if current == component.ActionGrab {
		state.CarriedBody = target
		p.SetAction(next)
		return
	}
	state.PushedBody = target
	a.ctx.WalkTo.Start(p, next, a.destination)
}

// destination stands the player beside the pickup it is about to lift.
func (a *TrileLiftAction) destination() mgl64.Vec3 {
	p := a.ctx.Player
	axes := p.Axes()
	origin, size := colliderViewExtents(p.World(), p.State().PushedBody, p.Basis())
	gap := size.Add(p.Size()).Add(mathz.One.Mul(mathz.HalfTrixel))
	return mathz.Scale(p.Origin(), axes.YZMask).
		Add(mathz.Scale(origin, axes.XMask)).
		Sub(mathz.Scale(axes.Facing, gap))
}

func (a *TrileLiftAction) OnEnter() {
	p := a.ctx.Player
	state := p.State()
	if !state.CarriedBody.Valid() && !state.PushedBody.Valid() {
		p.SetAction(component.ActionIdle)
		return
	}
	if state.PushedBody.Valid() {
		state.CarriedBody = state.PushedBody
		state.PushedBody = 0
	}
	SetPickupCollision(p.World(), state.CarriedBody, false)
	p.SetVelocity(mathz.Scale(p.Velocity(), mathz.WorldUp))
	a.ctx.Emit(ecs.EventLiftedObject)
}

func (a *TrileLiftAction) OnAct(float64) {
	if a.ctx.Anim().IsPlaying() {
		return
	}
	p := a.ctx.Player
	if p.CarryingHeavy() {
		p.SetAction(component.ActionCarryHeavyIdle)
	} else {
		p.SetAction(component.ActionCarryIdle)
	}
}

// TrileThrowAction throws the carried pickup forward and up.
type TrileThrowAction struct {
	ctx *ActionContext
}

func NewTrileThrowAction(ctx *ActionContext) *TrileThrowAction { return &TrileThrowAction{ctx: ctx} }

func (a *TrileThrowAction) Name() string { return "TrileThrow" }

func (a *TrileThrowAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionThrowTrile, component.ActionThrowHeavy}
}

func (a *TrileThrowAction) IsAllowed(t component.ActionType) bool { return isThrowing(t) }

func (a *TrileThrowAction) TransitionAttempts() {
	p := a.ctx.Player
	if !slices.Contains(carryActions, p.Action()) {
		return
	}
	input := a.ctx.Input()
	dropping := input.Pressed(component.InputDown) &&
		mathz.IsEqualApproxTolerance(input.Movement.LenSqr(), 0, 0.5)
	if p.InBackground() || !input.JustPressed(component.InputGrabThrow) || dropping {
		return
	}
	if p.CarryingHeavy() {
		p.SetAction(component.ActionThrowHeavy)
	} else {
		p.SetAction(component.ActionThrowTrile)
	}
}

func (a *TrileThrowAction) OnEnter() {
	if !a.ctx.Player.State().CarriedBody.Valid() {
		a.ctx.Player.SetAction(component.ActionIdle)
		return
	}
	a.ctx.Emit(ecs.EventThrewObject)
}

// OnAct lowers the body from over the player's head until the throw
// animation reaches the release point, then lets it fly.
func (a *TrileThrowAction) OnAct(float64) {
	p := a.ctx.Player
	w := p.World()
	carried, pickup, ok := p.Carried()
	if ok {
		if pickup.IsHeavy {
			p.SetVelocity(mathz.Scale(p.Velocity(), mathz.WorldUp))
		}
		tuning := a.ctx.Tuning.Trile
		left := 1.0
		if tuning.ReleaseAt > 0 {
			left = 1 - math.Min(1, Progress(a.ctx.Anim())/tuning.ReleaseAt)
		}
		if t, found := ecs.Get(w, carried, component.TransformComponent.Kind()); found {
			offset := mgl64.Vec3{0, tuning.CarryHeight * left, 0}
			t.Origin = p.Origin().Add(mathz.ToGlobal(p.Basis(), offset))
		}
		if mathz.IsZeroApprox(left) {
			SetPickupCollision(w, carried, true)
			if body, found := ecs.Get(w, carried, component.BodyComponent.Kind()); found {
				body.Velocity = body.Velocity.Add(mgl64.Vec3{p.Facing().Sign() * tuning.ThrowStrength, tuning.ThrowStrength, 0})
			}
			p.State().CarriedBody = 0
		}
	}
	if !a.ctx.Anim().IsPlaying() {
		if p.State().CarriedBody.Valid() {
			a.ctx.DropCarried()
		}
		p.SetAction(component.ActionIdle)
	}
}

// TrileDropAction sets the carried pickup down in front of the player.
type TrileDropAction struct {
	ctx *ActionContext
}

func NewTrileDropAction(ctx *ActionContext) *TrileDropAction { return &TrileDropAction{ctx: ctx} }

func (a *TrileDropAction) Name() string { return "TrileDrop" }

func (a *TrileDropAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionDropTrile, component.ActionDropHeavy}
}

func (a *TrileDropAction) IsAllowed(t component.ActionType) bool {
	return t == component.ActionDropTrile || t == component.ActionDropHeavy
}

func (a *TrileDropAction) TransitionAttempts() {
	p := a.ctx.Player
	if !slices.Contains(carryActions, p.Action()) {
		return
	}
	input := a.ctx.Input()
	drop := input.Movement.Y() < -0.5
	if input.Pressed(component.InputGrabThrow) {
		drop = math.Abs(input.Movement.X()) < 0.25
	}
	if p.InBackground() || !drop {
		return
	}
	p.SetVelocity(mathz.Scale(p.Velocity(), mathz.WorldUp))
	if p.CarryingHeavy() {
		p.SetAction(component.ActionDropHeavy)
	} else {
		p.SetAction(component.ActionDropTrile)
	}
}

func (a *TrileDropAction) OnEnter() {
	a.ctx.Emit(ecs.EventDroppedObject)
}

func (a *TrileDropAction) OnAct(float64) {
	p := a.ctx.Player
	carried, pickup, ok := p.Carried()
	if !ok {
		p.SetAction(component.ActionIdle)
		return
	}
	if a.ctx.Anim().IsPlaying() {
		return
	}

	w := p.World()
	SetPickupCollision(w, carried, true)
	if t, found := ecs.Get(w, carried, component.TransformComponent.Kind()); found {
		t.Origin = t.Origin.Add(p.Axes().Facing.Mul(mathz.HalfTrixel))
	}
	state := p.State()
	if pickup.IsHeavy {
		state.PushedBody = carried
		p.SetAction(component.ActionGrab)
		anim := a.ctx.Anim()
		anim.Advance(anim.Length())
	} else {
		p.SetAction(component.ActionIdle)
	}
	state.CarriedBody = 0
	p.SetGlobalVelocity(HugResponse(a.ctx.Space, p.Physics()))
}

// TrileGrabPushAction grabs a pickup the player walks into and pushes it
// along the floor.
type TrileGrabPushAction struct {
	ctx *ActionContext

	helper      *MoveHelper
	pushingSign float64
}

func NewTrileGrabPushAction(ctx *ActionContext) *TrileGrabPushAction {
	return &TrileGrabPushAction{ctx: ctx}
}

func (a *TrileGrabPushAction) Name() string { return "TrileGrabPush" }

func (a *TrileGrabPushAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionGrab, component.ActionPush}
}

func (a *TrileGrabPushAction) IsAllowed(t component.ActionType) bool {
	return t == component.ActionGrab || t == component.ActionPush
}

func (a *TrileGrabPushAction) TransitionAttempts() {
	p := a.ctx.Player
	current := p.Action()
	switch {
	case p.Actions().IsIdle(current):
	case current == component.ActionWalk, current == component.ActionRun,
		current == component.ActionSlide, current == component.ActionTeeter:
	default:
		return
	}
	if !p.OnFloor() || p.InBackground() || mathz.IsZeroApprox(a.ctx.Input().Movement.X()) {
		return
	}
	wall := p.Body().Wall.Collider
	if _, ok := pickupOf(p.World(), wall); !ok {
		return
	}
	body, ok := LookupPhysicsBody(p.World(), wall)
	if !ok || !body.Collider.Layer.Has(component.LayerAllSides) || body.Collider.Hidden ||
		!body.Body.OnFloor() || !mathz.IsZeroApprox(body.Body.Velocity.X()) {
		return
	}
	p.State().PushedBody = wall
	p.SetAction(component.ActionGrab)
}

func (a *TrileGrabPushAction) OnEnter() {
	p := a.ctx.Player
	p.SetVelocity(mathz.Scale(p.Velocity(), mathz.WorldUp))
	a.pushingSign = p.Facing().Sign()
	speed := a.ctx.Tuning.Move.DefaultSpeed * a.ctx.Tuning.Trile.PushFactor
	a.helper = NewMoveHelper(speed, 0, math.MaxFloat64, a.ctx.Tuning.Move.RunInputThreshold)
}

func (a *TrileGrabPushAction) OnAct(delta float64) {
	p := a.ctx.Player
	state := p.State()
	input := a.ctx.Input()
	pushed, ok := LookupPhysicsBody(p.World(), state.PushedBody)
	if !ok || pushed.Collider.Hidden || a.pushingSign == -mathz.Sign(input.Movement.X()) || !p.OnFloor() {
		state.PushedBody = 0
		p.SetAction(component.ActionIdle)
		return
	}

	axes := p.Axes()
	_, size := colliderViewExtents(p.World(), state.PushedBody, p.Basis())
	offset := size.Add(p.Size()).Add(mathz.One.Mul(mathz.Trixel))
	p.SetOrigin(mathz.Scale(p.Origin(), axes.YMask).
		Add(mathz.Scale(pushed.Transform.Origin, axes.XZMask)).
		Sub(mathz.Scale(axes.Right.Mul(a.pushingSign), offset)))

	anim := a.ctx.Anim()
	switch p.Action() {
	case component.ActionGrab:
		if !mathz.IsZeroApprox(input.Movement.X()) && !anim.IsPlaying() {
			p.SetAction(component.ActionPush)
		}
	case component.ActionPush:
		pushed.Body.Velocity[0] = a.helper.Update(delta, input.Movement.X(), pushed.Body.Velocity.X())
		if mathz.IsZeroApprox(pushed.Body.Velocity.X()) {
			p.SetAction(component.ActionGrab)
			anim = a.ctx.Anim()
			anim.Seek(anim.Length())
		}
	}
}
