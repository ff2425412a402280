package system

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

// ledgeRotation tracks a view rotation that started while the player hung
// on a ledge. The hold is remapped once the tween passes swapAt.
type ledgeRotation struct {
	from    component.Orthogonal
	pending bool
}

const swapAt = 0.6

func (r *ledgeRotation) preRotate(ctx *ActionContext, allowed bool) {
	r.pending = false
	cam := ctx.Camera
	if !allowed || cam == nil || cam.Orthogonal() == cam.LastOrthogonal() || ctx.Respawn.Used() {
		return
	}
	r.from = cam.LastOrthogonal()
	r.pending = true
	ctx.Player.SetVelocity(mgl64.Vec3{})
}

// take returns the rotated distance once the tween is far enough along.
func (r *ledgeRotation) take(ctx *ActionContext, step float64) (int, bool) {
	if !r.pending || step < swapAt {
		return 0, false
	}
	r.pending = false
	return ctx.Camera.Orthogonal().DistanceTo(r.from), true
}

func heldExtents(p *PlayerHandle) (mgl64.Vec3, mgl64.Vec3) {
	return colliderViewExtents(p.World(), p.State().HeldBody, p.Basis())
}

// LedgeGrabAction catches the player on the top edge of a ledge while it
// jumps or falls past it.
type LedgeGrabAction struct {
	ctx      *ActionContext
	rotation ledgeRotation

	unsubscribe []func()
}

func NewLedgeGrabAction(ctx *ActionContext) *LedgeGrabAction {
	a := &LedgeGrabAction{ctx: ctx}
	events := ctx.World.Events()
	a.unsubscribe = append(a.unsubscribe,
		events.Subscribe(ecs.EventPreRotate, func(ecs.Event) {
			a.rotation.preRotate(a.ctx, a.IsAllowed(a.ctx.Player.Action()))
		}),
		events.Subscribe(ecs.EventRotating, a.onRotating),
	)
	return a
}

func (a *LedgeGrabAction) Close() {
	for _, fn := range a.unsubscribe {
		fn()
	}
	a.unsubscribe = nil
}

func (a *LedgeGrabAction) Name() string { return "LedgeGrab" }

func (a *LedgeGrabAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionLedgeGrabFront, component.ActionLedgeGrabBack, component.ActionCornerGrab}
}

func (a *LedgeGrabAction) IsAllowed(t component.ActionType) bool {
	return t == component.ActionLedgeGrabFront || t == component.ActionLedgeGrabBack || t == component.ActionCornerGrab
}

func (a *LedgeGrabAction) onRotating(e ecs.Event) {
	p := a.ctx.Player
	if dist, ok := a.rotation.take(a.ctx, e.Step); ok {
		if dist%2 == 0 {
			p.SetFacing(p.Facing().Opposite())
		} else {
			front := dist > 0
			if p.Facing() == component.DirRight {
				front = !front
			}
			if front {
				p.SetAction(component.ActionLedgeGrabFront)
			} else {
				p.SetAction(component.ActionLedgeGrabBack)
			}
			p.SetInBackground(p.Action() != component.ActionLedgeGrabBack)
			anim := a.ctx.Anim()
			anim.Seek(anim.Length())
		}
	}

	if !p.IsOnLedge() {
		return
	}
	state := p.State()
	if !state.HeldBody.Valid() {
		p.SetAction(component.ActionIdle)
		return
	}
	// A moving pickup shakes the player off.
	if _, isPickup := ecs.Get(p.World(), state.HeldBody, component.PickupComponent.Kind()); isPickup {
		if body, ok := LookupPhysicsBody(p.World(), state.HeldBody); ok {
			v := body.GlobalVelocity()
			if math.Abs(v.Dot(mathz.One)) > 0.5 {
				p.SetGlobalVelocity(v)
				state.HeldBody = 0
				p.SetAction(component.ActionJump)
			}
		}
	}
}

func (a *LedgeGrabAction) TransitionAttempts() {
	p := a.ctx.Player
	if p.Action() != component.ActionJump && p.Action() != component.ActionFall {
		return
	}
	rect := a.ctx.Space.CastRect(*p.Transform(), p.Size(), component.LayerTopOnly, false).First

	probe := *p.Transform()
	probe.Origin = probe.Origin.Add(p.Axes().Facing.Mul(p.Size().X()))
	point := a.ctx.Space.CastPoint(probe, component.LayerTopOnly)

	state := p.State()
	switch {
	case a.checkLedge(rect):
		state.HeldBody = rect.Entity
		p.SetAction(component.ActionLedgeGrabBack)
	case a.checkCorner(rect, point):
		state.HeldBody = point.Entity
		p.SetAction(component.ActionCornerGrab)
	}
}

func (a *LedgeGrabAction) checkLedge(ledge *Hit) bool {
	p := a.ctx.Player
	if ledge == nil || !a.ctx.Input().Pressed(component.InputUp) {
		return false
	}
	diff := mathz.Scale(ledge.Transform.Origin.Sub(a.ctx.Respawn.FloorOriginOnLeave()), p.Axes().XYMask)
	return !ledge.Collider.Hidden && diff.Len() >= a.ctx.Tuning.Ledge.LeaveFloorThreshold &&
		p.Action() != component.ActionJump
}

func (a *LedgeGrabAction) checkCorner(empty, corner *Hit) bool {
	p := a.ctx.Player
	t := a.ctx.Tuning.Ledge
	axes := p.Axes()
	sign := p.Facing().Sign()
	vel := p.Velocity().X() * sign
	move := a.ctx.Input().Movement.X() * sign

	if vel <= t.VelocityThreshold && move <= t.MovementThreshold {
		return false
	}
	if empty != nil || corner == nil {
		return false
	}
	cornerY := corner.Transform.Origin.Dot(axes.Up)
	playerY := p.Origin().Dot(axes.Up)
	if corner.Collider.Hidden || cornerY >= playerY || corner.Collider.Layer != component.LayerTopOnly {
		return false
	}
	if p.Action() == component.ActionJump {
		left := mathz.Scale(corner.Transform.Origin.Sub(a.ctx.Respawn.FloorOriginOnLeave()), axes.XYMask)
		if left.Len() < t.LeaveFloorThreshold {
			return false
		}
	}

	extents := component.ViewExtents(component.WorldExtents(corner.Collider.Extents, corner.Transform.Basis), p.Basis())
	offset := axes.Right.Mul(-sign).Add(mathz.Scale(axes.Up, extents))
	grip := mathz.Scale(corner.Transform.Origin, axes.XYMask).Add(offset)
	return mathz.Scale(p.Origin(), axes.XYMask).Sub(grip).Len() < t.DistanceThreshold
}

func (a *LedgeGrabAction) OnEnter() {
	p := a.ctx.Player
	if last := p.LastAction(); last != component.ActionFall && last != component.ActionJump {
		return
	}
	axes := p.Axes()
	held, extents := heldExtents(p)

	y := mathz.Scale(held, axes.YMask).Add(axes.Up.Mul(extents.Y()))
	z := mathz.Scale(held, axes.ZMask).Add(axes.Forward.Mul(extents.Z() + p.Size().Z() + mathz.HalfTrixel))
	x := mathz.Scale(p.Origin(), axes.XMask)
	if p.Action() == component.ActionCornerGrab {
		x = mathz.Scale(held, axes.XMask).Sub(axes.Facing.Mul(p.Size().X() + extents.X()))
	}
	p.SetOrigin(x.Add(y).Add(z))
	p.SetVelocity(mgl64.Vec3{})
	a.ctx.Emit(ecs.EventGrabbedLedge)
}

func (a *LedgeGrabAction) OnAct(float64) {
	p := a.ctx.Player
	anim := a.ctx.Anim()
	if p.Action() != component.ActionCornerGrab {
		if !anim.IsPlaying() {
			if p.Actions().FacesBack(p.Action()) {
				p.SetAction(component.ActionShimmyBack)
			} else {
				p.SetAction(component.ActionShimmyFront)
			}
		}
		return
	}

	input := a.ctx.Input()
	pressed := input.Pressed
	if anim.IsPlaying() {
		pressed = input.JustPressed
	}
	right := p.Facing() == component.DirRight && pressed(component.InputRight)
	left := p.Facing() == component.DirLeft && pressed(component.InputLeft)
	if !p.InBackground() && (right || left) && p.State().HeldBody.Valid() {
		p.SetAction(component.ActionFromCornerBack)
	}
}

// LedgeShimmyAction moves the player sideways along the ledge it holds.
type LedgeShimmyAction struct {
	ctx      *ActionContext
	rotation ledgeRotation

	unsubscribe []func()
}

func NewLedgeShimmyAction(ctx *ActionContext) *LedgeShimmyAction {
	a := &LedgeShimmyAction{ctx: ctx}
	events := ctx.World.Events()
	a.unsubscribe = append(a.unsubscribe,
		events.Subscribe(ecs.EventPreRotate, func(ecs.Event) {
			a.rotation.preRotate(a.ctx, a.IsAllowed(a.ctx.Player.Action()))
		}),
		events.Subscribe(ecs.EventRotating, a.onRotating),
	)
	return a
}

func (a *LedgeShimmyAction) Close() {
	for _, fn := range a.unsubscribe {
		fn()
	}
	a.unsubscribe = nil
}

func (a *LedgeShimmyAction) Name() string { return "LedgeShimmy" }

func (a *LedgeShimmyAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionShimmyFront, component.ActionShimmyBack}
}

func (a *LedgeShimmyAction) IsAllowed(t component.ActionType) bool {
	return t == component.ActionShimmyFront || t == component.ActionShimmyBack
}

func (a *LedgeShimmyAction) onRotating(e ecs.Event) {
	dist, ok := a.rotation.take(a.ctx, e.Step)
	if !ok {
		return
	}
	p := a.ctx.Player
	back := p.Actions().FacesBack(p.Action())
	if dist%2 == 0 {
		p.SetInBackground(!p.InBackground())
		if back {
			p.SetAction(component.ActionLedgeGrabFront)
		} else {
			p.SetAction(component.ActionLedgeGrabBack)
		}
		return
	}

	left := dist > 0
	if !back {
		left = !left
	}
	if left {
		p.SetFacing(component.DirLeft)
	} else {
		p.SetFacing(component.DirRight)
	}
	p.SetAction(component.ActionCornerGrab)
	p.SetInBackground(false)
	anim := a.ctx.Anim()
	anim.Seek(anim.Length())
}

func (a *LedgeShimmyAction) OnAct(float64) {
	p := a.ctx.Player
	state := p.State()
	axes := p.Axes()
	move := a.ctx.Input().Movement.X()
	speed := move * a.ctx.Tuning.Move.DefaultSpeed * a.ctx.Tuning.Ledge.ShimmyFactor
	p.SetVelocity(mgl64.Vec3{speed, 0, 0})

	probe := *p.Transform()
	probe.Origin = probe.Origin.Add(mathz.SignVec(p.GlobalVelocity()).Mul(p.Size().X()))
	pair := a.ctx.Space.CastRect(probe, p.Size().Mul(1.5), component.LayerTopOnly, false)

	switch {
	case pair.First == nil:
		state.HeldBody = 0
		p.SetAction(component.ActionDropDown)
		p.SetVelocity(mgl64.Vec3{p.Velocity().X(), Snap, 0})
		return
	case !mathz.IsZeroApprox(move):
		extents := component.ViewExtents(component.WorldExtents(pair.First.Collider.Extents, pair.First.Transform.Basis), p.Basis())
		if pair.Far == nil && pair.First.Entity == state.HeldBody {
			held, _ := OriginOf(p.World(), state.HeldBody)
			diff := p.Origin().Dot(axes.Right) - held.Dot(axes.Right)
			if math.Abs(diff) > extents.X()+mathz.Trixel {
				if p.Actions().FacesBack(p.Action()) {
					p.SetAction(component.ActionToCornerBack)
				} else {
					p.SetAction(component.ActionToCornerFront)
				}
				p.SetFacing(p.Facing().Opposite())
				return
			}
		} else {
			p.SetOrigin(mathz.Scale(p.Origin(), axes.XMask).
				Add(axes.Up.Mul(extents.Y())).
				Add(mathz.Scale(pair.First.Transform.Origin, axes.YZMask)).
				Add(axes.Forward.Mul(extents.Z() + p.Size().Z() + mathz.HalfTrixel)))
			state.HeldBody = pair.First.Entity
		}
	}

	anim := a.ctx.Anim()
	if vx := p.Velocity().X(); !mathz.IsZeroApprox(vx) {
		anim.SetLoop(true)
		if !anim.IsPlaying() {
			anim.Play(anim.Current())
		}
		anim.SetSpeed(math.Abs(vx))
		return
	}
	anim.SetLoop(false)
	anim.Seek(0)
}

// LedgeTransitionsAction plays the turns between a corner and the
// ledge's back side.
type LedgeTransitionsAction struct {
	ctx *ActionContext
}

func NewLedgeTransitionsAction(ctx *ActionContext) *LedgeTransitionsAction {
	return &LedgeTransitionsAction{ctx: ctx}
}

func (a *LedgeTransitionsAction) Name() string { return "LedgeTransitions" }

func (a *LedgeTransitionsAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionFromCornerBack, component.ActionToCornerFront, component.ActionToCornerBack}
}

func (a *LedgeTransitionsAction) IsAllowed(t component.ActionType) bool {
	switch t {
	case component.ActionFromCornerBack, component.ActionToCornerFront, component.ActionToCornerBack:
		return true
	}
	return false
}

func (a *LedgeTransitionsAction) OnEnter() {
	p := a.ctx.Player
	state := p.State()
	axes := p.Axes()

	probe := *p.Transform()
	probe.Origin = probe.Origin.Add(axes.Facing.Mul(p.Size().X()))
	if hit := a.ctx.Space.CastRect(probe, p.Size(), component.LayerTopOnly, false).First; hit != nil {
		state.HeldBody = hit.Entity
	}

	held, extents := heldExtents(p)
	opposite := axes.Facing.Mul(-1)
	p.SetVelocity(mgl64.Vec3{})
	if p.Action() == component.ActionFromCornerBack {
		p.SetOrigin(held.
			Add(opposite.Mul(extents.X())).
			Add(axes.Up.Mul(extents.Y())).
			Add(axes.Forward.Mul(extents.Z() + p.Size().Z() + mathz.HalfTrixel)))
		return
	}
	up := extents.Y()
	if p.InBackground() {
		up = -up
	}
	p.SetOrigin(held.Add(opposite.Mul(extents.X() + p.Size().X())).Add(axes.Up.Mul(up)))
}

func (a *LedgeTransitionsAction) OnAct(float64) {
	anim := a.ctx.Anim()
	if anim.IsPlaying() {
		return
	}
	p := a.ctx.Player
	if p.Action() == component.ActionFromCornerBack {
		p.SetInBackground(false)
		p.SetAction(component.ActionShimmyBack)
		return
	}
	p.SetAction(component.ActionCornerGrab)
	anim = a.ctx.Anim()
	anim.Seek(anim.Length())
}

// LedgePullUpAction hoists the player from a ledge onto its top.
type LedgePullUpAction struct {
	ctx *ActionContext
}

func NewLedgePullUpAction(ctx *ActionContext) *LedgePullUpAction { return &LedgePullUpAction{ctx: ctx} }

func (a *LedgePullUpAction) Name() string { return "LedgePullUp" }

func (a *LedgePullUpAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionCornerPullUp, component.ActionLedgePullUpFront, component.ActionLedgePullUpBack}
}

func (a *LedgePullUpAction) IsAllowed(t component.ActionType) bool {
	switch t {
	case component.ActionCornerPullUp, component.ActionLedgePullUpFront, component.ActionLedgePullUpBack:
		return true
	}
	return false
}

func (a *LedgePullUpAction) TransitionAttempts() {
	p := a.ctx.Player
	input := a.ctx.Input()
	if !p.State().HeldBody.Valid() {
		return
	}
	jumpUp := input.JustPressed(component.InputJump) && !input.AnyPressed(component.InputDown)

	switch p.Action() {
	case component.ActionShimmyFront, component.ActionShimmyBack:
		if !jumpUp && !input.JustPressed(component.InputUp) {
			return
		}
		if p.Actions().FacesBack(p.Action()) {
			p.SetAction(component.ActionLedgePullUpBack)
		} else {
			p.SetAction(component.ActionLedgePullUpFront)
		}
	case component.ActionCornerGrab:
		away := mathz.IsEqualApprox(input.Movement.X(), -p.Facing().Sign())
		heldUp := input.Pressed(component.InputUp) && !a.ctx.Anim().IsPlaying() &&
			p.LastAction() != component.ActionClimbSide
		if (!jumpUp || away) && !input.JustPressed(component.InputUp) && !heldUp {
			return
		}
		p.SetAction(component.ActionCornerPullUp)
	}
}

func (a *LedgePullUpAction) OnEnter() {
	p := a.ctx.Player
	axes := p.Axes()
	held, _ := OriginOf(p.World(), p.State().HeldBody)

	y := mathz.Scale(held, axes.YMask).Add(axes.Up.Mul(p.Size().Y() * 2))
	z := mathz.Scale(held, axes.ZMask).Add(axes.Forward.Mul(p.Size().X()))
	x := mathz.Scale(p.Origin(), axes.XMask)
	if p.LastAction() == component.ActionCornerGrab {
		x = x.Add(axes.Facing.Mul(p.Size().X() * 2))
	}
	p.SetOrigin(x.Add(y).Add(z))
	a.ctx.Emit(ecs.EventHoisted)
}

func (a *LedgePullUpAction) OnAct(float64) {
	if a.ctx.Anim().IsPlaying() {
		return
	}
	p := a.ctx.Player
	p.SetVelocity(mgl64.Vec3{0, Snap, 0})
	p.State().HeldBody = 0
	p.SetAction(component.ActionIdle)
}

// LedgeDropAction lets go of a ledge or a climbable.
type LedgeDropAction struct {
	ctx *ActionContext

	// heldLayer is the layer of what the player let go of.
	heldLayer component.PhysicsLayer
}

func NewLedgeDropAction(ctx *ActionContext) *LedgeDropAction { return &LedgeDropAction{ctx: ctx} }

func (a *LedgeDropAction) Name() string { return "LedgeDrop" }

func (a *LedgeDropAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionDropDown}
}

func (a *LedgeDropAction) IsAllowed(t component.ActionType) bool { return t == component.ActionDropDown }

func (a *LedgeDropAction) TransitionAttempts() {
	p := a.ctx.Player
	current := p.Action()
	switch current {
	case component.ActionCornerGrab, component.ActionToCornerFront, component.ActionToCornerBack,
		component.ActionFromCornerBack, component.ActionShimmyFront, component.ActionShimmyBack:
	default:
		if !slices.Contains(climbActions, current) {
			return
		}
	}
	input := a.ctx.Input()
	if !input.JustPressed(component.InputJump) {
		return
	}
	if !mathz.IsZeroApprox(input.Movement.X()) &&
		!(input.AnyPressed(component.InputDown) && p.Actions().IsOnLedge(current)) {
		return
	}
	state := p.State()
	a.heldLayer = LayerOf(p.World(), state.HeldBody)
	state.HeldBody = 0
	state.CanDoubleJump = false
	p.SetAction(component.ActionDropDown)
}

func (a *LedgeDropAction) OnEnter() {
	p := a.ctx.Player
	axes := p.Axes()
	last := p.LastAction()
	switch {
	case p.Actions().IsClimbing(last):
		if !a.heldLayer.Has(component.LayerVine) {
			a.ctx.Emit(ecs.EventDroppedFromLadder)
		}
	case p.Actions().IsOnLedge(last):
		a.ctx.Emit(ecs.EventDroppedLedge)
		if last == component.ActionCornerGrab || last == component.ActionCornerLowerTo {
			p.SetOrigin(p.Origin().Sub(axes.Facing.Mul(a.ctx.Tuning.Ledge.DropNudge)))
		}
		p.SetInBackground(DetermineInBackground(a.ctx.Space, p.Physics()))
	}
	if last == component.ActionCornerGrab {
		p.SetOrigin(p.Origin().Sub(axes.Facing.Mul(mathz.HalfTrixel * 15)))
	}
	a.heldLayer = component.LayerNone
	p.SetAction(component.ActionFall)
}

// LedgeLowerToAction lowers the player from the floor it stands on to a
// hold on the floor's edge.
type LedgeLowerToAction struct {
	ctx     *ActionContext
	extents mgl64.Vec3
}

func NewLedgeLowerToAction(ctx *ActionContext) *LedgeLowerToAction {
	return &LedgeLowerToAction{ctx: ctx}
}

func (a *LedgeLowerToAction) Name() string { return "LedgeLowerTo" }

func (a *LedgeLowerToAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionLedgeLowerTo, component.ActionCornerLowerTo}
}

func (a *LedgeLowerToAction) IsAllowed(t component.ActionType) bool {
	return t == component.ActionLedgeLowerTo || t == component.ActionCornerLowerTo
}

func (a *LedgeLowerToAction) TransitionAttempts() {
	p := a.ctx.Player
	floor, ok := p.Floor()
	if !ok {
		return
	}
	actions := p.Actions()
	current := p.Action()
	switch {
	case actions.IsIdle(current), actions.IsLooking(current):
	case current == component.ActionWalk, current == component.ActionRun, current == component.ActionSlide,
		current == component.ActionLand, current == component.ActionTeeter:
	default:
		return
	}

	axes := p.Axes()
	var floorOrigin mgl64.Vec3
	floorOrigin, a.extents = colliderViewExtents(p.World(), floor, p.Basis())
	noBackground := component.LayerSolid &^ component.LayerBackground

	probe := *p.Transform()
	probe.Origin = floorOrigin.Sub(axes.Up.Mul(a.extents.Y() + 2*mathz.Trixel))
	down := a.ctx.Space.CastPoint(probe, noBackground)

	probe.Origin = p.Origin().
		Add(axes.Facing.Mul(p.Size().X() + mathz.HalfTrixel)).
		Sub(axes.Up.Mul(p.Size().Y() + mathz.HalfTrixel))
	downSide := a.ctx.Space.CastPoint(probe, noBackground)

	state := p.State()
	switch {
	case a.checkStraight(floor, floorOrigin, down, downSide):
		state.HeldBody = floor
		p.SetAction(component.ActionLedgeLowerTo)
	case a.checkCorner(floor, down, downSide):
		state.HeldBody = floor
		a.ctx.WalkTo.Start(p, component.ActionCornerLowerTo, a.edge)
	}
}

func (a *LedgeLowerToAction) checkStraight(floor ecs.Entity, floorOrigin mgl64.Vec3, down, downSide *Hit) bool {
	p := a.ctx.Player
	input := a.ctx.Input()
	jumpDown := input.JustPressed(component.InputJump) && input.AnyPressed(component.InputDown)
	ledgeDown := p.IsOnLedge() && input.JustPressed(component.InputDown)
	if p.InBackground() || !jumpDown && !ledgeDown ||
		!LayerOf(p.World(), floor).Has(component.LayerTopOnly) ||
		!mathz.IsZeroApprox(input.Movement.X()) {
		return false
	}
	if down != nil && downSide != nil {
		// Blocked below: step off the front instead.
		axes := p.Axes()
		x := mathz.Scale(p.Origin(), axes.XMask)
		y := mathz.Scale(p.Origin(), axes.YMask).Sub(axes.Up.Mul(mathz.Trixel))
		z := mathz.Scale(floorOrigin, axes.ZMask).Add(axes.Forward)
		p.SetOrigin(x.Add(y).Add(z))
		p.SetVelocity(mgl64.Vec3{0, Snap, 0})
		return false
	}
	return true
}

func (a *LedgeLowerToAction) checkCorner(floor ecs.Entity, down, far *Hit) bool {
	if !a.ctx.Input().JustPressed(component.InputDown) {
		return false
	}
	return down == nil && far == nil && LayerOf(a.ctx.World, floor).Has(component.LayerTopOnly)
}

// edge is the spot on the floor's rim the player walks to before a corner
// lower.
func (a *LedgeLowerToAction) edge() mgl64.Vec3 {
	p := a.ctx.Player
	axes := p.Axes()
	held, _ := OriginOf(p.World(), p.State().HeldBody)
	return held.
		Add(axes.Facing.Mul(a.extents.X() - p.Size().X())).
		Add(axes.Up.Mul(a.extents.Y() + p.Size().Y()))
}

func (a *LedgeLowerToAction) OnEnter() {
	p := a.ctx.Player
	p.SetOrigin(p.Origin().Add(p.Axes().Forward.Mul(a.extents.Z())))
	p.SetVelocity(mgl64.Vec3{})
}

func (a *LedgeLowerToAction) OnAct(float64) {
	p := a.ctx.Player
	p.SetVelocity(mgl64.Vec3{})
	if !p.State().HeldBody.Valid() {
		p.SetAction(component.ActionIdle)
		return
	}
	if a.ctx.Anim().IsPlaying() {
		return
	}

	axes := p.Axes()
	held, _ := OriginOf(p.World(), p.State().HeldBody)
	y := mathz.Scale(held, axes.YMask).Add(axes.Up.Mul(a.extents.Y()))
	z := mathz.Scale(held, axes.ZMask).Add(axes.Forward.Mul(a.extents.Z() + p.Size().Z() + mathz.HalfTrixel))
	x := mathz.Scale(p.Origin(), axes.XMask)
	if p.Action() == component.ActionCornerLowerTo {
		x = x.Add(axes.Facing.Mul(p.Size().X() * 2))
	}
	p.SetOrigin(x.Add(y).Add(z))

	if p.Action() == component.ActionCornerLowerTo {
		p.SetFacing(p.Facing().Opposite())
		p.SetAction(component.ActionCornerGrab)
		anim := a.ctx.Anim()
		anim.Advance(anim.Length())
		return
	}
	p.SetAction(component.ActionShimmyBack)
}
