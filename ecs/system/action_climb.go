package system

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

// blendMask keeps from where mask is zero and takes to where it is one.
func blendMask(from, to, mask mgl64.Vec3) mgl64.Vec3 {
	return mathz.Scale(from, mathz.One.Sub(mask)).Add(mathz.Scale(to, mask))
}

var climbActions = []component.ActionType{
	component.ActionClimbFront, component.ActionClimbBack, component.ActionClimbSide,
	component.ActionClimbFrontSideways, component.ActionClimbBackSideways,
}

// approachOrder is the cycle the climb approach moves through when the
// view rotates a step.
var approachOrder = []component.Direction{
	component.DirRight, component.DirBackward, component.DirLeft, component.DirForward,
}

// ClimbAction moves the player on ladders and vines. The approach is the
// side of the climbable the player holds on to, relative to the view.
type ClimbAction struct {
	ctx *ActionContext

	approach component.Direction
	layer    component.PhysicsLayer
	single   bool

	unsubscribe []func()
}

func NewClimbAction(ctx *ActionContext) *ClimbAction {
	a := &ClimbAction{ctx: ctx, approach: component.DirNone}
	events := ctx.World.Events()
	a.unsubscribe = append(a.unsubscribe,
		events.Subscribe(ecs.EventRotating, a.onRotating),
		events.Subscribe(ecs.EventRotated, a.onRotated),
	)
	return a
}

func (a *ClimbAction) Close() {
	for _, fn := range a.unsubscribe {
		fn()
	}
	a.unsubscribe = nil
}

func (a *ClimbAction) Name() string { return "Climb" }

func (a *ClimbAction) Claims() []component.ActionType { return climbActions }

func (a *ClimbAction) IsAllowed(t component.ActionType) bool {
	return slices.Contains(climbActions, t)
}

func (a *ClimbAction) onRotated(ecs.Event) {
	cam := a.ctx.Camera
	if cam == nil || !a.IsAllowed(a.ctx.Player.Action()) || cam.LastOrthogonal() == cam.Orthogonal() {
		return
	}
	dist := cam.Orthogonal().DistanceTo(cam.LastOrthogonal())
	a.approach = RemapApproach(a.approach, dist)
	a.refreshAction(true)
}

// RemapApproach turns a climb approach by dist view steps.
func RemapApproach(approach component.Direction, dist int) component.Direction {
	i := slices.Index(approachOrder, approach)
	if i < 0 {
		return approach
	}
	return approachOrder[mathz.PosMod(i+dist, len(approachOrder))]
}

func (a *ClimbAction) onRotating(e ecs.Event) {
	p := a.ctx.Player
	if !a.IsAllowed(p.Action()) || !mathz.IsEqualApproxTolerance(e.Step, 0.5, 0.05) {
		return
	}
	if p.Action() == component.ActionClimbBack || p.Action() == component.ActionClimbBackSideways {
		p.SetInBackground(false)
	}
}

func (a *ClimbAction) TransitionAttempts() {
	p := a.ctx.Player
	actions := p.Actions()
	current := p.Action()
	switch {
	case actions.IsIdle(current), actions.IsLooking(current):
	case slices.Contains([]component.ActionType{
		component.ActionTeeter, component.ActionWalk, component.ActionRun, component.ActionJump,
		component.ActionLiftTrile, component.ActionFall, component.ActionBounce, component.ActionFly,
		component.ActionDropTrile, component.ActionSlide, component.ActionLand,
		component.ActionCornerGrab, component.ActionShimmyBack,
	}, current):
	default:
		return
	}

	hit, approach := a.onClimbable(component.LayerNone)
	a.approach = approach
	state := p.State()
	input := a.ctx.Input()
	onLedge := actions.IsOnLedge(current)
	if approach == component.DirNone || state.ChangeArea.Valid() || hit == nil {
		return
	}
	upToClimb := input.Pressed(component.InputUp) && !onLedge
	sideways := approach == component.DirLeft || approach == component.DirRight
	jumpOnSide := !p.OnFloor() && sideways && mathz.Sign(input.Movement.X()) == approach.Sign()
	downFromLedge := onLedge && input.AnyPressed(component.InputDown)
	if !upToClimb && !jumpOnSide && !downFromLedge {
		return
	}

	state.HeldBody = hit.Entity
	switch approach {
	case component.DirLeft, component.DirRight:
		state.NextAction = component.ActionClimbSide
	case component.DirBackward:
		state.NextAction = component.ActionClimbBack
	case component.DirForward:
		state.NextAction = component.ActionClimbFront
	}
	a.layer = hit.Collider.Layer &^ component.LayerBackground

	if a.layer == component.LayerLadder {
		a.prepareLadder()
	} else {
		a.prepareVine(onLedge)
	}
	if sideways {
		p.SetFacing(approach)
	}
}

func (a *ClimbAction) prepareVine(onLedge bool) {
	p := a.ctx.Player
	state := p.State()
	if onLedge {
		next := state.NextAction
		state.NextAction = component.ActionNone
		p.SetAction(next)
		return
	}
	p.SetVelocity(mgl64.Vec3{})
	if a.approach == component.DirBackward {
		p.SetAction(component.ActionJumpToClimb)
	} else {
		p.SetAction(component.ActionJumpToClimbSide)
	}
}

func (a *ClimbAction) prepareLadder() {
	p := a.ctx.Player
	if !p.OnFloor() {
		if a.approach == component.DirBackward {
			p.SetAction(component.ActionJumpToClimb)
		} else {
			p.SetAction(component.ActionJumpToClimbSide)
		}
		return
	}

	var next component.ActionType
	switch a.approach {
	case component.DirBackward:
		next = component.ActionIdleToClimbBack
	case component.DirForward:
		next = component.ActionIdleToClimbFront
	default:
		next = component.ActionIdleToClimbSide
	}

	probe := *p.Transform()
	probe.Origin = a.destination()
	if a.ctx.Space.CastPoint(probe, component.LayerLadder) != nil {
		a.ctx.WalkTo.Start(p, next, a.destination)
		return
	}
	p.SetAction(next)
	p.SetOrigin(p.Origin().Sub(p.Axes().Up.Mul(a.ctx.Tuning.Climb.OffsetY)))
}

// destination is the spot in front of the held ladder at the player's
// height.
func (a *ClimbAction) destination() mgl64.Vec3 {
	p := a.ctx.Player
	axes := p.Axes()
	held, _ := OriginOf(p.World(), p.State().HeldBody)
	return mathz.Scale(p.Origin(), axes.YMask).Add(mathz.Scale(held, axes.XZMask))
}

func (a *ClimbAction) OnEnter() {
	p := a.ctx.Player
	axes := p.Axes()
	if held, ok := OriginOf(p.World(), p.State().HeldBody); ok {
		p.SetOrigin(mathz.Scale(p.Origin(), axes.XYMask).Add(mathz.Scale(held, axes.ZMask)))
	}
	if a.layer == component.LayerNone {
		a.layer = LayerOf(p.World(), p.State().HeldBody) &^ component.LayerBackground
	}
	if a.layer == component.LayerLadder {
		a.ctx.Emit(ecs.EventClimbedLadder)
	} else {
		a.ctx.Emit(ecs.EventClimbedVine)
	}
}

func (a *ClimbAction) OnEnd() {
	a.ctx.Anim().SetLoop(false)
}

func (a *ClimbAction) OnAct(float64) {
	p := a.ctx.Player
	hit, approach := a.onClimbable(a.layer)
	if hit == nil || approach == component.DirNone {
		p.State().HeldBody = 0
		p.SetAction(component.ActionIdle)
		return
	}
	p.State().HeldBody = hit.Entity

	a.refreshAction(false)
	a.refreshDirection()

	if a.layer == component.LayerLadder {
		a.actLadder(hit)
	} else if !a.actVine(hit, approach) {
		return
	}
	if a.IsAllowed(p.Action()) {
		a.updateAnimation()
	}
}

func (a *ClimbAction) actVine(hit *Hit, approach component.Direction) bool {
	p := a.ctx.Player
	state := p.State()
	input := a.ctx.Input()
	axes := p.Axes()

	if (a.approach == component.DirBackward || a.approach == component.DirForward) &&
		(approach == component.DirRight || approach == component.DirLeft) {
		a.approach = approach
	}

	if p.Action() == component.ActionClimbSide && math.Abs(input.Movement.X()) > 0.5 {
		offset := axes.Right.Mul(mathz.Sign(input.Movement.X()))
		probe := *p.Transform()
		probe.Origin = p.Origin().Add(offset)
		if a.ctx.Space.CastRect(probe, p.Size(), component.LayerVine, false).First != nil {
			p.SetOrigin(p.Origin().Add(offset))
			next, nextApproach := a.onClimbable(a.layer)
			a.approach = nextApproach
			state.HeldBody = 0
			if next != nil {
				state.HeldBody = next.Entity
				hit = next
			}
		}
	}

	if !state.HeldBody.Valid() || a.approach == component.DirNone {
		p.SetAction(component.ActionIdle)
		return false
	}

	var mask mgl64.Vec3
	switch a.approach {
	case component.DirRight, component.DirLeft:
		mask = axes.XMask
		if a.ctx.Space.CastRect(*p.Transform(), p.Size(), component.LayerVine, false).First != nil {
			mask = axes.XZMask
		}
	case component.DirBackward, component.DirForward:
		mask = axes.ZMask
	}
	p.SetOrigin(blendMask(p.Origin(), hit.Transform.Origin, mask))

	speed := a.ctx.Tuning.Move.DefaultSpeed * a.ctx.Tuning.Climb.VineSpeed
	v := mgl64.Vec3{input.Movement.X() * speed, input.Movement.Y() * speed, 0}
	if p.Action() != component.ActionClimbSide {
		v = v.Mul(0.75)
	}
	v, top := a.checkNextClimbable(hit, v)
	p.SetVelocity(v)
	if !top {
		return true
	}

	switch a.approach {
	case component.DirBackward, component.DirForward:
		state.HeldBody = 0
		p.SetOrigin(p.Origin().Add(mathz.WorldUp.Mul(0.5)))
		p.SetAction(component.ActionFall)
	case component.DirLeft, component.DirRight:
		probe := *p.Transform()
		probe.Origin = probe.Origin.Add(axes.Facing.Mul(p.Size().X()))
		floor := a.ctx.Space.CastRect(probe, p.Size(), component.LayerTopOnly, false).First
		if floor == nil {
			state.HeldBody = 0
			p.SetAction(component.ActionFall)
			return false
		}
		state.HeldBody = floor.Entity
		p.SetAction(component.ActionCornerGrab)
		p.SetVelocity(mgl64.Vec3{})
		size := component.ViewExtents(component.WorldExtents(floor.Collider.Extents, floor.Transform.Basis), p.Basis())
		p.SetOrigin(floor.Transform.Origin.
			Add(axes.Up.Mul(size.Y())).
			Sub(axes.Facing.Mul(size.X() + p.Size().X())))
	}
	return false
}

func (a *ClimbAction) actLadder(hit *Hit) {
	p := a.ctx.Player
	axes := p.Axes()
	input := a.ctx.Input()

	p.SetOrigin(mathz.Scale(p.Origin(), axes.YMask).Add(mathz.Scale(hit.Transform.Origin, axes.XZMask)))

	speed := a.ctx.Tuning.Move.DefaultSpeed * a.ctx.Tuning.Climb.LadderSpeed
	v, top := a.checkNextClimbable(hit, mgl64.Vec3{0, input.Movement.Y() * speed, 0})
	p.SetVelocity(v)
	if !top {
		return
	}
	switch a.approach {
	case component.DirRight, component.DirLeft:
		if input.AnyPressed(component.InputLeft) || input.AnyPressed(component.InputRight) {
			p.SetAction(component.ActionClimbOver)
		}
	case component.DirBackward, component.DirForward:
		p.State().HeldBody = 0
		p.SetAction(component.ActionFall)
		p.SetOrigin(p.Origin().Add(mathz.WorldUp.Mul(0.5)))
	}
}

// updateAnimation loops the climb clip while the player moves and rewinds
// it when it stops.
func (a *ClimbAction) updateAnimation() {
	anim := a.ctx.Anim()
	v := a.ctx.Player.Velocity()
	if v.LenSqr() > 0 {
		anim.SetLoop(true)
		if !anim.IsPlaying() {
			anim.Play(anim.Current())
			anim.SetSpeed(1)
		}
		return
	}
	anim.SetLoop(false)
	if anim.IsPlaying() {
		anim.Seek(0)
		anim.SetSpeed(0)
	}
}

// onClimbable finds the climbable in front of the player and the side the
// player approaches it from. A ladder faces a quarter turn off its basis.
func (a *ClimbAction) onClimbable(layer component.PhysicsLayer) (*Hit, component.Direction) {
	p := a.ctx.Player
	mask := component.LayerClimbable
	if layer != component.LayerNone {
		mask = layer
	}
	res := a.ctx.Space.CastRect(*p.Transform(), p.Size(), mask, false)
	a.single = res.Far == nil
	if res.Near == nil {
		return nil, component.DirNone
	}
	area := res.Near
	playerView := component.OrthogonalOf(p.Basis())
	areaView := component.OrthogonalOf(area.Transform.Basis)
	if area.Collider.Layer&^component.LayerBackground == component.LayerLadder {
		areaView = areaView.Rotated(1)
	}
	return area, approachFrom(playerView.DistanceTo(areaView), p.InBackground())
}

func approachFrom(distance int, inBackground bool) component.Direction {
	switch distance {
	case 0:
		return component.DirBackward
	case 1:
		return component.DirLeft
	case -1:
		return component.DirRight
	}
	if inBackground {
		return component.DirForward
	}
	return component.DirNone
}

// checkNextClimbable stops the climb at the edge of the last climbable.
// top is set when the player climbs past the top of it.
func (a *ClimbAction) checkNextClimbable(held *Hit, v mgl64.Vec3) (mgl64.Vec3, bool) {
	if v.LenSqr() <= 0 {
		return mgl64.Vec3{}, false
	}
	p := a.ctx.Player
	axes := p.Axes()
	sign := mathz.SignVec(v)

	probe := *p.Transform()
	probe.Origin = probe.Origin.
		Add(axes.Right.Mul(sign.X() * p.Size().X())).
		Add(axes.Up.Mul(sign.Y() * p.Size().Y()))
	nextLayer := component.LayerNone
	if next := a.ctx.Space.CastPoint(probe, component.LayerClimbable); next != nil {
		nextLayer = next.Collider.Layer
	}
	if nextLayer.Intersects(component.LayerClimbable) {
		return v, false
	}

	extents := component.ViewExtents(component.WorldExtents(held.Collider.Extents, held.Transform.Basis), p.Basis())
	top := false
	playerY := p.Origin().Dot(axes.Up)
	heldY := held.Transform.Origin.Dot(axes.Up)
	if !mathz.IsZeroApprox(sign.Y()) && math.Abs(heldY-playerY) > extents.Y() && a.single {
		top = sign.Y() > 0
		v[1] = 0
	}
	playerX := p.Origin().Dot(axes.Right)
	heldX := held.Transform.Origin.Dot(axes.Right)
	if !mathz.IsZeroApprox(sign.X()) && math.Abs(heldX-playerX) > extents.X() &&
		nextLayer != component.LayerVine && a.single {
		v[0] = 0
	}
	return v, top
}

func (a *ClimbAction) refreshAction(force bool) {
	p := a.ctx.Player
	move := a.ctx.Input().Movement
	if !force && mathz.IsZeroApprox(move.X()) && mathz.IsZeroApprox(move.Y()) {
		return
	}
	vertical := !mathz.IsZeroApprox(move.Y())
	switch a.approach {
	case component.DirRight, component.DirLeft:
		p.SetAction(component.ActionClimbSide)
	case component.DirBackward:
		if vertical {
			p.SetAction(component.ActionClimbBack)
		} else {
			p.SetAction(component.ActionClimbBackSideways)
		}
	case component.DirForward:
		if vertical {
			p.SetAction(component.ActionClimbFront)
		} else {
			p.SetAction(component.ActionClimbFrontSideways)
		}
	}
}

func (a *ClimbAction) refreshDirection() {
	p := a.ctx.Player
	if p.Action() == component.ActionClimbSide {
		p.SetFacing(a.approach)
		return
	}
	if x := a.ctx.Input().Movement.X(); !mathz.IsZeroApprox(x) {
		p.SetFacing(component.DirectionFrom(x))
	}
}

// ClimbTransitionAction plays the step from the ground or the air onto a
// climbable and hands over to the climb it prepared.
type ClimbTransitionAction struct {
	ctx *ActionContext

	sinceGrabbed float64
	grabbing     bool
}

func NewClimbTransitionAction(ctx *ActionContext) *ClimbTransitionAction {
	return &ClimbTransitionAction{ctx: ctx}
}

func (a *ClimbTransitionAction) Name() string { return "ClimbTransition" }

var climbTransitionActions = []component.ActionType{
	component.ActionIdleToClimbFront, component.ActionIdleToClimbSide, component.ActionIdleToClimbBack,
	component.ActionJumpToClimb, component.ActionJumpToClimbSide,
}

func (a *ClimbTransitionAction) Claims() []component.ActionType { return climbTransitionActions }

func (a *ClimbTransitionAction) IsAllowed(t component.ActionType) bool {
	return slices.Contains(climbTransitionActions, t)
}

func (a *ClimbTransitionAction) OnEnter() {
	a.ctx.Player.SetVelocity(mgl64.Vec3{})
	a.sinceGrabbed = 0
	a.grabbing = true
}

func (a *ClimbTransitionAction) OnAct(delta float64) {
	p := a.ctx.Player
	state := p.State()
	tuning := a.ctx.Tuning.Climb
	isVine := LayerOf(p.World(), state.HeldBody).Has(component.LayerVine)

	if a.grabbing {
		limit := math.MaxFloat64
		switch p.Action() {
		case component.ActionJumpToClimb:
			limit = tuning.TransitionBack
		case component.ActionJumpToClimbSide:
			limit = tuning.TransitionSide
		}
		a.sinceGrabbed += delta
		if a.sinceGrabbed >= limit {
			a.grabbing = false
			p.SetVelocity(mgl64.Vec3{})
		}
	}

	next := state.NextAction
	nextIsLadder := !isVine && (next == component.ActionClimbFront || next == component.ActionClimbBack || next == component.ActionClimbSide)
	if nextIsLadder || next == component.ActionClimbSide {
		axes := p.Axes()
		held, _ := OriginOf(p.World(), state.HeldBody)
		to := mathz.Scale(p.Origin(), axes.YMask).Add(mathz.Scale(held, axes.XZMask))
		p.SetOrigin(mathz.LerpVec(p.Origin(), to, mathz.InQuad(Progress(a.ctx.Anim()))))
	}

	if v := p.Velocity(); v.Y() > 0 {
		v[1] -= 10.0 / 3.0 * delta
		p.SetVelocity(v)
	}

	if !a.ctx.Anim().IsPlaying() {
		if next == component.ActionNone {
			panic("climb transition: no next action")
		}
		state.NextAction = component.ActionNone
		p.SetAction(next)
	}
}

// ClimbOverAction pulls the player from the top of a ladder onto the
// floor beside it.
type ClimbOverAction struct {
	ctx *ActionContext
}

func NewClimbOverAction(ctx *ActionContext) *ClimbOverAction { return &ClimbOverAction{ctx: ctx} }

func (a *ClimbOverAction) Name() string { return "ClimbOver" }

func (a *ClimbOverAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionClimbOver}
}

func (a *ClimbOverAction) IsAllowed(t component.ActionType) bool { return t == component.ActionClimbOver }

func (a *ClimbOverAction) OnEnter() {
	p := a.ctx.Player
	origin := mathz.SnapToTrixel(p.Origin()).Add(p.Axes().Facing.Mul(a.ctx.Tuning.Climb.ClimbOverOffset))
	p.SetOrigin(origin)
	p.SetVelocity(mgl64.Vec3{})
	a.ctx.Emit(ecs.EventClimbedOverLadder)
}

func (a *ClimbOverAction) OnAct(float64) {
	if a.ctx.Anim().IsPlaying() {
		return
	}
	p := a.ctx.Player
	p.State().HeldBody = 0
	p.SetAction(component.ActionIdle)
	p.SetOrigin(p.Origin().Add(p.Axes().Facing.Mul(2 * mathz.Trixel)))
	p.SetVelocity(mgl64.Vec3{0, -1, 0})
}
