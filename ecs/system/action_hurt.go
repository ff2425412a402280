package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

func isBlackHole(w *ecs.World, e ecs.Entity) bool {
	return e.Valid() && ecs.Has(w, e, component.BlackHoleComponent.Kind())
}

// checkpointRespawn reports whether a respawn should go back to the
// checkpoint because the recorded respawn point is under the liquid.
func checkpointRespawn(ctx *ActionContext) bool {
	liquid, ok := ctx.Level.Liquid()
	return ok && ctx.Respawn.RespawnOrigin().Y() < liquid.Height-0.25
}

// HurtAction knocks the player back from something deadly and blinks it
// until it recovers or respawns.
type HurtAction struct {
	ctx *ActionContext

	doneFor       bool
	causedByActor bool
	elapsed       float64
}

func NewHurtAction(ctx *ActionContext) *HurtAction { return &HurtAction{ctx: ctx} }

func (a *HurtAction) Name() string { return "Hurt" }

func (a *HurtAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionHurt}
}

func (a *HurtAction) IsAllowed(t component.ActionType) bool { return t == component.ActionHurt }

func (a *HurtAction) TransitionAttempts() {
	p := a.ctx.Player
	switch p.Action() {
	case component.ActionDying, component.ActionHurt, component.ActionSuckedIn, component.ActionNone:
		return
	}
	hit := a.ctx.Space.CastRect(*p.Transform(), p.Size(), component.LayerDeadly, false).First
	if hit == nil || isBlackHole(p.World(), hit.Entity) {
		return
	}
	p.SetAction(component.ActionHurt)
	a.causedByActor = true
	a.doneFor = checkpointRespawn(a.ctx)
}

func (a *HurtAction) OnEnter() {
	p := a.ctx.Player
	state := p.State()
	state.HeldBody = 0
	a.ctx.DropCarried()
	a.elapsed = 0
	if a.causedByActor {
		knock := mgl64.Vec3{p.Facing().Opposite().Sign(), 1, 0}
		p.SetVelocity(knock.Mul(mathz.Trixel))
		return
	}
	p.SetVelocity(mgl64.Vec3{})
}

func (a *HurtAction) OnAct(delta float64) {
	t := a.ctx.Tuning.Hurt
	end := t.RecoverTime
	if a.doneFor {
		end = t.DoneForTime
	}
	p := a.ctx.Player
	if a.elapsed <= end {
		a.elapsed += delta
		p.State().BlinkSpeed = mathz.InCubic(a.elapsed/t.DoneForTime) * 1.5
		return
	}

	a.elapsed = 0
	a.causedByActor = false
	p.State().BlinkSpeed = 0
	if a.doneFor {
		requestRespawn(p.World(), p.Entity(), true)
		return
	}
	p.SetAction(component.ActionIdle)
}

// DiePanicAction flails the player through a long fall and respawns it
// once it lands or falls too far.
type DiePanicAction struct {
	ctx *ActionContext

	wasFollow  bool
	player     float64
	leaveFloor float64
	respawn    float64
	capEnd     float64
	hasCap     bool
}

func NewDiePanicAction(ctx *ActionContext) *DiePanicAction { return &DiePanicAction{ctx: ctx} }

func (a *DiePanicAction) Name() string { return "DiePanic" }

func (a *DiePanicAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionAirPanic, component.ActionDying}
}

func (a *DiePanicAction) IsAllowed(t component.ActionType) bool {
	return t == component.ActionAirPanic || t == component.ActionDying
}

// fallen is how far the player has dropped below the floor it left,
// corrected for the camera's vertical pan.
func (a *DiePanicAction) fallen() float64 {
	offset := 0.0
	if a.ctx.Camera != nil {
		offset = a.ctx.Camera.Offset().Y()
	}
	diff := a.player - offset
	return a.leaveFloor - a.ctx.Respawn.OffsetOnFloorLeave() - diff
}

func (a *DiePanicAction) TransitionAttempts() {
	p := a.ctx.Player
	up := p.Axes().Up
	a.player = up.Dot(p.Origin())
	a.leaveFloor = up.Dot(a.ctx.Respawn.FloorOriginOnLeave())
	a.respawn = up.Dot(a.ctx.Respawn.RespawnOrigin())

	if p.State().IgnoreDiePanic || p.OnFloor() || !p.Alive() || p.Action() == component.ActionNone ||
		p.Actions().PreventsFall(p.Action()) || p.Action() == component.ActionSuckedIn ||
		a.IsAllowed(p.Action()) {
		return
	}
	if a.fallen() > a.ctx.Tuning.DiePanic.FreeFallStart {
		p.SetAction(component.ActionAirPanic)
	}
}

func (a *DiePanicAction) OnEnter() {
	a.ctx.DropCarried()
	if a.ctx.Camera != nil {
		a.wasFollow = a.ctx.Camera.CanFollow()
		a.ctx.Camera.SetCanFollow(false)
	}
	a.capEnd, a.hasCap = a.ctx.Level.AirPanicCap()
}

func (a *DiePanicAction) OnEnd() {
	if a.ctx.Camera != nil {
		a.ctx.Camera.SetCanFollow(a.wasFollow)
	}
}

func (a *DiePanicAction) OnAct(float64) {
	p := a.ctx.Player
	t := a.ctx.Tuning.DiePanic
	a.player = p.Axes().Up.Dot(p.Origin())
	followEnd := a.fallen()
	fallEnd := t.FreeFallEnd
	if a.hasCap {
		fallEnd = math.Min(t.FreeFallEnd, a.respawn-a.capEnd)
	}

	if cam := a.ctx.Camera; cam != nil {
		aboveCap := !a.hasCap || cam.Origin().Y()-cam.Size()/2 > a.capEnd+1
		cam.SetCanFollow(followEnd < t.CamFollowEnd && aboveCap)
	}

	if !p.OnFloor() {
		if followEnd > fallEnd {
			requestRespawn(p.World(), p.Entity(), false)
		}
		return
	}
	if p.Action() == component.ActionAirPanic {
		p.SetAction(component.ActionDying)
		p.SetVelocity(mgl64.Vec3{0, -1, 0})
		return
	}
	if p.Action() == component.ActionDying && !a.ctx.Anim().IsPlaying() {
		requestRespawn(p.World(), p.Entity(), false)
	}
}

// CrushAction squashes the player between a moving platform and a solid
// and respawns it.
type CrushAction struct {
	ctx *ActionContext

	elapsed float64
	origin  mgl64.Vec3
}

func NewCrushAction(ctx *ActionContext) *CrushAction { return &CrushAction{ctx: ctx} }

func (a *CrushAction) Name() string { return "Crush" }

func (a *CrushAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionCrushHorz, component.ActionCrushVert}
}

func (a *CrushAction) IsAllowed(t component.ActionType) bool {
	return t == component.ActionCrushHorz || t == component.ActionCrushVert
}

func movingMover(w *ecs.World, e ecs.Entity) bool {
	if !e.Valid() {
		return false
	}
	m, ok := ecs.Get(w, e, component.MoverComponent.Kind())
	return ok && m.Active && !mathz.VecIsZeroApprox(m.Delta)
}

func (a *CrushAction) TransitionAttempts() {
	p := a.ctx.Player
	if !p.Alive() || a.IsAllowed(p.Action()) || p.Action() == component.ActionNone {
		return
	}
	w := p.World()
	body := p.Body()
	if body.Floor.Hit() && body.Ceiling.Hit() &&
		(movingMover(w, body.Floor.Collider) || movingMover(w, body.Ceiling.Collider)) {
		p.SetAction(component.ActionCrushVert)
		return
	}
	if !body.Wall.Hit() || !movingMover(w, body.Wall.Collider) {
		return
	}
	wallOrigin, _ := OriginOf(w, body.Wall.Collider)
	axes := p.Axes()
	away := -mathz.Sign(wallOrigin.Sub(p.Origin()).Dot(axes.Right))
	probe := *p.Transform()
	probe.Origin = probe.Origin.Add(axes.Right.Mul(away * (p.Size().X() + mathz.HalfTrixel)))
	if hit := a.ctx.Space.CastPoint(probe, component.LayerSolid); hit != nil && hit.Entity != body.Wall.Collider {
		p.SetAction(component.ActionCrushHorz)
	}
}

func (a *CrushAction) OnEnter() {
	p := a.ctx.Player
	p.SetVelocity(mgl64.Vec3{})
	a.origin = p.Origin()
	a.elapsed = 0
	a.ctx.DropCarried()
}

func (a *CrushAction) OnAct(delta float64) {
	p := a.ctx.Player
	t := a.ctx.Tuning.Crush
	p.SetOrigin(a.origin)
	a.ctx.Anim().SetSpeed(t.AnimSpeed)

	factor := t.VertFactor
	if p.Action() == component.ActionCrushHorz {
		factor = t.HorzFactor
	}
	before := a.elapsed
	a.elapsed += delta
	if before <= t.Duration*factor && a.elapsed > t.Duration*factor {
		requestRespawn(p.World(), p.Entity(), false)
	}
}

// SuckedInAction pulls the player into a black hole.
type SuckedInAction struct {
	ctx *ActionContext

	requested bool
}

func NewSuckedInAction(ctx *ActionContext) *SuckedInAction { return &SuckedInAction{ctx: ctx} }

func (a *SuckedInAction) Name() string { return "SuckedIn" }

func (a *SuckedInAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionSuckedIn}
}

func (a *SuckedInAction) IsAllowed(t component.ActionType) bool { return t == component.ActionSuckedIn }

func (a *SuckedInAction) TransitionAttempts() {
	p := a.ctx.Player
	switch p.Action() {
	case component.ActionSuckedIn, component.ActionOpenTreasure, component.ActionFindTreasure,
		component.ActionNone:
		return
	}
	if p.Actions().IsEnteringDoor(p.Action()) {
		return
	}
	hit := a.ctx.Space.CastPoint(*p.Transform(), component.LayerDeadly)
	if hit == nil || !hit.Collider.Layer.Has(component.LayerDeadly) || !isBlackHole(p.World(), hit.Entity) {
		return
	}
	axes := p.Axes()
	p.SetAction(component.ActionSuckedIn)
	p.SetOrigin(mathz.Scale(p.Origin(), axes.XYMask).
		Add(mathz.Scale(hit.Transform.Origin, axes.ZMask)).
		Add(axes.Forward))
}

func (a *SuckedInAction) OnEnter() {
	p := a.ctx.Player
	p.SetFacing(p.Facing().Opposite())
	p.Body().Floor = component.CollisionInfo{}
	p.SetVelocity(mathz.SignVec(p.Velocity()).Mul(0.5))
	a.ctx.DropCarried()
	a.requested = false
}

func (a *SuckedInAction) OnAct(float64) {
	if a.requested || a.ctx.Anim().IsPlaying() {
		return
	}
	a.requested = true
	requestRespawn(a.ctx.World, a.ctx.Player.Entity(), false)
}
