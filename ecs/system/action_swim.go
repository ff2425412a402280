package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

// requestRespawn asks the respawn system to put the player back at the
// end of the tick.
func requestRespawn(w *ecs.World, player ecs.Entity, atCheckpoint bool) {
	_ = ecs.Add(w, player, component.RespawnRequestComponent.Kind(), &component.RespawnRequest{AtCheckpoint: atCheckpoint})
}

var swimActions = []component.ActionType{component.ActionFloat, component.ActionSwim, component.ActionHurtSwim}

// SwimAction floats the player on the level's liquid and paddles it
// along the surface.
type SwimAction struct {
	ctx *ActionContext

	pulse  float64
	helper *MoveHelper
}

func NewSwimAction(ctx *ActionContext) *SwimAction {
	speed := ctx.Tuning.Swim.SwimFactor * ctx.Tuning.Move.DefaultSpeed
	return &SwimAction{
		ctx:    ctx,
		helper: NewMoveHelper(speed, speed, 1, ctx.Tuning.Move.RunInputThreshold),
	}
}

func (a *SwimAction) Name() string { return "Swim" }

func (a *SwimAction) Claims() []component.ActionType { return swimActions }

func (a *SwimAction) IsAllowed(t component.ActionType) bool { return a.ctx.Player.Actions().IsSwimming(t) }

// surface is the height the player floats at, if the level has a liquid.
func (a *SwimAction) surface() (float64, component.LiquidType, bool) {
	liquid, ok := a.ctx.Level.Liquid()
	if !ok {
		return 0, 0, false
	}
	return liquid.Height - liquid.Type.Submersion(), liquid.Type, true
}

func (a *SwimAction) TransitionAttempts() {
	p := a.ctx.Player
	switch p.Action() {
	case component.ActionSwim, component.ActionDying, component.ActionSink, component.ActionFloat,
		component.ActionHurtSwim, component.ActionSuckedIn, component.ActionJump:
		return
	}
	height, _, ok := a.surface()
	if !ok || p.Origin().Y() >= height {
		return
	}
	a.ctx.Respawn.Record(false)
	p.SetAction(component.ActionFloat)
	p.SetVelocity(mathz.Scale(p.Velocity(), mgl64.Vec3{1, 0.25, 1}))
}

func (a *SwimAction) OnEnter() {
	a.ctx.DropCarried()
}

func (a *SwimAction) OnAct(delta float64) {
	p := a.ctx.Player
	height, kind, ok := a.surface()
	if !ok {
		p.SetAction(component.ActionFall)
		return
	}
	tuning := a.ctx.Tuning.Swim

	if !mathz.IsEqualApprox(p.Origin().Y(), height) {
		if kind.Hazardous() {
			p.SetAction(component.ActionSink)
			return
		}
		diff := height - p.Origin().Y()
		v := p.GlobalVelocity().Add(mathz.WorldUp.Mul(tuning.UpFactor * delta))
		if diff > tuning.DiffFactor {
			v = v.Add(mathz.WorldUp.Mul(diff * tuning.StableFactor))
		} else {
			axes := p.Axes()
			p.SetOrigin(mathz.Scale(p.Origin(), axes.XZMask).Add(axes.Up.Mul(height)))
		}
		p.SetGlobalVelocity(v)
	} else if math.Abs(p.Velocity().Y()) > tuning.MaxVelocity || p.OnFloor() {
		p.SetAction(component.ActionFall)
		return
	}

	a.pulse -= delta
	move := a.ctx.Input().Movement.X()
	if mathz.IsZeroApprox(move) && p.Action() != component.ActionHurtSwim {
		p.SetAction(component.ActionFloat)
		return
	}
	if p.Action() != component.ActionHurtSwim {
		p.SetAction(component.ActionSwim)
	}
	if a.pulse <= 0 {
		a.pulse = tuning.PulseDelay
	}

	v := p.Velocity()
	v[0] = a.helper.Update(mathz.InSine(a.pulse), move, v.X())
	p.SetVelocity(v)

	// Paddling into a pickup shoves it along.
	wall := p.Body().Wall.Collider
	if _, isPickup := pickupOf(p.World(), wall); isPickup {
		p.SetVelocity(mathz.Scale(p.Velocity(), mgl64.Vec3{0.9, 1, 0.9}))
		if body, ok := LookupPhysicsBody(p.World(), wall); ok {
			push := mathz.Scale(p.GlobalVelocity(), p.Axes().XZMask)
			body.SetGlobalVelocity(body.GlobalVelocity().Add(push))
		}
	}
}

func (a *SwimAction) OnEnd() {
	a.pulse = 0
	p := a.ctx.Player
	switch p.Action() {
	case component.ActionHurt, component.ActionSink, component.ActionJump, component.ActionFly:
		return
	}
	if _, ok := a.ctx.Level.Liquid(); ok {
		p.SetVelocity(mathz.Scale(p.Velocity(), mgl64.Vec3{1, 0.5, 1}))
	}
}

// SinkAction drowns the player in a hazardous liquid.
type SinkAction struct {
	ctx *ActionContext

	elapsed   float64
	doneFor   bool
	requested bool
}

func NewSinkAction(ctx *ActionContext) *SinkAction { return &SinkAction{ctx: ctx} }

func (a *SinkAction) Name() string { return "Sink" }

func (a *SinkAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionSink}
}

func (a *SinkAction) IsAllowed(t component.ActionType) bool { return t == component.ActionSink }

func (a *SinkAction) OnEnter() {
	p := a.ctx.Player
	a.ctx.DropCarried()
	p.SetVelocity(mgl64.Vec3{0, -0.005, 0})
	a.elapsed = 0
	a.requested = false
	a.doneFor = false
	// A respawn point under the surface would sink again: go back to the
	// checkpoint instead.
	if liquid, ok := a.ctx.Level.Liquid(); ok {
		a.doneFor = a.ctx.Respawn.RespawnOrigin().Y() < liquid.Height-0.25
		a.ctx.Log.Debug().Str("liquid", liquid.Type.String()).Bool("checkpoint", a.doneFor).Msg("player sinking")
	}
}

func (a *SinkAction) OnAct(delta float64) {
	end := a.ctx.Tuning.Hurt.RecoverTime
	if a.doneFor {
		end = a.ctx.Tuning.Hurt.DoneForTime
	}
	a.elapsed += delta
	p := a.ctx.Player
	if a.elapsed <= end {
		p.State().BlinkSpeed = mathz.InCubic(a.elapsed/end) * 1.5
		return
	}
	if a.requested {
		return
	}
	a.requested = true
	p.State().BlinkSpeed = 0
	requestRespawn(p.World(), p.Entity(), a.doneFor)
}
