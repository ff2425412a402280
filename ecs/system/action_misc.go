package system

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

// ReadListenAction keeps the player still while a sign or a character
// talks. TalkCancel closes it once it has been open a moment.
type ReadListenAction struct {
	ctx *ActionContext

	sinceActive float64
}

func NewReadListenAction(ctx *ActionContext) *ReadListenAction { return &ReadListenAction{ctx: ctx} }

func (a *ReadListenAction) Name() string { return "ReadListen" }

func (a *ReadListenAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionReadListen}
}

func (a *ReadListenAction) IsAllowed(t component.ActionType) bool { return t == component.ActionReadListen }

func (a *ReadListenAction) OnEnter() {
	a.sinceActive = 0
	a.ctx.Emit(ecs.EventReadHeard)
}

func (a *ReadListenAction) OnAct(delta float64) {
	a.sinceActive += delta
	if a.sinceActive >= 0.25 && a.ctx.Input().Pressed(component.InputTalkCancel) {
		a.ctx.Player.SetAction(component.ActionIdle)
	}
}

var firstPersonFrom = []component.ActionType{
	component.ActionWalk, component.ActionRun, component.ActionSlide, component.ActionLand, component.ActionTeeter,
}

// FirstPersonAction looks around from the player's eyes. The view yaws
// and pitches with the mouse or the right stick and the player walks
// relative to it.
type FirstPersonAction struct {
	ctx *ActionContext

	// yaw and pitch are in degrees.
	yaw      float64
	pitch    float64
	velocity mgl64.Vec3
}

func NewFirstPersonAction(ctx *ActionContext) *FirstPersonAction {
	return &FirstPersonAction{ctx: ctx}
}

func (a *FirstPersonAction) Name() string { return "FirstPerson" }

func (a *FirstPersonAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionFirstPerson}
}

func (a *FirstPersonAction) IsAllowed(t component.ActionType) bool { return t == component.ActionFirstPerson }

// View returns the look yaw and pitch in degrees and the field of view.
func (a *FirstPersonAction) View() (yaw, pitch, fov float64) {
	return a.yaw, a.pitch, a.ctx.Tuning.FirstPerson.FOV
}

func (a *FirstPersonAction) TransitionAttempts() {
	p := a.ctx.Player
	if !a.ctx.Input().JustPressed(component.InputFpsToggle) {
		return
	}
	current := p.Action()
	switch {
	case current == component.ActionFirstPerson:
		p.SetAction(component.ActionIdle)
	case p.Actions().IsIdle(current) && !p.State().CarriedBody.Valid(),
		p.Actions().IsLooking(current),
		slices.Contains(firstPersonFrom, current):
		p.SetAction(component.ActionFirstPerson)
	}
}

func (a *FirstPersonAction) OnEnter() {
	a.yaw, a.pitch = 0, 0
	a.velocity = mgl64.Vec3{}
	a.ctx.Emit(ecs.EventEnterFirstPersonMode)
}

func (a *FirstPersonAction) OnEnd() {
	a.ctx.Emit(ecs.EventExitFirstPersonMode)
	a.ctx.Player.SetVelocity(mgl64.Vec3{})
}

func (a *FirstPersonAction) OnAct(delta float64) {
	a.look()
	a.move(delta)
}

func (a *FirstPersonAction) look() {
	t := a.ctx.Tuning.FirstPerson
	input := a.ctx.Input()
	pitch := -input.Mouse.Y()*t.MouseSensitivity + input.FreeLook.Y()*t.JoySensitivity
	yaw := -input.Mouse.X()*t.MouseSensitivity - input.FreeLook.X()*t.JoySensitivity
	a.pitch = math.Max(-t.RotationLimit, math.Min(t.RotationLimit, a.pitch+pitch))
	a.yaw = math.Mod(a.yaw+yaw, 360)
}

func (a *FirstPersonAction) move(delta float64) {
	p := a.ctx.Player
	t := a.ctx.Tuning.FirstPerson
	basis := mgl64.Rotate3DY(mgl64.DegToRad(a.yaw)).Mul3(p.Basis())
	view := component.NewAxes(basis, 1)
	up := p.Axes().Up
	flat := mathz.One.Sub(up)

	movement := a.ctx.Input().Movement
	dir := view.Right.Mul(movement.X()).Sub(view.Forward.Mul(movement.Y()))
	dir = mathz.Scale(dir, flat)
	if !mathz.VecIsZeroApprox(dir) {
		dir = dir.Normalize()
	}

	horizontal := mathz.Scale(a.velocity, flat)
	accel := t.Deceleration
	if dir.Dot(horizontal) > 0 {
		accel = t.Acceleration
	}
	target := dir.Mul(a.ctx.Tuning.Move.DefaultSpeed * a.ctx.Tuning.Move.WalkFactor)
	a.velocity = mathz.LerpVec(horizontal, target, math.Min(1, delta*accel)).
		Add(up.Mul(delta * a.ctx.Move.Jump.Fall))
	p.SetGlobalVelocity(a.velocity)
}

// FreeModeAction flies the player around without gravity or hazards. It
// takes over every action while the debug free mode is on.
type FreeModeAction struct {
	ctx *ActionContext
}

func NewFreeModeAction(ctx *ActionContext) *FreeModeAction { return &FreeModeAction{ctx: ctx} }

func (a *FreeModeAction) Name() string { return "FreeMode" }

func (a *FreeModeAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionFly}
}

func (a *FreeModeAction) IsAllowed(component.ActionType) bool { return a.ctx.FreeMode }

func (a *FreeModeAction) TransitionAttempts() {
	if !a.ctx.Debug || !a.ctx.Input().JustPressed(component.InputDebugFly) {
		return
	}
	a.ctx.FreeMode = !a.ctx.FreeMode
	a.ctx.Log.Debug().Bool("free_mode", a.ctx.FreeMode).Msg("free mode toggled")
}

func (a *FreeModeAction) OnEnter() {
	a.ctx.DropCarried()
	a.ctx.Player.SetAction(component.ActionFly)
}

func (a *FreeModeAction) OnAct(float64) {
	p := a.ctx.Player
	if p.Action() != component.ActionFly {
		p.SetAction(component.ActionFly)
	}
	m := a.ctx.Input().Movement
	p.SetVelocity(mgl64.Vec3{m.X(), m.Y(), 0}.Mul(a.ctx.Tuning.Move.DefaultSpeed))
}

func (a *FreeModeAction) OnEnd() {
	a.ctx.Player.SetAction(component.ActionFall)
}

var scriptedActions = []component.ActionType{
	component.ActionGrabTombstone, component.ActionLetGoOfTombstone, component.ActionPivotTombstone,
	component.ActionPushPivot, component.ActionHitBell, component.ActionTurnAwayFromBell,
	component.ActionTurnToBell, component.ActionDrumsCrash, component.ActionDrumsHiHat,
	component.ActionDrumsIdle, component.ActionDrumsTom, component.ActionDrumsTom2,
	component.ActionDrumsToss, component.ActionDrumsTwirl, component.ActionEnterPipe,
	component.ActionEnterTunnel, component.ActionCarryEnterTunnel, component.ActionCarryHeavyEnterTunnel,
}

// ScriptedAction plays the actions level scripts start: tombstones, bells,
// drums, pipes and tunnels. Most of them play once and return to idle.
type ScriptedAction struct {
	ctx *ActionContext
}

func NewScriptedAction(ctx *ActionContext) *ScriptedAction { return &ScriptedAction{ctx: ctx} }

func (a *ScriptedAction) Name() string { return "Scripted" }

func (a *ScriptedAction) Claims() []component.ActionType { return scriptedActions }

func (a *ScriptedAction) IsAllowed(t component.ActionType) bool {
	return slices.Contains(scriptedActions, t)
}

// Perform starts a scripted action. Only a living player that is not
// already busy with one can be scripted.
func (a *ScriptedAction) Perform(t component.ActionType) bool {
	p := a.ctx.Player
	if !a.IsAllowed(t) || !p.Alive() || a.IsAllowed(p.Action()) || p.Action() == component.ActionNone {
		return false
	}
	p.SetAction(t)
	return true
}

func (a *ScriptedAction) OnEnter() {
	p := a.ctx.Player
	p.SetVelocity(mathz.Scale(p.Velocity(), mathz.WorldUp))
	if p.Actions().IsPlayingDrums(p.Action()) {
		a.ctx.DropCarried()
	}
}

func (a *ScriptedAction) OnAct(float64) {
	p := a.ctx.Player
	input := a.ctx.Input()
	anim := a.ctx.Anim()
	current := p.Action()

	switch {
	case current == component.ActionGrabTombstone:
		switch {
		case !input.Pressed(component.InputGrabThrow):
			p.SetAction(component.ActionLetGoOfTombstone)
		case input.JustPressed(component.InputLeft), input.JustPressed(component.InputRight):
			p.SetAction(component.ActionPivotTombstone)
		}
		return
	case p.Actions().IsPlayingDrums(current):
		if input.JustPressed(component.InputJump) || !mathz.IsZeroApprox(input.Movement.X()) {
			p.SetAction(component.ActionIdle)
			return
		}
		if current != component.ActionDrumsIdle && !anim.IsPlaying() {
			p.SetAction(component.ActionDrumsIdle)
		}
		return
	}

	if anim.IsPlaying() {
		return
	}
	switch current {
	case component.ActionPivotTombstone, component.ActionPushPivot:
		p.SetAction(component.ActionGrabTombstone)
	case component.ActionEnterPipe, component.ActionEnterTunnel, component.ActionCarryEnterTunnel,
		component.ActionCarryHeavyEnterTunnel:
		a.leaveThroughArea()
	default:
		p.SetAction(a.ctx.Carry(component.ActionIdle, component.ActionCarryIdle, component.ActionCarryHeavyIdle))
	}
}

// leaveThroughArea changes level through the pipe or tunnel the player
// went into.
func (a *ScriptedAction) leaveThroughArea() {
	p := a.ctx.Player
	_, area, ok := changeArea(p)
	if !ok || area.NextLevel == "" {
		p.SetAction(a.ctx.Carry(component.ActionIdle, component.ActionCarryIdle, component.ActionCarryHeavyIdle))
		return
	}
	p.State().NextAction = a.ctx.Carry(component.ActionExitDoor, component.ActionCarryExit, component.ActionCarryHeavyExit)
	p.SetAction(component.ActionNone)
	a.ctx.Level.ChangeLevel(area.NextLevel, area.Volume, p)
}
