package system

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

// doorFrom lists the actions a door, a gate or a chest can be used from
// besides the idle and looking groups.
var doorFrom = []component.ActionType{
	component.ActionWalk, component.ActionRun, component.ActionDropDown, component.ActionSlide,
	component.ActionLand, component.ActionTeeter, component.ActionTeeterPaul,
}

func canUseDoorFrom(p *PlayerHandle) bool {
	current := p.Action()
	return p.Actions().IsIdle(current) || p.Actions().IsLooking(current) || slices.Contains(doorFrom, current)
}

// changeArea returns the level change area the player stands in.
func changeArea(p *PlayerHandle) (ecs.Entity, *component.ChangeLevel, bool) {
	e := p.State().ChangeArea
	if !e.Valid() {
		return 0, nil, false
	}
	area, ok := ecs.Get(p.World(), e, component.ChangeLevelComponent.Kind())
	if !ok {
		return 0, nil, false
	}
	return e, area, true
}

// EnterDoorAction walks the player through a door into the next level.
// A spin door turns the camera a quarter while the player walks in and
// another quarter before the level changes.
type EnterDoorAction struct {
	ctx *ActionContext

	hasFlipped     bool
	hasChanged     bool
	spinThrough    bool
	spinOrigin     mgl64.Vec3
	spinTarget     mgl64.Vec3
	step           float64
	transition     float64
	nextLevel      string
	nextVolume     int
	levelRequested bool
}

func NewEnterDoorAction(ctx *ActionContext) *EnterDoorAction {
	return &EnterDoorAction{ctx: ctx, step: -1}
}

func (a *EnterDoorAction) Name() string { return "EnterDoor" }

var enterDoorActions = []component.ActionType{
	component.ActionEnterDoor, component.ActionCarryEnter, component.ActionCarryHeavyEnter,
	component.ActionEnterDoorSpin, component.ActionCarryEnterDoorSpin, component.ActionCarryHeavyEnterDoorSpin,
}

func (a *EnterDoorAction) Claims() []component.ActionType { return enterDoorActions }

func (a *EnterDoorAction) IsAllowed(t component.ActionType) bool {
	return slices.Contains(enterDoorActions, t)
}

func (a *EnterDoorAction) TransitionAttempts() {
	p := a.ctx.Player
	if !canUseDoorFrom(p) || a.step >= 0 || !a.ctx.Input().JustPressed(component.InputUp) ||
		!p.OnFloor() || p.InBackground() {
		return
	}
	e, area, ok := changeArea(p)
	if !ok || area.Door.Valid() || area.BitDoor.Valid() || area.Warp.Valid() {
		return
	}
	areaTransform, _ := ecs.Get(p.World(), e, component.TransformComponent.Kind())
	areaAxes := component.NewAxes(areaTransform.Basis, 1)
	if !mathz.IsEqualApprox(areaAxes.Right.Dot(p.Axes().Right), 1) {
		return
	}

	a.spinThrough = area.DoSpin
	if a.spinThrough {
		_, size := colliderViewExtents(p.World(), e, a.viewBasis())
		offset := areaTransform.Origin.Sub(areaAxes.Forward.Mul(size.Z() - 1))
		if p.Origin().Dot(areaAxes.Forward) < offset.Dot(areaAxes.Forward) {
			p.SetOrigin(blendMask(p.Origin(), offset, areaAxes.ZMask))
		}
		a.spinOrigin = a.destination()
		a.spinTarget = a.spinOrigin.Add(areaAxes.Forward.Mul(size.Z() * 1.5))
	}

	plain, light, heavy := component.ActionEnterDoor, component.ActionCarryEnter, component.ActionCarryHeavyEnter
	if a.spinThrough {
		plain, light, heavy = component.ActionEnterDoorSpin, component.ActionCarryEnterDoorSpin, component.ActionCarryHeavyEnterDoorSpin
	}
	if p.State().CarriedBody.Valid() {
		p.SetOrigin(a.destination())
		p.SetAction(a.ctx.Carry(plain, light, heavy))
		return
	}
	a.ctx.WalkTo.Start(p, plain, a.destination)
}

func (a *EnterDoorAction) viewBasis() mgl64.Mat3 {
	if a.ctx.Camera == nil {
		return a.ctx.Player.Basis()
	}
	return a.ctx.Camera.Orthogonal().Basis()
}

// destination lines the player up with the door on the view's x axis.
func (a *EnterDoorAction) destination() mgl64.Vec3 {
	p := a.ctx.Player
	e, _, ok := changeArea(p)
	if !ok {
		return p.Origin()
	}
	origin, _ := OriginOf(p.World(), e)
	basis := a.viewBasis()
	return blendMask(p.Origin(), origin, mathz.Abs(basis.Col(0)))
}

func (a *EnterDoorAction) OnEnter() {
	p := a.ctx.Player
	_, area, ok := changeArea(p)
	if !ok {
		p.SetAction(component.ActionIdle)
		return
	}
	a.nextLevel, a.nextVolume = area.NextLevel, area.Volume
	a.levelRequested = false
	a.transition, a.step = 0, 0
	a.hasFlipped, a.hasChanged = false, false
	if a.spinThrough && a.ctx.Camera != nil {
		a.ctx.Camera.ChangeRotation(a.ctx.Camera.Orthogonal().Rotated(1), 2)
		p.SetFacing(component.DirRight)
	}
	p.SetVelocity(mathz.Scale(p.Velocity(), mathz.WorldUp))
	a.ctx.Emit(ecs.EventEnteredDoor)
}

func (a *EnterDoorAction) OnAct(delta float64) {
	p := a.ctx.Player
	w := p.World()
	if a.step < 1 && a.spinThrough && !a.hasFlipped {
		initial := p.Origin()
		p.SetOrigin(mathz.LerpVec(a.spinOrigin, a.spinTarget, a.step))
		if carried, _, ok := p.Carried(); ok {
			if t, found := ecs.Get(w, carried, component.TransformComponent.Kind()); found {
				t.Origin = t.Origin.Add(p.Origin().Sub(initial))
			}
		}
	}

	if a.nextLevel == "" {
		a.step = -1
		p.SetAction(component.ActionIdle)
		return
	}

	tuning := a.ctx.Tuning.Door
	if a.spinThrough && a.hasFlipped && !a.hasChanged {
		a.step = 0
	} else {
		a.transition += delta
		factor := tuning.DefaultFactor
		if a.spinThrough {
			factor = tuning.SpinThroughFactor
		}
		if a.hasChanged {
			factor *= tuning.SpinThroughFactor
		}
		a.step = a.transition / factor
	}

	switch {
	case a.step >= 1 && !a.hasFlipped:
		a.transition, a.step = 0, 0
		a.hasFlipped = true
	case a.step >= 1 && a.hasFlipped:
		a.step = -1
		a.spinThrough = false
		state := p.State()
		switch p.Action() {
		case component.ActionEnterDoor:
			state.NextAction = component.ActionExitDoor
		case component.ActionCarryEnter:
			state.NextAction = component.ActionCarryExit
		case component.ActionCarryHeavyEnter:
			state.NextAction = component.ActionCarryHeavyExit
		default:
			state.NextAction = component.ActionNone
		}
		p.SetAction(component.ActionNone)
		return
	}

	cam := a.ctx.Camera
	if a.spinThrough && a.hasFlipped && !a.hasChanged && cam != nil && !cam.Rotating() {
		a.hasChanged = true
		cam.ChangeRotation(cam.Orthogonal().Rotated(1), 1)
	}
}

func (a *EnterDoorAction) OnEnd() {
	if a.levelRequested || a.nextLevel == "" || a.ctx.Player.Action() != component.ActionNone {
		return
	}
	a.levelRequested = true
	a.ctx.Level.ChangeLevel(a.nextLevel, a.nextVolume, a.ctx.Player)
}

// ExitDoorAction walks the player out of the door it arrived through.
type ExitDoorAction struct {
	ctx *ActionContext
}

func NewExitDoorAction(ctx *ActionContext) *ExitDoorAction { return &ExitDoorAction{ctx: ctx} }

func (a *ExitDoorAction) Name() string { return "ExitDoor" }

func (a *ExitDoorAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionExitDoor, component.ActionCarryExit, component.ActionCarryHeavyExit}
}

func (a *ExitDoorAction) IsAllowed(t component.ActionType) bool {
	switch t {
	case component.ActionExitDoor, component.ActionCarryExit, component.ActionCarryHeavyExit:
		return true
	}
	return false
}

func (a *ExitDoorAction) OnAct(float64) {
	if a.ctx.Anim().IsPlaying() {
		return
	}
	a.ctx.Player.SetAction(a.ctx.Carry(component.ActionIdle, component.ActionCarryIdle, component.ActionCarryHeavyIdle))
}

// OpenDoorAction unlocks and swings open the door of a change area.
type OpenDoorAction struct {
	ctx *ActionContext

	swinging bool
}

func NewOpenDoorAction(ctx *ActionContext) *OpenDoorAction { return &OpenDoorAction{ctx: ctx} }

func (a *OpenDoorAction) Name() string { return "OpenDoor" }

func (a *OpenDoorAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionOpenDoor}
}

func (a *OpenDoorAction) IsAllowed(t component.ActionType) bool { return t == component.ActionOpenDoor }

func (a *OpenDoorAction) TransitionAttempts() {
	p := a.ctx.Player
	if !canUseDoorFrom(p) || !a.ctx.Input().JustPressed(component.InputUp) || !p.OnFloor() || p.InBackground() {
		return
	}
	_, area, ok := changeArea(p)
	if !ok || !area.Door.Valid() {
		return
	}
	if area.KeyRequired && a.ctx.Level.GameState().Data().Keys <= 0 {
		return
	}
	a.ctx.WalkTo.Start(p, component.ActionOpenDoor, a.doorOrigin)
}

func (a *OpenDoorAction) doorOrigin() mgl64.Vec3 {
	p := a.ctx.Player
	e, _, ok := changeArea(p)
	if !ok {
		return p.Origin()
	}
	origin, _ := OriginOf(p.World(), e)
	axes := p.Axes()
	return mathz.Scale(p.Origin(), axes.YZMask).Add(mathz.Scale(origin, axes.XMask))
}

func (a *OpenDoorAction) OnEnter() {
	p := a.ctx.Player
	_, area, ok := changeArea(p)
	if !ok || !area.Door.Valid() {
		p.SetAction(component.ActionIdle)
		return
	}
	p.SetVelocity(mathz.Scale(p.Velocity(), mathz.WorldUp))
	p.SetFacing(component.DirRight)
	a.swinging = false

	data := a.ctx.Level.GameState().Data()
	if area.KeyRequired {
		data.ThisLevel().FilledConditions.LockedDoors++
		data.Keys--
	} else {
		data.ThisLevel().FilledConditions.UnlockedDoors++
	}
	a.ctx.Level.MakeNodeInactive(area.Door, false)
	a.ctx.Log.Info().Str("door", a.ctx.Level.NameOf(area.Door)).Bool("locked", area.KeyRequired).Msg("door opened")
}

func (a *OpenDoorAction) OnAct(float64) {
	p := a.ctx.Player
	_, area, ok := changeArea(p)
	if !ok {
		p.SetAction(component.ActionIdle)
		return
	}
	anim := a.ctx.Anim()
	if !a.swinging && anim.Position() >= a.ctx.Tuning.Door.SwingStart {
		a.swinging = true
		if door, found := ecs.Get(p.World(), area.Door, component.DoorComponent.Kind()); found {
			door.Opening = true
			door.Elapsed = 0
			door.Duration = a.ctx.Tuning.Door.OpeningDuration
		}
	}
	if anim.IsPlaying() {
		return
	}
	ecs.DestroyEntity(p.World(), area.Door)
	area.Door = 0
	p.SetAction(component.ActionIdle)
}

// DoorSwingSystem turns opening doors a quarter about their up axis.
type DoorSwingSystem struct {
	pause *Pause
}

func NewDoorSwingSystem(pause *Pause) *DoorSwingSystem { return &DoorSwingSystem{pause: pause} }

func (s *DoorSwingSystem) Update(w *ecs.World) {
	if w == nil || s.pause.Active() {
		return
	}
	ecs.ForEach2(w, component.DoorComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, door *component.Door, t *component.Transform) {
		if !door.Opening {
			return
		}
		if door.Elapsed == 0 {
			door.ClosedBasis = t.Basis
		}
		door.Elapsed = math.Min(door.Elapsed+FixedDelta, math.Max(door.Duration, 0))
		yaw := mathz.InSine(door.Progress()) * math.Pi / 2
		t.Basis = mgl64.Rotate3DY(yaw).Mul3(door.ClosedBasis)
		if door.Progress() >= 1 {
			door.Opening = false
		}
	})
}

type warpPhase int

const (
	warpNone warpPhase = iota
	warpRise
	warpAccelerate
	warpWarp
	warpDecelerate
	warpFadeOut
	warpLevelChange
	warpFadeIn
)

// WarpAction lifts the player into a warp gate and sends it to the level
// the gate leads to.
type WarpAction struct {
	ctx *ActionContext

	phase        warpPhase
	sinceStarted float64
	sincePhase   float64
	sinceRisen   float64
	gateOrigin   mgl64.Vec3
	camOrigin    mgl64.Vec3
	forward      mgl64.Vec3
	up           mgl64.Vec3

	next   string
	volume int
	view   component.Orthogonal
}

func NewWarpAction(ctx *ActionContext) *WarpAction { return &WarpAction{ctx: ctx} }

func (a *WarpAction) Name() string { return "Warp" }

func (a *WarpAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionGateWarp}
}

func (a *WarpAction) IsAllowed(t component.ActionType) bool { return t == component.ActionGateWarp }

func (a *WarpAction) TransitionAttempts() {
	p := a.ctx.Player
	if p.Action() == component.ActionGateWarp || !p.Alive() || p.Action() == component.ActionNone {
		return
	}
	e, area, ok := changeArea(p)
	if !ok || !area.Warp.Valid() || colliderHiddenOrGone(p.World(), e) {
		return
	}
	if !a.ctx.Input().JustPressed(component.InputUp) {
		return
	}
	a.next, a.volume, a.view = area.NextLevel, area.Volume, area.ViewAfterWarp
	a.gateOrigin, _ = OriginOf(p.World(), area.Warp)
	p.SetAction(component.ActionGateWarp)
}

func colliderHiddenOrGone(w *ecs.World, e ecs.Entity) bool {
	c, ok := ecs.Get(w, e, component.ColliderComponent.Kind())
	return !ok || c.Hidden
}

func (a *WarpAction) OnEnter() {
	p := a.ctx.Player
	p.SetFacing(component.DirLeft)
	p.SetVelocity(mgl64.Vec3{})
	axes := p.Axes()
	a.forward, a.up = axes.Forward, axes.Up
	if cam := a.ctx.Camera; cam != nil {
		cam.SetCanFollow(false)
		cam.SetCanRotate(false)
		a.camOrigin = cam.Origin()
	}
	a.phase = warpRise
	a.sinceStarted, a.sincePhase, a.sinceRisen = 0, 0, 0
	a.ctx.Log.Info().Str("to", a.next).Int("volume", a.volume).Msg("warp gate entered")
}

func (a *WarpAction) setPhase(next warpPhase) {
	a.phase = next
	a.sincePhase = 0
}

func (a *WarpAction) OnAct(delta float64) {
	p := a.ctx.Player
	a.sinceStarted += delta
	a.sincePhase += delta
	p.SetVelocity(mgl64.Vec3{})
	fade := a.ctx.Tuning.Door.FadeTime

	switch a.phase {
	case warpRise:
		a.setPhase(warpAccelerate)
	case warpAccelerate, warpWarp:
		a.sinceRisen += delta
		rise := a.up.Mul(4 * mathz.InCubic(math.Min(1, a.sinceStarted/4.5)))
		target := a.gateOrigin.Sub(a.forward.Mul(3)).Add(rise)
		p.SetOrigin(mathz.LerpVec(p.Origin(), target, 0.0375))
		if cam := a.ctx.Camera; cam != nil {
			cam.SetOrigin(a.camOrigin.Add(rise.Mul(0.4)))
		}
		a.ctx.Anim().SetSpeed(math.Max(a.sinceRisen/2, 0))
		if a.phase == warpAccelerate && a.sincePhase >= 4 {
			a.setPhase(warpWarp)
		} else if a.phase == warpWarp && a.sincePhase >= fade {
			p.SetVisible(false)
			a.setPhase(warpDecelerate)
		}
	case warpDecelerate:
		p.SetOrigin(mathz.LerpVec(p.Origin(), a.gateOrigin.Sub(a.forward.Mul(3)), 0.025))
		if a.sincePhase >= 1 {
			a.setPhase(warpFadeOut)
		}
	case warpFadeOut:
		if a.sincePhase >= 2.25 {
			a.setPhase(warpLevelChange)
		}
	case warpLevelChange:
		a.load()
	case warpFadeIn:
		if a.sincePhase >= 2.25 {
			a.setPhase(warpNone)
			p.SetAction(component.ActionIdle)
		}
	}
}

// load warps within the level in place and asks the game for any other
// level.
func (a *WarpAction) load() {
	p := a.ctx.Player
	if a.next != "" && a.next != a.ctx.Level.Name() {
		p.State().NextAction = component.ActionNone
		a.ctx.Level.WarpTo(a.next, a.volume, a.view, p)
		a.setPhase(warpNone)
		p.SetAction(component.ActionNone)
		return
	}

	data := a.ctx.Level.GameState().Data()
	data.View = a.view
	if spawn, err := a.ctx.Level.VolumeTransform(a.volume); err == nil {
		data.Floor = [3]float64{spawn.Origin.X(), spawn.Origin.Y(), spawn.Origin.Z()}
	} else {
		a.ctx.Log.Warn().Err(err).Msg("warp volume missing")
	}
	p.Respawn().Checkpoint = 0
	a.ctx.Respawn.LoadAtCheckpoint()
	// LoadAtCheckpoint left the gate action; come back for the fade in.
	p.SetAction(component.ActionGateWarp)
	if cam := a.ctx.Camera; cam != nil {
		cam.SetOrigin(p.Origin().Add(p.Axes().Up.Mul(1 + p.Size().Y())))
		cam.SetCanFollow(true)
		cam.SetCanRotate(true)
	}
	p.SetVisible(true)
	a.setPhase(warpFadeIn)
}

func (a *WarpAction) OnEnd() {
	if a.phase != warpNone {
		return
	}
	if cam := a.ctx.Camera; cam != nil {
		cam.SetCanFollow(true)
		cam.SetCanRotate(true)
	}
	a.ctx.Player.SetVisible(true)
}
