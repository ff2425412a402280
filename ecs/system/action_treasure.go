package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

// treasureTilt is the pitch and roll a found treasure is shown at.
var treasureTilt = mgl64.Rotate3DX(mgl64.DegToRad(-45)).Mul3(mgl64.Rotate3DZ(mgl64.DegToRad(45)))

const (
	treasureSpinUp   = 1.6
	treasureSpinDown = 2.4
)

// treasureYaw spins the treasure two turns speeding up and two more
// slowing down.
func treasureYaw(elapsed float64) float64 {
	if elapsed < treasureSpinUp {
		return 4 * math.Pi * mathz.InQuart(elapsed/treasureSpinUp)
	}
	t := math.Min(1, (elapsed-treasureSpinUp)/treasureSpinDown)
	return 4*math.Pi + 4*math.Pi*mathz.OutQuart(t)
}

// FindTreasureAction holds the player still while a big cube or an anti
// cube spins over its head, then counts it.
type FindTreasureAction struct {
	ctx *ActionContext

	origin   mgl64.Vec3
	elapsed  float64
	lastSize float64
}

func NewFindTreasureAction(ctx *ActionContext) *FindTreasureAction {
	return &FindTreasureAction{ctx: ctx}
}

func (a *FindTreasureAction) Name() string { return "FindTreasure" }

func (a *FindTreasureAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionFindTreasure}
}

func (a *FindTreasureAction) IsAllowed(component.ActionType) bool {
	return a.ctx.Player.State().CollectedTreasure.Valid()
}

func (a *FindTreasureAction) OnEnter() {
	p := a.ctx.Player
	a.elapsed = 0
	a.origin = p.Origin()
	if a.ctx.Camera != nil {
		a.lastSize = a.ctx.Camera.Size()
	}
	if p.State().CarriedBody.Valid() {
		p.SetAction(a.ctx.Carry(component.ActionIdle, component.ActionCarryIdle, component.ActionCarryHeavyIdle))
		a.ctx.Anim().SetSpeed(0)
		return
	}
	p.SetAction(component.ActionFindTreasure)
}

func (a *FindTreasureAction) OnAct(delta float64) {
	p := a.ctx.Player
	w := p.World()
	state := p.State()
	a.elapsed += delta
	p.SetOrigin(a.origin)
	p.SetVelocity(mgl64.Vec3{})

	tuning := a.ctx.Tuning.Treasure
	cam := a.ctx.Camera
	if cam != nil {
		cam.SetCanFollow(false)
		cam.SetCanRotate(false)
		zoom := mathz.Clamp01(a.elapsed / tuning.TweenTime)
		cam.SetSize(mathz.Lerp(a.lastSize, a.lastSize*0.5, zoom))
	}

	treasure := state.CollectedTreasure
	if t, ok := ecs.Get(w, treasure, component.TransformComponent.Kind()); ok {
		t.Origin = p.Origin().Add(p.Axes().Up.Mul(p.Size().Y() + 1))
		t.Basis = mgl64.Rotate3DY(treasureYaw(a.elapsed)).Mul3(treasureTilt)
	}

	if a.elapsed <= tuning.FindDuration {
		return
	}

	data := a.ctx.Level.GameState().Data()
	assembled := false
	ecs.ForEach(w, component.CubeAssemblyComponent.Kind(), func(_ ecs.Entity, assembly *component.CubeAssembly) {
		assembled = assembled || assembly.Assembled == treasure
	})
	kind := component.CollectableBigCube
	if c, ok := ecs.Get(w, treasure, component.CollectableComponent.Kind()); ok {
		kind = c.Kind
	}
	switch {
	case assembled:
		data.BigCubes++
		a.ctx.Emit(ecs.EventCollectedBigCube)
	case kind == component.CollectableBigCube:
		data.BigCubes++
		ecs.DestroyEntity(w, treasure)
		a.ctx.Emit(ecs.EventCollectedBigCube)
	case kind == component.CollectableAntiCube:
		data.AntiCubes++
		ecs.DestroyEntity(w, treasure)
		a.ctx.Emit(ecs.EventCollectedAntiCube)
	}
	a.ctx.Log.Info().Str("kind", kind.String()).Int("big_cubes", data.BigCubes).Int("anti_cubes", data.AntiCubes).Msg("treasure found")

	if !state.CarriedBody.Valid() {
		p.SetAction(component.ActionIdle)
	} else {
		a.ctx.Anim().SetSpeed(1)
	}
	state.CollectedTreasure = 0
	a.ctx.Level.GameState().SaveGame()
	if cam != nil {
		cam.SetSize(a.lastSize)
		cam.SetCanFollow(true)
		cam.SetCanRotate(true)
	}
}

// chestItemRise is how far a chest's item rises out of it.
const chestItemRise = 1.0

// OpenTreasureAction walks the player to a chest it faces and opens it.
// The chest's item is awarded when the action ends.
type OpenTreasureAction struct {
	ctx *ActionContext

	chest     ecs.Entity
	item      ecs.Entity
	itemKind  component.CollectableKind
	chestBase mgl64.Vec3
}

func NewOpenTreasureAction(ctx *ActionContext) *OpenTreasureAction {
	return &OpenTreasureAction{ctx: ctx}
}

func (a *OpenTreasureAction) Name() string { return "OpenTreasure" }

func (a *OpenTreasureAction) Claims() []component.ActionType {
	return []component.ActionType{component.ActionOpenTreasure}
}

func (a *OpenTreasureAction) IsAllowed(t component.ActionType) bool {
	return t == component.ActionOpenTreasure
}

func (a *OpenTreasureAction) TransitionAttempts() {
	p := a.ctx.Player
	switch p.Action() {
	case component.ActionOpenTreasure, component.ActionFindTreasure, component.ActionReadListen,
		component.ActionAirPanic, component.ActionDying, component.ActionGateWarp, component.ActionFirstPerson,
		component.ActionNone:
		return
	}
	if !p.OnFloor() || p.InBackground() || !a.ctx.Input().JustPressed(component.InputGrabThrow) {
		return
	}
	hit := a.ctx.Space.CastPoint(*p.Transform(), component.LayerActors)
	if hit == nil {
		return
	}
	c, ok := ecs.Get(p.World(), hit.Entity, component.CollectableComponent.Kind())
	if !ok || !c.Monitorable || c.Kind != component.CollectableTreasureChest {
		return
	}
	chestAxes := component.NewAxes(hit.Transform.Basis, 1)
	if chestAxes.Forward.Dot(p.Axes().Forward) < 1-mathz.Epsilon {
		return
	}
	a.chest = hit.Entity
	a.ctx.WalkTo.Start(p, component.ActionOpenTreasure, a.chestFront)
}

func (a *OpenTreasureAction) chestFront() mgl64.Vec3 {
	p := a.ctx.Player
	origin, ok := OriginOf(p.World(), a.chest)
	if !ok {
		return p.Origin()
	}
	axes := p.Axes()
	return mathz.Scale(origin, axes.XMask).Add(mathz.Scale(p.Origin(), axes.YZMask))
}

func (a *OpenTreasureAction) OnEnter() {
	p := a.ctx.Player
	w := p.World()
	c, ok := ecs.Get(w, a.chest, component.CollectableComponent.Kind())
	if !ok {
		p.SetAction(component.ActionIdle)
		return
	}
	a.ctx.Level.MakeNodeInactive(a.chest, false)
	p.SetVelocity(mgl64.Vec3{})
	a.ctx.Emit(ecs.EventOpenedTreasure)
	if cam := a.ctx.Camera; cam != nil {
		cam.SetCanFollow(false)
		cam.SetCanRotate(false)
	}

	c.Monitorable = false
	a.itemKind = c.Item
	a.chestBase, _ = OriginOf(w, a.chest)
	a.item = ecs.CreateEntity(w)
	_ = ecs.Add(w, a.item, component.TransformComponent.Kind(), &component.Transform{Origin: a.chestBase, Basis: p.Basis()})
	_ = ecs.Add(w, a.item, component.CollectableComponent.Kind(), &component.Collectable{Kind: c.Item})
	a.ctx.Log.Info().Str("chest", a.ctx.Level.NameOf(a.chest)).Str("item", c.Item.String()).Msg("chest opened")
}

func (a *OpenTreasureAction) OnAct(float64) {
	p := a.ctx.Player
	anim := a.ctx.Anim()
	anim.SetSpeed(a.ctx.Tuning.Treasure.ChestAnim)
	if cam := a.ctx.Camera; cam != nil {
		cam.SetOrigin(mathz.LerpVec(cam.Origin(), p.Origin(), 0.5))
	}
	if t, ok := ecs.Get(p.World(), a.item, component.TransformComponent.Kind()); ok {
		t.Origin = a.chestBase.Add(p.Axes().Up.Mul(chestItemRise * Progress(anim)))
	}
	if anim.IsPlaying() {
		return
	}
	ecs.DestroyEntity(p.World(), a.item)
	a.item = 0
	p.SetAction(component.ActionIdle)
}

func (a *OpenTreasureAction) OnEnd() {
	data := a.ctx.Level.GameState().Data()
	switch a.itemKind {
	case component.CollectableGoldenKey:
		data.Keys++
	case component.CollectableBigCube:
		data.BigCubes++
		a.ctx.Emit(ecs.EventCollectedBigCube)
	case component.CollectableAntiCube:
		data.AntiCubes++
		a.ctx.Emit(ecs.EventCollectedAntiCube)
	}
	if a.item.Valid() {
		ecs.DestroyEntity(a.ctx.World, a.item)
		a.item = 0
	}
	a.itemKind = component.CollectableNone
	a.ctx.Level.GameState().SaveGame()
	if cam := a.ctx.Camera; cam != nil {
		cam.SetCanFollow(true)
		cam.SetCanRotate(true)
	}
}
