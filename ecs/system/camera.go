package system

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

// CameraController owns the camera entity: its orthogonal view, the yaw
// tween between views, target following and free-look panning.
type CameraController struct {
	w      *ecs.World
	entity ecs.Entity
	tuning component.CameraTuning

	shakeOffset mgl64.Vec3
	shakeStart  mgl64.Vec3
	panning     bool
}

func NewCameraController(w *ecs.World, entity ecs.Entity, tuning component.CameraTuning) *CameraController {
	c := &CameraController{w: w, entity: entity, tuning: tuning}
	if cam := c.state(); cam != nil && cam.Size == 0 {
		cam.Size = tuning.ViewportHeight / c.PixelsPerUnit()
	}
	return c
}

func (c *CameraController) state() *component.Camera {
	cam, _ := ecs.Get(c.w, c.entity, component.CameraComponent.Kind())
	return cam
}

func (c *CameraController) transform() *component.Transform {
	t, _ := ecs.Get(c.w, c.entity, component.TransformComponent.Kind())
	return t
}

func (c *CameraController) Entity() ecs.Entity { return c.entity }

func (c *CameraController) PixelsPerUnit() float64 {
	return c.tuning.PixelsPerTrixel * mathz.TrixelsPerUnit
}

func (c *CameraController) Orthogonal() component.Orthogonal {
	if cam := c.state(); cam != nil {
		return cam.Orthogonal
	}
	return component.ViewFront
}

func (c *CameraController) LastOrthogonal() component.Orthogonal {
	if cam := c.state(); cam != nil {
		return cam.LastOrthogonal
	}
	return component.ViewNone
}

func (c *CameraController) setOrthogonal(view component.Orthogonal) {
	cam := c.state()
	cam.LastOrthogonal = cam.Orthogonal
	cam.Orthogonal = view
}

func (c *CameraController) Rotating() bool {
	cam := c.state()
	return cam != nil && cam.Rotation.Active
}

// Basis is the interpolated basis while rotating, the view's canonical
// basis otherwise.
func (c *CameraController) Basis() mgl64.Mat3 {
	cam := c.state()
	if cam == nil {
		return component.ViewFront.Basis()
	}
	if cam.Rotation.Active {
		r := cam.Rotation
		return mgl64.Rotate3DY(mathz.Lerp(r.FromYaw, r.ToYaw, r.Step()))
	}
	return cam.Orthogonal.Basis()
}

func (c *CameraController) Origin() mgl64.Vec3 {
	if t := c.transform(); t != nil {
		return t.Origin
	}
	return mgl64.Vec3{}
}

func (c *CameraController) CanRotate() bool {
	cam := c.state()
	return cam != nil && cam.CanRotate
}

func (c *CameraController) SetCanRotate(v bool) {
	if cam := c.state(); cam != nil {
		cam.CanRotate = v
	}
}

func (c *CameraController) CanFollow() bool {
	cam := c.state()
	return cam != nil && cam.CanFollow
}

func (c *CameraController) SetCanFollow(v bool) {
	if cam := c.state(); cam != nil {
		cam.CanFollow = v
	}
}

// Size is the vertical extent of the view in units.
func (c *CameraController) Size() float64 {
	if cam := c.state(); cam != nil {
		return cam.Size
	}
	return 0
}

func (c *CameraController) SetSize(size float64) {
	if cam := c.state(); cam != nil && size > 0 {
		cam.Size = size
	}
}

func (c *CameraController) Offset() mgl64.Vec3 {
	if cam := c.state(); cam != nil {
		return cam.Offset
	}
	return mgl64.Vec3{}
}

func (c *CameraController) SetOffset(v mgl64.Vec3) {
	if cam := c.state(); cam != nil {
		cam.Offset = v
	}
}

// SetOrigin moves the camera. It is used by scripted pans.
func (c *CameraController) SetOrigin(v mgl64.Vec3) {
	if t := c.transform(); t != nil {
		t.Origin = v
	}
}

// RotateBy starts a quarter turn per step. It reports false when a
// rotation is already running or the view is not horizontal.
func (c *CameraController) RotateBy(steps int) bool {
	cam := c.state()
	if cam == nil || cam.Rotation.Active || steps == 0 || !cam.Orthogonal.Horizontal() {
		return false
	}
	from := cam.Orthogonal.Yaw()
	if t := c.transform(); t != nil {
		from = yawOf(t.Basis)
	}
	c.setOrthogonal(cam.Orthogonal.Rotated(steps))
	c.startRotation(from, from+float64(steps)*math.Pi/2, c.tuning.RotateTime)
	return true
}

// ChangeRotation turns the camera to view. A speed factor of zero turns
// it in the same tick.
func (c *CameraController) ChangeRotation(view component.Orthogonal, speedFactor float64) {
	cam := c.state()
	if cam == nil {
		return
	}
	from := eulerYaw(cam.Orthogonal)
	to := eulerYaw(view)
	c.setOrthogonal(view)
	c.startRotation(from, to, c.tuning.RotateTime*speedFactor)
}

// eulerYaw is the view's yaw in (-π, π].
func eulerYaw(view component.Orthogonal) float64 {
	yaw := view.Yaw()
	if yaw > math.Pi {
		yaw -= 2 * math.Pi
	}
	return yaw
}

func yawOf(basis mgl64.Mat3) float64 {
	forward := basis.Col(2)
	return math.Atan2(forward.X(), forward.Z())
}

func (c *CameraController) startRotation(from, to, duration float64) {
	if mathz.IsEqualApprox(from, to) {
		return
	}
	cam := c.state()
	cam.Rotation = component.CameraRotation{
		Active:   true,
		From:     cam.LastOrthogonal,
		To:       cam.Orthogonal,
		FromYaw:  from,
		ToYaw:    to,
		Duration: duration,
	}
	events := c.w.Events()
	events.Emit(ecs.Event{Kind: ecs.EventPreRotate, Entity: c.entity})
	if duration <= 0 {
		c.finishRotation()
	}
}

func (c *CameraController) finishRotation() {
	cam := c.state()
	cam.Rotation.Elapsed = cam.Rotation.Duration
	events := c.w.Events()
	events.Emit(ecs.Event{Kind: ecs.EventRotating, Entity: c.entity, Step: 1})
	cam.Rotation = component.CameraRotation{}
	if t := c.transform(); t != nil {
		t.Basis = cam.Orthogonal.Basis()
	}
	events.Emit(ecs.Event{Kind: ecs.EventRotated, Entity: c.entity})
}

// Shake jitters the view offset by up to distance, fading out over
// duration seconds.
func (c *CameraController) Shake(distance, duration float64) {
	cam := c.state()
	if cam == nil {
		return
	}
	c.shakeStart = cam.Offset
	cam.ShakeSpan = distance
	cam.ShakeTotal = duration
	cam.ShakeLeft = duration
}

// Update advances the rotation tween, or handles rotate and pan input and
// follows the target when no tween runs.
func (c *CameraController) Update(delta float64, input *component.Input, allowRotate bool) {
	cam := c.state()
	t := c.transform()
	if cam == nil || t == nil {
		return
	}

	c.updateShake(cam, delta)

	if cam.Rotation.Active {
		cam.Rotation.Elapsed += delta
		if cam.Rotation.Elapsed >= cam.Rotation.Duration {
			c.finishRotation()
			return
		}
		t.Basis = c.Basis()
		c.w.Events().Emit(ecs.Event{Kind: ecs.EventRotating, Entity: c.entity, Step: cam.Rotation.Elapsed / cam.Rotation.Duration})
		return
	}

	if input != nil && cam.CanRotate && allowRotate {
		if input.JustPressed(component.InputRotateLeft) && c.RotateBy(-1) {
			return
		}
		if input.JustPressed(component.InputRotateRight) && c.RotateBy(1) {
			return
		}
	}

	look := mgl64.Vec2{}
	if input != nil {
		look = input.FreeLook
	}
	c.panning = c.panByInput(cam, look)
	if cam.CanFollow && !c.panning {
		c.followTarget(cam, t)
	}
}

func (c *CameraController) panByInput(cam *component.Camera, input mgl64.Vec2) bool {
	limit := cam.Size / 2
	speed := c.tuning.OffsetSpeed
	offset := cam.Offset
	if mathz.IsZeroApprox(input.X()) && mathz.IsZeroApprox(input.Y()) {
		offset[0] = mathz.MoveToward(offset[0], 0, speed)
		offset[1] = mathz.MoveToward(offset[1], 0, speed)
	} else {
		offset[0] = mathz.Lerp(offset[0], input.X()*limit, speed)
		offset[1] = mathz.Lerp(offset[1], input.Y()*limit, speed)
	}
	ppu := c.PixelsPerUnit()
	offset[0] = math.Round(offset[0]*ppu) / ppu
	offset[1] = math.Round(offset[1]*ppu) / ppu
	cam.Offset = offset
	return !mathz.IsZeroApprox(offset[0]) || !mathz.IsZeroApprox(offset[1])
}

// followTarget keeps the target inside the drag window, snapped to whole
// screen pixels. The camera shares the target's depth.
func (c *CameraController) followTarget(cam *component.Camera, t *component.Transform) {
	target, ok := ecs.Get(c.w, cam.Target, component.TransformComponent.Kind())
	if !ok {
		return
	}
	camera := mathz.ToLocal(t.Basis, t.Origin)
	goal := mathz.ToLocal(t.Basis, target.Origin)
	center := camera.Add(cam.Offset)

	half := mgl64.Vec2{c.tuning.DragHorizontal, c.tuning.DragVertical}
	diff := goal.Sub(center)
	next := camera
	for i := 0; i < 2; i++ {
		if diff[i] > half[i] {
			next[i] = goal[i] - (half[i] + cam.Offset[i])
		} else if diff[i] < -half[i] {
			next[i] = goal[i] + (half[i] + cam.Offset[i])
		}
	}

	ppu := c.PixelsPerUnit()
	for i := 0; i < 2; i++ {
		camera[i] = mathz.SmoothStep(camera[i], next[i], c.tuning.DragDamp)
		camera[i] = math.Round(camera[i]*ppu) / ppu
	}
	camera[2] = goal[2]
	t.Origin = mathz.ToGlobal(t.Basis, camera)
}

func (c *CameraController) updateShake(cam *component.Camera, delta float64) {
	if cam.ShakeLeft <= 0 {
		return
	}
	cam.ShakeLeft -= delta
	if cam.ShakeLeft <= 0 {
		cam.ShakeLeft = 0
		cam.Offset = c.shakeStart
		return
	}
	elapsed := cam.ShakeTotal - cam.ShakeLeft
	remain := mathz.Lerp(cam.ShakeSpan, 0, math.Sqrt(elapsed/cam.ShakeTotal))
	c.shakeOffset = mgl64.Vec3{centered(remain * 2), centered(remain * 2), 0}
	cam.Offset = c.shakeStart.Add(c.shakeOffset)
}

func centered(span float64) float64 {
	return (rand.Float64() - 0.5) * span
}

// CameraSystem drives the controller once per tick from the player's
// input and keeps the collision space's camera point in front of the view.
type CameraSystem struct {
	controller *CameraController
	space      *SpaceState
	actions    *component.ActionTable
}

func NewCameraSystem(controller *CameraController, space *SpaceState, actions *component.ActionTable) *CameraSystem {
	return &CameraSystem{controller: controller, space: space, actions: actions}
}

func (cs *CameraSystem) Update(w *ecs.World) {
	if w == nil || cs.controller == nil {
		return
	}

	var input *component.Input
	allowRotate := true
	if player, ok := ecs.First(w, component.PlayerTagComponent.Kind()); ok {
		input, _ = ecs.Get(w, player, component.InputComponent.Kind())
		if p, ok := ecs.Get(w, player, component.PlayerComponent.Kind()); ok && cs.actions != nil {
			allowRotate = p.Action == component.ActionNone || !cs.actions.PreventsRotation(p.Action)
		}
	}

	cs.controller.Update(FixedDelta, input, allowRotate)

	if cs.space != nil {
		forward := cs.controller.Basis().Col(2)
		cs.space.CameraOrigin = cs.controller.Origin().Add(forward.Mul(MaxDepth))
	}
}
