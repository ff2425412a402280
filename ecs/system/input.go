package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
)

const stickDeadzone = 0.2

var keyBindings = map[component.InputAction][]ebiten.Key{
	component.InputJump:        {ebiten.KeySpace},
	component.InputGrabThrow:   {ebiten.KeyX, ebiten.KeyShiftLeft},
	component.InputUp:          {ebiten.KeyW, ebiten.KeyArrowUp},
	component.InputDown:        {ebiten.KeyS, ebiten.KeyArrowDown},
	component.InputLeft:        {ebiten.KeyA, ebiten.KeyArrowLeft},
	component.InputRight:       {ebiten.KeyD, ebiten.KeyArrowRight},
	component.InputRotateLeft:  {ebiten.KeyQ},
	component.InputRotateRight: {ebiten.KeyE},
	component.InputFpsToggle:   {ebiten.KeyF},
	component.InputTalkCancel:  {ebiten.KeyEnter, ebiten.KeyBackspace},
	component.InputDebugFly:    {ebiten.KeyF1},
}

var padBindings = map[component.InputAction][]ebiten.StandardGamepadButton{
	component.InputJump:        {ebiten.StandardGamepadButtonRightBottom},
	component.InputGrabThrow:   {ebiten.StandardGamepadButtonRightLeft},
	component.InputUp:          {ebiten.StandardGamepadButtonLeftTop},
	component.InputDown:        {ebiten.StandardGamepadButtonLeftBottom},
	component.InputLeft:        {ebiten.StandardGamepadButtonLeftLeft},
	component.InputRight:       {ebiten.StandardGamepadButtonLeftRight},
	component.InputRotateLeft:  {ebiten.StandardGamepadButtonFrontTopLeft},
	component.InputRotateRight: {ebiten.StandardGamepadButtonFrontTopRight},
	component.InputFpsToggle:   {ebiten.StandardGamepadButtonRightTop},
	component.InputTalkCancel:  {ebiten.StandardGamepadButtonRightRight},
}

// InputQuery is the read side of one tick of button state.
type InputQuery interface {
	Pressed(a component.InputAction) bool
	JustPressed(a component.InputAction) bool
	JustReleased(a component.InputAction) bool
	AnyPressed(a component.InputAction) bool
}

var _ InputQuery = (*component.Input)(nil)

// InputSystem reads the keyboard and the first standard gamepad into every
// Input component. Edges are derived from the previous tick's state.
type InputSystem struct {
	cursor    [2]int
	hasCursor bool
}

func NewInputSystem() *InputSystem {
	return &InputSystem{}
}

func (i *InputSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	var down [component.InputDebugFly + 1]bool
	for action, keys := range keyBindings {
		for _, k := range keys {
			if ebiten.IsKeyPressed(k) {
				down[action] = true
			}
		}
	}

	look := mgl64.Vec2{}
	if ebiten.IsKeyPressed(ebiten.KeyL) {
		look[0]++
	}
	if ebiten.IsKeyPressed(ebiten.KeyJ) {
		look[0]--
	}
	if ebiten.IsKeyPressed(ebiten.KeyI) {
		look[1]++
	}
	if ebiten.IsKeyPressed(ebiten.KeyK) {
		look[1]--
	}

	var stick mgl64.Vec2
	if gamepads := ebiten.AppendGamepadIDs(nil); len(gamepads) > 0 {
		id := gamepads[0]
		for action, buttons := range padBindings {
			for _, b := range buttons {
				if ebiten.IsStandardGamepadButtonPressed(id, b) {
					down[action] = true
				}
			}
		}
		lx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		ly := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		if math.Hypot(lx, ly) > stickDeadzone {
			stick = mgl64.Vec2{lx, -ly}
		}
		rx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal)
		ry := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical)
		if math.Hypot(rx, ry) > stickDeadzone {
			look = mgl64.Vec2{rx, -ry}
		}
	}

	var mouse mgl64.Vec2
	cx, cy := ebiten.CursorPosition()
	if i.hasCursor {
		mouse = mgl64.Vec2{float64(cx - i.cursor[0]), float64(cy - i.cursor[1])}
	}
	i.cursor, i.hasCursor = [2]int{cx, cy}, true

	move := stick
	if move[0] == 0 && move[1] == 0 {
		if down[component.InputRight] {
			move[0]++
		}
		if down[component.InputLeft] {
			move[0]--
		}
		if down[component.InputUp] {
			move[1]++
		}
		if down[component.InputDown] {
			move[1]--
		}
	} else {
		down[component.InputRight] = down[component.InputRight] || stick[0] > stickDeadzone
		down[component.InputLeft] = down[component.InputLeft] || stick[0] < -stickDeadzone
		down[component.InputUp] = down[component.InputUp] || stick[1] > stickDeadzone
		down[component.InputDown] = down[component.InputDown] || stick[1] < -stickDeadzone
	}

	ecs.ForEach(w, component.InputComponent.Kind(), func(e ecs.Entity, input *component.Input) {
		for a := range down {
			input.SetPressed(component.InputAction(a), down[a])
		}
		input.Movement = move
		input.FreeLook = look
		input.Mouse = mouse
	})
}
