package component

import "github.com/go-gl/mathgl/mgl64"

// InputAction is a logical button.
type InputAction int

const (
	InputJump InputAction = iota
	InputGrabThrow
	InputUp
	InputDown
	InputLeft
	InputRight
	InputRotateLeft
	InputRotateRight
	InputFpsToggle
	InputTalkCancel
	InputDebugFly

	inputActionCount
)

var inputNames = [inputActionCount]string{
	"jump", "grab_throw", "up", "down", "left", "right",
	"rotate_left", "rotate_right", "fps_toggle", "talk_cancel", "debug_fly",
}

func (a InputAction) String() string {
	if a < 0 || a >= inputActionCount {
		return "invalid"
	}
	return inputNames[a]
}

// ParseInputAction maps a name such as "rotate_left" to its action.
func ParseInputAction(name string) (InputAction, bool) {
	for i, n := range inputNames {
		if n == name {
			return InputAction(i), true
		}
	}
	return 0, false
}

// Input stores per-frame input state. Movement and FreeLook are in
// [-1, 1] with +Y up.
type Input struct {
	Movement mgl64.Vec2
	FreeLook mgl64.Vec2
	// Mouse is the cursor motion since the last frame, in pixels.
	Mouse mgl64.Vec2

	pressed      [inputActionCount]bool
	justPressed  [inputActionCount]bool
	justReleased [inputActionCount]bool
}

var InputComponent = NewComponent[Input]()

// SetPressed records the button state for this frame, deriving the edges
// from the previous frame.
func (in *Input) SetPressed(a InputAction, down bool) {
	if a < 0 || a >= inputActionCount {
		return
	}
	was := in.pressed[a]
	in.pressed[a] = down
	in.justPressed[a] = down && !was
	in.justReleased[a] = !down && was
}

func (in *Input) Pressed(a InputAction) bool {
	return a >= 0 && a < inputActionCount && in.pressed[a]
}

func (in *Input) JustPressed(a InputAction) bool {
	return a >= 0 && a < inputActionCount && in.justPressed[a]
}

func (in *Input) JustReleased(a InputAction) bool {
	return a >= 0 && a < inputActionCount && in.justReleased[a]
}

// AnyPressed reports whether the button is held or was pressed this frame.
func (in *Input) AnyPressed(a InputAction) bool {
	return in.Pressed(a) || in.JustPressed(a)
}
