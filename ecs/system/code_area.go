package system

import (
	"slices"

	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/rs/zerolog"
)

const (
	// codeHistory caps the remembered inputs of a code area.
	codeHistory = 16
	// codeIdleReset forgets a half-entered code after this many seconds
	// without input.
	codeIdleReset = 5.0
)

// codeInputs are the buttons a code is made of, in the order they are
// read when several go down on the same tick.
var codeInputs = []component.InputAction{
	component.InputLeft, component.InputRight, component.InputUp, component.InputDown,
	component.InputJump, component.InputGrabThrow,
	component.InputRotateLeft, component.InputRotateRight, component.InputTalkCancel,
}

// CodeAreaSystem records the buttons pressed while the player stands in a
// code area and resolves the area's puzzle once the recent presses end
// with its pattern. Entering or leaving the area starts over.
type CodeAreaSystem struct {
	level  *Level
	player *PlayerHandle
	space  *SpaceState
	pause  *Pause
	log    zerolog.Logger

	input func() InputQuery
}

func NewCodeAreaSystem(ctx *ActionContext, pause *Pause) *CodeAreaSystem {
	return &CodeAreaSystem{
		level:  ctx.Level,
		player: ctx.Player,
		space:  ctx.Space,
		pause:  pause,
		log:    ctx.Log,
		input:  func() InputQuery { return ctx.Player.Input() },
	}
}

func (s *CodeAreaSystem) Update(w *ecs.World) {
	if w == nil || s.pause.Active() {
		return
	}
	input := s.input()
	var solved []ecs.Entity
	ecs.ForEach3(w, component.CodeAreaComponent.Kind(), component.TransformComponent.Kind(), component.ColliderComponent.Kind(), func(e ecs.Entity, code *component.CodeArea, t *component.Transform, c *component.Collider) {
		if c.Disabled || code.Solved {
			return
		}
		inside := s.playerInside(*t, c)
		if inside != code.Inside {
			code.Inside = inside
			code.Entered = code.Entered[:0]
			code.SinceInput = 0
		}
		if !inside {
			return
		}
		if enterCode(code, input, FixedDelta) {
			solved = append(solved, e)
		}
	})

	for _, e := range solved {
		code, _ := ecs.Get(w, e, component.CodeAreaComponent.Kind())
		code.Solved = true
		name := s.level.NameOf(e)
		w.Events().Emit(ecs.Event{Kind: ecs.EventCodeEntered, Entity: e, Name: name})
		s.log.Info().Str("area", name).Msg("code accepted")
		s.level.ResolvePuzzle(e)
	}
}

func (s *CodeAreaSystem) playerInside(t component.Transform, c *component.Collider) bool {
	for _, hit := range s.space.Boxcast(t, c.Extents, component.LayerPlayer, false, 0) {
		if hit.Entity == s.player.Entity() {
			return true
		}
	}
	return false
}

// enterCode feeds one tick of input to code and reports whether the
// remembered presses now contain its pattern.
func enterCode(code *component.CodeArea, input InputQuery, delta float64) bool {
	pressed, ok := firstCodeInput(input)
	if !ok {
		code.SinceInput += delta
		if code.SinceInput >= codeIdleReset {
			code.Entered = code.Entered[:0]
			code.SinceInput = 0
		}
		return false
	}
	code.SinceInput = 0
	code.Entered = append(code.Entered, pressed)
	if over := len(code.Entered) - codeHistory; over > 0 {
		code.Entered = slices.Delete(code.Entered, 0, over)
	}
	if !containsRun(code.Entered, code.Pattern) {
		return false
	}
	code.Entered = code.Entered[:0]
	return true
}

func firstCodeInput(input InputQuery) (component.InputAction, bool) {
	for _, a := range codeInputs {
		if input.JustPressed(a) {
			return a, true
		}
	}
	return 0, false
}

// containsRun reports whether pattern appears as a contiguous run in
// history.
func containsRun(history, pattern []component.InputAction) bool {
	if len(pattern) == 0 || len(pattern) > len(history) {
		return false
	}
	for i := 0; i+len(pattern) <= len(history); i++ {
		if slices.Equal(history[i:i+len(pattern)], pattern) {
			return true
		}
	}
	return false
}
