package system

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/prefabs"
	"github.com/rs/zerolog"
)

// TriggerSystem runs a trigger's tengo script when a body enters its
// volume. Scripts see the globals `target` (the entering body's name, or
// "player") and `trigger`, and can call perform, set_water,
// resolve_puzzle, move, enable and log.
type TriggerSystem struct {
	level  *Level
	player *PlayerHandle
	space  *SpaceState
	pause  *Pause
	log    zerolog.Logger

	compiled map[string]*tengo.Compiled
}

func NewTriggerSystem(ctx *ActionContext, pause *Pause) *TriggerSystem {
	return &TriggerSystem{
		level:    ctx.Level,
		player:   ctx.Player,
		space:    ctx.Space,
		pause:    pause,
		log:      ctx.Log,
		compiled: map[string]*tengo.Compiled{},
	}
}

// Invalidate drops the compiled copy of a script so the next run reloads
// it from disk.
func (s *TriggerSystem) Invalidate(script string) {
	delete(s.compiled, strings.TrimSuffix(script, ".tengo"))
}

func (s *TriggerSystem) Update(w *ecs.World) {
	if w == nil || s.pause.Active() {
		return
	}
	type firing struct {
		trigger ecs.Entity
		script  string
		target  ecs.Entity
	}
	var fire []firing

	ecs.ForEach3(w, component.TriggerComponent.Kind(), component.TransformComponent.Kind(), component.ColliderComponent.Kind(), func(e ecs.Entity, trig *component.Trigger, t *component.Transform, c *component.Collider) {
		if c.Disabled || (trig.Once && trig.Fired) {
			return
		}
		mask := trig.Mask
		if mask == component.LayerNone {
			mask = component.LayerPlayer
		}
		inside := make(map[ecs.Entity]bool)
		for _, hit := range s.space.Boxcast(*t, c.Extents, mask, false, 0) {
			if hit.Entity == e {
				continue
			}
			inside[hit.Entity] = true
			if !trig.Inside[hit.Entity] {
				fire = append(fire, firing{trigger: e, script: trig.Script, target: hit.Entity})
			}
		}
		trig.Inside = inside
	})

	for _, f := range fire {
		trig, ok := ecs.Get(w, f.trigger, component.TriggerComponent.Kind())
		if !ok || (trig.Once && trig.Fired) {
			continue
		}
		trig.Fired = true
		if err := s.Run(f.script, s.targetName(f.target), s.level.NameOf(f.trigger)); err != nil {
			s.log.Error().Err(err).Str("script", f.script).Msg("trigger script failed")
		}
	}
}

func (s *TriggerSystem) targetName(e ecs.Entity) string {
	if s.player != nil && e == s.player.Entity() {
		return "player"
	}
	return s.level.NameOf(e)
}

// Run executes script once with the given target and trigger names.
func (s *TriggerSystem) Run(script, target, trigger string) error {
	compiled, err := s.compile(script)
	if err != nil {
		return err
	}
	run := compiled.Clone()
	if err := run.Set("target", target); err != nil {
		return err
	}
	if err := run.Set("trigger", trigger); err != nil {
		return err
	}
	if err := run.Set("__host", s.hostFunctions()); err != nil {
		return err
	}
	return run.Run()
}

// triggerPrelude binds the host functions to top level names.
const triggerPrelude = `
perform := __host.perform
set_water := __host.set_water
resolve_puzzle := __host.resolve_puzzle
move := __host.move
enable := __host.enable
log := __host.log
`

func (s *TriggerSystem) compile(script string) (*tengo.Compiled, error) {
	name := strings.TrimSuffix(script, ".tengo")
	if c, ok := s.compiled[name]; ok {
		return c, nil
	}
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("trigger: load %s: %w", name, err)
	}
	ts := tengo.NewScript([]byte(triggerPrelude + "\n" + string(src)))
	_ = ts.Add("target", "")
	_ = ts.Add("trigger", "")
	_ = ts.Add("__host", map[string]any{})
	ts.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	compiled, err := ts.Compile()
	if err != nil {
		return nil, fmt.Errorf("trigger: compile %s: %w", name, err)
	}
	s.compiled[name] = compiled
	return compiled, nil
}

func (s *TriggerSystem) hostFunctions() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["perform"] = &tengo.UserFunction{Name: "perform", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 || s.player == nil {
			return tengo.FalseValue, nil
		}
		action, err := component.ParseActionType(objectAsString(args[0]))
		if err != nil {
			return nil, err
		}
		return boolObject(s.perform(action)), nil
	}}

	values["set_water"] = &tengo.UserFunction{Name: "set_water", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		height, ok := tengo.ToFloat64(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "height", Expected: "float", Found: args[0].TypeName()}
		}
		speed := 0.0
		if len(args) > 1 {
			speed, _ = tengo.ToFloat64(args[1])
		}
		if speed > 0 {
			s.level.RaiseWater(speed, height)
		} else {
			s.level.SetWaterHeight(height)
		}
		return tengo.TrueValue, nil
	}}

	values["resolve_puzzle"] = &tengo.UserFunction{Name: "resolve_puzzle", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			s.level.ResolvePuzzleSilent()
			return tengo.TrueValue, nil
		}
		e, ok := s.level.FindByName(objectAsString(args[0]))
		if !ok {
			s.level.ResolvePuzzleSilent()
			return tengo.FalseValue, nil
		}
		s.level.ResolvePuzzle(e)
		return tengo.TrueValue, nil
	}}

	values["move"] = &tengo.UserFunction{Name: "move", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 5 {
			return nil, tengo.ErrWrongNumArguments
		}
		var v [4]float64
		for i := range v {
			f, ok := tengo.ToFloat64(args[i+1])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "offset", Expected: "float", Found: args[i+1].TypeName()}
			}
			v[i] = f
		}
		e, ok := s.level.FindByName(objectAsString(args[0]))
		if !ok {
			return tengo.FalseValue, nil
		}
		return boolObject(StartMove(s.level.World(), e, mgl64.Vec3{v[0], v[1], v[2]}, v[3])), nil
	}}

	values["enable"] = &tengo.UserFunction{Name: "enable", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		e, ok := s.level.FindByName(objectAsString(args[0]))
		if !ok {
			return tengo.FalseValue, nil
		}
		Enable(s.level.World(), e)
		return tengo.TrueValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		s.log.Info().Str("level", s.level.Name()).Msg(strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

// perform starts action on a living player that is not in the middle of a
// level change.
func (s *TriggerSystem) perform(action component.ActionType) bool {
	p := s.player
	if !action.Valid() || action == component.ActionNone || !p.Alive() || p.Action() == component.ActionNone ||
		p.Action() == action {
		return false
	}
	p.SetAction(action)
	return true
}

// Enable shows a hidden node and makes it collide and collectable again.
func Enable(w *ecs.World, e ecs.Entity) {
	if c, ok := ecs.Get(w, e, component.ColliderComponent.Kind()); ok {
		c.Hidden = false
		c.Disabled = false
	}
	if c, ok := ecs.Get(w, e, component.CollectableComponent.Kind()); ok {
		c.Monitorable = true
	}
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
