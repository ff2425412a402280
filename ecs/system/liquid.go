package system

import (
	"math"

	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
)

// Liquid returns the level's liquid, if it has one.
func (l *Level) Liquid() (*component.Liquid, bool) {
	e, ok := ecs.First(l.w, component.LiquidComponent.Kind())
	if !ok {
		return nil, false
	}
	return ecs.Get(l.w, e, component.LiquidComponent.Kind())
}

// LiquidHeight is the world Y of the liquid surface.
func (l *Level) LiquidHeight() (float64, bool) {
	liquid, ok := l.Liquid()
	if !ok {
		return 0, false
	}
	return liquid.Height, true
}

// SetWaterHeight moves the surface to height at the default speed.
func (l *Level) SetWaterHeight(height float64) {
	liquid, ok := l.Liquid()
	if !ok {
		return
	}
	liquid.Moving = true
	liquid.Raising = false
	liquid.Target = height
	liquid.Speed = l.tuning.Liquid.Speed
}

// RaiseWater moves the surface toward height at unitsPerSecond. A raise
// started while the liquid moves interrupts that move.
func (l *Level) RaiseWater(unitsPerSecond, height float64) {
	liquid, ok := l.Liquid()
	if !ok {
		return
	}
	if liquid.Moving {
		l.finishLiquid(liquid)
	}
	liquid.Moving = true
	liquid.Raising = true
	liquid.Stops = 0
	liquid.Target = height
	liquid.Speed = math.Abs(unitsPerSecond)
}

// StopWater halts a raise at the next update.
func (l *Level) StopWater() {
	if liquid, ok := l.Liquid(); ok && liquid.Moving && liquid.Raising {
		liquid.Stops++
	}
}

// UpdateLiquid advances a moving surface by delta seconds.
func (l *Level) UpdateLiquid(delta float64) {
	liquid, ok := l.Liquid()
	if !ok || !liquid.Moving {
		return
	}
	if liquid.Raising && liquid.Stops > 0 {
		liquid.Stops--
		l.finishLiquid(liquid)
		return
	}
	diff := liquid.Target - liquid.Height
	step := liquid.Speed * delta
	if math.Abs(diff) <= step {
		liquid.Height = liquid.Target
		l.finishLiquid(liquid)
		return
	}
	liquid.Height += math.Copysign(step, diff)
}

// finishLiquid stops the surface and remembers where it came to rest.
// Water rests level-wide as an offset from its authored height; other
// liquids rest per level.
func (l *Level) finishLiquid(liquid *component.Liquid) {
	liquid.Moving = false
	liquid.Raising = false
	data := l.state.Data()
	if liquid.Type == component.LiquidWater {
		offset := liquid.Height - liquid.OriginalHeight
		data.GlobalWaterHeight = &offset
		return
	}
	h := liquid.Height
	data.ThisLevel().LastStableWaterHeight = &h
}

// ReestablishHeight restores the saved surface when the level loads and
// keeps it below a player spawned under it.
func (l *Level) ReestablishHeight(player *PlayerHandle) {
	liquid, ok := l.Liquid()
	if !ok {
		return
	}
	data := l.state.Data()
	this := data.ThisLevel()
	liquid.OriginalHeight = liquid.Height

	switch {
	case liquid.Type == component.LiquidWater && data.GlobalWaterHeight != nil:
		liquid.Height += *data.GlobalWaterHeight
	case this.LastStableWaterHeight == nil:
		h := liquid.Height
		this.LastStableWaterHeight = &h
	default:
		liquid.Height = *this.LastStableWaterHeight
	}

	if player == nil {
		return
	}
	if y := player.Origin().Y(); y <= liquid.Height {
		diff := y - liquid.Height - 1
		liquid.Height += diff
		if liquid.Type == component.LiquidWater && data.GlobalWaterHeight != nil {
			offset := *data.GlobalWaterHeight + diff
			data.GlobalWaterHeight = &offset
		}
	}
}

// LiquidSystem moves the level's liquid surface once per tick.
type LiquidSystem struct {
	level *Level
}

func NewLiquidSystem(level *Level) *LiquidSystem {
	return &LiquidSystem{level: level}
}

func (s *LiquidSystem) Update(w *ecs.World) {
	if w == nil || s.level == nil {
		return
	}
	s.level.UpdateLiquid(FixedDelta)
}
