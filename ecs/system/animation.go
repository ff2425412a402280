package system

import (
	"fmt"
	"math"

	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
)

// Animator is the clip player behaviors drive. Only timing is modeled.
type Animator interface {
	Play(name string)
	Stop()
	Seek(position float64)
	Advance(delta float64)
	HasClip(name string) bool
	Loops(name string) bool
	IsPlaying() bool
	Current() string
	Position() float64
	Length() float64
	Speed() float64
	SetSpeed(speed float64)
	SetLoop(loop bool)
}

// AnimationPlayer plays clips from a clip table over an Animation
// component.
type AnimationPlayer struct {
	state *component.Animation
	clips map[string]component.AnimationClip
}

func NewAnimationPlayer(state *component.Animation, clips map[string]component.AnimationClip) *AnimationPlayer {
	if state == nil {
		state = &component.Animation{}
	}
	if state.Speed == 0 {
		state.Speed = 1
	}
	return &AnimationPlayer{state: state, clips: clips}
}

func (p *AnimationPlayer) HasClip(name string) bool {
	_, ok := p.clips[name]
	return ok
}

func (p *AnimationPlayer) Loops(name string) bool {
	return p.clips[name].Loop
}

// Play starts name from the beginning unless it is already playing.
func (p *AnimationPlayer) Play(name string) {
	clip, ok := p.clips[name]
	if !ok {
		panic(fmt.Sprintf("animation: no clip %q", name))
	}
	if p.state.Current == name && p.state.Playing {
		return
	}
	p.state.Current = name
	p.state.Position = 0
	p.state.Playing = true
	p.state.Loop = clip.Loop
}

func (p *AnimationPlayer) Stop() {
	p.state.Playing = false
	p.state.Position = 0
}

func (p *AnimationPlayer) Seek(position float64) {
	p.state.Position = math.Max(0, math.Min(position, p.Length()))
}

// Advance moves the playhead by delta scaled by the playback speed. A
// clip that does not loop stops at its end.
func (p *AnimationPlayer) Advance(delta float64) {
	if !p.state.Playing {
		return
	}
	length := p.Length()
	p.state.Position += delta * p.state.Speed
	if length <= 0 || p.state.Position < length {
		return
	}
	if p.state.Loop {
		p.state.Position = math.Mod(p.state.Position, length)
		return
	}
	p.state.Position = length
	p.state.Playing = false
}

func (p *AnimationPlayer) IsPlaying() bool { return p.state.Playing }

func (p *AnimationPlayer) Current() string { return p.state.Current }

func (p *AnimationPlayer) Position() float64 { return p.state.Position }

func (p *AnimationPlayer) Length() float64 {
	return p.clips[p.state.Current].Length
}

func (p *AnimationPlayer) Speed() float64 { return p.state.Speed }

func (p *AnimationPlayer) SetSpeed(speed float64) { p.state.Speed = speed }

func (p *AnimationPlayer) SetLoop(loop bool) { p.state.Loop = loop }

// Progress is the normalized playhead of a, in [0, 1].
func Progress(a Animator) float64 {
	if a.Length() <= 0 {
		return 1
	}
	return math.Min(1, a.Position()/a.Length())
}

// AnimationSystem advances every Animation component by one tick. While
// the pause is active only entities accepted by KeepPlaying advance.
type AnimationSystem struct {
	clips map[string]component.AnimationClip
	pause *Pause

	KeepPlaying func(e ecs.Entity) bool
}

func NewAnimationSystem(clips map[string]component.AnimationClip, pause *Pause) *AnimationSystem {
	return &AnimationSystem{clips: clips, pause: pause}
}

func (a *AnimationSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.AnimationComponent.Kind(), func(e ecs.Entity, anim *component.Animation) {
		if a.pause.Active() && (a.KeepPlaying == nil || !a.KeepPlaying(e)) {
			return
		}
		NewAnimationPlayer(anim, a.clips).Advance(FixedDelta)
	})
}

// Pause is raised while the camera rotates.
type Pause struct {
	active bool
}

func (p *Pause) Active() bool { return p != nil && p.active }

func (p *Pause) Set(active bool) {
	if p != nil {
		p.active = active
	}
}
