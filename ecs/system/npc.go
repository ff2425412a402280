package system

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
	"github.com/rs/zerolog"
)

const (
	// npcTalkDistance is how far to the side of a character the player
	// stands while it talks.
	npcTalkDistance = 1.125
	// npcAvoidDistance is how close ahead the player may come before a
	// shy character turns around.
	npcAvoidDistance = 1.0
	npcMinChange     = 2.0
	npcMaxChange     = 5.0
)

// npcTalkReach is the half size of the rect cast from a character to find
// the player. It stays clear of the floor under the character.
var npcTalkReach = mgl64.Vec3{0.5, 0.25, 0.5}

// NpcSystem runs characters: it picks idle, turn and walk actions on a
// timer, paces them along their path and starts a conversation when the
// player presses TalkCancel in front of one. A player standing too close
// is first walked to the character's side with the WalkTo plan.
type NpcSystem struct {
	player *PlayerHandle
	space  *SpaceState
	camera *CameraController
	walkTo *WalkToPlan
	pause  *Pause
	clips  map[string]component.AnimationClip
	rand   *rand.Rand
	log    zerolog.Logger
	w      *ecs.World

	input       func() InputQuery
	unsubscribe []func()
}

func NewNpcSystem(ctx *ActionContext, clips map[string]component.AnimationClip, pause *Pause) *NpcSystem {
	rng := ctx.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	s := &NpcSystem{
		player: ctx.Player,
		space:  ctx.Space,
		camera: ctx.Camera,
		walkTo: ctx.WalkTo,
		pause:  pause,
		clips:  clips,
		rand:   rng,
		log:    ctx.Log,
		w:      ctx.World,
	}
	s.input = func() InputQuery { return ctx.Player.Input() }
	events := ctx.World.Events()
	s.unsubscribe = append(s.unsubscribe,
		events.Subscribe(ecs.EventRotating, s.onRotating),
		events.Subscribe(ecs.EventRotated, s.onRotated),
		events.Subscribe(ecs.EventWalkedTo, s.onWalkedTo),
	)
	return s
}

// Close drops the event subscriptions.
func (s *NpcSystem) Close() {
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.unsubscribe = nil
}

func (s *NpcSystem) onRotating(ecs.Event) {
	if s.camera == nil {
		return
	}
	basis := s.camera.Basis()
	ecs.ForEach2(s.w, component.NpcComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, _ *component.Npc, t *component.Transform) {
		t.Basis = basis
	})
}

// onRotated recomputes how far each character walks in the new view.
func (s *NpcSystem) onRotated(ecs.Event) {
	axes := s.axes()
	ecs.ForEach2(s.w, component.NpcComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, npc *component.Npc, t *component.Transform) {
		updatePath(npc, axes)
		if s.camera != nil {
			t.Basis = s.camera.Orthogonal().Basis()
		}
	})
}

// onWalkedTo lets a character that was waiting for the player speak.
func (s *NpcSystem) onWalkedTo(ecs.Event) {
	ecs.ForEach2(s.w, component.NpcComponent.Kind(), component.AnimationComponent.Kind(), func(e ecs.Entity, npc *component.Npc, anim *component.Animation) {
		if npc.WaitToSpeak {
			s.speak(e, npc, anim)
		}
	})
}

func (s *NpcSystem) axes() component.Axes {
	if s.camera == nil {
		return component.NewAxes(mgl64.Ident3(), 1)
	}
	return component.NewAxes(s.camera.Orthogonal().Basis(), 1)
}

func (s *NpcSystem) Update(w *ecs.World) {
	if w == nil || s.pause.Active() {
		return
	}
	var gone []ecs.Entity
	ecs.ForEach3(w, component.NpcComponent.Kind(), component.TransformComponent.Kind(), component.AnimationComponent.Kind(), func(e ecs.Entity, npc *component.Npc, t *component.Transform, anim *component.Animation) {
		if !npc.Started {
			s.start(npc, t, anim)
		}
		if s.tick(e, npc, t, anim) {
			gone = append(gone, e)
		}
	})
	for _, e := range gone {
		ecs.DestroyEntity(w, e)
	}
}

func (s *NpcSystem) start(npc *component.Npc, t *component.Transform, anim *component.Animation) {
	npc.WalkStep = s.rand.Float64()
	npc.Home = t.Origin
	npc.Facing = component.DirRight
	axes := s.axes()
	updatePath(npc, axes)
	s.walk(npc, t, anim, axes, 0)
	s.toggle(npc, anim)
	if s.camera != nil {
		t.Basis = s.camera.Orthogonal().Basis()
	}
	npc.Started = true
}

// tick runs one step of a character and reports whether it burrowed away.
func (s *NpcSystem) tick(e ecs.Entity, npc *component.Npc, t *component.Transform, anim *component.Animation) bool {
	if npc.WaitToSpeak {
		if s.player.Action() != component.ActionWalkTo {
			npc.WaitToSpeak = false
			npc.Line = ""
		}
		return false
	}

	if npc.Action.AllowsRandomChange() {
		npc.SinceChange += FixedDelta
		if npc.SinceChange >= npc.UntilChange {
			if s.toggle(npc, anim) {
				return true
			}
		}
	} else if !npc.Action.Loops() && !anim.Playing && npc.Action != component.NpcHide {
		if s.toggle(npc, anim) {
			return true
		}
	}

	if npc.Action != component.NpcTalk {
		if npc.Can[component.NpcTalk] && len(npc.Speech) > 0 {
			s.tryTalk(e, npc, t, anim)
		}
		if npc.Action == component.NpcWalk {
			return s.walk(npc, t, anim, s.axes(), FixedDelta)
		}
	} else if s.tryStopTalk(npc) {
		s.toggle(npc, anim)
	}
	return false
}

// walk moves the character along its path. Reaching either end picks a
// new action and a shy character turns back from the player.
func (s *NpcSystem) walk(npc *component.Npc, t *component.Transform, anim *component.Animation, axes component.Axes, delta float64) bool {
	target := axes.Right.Mul(npc.Facing.Sign()).Dot(mathz.SignVec(npc.Path))
	current := npc.WalkedDistance
	if mathz.IsZeroApprox(current) {
		current = 1
	}
	npc.WalkStep += target / current * delta * npc.WalkSpeed

	if npc.WalkStep > 1 || npc.WalkStep < 0 {
		npc.WalkStep = mathz.Clamp01(npc.WalkStep)
		s.settle(npc, t)
		return s.toggle(npc, anim)
	}
	if delta > 0 && npc.AvoidsPlayer && s.playerAhead(npc, t, axes) {
		s.turn(npc)
		return false
	}
	s.settle(npc, t)
	return false
}

func (s *NpcSystem) settle(npc *component.Npc, t *component.Transform) {
	t.Origin = mathz.LerpVec(npc.Home, npc.Home.Add(npc.Path), npc.WalkStep)
}

func (s *NpcSystem) playerAhead(npc *component.Npc, t *component.Transform, axes component.Axes) bool {
	diff := s.player.Origin().Sub(t.Origin)
	ahead := diff.Dot(axes.Right) * npc.Facing.Sign()
	return ahead > 0 && ahead < npcAvoidDistance && math.Abs(diff.Dot(axes.Up)) < 1
}

// updatePath keeps the previous distance when the path points into the
// screen.
func updatePath(npc *component.Npc, axes component.Axes) {
	if d := math.Abs(npc.Path.Dot(axes.XMask)); !mathz.IsZeroApprox(d) {
		npc.WalkedDistance = d
	}
}

// toggle picks the next action and restarts the change timer. It reports
// whether the character burrowed away.
func (s *NpcSystem) toggle(npc *component.Npc, anim *component.Animation) bool {
	old := npc.Action
	if !npc.Started {
		npc.Action = component.NpcWalk
		if npc.Can[component.NpcIdle] {
			npc.Action = component.NpcIdle
		}
	} else if s.randomize(npc) {
		return true
	}
	npc.UntilChange = npcMinChange + s.rand.Float64()*(npcMaxChange-npcMinChange)
	npc.SinceChange = 0
	if !npc.Started || old != npc.Action {
		s.play(npc, anim)
	}
	return false
}

func (s *NpcSystem) randomize(npc *component.Npc) bool {
	switch npc.Action {
	case component.NpcTurn:
		s.turn(npc)
	case component.NpcBurrow:
		return true
	default:
		if (s.chance() || !npc.Can[component.NpcWalk]) && npc.Can[component.NpcIdle] {
			if npc.Can[component.NpcWalk] || s.chance() {
				s.chooseIdle(npc)
			} else {
				s.startTurn(npc)
			}
			return false
		}
		if !npc.Can[component.NpcWalk] {
			return false
		}
		if npc.WalkStep >= 1 || npc.WalkStep <= 0 {
			if npc.Can[component.NpcIdle] && s.chance() {
				s.chooseIdle(npc)
			} else {
				s.startTurn(npc)
			}
			return false
		}
		if npc.Can[component.NpcTurn] && s.chance() {
			npc.Action = component.NpcTurn
			return false
		}
		npc.Action = component.NpcWalk
	}
	return false
}

func (s *NpcSystem) startTurn(npc *component.Npc) {
	if npc.Can[component.NpcTurn] {
		npc.Action = component.NpcTurn
		return
	}
	s.turn(npc)
}

// turn flips the character and sets it walking, or idling when it
// cannot walk.
func (s *NpcSystem) turn(npc *component.Npc) {
	npc.Facing = npc.Facing.Opposite()
	if npc.Can[component.NpcWalk] {
		npc.Action = component.NpcWalk
	} else {
		npc.Action = component.NpcIdle
	}
}

func (s *NpcSystem) chooseIdle(npc *component.Npc) {
	if npc.Action.IsSpecialIdle() {
		npc.Action = component.NpcIdle
		return
	}
	variants := []component.NpcAction{component.NpcIdle}
	for _, a := range []component.NpcAction{component.NpcIdle2, component.NpcIdle3} {
		if npc.Can[a] {
			variants = append(variants, a)
		}
	}
	npc.Action = variants[s.rand.IntN(len(variants))]
}

func (s *NpcSystem) chance() bool {
	return s.rand.Float64() < 0.5
}

func (s *NpcSystem) play(npc *component.Npc, anim *component.Animation) {
	player := NewAnimationPlayer(anim, s.clips)
	if player.HasClip(npc.Action.Clip()) {
		player.Play(npc.Action.Clip())
	}
}

// tryTalk starts a conversation when the player stands on the ground in
// front of the character and presses TalkCancel.
func (s *NpcSystem) tryTalk(e ecs.Entity, npc *component.Npc, t *component.Transform, anim *component.Animation) {
	switch s.player.Action() {
	case component.ActionIdle, component.ActionWalk, component.ActionRun, component.ActionSlide:
	default:
		return
	}
	if s.player.InBackground() || npc.Speaking || npc.Line != "" || !s.input().JustPressed(component.InputTalkCancel) {
		return
	}
	if s.space.CastRect(*t, npcTalkReach, component.LayerPlayer, false).First == nil {
		return
	}
	s.talk(e, npc, t, anim)
}

func (s *NpcSystem) talk(e ecs.Entity, npc *component.Npc, t *component.Transform, anim *component.Animation) {
	npc.Line = s.nextLine(npc)
	axes := s.axes()
	p := s.player
	diff := p.Origin().Sub(t.Origin)
	x := diff.Dot(axes.Right)

	npc.Facing = component.DirectionFrom(x)
	if npc.Facing == component.DirNone {
		npc.Facing = component.DirRight
	}
	p.SetFacing(npc.Facing.Opposite())

	if math.Abs(x) >= 1 {
		p.SetAction(component.ActionReadListen)
		s.speak(e, npc, anim)
		return
	}

	side := npc.Facing.Sign()
	at := t.Origin
	s.walkTo.Start(p, component.ActionReadListen, func() mgl64.Vec3 {
		return mathz.Scale(at, axes.XZMask).Add(mathz.Scale(p.Origin(), axes.YMask)).Add(axes.Right.Mul(side * npcTalkDistance))
	})
	npc.WaitToSpeak = true
	if npc.Can[component.NpcIdle] {
		npc.Action = component.NpcIdle
		s.play(npc, anim)
	}
}

func (s *NpcSystem) nextLine(npc *component.Npc) string {
	first := 0
	if npc.SayFirstLineOnce && npc.SaidFirstLine && len(npc.Speech) > 1 {
		first = 1
	}
	var i int
	switch {
	case !npc.SaidFirstLine:
		i = 0
	case npc.RandomizeSpeech:
		i = first + s.rand.IntN(len(npc.Speech)-first)
	default:
		i = npc.LineIndex + 1
		if i >= len(npc.Speech) {
			i = first
		}
	}
	npc.LineIndex = i
	npc.SaidFirstLine = true
	return npc.Speech[i]
}

// speak puts the current line on screen.
func (s *NpcSystem) speak(e ecs.Entity, npc *component.Npc, anim *component.Animation) {
	npc.WaitToSpeak = false
	npc.Speaking = true
	npc.Action = component.NpcTalk
	s.play(npc, anim)
	s.w.Events().Emit(ecs.Event{Kind: ecs.EventNpcSpoke, Entity: e, Name: npc.Line})
	s.log.Debug().Str("line", npc.Line).Msg("npc spoke")
}

// tryStopTalk clears the line once the player closed the conversation.
func (s *NpcSystem) tryStopTalk(npc *component.Npc) bool {
	if s.player.Action() == component.ActionReadListen {
		return false
	}
	npc.Line = ""
	npc.Speaking = false
	return true
}
