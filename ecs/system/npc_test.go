package system

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
)

type npcParts struct {
	e    ecs.Entity
	npc  *component.Npc
	t    *component.Transform
	anim *component.Animation
}

// startNpc runs one update so every character picks its first action, then
// returns the named one.
func startNpc(t *testing.T, r *rig, s *NpcSystem, name string) npcParts {
	t.Helper()
	s.Update(r.w)
	e, ok := r.level().FindByName(name)
	if !ok {
		t.Fatalf("expected npc %q", name)
	}
	npc, _ := ecs.Get(r.w, e, component.NpcComponent.Kind())
	tr, _ := ecs.Get(r.w, e, component.TransformComponent.Kind())
	anim, _ := ecs.Get(r.w, e, component.AnimationComponent.Kind())
	if !npc.Started {
		t.Fatalf("expected %q started", name)
	}
	npc.SinceChange = 0
	npc.UntilChange = 1000
	return npcParts{e: e, npc: npc, t: tr, anim: anim}
}

// settleIdle lets the player land from the spawn point.
func settleIdle(t *testing.T, r *rig) {
	t.Helper()
	r.ticks(30)
	for i := 0; i < 300 && r.player().Action() != component.ActionIdle; i++ {
		r.tick()
	}
	if r.player().Action() != component.ActionIdle {
		t.Fatalf("expected the player idle, got %v", r.player().Action())
	}
}

func TestNpcStartsIdleOnItsPath(t *testing.T) {
	r := newRig(t, "village")
	s := NewNpcSystem(r.ctx, r.clips, r.pause)
	p := startNpc(t, r, s, "elder")

	if p.npc.Action != component.NpcIdle {
		t.Fatalf("expected idle, got %v", p.npc.Action)
	}
	if p.anim.Current != "npc_idle" || !p.anim.Playing {
		t.Fatalf("expected npc_idle playing, got %q playing=%v", p.anim.Current, p.anim.Playing)
	}
	if p.npc.WalkedDistance != 2 {
		t.Fatalf("expected a walked distance of 2, got %v", p.npc.WalkedDistance)
	}
	want := mgl64.Vec3{-1 + 2*p.npc.WalkStep, 0.9375, 1}
	if !p.t.Origin.ApproxEqual(want) {
		t.Fatalf("expected %v, got %v", want, p.t.Origin)
	}
}

func TestNpcWalkEndsAtPathEnd(t *testing.T) {
	r := newRig(t, "village")
	s := NewNpcSystem(r.ctx, r.clips, r.pause)
	p := startNpc(t, r, s, "elder")

	p.npc.Action = component.NpcWalk
	p.npc.Facing = component.DirRight
	p.npc.WalkStep = 0.9
	for i := 0; i < 60 && p.npc.Action == component.NpcWalk; i++ {
		s.Update(r.w)
	}
	if p.npc.Action == component.NpcWalk {
		t.Fatalf("expected a new action at the end of the path")
	}
	if p.npc.WalkStep != 1 {
		t.Fatalf("expected the step clamped to 1, got %v", p.npc.WalkStep)
	}
	if got := p.t.Origin.X(); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected to stop at x 1, got %v", got)
	}
}

func TestNpcActionEnds(t *testing.T) {
	cases := []struct {
		name   string
		can    []component.NpcAction
		action component.NpcAction
		after  component.NpcAction
	}{
		{"turn flips and walks", nil, component.NpcTurn, component.NpcWalk},
		{"special idle settles", []component.NpcAction{component.NpcIdle, component.NpcIdle2}, component.NpcIdle2, component.NpcIdle},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(t, "village")
			s := NewNpcSystem(r.ctx, r.clips, r.pause)
			p := startNpc(t, r, s, "elder")
			if tc.can != nil {
				p.npc.Can = map[component.NpcAction]bool{}
				for _, a := range tc.can {
					p.npc.Can[a] = true
				}
			}
			p.npc.Facing = component.DirRight
			p.npc.WalkStep = 0.5
			p.npc.Action = tc.action
			p.anim.Playing = false

			s.Update(r.w)
			if p.npc.Action != tc.after {
				t.Fatalf("expected %v, got %v", tc.after, p.npc.Action)
			}
			if p.anim.Current != tc.after.Clip() || !p.anim.Playing {
				t.Fatalf("expected clip %q playing, got %q playing=%v", tc.after.Clip(), p.anim.Current, p.anim.Playing)
			}
		})
	}
}

func TestNpcTurnFlipsFacing(t *testing.T) {
	r := newRig(t, "village")
	s := NewNpcSystem(r.ctx, r.clips, r.pause)
	p := startNpc(t, r, s, "elder")
	p.npc.Facing = component.DirRight
	p.npc.WalkStep = 0.5
	p.npc.Action = component.NpcTurn
	p.anim.Playing = false

	s.Update(r.w)
	if p.npc.Facing != component.DirLeft {
		t.Fatalf("expected to face left, got %v", p.npc.Facing)
	}
	if p.npc.WalkStep >= 0.5 {
		t.Fatalf("expected to walk back along the path, got step %v", p.npc.WalkStep)
	}
}

func TestNpcBurrowsAway(t *testing.T) {
	r := newRig(t, "arch")
	s := NewNpcSystem(r.ctx, r.clips, r.pause)
	p := startNpc(t, r, s, "mole")
	p.npc.Action = component.NpcBurrow
	p.anim.Playing = false

	s.Update(r.w)
	if ecs.IsAlive(r.w, p.e) {
		t.Fatalf("expected the mole gone")
	}
}

func TestNpcAvoidsPlayer(t *testing.T) {
	r := newRig(t, "arch")
	s := NewNpcSystem(r.ctx, r.clips, r.pause)
	p := startNpc(t, r, s, "mole")

	p.npc.Action = component.NpcWalk
	p.npc.Facing = component.DirLeft
	p.npc.WalkStep = 0.5
	p.t.Origin = mgl64.Vec3{-2, 0.9375, 0}
	r.player().SetOrigin(mgl64.Vec3{-2.5, 0.9375, 0})

	s.Update(r.w)
	if p.npc.Facing != component.DirRight {
		t.Fatalf("expected the mole to turn away, got %v", p.npc.Facing)
	}
	if p.npc.Action != component.NpcWalk {
		t.Fatalf("expected the mole to keep walking, got %v", p.npc.Action)
	}

	r.player().SetOrigin(mgl64.Vec3{-5, 0.9375, 0})
	before := p.npc.WalkStep
	s.Update(r.w)
	if p.npc.WalkStep >= before {
		t.Fatalf("expected the mole to walk back toward home, step %v then %v", before, p.npc.WalkStep)
	}
}

func TestNpcPathFollowsRotation(t *testing.T) {
	r := newRig(t, "village")
	s := NewNpcSystem(r.ctx, r.clips, r.pause)
	t.Cleanup(s.Close)
	p := startNpc(t, r, s, "elder")

	r.ctx.Camera.ChangeRotation(component.ViewRight, 0)

	if component.OrthogonalOf(p.t.Basis) != component.ViewRight {
		t.Fatalf("expected the npc to turn with the camera, got %v", component.OrthogonalOf(p.t.Basis))
	}
	if p.npc.WalkedDistance != 2 {
		t.Fatalf("expected a path into the screen to keep its distance, got %v", p.npc.WalkedDistance)
	}

	p.npc.Action = component.NpcWalk
	before := p.npc.WalkStep
	s.Update(r.w)
	if p.npc.WalkStep != before {
		t.Fatalf("expected no progress along a path into the screen, got %v then %v", before, p.npc.WalkStep)
	}
}

func TestNpcNextLine(t *testing.T) {
	speech := []string{"a", "b", "c"}
	cases := []struct {
		name  string
		once  bool
		lines []string
	}{
		{"cycles", false, []string{"a", "b", "c", "a", "b"}},
		{"first line once", true, []string{"a", "b", "c", "b", "c"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &NpcSystem{rand: rand.New(rand.NewPCG(1, 2))}
			npc := &component.Npc{Speech: speech, SayFirstLineOnce: tc.once}
			for i, want := range tc.lines {
				if got := s.nextLine(npc); got != want {
					t.Fatalf("line %d: expected %q, got %q", i, want, got)
				}
			}
		})
	}

	t.Run("random skips the first line once said", func(t *testing.T) {
		s := &NpcSystem{rand: rand.New(rand.NewPCG(1, 2))}
		npc := &component.Npc{Speech: speech, SayFirstLineOnce: true, RandomizeSpeech: true}
		if got := s.nextLine(npc); got != "a" {
			t.Fatalf("expected the first line first, got %q", got)
		}
		for i := 0; i < 50; i++ {
			if got := s.nextLine(npc); got == "a" {
				t.Fatalf("expected the first line never again, got it at %d", i)
			}
		}
	})
}

func TestNpcTalkWalksPlayerAside(t *testing.T) {
	r := newRig(t, "village")
	s := NewNpcSystem(r.ctx, r.clips, r.pause)
	t.Cleanup(s.Close)
	player := r.player()
	settleIdle(t, r)

	p := startNpc(t, r, s, "elder")
	p.npc.Action = component.NpcIdle
	p.t.Origin = mgl64.Vec3{0.5, 0.9375, 1}

	var spoken []string
	r.w.Events().Subscribe(ecs.EventNpcSpoke, func(e ecs.Event) { spoken = append(spoken, e.Name) })

	player.Input().SetPressed(component.InputTalkCancel, true)
	s.Update(r.w)
	player.Input().SetPressed(component.InputTalkCancel, false)
	if player.Action() != component.ActionWalkTo || !p.npc.WaitToSpeak {
		t.Fatalf("expected the player sent aside first, got %v waiting=%v", player.Action(), p.npc.WaitToSpeak)
	}
	if p.npc.Facing != component.DirLeft {
		t.Fatalf("expected the npc to face the player, got %v", p.npc.Facing)
	}

	for i := 0; i < 300 && player.Action() != component.ActionReadListen; i++ {
		r.tick()
		s.Update(r.w)
	}
	if player.Action() != component.ActionReadListen {
		t.Fatalf("expected the player to listen, got %v", player.Action())
	}
	if want := (mgl64.Vec3{0.5 - npcTalkDistance, player.Origin().Y(), 1}); !player.Origin().ApproxEqualThreshold(want, 1e-3) {
		t.Fatalf("expected the player beside the npc at %v, got %v", want, player.Origin())
	}
	if player.Facing() != component.DirRight {
		t.Fatalf("expected the player to face the npc, got %v", player.Facing())
	}
	if !p.npc.Speaking || p.npc.Action != component.NpcTalk {
		t.Fatalf("expected the npc talking, got speaking=%v %v", p.npc.Speaking, p.npc.Action)
	}
	if len(spoken) != 1 || spoken[0] != "Welcome to the village." {
		t.Fatalf("expected the first line spoken once, got %v", spoken)
	}

	for i := 0; i < 30; i++ {
		r.tick()
		s.Update(r.w)
	}
	player.Input().SetPressed(component.InputTalkCancel, true)
	r.tick()
	s.Update(r.w)
	if player.Action() == component.ActionReadListen {
		t.Fatalf("expected TalkCancel to close the conversation")
	}
	if p.npc.Speaking || p.npc.Line != "" {
		t.Fatalf("expected the line cleared, got speaking=%v %q", p.npc.Speaking, p.npc.Line)
	}
	if p.npc.Action == component.NpcTalk {
		t.Fatalf("expected the npc to move on from talking")
	}
}

func TestNpcIgnoresTalkOutOfReach(t *testing.T) {
	r := newRig(t, "village")
	s := NewNpcSystem(r.ctx, r.clips, r.pause)
	t.Cleanup(s.Close)
	settleIdle(t, r)
	p := startNpc(t, r, s, "elder")
	p.npc.Action = component.NpcIdle
	p.t.Origin = mgl64.Vec3{-1.2, 0.9375, 1}

	r.player().Input().SetPressed(component.InputTalkCancel, true)
	s.Update(r.w)
	if r.player().Action() != component.ActionIdle || p.npc.Line != "" {
		t.Fatalf("expected no conversation out of reach, got %v %q", r.player().Action(), p.npc.Line)
	}
}
