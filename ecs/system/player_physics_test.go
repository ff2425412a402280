package system

import (
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs/component"
)

// record ticks the rig n times and returns every action change.
func (r *rig) record(n int, each func()) []component.ActionType {
	p := r.player()
	last := p.Action()
	var seq []component.ActionType
	for i := 0; i < n; i++ {
		if each != nil {
			each()
		}
		r.tick()
		if p.Action() != last {
			last = p.Action()
			seq = append(seq, last)
		}
	}
	return seq
}

func TestJumpThenLand(t *testing.T) {
	r := newRig(t, "village")
	p := r.player()
	r.ticks(30)
	if !p.OnFloor() {
		t.Fatalf("expected the player to settle on the floor, at %v", p.Origin())
	}

	p.Input().SetPressed(component.InputJump, true)
	r.tick()
	if p.Action() != component.ActionJump {
		t.Fatalf("expected jump, got %v", p.Action())
	}
	if got, want := p.Velocity().Y(), r.ctx.Move.Jump.Jump; math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected jump speed %v, got %v", want, got)
	}

	p.Input().SetPressed(component.InputJump, true)
	seq := r.record(300, nil)
	want := []component.ActionType{component.ActionFall, component.ActionLand, component.ActionIdle}
	if fmt.Sprint(seq) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, seq)
	}
	if !p.OnFloor() {
		t.Fatalf("expected the player back on the floor")
	}
}

func TestLadderApproachDependsOnView(t *testing.T) {
	cases := []struct {
		name  string
		view  component.Orthogonal
		climb component.ActionType
		enter component.ActionType
	}{
		{"front sees the side", component.ViewFront, component.ActionClimbSide, component.ActionIdleToClimbSide},
		{"right sees the back", component.ViewRight, component.ActionClimbBack, component.ActionIdleToClimbBack},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(t, "village")
			p := r.player()
			r.ticks(20)
			p.Transform().Basis = tc.view.Basis()
			p.SetOrigin(mgl64.Vec3{-3, 0.9375, 1})
			r.ticks(5)

			p.Input().Movement = mgl64.Vec2{0, 1}
			seq := r.record(400, func() { p.Input().SetPressed(component.InputUp, true) })

			enter := slices.Index(seq, tc.enter)
			climb := slices.Index(seq, tc.climb)
			if enter < 0 || climb < enter {
				t.Fatalf("expected %v then %v, got %v", tc.enter, tc.climb, seq)
			}
		})
	}
}

func TestLadderTopOut(t *testing.T) {
	r := newRig(t, "village")
	p := r.player()
	r.ticks(20)
	ladder, ok := r.level().FindByName("ladder")
	if !ok {
		t.Fatalf("expected the village ladder")
	}
	top, _ := OriginOf(r.w, ladder)
	top = top.Add(mgl64.Vec3{0, 1.5, 0})

	p.Transform().Basis = component.ViewRight.Basis()
	p.SetOrigin(mgl64.Vec3{-3, 0.9375, 1})
	r.ticks(5)

	p.Input().Movement = mgl64.Vec2{0, 1}
	seq := r.record(200, func() { p.Input().SetPressed(component.InputUp, true) })

	climb := slices.Index(seq, component.ActionClimbBack)
	if climb < 0 {
		t.Fatalf("expected to climb the back of the ladder, got %v", seq)
	}
	if !slices.Contains(seq[climb:], component.ActionFall) {
		t.Fatalf("expected to leave the ladder over its top, got %v", seq)
	}
	if p.Origin().Y() < top.Y() {
		t.Fatalf("expected to end above the ladder top %v, got %v", top.Y(), p.Origin().Y())
	}
}

func TestClimbApproachFollowsRotation(t *testing.T) {
	r := newRig(t, "village")
	p := r.player()
	r.ticks(20)
	p.SetOrigin(mgl64.Vec3{-3, 0.9375, 1})
	r.ticks(5)

	p.Input().Movement = mgl64.Vec2{0, 1}
	for i := 0; i < 400 && p.Action() != component.ActionClimbSide; i++ {
		p.Input().SetPressed(component.InputUp, true)
		r.tick()
	}
	if p.Action() != component.ActionClimbSide {
		t.Fatalf("expected to climb the side of the ladder, got %v", p.Action())
	}

	r.ctx.Camera.ChangeRotation(component.ViewRight, 0)

	if p.Action() != component.ActionClimbBack {
		t.Fatalf("expected a quarter turn to put the ladder in front, got %v", p.Action())
	}
	if component.OrthogonalOf(p.Basis()) != component.ViewRight {
		t.Fatalf("expected the player to turn with the camera, got %v", component.OrthogonalOf(p.Basis()))
	}
	r.tick()
	if p.Action() != component.ActionClimbBack {
		t.Fatalf("expected to keep climbing after the turn, got %v", p.Action())
	}
}

func TestRemapApproach(t *testing.T) {
	cases := []struct {
		from component.Direction
		dist int
		want component.Direction
	}{
		{component.DirLeft, -1, component.DirBackward},
		{component.DirRight, 1, component.DirBackward},
		{component.DirBackward, 1, component.DirLeft},
		{component.DirForward, 1, component.DirRight},
		{component.DirRight, -1, component.DirForward},
		{component.DirLeft, 2, component.DirRight},
		{component.DirNone, 1, component.DirNone},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%v by %d", tc.from, tc.dist), func(t *testing.T) {
			if got := RemapApproach(tc.from, tc.dist); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestLandingCorrectsDepthToFloor(t *testing.T) {
	r := newRig(t, "village")
	r.tick()
	block := mgl64.Vec3{40, 10, 5}
	addBox(t, r.w, block, unitBox, component.LayerAllSides)

	p := r.player()
	p.SetOrigin(mgl64.Vec3{40, 10.9375, 2})
	p.SetVelocity(mgl64.Vec3{0.3, -0.25, 0})
	r.physics.Update(r.w)

	if got := p.Origin().Z(); got != block.Z() {
		t.Fatalf("expected depth %v, got %v", block.Z(), got)
	}
	if !p.OnFloor() {
		t.Fatalf("expected the player to stand on the block")
	}
}

func TestTurnedLadderIsClimbedFromTheBack(t *testing.T) {
	r := newRig(t, "arch")
	p := r.player()
	r.ticks(20)
	p.SetOrigin(mgl64.Vec3{-2, 0.9375, 1})
	r.ticks(5)

	p.Input().Movement = mgl64.Vec2{0, 1}
	seq := r.record(400, func() { p.Input().SetPressed(component.InputUp, true) })

	enter := slices.Index(seq, component.ActionIdleToClimbBack)
	climb := slices.Index(seq, component.ActionClimbBack)
	if enter < 0 || climb < enter {
		t.Fatalf("expected %v then %v, got %v", component.ActionIdleToClimbBack, component.ActionClimbBack, seq)
	}
	if slices.Contains(seq, component.ActionClimbSide) {
		t.Fatalf("expected the turned ladder never to be climbed from the side, got %v", seq)
	}
	ladder, _ := r.level().FindByName("side_ladder")
	if held := p.State().HeldBody; climb >= 0 && held.Valid() && held != ladder {
		t.Fatalf("expected to hold the side ladder, got %v", held)
	}
}
