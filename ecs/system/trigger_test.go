package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
)

func TestTriggerRunSecretBridge(t *testing.T) {
	r := newRig(t, "village")
	triggers := NewTriggerSystem(r.ctx, r.pause)

	if err := triggers.Run("secret_bridge", "player", "bridge_switch"); err != nil {
		t.Fatalf("run: %v", err)
	}

	bridge, ok := r.level().FindByName("bridge")
	if !ok {
		t.Fatalf("expected bridge")
	}
	m, ok := ecs.Get(r.w, bridge, component.MoverComponent.Kind())
	if !ok || !m.Active {
		t.Fatalf("expected an active mover on the bridge")
	}
	if !m.To.Sub(m.From).ApproxEqual(mgl64.Vec3{0, 0, -3}) {
		t.Fatalf("expected move by (0, 0, -3), got %v", m.To.Sub(m.From))
	}
	if m.Duration != 1.5 {
		t.Fatalf("expected duration 1.5, got %v", m.Duration)
	}

	chest, ok := r.level().FindByName("bridge_chest")
	if !ok {
		t.Fatalf("expected bridge_chest")
	}
	c, _ := ecs.Get(r.w, chest, component.ColliderComponent.Kind())
	col, _ := ecs.Get(r.w, chest, component.CollectableComponent.Kind())
	if c.Hidden || c.Disabled || !col.Monitorable {
		t.Fatalf("expected chest enabled, got hidden=%v disabled=%v monitorable=%v", c.Hidden, c.Disabled, col.Monitorable)
	}

	if !r.state.IsNodeInactive("bridge") {
		t.Fatalf("expected bridge puzzle to be recorded")
	}
	if got := r.state.Data().ThisLevel().FilledConditions.Secrets; got != 1 {
		t.Fatalf("expected one secret, got %d", got)
	}
	if r.player().Action() != component.ActionReadListen {
		t.Fatalf("expected ReadListen, got %s", r.player().Action())
	}
}

func TestTriggerRunRaisesWater(t *testing.T) {
	r := newRig(t, "village")
	triggers := NewTriggerSystem(r.ctx, r.pause)

	if err := triggers.Run("raise_water", "player", "lever"); err != nil {
		t.Fatalf("run: %v", err)
	}
	liquid, ok := r.level().Liquid()
	if !ok {
		t.Fatalf("expected village liquid")
	}
	if !liquid.Moving || !liquid.Raising || liquid.Target != 6 || liquid.Speed != 1.5 {
		t.Fatalf("expected a raise to 6 at 1.5, got %+v", *liquid)
	}
	if got := r.state.Data().ThisLevel().FilledConditions.Secrets; got != 1 {
		t.Fatalf("expected unknown puzzle to count silently, got %d", got)
	}
}

func TestTriggerRunUnknownScript(t *testing.T) {
	r := newRig(t, "village")
	triggers := NewTriggerSystem(r.ctx, r.pause)

	if err := triggers.Run("no_such_script", "player", "sign"); err == nil {
		t.Fatalf("expected error for a missing script")
	}
}

func TestTriggerFiresOnceOnEnter(t *testing.T) {
	r := newRig(t, "village")
	triggers := NewTriggerSystem(r.ctx, r.pause)

	triggers.Update(r.w)
	if r.player().Action() != component.ActionIdle {
		t.Fatalf("expected nothing to fire at spawn, got %s", r.player().Action())
	}

	r.player().SetOrigin(mgl64.Vec3{1, 1.5, -2})
	triggers.Update(r.w)
	if r.player().Action() != component.ActionReadListen {
		t.Fatalf("expected sign to start ReadListen, got %s", r.player().Action())
	}

	sign, _ := r.level().FindByName("sign")
	trig, _ := ecs.Get(r.w, sign, component.TriggerComponent.Kind())
	if !trig.Fired || !trig.Inside[r.player().Entity()] {
		t.Fatalf("expected sign fired with the player inside, got %+v", *trig)
	}

	r.player().SetAction(component.ActionIdle)
	triggers.Update(r.w)
	if r.player().Action() != component.ActionIdle {
		t.Fatalf("expected a once trigger not to fire again, got %s", r.player().Action())
	}
}

func TestTriggerPausedDoesNothing(t *testing.T) {
	r := newRig(t, "village")
	triggers := NewTriggerSystem(r.ctx, r.pause)
	r.pause.Set(true)

	r.player().SetOrigin(mgl64.Vec3{1, 1.5, -2})
	triggers.Update(r.w)
	if r.player().Action() != component.ActionIdle {
		t.Fatalf("expected no trigger while paused, got %s", r.player().Action())
	}
}
