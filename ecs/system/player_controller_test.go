package system

import (
	"math"
	"testing"

	"github.com/milk9111/perspective/ecs/component"
)

func TestDefaultActionOrderClaimsEveryActionOnce(t *testing.T) {
	r := newRig(t, "village")

	owners := map[component.ActionType]string{}
	for _, m := range r.machine.Modules() {
		claimer, ok := m.(ActionClaimer)
		if !ok {
			t.Fatalf("module %s does not list its claims", m.Name())
		}
		for _, a := range claimer.Claims() {
			if prev, dup := owners[a]; dup {
				t.Fatalf("action %s claimed by both %s and %s", a, prev, m.Name())
			}
			owners[a] = m.Name()
		}
	}

	for a := component.ActionNone + 1; a.Valid(); a++ {
		if _, ok := owners[a]; !ok {
			t.Fatalf("action %s has no owner", a)
		}
	}
	if _, ok := owners[component.ActionNone]; ok {
		t.Fatalf("expected None to be unclaimed")
	}
	if owners[component.ActionFall] != owners[component.ActionLand] {
		t.Fatalf("expected Fall and Land to share an owner, got %s and %s", owners[component.ActionFall], owners[component.ActionLand])
	}
}

type recordingModule struct {
	name    string
	allowed component.ActionType
	log     *[]string
}

func (m *recordingModule) Name() string { return m.name }

func (m *recordingModule) IsAllowed(a component.ActionType) bool { return a == m.allowed }

func (m *recordingModule) TransitionAttempts() { *m.log = append(*m.log, m.name+".transition") }

func (m *recordingModule) OnEnter() { *m.log = append(*m.log, m.name+".enter") }

func (m *recordingModule) OnAct(float64) { *m.log = append(*m.log, m.name+".act") }

func (m *recordingModule) OnEnd() { *m.log = append(*m.log, m.name+".end") }

func TestActionMachineHooks(t *testing.T) {
	r := newRig(t, "village")
	var log []string
	idle := &recordingModule{name: "idle", allowed: component.ActionIdle, log: &log}
	walk := &recordingModule{name: "walk", allowed: component.ActionWalk, log: &log}
	m := NewActionMachine(idle, walk)

	m.Update(r.player(), FixedDelta)
	m.Update(r.player(), FixedDelta)
	r.player().SetAction(component.ActionWalk)
	m.Update(r.player(), FixedDelta)

	want := []string{
		"idle.transition", "idle.enter", "walk.transition",
		"idle.transition", "idle.act", "walk.transition",
		"idle.transition", "idle.end", "walk.transition", "walk.enter",
	}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, log)
		}
	}
}

func TestActionMachineDisabledModule(t *testing.T) {
	r := newRig(t, "village")
	var log []string
	m := NewActionMachine(&recordingModule{name: "idle", allowed: component.ActionIdle, log: &log})

	if !m.SetEnabled("idle", false) {
		t.Fatalf("expected idle to be found")
	}
	if m.SetEnabled("missing", false) {
		t.Fatalf("expected unknown module to be reported")
	}
	m.Update(r.player(), FixedDelta)
	if len(log) != 0 {
		t.Fatalf("expected a disabled module to stay silent, got %v", log)
	}
}

func TestActionMachineRejectsDuplicates(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected duplicate module names to panic")
		}
	}()
	NewActionMachine(
		&recordingModule{name: "idle", log: new([]string)},
		&recordingModule{name: "idle", log: new([]string)},
	)
}

func TestJumpInfo(t *testing.T) {
	cases := []struct {
		name          string
		min, max, dur float64
	}{
		{"default", 1, 3, 0.4},
		{"short", 0.5, 1, 0.25},
		{"flat_release", 2, 2, 0.5},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			j := NewJumpInfo(c.min, c.max, c.dur)
			// Peak of a jump launched at Jump under Fall.
			peak := -(j.Jump * j.Jump) / (2 * j.Fall)
			if math.Abs(peak-c.max) > 1e-9 {
				t.Fatalf("expected peak %v, got %v", c.max, peak)
			}
			if math.Abs(j.Jump/-j.Fall-c.dur) > 1e-9 {
				t.Fatalf("expected time to peak %v, got %v", c.dur, j.Jump/-j.Fall)
			}
			if j.Termination > j.Jump+1e-9 {
				t.Fatalf("expected termination %v at most jump %v", j.Termination, j.Jump)
			}
		})
	}
}

func TestMoveHelperRunsAfterHoldingPastThreshold(t *testing.T) {
	h := NewMoveHelper(2, 5, 10, 0.5)

	v := h.Update(FixedDelta, 1, 0)
	if h.IsRunning() {
		t.Fatalf("expected walking on the first tick")
	}
	if math.Abs(v-10*FixedDelta) > 1e-9 {
		t.Fatalf("expected one acceleration step, got %v", v)
	}

	for i := 0; i < 600; i++ {
		v = h.Update(FixedDelta, 1, v)
	}
	if !h.IsRunning() {
		t.Fatalf("expected running after holding")
	}
	if math.Abs(v-5) > 1e-9 {
		t.Fatalf("expected run speed 5, got %v", v)
	}

	v = h.Update(FixedDelta, 0.3, v)
	if h.IsRunning() || h.RunTime() != 0 {
		t.Fatalf("expected a light input to reset the run")
	}
	if math.Abs(v-(5-10*FixedDelta)) > 1e-9 {
		t.Fatalf("expected deceleration toward walk speed, got %v", v)
	}
}
