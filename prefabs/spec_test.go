package prefabs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/perspective/ecs/component"
)

func TestEmbeddedActionTableIsComplete(t *testing.T) {
	table, err := LoadActionTable()
	if err != nil {
		t.Fatalf("expected embedded action table to load, got %v", err)
	}
	clips, err := LoadClips()
	if err != nil {
		t.Fatalf("expected embedded clips to load, got %v", err)
	}
	if err := CheckAnimations(table, clips); err != nil {
		t.Fatalf("expected every action animation to have a clip, got %v", err)
	}
}

func TestActionTableTraits(t *testing.T) {
	table, err := LoadActionTable()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	cases := []struct {
		name   string
		check  func(component.ActionType) bool
		action component.ActionType
		expect bool
	}{
		{"idle_is_idle", table.IsIdle, component.ActionIdleYawn, true},
		{"climb_back_climbs", table.IsClimbing, component.ActionClimbBack, true},
		{"corner_grab_on_ledge", table.IsOnLedge, component.ActionCornerGrab, true},
		{"carry_walk_carries", table.IsCarrying, component.ActionCarryWalk, true},
		{"spin_enters_door", table.IsEnteringDoor, component.ActionCarryHeavyEnterDoorSpin, true},
		{"float_swims", table.IsSwimming, component.ActionFloat, true},
		{"dying_not_alive", table.IsAlive, component.ActionDying, false},
		{"ledge_back_faces_back", table.FacesBack, component.ActionLedgeGrabBack, true},
		{"ledge_allows_rotation", table.PreventsRotation, component.ActionShimmyFront, false},
		{"walk_to_prevents_rotation", table.PreventsRotation, component.ActionWalkTo, true},
		{"walk_changes_direction", table.AllowsDirectionChange, component.ActionWalk, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.check(c.action); got != c.expect {
				t.Fatalf("expected %v for %s, got %v", c.expect, c.action, got)
			}
		})
	}
}

func TestBuildActionTableReportsMissing(t *testing.T) {
	rows := map[component.ActionType]component.ActionInfo{
		component.ActionIdle: {Animation: "idle", Group: component.GroupIdle},
	}
	_, err := BuildActionTable(rows)
	if !errors.Is(err, ErrMissingAction) {
		t.Fatalf("expected ErrMissingAction, got %v", err)
	}
}

func TestLoadTuningOverridesOnlySetKeys(t *testing.T) {
	dir := t.TempDir()
	old := Dir
	Dir = dir
	t.Cleanup(func() { Dir = old })

	data := []byte("move:\n  default_speed: 6\ndie_panic:\n  air_panic_caps:\n    tower: -8\n")
	if err := os.WriteFile(filepath.Join(dir, TuningFile), data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tuning, err := LoadTuning()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tuning.Move.DefaultSpeed != 6 {
		t.Fatalf("expected default speed 6, got %v", tuning.Move.DefaultSpeed)
	}
	if tuning.Move.WalkFactor != 0.8 {
		t.Fatalf("expected walk factor to keep its default, got %v", tuning.Move.WalkFactor)
	}
	if tuning.Jump.MaxHeight != 2.5 {
		t.Fatalf("expected jump max height to keep its default, got %v", tuning.Jump.MaxHeight)
	}
	if tuning.DiePanic.AirPanicCaps["tower"] != -8 {
		t.Fatalf("expected tower cap -8, got %v", tuning.DiePanic.AirPanicCaps)
	}
}

func TestLoadScriptPaths(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"bare", "sign"},
		{"with_ext", "sign.tengo"},
		{"with_dir", "scripts/sign.tengo"},
		{"with_prefix", "prefabs/scripts/sign.tengo"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := cleanScriptPath(c.in); got != "scripts/sign.tengo" {
				t.Fatalf("expected scripts/sign.tengo, got %s", got)
			}
			if _, err := LoadScript(c.in); err != nil {
				t.Fatalf("expected embedded script, got %v", err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		ok     bool
		expect ChangeKind
	}{
		{"yaml", "prefabs/tuning.yaml", true, ChangeSpec},
		{"script", "prefabs/scripts/sign.tengo", true, ChangeScript},
		{"other", "prefabs/notes.txt", false, ChangeSpec},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := classify(c.path)
			if ok != c.ok {
				t.Fatalf("expected ok=%v, got %v", c.ok, ok)
			}
			if ok && got.Kind != c.expect {
				t.Fatalf("expected kind %v, got %v", c.expect, got.Kind)
			}
		})
	}
}
