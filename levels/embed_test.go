package levels

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

func TestEmbeddedLevelsParse(t *testing.T) {
	names := Names()
	if len(names) == 0 {
		t.Fatalf("expected embedded levels")
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			lvl, err := LoadLevelFromFS(name)
			if err != nil {
				t.Fatalf("load %s: %v", name, err)
			}
			if lvl.Name != name {
				t.Fatalf("expected name %s, got %s", name, lvl.Name)
			}
			if len(lvl.Triles) == 0 {
				t.Fatalf("expected triles in %s", name)
			}
		})
	}
}

func TestParseRejectsUnknownKinds(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"collectable", "collectables:\n  - kind: ruby\n    at: [0, 0, 0]\n"},
		{"area", "areas:\n  - kind: portal\n    at: [0, 0, 0]\n"},
		{"layer", "triles:\n  - at: [0, 0, 0]\n    layer: glass\n"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Parse([]byte(c.data)); err == nil {
				t.Fatalf("expected error for %s", c.name)
			}
		})
	}
}

func TestHalfExtentsDefault(t *testing.T) {
	if got := HalfExtents(nil); got.X() != 0.5 || got.Y() != 0.5 || got.Z() != 0.5 {
		t.Fatalf("expected half a trile, got %v", got)
	}
}

func TestOrientMatrix(t *testing.T) {
	cases := []struct {
		name string
		data string
		want mgl64.Mat3
	}{
		{"unset", "triles:\n  - at: [0, 0, 0]\n    layer: ladder\n", mgl64.Ident3()},
		{"view", "triles:\n  - at: [0, 0, 0]\n    layer: ladder\n    view: right\n", component.ViewRight.Basis()},
		{"basis index", "triles:\n  - at: [0, 0, 0]\n    layer: ladder\n    basis: 10\n", mathz.OrthogonalBases[10]},
		{"basis wins over view", "triles:\n  - at: [0, 0, 0]\n    layer: ladder\n    view: right\n    basis: 22\n", mathz.OrthogonalBases[22]},
		{"area view", "areas:\n  - kind: hazard\n    at: [0, 0, 0]\n    view: back\n", component.ViewBack.Basis()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			lvl, err := Parse([]byte(c.data))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			var got mgl64.Mat3
			if len(lvl.Triles) > 0 {
				got = lvl.Triles[0].Matrix()
			} else {
				got = lvl.Areas[0].Matrix()
			}
			if got != c.want {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
		})
	}
}

func TestParseRejectsBadOrientation(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"basis too large", "triles:\n  - at: [0, 0, 0]\n    layer: ladder\n    basis: 24\n"},
		{"negative basis", "areas:\n  - kind: hazard\n    at: [0, 0, 0]\n    basis: -1\n"},
		{"unknown view", "triles:\n  - at: [0, 0, 0]\n    layer: ladder\n    view: sideways\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Parse([]byte(c.data)); err == nil {
				t.Fatalf("expected error for %s", c.name)
			}
		})
	}
}

func TestParseNpcsAndCodeAreas(t *testing.T) {
	data := `
npcs:
  - name: elder
    at: [1, 1, 0]
    path: [2, 0, 0]
    animations: [idle, walk, talk]
    speech: [hello]
code_areas:
  - name: chime
    at: [0, 1, 0]
    pattern: [left, right, jump]
`
	lvl, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	can := lvl.Npcs[0].Actions()
	if !can[component.NpcIdle] || !can[component.NpcTalk] || can[component.NpcTurn] {
		t.Fatalf("expected idle, walk and talk, got %v", can)
	}
	want := []component.InputAction{component.InputLeft, component.InputRight, component.InputJump}
	got := lvl.CodeAreas[0].Actions()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestParseRejectsBadNpcsAndCodes(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"unknown animation", "npcs:\n  - at: [0, 0, 0]\n    animations: [idle, dance]\n"},
		{"cannot idle or walk", "npcs:\n  - at: [0, 0, 0]\n    animations: [talk]\n"},
		{"empty pattern", "code_areas:\n  - name: a\n    at: [0, 0, 0]\n"},
		{"unknown input", "code_areas:\n  - name: a\n    at: [0, 0, 0]\n    pattern: [left, spin]\n"},
		{"pattern too long", "code_areas:\n  - name: a\n    at: [0, 0, 0]\n    pattern: [up, up, up, up, up, up, up, up, up, up, up, up, up, up, up, up, up]\n"},
		{"unnamed", "code_areas:\n  - at: [0, 0, 0]\n    pattern: [up]\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Parse([]byte(c.data)); err == nil {
				t.Fatalf("expected error for %s", c.name)
			}
		})
	}
}
