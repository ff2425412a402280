package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var LevelsFS embed.FS

// Vec is a YAML friendly [x, y, z] triple.
type Vec [3]float64

func (v Vec) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], v[2]}
}

// Level is a level file: static triles, areas, pickups and scripts.
type Level struct {
	Name   string               `yaml:"name"`
	View   component.Orthogonal `yaml:"view"`
	Spawn  Vec                  `yaml:"spawn"`
	Liquid *Liquid              `yaml:"liquid,omitempty"`

	Triles       []Trile       `yaml:"triles"`
	Areas        []Area        `yaml:"areas,omitempty"`
	Pickups      []Pickup      `yaml:"pickups,omitempty"`
	Collectables []Collectable `yaml:"collectables,omitempty"`
	Volumes      []Volume      `yaml:"volumes,omitempty"`
	Triggers     []Trigger     `yaml:"triggers,omitempty"`
	Movers       []Mover       `yaml:"movers,omitempty"`
	Npcs         []Npc         `yaml:"npcs,omitempty"`
	CodeAreas    []CodeArea    `yaml:"code_areas,omitempty"`
}

type Liquid struct {
	Type   component.LiquidType `yaml:"type"`
	Height float64              `yaml:"height"`
}

// Trile is a box collider. Repeat stamps copies one unit apart along each
// axis, so a row of floor is a single entry.
type Trile struct {
	Name       string                 `yaml:"name,omitempty"`
	At         Vec                    `yaml:"at"`
	Extents    *Vec                   `yaml:"extents,omitempty"`
	Layer      component.PhysicsLayer `yaml:"layer"`
	Repeat     [3]int                 `yaml:"repeat,omitempty"`
	Hidden     bool                   `yaml:"hidden,omitempty"`
	Checkpoint bool                   `yaml:"checkpoint,omitempty"`
	Orient     `yaml:",inline"`
}

// Orient turns an entry. View names one of the camera views, Basis indexes
// mathz.OrthogonalBases directly and wins when both are set. Extents stay
// in the entry's own frame.
type Orient struct {
	View  component.Orthogonal `yaml:"view,omitempty"`
	Basis *int                 `yaml:"basis,omitempty"`
}

// Matrix is the entry's basis, identity when unset.
func (o Orient) Matrix() mgl64.Mat3 {
	switch {
	case o.Basis != nil:
		return mathz.OrthogonalBases[*o.Basis]
	case o.View != component.ViewNone:
		return o.View.Basis()
	}
	return mgl64.Ident3()
}

func (o Orient) validate() error {
	if o.Basis != nil && (*o.Basis < 0 || *o.Basis >= len(mathz.OrthogonalBases)) {
		return fmt.Errorf("basis %d out of range", *o.Basis)
	}
	if o.View < component.ViewNone || o.View > component.ViewDown {
		return fmt.Errorf("invalid view %d", int(o.View))
	}
	return nil
}

type AreaKind string

const (
	AreaChangeLevel AreaKind = "change_level"
	AreaBlackHole   AreaKind = "black_hole"
	AreaHazard      AreaKind = "hazard"
)

type Area struct {
	Name    string   `yaml:"name,omitempty"`
	Kind    AreaKind `yaml:"kind"`
	At      Vec      `yaml:"at"`
	Extents *Vec     `yaml:"extents,omitempty"`
	Orient  `yaml:",inline"`

	Next          string               `yaml:"next,omitempty"`
	Volume        int                  `yaml:"volume,omitempty"`
	Spin          bool                 `yaml:"spin,omitempty"`
	KeyRequired   bool                 `yaml:"key_required,omitempty"`
	ViewAfterWarp component.Orthogonal `yaml:"view_after_warp,omitempty"`
	Door          bool                 `yaml:"door,omitempty"`
	BitDoor       bool                 `yaml:"bit_door,omitempty"`
	Warp          bool                 `yaml:"warp,omitempty"`
}

type Pickup struct {
	Name  string `yaml:"name,omitempty"`
	At    Vec    `yaml:"at"`
	Heavy bool   `yaml:"heavy,omitempty"`
}

type Collectable struct {
	Name   string `yaml:"name,omitempty"`
	Kind   string `yaml:"kind"`
	At     Vec    `yaml:"at"`
	Item   string `yaml:"item,omitempty"`
	Hidden bool   `yaml:"hidden,omitempty"`
}

type Volume struct {
	ID int `yaml:"id"`
	At Vec `yaml:"at"`
}

type Trigger struct {
	Name    string                 `yaml:"name,omitempty"`
	At      Vec                    `yaml:"at"`
	Extents *Vec                   `yaml:"extents,omitempty"`
	Script  string                 `yaml:"script"`
	Mask    component.PhysicsLayer `yaml:"mask,omitempty"`
	Once    bool                   `yaml:"once,omitempty"`
}

type Mover struct {
	Target   string  `yaml:"target"`
	To       Vec     `yaml:"to"`
	Duration float64 `yaml:"duration"`
	PingPong bool    `yaml:"ping_pong,omitempty"`
	Start    bool    `yaml:"start,omitempty"`
}

// Npc is a character. Animations names the npc actions it has clips for;
// it needs at least idle or walk.
type Npc struct {
	Name            string   `yaml:"name,omitempty"`
	At              Vec      `yaml:"at"`
	Path            Vec      `yaml:"path,omitempty"`
	Speed           float64  `yaml:"speed,omitempty"`
	Animations      []string `yaml:"animations"`
	Speech          []string `yaml:"speech,omitempty"`
	AvoidsPlayer    bool     `yaml:"avoids_player,omitempty"`
	RandomizeSpeech bool     `yaml:"randomize_speech,omitempty"`
	FirstLineOnce   bool     `yaml:"first_line_once,omitempty"`
}

// Actions parses Animations, skipping unknown names.
func (n Npc) Actions() map[component.NpcAction]bool {
	out := make(map[component.NpcAction]bool, len(n.Animations))
	for _, name := range n.Animations {
		if a, ok := component.ParseNpcAction(name); ok {
			out[a] = true
		}
	}
	return out
}

func (n Npc) validate() error {
	for _, name := range n.Animations {
		if _, ok := component.ParseNpcAction(name); !ok {
			return fmt.Errorf("unknown animation %q", name)
		}
	}
	can := n.Actions()
	if !can[component.NpcIdle] && !can[component.NpcWalk] {
		return fmt.Errorf("needs an idle or walk animation")
	}
	return nil
}

// MaxCodeLength bounds a code area's pattern.
const MaxCodeLength = 16

// CodeArea is solved by entering Pattern while standing inside it.
type CodeArea struct {
	Name    string   `yaml:"name"`
	At      Vec      `yaml:"at"`
	Extents *Vec     `yaml:"extents,omitempty"`
	Pattern []string `yaml:"pattern"`
}

// Actions parses Pattern, skipping unknown names.
func (c CodeArea) Actions() []component.InputAction {
	out := make([]component.InputAction, 0, len(c.Pattern))
	for _, name := range c.Pattern {
		if a, ok := component.ParseInputAction(name); ok {
			out = append(out, a)
		}
	}
	return out
}

func (c CodeArea) validate() error {
	if c.Name == "" {
		return fmt.Errorf("needs a name")
	}
	if len(c.Pattern) == 0 || len(c.Pattern) > MaxCodeLength {
		return fmt.Errorf("pattern needs 1 to %d inputs, got %d", MaxCodeLength, len(c.Pattern))
	}
	for _, name := range c.Pattern {
		if _, ok := component.ParseInputAction(name); !ok {
			return fmt.Errorf("unknown input %q", name)
		}
	}
	return nil
}

// HalfExtents defaults to half a trile.
func HalfExtents(v *Vec) mgl64.Vec3 {
	if v == nil {
		return mgl64.Vec3{0.5, 0.5, 0.5}
	}
	return v.Vec3()
}

func LoadLevelFromFS(name string) (*Level, error) {
	file := name
	if !strings.HasSuffix(file, ".yaml") {
		file += ".yaml"
	}
	data, err := fs.ReadFile(LevelsFS, file)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", file, err)
	}
	lvl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("levels: unmarshal %s: %w", file, err)
	}
	if lvl.Name == "" {
		lvl.Name = strings.TrimSuffix(path.Base(file), ".yaml")
	}
	return lvl, nil
}

func Parse(data []byte) (*Level, error) {
	lvl := &Level{View: component.ViewFront}
	if err := yaml.Unmarshal(data, lvl); err != nil {
		return nil, err
	}
	for i, c := range lvl.Collectables {
		if _, ok := component.ParseCollectableKind(c.Kind); !ok {
			return nil, fmt.Errorf("collectable %d: unknown kind %q", i, c.Kind)
		}
		if c.Item != "" {
			if _, ok := component.ParseCollectableKind(c.Item); !ok {
				return nil, fmt.Errorf("collectable %d: unknown item %q", i, c.Item)
			}
		}
	}
	for i, t := range lvl.Triles {
		if err := t.validate(); err != nil {
			return nil, fmt.Errorf("trile %d: %w", i, err)
		}
	}
	for i, a := range lvl.Areas {
		switch a.Kind {
		case AreaChangeLevel, AreaBlackHole, AreaHazard:
		default:
			return nil, fmt.Errorf("area %d: unknown kind %q", i, a.Kind)
		}
		if err := a.validate(); err != nil {
			return nil, fmt.Errorf("area %d: %w", i, err)
		}
	}
	for i, n := range lvl.Npcs {
		if err := n.validate(); err != nil {
			return nil, fmt.Errorf("npc %d: %w", i, err)
		}
	}
	for i, c := range lvl.CodeAreas {
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("code area %d: %w", i, err)
		}
	}
	return lvl, nil
}

// Names lists the embedded levels.
func Names() []string {
	entries, err := fs.ReadDir(LevelsFS, ".")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".yaml") {
			out = append(out, strings.TrimSuffix(e.Name(), ".yaml"))
		}
	}
	sort.Strings(out)
	return out
}
