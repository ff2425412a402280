package component

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// PhysicsLayer is a collision layer bit set.
type PhysicsLayer uint32

const (
	LayerAllSides PhysicsLayer = 1 << iota
	LayerTopOnly
	LayerBackground
	LayerPlayer
	LayerActors
	LayerLadder
	LayerVine
	LayerBounce
	LayerDeadly
	LayerMapNode

	LayerNone      PhysicsLayer = 0
	LayerSolid                  = LayerAllSides | LayerTopOnly | LayerBackground
	LayerClimbable              = LayerLadder | LayerVine
)

var layerNames = []struct {
	name  string
	layer PhysicsLayer
}{
	{"all_sides", LayerAllSides},
	{"top_only", LayerTopOnly},
	{"background", LayerBackground},
	{"player", LayerPlayer},
	{"actors", LayerActors},
	{"ladder", LayerLadder},
	{"vine", LayerVine},
	{"bounce", LayerBounce},
	{"deadly", LayerDeadly},
	{"map_node", LayerMapNode},
	{"solid", LayerSolid},
	{"climbable", LayerClimbable},
}

func (l PhysicsLayer) Has(flags PhysicsLayer) bool {
	return l&flags == flags
}

func (l PhysicsLayer) Intersects(mask PhysicsLayer) bool {
	return l&mask != 0
}

func (l PhysicsLayer) String() string {
	if l == LayerNone {
		return "none"
	}
	var parts []string
	for _, n := range layerNames[:10] {
		if l&n.layer != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParsePhysicsLayer accepts names joined by '|', e.g. "top_only|bounce".
func ParsePhysicsLayer(s string) (PhysicsLayer, error) {
	var out PhysicsLayer
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		if part == "" || part == "none" {
			continue
		}
		found := false
		for _, n := range layerNames {
			if n.name == part {
				out |= n.layer
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("component: unknown physics layer %q", part)
		}
	}
	return out, nil
}

func (l *PhysicsLayer) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParsePhysicsLayer(value.Value)
	if err != nil {
		return err
	}
	*l = v
	return nil
}
