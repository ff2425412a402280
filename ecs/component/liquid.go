package component

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type LiquidType int

const (
	LiquidWater LiquidType = iota
	LiquidBlood
	LiquidSewer
	LiquidLava
	LiquidPurple
	LiquidGreen
)

var liquidNames = [...]string{"water", "blood", "sewer", "lava", "purple", "green"}

func (t LiquidType) String() string {
	if t < LiquidWater || int(t) >= len(liquidNames) {
		return "invalid"
	}
	return liquidNames[t]
}

func (t *LiquidType) UnmarshalYAML(value *yaml.Node) error {
	for i, name := range liquidNames {
		if name == value.Value {
			*t = LiquidType(i)
			return nil
		}
	}
	return fmt.Errorf("component: unknown liquid type %q", value.Value)
}

// Hazardous liquids sink the player instead of letting it swim.
func (t LiquidType) Hazardous() bool {
	return t == LiquidLava || t == LiquidSewer
}

// Submersion is how deep the player floats below the surface.
func (t LiquidType) Submersion() float64 {
	if t.Hazardous() {
		return 0.25
	}
	return 0.5
}

// Liquid is the level's single body of water. Height is the world Y of
// its surface.
type Liquid struct {
	Type   LiquidType
	Height float64

	// OriginalHeight is the authored surface height.
	OriginalHeight float64

	Moving bool
	Target float64
	Speed  float64
	// Raising is set for moves started by RaiseWater; those are
	// interrupted by stop requests instead of running to Target.
	Raising bool
	Stops   int
}

var LiquidComponent = NewComponent[Liquid]()
