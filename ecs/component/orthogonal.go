package component

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/mathz"
	"gopkg.in/yaml.v3"
)

// Orthogonal is one of the camera-aligned views. Only Front, Right, Back
// and Left take part in gameplay rotation.
type Orthogonal int

const (
	ViewNone Orthogonal = iota
	ViewFront
	ViewRight
	ViewBack
	ViewLeft
	ViewUp
	ViewDown
)

var orthogonalNames = [...]string{"none", "front", "right", "back", "left", "up", "down"}

// index into mathz.OrthogonalBases for each named view
var orthogonalBasisIndex = [...]int{ViewFront: 0, ViewRight: 16, ViewBack: 10, ViewLeft: 22, ViewUp: 12, ViewDown: 4}

func (o Orthogonal) String() string {
	if o < ViewNone || o > ViewDown {
		return "invalid"
	}
	return orthogonalNames[o]
}

func ParseOrthogonal(s string) (Orthogonal, error) {
	for i, name := range orthogonalNames {
		if name == s {
			return Orthogonal(i), nil
		}
	}
	return ViewNone, fmt.Errorf("component: unknown orthogonal view %q", s)
}

func (o *Orthogonal) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseOrthogonal(value.Value)
	if err != nil {
		return err
	}
	*o = v
	return nil
}

func (o Orthogonal) MarshalYAML() (any, error) {
	return o.String(), nil
}

// DistanceTo is the signed step count from o to other. A raw difference of
// three folds to the opposite unit step, so the result lies in [-2, 2].
// Both views must be horizontal.
func (o Orthogonal) DistanceTo(other Orthogonal) int {
	d := int(other - o)
	if d == 3 || d == -3 {
		d = -d / 3
	}
	return d
}

// Rotated steps around the four horizontal views.
func (o Orthogonal) Rotated(steps int) Orthogonal {
	return Orthogonal(mathz.Wrap(int(o)+steps, int(ViewFront), int(ViewUp)))
}

func (o Orthogonal) Horizontal() bool {
	return o >= ViewFront && o <= ViewLeft
}

// Basis returns the canonical basis of a named view.
func (o Orthogonal) Basis() mgl64.Mat3 {
	if o <= ViewNone || o > ViewDown {
		panic(fmt.Sprintf("orthogonal: no basis for view %d", int(o)))
	}
	return mathz.OrthogonalBases[orthogonalBasisIndex[o]]
}

// Yaw is the rotation about the world up axis that produces a horizontal
// view's basis.
func (o Orthogonal) Yaw() float64 {
	return float64(o-ViewFront) * math.Pi / 2
}

// OrthogonalOf classifies a basis by its forward column. It returns ViewNone
// when the forward column is not aligned with a world axis.
func OrthogonalOf(basis mgl64.Mat3) Orthogonal {
	forward := mathz.OrthogonalBases[mathz.OrthogonalIndex(basis)].Col(2)
	result := ViewNone
	switch forward.Dot(mgl64.Vec3{0, 0, 1}) {
	case 1:
		result = ViewFront
	case -1:
		result = ViewBack
	}
	switch forward.Dot(mgl64.Vec3{1, 0, 0}) {
	case 1:
		result = ViewRight
	case -1:
		result = ViewLeft
	}
	switch forward.Dot(mgl64.Vec3{0, 1, 0}) {
	case 1:
		result = ViewUp
	case -1:
		result = ViewDown
	}
	return result
}
