// Package mathz holds the small amount of math the movement core needs on
// top of mgl64: trixel units, scalar helpers with game-engine semantics and
// component-wise vector operations.
package mathz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	TrixelsPerUnit = 16.0
	Trixel         = 1.0 / TrixelsPerUnit
	HalfTrixel     = 1.0 / (TrixelsPerUnit * 2)

	// Epsilon is the tolerance used by the *Approx helpers.
	Epsilon = 1e-5
)

var (
	One     = mgl64.Vec3{1, 1, 1}
	Zero    = mgl64.Vec3{}
	WorldUp = mgl64.Vec3{0, 1, 0}
)

func Lerp(from, to, weight float64) float64 {
	return from + (to-from)*weight
}

// MoveToward moves from toward to by at most delta without overshooting.
func MoveToward(from, to, delta float64) float64 {
	if math.Abs(to-from) <= delta {
		return to
	}
	return from + math.Copysign(delta, to-from)
}

func Clamp01(v float64) float64 {
	return mgl64.Clamp(v, 0, 1)
}

func SmoothStep(from, to, t float64) float64 {
	t = Clamp01(t)
	t = -2*t*t*t + 3*t*t
	return to*t + from*(1-t)
}

// Sign returns -1, 0 or 1.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func IsZeroApprox(v float64) bool {
	return math.Abs(v) < Epsilon
}

func IsEqualApprox(a, b float64) bool {
	if a == b {
		return true
	}
	tolerance := Epsilon * math.Abs(a)
	if tolerance < Epsilon {
		tolerance = Epsilon
	}
	return math.Abs(a-b) < tolerance
}

func IsEqualApproxTolerance(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

// PosMod is a modulo whose result always has the sign of m.
func PosMod(v, m int) int {
	r := v % m
	if r < 0 {
		r += m
	}
	return r
}

// Wrap keeps v in [min, max).
func Wrap(v, min, max int) int {
	span := max - min
	if span == 0 {
		return min
	}
	return min + PosMod(v-min, span)
}

// Scale multiplies two vectors component-wise.
func Scale(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func Abs(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Abs(v[0]), math.Abs(v[1]), math.Abs(v[2])}
}

func SignVec(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{Sign(v[0]), Sign(v[1]), Sign(v[2])}
}

func Round(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Round(v[0]), math.Round(v[1]), math.Round(v[2])}
}

func Floor(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Floor(v[0]), math.Floor(v[1]), math.Floor(v[2])}
}

func Ceil(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Ceil(v[0]), math.Ceil(v[1]), math.Ceil(v[2])}
}

func VecIsZeroApprox(v mgl64.Vec3) bool {
	return IsZeroApprox(v[0]) && IsZeroApprox(v[1]) && IsZeroApprox(v[2])
}

func LerpVec(from, to mgl64.Vec3, weight float64) mgl64.Vec3 {
	return from.Add(to.Sub(from).Mul(weight))
}

// SnapToTrixel rounds every component to the trixel grid.
func SnapToTrixel(v mgl64.Vec3) mgl64.Vec3 {
	return Round(v.Mul(TrixelsPerUnit)).Mul(1 / TrixelsPerUnit)
}

// Max is the component-wise maximum.
func Max(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])}
}
