package mathz

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestMoveToward(t *testing.T) {
	cases := []struct {
		name           string
		from, to, step float64
		want           float64
	}{
		{"reaches_target", 1, 1.5, 1, 1.5},
		{"steps_up", 0, 10, 2, 2},
		{"steps_down", 0, -10, 2, -2},
		{"already_there", 3, 3, 1, 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := MoveToward(c.from, c.to, c.step); got != c.want {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
		})
	}
}

func TestWrapStaysInRange(t *testing.T) {
	for v := -9; v <= 9; v++ {
		got := Wrap(v, 1, 5)
		if got < 1 || got >= 5 {
			t.Fatalf("Wrap(%d) = %d out of [1,5)", v, got)
		}
	}
	if Wrap(5, 1, 5) != 1 || Wrap(0, 1, 5) != 4 {
		t.Fatalf("unexpected wrap at the edges")
	}
}

func TestOrthogonalBasesAreRotations(t *testing.T) {
	for i, b := range OrthogonalBases {
		if !mgl64.FloatEqual(b.Det(), 1) {
			t.Fatalf("basis %d: expected determinant 1, got %v", i, b.Det())
		}
		if !b.Mul3(b.Transpose()).ApproxEqual(mgl64.Ident3()) {
			t.Fatalf("basis %d is not orthonormal", i)
		}
		if OrthogonalIndex(b) != i {
			t.Fatalf("basis %d: index lookup returned %d", i, OrthogonalIndex(b))
		}
	}
}

func TestSnapToTrixel(t *testing.T) {
	got := SnapToTrixel(mgl64.Vec3{0.04, 1.01, -0.49})
	want := mgl64.Vec3{0.0625, 1, -0.5}
	if !got.ApproxEqual(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEasingEndpoints(t *testing.T) {
	for name, fn := range map[string]func(float64) float64{
		"in_quad": InQuad, "in_cubic": InCubic, "in_sine": InSine,
		"out_quad": OutQuad, "out_cubic": OutCubic, "in_out_quad": InOutQuad,
		"in_quart": InQuart, "out_quart": OutQuart,
	} {
		if math.Abs(fn(0)) > 1e-9 || math.Abs(fn(1)-1) > 1e-9 {
			t.Fatalf("%s: expected 0 -> 0 and 1 -> 1, got %v and %v", name, fn(0), fn(1))
		}
	}
}
