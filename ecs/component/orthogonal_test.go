package component

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

func TestOrthogonalDistanceTo(t *testing.T) {
	tests := []struct {
		from, to Orthogonal
		want     int
	}{
		{ViewFront, ViewFront, 0},
		{ViewFront, ViewRight, 1},
		{ViewFront, ViewBack, 2},
		{ViewFront, ViewLeft, -1},
		{ViewLeft, ViewFront, 1},
		{ViewRight, ViewFront, -1},
		{ViewBack, ViewFront, -2},
		{ViewRight, ViewLeft, 2},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"_to_"+tt.to.String(), func(t *testing.T) {
			if got := tt.from.DistanceTo(tt.to); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestOrthogonalRotatedWraps(t *testing.T) {
	tests := []struct {
		from  Orthogonal
		steps int
		want  Orthogonal
	}{
		{ViewFront, 1, ViewRight},
		{ViewLeft, 1, ViewFront},
		{ViewFront, -1, ViewLeft},
		{ViewRight, 2, ViewLeft},
		{ViewBack, 4, ViewBack},
	}
	for _, tt := range tests {
		if got := tt.from.Rotated(tt.steps); got != tt.want {
			t.Fatalf("expected %v rotated %d to be %v, got %v", tt.from, tt.steps, tt.want, got)
		}
	}
}

func TestOrthogonalBasisRoundTrip(t *testing.T) {
	for _, o := range []Orthogonal{ViewFront, ViewRight, ViewBack, ViewLeft, ViewUp, ViewDown} {
		t.Run(o.String(), func(t *testing.T) {
			if got := OrthogonalOf(o.Basis()); got != o {
				t.Fatalf("expected %v, got %v", o, got)
			}
		})
	}
	if ViewFront.Basis() != mgl64.Ident3() {
		t.Fatalf("expected front to be the identity basis")
	}
}

func TestOrthogonalBasisPanicsOnNone(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for ViewNone")
		}
	}()
	ViewNone.Basis()
}

func TestOrthogonalYAML(t *testing.T) {
	var out struct {
		View Orthogonal `yaml:"view"`
	}
	if err := yaml.Unmarshal([]byte("view: right\n"), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.View != ViewRight {
		t.Fatalf("expected right, got %v", out.View)
	}
	if err := yaml.Unmarshal([]byte("view: sideways\n"), &out); err == nil {
		t.Fatalf("expected error for unknown view")
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		dir      Direction
		opposite Direction
		sign     float64
	}{
		{DirLeft, DirRight, -1},
		{DirDown, DirUp, -1},
		{DirBackward, DirForward, -1},
		{DirRight, DirLeft, 1},
		{DirUp, DirDown, 1},
		{DirForward, DirBackward, 1},
		{DirNone, DirNone, 0},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			if got := tt.dir.Opposite(); got != tt.opposite {
				t.Fatalf("expected opposite %v, got %v", tt.opposite, got)
			}
			if got := tt.dir.Sign(); got != tt.sign {
				t.Fatalf("expected sign %v, got %v", tt.sign, got)
			}
		})
	}
	if DirectionFrom(-0.5) != DirLeft || DirectionFrom(2) != DirRight || DirectionFrom(0) != DirNone {
		t.Fatalf("unexpected DirectionFrom mapping")
	}
}

func TestNewAxes(t *testing.T) {
	a := NewAxes(ViewRight.Basis(), -1)

	if a.Right != (mgl64.Vec3{0, 0, -1}) {
		t.Fatalf("expected right (0,0,-1), got %v", a.Right)
	}
	if a.Up != (mgl64.Vec3{0, 1, 0}) {
		t.Fatalf("expected up (0,1,0), got %v", a.Up)
	}
	if a.Forward != (mgl64.Vec3{1, 0, 0}) {
		t.Fatalf("expected forward (1,0,0), got %v", a.Forward)
	}
	if a.Facing != (mgl64.Vec3{0, 0, 1}) {
		t.Fatalf("expected facing (0,0,1), got %v", a.Facing)
	}
	if a.XMask != (mgl64.Vec3{0, 0, 1}) || a.ZMask != (mgl64.Vec3{1, 0, 0}) {
		t.Fatalf("unexpected masks x=%v z=%v", a.XMask, a.ZMask)
	}
	if a.XYMask != (mgl64.Vec3{0, 1, 1}) || a.XZMask != (mgl64.Vec3{1, 0, 1}) {
		t.Fatalf("unexpected combined masks xy=%v xz=%v", a.XYMask, a.XZMask)
	}

	scaled := NewAxes(mgl64.Ident3().Mul(2), 1)
	if scaled.Right != (mgl64.Vec3{1, 0, 0}) {
		t.Fatalf("expected normalized right, got %v", scaled.Right)
	}
}
