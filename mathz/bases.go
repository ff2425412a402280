package mathz

import "github.com/go-gl/mathgl/mgl64"

// OrthogonalBases are the 24 signed-permutation rotations of a cube. Each
// entry is given row by row; column j of a basis is (row0[j], row1[j], row2[j]).
var OrthogonalBases = [24]mgl64.Mat3{
	rows(1, 0, 0, 0, 1, 0, 0, 0, 1),
	rows(0, -1, 0, 1, 0, 0, 0, 0, 1),
	rows(-1, 0, 0, 0, -1, 0, 0, 0, 1),
	rows(0, 1, 0, -1, 0, 0, 0, 0, 1),
	rows(1, 0, 0, 0, 0, -1, 0, 1, 0),
	rows(0, 0, 1, 1, 0, 0, 0, 1, 0),
	rows(-1, 0, 0, 0, 0, 1, 0, 1, 0),
	rows(0, 0, -1, -1, 0, 0, 0, 1, 0),
	rows(1, 0, 0, 0, -1, 0, 0, 0, -1),
	rows(0, 1, 0, 1, 0, 0, 0, 0, -1),
	rows(-1, 0, 0, 0, 1, 0, 0, 0, -1),
	rows(0, -1, 0, -1, 0, 0, 0, 0, -1),
	rows(1, 0, 0, 0, 0, 1, 0, -1, 0),
	rows(0, 0, -1, 1, 0, 0, 0, -1, 0),
	rows(-1, 0, 0, 0, 0, -1, 0, -1, 0),
	rows(0, 0, 1, -1, 0, 0, 0, -1, 0),
	rows(0, 0, 1, 0, 1, 0, -1, 0, 0),
	rows(0, -1, 0, 0, 0, 1, -1, 0, 0),
	rows(0, 0, -1, 0, -1, 0, -1, 0, 0),
	rows(0, 1, 0, 0, 0, -1, -1, 0, 0),
	rows(0, 0, 1, 0, -1, 0, 1, 0, 0),
	rows(0, 1, 0, 0, 0, 1, 1, 0, 0),
	rows(0, 0, -1, 0, 1, 0, 1, 0, 0),
	rows(0, -1, 0, 0, 0, -1, 1, 0, 0),
}

func rows(xx, yx, zx, xy, yy, zy, xz, yz, zz float64) mgl64.Mat3 {
	return mgl64.Mat3FromRows(
		mgl64.Vec3{xx, yx, zx},
		mgl64.Vec3{xy, yy, zy},
		mgl64.Vec3{xz, yz, zz},
	)
}

// OrthogonalIndex returns the index of the canonical basis closest to m.
func OrthogonalIndex(m mgl64.Mat3) int {
	best, bestScore := 0, -1e9
	for i, b := range OrthogonalBases {
		score := 0.0
		for c := 0; c < 3; c++ {
			score += b.Col(c).Dot(m.Col(c))
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// ToLocal expresses a world vector in basis m. Canonical bases are
// orthonormal so the transpose is the inverse.
func ToLocal(m mgl64.Mat3, v mgl64.Vec3) mgl64.Vec3 {
	return m.Transpose().Mul3x1(v)
}

func ToGlobal(m mgl64.Mat3, v mgl64.Vec3) mgl64.Vec3 {
	return m.Mul3x1(v)
}
