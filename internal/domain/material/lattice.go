package material

import (
	"math"

	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// Lengths returns the a, b, c cell edge lengths in Å.
func (l *Lattice) Lengths() (a, b, c float64) {
	return vecNorm(l.Matrix[0]), vecNorm(l.Matrix[1]), vecNorm(l.Matrix[2])
}

// Angles returns the alpha, beta, gamma cell angles in degrees: alpha is the
// angle between b and c, beta between a and c, gamma between a and b.
func (l *Lattice) Angles() (alpha, beta, gamma float64) {
	alpha = vecAngle(l.Matrix[1], l.Matrix[2])
	beta = vecAngle(l.Matrix[0], l.Matrix[2])
	gamma = vecAngle(l.Matrix[0], l.Matrix[1])
	return alpha, beta, gamma
}

// Volume returns the signed cell volume in Å³.
func (l *Lattice) Volume() float64 {
	m := l.Matrix
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Fractional converts Cartesian coordinates into fractional coordinates of
// this cell.  A degenerate (zero-volume) lattice cannot be inverted.
func (l *Lattice) Fractional(cart [3]float64) ([3]float64, error) {
	vol := l.Volume()
	if math.Abs(vol) < 1e-12 {
		return [3]float64{}, errors.New(errors.ErrCodeStructureInvalid, "lattice has zero volume")
	}

	// Rows of the inverse matrix via cofactors: frac = cart · M⁻¹ with
	// lattice vectors as rows of M.
	m := l.Matrix
	inv := [3][3]float64{
		{m[1][1]*m[2][2] - m[1][2]*m[2][1], m[0][2]*m[2][1] - m[0][1]*m[2][2], m[0][1]*m[1][2] - m[0][2]*m[1][1]},
		{m[1][2]*m[2][0] - m[1][0]*m[2][2], m[0][0]*m[2][2] - m[0][2]*m[2][0], m[0][2]*m[1][0] - m[0][0]*m[1][2]},
		{m[1][0]*m[2][1] - m[1][1]*m[2][0], m[0][1]*m[2][0] - m[0][0]*m[2][1], m[0][0]*m[1][1] - m[0][1]*m[1][0]},
	}

	var frac [3]float64
	for j := 0; j < 3; j++ {
		frac[j] = (cart[0]*inv[0][j] + cart[1]*inv[1][j] + cart[2]*inv[2][j]) / vol
	}
	return frac, nil
}

func vecNorm(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func vecAngle(u, v [3]float64) float64 {
	nu, nv := vecNorm(u), vecNorm(v)
	if nu == 0 || nv == 0 {
		return 0
	}
	cos := (u[0]*v[0] + u[1]*v[1] + u[2]*v[2]) / (nu * nv)
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi
}
