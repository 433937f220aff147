/*
 * lattice.go, part of gocrystal.
 *
 *
 * Copyright 2024 rmeraaatacademicosdotutadotcl
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 * gocrystal is developed at Universidad de Tarapaca (UTA)
 *
 *
 */

package lattice

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Vec3 is a point or a displacement in 3D space, either Cartesian or fractional.
type Vec3 [3]float64

// Matrix3 is a 3x3 matrix. For lattices, each row is a basis vector.
type Matrix3 [3][3]float64

// singularTol is the relative determinant below which a matrix is treated as singular.
const singularTol = 1e-12

// Identity returns the 3x3 identity matrix.
func Identity() Matrix3 {
	return Matrix3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Diagonal returns a matrix with d in the diagonal.
func Diagonal(d Vec3) Matrix3 {
	return Matrix3{{d[0], 0, 0}, {0, d[1], 0}, {0, 0, d[2]}}
}

// Row returns the ith row of M, i.e. the ith lattice vector.
func (M Matrix3) Row(i int) Vec3 {
	return Vec3(M[i])
}

// Dense returns a gonum copy of M.
func (M Matrix3) Dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		M[0][0], M[0][1], M[0][2],
		M[1][0], M[1][1], M[1][2],
		M[2][0], M[2][1], M[2][2],
	})
}

// FromDense copies the upper 3x3 block of a gonum matrix into a Matrix3.
// Missing entries are left as zero.
func FromDense(D mat.Matrix) Matrix3 {
	var M Matrix3
	r, c := D.Dims()
	for i := 0; i < 3 && i < r; i++ {
		for j := 0; j < 3 && j < c; j++ {
			M[i][j] = D.At(i, j)
		}
	}
	return M
}

// IsFinite returns true if every element of M is a finite number.
func (M Matrix3) IsFinite() bool {
	for i := range M {
		if !Vec3(M[i]).IsFinite() {
			return false
		}
	}
	return true
}

// IsFinite returns true if every component of v is a finite number.
func (v Vec3) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Transpose returns Mᵀ.
func Transpose(M Matrix3) Matrix3 {
	var T Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			T[j][i] = M[i][j]
		}
	}
	return T
}

// Det returns the determinant of M, or 0 if M has non-finite elements.
func Det(M Matrix3) float64 {
	if !M.IsFinite() {
		return 0
	}
	return M[0][0]*(M[1][1]*M[2][2]-M[1][2]*M[2][1]) -
		M[0][1]*(M[1][0]*M[2][2]-M[1][2]*M[2][0]) +
		M[0][2]*(M[1][0]*M[2][1]-M[1][1]*M[2][0])
}

// IsSingular reports whether M can't be safely inverted. The test is
// relative to the lengths of the rows, so very small and very large cells
// are treated alike.
func IsSingular(M Matrix3) bool {
	d := Det(M)
	scale := Norm(M.Row(0)) * Norm(M.Row(1)) * Norm(M.Row(2))
	if scale == 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return true
	}
	return math.Abs(d) <= singularTol*scale
}

// Invert returns M⁻¹ computed from the adjugate. A singular or
// non-finite M yields the identity, so that callers get finite,
// if meaningless, numbers instead of a crash.
func Invert(M Matrix3) Matrix3 {
	if IsSingular(M) {
		return Identity()
	}
	d := Det(M)
	var I Matrix3
	I[0][0] = (M[1][1]*M[2][2] - M[1][2]*M[2][1]) / d
	I[0][1] = (M[0][2]*M[2][1] - M[0][1]*M[2][2]) / d
	I[0][2] = (M[0][1]*M[1][2] - M[0][2]*M[1][1]) / d
	I[1][0] = (M[1][2]*M[2][0] - M[1][0]*M[2][2]) / d
	I[1][1] = (M[0][0]*M[2][2] - M[0][2]*M[2][0]) / d
	I[1][2] = (M[0][2]*M[1][0] - M[0][0]*M[1][2]) / d
	I[2][0] = (M[1][0]*M[2][1] - M[1][1]*M[2][0]) / d
	I[2][1] = (M[0][1]*M[2][0] - M[0][0]*M[2][1]) / d
	I[2][2] = (M[0][0]*M[1][1] - M[0][1]*M[1][0]) / d
	if !I.IsFinite() {
		return Identity()
	}
	return I
}

// MulVec returns M·v.
func MulVec(M Matrix3, v Vec3) Vec3 {
	var r Vec3
	for i := 0; i < 3; i++ {
		r[i] = M[i][0]*v[0] + M[i][1]*v[1] + M[i][2]*v[2]
	}
	return r
}

// MulMat returns the product A·B.
func MulMat(A, B Matrix3) Matrix3 {
	var C mat.Dense
	C.Mul(A.Dense(), B.Dense())
	return FromDense(&C)
}

// Add returns a+b.
func Add(a, b Vec3) Vec3 {
	return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Sub returns a-b.
func Sub(a, b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Scale returns s*v.
func Scale(v Vec3, s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Dot returns the dot product of a and b.
func Dot(a, b Vec3) float64 {
	return floats.Dot(a[:], b[:])
}

// Norm returns the Euclidean length of v.
func Norm(v Vec3) float64 {
	return floats.Norm(v[:], 2)
}

// Cross returns a×b.
func Cross(a, b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Volume returns the (unsigned) volume of the cell spanned by the rows of M.
func Volume(M Matrix3) float64 {
	return math.Abs(Det(M))
}

// FracToCart converts fractional coordinates in the lattice M to Cartesian ones.
func FracToCart(M Matrix3, abc Vec3) Vec3 {
	return MulVec(Transpose(M), abc)
}

// CartToFrac converts Cartesian coordinates to fractional ones in the lattice M.
// For a singular M the result is the input itself (see Invert).
func CartToFrac(M Matrix3, xyz Vec3) Vec3 {
	return MulVec(Transpose(Invert(M)), xyz)
}

// IntDet returns the determinant of an integer matrix, rounded to the
// closest integer.
func IntDet(T [3][3]int) int {
	d := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d.Set(i, j, float64(T[i][j]))
		}
	}
	return int(math.Round(mat.Det(d)))
}

// FromInt converts an integer matrix to a Matrix3.
func FromInt(T [3][3]int) Matrix3 {
	var M Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			M[i][j] = float64(T[i][j])
		}
	}
	return M
}
