/*
 * cell.go, part of gocrystal.
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
)

// WrapEps is the distance from 1.0 under which a wrapped fractional
// coordinate is snapped to 0.0.
const WrapEps = 1e-9

// maxImageSearch bounds the number of cells scanned per axis and direction
// by PeriodicDistance.
const maxImageSearch = 6

// Params holds the six cell parameters. Lengths are in the units of the
// lattice matrix, angles in degrees.
type Params struct {
	A, B, C            float64
	Alpha, Beta, Gamma float64
}

func Deg2Rad(f float64) float64 {
	return f * math.Pi / 180
}

func Rad2Deg(f float64) float64 {
	return f * 180 / math.Pi
}

// cosd returns the cosine of an angle in degrees, exact for multiples of 90.
func cosd(deg float64) float64 {
	if r := math.Mod(deg, 180); r == 90 || r == -90 {
		return 0
	}
	return math.Cos(Deg2Rad(deg))
}

// sind returns the sine of an angle in degrees, exact for multiples of 180.
func sind(deg float64) float64 {
	if math.Mod(deg, 180) == 0 {
		return 0
	}
	return math.Sin(Deg2Rad(deg))
}

// FromCell builds a lattice matrix from the cell parameters using the usual
// crystallographic setting: a along x, b in the xy-plane, c completing the
// cell. Angles that can't produce a cell (e.g. gamma = 0, or
// an impossible alpha/beta/gamma combination) yield a flattened but finite matrix.
func FromCell(a, b, c, alpha, beta, gamma float64) Matrix3 {
	for _, v := range []float64{a, b, c, alpha, beta, gamma} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Matrix3{}
		}
	}
	ca, cb, cg := cosd(alpha), cosd(beta), cosd(gamma)
	sg := sind(gamma)
	var M Matrix3
	M[0] = [3]float64{a, 0, 0}
	M[1] = [3]float64{b * cg, b * sg, 0}
	cx := c * cb
	var cy float64
	if sg != 0 {
		cy = c * (ca - cb*cg) / sg
	}
	cz2 := c*c - cx*cx - cy*cy
	var cz float64
	if cz2 > 0 {
		cz = math.Sqrt(cz2)
	}
	M[2] = [3]float64{cx, cy, cz}
	return M
}

// angle returns the angle between u and v in degrees, or 0 if either is null.
func angle(u, v Vec3) float64 {
	nu, nv := Norm(u), Norm(v)
	if nu == 0 || nv == 0 || math.IsNaN(nu*nv) || math.IsInf(nu*nv, 0) {
		return 0
	}
	c := Dot(u, v) / (nu * nv)
	c = math.Max(-1, math.Min(1, c))
	return Rad2Deg(math.Acos(c))
}

// ToCell returns the cell parameters of the lattice M.
func ToCell(M Matrix3) Params {
	a, b, c := M.Row(0), M.Row(1), M.Row(2)
	return Params{
		A:     finiteOr0(Norm(a)),
		B:     finiteOr0(Norm(b)),
		C:     finiteOr0(Norm(c)),
		Alpha: angle(b, c),
		Beta:  angle(a, c),
		Gamma: angle(a, b),
	}
}

func finiteOr0(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

// WrapScalar maps x into [0,1). Values within WrapEps of 1 (which is
// where floating point remainders of exact lattice points land) become 0.
func WrapScalar(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	r := x - math.Floor(x)
	if r >= 1-WrapEps || r < 0 {
		return 0
	}
	return r
}

// Wrap maps each component of the fractional coordinates v into [0,1).
// Wrap is idempotent.
func Wrap(v Vec3) Vec3 {
	return Vec3{WrapScalar(v[0]), WrapScalar(v[1]), WrapScalar(v[2])}
}

// PeriodicDistance returns the minimum-image distance between the Cartesian
// points p1 and p2 in the lattice M, with periodicity along all three axes.
// The search is exact for skewed cells: candidate images are bounded using
// the reciprocal vectors instead of only looking at the 26 neighbors.
// For a singular M, the plain Euclidean distance is returned.
func PeriodicDistance(p1, p2 Vec3, M Matrix3) float64 {
	d := Sub(p2, p1)
	if !d.IsFinite() {
		return 0
	}
	if IsSingular(M) {
		return Norm(d)
	}
	inv := Invert(M)
	f := MulVec(Transpose(inv), d)
	for i := range f {
		f[i] -= math.Round(f[i])
	}
	best := Norm(FracToCart(M, f))
	//|f_i + n_i| <= best*|column i of M⁻¹| for any image at least as close as best.
	var lo, hi [3]int
	for i := 0; i < 3; i++ {
		col := Vec3{inv[0][i], inv[1][i], inv[2][i]}
		bound := best * Norm(col)
		lo[i] = int(math.Max(math.Ceil(-f[i]-bound), -maxImageSearch))
		hi[i] = int(math.Min(math.Floor(-f[i]+bound), maxImageSearch))
	}
	for i := lo[0]; i <= hi[0]; i++ {
		for j := lo[1]; j <= hi[1]; j++ {
			for k := lo[2]; k <= hi[2]; k++ {
				g := Vec3{f[0] + float64(i), f[1] + float64(j), f[2] + float64(k)}
				if dist := Norm(FracToCart(M, g)); dist < best {
					best = dist
				}
			}
		}
	}
	return best
}
