/*
 * lattice_test.go, part of gocrystal.
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestInvert(Te *testing.T) {
	M := Matrix3{{4, 0, 0}, {1, 3, 0}, {0.5, 0.2, 5}}
	I := MulMat(M, Invert(M))
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			assert.InDelta(Te, want, I[i][j], 1e-12)
		}
	}
}

func TestInvertSingular(Te *testing.T) {
	cases := []Matrix3{
		{},
		{{1, 0, 0}, {2, 0, 0}, {0, 0, 1}},
		{{1, 0, 0}, {0, math.NaN(), 0}, {0, 0, 1}},
		{{1, 0, 0}, {0, math.Inf(1), 0}, {0, 0, 1}},
	}
	for _, M := range cases {
		I := Invert(M)
		assert.True(Te, I.IsFinite())
		assert.Equal(Te, Identity(), I)
	}
}

func TestFromCellToCell(Te *testing.T) {
	cells := []Params{
		{4, 4, 4, 90, 90, 90},
		{4.916, 4.916, 5.405, 90, 90, 120},
		{5.1, 6.3, 7.7, 71.2, 83.9, 102.4},
		{3.0, 30.0, 3.5, 89.0, 91.5, 60.0},
	}
	for _, p := range cells {
		M := FromCell(p.A, p.B, p.C, p.Alpha, p.Beta, p.Gamma)
		assert.Equal(Te, 0.0, M[0][1])
		assert.Equal(Te, 0.0, M[0][2])
		assert.Equal(Te, 0.0, M[1][2])
		got := ToCell(M)
		assert.InDelta(Te, p.A, got.A, 1e-9)
		assert.InDelta(Te, p.B, got.B, 1e-9)
		assert.InDelta(Te, p.C, got.C, 1e-9)
		assert.InDelta(Te, p.Alpha, got.Alpha, 1e-9)
		assert.InDelta(Te, p.Beta, got.Beta, 1e-9)
		assert.InDelta(Te, p.Gamma, got.Gamma, 1e-9)
	}
	cubic := FromCell(4, 4, 4, 90, 90, 90)
	assert.Equal(Te, Matrix3{{4, 0, 0}, {0, 4, 0}, {0, 0, 4}}, cubic)
	assert.InDelta(Te, 64.0, Volume(cubic), 1e-12)
}

func TestDegenerateCells(Te *testing.T) {
	M := FromCell(1, 1, 1, 0, 0, 0)
	assert.True(Te, M.IsFinite())
	M = FromCell(math.NaN(), 1, 1, 90, 90, 90)
	assert.True(Te, M.IsFinite())
	p := ToCell(Matrix3{})
	assert.Equal(Te, Params{}, p)
}

func TestFracCartRoundTrip(Te *testing.T) {
	M := FromCell(5.1, 6.3, 7.7, 71.2, 83.9, 102.4)
	abc := Vec3{0.13, 0.77, 0.5}
	xyz := FracToCart(M, abc)
	back := CartToFrac(M, xyz)
	for i := range abc {
		assert.True(Te, scalar.EqualWithinAbsOrRel(abc[i], back[i], 1e-12, 1e-12))
	}
	want := Add(Add(Scale(M.Row(0), abc[0]), Scale(M.Row(1), abc[1])), Scale(M.Row(2), abc[2]))
	for i := range want {
		assert.InDelta(Te, want[i], xyz[i], 1e-12)
	}
}

func TestWrap(Te *testing.T) {
	in := []float64{0, 1, -1, 0.5, 1.25, -0.25, 1 - 1e-12, -1e-17, 7.000000000001, math.NaN(), math.Inf(-1)}
	for _, x := range in {
		w := WrapScalar(x)
		require.GreaterOrEqual(Te, w, 0.0, "x=%g", x)
		require.Less(Te, w, 1.0, "x=%g", x)
		assert.Equal(Te, w, WrapScalar(w), "not idempotent for x=%g", x)
	}
	assert.Equal(Te, 0.0, WrapScalar(1))
	assert.Equal(Te, 0.0, WrapScalar(1-1e-12))
	assert.InDelta(Te, 0.75, WrapScalar(-0.25), 1e-15)
	v := Wrap(Vec3{1.5, -0.5, 2})
	assert.Equal(Te, v, Wrap(v))
}

func TestPeriodicDistance(Te *testing.T) {
	cubic := FromCell(5, 5, 5, 90, 90, 90)
	assert.InDelta(Te, 1.0, PeriodicDistance(Vec3{0.5, 0, 0}, Vec3{4.5, 0, 0}, cubic), 1e-12)
	assert.InDelta(Te, math.Sqrt(3), PeriodicDistance(Vec3{0.5, 0.5, 0.5}, Vec3{4.5, 4.5, 4.5}, cubic), 1e-12)
	//far away images collapse too.
	assert.InDelta(Te, 1.0, PeriodicDistance(Vec3{0.5, 0, 0}, Vec3{54.5, 0, 0}, cubic), 1e-9)

	//very skewed cell: brute force over a large neighborhood must agree.
	skew := Matrix3{{10, 0, 0}, {9.5, 1, 0}, {0.3, 0.4, 8}}
	p1, p2 := Vec3{0.1, 0.2, 0.3}, Vec3{8.9, 0.95, 7.5}
	got := PeriodicDistance(p1, p2, skew)
	brute := math.Inf(1)
	d := Sub(p2, p1)
	for i := -15; i <= 15; i++ {
		for j := -15; j <= 15; j++ {
			for k := -3; k <= 3; k++ {
				t := FracToCart(skew, Vec3{float64(i), float64(j), float64(k)})
				brute = math.Min(brute, Norm(Add(d, t)))
			}
		}
	}
	assert.InDelta(Te, brute, got, 1e-9)

	//singular lattice: euclidean fallback
	assert.InDelta(Te, 5.0, PeriodicDistance(Vec3{}, Vec3{3, 4, 0}, Matrix3{}), 1e-12)
}

func TestIntDet(Te *testing.T) {
	assert.Equal(Te, 8, IntDet([3][3]int{{2, 0, 0}, {0, 2, 0}, {0, 0, 2}}))
	assert.Equal(Te, 0, IntDet([3][3]int{{1, 1, 0}, {1, 1, 0}, {0, 0, 1}}))
	assert.Equal(Te, -1, IntDet([3][3]int{{0, 1, 0}, {1, 0, 0}, {0, 0, 1}}))
}
