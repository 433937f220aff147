/*
 * supercell.go, part of gocrystal.
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

package crystal

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rmera/gocrystal/lattice"
)

// ParseSupercellScaling parses scalings like "2x2x1", "2×2×1", "2,2,1", "2 2 1"
// or "3" (the same factor on every axis).
func ParseSupercellScaling(s string) ([3]int, error) {
	const funcname = "ParseSupercellScaling"
	var ret [3]int
	r := strings.NewReplacer("×", " ", "x", " ", "X", " ", ",", " ", "*", " ")
	f := strings.Fields(r.Replace(s))
	if len(f) != 1 && len(f) != 3 {
		return ret, newError("", 0, funcname, "invalid supercell scaling %q", s)
	}
	for i := 0; i < 3; i++ {
		field := f[0]
		if len(f) == 3 {
			field = f[i]
		}
		n, err := strconv.Atoi(field)
		if err != nil || n < 1 {
			return ret, newError("", 0, funcname, "invalid supercell factor %q in %q", field, s)
		}
		ret[i] = n
	}
	return ret, nil
}

// MakeSupercell returns a supercell of S scaled along each lattice vector by the
// factors in scaling (see ParseSupercellScaling).
func MakeSupercell(S *Structure, scaling string) (*Structure, error) {
	n, err := ParseSupercellScaling(scaling)
	if err != nil {
		return nil, errDecorate(err, "MakeSupercell")
	}
	T := [3][3]int{{n[0], 0, 0}, {0, n[1], 0}, {0, 0, n[2]}}
	R, err := MakeSupercellMatrix(S, T)
	return R, errDecorate(err, "MakeSupercell")
}

// MakeSupercellMatrix returns the supercell whose lattice vectors are the rows of T·M,
// where M is the lattice matrix of S. The result has |det(T)| times the sites of S,
// ordered by translation first and by original site second. Site labels get the
// translation appended (Fe1_011), and each site records its origin in the
// "orig_site_idx" and "orig_unit_cell_idx" properties.
func MakeSupercellMatrix(S *Structure, T [3][3]int) (*Structure, error) {
	const funcname = "MakeSupercellMatrix"
	if S == nil {
		return nil, newError("", 0, funcname, ErrNilStructure)
	}
	if S.Lattice == nil {
		return nil, newError("", 0, funcname, ErrNoLattice)
	}
	det := lattice.IntDet(T)
	if det == 0 {
		return nil, newError("", 0, funcname, ErrSingularMatrix)
	}
	M := S.Lattice.Matrix
	newM := lattice.MulMat(lattice.FromInt(T), M)
	trans := supercellTranslations(T)
	R := &Structure{
		Lattice:    NewLattice(newM),
		Charge:     S.Charge * math.Abs(float64(det)),
		Properties: S.Copy().Properties,
		Sites:      make([]Site, 0, len(S.Sites)*len(trans)),
	}
	R.Lattice.PBC = S.Lattice.PBC
	for k, n := range trans {
		shift := lattice.FracToCart(M, n)
		suffix := fmt.Sprintf("_%d%d%d", int(n[0]), int(n[1]), int(n[2]))
		for i := range S.Sites {
			orig := &S.Sites[i]
			xyz := orig.XYZ
			if orig.ABC != nil {
				xyz = lattice.FracToCart(M, *orig.ABC)
			}
			abc := lattice.Wrap(lattice.CartToFrac(newM, lattice.Add(xyz, shift)))
			s := orig.withProperties("orig_site_idx", i, "orig_unit_cell_idx", k)
			s.ABC = vecPtr(abc)
			s.XYZ = lattice.FracToCart(newM, abc)
			s.Label = orig.Label + suffix
			R.Sites = append(R.Sites, s)
		}
	}
	return R, nil
}

// supercellTranslations returns the lattice translations (in fractional coordinates
// of the original cell) that fall inside the cell spanned by the rows of T.
// There are |det(T)| of them.
func supercellTranslations(T [3][3]int) []lattice.Vec3 {
	const eps = 1e-8
	var lo, hi [3]int
	//the corners of the new cell are sums of subsets of the rows of T.
	for mask := 0; mask < 8; mask++ {
		var c [3]int
		for r := 0; r < 3; r++ {
			if mask&(1<<r) != 0 {
				for d := 0; d < 3; d++ {
					c[d] += T[r][d]
				}
			}
		}
		for d := 0; d < 3; d++ {
			lo[d] = min(lo[d], c[d])
			hi[d] = max(hi[d], c[d])
		}
	}
	TinvT := lattice.Transpose(lattice.Invert(lattice.FromInt(T)))
	var ret []lattice.Vec3
	for i := lo[0]; i <= hi[0]; i++ {
		for j := lo[1]; j <= hi[1]; j++ {
		K:
			for k := lo[2]; k <= hi[2]; k++ {
				n := lattice.Vec3{float64(i), float64(j), float64(k)}
				f := lattice.MulVec(TinvT, n)
				for _, v := range f {
					if v < -eps || v >= 1-eps {
						continue K
					}
				}
				ret = append(ret, n)
			}
		}
	}
	return ret
}
