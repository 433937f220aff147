/*
 * cif_test.go, part of gocrystal.
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
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/gocrystal/lattice"
)

func TestCIFQuartz(Te *testing.T) {
	data, err := os.ReadFile("test/quartz.cif")
	require.NoError(Te, err)
	S, err := ParseCIF(string(data))
	require.NoError(Te, err)
	require.Equal(Te, 3, S.Len())
	assert.InDelta(Te, 120.0, S.Lattice.Gamma, 1e-9)
	assert.InDelta(Te, 4.916, S.Lattice.A, 1e-9)
	assert.InDelta(Te, 4.916, S.Lattice.B, 1e-9)
	assert.InDelta(Te, 5.405, S.Lattice.C, 1e-9)
	assert.Equal(Te, "Si", S.Sites[0].Element())
	assert.Equal(Te, "Si1", S.Sites[0].Label)
	assert.Equal(Te, "O", S.Sites[2].Element())
	assert.Equal(Te, "O2 Si", S.Properties["formula"])
	assert.Equal(Te, "P 1", S.Properties["space_group"])
	assert.Equal(Te, "quartz_alpha", S.Properties["data_block"])
	assertConsistent(Te, S)
	assertWrapped(Te, S)
}

// cifWith returns a CIF with a cubic cell of edge a, the given symmetry operators
// and atom site rows (label, type, x, y, z, occupancy).
func cifWith(a float64, ops []string, rows ...string) string {
	s := fmt.Sprintf("data_test\n_cell_length_a %g\n_cell_length_b %g\n_cell_length_c %g\n", a, a, a)
	s += "_cell_angle_alpha 90\n_cell_angle_beta 90\n_cell_angle_gamma 90\n"
	if len(ops) > 0 {
		s += "loop_\n_space_group_symop_operation_xyz\n"
		for _, o := range ops {
			s += "'" + o + "'\n"
		}
	}
	s += "loop_\n_atom_site_label\n_atom_site_type_symbol\n_atom_site_fract_x\n_atom_site_fract_y\n_atom_site_fract_z\n_atom_site_occupancy\n"
	for _, r := range rows {
		s += r + "\n"
	}
	return s
}

func TestCIFSymmetryExpansion(Te *testing.T) {
	in := cifWith(4, []string{"x,y,z", "x+1/2,y+1/2,z+1/2"}, "Na1 Na 0 0 0 1")
	S, err := ParseCIF(in)
	require.NoError(Te, err)
	require.Equal(Te, 2, S.Len())
	assertVec(Te, lattice.Vec3{0, 0, 0}, *S.Sites[0].ABC, 0)
	assertVec(Te, lattice.Vec3{0.5, 0.5, 0.5}, *S.Sites[1].ABC, 1e-12)
	assertVec(Te, lattice.Vec3{2, 2, 2}, S.Sites[1].XYZ, 1e-12)
	assertConsistent(Te, S)
}

func TestCIFNoIdentityCopies(Te *testing.T) {
	//every way of writing the identity is skipped.
	in := cifWith(4, []string{"x,y,z", "+x, +y, +z", "X,Y,Z", "x+1,y,z-1"}, "Na1 Na 0.1 0.2 0.3 1")
	S, err := ParseCIF(in, CIFOptions{WrapFrac: false})
	require.NoError(Te, err)
	assert.Equal(Te, 1, S.Len())
}

func TestCIFSpecialPositions(Te *testing.T) {
	ops := []string{"x,y,z", "-x,-y,-z"}
	//the origin is its own inversion image.
	S, err := ParseCIF(cifWith(4, ops, "Na1 Na 0 0 0 1", "Cl1 Cl 0.1 0.2 0.3 1"))
	require.NoError(Te, err)
	require.Equal(Te, 3, S.Len())
	assert.Equal(Te, "Na", S.Sites[0].Element())
	assert.Equal(Te, "Cl", S.Sites[1].Element())
	assert.Equal(Te, "Cl", S.Sites[2].Element())
	assertVec(Te, lattice.Vec3{0.9, 0.8, 0.7}, *S.Sites[2].ABC, 1e-12)

	//without wrapping, nothing is collapsed and coordinates are kept verbatim.
	S, err = ParseCIF(cifWith(4, ops, "Na1 Na 0 0 0 1", "Cl1 Cl 0.1 0.2 0.3 1"), CIFOptions{WrapFrac: false})
	require.NoError(Te, err)
	require.Equal(Te, 4, S.Len())
	assertVec(Te, lattice.Vec3{-0.1, -0.2, -0.3}, *S.Sites[3].ABC, 1e-12)
	assertConsistent(Te, S)
}

func TestCIFDisorderedRows(Te *testing.T) {
	ops := []string{"x,y,z", "-x,-y,-z"}
	S, err := ParseCIF(cifWith(5, ops, "Na1 Na 0.1 0.2 0.3 0.6", "K1 K 0.1 0.2 0.3 0.4"))
	require.NoError(Te, err)
	//each row is expanded on its own, even though they share a position.
	require.Equal(Te, 4, S.Len())
	counts := S.ElementCounts()
	assert.InDelta(Te, 1.2, counts["Na"], 1e-12)
	assert.InDelta(Te, 0.8, counts["K"], 1e-12)
	assert.InDelta(Te, 0.6, S.Sites[0].Species[0].Occu, 1e-12)
}

func TestCIFDanglingOperators(Te *testing.T) {
	ops := []string{"x,y,z", "-x+,-y,-z-", "x,y", "a+b,c,d"}
	S, err := ParseCIF(cifWith(4, ops, "Cl1 Cl 0.1 0.2 0.3 1"))
	require.NoError(Te, err)
	//the dangling operator still works as an inversion, the malformed ones are skipped.
	require.Equal(Te, 2, S.Len())
	assertVec(Te, lattice.Vec3{0.9, 0.8, 0.7}, *S.Sites[1].ABC, 1e-12)
}

func TestCIFWrapFrac(Te *testing.T) {
	in := cifWith(4, nil, "Na1 Na -0.25 1.5 0.5 1")
	S, err := ParseCIF(in)
	require.NoError(Te, err)
	assertVec(Te, lattice.Vec3{0.75, 0.5, 0.5}, *S.Sites[0].ABC, 1e-12)
	assertWrapped(Te, S)

	S, err = ParseCIF(in, CIFOptions{WrapFrac: false})
	require.NoError(Te, err)
	assertVec(Te, lattice.Vec3{-0.25, 1.5, 0.5}, *S.Sites[0].ABC, 0)
	assertVec(Te, lattice.Vec3{-1, 6, 2}, S.Sites[0].XYZ, 1e-12)
}

func TestCIFCellErrors(Te *testing.T) {
	in := "data_x\n_cell_length_a 4\n_cell_length_c 4\n_cell_angle_alpha 90\n_cell_angle_beta 90\n_cell_angle_gamma 90\n" +
		"loop_\n_atom_site_label\n_atom_site_fract_x\n_atom_site_fract_y\n_atom_site_fract_z\nNa1 0 0 0\n"
	S, err := ParseCIF(in, CIFOptions{Strict: true, WrapFrac: true})
	require.Error(Te, err)
	assert.Nil(Te, S)
	assert.Contains(Te, err.Error(), "_cell_length_b")
	var e *Error
	require.True(Te, errors.As(err, &e))
	//a missing tag is blamed on the header of its data block.
	assert.Equal(Te, 1, e.Line())
	strictMsg := err.Error()

	S, err = ParseCIF(in)
	require.Error(Te, err)
	assert.Nil(Te, S)
	assert.Contains(Te, err.Error(), "incomplete cell data")
	assert.NotEqual(Te, strictMsg, err.Error())

	bad := "data_x\n_cell_length_a four\n_cell_length_b 4\n_cell_length_c 4\n_cell_angle_alpha 90\n_cell_angle_beta 90\n_cell_angle_gamma 90\n" +
		"loop_\n_atom_site_label\n_atom_site_fract_x\n_atom_site_fract_y\n_atom_site_fract_z\nNa1 0 0 0\n"
	_, err = ParseCIF(bad, CIFOptions{Strict: true})
	require.Error(Te, err)
	require.True(Te, errors.As(err, &e))
	assert.Equal(Te, 2, e.Line())
}

func TestCIFUnknownValues(Te *testing.T) {
	_, err := ParseCIF(cifWith(4, nil, "Na1 Na 0 ? 0 1"))
	require.Error(Te, err)
	var e *Error
	require.True(Te, errors.As(err, &e))
	assert.Greater(Te, e.Line(), 0)

	_, err = ParseCIF(cifWith(4, nil, "Na1 Na 0 . 0 1"))
	assert.Error(Te, err)
	_, err = ParseCIF(cifWith(4, nil, "? ? 0 0 0 1"))
	assert.Error(Te, err)
	//an unknown occupancy is not a coordinate: it defaults to 1.
	S, err := ParseCIF(cifWith(4, nil, "Na1 Na 0 0 0 ?"))
	require.NoError(Te, err)
	assert.Equal(Te, 1.0, S.Sites[0].Species[0].Occu)
}

func TestCIFElementsFromLabels(Te *testing.T) {
	in := `data_labels
_cell_length_a 5
_cell_length_b 5
_cell_length_c 5
_cell_angle_alpha 90
_cell_angle_beta 90
_cell_angle_gamma 90
loop_
_atom_site_label
_atom_site_fract_x
_atom_site_fract_y
_atom_site_fract_z
site1_Fe_center 0 0 0
Ru(1) 0.5 0.5 0.5
OW3 0.25 0.25 0.25
`
	S, err := ParseCIF(in)
	require.NoError(Te, err)
	require.Equal(Te, 3, S.Len())
	assert.Equal(Te, "Fe", S.Sites[0].Element())
	assert.Equal(Te, "site1_Fe_center", S.Sites[0].Label)
	assert.Equal(Te, "Ru", S.Sites[1].Element())
	assert.Equal(Te, "O", S.Sites[2].Element())
}

func TestCIFAtomTypes(Te *testing.T) {
	in := `data_SnO2
_cell_length_a 4.737
_cell_length_b 4.737
_cell_length_c 3.186
_cell_angle_alpha 90
_cell_angle_beta 90
_cell_angle_gamma 90
loop_
_atom_type_symbol
_atom_type_oxidation_number
_atom_type_number_in_cell
Sn2+ 2 2
O2- -2 4
loop_
_atom_site_label
_atom_site_type_symbol
_atom_site_fract_x
_atom_site_fract_y
_atom_site_fract_z
_atom_site_U_iso_or_equiv
_atom_site_Wyckoff_symbol
Sn1 Sn2+ 0 0 0 0.005 2a
# comments between rows do not shift columns
O1 O2- 0.3056 0.3056 0 0.006 4f
`
	S, err := ParseCIF(in)
	require.NoError(Te, err)
	require.Equal(Te, 2, S.Len())
	assert.Equal(Te, "Sn", S.Sites[0].Element())
	assert.Equal(Te, 2, S.Sites[0].Species[0].OxidationState)
	assert.Equal(Te, "O", S.Sites[1].Element())
	assert.Equal(Te, -2, S.Sites[1].Species[0].OxidationState)
	assert.Equal(Te, "4f", S.Sites[1].Properties["wyckoff"])
	assertVec(Te, lattice.Vec3{0.3056, 0.3056, 0}, *S.Sites[1].ABC, 1e-12)
	assert.Equal(Te, map[string]float64{"Sn": 2, "O": 4}, S.Properties["atom_type_counts"])
}

func TestCIFCartesianAndMMCIFTags(Te *testing.T) {
	in := `data_mm
_cell.length_a 10
_cell.length_b 10
_cell.length_c 10
_cell.angle_alpha 90
_cell.angle_beta 90
_cell.angle_gamma 90
loop_
_atom_site.type_symbol
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
N 1 2 3
C 11 -2 5
`
	S, err := ParseCIF(in)
	require.NoError(Te, err)
	require.Equal(Te, 2, S.Len())
	assertVec(Te, lattice.Vec3{0.1, 0.2, 0.3}, *S.Sites[0].ABC, 1e-12)
	assertVec(Te, lattice.Vec3{0.1, 0.8, 0.5}, *S.Sites[1].ABC, 1e-12)
	assert.Equal(Te, "N", S.Sites[0].Label)
	assertConsistent(Te, S)
}

func TestCIFFirstBlockWithAtoms(Te *testing.T) {
	in := "data_global\n_journal_name_full 'Some Journal'\n" + cifWith(3, nil, "Ar1 Ar 0 0 0 1")
	S, err := ParseCIF(in)
	require.NoError(Te, err)
	assert.Equal(Te, "test", S.Properties["data_block"])
	assert.Equal(Te, 1, S.Len())

	_, err = ParseCIF("data_empty\n_cell_length_a 3\n")
	assert.Error(Te, err)
}

func TestCIFTokenize(Te *testing.T) {
	toks := cifTokenize(`_name 'O'Neil' "a b" plain # comment`)
	require.Len(Te, toks, 4)
	assert.Equal(Te, "_name", toks[0].text)
	assert.Equal(Te, "O'Neil", toks[1].text)
	assert.True(Te, toks[1].quoted)
	assert.Equal(Te, "a b", toks[2].text)
	assert.Equal(Te, "plain", toks[3].text)
	assert.False(Te, toks[3].quoted)
}

func TestParseSymOp(Te *testing.T) {
	O, err := ParseSymOp("-x+y, -x, z+2/3")
	require.NoError(Te, err)
	assert.Equal(Te, lattice.Matrix3{{-1, 1, 0}, {-1, 0, 0}, {0, 0, 1}}, O.Rot)
	assertVec(Te, lattice.Vec3{0, 0, 2.0 / 3.0}, O.Trans, 1e-15)
	assert.False(Te, O.Dangling)
	assert.False(Te, O.Identity())

	O, err = ParseSymOp("'1/2+x, 0.5-y, -z'")
	require.NoError(Te, err)
	assert.Equal(Te, lattice.Matrix3{{1, 0, 0}, {0, -1, 0}, {0, 0, -1}}, O.Rot)
	assertVec(Te, lattice.Vec3{0.5, 0.5, 0}, O.Trans, 0)
	assertVec(Te, lattice.Vec3{0.6, 0.3, -0.3}, O.Apply(lattice.Vec3{0.1, 0.2, 0.3}), 1e-15)

	O, err = ParseSymOp("x-, y, z+")
	require.NoError(Te, err)
	assert.True(Te, O.Dangling)
	assert.True(Te, O.Identity())

	O, err = ParseSymOp("x, y, z+1")
	require.NoError(Te, err)
	assert.True(Te, O.Identity())

	for _, bad := range []string{"x,y", "x,y,z,x", "x,y,w", "x,y,z+1/0", ""} {
		_, err := ParseSymOp(bad)
		assert.Error(Te, err, bad)
	}
	ops := ParseSymOps([]string{"x,y,z", "x,y", "-x,-y,-z"})
	assert.Len(Te, ops, 2)
}
