/*
 * xyz_test.go, part of gocrystal.
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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/gocrystal/lattice"
)

func TestXYZLastFrameWins(Te *testing.T) {
	in := `1
Lattice="1 0 0 0 1 0 0 0 1" Properties=species:S:1:pos:R:3
Fe 0.1 0.1 0.1
1
Lattice="2 0 0 0 2 0 0 0 2" Properties=species:S:1:pos:R:3
Fe 0.5 0.5 0.5
`
	S, err := ParseXYZ(in)
	require.NoError(Te, err)
	require.NotNil(Te, S.Lattice)
	assert.InDelta(Te, 2.0, S.Lattice.A, 1e-12)
	require.Equal(Te, 1, S.Len())
	assertVec(Te, lattice.Vec3{0.25, 0.25, 0.25}, *S.Sites[0].ABC, 1e-12)
	assertConsistent(Te, S)
}

func TestXYZMolecule(Te *testing.T) {
	in := "3\nwater\nO 0.0 0.0 0.1173\nH 0.0 0.7572 -0.4692\nH 0.0 -0.7572 -0.4692\n"
	S, err := ParseXYZ(in)
	require.NoError(Te, err)
	assert.Nil(Te, S.Lattice)
	assert.False(Te, S.Periodic())
	require.Equal(Te, 3, S.Len())
	for _, s := range S.Sites {
		assert.Nil(Te, s.ABC)
	}
	assert.Equal(Te, "water", S.Properties["comment"])
	assert.InDelta(Te, -0.4692, S.Sites[2].XYZ[2], 1e-12)
	assert.Equal(Te, "H2 O1", S.Formula())
}

func TestXYZNumberFormats(Te *testing.T) {
	in := "4\nexponents\nC 1.0D0 2.5d-1 0\nC 1.0*^0 0 0\nC 1e0 2E-1 0.0 extra 12 columns\n6 0 0 3\n"
	S, err := ParseXYZ(in)
	require.NoError(Te, err)
	require.Equal(Te, 4, S.Len())
	assertVec(Te, lattice.Vec3{1, 0.25, 0}, S.Sites[0].XYZ, 1e-15)
	assertVec(Te, lattice.Vec3{1, 0, 0}, S.Sites[1].XYZ, 1e-15)
	assertVec(Te, lattice.Vec3{1, 0.2, 0}, S.Sites[2].XYZ, 1e-15)
	//atomic numbers are accepted as species.
	assert.Equal(Te, "C", S.Sites[3].Element())
}

func TestXYZUnknownElement(Te *testing.T) {
	S, err := ParseXYZ("2\n\nQq 0 0 0\nNa 1 1 1\n")
	require.NoError(Te, err)
	assert.Equal(Te, defaultElement, S.Sites[0].Element())
	assert.Equal(Te, "Qq", S.Sites[0].Label)
	assert.Equal(Te, "Na", S.Sites[1].Element())
}

func TestXYZSingularLattice(Te *testing.T) {
	in := "2\nLattice=\"1 0 0 2 0 0 0 0 1\"\nNa 0.5 0.5 0.5\nCl 3 3 3\n"
	S, err := ParseXYZ(in)
	require.NoError(Te, err)
	require.NotNil(Te, S.Lattice)
	for _, s := range S.Sites {
		require.NotNil(Te, s.ABC)
		assert.True(Te, s.ABC.IsFinite())
	}
	//Cartesian coordinates are kept as read.
	assertVec(Te, lattice.Vec3{3, 3, 3}, S.Sites[1].XYZ, 0)
}

func TestXYZPropertiesColumns(Te *testing.T) {
	in := `2
Lattice="5 0 0 0 5 0 0 0 5" Properties=id:I:1:species:S:1:pos:R:3:forces:R:3 pbc="T T F"
1 Na 0 0 0 0.1 0.1 0.1
2 Cl 2.5 2.5 2.5 0 0 0
`
	S, err := ParseXYZ(in)
	require.NoError(Te, err)
	assert.Equal(Te, "Na", S.Sites[0].Element())
	assert.Equal(Te, "Cl", S.Sites[1].Element())
	assertVec(Te, lattice.Vec3{0.5, 0.5, 0.5}, *S.Sites[1].ABC, 1e-12)
	assert.Equal(Te, [3]bool{true, true, false}, S.Lattice.PBC)
	assertConsistent(Te, S)
}

func TestXYZWrapsAndTruncatedFrames(Te *testing.T) {
	in := `1
Lattice="4 0 0 0 4 0 0 0 4"
Ar -1 5 2
2
Lattice="4 0 0 0 4 0 0 0 4"
Ar 1 1 1
`
	S, err := ParseXYZ(in)
	require.NoError(Te, err)
	//the incomplete second frame is dropped.
	require.Equal(Te, 1, S.Len())
	assertVec(Te, lattice.Vec3{0.75, 0.25, 0.5}, *S.Sites[0].ABC, 1e-12)
	assertVec(Te, lattice.Vec3{3, 1, 2}, S.Sites[0].XYZ, 1e-12)
	assertWrapped(Te, S)

	_, err = ParseXYZ("3\ntruncated\nAr 0 0 0\n")
	assert.Error(Te, err)
	_, err = ParseXYZ("many\ncomment\nAr 0 0 0\n")
	assert.Error(Te, err)
	_, err = ParseXYZ("")
	assert.Error(Te, err)
	_, err = ParseXYZ("1\n\nAr 0 zero 0\n")
	assert.Error(Te, err)
}

func TestXYZFiniteOutput(Te *testing.T) {
	S, err := ParseXYZ("1\nLattice=\"0 0 0 0 0 0 0 0 0\"\nAr 1 2 3\n")
	require.NoError(Te, err)
	for _, v := range *S.Sites[0].ABC {
		assert.False(Te, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestXYZHugeCount(Te *testing.T) {
	in := "9223372036854775807\ncomment\nH 0 0 0\n"
	var S *Structure
	var err error
	require.NotPanics(Te, func() { S, err = ParseXYZ(in) })
	assert.Error(Te, err)
	assert.Nil(Te, S)
	require.NotPanics(Te, func() { S, err = ParseStructureFile(in, "mol.xyz") })
	assert.Error(Te, err)
	assert.Nil(Te, S)

	//a valid frame followed by one with a huge count keeps the first.
	S, err = ParseXYZ("1\n\nAr 0 0 0\n9223372036854775807\n\nAr 1 1 1\n")
	require.NoError(Te, err)
	assert.Equal(Te, 1, S.Len())
}
