/*
 * optimade_test.go, part of gocrystal.
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/gocrystal/lattice"
)

const optimadeNaCl = `{
  "data": {
    "id": "mp-22862",
    "type": "structures",
    "attributes": {
      "chemical_formula_reduced": "ClNa",
      "lattice_vectors": [[5.64, 0, 0], [0, 5.64, 0], [0, 0, 5.64]],
      "cartesian_site_positions": [[0, 0, 0], [2.82, 2.82, 2.82], [1, "a", 2], [1, 2]],
      "species_at_sites": ["Na", "Cl", "Na", "Cl"],
      "dimension_types": [1, 1, 0],
      "nperiodic_dimensions": 2
    }
  }
}`

func TestIsOptimadeJSON(Te *testing.T) {
	assert.True(Te, IsOptimadeJSON(optimadeNaCl))
	bare := `{"id": "x", "type": "structures", "attributes": {"species_at_sites": ["H"], "cartesian_site_positions": [[0,0,0]]}}`
	assert.True(Te, IsOptimadeJSON(bare))
	assert.True(Te, IsOptimadeJSON(`{"data": [`+bare+`]}`))

	not := []string{
		`{"data": []}`,
		`{"id": "x", "type": "references", "attributes": {"a": 1}}`,
		`{"id": "x", "type": "structures", "attributes": {}}`,
		`{"type": "structures", "attributes": {"a": 1}}`,
		`[1, 2, 3]`,
		`not json`,
		``,
	}
	for _, n := range not {
		assert.False(Te, IsOptimadeJSON(n), n)
	}
}

func TestParseOptimade(Te *testing.T) {
	S, err := ParseOptimade(optimadeNaCl)
	require.NoError(Te, err)
	//the two malformed positions are dropped.
	require.Equal(Te, 2, S.Len())
	assert.Equal(Te, "Na", S.Sites[0].Element())
	assert.Equal(Te, "Cl", S.Sites[1].Element())
	require.NotNil(Te, S.Lattice)
	assert.Equal(Te, [3]bool{true, true, false}, S.Lattice.PBC)
	assertVec(Te, lattice.Vec3{0.5, 0.5, 0.5}, *S.Sites[1].ABC, 1e-12)
	assert.Equal(Te, "mp-22862", S.Properties["id"])
	assert.Equal(Te, "ClNa", S.Properties["formula"])
	assertConsistent(Te, S)
	assertWrapped(Te, S)
}

func TestParseOptimadeMolecule(Te *testing.T) {
	in := `{"id": "mol-1", "type": "structures", "attributes": {
	  "lattice_vectors": [[null, null, null], [null, null, null], [null, null, null]],
	  "cartesian_site_positions": [[0, 0, 0.1173], [0, 0.7572, -0.4692], [0, -0.7572, -0.4692]],
	  "species_at_sites": ["O", "H", "H"]}}`
	S, err := ParseOptimade(in)
	require.NoError(Te, err)
	assert.Nil(Te, S.Lattice)
	require.Equal(Te, 3, S.Len())
	assert.Nil(Te, S.Sites[0].ABC)
	assertVec(Te, lattice.Vec3{0, 0.7572, -0.4692}, S.Sites[1].XYZ, 0)
}

func TestParseOptimadeSpecies(Te *testing.T) {
	in := `{"id": 12, "type": "structures", "attributes": {
	  "lattice_vectors": [[4, 0, 0], [0, 4, 0], [0, 0, 4]],
	  "cartesian_site_positions": [[0, 0, 0], [2, 2, 2]],
	  "species_at_sites": ["NaK", "Cl1"],
	  "species": [{"name": "NaK", "chemical_symbols": ["Na", "K", "vacancy"], "concentration": [0.5, 0.4, 0.1]}]}}`
	S, err := ParseOptimade(in)
	require.NoError(Te, err)
	require.Len(Te, S.Sites[0].Species, 2)
	assert.Equal(Te, Species{Element: "Na", Occu: 0.5}, S.Sites[0].Species[0])
	assert.Equal(Te, Species{Element: "K", Occu: 0.4}, S.Sites[0].Species[1])
	assert.Equal(Te, "NaK", S.Sites[0].Label)
	assert.Equal(Te, "Cl", S.Sites[1].Element())
	assert.Equal(Te, 12.0, S.Properties["id"])
}

func TestParseOptimadeErrors(Te *testing.T) {
	cases := map[string]string{
		"not optimade": `{"sites": []}`,
		"length mismatch": `{"id": "x", "type": "structures", "attributes": {
			"cartesian_site_positions": [[0,0,0]], "species_at_sites": ["H", "H"]}}`,
		"missing positions": `{"id": "x", "type": "structures", "attributes": {"species_at_sites": ["H"]}}`,
		"all malformed": `{"id": "x", "type": "structures", "attributes": {
			"cartesian_site_positions": [[0,0], "x"], "species_at_sites": ["H", "H"]}}`,
	}
	for name, in := range cases {
		S, err := ParseOptimade(in)
		assert.Error(Te, err, name)
		assert.Nil(Te, S, name)
	}
}

func TestParseOptimadeSingularLattice(Te *testing.T) {
	in := `{"id": "flat", "type": "structures", "attributes": {
	  "lattice_vectors": [[1, 0, 0], [2, 0, 0], [0, 0, 1]],
	  "cartesian_site_positions": [[0.5, 0.5, 0.5]],
	  "species_at_sites": ["Ar"]}}`
	S, err := ParseOptimade(in)
	require.NoError(Te, err)
	require.NotNil(Te, S.Sites[0].ABC)
	assert.True(Te, S.Sites[0].ABC.IsFinite())
}
