/*
 * optimade.go, part of gocrystal.
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
	"encoding/json"
	"math"

	"github.com/rmera/gocrystal/lattice"
	"github.com/samber/lo"
)

const optimadeFormat = "optimade"

// optimadeSpecies is an entry of the "species" attribute of an OPTIMADE structure.
type optimadeSpecies struct {
	Name            string    `json:"name"`
	ChemicalSymbols []string  `json:"chemical_symbols"`
	Concentration   []float64 `json:"concentration"`
}

type optimadeAttributes struct {
	LatticeVectors         [][]*float64      `json:"lattice_vectors"`
	CartesianSitePositions []json.RawMessage `json:"cartesian_site_positions"`
	SpeciesAtSites         []string          `json:"species_at_sites"`
	Species                []optimadeSpecies `json:"species"`
	DimensionTypes         []int             `json:"dimension_types"`
	NPeriodicDimensions    *int              `json:"nperiodic_dimensions"`
	ChemicalFormula        string            `json:"chemical_formula_reduced"`
}

type optimadeEntry struct {
	ID         any                        `json:"id"`
	Type       string                     `json:"type"`
	Attributes map[string]json.RawMessage `json:"attributes"`
}

// valid returns true if e looks like an OPTIMADE structures resource.
func (e *optimadeEntry) valid() bool {
	if e == nil || e.Type != "structures" || len(e.Attributes) == 0 {
		return false
	}
	switch id := e.ID.(type) {
	case string:
		return id != ""
	case float64:
		return true
	}
	return false
}

// optimadeEntryFrom returns the structure entry in content, which may be a bare
// entry or a {"data": entry} or {"data": [entries]} envelope. In the latter
// case the first entry is returned. It returns nil if there is no valid entry.
func optimadeEntryFrom(content string) *optimadeEntry {
	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &root); err != nil {
		return nil
	}
	if data, ok := root["data"]; ok {
		var list []optimadeEntry
		if err := json.Unmarshal(data, &list); err == nil {
			if len(list) == 0 {
				return nil
			}
			return &list[0]
		}
		e := new(optimadeEntry)
		if err := json.Unmarshal(data, e); err != nil {
			return nil
		}
		return e
	}
	e := new(optimadeEntry)
	if err := json.Unmarshal([]byte(content), e); err != nil {
		return nil
	}
	return e
}

// IsOptimadeJSON returns true if content is an OPTIMADE structure (or an envelope with at
// least one of them): it needs an id, type "structures" and non-empty attributes.
func IsOptimadeJSON(content string) bool {
	return optimadeEntryFrom(content).valid()
}

// optimadePosition decodes a Cartesian position, returning false if it is not
// a list of 3 finite numbers.
func optimadePosition(raw json.RawMessage) (lattice.Vec3, bool) {
	var p []*float64
	if err := json.Unmarshal(raw, &p); err != nil || len(p) != 3 {
		return lattice.Vec3{}, false
	}
	var v lattice.Vec3
	for i, f := range p {
		if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
			return lattice.Vec3{}, false
		}
		v[i] = *f
	}
	return v, true
}

// optimadeLattice returns the lattice matrix, or nil if the vectors are absent
// or incomplete (OPTIMADE uses null for non-periodic directions).
func optimadeLattice(vecs [][]*float64) *lattice.Matrix3 {
	if len(vecs) != 3 {
		return nil
	}
	var M lattice.Matrix3
	for i, row := range vecs {
		if len(row) != 3 {
			return nil
		}
		for j, f := range row {
			if f == nil {
				return nil
			}
			M[i][j] = *f
		}
	}
	if !M.IsFinite() {
		return nil
	}
	return &M
}

// optimadeSiteSpecies returns the species for a site labeled name.
func optimadeSiteSpecies(name string, defs map[string]optimadeSpecies) []Species {
	if d, ok := defs[name]; ok && len(d.ChemicalSymbols) > 0 {
		var sp []Species
		for i, sym := range d.ChemicalSymbols {
			if !IsElement(sym) {
				//"X" and "vacancy" are allowed by OPTIMADE but are not atoms.
				continue
			}
			occu := 1.0
			if i < len(d.Concentration) && d.Concentration[i] > 0 {
				occu = d.Concentration[i]
			}
			sp = append(sp, Species{Element: sym, Occu: occu})
		}
		if len(sp) > 0 {
			return sp
		}
	}
	el, ok := ElementFromLabel(name)
	if !ok {
		logger().Warn().Str("format", optimadeFormat).Str("species", name).Msg("unknown species, using default element")
		el = defaultElement
	}
	return []Species{{Element: el, Occu: 1}}
}

// ParseOptimade reads an OPTIMADE structure, bare or inside a "data" envelope.
// Sites with malformed positions are dropped; if none is left the parse fails.
func ParseOptimade(content string) (*Structure, error) {
	const funcname = "ParseOptimade"
	e := optimadeEntryFrom(content)
	if !e.valid() {
		return nil, newError(optimadeFormat, 0, funcname, "not an OPTIMADE structure")
	}
	raw, err := json.Marshal(e.Attributes)
	if err != nil {
		return nil, newError(optimadeFormat, 0, funcname, "re-encoding attributes: %v", err)
	}
	var attr optimadeAttributes
	if err := json.Unmarshal(raw, &attr); err != nil {
		return nil, newError(optimadeFormat, 0, funcname, "invalid attributes: %v", err)
	}
	if attr.CartesianSitePositions == nil || attr.SpeciesAtSites == nil {
		return nil, newError(optimadeFormat, 0, funcname, "missing cartesian_site_positions or species_at_sites")
	}
	if len(attr.CartesianSitePositions) != len(attr.SpeciesAtSites) {
		return nil, newError(optimadeFormat, 0, funcname, "%d positions but %d species_at_sites", len(attr.CartesianSitePositions), len(attr.SpeciesAtSites))
	}
	defs := lo.Associate(attr.Species, func(s optimadeSpecies) (string, optimadeSpecies) {
		return s.Name, s
	})
	idx := lo.Filter(lo.Range(len(attr.CartesianSitePositions)), func(i int, _ int) bool {
		_, ok := optimadePosition(attr.CartesianSitePositions[i])
		if !ok {
			logger().Warn().Str("format", optimadeFormat).Int("site", i).Msg("dropping site with malformed position")
		}
		return ok
	})
	if len(idx) == 0 {
		return nil, newError(optimadeFormat, 0, funcname, ErrNoSites)
	}
	S := &Structure{Sites: make([]Site, 0, len(idx))}
	for _, i := range idx {
		xyz, _ := optimadePosition(attr.CartesianSitePositions[i])
		name := attr.SpeciesAtSites[i]
		S.Sites = append(S.Sites, Site{
			Species: optimadeSiteSpecies(name, defs),
			XYZ:     xyz,
			Label:   name,
		})
	}
	if M := optimadeLattice(attr.LatticeVectors); M != nil {
		L := NewLattice(*M)
		if len(attr.DimensionTypes) == 3 {
			for i, d := range attr.DimensionTypes {
				L.PBC[i] = d != 0
			}
		} else if attr.NPeriodicDimensions != nil && *attr.NPeriodicDimensions == 0 {
			L.PBC = [3]bool{}
		}
		S.Lattice = L
		for i := range S.Sites {
			S.Sites[i].ABC = vecPtr(lattice.Wrap(L.CartToFrac(S.Sites[i].XYZ)))
		}
		if L.Singular() {
			logger().Warn().Str("format", optimadeFormat).Msg("singular lattice, fractional coordinates are not meaningful")
		} else {
			S.consistent()
		}
	}
	switch id := e.ID.(type) {
	case string:
		S.setProperty("id", id)
	case float64:
		S.setProperty("id", id)
	}
	if attr.NPeriodicDimensions != nil {
		S.setProperty("nperiodic_dimensions", *attr.NPeriodicDimensions)
	}
	if attr.ChemicalFormula != "" {
		S.setProperty("formula", attr.ChemicalFormula)
	}
	return S, nil
}
