/*
 * structure.go, part of gocrystal.
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
	"maps"
	"sort"
	"strings"

	"github.com/rmera/gocrystal/lattice"
	"github.com/samber/lo"
)

// Species is one chemical species occupying a site, with its occupancy.
type Species struct {
	Element        string  `json:"element"`
	Occu           float64 `json:"occu"`
	OxidationState int     `json:"oxidation_state"`
}

// Site is a (possibly partially or mixed-occupied) position in a structure.
// ABC is nil for structures without a lattice; for those, XYZ is authoritative.
type Site struct {
	Species    []Species      `json:"species"`
	ABC        *lattice.Vec3  `json:"abc,omitempty"`
	XYZ        lattice.Vec3   `json:"xyz"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Lattice is a periodic cell. Matrix holds the basis vectors as rows,
// the rest of the fields are derived from it by NewLattice.
type Lattice struct {
	Matrix lattice.Matrix3 `json:"matrix"`
	A      float64         `json:"a"`
	B      float64         `json:"b"`
	C      float64         `json:"c"`
	Alpha  float64         `json:"alpha"`
	Beta   float64         `json:"beta"`
	Gamma  float64         `json:"gamma"`
	Volume float64         `json:"volume"`
	PBC    [3]bool         `json:"pbc"`
}

// Structure is the canonical representation every reader produces. It is
// never modified after construction: transformations return new Structures,
// which may share unchanged Site data with their source.
type Structure struct {
	Sites      []Site         `json:"sites"`
	Lattice    *Lattice       `json:"lattice,omitempty"`
	Charge     float64        `json:"charge"`
	Properties map[string]any `json:"properties,omitempty"`
}

// NewLattice returns a fully periodic lattice with the given matrix and
// the cell parameters derived from it.
func NewLattice(M lattice.Matrix3) *Lattice {
	p := lattice.ToCell(M)
	return &Lattice{
		Matrix: M,
		A:      p.A,
		B:      p.B,
		C:      p.C,
		Alpha:  p.Alpha,
		Beta:   p.Beta,
		Gamma:  p.Gamma,
		Volume: lattice.Volume(M),
		PBC:    [3]bool{true, true, true},
	}
}

// FracToCart converts fractional coordinates in L to Cartesian coordinates.
func (L *Lattice) FracToCart(abc lattice.Vec3) lattice.Vec3 {
	return lattice.FracToCart(L.Matrix, abc)
}

// CartToFrac converts Cartesian coordinates to fractional coordinates in L.
func (L *Lattice) CartToFrac(xyz lattice.Vec3) lattice.Vec3 {
	return lattice.CartToFrac(L.Matrix, xyz)
}

// Singular returns true if the lattice vectors are (close to) linearly dependent.
func (L *Lattice) Singular() bool {
	return lattice.IsSingular(L.Matrix)
}

// NewSite returns a fully occupied site of the given element.
func NewSite(element, label string, xyz lattice.Vec3, abc *lattice.Vec3) Site {
	if label == "" {
		label = element
	}
	return Site{
		Species: []Species{{Element: element, Occu: 1}},
		ABC:     abc,
		XYZ:     xyz,
		Label:   label,
	}
}

// Element returns the symbol of the first (main) species of the site.
func (s *Site) Element() string {
	if len(s.Species) == 0 {
		return ""
	}
	return s.Species[0].Element
}

// Frac returns the fractional coordinates of the site, or the zero vector
// if it has none.
func (s *Site) Frac() lattice.Vec3 {
	if s.ABC == nil {
		return lattice.Vec3{}
	}
	return *s.ABC
}

// withProperties returns a copy of s whose Properties map is a fresh copy of the
// original plus the given key/value pairs. The Species slice is shared.
func (s Site) withProperties(kv ...any) Site {
	props := make(map[string]any, len(s.Properties)+len(kv)/2)
	maps.Copy(props, s.Properties)
	for i := 0; i+1 < len(kv); i += 2 {
		props[kv[i].(string)] = kv[i+1]
	}
	s.Properties = props
	return s
}

// Len returns the number of sites.
func (S *Structure) Len() int {
	return len(S.Sites)
}

// Periodic returns true if the structure has a lattice.
func (S *Structure) Periodic() bool {
	return S.Lattice != nil
}

// Copy returns a shallow copy of S with its own Sites slice. Site contents
// are shared, which is safe because they are never modified.
func (S *Structure) Copy() *Structure {
	r := *S
	r.Sites = make([]Site, len(S.Sites))
	copy(r.Sites, S.Sites)
	if S.Lattice != nil {
		l := *S.Lattice
		r.Lattice = &l
	}
	r.Properties = maps.Clone(S.Properties)
	return &r
}

// ElementCounts returns the occupancy-weighted number of atoms of each element.
func (S *Structure) ElementCounts() map[string]float64 {
	counts := make(map[string]float64)
	for _, s := range S.Sites {
		for _, sp := range s.Species {
			counts[sp.Element] += sp.Occu
		}
	}
	return counts
}

// Formula returns the composition as a string of element symbols in alphabetical
// order followed by their (occupancy-weighted) counts, e.g. "O2 Si1".
func (S *Structure) Formula() string {
	counts := S.ElementCounts()
	keys := lo.Keys(counts)
	sort.Strings(keys)
	parts := lo.Map(keys, func(k string, _ int) string {
		return k + formatCount(counts[k])
	})
	return strings.Join(parts, " ")
}

// amuPerA3ToGPerCm3 converts a density in amu/Å³ to g/cm³.
const amuPerA3ToGPerCm3 = 1.66053906660

// Mass returns the occupancy-weighted mass of the sites of S, in amu. The
// second return value is false if some element has no known mass, in which
// case that element is not counted.
func (S *Structure) Mass() (float64, bool) {
	total, complete := 0.0, true
	for el, n := range S.ElementCounts() {
		m, ok := Mass(el)
		if !ok {
			complete = false
			continue
		}
		total += n * m
	}
	return total, complete
}

// Density returns the density of S in g/cm³. It returns false for structures
// without a lattice, with a zero-volume lattice, or with elements of unknown mass.
func (S *Structure) Density() (float64, bool) {
	if S.Lattice == nil || S.Lattice.Volume <= 0 {
		return 0, false
	}
	m, ok := S.Mass()
	if !ok {
		return 0, false
	}
	return m / S.Lattice.Volume * amuPerA3ToGPerCm3, true
}

func formatCount(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", f), "0"), ".")
}

// consistent sets XYZ from ABC for every site of a structure with a lattice.
// It is used by the readers right before returning, so the xyz = Mᵀ·abc invariant
// holds on everything they produce.
func (S *Structure) consistent() {
	if S.Lattice == nil {
		return
	}
	for i := range S.Sites {
		if S.Sites[i].ABC != nil {
			S.Sites[i].XYZ = S.Lattice.FracToCart(*S.Sites[i].ABC)
		}
	}
}

// setProperty sets a structure-level property, allocating the map if needed.
func (S *Structure) setProperty(key string, val any) {
	if S.Properties == nil {
		S.Properties = make(map[string]any)
	}
	S.Properties[key] = val
}

func vecPtr(v lattice.Vec3) *lattice.Vec3 {
	return &v
}
