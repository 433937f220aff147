/*
 * phonopy.go, part of gocrystal.
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
	"regexp"
	"strings"

	"github.com/rmera/gocrystal/lattice"
	"gopkg.in/yaml.v3"
)

const phonopyFormat = "phonopy"

// PhonopyCellType selects which cell of a phonopy YAML file is read.
type PhonopyCellType string

// The cells that can be read from a phonopy file. PhonopyAuto reads the
// primitive cell if present, and the unit cell otherwise.
const (
	PhonopyAuto      PhonopyCellType = "auto"
	PhonopyPrimitive PhonopyCellType = "primitive_cell"
	PhonopyUnit      PhonopyCellType = "unit_cell"
	PhonopySupercell PhonopyCellType = "supercell"
)

type phonopyPoint struct {
	Symbol      string    `yaml:"symbol"`
	Coordinates []float64 `yaml:"coordinates"`
	Mass        *float64  `yaml:"mass"`
}

type phonopyCell struct {
	Lattice [][]float64    `yaml:"lattice"`
	Points  []phonopyPoint `yaml:"points"`
}

type phonopyDoc struct {
	Primitive *phonopyCell `yaml:"primitive_cell"`
	Unit      *phonopyCell `yaml:"unit_cell"`
	Supercell *phonopyCell `yaml:"supercell"`
}

var yamlTopKeyRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*)\s*:`)

// topLevelBlocks returns the text of the top-level YAML blocks whose key is in keep,
// in file order. Everything else (e.g. phonon_displacements) is skipped without
// being decoded.
func topLevelBlocks(content string, keep ...string) string {
	var b strings.Builder
	in := false
	for _, line := range splitLines(content) {
		if m := yamlTopKeyRe.FindStringSubmatch(line); m != nil {
			in = false
			for _, k := range keep {
				if m[1] == k {
					in = true
					break
				}
			}
		}
		if in {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// ParsePhonopy reads a cell from a phonopy (or phono3py) YAML file. An explicitly
// requested cell that is not in the file is an error.
func ParsePhonopy(content string, cellType ...PhonopyCellType) (*Structure, error) {
	const funcname = "ParsePhonopy"
	ct := PhonopyAuto
	if len(cellType) > 0 && cellType[0] != "" {
		ct = cellType[0]
	}
	switch ct {
	case PhonopyAuto, PhonopyPrimitive, PhonopyUnit, PhonopySupercell:
	default:
		return nil, newError(phonopyFormat, 0, funcname, "unknown cell type %q", ct)
	}
	var doc phonopyDoc
	blocks := topLevelBlocks(content, string(PhonopyPrimitive), string(PhonopyUnit), string(PhonopySupercell))
	if err := yaml.Unmarshal([]byte(blocks), &doc); err != nil {
		return nil, newError(phonopyFormat, 0, funcname, "invalid YAML: %v", err)
	}
	var cell *phonopyCell
	switch ct {
	case PhonopyAuto:
		cell = doc.Primitive
		if cell == nil {
			cell = doc.Unit
		}
	case PhonopyPrimitive:
		cell = doc.Primitive
	case PhonopyUnit:
		cell = doc.Unit
	case PhonopySupercell:
		cell = doc.Supercell
	}
	if cell == nil {
		if ct == PhonopyAuto {
			return nil, newError(phonopyFormat, 0, funcname, "neither primitive_cell nor unit_cell found")
		}
		return nil, newError(phonopyFormat, 0, funcname, "%s not found", ct)
	}
	S, err := cell.structure()
	if err != nil {
		return nil, errDecorate(err, funcname)
	}
	if ct == PhonopyAuto {
		if cell == doc.Primitive {
			ct = PhonopyPrimitive
		} else {
			ct = PhonopyUnit
		}
	}
	S.setProperty("cell_type", string(ct))
	return S, nil
}

func (C *phonopyCell) structure() (*Structure, error) {
	const funcname = "phonopyCell.structure"
	if len(C.Lattice) != 3 {
		return nil, newError(phonopyFormat, 0, funcname, "lattice needs 3 vectors, got %d", len(C.Lattice))
	}
	var M lattice.Matrix3
	for i, row := range C.Lattice {
		if len(row) != 3 {
			return nil, newError(phonopyFormat, 0, funcname, "lattice vector %d has %d components", i+1, len(row))
		}
		copy(M[i][:], row)
	}
	if len(C.Points) == 0 {
		return nil, newError(phonopyFormat, 0, funcname, ErrNoSites)
	}
	S := &Structure{Lattice: NewLattice(M), Sites: make([]Site, 0, len(C.Points))}
	for i, p := range C.Points {
		if len(p.Coordinates) != 3 {
			return nil, newError(phonopyFormat, 0, funcname, "point %d has %d coordinates", i+1, len(p.Coordinates))
		}
		el := CleanElementSymbol(p.Symbol)
		if !IsElement(el) {
			logger().Warn().Str("format", phonopyFormat).Int("site", i).Str("symbol", p.Symbol).Msg("unknown element symbol, using default")
			el = defaultElement
		}
		abc := lattice.Wrap(lattice.Vec3{p.Coordinates[0], p.Coordinates[1], p.Coordinates[2]})
		s := NewSite(el, p.Symbol, lattice.Vec3{}, vecPtr(abc))
		switch m, ok := Mass(el); {
		case p.Mass != nil:
			s = s.withProperties("mass", *p.Mass)
		case ok:
			s = s.withProperties("mass", m)
		}
		S.Sites = append(S.Sites, s)
	}
	S.consistent()
	return S, nil
}
