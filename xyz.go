/*
 * xyz.go, part of gocrystal.
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
	"strconv"
	"strings"

	"github.com/rmera/gocrystal/lattice"
)

const xyzFormat = "xyz"

var (
	xyzLatticeRe    = regexp.MustCompile(`(?i)\blattice\s*=\s*"([^"]*)"`)
	xyzPropertiesRe = regexp.MustCompile(`(?i)\bproperties\s*=\s*"?([^"\s]+)"?`)
	xyzPBCRe        = regexp.MustCompile(`(?i)\bpbc\s*=\s*"([^"]*)"`)
)

// xyzColumns holds the column of the species and the first column of the positions.
type xyzColumns struct {
	species, pos int
}

// xyzFrame is one parsed frame of an XYZ file.
type xyzFrame struct {
	comment string
	lattice *lattice.Matrix3
	pbc     [3]bool
	sites   []Site
}

// ParseXYZ reads an XYZ or extended XYZ file. For multi-frame files the last
// complete frame is returned. If the comment line of that frame carries a
// Lattice="..." entry, the structure is periodic and fractional coordinates
// are derived (and wrapped) from the Cartesian ones.
func ParseXYZ(content string) (*Structure, error) {
	const funcname = "ParseXYZ"
	lines := splitLines(content)
	var last *xyzFrame
	cur := 0
	for {
		for cur < len(lines) && strings.TrimSpace(lines[cur]) == "" {
			cur++
		}
		if cur >= len(lines) {
			break
		}
		frame, next, err := readXYZFrame(lines, cur)
		if err != nil {
			if last == nil {
				return nil, errDecorate(err, funcname)
			}
			//a broken trailing frame: keep what we have.
			logger().Warn().Str("format", xyzFormat).Int("line", cur+1).Err(err).Msg("discarding incomplete trailing frame")
			break
		}
		last = frame
		cur = next
	}
	if last == nil {
		return nil, newError(xyzFormat, 0, funcname, ErrNoSites)
	}
	S := &Structure{Sites: last.sites}
	S.setProperty("comment", last.comment)
	if last.lattice == nil {
		return S, nil
	}
	L := NewLattice(*last.lattice)
	L.PBC = last.pbc
	S.Lattice = L
	singular := L.Singular()
	if singular {
		logger().Warn().Str("format", xyzFormat).Msg("singular lattice, fractional coordinates are not meaningful")
	}
	for i := range S.Sites {
		abc := lattice.Wrap(L.CartToFrac(S.Sites[i].XYZ))
		S.Sites[i].ABC = vecPtr(abc)
	}
	if !singular {
		S.consistent()
	}
	return S, nil
}

// readXYZFrame reads the frame starting at line start and returns it along
// with the index of the first line after it.
func readXYZFrame(lines []string, start int) (*xyzFrame, int, error) {
	const funcname = "readXYZFrame"
	fields := strings.Fields(lines[start])
	if len(fields) == 0 {
		return nil, start, newError(xyzFormat, start+1, funcname, "missing atom count")
	}
	natoms, err := strconv.Atoi(fields[0])
	if err != nil || natoms < 0 {
		return nil, start, newError(xyzFormat, start+1, funcname, "invalid atom count %q", fields[0])
	}
	if natoms == 0 {
		return nil, start, newError(xyzFormat, start+1, funcname, ErrNoSites)
	}
	if start+1 >= len(lines) {
		return nil, start, newError(xyzFormat, start+1, funcname, "frame declares %d atoms but the file ends", natoms)
	}
	frame := &xyzFrame{comment: strings.TrimSpace(lines[start+1]), pbc: [3]bool{true, true, true}}
	cols := xyzColumns{species: 0, pos: 1}
	if m := xyzLatticeRe.FindStringSubmatch(frame.comment); m != nil {
		v := splitNumbers(m[1])
		if len(v) != 9 {
			logger().Warn().Str("format", xyzFormat).Int("line", start+2).Int("values", len(v)).Msg("Lattice entry does not have 9 numbers, ignoring it")
		} else {
			var M lattice.Matrix3
			for i := 0; i < 3; i++ {
				copy(M[i][:], v[3*i:3*i+3])
			}
			frame.lattice = &M
		}
	}
	if m := xyzPBCRe.FindStringSubmatch(frame.comment); m != nil {
		if f := strings.Fields(m[1]); len(f) == 3 {
			for i := range f {
				frame.pbc[i] = strings.EqualFold(f[i], "T") || strings.EqualFold(f[i], "true")
			}
		}
	}
	if m := xyzPropertiesRe.FindStringSubmatch(frame.comment); m != nil {
		cols = xyzPropertyColumns(m[1])
	}
	first := start + 2
	if natoms > len(lines)-first {
		return nil, start, newError(xyzFormat, len(lines), funcname, "frame declares %d atoms, only %d lines left", natoms, len(lines)-first)
	}
	frame.sites = make([]Site, 0, natoms)
	for i := 0; i < natoms; i++ {
		lineno := first + i
		fields := strings.Fields(lines[lineno])
		if len(fields) <= cols.species || len(fields) < cols.pos+3 {
			return nil, start, newError(xyzFormat, lineno+1, funcname, "expected an element and 3 coordinates, got %q", strings.TrimSpace(lines[lineno]))
		}
		var xyz lattice.Vec3
		for k := 0; k < 3; k++ {
			xyz[k], err = parseFloat(fields[cols.pos+k])
			if err != nil {
				return nil, start, newError(xyzFormat, lineno+1, funcname, "could not parse coordinate %q", fields[cols.pos+k])
			}
		}
		raw := fields[cols.species]
		el := xyzElement(raw, lineno+1)
		frame.sites = append(frame.sites, NewSite(el, raw, xyz, nil))
	}
	return frame, first + natoms, nil
}

// xyzElement returns the element for the species column of an XYZ line,
// which may hold a symbol, a decorated symbol or an atomic number.
func xyzElement(raw string, lineno int) string {
	if z, err := strconv.Atoi(raw); err == nil {
		if el, ok := ElementFromNumber(z); ok {
			return el
		}
	} else if IsElement(capitalize(raw)) {
		return capitalize(raw)
	} else if el, _, ok := ParseSpeciesSymbol(raw); ok {
		return el
	}
	logger().Warn().Str("format", xyzFormat).Int("line", lineno).Str("symbol", raw).Msg("unknown element symbol, using default")
	return defaultElement
}

// xyzPropertyColumns finds the species and position columns from an extended
// XYZ Properties string such as "species:S:1:pos:R:3:forces:R:3".
func xyzPropertyColumns(props string) xyzColumns {
	cols := xyzColumns{species: 0, pos: 1}
	parts := strings.Split(props, ":")
	col := 0
	foundSpecies, foundPos := false, false
	for i := 0; i+2 < len(parts); i += 3 {
		n, err := strconv.Atoi(parts[i+2])
		if err != nil || n < 1 {
			return xyzColumns{species: 0, pos: 1}
		}
		switch strings.ToLower(parts[i]) {
		case "species", "element", "symbols":
			if !foundSpecies {
				cols.species = col
				foundSpecies = true
			}
		case "pos", "positions":
			if !foundPos && n == 3 {
				cols.pos = col
				foundPos = true
			}
		}
		col += n
	}
	return cols
}
