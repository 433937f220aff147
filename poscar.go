/*
 * poscar.go, part of gocrystal.
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
	"strconv"
	"strings"

	"github.com/rmera/gocrystal/lattice"
)

const poscarFormat = "poscar"

// splitLines splits text in lines, accepting any of the usual line endings.
func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(content, "\n")
}

// ParsePOSCAR reads a VASP POSCAR/CONTCAR file (VASP 4 and 5 layouts).
// All fractional coordinates are wrapped into [0,1) and the Cartesian ones
// are derived from the wrapped fractional coordinates.
func ParsePOSCAR(content string) (*Structure, error) {
	const funcname = "ParsePOSCAR"
	lines := splitLines(content)
	//trailing blank lines are harmless, everything else counts.
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) < 7 {
		return nil, newError(poscarFormat, 0, funcname, "file too short: %d lines", len(lines))
	}
	comment := strings.TrimSpace(lines[0])

	scale := leadingNumbers(lines[1])
	if len(scale) != 1 && len(scale) != 3 {
		return nil, newError(poscarFormat, 2, funcname, "expected 1 or 3 scale factors, got %d", len(scale))
	}
	var raw lattice.Matrix3
	for i := 0; i < 3; i++ {
		v := leadingNumbers(lines[2+i])
		if len(v) != 3 {
			return nil, newError(poscarFormat, 3+i, funcname, "lattice vector %d must have exactly 3 components, got %d: %q", i+1, len(v), strings.TrimSpace(lines[2+i]))
		}
		copy(raw[i][:], v)
	}
	M, factors, err := scaleLattice(raw, scale)
	if err != nil {
		return nil, errDecorate(err, funcname)
	}

	//Line 6 is either the element symbols (VASP 5) or the counts (VASP 4).
	cur := 5
	var symbols []string
	if fields := strings.Fields(lines[cur]); len(fields) > 0 && !isNumber(fields[0]) {
		symbols = fields
		cur++
	}
	if cur >= len(lines) {
		return nil, newError(poscarFormat, cur+1, funcname, "missing atom counts line")
	}
	var counts []int
	for _, f := range strings.Fields(lines[cur]) {
		n, err := strconv.Atoi(f)
		if err != nil {
			break
		}
		if n < 0 {
			return nil, newError(poscarFormat, cur+1, funcname, "negative atom count %d", n)
		}
		counts = append(counts, n)
	}
	if len(counts) == 0 {
		return nil, newError(poscarFormat, cur+1, funcname, "could not read atom counts from %q", strings.TrimSpace(lines[cur]))
	}
	cur++
	symbols, err = poscarSymbols(symbols, counts, comment)
	if err != nil {
		return nil, errDecorate(err, funcname)
	}

	if cur >= len(lines) {
		return nil, newError(poscarFormat, cur+1, funcname, "missing coordinate mode line")
	}
	selective := false
	if t := strings.TrimSpace(lines[cur]); t != "" && (t[0] == 's' || t[0] == 'S') {
		selective = true
		cur++
	}
	if cur >= len(lines) {
		return nil, newError(poscarFormat, cur+1, funcname, "missing coordinate mode line")
	}
	mode := strings.TrimSpace(lines[cur])
	cartesian := mode != "" && strings.ContainsRune("cCkK", rune(mode[0]))
	cur++

	//counts are checked against the lines left while summing, so the total can't overflow.
	natoms, left := 0, len(lines)-cur
	for _, n := range counts {
		if n > left-natoms {
			return nil, newError(poscarFormat, len(lines), funcname, "atom counts need more coordinate lines than the %d left", left)
		}
		natoms += n
	}
	if natoms == 0 {
		return nil, newError(poscarFormat, 0, funcname, ErrNoSites)
	}
	L := NewLattice(M)
	S := &Structure{Lattice: L, Sites: make([]Site, 0, natoms)}
	S.setProperty("comment", comment)
	atom := 0
	for t, n := range counts {
		for k := 0; k < n; k++ {
			lineno := cur + atom
			line := lines[lineno]
			v := leadingNumbers(line)
			if len(v) < 3 {
				return nil, newError(poscarFormat, lineno+1, funcname, "could not read 3 coordinates from %q", strings.TrimSpace(line))
			}
			c := lattice.Vec3{v[0], v[1], v[2]}
			var abc lattice.Vec3
			if cartesian {
				for i := range c {
					c[i] *= factors[i]
				}
				abc = L.CartToFrac(c)
			} else {
				abc = c
			}
			abc = lattice.Wrap(abc)
			site := NewSite(symbols[t], symbols[t], L.FracToCart(abc), vecPtr(abc))
			if selective {
				if flags, ok := selectiveFlags(line); ok {
					site = site.withProperties("selective_dynamics", flags)
				}
			}
			S.Sites = append(S.Sites, site)
			atom++
		}
	}
	return S, nil
}

// scaleLattice applies the POSCAR scale line to the raw lattice. A single negative
// factor is the target cell volume. It returns the scaled lattice and the
// per-axis factors to apply to Cartesian coordinates.
func scaleLattice(raw lattice.Matrix3, scale []float64) (lattice.Matrix3, [3]float64, error) {
	var factors [3]float64
	if len(scale) == 1 {
		s := scale[0]
		if s < 0 {
			vol := lattice.Volume(raw)
			if vol == 0 {
				return raw, factors, newError(poscarFormat, 2, "scaleLattice", "negative scale factor (target volume %g) with a zero-volume lattice", -s)
			}
			s = math.Cbrt(-s / vol)
		}
		if s == 0 {
			return raw, factors, newError(poscarFormat, 2, "scaleLattice", "scale factor is zero")
		}
		factors = [3]float64{s, s, s}
	} else {
		for i, s := range scale {
			if s <= 0 {
				return raw, factors, newError(poscarFormat, 2, "scaleLattice", "per-axis scale factors must be positive, got %g", s)
			}
			factors[i] = s
		}
	}
	var M lattice.Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			//with 3 factors, VASP scales the Cartesian components.
			M[i][j] = raw[i][j] * factors[j]
		}
	}
	return M, factors, nil
}

// poscarSymbols returns one clean element symbol per species type. Without
// an element line (VASP 4), symbols are taken from the comment line if they
// fit, otherwise placeholders are used.
func poscarSymbols(symbols []string, counts []int, comment string) ([]string, error) {
	ret := make([]string, len(counts))
	if symbols != nil {
		if len(symbols) < len(counts) {
			return nil, newError(poscarFormat, 6, "poscarSymbols", "%d element symbols for %d atom counts", len(symbols), len(counts))
		}
		for i := range counts {
			ret[i] = CleanElementSymbol(symbols[i])
			if ret[i] == "" {
				logger().Warn().Str("format", poscarFormat).Str("symbol", symbols[i]).Msg("unknown element symbol, using default")
				ret[i] = defaultElement
			}
		}
		return ret, nil
	}
	fromComment := strings.Fields(comment)
	ok := len(fromComment) >= len(counts)
	for i := 0; ok && i < len(counts); i++ {
		ret[i] = CleanElementSymbol(fromComment[i])
		ok = ret[i] != "" && strings.EqualFold(leadingLetters(fromComment[i]), ret[i])
	}
	if ok {
		return ret, nil
	}
	logger().Warn().Str("format", poscarFormat).Int("types", len(counts)).Msg("no element symbols in file, using placeholders")
	for i := range ret {
		ret[i], _ = ElementFromNumber(i%len(elements) + 1)
	}
	return ret, nil
}

// selectiveFlags reads the T/F selective dynamics flags that follow the coordinates.
func selectiveFlags(line string) ([3]bool, bool) {
	var flags [3]bool
	n := 0
	for _, f := range strings.Fields(line) {
		switch strings.ToUpper(f) {
		case "T", ".TRUE.", "TRUE":
			flags[n] = true
		case "F", ".FALSE.", "FALSE":
		default:
			continue
		}
		n++
		if n == 3 {
			return flags, true
		}
	}
	return flags, false
}
