/*
 * elements.go, part of gocrystal.
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
	"unicode"
)

// defaultElement replaces symbols that can't be recognized as an element.
const defaultElement = "H"

// Element symbols, ordered by atomic number (elements[0] is hydrogen).
var elements = []string{
	"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar", "K", "Ca",
	"Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr", "Rb", "Sr", "Y", "Zr",
	"Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn",
	"Sb", "Te", "I", "Xe", "Cs", "Ba", "La", "Ce", "Pr", "Nd",
	"Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb",
	"Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg",
	"Tl", "Pb", "Bi", "Po", "At", "Rn", "Fr", "Ra", "Ac", "Th",
	"Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm",
	"Md", "No", "Lr", "Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds",
	"Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

var elementNumber = func() map[string]int {
	m := make(map[string]int, len(elements))
	for i, s := range elements {
		m[s] = i + 1
	}
	return m
}()

// symbolMass holds standard atomic masses (amu) for the elements most
// often found in inorganic crystals. Elements missing here have no mass.
var symbolMass = map[string]float64{
	"H":  1.008,
	"Li": 6.94,
	"Be": 9.012,
	"B":  10.81,
	"C":  12.011,
	"N":  14.007,
	"O":  15.999,
	"F":  18.998,
	"Na": 22.990,
	"Mg": 24.305,
	"Al": 26.982,
	"Si": 28.085,
	"P":  30.974,
	"S":  32.06,
	"Cl": 35.45,
	"K":  39.098,
	"Ca": 40.078,
	"Ti": 47.867,
	"V":  50.942,
	"Cr": 51.996,
	"Mn": 54.938,
	"Fe": 55.845,
	"Co": 58.933,
	"Ni": 58.693,
	"Cu": 63.546,
	"Zn": 65.38,
	"Ga": 69.723,
	"Ge": 72.630,
	"As": 74.922,
	"Se": 78.971,
	"Br": 79.904,
	"Sr": 87.62,
	"Zr": 91.224,
	"Mo": 95.95,
	"Ru": 101.07,
	"Ag": 107.87,
	"Sn": 118.71,
	"I":  126.90,
	"Ba": 137.33,
	"La": 138.91,
	"W":  183.84,
	"Pt": 195.08,
	"Au": 196.97,
	"Pb": 207.2,
}

// IsElement returns true if sym is a chemical element symbol (case-sensitive).
func IsElement(sym string) bool {
	return AtomicNumber(sym) > 0
}

// ElementFromNumber returns the symbol of the element with atomic number z.
func ElementFromNumber(z int) (string, bool) {
	if z < 1 || z > len(elements) {
		return "", false
	}
	return elements[z-1], true
}

// AtomicNumber returns the atomic number of sym, or 0 if sym is not an element.
func AtomicNumber(sym string) int {
	return elementNumber[sym]
}

// Mass returns the standard atomic mass of sym, if known.
func Mass(sym string) (float64, bool) {
	m, ok := symbolMass[sym]
	return m, ok
}

// capitalize returns s with the first letter upper case and the rest lower case.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// leadingLetters returns the leading ASCII letters of s.
func leadingLetters(s string) string {
	i := 0
	for i < len(s) && ((s[i] >= 'a' && s[i] <= 'z') || (s[i] >= 'A' && s[i] <= 'Z')) {
		i++
	}
	return s[:i]
}

// elementPrefix returns the element that the letters l start with, trying
// two-letter symbols before one-letter ones.
func elementPrefix(l string) (string, bool) {
	if len(l) >= 2 {
		if s := capitalize(l[:2]); IsElement(s) {
			return s, true
		}
	}
	if len(l) >= 1 {
		if s := capitalize(l[:1]); IsElement(s) {
			return s, true
		}
	}
	return "", false
}

// CleanElementSymbol extracts the element from symbols decorated the way
// VASP potentials are named, such as "H_pv", "Fe_sv_GW" or "O/12345abc".
// It returns "" if no element can be found.
func CleanElementSymbol(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, "_/.:"); i >= 0 {
		raw = raw[:i]
	}
	l := leadingLetters(raw)
	if s := capitalize(l); IsElement(s) {
		return s
	}
	s, _ := elementPrefix(l)
	return s
}

var speciesRe = regexp.MustCompile(`^([A-Za-z]{1,2})(\d*)([+-]?)(\d*)$`)

// ParseSpeciesSymbol parses symbols with an optional oxidation state,
// like "Sn2+", "O2-", "Na+" or "Fe+3". It returns the element, the oxidation
// state (0 if absent) and whether an element was found.
func ParseSpeciesSymbol(raw string) (string, int, bool) {
	raw = strings.TrimSpace(raw)
	m := speciesRe.FindStringSubmatch(raw)
	if m == nil {
		el := CleanElementSymbol(raw)
		return el, 0, el != ""
	}
	el := capitalize(m[1])
	if !IsElement(el) {
		var ok bool
		if el, ok = elementPrefix(m[1]); !ok {
			return "", 0, false
		}
	}
	ox := 0
	if m[3] != "" {
		digits := m[2]
		if digits == "" {
			digits = m[4]
		}
		ox = 1
		if digits != "" {
			ox, _ = strconv.Atoi(digits)
		}
		if m[3] == "-" {
			ox = -ox
		}
	}
	return el, ox, true
}

// ElementFromLabel guesses the element of a site from a decorated label
// such as "Fe1", "Ru(1)", "OW3" or "site1_Fe_center". Alphabetic chunks
// that are exactly an element symbol win; otherwise the leading letters
// of the first chunk are used.
func ElementFromLabel(label string) (string, bool) {
	chunks := strings.FieldsFunc(label, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'))
	})
	if len(chunks) == 0 {
		return "", false
	}
	for _, c := range chunks {
		if len(c) <= 2 {
			if s := capitalize(c); IsElement(s) && (len(chunks) == 1 || c[0] >= 'A' && c[0] <= 'Z') {
				return s, true
			}
		}
	}
	return elementPrefix(chunks[0])
}
