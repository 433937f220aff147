/*
 * numbers.go, part of gocrystal.
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
	"regexp"
	"strconv"
	"strings"
)

var (
	//Fortran (1.0D-3) and Mathematica (1.0*^-3) exponents.
	fortranExpRe = regexp.MustCompile(`([0-9.])[dD]([+-]?[0-9])`)
	//A number, possibly glued to the previous one, as in "0.1-0.2-0.3".
	numberRe = regexp.MustCompile(`[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?`)
	//CIF standard uncertainty, e.g. 4.916(2)
	uncertaintyRe = regexp.MustCompile(`\([0-9]+\)$`)
)

// normalizeNumber turns the exponent notations found in scientific files into
// the one strconv understands.
func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Replace(s, "*^", "e", 1)
	if strings.ContainsAny(s, "dD") {
		s = fortranExpRe.ReplaceAllString(s, "${1}e${2}")
	}
	return s
}

// parseFloat parses a number in any of the notations found in structure files.
// Non-finite results are reported as errors.
func parseFloat(s string) (float64, error) {
	s = normalizeNumber(s)
	s = uncertaintyRe.ReplaceAllString(s, "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrRange
	}
	return f, nil
}

// splitNumbers extracts all the numbers in line. Fields are split further when several
// numbers are glued together by their signs, which some programs write when
// the columns overflow. Non-numeric fields are ignored.
func splitNumbers(line string) []float64 {
	ret := make([]float64, 0, 3)
	for _, field := range strings.Fields(line) {
		if f, err := parseFloat(field); err == nil {
			ret = append(ret, f)
			continue
		}
		field = normalizeNumber(field)
		for _, n := range numberRe.FindAllString(field, -1) {
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				ret = append(ret, f)
			}
		}
	}
	return ret
}

// leadingNumbers returns the numbers at the beginning of the fields of line,
// stopping at the first non-numeric field.
func leadingNumbers(line string) []float64 {
	ret := make([]float64, 0, 3)
	for _, field := range strings.Fields(line) {
		f, err := parseFloat(field)
		if err != nil {
			nums := numberRe.FindAllString(normalizeNumber(field), -1)
			if len(nums) < 2 || strings.Join(nums, "") != normalizeNumber(field) {
				break
			}
			for _, n := range nums {
				f, _ := strconv.ParseFloat(n, 64)
				ret = append(ret, f)
			}
			continue
		}
		ret = append(ret, f)
	}
	return ret
}

// isNumber returns true if s parses as a number.
func isNumber(s string) bool {
	_, err := parseFloat(s)
	return err == nil
}
