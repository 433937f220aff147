/*
 * symop.go, part of gocrystal.
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
	"math"
	"strconv"
	"strings"

	"github.com/rmera/gocrystal/lattice"
)

// SymOp is a symmetry operation in fractional coordinates: abc' = Rot·abc + Trans.
type SymOp struct {
	Rot   lattice.Matrix3
	Trans lattice.Vec3
	//Dangling is true when the operator had stray signs without an operand.
	//Those terms contribute nothing.
	Dangling bool
}

// Identity returns true if the operation maps every point to itself or to
// a lattice translation of itself.
func (O SymOp) Identity() bool {
	if O.Rot != lattice.Identity() {
		return false
	}
	for _, t := range O.Trans {
		if math.Abs(t-math.Round(t)) > 1e-9 {
			return false
		}
	}
	return true
}

// Apply returns the image of the fractional coordinates abc under O.
func (O SymOp) Apply(abc lattice.Vec3) lattice.Vec3 {
	return lattice.Add(lattice.MulVec(O.Rot, abc), O.Trans)
}

// String returns the operation in the usual "x, y, z" notation.
func (O SymOp) String() string {
	axes := "xyz"
	comps := make([]string, 3)
	for i := 0; i < 3; i++ {
		var b strings.Builder
		for j := 0; j < 3; j++ {
			c := O.Rot[i][j]
			switch {
			case c == 0:
				continue
			case c == 1:
				if b.Len() > 0 {
					b.WriteByte('+')
				}
			case c == -1:
				b.WriteByte('-')
			default:
				if c > 0 && b.Len() > 0 {
					b.WriteByte('+')
				}
				b.WriteString(strconv.FormatFloat(c, 'g', -1, 64) + "*")
			}
			b.WriteByte(axes[j])
		}
		if t := O.Trans[i]; t != 0 {
			if t > 0 && b.Len() > 0 {
				b.WriteByte('+')
			}
			b.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
		}
		if b.Len() == 0 {
			b.WriteByte('0')
		}
		comps[i] = b.String()
	}
	return strings.Join(comps, ", ")
}

// symToken is a token of the operator grammar: a sign, an axis or a number.
type symToken struct {
	kind byte // '+', '-', 'a' (axis), 'n' (number), '*'
	axis int
	val  float64
}

// tokenizeSymComponent splits one component of an operator, e.g. "-x+1/2".
func tokenizeSymComponent(s string) ([]symToken, error) {
	var toks []symToken
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '+' || c == '-' || c == '*':
			toks = append(toks, symToken{kind: c})
			i++
		case c == 'x' || c == 'X' || c == 'y' || c == 'Y' || c == 'z' || c == 'Z':
			toks = append(toks, symToken{kind: 'a', axis: int((c | 0x20) - 'x')})
			i++
		case (c >= '0' && c <= '9') || c == '.':
			j := i
			for j < len(s) && ((s[j] >= '0' && s[j] <= '9') || s[j] == '.' || s[j] == '/') {
				j++
			}
			v, err := parseFraction(s[i:j])
			if err != nil {
				return nil, err
			}
			toks = append(toks, symToken{kind: 'n', val: v})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q in %q", c, s)
		}
	}
	return toks, nil
}

// parseFraction parses "1/2", "0.5" or "1".
func parseFraction(s string) (float64, error) {
	num, den, frac := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, err
	}
	if !frac {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, fmt.Errorf("zero denominator in %q", s)
	}
	return n / d, nil
}

// parseSymComponent returns the linear coefficients and the translation of one
// component of an operator. A sign with nothing after it is reported as
// dangling and adds nothing.
func parseSymComponent(s string) (lattice.Vec3, float64, bool, error) {
	var lin lattice.Vec3
	var trans float64
	toks, err := tokenizeSymComponent(s)
	if err != nil {
		return lin, 0, false, err
	}
	sign := 1.0
	pending := false //a sign was read and no operand yet
	dangling := false
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.kind {
		case '+':
			pending = true
		case '-':
			sign = -sign
			pending = true
		case 'a':
			lin[t.axis] += sign
			sign, pending = 1, false
		case 'n':
			//a number followed by an axis ("2x" or "2*x") is a coefficient.
			j := i + 1
			if j < len(toks) && toks[j].kind == '*' {
				j++
			}
			if j < len(toks) && toks[j].kind == 'a' {
				lin[toks[j].axis] += sign * t.val
				i = j
			} else {
				trans += sign * t.val
			}
			sign, pending = 1, false
		case '*':
			dangling = true
		}
	}
	if pending {
		dangling = true
	}
	return lin, trans, dangling, nil
}

// ParseSymOp parses a symmetry operator such as "x+1/2, -y, z+0.25" or
// "-x+y,-x,z+2/3". Quotes around the operator are ignored.
func ParseSymOp(op string) (SymOp, error) {
	var O SymOp
	op = strings.Trim(strings.TrimSpace(op), `'"`)
	comps := strings.Split(op, ",")
	if len(comps) != 3 {
		return O, fmt.Errorf("symmetry operator %q does not have 3 components", op)
	}
	for i, c := range comps {
		lin, t, dangling, err := parseSymComponent(c)
		if err != nil {
			return O, fmt.Errorf("symmetry operator %q: %w", op, err)
		}
		O.Rot[i] = lin
		O.Trans[i] = t
		O.Dangling = O.Dangling || dangling
	}
	return O, nil
}

// ParseSymOps parses a list of operators. Operators that can't be parsed
// are skipped and logged; the rest are returned.
func ParseSymOps(ops []string) []SymOp {
	ret := make([]SymOp, 0, len(ops))
	for _, s := range ops {
		O, err := ParseSymOp(s)
		if err != nil {
			logger().Warn().Str("format", cifFormat).Str("operator", s).Err(err).Msg("skipping malformed symmetry operator")
			continue
		}
		if O.Dangling {
			logger().Debug().Str("format", cifFormat).Str("operator", s).Msg("symmetry operator with dangling terms")
		}
		ret = append(ret, O)
	}
	return ret
}
