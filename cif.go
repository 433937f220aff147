/*
 * cif.go, part of gocrystal.
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
	"strings"

	"github.com/rmera/gocrystal/lattice"
)

const cifFormat = "cif"

// CIFOptions control how CIF files are read.
type CIFOptions struct {
	//Strict makes cell errors name the offending tag and line.
	Strict bool `yaml:"strict"`
	//WrapFrac wraps the final fractional coordinates into [0,1). When false,
	//coordinates are kept as written, including negative values and values above 1.
	WrapFrac bool `yaml:"wrap_frac"`
}

// DefaultCIFOptions returns the options used when none are given.
func DefaultCIFOptions() CIFOptions {
	return CIFOptions{WrapFrac: true}
}

// fracTol is the tolerance used to decide that two fractional positions coincide.
const fracTol = 1e-4

type cifValue struct {
	text string
	line int
}

// unknown returns true for the CIF "unknown" (?) and "inapplicable" (.) markers.
func (v cifValue) unknown() bool {
	return v.text == "?" || v.text == "."
}

type cifLoop struct {
	tags   []string
	values []cifValue
}

// cifColumns maps tags to columns in a loop.
type cifColumns map[string]int

// get returns the index of the column for the tag, or -1 if absent.
func (m cifColumns) get(tag string) int {
	if i, ok := m[tag]; ok {
		return i
	}
	return -1
}

// columns returns the tag->column map of the loop.
func (l *cifLoop) columns() cifColumns {
	m := make(cifColumns, len(l.tags))
	for i, t := range l.tags {
		if _, ok := m[t]; !ok {
			m[t] = i
		}
	}
	return m
}

// rows returns the values of the loop split in rows. Incomplete trailing
// rows are dropped.
func (l *cifLoop) rows() [][]cifValue {
	n := len(l.tags)
	if n == 0 {
		return nil
	}
	if r := len(l.values) % n; r != 0 {
		line := 0
		if len(l.values) > 0 {
			line = l.values[len(l.values)-1].line
		}
		logger().Warn().Str("format", cifFormat).Int("line", line).Str("loop", l.tags[0]).Int("extra_values", r).Msg("loop values are not a multiple of its tags, dropping the incomplete row")
	}
	rows := make([][]cifValue, 0, len(l.values)/n)
	for i := 0; i+n <= len(l.values); i += n {
		rows = append(rows, l.values[i:i+n])
	}
	return rows
}

func (l *cifLoop) has(tag string) bool {
	return l.columns().get(tag) >= 0
}

type cifBlock struct {
	name    string
	line    int //of the data_ header, 0 for data before any header
	scalars map[string]cifValue
	loops   []*cifLoop
}

func newCIFBlock(name string, line int) *cifBlock {
	return &cifBlock{name: name, line: line, scalars: make(map[string]cifValue)}
}

// loop returns the first loop in the block containing any of the tags.
func (b *cifBlock) loop(tags ...string) *cifLoop {
	for _, l := range b.loops {
		for _, t := range tags {
			if l.has(t) {
				return l
			}
		}
	}
	return nil
}

// scalar returns the first of the given tags present as a scalar.
func (b *cifBlock) scalar(tags ...string) (cifValue, bool) {
	for _, t := range tags {
		if v, ok := b.scalars[t]; ok {
			return v, true
		}
	}
	return cifValue{}, false
}

type cifToken struct {
	text   string
	quoted bool
}

// cifTokenize splits a CIF line into tokens. A quote only closes a quoted
// token when followed by whitespace or the end of the line, so that
// values like 'O'Neil' survive. Comments start with an unquoted #.
func cifTokenize(line string) []cifToken {
	var toks []cifToken
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t':
			i++
			continue
		case c == '#':
			return toks
		case c == '\'' || c == '"':
			j := i + 1
			for j < len(line) && !(line[j] == c && (j+1 == len(line) || line[j+1] == ' ' || line[j+1] == '\t')) {
				j++
			}
			if j >= len(line) {
				toks = append(toks, cifToken{text: line[i+1:], quoted: true})
				return toks
			}
			toks = append(toks, cifToken{text: line[i+1 : j], quoted: true})
			i = j + 1
			continue
		}
		j := i
		for j < len(line) && line[j] != ' ' && line[j] != '\t' {
			j++
		}
		toks = append(toks, cifToken{text: line[i:j]})
		i = j
	}
	return toks
}

// normalizeTag lower-cases a tag and maps DDL2 (mmCIF) dots to underscores,
// so "_atom_site.fract_x" and "_atom_site_fract_x" are the same tag.
func normalizeTag(t string) string {
	return strings.ReplaceAll(strings.ToLower(t), ".", "_")
}

// parseCIFBlocks splits a CIF file in data blocks with their scalars and loops.
func parseCIFBlocks(content string) []*cifBlock {
	lines := splitLines(content)
	var blocks []*cifBlock
	cur := newCIFBlock("", 0)
	var loop *cifLoop
	readingTags := false
	pendingTag := ""
	feed := func(v cifValue) {
		switch {
		case pendingTag != "":
			cur.scalars[pendingTag] = v
			pendingTag = ""
		case loop != nil:
			readingTags = false
			loop.values = append(loop.values, v)
		default:
			logger().Debug().Str("format", cifFormat).Int("line", v.line).Str("value", v.text).Msg("value without a tag")
		}
	}
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		lineno := i + 1
		if strings.HasPrefix(line, ";") {
			//multi-line text field, ends with a line starting with ';'
			text := []string{strings.TrimSpace(line[1:])}
			for i++; i < len(lines) && !strings.HasPrefix(lines[i], ";"); i++ {
				text = append(text, lines[i])
			}
			feed(cifValue{text: strings.TrimSpace(strings.Join(text, "\n")), line: lineno})
			continue
		}
		for _, tok := range cifTokenize(line) {
			low := strings.ToLower(tok.text)
			switch {
			case tok.quoted:
				feed(cifValue{text: tok.text, line: lineno})
			case strings.HasPrefix(low, "data_"):
				if len(cur.scalars) > 0 || len(cur.loops) > 0 || cur.name != "" {
					blocks = append(blocks, cur)
				}
				cur = newCIFBlock(tok.text[5:], lineno)
				loop, readingTags, pendingTag = nil, false, ""
			case low == "loop_":
				loop = &cifLoop{}
				cur.loops = append(cur.loops, loop)
				readingTags, pendingTag = true, ""
			case strings.HasPrefix(low, "save_") || low == "global_" || low == "stop_":
				loop, readingTags, pendingTag = nil, false, ""
			case strings.HasPrefix(tok.text, "_"):
				if loop != nil && readingTags {
					loop.tags = append(loop.tags, normalizeTag(tok.text))
					continue
				}
				loop, readingTags = nil, false
				pendingTag = normalizeTag(tok.text)
			default:
				feed(cifValue{text: tok.text, line: lineno})
			}
		}
	}
	blocks = append(blocks, cur)
	return blocks
}

var cellTags = [6]string{
	"_cell_length_a", "_cell_length_b", "_cell_length_c",
	"_cell_angle_alpha", "_cell_angle_beta", "_cell_angle_gamma",
}

// cifCell reads the six cell parameters of a block.
func cifCell(b *cifBlock, strict bool) (lattice.Matrix3, error) {
	const funcname = "cifCell"
	var p [6]float64
	var missing []string
	for i, tag := range cellTags {
		v, ok := b.scalars[tag]
		if !ok || v.unknown() {
			if strict {
				line := v.line
				if !ok {
					line = b.line
				}
				return lattice.Matrix3{}, newError(cifFormat, line, funcname, "required cell parameter %s is missing or unknown", tag)
			}
			missing = append(missing, tag)
			continue
		}
		f, err := parseFloat(v.text)
		if err != nil {
			if strict {
				return lattice.Matrix3{}, newError(cifFormat, v.line, funcname, "could not parse %s value %q", tag, v.text)
			}
			missing = append(missing, tag)
			continue
		}
		p[i] = f
	}
	if len(missing) > 0 {
		return lattice.Matrix3{}, newError(cifFormat, 0, funcname, "incomplete cell data, missing %s", strings.Join(missing, ", "))
	}
	if p[0] <= 0 || p[1] <= 0 || p[2] <= 0 {
		return lattice.Matrix3{}, newError(cifFormat, 0, funcname, "cell lengths must be positive: %g %g %g", p[0], p[1], p[2])
	}
	return lattice.FromCell(p[0], p[1], p[2], p[3], p[4], p[5]), nil
}

// cifAtomType is an entry of the _atom_type loop.
type cifAtomType struct {
	element   string
	oxidation int
	hasOx     bool
}

// cifAtomTypes reads the _atom_type loop, if present. It returns the entries keyed by
// the (decorated) symbol, and the number of atoms of each element in the cell.
func cifAtomTypes(b *cifBlock) (map[string]cifAtomType, map[string]float64) {
	l := b.loop("_atom_type_symbol")
	if l == nil {
		return nil, nil
	}
	cols := l.columns()
	types := make(map[string]cifAtomType)
	var counts map[string]float64
	for _, row := range l.rows() {
		sym := row[cols.get("_atom_type_symbol")]
		if sym.unknown() {
			continue
		}
		el, ox, ok := ParseSpeciesSymbol(sym.text)
		if !ok {
			continue
		}
		t := cifAtomType{element: el, oxidation: ox, hasOx: ox != 0}
		if c := cols.get("_atom_type_oxidation_number"); c >= 0 && !row[c].unknown() {
			if f, err := parseFloat(row[c].text); err == nil {
				t.oxidation, t.hasOx = int(math.Round(f)), true
			}
		}
		types[sym.text] = t
		if c := cols.get("_atom_type_number_in_cell"); c >= 0 && !row[c].unknown() {
			if f, err := parseFloat(row[c].text); err == nil {
				if counts == nil {
					counts = make(map[string]float64)
				}
				counts[el] += f
			}
		}
	}
	return types, counts
}

// cifSymOps returns the non-identity symmetry operations of the block.
func cifSymOps(b *cifBlock) []SymOp {
	tags := []string{"_space_group_symop_operation_xyz", "_symmetry_equiv_pos_as_xyz"}
	l := b.loop(tags...)
	var raw []string
	if l != nil {
		cols := l.columns()
		c := cols.get(tags[0])
		if c < 0 {
			c = cols.get(tags[1])
		}
		for _, row := range l.rows() {
			if !row[c].unknown() {
				raw = append(raw, row[c].text)
			}
		}
	} else if v, ok := b.scalar(tags...); ok && !v.unknown() {
		//a single operator written as a scalar.
		raw = append(raw, v.text)
	}
	ops := ParseSymOps(raw)
	ret := ops[:0]
	for _, O := range ops {
		if !O.Identity() {
			ret = append(ret, O)
		}
	}
	return ret
}

// fracEqual returns true if a and b are the same point modulo lattice translations.
func fracEqual(a, b lattice.Vec3) bool {
	for i := range a {
		d := a[i] - b[i]
		d -= math.Round(d)
		if math.Abs(d) > fracTol {
			return false
		}
	}
	return true
}

// ParseCIF reads the first data block containing atom sites from a CIF file,
// and expands the sites with the symmetry operations given in the file.
// Each row of the atom site loop, including every component of a disordered
// position, produces its own site and its own symmetry copies.
func ParseCIF(content string, opts ...CIFOptions) (*Structure, error) {
	const funcname = "ParseCIF"
	o := DefaultCIFOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	var block *cifBlock
	var atoms *cifLoop
	for _, b := range parseCIFBlocks(content) {
		if l := b.loop("_atom_site_fract_x", "_atom_site_cartn_x"); l != nil {
			block, atoms = b, l
			break
		}
	}
	if block == nil {
		return nil, newError(cifFormat, 0, funcname, "no _atom_site loop found")
	}
	M, err := cifCell(block, o.Strict)
	if err != nil {
		return nil, errDecorate(err, funcname)
	}
	L := NewLattice(M)
	types, typeCounts := cifAtomTypes(block)
	unique, err := cifAtomSites(atoms, L, types)
	if err != nil {
		return nil, errDecorate(err, funcname)
	}
	if len(unique) == 0 {
		return nil, newError(cifFormat, 0, funcname, ErrNoSites)
	}
	ops := cifSymOps(block)
	S := &Structure{Lattice: L, Sites: expandSites(unique, ops, o.WrapFrac)}
	S.consistent()
	if block.name != "" {
		S.setProperty("data_block", block.name)
	}
	if v, ok := block.scalar("_chemical_formula_sum"); ok && !v.unknown() {
		S.setProperty("formula", v.text)
	}
	if v, ok := block.scalar("_space_group_name_h-m_alt", "_symmetry_space_group_name_h-m"); ok && !v.unknown() {
		S.setProperty("space_group", v.text)
	}
	if typeCounts != nil {
		S.setProperty("atom_type_counts", typeCounts)
	}
	return S, nil
}

// expandSites returns the unique sites followed by their symmetry copies.
// With wrap on, copies that fall on a position already produced from the same
// unique site are dropped (atoms on special positions).
func expandSites(unique []Site, ops []SymOp, wrap bool) []Site {
	out := make([]Site, 0, len(unique)*(len(ops)+1))
	seen := make([][]lattice.Vec3, len(unique))
	for i, s := range unique {
		abc := *s.ABC
		if wrap {
			abc = lattice.Wrap(abc)
		}
		s.ABC = vecPtr(abc)
		out = append(out, s)
		seen[i] = append(seen[i], abc)
	}
	for i, s := range unique {
	OPS:
		for _, O := range ops {
			abc := O.Apply(*s.ABC)
			if wrap {
				abc = lattice.Wrap(abc)
				for _, p := range seen[i] {
					if fracEqual(p, abc) {
						continue OPS
					}
				}
				seen[i] = append(seen[i], abc)
			}
			c := s
			c.ABC = vecPtr(abc)
			out = append(out, c)
		}
	}
	return out
}

// cifAtomSites reads the rows of the atom site loop as sites with raw
// (unwrapped) fractional coordinates.
func cifAtomSites(l *cifLoop, L *Lattice, types map[string]cifAtomType) ([]Site, error) {
	const funcname = "cifAtomSites"
	cols := l.columns()
	fract := [3]int{cols.get("_atom_site_fract_x"), cols.get("_atom_site_fract_y"), cols.get("_atom_site_fract_z")}
	cart := [3]int{cols.get("_atom_site_cartn_x"), cols.get("_atom_site_cartn_y"), cols.get("_atom_site_cartn_z")}
	coordCols, isCart := fract, false
	if fract[0] < 0 || fract[1] < 0 || fract[2] < 0 {
		if cart[0] < 0 || cart[1] < 0 || cart[2] < 0 {
			return nil, newError(cifFormat, 0, funcname, "atom site loop lacks a complete set of coordinate columns")
		}
		coordCols, isCart = cart, true
	}
	labelCol := cols.get("_atom_site_label")
	typeCol := cols.get("_atom_site_type_symbol")
	occCol := cols.get("_atom_site_occupancy")
	wyckCol := cols.get("_atom_site_wyckoff_symbol")
	rows := l.rows()
	sites := make([]Site, 0, len(rows))
	for _, row := range rows {
		line := row[0].line
		var c lattice.Vec3
		for k, col := range coordCols {
			v := row[col]
			if v.unknown() {
				return nil, newError(cifFormat, v.line, funcname, "unknown value %q for %s", v.text, l.tags[col])
			}
			f, err := parseFloat(v.text)
			if err != nil {
				return nil, newError(cifFormat, v.line, funcname, "could not parse %s value %q", l.tags[col], v.text)
			}
			c[k] = f
		}
		if isCart {
			c = L.CartToFrac(c)
		}
		label := ""
		if labelCol >= 0 && !row[labelCol].unknown() {
			label = row[labelCol].text
		}
		el, ox, ok := "", 0, false
		if typeCol >= 0 && !row[typeCol].unknown() {
			sym := row[typeCol].text
			if t, found := types[sym]; found {
				el, ox, ok = t.element, t.oxidation, true
			} else {
				el, ox, ok = ParseSpeciesSymbol(sym)
			}
		}
		if !ok && label != "" {
			el, ok = ElementFromLabel(label)
		}
		if !ok {
			if label == "" && (typeCol < 0 || row[typeCol].unknown()) {
				return nil, newError(cifFormat, line, funcname, "atom site has neither a label nor a type symbol")
			}
			logger().Warn().Str("format", cifFormat).Int("line", line).Str("label", label).Msg("could not determine element, using default")
			el = defaultElement
		}
		if label == "" {
			label = el
		}
		occu := 1.0
		if occCol >= 0 && !row[occCol].unknown() {
			f, err := parseFloat(row[occCol].text)
			switch {
			case err != nil || f <= 0:
				logger().Warn().Str("format", cifFormat).Int("line", line).Str("occupancy", row[occCol].text).Msg("invalid occupancy, using 1")
			case f > 1:
				occu = 1
			default:
				occu = f
			}
		}
		site := Site{
			Species: []Species{{Element: el, Occu: occu, OxidationState: ox}},
			ABC:     vecPtr(c),
			Label:   label,
		}
		if wyckCol >= 0 && !row[wyckCol].unknown() {
			site = site.withProperties("wyckoff", row[wyckCol].text)
		}
		sites = append(sites, site)
	}
	return sites, nil
}
