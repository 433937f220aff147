/*
 * locate.go, part of gocrystal.
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
	"io"
	"math"
	"strings"

	"github.com/rmera/gocrystal/lattice"
)

const jsonFormat = "json"

// Bounds for the search of nested structures. Nodes deeper than
// maxSearchDepth are not looked into, and the search stops after
// maxSearchVisits nodes.
const (
	maxSearchDepth  = 512
	maxSearchVisits = 1 << 22
)

type jsonKind uint8

const (
	jsonNull jsonKind = iota
	jsonBool
	jsonNumber
	jsonString
	jsonObject
	jsonArray
)

// jsonNode is a JSON value that, unlike map[string]any, keeps the order of
// object keys, so the search visits candidates in document order.
type jsonNode struct {
	kind jsonKind
	keys []string    //objects only
	vals []*jsonNode //object values, or array elements
	num  float64
	str  string
	b    bool
}

// get returns the value for key in an object node, or nil.
func (n *jsonNode) get(key string) *jsonNode {
	if n == nil || n.kind != jsonObject {
		return nil
	}
	for i, k := range n.keys {
		if k == key {
			return n.vals[i]
		}
	}
	return nil
}

// value converts the node into the usual map[string]any/[]any representation.
func (n *jsonNode) value() any {
	type frame struct {
		n   *jsonNode
		set func(any)
	}
	var root any
	stack := []frame{{n, func(v any) { root = v }}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch f.n.kind {
		case jsonNull:
			f.set(nil)
		case jsonBool:
			f.set(f.n.b)
		case jsonNumber:
			f.set(f.n.num)
		case jsonString:
			f.set(f.n.str)
		case jsonObject:
			m := make(map[string]any, len(f.n.keys))
			f.set(m)
			for i, k := range f.n.keys {
				stack = append(stack, frame{f.n.vals[i], func(v any) { m[k] = v }})
			}
		case jsonArray:
			a := make([]any, len(f.n.vals))
			f.set(a)
			for i := range f.n.vals {
				stack = append(stack, frame{f.n.vals[i], func(v any) { a[i] = v }})
			}
		}
	}
	return root
}

// number returns the value of a numeric node.
func (n *jsonNode) number() (float64, bool) {
	if n == nil || n.kind != jsonNumber {
		return 0, false
	}
	return n.num, true
}

// vec3 returns the value of an array of 3 finite numbers.
func (n *jsonNode) vec3() (lattice.Vec3, bool) {
	var v lattice.Vec3
	if n == nil || n.kind != jsonArray || len(n.vals) != 3 {
		return v, false
	}
	for i, e := range n.vals {
		f, ok := e.number()
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return v, false
		}
		v[i] = f
	}
	return v, true
}

// decodeJSONTree builds the tree for content with an explicit stack, so
// nesting depth is only limited by memory.
func decodeJSONTree(content string) (*jsonNode, error) {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()
	type frame struct {
		n         *jsonNode
		expectKey bool
	}
	var stack []*frame
	var root *jsonNode
	attach := func(n *jsonNode) {
		if len(stack) == 0 {
			root = n
			return
		}
		top := stack[len(stack)-1]
		top.n.vals = append(top.n.vals, n)
		if top.n.kind == jsonObject {
			top.expectKey = true
		}
	}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(stack) > 0 {
			if top := stack[len(stack)-1]; top.n.kind == jsonObject && top.expectKey {
				if k, ok := tok.(string); ok {
					top.n.keys = append(top.n.keys, k)
					top.expectKey = false
					continue
				}
			}
		}
		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{', '[':
				n := &jsonNode{kind: jsonArray}
				if t == '{' {
					n.kind = jsonObject
				}
				attach(n)
				stack = append(stack, &frame{n: n, expectKey: t == '{'})
			case '}', ']':
				stack = stack[:len(stack)-1]
			}
		case nil:
			attach(&jsonNode{kind: jsonNull})
		case bool:
			attach(&jsonNode{kind: jsonBool, b: t})
		case json.Number:
			f, err := t.Float64()
			if err != nil {
				f = math.NaN()
			}
			attach(&jsonNode{kind: jsonNumber, num: f})
		case string:
			attach(&jsonNode{kind: jsonString, str: t})
		}
		if root != nil && len(stack) == 0 {
			break
		}
	}
	if root == nil {
		return nil, newError(jsonFormat, 0, "decodeJSONTree", "empty document")
	}
	return root, nil
}

// FindStructure searches a JSON document, at any nesting level, for the first
// object (in document order) shaped like a serialized Structure: a non-empty
// "sites" array whose entries have a "species" array and "abc" or "xyz"
// coordinates. Objects that look like candidates but fail validation are skipped.
// The structure found is normalized: a lattice is always fully periodic and
// the charge is 0 when absent.
func FindStructure(content string) (*Structure, error) {
	const funcname = "FindStructure"
	root, err := decodeJSONTree(content)
	if err != nil {
		return nil, newError(jsonFormat, 0, funcname, "invalid JSON: %v", err)
	}
	type item struct {
		n     *jsonNode
		depth int
	}
	stack := []item{{root, 0}}
	visits := 0
	for len(stack) > 0 && visits < maxSearchVisits {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visits++
		if it.n.kind == jsonObject && it.n.get("sites") != nil {
			if S, ok := structureFromNode(it.n); ok {
				return S, nil
			}
		}
		if it.depth >= maxSearchDepth || (it.n.kind != jsonObject && it.n.kind != jsonArray) {
			continue
		}
		//reverse, so the first child is visited first.
		for i := len(it.n.vals) - 1; i >= 0; i-- {
			if c := it.n.vals[i]; c.kind == jsonObject || c.kind == jsonArray {
				stack = append(stack, item{c, it.depth + 1})
			}
		}
	}
	return nil, newError(jsonFormat, 0, funcname, "no structure found")
}

// rootStructure reads content as a serialized Structure, without searching nested values.
func rootStructure(content string) (*Structure, error) {
	const funcname = "rootStructure"
	root, err := decodeJSONTree(content)
	if err != nil {
		return nil, newError(jsonFormat, 0, funcname, "invalid JSON: %v", err)
	}
	if S, ok := structureFromNode(root); ok {
		return S, nil
	}
	return nil, newError(jsonFormat, 0, funcname, "not a structure object")
}

// structureFromNode validates and converts a candidate object.
func structureFromNode(n *jsonNode) (*Structure, bool) {
	sites := n.get("sites")
	if sites == nil || sites.kind != jsonArray || len(sites.vals) == 0 {
		return nil, false
	}
	S := &Structure{Sites: make([]Site, 0, len(sites.vals))}
	if l := n.get("lattice"); l != nil && l.kind != jsonNull {
		m := l.get("matrix")
		if m == nil || m.kind != jsonArray || len(m.vals) != 3 {
			return nil, false
		}
		var M lattice.Matrix3
		for i, row := range m.vals {
			v, ok := row.vec3()
			if !ok {
				return nil, false
			}
			M[i] = v
		}
		S.Lattice = NewLattice(M)
	}
	for _, sn := range sites.vals {
		s, ok := siteFromNode(sn, S.Lattice)
		if !ok {
			return nil, false
		}
		S.Sites = append(S.Sites, s)
	}
	if c, ok := n.get("charge").number(); ok && !math.IsNaN(c) && !math.IsInf(c, 0) {
		S.Charge = c
	}
	if p := n.get("properties"); p != nil && p.kind == jsonObject && len(p.keys) > 0 {
		S.Properties, _ = p.value().(map[string]any)
	}
	return S, true
}

func siteFromNode(n *jsonNode, L *Lattice) (Site, bool) {
	var s Site
	if n.kind != jsonObject {
		return s, false
	}
	sp := n.get("species")
	if sp == nil || sp.kind != jsonArray || len(sp.vals) == 0 {
		return s, false
	}
	for _, e := range sp.vals {
		el := e.get("element")
		if el == nil || el.kind != jsonString {
			return s, false
		}
		sym, ox, ok := ParseSpeciesSymbol(el.str)
		if !ok {
			if sym = CleanElementSymbol(el.str); sym == "" {
				logger().Warn().Str("format", jsonFormat).Str("symbol", el.str).Msg("unknown element symbol, using default")
				sym = defaultElement
			}
		}
		species := Species{Element: sym, Occu: 1, OxidationState: ox}
		if o, ok := e.get("occu").number(); ok && o > 0 {
			species.Occu = o
		}
		if o, ok := e.get("oxidation_state").number(); ok && !math.IsNaN(o) {
			species.OxidationState = int(math.Round(o))
		}
		s.Species = append(s.Species, species)
	}
	abc, hasABC := n.get("abc").vec3()
	xyz, hasXYZ := n.get("xyz").vec3()
	switch {
	case L != nil && hasABC:
		s.ABC = vecPtr(lattice.Wrap(abc))
		s.XYZ = L.FracToCart(*s.ABC)
	case L != nil && hasXYZ:
		s.ABC = vecPtr(lattice.Wrap(L.CartToFrac(xyz)))
		s.XYZ = L.FracToCart(*s.ABC)
	case hasXYZ:
		s.XYZ = xyz
	default:
		return s, false
	}
	if l := n.get("label"); l != nil && l.kind == jsonString && l.str != "" {
		s.Label = l.str
	} else {
		s.Label = s.Species[0].Element
	}
	if p := n.get("properties"); p != nil && p.kind == jsonObject && len(p.keys) > 0 {
		s.Properties, _ = p.value().(map[string]any)
	}
	return s, true
}
