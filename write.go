/*
 * write.go, part of gocrystal.
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
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rmera/gocrystal/lattice"
)

// fileWrite creates the file name and writes S to it with write.
func fileWrite(name string, S *Structure, write func(io.Writer, *Structure) error) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := write(f, S); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return f.Close()
}

// XYZFileWrite writes S to the file name in extended XYZ format.
func XYZFileWrite(name string, S *Structure) error {
	return fileWrite(name, S, WriteXYZ)
}

// WriteXYZ writes S in extended XYZ format. The lattice, if any,
// goes in the comment line.
func WriteXYZ(out io.Writer, S *Structure) error {
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "%d\n", len(S.Sites))
	var comment []string
	if S.Lattice != nil {
		M := S.Lattice.Matrix
		comment = append(comment, fmt.Sprintf(`Lattice="%.10f %.10f %.10f %.10f %.10f %.10f %.10f %.10f %.10f"`,
			M[0][0], M[0][1], M[0][2], M[1][0], M[1][1], M[1][2], M[2][0], M[2][1], M[2][2]))
	}
	comment = append(comment, "Properties=species:S:1:pos:R:3")
	if S.Lattice != nil {
		pbc := make([]string, 3)
		for i, p := range S.Lattice.PBC {
			pbc[i] = "F"
			if p {
				pbc[i] = "T"
			}
		}
		comment = append(comment, fmt.Sprintf(`pbc="%s"`, strings.Join(pbc, " ")))
	}
	fmt.Fprintln(w, strings.Join(comment, " "))
	for _, s := range S.Sites {
		fmt.Fprintf(w, "%-3s %15.8f %15.8f %15.8f\n", s.Element(), s.XYZ[0], s.XYZ[1], s.XYZ[2])
	}
	return w.Flush()
}

// POSCARFileWrite writes S to the file name in VASP 5 POSCAR format.
func POSCARFileWrite(name string, S *Structure) error {
	return fileWrite(name, S, WritePOSCAR)
}

// WritePOSCAR writes S in VASP 5 POSCAR format, with Direct coordinates.
// Sites are grouped by element, in the order each element first appears.
func WritePOSCAR(out io.Writer, S *Structure) error {
	if S.Lattice == nil {
		return newError(poscarFormat, 0, "WritePOSCAR", ErrNoLattice)
	}
	var order []string
	groups := make(map[string][]int)
	for i := range S.Sites {
		el := S.Sites[i].Element()
		if _, ok := groups[el]; !ok {
			order = append(order, el)
		}
		groups[el] = append(groups[el], i)
	}
	w := bufio.NewWriter(out)
	comment := S.Formula()
	if c, ok := S.Properties["comment"].(string); ok && c != "" {
		comment = c
	}
	fmt.Fprintln(w, strings.ReplaceAll(comment, "\n", " "))
	fmt.Fprintln(w, "1.0")
	for _, row := range S.Lattice.Matrix {
		fmt.Fprintf(w, "  %20.12f %20.12f %20.12f\n", row[0], row[1], row[2])
	}
	counts := make([]string, len(order))
	for i, el := range order {
		counts[i] = fmt.Sprint(len(groups[el]))
	}
	fmt.Fprintln(w, "  "+strings.Join(order, " "))
	fmt.Fprintln(w, "  "+strings.Join(counts, " "))
	fmt.Fprintln(w, "Direct")
	for _, el := range order {
		for _, i := range groups[el] {
			abc := S.Sites[i].Frac()
			if S.Sites[i].ABC == nil {
				abc = lattice.Wrap(S.Lattice.CartToFrac(S.Sites[i].XYZ))
			}
			fmt.Fprintf(w, "  %18.12f %18.12f %18.12f\n", abc[0], abc[1], abc[2])
		}
	}
	return w.Flush()
}

// CIFFileWrite writes S to the file name in CIF format.
func CIFFileWrite(name string, S *Structure) error {
	return fileWrite(name, S, WriteCIF)
}

// WriteCIF writes S as a P1 CIF data block, with one atom site per species
// of each site.
func WriteCIF(out io.Writer, S *Structure) error {
	L := S.Lattice
	if L == nil {
		return newError(cifFormat, 0, "WriteCIF", ErrNoLattice)
	}
	w := bufio.NewWriter(out)
	name := strings.ReplaceAll(S.Formula(), " ", "")
	if name == "" {
		name = "gocrystal"
	}
	fmt.Fprintf(w, "data_%s\n#\n", name)
	fmt.Fprintf(w, "_cell_length_a %.8f\n_cell_length_b %.8f\n_cell_length_c %.8f\n", L.A, L.B, L.C)
	fmt.Fprintf(w, "_cell_angle_alpha %.8f\n_cell_angle_beta %.8f\n_cell_angle_gamma %.8f\n", L.Alpha, L.Beta, L.Gamma)
	fmt.Fprintf(w, "_symmetry_space_group_name_H-M 'P 1'\n#\n")
	fmt.Fprint(w, "loop_\n_symmetry_equiv_pos_as_xyz\n  'x, y, z'\n#\n")
	fmt.Fprint(w, "loop_\n_atom_site_type_symbol\n_atom_site_label\n_atom_site_fract_x\n_atom_site_fract_y\n_atom_site_fract_z\n_atom_site_occupancy\n")
	for i := range S.Sites {
		s := &S.Sites[i]
		abc := s.Frac()
		if s.ABC == nil {
			abc = lattice.Wrap(L.CartToFrac(s.XYZ))
		}
		label := strings.Join(strings.Fields(s.Label), "_")
		if label == "" {
			label = fmt.Sprintf("%s%d", s.Element(), i+1)
		}
		for _, sp := range s.Species {
			fmt.Fprintf(w, "  %-3s %-8s %12.8f %12.8f %12.8f %6.4f\n", sp.Element, label, abc[0], abc[1], abc[2], sp.Occu)
		}
	}
	fmt.Fprint(w, "#\n")
	return w.Flush()
}

// WriteJSON writes S as an indented JSON document.
func WriteJSON(out io.Writer, S *Structure) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(S)
}
