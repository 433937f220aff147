/*
 * detect.go, part of gocrystal.
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
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Format is a structure file format this package can read.
type Format string

// Formats known to the dispatcher. FormatJSON is a serialized Structure,
// possibly nested inside another JSON document.
const (
	FormatUnknown  Format = ""
	FormatPOSCAR   Format = poscarFormat
	FormatXYZ      Format = xyzFormat
	FormatCIF      Format = cifFormat
	FormatOptimade Format = optimadeFormat
	FormatPhonopy  Format = phonopyFormat
	FormatJSON     Format = jsonFormat
)

// StructureType tells periodic crystals from molecules.
type StructureType string

const (
	Crystal  StructureType = "crystal"
	Molecule StructureType = "molecule"
	Unknown  StructureType = "unknown"
)

var (
	structureExtensions  = []string{"cif", "mmcif", "poscar", "vasp", "xyz", "lmp", "pdb", "mol", "mol2", "sdf"}
	compressedExtensions = []string{"gz", "gzip", "bz2", "xz", "zst", "zip"}
	trajectoryExtensions = []string{"traj", "h5", "hdf5", "xtc", "dcd", "trr", "nc", "lammpstrj", "extxyz"}
	keywordExtensions    = []string{"json", "yaml", "yml", "xml"}
	structureKeywords    = []string{"structure", "crystal", "material", "geometry", "lattice", "phonopy", "vasp"}
	trajectoryKeywords   = []string{"traj", "xdatcar", "movie"}
	vaspNames            = []string{"poscar", "contcar", "potcar", "incar", "kpoints", "outcar"}
	vaspStructureNames   = []string{"poscar", "contcar"}
)

// splitName returns the lower-cased base name of a file without any
// compression suffix, its stem and its extension (without the dot).
func splitName(name string) (base, stem, ext string) {
	base = strings.ToLower(filepath.Base(strings.ReplaceAll(name, `\`, "/")))
	for {
		e := strings.TrimPrefix(filepath.Ext(base), ".")
		if e == "" || !lo.Contains(compressedExtensions, e) || len(base) == len(e)+1 {
			break
		}
		base = strings.TrimSuffix(base, "."+e)
	}
	ext = strings.TrimPrefix(filepath.Ext(base), ".")
	stem = strings.TrimSuffix(base, "."+ext)
	if ext == "" {
		stem = base
	}
	return base, stem, ext
}

// hasNamePrefix returns true if base is one of names, or starts with one of them
// followed by one of "._-" (POSCAR_relaxed, CONTCAR-1).
func hasNamePrefix(base string, names []string) bool {
	return lo.ContainsBy(names, func(n string) bool {
		if !strings.HasPrefix(base, n) {
			return false
		}
		rest := base[len(n):]
		return rest == "" || strings.ContainsAny(rest[:1], "._-")
	})
}

// IsTrajectoryFile returns true for files that hold trajectories rather than
// single structures. Extended XYZ files are always considered trajectories.
func IsTrajectoryFile(name string) bool {
	base, stem, ext := splitName(name)
	if lo.Contains(trajectoryExtensions, ext) || hasNamePrefix(base, []string{"xdatcar"}) {
		return true
	}
	return lo.ContainsBy(trajectoryKeywords, func(k string) bool {
		return strings.Contains(stem, k)
	})
}

// IsStructureFile returns true if the name looks like a structure file, compressed or
// not. Generic data formats (JSON, YAML, XML) need a structure-related word in their
// name. Trajectory files are never structure files.
func IsStructureFile(name string) bool {
	if IsTrajectoryFile(name) {
		return false
	}
	base, stem, ext := splitName(name)
	switch {
	case lo.Contains(structureExtensions, ext):
		return true
	case hasNamePrefix(base, vaspNames):
		return true
	case lo.Contains(keywordExtensions, ext):
		return lo.ContainsBy(structureKeywords, func(k string) bool {
			return strings.Contains(stem, k)
		})
	}
	return false
}

// DetectFormat returns the readable format of a file, judging by its name first and
// by its content when the name is not conclusive.
func DetectFormat(name, content string) Format {
	base, _, ext := splitName(name)
	switch {
	case ext == "cif" || ext == "mmcif":
		return FormatCIF
	case ext == "poscar" || ext == "vasp" || hasNamePrefix(base, vaspStructureNames):
		return FormatPOSCAR
	case ext == "xyz" || ext == "extxyz":
		return FormatXYZ
	case ext == "yaml" || ext == "yml":
		return FormatPhonopy
	case ext == "json":
		if IsOptimadeJSON(content) {
			return FormatOptimade
		}
		return FormatJSON
	}
	return sniffFormat(content)
}

var (
	phonopyKeyRe = regexp.MustCompile(`(?m)^(primitive_cell|unit_cell|supercell)\s*:`)
	cifBlockRe   = regexp.MustCompile(`(?mi)^\s*data_\S*`)
	cifCellRe    = regexp.MustCompile(`(?mi)^\s*_cell[._]length_a\s`)
)

// sniffFormat guesses the format from the content alone.
func sniffFormat(content string) Format {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return FormatUnknown
	}
	switch trimmed[0] {
	case '{', '[':
		if IsOptimadeJSON(trimmed) {
			return FormatOptimade
		}
		return FormatJSON
	}
	if phonopyKeyRe.MatchString(content) {
		return FormatPhonopy
	}
	if cifBlockRe.MatchString(content) && cifCellRe.MatchString(content) {
		return FormatCIF
	}
	lines := splitLines(trimmed)
	//a POSCAR comment line may be a lone integer, so the lattice shape goes first.
	if len(lines) >= 8 {
		scale := strings.Fields(lines[1])
		if (len(scale) == 1 || len(scale) == 3) && isNumber(scale[0]) &&
			len(leadingNumbers(lines[2])) == 3 && len(leadingNumbers(lines[3])) == 3 && len(leadingNumbers(lines[4])) == 3 {
			return FormatPOSCAR
		}
	}
	if len(lines) >= 3 {
		if f := strings.Fields(lines[0]); len(f) == 1 {
			if n, err := strconv.Atoi(f[0]); err == nil && n > 0 {
				return FormatXYZ
			}
		}
	}
	return FormatUnknown
}

var (
	xyzLatticeKeyRe = regexp.MustCompile(`(?i)\blattice\s*=`)
	pdbCrystRe      = regexp.MustCompile(`(?m)^CRYST1`)
)

// DetectStructureType tells whether the file holds a periodic crystal or a molecule.
func DetectStructureType(name, content string) StructureType {
	switch DetectFormat(name, content) {
	case FormatCIF, FormatPOSCAR, FormatPhonopy:
		return Crystal
	case FormatXYZ:
		first := strings.SplitN(strings.TrimLeft(content, " \t\r\n"), "\n", 3)
		if len(first) > 1 && xyzLatticeKeyRe.MatchString(first[1]) {
			return Crystal
		}
		return Molecule
	case FormatOptimade:
		return optimadeType(content)
	case FormatJSON:
		switch {
		case strings.Contains(content, `"lattice"`):
			return Crystal
		case strings.Contains(content, `"sites"`):
			return Molecule
		}
		return Unknown
	}
	_, _, ext := splitName(name)
	switch ext {
	case "lmp":
		return Crystal
	case "pdb":
		if pdbCrystRe.MatchString(content) {
			return Crystal
		}
		return Molecule
	case "mol", "mol2", "sdf":
		return Molecule
	}
	return Unknown
}

// optimadeType uses the periodicity attributes of an OPTIMADE entry.
func optimadeType(content string) StructureType {
	S, err := ParseOptimade(content)
	if err != nil {
		return Unknown
	}
	if S.Lattice == nil {
		return Molecule
	}
	if !lo.Contains(S.Lattice.PBC[:], true) {
		return Molecule
	}
	return Crystal
}
