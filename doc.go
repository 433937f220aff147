/*
 * doc.go, part of gocrystal.
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

/*Package crystal reads crystal and molecular structure files into a single
canonical Structure, and provides the few geometric operations needed to
display them: periodic image atoms and supercells.


	**Capabilities**

    Reads VASP POSCAR/CONTCAR files (VASP 4 and 5, Direct and Cartesian,
	selective dynamics), XYZ and extended XYZ (last frame of multi-frame
	files), CIF and mmCIF (with symmetry expansion), OPTIMADE JSON
	responses, phonopy YAML files and structure JSON documents, including
	structures nested at any depth inside other JSON documents.

    Detects the format and kind (crystal or molecule) of a file from its
	name and content, and tells structure files from trajectories.

    Finds the periodic images of sites lying on cell faces, edges and
	corners, and builds supercells from scaling factors or integer matrices.

    Writes structures as extended XYZ, POSCAR, P1 CIF and JSON.

Every reader returns a *Structure in which, if there is a lattice, the
fractional coordinates are wrapped into [0,1) and the Cartesian ones are
derived from them. Structures are not modified after they are built.

Diagnostics for recoverable problems (unknown elements, skipped symmetry
operations, discarded trailing frames) are logged through a zerolog logger
that can be replaced with SetLogger. Errors are *Error values carrying the
format and, when possible, the line where the problem was found.

The lattice subpackage holds the underlying vector algebra, and source
fetches (possibly compressed) files from disk or blob storage.*/
package crystal
