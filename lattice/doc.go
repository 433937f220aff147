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

/*Package lattice implements the small, fixed-size linear algebra needed to work
with periodic cells: 3-vectors, 3x3 matrices, the conversion between the six cell
parameters and a lattice matrix, fractional/Cartesian coordinate conversion,
wrapping into the unit cell and minimum-image distances.

A lattice matrix holds the three basis vectors as its rows, so a Cartesian position
is obtained from fractional coordinates as xyz = Mᵀ·abc.

Every function in the package is total. Singular or non-finite input degrades
to an identity matrix, a zero, or a Euclidean fallback; NaN and Inf are never
produced from finite input.

The fixed-size types are plain arrays, so they are values: they can be copied
and shared between goroutines freely. gonum is used where a general matrix
type pays off (products, integer determinants).
*/
package lattice
