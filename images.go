/*
 * images.go, part of gocrystal.
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

// DefaultImageTolerance is the default distance, in Å, from a cell face under
// which a site gets periodic images.
const DefaultImageTolerance = 0.05

// Sites with a fractional coordinate outside [unwrappedLow, unwrappedHigh] are
// counted as unwrapped. If more than unwrappedFraction of the sites are, the
// structure is taken as trajectory-style data and gets no images.
const (
	unwrappedLow      = -0.1
	unwrappedHigh     = 1.1
	unwrappedFraction = 0.1
)

// ImageOptions control the search for image atoms.
type ImageOptions struct {
	//Tolerance is a distance in Å. Non-positive values select DefaultImageTolerance.
	Tolerance float64 `yaml:"tolerance"`
}

// ImageAtom is a periodic image of the site SiteIndex.
type ImageAtom struct {
	SiteIndex int
	XYZ       lattice.Vec3
	ABC       lattice.Vec3
}

// WrapToUnitCell maps fractional coordinates into [0,1).
func WrapToUnitCell(abc lattice.Vec3) lattice.Vec3 {
	return lattice.Wrap(abc)
}

// imageKey identifies a position occupied by some species. Positions are
// rounded so that exact duplicates share a key; the species are part of the
// key so that the rows of a mixed-occupancy site each get their images.
type imageKey struct {
	pos     [3]int64
	species string
}

func newImageKey(abc lattice.Vec3, s *Site) imageKey {
	const prec = 1e6
	var k imageKey
	for i, v := range abc {
		k.pos[i] = int64(math.Round(v * prec))
	}
	var b strings.Builder
	for _, sp := range s.Species {
		b.WriteString(sp.Element)
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(sp.Occu, 'g', -1, 64))
		b.WriteByte(';')
	}
	k.species = b.String()
	return k
}

// FindImageAtoms returns the periodic images of the sites lying strictly closer
// than the tolerance to a face of the cell. A site near one face gets one image,
// near an edge 3 and near a corner 7. Images that coincide with a site or with
// another image of the same species are returned only once. Structures without a lattice, and
// structures where many sites lie well outside the cell, get no images.
func FindImageAtoms(S *Structure, opts ...ImageOptions) []ImageAtom {
	if S == nil || S.Lattice == nil || len(S.Sites) == 0 {
		return nil
	}
	tol := DefaultImageTolerance
	if len(opts) > 0 && opts[0].Tolerance > 0 && !math.IsInf(opts[0].Tolerance, 0) {
		tol = opts[0].Tolerance
	}
	L := S.Lattice
	fracs := make([]lattice.Vec3, len(S.Sites))
	outside := 0
	for i := range S.Sites {
		if S.Sites[i].ABC != nil {
			fracs[i] = *S.Sites[i].ABC
		} else {
			fracs[i] = L.CartToFrac(S.Sites[i].XYZ)
		}
		for _, v := range fracs[i] {
			if v < unwrappedLow || v > unwrappedHigh {
				outside++
				break
			}
		}
	}
	if float64(outside) > unwrappedFraction*float64(len(S.Sites)) {
		logger().Debug().Int("unwrapped_sites", outside).Msg("structure looks unwrapped, not generating images")
		return nil
	}
	var ftol lattice.Vec3
	for d, length := range [3]float64{L.A, L.B, L.C} {
		if L.PBC[d] && length > 0 && !math.IsInf(length, 0) {
			ftol[d] = tol / length
		}
	}
	seen := make(map[imageKey]bool, len(fracs))
	for i, f := range fracs {
		seen[newImageKey(f, &S.Sites[i])] = true
	}
	var images []ImageAtom
	for i, f := range fracs {
		var axes []int
		var shift lattice.Vec3
		for d := 0; d < 3; d++ {
			switch {
			case math.Abs(f[d]) < ftol[d]:
				shift[d] = 1
			case math.Abs(1-f[d]) < ftol[d]:
				shift[d] = -1
			default:
				continue
			}
			axes = append(axes, d)
		}
		//every non-empty subset of the axes at a boundary
		for mask := 1; mask < 1<<len(axes); mask++ {
			abc := f
			for j, d := range axes {
				if mask&(1<<j) != 0 {
					abc[d] += shift[d]
				}
			}
			k := newImageKey(abc, &S.Sites[i])
			if seen[k] {
				continue
			}
			seen[k] = true
			images = append(images, ImageAtom{SiteIndex: i, ABC: abc, XYZ: L.FracToCart(abc)})
		}
	}
	return images
}

// PBCImageSites returns a new structure with the sites of S followed by the
// image atoms FindImageAtoms finds for it. Each image site carries the index of
// its original in the "orig_site_idx" property. A nil S gives nil.
func PBCImageSites(S *Structure, opts ...ImageOptions) *Structure {
	if S == nil {
		return nil
	}
	R := S.Copy()
	images := FindImageAtoms(S, opts...)
	if len(images) == 0 {
		return R
	}
	R.Sites = make([]Site, len(S.Sites), len(S.Sites)+len(images))
	copy(R.Sites, S.Sites)
	for _, im := range images {
		s := S.Sites[im.SiteIndex].withProperties("orig_site_idx", im.SiteIndex)
		s.ABC = vecPtr(im.ABC)
		s.XYZ = im.XYZ
		R.Sites = append(R.Sites, s)
	}
	return R
}
