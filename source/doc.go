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

// Package source fetches structure files from local paths and blob storage
// (gocloud.dev/blob URLs) and decompresses them, so the result can be
// handed to the readers of package crystal.
//
// The file:// and mem:// schemes are always available. Other schemes (s3://,
// gs://, azblob://) work when the program links the matching gocloud.dev
// driver, with a blank import such as
//
//	import _ "gocloud.dev/blob/s3blob"
package source
