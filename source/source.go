/*
 * source.go, part of gocrystal.
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

package source

import (
	"bytes"
	"compress/bzip2"
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
)

// ErrNotFound is returned (wrapped) when the requested file does not exist.
var ErrNotFound = errors.New("file not found")

// File is a loaded, decompressed file. Name is the base name with any
// compression suffix removed, so "POSCAR.gz" becomes "POSCAR".
type File struct {
	Name string
	Data []byte
}

// Content returns the data as a string.
func (f *File) Content() string {
	return string(f.Data)
}

// Compression formats
const (
	None  = ""
	Gzip  = "gzip"
	Zstd  = "zstd"
	Bzip2 = "bzip2"
)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	zstdMagic  = []byte{0x28, 0xb5, 0x2f, 0xfd}
	bzip2Magic = []byte("BZh")
)

// compression returns the compression format of a file, judging by its name
// and by its first bytes, along with the name without the compression suffix.
func compression(name string, data []byte) (string, string, error) {
	ext := strings.ToLower(path.Ext(name))
	stripped := strings.TrimSuffix(name, path.Ext(name))
	switch ext {
	case ".gz", ".gzip":
		return Gzip, stripped, nil
	case ".zst":
		return Zstd, stripped, nil
	case ".bz2":
		return Bzip2, stripped, nil
	case ".xz", ".zip":
		return None, name, errors.Errorf("unsupported compression %s for %s", ext, name)
	}
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return Gzip, name, nil
	case bytes.HasPrefix(data, zstdMagic):
		return Zstd, name, nil
	case bytes.HasPrefix(data, bzip2Magic) && len(data) > 3 && data[3] >= '1' && data[3] <= '9':
		return Bzip2, name, nil
	}
	return None, name, nil
}

// Decompress returns the decompressed data and the name without the compression
// suffix. Data that is not compressed is returned as is.
func Decompress(name string, data []byte) (string, []byte, error) {
	format, stripped, err := compression(name, data)
	if err != nil {
		return name, nil, err
	}
	switch format {
	case Gzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return name, nil, errors.Wrapf(err, "opening gzip stream of %s", name)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return name, nil, errors.Wrapf(err, "decompressing %s", name)
		}
		return stripped, out, nil
	case Zstd:
		d, err := zstd.NewReader(nil)
		if err != nil {
			return name, nil, errors.Wrap(err, "creating zstd decoder")
		}
		defer d.Close()
		out, err := d.DecodeAll(data, nil)
		if err != nil {
			return name, nil, errors.Wrapf(err, "decompressing %s", name)
		}
		return stripped, out, nil
	case Bzip2:
		out, err := io.ReadAll(bzip2.NewReader(bytes.NewReader(data)))
		if err != nil {
			return name, nil, errors.Wrapf(err, "decompressing %s", name)
		}
		return stripped, out, nil
	}
	return name, data, nil
}

// splitURL splits a blob URL into the URL of its bucket and the key of the file.
func splitURL(location string) (string, string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", errors.Wrapf(err, "parsing %s", location)
	}
	if u.Scheme == "file" {
		dir, key := path.Split(u.Path)
		if key == "" {
			return "", "", errors.Errorf("%s does not name a file", location)
		}
		b := url.URL{Scheme: u.Scheme, Path: dir, RawQuery: u.RawQuery}
		return b.String(), key, nil
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", errors.Errorf("%s does not name a file", location)
	}
	b := url.URL{Scheme: u.Scheme, Host: u.Host, RawQuery: u.RawQuery}
	return b.String(), key, nil
}

// Load reads and decompresses the file at location, which can be a local path or
// a blob URL such as file:///data/POSCAR.gz or mem://bucket/quartz.cif.
func Load(ctx context.Context, location string) (*File, error) {
	if !strings.Contains(location, "://") {
		data, err := os.ReadFile(location)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrap(ErrNotFound, location)
			}
			return nil, errors.Wrapf(err, "reading %s", location)
		}
		return decompressed(path.Base(strings.ReplaceAll(location, `\`, "/")), data)
	}
	bucketURL, key, err := splitURL(location)
	if err != nil {
		return nil, err
	}
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "opening bucket %s", bucketURL)
	}
	defer bucket.Close()
	return LoadFromBucket(ctx, bucket, key)
}

// LoadFromBucket reads and decompresses the file key from an open bucket.
func LoadFromBucket(ctx context.Context, bucket *blob.Bucket, key string) (*File, error) {
	data, err := bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, errors.Wrap(ErrNotFound, key)
		}
		return nil, errors.Wrapf(err, "reading %s", key)
	}
	return decompressed(path.Base(key), data)
}

func decompressed(name string, data []byte) (*File, error) {
	name, data, err := Decompress(name, data)
	if err != nil {
		return nil, err
	}
	return &File{Name: name, Data: data}, nil
}
