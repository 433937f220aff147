/*
 * dispatch.go, part of gocrystal.
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
	"strings"
)

// Parser reads structures of one format.
type Parser interface {
	Format() Format
	Parse(content string) (*Structure, error)
}

type formatParser struct {
	format Format
	parse  func(content string) (*Structure, error)
}

func (p formatParser) Format() Format { return p.format }

func (p formatParser) Parse(content string) (*Structure, error) { return p.parse(content) }

// NewParser returns the parser for format f, set up with cfg (or the default
// configuration if cfg is nil).
func NewParser(f Format, cfg *Config) (Parser, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	var parse func(string) (*Structure, error)
	switch f {
	case FormatPOSCAR:
		parse = ParsePOSCAR
	case FormatXYZ:
		parse = ParseXYZ
	case FormatCIF:
		opts := cfg.CIF
		parse = func(c string) (*Structure, error) { return ParseCIF(c, opts) }
	case FormatOptimade:
		parse = ParseOptimade
	case FormatPhonopy:
		ct := cfg.Phonopy.CellType
		parse = func(c string) (*Structure, error) { return ParsePhonopy(c, ct) }
	case FormatJSON:
		parse = rootStructure
	default:
		return nil, newError(string(f), 0, "NewParser", ErrUnknownFormat)
	}
	return formatParser{format: f, parse: parse}, nil
}

func parseStructure(content, filename string, cfg *Config) (*Structure, error) {
	p, err := NewParser(DetectFormat(filename, content), cfg)
	if err != nil {
		return nil, err
	}
	return p.Parse(content)
}

// ParseStructureFile detects the format of a file from its name and content and reads
// it. filename may be empty. On failure it logs the problem and returns a nil Structure
// and the error. JSON files are only read if the document itself is a structure;
// see ParseAnyStructure.
func ParseStructureFile(content, filename string, cfg ...*Config) (*Structure, error) {
	S, err := parseStructure(content, filename, firstConfig(cfg))
	if err != nil {
		err = errDecorate(err, "ParseStructureFile")
		logger().Error().Str("filename", filename).Err(err).Msg("could not read structure")
		return nil, err
	}
	return S, nil
}

// ParseAnyStructure is like ParseStructureFile, but if the file can't be read that way
// and it is a JSON document, it also searches nested values for a structure.
func ParseAnyStructure(content, filename string, cfg ...*Config) (*Structure, error) {
	S, err := parseStructure(content, filename, firstConfig(cfg))
	if err == nil {
		return S, nil
	}
	if t := strings.TrimSpace(content); t != "" && (t[0] == '{' || t[0] == '[') {
		S, err = FindStructure(content)
		if err == nil {
			return S, nil
		}
	}
	err = errDecorate(err, "ParseAnyStructure")
	logger().Error().Str("filename", filename).Err(err).Msg("could not read structure")
	return nil, err
}
