/*
 * config.go, part of gocrystal.
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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PhonopyOptions control the phonopy reader.
type PhonopyOptions struct {
	CellType PhonopyCellType `yaml:"cell_type"`
}

// Config gathers the options of the readers and of the geometry functions.
// It can be read from a YAML file with LoadConfig.
type Config struct {
	CIF     CIFOptions     `yaml:"cif"`
	Phonopy PhonopyOptions `yaml:"phonopy"`
	Images  ImageOptions   `yaml:"images"`
	//Supercell is a scaling such as "2x2x2", applied by the command line tool. Empty means none.
	Supercell string `yaml:"supercell,omitempty"`
	//Nested makes the command line tool search nested JSON documents for structures.
	Nested bool `yaml:"nested,omitempty"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() *Config {
	return &Config{
		CIF:     DefaultCIFOptions(),
		Phonopy: PhonopyOptions{CellType: PhonopyAuto},
		Images:  ImageOptions{Tolerance: DefaultImageTolerance},
	}
}

// LoadConfig reads a YAML configuration file. Options missing from the
// file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Supercell != "" {
		if _, err := ParseSupercellScaling(cfg.Supercell); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	return cfg, nil
}

// firstConfig returns the first non-nil config in cfg, or the default one.
func firstConfig(cfg []*Config) *Config {
	for _, c := range cfg {
		if c != nil {
			return c
		}
	}
	return DefaultConfig()
}
