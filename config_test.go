/*
 * config_test.go, part of gocrystal.
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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(Te *testing.T, content string) string {
	Te.Helper()
	path := filepath.Join(Te.TempDir(), "gocrystal.yaml")
	require.NoError(Te, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(Te *testing.T) {
	cfg := DefaultConfig()
	assert.True(Te, cfg.CIF.WrapFrac)
	assert.False(Te, cfg.CIF.Strict)
	assert.Equal(Te, PhonopyAuto, cfg.Phonopy.CellType)
	assert.Equal(Te, DefaultImageTolerance, cfg.Images.Tolerance)
	assert.Empty(Te, cfg.Supercell)
}

func TestLoadConfig(Te *testing.T) {
	path := writeConfig(Te, `
cif:
  strict: true
phonopy:
  cell_type: unit_cell
supercell: 2x2x1
`)
	cfg, err := LoadConfig(path)
	require.NoError(Te, err)
	assert.True(Te, cfg.CIF.Strict)
	//missing keys keep their defaults.
	assert.True(Te, cfg.CIF.WrapFrac)
	assert.Equal(Te, DefaultImageTolerance, cfg.Images.Tolerance)
	assert.Equal(Te, PhonopyUnit, cfg.Phonopy.CellType)
	assert.Equal(Te, "2x2x1", cfg.Supercell)

	S, err := ParseStructureFile(phonopyNaCl, "phonopy.yaml", cfg)
	require.NoError(Te, err)
	assert.Equal(Te, 3, S.Len())
}

func TestLoadConfigErrors(Te *testing.T) {
	_, err := LoadConfig(filepath.Join(Te.TempDir(), "nope.yaml"))
	assert.ErrorIs(Te, err, os.ErrNotExist)

	_, err = LoadConfig(writeConfig(Te, "cif: [1, 2"))
	assert.Error(Te, err)

	_, err = LoadConfig(writeConfig(Te, "supercell: 2x0x1\n"))
	assert.Error(Te, err)
}
