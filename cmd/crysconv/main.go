/*
 * main.go, part of gocrystal.
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

// Command crysconv reads a structure file in any supported format, optionally
// builds a supercell and adds periodic image atoms, and writes the result as
// JSON, extended XYZ, POSCAR or CIF.
package main

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	crystal "github.com/rmera/gocrystal"
	"github.com/rmera/gocrystal/source"
)

// LoggerOptions configure the logger of the tool.
type LoggerOptions struct {
	Level  string `long:"log-level"  env:"LOG_LEVEL"  description:"Log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info"`
	Format string `long:"log-format" env:"LOG_FORMAT" description:"Log format" choice:"console" choice:"json" default:"console"`
}

// Setup sets the global and the package loggers.
func (o LoggerOptions) Setup() {
	level, err := zerolog.ParseLevel(o.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var out io.Writer = os.Stderr
	if o.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	crystal.SetLogger(logger.With().Str("pkg", "crystal").Logger())
}

type Options struct {
	Logger LoggerOptions `group:"Logger options"`

	ConfigFile string  `short:"c" long:"config"    env:"CRYSCONV_CONFIG" description:"Path to YAML configuration file"`
	Output     string  `short:"o" long:"output"    description:"Output file (default: standard output)"`
	Format     string  `short:"f" long:"format"    description:"Output format" choice:"json" choice:"xyz" choice:"poscar" choice:"cif" default:"json"`
	Supercell  string  `short:"s" long:"supercell" description:"Supercell scaling, e.g. 2x2x2"`
	Images     bool    `short:"i" long:"images"    description:"Add periodic image atoms"`
	Tolerance  float64 `short:"t" long:"tolerance" description:"Image atom tolerance in Angstrom (default from config)"`
	Nested     bool    `short:"n" long:"nested"    description:"Search nested JSON documents for a structure"`

	Args struct {
		Input string `positional-arg-name:"input" description:"Path or blob URL (file://, mem://, s3://...) of the structure file" required:"true"`
	} `positional-args:"yes"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg := crystal.DefaultConfig()
	if opts.ConfigFile != "" {
		var err error
		cfg, err = crystal.LoadConfig(opts.ConfigFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
	}
	if opts.Supercell != "" {
		cfg.Supercell = opts.Supercell
	}
	if opts.Tolerance > 0 {
		cfg.Images.Tolerance = opts.Tolerance
	}
	if opts.Nested {
		cfg.Nested = true
	}

	if err := run(context.Background(), opts, cfg); err != nil {
		log.Fatal().Err(err).Str("input", opts.Args.Input).Msg("Conversion failed")
	}
}

func run(ctx context.Context, opts Options, cfg *crystal.Config) error {
	f, err := source.Load(ctx, opts.Args.Input)
	if err != nil {
		return err
	}
	parse := crystal.ParseStructureFile
	if cfg.Nested {
		parse = crystal.ParseAnyStructure
	}
	S, err := parse(f.Content(), f.Name, cfg)
	if err != nil {
		return errors.Wrapf(err, "reading %s", f.Name)
	}
	ev := log.Info().
		Str("file", f.Name).
		Int("sites", S.Len()).
		Bool("periodic", S.Periodic()).
		Str("formula", S.Formula())
	if d, ok := S.Density(); ok {
		ev = ev.Float64("density", d)
	}
	ev.Msg("Structure read")

	if cfg.Supercell != "" {
		S, err = crystal.MakeSupercell(S, cfg.Supercell)
		if err != nil {
			return errors.Wrap(err, "building supercell")
		}
		log.Info().Str("scaling", cfg.Supercell).Int("sites", S.Len()).Msg("Supercell built")
	}
	if opts.Images {
		n := S.Len()
		S = crystal.PBCImageSites(S, cfg.Images)
		log.Info().Int("images", S.Len()-n).Msg("Image atoms added")
	}

	var out io.Writer = os.Stdout
	if opts.Output != "" {
		file, err := os.Create(opts.Output)
		if err != nil {
			return errors.Wrap(err, "creating output file")
		}
		defer file.Close()
		out = file
	}
	write := map[string]func(io.Writer, *crystal.Structure) error{
		"json":   crystal.WriteJSON,
		"xyz":    crystal.WriteXYZ,
		"poscar": crystal.WritePOSCAR,
		"cif":    crystal.WriteCIF,
	}[strings.ToLower(opts.Format)]
	if err := write(out, S); err != nil {
		return errors.Wrapf(err, "writing %s", opts.Format)
	}
	return nil
}
