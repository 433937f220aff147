/*
 * errors.go, part of gocrystal.
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
	"errors"
	"fmt"
)

// Error is the error type returned by the readers and geometry functions of this package.
// Besides the message, it carries the format being read, the (1-based) line where
// the problem was found, when that makes sense, and a list of the functions the
// error went through ("decorations").
type Error struct {
	message  string
	format   string
	line     int
	deco     []string
	critical bool
}

// newError returns a critical Error. line is 0 when there is no line to blame.
func newError(format string, line int, caller, msg string, args ...any) *Error {
	return &Error{
		message:  fmt.Sprintf(msg, args...),
		format:   format,
		line:     line,
		deco:     []string{caller},
		critical: true,
	}
}

// Error returns a string with the error message.
func (err *Error) Error() string {
	switch {
	case err.format != "" && err.line > 0:
		return fmt.Sprintf("%s: line %d: %s", err.format, err.line, err.message)
	case err.format != "":
		return fmt.Sprintf("%s: %s", err.format, err.message)
	}
	return err.message
}

// Decorate adds dec to the decoration slice of the error, and returns the
// resulting slice. If dec is empty, it just returns the current slice.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Format returns the name of the file format being read when the error happened.
func (err *Error) Format() string { return err.format }

// Line returns the 1-based line number the error refers to, or 0.
func (err *Error) Line() int { return err.line }

// Critical returns true if the error is critical, false otherwise.
func (err *Error) Critical() bool { return err.critical }

// errDecorate decorates err with the caller's name if err is (or wraps) an *Error,
// and returns it. Other errors are returned untouched.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}

// Messages used for errors without extra information.
const (
	ErrNilStructure   = "nil structure"
	ErrNoLattice      = "structure has no lattice"
	ErrNoSites        = "no sites found"
	ErrSingularMatrix = "transformation matrix has a zero determinant"
	ErrUnknownFormat  = "could not determine the file format"
)
