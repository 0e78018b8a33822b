/*
NAME
  bkerr.go

DESCRIPTION
  bkerr.go defines the error type shared by every codec package in this
  module: a phase name, a byte offset, and a wrapped cause.

LICENSE
  SPDX-License-Identifier: MIT
*/

// Package bkerr provides the structured error type used by every decoder
// and encoder in this module.
package bkerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why a parse or encode operation failed.
type Kind int

const (
	// KindUnexpectedByte means a tag or command byte had no legal
	// interpretation at the current parser state.
	KindUnexpectedByte Kind = iota
	// KindTruncated means a scalar or fixed-length block read ran past
	// the end of the input.
	KindTruncated
	// KindCountOverflow means a count reserved to one byte exceeded 255.
	KindCountOverflow
	// KindInvariantViolation means a derived check failed, e.g. a voxel
	// count that didn't match the lattice volume.
	KindInvariantViolation
	// KindPaletteMissing means an indexed pixel format was converted
	// without an accompanying palette.
	KindPaletteMissing
)

func (k Kind) String() string {
	switch k {
	case KindUnexpectedByte:
		return "unexpected-byte"
	case KindTruncated:
		return "truncated"
	case KindCountOverflow:
		return "count-overflow"
	case KindInvariantViolation:
		return "invariant-violation"
	case KindPaletteMissing:
		return "palette-missing"
	default:
		return "unknown"
	}
}

// Error is returned by every decode/encode entry point in this module. It
// carries the phase in which the failure occurred, the byte offset at
// which it was detected, and the underlying cause.
type Error struct {
	Phase  string
	Offset int
	Kind   Kind
	Cause  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: offset %d: %s: %v", e.Phase, e.Offset, e.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error, wrapping cause with a stack trace via pkg/errors so
// the original call site survives in logs.
func New(phase string, offset int, kind Kind, cause error) *Error {
	return &Error{
		Phase:  phase,
		Offset: offset,
		Kind:   kind,
		Cause:  errors.WithStack(cause),
	}
}

// Newf is New with a formatted cause.
func Newf(phase string, offset int, kind Kind, format string, args ...interface{}) *Error {
	return New(phase, offset, kind, fmt.Errorf(format, args...))
}
