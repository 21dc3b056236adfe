// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formats

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies codec failures.
type Kind int32

const (
	// Unspecified is the zero Kind; no codec reports it.
	Unspecified Kind = iota

	// EmptyInput: a nil or zero-length buffer was passed to a reader.
	EmptyInput

	// BadMagic: the first line or bytes do not match the format
	// signature.
	BadMagic

	// BadFormat: the header declares an unsupported encoding or is
	// missing a mandatory field.
	BadFormat

	// Truncated: declared sizes exceed the buffer length.
	Truncated

	// SizeMismatch: decoded array lengths violate the cloud
	// invariants.
	SizeMismatch

	// NonFinite: the strict-mode finiteness sweep failed.
	NonFinite

	// UnsupportedVariant: a version or compression mode outside the
	// supported set.
	UnsupportedVariant

	// InconsistentCounts: on write, cloud array shapes disagree with
	// NumPoints.
	InconsistentCounts

	// CodecInternal: any other format-specific decode or encode
	// failure.
	CodecInternal
)

func (k Kind) String() string {
	switch k {
	case EmptyInput:
		return "empty input"
	case BadMagic:
		return "bad magic"
	case BadFormat:
		return "bad format"
	case Truncated:
		return "truncated"
	case SizeMismatch:
		return "size mismatch"
	case NonFinite:
		return "non-finite"
	case UnsupportedVariant:
		return "unsupported variant"
	case InconsistentCounts:
		return "inconsistent counts"
	case CodecInternal:
		return "codec internal"
	default:
		return "unspecified"
	}
}

// Error is the error value every codec surfaces: a [Kind], the short
// name of the format that failed, and the underlying cause.
type Error struct {
	Kind   Kind
	Format string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Format, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an [Error] with a formatted message.
func Errorf(kind Kind, format, msgf string, args ...any) *Error {
	return &Error{Kind: kind, Format: format, Err: errors.Errorf(msgf, args...)}
}

// WrapErr builds an [Error] around an underlying cause.
func WrapErr(kind Kind, format string, err error, msg string) *Error {
	return &Error{Kind: kind, Format: format, Err: errors.Wrap(err, msg)}
}

// KindOf extracts the [Kind] from err, or Unspecified when err is not
// a codec error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unspecified
}

// Recover converts a panic from an underlying subroutine into a
// CodecInternal error. Codecs install it with defer at their
// boundary so no unwind crosses it.
func Recover(errp *error, format string) {
	if r := recover(); r != nil {
		*errp = Errorf(CodecInternal, format, "%v", r)
	}
}
