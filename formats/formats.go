// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package formats defines the reader and writer contracts shared by
// all splat format codecs, the error taxonomy they report through,
// and the registry that routes a file extension to a codec.
//
// Codecs are memory-to-memory and stateless: a reader decodes a byte
// slice into a [gauss.Cloud], a writer encodes a borrowed cloud into
// a fresh byte slice. Both may be called concurrently from any number
// of goroutines.
package formats

import (
	"github.com/pkg/errors"

	"github.com/gaussio/gaussio/gauss"
)

// ReadOptions controls decoding.
type ReadOptions struct {

	// Strict upgrades validation warnings (size mismatches, non-finite
	// values) to errors.
	Strict bool

	// Warn, if non-nil, receives non-fatal validation messages in
	// non-strict mode.
	Warn func(msg string)
}

// WriteOptions controls encoding.
type WriteOptions struct {

	// Strict upgrades validation warnings to errors.
	Strict bool

	// Warn, if non-nil, receives non-fatal validation messages in
	// non-strict mode.
	Warn func(msg string)
}

// Reader decodes one format from an in-memory buffer. Implementations
// never retain data after returning. A nil opts means non-strict.
type Reader interface {
	Read(data []byte, opts *ReadOptions) (*gauss.Cloud, error)
}

// Writer encodes one format into a fresh buffer. The cloud is
// borrowed read-only. A nil opts means non-strict.
type Writer interface {
	Write(c *gauss.Cloud, opts *WriteOptions) ([]byte, error)
}

// FinishRead validates a freshly decoded cloud. In strict mode a
// validation failure is returned as an error in format's namespace;
// otherwise it is delivered to the warning callback and nil is
// returned.
func FinishRead(format string, c *gauss.Cloud, opts *ReadOptions) error {
	var strict bool
	var warn func(string)
	if opts != nil {
		strict, warn = opts.Strict, opts.Warn
	}
	err := gauss.Validate(c, strict)
	if err == nil {
		return nil
	}
	if strict {
		return wrapValidation(format, err)
	}
	if warn != nil {
		warn(err.Error())
	}
	return nil
}

// BeginWrite validates a cloud before encoding, with the same
// strict/warn split as [FinishRead].
func BeginWrite(format string, c *gauss.Cloud, opts *WriteOptions) error {
	var strict bool
	var warn func(string)
	if opts != nil {
		strict, warn = opts.Strict, opts.Warn
	}
	err := gauss.Validate(c, strict)
	if err == nil {
		return nil
	}
	if strict {
		return wrapValidation(format, err)
	}
	if warn != nil {
		warn(err.Error())
	}
	return nil
}

func wrapValidation(format string, err error) error {
	kind := SizeMismatch
	if errors.Is(err, gauss.ErrNonFinite) {
		kind = NonFinite
	}
	return &Error{Kind: kind, Format: format, Err: err}
}
