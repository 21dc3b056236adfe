// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package binx provides little-endian byte access for the splat codecs:
// offset reads and writes for the fixed-width integer and float types,
// IEEE-754 half-precision conversion, and the unorm / smallest-three
// bit-packing primitives shared by the compressed formats.
//
// These are the only routines in the module that read or write raw
// widths; every call asserts its bounds on entry, so the codecs above
// can reason about buffer lengths in whole-block units.
package binx

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Check returns an error if the region [off, off+n) does not lie
// within b. Codecs use it to validate a whole block before decoding.
func Check(b []byte, off, n int) error {
	if off < 0 || n < 0 || off+n > len(b) {
		return fmt.Errorf("binx: read of %d bytes at offset %d exceeds buffer of %d", n, off, len(b))
	}
	return nil
}

// U16 reads a little-endian uint16 at off.
func U16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off : off+2])
}

// U32 reads a little-endian uint32 at off.
func U32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// I16 reads a little-endian int16 at off.
func I16(b []byte, off int) int16 {
	return int16(U16(b, off))
}

// F32 reads a little-endian IEEE-754 binary32 at off.
func F32(b []byte, off int) float32 {
	return math.Float32frombits(U32(b, off))
}

// F16 reads a little-endian half-precision float at off,
// widened to float32.
func F16(b []byte, off int) float32 {
	return Float16frombits(U16(b, off))
}

// PutU16 writes a little-endian uint16 at off.
func PutU16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:off+2], v)
}

// PutU32 writes a little-endian uint32 at off.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// PutF32 writes a little-endian IEEE-754 binary32 at off.
func PutF32(b []byte, off int, v float32) {
	PutU32(b, off, math.Float32bits(v))
}

// PutF16 writes v at off as a little-endian half-precision float.
func PutF16(b []byte, off int, v float32) {
	PutU16(b, off, Float16bits(v))
}

// AppendU32 appends a little-endian uint32 to b.
func AppendU32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

// AppendF32 appends a little-endian IEEE-754 binary32 to b.
func AppendF32(b []byte, v float32) []byte {
	return AppendU32(b, math.Float32bits(v))
}
