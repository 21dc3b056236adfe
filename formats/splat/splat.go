// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package splat implements the .splat codec: a headerless array of
// fixed 32-byte records with float32 positions and linear scales,
// 8-bit color/opacity, and an 8-bit [w,x,y,z] quaternion.
package splat

import (
	"github.com/chewxy/math32"

	"github.com/gaussio/gaussio/base/binx"
	"github.com/gaussio/gaussio/formats"
	"github.com/gaussio/gaussio/gauss"
)

// FormatName is the registry extension for this codec.
const FormatName = "splat"

const bytesPerSplat = 32

// Reader decodes .splat files.
type Reader struct{}

// NewReader returns the splat reader.
func NewReader() *Reader { return &Reader{} }

var _ formats.Reader = (*Reader)(nil)

// Read decodes a .splat buffer. The file size must be a multiple of
// 32 bytes.
func (*Reader) Read(data []byte, opts *formats.ReadOptions) (c *gauss.Cloud, err error) {
	defer formats.Recover(&err, FormatName)

	if len(data) == 0 {
		return nil, formats.Errorf(formats.EmptyInput, FormatName, "empty input")
	}
	if len(data)%bytesPerSplat != 0 {
		return nil, formats.Errorf(formats.BadFormat, FormatName, "file size %d is not a multiple of %d bytes", len(data), bytesPerSplat)
	}
	n := len(data) / bytesPerSplat

	c = &gauss.Cloud{Meta: gauss.Metadata{SourceFormat: FormatName}}
	c.Init(n, 0) // no higher-order SH in this format

	for i := 0; i < n; i++ {
		rec := data[i*bytesPerSplat : (i+1)*bytesPerSplat]

		for d := 0; d < 3; d++ {
			c.Positions[i*3+d] = binx.F32(rec, d*4)
			c.Scales[i*3+d] = gauss.LogScale(binx.F32(rec, 12+d*4))
			c.Colors[i*3+d] = gauss.ByteToDC(rec[24+d])
		}
		c.Alphas[i] = gauss.ByteToAlpha(rec[27])

		// Disk stores the quaternion as [w,x,y,z] bytes; recover and
		// renormalize, substituting identity on zero length.
		var q [4]float32
		norm := float32(0)
		for d := 0; d < 4; d++ {
			q[d] = (float32(rec[28+d]) - 128) / 128
			norm += q[d] * q[d]
		}
		norm = math32.Sqrt(norm)
		if norm > 0 {
			for d := 0; d < 4; d++ {
				c.Rotations[i*4+d] = q[d] / norm
			}
		} else {
			c.Rotations[i*4+0] = 1
		}
	}

	if err := formats.FinishRead(FormatName, c, opts); err != nil {
		return nil, err
	}
	return c, nil
}

// Writer encodes .splat files.
type Writer struct{}

// NewWriter returns the splat writer.
func NewWriter() *Writer { return &Writer{} }

var _ formats.Writer = (*Writer)(nil)

// Write encodes c as a .splat buffer. Higher-order SH coefficients
// are dropped; the format does not carry them.
func (*Writer) Write(c *gauss.Cloud, opts *formats.WriteOptions) (out []byte, err error) {
	defer formats.Recover(&err, FormatName)

	if err := formats.BeginWrite(FormatName, c, opts); err != nil {
		return nil, err
	}
	n := int(c.NumPoints)
	if n == 0 {
		return nil, formats.Errorf(formats.CodecInternal, FormatName, "no points to write")
	}
	if len(c.Positions) != 3*n || len(c.Scales) != 3*n || len(c.Rotations) != 4*n ||
		len(c.Alphas) != n || len(c.Colors) != 3*n {
		return nil, formats.Errorf(formats.InconsistentCounts, FormatName, "inconsistent data sizes")
	}

	out = make([]byte, n*bytesPerSplat)
	for i := 0; i < n; i++ {
		rec := out[i*bytesPerSplat:]

		for d := 0; d < 3; d++ {
			binx.PutF32(rec, d*4, c.Positions[i*3+d])
			binx.PutF32(rec, 12+d*4, math32.Exp(c.Scales[i*3+d]))
			rec[24+d] = gauss.ColorByte(c.Colors[i*3+d])
		}
		rec[27] = gauss.AlphaByte(c.Alphas[i])

		var q [4]float32
		norm := float32(0)
		for d := 0; d < 4; d++ {
			q[d] = c.Rotations[i*4+d]
			norm += q[d] * q[d]
		}
		norm = math32.Sqrt(norm)
		if norm > 1e-8 {
			for d := 0; d < 4; d++ {
				q[d] /= norm
			}
		} else {
			q = [4]float32{1, 0, 0, 0}
		}
		for d := 0; d < 4; d++ {
			v := math32.Round(q[d]*128 + 128)
			rec[28+d] = uint8(math32.Max(0, math32.Min(255, v)))
		}
	}
	return out, nil
}
