// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ksplat

import (
	"github.com/chewxy/math32"

	"github.com/gaussio/gaussio/base/binx"
	"github.com/gaussio/gaussio/formats"
	"github.com/gaussio/gaussio/gauss"
)

// Writer encodes .ksplat files as a single mode-0 (full precision)
// section with no bucketing.
type Writer struct{}

// NewWriter returns the ksplat writer.
func NewWriter() *Writer { return &Writer{} }

var _ formats.Writer = (*Writer)(nil)

// Write encodes c as a .ksplat buffer.
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

	degree := c.Meta.SHDegree
	if degree < 0 || degree > 3 {
		return nil, formats.Errorf(formats.UnsupportedVariant, FormatName, "harmonics degree %d out of range", degree)
	}
	shPerPoint := gauss.SHCoeffsPerPoint(degree)
	if len(c.SH) != n*shPerPoint && len(c.SH) != 0 {
		return nil, formats.Errorf(formats.InconsistentCounts, FormatName, "inconsistent SH data size")
	}

	lay := &layouts[0]
	bytesPerSplat := lay.bytesPerSplat(degree)
	const maxSections = 1

	out = make([]byte, mainHeaderSize+maxSections*sectionHeaderSize+bytesPerSplat*n)

	// Main header.
	out[0] = 0 // major version
	out[1] = 1 // minor version
	binx.PutU32(out, 4, maxSections)
	binx.PutU32(out, 16, uint32(n))
	binx.PutU16(out, 20, 0) // compression mode 0
	binx.PutF32(out, 36, defaultMinHarmonics)
	binx.PutF32(out, 40, defaultMaxHarmonics)

	// Section header: one unbucketed section holding every splat.
	sec := out[mainHeaderSize:]
	binx.PutU32(sec, 0, uint32(n))  // splat count
	binx.PutU32(sec, 4, uint32(n))  // max splats
	binx.PutU32(sec, 8, uint32(n))  // bucket capacity
	binx.PutU32(sec, 12, 0)         // bucket count
	binx.PutF32(sec, 16, 1.0)       // spatial block size
	binx.PutU16(sec, 20, 0)         // bucket storage size
	binx.PutU32(sec, 24, 1)         // quantization range
	binx.PutU32(sec, 32, 0)         // full buckets
	binx.PutU32(sec, 36, 0)         // partial buckets
	binx.PutU16(sec, 40, uint16(degree))

	splats := out[mainHeaderSize+maxSections*sectionHeaderSize:]
	coeffsPerChannel := harmonicsComponents[degree] / 3

	for i := 0; i < n; i++ {
		rec := splats[i*bytesPerSplat:]

		for d := 0; d < 3; d++ {
			binx.PutF32(rec, d*4, c.Positions[i*3+d])
			binx.PutF32(rec, lay.scaleStart+d*4, math32.Exp(c.Scales[i*3+d]))
		}

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
			binx.PutF32(rec, lay.rotationStart+d*4, q[d])
		}

		for d := 0; d < 3; d++ {
			rec[lay.colorStart+d] = gauss.ColorByte(c.Colors[i*3+d])
		}
		rec[lay.colorStart+3] = gauss.AlphaByte(c.Alphas[i])

		// Channel-first SH on disk.
		if coeffsPerChannel > 0 && len(c.SH) > 0 {
			for ch := 0; ch < 3; ch++ {
				for j := 0; j < coeffsPerChannel; j++ {
					v := c.SH[i*shPerPoint+j*3+ch]
					binx.PutF32(rec, lay.harmonicsStart+(ch*coeffsPerChannel+j)*4, v)
				}
			}
		}
	}
	return out, nil
}
