// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ply

import (
	"fmt"
	"strings"

	"github.com/gaussio/gaussio/base/binx"
	"github.com/gaussio/gaussio/formats"
	"github.com/gaussio/gaussio/gauss"
)

// Writer encodes standard binary_little_endian PLY splat files.
type Writer struct{}

// NewWriter returns the standard PLY writer.
func NewWriter() *Writer { return &Writer{} }

var _ formats.Writer = (*Writer)(nil)

// Write encodes c as a standard PLY buffer. The column order is
// x y z, scale_0..2, rot_0..3 (as [w,x,y,z]), opacity, f_dc_0..2,
// then f_rest in channel-first order.
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

	shDim := gauss.SHDim(c.Meta.SHDegree)
	if len(c.SH) != n*shDim*3 {
		return nil, formats.Errorf(formats.InconsistentCounts, FormatName, "inconsistent SH data size")
	}

	var header strings.Builder
	header.WriteString(magicLine + "\n")
	header.WriteString(formatLine + "\n")
	header.WriteString("comment Generated by gaussio\n")
	fmt.Fprintf(&header, "element vertex %d\n", n)
	for _, name := range []string{"x", "y", "z", "scale_0", "scale_1", "scale_2",
		"rot_0", "rot_1", "rot_2", "rot_3", "opacity", "f_dc_0", "f_dc_1", "f_dc_2"} {
		header.WriteString("property float " + name + "\n")
	}
	for i := 0; i < shDim*3; i++ {
		fmt.Fprintf(&header, "property float f_rest_%d\n", i)
	}
	header.WriteString(endHeader + "\n")

	stride := 14 + shDim*3
	out = make([]byte, 0, header.Len()+n*stride*4)
	out = append(out, header.String()...)

	for i := 0; i < n; i++ {
		for d := 0; d < 3; d++ {
			out = binx.AppendF32(out, c.Positions[i*3+d])
		}
		for d := 0; d < 3; d++ {
			out = binx.AppendF32(out, c.Scales[i*3+d])
		}
		for d := 0; d < 4; d++ {
			out = binx.AppendF32(out, c.Rotations[i*4+d])
		}
		out = binx.AppendF32(out, c.Alphas[i])
		for d := 0; d < 3; d++ {
			out = binx.AppendF32(out, c.Colors[i*3+d])
		}
		// Transpose back to the channel-first disk order.
		for ch := 0; ch < 3; ch++ {
			for j := 0; j < shDim; j++ {
				out = binx.AppendF32(out, c.SH[(i*shDim+j)*3+ch])
			}
		}
	}
	return out, nil
}
