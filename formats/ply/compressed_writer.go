// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ply

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"github.com/gaussio/gaussio/base/binx"
	"github.com/gaussio/gaussio/formats"
	"github.com/gaussio/gaussio/gauss"
)

// CompressedWriter encodes the chunked compressed PLY variant.
type CompressedWriter struct{}

// NewCompressedWriter returns the compressed PLY writer.
func NewCompressedWriter() *CompressedWriter { return &CompressedWriter{} }

var _ formats.Writer = (*CompressedWriter)(nil)

// normalize maps v into [0,1] within [min,max], collapsing degenerate
// ranges to 0.
func normalize(v, min, max float32) float32 {
	if v <= min {
		return 0
	}
	if v >= max {
		return 1
	}
	if max-min < 1e-5 {
		return 0
	}
	return (v - min) / (max - min)
}

// minMax tracks a running per-channel range.
type minMax struct{ min, max float32 }

func (m *minMax) reset()          { m.min, m.max = math32.MaxFloat32, -math32.MaxFloat32 }
func (m *minMax) fit(v float32)   { m.min = math32.Min(m.min, v); m.max = math32.Max(m.max, v) }
func (m *minMax) clamp(l float32) { m.min = clampAbs(m.min, l); m.max = clampAbs(m.max, l) }

func clampAbs(v, l float32) float32 { return math32.Max(-l, math32.Min(l, v)) }

// Write encodes c as a compressed PLY buffer. Points are grouped into
// chunks of 256 in input order; the final partial chunk replicates
// its last point so the min/max fit covers a full row, without
// emitting the padded vertices.
func (*CompressedWriter) Write(c *gauss.Cloud, opts *formats.WriteOptions) (out []byte, err error) {
	defer formats.Recover(&err, CompressedFormatName)

	if err := formats.BeginWrite(CompressedFormatName, c, opts); err != nil {
		return nil, err
	}
	n := int(c.NumPoints)
	if n == 0 {
		return nil, formats.Errorf(formats.CodecInternal, CompressedFormatName, "no points to write")
	}
	if len(c.Positions) != 3*n || len(c.Scales) != 3*n || len(c.Rotations) != 4*n ||
		len(c.Alphas) != n || len(c.Colors) != 3*n {
		return nil, formats.Errorf(formats.InconsistentCounts, CompressedFormatName, "inconsistent data sizes")
	}

	numChunks := chunkCountFor(n)
	shDim := gauss.SHDim(c.Meta.SHDegree)
	shCoeffs := shDim * 3
	if shCoeffs > 0 && len(c.SH) != n*shCoeffs {
		return nil, formats.Errorf(formats.InconsistentCounts, CompressedFormatName, "inconsistent SH data size")
	}

	chunkData := make([]byte, 0, numChunks*18*4)
	packedData := make([]byte, 0, n*4*4)
	var shData []byte
	if shCoeffs > 0 {
		shData = make([]byte, n*shCoeffs)
	}

	// Per-chunk staging, padded to a full chunk by replicating the
	// last valid point.
	pos := make([]float32, chunkSize*3)
	scale := make([]float32, chunkSize*3)
	color := make([]float32, chunkSize*3)
	rot := make([]float32, chunkSize*4)

	for chunkIdx := 0; chunkIdx < numChunks; chunkIdx++ {
		start := chunkIdx * chunkSize
		count := min(chunkSize, n-start)

		for i := 0; i < chunkSize; i++ {
			src := start + min(i, count-1)
			for d := 0; d < 3; d++ {
				pos[i*3+d] = c.Positions[src*3+d]
				scale[i*3+d] = c.Scales[src*3+d]
				color[i*3+d] = gauss.DCToColor(c.Colors[src*3+d])
			}
			for d := 0; d < 4; d++ {
				rot[i*4+d] = c.Rotations[src*4+d]
			}
		}

		// Chunk-wide ranges; scales clamp to +-20 before
		// normalization.
		var px, py, pz, sx, sy, sz, cr, cg, cb minMax
		for _, m := range []*minMax{&px, &py, &pz, &sx, &sy, &sz, &cr, &cg, &cb} {
			m.reset()
		}
		for i := 0; i < chunkSize; i++ {
			px.fit(pos[i*3+0])
			py.fit(pos[i*3+1])
			pz.fit(pos[i*3+2])
			sx.fit(scale[i*3+0])
			sy.fit(scale[i*3+1])
			sz.fit(scale[i*3+2])
			cr.fit(color[i*3+0])
			cg.fit(color[i*3+1])
			cb.fit(color[i*3+2])
		}
		sx.clamp(20)
		sy.clamp(20)
		sz.clamp(20)

		for _, v := range []float32{
			px.min, py.min, pz.min, px.max, py.max, pz.max,
			sx.min, sy.min, sz.min, sx.max, sy.max, sz.max,
			cr.min, cg.min, cb.min, cr.max, cg.max, cb.max,
		} {
			chunkData = binx.AppendF32(chunkData, v)
		}

		for i := 0; i < count; i++ {
			idx := start + i
			packedData = binx.AppendU32(packedData, binx.Pack111011(
				normalize(pos[i*3+0], px.min, px.max),
				normalize(pos[i*3+1], py.min, py.max),
				normalize(pos[i*3+2], pz.min, pz.max)))
			packedData = binx.AppendU32(packedData, binx.PackQuatSmallest3(
				rot[i*4+0], rot[i*4+1], rot[i*4+2], rot[i*4+3]))
			packedData = binx.AppendU32(packedData, binx.Pack111011(
				normalize(scale[i*3+0], sx.min, sx.max),
				normalize(scale[i*3+1], sy.min, sy.max),
				normalize(scale[i*3+2], sz.min, sz.max)))
			packedData = binx.AppendU32(packedData, binx.Pack8888(
				normalize(color[i*3+0], cr.min, cr.max),
				normalize(color[i*3+1], cg.min, cg.max),
				normalize(color[i*3+2], cb.min, cb.max),
				gauss.Sigmoid(c.Alphas[idx])))

			// The sh element is channel-first on disk.
			if shCoeffs > 0 {
				row := shData[idx*shCoeffs:]
				for ch := 0; ch < 3; ch++ {
					for j := 0; j < shDim; j++ {
						v := c.SH[(idx*shDim+j)*3+ch]/8 + 0.5
						row[ch*shDim+j] = uint8(math32.Max(0, math32.Min(255, math32.Floor(v*256))))
					}
				}
			}
		}
	}

	var header strings.Builder
	header.WriteString(magicLine + "\n")
	header.WriteString(formatLine + "\n")
	header.WriteString("comment Generated by gaussio\n")
	fmt.Fprintf(&header, "element chunk %d\n", numChunks)
	for _, p := range chunkProps {
		header.WriteString("property float " + p + "\n")
	}
	fmt.Fprintf(&header, "element vertex %d\n", n)
	for _, p := range vertexProps {
		header.WriteString("property uint " + p + "\n")
	}
	if shCoeffs > 0 {
		fmt.Fprintf(&header, "element sh %d\n", n)
		for i := 0; i < shCoeffs; i++ {
			fmt.Fprintf(&header, "property uchar f_rest_%d\n", i)
		}
	}
	header.WriteString(endHeader + "\n")

	out = make([]byte, 0, header.Len()+len(chunkData)+len(packedData)+len(shData))
	out = append(out, header.String()...)
	out = append(out, chunkData...)
	out = append(out, packedData...)
	out = append(out, shData...)
	return out, nil
}
