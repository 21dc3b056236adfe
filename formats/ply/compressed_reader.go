// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ply

import (
	"github.com/gaussio/gaussio/base/binx"
	"github.com/gaussio/gaussio/formats"
	"github.com/gaussio/gaussio/gauss"
)

// CompressedReader decodes the chunked compressed PLY variant.
type CompressedReader struct{}

// NewCompressedReader returns the compressed PLY reader.
func NewCompressedReader() *CompressedReader { return &CompressedReader{} }

var _ formats.Reader = (*CompressedReader)(nil)

func lerp(a, b, t float32) float32 { return a*(1-t) + b*t }

// Read decodes a compressed PLY buffer into a cloud.
func (*CompressedReader) Read(data []byte, opts *formats.ReadOptions) (c *gauss.Cloud, err error) {
	defer formats.Recover(&err, CompressedFormatName)

	if len(data) == 0 {
		return nil, formats.Errorf(formats.EmptyInput, CompressedFormatName, "empty input")
	}

	s := &lineScanner{data: data}
	if line, ok := s.next(); !ok || line != magicLine {
		return nil, formats.Errorf(formats.BadMagic, CompressedFormatName, "not a ply file")
	}
	if line, ok := s.next(); !ok || line != formatLine {
		return nil, formats.Errorf(formats.BadFormat, CompressedFormatName, "unsupported format")
	}
	elems, ok := parseElements(s)
	if !ok {
		return nil, formats.Errorf(formats.BadFormat, CompressedFormatName, "invalid element declaration")
	}

	numChunks, numVertices, numSH, shCoeffs := 0, 0, 0, 0
	for _, e := range elems {
		switch e.name {
		case "chunk":
			numChunks = e.count
		case "vertex":
			numVertices = e.count
		case "sh":
			numSH = e.count
			shCoeffs = len(e.props)
		}
	}
	if numVertices <= 0 {
		return nil, formats.Errorf(formats.BadFormat, CompressedFormatName, "invalid vertex count")
	}
	if numChunks != chunkCountFor(numVertices) {
		return nil, formats.Errorf(formats.CodecInternal, CompressedFormatName, "chunk count mismatch: %d chunks for %d vertices", numChunks, numVertices)
	}

	payload := s.rest()
	off := 0

	chunkBytes := numChunks * 18 * 4
	if err := binx.Check(payload, off, chunkBytes); err != nil {
		return nil, formats.Errorf(formats.Truncated, CompressedFormatName, "insufficient data for chunks")
	}
	chunkData := payload[off : off+chunkBytes]
	off += chunkBytes

	vertexBytes := numVertices * 4 * 4
	if err := binx.Check(payload, off, vertexBytes); err != nil {
		return nil, formats.Errorf(formats.Truncated, CompressedFormatName, "insufficient data for vertices")
	}
	vertexData := payload[off : off+vertexBytes]
	off += vertexBytes

	var shData []byte
	if numSH > 0 && shCoeffs > 0 {
		shBytes := numSH * shCoeffs
		if err := binx.Check(payload, off, shBytes); err != nil {
			return nil, formats.Errorf(formats.Truncated, CompressedFormatName, "insufficient data for SH")
		}
		shData = payload[off : off+shBytes]
	}

	c = &gauss.Cloud{Meta: gauss.Metadata{SourceFormat: CompressedFormatName}}
	c.Init(numVertices, degreeForSHCoeffs(shCoeffs))
	if shCoeffs > 0 {
		c.SH = make([]float32, numVertices*shCoeffs)
	}

	for i := 0; i < numVertices; i++ {
		chunk := chunkData[(i/chunkSize)*18*4:]
		cf := func(k int) float32 { return binx.F32(chunk, k*4) }

		packedPosition := binx.U32(vertexData, i*16)
		packedRotation := binx.U32(vertexData, i*16+4)
		packedScale := binx.U32(vertexData, i*16+8)
		packedColor := binx.U32(vertexData, i*16+12)

		px, py, pz := binx.Unpack111011(packedPosition)
		c.Positions[i*3+0] = lerp(cf(0), cf(3), px)
		c.Positions[i*3+1] = lerp(cf(1), cf(4), py)
		c.Positions[i*3+2] = lerp(cf(2), cf(5), pz)

		w, x, y, z := binx.UnpackQuatSmallest3(packedRotation)
		c.Rotations[i*4+0] = w
		c.Rotations[i*4+1] = x
		c.Rotations[i*4+2] = y
		c.Rotations[i*4+3] = z

		sx, sy, sz := binx.Unpack111011(packedScale)
		c.Scales[i*3+0] = lerp(cf(6), cf(9), sx)
		c.Scales[i*3+1] = lerp(cf(7), cf(10), sy)
		c.Scales[i*3+2] = lerp(cf(8), cf(11), sz)

		r, g, b, a := binx.Unpack8888(packedColor)
		c.Colors[i*3+0] = gauss.ColorToDC(lerp(cf(12), cf(15), r))
		c.Colors[i*3+1] = gauss.ColorToDC(lerp(cf(13), cf(16), g))
		c.Colors[i*3+2] = gauss.ColorToDC(lerp(cf(14), cf(17), b))

		// Keep the logit finite at the byte endpoints.
		c.Alphas[i] = gauss.Logit(a, 0.001)
	}

	// The sh element is channel-first on disk; interleave per
	// coefficient, pinning byte endpoints to exact 0 and 1.
	if shCoeffs > 0 && len(shData) > 0 {
		shDim := shCoeffs / 3
		dequant := func(b uint8) float32 {
			switch b {
			case 0:
				return -0.5 * 8
			case 255:
				return 0.5 * 8
			}
			return ((float32(b)+0.5)/256 - 0.5) * 8
		}
		for i := 0; i < numVertices; i++ {
			row := shData[i*shCoeffs:]
			for j := 0; j < shDim; j++ {
				c.SH[i*shCoeffs+j*3+0] = dequant(row[j])
				c.SH[i*shCoeffs+j*3+1] = dequant(row[j+shDim])
				c.SH[i*shCoeffs+j*3+2] = dequant(row[j+2*shDim])
			}
		}
	}

	if err := formats.FinishRead(CompressedFormatName, c, opts); err != nil {
		return nil, err
	}
	return c, nil
}
