// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spz implements the .spz codec as a thin shim over an
// embedded coder. The shim owns exactly one transform: the coder
// stores quaternions as [x,y,z,w] while the cloud stores [w,x,y,z].
// Every other field passes through verbatim, so a round trip through
// a deterministic coder is byte-exact.
package spz

import (
	"github.com/gaussio/gaussio/formats"
	"github.com/gaussio/gaussio/gauss"
)

// FormatName is the registry extension for this codec.
const FormatName = "spz"

// Reader decodes .spz files.
type Reader struct{}

// NewReader returns the spz reader.
func NewReader() *Reader { return &Reader{} }

var _ formats.Reader = (*Reader)(nil)

// Read decodes an .spz buffer into a cloud.
func (*Reader) Read(data []byte, opts *formats.ReadOptions) (c *gauss.Cloud, err error) {
	defer formats.Recover(&err, FormatName)

	if len(data) == 0 {
		return nil, formats.Errorf(formats.EmptyInput, FormatName, "empty input")
	}
	p, err := unpack(data)
	if err != nil {
		return nil, &formats.Error{Kind: formats.CodecInternal, Format: FormatName, Err: err}
	}

	c = &gauss.Cloud{
		NumPoints: p.numPoints,
		Positions: p.positions,
		Scales:    p.scales,
		Alphas:    p.alphas,
		Colors:    p.colors,
		SH:        p.sh,
		Meta: gauss.Metadata{
			SHDegree:     p.shDegree,
			Antialiased:  p.antialiased,
			SourceFormat: FormatName,
		},
	}
	c.Rotations = make([]float32, len(p.rotations))
	for i := 0; i < int(p.numPoints); i++ {
		x, y, z, w := p.rotations[i*4], p.rotations[i*4+1], p.rotations[i*4+2], p.rotations[i*4+3]
		c.Rotations[i*4+0] = w
		c.Rotations[i*4+1] = x
		c.Rotations[i*4+2] = y
		c.Rotations[i*4+3] = z
	}

	if err := formats.FinishRead(FormatName, c, opts); err != nil {
		return nil, err
	}
	return c, nil
}

// Writer encodes .spz files.
type Writer struct{}

// NewWriter returns the spz writer.
func NewWriter() *Writer { return &Writer{} }

var _ formats.Writer = (*Writer)(nil)

// Write encodes c as an .spz buffer.
func (*Writer) Write(c *gauss.Cloud, opts *formats.WriteOptions) (out []byte, err error) {
	defer formats.Recover(&err, FormatName)

	if err := formats.BeginWrite(FormatName, c, opts); err != nil {
		return nil, err
	}

	p := &payload{
		numPoints:   c.NumPoints,
		shDegree:    c.Meta.SHDegree,
		antialiased: c.Meta.Antialiased,
		positions:   c.Positions,
		scales:      c.Scales,
		alphas:      c.Alphas,
		colors:      c.Colors,
		sh:          c.SH,
	}
	p.rotations = make([]float32, len(c.Rotations))
	for i := 0; i < int(c.NumPoints); i++ {
		w, x, y, z := c.Rotations[i*4], c.Rotations[i*4+1], c.Rotations[i*4+2], c.Rotations[i*4+3]
		p.rotations[i*4+0] = x
		p.rotations[i*4+1] = y
		p.rotations[i*4+2] = z
		p.rotations[i*4+3] = w
	}

	out, err = pack(p)
	if err != nil {
		return nil, &formats.Error{Kind: formats.CodecInternal, Format: FormatName, Err: err}
	}
	return out, nil
}
