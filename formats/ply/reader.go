// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ply

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gaussio/gaussio/base/binx"
	"github.com/gaussio/gaussio/formats"
	"github.com/gaussio/gaussio/gauss"
)

// Reader decodes standard binary_little_endian PLY splat files.
type Reader struct{}

// NewReader returns the standard PLY reader.
func NewReader() *Reader { return &Reader{} }

var _ formats.Reader = (*Reader)(nil)

// Read decodes a standard PLY buffer into a cloud.
func (*Reader) Read(data []byte, opts *formats.ReadOptions) (c *gauss.Cloud, err error) {
	defer formats.Recover(&err, FormatName)

	if len(data) == 0 {
		return nil, formats.Errorf(formats.EmptyInput, FormatName, "empty input")
	}

	s := &lineScanner{data: data}
	if line, ok := s.next(); !ok || line != magicLine {
		return nil, formats.Errorf(formats.BadMagic, FormatName, "not a ply file")
	}
	if line, ok := s.next(); !ok || line != formatLine {
		return nil, formats.Errorf(formats.BadFormat, FormatName, "unsupported format")
	}
	line, ok := s.next()
	if !ok || !strings.HasPrefix(line, "element vertex ") {
		return nil, formats.Errorf(formats.BadFormat, FormatName, "missing vertex count")
	}
	numPoints, convErr := strconv.Atoi(strings.TrimSpace(line[len("element vertex "):]))
	if convErr != nil || numPoints <= 0 {
		return nil, formats.Errorf(formats.BadFormat, FormatName, "invalid vertex count")
	}

	// Collect the property columns; only float properties are valid.
	fields := map[string]int{}
	for {
		line, ok = s.next()
		if !ok {
			return nil, formats.Errorf(formats.Truncated, FormatName, "EOF in header")
		}
		if line == endHeader {
			break
		}
		const prefix = "property float "
		if !strings.HasPrefix(line, prefix) {
			return nil, formats.Errorf(formats.BadFormat, FormatName, "unsupported property type in %q", line)
		}
		fields[line[len(prefix):]] = len(fields)
	}

	idx := func(name string) int {
		if i, ok := fields[name]; ok {
			return i
		}
		return -1
	}
	requireAll := func(what string, names ...string) ([]int, error) {
		out := make([]int, len(names))
		for i, n := range names {
			out[i] = idx(n)
			if out[i] < 0 {
				return nil, formats.Errorf(formats.BadFormat, FormatName, "missing %s field %s", what, n)
			}
		}
		return out, nil
	}

	posIdx, err := requireAll("position", "x", "y", "z")
	if err != nil {
		return nil, err
	}
	scaleIdx, err := requireAll("scale", "scale_0", "scale_1", "scale_2")
	if err != nil {
		return nil, err
	}
	rotIdx, err := requireAll("rotation", "rot_0", "rot_1", "rot_2", "rot_3")
	if err != nil {
		return nil, err
	}
	colorIdx, err := requireAll("color", "f_dc_0", "f_dc_1", "f_dc_2")
	if err != nil {
		return nil, err
	}
	alphaIdx := idx("opacity")
	if alphaIdx < 0 {
		return nil, formats.Errorf(formats.BadFormat, FormatName, "missing opacity field")
	}

	var shIdx []int
	for i := 0; ; i++ {
		v := idx(fmt.Sprintf("f_rest_%d", i))
		if v < 0 {
			break
		}
		shIdx = append(shIdx, v)
	}
	shDim := len(shIdx) / 3

	stride := len(fields)
	payload := s.rest()
	need := numPoints * stride * 4
	if len(payload) < need {
		return nil, formats.Errorf(formats.Truncated, FormatName, "insufficient data: need %d payload bytes, have %d", need, len(payload))
	}

	c = &gauss.Cloud{Meta: gauss.Metadata{SourceFormat: FormatName}}
	c.Init(numPoints, degreeForDim(shDim))
	// Keep shDim coefficients per channel (f_rest count / 3, rounded
	// down); the validator reports the mismatch when shDim is not 3,
	// 8 or 15.
	c.SH = make([]float32, numPoints*shDim*3)

	for i := 0; i < numPoints; i++ {
		row := payload[i*stride*4 : (i+1)*stride*4]
		at := func(col int) float32 { return binx.F32(row, col*4) }

		for d := 0; d < 3; d++ {
			c.Positions[i*3+d] = at(posIdx[d])
			c.Scales[i*3+d] = at(scaleIdx[d])
			c.Colors[i*3+d] = at(colorIdx[d])
		}
		for d := 0; d < 4; d++ {
			c.Rotations[i*4+d] = at(rotIdx[d])
		}
		c.Alphas[i] = at(alphaIdx)

		// On disk the SH block is channel-first: all R coefficients,
		// then G, then B. The cloud interleaves RGB per coefficient.
		for j := 0; j < shDim; j++ {
			c.SH[(i*shDim+j)*3+0] = at(shIdx[j])
			c.SH[(i*shDim+j)*3+1] = at(shIdx[j+shDim])
			c.SH[(i*shDim+j)*3+2] = at(shIdx[j+2*shDim])
		}
	}

	if err := formats.FinishRead(FormatName, c, opts); err != nil {
		return nil, err
	}
	return c, nil
}
