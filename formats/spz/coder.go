// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spz

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/gaussio/gaussio/base/binx"
)

// The embedded coder: a gzip stream over a fixed little-endian
// layout. The shim in spz.go treats it as a black box with one
// contract: rotations on this side are [x,y,z,w] per point, and
// packing then unpacking the same payload is byte-exact.

var coderMagic = [4]byte{'g', 's', 'p', 'z'}

const coderVersion = 1

const flagAntialiased = 1 << 0

// payload is the coder-side view of a cloud. Rotations are [x,y,z,w].
type payload struct {
	numPoints   int32
	shDegree    int
	antialiased bool

	positions []float32
	scales    []float32
	rotations []float32
	alphas    []float32
	colors    []float32
	sh        []float32
}

func appendAll(b []byte, vals []float32) []byte {
	for _, v := range vals {
		b = binx.AppendF32(b, v)
	}
	return b
}

// pack serializes and gzips p. The gzip header carries no mod time or
// name, so identical payloads produce identical bytes.
func pack(p *payload) ([]byte, error) {
	raw := make([]byte, 0, 16+4*(len(p.positions)+len(p.scales)+len(p.rotations)+len(p.alphas)+len(p.colors)+len(p.sh)))
	raw = append(raw, coderMagic[:]...)
	raw = binx.AppendU32(raw, coderVersion)
	raw = binx.AppendU32(raw, uint32(p.numPoints))
	flags := uint8(0)
	if p.antialiased {
		flags |= flagAntialiased
	}
	raw = append(raw, uint8(p.shDegree), flags, 0, 0)

	raw = appendAll(raw, p.positions)
	raw = appendAll(raw, p.scales)
	raw = appendAll(raw, p.rotations)
	raw = appendAll(raw, p.alphas)
	raw = appendAll(raw, p.colors)
	raw = appendAll(raw, p.sh)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, errors.Wrap(err, "compress payload")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "compress payload")
	}
	return buf.Bytes(), nil
}

func readAll(raw []byte, off *int, n int) ([]float32, error) {
	if err := binx.Check(raw, *off, n*4); err != nil {
		return nil, err
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = binx.F32(raw, *off+i*4)
	}
	*off += n * 4
	return out, nil
}

// unpack gunzips and deserializes a coder stream.
func unpack(data []byte) (*payload, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decompress payload")
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, errors.Wrap(err, "decompress payload")
	}

	if len(raw) < 16 || !bytes.Equal(raw[:4], coderMagic[:]) {
		return nil, errors.New("bad coder magic")
	}
	if v := binx.U32(raw, 4); v != coderVersion {
		return nil, errors.Errorf("unsupported coder version %d", v)
	}
	p := &payload{
		numPoints:   int32(binx.U32(raw, 8)),
		shDegree:    int(raw[12]),
		antialiased: raw[13]&flagAntialiased != 0,
	}
	if p.numPoints < 0 || p.shDegree > 3 {
		return nil, errors.Errorf("invalid header: %d points, degree %d", p.numPoints, p.shDegree)
	}
	n := int(p.numPoints)
	perChannel := 0
	if p.shDegree > 0 {
		perChannel = (p.shDegree+1)*(p.shDegree+1) - 1
	}

	off := 16
	if p.positions, err = readAll(raw, &off, n*3); err != nil {
		return nil, errors.Wrap(err, "positions")
	}
	if p.scales, err = readAll(raw, &off, n*3); err != nil {
		return nil, errors.Wrap(err, "scales")
	}
	if p.rotations, err = readAll(raw, &off, n*4); err != nil {
		return nil, errors.Wrap(err, "rotations")
	}
	if p.alphas, err = readAll(raw, &off, n); err != nil {
		return nil, errors.Wrap(err, "alphas")
	}
	if p.colors, err = readAll(raw, &off, n*3); err != nil {
		return nil, errors.Wrap(err, "colors")
	}
	if p.sh, err = readAll(raw, &off, n*perChannel*3); err != nil {
		return nil, errors.Wrap(err, "sh")
	}
	return p, nil
}
