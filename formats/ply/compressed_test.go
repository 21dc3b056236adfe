// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ply

import (
	"bytes"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaussio/gaussio/formats"
	"github.com/gaussio/gaussio/gauss"
)

// assertQuatClose compares unit quaternions up to sign.
func assertQuatClose(t *testing.T, want, got []float32, tol float32) {
	t.Helper()
	dot := want[0]*got[0] + want[1]*got[1] + want[2]*got[2] + want[3]*got[3]
	assert.InDelta(t, 1, math32.Abs(dot), float64(tol), "want %v got %v", want, got)
}

func TestCompressedRoundTrip(t *testing.T) {
	for _, degree := range []int{0, 1, 2, 3} {
		c := testCloud(t, 600, degree) // spans 3 chunks, last one partial
		data, err := (&CompressedWriter{}).Write(c, &formats.WriteOptions{Strict: true})
		require.NoError(t, err, "degree %d", degree)

		got, err := (&CompressedReader{}).Read(data, &formats.ReadOptions{Strict: true})
		require.NoError(t, err, "degree %d", degree)
		require.Equal(t, c.NumPoints, got.NumPoints)
		assert.Equal(t, degree, got.Meta.SHDegree)

		n := int(c.NumPoints)
		for i := 0; i < n; i++ {
			chunkStart := (i / chunkSize) * chunkSize
			chunkEnd := min(chunkStart+chunkSize, n)
			for d := 0; d < 3; d++ {
				// Tolerance follows the chunk's min/max span at 10 or
				// 11 bits of resolution.
				span := func(vals []float32, stride, off int) float32 {
					lo, hi := vals[chunkStart*stride+off], vals[chunkStart*stride+off]
					for j := chunkStart; j < chunkEnd; j++ {
						lo = math32.Min(lo, vals[j*stride+off])
						hi = math32.Max(hi, vals[j*stride+off])
					}
					return hi - lo
				}
				posTol := span(c.Positions, 3, d)/1023 + 1e-5
				assert.InDelta(t, c.Positions[i*3+d], got.Positions[i*3+d], float64(posTol), "position %d axis %d", i, d)

				scaleTol := span(c.Scales, 3, d)/1023 + 1e-5
				assert.InDelta(t, c.Scales[i*3+d], got.Scales[i*3+d], float64(scaleTol), "scale %d axis %d", i, d)

				// Colors quantize to 8 bits of the chunk color span in
				// [0,1] linear space, mapped back through 1/SHC0.
				colorTol := (span(c.Colors, 3, d)*gauss.SHC0)/255/gauss.SHC0 + 1e-4
				assert.InDelta(t, c.Colors[i*3+d], got.Colors[i*3+d], float64(colorTol), "color %d channel %d", i, d)
			}
			assertQuatClose(t, c.Rotations[i*4:i*4+4], got.Rotations[i*4:i*4+4], 1e-4)

			// Opacity survives within a byte in sigmoid space.
			assert.InDelta(t, gauss.Sigmoid(c.Alphas[i]), gauss.Sigmoid(got.Alphas[i]), 1.0/255+1e-6, "alpha %d", i)
		}

		// SH bytes quantize the [-4,4] range in 1/256 steps.
		for i := range c.SH {
			assert.InDelta(t, c.SH[i], got.SH[i], 8.0/256+1e-6)
		}
	}
}

func TestCompressedOpacityExtremesStayFinite(t *testing.T) {
	c := testCloud(t, 3, 0)
	c.Alphas = []float32{-50, 0, 50} // sigmoid saturates to 0 and 1
	data, err := (&CompressedWriter{}).Write(c, nil)
	require.NoError(t, err)
	got, err := (&CompressedReader{}).Read(data, &formats.ReadOptions{Strict: true})
	require.NoError(t, err)
	for i, v := range got.Alphas {
		assert.False(t, math32.IsInf(v, 0), "alpha %d is infinite", i)
		assert.False(t, math32.IsNaN(v), "alpha %d is NaN", i)
	}
	assert.Negative(t, got.Alphas[0])
	assert.Positive(t, got.Alphas[2])
}

func TestCompressedChunkCountMismatch(t *testing.T) {
	c := testCloud(t, 300, 0)
	data, err := (&CompressedWriter{}).Write(c, nil)
	require.NoError(t, err)

	// Lie about the chunk count in the header.
	bad := bytes.Replace(data, []byte("element chunk 2\n"), []byte("element chunk 3\n"), 1)
	require.NotEqual(t, data, bad)
	_, err = (&CompressedReader{}).Read(bad, nil)
	assert.Equal(t, formats.CodecInternal, formats.KindOf(err))
}

func TestCompressedTruncated(t *testing.T) {
	c := testCloud(t, 10, 1)
	data, err := (&CompressedWriter{}).Write(c, nil)
	require.NoError(t, err)
	_, err = (&CompressedReader{}).Read(data[:len(data)-4], nil)
	assert.Equal(t, formats.Truncated, formats.KindOf(err))
}

func TestCompressedWriterZeroPoints(t *testing.T) {
	_, err := (&CompressedWriter{}).Write(&gauss.Cloud{}, nil)
	assert.Equal(t, formats.CodecInternal, formats.KindOf(err))
}

func TestCompressedRejects(t *testing.T) {
	_, err := (&CompressedReader{}).Read(nil, nil)
	assert.Equal(t, formats.EmptyInput, formats.KindOf(err))
	_, err = (&CompressedReader{}).Read([]byte("not a ply\n"), nil)
	assert.Equal(t, formats.BadMagic, formats.KindOf(err))
}
