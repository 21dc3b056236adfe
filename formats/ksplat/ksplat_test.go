// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ksplat

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaussio/gaussio/base/binx"
	"github.com/gaussio/gaussio/formats"
	"github.com/gaussio/gaussio/gauss"
)

// testCloud builds a cloud whose quantized fields sit exactly on
// byte centers, so a mode-0 round trip reproduces them.
func testCloud(t *testing.T, n, degree int) *gauss.Cloud {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	c := &gauss.Cloud{}
	c.Init(n, degree)
	for i := 0; i < n; i++ {
		for d := 0; d < 3; d++ {
			c.Positions[i*3+d] = rng.Float32()*20 - 10
			c.Scales[i*3+d] = rng.Float32()*5 - 6
			c.Colors[i*3+d] = gauss.ByteToDC(uint8(rng.Intn(256)))
		}
		var q [4]float32
		norm := float32(0)
		for d := 0; d < 4; d++ {
			q[d] = rng.Float32()*2 - 1
			norm += q[d] * q[d]
		}
		norm = math32.Sqrt(norm)
		for d := 0; d < 4; d++ {
			c.Rotations[i*4+d] = q[d] / norm
		}
		c.Alphas[i] = gauss.Logit(float32(1+rng.Intn(254))/255, 1e-6)
	}
	for i := range c.SH {
		c.SH[i] = rng.Float32()*2 - 1
	}
	return c
}

func TestMode0RoundTrip(t *testing.T) {
	c := testCloud(t, 1000, 3)
	data, err := (&Writer{}).Write(c, &formats.WriteOptions{Strict: true})
	require.NoError(t, err)

	got, err := (&Reader{}).Read(data, &formats.ReadOptions{Strict: true})
	require.NoError(t, err)
	require.Equal(t, c.NumPoints, got.NumPoints)
	assert.Equal(t, 3, got.Meta.SHDegree)
	assert.Equal(t, FormatName, got.Meta.SourceFormat)

	const tol = 1e-4
	for i := range c.Positions {
		assert.InDelta(t, c.Positions[i], got.Positions[i], tol, "position %d", i)
	}
	for i := range c.Scales {
		assert.InDelta(t, c.Scales[i], got.Scales[i], tol, "scale %d", i)
	}
	for i := range c.Rotations {
		assert.InDelta(t, c.Rotations[i], got.Rotations[i], tol, "rotation %d", i)
	}
	for i := range c.Colors {
		assert.InDelta(t, c.Colors[i], got.Colors[i], tol, "color %d", i)
	}
	for i := range c.Alphas {
		assert.InDelta(t, c.Alphas[i], got.Alphas[i], tol, "alpha %d", i)
	}
	for i := range c.SH {
		assert.InDelta(t, c.SH[i], got.SH[i], tol, "sh %d", i)
	}
}

func TestRoundTripDegreeZero(t *testing.T) {
	c := testCloud(t, 17, 0)
	data, err := (&Writer{}).Write(c, &formats.WriteOptions{Strict: true})
	require.NoError(t, err)
	got, err := (&Reader{}).Read(data, &formats.ReadOptions{Strict: true})
	require.NoError(t, err)
	assert.Empty(t, got.SH)
	assert.Equal(t, 0, got.Meta.SHDegree)
}

func TestReaderRejects(t *testing.T) {
	_, err := (&Reader{}).Read(nil, nil)
	assert.Equal(t, formats.EmptyInput, formats.KindOf(err))

	_, err = (&Reader{}).Read(make([]byte, 100), nil)
	assert.Equal(t, formats.Truncated, formats.KindOf(err))

	// Bad version.
	data := make([]byte, mainHeaderSize)
	data[0] = 1
	data[1] = 1
	_, err = (&Reader{}).Read(data, nil)
	assert.Equal(t, formats.UnsupportedVariant, formats.KindOf(err))

	// Bad compression mode.
	data = make([]byte, mainHeaderSize)
	data[1] = 1
	binx.PutU16(data, 20, 5)
	_, err = (&Reader{}).Read(data, nil)
	assert.Equal(t, formats.UnsupportedVariant, formats.KindOf(err))
}

func TestZeroSplatsDecodesEmpty(t *testing.T) {
	// A structurally valid file with no sections and no splats
	// decodes to an empty cloud.
	data := make([]byte, mainHeaderSize)
	data[1] = 1
	got, err := (&Reader{}).Read(data, &formats.ReadOptions{Strict: true})
	require.NoError(t, err)
	assert.Equal(t, int32(0), got.NumPoints)
	assert.Empty(t, got.Positions)
}

// buildMode2File assembles a two-bucket mode-2 section by hand:
// one full bucket of two splats and one partial bucket of one.
func buildMode2File(t *testing.T, minH, maxH float32) []byte {
	t.Helper()
	lay := &layouts[2]
	const n = 3
	degree := 1
	bytesPerSplat := lay.bytesPerSplat(degree) // 6+6+4+4 + 9*1 = 29 -> 32
	require.Equal(t, 32, bytesPerSplat)

	const (
		bucketCapacity = 2
		fullBuckets    = 1
		partialBuckets = 1
		bucketCount    = 2
		quantRange     = 32767
		blockSize      = float32(2.0)
	)
	partialMeta := partialBuckets * 4
	bucketStorage := bucketCount*12 + partialMeta

	total := mainHeaderSize + sectionHeaderSize + bucketStorage + n*bytesPerSplat
	data := make([]byte, total)

	data[0] = 0
	data[1] = 1
	binx.PutU32(data, 4, 1)  // max sections
	binx.PutU32(data, 16, n) // total splats
	binx.PutU16(data, 20, 2) // mode 2
	binx.PutF32(data, 36, minH)
	binx.PutF32(data, 40, maxH)

	sec := data[mainHeaderSize:]
	binx.PutU32(sec, 0, n)
	binx.PutU32(sec, 4, n)
	binx.PutU32(sec, 8, bucketCapacity)
	binx.PutU32(sec, 12, bucketCount)
	binx.PutF32(sec, 16, blockSize)
	binx.PutU16(sec, 20, 12) // bucket storage bytes per bucket
	binx.PutU32(sec, 24, 0)  // quant range: defaulted from the mode
	binx.PutU32(sec, 32, fullBuckets)
	binx.PutU32(sec, 36, partialBuckets)
	binx.PutU16(sec, 40, uint16(degree))

	body := data[mainHeaderSize+sectionHeaderSize:]
	binx.PutU32(body, 0, 1) // the partial bucket holds one splat

	centers := [2][3]float32{{0, 0, 0}, {10, 10, 10}}
	for b, ctr := range centers {
		for d := 0; d < 3; d++ {
			binx.PutF32(body, partialMeta+(b*3+d)*4, ctr[d])
		}
	}

	splats := body[bucketStorage:]
	for i := 0; i < n; i++ {
		rec := splats[i*bytesPerSplat:]
		// Quantized values sit at quantRange minus an offset; the
		// int16 read bounds them to non-positive world offsets at
		// this range.
		binx.PutU16(rec, 0, uint16(quantRange-8191))  // -0.25 world
		binx.PutU16(rec, 2, uint16(quantRange))       // 0
		binx.PutU16(rec, 4, uint16(quantRange-16383)) // -0.5 world

		binx.PutF16(rec, lay.scaleStart, 0.5)
		binx.PutF16(rec, lay.scaleStart+2, 1.0)
		binx.PutF16(rec, lay.scaleStart+4, 2.0)

		binx.PutU32(rec, lay.rotationStart, binx.PackQuatSmallest3(0.5, 0.5, 0.5, 0.5))

		rec[lay.colorStart+0] = 200
		rec[lay.colorStart+1] = 100
		rec[lay.colorStart+2] = 50
		rec[lay.colorStart+3] = 128

		for j := 0; j < 9; j++ {
			rec[lay.harmonicsStart+j] = uint8(j * 28)
		}
	}
	return data
}

func TestMode2BucketedDecode(t *testing.T) {
	data := buildMode2File(t, -2, 2)
	got, err := (&Reader{}).Read(data, &formats.ReadOptions{Strict: true})
	require.NoError(t, err)
	require.Equal(t, int32(3), got.NumPoints)
	assert.Equal(t, 1, got.Meta.SHDegree)

	// Splats 0 and 1 sit in the full bucket at the origin; splat 2 in
	// the partial bucket at (10,10,10).
	for _, i := range []int{0, 1} {
		assert.InDelta(t, -0.25, got.Positions[i*3+0], 1e-3)
		assert.InDelta(t, 0, got.Positions[i*3+1], 1e-3)
		assert.InDelta(t, -0.5, got.Positions[i*3+2], 1e-3)
	}
	assert.InDelta(t, 9.75, got.Positions[2*3+0], 1e-3)
	assert.InDelta(t, 10, got.Positions[2*3+1], 1e-3)
	assert.InDelta(t, 9.5, got.Positions[2*3+2], 1e-3)

	// Scales come in as float16 linear values.
	assert.InDelta(t, math32.Log(0.5), got.Scales[0], 1e-3)
	assert.InDelta(t, 0, got.Scales[1], 1e-3)
	assert.InDelta(t, math32.Log(2), got.Scales[2], 1e-3)

	// Smallest-three quaternion.
	for d := 0; d < 4; d++ {
		assert.InDelta(t, 0.5, got.Rotations[d], 2e-3, "component %d", d)
	}

	assert.InDelta(t, gauss.ByteToDC(200), got.Colors[0], 1e-6)
	assert.InDelta(t, gauss.ByteToDC(100), got.Colors[1], 1e-6)
	assert.InDelta(t, 0, got.Alphas[0], 1e-2)

	// Range-quantized harmonics, transposed from channel-first: on
	// disk component j carries byte j*28 over [-2,2].
	dequant := func(b uint8) float32 { return -2 + float32(b)/255*4 }
	// Component 0 is channel R, coefficient 0.
	assert.InDelta(t, dequant(0), got.SH[0], 1e-6)
	// Component 3 is channel G, coefficient 0 -> sh index 1.
	assert.InDelta(t, dequant(3*28), got.SH[1], 1e-6)
	// Component 7 is channel B, coefficient 1 -> sh index 5.
	assert.InDelta(t, dequant(7*28), got.SH[(1*3)+2], 1e-6)
}

func TestDefaultHarmonicsRange(t *testing.T) {
	// min = max = 0 in the main header selects [-1.5, 1.5].
	data := buildMode2File(t, 0, 0)
	got, err := (&Reader{}).Read(data, &formats.ReadOptions{Strict: true})
	require.NoError(t, err)
	dequant := func(b uint8) float32 { return -1.5 + float32(b)/255*3 }
	assert.InDelta(t, dequant(0), got.SH[0], 1e-6)
	assert.InDelta(t, dequant(28), got.SH[3], 1e-6) // component 1: R coeff 1
}

func TestWriterZeroPoints(t *testing.T) {
	_, err := (&Writer{}).Write(&gauss.Cloud{}, nil)
	assert.Equal(t, formats.CodecInternal, formats.KindOf(err))
}

func TestWriterSplatCountMismatchDetected(t *testing.T) {
	c := testCloud(t, 5, 0)
	data, err := (&Writer{}).Write(c, nil)
	require.NoError(t, err)

	// Corrupt the total count; the reader must notice.
	binx.PutU32(data, 16, 6)
	_, err = (&Reader{}).Read(data, nil)
	require.Error(t, err)
}
