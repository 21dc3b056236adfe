// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gauss

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSHDim(t *testing.T) {
	assert.Equal(t, 0, SHDim(0))
	assert.Equal(t, 3, SHDim(1))
	assert.Equal(t, 8, SHDim(2))
	assert.Equal(t, 15, SHDim(3))
	assert.Equal(t, 0, SHCoeffsPerPoint(0))
	assert.Equal(t, 9, SHCoeffsPerPoint(1))
	assert.Equal(t, 24, SHCoeffsPerPoint(2))
	assert.Equal(t, 45, SHCoeffsPerPoint(3))
}

func TestValidate(t *testing.T) {
	c := &Cloud{}
	c.Init(3, 1)
	assert.NoError(t, Validate(c, true))

	c.NumPoints = -1
	assert.ErrorIs(t, Validate(c, false), ErrSizeMismatch)
	c.NumPoints = 3

	c.Scales = c.Scales[:5]
	assert.ErrorIs(t, Validate(c, false), ErrSizeMismatch)
	c.Init(3, 1)

	// SH length is tied to the metadata degree.
	c.Meta.SHDegree = 2
	assert.ErrorIs(t, Validate(c, false), ErrSizeMismatch)
	c.Meta.SHDegree = 1
	assert.NoError(t, Validate(c, false))

	// Finiteness only matters in strict mode.
	c.Positions[4] = math32.Inf(1)
	assert.NoError(t, Validate(c, false))
	assert.ErrorIs(t, Validate(c, true), ErrNonFinite)

	c.Positions[4] = 0
	c.Alphas[2] = math32.NaN()
	assert.ErrorIs(t, Validate(c, true), ErrNonFinite)
}

func TestValidateEmpty(t *testing.T) {
	c := &Cloud{}
	assert.NoError(t, Validate(c, true))
}

func TestTransforms(t *testing.T) {
	// Color byte quantization is idempotent.
	for _, b := range []uint8{0, 1, 64, 128, 200, 254, 255} {
		assert.Equal(t, b, ColorByte(ByteToDC(b)), "byte %d", b)
	}
	assert.Equal(t, uint8(128), ColorByte(0))

	// Opacity endpoints pin to finite logits.
	assert.Equal(t, float32(-MaxLogit), ByteToAlpha(0))
	assert.Equal(t, float32(MaxLogit), ByteToAlpha(255))
	for _, b := range []uint8{1, 3, 100, 128, 254} {
		assert.Equal(t, b, AlphaByte(ByteToAlpha(b)), "byte %d", b)
	}

	assert.InDelta(t, 0.5, Sigmoid(0), 1e-6)
	assert.InDelta(t, 0, Logit(0.5, 1e-6), 1e-6)
	assert.False(t, math32.IsInf(Logit(0, 1e-6), 0))
	assert.False(t, math32.IsInf(Logit(1, 1e-6), 0))

	assert.Equal(t, float32(-10), LogScale(0))
	assert.Equal(t, float32(-10), LogScale(-1))
	assert.InDelta(t, 1, LogScale(math32.E), 1e-6)
}

func TestSummarize(t *testing.T) {
	c := &Cloud{}
	c.Init(2, 0)
	c.Positions = []float32{-1, 2, 3, 4, -5, 6}
	c.Scales = []float32{-2, -2, -2, -4, -4, -4}
	c.Alphas = []float32{1, 3}
	c.Extras = map[string][]float32{"trained_iters": {1, 2}}
	c.Meta.SourceFormat = "splat"

	info := Summarize(c, 64)
	assert.Equal(t, int32(2), info.NumPoints)
	assert.Equal(t, 64, info.FileSize)
	assert.Equal(t, "splat", info.SourceFormat)

	assert.Equal(t, float32(-1), info.Bounds.MinX)
	assert.Equal(t, float32(4), info.Bounds.MaxX)
	assert.Equal(t, float32(-5), info.Bounds.MinY)
	assert.Equal(t, float32(2), info.Bounds.MaxY)
	assert.Equal(t, float32(3), info.Bounds.MinZ)
	assert.Equal(t, float32(6), info.Bounds.MaxZ)

	assert.Equal(t, float32(-4), info.ScaleStats.Min)
	assert.Equal(t, float32(-2), info.ScaleStats.Max)
	assert.InDelta(t, -3, info.ScaleStats.Mean, 1e-6)
	assert.Equal(t, 6, info.ScaleStats.Count)
	assert.InDelta(t, 2, info.AlphaStats.Mean, 1e-6)

	assert.Equal(t, 24, info.PositionsSize)
	assert.Equal(t, 8, info.AlphasSize)
	require.Len(t, info.Extras, 1)
	assert.Equal(t, "trained_iters", info.Extras[0].Name)
	assert.Equal(t, 8, info.Extras[0].Size)
	assert.Equal(t, 24+24+32+8+24+0+8, info.TotalSize)
}

func TestFormatBytes(t *testing.T) {
	assert.NotEmpty(t, FormatBytes(0))
	assert.Contains(t, FormatBytes(2048), "KiB")
}
