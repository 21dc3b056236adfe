// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ksplat implements the .ksplat codec: a sectioned, bucketed
// container with three compression modes (float32, float16, and
// uint8 smallest-three / range-quantized harmonics).
package ksplat

// FormatName is the registry extension for this codec.
const FormatName = "ksplat"

const (
	mainHeaderSize    = 4096
	sectionHeaderSize = 1024
)

// layout describes the per-splat byte layout of one compression mode.
type layout struct {
	centerBytes    int
	scaleBytes     int
	rotationBytes  int
	colorBytes     int
	harmonicsBytes int

	scaleStart     int
	rotationStart  int
	colorStart     int
	harmonicsStart int

	// defaultQuantRange applies when a section header leaves its
	// quantization range zero.
	defaultQuantRange uint32
}

// layouts is indexed by compression mode.
var layouts = [3]layout{
	{12, 12, 16, 4, 4, 12, 24, 40, 44, 1},
	{6, 6, 8, 4, 2, 6, 12, 20, 24, 32767},
	{6, 6, 4, 4, 1, 6, 12, 16, 20, 32767},
}

// harmonicsComponents is the total on-disk SH component count per
// splat, indexed by harmonics degree.
var harmonicsComponents = [4]int{0, 9, 24, 45}

// bytesPerSplat returns the padded per-splat record size for a mode
// and harmonics degree; records align to 4 bytes.
func (l *layout) bytesPerSplat(harmonicsDegree int) int {
	raw := l.centerBytes + l.scaleBytes + l.rotationBytes + l.colorBytes +
		harmonicsComponents[harmonicsDegree]*l.harmonicsBytes
	return (raw + 3) &^ 3
}

// Default range for uint8 harmonics when the main header records
// none.
const (
	defaultMinHarmonics = -1.5
	defaultMaxHarmonics = 1.5
)
