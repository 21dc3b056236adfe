// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sog implements the .sog codec: a ZIP archive of WebP image
// planes with a meta.json sidecar. Positions are 16-bit log-space
// pairs split over two images; scales, DC color, and higher-order SH
// are scalar-quantized through 256-entry codebooks; quaternions use
// an 8-bit smallest-three pixel encoding.
package sog

import "github.com/chewxy/math32"

// FormatName is the registry extension for this codec.
const FormatName = "sog"

// minVersion is the oldest meta.json version this codec accepts.
const minVersion = 2

// meta mirrors the meta.json sidecar.
type meta struct {
	Version   int        `json:"version"`
	Count     int        `json:"count"`
	Antialias bool       `json:"antialias"`
	Means     metaMeans  `json:"means"`
	Scales    metaCoded  `json:"scales"`
	Quats     metaFiles  `json:"quats"`
	SH0       metaCoded  `json:"sh0"`
	SHN       *metaBands `json:"shN,omitempty"`
}

type metaMeans struct {
	Mins  []float32 `json:"mins"`
	Maxs  []float32 `json:"maxs"`
	Files []string  `json:"files"`
}

type metaCoded struct {
	Codebook []float32 `json:"codebook"`
	Files    []string  `json:"files"`
}

type metaFiles struct {
	Files []string `json:"files"`
}

type metaBands struct {
	Count    int       `json:"count"`
	Bands    int       `json:"bands"`
	Codebook []float32 `json:"codebook"`
	Files    []string  `json:"files"`
}

// shCoeffsForBands is the per-channel coefficient count for each SH
// band count.
var shCoeffsForBands = [4]int{0, 3, 8, 15}

// logTransform compresses a world coordinate for 16-bit
// quantization: sign(v) * log(|v|+1).
func logTransform(v float32) float32 {
	if v < 0 {
		return -math32.Log(math32.Abs(v) + 1)
	}
	return math32.Log(v + 1)
}

// invLogTransform is the inverse of [logTransform].
func invLogTransform(v float32) float32 {
	e := math32.Exp(math32.Abs(v)) - 1
	if v < 0 {
		return -e
	}
	return e
}

// texDims returns the square-ish plane dimensions for n points:
// width = ceil(sqrt(n)), height = ceil(n/width).
func texDims(n int) (w, h int) {
	w = int(math32.Ceil(math32.Sqrt(float32(n))))
	if w < 1 {
		w = 1
	}
	h = (n + w - 1) / w
	if h < 1 {
		h = 1
	}
	return w, h
}
