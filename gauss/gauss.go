// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gauss defines the in-memory representation of a 3D Gaussian
// point cloud that every format codec reads into and writes from,
// along with its validator and a statistics summarizer.
package gauss

// Cloud is the decoded representation of a cloud of N Gaussians.
// All per-point attributes use a structure-of-arrays layout so codecs
// can stream each array contiguously over the point index.
type Cloud struct {

	// NumPoints is the number of Gaussians N; always >= 0.
	NumPoints int32

	// Positions holds XYZ world coordinates, interleaved (3N values).
	Positions []float32

	// Scales holds per-axis scales in natural-log space,
	// interleaved (3N values).
	Scales []float32

	// Rotations holds unit quaternions as [w, x, y, z] per point
	// (4N values).
	Rotations []float32

	// Alphas holds pre-sigmoid (logit-space) opacities (N values).
	Alphas []float32

	// Colors holds the degree-0 (DC) spherical-harmonic coefficients,
	// RGB interleaved (3N values).
	Colors []float32

	// SH holds the higher-order spherical-harmonic coefficients in
	// coefficient-first order: for each point, each coefficient's
	// R, G, B values are contiguous. Total 3*K*N values where
	// K = (Meta.SHDegree+1)^2 - 1.
	SH []float32

	// Extras holds attribute arrays a reader did not recognize.
	Extras map[string][]float32

	Meta Metadata
}

// SHDim returns K, the number of higher-order SH coefficients per
// color channel for the given degree: (degree+1)^2 - 1, 0 for
// degree <= 0.
func SHDim(degree int) int {
	if degree <= 0 {
		return 0
	}
	return (degree+1)*(degree+1) - 1
}

// SHCoeffsPerPoint returns the total number of higher-order SH values
// per point across all three channels: 3 * SHDim(degree).
func SHCoeffsPerPoint(degree int) int {
	return 3 * SHDim(degree)
}

// Init allocates all primary arrays for n points at the given SH
// degree and records both in the cloud.
func (c *Cloud) Init(n int, shDegree int) {
	c.NumPoints = int32(n)
	c.Meta.SHDegree = shDegree
	c.Positions = make([]float32, 3*n)
	c.Scales = make([]float32, 3*n)
	c.Rotations = make([]float32, 4*n)
	c.Alphas = make([]float32, n)
	c.Colors = make([]float32, 3*n)
	c.SH = make([]float32, SHCoeffsPerPoint(shDegree)*n)
}
