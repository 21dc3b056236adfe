// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gauss

import "github.com/chewxy/math32"

// SHC0 is the constant degree-0 spherical-harmonic basis value.
// A DC coefficient c renders as the color c*SHC0 + 0.5.
const SHC0 = 0.28209479177387814

// MaxLogit bounds logit-space opacities recovered from quantized
// bytes, so endpoint bytes stay finite.
const MaxLogit = 10.0

// Sigmoid maps a logit-space opacity to [0,1].
func Sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}

// Logit is the inverse of [Sigmoid]. p is clamped away from 0 and 1
// by eps first so the result is finite.
func Logit(p, eps float32) float32 {
	p = math32.Max(eps, math32.Min(1-eps, p))
	return math32.Log(p / (1 - p))
}

// DCToColor maps a DC coefficient to [0,1] linear color space.
func DCToColor(c float32) float32 {
	return c*SHC0 + 0.5
}

// ColorToDC is the inverse of [DCToColor].
func ColorToDC(v float32) float32 {
	return (v - 0.5) / SHC0
}

// ColorByte quantizes a DC coefficient to a color byte.
func ColorByte(c float32) uint8 {
	v := DCToColor(c) * 255
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math32.Floor(v + 0.5))
}

// ByteToDC recovers a DC coefficient from a color byte.
func ByteToDC(b uint8) float32 {
	return ColorToDC(float32(b) / 255)
}

// AlphaByte quantizes a logit-space opacity to a sigmoid-space byte.
func AlphaByte(alpha float32) uint8 {
	v := Sigmoid(alpha) * 255
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math32.Floor(v + 0.5))
}

// ByteToAlpha recovers a logit-space opacity from a sigmoid-space
// byte. The endpoints 0 and 255 pin to -/+ [MaxLogit] so the logit
// stays finite; everything else clamps into that range.
func ByteToAlpha(b uint8) float32 {
	switch b {
	case 0:
		return -MaxLogit
	case 255:
		return MaxLogit
	}
	alpha := -math32.Log(255/float32(b) - 1)
	return math32.Max(-MaxLogit, math32.Min(MaxLogit, alpha))
}

// LogScale converts a linear-space scale read from disk to the
// cloud's log-scale convention, substituting -10 for non-positive
// inputs.
func LogScale(linear float32) float32 {
	if linear > 0 {
		return math32.Log(linear)
	}
	return -10
}
