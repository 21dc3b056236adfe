// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gauss

// Handedness is the coordinate-system handedness of a cloud.
type Handedness int32

const (
	HandednessUnknown Handedness = iota
	LeftHanded
	RightHanded
)

func (h Handedness) String() string {
	switch h {
	case LeftHanded:
		return "Left"
	case RightHanded:
		return "Right"
	default:
		return "Unknown"
	}
}

// UpAxis is the world up axis of a cloud.
type UpAxis int32

const (
	UpUnknown UpAxis = iota
	UpY
	UpZ
)

func (u UpAxis) String() string {
	switch u {
	case UpY:
		return "Y"
	case UpZ:
		return "Z"
	default:
		return "Unknown"
	}
}

// LengthUnit is the length unit of a cloud's positions and scales.
type LengthUnit int32

const (
	UnitUnknown LengthUnit = iota
	Meter
	Centimeter
)

func (u LengthUnit) String() string {
	switch u {
	case Meter:
		return "Meter"
	case Centimeter:
		return "Centimeter"
	default:
		return "Unknown"
	}
}

// ColorSpace is the color space of a cloud's DC coefficients.
type ColorSpace int32

const (
	ColorUnknown ColorSpace = iota
	ColorLinear
	ColorSRGB
)

func (c ColorSpace) String() string {
	switch c {
	case ColorLinear:
		return "Linear"
	case ColorSRGB:
		return "sRGB"
	default:
		return "Unknown"
	}
}

// Metadata carries per-cloud properties that are not per-point arrays.
// Readers set what their format records; everything else keeps its
// unknown zero value.
type Metadata struct {

	// SHDegree is the number of spherical-harmonic degrees beyond DC,
	// in [0,3].
	SHDegree int

	// Antialiased indicates the cloud was trained with an antialiasing
	// (mip-splatting) kernel.
	Antialiased bool

	// SourceFormat is an informational tag set by the reader that
	// produced this cloud, e.g. "ply" or "sog".
	SourceFormat string

	Handedness Handedness
	Up         UpAxis
	Unit       LengthUnit
	Color      ColorSpace
}
