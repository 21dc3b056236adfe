// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ply

// chunkSize is the number of consecutive points sharing one min/max
// requantization row in the compressed variant.
const chunkSize = 256

// chunkProps is the full 18-float property set of a compressed-PLY
// chunk row, in the on-disk order the codec reads and writes.
var chunkProps = []string{
	"min_x", "min_y", "min_z",
	"max_x", "max_y", "max_z",
	"min_scale_x", "min_scale_y", "min_scale_z",
	"max_scale_x", "max_scale_y", "max_scale_z",
	"min_r", "min_g", "min_b",
	"max_r", "max_g", "max_b",
}

// vertexProps is the 4-uint property set of a compressed-PLY vertex
// row.
var vertexProps = []string{
	"packed_position", "packed_rotation", "packed_scale", "packed_color",
}

// validSHPropCounts are the admissible property counts of the
// optional sh element: 3K for degrees 1..3.
var validSHPropCounts = map[int]bool{9: true, 24: true, 45: true}

// degreeForSHCoeffs maps a total compressed SH coefficient count to
// an SH degree, 0 when unrecognized.
func degreeForSHCoeffs(numCoeffs int) int {
	switch numCoeffs {
	case 9:
		return 1
	case 24:
		return 2
	case 45:
		return 3
	default:
		return 0
	}
}

func chunkCountFor(vertices int) int {
	return (vertices + chunkSize - 1) / chunkSize
}
