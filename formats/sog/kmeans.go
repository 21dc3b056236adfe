// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sog

import "github.com/chewxy/math32"

// codebook1D runs scalar k-means over data: centers centroids (at most
// 256, since indices are bytes) initialized linearly between the
// observed min and max, ten refinement passes,
// empty clusters keeping their previous centroid. It returns the
// centroids and the per-value nearest-centroid indices.
func codebook1D(data []float32, centers int) (centroids []float32, indices []uint8) {
	centroids = make([]float32, centers)
	if len(data) == 0 {
		return centroids, nil
	}

	minV, maxV := data[0], data[0]
	for _, v := range data {
		minV = math32.Min(minV, v)
		maxV = math32.Max(maxV, v)
	}
	span := maxV - minV
	div := float32(1)
	if centers > 1 {
		div = float32(centers - 1)
	}
	for i := range centroids {
		centroids[i] = minV + float32(i)/div*span
	}

	indices = make([]uint8, len(data))
	sums := make([]float32, centers)
	counts := make([]int, centers)

	for iter := 0; iter < 10; iter++ {
		for i := range sums {
			sums[i], counts[i] = 0, 0
		}
		for i, v := range data {
			best, bestD := 0, float32(math32.MaxFloat32)
			for k, cv := range centroids {
				d := math32.Abs(v - cv)
				if d < bestD {
					best, bestD = k, d
				}
			}
			indices[i] = uint8(best)
			sums[best] += v
			counts[best]++
		}
		for k := range centroids {
			if counts[k] > 0 {
				centroids[k] = sums[k] / float32(counts[k])
			}
		}
	}
	return centroids, indices
}

// kmeansVectors runs k-means over row-major dim-length vectors with a
// deterministic evenly-spaced initialization and ten refinement
// passes; empty clusters keep their previous centroid. It returns the
// flat centroid rows and the per-vector labels.
func kmeansVectors(data []float32, dim, centers int) (centroids []float32, labels []uint16) {
	n := len(data) / dim
	centroids = make([]float32, centers*dim)
	labels = make([]uint16, n)
	if n == 0 || dim == 0 {
		return centroids, labels
	}

	// Seed from evenly spaced input rows.
	for k := 0; k < centers; k++ {
		src := k * n / centers
		copy(centroids[k*dim:(k+1)*dim], data[src*dim:(src+1)*dim])
	}

	sums := make([]float32, centers*dim)
	counts := make([]int, centers)

	for iter := 0; iter < 10; iter++ {
		for i := range sums {
			sums[i] = 0
		}
		for i := range counts {
			counts[i] = 0
		}
		for i := 0; i < n; i++ {
			row := data[i*dim : (i+1)*dim]
			best, bestD := 0, float32(math32.MaxFloat32)
			for k := 0; k < centers; k++ {
				cen := centroids[k*dim : (k+1)*dim]
				d := float32(0)
				for j, v := range row {
					dv := v - cen[j]
					d += dv * dv
				}
				if d < bestD {
					best, bestD = k, d
				}
			}
			labels[i] = uint16(best)
			cs := sums[best*dim : (best+1)*dim]
			for j, v := range row {
				cs[j] += v
			}
			counts[best]++
		}
		for k := 0; k < centers; k++ {
			if counts[k] == 0 {
				continue
			}
			cen := centroids[k*dim : (k+1)*dim]
			cs := sums[k*dim : (k+1)*dim]
			for j := range cen {
				cen[j] = cs[j] / float32(counts[k])
			}
		}
	}
	return centroids, labels
}
