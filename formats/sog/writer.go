// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sog

import (
	"encoding/json"

	"github.com/chewxy/math32"

	"github.com/gaussio/gaussio/base/zipx"
	"github.com/gaussio/gaussio/formats"
	"github.com/gaussio/gaussio/gauss"
)

// Writer encodes .sog archives.
type Writer struct{}

// NewWriter returns the sog writer.
func NewWriter() *Writer { return &Writer{} }

var _ formats.Writer = (*Writer)(nil)

// maxPalette bounds the SHN k-means palette; labels are 16-bit but a
// 4096-row palette already dominates encode time.
const maxPalette = 4096

// paletteSizeFor picks the SHN palette size: the largest power of two
// no larger than both n and maxPalette.
func paletteSizeFor(n int) int {
	size := 1
	for size*2 <= n && size*2 <= maxPalette {
		size *= 2
	}
	return size
}

// encodeQuat writes one smallest-three quaternion pixel: the three
// non-largest components in [w,x,y,z] order, then a 252+index tag
// naming the dropped component. The sign flips first so the largest
// component is non-negative.
func encodeQuat(w, x, y, z float32, out []uint8) {
	q := [4]float32{w, x, y, z}
	largest := 0
	for i := 1; i < 4; i++ {
		if math32.Abs(q[i]) > math32.Abs(q[largest]) {
			largest = i
		}
	}
	if q[largest] < 0 {
		for i := range q {
			q[i] = -q[i]
		}
	}
	slot := 0
	for i := 0; i < 4; i++ {
		if i == largest {
			continue
		}
		v := math32.Max(0, math32.Min(1, (q[i]*math32.Sqrt2+1)*0.5))
		out[slot] = uint8(math32.Round(v * 255))
		slot++
	}
	out[3] = uint8(252 + largest)
}

// Write encodes c as a .sog archive.
func (*Writer) Write(c *gauss.Cloud, opts *formats.WriteOptions) (out []byte, err error) {
	defer formats.Recover(&err, FormatName)

	if err := formats.BeginWrite(FormatName, c, opts); err != nil {
		return nil, err
	}
	n := int(c.NumPoints)
	if n <= 0 {
		return nil, formats.Errorf(formats.CodecInternal, FormatName, "empty cloud")
	}
	if len(c.Positions) != 3*n || len(c.Scales) != 3*n || len(c.Rotations) != 4*n ||
		len(c.Alphas) != n || len(c.Colors) != 3*n {
		return nil, formats.Errorf(formats.InconsistentCounts, FormatName, "inconsistent data sizes")
	}

	w, h := texDims(n)
	texSize := w * h

	var zw zipx.Writer
	m := meta{Version: minVersion, Count: n, Antialias: c.Meta.Antialiased}

	addPlane := func(name string, pix []uint8) error {
		payload, err := encodePlane(pix, w, h)
		if err != nil {
			return formats.WrapErr(formats.CodecInternal, FormatName, err, name)
		}
		zw.Add(name, payload)
		return nil
	}

	// Positions: log-transform, fit the per-axis range, split the
	// 16-bit quantized value over a low and a high plane.
	logPos := make([]float32, 3*n)
	mins := [3]float32{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32}
	maxs := [3]float32{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32}
	for i := 0; i < n; i++ {
		for d := 0; d < 3; d++ {
			v := logTransform(c.Positions[i*3+d])
			logPos[i*3+d] = v
			mins[d] = math32.Min(mins[d], v)
			maxs[d] = math32.Max(maxs[d], v)
		}
	}
	m.Means = metaMeans{
		Mins:  mins[:],
		Maxs:  maxs[:],
		Files: []string{"means_l.webp", "means_u.webp"},
	}
	meansL := make([]uint8, texSize*4)
	meansU := make([]uint8, texSize*4)
	for i := 0; i < n; i++ {
		for d := 0; d < 3; d++ {
			span := maxs[d] - mins[d]
			norm := float32(0)
			if span > 1e-8 {
				norm = (logPos[i*3+d] - mins[d]) / span
			}
			q := uint16(math32.Max(0, math32.Min(65535, norm*65535)))
			meansL[i*4+d] = uint8(q & 0xff)
			meansU[i*4+d] = uint8(q >> 8)
		}
		meansL[i*4+3] = 255
		meansU[i*4+3] = 255
	}
	if err := addPlane("means_l.webp", meansL); err != nil {
		return nil, err
	}
	if err := addPlane("means_u.webp", meansU); err != nil {
		return nil, err
	}

	// Quaternions.
	quats := make([]uint8, texSize*4)
	for i := 0; i < n; i++ {
		encodeQuat(c.Rotations[i*4], c.Rotations[i*4+1], c.Rotations[i*4+2], c.Rotations[i*4+3], quats[i*4:])
	}
	m.Quats = metaFiles{Files: []string{"quats.webp"}}
	if err := addPlane("quats.webp", quats); err != nil {
		return nil, err
	}

	// Scales: one shared 256-entry codebook over all channels.
	scaleCB, scaleIdx := codebook1D(c.Scales, 256)
	m.Scales = metaCoded{Codebook: scaleCB, Files: []string{"scales.webp"}}
	scalePix := make([]uint8, texSize*4)
	for i := 0; i < n; i++ {
		scalePix[i*4+0] = scaleIdx[i*3+0]
		scalePix[i*4+1] = scaleIdx[i*3+1]
		scalePix[i*4+2] = scaleIdx[i*3+2]
		scalePix[i*4+3] = 255
	}
	if err := addPlane("scales.webp", scalePix); err != nil {
		return nil, err
	}

	// SH0: DC codebook indices in RGB, sigmoid opacity in alpha.
	sh0CB, sh0Idx := codebook1D(c.Colors, 256)
	m.SH0 = metaCoded{Codebook: sh0CB, Files: []string{"sh0.webp"}}
	sh0Pix := make([]uint8, texSize*4)
	for i := 0; i < n; i++ {
		sh0Pix[i*4+0] = sh0Idx[i*3+0]
		sh0Pix[i*4+1] = sh0Idx[i*3+1]
		sh0Pix[i*4+2] = sh0Idx[i*3+2]
		sh0Pix[i*4+3] = gauss.AlphaByte(c.Alphas[i])
	}
	if err := addPlane("sh0.webp", sh0Pix); err != nil {
		return nil, err
	}

	// SHN: palette the per-point SH vectors, then scalar-quantize the
	// centroid rows through their own codebook.
	degree := c.Meta.SHDegree
	if degree > 0 {
		shCoeffs := shCoeffsForBands[min(degree, 3)]
		dim := shCoeffs * 3
		if len(c.SH) != n*dim {
			return nil, formats.Errorf(formats.InconsistentCounts, FormatName, "inconsistent SH data size")
		}

		palette := paletteSizeFor(n)
		centroids, labels := kmeansVectors(c.SH, dim, palette)
		shnCB, centroidIdx := codebook1D(centroids, 256)

		centroidW := 64 * shCoeffs
		centroidH := (palette + 63) / 64
		centroidPix := make([]uint8, centroidW*centroidH*4)
		for p := 0; p < palette; p++ {
			for j := 0; j < shCoeffs; j++ {
				off := ((p/64)*centroidW + (p%64)*shCoeffs + j) * 4
				for ch := 0; ch < 3; ch++ {
					centroidPix[off+ch] = centroidIdx[p*dim+j*3+ch]
				}
				centroidPix[off+3] = 255
			}
		}
		centroidPayload, perr := encodePlane(centroidPix, centroidW, centroidH)
		if perr != nil {
			return nil, formats.WrapErr(formats.CodecInternal, FormatName, perr, "shN_centroids.webp")
		}
		zw.Add("shN_centroids.webp", centroidPayload)

		labelPix := make([]uint8, texSize*4)
		for i := 0; i < n; i++ {
			labelPix[i*4+0] = uint8(labels[i] & 0xff)
			labelPix[i*4+1] = uint8(labels[i] >> 8)
			labelPix[i*4+3] = 255
		}
		if err := addPlane("shN_labels.webp", labelPix); err != nil {
			return nil, err
		}

		m.SHN = &metaBands{
			Count:    palette,
			Bands:    degree,
			Codebook: shnCB,
			Files:    []string{"shN_centroids.webp", "shN_labels.webp"},
		}
	}

	metaBytes, jerr := json.MarshalIndent(&m, "", "  ")
	if jerr != nil {
		return nil, formats.WrapErr(formats.CodecInternal, FormatName, jerr, "encode meta.json")
	}
	zw.Add("meta.json", metaBytes)

	return zw.Finalize(), nil
}
