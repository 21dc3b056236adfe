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

// Reader decodes .sog archives.
type Reader struct{}

// NewReader returns the sog reader.
func NewReader() *Reader { return &Reader{} }

var _ formats.Reader = (*Reader)(nil)

// Read decodes a .sog archive into a cloud.
func (*Reader) Read(data []byte, opts *formats.ReadOptions) (c *gauss.Cloud, err error) {
	defer formats.Recover(&err, FormatName)

	if len(data) == 0 {
		return nil, formats.Errorf(formats.EmptyInput, FormatName, "empty input")
	}
	zr, zerr := zipx.NewReader(data)
	if zerr != nil {
		return nil, formats.WrapErr(formats.CodecInternal, FormatName, zerr, "open archive")
	}

	metaData, zerr := zr.Open("meta.json")
	if zerr != nil {
		return nil, formats.WrapErr(formats.CodecInternal, FormatName, zerr, "meta.json not found in archive")
	}
	var m meta
	if jerr := json.Unmarshal(metaData, &m); jerr != nil {
		return nil, formats.WrapErr(formats.CodecInternal, FormatName, jerr, "parse meta.json")
	}
	if m.Version < minVersion {
		return nil, formats.Errorf(formats.UnsupportedVariant, FormatName, "version %d not supported", m.Version)
	}
	if m.Count < 0 {
		return nil, formats.Errorf(formats.CodecInternal, FormatName, "negative point count")
	}
	n := m.Count

	c = &gauss.Cloud{
		NumPoints: int32(n),
		Meta: gauss.Metadata{
			SourceFormat: FormatName,
			Antialiased:  m.Antialias,
			Handedness:   gauss.RightHanded,
			Up:           gauss.UpY,
			Color:        gauss.ColorLinear,
		},
	}

	openPlane := func(name string) (*plane, error) {
		payload, err := zr.Open(name)
		if err != nil {
			return nil, formats.WrapErr(formats.CodecInternal, FormatName, err, "extract "+name)
		}
		p, err := decodePlane(payload)
		if err != nil {
			return nil, formats.WrapErr(formats.CodecInternal, FormatName, err, name)
		}
		if p.pixels() < n {
			return nil, formats.Errorf(formats.CodecInternal, FormatName, "%s: %dx%d plane holds fewer than %d points", name, p.w, p.h, n)
		}
		return p, nil
	}

	// Positions: two 8-bit planes form a 16-bit value per component,
	// linearly mapped into the log-space [mins,maxs] box.
	if len(m.Means.Files) >= 2 {
		if len(m.Means.Mins) < 3 || len(m.Means.Maxs) < 3 {
			return nil, formats.Errorf(formats.CodecInternal, FormatName, "means: mins/maxs must have 3 components")
		}
		low, err := openPlane(m.Means.Files[0])
		if err != nil {
			return nil, err
		}
		high, err := openPlane(m.Means.Files[1])
		if err != nil {
			return nil, err
		}
		c.Positions = make([]float32, 3*n)
		for i := 0; i < n; i++ {
			for d := 0; d < 3; d++ {
				q := uint16(low.pix[i*4+d]) | uint16(high.pix[i*4+d])<<8
				v := m.Means.Mins[d] + float32(q)/65535*(m.Means.Maxs[d]-m.Means.Mins[d])
				c.Positions[i*3+d] = invLogTransform(v)
			}
		}
	}

	// Quaternions: three 8-bit components plus a tag byte selecting
	// the implicit largest component; tags below 252 mean identity.
	if len(m.Quats.Files) >= 1 {
		quats, err := openPlane(m.Quats.Files[0])
		if err != nil {
			return nil, err
		}
		c.Rotations = make([]float32, 4*n)
		for i := 0; i < n; i++ {
			px := quats.pix[i*4]
			py := quats.pix[i*4+1]
			pz := quats.pix[i*4+2]
			tag := quats.pix[i*4+3]

			if tag < 252 {
				c.Rotations[i*4] = 1
				continue
			}

			a := (float32(px)/255 - 0.5) * math32.Sqrt2
			b := (float32(py)/255 - 0.5) * math32.Sqrt2
			cc := (float32(pz)/255 - 0.5) * math32.Sqrt2
			d := math32.Sqrt(math32.Max(0, 1-(a*a+b*b+cc*cc)))

			var w, x, y, z float32
			switch tag - 252 {
			case 0: // w was largest; stored x, y, z
				x, y, z, w = a, b, cc, d
			case 1: // x was largest; stored w, y, z
				x, y, z, w = d, b, cc, a
			case 2: // y was largest; stored w, x, z
				x, y, z, w = b, d, cc, a
			default: // z was largest; stored w, x, y
				x, y, z, w = b, cc, d, a
			}
			c.Rotations[i*4+0] = w
			c.Rotations[i*4+1] = x
			c.Rotations[i*4+2] = y
			c.Rotations[i*4+3] = z
		}
	}

	// Scales: codebook indices per channel.
	if len(m.Scales.Files) >= 1 && len(m.Scales.Codebook) > 0 {
		scales, err := openPlane(m.Scales.Files[0])
		if err != nil {
			return nil, err
		}
		cb := m.Scales.Codebook
		c.Scales = make([]float32, 3*n)
		for i := 0; i < n; i++ {
			for d := 0; d < 3; d++ {
				idx := scales.pix[i*4+d]
				if int(idx) < len(cb) {
					c.Scales[i*3+d] = cb[idx]
				}
			}
		}
	}

	// SH0 plane: RGB codebook indices plus sigmoid-space opacity.
	if len(m.SH0.Files) >= 1 && len(m.SH0.Codebook) > 0 {
		sh0, err := openPlane(m.SH0.Files[0])
		if err != nil {
			return nil, err
		}
		cb := m.SH0.Codebook
		c.Colors = make([]float32, 3*n)
		c.Alphas = make([]float32, n)
		for i := 0; i < n; i++ {
			for d := 0; d < 3; d++ {
				idx := sh0.pix[i*4+d]
				if int(idx) < len(cb) {
					c.Colors[i*3+d] = cb[idx]
				}
			}
			c.Alphas[i] = gauss.Logit(float32(sh0.pix[i*4+3])/255, 1e-6)
		}
	}

	// SHN planes: centroid rows addressed through a 16-bit label per
	// point, 64 centroids per image row, coefficients channel-first
	// along the row.
	if m.SHN != nil && m.SHN.Bands > 0 && len(m.SHN.Files) >= 2 && len(m.SHN.Codebook) > 0 {
		// The centroid plane is palette-indexed, not point-indexed, so
		// it skips the n-pixel check; the label plane has one pixel
		// per point.
		centroidData, zerr := zr.Open(m.SHN.Files[0])
		if zerr != nil {
			return nil, formats.WrapErr(formats.CodecInternal, FormatName, zerr, "extract "+m.SHN.Files[0])
		}
		centroids, derr := decodePlane(centroidData)
		if derr != nil {
			return nil, formats.WrapErr(formats.CodecInternal, FormatName, derr, m.SHN.Files[0])
		}
		labels, err := openPlane(m.SHN.Files[1])
		if err != nil {
			return nil, err
		}
		bands := min(m.SHN.Bands, 3)
		shCoeffs := shCoeffsForBands[bands]
		cb := m.SHN.Codebook
		c.SH = make([]float32, n*shCoeffs*3)
		c.Meta.SHDegree = bands

		for i := 0; i < n; i++ {
			palette := int(labels.pix[i*4]) | int(labels.pix[i*4+1])<<8
			if palette >= m.SHN.Count {
				continue
			}
			for j := 0; j < shCoeffs; j++ {
				cx := (palette%64)*shCoeffs + j
				cy := palette / 64
				off := (cy*centroids.w + cx) * 4
				if off+2 >= len(centroids.pix) {
					return nil, formats.Errorf(formats.CodecInternal, FormatName, "centroid %d out of plane bounds", palette)
				}
				for ch := 0; ch < 3; ch++ {
					idx := centroids.pix[off+ch]
					if int(idx) < len(cb) {
						c.SH[i*shCoeffs*3+j*3+ch] = cb[idx]
					}
				}
			}
		}
	}

	if err := formats.FinishRead(FormatName, c, opts); err != nil {
		return nil, err
	}
	return c, nil
}
