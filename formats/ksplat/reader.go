// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ksplat

import (
	"github.com/gaussio/gaussio/base/binx"
	"github.com/gaussio/gaussio/formats"
	"github.com/gaussio/gaussio/gauss"
)

// Reader decodes .ksplat files in any of the three compression modes.
// Sections may carry different harmonics degrees; the cloud's degree
// is the maximum over sections and lower-degree splats zero-pad.
type Reader struct{}

// NewReader returns the ksplat reader.
func NewReader() *Reader { return &Reader{} }

var _ formats.Reader = (*Reader)(nil)

// sectionHeader is one decoded 1024-byte section header.
type sectionHeader struct {
	splatCount      uint32
	maxSplats       uint32
	bucketCapacity  uint32
	bucketCount     uint32
	blockSize       float32
	bucketStorage   uint16
	quantRange      uint32
	fullBuckets     uint32
	partialBuckets  uint32
	harmonicsDegree int
}

func readSectionHeader(data []byte, off int) sectionHeader {
	return sectionHeader{
		splatCount:      binx.U32(data, off),
		maxSplats:       binx.U32(data, off+4),
		bucketCapacity:  binx.U32(data, off+8),
		bucketCount:     binx.U32(data, off+12),
		blockSize:       binx.F32(data, off+16),
		bucketStorage:   binx.U16(data, off+20),
		quantRange:      binx.U32(data, off+24),
		fullBuckets:     binx.U32(data, off+32),
		partialBuckets:  binx.U32(data, off+36),
		harmonicsDegree: int(binx.U16(data, off+40)),
	}
}

// Read decodes a .ksplat buffer into a cloud.
func (*Reader) Read(data []byte, opts *formats.ReadOptions) (c *gauss.Cloud, err error) {
	defer formats.Recover(&err, FormatName)

	if len(data) == 0 {
		return nil, formats.Errorf(formats.EmptyInput, FormatName, "empty input")
	}
	if len(data) < mainHeaderSize {
		return nil, formats.Errorf(formats.Truncated, FormatName, "file too small to hold a main header")
	}

	major, minor := data[0], data[1]
	if major != 0 || minor < 1 {
		return nil, formats.Errorf(formats.UnsupportedVariant, FormatName, "unsupported version %d.%d", major, minor)
	}
	maxSections := int(binx.U32(data, 4))
	numSplats := int(binx.U32(data, 16))
	mode := int(binx.U16(data, 20))
	if mode > 2 {
		return nil, formats.Errorf(formats.UnsupportedVariant, FormatName, "invalid compression mode %d", mode)
	}
	minH := binx.F32(data, 36)
	maxH := binx.F32(data, 40)
	if minH == 0 && maxH == 0 {
		minH, maxH = defaultMinHarmonics, defaultMaxHarmonics
	}

	lay := &layouts[mode]

	// First pass over the section headers for the maximum harmonics
	// degree; empty sections do not contribute.
	maxDegree := 0
	for si := 0; si < maxSections; si++ {
		off := mainHeaderSize + si*sectionHeaderSize
		if err := binx.Check(data, off, sectionHeaderSize); err != nil {
			return nil, formats.Errorf(formats.Truncated, FormatName, "insufficient data for section header %d", si)
		}
		sh := readSectionHeader(data, off)
		if sh.splatCount == 0 {
			continue
		}
		if sh.harmonicsDegree > 3 {
			return nil, formats.Errorf(formats.UnsupportedVariant, FormatName, "section %d: harmonics degree %d out of range", si, sh.harmonicsDegree)
		}
		maxDegree = max(maxDegree, sh.harmonicsDegree)
	}

	c = &gauss.Cloud{Meta: gauss.Metadata{SourceFormat: FormatName}}
	c.Init(numSplats, maxDegree)
	shPerPoint := gauss.SHCoeffsPerPoint(maxDegree)

	dataOff := mainHeaderSize + maxSections*sectionHeaderSize
	splatIndex := 0

	for si := 0; si < maxSections; si++ {
		sh := readSectionHeader(data, mainHeaderSize+si*sectionHeaderSize)
		if sh.harmonicsDegree > 3 {
			return nil, formats.Errorf(formats.UnsupportedVariant, FormatName, "section %d: harmonics degree %d out of range", si, sh.harmonicsDegree)
		}
		quantRange := sh.quantRange
		if quantRange == 0 {
			quantRange = lay.defaultQuantRange
		}

		fullBucketSplats := int(sh.fullBuckets * sh.bucketCapacity)
		partialMetaSize := int(sh.partialBuckets) * 4
		bucketStorageSize := int(sh.bucketStorage)*int(sh.bucketCount) + partialMetaSize
		harmonicsCount := harmonicsComponents[sh.harmonicsDegree]
		bytesPerSplat := lay.bytesPerSplat(sh.harmonicsDegree)
		sectionDataSize := bytesPerSplat * int(sh.maxSplats)

		if err := binx.Check(data, dataOff, bucketStorageSize+sectionDataSize); err != nil {
			return nil, formats.Errorf(formats.Truncated, FormatName, "insufficient data for section %d", si)
		}

		positionScale := sh.blockSize / 2 / float32(quantRange)
		bucketCentersOff := dataOff + partialMetaSize
		if err := binx.Check(data, bucketCentersOff, int(sh.bucketCount)*12); err != nil {
			return nil, formats.Errorf(formats.Truncated, FormatName, "insufficient data for section %d bucket centers", si)
		}
		splats := data[dataOff+bucketStorageSize:]

		bucketCenter := func(bucket, axis int) float32 {
			return binx.F32(data, bucketCentersOff+(bucket*3+axis)*4)
		}
		partialBucketSize := func(i int) int {
			return int(binx.U32(data, dataOff+i*4))
		}

		// Walk partial buckets in order past the full-bucket region.
		currentPartial := int(sh.fullBuckets)
		currentPartialBase := fullBucketSplats

		for splatIdx := 0; splatIdx < int(sh.splatCount); splatIdx++ {
			rec := splats[splatIdx*bytesPerSplat : (splatIdx+1)*bytesPerSplat]

			bucket := 0
			if splatIdx < fullBucketSplats {
				bucket = splatIdx / int(sh.bucketCapacity)
			} else {
				size := partialBucketSize(currentPartial - int(sh.fullBuckets))
				if splatIdx >= currentPartialBase+size {
					currentPartial++
					currentPartialBase += size
				}
				bucket = currentPartial
			}

			var x, y, z float32
			if mode == 0 {
				x = binx.F32(rec, 0)
				y = binx.F32(rec, 4)
				z = binx.F32(rec, 8)
			} else {
				x = (float32(binx.I16(rec, 0))-float32(quantRange))*positionScale + bucketCenter(bucket, 0)
				y = (float32(binx.I16(rec, 2))-float32(quantRange))*positionScale + bucketCenter(bucket, 1)
				z = (float32(binx.I16(rec, 4))-float32(quantRange))*positionScale + bucketCenter(bucket, 2)
			}
			c.Positions[splatIndex*3+0] = x
			c.Positions[splatIndex*3+1] = y
			c.Positions[splatIndex*3+2] = z

			for d := 0; d < 3; d++ {
				var s float32
				if mode == 0 {
					s = binx.F32(rec, lay.scaleStart+d*4)
				} else {
					s = binx.F16(rec, lay.scaleStart+d*2)
				}
				c.Scales[splatIndex*3+d] = gauss.LogScale(s)
			}

			var qw, qx, qy, qz float32
			switch {
			case lay.rotationBytes == 4:
				qw, qx, qy, qz = binx.UnpackQuatSmallest3(binx.U32(rec, lay.rotationStart))
			case mode == 0:
				qw = binx.F32(rec, lay.rotationStart)
				qx = binx.F32(rec, lay.rotationStart+4)
				qy = binx.F32(rec, lay.rotationStart+8)
				qz = binx.F32(rec, lay.rotationStart+12)
			default:
				qw = binx.F16(rec, lay.rotationStart)
				qx = binx.F16(rec, lay.rotationStart+2)
				qy = binx.F16(rec, lay.rotationStart+4)
				qz = binx.F16(rec, lay.rotationStart+6)
			}
			c.Rotations[splatIndex*4+0] = qw
			c.Rotations[splatIndex*4+1] = qx
			c.Rotations[splatIndex*4+2] = qy
			c.Rotations[splatIndex*4+3] = qz

			for d := 0; d < 3; d++ {
				c.Colors[splatIndex*3+d] = gauss.ByteToDC(rec[lay.colorStart+d])
			}
			c.Alphas[splatIndex] = gauss.Logit(float32(rec[lay.colorStart+3])/255, 1e-6)

			// Disk SH is channel-first; interleave per coefficient,
			// leaving higher coefficients zero in lower-degree
			// sections.
			coeffsPerChannel := harmonicsCount / 3
			for i := 0; i < harmonicsCount; i++ {
				var v float32
				switch mode {
				case 0:
					v = binx.F32(rec, lay.harmonicsStart+i*4)
				case 1:
					v = binx.F16(rec, lay.harmonicsStart+i*2)
				default:
					v = minH + float32(rec[lay.harmonicsStart+i])/255*(maxH-minH)
				}
				channel := i / coeffsPerChannel
				coeff := i % coeffsPerChannel
				c.SH[splatIndex*shPerPoint+coeff*3+channel] = v
			}

			splatIndex++
		}

		dataOff += bucketStorageSize + sectionDataSize
	}

	if splatIndex != numSplats {
		return nil, formats.Errorf(formats.CodecInternal, FormatName, "splat count mismatch: expected %d, processed %d", numSplats, splatIndex)
	}

	if err := formats.FinishRead(FormatName, c, opts); err != nil {
		return nil, err
	}
	return c, nil
}
