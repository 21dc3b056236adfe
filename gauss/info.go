// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gauss

import (
	"sort"

	"github.com/dustin/go-humanize"
)

// FloatStats summarizes a single float attribute array.
type FloatStats struct {
	Min   float32
	Max   float32
	Mean  float32
	Count int
}

// Bounds is an axis-aligned bounding box over positions.
type Bounds struct {
	MinX, MaxX float32
	MinY, MaxY float32
	MinZ, MaxZ float32
}

// ExtraAttr names one unrecognized attribute and its byte size.
type ExtraAttr struct {
	Name string
	Size int
}

// Info is a read-only summary of a cloud: counts, geometry statistics,
// and an in-memory size breakdown.
type Info struct {
	NumPoints    int32
	FileSize     int
	SourceFormat string

	Handedness  Handedness
	Up          UpAxis
	Unit        LengthUnit
	Color       ColorSpace
	SHDegree    int
	Antialiased bool

	Bounds     Bounds
	ScaleStats FloatStats
	AlphaStats FloatStats

	PositionsSize int
	ScalesSize    int
	RotationsSize int
	AlphasSize    int
	ColorsSize    int
	SHSize        int
	TotalSize     int

	Extras []ExtraAttr
}

func computeStats(data []float32) FloatStats {
	var s FloatStats
	if len(data) == 0 {
		return s
	}
	s.Count = len(data)
	s.Min, s.Max = data[0], data[0]
	sum := float64(0)
	for _, v := range data {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += float64(v)
	}
	s.Mean = float32(sum / float64(len(data)))
	return s
}

func computeBounds(positions []float32) Bounds {
	var b Bounds
	if len(positions) < 3 {
		return b
	}
	b.MinX, b.MaxX = positions[0], positions[0]
	b.MinY, b.MaxY = positions[1], positions[1]
	b.MinZ, b.MaxZ = positions[2], positions[2]
	for i := 3; i+2 < len(positions); i += 3 {
		b.MinX = min(b.MinX, positions[i])
		b.MaxX = max(b.MaxX, positions[i])
		b.MinY = min(b.MinY, positions[i+1])
		b.MaxY = max(b.MaxY, positions[i+1])
		b.MinZ = min(b.MinZ, positions[i+2])
		b.MaxZ = max(b.MaxZ, positions[i+2])
	}
	return b
}

// Summarize computes an [Info] over c. fileSize is the size of the
// encoded source file when known, 0 otherwise. c is not mutated.
func Summarize(c *Cloud, fileSize int) *Info {
	info := &Info{
		NumPoints:    c.NumPoints,
		FileSize:     fileSize,
		SourceFormat: c.Meta.SourceFormat,
		Handedness:   c.Meta.Handedness,
		Up:           c.Meta.Up,
		Unit:         c.Meta.Unit,
		Color:        c.Meta.Color,
		SHDegree:     c.Meta.SHDegree,
		Antialiased:  c.Meta.Antialiased,

		Bounds:     computeBounds(c.Positions),
		ScaleStats: computeStats(c.Scales),
		AlphaStats: computeStats(c.Alphas),

		PositionsSize: 4 * len(c.Positions),
		ScalesSize:    4 * len(c.Scales),
		RotationsSize: 4 * len(c.Rotations),
		AlphasSize:    4 * len(c.Alphas),
		ColorsSize:    4 * len(c.Colors),
		SHSize:        4 * len(c.SH),
	}
	info.TotalSize = info.PositionsSize + info.ScalesSize + info.RotationsSize +
		info.AlphasSize + info.ColorsSize + info.SHSize

	for name, arr := range c.Extras {
		info.Extras = append(info.Extras, ExtraAttr{Name: name, Size: 4 * len(arr)})
		info.TotalSize += 4 * len(arr)
	}
	sort.Slice(info.Extras, func(i, j int) bool { return info.Extras[i].Name < info.Extras[j].Name })
	return info
}

// FormatBytes renders a byte count for display, e.g. "1.2 MiB".
func FormatBytes(n int) string {
	return humanize.IBytes(uint64(n))
}
