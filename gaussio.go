// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gaussio converts 3D Gaussian splat point clouds between
// file formats. Six codecs translate through a single in-memory
// representation, [gauss.Cloud]: standard and compressed PLY (with
// header auto-detection), SPLAT, KSPLAT, SPZ, and SOG.
//
// All codecs are memory-to-memory; callers own file I/O. A typical
// conversion is:
//
//	reg := gaussio.NewRegistry()
//	cloud, err := reg.ReaderFor("ply").Read(input, nil)
//	...
//	output, err := reg.WriterFor("sog").Write(cloud, nil)
package gaussio

import (
	"strings"

	"github.com/gaussio/gaussio/formats"
	"github.com/gaussio/gaussio/formats/ksplat"
	"github.com/gaussio/gaussio/formats/ply"
	"github.com/gaussio/gaussio/formats/sog"
	"github.com/gaussio/gaussio/formats/splat"
	"github.com/gaussio/gaussio/formats/spz"
)

// NewRegistry returns a registry with the built-in codecs installed.
// The "ply" extension reads through the auto-detecting reader and
// writes the standard variant; "compressed.ply" addresses the
// compressed variant directly.
func NewRegistry() *formats.Registry {
	reg := formats.NewRegistry()

	reg.RegisterReader([]string{spz.FormatName}, spz.NewReader())
	reg.RegisterWriter([]string{spz.FormatName}, spz.NewWriter())

	reg.RegisterReader([]string{ply.FormatName}, ply.NewAutoReader())
	reg.RegisterWriter([]string{ply.FormatName}, ply.NewWriter())
	reg.RegisterReader([]string{ply.CompressedFormatName}, ply.NewCompressedReader())
	reg.RegisterWriter([]string{ply.CompressedFormatName}, ply.NewCompressedWriter())

	reg.RegisterReader([]string{splat.FormatName}, splat.NewReader())
	reg.RegisterWriter([]string{splat.FormatName}, splat.NewWriter())

	reg.RegisterReader([]string{ksplat.FormatName}, ksplat.NewReader())
	reg.RegisterWriter([]string{ksplat.FormatName}, ksplat.NewWriter())

	reg.RegisterReader([]string{sog.FormatName}, sog.NewReader())
	reg.RegisterWriter([]string{sog.FormatName}, sog.NewWriter())

	return reg
}

// Ext extracts the registry extension from a file name, honoring the
// two-segment "compressed.ply" suffix; "model.compressed.ply" must
// not truncate to "ply". The result has no leading dot.
func Ext(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, "."+ply.CompressedFormatName) {
		return ply.CompressedFormatName
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return ""
}
