// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sog

import (
	"bytes"
	"image"
	"image/draw"

	"github.com/HugoSmits86/nativewebp"
	"github.com/pkg/errors"
	"golang.org/x/image/webp"
)

// plane is a decoded RGBA8 image plane. Pixel p's channels live at
// pix[p*4 .. p*4+3] in row-major order.
type plane struct {
	pix  []uint8
	w, h int
}

func (p *plane) pixels() int { return p.w * p.h }

// decodePlane decodes a WebP payload into RGBA8.
func decodePlane(data []byte) (*plane, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image payload")
	}
	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "webp decode")
	}
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != b.Dx()*4 || b.Min != (image.Point{}) {
		dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		nrgba = dst
	}
	return &plane{pix: nrgba.Pix, w: b.Dx(), h: b.Dy()}, nil
}

// encodePlane encodes RGBA8 pixels losslessly as WebP.
func encodePlane(pix []uint8, w, h int) ([]byte, error) {
	img := &image.NRGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		return nil, errors.Wrap(err, "webp encode")
	}
	return buf.Bytes(), nil
}
