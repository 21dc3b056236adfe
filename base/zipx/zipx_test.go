// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zipx

import (
	"bytes"
	"hash/crc32"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaussio/gaussio/base/binx"
)

func TestWriteReadRoundTrip(t *testing.T) {
	var w Writer
	w.Add("meta.json", []byte(`{"version":2}`))
	w.Add("data.bin", bytes.Repeat([]byte{0xab}, 1000))
	archive := w.Finalize()

	r, err := NewReader(archive)
	require.NoError(t, err)
	require.Len(t, r.Files(), 2)
	assert.Equal(t, "meta.json", r.Files()[0].Name)

	got, err := r.Open("meta.json")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"version":2}`), got)

	got, err = r.Open("data.bin")
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xab}, 1000), got)

	_, err = r.Open("missing")
	assert.Error(t, err)
}

func TestReaderSkipsLeadingGarbage(t *testing.T) {
	var w Writer
	w.Add("a.txt", []byte("hello"))
	archive := w.Finalize()

	// Bytes prepended to an archive shift every recorded offset; the
	// reader recovers by locating the end record from the tail and
	// rebasing the directory.
	prefixed := append(make([]byte, 42), archive...)
	r, err := NewReader(prefixed)
	require.NoError(t, err)
	require.Len(t, r.Files(), 1)
	got, err := r.Open("a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestReaderDeflatedEntry(t *testing.T) {
	payload := bytes.Repeat([]byte("gaussian splatting "), 50)

	var deflated bytes.Buffer
	fw, err := flate.NewWriter(&deflated, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = fw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, fw.Close())

	// Assemble an archive with one deflated entry by hand.
	name := "big.txt"
	var buf []byte
	lh := make([]byte, localFileHeaderLen)
	binx.PutU32(lh, 0, localFileHeaderSig)
	binx.PutU16(lh, 8, methodDeflated)
	binx.PutU32(lh, 14, crc32.ChecksumIEEE(payload))
	binx.PutU32(lh, 18, uint32(deflated.Len()))
	binx.PutU32(lh, 22, uint32(len(payload)))
	binx.PutU16(lh, 26, uint16(len(name)))
	buf = append(buf, lh...)
	buf = append(buf, name...)
	buf = append(buf, deflated.Bytes()...)

	dirOffset := len(buf)
	ch := make([]byte, centralDirHeaderLen)
	binx.PutU32(ch, 0, centralDirHeaderSig)
	binx.PutU16(ch, 10, methodDeflated)
	binx.PutU32(ch, 16, crc32.ChecksumIEEE(payload))
	binx.PutU32(ch, 20, uint32(deflated.Len()))
	binx.PutU32(ch, 24, uint32(len(payload)))
	binx.PutU16(ch, 28, uint16(len(name)))
	binx.PutU32(ch, 42, 0)
	buf = append(buf, ch...)
	buf = append(buf, name...)

	eocd := make([]byte, endOfCentralDirLen)
	binx.PutU32(eocd, 0, endOfCentralDirSig)
	binx.PutU16(eocd, 8, 1)
	binx.PutU16(eocd, 10, 1)
	binx.PutU32(eocd, 12, uint32(centralDirHeaderLen+len(name)))
	binx.PutU32(eocd, 16, uint32(dirOffset))
	buf = append(buf, eocd...)

	r, err := NewReader(buf)
	require.NoError(t, err)
	got, err := r.Open(name)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReaderRejectsJunk(t *testing.T) {
	_, err := NewReader(nil)
	assert.Error(t, err)
	_, err = NewReader([]byte("definitely not a zip archive at all"))
	assert.Error(t, err)
}
