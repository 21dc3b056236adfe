// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package zipx reads and writes the minimal subset of the ZIP
// container used by splat archives: stored or deflated entries, one
// disk, classical central directory. The reader tolerates leading
// garbage by scanning for the end-of-central-directory record from
// the tail, which archive readers are expected to do.
package zipx

import (
	"bytes"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"

	"github.com/gaussio/gaussio/base/binx"
)

// ZIP record signatures. These are fixed byte sequences, not
// little-endian quantities.
const (
	localFileHeaderSig  = 0x04034b50
	centralDirHeaderSig = 0x02014b50
	endOfCentralDirSig  = 0x06054b50

	localFileHeaderLen  = 30
	centralDirHeaderLen = 46
	endOfCentralDirLen  = 22

	// Compression methods per APPNOTE.
	methodStored   = 0
	methodDeflated = 8
)

// File is one central-directory entry.
type File struct {
	Name             string
	Method           uint16
	CompressedSize   uint32
	UncompressedSize uint32
	headerOffset     uint32
}

// Reader indexes a ZIP archive held in memory.
type Reader struct {
	data  []byte
	files []File

	// base corrects all recorded offsets when content precedes the
	// archive: the difference between where the central directory
	// actually ends and where the EOCD record says it should.
	base int
}

// NewReader parses the central directory of the archive in data.
// The end-of-central-directory record is located by scanning
// backwards from the tail, so content prepended to the archive does
// not break parsing.
func NewReader(data []byte) (*Reader, error) {
	if len(data) < endOfCentralDirLen {
		return nil, errors.New("zipx: too small to be a zip archive")
	}

	eocd := -1
	for pos := len(data) - endOfCentralDirLen; pos >= 0; pos-- {
		if binx.U32(data, pos) == endOfCentralDirSig {
			eocd = pos
			break
		}
	}
	if eocd < 0 {
		return nil, errors.New("zipx: end of central directory not found")
	}

	numEntries := int(binx.U16(data, eocd+10))
	dirSize := int(binx.U32(data, eocd+12))
	dirOffset := int(binx.U32(data, eocd+16))

	r := &Reader{data: data}
	// The directory must end where the EOCD record begins; any gap is
	// content prepended to the archive, which shifts every recorded
	// offset forward by the same amount.
	if base := eocd - dirSize - dirOffset; base > 0 {
		r.base = base
	}
	pos := dirOffset + r.base
	for i := 0; i < numEntries && pos < eocd; i++ {
		if pos+centralDirHeaderLen > len(data) {
			break
		}
		if binx.U32(data, pos) != centralDirHeaderSig {
			break
		}
		nameLen := int(binx.U16(data, pos+28))
		extraLen := int(binx.U16(data, pos+30))
		commentLen := int(binx.U16(data, pos+32))
		if pos+centralDirHeaderLen+nameLen > len(data) {
			break
		}
		r.files = append(r.files, File{
			Name:             string(data[pos+centralDirHeaderLen : pos+centralDirHeaderLen+nameLen]),
			Method:           binx.U16(data, pos+10),
			CompressedSize:   binx.U32(data, pos+20),
			UncompressedSize: binx.U32(data, pos+24),
			headerOffset:     binx.U32(data, pos+42),
		})
		pos += centralDirHeaderLen + nameLen + extraLen + commentLen
	}
	if len(r.files) == 0 {
		return nil, errors.New("zipx: no central directory entries")
	}
	return r, nil
}

// Files lists the archive entries in central-directory order.
func (r *Reader) Files() []File { return r.files }

// Open extracts the named entry, inflating it if deflated.
func (r *Reader) Open(name string) ([]byte, error) {
	for i := range r.files {
		if r.files[i].Name == name {
			return r.extract(&r.files[i])
		}
	}
	return nil, errors.Errorf("zipx: entry %q not found", name)
}

func (r *Reader) extract(f *File) ([]byte, error) {
	pos := int(f.headerOffset) + r.base
	if err := binx.Check(r.data, pos, localFileHeaderLen); err != nil {
		return nil, errors.Wrapf(err, "zipx: entry %q", f.Name)
	}
	if binx.U32(r.data, pos) != localFileHeaderSig {
		return nil, errors.Errorf("zipx: entry %q: bad local file header", f.Name)
	}
	nameLen := int(binx.U16(r.data, pos+26))
	extraLen := int(binx.U16(r.data, pos+28))
	dataOff := pos + localFileHeaderLen + nameLen + extraLen
	if err := binx.Check(r.data, dataOff, int(f.CompressedSize)); err != nil {
		return nil, errors.Wrapf(err, "zipx: entry %q", f.Name)
	}
	raw := r.data[dataOff : dataOff+int(f.CompressedSize)]

	switch f.Method {
	case methodStored:
		out := make([]byte, len(raw))
		copy(out, raw)
		return out, nil
	case methodDeflated:
		fr := flate.NewReader(bytes.NewReader(raw))
		defer fr.Close()
		out := make([]byte, 0, f.UncompressedSize)
		buf := bytes.NewBuffer(out)
		if _, err := io.Copy(buf, io.LimitReader(fr, int64(f.UncompressedSize))); err != nil {
			return nil, errors.Wrapf(err, "zipx: entry %q: inflate", f.Name)
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.Errorf("zipx: entry %q: unsupported compression method %d", f.Name, f.Method)
	}
}

// Writer builds a ZIP archive of stored entries in memory.
// The zero value is ready to use.
type Writer struct {
	buf     []byte
	entries []writerEntry
}

type writerEntry struct {
	name   string
	offset uint32
	size   uint32
	crc    uint32
}

// Add appends one stored entry.
func (w *Writer) Add(name string, data []byte) {
	e := writerEntry{
		name:   name,
		offset: uint32(len(w.buf)),
		size:   uint32(len(data)),
		crc:    crc32.ChecksumIEEE(data),
	}

	h := make([]byte, localFileHeaderLen)
	binx.PutU32(h, 0, localFileHeaderSig)
	binx.PutU16(h, 4, 20) // version needed
	binx.PutU16(h, 8, methodStored)
	binx.PutU32(h, 14, e.crc)
	binx.PutU32(h, 18, e.size)
	binx.PutU32(h, 22, e.size)
	binx.PutU16(h, 26, uint16(len(name)))
	w.buf = append(w.buf, h...)
	w.buf = append(w.buf, name...)
	w.buf = append(w.buf, data...)

	w.entries = append(w.entries, e)
}

// Finalize appends the central directory and returns the archive.
// The Writer must not be reused afterwards.
func (w *Writer) Finalize() []byte {
	dirOffset := uint32(len(w.buf))
	for _, e := range w.entries {
		h := make([]byte, centralDirHeaderLen)
		binx.PutU32(h, 0, centralDirHeaderSig)
		binx.PutU16(h, 4, 20) // version made by
		binx.PutU16(h, 6, 20) // version needed
		binx.PutU16(h, 10, methodStored)
		binx.PutU32(h, 16, e.crc)
		binx.PutU32(h, 20, e.size)
		binx.PutU32(h, 24, e.size)
		binx.PutU16(h, 28, uint16(len(e.name)))
		binx.PutU32(h, 42, e.offset)
		w.buf = append(w.buf, h...)
		w.buf = append(w.buf, e.name...)
	}
	dirSize := uint32(len(w.buf)) - dirOffset

	t := make([]byte, endOfCentralDirLen)
	binx.PutU32(t, 0, endOfCentralDirSig)
	binx.PutU16(t, 8, uint16(len(w.entries)))
	binx.PutU16(t, 10, uint16(len(w.entries)))
	binx.PutU32(t, 12, dirSize)
	binx.PutU32(t, 16, dirOffset)
	return append(w.buf, t...)
}
