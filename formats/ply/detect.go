// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ply

import (
	"fmt"

	"github.com/gaussio/gaussio/formats"
	"github.com/gaussio/gaussio/gauss"
)

// AutoReader sniffs a PLY header and dispatches to the compressed
// reader when the file is structurally a compressed splat PLY, and to
// the standard reader otherwise. The payload is never touched during
// detection.
type AutoReader struct {
	std        Reader
	compressed CompressedReader
}

// NewAutoReader returns the auto-detecting PLY reader.
func NewAutoReader() *AutoReader { return &AutoReader{} }

var _ formats.Reader = (*AutoReader)(nil)

// Read decodes data with whichever PLY variant its header declares.
func (r *AutoReader) Read(data []byte, opts *formats.ReadOptions) (*gauss.Cloud, error) {
	if isCompressed(data) {
		return r.compressed.Read(data, opts)
	}
	return r.std.Read(data, opts)
}

// hasAll reports whether props contains every (typ, name) pair with
// the wanted type. Order is not constrained.
func hasAll(props []property, typ string, names []string) bool {
	if len(props) != len(names) {
		return false
	}
	for _, want := range names {
		found := false
		for _, p := range props {
			if p.typ == typ && p.name == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// isCompressed reports whether the header declares the compressed
// splat layout: a chunk element with the exact 18-float range set, a
// vertex element with the exact 4-uint packed set, a chunk count of
// ceil(vertices/256), and optionally an sh element of uchar f_rest
// properties in an admissible count.
func isCompressed(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	s := &lineScanner{data: data}
	if line, ok := s.next(); !ok || line != magicLine {
		return false
	}
	if line, ok := s.next(); !ok || line != formatLine {
		return false
	}
	elems, ok := parseElements(s)
	if !ok {
		return false
	}
	if len(elems) != 2 && len(elems) != 3 {
		return false
	}

	byName := func(name string) *element {
		for i := range elems {
			if elems[i].name == name {
				return &elems[i]
			}
		}
		return nil
	}

	chunk := byName("chunk")
	if chunk == nil || !hasAll(chunk.props, "float", chunkProps) {
		return false
	}
	vertex := byName("vertex")
	if vertex == nil || !hasAll(vertex.props, "uint", vertexProps) {
		return false
	}
	if chunk.count != chunkCountFor(vertex.count) {
		return false
	}

	if len(elems) == 3 {
		sh := byName("sh")
		if sh == nil || sh.count != vertex.count {
			return false
		}
		if !validSHPropCounts[len(sh.props)] {
			return false
		}
		seen := map[string]bool{}
		for _, p := range sh.props {
			if p.typ != "uchar" || seen[p.name] {
				return false
			}
			seen[p.name] = true
		}
		for i := range sh.props {
			if !seen[fmt.Sprintf("f_rest_%d", i)] {
				return false
			}
		}
	}
	return true
}
