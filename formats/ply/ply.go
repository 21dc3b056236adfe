// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ply implements the PLY splat codecs: the standard
// binary_little_endian vertex layout, the chunked compressed variant,
// and an auto-detecting reader that sniffs the header to choose
// between them.
package ply

import (
	"strconv"
	"strings"
)

// FormatName is the registry extension for standard PLY files.
const FormatName = "ply"

// CompressedFormatName is the registry extension for the compressed
// variant.
const CompressedFormatName = "compressed.ply"

const (
	magicLine  = "ply"
	formatLine = "format binary_little_endian 1.0"
	endHeader  = "end_header"
)

// degreeForDim maps the per-channel higher-order SH coefficient count
// to an SH degree.
func degreeForDim(dim int) int {
	switch {
	case dim < 3:
		return 0
	case dim < 8:
		return 1
	case dim < 15:
		return 2
	default:
		return 3
	}
}

// lineScanner walks the textual PLY header inside a binary buffer.
// Lines are trimmed of surrounding whitespace; blank and comment
// lines are skipped. After the header, rest returns the remaining
// binary payload.
type lineScanner struct {
	data []byte
	off  int
}

func (s *lineScanner) next() (string, bool) {
	for s.off < len(s.data) {
		end := s.off
		for end < len(s.data) && s.data[end] != '\n' {
			end++
		}
		line := strings.TrimSpace(string(s.data[s.off:end]))
		if end < len(s.data) {
			end++ // consume the newline
		}
		s.off = end
		if line == "" || strings.HasPrefix(line, "comment") {
			continue
		}
		return line, true
	}
	return "", false
}

func (s *lineScanner) rest() []byte {
	return s.data[s.off:]
}

// property is one "property <type> <name>" header declaration.
type property struct {
	typ  string
	name string
}

// element is one "element <name> <count>" declaration with its
// properties.
type element struct {
	name  string
	count int
	props []property
}

// parseElements reads the header's element declarations up to
// end_header. It assumes the magic and format lines were already
// consumed.
func parseElements(s *lineScanner) ([]element, bool) {
	var elems []element
	for {
		line, ok := s.next()
		if !ok {
			return nil, false
		}
		if line == endHeader {
			return elems, true
		}
		switch {
		case strings.HasPrefix(line, "element "):
			rest := line[len("element "):]
			name, countStr, ok := strings.Cut(rest, " ")
			if !ok {
				return nil, false
			}
			count, err := strconv.Atoi(strings.TrimSpace(countStr))
			if err != nil {
				return nil, false
			}
			elems = append(elems, element{name: name, count: count})
		case strings.HasPrefix(line, "property ") && len(elems) > 0:
			rest := line[len("property "):]
			typ, name, ok := strings.Cut(rest, " ")
			if !ok {
				return nil, false
			}
			e := &elems[len(elems)-1]
			e.props = append(e.props, property{typ: typ, name: name})
		}
	}
}
