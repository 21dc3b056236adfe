// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formats

import "strings"

// Registry maps normalized file extensions to codecs. Extensions are
// case-sensitive with one leading dot stripped; multi-segment
// extensions such as "compressed.ply" are distinct keys and are never
// shadowed by their last segment. A Registry is owned by its caller
// and is safe for concurrent lookup once populated.
type Registry struct {
	readers map[string]Reader
	writers map[string]Writer
}

// NewRegistry returns an empty registry. The root gaussio package
// provides a constructor with the built-in codecs installed.
func NewRegistry() *Registry {
	return &Registry{
		readers: map[string]Reader{},
		writers: map[string]Writer{},
	}
}

func normalizeExt(ext string) string {
	return strings.TrimPrefix(ext, ".")
}

// RegisterReader installs r under every extension in exts.
func (g *Registry) RegisterReader(exts []string, r Reader) {
	for _, e := range exts {
		g.readers[normalizeExt(e)] = r
	}
}

// RegisterWriter installs w under every extension in exts.
func (g *Registry) RegisterWriter(exts []string, w Writer) {
	for _, e := range exts {
		g.writers[normalizeExt(e)] = w
	}
}

// ReaderFor returns the reader registered for ext, or nil.
func (g *Registry) ReaderFor(ext string) Reader {
	return g.readers[normalizeExt(ext)]
}

// WriterFor returns the writer registered for ext, or nil.
func (g *Registry) WriterFor(ext string) Writer {
	return g.writers[normalizeExt(ext)]
}
