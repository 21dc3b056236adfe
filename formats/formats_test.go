// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formats

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaussio/gaussio/gauss"
)

type nopReader struct{ tag string }

func (nopReader) Read(data []byte, opts *ReadOptions) (*gauss.Cloud, error) {
	return &gauss.Cloud{}, nil
}

type nopWriter struct{}

func (nopWriter) Write(c *gauss.Cloud, opts *WriteOptions) ([]byte, error) {
	return nil, nil
}

func TestRegistryNormalization(t *testing.T) {
	reg := NewRegistry()
	r := nopReader{tag: "splat"}
	w := nopWriter{}
	reg.RegisterReader([]string{"splat"}, r)
	reg.RegisterWriter([]string{".splat"}, w)

	assert.NotNil(t, reg.ReaderFor("splat"))
	assert.NotNil(t, reg.ReaderFor(".splat"))
	assert.NotNil(t, reg.WriterFor("splat"))
	assert.Nil(t, reg.ReaderFor("SPLAT")) // case-sensitive
	assert.Nil(t, reg.ReaderFor("ply"))
}

func TestRegistryCompressedPlyDistinct(t *testing.T) {
	reg := NewRegistry()
	plain := nopReader{tag: "plain"}
	compressed := nopReader{tag: "compressed"}
	reg.RegisterReader([]string{"ply"}, plain)
	reg.RegisterReader([]string{"compressed.ply"}, compressed)

	// The two-segment key must not be shadowed by the ply entry.
	assert.Equal(t, Reader(compressed), reg.ReaderFor("compressed.ply"))
	assert.Equal(t, Reader(compressed), reg.ReaderFor(".compressed.ply"))
	assert.Equal(t, Reader(plain), reg.ReaderFor("ply"))
}

func TestErrorKinds(t *testing.T) {
	err := Errorf(Truncated, "ply", "need %d bytes", 100)
	assert.Equal(t, Truncated, KindOf(err))
	assert.Contains(t, err.Error(), "ply")
	assert.Contains(t, err.Error(), "need 100 bytes")
	assert.Equal(t, Unspecified, KindOf(assert.AnError))

	for k := EmptyInput; k <= CodecInternal; k++ {
		assert.NotEqual(t, "unspecified", k.String())
	}
}

func TestRecover(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err, "sog")
		panic("webp decoder exploded")
	}
	err := run()
	require.Error(t, err)
	assert.Equal(t, CodecInternal, KindOf(err))
	assert.Contains(t, err.Error(), "webp decoder exploded")
}

func TestFinishReadWarnChannel(t *testing.T) {
	c := &gauss.Cloud{NumPoints: 2} // arrays missing
	var warned []string
	opts := &ReadOptions{Warn: func(m string) { warned = append(warned, m) }}
	assert.NoError(t, FinishRead("splat", c, opts))
	require.Len(t, warned, 1)
	assert.Contains(t, warned[0], "positions")

	// Strict upgrades the warning to an error.
	err := FinishRead("splat", c, &ReadOptions{Strict: true})
	require.Error(t, err)
	assert.Equal(t, SizeMismatch, KindOf(err))
}

func TestFinishReadNonFinite(t *testing.T) {
	c := &gauss.Cloud{}
	c.Init(1, 0)
	c.Rotations[0] = 1
	c.Positions[2] = math32.NaN()

	assert.NoError(t, FinishRead("ply", c, nil))
	err := FinishRead("ply", c, &ReadOptions{Strict: true})
	require.Error(t, err)
	assert.Equal(t, NonFinite, KindOf(err))
}

func TestBeginWrite(t *testing.T) {
	c := &gauss.Cloud{}
	c.Init(1, 0)
	c.Rotations[0] = 1
	assert.NoError(t, BeginWrite("ksplat", c, &WriteOptions{Strict: true}))

	c.Alphas = nil
	var warned []string
	assert.NoError(t, BeginWrite("ksplat", c, &WriteOptions{Warn: func(m string) { warned = append(warned, m) }}))
	assert.Len(t, warned, 1)
	err := BeginWrite("ksplat", c, &WriteOptions{Strict: true})
	assert.Equal(t, SizeMismatch, KindOf(err))
}
