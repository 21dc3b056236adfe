// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gauss

import (
	stderrors "errors"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// Validation sentinels, matchable with errors.Is.
var (
	// ErrSizeMismatch reports an array whose length disagrees with
	// NumPoints, or a negative NumPoints.
	ErrSizeMismatch = stderrors.New("size mismatch")

	// ErrNonFinite reports a NaN or infinity in a primary array
	// during a strict validation sweep.
	ErrNonFinite = stderrors.New("non-finite value")
)

// Validate checks the structural invariants of c: NumPoints >= 0 and
// every primary array sized to it, with SH sized by Meta.SHDegree.
// When strict, it additionally sweeps the six primary arrays for
// non-finite values. The first problem found is returned; c is never
// mutated.
func Validate(c *Cloud, strict bool) error {
	if c.NumPoints < 0 {
		return errors.Wrap(ErrSizeMismatch, "numPoints is negative")
	}
	n := int(c.NumPoints)

	arrays := []struct {
		name string
		data []float32
		want int
	}{
		{"positions", c.Positions, 3 * n},
		{"scales", c.Scales, 3 * n},
		{"rotations", c.Rotations, 4 * n},
		{"alphas", c.Alphas, n},
		{"colors", c.Colors, 3 * n},
		{"sh", c.SH, SHCoeffsPerPoint(c.Meta.SHDegree) * n},
	}
	for _, a := range arrays {
		if len(a.data) != a.want {
			return errors.Wrapf(ErrSizeMismatch, "%s: got %d values, expect %d", a.name, len(a.data), a.want)
		}
	}

	if strict {
		for _, a := range arrays {
			for _, v := range a.data {
				if math32.IsNaN(v) || math32.IsInf(v, 0) {
					return errors.Wrapf(ErrNonFinite, "in %s", a.name)
				}
			}
		}
	}
	return nil
}
