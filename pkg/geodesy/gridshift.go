// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

package geodesy

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geodesy/pkg/geodesy/coords"
	"github.com/cockroachdb/geodesy/pkg/geodesy/grid"
	"github.com/cockroachdb/geodesy/pkg/geodesy/opdef"
)

// gridshift applies a datum shift by interpolation in a correction grid
// provided by the Context.
//
// A one band grid is a vertical (geoid) correction: the forward direction
// subtracts it from the third coordinate. Two and three band grids are
// horizontal resp. 3D shifts: the forward direction adds the corrections,
// and the inverse iterates (converging well under five steps for
// real-world grids).
//
// The grids parameter is a comma separated list tried left to right per
// point; a name prefixed with '@' is optional (skipped when missing
// rather than failing construction), and a terminal '@null' passes
// uncovered points through unchanged. Without '@null', an uncovered point
// is stamped NaN and counted as a failure.

var gridshiftGamut = []opdef.OpParameter{
	opdef.Flag("inv"),
	opdef.Texts("grids"),
}

// resolveGridList resolves a grid name list with the '@'-optional and
// '@null' conventions. The second return value reports whether the list
// was terminated by '@null'.
func resolveGridList(ctx Context, names []string) ([]grid.Grid, bool, error) {
	var grids []grid.Grid
	for _, name := range names {
		optional := strings.HasPrefix(name, "@")
		name = strings.TrimPrefix(name, "@")
		if name == "null" {
			// Any further grids after a null grid are unreachable.
			return grids, true, nil
		}
		g, err := ctx.GetGrid(name)
		if err != nil {
			if optional {
				continue
			}
			return nil, false, errors.Mark(
				errors.Wrapf(err, "gridshift: required grid %q", name), opdef.ErrIO)
		}
		grids = append(grids, g)
	}
	return grids, false, nil
}

// gridsAt finds the first grid covering the position, trying an exact
// containment pass before allowing a half-cell margin.
func gridsAt(grids []grid.Grid, position coords.Coor4D) (grid.Grid, coords.Coor4D, bool) {
	for _, margin := range []float64{0, 0.5} {
		for _, g := range grids {
			if v, ok := g.At(position, margin); ok {
				return g, v, true
			}
		}
	}
	return nil, coords.Coor4D{}, false
}

func newGridshift(raw opdef.RawParameters, ctx Context) (*Op, error) {
	params, err := opdef.Parse(raw, gridshiftGamut)
	if err != nil {
		return nil, err
	}
	names, err := params.Texts("grids")
	if err != nil {
		return nil, err
	}
	grids, useNullGrid, err := resolveGridList(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(grids) == 0 && !useNullGrid {
		return nil, opdef.Constructionf("gridshift: no usable grids in %v", names)
	}

	fwd := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		successes := 0
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			g, d, ok := gridsAt(grids, c)
			if !ok {
				if useNullGrid {
					successes++
					continue
				}
				operands.Set(i, coords.Nan())
				continue
			}
			switch g.Bands() {
			case 1:
				c[2] -= d[0]
			case 2:
				c[0] += d[0]
				c[1] += d[1]
			default:
				c[0] += d[0]
				c[1] += d[1]
				c[2] += d[2]
			}
			operands.Set(i, c)
			successes++
		}
		return successes
	}

	inv := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		successes := 0
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			g, d, ok := gridsAt(grids, c)
			if !ok {
				if useNullGrid {
					successes++
					continue
				}
				operands.Set(i, coords.Nan())
				continue
			}
			if g.Bands() == 1 {
				c[2] += d[0]
				operands.Set(i, c)
				successes++
				continue
			}

			// The horizontal inverse has no closed form; iterate from the
			// first-order guess. Converges in a few steps anywhere a
			// real-world shift grid is sane. Only the interpolated bands
			// take part: the remaining components pass through untouched.
			bands := g.Bands()
			t := c
			for j := 0; j < bands; j++ {
				t[j] -= d[j]
			}
			converged := false
			for iter := 0; iter < 10; iter++ {
				dt, ok := g.At(t, 0.5)
				if !ok {
					break
				}
				norm := 0.0
				for j := 0; j < bands; j++ {
					delta := t[j] - c[j] + dt[j]
					t[j] -= delta
					norm += delta * delta
				}
				if norm < 1e-20 {
					converged = true
					break
				}
			}
			if !converged {
				operands.Set(i, coords.Nan())
				continue
			}
			operands.Set(i, t)
			successes++
		}
		return successes
	}

	return plainOp(raw, fwd, inv, gridshiftGamut)
}
