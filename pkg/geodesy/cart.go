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
	"math"

	"github.com/cockroachdb/geodesy/pkg/geodesy/coords"
	"github.com/cockroachdb/geodesy/pkg/geodesy/opdef"
)

// cart converts geographical coordinates (longitude, latitude, height;
// radians and meters) to geocentric cartesian (X, Y, Z; meters). The
// forward direction is closed form; the inverse is the non-iterative
// Fukushima/Claessens scheme, well conditioned at geodetic heights, with
// the poles handled by a cutoff around the Z axis rather than a branch
// cut.

var cartGamut = []opdef.OpParameter{
	opdef.Flag("inv"),
	opdef.Text("ellps", "GRS80"),
}

func newCart(raw opdef.RawParameters, _ Context) (*Op, error) {
	params, err := opdef.Parse(raw, cartGamut)
	if err != nil {
		return nil, err
	}
	e := params.Ellipsoid(0)

	// Success counting looks at the three spatial components only: the
	// time slot of a 2D or 3D container legitimately reads as NaN.
	fwd := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		successes := 0
		for i := 0; i < operands.Len(); i++ {
			c := e.Cartesian(operands.Get(i))
			operands.Set(i, c)
			if !math.IsNaN(c[0]) && !math.IsNaN(c[1]) && !math.IsNaN(c[2]) {
				successes++
			}
		}
		return successes
	}
	inv := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		successes := 0
		for i := 0; i < operands.Len(); i++ {
			c := e.Geographic(operands.Get(i))
			operands.Set(i, c)
			if !math.IsNaN(c[0]) && !math.IsNaN(c[1]) && !math.IsNaN(c[2]) {
				successes++
			}
		}
		return successes
	}

	op, err := plainOp(raw, fwd, inv, cartGamut)
	if err != nil {
		return nil, err
	}
	op.params = params
	return op, nil
}
