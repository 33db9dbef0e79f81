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

// axisswap reorders and/or flips coordinate axes, imperatively: the order
// parameter lists, for each output axis, the 1-based input axis feeding
// it, negated to flip the sign. Without order, the operator is the
// identity.

var axisswapGamut = []opdef.OpParameter{
	opdef.Flag("inv"),
	opdef.Series("order", ""),
}

func newAxisswap(raw opdef.RawParameters, _ Context) (*Op, error) {
	params, err := opdef.Parse(raw, axisswapGamut)
	if err != nil {
		return nil, err
	}

	order, err := params.Series("order")
	if err != nil {
		// No order given: the operator degenerates to the identity.
		return plainOp(raw, noopKernel, noopKernel, axisswapGamut)
	}

	if len(order) > 4 {
		return nil, opdef.Constructionf("axisswap: more than 4 indices given")
	}
	for _, o := range order {
		i := int64(o)
		if float64(i) != o || i == 0 || int(math.Abs(o)) > len(order) {
			return nil, opdef.Constructionf("axisswap: bad axis index %v", o)
		}
	}
	// Duplicate axes are refused, as in PROJ.
	for axis := 1; axis <= 4; axis++ {
		count := 0
		for _, o := range order {
			if int(math.Abs(o)) == axis {
				count++
			}
		}
		if count > 1 {
			return nil, opdef.Constructionf("axisswap: duplicate axis specified")
		}
	}

	dimensionality := len(order)
	pos := [4]int{0, 1, 2, 3}
	sgn := [4]float64{1, 1, 1, 1}
	for index, value := range order {
		pos[index] = int(math.Abs(value)) - 1
		sgn[index] = math.Copysign(1, value)
	}

	fwd := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		for i := 0; i < operands.Len(); i++ {
			in := operands.Get(i)
			out := in
			for index := 0; index < dimensionality; index++ {
				out[index] = in[pos[index]] * sgn[index]
			}
			operands.Set(i, out)
		}
		return operands.Len()
	}
	inv := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		for i := 0; i < operands.Len(); i++ {
			in := operands.Get(i)
			out := in
			for index := 0; index < dimensionality; index++ {
				out[pos[index]] = in[index] * sgn[index]
			}
			operands.Set(i, out)
		}
		return operands.Len()
	}

	return plainOp(raw, fwd, inv, axisswapGamut)
}
