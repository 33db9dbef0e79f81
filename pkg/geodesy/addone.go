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
	"github.com/cockroachdb/geodesy/pkg/geodesy/coords"
	"github.com/cockroachdb/geodesy/pkg/geodesy/opdef"
)

// addone adds one to the first coordinate of every point. Useless for
// geodesy, indispensable for testing pipelines and macros.

var addoneGamut = []opdef.OpParameter{opdef.Flag("inv")}

func newAddone(raw opdef.RawParameters, _ Context) (*Op, error) {
	fwd := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			c[0]++
			operands.Set(i, c)
		}
		return operands.Len()
	}
	inv := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			c[0]--
			operands.Set(i, c)
		}
		return operands.Len()
	}
	return plainOp(raw, fwd, inv, addoneGamut)
}
