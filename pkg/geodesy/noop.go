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

// The no-operation. Does nothing, and is good at it: any arguments are
// accepted and ignored, and both directions are the identity.

func noopKernel(_ *Op, _ Context, operands coords.CoordinateSet) int {
	return operands.Len()
}

func newNoop(raw opdef.RawParameters, _ Context) (*Op, error) {
	op := &Op{
		handle:     newOpHandle(),
		descriptor: opdef.Normalize(raw.Definition),
		fwd:        noopKernel,
		inv:        noopKernel,
	}
	params, err := opdef.Parse(raw, []opdef.OpParameter{opdef.Flag("inv")})
	if err != nil {
		return nil, err
	}
	op.params = params
	_, op.omitFwd = params.Given()["omit_fwd"]
	_, op.omitInv = params.Given()["omit_inv"]
	return op, nil
}
