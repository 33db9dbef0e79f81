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
	"github.com/cockroachdb/geodesy/pkg/geodesy/geomath"
	"github.com/cockroachdb/geodesy/pkg/geodesy/opdef"
)

// dm and dms read input in "almost ISO-6709" encodings: latitude and
// longitude in that order, packed as +/-DDDMM.mmm (dm) or +/-DDDMMSS.sss
// (dms). The sign-postfix NSEW business of actual ISO-6709 belongs to an
// i/o routine, not here. Output is the internal representation; the
// inverse direction re-encodes.

var iso6709Gamut = []opdef.OpParameter{opdef.Flag("inv")}

func newDm(raw opdef.RawParameters, _ Context) (*Op, error) {
	fwd := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			operands.Set(i, coords.Geo(
				geomath.IsoDmToDd(c[0]), geomath.IsoDmToDd(c[1]), c[2], c[3]))
		}
		return operands.Len()
	}
	inv := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i).ToDegrees()
			operands.Set(i, coords.Raw(
				geomath.DdToIsoDm(c[1]), geomath.DdToIsoDm(c[0]), c[2], c[3]))
		}
		return operands.Len()
	}
	return plainOp(raw, fwd, inv, iso6709Gamut)
}

func newDms(raw opdef.RawParameters, _ Context) (*Op, error) {
	fwd := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			operands.Set(i, coords.Geo(
				geomath.IsoDmsToDd(c[0]), geomath.IsoDmsToDd(c[1]), c[2], c[3]))
		}
		return operands.Len()
	}
	inv := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i).ToDegrees()
			operands.Set(i, coords.Raw(
				geomath.DdToIsoDms(c[1]), geomath.DdToIsoDms(c[0]), c[2], c[3]))
		}
		return operands.Len()
	}
	return plainOp(raw, fwd, inv, iso6709Gamut)
}
