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

// latitude converts the second coordinate (the latitude, radians) between
// the geographic latitude and one auxiliary latitude, selected by exactly
// one of the flags geocentric, reduced (alias parametric), conformal,
// rectifying, authalic.

var latitudeGamut = []opdef.OpParameter{
	opdef.Flag("inv"),
	opdef.Flag("geocentric"),
	opdef.Flag("reduced"),
	opdef.Flag("parametric"),
	opdef.Flag("conformal"),
	opdef.Flag("rectifying"),
	opdef.Flag("authalic"),
	opdef.Text("ellps", "GRS80"),
}

func newLatitude(raw opdef.RawParameters, _ Context) (*Op, error) {
	params, err := opdef.Parse(raw, latitudeGamut)
	if err != nil {
		return nil, err
	}
	e := params.Ellipsoid(0)

	var convert func(latitude float64, direction coords.Direction) float64
	flags := 0
	if params.Boolean("geocentric") {
		flags++
		convert = e.GeocentricLatitude
	}
	if params.Boolean("reduced") || params.Boolean("parametric") {
		flags++
		convert = e.ReducedLatitude
	}
	if params.Boolean("conformal") {
		flags++
		convert = e.ConformalLatitude
	}
	if params.Boolean("rectifying") {
		flags++
		// The Fourier coefficients amortize over the operator lifetime.
		coefficients := e.RectifyingCoefficients()
		convert = func(latitude float64, direction coords.Direction) float64 {
			if direction == coords.Fwd {
				return latitude + geomath.ClenshawSin(2*latitude, coefficients.Fwd[:])
			}
			return latitude + geomath.ClenshawSin(2*latitude, coefficients.Inv[:])
		}
	}
	if params.Boolean("authalic") {
		flags++
		convert = e.AuthalicLatitude
	}
	if flags != 1 {
		return nil, opdef.Constructionf(
			"latitude: specify exactly one of authalic/conformal/geocentric/rectifying/reduced/parametric")
	}

	apply := func(direction coords.Direction) InnerOp {
		return func(_ *Op, _ Context, operands coords.CoordinateSet) int {
			for i := 0; i < operands.Len(); i++ {
				c := operands.Get(i)
				c[1] = convert(c[1], direction)
				operands.Set(i, c)
			}
			return operands.Len()
		}
	}

	return plainOp(raw, apply(coords.Fwd), apply(coords.Inv), latitudeGamut)
}
