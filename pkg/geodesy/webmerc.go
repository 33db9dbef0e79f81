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

// webmerc is the Web Mercator projection: spherical development forced
// onto the ellipsoid's semimajor axis, even for ellipsoidal input. That is
// what makes it web mercator rather than mercator.

var webmercGamut = []opdef.OpParameter{
	opdef.Flag("inv"),
	opdef.Text("ellps", "WGS84"),
}

func newWebmerc(raw opdef.RawParameters, _ Context) (*Op, error) {
	params, err := opdef.Parse(raw, webmercGamut)
	if err != nil {
		return nil, err
	}
	a := params.Ellipsoid(0).SemimajorAxis()

	fwd := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			lon, lat := c[0], c[1]
			c[0] = lon * a
			c[1] = a * math.Log(math.Tan(math.Pi/4+lat/2))
			operands.Set(i, c)
		}
		return operands.Len()
	}
	inv := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			easting, northing := c[0], c[1]
			c[0] = easting / a
			c[1] = math.Pi/2 - 2*math.Atan(math.Exp(-northing/a))
			operands.Set(i, c)
		}
		return operands.Len()
	}

	return plainOp(raw, fwd, inv, webmercGamut)
}
