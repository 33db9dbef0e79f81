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
	"github.com/cockroachdb/geodesy/pkg/geodesy/geomath"
	"github.com/cockroachdb/geodesy/pkg/geodesy/opdef"
)

// merc is the Mercator projection, closed form through the isometric
// latitude. The scaling may be given directly as k_0 or through a
// latitude of true scale lat_ts; lat_ts trumps k_0.

var mercGamut = []opdef.OpParameter{
	opdef.Flag("inv"),
	opdef.Text("ellps", "GRS80"),
	opdef.Real("lat_0", 0),
	opdef.Real("lon_0", 0),
	opdef.Real("x_0", 0),
	opdef.Real("y_0", 0),
	opdef.Real("k_0", 1),
	opdef.Real("lat_ts", 0),
}

func newMerc(raw opdef.RawParameters, _ Context) (*Op, error) {
	params, err := opdef.Parse(raw, mercGamut)
	if err != nil {
		return nil, err
	}
	e := params.Ellipsoid(0)
	a := e.SemimajorAxis()
	lat0 := params.Lat(0)
	lon0 := params.Lon(0)
	x0 := params.X(0)
	y0 := params.Y(0)
	k0 := params.K(0)

	latTs, _ := params.Real("lat_ts")
	if math.Abs(latTs) > 90 {
		return nil, opdef.Constructionf("merc: |lat_ts| must be <= 90")
	}
	if latTs != 0 {
		s, c := math.Sincos(latTs * math.Pi / 180)
		k0 = geomath.Msfn(s, c, e.EccentricitySquared())
	}

	fwd := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			lon, lat := c[0], c[1]
			c[0] = (lon-lon0)*k0*a - x0
			c[1] = a*k0*e.IsometricLatitude(lat+lat0, coords.Fwd) - y0
			operands.Set(i, c)
		}
		return operands.Len()
	}
	inv := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			x, y := c[0]+x0, c[1]+y0
			c[0] = x/(a*k0) - lon0
			c[1] = e.IsometricLatitude(y/(a*k0), coords.Inv) - lat0
			operands.Set(i, c)
		}
		return operands.Len()
	}

	return plainOp(raw, fwd, inv, mercGamut)
}
