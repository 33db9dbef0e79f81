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

// curvature replaces the first coordinate (a latitude, degrees) by one of
// the ellipsoidal radii of curvature at that latitude: prime vertical,
// meridian, gaussian, mean, or azimuthal (the latter reads the azimuth, in
// degrees, from the second coordinate). Forward only: a radius does not
// determine a latitude.

var curvatureGamut = []opdef.OpParameter{
	opdef.Flag("prime"),
	opdef.Flag("meridian"),
	opdef.Flag("gaussian"),
	opdef.Flag("mean"),
	opdef.Flag("azimuthal"),
	opdef.Text("ellps", "GRS80"),
}

func newCurvature(raw opdef.RawParameters, _ Context) (*Op, error) {
	params, err := opdef.Parse(raw, curvatureGamut)
	if err != nil {
		return nil, err
	}
	e := params.Ellipsoid(0)

	flags := 0
	for _, flag := range []string{"prime", "meridian", "gaussian", "mean", "azimuthal"} {
		if params.Boolean(flag) {
			flags++
		}
	}
	if flags != 1 {
		return nil, opdef.Constructionf(
			"curvature: specify exactly one of prime/meridian/gaussian/mean/azimuthal")
	}

	var radius func(lat, azi float64) float64
	switch {
	case params.Boolean("prime"):
		radius = func(lat, _ float64) float64 { return e.PrimeVerticalRadiusOfCurvature(lat) }
	case params.Boolean("meridian"):
		radius = func(lat, _ float64) float64 { return e.MeridianRadiusOfCurvature(lat) }
	case params.Boolean("gaussian"):
		radius = func(lat, _ float64) float64 {
			m := e.MeridianRadiusOfCurvature(lat)
			n := e.PrimeVerticalRadiusOfCurvature(lat)
			return math.Sqrt(n * m)
		}
	case params.Boolean("mean"):
		radius = func(lat, _ float64) float64 {
			m := e.MeridianRadiusOfCurvature(lat)
			n := e.PrimeVerticalRadiusOfCurvature(lat)
			return 2 / (1/n + 1/m)
		}
	case params.Boolean("azimuthal"):
		radius = func(lat, azi float64) float64 {
			m := e.MeridianRadiusOfCurvature(lat)
			n := e.PrimeVerticalRadiusOfCurvature(lat)
			s, c := math.Sincos(azi)
			return 1 / (c*c/m + s*s/n)
		}
	}

	fwd := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			lat := c[0] * math.Pi / 180
			azi := c[1] * math.Pi / 180
			c[0] = radius(lat, azi)
			operands.Set(i, c)
		}
		return operands.Len()
	}

	return plainOp(raw, fwd, nil, curvatureGamut)
}
