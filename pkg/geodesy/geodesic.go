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

// geodesic solves the direct (forward) and inverse geodesic problems.
//
// Forward input is (latitude, longitude, azimuth, distance) in degrees and
// meters; output is (latitude, longitude) of the destination with the
// origin in the trailing components. Inverse input is (lat1, lon1, lat2,
// lon2) degrees; output is (azimuth at the origin, azimuth at the
// destination, distance, return azimuth), azimuths in degrees. With the
// reversible flag, inverse output instead is
// (lat2, lon2, return azimuth, distance), which is exactly the forward
// input that travels back: geodesic fwd after geodesic reversible inv
// round-trips the original 4-tuple.

var geodesicGamut = []opdef.OpParameter{
	opdef.Flag("inv"),
	opdef.Flag("reversible"),
	opdef.Text("ellps", "GRS80"),
}

func newGeodesic(raw opdef.RawParameters, _ Context) (*Op, error) {
	params, err := opdef.Parse(raw, geodesicGamut)
	if err != nil {
		return nil, err
	}
	e := params.Ellipsoid(0)
	reversible := params.Boolean("reversible")

	fwd := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		successes := 0
		for i := 0; i < operands.Len(); i++ {
			args := operands.Get(i)
			origin := coords.Geo(args[0], args[1], 0, 0)
			azimuth := args[2] * math.Pi / 180
			distance := args[3]

			destination := e.GeodesicFwd(origin, azimuth, distance).ToDegrees()
			if destination[3] > 990 {
				operands.Set(i, coords.Nan())
				continue
			}
			operands.Set(i, coords.Raw(destination[1], destination[0], args[0], args[1]))
			successes++
		}
		return successes
	}

	inv := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		successes := 0
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			from := coords.Geo(c[0], c[1], 0, 0)
			to := coords.Geo(c[2], c[3], 0, 0)

			solution := e.GeodesicInv(from, to).ToDegrees()
			if solution[3] > 990 {
				operands.Set(i, coords.Nan())
				continue
			}
			returnAzimuth := math.Mod(solution[1]+180, 360)
			distance := solution[2]

			if reversible {
				operands.Set(i, coords.Raw(c[2], c[3], returnAzimuth, distance))
			} else {
				operands.Set(i, coords.Raw(solution[0], solution[1], distance, returnAzimuth))
			}
			successes++
		}
		return successes
	}

	return plainOp(raw, fwd, inv, geodesicGamut)
}
