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

// lcc is the Lambert conformal conic projection, one and two standard
// parallel forms. The tangent and secant cases dispatch on |lat_1 - lat_2|
// at construction time, following the PROJ formulation.

const lccEps = 1e-10

var lccGamut = []opdef.OpParameter{
	opdef.Flag("inv"),
	opdef.Text("ellps", "GRS80"),
	opdef.Real("lat_1", 0),
	opdef.Real("lat_2", math.NaN()),
	opdef.Real("lat_0", math.NaN()),
	opdef.Real("lon_0", 0),
	opdef.Real("k_0", 1),
	opdef.Real("x_0", 0),
	opdef.Real("y_0", 0),
}

func newLcc(raw opdef.RawParameters, _ Context) (*Op, error) {
	params, err := opdef.Parse(raw, lccGamut)
	if err != nil {
		return nil, err
	}
	e := params.Ellipsoid(0)
	a := e.SemimajorAxis()
	ecc := e.Eccentricity()
	es := e.EccentricitySquared()
	lon0 := params.Lon(0)
	k0 := params.K(0)
	x0 := params.X(0)
	y0 := params.Y(0)

	phi1 := params.Lat(1)
	phi2 := params.Lat(2)
	if math.IsNaN(phi2) {
		phi2 = phi1
	}
	lat0 := params.Lat(0)
	if math.IsNaN(lat0) {
		lat0 = 0
		if math.Abs(phi1-phi2) < lccEps {
			lat0 = phi1
		}
	}

	if math.Abs(phi1+phi2) < lccEps {
		return nil, opdef.Constructionf("lcc: |lat_1 + lat_2| must be > 0")
	}
	sin1, cos1 := math.Sincos(phi1)
	if math.Abs(cos1) < lccEps || math.Abs(phi1) >= math.Pi/2 {
		return nil, opdef.Constructionf("lcc: |lat_1| must be < 90")
	}
	if math.Abs(math.Cos(phi2)) < lccEps || math.Abs(phi2) >= math.Pi/2 {
		return nil, opdef.Constructionf("lcc: |lat_2| must be < 90")
	}

	n := sin1
	m1 := geomath.Msfn(sin1, cos1, es)
	ml1 := geomath.Ts(sin1, cos1, ecc)

	// Secant case?
	if math.Abs(phi1-phi2) >= lccEps {
		sin2, cos2 := math.Sincos(phi2)
		n = math.Log(m1 / geomath.Msfn(sin2, cos2, es))
		if n == 0 {
			return nil, opdef.Constructionf("lcc: invalid eccentricity")
		}
		ml2 := geomath.Ts(sin2, cos2, ecc)
		denom := math.Log(ml1 / ml2)
		if denom == 0 {
			return nil, opdef.Constructionf("lcc: invalid eccentricity")
		}
		n /= denom
	}

	c := m1 * math.Pow(ml1, -n) / n
	rho0 := 0.0
	if math.Abs(math.Abs(lat0)-math.Pi/2) > lccEps {
		s0, c0 := math.Sincos(lat0)
		rho0 = c * math.Pow(geomath.Ts(s0, c0, ecc), n)
	}

	fwd := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		successes := 0
		for i := 0; i < operands.Len(); i++ {
			coord := operands.Get(i)
			lam := coord[0] - lon0
			phi := coord[1]
			rho := 0.0

			if math.Abs(math.Abs(phi)-math.Pi/2) < lccEps {
				// At a pole: only the pole on the cone's side projects.
				if phi*n <= 0 {
					operands.Set(i, coords.Nan())
					continue
				}
			} else {
				s, co := math.Sincos(phi)
				rho = c * math.Pow(geomath.Ts(s, co, ecc), n)
			}
			s, co := math.Sincos(lam * n)
			coord[0] = a*k0*rho*s + x0
			coord[1] = a*k0*(rho0-rho*co) + y0
			operands.Set(i, coord)
			successes++
		}
		return successes
	}

	inv := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		successes := 0
		for i := 0; i < operands.Len(); i++ {
			coord := operands.Get(i)
			x := (coord[0] - x0) / (a * k0)
			y := rho0 - (coord[1]-y0)/(a*k0)
			rho := math.Hypot(x, y)

			if rho == 0 {
				coord[0] = 0
				coord[1] = math.Copysign(math.Pi/2, n)
				operands.Set(i, coord)
				successes++
				continue
			}

			// Standard parallel on the southern hemisphere?
			if n < 0 {
				rho = -rho
				x = -x
				y = -y
			}

			ts0 := math.Pow(rho/c, 1/n)
			phi := geomath.Phi2(ts0, ecc)
			if math.IsInf(phi, 0) || math.IsNaN(phi) {
				operands.Set(i, coords.Nan())
				continue
			}
			coord[0] = math.Atan2(x, y)/n + lon0
			coord[1] = phi
			operands.Set(i, coord)
			successes++
		}
		return successes
	}

	return plainOp(raw, fwd, inv, lccGamut)
}
