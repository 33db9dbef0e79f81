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

// laea is the Lambert azimuthal equal area projection. The ellipsoidal
// development works through the authalic latitude, computed by series to
// match the accuracy of the published algorithm; the polar aspects are
// handled as limiting cases dispatched at construction time.

const laeaEps = 1e-10

var laeaGamut = []opdef.OpParameter{
	opdef.Flag("inv"),
	opdef.Text("ellps", "GRS80"),
	opdef.Real("lat_0", 0),
	opdef.Real("lon_0", 0),
	opdef.Real("x_0", 0),
	opdef.Real("y_0", 0),
}

type laeaMode int

const (
	laeaOblique laeaMode = iota
	laeaNorthPole
	laeaSouthPole
)

func newLaea(raw opdef.RawParameters, _ Context) (*Op, error) {
	params, err := opdef.Parse(raw, laeaGamut)
	if err != nil {
		return nil, err
	}
	e := params.Ellipsoid(0)
	a := e.SemimajorAxis()
	ecc := e.Eccentricity()
	lat0 := params.Lat(0)
	lon0 := params.Lon(0)
	x0 := params.X(0)
	y0 := params.Y(0)

	mode := laeaOblique
	if math.Abs(math.Abs(lat0)-math.Pi/2) < laeaEps {
		if lat0 > 0 {
			mode = laeaNorthPole
		} else {
			mode = laeaSouthPole
		}
	}

	qp := geomath.Qs(1, ecc)
	// Radius of the authalic sphere.
	rq := a * math.Sqrt(qp/2)

	sinPhi0, cosPhi0 := math.Sincos(lat0)
	sinB1 := geomath.Qs(sinPhi0, ecc) / qp
	cosB1 := math.Sqrt(1 - sinB1*sinB1)
	dd := 1.0
	if mode == laeaOblique {
		if cosB1 > laeaEps {
			dd = a * cosPhi0 / (math.Sqrt(1-e.EccentricitySquared()*sinPhi0*sinPhi0) * rq * cosB1)
		}
	}
	xmf := rq * dd
	ymf := rq / dd

	fwd := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		successes := 0
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			lam := c[0] - lon0
			phi := c[1]
			sinLam, cosLam := math.Sincos(lam)
			q := geomath.Qs(math.Sin(phi), ecc)

			switch mode {
			case laeaOblique:
				sinB := q / qp
				cosB := math.Sqrt(math.Max(0, 1-sinB*sinB))
				denom := 1 + sinB1*sinB + cosB1*cosB*cosLam
				if denom < laeaEps {
					// The antipode of the projection center does not project.
					operands.Set(i, coords.Nan())
					continue
				}
				b := math.Sqrt(2 / denom)
				c[0] = xmf*b*cosB*sinLam + x0
				c[1] = ymf*b*(cosB1*sinB-sinB1*cosB*cosLam) + y0

			case laeaNorthPole:
				if qp-q < 0 {
					operands.Set(i, coords.Nan())
					continue
				}
				rho := a * math.Sqrt(qp-q)
				c[0] = rho*sinLam + x0
				c[1] = -rho*cosLam + y0

			case laeaSouthPole:
				if qp+q < 0 {
					operands.Set(i, coords.Nan())
					continue
				}
				rho := a * math.Sqrt(qp+q)
				c[0] = rho*sinLam + x0
				c[1] = rho*cosLam + y0
			}
			operands.Set(i, c)
			successes++
		}
		return successes
	}

	inv := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		successes := 0
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			x := c[0] - x0
			y := c[1] - y0

			switch mode {
			case laeaOblique:
				x /= dd
				y *= dd
				rho := math.Hypot(x, y)
				if rho < laeaEps {
					c[0] = lon0
					c[1] = lat0
					operands.Set(i, c)
					successes++
					continue
				}
				arg := rho / (2 * rq)
				if arg > 1 {
					operands.Set(i, coords.Nan())
					continue
				}
				ce := 2 * math.Asin(arg)
				sinCe, cosCe := math.Sincos(ce)
				ab := cosCe*sinB1 + y*sinCe*cosB1/rho
				ab = math.Max(-1, math.Min(1, ab))
				c[0] = lon0 + math.Atan2(x*sinCe, rho*cosB1*cosCe-y*sinB1*sinCe)
				c[1] = e.AuthalicLatitude(math.Asin(ab), coords.Inv)

			case laeaNorthPole, laeaSouthPole:
				rho := math.Hypot(x, y)
				q := qp - rho*rho/(a*a)
				if mode == laeaSouthPole {
					q = -q
					c[0] = lon0 + math.Atan2(x, y)
				} else {
					c[0] = lon0 + math.Atan2(x, -y)
				}
				ratio := math.Max(-1, math.Min(1, q/qp))
				c[1] = e.AuthalicLatitude(math.Asin(ratio), coords.Inv)
			}
			operands.Set(i, c)
			successes++
		}
		return successes
	}

	return plainOp(raw, fwd, inv, laeaGamut)
}
