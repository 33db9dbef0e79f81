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

// somerc is the Swiss oblique mercator projection: conformal sphere,
// rotated so the projection center becomes the sphere's equator point,
// then a spherical mercator. Implementation based on the formulation in
// the OSGeo swiss.pdf note, as also realized by PROJ's somerc.

const somercEps = 1e-10

var somercGamut = []opdef.OpParameter{
	opdef.Flag("inv"),
	opdef.Text("ellps", "GRS80"),
	opdef.Real("lon_0", 0),
	opdef.Real("lat_0", 0),
	opdef.Real("x_0", 0),
	opdef.Real("y_0", 0),
	opdef.Real("k_0", 1),
}

func newSomerc(raw opdef.RawParameters, _ Context) (*Op, error) {
	params, err := opdef.Parse(raw, somercGamut)
	if err != nil {
		return nil, err
	}
	el := params.Ellipsoid(0)
	e := el.Eccentricity()
	halfE := e / 2
	es := el.EccentricitySquared()
	a := el.SemimajorAxis()

	k0 := params.K(0)
	phi0 := params.Lat(0)
	lam0 := params.Lon(0)
	x0 := params.X(0)
	y0 := params.Y(0)

	sinPhi0, cosPhi0 := math.Sincos(phi0)

	c := math.Sqrt(1 + es*math.Pow(cosPhi0, 4)/(1-es))
	sinPhi0p := sinPhi0 / c
	phi0p := math.Asin(sinPhi0p)
	cosPhi0p := math.Cos(phi0p)

	bigR := k0 * a * math.Sqrt(1-es) / (1 - es*sinPhi0*sinPhi0)

	k1 := math.Log(math.Tan(math.Pi/4 + 0.5*math.Asin(sinPhi0/c)))
	k2 := math.Log(math.Tan(math.Pi/4 + 0.5*phi0))
	k3 := math.Log((1 + e*sinPhi0) / (1 - e*sinPhi0))
	bigK := k1 - c*k2 + c*halfE*k3

	fwd := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		successes := 0
		for i := 0; i < operands.Len(); i++ {
			coord := operands.Get(i)
			lam, phi := coord[0], coord[1]
			sp := e * math.Sin(phi)
			phiP := 2*math.Atan(math.Exp(
				c*(math.Log(math.Tan(math.Pi/4+0.5*phi))-halfE*math.Log((1+sp)/(1-sp)))+
					bigK)) - math.Pi/2

			lamP := c * (lam - lam0)
			sinLamP, cosLamP := math.Sincos(lamP)
			sinPhiP, cosPhiP := math.Sincos(phiP)

			phiPP := math.Asin(cosPhi0p*sinPhiP - sinPhi0p*cosPhiP*cosLamP)
			lamPP := math.Asin(cosPhiP * sinLamP / math.Cos(phiPP))

			coord[0] = bigR*lamPP + x0
			coord[1] = bigR*math.Log(math.Tan(math.Pi/4+0.5*phiPP)) + y0
			operands.Set(i, coord)
			successes++
		}
		return successes
	}

	inv := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		const maxIterations = 20
		successes := 0
		for i := 0; i < operands.Len(); i++ {
			coord := operands.Get(i)
			x := coord[0] - x0
			y := coord[1] - y0

			phiPP := 2 * (math.Atan(math.Exp(y/bigR)) - math.Pi/4)
			lamPP := x / bigR

			sinPhiP := cosPhi0p*math.Sin(phiPP) + sinPhi0p*math.Cos(phiPP)*math.Cos(lamPP)
			phiP := math.Asin(sinPhiP)
			sinLamP := math.Cos(phiPP) * math.Sin(lamPP) / math.Cos(phiP)
			lamP := math.Asin(sinLamP)

			// Undo the conformal mapping by fixed point iteration: the
			// forward direction maps L(phi) = ln tan(pi/4 + phi/2) to
			// c*(L(phi) - e*atanh(e sin phi)) + K, so here we iterate
			// phi <- 2 atan(exp(d + e*atanh(e sin phi))) - pi/2 with
			// d = (L(phiP) - K)/c, starting from the sphere latitude.
			d := (math.Log(math.Tan(math.Pi/4+0.5*phiP)) - bigK) / c

			lam := lamP/c + lam0
			phi := phiP
			prevPhi := math.Inf(1)

			converged := false
			for j := 0; j < maxIterations; j++ {
				if math.Abs(phi-prevPhi) < somercEps {
					converged = true
					break
				}
				prevPhi = phi
				s := d + e*math.Atanh(e*math.Sin(phi))
				phi = 2*math.Atan(math.Exp(s)) - math.Pi/2
			}
			if !converged {
				operands.Set(i, coords.Nan())
				continue
			}
			coord[0] = lam
			coord[1] = phi
			operands.Set(i, coord)
			successes++
		}
		return successes
	}

	return plainOp(raw, fwd, inv, somercGamut)
}
