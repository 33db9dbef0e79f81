// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

package ellps

import (
	"math"

	"github.com/cockroachdb/geodesy/pkg/geodesy/coords"
)

// Geodesic computations by the algorithm of Vincenty (1975), with the
// updated A and B terms from Vincenty (1976). Simple to implement and
// plenty accurate for non-antipodal work; the iteration count rides along
// in the fourth tuple component so a caller can detect non-convergence
// (values above 990 mean the iteration gave up).

const geodesicMaxIter = 1000

// GeodesicFwd solves the direct geodesic problem: from the point
// (longitude, latitude) (radians, taken from the first two components of
// from), along the given azimuth (radians) for the given distance (meters).
// Returns (longitude, latitude, return azimuth, iteration count).
func (e Ellipsoid) GeodesicFwd(from coords.Coor4D, azimuth, distance float64) coords.Coor4D {
	l1, b1 := from.XY()

	// The latitude of the origin projected onto the auxiliary sphere.
	u1 := e.ReducedLatitude(b1, coords.Fwd)
	sinU1, cosU1 := math.Sincos(u1)

	// sigma1 is the angular distance on the aux sphere from origin to equator.
	cosAzi := math.Cos(azimuth)
	ss1 := math.Atan2((1-e.f)*math.Tan(b1), cosAzi)

	// alpha, the forward azimuth of the geodesic at the equator.
	sinAA := cosU1 * math.Sin(azimuth)
	cosAA2 := 1 - sinAA*sinAA

	// A and B according to Vincenty's update (1976).
	us := cosAA2 * e.SecondEccentricitySquared()
	t := math.Sqrt(1 + us)
	k1 := (t - 1) / (t + 1)
	bigA := (1 + k1*k1/4) / (1 - k1)
	bigB := k1 * (1 - 3*k1*k1/8)

	b := e.SemiminorAxis()
	ss := distance / (b * bigA)
	var i int
	var t1, cosSSMx2 float64

	for i = 1; i < geodesicMaxIter; i++ {
		// 2*sigma_m, where sigma_m is the midpoint latitude on the aux sphere.
		ssmx2 := 2*ss1 + ss

		cosSSMx2 = math.Cos(ssmx2)
		cosSSMx22 := cosSSMx2 * cosSSMx2
		t1 = -1 + 2*cosSSMx22
		t2 := -3 + 4*cosSSMx22
		sinSS, cosSS := math.Sincos(ss)
		t3 := -3 + 4*sinSS*sinSS
		dss := bigB * sinSS * (cosSSMx2 + bigB/4*(cosSS*t1-bigB/6*cosSSMx2*t2*t3))

		prev := ss
		ss = distance/(b*bigA) + dss
		if math.Abs(prev-ss) < 1e-13 {
			break
		}
	}

	// Latitude of the destination.
	sinSS, cosSS := math.Sincos(ss)
	t4 := cosU1 * cosAzi * sinSS
	t5 := cosU1 * cosAzi * cosSS
	b2 := math.Atan2(sinU1*cosSS+t4, (1-e.f)*math.Hypot(sinAA, sinU1*sinSS-t5))

	// Longitude of the destination.
	sinAzi := math.Sin(azimuth)
	ll := math.Atan2(sinSS*sinAzi, cosU1*cosSS-sinU1*sinSS*cosAzi)
	c := (4 + e.f*(4-3*cosAA2)) * e.f * cosAA2 / 16
	l := ll - (1-c)*e.f*sinAA*(ss+c*sinSS*(cosSSMx2+c*cosSS*t1))
	l2 := l1 + l

	// Return azimuth.
	aa2 := math.Atan2(sinAA, cosU1*cosSS*cosAzi-sinU1*sinSS)

	return coords.Raw(l2, b2, aa2, float64(i))
}

// GeodesicInv solves the inverse geodesic problem between the points
// (longitude, latitude) in from and to (radians in the first two
// components). Returns (forward azimuth, return azimuth, distance,
// iteration count).
func (e Ellipsoid) GeodesicInv(from, to coords.Coor4D) coords.Coor4D {
	l1, b1 := from.XY()
	l2, b2 := to.XY()
	db := b2 - b1
	dl := l2 - l1

	// Below the micrometer level, we don't care about directions.
	if math.Hypot(dl, db) < 1e-15 {
		return coords.Raw(0, 0, 0, 0)
	}

	u1 := e.ReducedLatitude(b1, coords.Fwd)
	u2 := e.ReducedLatitude(b2, coords.Fwd)
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)
	eps := e.SecondEccentricitySquared()

	ll := dl
	var cosAA2, cosSSMx2, cosSS, sinSS, ss, sinLL float64
	cosLL := 1.0

	var i int
	for i = 1; i < geodesicMaxIter; i++ {
		sinLL, cosLL = math.Sincos(ll)
		t1 := cosU2 * sinLL
		t2 := cosU1*sinU2 - cosU2*sinU1*cosLL
		sinSS = math.Hypot(t1, t2)
		cosSS = sinU1*sinU2 + cosU1*cosU2*cosLL
		ss = math.Atan2(sinSS, cosSS)

		sinAA := cosU1 * cosU2 * sinLL / sinSS
		cosAA2 = 1 - sinAA*sinAA

		cosSSMx2 = cosSS - 2*sinU1*sinU2/cosAA2
		c := (4 + e.f*(4-3*cosAA2)) * e.f * cosAA2 / 16
		next := dl + (1-c)*e.f*sinAA*
			(ss+c*sinSS*(cosSSMx2+c*cosSS*(-1+2*cosSSMx2*cosSSMx2)))
		delta := math.Abs(ll - next)
		ll = next
		if delta < 1e-12 {
			break
		}
	}

	// A and B according to Vincenty's update (1976).
	us := cosAA2 * eps
	t := math.Sqrt(1 + us)
	k1 := (t - 1) / (t + 1)
	bigA := (1 + k1*k1/4) / (1 - k1)
	bigB := k1 * (1 - 3*k1*k1/8)

	// The difference between the distance on the aux sphere and on the
	// ellipsoid.
	t1 := -1 + 2*cosSSMx2*cosSSMx2
	t2 := -3 + 4*sinSS*sinSS
	t3 := -3 + 4*cosSSMx2*cosSSMx2
	dss := bigB * sinSS * (cosSSMx2 + bigB/4*(cosSS*t1-bigB/6*cosSSMx2*t2*t3))

	s := e.SemiminorAxis() * bigA * (ss - dss)
	a1 := math.Atan2(cosU2*sinLL, cosU1*sinU2-sinU1*cosU2*cosLL)
	a2 := math.Atan2(cosU1*sinLL, -sinU1*cosU2+cosU1*sinU2*cosLL)
	return coords.Raw(a1, a2, s, float64(i))
}

// Distance is the geodesic distance in meters between two points given as
// (longitude, latitude) radians in the first two tuple components.
func (e Ellipsoid) Distance(from, to coords.Coor4D) float64 {
	return e.GeodesicInv(from, to)[2]
}
