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
	"github.com/golang/geo/r3"
)

// Cartesian converts a geographic coordinate (longitude, latitude, height;
// radians and meters) to geocentric cartesian (X, Y, Z; meters). The fourth
// component passes through unchanged.
func (e Ellipsoid) Cartesian(geo coords.Coor4D) coords.Coor4D {
	lam, phi, h := geo[0], geo[1], geo[2]
	sinPhi, cosPhi := math.Sincos(phi)
	sinLam, cosLam := math.Sincos(lam)

	n := e.PrimeVerticalRadiusOfCurvature(phi)
	v := r3.Vector{
		X: (n + h) * cosPhi * cosLam,
		Y: (n + h) * cosPhi * sinLam,
		Z: (n*(1-e.EccentricitySquared()) + h) * sinPhi,
	}
	return coords.Raw(v.X, v.Y, v.Z, geo[3])
}

// Geographic converts a geocentric cartesian coordinate (X, Y, Z; meters)
// to geographic (longitude, latitude, height; radians and meters). The
// inverse follows the non-iterative scheme of Fukushima/Claessens, which
// converges at geodetic heights without special-casing the poles beyond a
// cutoff around the Z axis.
func (e Ellipsoid) Geographic(cart coords.Coor4D) coords.Coor4D {
	v := r3.Vector{X: cart[0], Y: cart[1], Z: cart[2]}
	t := cart[3]

	es := e.EccentricitySquared()
	b := e.SemiminorAxis()
	a := e.a
	ra := 1 / a
	// Aspect ratio b/a: Fukushima's ec, Claessens' c4.
	ar := b * ra
	// 1.5 times the fourth power of the eccentricity.
	ce4 := 1.5 * es * es
	// Closer than this to the Z axis, we force the latitude to a pole.
	cutoff := a * 1e-16

	lam := math.Atan2(v.Y, v.X)

	// Perpendicular distance from the point to the Z axis.
	p := math.Hypot(v.X, v.Y)

	if p < cutoff {
		phi := math.Copysign(math.Pi/2, v.Z)
		h := math.Abs(v.Z) - b
		return coords.Raw(lam, phi, h, t)
	}

	pp := ra * p
	s0 := ra * v.Z
	c0 := ar * pp

	bigA := math.Hypot(s0, c0)
	bigF := pp*bigA*bigA*bigA - es*c0*c0*c0
	bigB := ce4 * s0 * s0 * c0 * c0 * pp * (bigA - ar)

	s1 := (ar*s0*bigA*bigA*bigA+es*s0*s0*s0)*bigF - bigB*s0
	c1 := bigF*bigF - bigB*c0
	cc := ar * c1

	phi := math.Atan2(s1, cc)
	h := (p*math.Abs(cc) + math.Abs(v.Z)*math.Abs(s1) - a*math.Hypot(cc, ar*s1)) /
		math.Hypot(cc, s1)
	return coords.Raw(lam, phi, h, t)
}
