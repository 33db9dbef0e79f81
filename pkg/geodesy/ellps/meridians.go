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
	"github.com/cockroachdb/geodesy/pkg/geodesy/geomath"
)

// Expansion of the normalized meridian arc unit in terms of n^2, the square
// of the third flattening. Karney (2010) eq. (29).
var meridianArcCoefficients = []float64{1, 1. / 4, 1. / 64, 1. / 256, 25. / 16384}

// NormalizedMeridianArcUnit is the mean length of one radian of the
// meridian, measured in units of the semimajor axis.
func (e Ellipsoid) NormalizedMeridianArcUnit() float64 {
	n := e.ThirdFlattening()
	return geomath.Horner(n*n, meridianArcCoefficients) / (1 + n)
}

// RectifyingRadius is the radius of a sphere with the same circumference as
// the length of a full meridian on the ellipsoid. Karney (2010) eq. (29),
// elaborated in Deakin et al (2012) eq. (41).
func (e Ellipsoid) RectifyingRadius() float64 {
	n := e.ThirdFlattening()
	return e.a / (1 + n) * geomath.Horner(n*n, meridianArcCoefficients)
}

// MeridianQuadrant is the distance from the equator to a pole.
func (e Ellipsoid) MeridianQuadrant() float64 {
	return e.a * math.Pi / 2 * e.NormalizedMeridianArcUnit()
}

// MeridianDistance converts between latitude and the distance from the
// equator along the local meridian: Fwd maps latitude (radians) to distance
// (meters), Inv maps distance to latitude.
//
// Both directions follow the remarkably simple scheme of Bowring (1983),
// with the rectifying radius evaluated to n^8.
func (e Ellipsoid) MeridianDistance(value float64, direction coords.Direction) float64 {
	n := e.ThirdFlattening()
	rectifying := e.RectifyingRadius()

	if direction == coords.Fwd {
		latitude := value
		b := 9 * (1 - 3*n*n/8)
		s, c := math.Sincos(2 * latitude)
		x := 1 + 13./12*n*c
		y := 13. / 12 * n * s
		r := math.Hypot(y, x)
		v := math.Atan2(y, x)
		theta := latitude - b*math.Pow(r, -2./13)*math.Sin(2*v/13)
		return rectifying * theta
	}

	theta := value / rectifying
	s, c := math.Sincos(2 * theta)
	x := 1 - 155./84*n*c
	y := 155. / 84 * n * s
	r := math.Hypot(y, x)
	v := math.Atan2(y, x)
	cc := 1 - 9*n*n/16
	return theta + 63./4*cc*math.Pow(r, 8./155)*math.Sin(8./155*v)
}
