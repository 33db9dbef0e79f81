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

// GeocentricLatitude converts geographic latitude to geocentric latitude,
// or back with direction Inv. All angles in radians.
func (e Ellipsoid) GeocentricLatitude(latitude float64, direction coords.Direction) float64 {
	if direction == coords.Fwd {
		return math.Atan((1 - e.f*(2-e.f)) * math.Tan(latitude))
	}
	return math.Atan(math.Tan(latitude) / (1 - e.EccentricitySquared()))
}

// ReducedLatitude converts geographic latitude to the reduced (parametric)
// latitude beta, or back with direction Inv.
func (e Ellipsoid) ReducedLatitude(latitude float64, direction coords.Direction) float64 {
	if direction == coords.Fwd {
		return math.Atan2(math.Tan(latitude), 1/(1-e.f))
	}
	return math.Atan2(math.Tan(latitude), 1-e.f)
}

// IsometricLatitude converts geographic latitude to the isometric latitude
// psi, or back with direction Inv.
func (e Ellipsoid) IsometricLatitude(latitude float64, direction coords.Direction) float64 {
	ecc := e.Eccentricity()
	if direction == coords.Fwd {
		return math.Asinh(math.Tan(latitude)) - ecc*math.Atanh(ecc*math.Sin(latitude))
	}
	return math.Atan(geomath.SinhPsiToTanPhi(math.Sinh(latitude), ecc))
}

// ConformalLatitude converts geographic latitude to the conformal latitude
// chi, or back with direction Inv. The forward direction uses the closed
// form through the isometric latitude; the inverse uses the Karney (2011)
// Newton scheme, converging in at most two iterations for geodetic input.
func (e Ellipsoid) ConformalLatitude(latitude float64, direction coords.Direction) float64 {
	ecc := e.Eccentricity()
	if direction == coords.Fwd {
		return geomath.Gudermannian(e.IsometricLatitude(latitude, coords.Fwd))
	}
	return math.Atan(geomath.SinhPsiToTanPhi(math.Tan(latitude), ecc))
}

// Coefficients for converting geographic latitude to rectifying latitude,
// Karney (2022) eq. A5. Packed as polynomials in n^2, one group per
// sin(2k*phi) term, with a leading factor of n^k applied at evaluation time.
var geodeticToRectifying = [6][]float64{
	{-3. / 2, 9. / 16, -3. / 32},
	{15. / 16, -15. / 32, 135. / 2048},
	{-35. / 48, 105. / 256},
	{315. / 512, -189. / 512},
	{-693. / 1280},
	{1001. / 2048},
}

// Coefficients for the inverse conversion, Karney (2022) eq. A6.
var rectifyingToGeodetic = [6][]float64{
	{3. / 2, -27. / 32, 269. / 512},
	{21. / 16, -55. / 32, 6759. / 4096},
	{151. / 96, -417. / 128},
	{1097. / 512, -15543. / 2560},
	{8011. / 2560},
	{293393. / 61440},
}

// RectifyingCoefficients instantiates the Fourier coefficients for the
// rectifying latitude series in the third flattening of the ellipsoid.
// The evaluation is shared between the latitude operator and the meridian
// arc machinery, so callers may amortize it across an operator's lifetime.
func (e Ellipsoid) RectifyingCoefficients() geomath.FourierCoefficients {
	n := e.ThirdFlattening()
	nn := n * n
	var result geomath.FourierCoefficients
	power := n
	for k := 0; k < 6; k++ {
		result.Fwd[k] = power * geomath.Horner(nn, geodeticToRectifying[k])
		result.Inv[k] = power * geomath.Horner(nn, rectifyingToGeodetic[k])
		power *= n
	}
	return result
}

// RectifyingLatitude converts geographic latitude to the rectifying
// latitude mu, or back with direction Inv, by Clenshaw summation of the
// Karney (2022) series.
func (e Ellipsoid) RectifyingLatitude(latitude float64, direction coords.Direction) float64 {
	coefficients := e.RectifyingCoefficients()
	if direction == coords.Fwd {
		return latitude + geomath.ClenshawSin(2*latitude, coefficients.Fwd[:])
	}
	return latitude + geomath.ClenshawSin(2*latitude, coefficients.Inv[:])
}

// AuthalicLatitude converts geographic latitude to the authalic latitude
// xi, or back with direction Inv. The forward direction evaluates Snyder's
// q function; the inverse sums the standard series in the eccentricity
// squared (the PROJ pj_authlat development).
func (e Ellipsoid) AuthalicLatitude(latitude float64, direction coords.Direction) float64 {
	ecc := e.Eccentricity()
	if direction == coords.Fwd {
		q := geomath.Qs(math.Sin(latitude), ecc)
		qp := geomath.Qs(1, ecc)
		ratio := q / qp
		// Clamp to the domain of asin: the ratio may stray marginally
		// outside [-1, 1] near the poles.
		ratio = math.Max(-1, math.Min(1, ratio))
		return math.Asin(ratio)
	}
	apa := e.authalicCoefficients()
	return latitude +
		apa[0]*math.Sin(2*latitude) +
		apa[1]*math.Sin(4*latitude) +
		apa[2]*math.Sin(6*latitude)
}

// authalicCoefficients returns the three series coefficients of the
// authalic-to-geographic conversion, PROJ's pj_authset.
func (e Ellipsoid) authalicCoefficients() [3]float64 {
	es := e.EccentricitySquared()
	return [3]float64{
		es * (1./3 + es*(31./180+es*517./5040)),
		es * es * (23./360 + es*251./3780),
		es * es * es * 761. / 45360,
	}
}
