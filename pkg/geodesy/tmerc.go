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
	"github.com/cockroachdb/geodesy/pkg/geodesy/ellps"
	"github.com/cockroachdb/geodesy/pkg/geodesy/geomath"
	"github.com/cockroachdb/geodesy/pkg/geodesy/opdef"
)

// tmerc is the transverse mercator projection following Engsager & Poder
// (2007): conformal latitude, complex Gauss-Schreiber development, and a
// Clenshaw-summed Krüger series in the third flattening, extended to sixth
// order (eighth order accuracy in practice) per Karney (2011). Good to the
// nanometer level within 6 degrees of the central meridian and usable far
// beyond.
//
// utm is tmerc preset from a zone number: central meridian 6*zone - 183
// degrees, scale 0.9996, false easting 500 km, and a 10000 km false
// northing on the southern hemisphere (flag south).

// The Krüger series for the transverse mercator development: geodetic to
// TM and back, Engsager & Poder (2007), 6th order terms from Karney (2011).
var transverseMercator = geomath.PolynomialCoefficients{
	Fwd: [6][6]float64{
		{1. / 2, -2. / 3, 5. / 16, 41. / 180, -127. / 288, 7891. / 37800},
		{0, 13. / 48, -3. / 5, 557. / 1440, 281. / 630, -1983433. / 1935360},
		{0, 0, 61. / 240, -103. / 140, 15061. / 26880, 167603. / 181440},
		{0, 0, 0, 49561. / 161280, -179. / 168, 6601661. / 7257600},
		{0, 0, 0, 0, 34729. / 80640, -3418889. / 1995840},
		{0, 0, 0, 0, 0, 212378941. / 319334400},
	},
	Inv: [6][6]float64{
		{-1. / 2, 2. / 3, -37. / 96, 1. / 360, 81. / 512, -96199. / 604800},
		{0, -1. / 48, -1. / 15, 437. / 1440, -46. / 105, 1118711. / 3870720},
		{0, 0, -17. / 480, 37. / 840, 209. / 4480, -5569. / 90720},
		{0, 0, 0, -4397. / 161280, 11. / 504, 830251. / 7257600},
		{0, 0, 0, 0, -4583. / 161280, 108847. / 3991680},
		{0, 0, 0, 0, 0, -20648693. / 638668800},
	},
}

// Beyond this distance from the central meridian (in normalized TM
// coordinates) the series is meaningless, so we refuse to play.
const tmercDomainBound = 2.623395162778

var tmercGamut = []opdef.OpParameter{
	opdef.Flag("inv"),
	opdef.Text("ellps", "GRS80"),
	opdef.Real("lat_0", 0),
	opdef.Real("lon_0", 0),
	opdef.Real("x_0", 0),
	opdef.Real("y_0", 0),
	opdef.Real("k_0", 1),
}

type tmercState struct {
	e          ellps.Ellipsoid
	lat0, lon0 float64
	x0         float64
	tm         geomath.FourierCoefficients
	qs         float64 // the scaled spherical radius, Qn in Engsager's notation
	zb         float64 // origin northing minus true northing at the origin
}

func newTmercState(e ellps.Ellipsoid, lat0, lon0, x0, y0, k0 float64) *tmercState {
	st := &tmercState{e: e, lat0: lat0, lon0: lon0, x0: x0}
	n := e.ThirdFlattening()

	st.qs = k0 * e.SemimajorAxis() * e.NormalizedMeridianArcUnit()
	st.tm = geomath.FourierCoefficientsFor(n, &transverseMercator)

	// Conformal latitude of the latitude of origin, Z in Engsager's
	// notation, and the resulting false-northing correction.
	z := e.ConformalLatitude(lat0, coords.Fwd)
	st.zb = y0 - st.qs*(z+geomath.ClenshawSin(2*z, st.tm.Fwd[:]))
	return st
}

func (st *tmercState) fwd(_ *Op, _ Context, operands coords.CoordinateSet) int {
	successes := 0
	for i := 0; i < operands.Len(); i++ {
		c := operands.Get(i)

		// Geographical to conformal latitude, longitude reckoned from the
		// central meridian.
		lat := st.e.ConformalLatitude(c[1]+st.lat0, coords.Fwd)
		lon := c[0] - st.lon0

		// Conformal to complex spherical latitude.
		sinLat, cosLat := math.Sincos(lat)
		sinLon, cosLon := math.Sincos(lon)
		cosLatLon := cosLat * cosLon
		lat = math.Atan2(sinLat, cosLatLon)

		// Complex spherical to ellipsoidal normalized northing/easting,
		// with the trigonometric factors of the Clenshaw summation
		// assembled from what we already have (per Even Rouault's PROJ
		// optimizations).
		invDenomTanLon := 1 / math.Hypot(sinLat, cosLatLon)
		tanLon := sinLon * cosLat * invDenomTanLon
		lon = math.Asinh(tanLon)

		twoInvDenom := 2 * invDenomTanLon
		twoInvDenomSq := twoInvDenom * invDenomTanLon
		tmpR := cosLatLon * twoInvDenomSq
		trig := [2]float64{sinLat * tmpR, cosLatLon*tmpR - 1}
		hyp := [2]float64{tanLon * twoInvDenom, twoInvDenomSq - 1}

		dc := geomath.ClenshawComplexSinTrig(trig, hyp, st.tm.Fwd[:])
		lat += dc[0]
		lon += dc[1]

		if math.Abs(lon) > tmercDomainBound {
			c[0], c[1] = math.NaN(), math.NaN()
			operands.Set(i, c)
			continue
		}

		c[0] = st.qs*lon + st.x0
		c[1] = st.qs*lat + st.zb
		operands.Set(i, c)
		successes++
	}
	return successes
}

func (st *tmercState) inv(_ *Op, _ Context, operands coords.CoordinateSet) int {
	successes := 0
	for i := 0; i < operands.Len(); i++ {
		c := operands.Get(i)

		lon := (c[0] - st.x0) / st.qs
		lat := (c[1] - st.zb) / st.qs

		if math.Abs(lon) > tmercDomainBound {
			c[0], c[1] = math.NaN(), math.NaN()
			operands.Set(i, c)
			continue
		}

		// Normalized to complex spherical.
		dc := geomath.ClenshawComplexSin([2]float64{2 * lat, 2 * lon}, st.tm.Inv[:])
		lat += dc[0]
		lon += dc[1]
		lon = geomath.Gudermannian(lon)

		// Complex spherical to conformal.
		sinLat, cosLat := math.Sincos(lat)
		sinLon, cosLon := math.Sincos(lon)
		cosLatLon := cosLat * cosLon
		lon = math.Atan2(sinLon, cosLatLon)
		lat = math.Atan2(sinLat*cosLon, math.Hypot(sinLon, cosLatLon))

		// Conformal to geographical.
		c[0] = geomath.NormalizeSymmetric(lon + st.lon0)
		c[1] = st.e.ConformalLatitude(lat, coords.Inv)
		operands.Set(i, c)
		successes++
	}
	return successes
}

func newTmerc(raw opdef.RawParameters, _ Context) (*Op, error) {
	params, err := opdef.Parse(raw, tmercGamut)
	if err != nil {
		return nil, err
	}
	st := newTmercState(
		params.Ellipsoid(0), params.Lat(0), params.Lon(0), params.X(0), params.Y(0), params.K(0))
	return plainOp(raw, st.fwd, st.inv, tmercGamut)
}

var utmGamut = []opdef.OpParameter{
	opdef.Flag("inv"),
	opdef.Flag("south"),
	opdef.Text("ellps", "GRS80"),
	opdef.Natural("zone"),
}

func newUtm(raw opdef.RawParameters, _ Context) (*Op, error) {
	params, err := opdef.Parse(raw, utmGamut)
	if err != nil {
		return nil, err
	}
	zone, err := params.Natural("zone")
	if err != nil {
		return nil, err
	}
	if zone < 1 || zone > 60 {
		return nil, opdef.Constructionf("utm: zone must be in 1..60, got %d", zone)
	}

	lon0 := float64(6*zone-183) * math.Pi / 180
	y0 := 0.0
	if params.Boolean("south") {
		y0 = 10000000
	}
	st := newTmercState(params.Ellipsoid(0), 0, lon0, 500000, y0, 0.9996)
	return plainOp(raw, st.fwd, st.inv, utmGamut)
}
