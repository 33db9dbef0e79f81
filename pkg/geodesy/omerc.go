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

// omerc is the Hotine oblique mercator projection, variants A and B,
// following IOGP Guidance Note 7 part 2 (2019). The Laborde case is
// detected by a missing gamma_c and approximated by Hotine with
// gamma_c = alpha.
//
// The projection center is (latc, lonc); alpha is the azimuth of the
// initial line, gamma_c the angle from the rectified to the oblique grid.
// The variant flag selects Hotine variant B (false origin at the
// projection center).

var omercGamut = []opdef.OpParameter{
	opdef.Flag("inv"),
	opdef.Flag("variant"),
	opdef.Text("ellps", "GRS80"),
	opdef.Real("latc", 0),
	opdef.Real("lonc", 0),
	opdef.Real("alpha", math.NaN()),
	opdef.Real("gamma_c", math.NaN()),
	opdef.Real("x_0", 0),
	opdef.Real("y_0", 0),
	opdef.Real("k_0", 1),
}

type omercState struct {
	es, e    float64
	fe, fn   float64
	bigA     float64
	bigB     float64
	bigH     float64
	gamma0   float64
	lambda0  float64
	uc       float64
	s0, c0   float64 // sincos of gamma_0
	sc, cc   float64 // sincos of gamma_c
	latc     float64
	lonc     float64
	ninety   bool
	variant  bool
	useUcOff bool
}

func newOmercState(params *opdef.ParsedParameters) *omercState {
	e := params.Ellipsoid(0)
	st := &omercState{
		es: e.EccentricitySquared(),
		fe: params.X(0),
		fn: params.Y(0),
	}
	st.e = math.Sqrt(st.es)
	kc := params.K(0)

	latcDeg, _ := params.Real("latc")
	loncDeg, _ := params.Real("lonc")
	st.latc = latcDeg * math.Pi / 180
	st.lonc = loncDeg * math.Pi / 180

	alphaDeg, _ := params.Real("alpha")
	st.ninety = alphaDeg == 90
	alpha := alphaDeg * math.Pi / 180

	gammaCDeg, _ := params.Real("gamma_c")
	laborde := math.IsNaN(gammaCDeg)
	gammaC := gammaCDeg * math.Pi / 180
	st.variant = params.Boolean("variant") || laborde
	if laborde {
		gammaC = alpha
	}

	// A horrible mess of constants; by and large a transcription of the
	// material from Guidance Note 7-2.
	s, c := math.Sincos(st.latc)
	st.bigB = math.Sqrt(1 + math.Pow(c, 4)*e.SecondEccentricitySquared())
	st.bigA = e.SemimajorAxis() * st.bigB * kc * math.Sqrt(1-st.es) / (1 - st.es*s*s)
	t0 := math.Tan(math.Pi/4-st.latc/2) /
		math.Pow((1-st.e*s)/(1+st.e*s), st.e/2)
	bigD := st.bigB * math.Sqrt(1-st.es) / (c * math.Sqrt(1-st.es*s*s))
	bigDD := 0.0
	if bigD >= 1 {
		bigDD = math.Sqrt(bigD*bigD - 1)
	}
	bigF := bigD + bigDD*sgn(st.latc)
	st.bigH = bigF * math.Pow(t0, st.bigB)
	bigG := (bigF - 1/bigF) / 2
	st.gamma0 = math.Asin(math.Sin(alpha) / bigD)
	st.lambda0 = st.lonc - math.Asin(bigG*math.Tan(st.gamma0))/st.bigB

	if st.ninety {
		st.uc = st.bigA * (st.lonc - st.lambda0)
	} else {
		st.uc = (st.bigA / st.bigB) * math.Atan2(bigDD, math.Cos(alpha)) * sgn(st.latc)
	}

	st.s0, st.c0 = math.Sincos(st.gamma0)
	st.sc, st.cc = math.Sincos(gammaC)
	st.useUcOff = st.variant
	return st
}

func (st *omercState) fwd(_ *Op, _ Context, operands coords.CoordinateSet) int {
	successes := 0
	for i := 0; i < operands.Len(); i++ {
		coord := operands.Get(i)
		lon, lat := coord[0], coord[1]
		sinLat := math.Sin(lat)

		t := math.Tan(math.Pi/4-lat/2) /
			math.Pow((1-st.e*sinLat)/(1+st.e*sinLat), st.e/2)
		bigQ := st.bigH / math.Pow(t, st.bigB)
		bigS := (bigQ - 1/bigQ) / 2
		bigT := (bigQ + 1/bigQ) / 2
		bigV := math.Sin(st.bigB * (lon - st.lambda0))
		bigU := (bigS*st.s0 - bigV*st.c0) / bigT
		v := st.bigA * math.Log((1-bigU)/(1+bigU)) / (2 * st.bigB)

		cbLon := math.Cos(st.bigB * (lon - st.lambda0))

		var u float64
		switch {
		case !st.variant:
			u = st.bigA * math.Atan2(bigS*st.c0+bigV*st.s0, cbLon) / st.bigB
		case st.ninety:
			if lon == st.lambda0 {
				u = 0
			} else {
				u = st.bigA*math.Atan2(bigS*st.c0+bigV*st.s0, cbLon)/st.bigB -
					math.Copysign(st.uc, st.latc)*sgn(st.lonc-lon)
			}
		default:
			u = st.bigA*math.Atan2(bigS*st.c0+bigV*st.s0, cbLon)/st.bigB -
				math.Copysign(st.uc, st.latc)
		}

		coord[0] = v*st.cc + u*st.sc + st.fe
		coord[1] = u*st.cc - v*st.sc + st.fn
		operands.Set(i, coord)
		successes++
	}
	return successes
}

func (st *omercState) inv(_ *Op, _ Context, operands coords.CoordinateSet) int {
	offset := 0.0
	if st.useUcOff {
		offset = math.Copysign(st.uc, st.latc)
	}

	successes := 0
	for i := 0; i < operands.Len(); i++ {
		coord := operands.Get(i)
		x, y := coord[0], coord[1]

		v := (x-st.fe)*st.cc - (y-st.fn)*st.sc
		u := (y-st.fn)*st.cc + (x-st.fe)*st.sc + offset

		bigQ := math.Exp(-st.bigB * v / st.bigA)
		bigS := (bigQ - 1/bigQ) / 2
		bigT := (bigQ + 1/bigQ) / 2
		bigV := math.Sin(st.bigB * u / st.bigA)
		bigU := (bigV*st.c0 + bigS*st.s0) / bigT
		t := math.Pow(st.bigH/math.Sqrt((1+bigU)/(1-bigU)), 1/st.bigB)

		chi := math.Pi/2 - 2*math.Atan(t)

		// Fourier development of the inverse conformal latitude (the outer
		// factor of es is applied at the summation step).
		es := st.es
		f := [4]float64{
			1./2 + es*(5./24+es*(1./12+es*13./360)),
			es * (7./48 + es*(29./240+es*811./11520)),
			es * es * (7./120 + es*81./1120),
			es * es * es * 4279. / 161280,
		}
		lat := chi + es*(f[0]*math.Sin(2*chi)+f[1]*math.Sin(4*chi)+
			f[2]*math.Sin(6*chi)+f[3]*math.Sin(8*chi))
		lon := st.lambda0 -
			math.Atan2(bigS*st.c0-bigV*st.s0, math.Cos(st.bigB*u/st.bigA))/st.bigB

		coord[0] = lon
		coord[1] = lat
		operands.Set(i, coord)
		successes++
	}
	return successes
}

func newOmerc(raw opdef.RawParameters, _ Context) (*Op, error) {
	params, err := opdef.Parse(raw, omercGamut)
	if err != nil {
		return nil, err
	}
	st := newOmercState(params)
	return plainOp(raw, st.fwd, st.inv, omercGamut)
}

func sgn(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
