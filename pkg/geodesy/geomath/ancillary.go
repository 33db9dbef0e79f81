// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

package geomath

import "math"

// Gudermannian is the Gudermannian function gd, the work horse for
// computations involving the isometric latitude (the vertical coordinate
// of the Mercator projection).
func Gudermannian(arg float64) float64 {
	return math.Atan(math.Sinh(arg))
}

// GudermannianInv is the inverse Gudermannian function.
func GudermannianInv(arg float64) float64 {
	return math.Asinh(math.Tan(arg))
}

// Ts determines the function ts(phi) of Snyder (1987), eq. (7-10): the
// exponential of the negated isometric latitude, exp(-psi), evaluated in a
// numerically stable way.
//
//	ts = exp(-psi) = 1 / (tan(chi) + sec(chi))
//
// where chi is the conformal latitude. Inputs are the (sin, cos) pair of the
// geographic latitude and the eccentricity e.
func Ts(sinPhi, cosPhi, e float64) float64 {
	// exp(-asinh(tan phi)) = cos phi / (1 + sin phi)  for phi > 0
	//                      = (1 - sin phi) / cos phi  for phi < 0
	var factor float64
	if sinPhi > 0 {
		factor = cosPhi / (1 + sinPhi)
	} else {
		factor = (1 - sinPhi) / cosPhi
	}
	return math.Exp(e*math.Atanh(e*sinPhi)) * factor
}

// Msfn is Snyder (1982) eq. 12-15, the PROJ pj_msfn: the parallel radius
// scaled to the semimajor axis.
func Msfn(sinPhi, cosPhi, es float64) float64 {
	return cosPhi / math.Sqrt(1-sinPhi*sinPhi*es)
}

// Phi2 is the PROJ pj_phi2: the geographic latitude for a given ts value.
func Phi2(ts, e float64) float64 {
	return math.Atan(SinhPsiToTanPhi((1/ts-ts)/2, e))
}

// Qs is Snyder's q function, the PROJ pj_qsfn, used by the authalic
// latitude machinery.
func Qs(sinPhi, e float64) float64 {
	es := e * e
	oneEs := 1 - es

	if e < 1e-7 {
		return 2 * sinPhi
	}

	con := e * sinPhi
	div1 := 1 - con*con
	div2 := 1 + con
	return oneEs * (sinPhi/div1 - (0.5/e)*math.Log((1-con)/div2))
}

// SinhPsiToTanPhi computes tan(phi) from sinh(psi), where psi is the
// isometric latitude. Newton iteration following Karney (2011) and the
// PROJ implementation in phi2.cpp.
func SinhPsiToTanPhi(taup, e float64) float64 {
	// min iterations = 1, max iterations = 2; mean = 1.954
	const maxIter = 5

	rootEps := math.Sqrt(2.220446049250313e-16)
	tol := rootEps / 10
	tmax := 2 / rootEps

	e2m := 1 - e*e
	stol := tol * math.Max(math.Abs(taup), 1)

	// The initial guess. 70 corresponds to chi = 89.18 deg.
	var tau float64
	if math.Abs(taup) > 70 {
		tau = taup * math.Exp(e*math.Atanh(e))
	} else {
		tau = taup / e2m
	}

	// Handle +/-inf, NaN, and e = 1
	if math.Abs(tau) >= tmax || math.IsNaN(tau) {
		return tau
	}

	for i := 0; i < maxIter; i++ {
		tau1 := math.Sqrt(1 + tau*tau)
		sig := math.Sinh(e * math.Atanh(e*tau/tau1))
		taupa := math.Sqrt(1+sig*sig)*tau - sig*tau1
		dtau := (taup - taupa) * (1 + e2m*tau*tau) / (e2m * tau1 * math.Sqrt(1+taupa*taupa))
		tau += dtau
		if math.Abs(dtau) < stol || math.IsNaN(tau) {
			return tau
		}
	}
	return math.NaN()
}
