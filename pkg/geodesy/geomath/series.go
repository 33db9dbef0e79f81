// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

// Package geomath holds the numerical building blocks shared by the
// ellipsoid model and the projection kernels: polynomial and Fourier series
// evaluation, the PROJ-style ancillary latitude functions, angle
// normalization, and the ISO-6709 angular encodings.
package geomath

import "math"

// PolynomialOrder is the order of the Fourier series used for the auxiliary
// latitudes and the transverse mercator development.
const PolynomialOrder = 6

// PolynomialCoefficients is a pair of upper triangular matrices of
// polynomial coefficients, evaluated in the third flattening n to produce
// the Fourier coefficients of a forward/inverse series pair.
type PolynomialCoefficients struct {
	Fwd [PolynomialOrder][PolynomialOrder]float64
	Inv [PolynomialOrder][PolynomialOrder]float64
}

// FourierCoefficients is an instantiated forward/inverse series pair.
type FourierCoefficients struct {
	Fwd [PolynomialOrder]float64
	Inv [PolynomialOrder]float64
}

// FourierCoefficientsFor evaluates the Taylor polynomials in arg
// (typically the third flattening n) to obtain the Fourier coefficients.
func FourierCoefficientsFor(arg float64, c *PolynomialCoefficients) FourierCoefficients {
	var result FourierCoefficients
	for i := 0; i < PolynomialOrder; i++ {
		result.Fwd[i] = arg * Horner(arg, c.Fwd[i][:])
		result.Inv[i] = arg * Horner(arg, c.Inv[i][:])
	}
	return result
}

// Horner evaluates sum(c[i] * x^i) by Horner's scheme. An empty coefficient
// slice sums to zero.
func Horner(x float64, coefficients []float64) float64 {
	n := len(coefficients)
	if n == 0 {
		return 0
	}
	value := coefficients[n-1]
	for i := n - 2; i >= 0; i-- {
		value = math.FMA(value, x, coefficients[i])
	}
	return value
}

// ClenshawSin evaluates sum(c[i] * sin((i+1) * arg)) by Clenshaw summation.
func ClenshawSin(arg float64, coefficients []float64) float64 {
	sin, cos := math.Sincos(arg)
	return clenshawSinTrig([2]float64{sin, cos}, coefficients)
}

// ClenshawSinTrig is ClenshawSin with the trigonometric factors
// (sin arg, cos arg) precomputed by the caller. The transverse mercator
// kernel has them at hand anyway, and it is hot enough to care.
func ClenshawSinTrig(trig [2]float64, coefficients []float64) float64 {
	return clenshawSinTrig(trig, coefficients)
}

func clenshawSinTrig(trig [2]float64, coefficients []float64) float64 {
	x := 2 * trig[1]
	c0, c1 := 0.0, 0.0
	for i := len(coefficients) - 1; i >= 0; i-- {
		c0, c1 = math.FMA(x, c0, coefficients[i]-c1), c0
	}
	return trig[0] * c0
}

// ClenshawComplexSin evaluates sum(c[i] * Sin((i+1) * arg)) for a complex
// argument arg = (real, imag) and real coefficients, by Clenshaw summation.
func ClenshawComplexSin(arg [2]float64, coefficients []float64) [2]float64 {
	sinR, cosR := math.Sincos(arg[0])
	sinhI := math.Sinh(arg[1])
	coshI := math.Cosh(arg[1])
	return ClenshawComplexSinTrig([2]float64{sinR, cosR}, [2]float64{sinhI, coshI}, coefficients)
}

// ClenshawComplexSinTrig is ClenshawComplexSin with the trigonometric and
// hyperbolic factors precomputed by the caller.
func ClenshawComplexSinTrig(trig, hyp [2]float64, coefficients []float64) [2]float64 {
	sinR, cosR := trig[0], trig[1]
	sinhI, coshI := hyp[0], hyp[1]
	r := 2 * cosR * coshI
	i := -2 * sinR * sinhI

	n := len(coefficients)
	if n == 0 {
		return [2]float64{}
	}

	hr1, hr := 0.0, coefficients[n-1]
	hi1, hi := 0.0, 0.0
	var hr2, hi2 float64
	for k := n - 2; k >= 0; k-- {
		hr2, hi2, hr1, hi1 = hr1, hi1, hr, hi
		hr = -hr2 + r*hr1 - i*hi1 + coefficients[k]
		hi = -hi2 + i*hr1 + r*hi1
	}

	r = sinR * coshI
	i = cosR * sinhI
	return [2]float64{r*hr - i*hi, r*hi + i*hr}
}
