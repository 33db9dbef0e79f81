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

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHorner(t *testing.T) {
	// Coefficients for 3x^2 + 2x + 1.
	coefficients := []float64{1, 2, 3}
	require.Equal(t, 6.0, Horner(1, coefficients))
	require.Equal(t, 17.0, Horner(2, coefficients))
	require.Equal(t, 9.0, Horner(-2, coefficients))

	require.Equal(t, 1.0, Horner(-2, []float64{1}))
	require.Equal(t, 3.0, Horner(-2, []float64{3}))
	require.Equal(t, 0.0, Horner(-2, nil))
}

func TestClenshawSin(t *testing.T) {
	require.Equal(t, 0.0, ClenshawSin(0, nil))
	require.Equal(t, 0.0, ClenshawSin(1, nil))

	// 1*sin(x) + 2*sin(2x) + 3*sin(3x)
	coefficients := []float64{1, 2, 3}
	x := 30 * math.Pi / 180
	expected := math.Sin(x) + 2*math.Sin(2*x) + 3*math.Sin(3*x)
	require.InDelta(t, expected, ClenshawSin(x, coefficients), 1e-14)
}

func TestClenshawComplexSin(t *testing.T) {
	// Canonical result from the Poder/Engsager implementation.
	coefficients := []float64{6, 5, 4, 3, 2, 1}
	arg := [2]float64{30 * math.Pi / 180, 60 * math.Pi / 180}
	sum := ClenshawComplexSin(arg, coefficients)
	require.InDelta(t, 248.6588463888177, sum[0], 1e-12)
	require.InDelta(t, -463.43634790763656, sum[1], 1e-12)

	require.Equal(t, [2]float64{}, ClenshawComplexSin(arg, nil))
}

func TestAngularEncodings(t *testing.T) {
	require.Equal(t, 55.51, DmsToDd(55, 30, 36))

	require.InDelta(t, 55.51, IsoDmToDd(5530.60), 1e-10)
	require.InDelta(t, 155.51, IsoDmToDd(15530.60), 1e-10)
	require.InDelta(t, -155.51, IsoDmToDd(-15530.60), 1e-10)
	require.InDelta(t, 55.51, IsoDmsToDd(553036.0), 1e-10)

	require.InDelta(t, 5530.15, DdToIsoDm(55.5025), 1e-10)
	require.InDelta(t, -5530.15, DdToIsoDm(-55.5025), 1e-10)
	require.InDelta(t, 553009., DdToIsoDms(55.5025), 1e-8)
	require.InDelta(t, -553036., DdToIsoDms(-55.51), 1e-8)

	require.Equal(t, 55.0, IsoDmToDd(5500.))
	require.Equal(t, -55.0, IsoDmToDd(-5500.))
	require.Equal(t, IsoDmToDd(5530.60), -IsoDmToDd(-5530.60))
	require.Equal(t, IsoDmsToDd(553036.), -IsoDmsToDd(-553036.))
}

func TestNormalize(t *testing.T) {
	require.InDelta(t, -math.Pi/2, NormalizeSymmetric(3*math.Pi/2), 1e-15)
	require.InDelta(t, 3*math.Pi/2, NormalizePositive(-math.Pi/2), 1e-15)
	require.InDelta(t, 0, NormalizePositive(2*math.Pi), 1e-15)
}

func TestTsPhi2Roundtrip(t *testing.T) {
	const e = 0.0818191910428158 // GRS80
	for _, deg := range []float64{-80, -45, -10, 0, 10, 45, 80} {
		phi := deg * math.Pi / 180
		s, c := math.Sincos(phi)
		ts := Ts(s, c, e)
		require.InDelta(t, phi, Phi2(ts, e), 1e-14, "phi=%v", deg)
	}
}
