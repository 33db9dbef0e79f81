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

	"github.com/golang/geo/s1"
)

// DmsToDd converts degrees, minutes and seconds-with-decimals to
// degrees-with-decimals. The sign is taken from the degree component.
func DmsToDd(d int, m int, s float64) float64 {
	sign := 1.0
	if d < 0 {
		sign = -1.0
		d = -d
	}
	return sign * (float64(d) + (float64(m)+s/60)/60)
}

// IsoDmToDd converts the ISO-6709 DDDMM.mmm format to degrees-with-decimals.
// Input where the minutes exceed 60 is not diagnosed.
func IsoDmToDd(isoDm float64) float64 {
	sign := math.Copysign(1, isoDm)
	dm := math.Floor(math.Abs(isoDm))
	fraction := math.Abs(isoDm) - dm
	d := math.Floor(dm / 100)
	m := dm - d*100 + fraction
	return sign * (d + m/60)
}

// DdToIsoDm converts degrees-with-decimals to the ISO-6709 DDDMM.mmm format.
func DdToIsoDm(dd float64) float64 {
	sign := math.Copysign(1, dd)
	dd = math.Abs(dd)
	d := math.Floor(dd)
	m := (dd - d) * 60
	return sign * (d*100 + m)
}

// IsoDmsToDd converts the extended ISO-6709 DDDMMSS.sss format to
// degrees-with-decimals.
func IsoDmsToDd(isoDms float64) float64 {
	sign := math.Copysign(1, isoDms)
	dms := math.Floor(math.Abs(isoDms))
	fraction := math.Abs(isoDms) - dms
	d := math.Floor(dms / 10000)
	ms := dms - d*10000
	m := math.Floor(ms / 100)
	s := ms - m*100 + fraction
	return sign * (d + (s/60+m)/60)
}

// DdToIsoDms converts degrees-with-decimals to the extended ISO-6709
// DDDMMSS.sss format.
func DdToIsoDms(dd float64) float64 {
	sign := math.Copysign(1, dd)
	dd = math.Abs(dd)
	d := math.Floor(dd)
	mm := (dd - d) * 60
	m := math.Floor(mm)
	s := (mm - m) * 60
	return sign * (d*10000 + m*100 + s)
}

// NormalizeSymmetric normalizes an angle in radians to (-pi, pi].
func NormalizeSymmetric(angle float64) float64 {
	return s1.Angle(angle).Normalized().Radians()
}

// NormalizePositive normalizes an angle in radians to [0, 2*pi).
func NormalizePositive(angle float64) float64 {
	a := math.Mod(angle, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
