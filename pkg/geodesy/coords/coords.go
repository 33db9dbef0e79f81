// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

// Package coords provides the coordinate tuples and coordinate set
// abstractions that the transformation engine operates on.
//
// A coordinate tuple has no intrinsic interpretation: the operator consuming
// it decides what the components mean. By internal convention, angular
// components are in radians, linear components in meters, and the fourth
// component, when present, is time in decimal years. The internal component
// order is (eastish, northish, upish, futurish). NaN in a component marks the
// point as missing or invalid, and every operator propagates it.
package coords

import (
	"math"

	"github.com/golang/geo/s1"
)

// Direction selects which of an operator's two kernels to run.
type Direction int

const (
	// Fwd runs an operator in its forward direction.
	Fwd Direction = iota
	// Inv runs an operator in its inverse direction.
	Inv
)

func (d Direction) String() string {
	if d == Fwd {
		return "fwd"
	}
	return "inv"
}

// Coor4D is the generic 4D coordinate tuple. It is what kernels exchange
// with a CoordinateSet, regardless of the native dimension of the set.
type Coor4D [4]float64

// Coor3D is a 3D coordinate tuple.
type Coor3D [3]float64

// Coor2D is a 2D coordinate tuple.
type Coor2D [2]float64

// Coor32 is a 2D single precision coordinate tuple, for bulk data where
// the reduced resolution (roughly 2 m on the Earth's surface) is acceptable.
type Coor32 [2]float32

// Geo builds a Coor4D from latitude-first geographical coordinates in
// degrees, converting to the internal longitude-first radians convention.
func Geo(latitude, longitude, height, time float64) Coor4D {
	return Coor4D{
		(s1.Angle(longitude) * s1.Degree).Radians(),
		(s1.Angle(latitude) * s1.Degree).Radians(),
		height,
		time,
	}
}

// Gis builds a Coor4D from longitude-first geographical coordinates in
// degrees, converting the two angular components to radians.
func Gis(longitude, latitude, height, time float64) Coor4D {
	return Geo(latitude, longitude, height, time)
}

// Raw builds a Coor4D from components taken at face value.
func Raw(first, second, third, fourth float64) Coor4D {
	return Coor4D{first, second, third, fourth}
}

// Nan is the tuple of four NaNs, used for stomping invalid points.
func Nan() Coor4D {
	n := math.NaN()
	return Coor4D{n, n, n, n}
}

// Origin is the tuple of four zeros.
func Origin() Coor4D {
	return Coor4D{}
}

// HasNan reports whether any component is NaN.
func (c Coor4D) HasNan() bool {
	return math.IsNaN(c[0]) || math.IsNaN(c[1]) || math.IsNaN(c[2]) || math.IsNaN(c[3])
}

// XY returns the first two components.
func (c Coor4D) XY() (float64, float64) {
	return c[0], c[1]
}

// ToDegrees converts the two first (angular) components to degrees.
func (c Coor4D) ToDegrees() Coor4D {
	return Coor4D{(s1.Angle(c[0]) * s1.Radian).Degrees(), (s1.Angle(c[1]) * s1.Radian).Degrees(), c[2], c[3]}
}

// ToRadians converts the two first (angular) components to radians.
func (c Coor4D) ToRadians() Coor4D {
	return Coor4D{(s1.Angle(c[0]) * s1.Degree).Radians(), (s1.Angle(c[1]) * s1.Degree).Radians(), c[2], c[3]}
}

// Add returns the componentwise sum.
func (c Coor4D) Add(o Coor4D) Coor4D {
	return Coor4D{c[0] + o[0], c[1] + o[1], c[2] + o[2], c[3] + o[3]}
}

// Sub returns the componentwise difference.
func (c Coor4D) Sub(o Coor4D) Coor4D {
	return Coor4D{c[0] - o[0], c[1] - o[1], c[2] - o[2], c[3] - o[3]}
}

// Scale returns the tuple scaled componentwise by f.
func (c Coor4D) Scale(f float64) Coor4D {
	return Coor4D{c[0] * f, c[1] * f, c[2] * f, c[3] * f}
}

// Dot returns the 4D dot product.
func (c Coor4D) Dot(o Coor4D) float64 {
	return c[0]*o[0] + c[1]*o[1] + c[2]*o[2] + c[3]*o[3]
}

// Hypot2 is the Euclidean distance between the first two components of
// c and o. Useful for planar test assertions.
func (c Coor4D) Hypot2(o Coor4D) float64 {
	return math.Hypot(c[0]-o[0], c[1]-o[1])
}

// Hypot3 is the Euclidean distance between the first three components of
// c and o. Useful for cartesian test assertions.
func (c Coor4D) Hypot3(o Coor4D) float64 {
	dx := c[0] - o[0]
	dy := c[1] - o[1]
	dz := c[2] - o[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
