// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

package coords

import "math"

// CoordinateSet is the contract between the execution engine and any
// caller-provided coordinate container: an ordered, index-addressable,
// length-queryable collection of tuples of a fixed shape, mutated in place.
//
// Get always hands the kernel a Coor4D, whatever the native dimension;
// Set writes back the components the native shape can hold and discards
// the rest. Empty sets are legal.
type CoordinateSet interface {
	// Len is the number of coordinate tuples in the set.
	Len() int
	// Dim is the native dimension of the underlying tuples.
	Dim() int
	// Get returns the index'th tuple, widened to a Coor4D.
	Get(index int) Coor4D
	// Set overwrites the index'th tuple with the narrowable part of value.
	Set(index int, value Coor4D)
}

// Stomp overwrites every tuple in the set with NaN.
func Stomp(cs CoordinateSet) {
	nan := Nan()
	for i := 0; i < cs.Len(); i++ {
		cs.Set(i, nan)
	}
}

// Set2D adapts a slice of Coor2D to the CoordinateSet contract.
//
// Get fills in 0 as the third component and NaN as the fourth: the zero
// places the point directly on the reference ellipsoid, while the NaN makes
// any dynamic (time-dependent) transformation of the static data fail
// loudly instead of silently assuming an epoch.
type Set2D []Coor2D

// Len implements CoordinateSet.
func (s Set2D) Len() int { return len(s) }

// Dim implements CoordinateSet.
func (s Set2D) Dim() int { return 2 }

// Get implements CoordinateSet.
func (s Set2D) Get(index int) Coor4D {
	return Coor4D{s[index][0], s[index][1], 0, math.NaN()}
}

// Set implements CoordinateSet.
func (s Set2D) Set(index int, value Coor4D) {
	s[index] = Coor2D{value[0], value[1]}
}

// Set3D adapts a slice of Coor3D to the CoordinateSet contract. The fourth
// component reads as NaN, for the same reason as in Set2D.
type Set3D []Coor3D

// Len implements CoordinateSet.
func (s Set3D) Len() int { return len(s) }

// Dim implements CoordinateSet.
func (s Set3D) Dim() int { return 3 }

// Get implements CoordinateSet.
func (s Set3D) Get(index int) Coor4D {
	return Coor4D{s[index][0], s[index][1], s[index][2], math.NaN()}
}

// Set implements CoordinateSet.
func (s Set3D) Set(index int, value Coor4D) {
	s[index] = Coor3D{value[0], value[1], value[2]}
}

// Set4D adapts a slice of Coor4D to the CoordinateSet contract.
type Set4D []Coor4D

// Len implements CoordinateSet.
func (s Set4D) Len() int { return len(s) }

// Dim implements CoordinateSet.
func (s Set4D) Dim() int { return 4 }

// Get implements CoordinateSet.
func (s Set4D) Get(index int) Coor4D { return s[index] }

// Set implements CoordinateSet.
func (s Set4D) Set(index int, value Coor4D) { s[index] = value }

// Set32 adapts a slice of single precision Coor32 to the CoordinateSet
// contract.
type Set32 []Coor32

// Len implements CoordinateSet.
func (s Set32) Len() int { return len(s) }

// Dim implements CoordinateSet.
func (s Set32) Dim() int { return 2 }

// Get implements CoordinateSet.
func (s Set32) Get(index int) Coor4D {
	return Coor4D{float64(s[index][0]), float64(s[index][1]), 0, math.NaN()}
}

// Set implements CoordinateSet.
func (s Set32) Set(index int, value Coor4D) {
	s[index] = Coor32{float32(value[0]), float32(value[1])}
}
