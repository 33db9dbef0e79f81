// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

// Package geomset adapts go-geom geometries to the engine's CoordinateSet
// contract, so pipelines can run in place over the flat coordinate arrays
// of any geom.T without copying. The XY, XYZ and XYZM layouts map onto the
// engine's 2, 3 and 4 component tuples; M is treated as the time slot.
package geomset

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geodesy/pkg/geodesy/coords"
	"github.com/twpayne/go-geom"
)

// FlatSet is a CoordinateSet view over a flat coordinate slice with a
// given stride. The zero value is an empty set.
type FlatSet struct {
	flat   []float64
	stride int
}

var _ coords.CoordinateSet = (*FlatSet)(nil)

// FromGeom wraps the flat coordinates of a geometry. The geometry's
// coordinate storage is aliased, not copied: applying an operation over
// the set transforms the geometry in place.
func FromGeom(g geom.T) (*FlatSet, error) {
	stride := g.Stride()
	if stride < 2 || stride > 4 {
		return nil, errors.Newf("unsupported coordinate layout %s", g.Layout())
	}
	return &FlatSet{flat: g.FlatCoords(), stride: stride}, nil
}

// FromFlat wraps a raw flat coordinate slice.
func FromFlat(flat []float64, stride int) (*FlatSet, error) {
	if stride < 2 || stride > 4 {
		return nil, errors.Newf("unsupported stride %d", stride)
	}
	if len(flat)%stride != 0 {
		return nil, errors.Newf("flat slice length %d is not a multiple of the stride %d",
			len(flat), stride)
	}
	return &FlatSet{flat: flat, stride: stride}, nil
}

// Len implements coords.CoordinateSet.
func (s *FlatSet) Len() int {
	if s.stride == 0 {
		return 0
	}
	return len(s.flat) / s.stride
}

// Dim implements coords.CoordinateSet.
func (s *FlatSet) Dim() int { return s.stride }

// Get implements coords.CoordinateSet. Missing components widen the way
// the native slice sets do: 0 for the height, NaN for the time slot.
func (s *FlatSet) Get(index int) coords.Coor4D {
	base := index * s.stride
	c := coords.Coor4D{0, 0, 0, math.NaN()}
	copy(c[:s.stride], s.flat[base:base+s.stride])
	return c
}

// Set implements coords.CoordinateSet.
func (s *FlatSet) Set(index int, value coords.Coor4D) {
	base := index * s.stride
	copy(s.flat[base:base+s.stride], value[:s.stride])
}
