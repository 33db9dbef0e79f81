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
	"github.com/golang/geo/r3"
)

// deformation applies a kinematic datum correction from a 3 band grid of
// deformation velocities, given in the local east-north-up frame and in a
// geographically georeferenced grid. Input and output are geocentric
// cartesian coordinates.
//
// Sign convention: the forward direction SUBTRACTS the integrated
// deformation. The point of the operator is to take an observation made
// at some epoch t and move it back to the frame epoch t_0, so that
// re-surveying a point at any later date keeps producing the same
// frame-epoch coordinate; hence forward = observation minus accumulated
// deformation. The deformation duration is either the fixed dt, or
// (t - t_epoch) with t read from the fourth coordinate; with dt given,
// the forward direction uses -dt times the velocity, the inverse +dt.
//
// The velocities are looked up at the observed position rather than at
// the (unknown) frame-epoch position: the deformations are so small
// compared to the grid node distance that the iterative refinement would
// vanish below the accuracy of the grid itself.

var deformationGamut = []opdef.OpParameter{
	opdef.Flag("inv"),
	opdef.Flag("raw"),
	opdef.Texts("grids"),
	opdef.Real("dt", math.NaN()),
	opdef.Real("t_epoch", math.NaN()),
	opdef.Text("ellps", "GRS80"),
}

func newDeformation(raw opdef.RawParameters, ctx Context) (*Op, error) {
	params, err := opdef.Parse(raw, deformationGamut)
	if err != nil {
		return nil, err
	}

	dt, _ := params.Real("dt")
	epoch, _ := params.Real("t_epoch")
	if math.IsNaN(dt) && math.IsNaN(epoch) {
		return nil, opdef.Constructionf("deformation: either dt or t_epoch must be given")
	}
	e := params.Ellipsoid(0)
	rawOutput := params.Boolean("raw")

	names, err := params.Texts("grids")
	if err != nil {
		return nil, err
	}
	grids, useNullGrid, err := resolveGridList(ctx, names)
	if err != nil {
		return nil, err
	}
	for _, g := range grids {
		if g.Bands() != 3 {
			return nil, opdef.Constructionf(
				"deformation: velocity grids carry 3 bands, got %d", g.Bands())
		}
	}

	common := func(operands coords.CoordinateSet, direction coords.Direction) int {
		successes := 0
		for i := 0; i < operands.Len(); i++ {
			cart := operands.Get(i)
			geo := e.Geographic(cart)

			_, v, ok := gridsAt(grids, geo)
			if !ok {
				if useNullGrid {
					successes++
					continue
				}
				operands.Set(i, coords.Nan())
				continue
			}

			// The duration is the fixed dt, or the time elapsed from the
			// frame epoch to the observation epoch.
			duration := dt
			if math.IsNaN(duration) || math.IsInf(duration, 0) {
				duration = geo[3] - epoch
			}

			velocity := r3.Vector{X: v[0], Y: v[1], Z: v[2]}
			if direction == coords.Fwd {
				velocity = velocity.Mul(-1)
			}
			deformation := rotateAndIntegrateVelocity(velocity, geo[0], geo[1], duration)

			if rawOutput {
				operands.Set(i, coords.Raw(
					deformation.X, deformation.Y, deformation.Z, deformation.Norm()))
			} else {
				operands.Set(i, coords.Raw(
					cart[0]+deformation.X, cart[1]+deformation.Y, cart[2]+deformation.Z, cart[3]))
			}
			successes++
		}
		return successes
	}

	fwd := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		return common(operands, coords.Fwd)
	}
	inv := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		return common(operands, coords.Inv)
	}
	return plainOp(raw, fwd, inv, deformationGamut)
}

// rotateAndIntegrateVelocity rotates an ENU velocity into the geocentric
// cartesian frame and multiplies by the duration, yielding the total
// deformation.
func rotateAndIntegrateVelocity(v r3.Vector, longitude, latitude, duration float64) r3.Vector {
	sinLon, cosLon := math.Sincos(longitude)
	sinLat, cosLat := math.Sincos(latitude)

	return r3.Vector{
		X: duration * (-sinLat*cosLon*v.Y - sinLon*v.X + cosLat*cosLon*v.Z),
		Y: duration * (-sinLat*sinLon*v.Y + cosLon*v.X + cosLat*sinLon*v.Z),
		Z: duration * (cosLat*v.Y + sinLat*v.Z),
	}
}
