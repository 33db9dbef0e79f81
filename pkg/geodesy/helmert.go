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

// helmert shifts between reference frames in 3D cartesian space, with 3
// (translation), 6 (+rotation), 7 (+scale) or 14 (+rates) parameters.
//
// Translations are given as x, y, z (meters) or the aggregate
// translation=x,y,z; rotations as rx, ry, rz (arc seconds) or
// rotation=rx,ry,rz; the scale s is in parts per million. Explicitly
// given scalars override the corresponding aggregate components. Rates
// (dx..dz m/yr, drx..drz arcsec/yr, ds ppm/yr) make the transformation
// time dependent: parameters are propagated by (t - t_epoch), with t read
// from the fourth coordinate, or fixed once via t_obs.
//
// The two rotation conventions differ in the sign of the rotation block:
// convention=position_vector rotates the vector in the frame,
// convention=coordinate_frame rotates the frame itself. The small-angle
// approximation is used unless the exact flag is set. The inverse
// de-offsets, unscales and applies the transposed rotation: the exact
// inverse with the exact flag, and correct to first order in the angles
// under the small-angle approximation.

var helmertGamut = []opdef.OpParameter{
	opdef.Flag("inv"),
	opdef.Flag("exact"),

	opdef.Real("x", 0), opdef.Real("y", 0), opdef.Real("z", 0),
	opdef.Real("dx", 0), opdef.Real("dy", 0), opdef.Real("dz", 0),
	opdef.Real("rx", 0), opdef.Real("ry", 0), opdef.Real("rz", 0),
	opdef.Real("drx", 0), opdef.Real("dry", 0), opdef.Real("drz", 0),

	opdef.Series("translation", ""),
	opdef.Series("rotation", ""),

	opdef.Text("convention", ""),

	opdef.Real("s", 0),
	opdef.Real("ds", 0),
	opdef.Real("t_epoch", math.NaN()),
	opdef.Real("t_obs", math.NaN()),
}

type helmertState struct {
	t  r3.Vector // translation, meters
	dt r3.Vector // translation rate, meters/year
	r  r3.Vector // rotation, radians
	dr r3.Vector // rotation rate, radians/year
	s  float64   // scale, dimensionless (1 + ppm*1e-6)
	ds float64   // scale rate per year

	rot [3]r3.Vector // the rotation matrix rows

	rotated        bool
	dynamic        bool
	fixedTime      bool
	exact          bool
	positionVector bool
	epoch          float64
}

func newHelmert(raw opdef.RawParameters, _ Context) (*Op, error) {
	params, err := opdef.Parse(raw, helmertGamut)
	if err != nil {
		return nil, err
	}

	aggregate := func(key string, overrides [3]string) (r3.Vector, error) {
		var v [3]float64
		if series, err := params.Series(key); err == nil {
			if len(series) != 3 {
				return r3.Vector{}, opdef.Constructionf(
					"helmert: %s takes exactly 3 elements", key)
			}
			copy(v[:], series)
		}
		for i, scalar := range overrides {
			if params.Defined(scalar) {
				v[i], _ = params.Real(scalar)
			}
		}
		return r3.Vector{X: v[0], Y: v[1], Z: v[2]}, nil
	}

	st := &helmertState{}
	if st.t, err = aggregate("translation", [3]string{"x", "y", "z"}); err != nil {
		return nil, err
	}
	st.dt = realVector(params, "dx", "dy", "dz")

	rotation, err := aggregate("rotation", [3]string{"rx", "ry", "rz"})
	if err != nil {
		return nil, err
	}
	st.r = rotation.Mul(math.Pi / 180 / 3600)
	st.dr = realVector(params, "drx", "dry", "drz").Mul(math.Pi / 180 / 3600)

	convention, _ := params.Text("convention")
	st.rotated = st.r != (r3.Vector{}) || st.dr != (r3.Vector{})
	st.positionVector = true
	if st.rotated {
		switch convention {
		case "position_vector":
		case "coordinate_frame":
			st.positionVector = false
		default:
			return nil, opdef.Constructionf(
				"helmert: rotation requires convention=position_vector or convention=coordinate_frame, got %q",
				convention)
		}
	}

	sppm, _ := params.Real("s")
	st.s = 1 + sppm*1e-6
	dsppm, _ := params.Real("ds")
	st.ds = dsppm * 1e-6

	st.exact = params.Boolean("exact")
	st.dynamic = st.dt != (r3.Vector{}) || st.dr != (r3.Vector{}) || st.ds != 0
	if st.dynamic {
		st.epoch, _ = params.Real("t_epoch")
		if math.IsNaN(st.epoch) {
			return nil, opdef.Constructionf("helmert: dynamic transformation requires t_epoch")
		}
		// A fixed observation time collapses the dynamic case: propagate the
		// parameters once and ignore the fourth coordinate.
		if tObs, _ := params.Real("t_obs"); !math.IsNaN(tObs) {
			st.fixedTime = true
			d := tObs - st.epoch
			st.t = st.t.Add(st.dt.Mul(d))
			st.r = st.r.Add(st.dr.Mul(d))
			st.s += st.ds * d
		}
	}

	st.rot = rotationMatrix(st.r, st.exact, st.positionVector)

	fwd := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		return st.apply(operands, coords.Fwd)
	}
	inv := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		return st.apply(operands, coords.Inv)
	}
	return plainOp(raw, fwd, inv, helmertGamut)
}

func realVector(params *opdef.ParsedParameters, x, y, z string) r3.Vector {
	vx, _ := params.Real(x)
	vy, _ := params.Real(y)
	vz, _ := params.Real(z)
	return r3.Vector{X: vx, Y: vy, Z: vz}
}

func (st *helmertState) apply(operands coords.CoordinateSet, direction coords.Direction) int {
	t := st.t
	s := st.s
	rot := st.rot

	prevT := math.NaN()
	n := operands.Len()
	for i := 0; i < n; i++ {
		c := operands.Get(i)

		// Time varying case: update the parameter set when the epoch of the
		// point changes.
		if st.dynamic && !st.fixedTime {
			if c[3] != prevT {
				prevT = c[3]
				d := c[3] - st.epoch
				t = st.t.Add(st.dt.Mul(d))
				s = st.s + st.ds*d
				if st.rotated {
					rot = rotationMatrix(st.r.Add(st.dr.Mul(d)), st.exact, st.positionVector)
				}
			}
		}

		v := r3.Vector{X: c[0], Y: c[1], Z: c[2]}

		if direction == coords.Fwd {
			if st.rotated {
				v = r3.Vector{X: rot[0].Dot(v), Y: rot[1].Dot(v), Z: rot[2].Dot(v)}
			}
			v = v.Mul(s).Add(t)
		} else {
			// De-offset and unscale, then invert the rotation by transposed
			// multiplication.
			v = v.Sub(t).Mul(1 / s)
			if st.rotated {
				v = r3.Vector{
					X: rot[0].X*v.X + rot[1].X*v.Y + rot[2].X*v.Z,
					Y: rot[0].Y*v.X + rot[1].Y*v.Y + rot[2].Y*v.Z,
					Z: rot[0].Z*v.X + rot[1].Z*v.Y + rot[2].Z*v.Z,
				}
			}
		}

		c[0], c[1], c[2] = v.X, v.Y, v.Z
		operands.Set(i, c)
	}
	return n
}

// rotationMatrix builds the 3x3 rotation matrix for the given rotation
// vector (radians). Based on Karsten Engsager's formulation in trlib's
// set_dtm_1.c, with optional small-angle approximation and selection
// between the position vector and coordinate frame conventions.
//
//	TO' = scale * [ROTZ * ROTY * ROTX] * FROM' + [x, y, z]'
func rotationMatrix(r r3.Vector, exact, positionVector bool) [3]r3.Vector {
	rx, ry, rz := r.X, r.Y, r.Z

	// Small-angle approximations: sin r = r, cos r = 1, with second order
	// infinitesimals dropped from the matrix elements.
	sx, sy, sz := rx, ry, rz
	cx, cy, cz := 1.0, 1.0, 1.0
	if exact {
		sx, cx = math.Sincos(rx)
		sy, cy = math.Sincos(ry)
		sz, cz = math.Sincos(rz)
	}

	r11 := cy * cz
	r12 := cx * sz
	r13 := -cx * sy * cz

	r21 := -cy * sz
	r22 := cx * cz
	r23 := sx * cz

	r31 := sy
	r32 := -sx * cy
	r33 := cx * cy

	if exact {
		r12 += sx * sy * cz
		r13 += sx * sz
		r22 -= sx * sy * sz
		r23 += cx * sy * sz
	}

	m := [3]r3.Vector{
		{X: r11, Y: r12, Z: r13},
		{X: r21, Y: r22, Z: r23},
		{X: r31, Y: r32, Z: r33},
	}

	// The position vector convention is the transpose of the coordinate
	// frame convention.
	if positionVector {
		m = [3]r3.Vector{
			{X: m[0].X, Y: m[1].X, Z: m[2].X},
			{X: m[0].Y, Y: m[1].Y, Z: m[2].Y},
			{X: m[0].Z, Y: m[1].Z, Z: m[2].Z},
		}
	}
	return m
}
