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
	"github.com/cockroachdb/geodesy/pkg/geodesy/ellps"
	"github.com/cockroachdb/geodesy/pkg/geodesy/opdef"
)

// molodensky shifts datums directly in geographical coordinates, without
// the round trip through cartesian space. The full form depends on the
// ellipsoidal height; the abridged form drops that dependence in exchange
// for decimeter-class accuracy.
//
// Parameterize either directly with dx, dy, dz, da, df, or with a source
// and target ellipsoid pair (ellps_0, ellps_1), from which da and df are
// derived. Partially based on the PROJ implementation by Kristian Evers,
// and on Deakin (2004): The Standard and Abridged Molodensky Coordinate
// Transformation Formulae.

var molodenskyGamut = []opdef.OpParameter{
	opdef.Flag("inv"),
	opdef.Flag("abridged"),
	opdef.Real("dx", 0),
	opdef.Real("dy", 0),
	opdef.Real("dz", 0),
	opdef.Real("da", 0),
	opdef.Real("df", 0),
	opdef.Text("ellps", "GRS80"),
	opdef.Text("ellps_0", "GRS80"),
	opdef.Text("ellps_1", "GRS80"),
}

type molodenskyState struct {
	e        ellps.Ellipsoid
	a, f, es float64
	dx, dy   float64
	dz       float64
	da, df   float64
	adffda   float64
	abridged bool
}

func newMolodensky(raw opdef.RawParameters, _ Context) (*Op, error) {
	params, err := opdef.Parse(raw, molodenskyGamut)
	if err != nil {
		return nil, err
	}

	st := &molodenskyState{
		e:        params.Ellipsoid(0),
		abridged: params.Boolean("abridged"),
	}
	st.a = st.e.SemimajorAxis()
	st.f = st.e.Flattening()
	st.es = st.e.EccentricitySquared()
	st.dx, _ = params.Real("dx")
	st.dy, _ = params.Real("dy")
	st.dz, _ = params.Real("dz")
	st.da, _ = params.Real("da")
	st.df, _ = params.Real("df")

	// `ellps, da, df` parameterizes the op directly, but a source/target
	// pair `ellps_0, ellps_1` is what one comes across in real life.
	if params.Defined("ellps_0") && params.Defined("ellps_1") {
		from := params.Ellipsoid(0)
		to := params.Ellipsoid(1)
		st.da = to.SemimajorAxis() - from.SemimajorAxis()
		st.df = to.Flattening() - from.Flattening()
	}
	st.adffda = st.a*st.df + st.f*st.da

	common := func(operands coords.CoordinateSet, direction coords.Direction) int {
		successes := 0
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			offset, ok := st.offsets(c)
			if !ok {
				operands.Set(i, coords.Nan())
				continue
			}
			if direction == coords.Fwd {
				c[0] += offset[0]
				c[1] += offset[1]
				c[2] += offset[2]
			} else {
				c[0] -= offset[0]
				c[1] -= offset[1]
				c[2] -= offset[2]
			}
			operands.Set(i, c)
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
	return plainOp(raw, fwd, inv, molodenskyGamut)
}

// offsets computes the ellipsoidal-space offsets (dlam, dphi, dh) for one
// point. The second return is false where a denominator degenerates (at
// the poles for dlam).
func (st *molodenskyState) offsets(c coords.Coor4D) (coords.Coor4D, bool) {
	lam, phi, h := c[0], c[1], c[2]
	sinLam, cosLam := math.Sincos(lam)
	sinPhi, cosPhi := math.Sincos(phi)

	bigN := st.e.PrimeVerticalRadiusOfCurvature(phi)
	bigM := st.e.MeridianRadiusOfCurvature(phi)

	fac := st.dx*cosLam + st.dy*sinLam

	if st.abridged {
		dphi := (-fac*sinPhi + st.dz*cosPhi + st.adffda*math.Sin(2*phi)) / bigM

		dlamDenom := bigN * cosPhi
		if dlamDenom == 0 {
			return coords.Coor4D{}, false
		}
		dlam := (st.dy*cosLam - st.dx*sinLam) / dlamDenom

		dh := fac*cosPhi + (st.dz+st.adffda*sinPhi)*sinPhi - st.da
		return coords.Raw(dlam, dphi, dh, 0), true
	}

	dphi := (st.dz+bigN*st.es*sinPhi*st.da/st.a)*cosPhi - fac*sinPhi +
		(bigM/(1-st.f)+bigN*(1-st.f))*st.df*sinPhi*cosPhi
	dphiDenom := bigM + h
	if dphiDenom == 0 {
		return coords.Coor4D{}, false
	}
	dphi /= dphiDenom

	dlamDenom := (bigN + h) * cosPhi
	if dlamDenom == 0 {
		return coords.Coor4D{}, false
	}
	dlam := (st.dy*cosLam - st.dx*sinLam) / dlamDenom

	dh := fac*cosPhi + st.dz*sinPhi - (st.a/bigN)*st.da +
		bigN*(1-st.f)*st.df*sinPhi*sinPhi

	return coords.Raw(dlam, dphi, dh, 0), true
}
