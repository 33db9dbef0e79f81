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
)

// unitconvert scales the horizontal pair and the vertical component
// between units, pivoting through meters for linear units and radians for
// angular ones: Unit_A -> pivot -> Unit_B. Unspecified units default to
// meters.

// unit multipliers to the pivot unit. The linear table is the PROJ units
// list; the angular one covers radians, degrees and gradians.
type unit struct {
	name        string
	description string
	multiplier  float64
}

var linearUnits = []unit{
	{"km", "Kilometer", 1000},
	{"m", "Meter", 1},
	{"dm", "Decimeter", 0.1},
	{"cm", "Centimeter", 0.01},
	{"mm", "Millimeter", 0.001},
	{"kmi", "International Nautical Mile", 1852},
	{"in", "International Inch", 0.0254},
	{"ft", "International Foot", 0.3048},
	{"yd", "International Yard", 0.9144},
	{"mi", "International Statute Mile", 1609.344},
	{"fath", "International Fathom", 1.8288},
	{"ch", "International Chain", 20.1168},
	{"link", "International Link", 0.201168},
	{"us-in", "U.S. Surveyor's Inch", 100.0 / 3937.0},
	{"us-ft", "U.S. Surveyor's Foot", 1200.0 / 3937.0},
	{"us-yd", "U.S. Surveyor's Yard", 3600.0 / 3937.0},
	{"us-ch", "U.S. Surveyor's Chain", 79200.0 / 3937.0},
	{"us-mi", "U.S. Surveyor's Statute Mile", 6336000.0 / 3937.0},
	{"ind-yd", "Indian Yard", 0.91439523},
	{"ind-ft", "Indian Foot", 0.30479841},
	{"ind-ch", "Indian Chain", 20.11669506},
}

var angularUnits = []unit{
	{"rad", "Radian", 1},
	{"deg", "Degree", math.Pi / 180},
	{"grad", "Grad", math.Pi / 200},
}

func pivotMultiplier(name string) (float64, bool) {
	for _, u := range linearUnits {
		if u.name == name {
			return u.multiplier, true
		}
	}
	for _, u := range angularUnits {
		if u.name == name {
			return u.multiplier, true
		}
	}
	return 0, false
}

var unitconvertGamut = []opdef.OpParameter{
	opdef.Flag("inv"),
	opdef.Text("xy_in", "m"),
	opdef.Text("xy_out", "m"),
	opdef.Text("z_in", "m"),
	opdef.Text("z_out", "m"),
}

func newUnitconvert(raw opdef.RawParameters, _ Context) (*Op, error) {
	params, err := opdef.Parse(raw, unitconvertGamut)
	if err != nil {
		return nil, err
	}

	factor := func(inKey, outKey string) (float64, error) {
		in, _ := params.Text(inKey)
		out, _ := params.Text(outKey)
		inMult, ok := pivotMultiplier(in)
		if !ok {
			return 0, opdef.Constructionf("unitconvert: unknown unit %s=%s", inKey, in)
		}
		outMult, ok := pivotMultiplier(out)
		if !ok {
			return 0, opdef.Constructionf("unitconvert: unknown unit %s=%s", outKey, out)
		}
		return inMult / outMult, nil
	}

	xy, err := factor("xy_in", "xy_out")
	if err != nil {
		return nil, err
	}
	z, err := factor("z_in", "z_out")
	if err != nil {
		return nil, err
	}

	fwd := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			c[0] *= xy
			c[1] *= xy
			c[2] *= z
			operands.Set(i, c)
		}
		return operands.Len()
	}
	inv := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			c[0] /= xy
			c[1] /= xy
			c[2] /= z
			operands.Set(i, c)
		}
		return operands.Len()
	}

	return plainOp(raw, fwd, inv, unitconvertGamut)
}
