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
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geodesy/pkg/geodesy/coords"
	"github.com/cockroachdb/geodesy/pkg/geodesy/opdef"
	"github.com/stretchr/testify/require"
)

// Two generic coordinates for test composition: Copenhagen and Stockholm,
// as raw numbers.
func basicCoordinates() coords.Set2D {
	return coords.Set2D{{55, 12}, {59, 18}}
}

func apply(
	t *testing.T, ctx Context, op OpHandle, dir coords.Direction, data coords.CoordinateSet,
) {
	t.Helper()
	failures, err := ctx.Apply(op, dir, data)
	require.NoError(t, err)
	require.Zero(t, failures)
}

func TestOpBasics(t *testing.T) {
	ctx := NewMinimal()

	// Garbage does not resolve.
	_, err := ctx.Op("_foo")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrResolution))

	// Forward and inverse operation.
	op, err := ctx.Op("addone")
	require.NoError(t, err)
	data := basicCoordinates()
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, 56.0, data[0][0])
	require.Equal(t, 60.0, data[1][0])
	apply(t, ctx, op, Inv, data)
	require.Equal(t, 55.0, data[0][0])
	require.Equal(t, 59.0, data[1][0])

	// An inverted operator swaps its directions.
	op, err = ctx.Op("addone inv ")
	require.NoError(t, err)
	data = basicCoordinates()
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, 54.0, data[0][0])
	apply(t, ctx, op, Inv, data)
	require.Equal(t, 55.0, data[0][0])

	// Unknown handles are refused.
	_, err = ctx.Apply(OpHandle{}, Fwd, data)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvariant))
}

func TestEmptySet(t *testing.T) {
	ctx := NewMinimal()
	op, err := ctx.Op("utm zone=32")
	require.NoError(t, err)
	var data coords.Set2D
	failures, err := ctx.Apply(op, Fwd, data)
	require.NoError(t, err)
	require.Zero(t, failures)
}

func TestPipeline(t *testing.T) {
	ctx := NewMinimal()
	op, err := ctx.Op("addone|addone|addone")
	require.NoError(t, err)

	data := basicCoordinates()
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, 58.0, data[0][0])
	apply(t, ctx, op, Inv, data)
	require.Equal(t, 55.0, data[0][0])

	// A step-level inv flag flips just that step.
	op, err = ctx.Op("addone|addone inv|addone")
	require.NoError(t, err)
	data = basicCoordinates()
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, 56.0, data[0][0])
	apply(t, ctx, op, Inv, data)
	require.Equal(t, 55.0, data[0][0])

	// Garbage steps fail at construction.
	_, err = ctx.Op("addone|addone|_garbage")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrResolution))
}

// A pipeline applied in Inv equals the reversed pipeline with every
// step's inv flag toggled, applied in Fwd.
func TestPipelineInversionLaw(t *testing.T) {
	ctx := NewMinimal()
	forward, err := ctx.Op("cart ellps=intl | helmert translation=-87,-96,-120 | cart inv")
	require.NoError(t, err)
	reversed, err := ctx.Op("cart | helmert inv translation=-87,-96,-120 | cart inv ellps=intl")
	require.NoError(t, err)

	a := coords.Set4D{coords.Geo(55, 12, 100, 0), coords.Geo(-33, 151, 10, 0)}
	b := coords.Set4D{a[0], a[1]}

	apply(t, ctx, forward, Inv, a)
	apply(t, ctx, reversed, Fwd, b)
	for i := range a {
		require.InDelta(t, b[i][0], a[i][0], 1e-14)
		require.InDelta(t, b[i][1], a[i][1], 1e-14)
		require.InDelta(t, b[i][2], a[i][2], 1e-8)
	}
}

func TestMacroExpansion(t *testing.T) {
	ctx := NewMinimal()
	ctx.RegisterResource("sub:one", "addone inv")

	op, err := ctx.Op("addone|sub:one|addone")
	require.NoError(t, err)
	data := basicCoordinates()
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, 56.0, data[0][0])
	apply(t, ctx, op, Inv, data)
	require.Equal(t, 55.0, data[0][0])

	// Macro invoked inverted.
	op, err = ctx.Op("addone|sub:one inv|addone")
	require.NoError(t, err)
	data = basicCoordinates()
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, 58.0, data[0][0])
	apply(t, ctx, op, Inv, data)
	require.Equal(t, 55.0, data[0][0])
}

func TestMacroExpansionWithEmbeddedPipeline(t *testing.T) {
	ctx := NewMinimal()
	ctx.RegisterResource("sub:three", "addone inv|addone inv|addone inv")

	op, err := ctx.Op("addone|sub:three")
	require.NoError(t, err)
	data := basicCoordinates()
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, 53.0, data[0][0])
	require.Equal(t, 57.0, data[1][0])
	apply(t, ctx, op, Inv, data)
	require.Equal(t, 55.0, data[0][0])

	op, err = ctx.Op("addone|sub:three inv")
	require.NoError(t, err)
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, 59.0, data[0][0])
	require.Equal(t, 63.0, data[1][0])
	apply(t, ctx, op, Inv, data)
	require.Equal(t, 55.0, data[0][0])
}

func TestMacroExpansionWithDefaults(t *testing.T) {
	ctx := NewMinimal()
	data := basicCoordinates()

	// A macro providing a default value of 1 for the x parameter.
	ctx.RegisterResource("helmert:one", "helmert x=(1)")

	op, err := ctx.Op("helmert:one")
	require.NoError(t, err)
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, 56.0, data[0][0])
	apply(t, ctx, op, Inv, data)
	require.Equal(t, 55.0, data[0][0])

	// Overwriting the default, inside a pipeline for good measure.
	op, err = ctx.Op("addone|helmert:one x=2")
	require.NoError(t, err)
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, 58.0, data[0][0])
	apply(t, ctx, op, Inv, data)
	require.Equal(t, 55.0, data[0][0])

	// Overwrite the default and invert the whole macro.
	op, err = ctx.Op("helmert:one x=2 inv")
	require.NoError(t, err)
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, 53.0, data[0][0])
	apply(t, ctx, op, Inv, data)
	require.Equal(t, 55.0, data[0][0])

	// A macro parameter with a default: $eggs(1).
	ctx.RegisterResource("helmert:won", "helmert x=$eggs(1)")

	op, err = ctx.Op("helmert:won")
	require.NoError(t, err)
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, 56.0, data[0][0])
	apply(t, ctx, op, Inv, data)
	require.Equal(t, 55.0, data[0][0])

	op, err = ctx.Op("helmert:won eggs=2")
	require.NoError(t, err)
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, 57.0, data[0][0])
	apply(t, ctx, op, Inv, data)
	require.Equal(t, 55.0, data[0][0])

	// A macro parameter without a default fails resolution when the
	// argument is missing, naming the parameter.
	ctx.RegisterResource("helmert:ham", "helmert x=$ham")
	_, err = ctx.Op("helmert:ham")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrResolution))
	require.Contains(t, err.Error(), "ham")

	op, err = ctx.Op("helmert:ham ham=2")
	require.NoError(t, err)
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, 57.0, data[0][0])
	apply(t, ctx, op, Inv, data)
	require.Equal(t, 55.0, data[0][0])
}

// Registering addone-like macros with aggregate defaults:
// caller-supplied scalars override aggregate components.
func TestMacroAggregateDefaults(t *testing.T) {
	ctx := NewMinimal()
	ctx.RegisterResource("plusone", "helmert translation=1,0,0")
	ctx.RegisterResource("add_x", "helmert translation=*1,0,0")

	op, err := ctx.Op("plusone | add_x x=-1 | add_x x=2")
	require.NoError(t, err)

	data := basicCoordinates()
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, 57.0, data[0][0]) // shifted by +2 in total
	require.Equal(t, 61.0, data[1][0])
	apply(t, ctx, op, Inv, data)
	require.Equal(t, 55.0, data[0][0])
}

func TestMacroRecursionBound(t *testing.T) {
	ctx := NewMinimal()
	ctx.RegisterResource("foo:bar", "foo:baz")
	ctx.RegisterResource("foo:baz", "foo:bar")

	body, err := ctx.GetResource("foo:bar")
	require.NoError(t, err)
	require.Equal(t, "foo:baz", body)

	_, err = ctx.Op("foo:baz")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrResolution))
}

func TestUserRegisteredOperator(t *testing.T) {
	ctx := NewMinimal()
	ctx.RegisterOp("double", func(raw opdef.RawParameters, _ Context) (*Op, error) {
		fwd := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
			for i := 0; i < operands.Len(); i++ {
				c := operands.Get(i)
				c[0] *= 2
				operands.Set(i, c)
			}
			return operands.Len()
		}
		inv := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
			for i := 0; i < operands.Len(); i++ {
				c := operands.Get(i)
				c[0] /= 2
				operands.Set(i, c)
			}
			return operands.Len()
		}
		return plainOp(raw, fwd, inv, []opdef.OpParameter{opdef.Flag("inv")})
	})

	op, err := ctx.Op("addone | double")
	require.NoError(t, err)
	data := basicCoordinates()
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, 112.0, data[0][0])
	apply(t, ctx, op, Inv, data)
	require.Equal(t, 55.0, data[0][0])
}

func TestIntrospection(t *testing.T) {
	ctx := NewMinimal()
	op, err := ctx.Op("geo:in | utm zone=32 | neu:out")
	require.NoError(t, err)

	data := basicCoordinates()
	apply(t, ctx, op, Fwd, data)
	require.InDelta(t, 6098907.825005002, data[0][0], 1e-7)
	require.InDelta(t, 691875.6321396609, data[0][1], 1e-7)

	steps, err := ctx.Steps(op)
	require.NoError(t, err)
	require.Equal(t, []string{"geo:in", "utm zone=32", "neu:out"}, steps)

	// Behind the curtains, the i/o macros are calls to the adapt operator.
	params, err := ctx.Params(op, 0)
	require.NoError(t, err)
	require.Equal(t, "adapt", params.Name())
	params, err = ctx.Params(op, 2)
	require.NoError(t, err)
	require.Equal(t, "adapt", params.Name())

	// While the utm step really is utm, not tmerc-with-extras.
	params, err = ctx.Params(op, 1)
	require.NoError(t, err)
	require.Equal(t, "utm", params.Name())
	zone, err := params.Natural("zone")
	require.NoError(t, err)
	require.Equal(t, 32, zone)
	require.Equal(t, 6378137.0, params.Ellipsoid(0).SemimajorAxis())

	_, err = ctx.Params(op, 17)
	require.Error(t, err)
}

// The >/< sugar makes a step one-directional: a >-step runs forward and
// not inverse, a <-step the other way around.
func TestOmitSugar(t *testing.T) {
	ctx := NewMinimal()
	op, err := ctx.Op("addone > addone < addone inv")
	require.NoError(t, err)

	data := basicCoordinates()
	apply(t, ctx, op, Fwd, data)
	// Forward: addone + addone, the <-step is omitted.
	require.Equal(t, 57.0, data[0][0])

	data = basicCoordinates()
	apply(t, ctx, op, Inv, data)
	// Inverse: the <-step (itself inverted, so +1 under Inv)
	// and the first step (-1); the >-step is omitted.
	require.Equal(t, 55.0, data[0][0])
}

func TestNoopIdentity(t *testing.T) {
	ctx := NewMinimal()
	for _, def := range []string{"noop", "noop all sorts_of=junk", "longlat", "latlon inv"} {
		op, err := ctx.Op(def)
		require.NoError(t, err, def)
		data := coords.Set4D{{-4052051.7643, 4212836.2017, -2545106.0245, 0}}
		apply(t, ctx, op, Fwd, data)
		require.Equal(t, coords.Coor4D{-4052051.7643, 4212836.2017, -2545106.0245, 0}, data[0])
		apply(t, ctx, op, Inv, data)
		require.Equal(t, coords.Coor4D{-4052051.7643, 4212836.2017, -2545106.0245, 0}, data[0])
	}
}

func TestNanPropagation(t *testing.T) {
	ctx := NewMinimal()
	for _, def := range []string{
		"utm zone=32", "merc", "webmerc", "cart", "helmert x=1",
	} {
		op, err := ctx.Op(def)
		require.NoError(t, err, def)
		data := coords.Set4D{{math.NaN(), 1, 0, 0}}
		_, err = ctx.Apply(op, Fwd, data)
		require.NoError(t, err)
		require.True(t, math.IsNaN(data[0][0]), def)
	}
}

// The reference round trip of the similarity-transform chain: ED50 to
// WGS84 and back, good to a millimeter.
func TestCartHelmertRoundTrip(t *testing.T) {
	ctx := NewMinimal()
	op, err := ctx.Op("cart ellps=intl | helmert translation=-87,-96,-120 | cart inv ellps=GRS80")
	require.NoError(t, err)

	data := coords.Set4D{coords.Geo(55, 12, 0, 0)}
	orig := data[0]
	apply(t, ctx, op, Fwd, data)
	apply(t, ctx, op, Inv, data)

	// 1 mm is about 1.6e-10 radians of latitude.
	require.InDelta(t, orig[0], data[0][0], 2e-10)
	require.InDelta(t, orig[1], data[0][1], 2e-10)
	require.InDelta(t, orig[2], data[0][2], 1e-3)
}
