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
	"github.com/cockroachdb/geodesy/pkg/geodesy/ellps"
	"github.com/cockroachdb/geodesy/pkg/geodesy/grid"
	"github.com/cockroachdb/geodesy/pkg/geodesy/opdef"
	"github.com/stretchr/testify/require"
)

// gridContext is a Minimal context with an in-memory grid inventory, for
// testing the grid-based operators without touching the file system.
type gridContext struct {
	*Minimal
	grids map[string]grid.Grid
}

func newGridContext(t *testing.T, sources map[string]string) *gridContext {
	t.Helper()
	g := &gridContext{Minimal: NewMinimal(), grids: map[string]grid.Grid{}}
	for name, source := range sources {
		parsed, err := grid.FromGravsoft([]byte(source))
		require.NoError(t, err)
		g.grids[name] = parsed
	}
	return g
}

func (g *gridContext) GetGrid(name string) (grid.Grid, error) {
	if gr, ok := g.grids[name]; ok {
		return gr, nil
	}
	return nil, errors.Mark(errors.Newf("no grid %q", name), opdef.ErrIO)
}

func (g *gridContext) Op(definition string) (OpHandle, error) {
	op, err := newOp(opdef.NewRawParameters(definition, g.Globals()), g)
	if err != nil {
		return OpHandle{}, err
	}
	return g.insert(op), nil
}

func (g *gridContext) Apply(
	handle OpHandle, direction coords.Direction, operands coords.CoordinateSet,
) (int, error) {
	return g.opStore.apply(g, handle, direction, operands)
}

// A horizontal datum shift of a constant (55", 20") over southern
// Scandinavia, and a constant 10 m geoid.
const testDatumGrid = `
54 56 11 13 1 1
 55 20  55 20  55 20
 55 20  55 20  55 20
 55 20  55 20  55 20
`

const testGeoidGrid = `
54 56 11 13 1 1
 10 10 10
 10 10 10
 10 10 10
`

// A constant ENU velocity field: 55 mm/yr north, 12 mm/yr east.
const testDeformationGrid = `
54 56 11 13 1 1
 55 12 0  55 12 0  55 12 0
 55 12 0  55 12 0  55 12 0
 55 12 0  55 12 0  55 12 0
`

func TestGridshiftHorizontal(t *testing.T) {
	ctx := newGridContext(t, map[string]string{"test.datum": testDatumGrid})
	op, err := ctx.Op("gridshift grids=test.datum")
	require.NoError(t, err)

	cph := coords.Geo(55, 12, 0, 0)
	data := coords.Set4D{cph}
	apply(t, ctx, op, Fwd, data)
	res := data[0].ToDegrees()
	require.InDelta(t, 12+20./3600, res[0], 1e-9)
	require.InDelta(t, 55+55./3600, res[1], 1e-9)

	apply(t, ctx, op, Inv, data)
	require.InDelta(t, cph[0], data[0][0], 1e-12)
	require.InDelta(t, cph[1], data[0][1], 1e-12)
}

func TestGridshiftVertical(t *testing.T) {
	ctx := newGridContext(t, map[string]string{"test.geoid": testGeoidGrid})
	op, err := ctx.Op("gridshift grids=test.geoid")
	require.NoError(t, err)

	// The forward direction subtracts a vertical correction: ellipsoidal
	// height to height above the geoid.
	data := coords.Set4D{coords.Geo(55, 12, 100, 0)}
	apply(t, ctx, op, Fwd, data)
	require.InDelta(t, 90, data[0][2], 1e-9)
	apply(t, ctx, op, Inv, data)
	require.InDelta(t, 100, data[0][2], 1e-9)
}

func TestGridshiftCoverage(t *testing.T) {
	ctx := newGridContext(t, map[string]string{"test.datum": testDatumGrid})

	// Out of coverage without @null: NaN and a failure.
	op, err := ctx.Op("gridshift grids=test.datum")
	require.NoError(t, err)
	data := coords.Set4D{coords.Geo(40, 40, 0, 0)}
	failures, err := ctx.Apply(op, Fwd, data)
	require.NoError(t, err)
	require.Equal(t, 1, failures)
	require.True(t, math.IsNaN(data[0][0]))

	// With a terminal @null, uncovered points pass through unchanged.
	op, err = ctx.Op("gridshift grids=test.datum,@null")
	require.NoError(t, err)
	data = coords.Set4D{coords.Geo(40, 40, 0, 0)}
	failures, err = ctx.Apply(op, Fwd, data)
	require.NoError(t, err)
	require.Zero(t, failures)
	require.InDelta(t, coords.Geo(40, 40, 0, 0)[0], data[0][0], 1e-15)

	// An optional missing grid is skipped; a required missing grid is an
	// I/O error at construction.
	_, err = ctx.Op("gridshift grids=@no_such.datum,test.datum")
	require.NoError(t, err)
	_, err = ctx.Op("gridshift grids=no_such.datum")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrIO))
}

func TestDeformation(t *testing.T) {
	ctx := newGridContext(t, map[string]string{"test.deformation": testDeformationGrid})

	op, err := ctx.Op("deformation dt=1000 grids=test.deformation")
	require.NoError(t, err)

	e := ellps.Default()
	cph := e.Cartesian(coords.Geo(55, 12, 0, 0))
	expectedLength := math.Sqrt(55*55 + 12*12)

	// Forward subtracts the integrated deformation; the correction length
	// is invariant under the ENU to ECEF rotation.
	data := coords.Set4D{cph}
	apply(t, ctx, op, Fwd, data)
	require.InDelta(t, expectedLength, data[0].Hypot3(cph), 1e-6)

	data = coords.Set4D{cph}
	apply(t, ctx, op, Inv, data)
	require.InDelta(t, expectedLength, data[0].Hypot3(cph), 1e-6)

	// Roundtrip: the velocity lookup reuses the observed position, so the
	// closure is approximate, but far below the grid accuracy.
	data = coords.Set4D{cph}
	apply(t, ctx, op, Fwd, data)
	apply(t, ctx, op, Inv, data)
	require.Less(t, data[0].Hypot3(cph), 1e-3)

	// The raw flag emits the correction and its norm instead.
	op, err = ctx.Op("deformation raw dt=1000 grids=test.deformation")
	require.NoError(t, err)
	data = coords.Set4D{cph}
	apply(t, ctx, op, Fwd, data)
	require.InDelta(t, expectedLength, data[0][3], 1e-3)

	// Out of coverage stomps; @null passes through.
	lyb := e.Cartesian(coords.Geo(78.25, 15.5, 0, 0))
	data = coords.Set4D{lyb}
	failures, err := ctx.Apply(op, Fwd, data)
	require.NoError(t, err)
	require.Equal(t, 1, failures)
	require.True(t, math.IsNaN(data[0][0]))

	op, err = ctx.Op("deformation dt=1000 grids=test.deformation,@null")
	require.NoError(t, err)
	data = coords.Set4D{lyb}
	failures, err = ctx.Apply(op, Fwd, data)
	require.NoError(t, err)
	require.Zero(t, failures)
	require.Equal(t, lyb, data[0])

	// Either dt or t_epoch is required.
	_, err = ctx.Op("deformation grids=test.deformation")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrConstruction))

	// t_epoch reads the observation epoch from the fourth coordinate.
	op, err = ctx.Op("deformation t_epoch=2020 grids=test.deformation")
	require.NoError(t, err)
	at2010 := cph
	at2010[3] = 2010
	data = coords.Set4D{at2010}
	apply(t, ctx, op, Fwd, data)
	require.InDelta(t, 10*math.Hypot(55, 12)/1000, data[0].Hypot3(cph), 1e-6)
}
