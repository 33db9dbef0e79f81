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

	"github.com/cockroachdb/geodesy/pkg/geodesy/coords"
	"github.com/stretchr/testify/require"
)

// requireProjected applies op forward, checks the projected values to
// tolFwd meters, then round-trips and checks the angular components to
// tolInv radians.
func requireProjected(
	t *testing.T, ctx Context, definition string,
	geo []coords.Coor4D, projected []coords.Coor4D, tolFwd, tolInv float64,
) {
	t.Helper()
	op, err := ctx.Op(definition)
	require.NoError(t, err)

	data := make(coords.Set4D, len(geo))
	copy(data, geo)
	apply(t, ctx, op, Fwd, data)
	for i := range data {
		require.InDelta(t, projected[i][0], data[i][0], tolFwd, "fwd[%d].x", i)
		require.InDelta(t, projected[i][1], data[i][1], tolFwd, "fwd[%d].y", i)
	}

	apply(t, ctx, op, Inv, data)
	for i := range data {
		require.InDelta(t, geo[i][0], data[i][0], tolInv, "inv[%d].lon", i)
		require.InDelta(t, geo[i][1], data[i][1], tolInv, "inv[%d].lat", i)
	}
}

func TestTmerc(t *testing.T) {
	ctx := NewMinimal()
	// Validation values from PROJ:
	//     echo 12 55 0 0 | cct -d18 +proj=utm +zone=32
	geo := []coords.Coor4D{
		coords.Geo(55, 12, 0, 0),
		coords.Geo(-55, 12, 0, 0),
		coords.Geo(55, -6, 0, 0),
		coords.Geo(-55, -6, 0, 0),
	}
	projected := []coords.Coor4D{
		coords.Raw(691875.632139661, 6098907.825005012, 0, 0),
		coords.Raw(691875.632139661, -6098907.825005012, 0, 0),
		coords.Raw(-455673.814189040, 6198246.671090279, 0, 0),
		coords.Raw(-455673.814189040, -6198246.671090279, 0, 0),
	}
	requireProjected(t, ctx,
		"tmerc k_0=0.9996 lon_0=9 x_0=500000", geo, projected, 1e-5, 1e-10)
	requireProjected(t, ctx, "utm zone=32", geo, projected, 1e-5, 1e-10)
}

func TestUtmValidation(t *testing.T) {
	ctx := NewMinimal()

	_, err := ctx.Op("utm zone=0")
	require.Error(t, err)
	_, err = ctx.Op("utm zone=61")
	require.Error(t, err)
	_, err = ctx.Op("utm")
	require.Error(t, err)

	// The southern hemisphere false northing.
	north, err := ctx.Op("utm zone=32")
	require.NoError(t, err)
	south, err := ctx.Op("utm zone=32 south")
	require.NoError(t, err)

	a := coords.Set4D{coords.Geo(-33, 9, 0, 0)}
	b := coords.Set4D{coords.Geo(-33, 9, 0, 0)}
	apply(t, ctx, north, Fwd, a)
	apply(t, ctx, south, Fwd, b)
	require.InDelta(t, a[0][1]+10000000, b[0][1], 1e-8)
}

func TestMerc(t *testing.T) {
	ctx := NewMinimal()
	// Validation values from PROJ: echo 12 55 0 0 | cct -d18 +proj=merc,
	// followed by quadrant checks from PROJ's builtins.gie.
	geo := []coords.Coor4D{
		coords.Geo(55, 12, 0, 0),
		coords.Geo(1, 2, 0, 0),
		coords.Geo(-1, 2, 0, 0),
		coords.Geo(1, -2, 0, 0),
		coords.Geo(-1, -2, 0, 0),
	}
	projected := []coords.Coor4D{
		coords.Raw(1335833.8895192828, 7326837.714873877, 0, 0),
		coords.Raw(222638.981586547, 110579.965218249, 0, 0),
		coords.Raw(222638.981586547, -110579.965218249, 0, 0),
		coords.Raw(-222638.981586547, 110579.965218249, 0, 0),
		coords.Raw(-222638.981586547, -110579.965218249, 0, 0),
	}
	requireProjected(t, ctx, "merc", geo, projected, 2e-8, 1e-12)
}

func TestMercLatTs(t *testing.T) {
	ctx := NewMinimal()
	// echo 12 55 0 0 | cct -d18 +proj=merc +lat_ts=56
	geo := []coords.Coor4D{coords.Geo(55, 12, 0, 0)}
	projected := []coords.Coor4D{coords.Raw(748713.2579258868, 4106573.8628412704, 0, 0)}
	requireProjected(t, ctx, "merc lat_ts=56", geo, projected, 2e-8, 1e-12)
}

func TestWebmerc(t *testing.T) {
	ctx := NewMinimal()
	// echo 12 55 0 0 | cct -d18 +proj=webmerc
	geo := []coords.Coor4D{coords.Geo(55, 12, 0, 0)}
	projected := []coords.Coor4D{coords.Raw(1335833.8895192828, 7361866.113051188, 0, 0)}
	requireProjected(t, ctx, "webmerc", geo, projected, 1e-8, 1e-12)
}

func TestLcc(t *testing.T) {
	ctx := NewMinimal()

	t.Run("one standard parallel", func(t *testing.T) {
		geo := []coords.Coor4D{
			coords.Geo(55, 12, 0, 0),
			coords.Geo(55, 10, 0, 0),
			coords.Geo(59, 14, 0, 0),
		}
		projected := []coords.Coor4D{
			coords.Raw(-0.000000000101829246, -222728.12230781605, 0, 0),
			coords.Raw(-128046.47243865224, -220853.7001605064, 0, 0),
			coords.Raw(115005.41456620068, 224484.5143763389, 0, 0),
		}
		requireProjected(t, ctx, "lcc lat_1=57 lon_0=12", geo, projected, 2e-8, 1e-11)
	})

	t.Run("two standard parallels", func(t *testing.T) {
		geo := []coords.Coor4D{coords.Geo(40, 12, 0, 0)}
		projected := []coords.Coor4D{coords.Raw(169863.02609393830, 4735925.219292451, 0, 0)}
		requireProjected(t, ctx, "lcc lat_1=33 lat_2=45 lon_0=10", geo, projected, 2e-8, 1e-11)
	})

	t.Run("one parallel and latitudinal offset", func(t *testing.T) {
		geo := []coords.Coor4D{coords.Geo(40, 12, 0, 0)}
		projected := []coords.Coor4D{coords.Raw(170800.01172874065, 557172.3611129294, 0, 0)}
		requireProjected(t, ctx, "lcc lat_1=39 lat_0=35 lon_0=10", geo, projected, 2e-8, 1e-11)
	})

	t.Run("two parallels and offsets and scaling", func(t *testing.T) {
		geo := []coords.Coor4D{coords.Geo(40, 12, 0, 0)}
		projected := []coords.Coor4D{coords.Raw(180509.3958329989, 616503.8863859775, 0, 0)}
		requireProjected(t, ctx,
			"lcc lat_1=33 lat_2=45 lat_0=35 lon_0=10 x_0=12345 y_0=67890 k_0=0.99",
			geo, projected, 2e-8, 1e-11)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := ctx.Op("lcc lat_1=45 lat_2=-45 lon_0=10")
		require.Error(t, err)
		_, err = ctx.Op("lcc lat_1=90 lon_0=10")
		require.Error(t, err)
	})

	t.Run("pole handling", func(t *testing.T) {
		op, err := ctx.Op("lcc lat_1=57 lon_0=12")
		require.NoError(t, err)
		// The south pole is not on the northern cone.
		data := coords.Set4D{coords.Geo(-90, 12, 0, 0)}
		failures, err := ctx.Apply(op, Fwd, data)
		require.NoError(t, err)
		require.Equal(t, 1, failures)
		require.True(t, math.IsNaN(data[0][0]))
	})
}

func TestLaea(t *testing.T) {
	ctx := NewMinimal()

	t.Run("projection center", func(t *testing.T) {
		// ETRS89-LAEA Europe: the projection center maps to the false
		// origin exactly.
		op, err := ctx.Op("laea lat_0=52 lon_0=10 x_0=4321000 y_0=3210000")
		require.NoError(t, err)
		data := coords.Set4D{coords.Geo(52, 10, 0, 0)}
		apply(t, ctx, op, Fwd, data)
		require.InDelta(t, 4321000, data[0][0], 1e-6)
		require.InDelta(t, 3210000, data[0][1], 1e-6)
	})

	t.Run("oblique roundtrip and symmetry", func(t *testing.T) {
		op, err := ctx.Op("laea lat_0=52 lon_0=10")
		require.NoError(t, err)

		east := coords.Set4D{coords.Geo(55, 12, 0, 0)}
		west := coords.Set4D{coords.Geo(55, 8, 0, 0)}
		apply(t, ctx, op, Fwd, east)
		apply(t, ctx, op, Fwd, west)
		require.InDelta(t, east[0][0], -west[0][0], 1e-6)
		require.InDelta(t, east[0][1], west[0][1], 1e-6)

		apply(t, ctx, op, Inv, east)
		require.InDelta(t, 12*math.Pi/180, east[0][0], 1e-10)
		require.InDelta(t, 55*math.Pi/180, east[0][1], 1e-8)
	})

	t.Run("polar aspect", func(t *testing.T) {
		op, err := ctx.Op("laea lat_0=90")
		require.NoError(t, err)
		data := coords.Set4D{coords.Geo(90, 0, 0, 0), coords.Geo(80, 45, 0, 0)}
		apply(t, ctx, op, Fwd, data)
		// The pole maps to the origin.
		require.InDelta(t, 0, data[0][0], 1e-6)
		require.InDelta(t, 0, data[0][1], 1e-6)
		// 45E of the pole: x and -y equal.
		require.InDelta(t, data[1][0], -data[1][1], 1e-6)

		apply(t, ctx, op, Inv, data)
		require.InDelta(t, 80*math.Pi/180, data[1][1], 1e-8)
		require.InDelta(t, 45*math.Pi/180, data[1][0], 1e-10)

		south, err := ctx.Op("laea lat_0=-90")
		require.NoError(t, err)
		data = coords.Set4D{coords.Geo(-80, 45, 0, 0)}
		apply(t, ctx, south, Fwd, data)
		apply(t, ctx, south, Inv, data)
		require.InDelta(t, -80*math.Pi/180, data[0][1], 1e-8)
		require.InDelta(t, 45*math.Pi/180, data[0][0], 1e-10)
	})

	t.Run("equatorial roundtrip", func(t *testing.T) {
		op, err := ctx.Op("laea lat_0=0 lon_0=0")
		require.NoError(t, err)
		data := coords.Set4D{coords.Geo(10, 10, 0, 0)}
		apply(t, ctx, op, Fwd, data)
		apply(t, ctx, op, Inv, data)
		require.InDelta(t, 10*math.Pi/180, data[0][0], 1e-10)
		require.InDelta(t, 10*math.Pi/180, data[0][1], 1e-8)
	})
}

func TestOmerc(t *testing.T) {
	ctx := NewMinimal()
	// EPSG validation case: Timbalai 1948 / RSO Borneo.
	definition := `
		omerc ellps=evrstSS variant
		x_0=590476.87 y_0=442857.65
		latc=4 lonc=115
		k_0=0.99984 alpha=53:18:56.9537 gamma_c=53:07:48.3685
	`
	geo := []coords.Coor4D{coords.Geo(5.3872535833, 115.8055054444, 0, 0)}
	projected := []coords.Coor4D{coords.Raw(679245.7281740266, 596562.7774687681, 0, 0)}
	requireProjected(t, ctx, definition, geo, projected, 1e-6, 1e-9)
}

func TestSomerc(t *testing.T) {
	ctx := NewMinimal()
	// CH1903/LV95, validated against the EPSG example point.
	definition := "somerc lat_0=46.9524055555556 lon_0=7.43958333333333 " +
		"k_0=1 x_0=2600000 y_0=1200000 ellps=bessel"

	op, err := ctx.Op(definition)
	require.NoError(t, err)

	data := coords.Set4D{{2531098.0, 1167363.0, 452.0, 0}}
	apply(t, ctx, op, Inv, data)
	require.InDelta(t, 0.11413236074541264, data[0][0], 1e-9)

	apply(t, ctx, op, Fwd, data)
	require.InDelta(t, 2531098.0, data[0][0], 1e-6)
	require.InDelta(t, 1167363.0, data[0][1], 1e-6)

	// Quadrant checks near the default origin.
	geo := []coords.Coor4D{
		coords.Gis(2, 1, 0, 0),
		coords.Gis(2, -1, 0, 0),
		coords.Gis(-2, 1, 0, 0),
		coords.Gis(-2, -1, 0, 0),
	}
	projected := []coords.Coor4D{
		coords.Raw(222638.98158654713, 110579.96521824898, 0, 0),
		coords.Raw(222638.98158654713, -110579.96521825089, 0, 0),
		coords.Raw(-222638.98158654713, 110579.96521824898, 0, 0),
		coords.Raw(-222638.98158654713, -110579.96521825089, 0, 0),
	}
	requireProjected(t, ctx, "somerc ellps=GRS80", geo, projected, 1e-7, 1e-9)
}
