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
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geodesy/pkg/geodesy/coords"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestPlainMacroFile(t *testing.T) {
	dir := t.TempDir()
	// The "stupid way of adding one" macro, one file per macro.
	writeFile(t, filepath.Join(dir, "macro", "stupid_way.macro"),
		"# A stupid way of adding one\naddone | addone | addone inv\n")

	ctx := NewPlain()
	ctx.AddSearchPath(dir)

	op, err := ctx.Op("stupid:way")
	require.NoError(t, err)
	data := basicCoordinates()
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, 56.0, data[0][0])
	require.Equal(t, 60.0, data[1][0])
	apply(t, ctx, op, Inv, data)
	require.Equal(t, 55.0, data[0][0])

	steps, err := ctx.Steps(op)
	require.NoError(t, err)
	require.Equal(t, []string{"addone", "addone", "addone inv"}, steps)
}

func TestPlainRegisterFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "register", "dk.md"), `
# A register of Danish operations

Some prose about the projection, which the loader ignores.

`+"```geodesy:utm32"+`
utm zone=32
`+"```"+`

More prose.

`+"```geodesy:s34j"+`
# Not the real thing, just a stand-in for the test
utm zone=32 inv
`+"```"+`
`)

	ctx := NewPlain()
	ctx.AddSearchPath(dir)

	op, err := ctx.Op("geo:in | dk:utm32")
	require.NoError(t, err)
	data := basicCoordinates()
	apply(t, ctx, op, Fwd, data)
	require.InDelta(t, 691875.6321396609, data[0][0], 1e-7)
	require.InDelta(t, 6098907.825005002, data[0][1], 1e-7)

	// The second fence resolves independently, and unknown entries fail.
	_, err = ctx.Op("dk:s34j")
	require.NoError(t, err)
	_, err = ctx.Op("dk:nothere")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrResolution))
}

func TestPlainGrids(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "datum", "test.datum"), testDatumGrid)

	ctx := NewPlain()
	ctx.AddSearchPath(dir)

	op, err := ctx.Op("gridshift grids=test.datum")
	require.NoError(t, err)

	cph := coords.Geo(55, 12, 0, 0)
	data := coords.Set4D{cph}
	apply(t, ctx, op, Fwd, data)
	res := data[0].ToDegrees()
	require.InDelta(t, 55.015278, res[1], 1e-6)
	require.InDelta(t, 12.005556, res[0], 1e-6)

	apply(t, ctx, op, Inv, data)
	require.InDelta(t, cph[0], data[0][0], 1e-12)
	require.InDelta(t, cph[1], data[0][1], 1e-12)

	// The grid cache hands out the same grid on re-request.
	g1, err := ctx.GetGrid("test.datum")
	require.NoError(t, err)
	g2, err := ctx.GetGrid("test.datum")
	require.NoError(t, err)
	require.Same(t, g1, g2)

	_, err = ctx.GetGrid("no_such.datum")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrIO))
}

func TestPlainRuntimeRegistrationWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "macro", "stupid_way.macro"), "addone | addone")

	ctx := NewPlain()
	ctx.AddSearchPath(dir)
	ctx.RegisterResource("stupid:way", "addone")

	op, err := ctx.Op("stupid:way")
	require.NoError(t, err)
	data := basicCoordinates()
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, 56.0, data[0][0])
}
