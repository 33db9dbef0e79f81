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
	"github.com/stretchr/testify/require"
)

func stackData() coords.Set4D {
	return coords.Set4D{{11, 12, 13, 14}, {21, 22, 23, 24}}
}

func TestPushPop(t *testing.T) {
	ctx := NewMinimal()

	// push L | pop L is the identity for any list L.
	op, err := ctx.Op("push v_1,v_2 | pop v_1,v_2")
	require.NoError(t, err)
	data := stackData()
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, stackData(), data)

	// Popping the reversed list swaps the components.
	op, err = ctx.Op("push v_1,v_2 | pop v_2,v_1")
	require.NoError(t, err)
	data = stackData()
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, coords.Coor4D{12, 11, 13, 14}, data[0])
	require.Equal(t, coords.Coor4D{22, 21, 23, 24}, data[1])

	// A push and a pop with identical lists invert each other: applying
	// the swap pipeline inverse undoes it.
	apply(t, ctx, op, Inv, data)
	require.Equal(t, stackData(), data)

	// The flag form is order insignificant, so push v_2 v_1 | pop v_1 v_2
	// is the identity as well.
	op, err = ctx.Op("push v_2 v_1 | pop v_1 v_2")
	require.NoError(t, err)
	data = stackData()
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, stackData(), data)

	// Values survive an intermediate step that stomps on them.
	op, err = ctx.Op("push v_1,v_2 | helmert x=1000 y=1000 | pop v_1,v_2")
	require.NoError(t, err)
	data = stackData()
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, stackData(), data)

	// No components is a construction error.
	_, err = ctx.Op("push | pop v_1")
	require.Error(t, err)
}

func TestPushPopUnderflow(t *testing.T) {
	ctx := NewMinimal()
	op, err := ctx.Op("push v_1,v_2 | pop v_2,v_1,v_3")
	require.NoError(t, err)

	data := stackData()
	failures, err := ctx.Apply(op, Fwd, data)
	require.NoError(t, err)
	require.Equal(t, len(data), failures)
	require.True(t, math.IsNaN(data[0][0]))
}

func TestBareStackOpIsAnError(t *testing.T) {
	ctx := NewMinimal()
	op, err := ctx.Op("push v_1")
	require.NoError(t, err)
	data := stackData()
	_, err = ctx.Apply(op, Fwd, data)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvariant))
}

func TestStackSubcommands(t *testing.T) {
	ctx := NewMinimal()

	// Any number of pushes is fine.
	_, err := ctx.Op("stack push=2,2,1,1,3,3,4,4,4")
	require.NoError(t, err)

	// But at most one subcommand per step.
	_, err = ctx.Op("stack push=2,2,1,1 pop=1,1,2")
	require.Error(t, err)
	_, err = ctx.Op("stack")
	require.Error(t, err)
	_, err = ctx.Op("stack push=5")
	require.Error(t, err)
	_, err = ctx.Op("stack roll=2,3")
	require.Error(t, err)

	// Identity and swap via the stack operator.
	op, err := ctx.Op("stack push=1,2 | stack pop=1,2")
	require.NoError(t, err)
	data := stackData()
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, stackData(), data)

	op, err = ctx.Op("stack push=1,2 | stack swap | stack pop=1,2")
	require.NoError(t, err)
	data = stackData()
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, coords.Coor4D{12, 11, 13, 14}, data[0])
	apply(t, ctx, op, Inv, data)
	require.Equal(t, stackData(), data)
}

func TestStackRoll(t *testing.T) {
	ctx := NewMinimal()
	master := coords.Set4D{{1, 2, 3, 4}}

	// Roll 2 of the upper 3: (..2,3,4 -> TOS 4) becomes (..3,4,2).
	op, err := ctx.Op("stack push=1,2,3,4 | stack roll=3,2 | stack pop=1,2,3,4")
	require.NoError(t, err)
	data := coords.Set4D{master[0]}
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, coords.Coor4D{1, 3, 4, 2}, data[0])

	// Negative count rolls from the bottom: roll=3,-2 equals roll=3,1.
	op, err = ctx.Op("stack push=1,2,3,4 | stack roll=3,-2 | stack pop=1,2,3,4")
	require.NoError(t, err)
	data = coords.Set4D{master[0]}
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, coords.Coor4D{1, 4, 2, 3}, data[0])

	// Roll and unroll cancel.
	op, err = ctx.Op("stack push=1,2,3,4 | stack roll=3,2 | stack unroll=3,2 | stack pop=1,2,3,4")
	require.NoError(t, err)
	data = coords.Set4D{master[0]}
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, master[0], data[0])

	// Rolling deeper than the stack stomps.
	op, err = ctx.Op("stack push=1,2 | stack roll=3,1 | stack pop=1,2")
	require.NoError(t, err)
	data = coords.Set4D{master[0]}
	failures, err := ctx.Apply(op, Fwd, data)
	require.NoError(t, err)
	require.Equal(t, 1, failures)
}

func TestStackFlip(t *testing.T) {
	ctx := NewMinimal()
	master := coords.Set4D{{1, 2, 3, 4}}

	// Flip exchanges operand components with the top of the stack.
	op, err := ctx.Op("stack push=1,2,3,4 | helmert x=4 y=4 z=4 | stack flip=1,2")
	require.NoError(t, err)
	data := coords.Set4D{master[0]}
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, coords.Coor4D{4, 3, 7, 4}, data[0])

	// A double flip is the identity on the flipped components.
	op, err = ctx.Op("stack push=1,2,3,4 | helmert translation=4,4,4 | stack flip=1,2 | stack flip=1,2")
	require.NoError(t, err)
	data = coords.Set4D{master[0]}
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, coords.Coor4D{5, 6, 7, 4}, data[0])
}

func TestStackPushPopViaStackOp(t *testing.T) {
	ctx := NewMinimal()

	// The inverse of a push is a pop with the same argument list; doing
	// the inverse call first and the forward call second round-trips.
	op, err := ctx.Op("stack push=2,1 | stack pop=2,1")
	require.NoError(t, err)
	data := stackData()
	apply(t, ctx, op, Inv, data)
	apply(t, ctx, op, Fwd, data)
	require.Equal(t, stackData(), data)
}
