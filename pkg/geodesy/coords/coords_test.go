// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

package coords

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTupleConstructors(t *testing.T) {
	c := Raw(12, 55, 100, 0).ToRadians()
	d := Gis(12, 55, 100, 0)
	require.Equal(t, c, d)
	require.Equal(t, 12*math.Pi/180, d[0])

	e := Geo(55, 12, 100, 0)
	require.Equal(t, d, e)

	back := e.ToDegrees()
	require.InDelta(t, 12, back[0], 1e-14)
	require.InDelta(t, 55, back[1], 1e-14)

	require.True(t, Nan().HasNan())
	require.False(t, Origin().HasNan())
}

func TestTupleArithmetic(t *testing.T) {
	a := Raw(1, 2, 3, 4)
	b := Raw(4, 3, 2, 1)
	require.Equal(t, Raw(5, 5, 5, 5), a.Add(b))
	require.Equal(t, Raw(-3, -1, 1, 3), a.Sub(b))
	require.Equal(t, Raw(2, 4, 6, 8), a.Scale(2))
	require.Equal(t, 20.0, a.Dot(b))
	require.InDelta(t, math.Sqrt(9+1), a.Hypot2(b), 1e-15)
	require.InDelta(t, math.Sqrt(9+1+1), a.Hypot3(b), 1e-15)
}

func TestSetAdapters(t *testing.T) {
	t.Run("2d", func(t *testing.T) {
		s := Set2D{{55, 12}, {59, 18}}
		require.Equal(t, 2, s.Len())
		require.Equal(t, 2, s.Dim())

		c := s.Get(0)
		require.Equal(t, 55.0, c[0])
		// The height defaults to the ellipsoid surface, the time slot to a
		// noisy NaN.
		require.Equal(t, 0.0, c[2])
		require.True(t, math.IsNaN(c[3]))

		s.Set(1, Raw(1, 2, 3, 4))
		require.Equal(t, Coor2D{1, 2}, s[1])
	})

	t.Run("3d", func(t *testing.T) {
		s := Set3D{{55, 12, 100}}
		c := s.Get(0)
		require.Equal(t, 100.0, c[2])
		require.True(t, math.IsNaN(c[3]))
		s.Set(0, Raw(1, 2, 3, 4))
		require.Equal(t, Coor3D{1, 2, 3}, s[0])
	})

	t.Run("4d", func(t *testing.T) {
		s := Set4D{{55, 12, 100, 2020}}
		require.Equal(t, Raw(55, 12, 100, 2020), s.Get(0))
	})

	t.Run("32", func(t *testing.T) {
		s := Set32{{55, 12}}
		require.Equal(t, 2, s.Dim())
		require.Equal(t, 55.0, s.Get(0)[0])
		s.Set(0, Raw(1, 2, 3, 4))
		require.Equal(t, Coor32{1, 2}, s[0])
	})

	t.Run("empty", func(t *testing.T) {
		var s Set4D
		require.Equal(t, 0, s.Len())
		Stomp(s)
	})
}

func TestStomp(t *testing.T) {
	s := Set4D{{1, 2, 3, 4}, {5, 6, 7, 8}}
	Stomp(s)
	for i := range s {
		require.True(t, s.Get(i).HasNan())
	}
}
