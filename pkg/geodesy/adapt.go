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
	"strings"

	"github.com/cockroachdb/geodesy/pkg/geodesy/coords"
	"github.com/cockroachdb/geodesy/pkg/geodesy/opdef"
)

// adapt converts between coordinate orderings and angular units,
// declaratively: the caller states what the data comes `from` and what it
// should go `to`, and adapt works out the permutation and scaling.
//
// A descriptor is four direction letters from {e,n,u,f} (eastish,
// northish, upish, futurish) or their reverses {w,s,d,p}, optionally
// suffixed by an angular unit (_deg, _gon, _rad, _any). The internal
// representation is enuf_rad, so `adapt from=neuf_deg` reads
// latitude-first degrees into the internal form. `adapt to=X` equals
// `adapt inv from=X`, and composing `from=X to=Y` with `from=Y to=Z`
// equals `from=X to=Z` up to rounding.

var adaptGamut = []opdef.OpParameter{
	opdef.Flag("inv"),
	opdef.Text("from", "enuf"),
	opdef.Text("to", "enuf"),
}

type axisOrder struct {
	post [4]int
	mult [4]float64
	noop bool
}

func axisOrderFor(desc string) (axisOrder, bool) {
	order := axisOrder{post: [4]int{0, 1, 2, 3}, mult: [4]float64{1, 1, 1, 1}}
	if desc == "pass" {
		order.noop = true
		return order, true
	}

	if len(desc) != 4 && len(desc) != 8 {
		return axisOrder{}, false
	}

	toRad := 1.0
	if len(desc) == 8 {
		switch {
		case strings.HasSuffix(desc, "_deg"):
			toRad = math.Pi / 180
		case strings.HasSuffix(desc, "_gon"):
			toRad = math.Pi / 200
		case strings.HasSuffix(desc, "_rad"), strings.HasSuffix(desc, "_any"):
		default:
			return axisOrder{}, false
		}
	}

	var indices [4]int
	for i, d := range desc[:4] {
		var dd int
		switch d {
		case 'e':
			dd = 1
		case 'n':
			dd = 2
		case 'u':
			dd = 3
		case 'f':
			dd = 4
		case 'w':
			dd = -1
		case 's':
			dd = -2
		case 'd':
			dd = -3
		case 'p':
			dd = -4
		default:
			return axisOrder{}, false
		}
		indices[i] = dd
	}

	// The descriptor must be a true permutation.
	var count [4]int
	for _, d := range indices {
		count[abs(d)-1]++
	}
	if count != [4]int{1, 1, 1, 1} {
		return axisOrder{}, false
	}

	for i, d := range indices {
		order.post[i] = abs(d) - 1
		order.mult[i] = float64(sign(d))
		if i <= 1 {
			order.mult[i] *= toRad
		}
	}
	order.noop = order.mult == [4]float64{1, 1, 1, 1} && order.post == [4]int{0, 1, 2, 3}
	return order, true
}

// combineAxisOrders eliminates the redundancy of an over-specified
// from/to pair, producing the single permutation and scaling to apply.
func combineAxisOrders(from, to axisOrder) axisOrder {
	var give axisOrder
	for i := 0; i < 4; i++ {
		for j, p := range from.post {
			if p == to.post[i] {
				give.post[i] = j
				give.mult[i] = from.mult[j] / to.mult[i]
				break
			}
		}
	}
	give.noop = give.mult == [4]float64{1, 1, 1, 1} && give.post == [4]int{0, 1, 2, 3}
	return give
}

func newAdapt(raw opdef.RawParameters, _ Context) (*Op, error) {
	params, err := opdef.Parse(raw, adaptGamut)
	if err != nil {
		return nil, err
	}

	fromDesc, _ := params.Text("from")
	toDesc, _ := params.Text("to")

	from, ok := axisOrderFor(fromDesc)
	if !ok {
		return nil, opdef.Constructionf("adapt: bad value for 'from': %q", fromDesc)
	}
	to, ok := axisOrderFor(toDesc)
	if !ok {
		return nil, opdef.Constructionf("adapt: bad value for 'to': %q", toDesc)
	}

	give := combineAxisOrders(from, to)
	if give.noop {
		return plainOp(raw, noopKernel, noopKernel, adaptGamut)
	}
	post, mult := give.post, give.mult

	fwd := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			operands.Set(i, coords.Coor4D{
				c[post[0]] * mult[0],
				c[post[1]] * mult[1],
				c[post[2]] * mult[2],
				c[post[3]] * mult[3],
			})
		}
		return operands.Len()
	}
	inv := func(_ *Op, _ Context, operands coords.CoordinateSet) int {
		for i := 0; i < operands.Len(); i++ {
			c := operands.Get(i)
			var out coords.Coor4D
			for j := 0; j < 4; j++ {
				out[post[j]] = c[j] / mult[j]
			}
			operands.Set(i, out)
		}
		return operands.Len()
	}

	return plainOp(raw, fwd, inv, adaptGamut)
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}
