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
	"strings"

	"github.com/cockroachdb/geodesy/pkg/geodesy/coords"
	"github.com/cockroachdb/geodesy/pkg/geodesy/opdef"
)

// The operand stack operators. The pipeline owns the stack, so these
// operators carry no kernels of their own: they are tags plus argument
// lists, executed by the pipeline loop.
//
// Component lists are ordered. `push i1,...,ik` pushes component i1 first,
// so the last named component ends up on top of the stack. `pop i1,...,ik`
// pops k vectors writing them in reverse list order: top of stack lands in
// component ik. Consequently `push L | pop L` is the identity for any list
// L, and a push and a pop with identical lists are each other's inverses -
// under inverse invocation a push runs as a pop with the same list, and
// vice versa.

var stackGamut = []opdef.OpParameter{
	opdef.Series("push", ""),
	opdef.Series("pop", ""),
	opdef.Series("roll", ""),
	opdef.Series("unroll", ""),
	opdef.Series("flip", ""),
	opdef.Flag("swap"),
	opdef.Flag("drop"),
}

// newStack constructs the `stack` operator, validating that exactly one
// subcommand is given and that component indices are within 1..4.
func newStack(raw opdef.RawParameters, _ Context) (*Op, error) {
	op, err := plainOp(raw, nil, nil, stackGamut)
	if err != nil {
		return nil, err
	}
	p := op.params

	type sub struct {
		kind   stackKind
		series string
	}
	subcommands := 0

	for _, candidate := range []sub{
		{stackPush, "push"},
		{stackPop, "pop"},
		{stackFlip, "flip"},
	} {
		args, err := p.Series(candidate.series)
		if err != nil {
			continue
		}
		subcommands++
		op.kind = candidate.kind
		op.stackArgs = op.stackArgs[:0]
		for _, arg := range args {
			index := int(arg)
			if float64(index) != arg || index < 1 || index > 4 {
				return nil, opdef.Constructionf(
					"stack: invalid coordinate index %v for %s", arg, candidate.series)
			}
			op.stackArgs = append(op.stackArgs, index)
		}
	}

	for _, candidate := range []sub{{stackRoll, "roll"}, {stackUnroll, "unroll"}} {
		args, err := p.Series(candidate.series)
		if err != nil {
			continue
		}
		subcommands++
		if len(args) != 2 ||
			args[0] != float64(int(args[0])) || args[1] != float64(int(args[1])) ||
			int(args[0]) <= abs(int(args[1])) {
			return nil, opdef.Constructionf(
				"stack: %s takes two integer parameters (m,n) with |n| < m", candidate.series)
		}
		op.kind = candidate.kind
		op.stackArgs = []int{int(args[0]), int(args[1])}
	}

	if p.Boolean("swap") {
		subcommands++
		op.kind = stackSwap
	}
	if p.Boolean("drop") {
		subcommands++
		op.kind = stackDrop
	}

	if subcommands != 1 {
		return nil, opdef.Constructionf(
			"stack: must specify exactly one of push/pop/roll/unroll/flip/swap/drop")
	}
	return op, nil
}

// newPush constructs the `push` operator. The component list may be given
// as a single ordered comma list (push v_1,v_2) or as separate flags
// (push v_1 v_2); separate flags are order insignificant and process in
// ascending component order.
func newPush(raw opdef.RawParameters, ctx Context) (*Op, error) {
	return newPushPop(raw, stackPush)
}

// newPop constructs the `pop` operator. See newPush for the list forms.
func newPop(raw opdef.RawParameters, ctx Context) (*Op, error) {
	return newPushPop(raw, stackPop)
}

var pushPopGamut = []opdef.OpParameter{
	opdef.Flag("v_1"), opdef.Flag("v_2"), opdef.Flag("v_3"), opdef.Flag("v_4"),
}

func newPushPop(raw opdef.RawParameters, kind stackKind) (*Op, error) {
	op, err := plainOp(raw, nil, nil, pushPopGamut)
	if err != nil {
		return nil, err
	}
	op.kind = kind

	ordered := opdef.OrderedFlags(raw.Definition)
	if len(ordered) == 1 && strings.Contains(ordered[0], ",") {
		for _, token := range strings.Split(ordered[0], ",") {
			index, ok := componentIndex(token)
			if !ok {
				return nil, opdef.Constructionf("push/pop: invalid component %q", token)
			}
			op.stackArgs = append(op.stackArgs, index)
		}
		return op, nil
	}

	for _, component := range []string{"v_1", "v_2", "v_3", "v_4"} {
		if op.params.Boolean(component) {
			index, _ := componentIndex(component)
			op.stackArgs = append(op.stackArgs, index)
		}
	}
	if len(op.stackArgs) == 0 {
		return nil, opdef.Constructionf("push/pop: no components given")
	}
	return op, nil
}

func componentIndex(token string) (int, bool) {
	switch strings.TrimSpace(token) {
	case "v_1":
		return 1, true
	case "v_2":
		return 2, true
	case "v_3":
		return 3, true
	case "v_4":
		return 4, true
	}
	return 0, false
}

// stackExec carries out one stack step within a pipeline. In the inverse
// direction push and pop switch roles with unchanged argument lists, and
// roll/unroll switch with the complementary count.
func stackExec(
	ctx Context, op *Op, stack *[][]float64, operands coords.CoordinateSet,
	direction coords.Direction,
) int {
	kind := op.kind
	args := op.stackArgs
	if direction == coords.Inv {
		switch kind {
		case stackPush:
			kind = stackPop
		case stackPop:
			kind = stackPush
		case stackRoll:
			kind = stackUnroll
		case stackUnroll:
			kind = stackRoll
		}
	}

	switch kind {
	case stackPush:
		return doPush(stack, operands, args)
	case stackPop:
		return doPop(ctx, stack, operands, args)
	case stackFlip:
		return doFlip(ctx, *stack, operands, args)
	case stackRoll:
		return doRoll(ctx, stack, operands, args[0], args[1])
	case stackUnroll:
		return doRoll(ctx, stack, operands, args[0], args[0]-args[1])
	case stackSwap:
		n := len(*stack)
		if n < 2 {
			ctx.Logger().Warningf("stack swap with depth %d", n)
			coords.Stomp(operands)
			return 0
		}
		(*stack)[n-1], (*stack)[n-2] = (*stack)[n-2], (*stack)[n-1]
		return operands.Len()
	case stackDrop:
		if len(*stack) == 0 {
			ctx.Logger().Warningf("stack drop on empty stack")
			coords.Stomp(operands)
			return 0
		}
		*stack = (*stack)[:len(*stack)-1]
		return operands.Len()
	}
	return 0
}

// doPush pushes one vector per listed component, in list order, so the
// last listed component becomes top of stack.
func doPush(stack *[][]float64, operands coords.CoordinateSet, args []int) int {
	n := operands.Len()
	for _, component := range args {
		values := make([]float64, n)
		for i := 0; i < n; i++ {
			values[i] = operands.Get(i)[component-1]
		}
		*stack = append(*stack, values)
	}
	return n
}

// doPop pops len(args) vectors, writing them into the listed components in
// reverse list order (top of stack lands in the last listed component).
// Underflow stomps the whole operand set.
func doPop(ctx Context, stack *[][]float64, operands coords.CoordinateSet, args []int) int {
	n := operands.Len()
	if len(*stack) < len(args) {
		ctx.Logger().Warningf("stack underflow in pipeline")
		coords.Stomp(operands)
		return 0
	}
	for j := len(args) - 1; j >= 0; j-- {
		top := (*stack)[len(*stack)-1]
		*stack = (*stack)[:len(*stack)-1]
		component := args[j]
		for i := 0; i < n; i++ {
			c := operands.Get(i)
			c[component-1] = top[i]
			operands.Set(i, c)
		}
	}
	return n
}

// doFlip exchanges the listed components with the topmost stack vectors.
func doFlip(ctx Context, stack [][]float64, operands coords.CoordinateSet, args []int) int {
	n := operands.Len()
	depth := len(stack)
	if depth < len(args) {
		ctx.Logger().Warningf("stack flip underflow in pipeline")
		coords.Stomp(operands)
		return 0
	}
	for i := 0; i < n; i++ {
		c := operands.Get(i)
		for j, component := range args {
			level := depth - 1 - j
			c[component-1], stack[level][i] = stack[level][i], c[component-1]
		}
		operands.Set(i, c)
	}
	return n
}

// doRoll rolls the m-element sub-stack at the top: n elements move from
// the top to the bottom of the sub-stack. Negative n counts from the
// bottom instead.
func doRoll(ctx Context, stack *[][]float64, operands coords.CoordinateSet, m, n int) int {
	if n < 0 {
		n = m + n
	}
	depth := len(*stack)
	if m > depth {
		ctx.Logger().Warningf("stack roll deeper than the stack")
		coords.Stomp(operands)
		return 0
	}
	for i := 0; i < n; i++ {
		top := (*stack)[depth-1]
		copy((*stack)[depth-m+1:], (*stack)[depth-m:depth-1])
		(*stack)[depth-m] = top
	}
	return operands.Len()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
