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

// newPipeline constructs a pipeline operator: each step instantiated, macro
// expansions inlined into a flat sequence, per-step control flags merged,
// and the whole validated so that a missing kernel surfaces now rather than
// at execution time.
func newPipeline(raw opdef.RawParameters, ctx Context) (*Op, error) {
	stepTexts := opdef.SplitIntoSteps(raw.Definition)

	pipeline := &Op{
		handle:     newOpHandle(),
		descriptor: opdef.Normalize(raw.Definition),
		steps:      []*Op{},
		stepTexts:  stepTexts,
	}

	for _, text := range stepTexts {
		step, err := newOp(raw.Next(text), ctx)
		if err != nil {
			return nil, err
		}

		// The step modifiers belong to the step position in this pipeline,
		// whatever the step resolved to (elementary op, macro, nested
		// pipeline).
		mods := opdef.SplitIntoParameters(text)
		omitFwd := mods["omit_fwd"] == "true"
		omitInv := mods["omit_inv"] == "true"

		if !step.IsPipeline() {
			step.omitFwd = step.omitFwd || omitFwd
			step.omitInv = step.omitInv || omitInv
			pipeline.steps = append(pipeline.steps, step)
			continue
		}

		// A nested pipeline (from macro expansion): inline its steps.
		// `inv` merges by XOR - an inverted nested pipeline contributes its
		// steps in reverse order, each toggled and with its omit flags
		// swapped. The position's omit flags merge by OR onto every inlined
		// step.
		inlined := step.steps
		if step.inverted {
			inlined = make([]*Op, 0, len(step.steps))
			for i := len(step.steps) - 1; i >= 0; i-- {
				child := step.steps[i]
				child.inverted = !child.inverted
				child.omitFwd, child.omitInv = child.omitInv, child.omitFwd
				inlined = append(inlined, child)
			}
		}
		for _, child := range inlined {
			child.omitFwd = child.omitFwd || omitFwd
			child.omitInv = child.omitInv || omitInv
			pipeline.steps = append(pipeline.steps, child)
		}
	}

	if err := validatePipeline(pipeline); err != nil {
		return nil, err
	}
	return pipeline, nil
}

// validatePipeline checks that every step reachable in a given direction
// has the kernel that direction needs. The stack operators are handled by
// the pipeline itself and work in both directions.
func validatePipeline(pipeline *Op) error {
	for _, step := range pipeline.steps {
		if step.kind != stackNone {
			continue
		}
		if !step.omitFwd {
			if step.effectiveFwd(coords.Fwd) && step.fwd == nil ||
				!step.effectiveFwd(coords.Fwd) && step.inv == nil {
				return opdef.Constructionf(
					"step %q cannot run forward; mark it omit_fwd or drop it", step.descriptor)
			}
		}
		if !step.omitInv {
			if step.effectiveFwd(coords.Inv) && step.fwd == nil ||
				!step.effectiveFwd(coords.Inv) && step.inv == nil {
				return opdef.Constructionf(
					"step %q cannot run inverse; mark it omit_inv or drop it", step.descriptor)
			}
		}
	}
	return nil
}

// applyPipeline runs the steps over the coordinate set: forward order for
// Fwd, reverse order for Inv, honoring the per-step modifiers. The operand
// stack lives exactly as long as this call. Each step sees the whole set
// before the next begins, in ascending point order.
func (op *Op) applyPipeline(
	ctx Context, operands coords.CoordinateSet, direction coords.Direction,
) (int, error) {
	var stack [][]float64
	n := math.MaxInt

	run := func(step *Op) (int, error) {
		if step.kind != stackNone {
			return stackExec(ctx, step, &stack, operands, direction), nil
		}
		return step.apply(ctx, operands, direction)
	}

	if direction == coords.Fwd {
		for _, step := range op.steps {
			if step.omitFwd {
				continue
			}
			m, err := run(step)
			if err != nil {
				return 0, err
			}
			n = min(n, m)
		}
	} else {
		for i := len(op.steps) - 1; i >= 0; i-- {
			step := op.steps[i]
			if step.omitInv {
				continue
			}
			m, err := run(step)
			if err != nil {
				return 0, err
			}
			n = min(n, m)
		}
	}

	// Every step omitted: the pipeline degenerates to a noop.
	if n == math.MaxInt {
		n = operands.Len()
	}
	return n, nil
}
