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
	"github.com/google/uuid"
)

// OpHandle is the opaque key under which a Context owns an instantiated
// operator. Handles remain valid until the Context is dropped.
type OpHandle struct {
	id uuid.UUID
}

func newOpHandle() OpHandle {
	return OpHandle{id: uuid.New()}
}

// String returns the handle's identity for diagnostics.
func (h OpHandle) String() string { return h.id.String() }

// InnerOp is a transformation kernel: it mutates the coordinate set in
// place and returns the number of points it transformed successfully.
// Points that fail individually are stamped NaN and not counted.
type InnerOp func(op *Op, ctx Context, operands coords.CoordinateSet) int

// OpConstructor instantiates an operator from its raw parameters. A
// constructor either succeeds completely or fails with a diagnostic;
// partial construction is forbidden.
type OpConstructor func(raw opdef.RawParameters, ctx Context) (*Op, error)

// stackKind tags the control-flow operators whose work is carried out by
// the enclosing pipeline (they need access to the per-invocation operand
// stack).
type stackKind int

const (
	stackNone stackKind = iota
	stackPush
	stackPop
	stackSwap
	stackRoll
	stackUnroll
	stackFlip
	stackDrop
)

// Op is a validated, immutable operator instance: either elementary
// (carrying a forward and optional inverse kernel) or a pipeline (carrying
// a flat sequence of elementary steps plus per-step control flags).
type Op struct {
	handle     OpHandle
	descriptor string
	params     *opdef.ParsedParameters

	fwd InnerOp
	inv InnerOp

	// Pipeline state: the constructed steps (macro expansions inlined), and
	// the original step texts for introspection.
	steps     []*Op
	stepTexts []string

	inverted bool
	omitFwd  bool
	omitInv  bool

	kind      stackKind
	stackArgs []int
}

// Handle returns the operator's opaque identity.
func (op *Op) Handle() OpHandle { return op.handle }

// Descriptor returns the normalized definition text, for introspection.
func (op *Op) Descriptor() string { return op.descriptor }

// Params returns the parsed parameter snapshot.
func (op *Op) Params() *opdef.ParsedParameters { return op.params }

// IsPipeline reports whether the operator is a pipeline.
func (op *Op) IsPipeline() bool { return op.steps != nil }

func (op *Op) isInvertible() bool {
	return op.inv != nil || op.IsPipeline() || op.kind != stackNone
}

// effectiveFwd reports whether running the op in the given outer direction
// ends up invoking the forward kernel.
func (op *Op) effectiveFwd(direction coords.Direction) bool {
	return (direction == coords.Fwd) != op.inverted
}

// apply runs the operator over the coordinate set and returns the number
// of successfully transformed points.
func (op *Op) apply(
	ctx Context, operands coords.CoordinateSet, direction coords.Direction,
) (int, error) {
	if op.IsPipeline() {
		return op.applyPipeline(ctx, operands, direction)
	}
	if op.kind != stackNone {
		return 0, opdef.Invariantf(
			"operand stack operator %q used outside a pipeline", op.descriptor)
	}

	if op.effectiveFwd(direction) {
		if op.fwd == nil {
			return 0, opdef.Constructionf("operator %q has no forward kernel", op.descriptor)
		}
		return op.fwd(op, ctx, operands), nil
	}
	if op.inv == nil {
		return 0, opdef.Constructionf("operator %q is not invertible", op.descriptor)
	}
	return op.inv(op, ctx, operands), nil
}

// handleInversion folds an externally requested inversion (the step-level
// or macro-level `inv` modifier) into the operator, failing if it has no
// inverse.
func (op *Op) handleInversion(inverted bool) (*Op, error) {
	if op.isInvertible() {
		if inverted {
			op.inverted = !op.inverted
		}
		return op, nil
	}
	if inverted {
		return nil, opdef.Constructionf("operator %q is not invertible", op.descriptor)
	}
	return op, nil
}

func (op *Op) handleOpInversion() (*Op, error) {
	return op.handleInversion(op.params != nil && op.params.Boolean("inv"))
}

// newOp instantiates the definition in raw, taking into account the
// relative precedence between pipelines, user defined operators, macros,
// and built-in operators.
func newOp(raw opdef.RawParameters, ctx Context) (*Op, error) {
	if raw.NestingTooDeep() {
		return nil, opdef.Resolutionf(
			"too deeply nested macro expansion for %q (depth bound %d)",
			raw.Invocation, opdef.MaxRecursion)
	}

	if opdef.IsPipeline(raw.Definition) {
		return newPipeline(raw, ctx)
	}

	name := opdef.OperatorName(raw.Definition)
	if name == "" {
		return nil, opdef.Syntaxf("missing operator name in %q", raw.Definition)
	}

	// A user defined operator?
	if !opdef.IsResourceName(raw.Definition) {
		if ctor, err := ctx.GetOp(name); err == nil {
			op, err := ctor(raw, ctx)
			if err != nil {
				return nil, err
			}
			warnIgnored(ctx, op)
			return op.handleOpInversion()
		}
	}

	// A macro? The call-site arguments enter the globals, the expanded body
	// becomes the definition, and we recurse. Inversion of the whole macro
	// is handled at this level, since the body may turn out to be a
	// pipeline, and leaking `inv` into the globals would instead invert
	// every step of it.
	if body, err := ctx.GetResource(name); err == nil {
		inverted := opdef.SplitIntoParameters(raw.Definition)["inv"] == "true"
		// Comments end at the line break, so strip them before the body is
		// collapsed onto one line.
		next := raw.NextMacroCall(raw.Definition, strings.Join(opdef.SplitIntoSteps(body), "|"))
		op, err := newOp(next, ctx)
		if err != nil {
			return nil, err
		}
		return op.handleInversion(inverted)
	}

	// A built-in operator?
	if ctor, ok := builtins[name]; ok {
		op, err := ctor(raw, ctx)
		if err != nil {
			return nil, err
		}
		warnIgnored(ctx, op)
		return op.handleOpInversion()
	}

	return nil, opdef.Resolutionf("operator %q not found: %s", name, raw.Definition)
}

func warnIgnored(ctx Context, op *Op) {
	if op.params == nil {
		return
	}
	for _, key := range op.params.Ignored() {
		ctx.Logger().Warningf("%s: ignoring unknown parameter %q", op.params.Name(), key)
	}
}

// plainOp covers the common case where a constructor only needs its gamut
// validated and its kernels attached.
func plainOp(
	raw opdef.RawParameters, fwd, inv InnerOp, gamut []opdef.OpParameter,
) (*Op, error) {
	params, err := opdef.Parse(raw, gamut)
	if err != nil {
		return nil, err
	}
	op := &Op{
		handle:     newOpHandle(),
		descriptor: opdef.Normalize(raw.Definition),
		params:     params,
		fwd:        fwd,
		inv:        inv,
	}
	_, op.omitFwd = params.Given()["omit_fwd"]
	_, op.omitInv = params.Given()["omit_inv"]
	return op, nil
}
