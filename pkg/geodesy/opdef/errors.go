// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

package opdef

import "github.com/cockroachdb/errors"

// The error taxonomy of the engine. Every error produced by the definition
// parser, the resolver, the operator constructors and the execution engine
// is marked with exactly one of these sentinels, so callers can classify
// with errors.Is while the message carries the offending step and
// parameter.
var (
	// ErrSyntax marks malformed definition text.
	ErrSyntax = errors.New("syntax error")
	// ErrResolution marks unknown operators or macros, unresolved macro
	// parameters, and macro expansions exceeding the depth bound.
	ErrResolution = errors.New("resolution error")
	// ErrConstruction marks missing or invalid operator parameters,
	// unknown ellipsoids, and inconsistent parameter combinations.
	ErrConstruction = errors.New("construction error")
	// ErrInvariant marks violations that indicate a programming error,
	// such as popping from an empty operand stack outside a pipeline.
	ErrInvariant = errors.New("invariant violation")
	// ErrIO marks grid load failures for non-optional grids.
	ErrIO = errors.New("i/o error")
)

// Syntaxf returns a formatted error marked as ErrSyntax.
func Syntaxf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrSyntax)
}

// Resolutionf returns a formatted error marked as ErrResolution.
func Resolutionf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrResolution)
}

// Constructionf returns a formatted error marked as ErrConstruction.
func Constructionf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrConstruction)
}

// Invariantf returns a formatted error marked as ErrInvariant.
func Invariantf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvariant)
}
