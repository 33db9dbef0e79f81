// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

// Package opdef implements the operator definition language: the lexer
// that splits a pipeline definition into steps and parameters, and the
// raw/parsed parameter stores that operator constructors read from.
//
// The lexical rules, in brief: steps separate on '|'; a line starting with
// '>' is sugar for "| omit_inv", '<' for "| omit_fwd", ':' continues the
// previous line; '#' begins a comment; within a step, whitespace separates
// tokens, "key=value" sets a named argument, and a bare token is a boolean
// flag. The first non-modifier bare token of a step names the operator.
package opdef

import (
	"sort"
	"strings"
)

// NameKey is the pseudo-parameter under which the operator name of a step
// is stored by SplitIntoParameters.
const NameKey = "_name"

// Modifiers are the step-level control flags. They may appear anywhere in
// a step and are not operator arguments.
var modifiers = []string{"inv", "omit_fwd", "omit_inv"}

// IsModifier reports whether the token is a step modifier.
func IsModifier(token string) bool {
	for _, m := range modifiers {
		if token == m {
			return true
		}
	}
	return false
}

var subscriptReplacer = strings.NewReplacer(
	"₀=", "_0=", "₁=", "_1=", "₂=", "_2=", "₃=", "_3=", "₄=", "_4=",
	"₅=", "_5=", "₆=", "_6=", "₇=", "_7=", "₈=", "_8=", "₉=", "_9=",
)

// Normalize brings a definition fragment into canonical form: contiguous
// whitespace conflated to single spaces, key-value pairs glued around '=',
// no whitespace around the sigils ':' ',' '|' '$', unicode subscripts
// desugared, and the one-way separators '>' and '<' rewritten to
// "|omit_inv " and "|omit_fwd ".
func Normalize(definition string) string {
	s := strings.TrimSpace(definition)
	s = strings.Trim(s, ":")
	s = strings.ReplaceAll(s, "\n:", "\n")
	s = strings.Join(strings.Fields(s), " ")

	glue := strings.NewReplacer(
		"= ", "=", ": ", ":", ", ", ",", "| ", "|", "> ", ">", "< ", "<",
		" =", "=", " :", ":", " ,", ",", " |", "|", " >", ">", " <", "<",
	)
	// Run the gluing twice: the first pass may leave a space on the other
	// side of a sigil that the second pass removes.
	s = glue.Replace(glue.Replace(s))

	s = strings.ReplaceAll(s, ">", "|omit_inv ")
	s = strings.ReplaceAll(s, "<", "|omit_fwd ")
	s = subscriptReplacer.Replace(s)
	// "$ name" means "$name", but " $" stays as is.
	s = strings.ReplaceAll(s, "$ ", "$")

	return strings.Join(strings.Fields(s), " ")
}

// stripComments removes '#' comments and joins the remaining lines with
// spaces, after normalizing line endings and line continuations.
func stripComments(definition string) string {
	all := strings.ReplaceAll(definition, "\r\n", "\n")
	all = strings.ReplaceAll(all, "\r", "\n")
	all = strings.ReplaceAll(all, "\n:", "\n")

	var b strings.Builder
	for _, line := range strings.Split(all, "\n") {
		line = strings.TrimSpace(line)
		before, _, _ := strings.Cut(line, "#")
		b.WriteString(" ")
		b.WriteString(strings.TrimSpace(before))
	}
	return b.String()
}

// SplitIntoSteps removes comments and splits a pipeline definition into its
// normalized steps. Empty steps are dropped, so "a || b" and "a | b" are
// the same pipeline.
func SplitIntoSteps(definition string) []string {
	normalized := Normalize(stripComments(strings.TrimSpace(definition)))
	var steps []string
	for _, step := range strings.Split(normalized, "|") {
		if step != "" {
			steps = append(steps, step)
		}
	}
	return steps
}

// SplitIntoParameters splits a single step into its parameter map. Bare
// tokens become boolean flags with the value "true"; the first bare
// non-modifier token becomes the operator name, stored under NameKey.
func SplitIntoParameters(step string) map[string]string {
	params := map[string]string{}
	elements := strings.Fields(Normalize(step))
	if len(elements) == 0 {
		return params
	}

	// Rotate leading modifiers out of the name position.
	for len(elements) > 0 && IsModifier(elements[0]) {
		elements = append(elements[1:], elements[0])
	}

	named := false
	for _, element := range elements {
		key, value, isPair := strings.Cut(element, "=")
		if !isPair {
			if !named && !IsModifier(key) {
				params[NameKey] = key
				named = true
				continue
			}
			params[key] = "true"
			continue
		}
		params[key] = value
	}
	return params
}

// DuplicateKey scans a single step for a repeated parameter key. The
// splitting itself keeps the last occurrence; the parameter parser calls
// this to reject the step instead.
func DuplicateKey(step string) (string, bool) {
	seen := map[string]bool{}
	for _, element := range strings.Fields(Normalize(step)) {
		key, _, _ := strings.Cut(element, "=")
		if seen[key] {
			return key, true
		}
		seen[key] = true
	}
	return "", false
}

// OrderedFlags returns the bare flags of a step in source order, excluding
// the operator name and the step modifiers. The stack operators use this
// for their ordered component lists.
func OrderedFlags(step string) []string {
	elements := strings.Fields(Normalize(step))
	var flags []string
	named := false
	for _, element := range elements {
		if strings.Contains(element, "=") {
			continue
		}
		if IsModifier(element) {
			continue
		}
		if !named {
			named = true
			continue
		}
		flags = append(flags, element)
	}
	return flags
}

// IsPipeline reports whether the definition consists of more than one step.
func IsPipeline(definition string) bool {
	return strings.ContainsAny(definition, "|<>")
}

// IsResourceName reports whether the definition's operator name refers to a
// macro or register entry (i.e. contains a ':').
func IsResourceName(definition string) bool {
	return strings.Contains(OperatorName(definition), ":")
}

// OperatorName returns the operator name of a single-step definition, or
// the empty string for pipelines and nameless steps.
func OperatorName(definition string) string {
	if IsPipeline(definition) {
		return ""
	}
	return SplitIntoParameters(definition)[NameKey]
}

// SortedKeys returns the keys of a string map in sorted order; diagnostics
// use it for deterministic messages.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
