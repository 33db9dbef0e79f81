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
	"github.com/cockroachdb/geodesy/pkg/geodesy/coords"
	"github.com/cockroachdb/geodesy/pkg/geodesy/grid"
	"github.com/cockroachdb/geodesy/pkg/geodesy/opdef"
)

// opStore holds the state shared by the provided Context implementations:
// user registered constructors and macros, and the append-only operator
// store.
type opStore struct {
	constructors map[string]OpConstructor
	resources    map[string]string
	operators    map[OpHandle]*Op
	logger       Logger
}

func newOpStore() opStore {
	return opStore{
		constructors: map[string]OpConstructor{},
		resources:    map[string]string{},
		operators:    map[OpHandle]*Op{},
		logger:       DefaultLogger,
	}
}

func (s *opStore) insert(op *Op) OpHandle {
	s.operators[op.handle] = op
	return op.handle
}

func (s *opStore) lookup(handle OpHandle) (*Op, error) {
	op, ok := s.operators[handle]
	if !ok {
		return nil, opdef.Invariantf("unknown operator handle %s", handle)
	}
	return op, nil
}

func (s *opStore) apply(
	ctx Context, handle OpHandle, direction coords.Direction, operands coords.CoordinateSet,
) (int, error) {
	op, err := s.lookup(handle)
	if err != nil {
		return 0, err
	}
	successes, err := op.apply(ctx, operands, direction)
	if err != nil {
		return 0, err
	}
	return operands.Len() - successes, nil
}

func (s *opStore) steps(handle OpHandle) ([]string, error) {
	op, err := s.lookup(handle)
	if err != nil {
		return nil, err
	}
	if op.IsPipeline() {
		return op.stepTexts, nil
	}
	return []string{op.descriptor}, nil
}

func (s *opStore) params(handle OpHandle, index int) (*opdef.ParsedParameters, error) {
	op, err := s.lookup(handle)
	if err != nil {
		return nil, err
	}
	if !op.IsPipeline() {
		if index != 0 {
			return nil, opdef.Invariantf("step index %d out of range for elementary operator", index)
		}
		return op.params, nil
	}
	if index < 0 || index >= len(op.steps) {
		return nil, opdef.Invariantf("step index %d out of range (%d steps)", index, len(op.steps))
	}
	return op.steps[index].params, nil
}

func (s *opStore) registerOp(name string, constructor OpConstructor) {
	s.constructors[name] = constructor
}

func (s *opStore) registerResource(name, definition string) {
	s.resources[name] = definition
}

func (s *opStore) getOp(name string) (OpConstructor, error) {
	if ctor, ok := s.constructors[name]; ok {
		return ctor, nil
	}
	return nil, opdef.Resolutionf("no user defined constructor %q", name)
}

// Minimal is an in-memory context provider supporting built-in and
// run-time defined operators and macros. Usually sufficient for
// cartographic work and for test authoring; it has no file system access
// and no grids.
type Minimal struct {
	opStore
}

var _ Context = (*Minimal)(nil)

// NewMinimal returns a Minimal context with the builtin coordinate
// adaptors (geo:in, gis:out, ...) registered.
func NewMinimal() *Minimal {
	m := &Minimal{opStore: newOpStore()}
	for _, adaptor := range builtinAdaptors {
		m.RegisterResource(adaptor[0], adaptor[1])
	}
	return m
}

// Op implements Context.
func (m *Minimal) Op(definition string) (OpHandle, error) {
	op, err := newOp(opdef.NewRawParameters(definition, m.Globals()), m)
	if err != nil {
		return OpHandle{}, err
	}
	return m.insert(op), nil
}

// Apply implements Context.
func (m *Minimal) Apply(
	handle OpHandle, direction coords.Direction, operands coords.CoordinateSet,
) (int, error) {
	return m.opStore.apply(m, handle, direction, operands)
}

// Globals implements Context.
func (m *Minimal) Globals() map[string]string {
	return map[string]string{"ellps": "GRS80"}
}

// RegisterOp implements Context.
func (m *Minimal) RegisterOp(name string, constructor OpConstructor) {
	m.opStore.registerOp(name, constructor)
}

// RegisterResource implements Context.
func (m *Minimal) RegisterResource(name, definition string) {
	m.opStore.registerResource(name, definition)
}

// GetOp implements Context.
func (m *Minimal) GetOp(name string) (OpConstructor, error) {
	return m.opStore.getOp(name)
}

// GetResource implements Context.
func (m *Minimal) GetResource(name string) (string, error) {
	if body, ok := m.resources[name]; ok {
		return body, nil
	}
	return "", opdef.Resolutionf("no user defined resource %q", name)
}

// GetGrid implements Context.
func (m *Minimal) GetGrid(name string) (grid.Grid, error) {
	return nil, opdef.Resolutionf("grid access not supported by the Minimal context (grid %q)", name)
}

// Steps implements Context.
func (m *Minimal) Steps(handle OpHandle) ([]string, error) {
	return m.opStore.steps(handle)
}

// Params implements Context.
func (m *Minimal) Params(handle OpHandle, index int) (*opdef.ParsedParameters, error) {
	return m.opStore.params(handle, index)
}

// Logger implements Context.
func (m *Minimal) Logger() Logger { return m.logger }

// SetLogger replaces the diagnostics sink.
func (m *Minimal) SetLogger(l Logger) { m.logger = l }
