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
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geodesy/pkg/geodesy/coords"
	"github.com/cockroachdb/geodesy/pkg/geodesy/grid"
	"github.com/cockroachdb/geodesy/pkg/geodesy/opdef"
	"gopkg.in/yaml.v3"
)

// Plain is a file-backed context provider: in addition to everything
// Minimal does, it resolves macros from .macro files and Markdown register
// files, and grids from Gravsoft files, along a configurable search path.
// Sufficient for most uses, especially geodetic grid development.
//
// The default search path is ./geodesy, optionally extended (and the
// globals optionally overridden) by a geodesy.yaml file in the working
// directory:
//
//	paths:
//	  - /usr/share/geodesy
//	globals:
//	  ellps: GRS80
//
// Resource resolution order for a name "base:name": run-time registrations
// first, then <path>/macro/base_name.macro, then a register file
// <path>/register/base.md, whose fenced code blocks tagged
// ```geodesy:NAME define the macros base:NAME.
type Plain struct {
	opStore
	paths   []string
	globals map[string]string

	mu struct {
		sync.Mutex
		grids map[string]grid.Grid
	}
}

var _ Context = (*Plain)(nil)

// plainConfig is the shape of the optional geodesy.yaml file.
type plainConfig struct {
	Paths   []string          `yaml:"paths"`
	Globals map[string]string `yaml:"globals"`
}

// NewPlain returns a Plain context with the builtin coordinate adaptors
// registered and the search path initialized from ./geodesy plus whatever
// an optional ./geodesy.yaml adds.
func NewPlain() *Plain {
	p := &Plain{
		opStore: newOpStore(),
		paths:   []string{filepath.Join(".", "geodesy")},
		globals: map[string]string{"ellps": "GRS80"},
	}
	p.mu.grids = map[string]grid.Grid{}

	if buf, err := os.ReadFile("geodesy.yaml"); err == nil {
		var config plainConfig
		if err := yaml.Unmarshal(buf, &config); err != nil {
			p.logger.Warningf("ignoring malformed geodesy.yaml: %v", err)
		} else {
			p.paths = append(p.paths, config.Paths...)
			for k, v := range config.Globals {
				p.globals[k] = v
			}
		}
	}

	for _, adaptor := range builtinAdaptors {
		p.RegisterResource(adaptor[0], adaptor[1])
	}
	return p
}

// AddSearchPath appends a directory to the resource search path.
func (p *Plain) AddSearchPath(path string) {
	p.paths = append(p.paths, path)
}

// Op implements Context.
func (p *Plain) Op(definition string) (OpHandle, error) {
	op, err := newOp(opdef.NewRawParameters(definition, p.Globals()), p)
	if err != nil {
		return OpHandle{}, err
	}
	return p.insert(op), nil
}

// Apply implements Context.
func (p *Plain) Apply(
	handle OpHandle, direction coords.Direction, operands coords.CoordinateSet,
) (int, error) {
	return p.opStore.apply(p, handle, direction, operands)
}

// Globals implements Context.
func (p *Plain) Globals() map[string]string {
	globals := make(map[string]string, len(p.globals))
	for k, v := range p.globals {
		globals[k] = v
	}
	return globals
}

// RegisterOp implements Context.
func (p *Plain) RegisterOp(name string, constructor OpConstructor) {
	p.opStore.registerOp(name, constructor)
}

// RegisterResource implements Context.
func (p *Plain) RegisterResource(name, definition string) {
	p.opStore.registerResource(name, definition)
}

// GetOp implements Context.
func (p *Plain) GetOp(name string) (OpConstructor, error) {
	return p.opStore.getOp(name)
}

// GetResource implements Context.
func (p *Plain) GetResource(name string) (string, error) {
	if body, ok := p.resources[name]; ok {
		return body, nil
	}

	// We cannot have ':' in filenames on every platform, so macro files
	// swap it for '_'.
	macroFile := strings.ReplaceAll(name, ":", "_") + ".macro"
	for _, path := range p.paths {
		if body, err := os.ReadFile(filepath.Join(path, "macro", macroFile)); err == nil {
			return string(body), nil
		}
	}

	// A register file? "base:name" resolves through register/base.md.
	if base, entry, ok := strings.Cut(name, ":"); ok {
		for _, path := range p.paths {
			buf, err := os.ReadFile(filepath.Join(path, "register", base+".md"))
			if err != nil {
				continue
			}
			register := parseRegister(string(buf))
			if body, ok := register[entry]; ok {
				return body, nil
			}
		}
	}

	return "", opdef.Resolutionf("no resource %q along the search path", name)
}

// GetGrid implements Context. Grids load once and are cached under an
// internal lock; after load, entries are read-only and may be shared.
func (p *Plain) GetGrid(name string) (grid.Grid, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if g, ok := p.mu.grids[name]; ok {
		return g, nil
	}

	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	for _, path := range p.paths {
		for _, candidate := range []string{
			filepath.Join(path, ext, name),
			filepath.Join(path, name),
		} {
			buf, err := os.ReadFile(candidate)
			if err != nil {
				continue
			}
			g, err := grid.FromGravsoft(buf)
			if err != nil {
				return nil, errors.Mark(
					errors.Wrapf(err, "grid %q", candidate), opdef.ErrIO)
			}
			p.mu.grids[name] = g
			return g, nil
		}
	}
	return nil, errors.Mark(
		errors.Newf("no grid %q along the search path", name), opdef.ErrIO)
}

// Steps implements Context.
func (p *Plain) Steps(handle OpHandle) ([]string, error) {
	return p.opStore.steps(handle)
}

// Params implements Context.
func (p *Plain) Params(handle OpHandle, index int) (*opdef.ParsedParameters, error) {
	return p.opStore.params(handle, index)
}

// Logger implements Context.
func (p *Plain) Logger() Logger { return p.logger }

// SetLogger replaces the diagnostics sink.
func (p *Plain) SetLogger(l Logger) { p.logger = l }

// parseRegister extracts the named macro bodies from a Markdown register:
// every fenced code block opened with ```geodesy:NAME defines the macro
// NAME (namespaced by the file's base name at the lookup site).
func parseRegister(text string) map[string]string {
	register := map[string]string{}
	var name string
	var body []string
	inFence := false

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if inFence {
			if strings.HasPrefix(trimmed, "```") {
				register[name] = strings.Join(body, "\n")
				inFence = false
				body = nil
				continue
			}
			body = append(body, line)
			continue
		}
		if tag, ok := strings.CutPrefix(trimmed, "```geodesy:"); ok {
			name = strings.TrimSpace(tag)
			inFence = true
		}
	}
	return register
}
