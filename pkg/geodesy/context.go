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
	"log"
	"os"

	"github.com/cockroachdb/geodesy/pkg/geodesy/coords"
	"github.com/cockroachdb/geodesy/pkg/geodesy/grid"
	"github.com/cockroachdb/geodesy/pkg/geodesy/opdef"
)

// Context is the interface between the transformation engine and the messy
// world outside: it resolves named operators and macros, provides grids,
// owns the instantiated operators, and routes diagnostics.
//
// A Context is not for sharing mutably between goroutines; give each
// goroutine its own. Operator objects are immutable once constructed, and
// handles stay valid for the life of the Context.
type Context interface {
	// Op instantiates the operation given by definition and returns its
	// handle.
	Op(definition string) (OpHandle, error)

	// Apply runs the operation in the given direction over the coordinate
	// set, mutating it in place. It returns the number of points that
	// failed (each stamped NaN); a non-nil error means the whole
	// application aborted.
	Apply(handle OpHandle, direction coords.Direction, operands coords.CoordinateSet) (int, error)

	// Globals returns the globally defined parameter defaults (typically
	// just ellps=GRS80).
	Globals() map[string]string

	// RegisterOp registers a user defined operator constructor. User
	// registrations shadow built-ins on name clash.
	RegisterOp(name string, constructor OpConstructor)
	// RegisterResource registers a user defined macro under the given name.
	RegisterResource(name, definition string)

	// GetOp resolves a user registered operator constructor.
	GetOp(name string) (OpConstructor, error)
	// GetResource resolves a macro body.
	GetResource(name string) (string, error)
	// GetGrid resolves a grid by logical name.
	GetGrid(name string) (grid.Grid, error)

	// Steps returns the text of each step of the operation, for
	// introspection.
	Steps(handle OpHandle) ([]string, error)
	// Params returns the parsed parameters of the index'th step (or of the
	// operation itself, for elementary operations and index 0).
	Params(handle OpHandle, index int) (*opdef.ParsedParameters, error)

	// Logger returns the diagnostics sink.
	Logger() Logger
}

// Logger is the diagnostics sink of a Context. The engine logs sparingly:
// ignored parameters, stack underflows, grid fallbacks.
type Logger interface {
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// DefaultLogger writes to the process standard error.
var DefaultLogger Logger = &defaultLogger{log.New(os.Stderr, "geodesy: ", log.LstdFlags)}

type defaultLogger struct {
	l *log.Logger
}

func (d *defaultLogger) Infof(format string, args ...interface{})    { d.l.Printf(format, args...) }
func (d *defaultLogger) Warningf(format string, args ...interface{}) { d.l.Printf(format, args...) }
func (d *defaultLogger) Errorf(format string, args ...interface{})   { d.l.Printf(format, args...) }

// The builtin coordinate adaptor macros, registered by the New
// constructors of the provided contexts. They are ordinary macros with no
// privileged status.
var builtinAdaptors = [][2]string{
	{"geo:in", "adapt from=neuf_deg"},
	{"geo:out", "adapt to=neuf_deg"},
	{"gis:in", "adapt from=enuf_deg"},
	{"gis:out", "adapt to=enuf_deg"},
	{"neu:in", "adapt from=neuf"},
	{"neu:out", "adapt to=neuf"},
	{"enu:in", "adapt from=enuf"},
	{"enu:out", "adapt to=enuf"},
}

// Error taxonomy sentinels, re-exported from opdef so callers can classify
// without importing the definition layer.
var (
	ErrSyntax       = opdef.ErrSyntax
	ErrResolution   = opdef.ErrResolution
	ErrConstruction = opdef.ErrConstruction
	ErrInvariant    = opdef.ErrInvariant
	ErrIO           = opdef.ErrIO
)

// Fwd and Inv re-export the direction tags for convenience.
const (
	Fwd = coords.Fwd
	Inv = coords.Inv
)
