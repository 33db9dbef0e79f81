// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

// Package geodesy is a composable pipeline executor for geodetic
// coordinate operations: reference frame shifts, map projections, and
// unit/axis conventions, composed from a small definition language into
// pipelines that behave externally like single atomic operators.
//
// A caller obtains a Context, instantiates an operation from its text
// definition, and applies it over a coordinate set:
//
//	ctx := geodesy.NewMinimal()
//	op, err := ctx.Op("geo:in | utm zone=32")
//	if err != nil { ... }
//	data := coords.Set2D{{55, 12}}
//	failures, err := ctx.Apply(op, geodesy.Fwd, data)
//
// Definitions compose steps with '|'; each step names an operator and its
// key=value arguments, plus the step modifiers inv, omit_fwd and omit_inv.
// Macros (run-time registered, or loaded from register files by the Plain
// context) expand recursively with parameter defaults and indirection.
// The internal coordinate convention is (eastish, northish, upish,
// futurish) in radians, meters and decimal years; the geo:/gis:/neu:/enu:
// adaptor macros convert human conventions at the pipeline boundary.
//
// Subpackages: coords (coordinate tuples and sets), ellps (the ellipsoid
// model), opdef (the definition language), grid (correction grids),
// geomath (series and ancillary functions), geomset (a go-geom adapter).
package geodesy
