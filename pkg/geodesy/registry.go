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

import "sort"

// builtins maps operator names to their constructors. User registrations
// on a Context shadow these on name clash.
var builtins = map[string]OpConstructor{
	"adapt":       newAdapt,
	"addone":      newAddone,
	"axisswap":    newAxisswap,
	"cart":        newCart,
	"curvature":   newCurvature,
	"deformation": newDeformation,
	"dm":          newDm,
	"dms":         newDms,
	"geodesic":    newGeodesic,
	"gridshift":   newGridshift,
	"helmert":     newHelmert,
	"laea":        newLaea,
	"latitude":    newLatitude,
	"lcc":         newLcc,
	"merc":        newMerc,
	"molodensky":  newMolodensky,
	"omerc":       newOmerc,
	"somerc":      newSomerc,
	"tmerc":       newTmerc,
	"unitconvert": newUnitconvert,
	"utm":         newUtm,
	"webmerc":     newWebmerc,

	// Stack handlers; the enclosing pipeline does the actual work.
	"push":  newPush,
	"pop":   newPop,
	"stack": newStack,

	// The no-operation, and some commonly seen aliases for it.
	"noop":    newNoop,
	"longlat": newNoop,
	"latlon":  newNoop,
	"latlong": newNoop,
	"lonlat":  newNoop,
}

// BuiltinNames returns the names of the built-in operators, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
