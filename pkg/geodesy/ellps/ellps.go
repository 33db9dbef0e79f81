// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

// Package ellps models the reference ellipsoid and the derived geometric
// quantities the transformation kernels need: eccentricities, flattenings,
// radii of curvature, auxiliary latitudes, meridian arcs, geodesics, and
// the geographic/cartesian conversion.
package ellps

import (
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Ellipsoid is an immutable representation of a (potentially triaxial)
// reference ellipsoid. The second equatorial axis ay is carried for future
// triaxial use; every kernel in this repository assumes rotational symmetry
// and reads only a and f.
type Ellipsoid struct {
	a  float64
	ay float64
	f  float64
}

// Default returns the GRS80 ellipsoid.
func Default() Ellipsoid {
	return New(6378137.0, 1/298.2572221008827)
}

// New returns an ellipsoid of revolution with the given semimajor axis and
// flattening.
func New(semimajorAxis, flattening float64) Ellipsoid {
	return Ellipsoid{a: semimajorAxis, ay: semimajorAxis, f: flattening}
}

// Triaxial returns a triaxial ellipsoid with distinct equatorial axes.
func Triaxial(semimajorXAxis, semimajorYAxis, flattening float64) Ellipsoid {
	return Ellipsoid{a: semimajorXAxis, ay: semimajorYAxis, f: flattening}
}

// Named resolves a mnemonic ellipsoid name (GRS80, WGS84, intl, ...), or an
// "a, rf" pair such as "6378137, 298.25" (optionally parenthesized), to an
// Ellipsoid.
func Named(name string) (Ellipsoid, error) {
	for _, e := range builtinEllipsoids {
		if e.name == name {
			// EPSG convention: zero reciprocal flattening means zero flattening.
			f := 0.0
			if e.rf != 0 {
				f = 1 / e.rf
			}
			return Triaxial(e.ax, e.ay, f), nil
		}
	}

	trimmed := strings.TrimSpace(name)
	if strings.HasPrefix(trimmed, "(") && strings.HasSuffix(trimmed, ")") {
		trimmed = strings.TrimSuffix(strings.TrimPrefix(trimmed, "("), ")")
	}

	if parts := strings.Split(trimmed, ","); len(parts) == 2 {
		a, errA := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		rf, errRf := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errA == nil && errRf == nil {
			return New(a, 1/rf), nil
		}
	}

	return Ellipsoid{}, errors.Newf("unknown ellipsoid %q", name)
}

// SemimajorAxis returns a.
func (e Ellipsoid) SemimajorAxis() float64 { return e.a }

// SemimedianAxis returns the second equatorial axis ay.
func (e Ellipsoid) SemimedianAxis() float64 { return e.ay }

// SemiminorAxis returns b = a * (1 - f).
func (e Ellipsoid) SemiminorAxis() float64 { return e.a * (1 - e.f) }

// Flattening returns f = (a - b) / a.
func (e Ellipsoid) Flattening() float64 { return e.f }

// SecondFlattening returns (a - b) / b.
func (e Ellipsoid) SecondFlattening() float64 {
	b := e.SemiminorAxis()
	return (e.a - b) / b
}

// ThirdFlattening returns n = (a - b) / (a + b) = f / (2 - f).
func (e Ellipsoid) ThirdFlattening() float64 { return e.f / (2 - e.f) }

// AspectRatio returns b / a = 1 - f.
func (e Ellipsoid) AspectRatio() float64 { return 1 - e.f }

// LinearEccentricity returns E = sqrt(a^2 - b^2), negative if b > a.
func (e Ellipsoid) LinearEccentricity() float64 {
	b := e.SemiminorAxis()
	le := e.a*e.a - b*b
	if e.a > b {
		return math.Sqrt(le)
	}
	return -math.Sqrt(-le)
}

// EccentricitySquared returns e^2 = f * (2 - f) = (a^2 - b^2) / a^2.
func (e Ellipsoid) EccentricitySquared() float64 { return e.f * (2 - e.f) }

// Eccentricity returns e.
func (e Ellipsoid) Eccentricity() float64 { return math.Sqrt(e.EccentricitySquared()) }

// SecondEccentricitySquared returns e'^2 = e^2 / (1 - e^2).
func (e Ellipsoid) SecondEccentricitySquared() float64 {
	es := e.EccentricitySquared()
	return es / (1 - es)
}

// SecondEccentricity returns e'.
func (e Ellipsoid) SecondEccentricity() float64 {
	return math.Sqrt(e.SecondEccentricitySquared())
}

// PrimeVerticalRadiusOfCurvature returns N at the given latitude (radians).
func (e Ellipsoid) PrimeVerticalRadiusOfCurvature(latitude float64) float64 {
	if e.f == 0 {
		return e.a
	}
	s := math.Sin(latitude)
	return e.a / math.Sqrt(1-s*s*e.EccentricitySquared())
}

// MeridianRadiusOfCurvature returns M at the given latitude (radians).
func (e Ellipsoid) MeridianRadiusOfCurvature(latitude float64) float64 {
	if e.f == 0 {
		return e.a
	}
	s := math.Sin(latitude)
	num := e.a * (1 - e.EccentricitySquared())
	denom := math.Pow(1-s*s*e.EccentricitySquared(), 1.5)
	return num / denom
}

// PolarRadiusOfCurvature returns c = a^2 / b.
func (e Ellipsoid) PolarRadiusOfCurvature() float64 {
	return e.a * e.a / e.SemiminorAxis()
}

type namedEllipsoid struct {
	name        string
	ax, ay, rf  float64
	description string
}

var builtinEllipsoids = []namedEllipsoid{
	{"MERIT", 6378137, 6378137, 298.257, "MERIT 1983"},
	{"SGS85", 6378136, 6378136, 298.257, "Soviet Geodetic System 85"},
	{"GRS80", 6378137, 6378137, 298.2572221008827, "GRS 1980 (IUGG, 1980)"},
	{"IAU76", 6378140, 6378140, 298.257, "IAU 1976"},
	{"airy", 6377563.396, 6377563.396, 299.3249646, "Airy 1830"},
	{"APL4.9", 6378137, 6378137, 298.25, "Appl. Physics. 1965"},
	{"NWL9D", 6378145, 6378145, 298.25, "Naval Weapons Lab., 1965"},
	{"mod_airy", 6377340.189, 6377340.189, 299.3249373654824, "Modified Airy"},
	{"andrae", 6377104.43, 6377104.43, 300.0, "Andrae 1876 (Denmark, Iceland)"},
	{"danish", 6377019.2563, 6377019.2563, 300.0, "Andrae 1876 (Denmark, Iceland)"},
	{"aust_SA", 6378160, 6378160, 298.25, "Australian Natl & S. Amer. 1969"},
	{"GRS67", 6378160, 6378160, 298.2471674270, "GRS 67 (IUGG 1967)"},
	{"GSK2011", 6378136.5, 6378136.5, 298.2564151, "GSK-2011"},
	{"bessel", 6377397.155, 6377397.155, 299.1528128, "Bessel 1841"},
	{"bess_nam", 6377483.865, 6377483.865, 299.1528128, "Bessel 1841 (Namibia)"},
	{"clrk66", 6378206.4, 6378206.4, 294.9786982138982, "Clarke 1866"},
	{"clrk80", 6378249.145, 6378249.145, 293.4663, "Clarke 1880 mod."},
	{"clrk80ign", 6378249.2, 6378249.2, 293.4660212936269, "Clarke 1880 (IGN)"},
	{"CPM", 6375738.7, 6375738.7, 334.29, "Comm. des Poids et Mesures 1799"},
	{"delmbr", 6376428, 6376428, 311.5, "Delambre 1810 (Belgium)"},
	{"engelis", 6378136.05, 6378136.05, 298.2566, "Engelis 1985"},
	{"evrst30", 6377276.345, 6377276.345, 300.8017, "Everest 1830"},
	{"evrst48", 6377304.063, 6377304.063, 300.8017, "Everest 1948"},
	{"evrst56", 6377301.243, 6377301.243, 300.8017, "Everest 1956"},
	{"evrst69", 6377295.664, 6377295.664, 300.8017, "Everest 1969"},
	{"evrstSS", 6377298.556, 6377298.556, 300.8017, "Everest (Sabah & Sarawak)"},
	{"fschr60", 6378166, 6378166, 298.3, "Fischer (Mercury Datum) 1960"},
	{"fschr60m", 6378155, 6378155, 298.3, "Modified Fischer 1960"},
	{"fschr68", 6378150, 6378150, 298.3, "Fischer 1968"},
	{"helmert", 6378200, 6378200, 298.3, "Helmert 1906"},
	{"hough", 6378270, 6378270, 297, "Hough"},
	{"intl", 6378388, 6378388, 297, "International 1909 (Hayford)"},
	{"krass", 6378245, 6378245, 298.3, "Krassovsky, 1942"},
	{"kaula", 6378163, 6378163, 298.24, "Kaula 1961"},
	{"lerch", 6378139, 6378139, 298.257, "Lerch 1979"},
	{"mprts", 6397300, 6397300, 191, "Maupertius 1738"},
	{"new_intl", 6378157.5, 6378157.5, 298.2496153900135, "New International 1967"},
	{"plessis", 6376523, 6376523, 308.64099709583735, "Plessis 1817 (France)"},
	{"PZ90", 6378136, 6378136, 298.25784, "PZ-90"},
	{"SEasia", 6378155, 6378155, 298.3000002408657, "Southeast Asia"},
	{"walbeck", 6376896, 6376896, 302.78000018165636, "Walbeck"},
	{"WGS60", 6378165, 6378165, 298.3, "WGS 60"},
	{"WGS66", 6378145, 6378145, 298.25, "WGS 66"},
	{"WGS72", 6378135, 6378135, 298.26, "WGS 72"},
	{"WGS84", 6378137, 6378137, 298.257223563, "WGS 84"},
	{"sphere", 6370997, 6370997, 0, "Normal Sphere (r=6370997)"},
	{"unitsphere", 1, 1, 0, "Unit Sphere (r=1)"},
}
