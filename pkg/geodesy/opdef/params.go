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

import (
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geodesy/pkg/geodesy/ellps"
)

// ParamKind enumerates the value kinds an operator parameter can take.
type ParamKind int

const (
	// KindFlag is a boolean that is true if present, false if not.
	KindFlag ParamKind = iota
	// KindNatural is a non-negative integer.
	KindNatural
	// KindInteger is a signed integer.
	KindInteger
	// KindReal is a floating point number; sexagesimal d:m:s.s notation is
	// accepted for angular values and converted to decimal degrees.
	KindReal
	// KindSeries is a comma separated list of reals.
	KindSeries
	// KindText is an uninterpreted string.
	KindText
	// KindTexts is a comma separated list of strings (e.g. grid names).
	KindTexts
)

// OpParameter declares one entry of an operator's parameter gamut: the
// accepted key, its kind, and an optional default. A parameter without a
// default is required, except for flags, which are implicitly false when
// absent.
type OpParameter struct {
	Key      string
	Kind     ParamKind
	Default  string
	Required bool
}

// Flag declares a boolean flag parameter.
func Flag(key string) OpParameter {
	return OpParameter{Key: key, Kind: KindFlag}
}

// Natural declares a non-negative integer parameter; omit the default to
// make it required.
func Natural(key string, def ...int) OpParameter {
	if len(def) == 0 {
		return OpParameter{Key: key, Kind: KindNatural, Required: true}
	}
	return OpParameter{Key: key, Kind: KindNatural, Default: strconv.Itoa(def[0])}
}

// Integer declares a signed integer parameter; omit the default to make it
// required.
func Integer(key string, def ...int64) OpParameter {
	if len(def) == 0 {
		return OpParameter{Key: key, Kind: KindInteger, Required: true}
	}
	return OpParameter{Key: key, Kind: KindInteger, Default: strconv.FormatInt(def[0], 10)}
}

// Real declares a floating point parameter; omit the default to make it
// required.
func Real(key string, def ...float64) OpParameter {
	if len(def) == 0 {
		return OpParameter{Key: key, Kind: KindReal, Required: true}
	}
	return OpParameter{Key: key, Kind: KindReal, Default: formatFloat(def[0])}
}

// Series declares a comma separated numeric list parameter; omit the
// default to make it required. An empty default means "absent unless
// given".
func Series(key string, def ...string) OpParameter {
	if len(def) == 0 {
		return OpParameter{Key: key, Kind: KindSeries, Required: true}
	}
	return OpParameter{Key: key, Kind: KindSeries, Default: def[0]}
}

// Text declares a string parameter; omit the default to make it required.
func Text(key string, def ...string) OpParameter {
	if len(def) == 0 {
		return OpParameter{Key: key, Kind: KindText, Required: true}
	}
	return OpParameter{Key: key, Kind: KindText, Default: def[0]}
}

// Texts declares a comma separated string list parameter; omit the default
// to make it required.
func Texts(key string, def ...string) OpParameter {
	if len(def) == 0 {
		return OpParameter{Key: key, Kind: KindTexts, Required: true}
	}
	return OpParameter{Key: key, Kind: KindTexts, Default: def[0]}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ParsedParameters is the typed view of a step's parameters after gamut
// validation: every accepted key is present in its proper store, either as
// explicitly given (possibly via the globals chain) or as its declared
// default. The commonly used keys (ellps*, lat_*, lon_*, x_*, y_*, k_*)
// additionally have hard slots, with the angular ones pre-converted to
// radians.
type ParsedParameters struct {
	name string

	ellipsoids [2]ellps.Ellipsoid
	lat        [4]float64
	lon        [4]float64
	x          [4]float64
	y          [4]float64
	k          [4]float64

	boolean map[string]bool
	natural map[string]int
	integer map[string]int64
	real    map[string]float64
	series  map[string][]float64
	text    map[string]string
	texts   map[string][]string

	// defined records the keys whose values came from the definition or the
	// globals chain, as opposed to gamut defaults.
	defined map[string]bool
	// given is the raw step-local argument map, for introspection.
	given map[string]string
	// ignored lists given keys that no gamut entry consumed.
	ignored []string
}

// Parse validates the definition fragment in raw against the gamut and
// builds the typed parameter store.
func Parse(raw RawParameters, gamut []OpParameter) (*ParsedParameters, error) {
	if key, ok := DuplicateKey(raw.Definition); ok {
		return nil, Syntaxf("duplicate parameter %q in step %q", key, Normalize(raw.Definition))
	}
	locals := SplitIntoParameters(raw.Definition)

	p := &ParsedParameters{
		boolean: map[string]bool{},
		natural: map[string]int{},
		integer: map[string]int64{},
		real:    map[string]float64{},
		series:  map[string][]float64{},
		text:    map[string]string{},
		texts:   map[string][]string{},
		defined: map[string]bool{},
		given:   locals,
	}

	consumed := map[string]bool{NameKey: true}
	for _, m := range modifiers {
		consumed[m] = true
	}

	for _, param := range gamut {
		consumed[param.Key] = true
		value, found, err := chase(raw.Globals, locals, param.Key)
		if err != nil {
			return nil, err
		}
		if found {
			p.defined[param.Key] = true
		} else {
			if param.Kind == KindFlag {
				continue
			}
			if param.Required {
				return nil, Constructionf("missing required parameter %q", param.Key)
			}
			value = param.Default
			if (param.Kind == KindSeries || param.Kind == KindTexts) && value == "" {
				// An empty list default means the parameter is simply absent.
				continue
			}
		}

		switch param.Kind {
		case KindFlag:
			if value == "" || strings.EqualFold(value, "true") {
				p.boolean[param.Key] = true
				continue
			}
			return nil, Constructionf("cannot parse %s=%s as a boolean flag", param.Key, value)

		case KindNatural:
			v, err := strconv.ParseUint(value, 10, 63)
			if err != nil {
				return nil, Constructionf("cannot parse %s=%s as a natural number", param.Key, value)
			}
			p.natural[param.Key] = int(v)

		case KindInteger:
			v, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, Constructionf("cannot parse %s=%s as an integer", param.Key, value)
			}
			p.integer[param.Key] = v

		case KindReal:
			v, err := parseRealToken(value)
			if err != nil {
				return nil, Constructionf("cannot parse %s=%s as a real number", param.Key, value)
			}
			p.real[param.Key] = v

		case KindSeries:
			series, err := parseSeries(value)
			if err != nil {
				return nil, Constructionf("cannot parse %s=%s as a series", param.Key, value)
			}
			p.series[param.Key] = series

		case KindText:
			p.text[param.Key] = value

		case KindTexts:
			var texts []string
			for _, t := range strings.Split(value, ",") {
				texts = append(texts, strings.TrimSpace(t))
			}
			p.texts[param.Key] = texts
		}
	}

	// Commonly used keys get hard slots. ellps_{0,1} resolve to Ellipsoid
	// values; a plain ellps= trumps ellps_0.
	p.ellipsoids = [2]ellps.Ellipsoid{ellps.Default(), ellps.Default()}
	for i := 0; i < 2; i++ {
		key := "ellps_" + strconv.Itoa(i)
		if name, ok := p.text[key]; ok {
			e, err := ellps.Named(name)
			if err != nil {
				return nil, errors.Mark(err, ErrConstruction)
			}
			p.ellipsoids[i] = e
		}
	}
	if name, ok := p.text["ellps"]; ok {
		e, err := ellps.Named(name)
		if err != nil {
			return nil, errors.Mark(err, ErrConstruction)
		}
		p.ellipsoids[0] = e
	}

	// Angular slots are stored in radians; the source values are degrees.
	for i := 0; i < 4; i++ {
		suffix := "_" + strconv.Itoa(i)
		p.lat[i] = p.real["lat"+suffix] * math.Pi / 180
		p.lon[i] = p.real["lon"+suffix] * math.Pi / 180
		p.x[i] = p.real["x"+suffix]
		p.y[i] = p.real["y"+suffix]
		p.k[i] = p.real["k"+suffix]
	}

	p.name = locals[NameKey]
	for key := range locals {
		if !consumed[key] {
			p.ignored = append(p.ignored, key)
		}
	}

	return p, nil
}

// Name is the operator name of the parsed step.
func (p *ParsedParameters) Name() string { return p.name }

// Boolean reports whether the flag is set.
func (p *ParsedParameters) Boolean(key string) bool { return p.boolean[key] }

// Defined reports whether the key was explicitly given (in the step or via
// the globals chain), rather than filled from a gamut default.
func (p *ParsedParameters) Defined(key string) bool { return p.defined[key] }

// Natural returns a non-negative integer parameter.
func (p *ParsedParameters) Natural(key string) (int, error) {
	if v, ok := p.natural[key]; ok {
		return v, nil
	}
	return 0, Constructionf("missing required parameter %q", key)
}

// Integer returns a signed integer parameter.
func (p *ParsedParameters) Integer(key string) (int64, error) {
	if v, ok := p.integer[key]; ok {
		return v, nil
	}
	return 0, Constructionf("missing required parameter %q", key)
}

// Real returns a floating point parameter.
func (p *ParsedParameters) Real(key string) (float64, error) {
	if v, ok := p.real[key]; ok {
		return v, nil
	}
	return 0, Constructionf("missing required parameter %q", key)
}

// Series returns a numeric list parameter.
func (p *ParsedParameters) Series(key string) ([]float64, error) {
	if v, ok := p.series[key]; ok {
		return v, nil
	}
	return nil, Constructionf("missing required parameter %q", key)
}

// Text returns a string parameter.
func (p *ParsedParameters) Text(key string) (string, error) {
	if v, ok := p.text[key]; ok {
		return v, nil
	}
	return "", Constructionf("missing required parameter %q", key)
}

// Texts returns a string list parameter.
func (p *ParsedParameters) Texts(key string) ([]string, error) {
	if v, ok := p.texts[key]; ok {
		return v, nil
	}
	return nil, Constructionf("missing required parameter %q", key)
}

// Ellipsoid returns the index'th resolved ellipsoid (0 unless the operator
// takes a source/target pair).
func (p *ParsedParameters) Ellipsoid(index int) ellps.Ellipsoid { return p.ellipsoids[index] }

// Lat returns lat_{index} in radians.
func (p *ParsedParameters) Lat(index int) float64 { return p.lat[index] }

// Lon returns lon_{index} in radians.
func (p *ParsedParameters) Lon(index int) float64 { return p.lon[index] }

// X returns x_{index}.
func (p *ParsedParameters) X(index int) float64 { return p.x[index] }

// Y returns y_{index}.
func (p *ParsedParameters) Y(index int) float64 { return p.y[index] }

// K returns k_{index}.
func (p *ParsedParameters) K(index int) float64 { return p.k[index] }

// Given returns the raw step-local argument map.
func (p *ParsedParameters) Given() map[string]string { return p.given }

// Ignored lists the given keys no gamut entry consumed.
func (p *ParsedParameters) Ignored() []string { return p.ignored }

// chase resolves a parameter key against the step-local arguments and the
// globals chain, handling the three indirection forms:
//
//   - "$name" and "$name(default)" look up the macro call-site argument
//     `name`; with no argument and no default, resolution fails.
//   - "*default" yields the call-site value for the same key when present,
//     the default otherwise.
//   - "literal(default)" likewise yields the call-site value when present,
//     the default otherwise.
func chase(globals, locals map[string]string, key string) (string, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, Syntaxf("empty parameter key")
	}

	value, ok := locals[key]
	fromLocals := ok
	if !ok {
		value, ok = globals[key]
		if !ok {
			return "", false, nil
		}
	}

	for i := 0; i < MaxRecursion; i++ {
		switch {
		case strings.HasPrefix(value, "$"):
			name, def, hasDefault := splitDefault(value[1:])
			next, ok := globals[name]
			if ok && next != value {
				value = next
				continue
			}
			if hasDefault {
				return def, true, nil
			}
			return "", false, Resolutionf(
				"incomplete definition: no value for $%s (parameter %q)", name, key)

		case strings.HasPrefix(value, "*"):
			def := value[1:]
			if next, ok := globals[key]; ok && next != value && fromLocals {
				value = next
				fromLocals = false
				continue
			}
			return def, true, nil

		case strings.HasSuffix(value, ")") && strings.Contains(value, "("):
			_, def, _ := splitDefault(value)
			if next, ok := globals[key]; ok && next != value && fromLocals {
				value = next
				fromLocals = false
				continue
			}
			return def, true, nil

		default:
			return value, true, nil
		}
	}
	return "", false, Resolutionf("parameter reference chain too deep for %q", key)
}

// splitDefault splits "name(default)" into its parts.
func splitDefault(s string) (name, def string, hasDefault bool) {
	open := strings.Index(s, "(")
	if open < 0 || !strings.HasSuffix(s, ")") {
		return s, "", false
	}
	return s[:open], s[open+1 : len(s)-1], true
}

// parseRealToken parses a floating point value, falling back to
// sexagesimal d:m:s.s (converted to decimal degrees) when the plain parse
// fails and the token contains colons.
func parseRealToken(value string) (float64, error) {
	if value == "NaN" {
		return math.NaN(), nil
	}
	if v, err := strconv.ParseFloat(value, 64); err == nil {
		return v, nil
	}
	if strings.Contains(value, ":") {
		return parseSexagesimal(value)
	}
	return 0, errors.Newf("malformed number %q", value)
}

// parseSexagesimal parses "d:m" or "d:m:s.s" into decimal degrees, taking
// the sign from the degree component.
func parseSexagesimal(value string) (float64, error) {
	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, errors.Newf("malformed sexagesimal value %q", value)
	}
	d, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, errors.Newf("malformed sexagesimal value %q", value)
	}
	m, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || m < 0 {
		return 0, errors.Newf("malformed sexagesimal value %q", value)
	}
	s := 0.0
	if len(parts) == 3 {
		s, err = strconv.ParseFloat(parts[2], 64)
		if err != nil || s < 0 {
			return 0, errors.Newf("malformed sexagesimal value %q", value)
		}
	}
	sign := 1.0
	if strings.HasPrefix(strings.TrimSpace(parts[0]), "-") {
		sign = -1.0
		d = -d
	}
	return sign * (d + (m+s/60)/60), nil
}

func parseSeries(value string) ([]float64, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	series := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := parseRealToken(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		series = append(series, v)
	}
	return series, nil
}
