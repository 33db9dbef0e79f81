// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

// Package grid provides the abstract grid interface consumed by the
// grid-based operators, and BaseGrid, a concrete in-memory implementation
// with bilinear interpolation and a reader for the Gravsoft text format.
//
// A grid is classified as angular (corrections in arc seconds, converted to
// radians on load) or linear (corrections in meters, unchanged) by
// inspecting its declared extent: if any boundary exceeds +/-720, it is in
// projected coordinates and hence linear.
package grid

import (
	"bufio"
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/geodesy/pkg/geodesy/coords"
)

// Grid is the lookup interface the Context exposes to the grid-based
// operators. Implementations are read-only after construction and may be
// shared freely.
type Grid interface {
	// Bands is the number of values per node (1: vertical shift, 2:
	// horizontal shift, 3: 3D shift or velocity).
	Bands() int
	// Contains reports whether the position (longitude, latitude in the
	// grid's own units, in the first two components) falls within the grid
	// extent plus a margin measured in grid cell units.
	Contains(position coords.Coor4D, margin float64) bool
	// At bilinearly interpolates the grid at the position, returning the
	// band values in the leading components. Returns false if the position
	// is outside the extent plus margin.
	At(position coords.Coor4D, margin float64) (coords.Coor4D, bool)
}

// BaseGrid is a dense in-memory grid: rows from lat0 (first row) to lat1,
// columns from lon0 to lon1, band values interleaved per node.
type BaseGrid struct {
	lat0, lat1 float64 // latitude of the first and last row
	lon0, lon1 float64 // longitude of the first and last column
	dlat, dlon float64 // signed node spacing
	rows, cols int
	bands      int
	values     []float32
}

var _ Grid = (*BaseGrid)(nil)

// NewBaseGrid builds a grid from a 7-element header
// (lat0, lat1, lon0, lon1, dlat, dlon, bands) and the node values.
func NewBaseGrid(header []float64, values []float32) (*BaseGrid, error) {
	if len(header) < 7 {
		return nil, errors.New("incomplete grid header")
	}

	lat0, lat1 := header[0], header[1]
	lon0, lon1 := header[2], header[3]
	dlat := math.Copysign(header[4], lat1-lat0)
	dlon := math.Copysign(header[5], lon1-lon0)
	bands := int(header[6])
	rows := int(math.Floor((lat1-lat0)/dlat + 1.5))
	cols := int(math.Floor((lon1-lon0)/dlon + 1.5))

	if bands < 1 || rows < 2 || cols < 2 || rows*cols*bands > len(values) {
		return nil, errors.New("malformed grid")
	}

	return &BaseGrid{
		lat0: lat0, lat1: lat1,
		lon0: lon0, lon1: lon1,
		dlat: dlat, dlon: dlon,
		rows: rows, cols: cols,
		bands:  bands,
		values: values,
	}, nil
}

// Bands implements Grid.
func (g *BaseGrid) Bands() int { return g.bands }

// Contains implements Grid. "On the border" qualifies as within.
func (g *BaseGrid) Contains(position coords.Coor4D, margin float64) bool {
	min, max := g.lat1, g.lat0
	if g.dlat > 0 {
		min, max = max, min
	}
	grace := margin * math.Abs(g.dlat)
	if position[1] < min-grace || position[1] > max+grace || math.IsNaN(position[1]) {
		return false
	}

	min, max = g.lon0, g.lon1
	if g.dlon < 0 {
		min, max = max, min
	}
	grace = margin * math.Abs(g.dlon)
	if position[0] < min-grace || position[0] > max+grace || math.IsNaN(position[0]) {
		return false
	}

	return true
}

// At implements Grid. The grid is stored as one flat vector, so the
// indexing below is deliberately Fortran-flavored: abstracting it away
// costs more code than it saves.
func (g *BaseGrid) At(position coords.Coor4D, margin float64) (coords.Coor4D, bool) {
	if !g.Contains(position, margin) {
		return coords.Coor4D{}, false
	}

	// The (row, col) of the lower left node of the cell containing the
	// position - or, under extrapolation, the nearest interior cell.
	row := int(math.Ceil((position[1] - g.lat0) / g.dlat))
	col := int(math.Floor((position[0] - g.lon0) / g.dlon))
	col = clamp(col, 0, g.cols-2)
	row = clamp(row, 1, g.rows-1)

	// Index of the first band value at each cell corner.
	ll := g.bands * (g.cols*row + col)
	lr := g.bands * (g.cols*row + col + 1)
	ur := g.bands * (g.cols*(row-1) + col + 1)
	ul := g.bands * (g.cols*(row-1) + col)

	llLon := g.lon0 + float64(col)*g.dlon
	llLat := g.lat0 + float64(row)*g.dlat

	// Cell relative, cell unit coordinates in a right handed system.
	rlon := (position[0] - llLon) / g.dlon
	rlat := (position[1] - llLat) / -g.dlat

	var result coords.Coor4D
	for i := 0; i < g.bands; i++ {
		left := (1-rlat)*float64(g.values[ll+i]) + rlat*float64(g.values[ul+i])
		right := (1-rlat)*float64(g.values[lr+i]) + rlat*float64(g.values[ur+i])
		result[i] = (1-rlon)*left + rlon*right
	}
	return result, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FromGravsoft parses a Gravsoft text grid: a whitespace separated stream
// of numbers where the first six are the header (lat1, lat0, lon0, lon1,
// dlat, dlon) and the rest are node values. '#' comments are discarded.
func FromGravsoft(buf []byte) (*BaseGrid, error) {
	header := make([]float64, 0, 7)
	var values []float32

	scanner := bufio.NewScanner(bytes.NewReader(buf))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line, _, _ := strings.Cut(scanner.Text(), "#")
		for _, item := range strings.Fields(line) {
			value, err := strconv.ParseFloat(item, 64)
			if err != nil {
				value = math.NaN()
			}
			if len(header) < 6 {
				header = append(header, value)
			} else {
				values = append(values, float32(value))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(header) < 6 {
		return nil, errors.New("incomplete Gravsoft header")
	}

	// Gravsoft has lat1 before lat0, and an inverted sign convention for
	// dlat; force the deltas into signs compatible with the organization.
	header[0], header[1] = header[1], header[0]
	lat0, lat1 := header[0], header[1]
	lon0, lon1 := header[2], header[3]
	dlat := math.Copysign(header[4], lat1-lat0)
	dlon := math.Copysign(header[5], lon1-lon0)
	rows := int(math.Floor((lat1-lat0)/dlat + 1.5))
	cols := int(math.Floor((lon1-lon0)/dlon + 1.5))
	if rows < 2 || cols < 2 || len(values) == 0 {
		return nil, errors.New("incomplete Gravsoft grid")
	}
	bands := len(values) / (rows * cols)
	if bands < 1 || rows*cols*bands > len(values) {
		return nil, errors.New("incomplete Gravsoft grid")
	}
	if rows*cols*bands != len(values) {
		return nil, errors.New("unrecognized material at end of Gravsoft grid")
	}
	if bands > 3 {
		return nil, errors.New("unsupported number of bands in Gravsoft grid")
	}
	header = append(header, float64(bands))

	normalizeGravsoft(header, values)
	return NewBaseGrid(header, values)
}

// normalizeGravsoft converts an angular Gravsoft grid to internal units:
// the georeference to radians, and the node values per band convention
// (2 bands: arc seconds, latitude first; 3 bands: mm/year, latitude
// first). Linear (projected) grids pass through untouched.
func normalizeGravsoft(header []float64, values []float32) {
	// Any boundary outside [-720, 720] means projected coordinates and
	// corrections in meters.
	for _, h := range header[:4] {
		if math.Abs(h) > 720 {
			return
		}
	}

	for i := 0; i < 6; i++ {
		header[i] *= math.Pi / 180
	}

	bands := int(header[6])
	switch bands {
	case 1:
		// Geoid grid: values are in meters.
	case 2:
		// Horizontal datum shift: arc seconds, latitude/longitude order.
		// Swap to internal order and convert to radians.
		for i := range values {
			values[i] = float32(float64(values[i]) / 3600 * math.Pi / 180)
			if i%2 == 1 {
				values[i], values[i-1] = values[i-1], values[i]
			}
		}
	case 3:
		// Deformation velocities: mm/year, latitude/longitude/up order.
		// Swap the horizontal pair and convert to m/year.
		for i := range values {
			if i%3 == 0 {
				values[i], values[i+1] = values[i+1], values[i]
			}
			values[i] /= 1000
		}
	}
}
