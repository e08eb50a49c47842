package spatial

import (
	"fmt"
)

// Grid partitions a boundary into fixed-size rectangular cells. Cells are
// enumerated row-major from the south-west corner, so for a given boundary
// and cell size the ordering is always reproducible. All fields are exported
// so a grid survives gob round-trips through the cache store.
type Grid struct {
	Boundary      Boundary
	CellSize      int // meters
	Cols          int
	Rows          int
	CellWidthDeg  float64
	CellHeightDeg float64
}

// minDegreeStep stands in for the degree step of a zero-extent boundary
// axis, keeping the point-to-cell division finite
const minDegreeStep = 1e-9

// BuildGrid constructs a grid of cellSize-meter cells covering the boundary.
// Cell counts are derived from the haversine width/height of the boundary, so
// degree steps stay consistent with the metric cell size at the study area's
// latitude. A boundary with no extent on an axis (all input points share one
// longitude or latitude) collapses that axis to a single cell.
func BuildGrid(b Boundary, cellSize int) (*Grid, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %d", cellSize)
	}

	midLat := (b.MinLat + b.MaxLat) / 2
	widthMeters := HaversineDistance(midLat, b.MinLon, midLat, b.MaxLon)
	heightMeters := HaversineDistance(b.MinLat, b.MinLon, b.MaxLat, b.MinLon)

	cols := int(widthMeters/float64(cellSize)) + 1
	rows := int(heightMeters/float64(cellSize)) + 1

	cellWidth := (b.MaxLon - b.MinLon) / float64(cols)
	cellHeight := (b.MaxLat - b.MinLat) / float64(rows)
	if cellWidth <= 0 {
		cols = 1
		cellWidth = minDegreeStep
	}
	if cellHeight <= 0 {
		rows = 1
		cellHeight = minDegreeStep
	}

	return &Grid{
		Boundary:      b,
		CellSize:      cellSize,
		Cols:          cols,
		Rows:          rows,
		CellWidthDeg:  cellWidth,
		CellHeightDeg: cellHeight,
	}, nil
}

// NumCells returns the total number of cells in the grid
func (g *Grid) NumCells() int {
	return g.Cols * g.Rows
}

// CellIndex maps a point to its cell index. The second return value is false
// for points outside the grid.
func (g *Grid) CellIndex(p Point) (int, bool) {
	if !g.Boundary.Contains(p) {
		return 0, false
	}

	col := int((p.Lon - g.Boundary.MinLon) / g.CellWidthDeg)
	row := int((p.Lat - g.Boundary.MinLat) / g.CellHeightDeg)

	// Points on the north/east edge belong to the last row/column
	if col >= g.Cols {
		col = g.Cols - 1
	}
	if row >= g.Rows {
		row = g.Rows - 1
	}

	return row*g.Cols + col, true
}

// CellBounds returns the bounding rectangle of a cell
func (g *Grid) CellBounds(idx int) Boundary {
	row := idx / g.Cols
	col := idx % g.Cols

	minLon := g.Boundary.MinLon + float64(col)*g.CellWidthDeg
	minLat := g.Boundary.MinLat + float64(row)*g.CellHeightDeg

	return Boundary{
		MinLon: minLon,
		MinLat: minLat,
		MaxLon: minLon + g.CellWidthDeg,
		MaxLat: minLat + g.CellHeightDeg,
	}
}

// CellCenter returns the center point of a cell
func (g *Grid) CellCenter(idx int) Point {
	b := g.CellBounds(idx)
	return Point{
		Lon: (b.MinLon + b.MaxLon) / 2,
		Lat: (b.MinLat + b.MaxLat) / 2,
	}
}
