package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBoundary is roughly 1km x 1km near the equator
var testBoundary = Boundary{MinLon: 0, MinLat: 0, MaxLon: 0.009, MaxLat: 0.009}

func TestBuildHeatmapNormalization(t *testing.T) {
	grid, err := BuildGrid(testBoundary, 200)
	require.NoError(t, err)

	// Three points in one cell, one point in another
	hot := grid.CellCenter(0)
	cold := grid.CellCenter(grid.NumCells() - 1)
	points := []Point{hot, hot, hot, cold}

	hm, err := BuildHeatmap(points, testBoundary, 200)
	require.NoError(t, err)
	require.Len(t, hm.Features, grid.NumCells(), "every cell is emitted")
	assert.Equal(t, 3, hm.MaxCount)

	for _, f := range hm.Features {
		assert.GreaterOrEqual(t, f.Properties.Normalized, 0.0)
		assert.LessOrEqual(t, f.Properties.Normalized, 1.0)

		switch f.Properties.Count {
		case 3:
			assert.Equal(t, 1.0, f.Properties.Normalized, "max count normalizes to 1")
		case 1:
			assert.Equal(t, 0.0, f.Properties.Normalized, "min nonzero count normalizes to 0")
		case 0:
			assert.Equal(t, 0.0, f.Properties.Normalized)
		}
	}
}

func TestBuildHeatmapDegenerate(t *testing.T) {
	grid, err := BuildGrid(testBoundary, 200)
	require.NoError(t, err)

	// Every occupied cell has the same count
	points := []Point{grid.CellCenter(0), grid.CellCenter(1)}

	hm, err := BuildHeatmap(points, testBoundary, 200)
	require.NoError(t, err)

	occupied := 0
	for _, f := range hm.Features {
		if f.Properties.Count > 0 {
			occupied++
			assert.Equal(t, 1.0, f.Properties.Normalized, "uniform counts normalize to 1.0")
		}
	}
	assert.Equal(t, 2, occupied)
}

func TestBuildHeatmapExcludesOutsidePoints(t *testing.T) {
	outside := Point{Lon: 5, Lat: 5}

	hm, err := BuildHeatmap([]Point{outside}, testBoundary, 200)
	require.NoError(t, err)

	assert.Equal(t, 0, hm.MaxCount)
	for _, f := range hm.Features {
		assert.Equal(t, 0, f.Properties.Count)
	}
}

func TestBuildHeatmapDeterministic(t *testing.T) {
	points := []Point{
		{Lon: 0.001, Lat: 0.002},
		{Lon: 0.004, Lat: 0.0065},
		{Lon: 0.008, Lat: 0.0011},
		{Lon: 0.004, Lat: 0.0065},
	}

	first, err := BuildHeatmap(points, testBoundary, 200)
	require.NoError(t, err)
	second, err := BuildHeatmap(points, testBoundary, 200)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGridCellIndexRoundTrip(t *testing.T) {
	grid, err := BuildGrid(testBoundary, 200)
	require.NoError(t, err)

	for _, idx := range []int{0, grid.Cols - 1, grid.NumCells() - 1} {
		got, ok := grid.CellIndex(grid.CellCenter(idx))
		require.True(t, ok)
		assert.Equal(t, idx, got)
	}

	_, ok := grid.CellIndex(Point{Lon: 99, Lat: 99})
	assert.False(t, ok)
}

func TestBuildGridRejectsBadCellSize(t *testing.T) {
	_, err := BuildGrid(testBoundary, 0)
	assert.Error(t, err)
}

func TestBuildGridZeroExtentAxis(t *testing.T) {
	// All points on one meridian: the boundary has no width
	vertical := Boundary{MinLon: 0.005, MinLat: 0.001, MaxLon: 0.005, MaxLat: 0.009}

	grid, err := BuildGrid(vertical, 200)
	require.NoError(t, err)
	assert.Equal(t, 1, grid.Cols)
	assert.Greater(t, grid.CellWidthDeg, 0.0)

	idx, ok := grid.CellIndex(Point{Lon: 0.005, Lat: 0.005})
	require.True(t, ok)
	assert.GreaterOrEqual(t, idx, 0)
	assert.Less(t, idx, grid.NumCells())

	// Single-point boundary: both axes collapse
	point := Boundary{MinLon: 0.005, MinLat: 0.005, MaxLon: 0.005, MaxLat: 0.005}
	grid, err = BuildGrid(point, 200)
	require.NoError(t, err)
	assert.Equal(t, 1, grid.NumCells())

	idx, ok = grid.CellIndex(Point{Lon: 0.005, Lat: 0.005})
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestBuildHeatmapCollinearPoints(t *testing.T) {
	points := []Point{
		{Lon: 0.005, Lat: 0.001},
		{Lon: 0.005, Lat: 0.005},
		{Lon: 0.005, Lat: 0.009},
	}
	b, err := ExtractBoundary(points)
	require.NoError(t, err)

	hm, err := BuildHeatmap(points, b, 200)
	require.NoError(t, err)

	total := 0
	for _, f := range hm.Features {
		total += f.Properties.Count
	}
	assert.Equal(t, 3, total, "every collinear point lands in a cell")
}
