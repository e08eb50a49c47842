package spatial

import (
	"fmt"
)

// HeatmapProperties carries the raw and normalized occupancy of one cell
type HeatmapProperties struct {
	Count      int     `json:"count"`
	Normalized float64 `json:"normalized"`
}

// PolygonGeometry is a GeoJSON polygon geometry
type PolygonGeometry struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

// HeatmapFeature is one grid cell annotated with occupancy counts
type HeatmapFeature struct {
	Type       string            `json:"type"`
	Properties HeatmapProperties `json:"properties"`
	Geometry   PolygonGeometry   `json:"geometry"`
}

// HeatmapCollection is the heatmap output for one trajectory set. MaxCount is
// reported separately so clients can calibrate their color scale.
type HeatmapCollection struct {
	Type     string           `json:"type"`
	Features []HeatmapFeature `json:"features"`
	MaxCount int              `json:"max_count"`
}

// BuildHeatmap partitions the boundary into cellSize-meter cells, counts how
// many input points fall in each cell and normalizes counts to [0,1] using
// min/max across cells with a nonzero count. Points outside the boundary are
// excluded from the counts; every cell is still emitted. When all nonzero
// cells share the same count (max == min) they all normalize to 1.0.
func BuildHeatmap(points []Point, boundary Boundary, cellSize int) (*HeatmapCollection, error) {
	grid, err := BuildGrid(boundary, cellSize)
	if err != nil {
		return nil, fmt.Errorf("failed to build heatmap grid: %w", err)
	}

	counts := make([]int, grid.NumCells())
	for _, p := range points {
		if idx, ok := grid.CellIndex(p); ok {
			counts[idx]++
		}
	}

	// Min/max over occupied cells only
	minCount, maxCount := 0, 0
	for _, n := range counts {
		if n == 0 {
			continue
		}
		if minCount == 0 || n < minCount {
			minCount = n
		}
		if n > maxCount {
			maxCount = n
		}
	}

	features := make([]HeatmapFeature, 0, grid.NumCells())
	for idx, n := range counts {
		normalized := 0.0
		if n > 0 {
			if maxCount == minCount {
				normalized = 1.0
			} else {
				normalized = float64(n-minCount) / float64(maxCount-minCount)
			}
		}

		features = append(features, HeatmapFeature{
			Type: "Feature",
			Properties: HeatmapProperties{
				Count:      n,
				Normalized: normalized,
			},
			Geometry: cellPolygon(grid, idx),
		})
	}

	return &HeatmapCollection{
		Type:     "FeatureCollection",
		Features: features,
		MaxCount: maxCount,
	}, nil
}

func cellPolygon(g *Grid, idx int) PolygonGeometry {
	b := g.CellBounds(idx)
	ring := make([][]float64, 0, 5)
	for _, p := range b.Ring() {
		ring = append(ring, []float64{p.Lon, p.Lat})
	}
	return PolygonGeometry{
		Type:        "Polygon",
		Coordinates: [][][]float64{ring},
	}
}
