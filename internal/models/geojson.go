package models

import (
	"github.com/palmto/trajgen-backend-go/internal/spatial"
)

// Geometry is a generic GeoJSON geometry
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// Feature is a generic GeoJSON feature
type Feature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Geometry   Geometry               `json:"geometry"`
}

// FeatureCollection is a generic GeoJSON feature collection
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection creates an empty feature collection. Features is
// always non-nil so the JSON encoding stays an array.
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: []Feature{},
	}
}

// LineStringCoords converts a point list to GeoJSON [lon, lat] pairs
func LineStringCoords(points []spatial.Point) [][]float64 {
	coords := make([][]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, []float64{p.Lon, p.Lat})
	}
	return coords
}
