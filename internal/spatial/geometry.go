package spatial

import (
	"errors"
)

// ErrNoPoints is returned when a boundary is requested for an empty point set
var ErrNoPoints = errors.New("no points to compute boundary from")

// Point represents a 2D geographic point
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Boundary represents the axis-aligned bounding rectangle of a study area
type Boundary struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// ExtractBoundary computes the bounding rectangle over every point of a
// trajectory set. Returns ErrNoPoints for empty input.
func ExtractBoundary(points []Point) (Boundary, error) {
	if len(points) == 0 {
		return Boundary{}, ErrNoPoints
	}

	b := Boundary{
		MinLon: points[0].Lon,
		MinLat: points[0].Lat,
		MaxLon: points[0].Lon,
		MaxLat: points[0].Lat,
	}

	for _, p := range points[1:] {
		if p.Lon < b.MinLon {
			b.MinLon = p.Lon
		}
		if p.Lon > b.MaxLon {
			b.MaxLon = p.Lon
		}
		if p.Lat < b.MinLat {
			b.MinLat = p.Lat
		}
		if p.Lat > b.MaxLat {
			b.MaxLat = p.Lat
		}
	}

	return b, nil
}

// Ring returns the boundary as a closed four-corner polygon ring in
// SW, NW, NE, SE order with the first point repeated as the last.
func (b Boundary) Ring() []Point {
	sw := Point{Lon: b.MinLon, Lat: b.MinLat}
	nw := Point{Lon: b.MinLon, Lat: b.MaxLat}
	ne := Point{Lon: b.MaxLon, Lat: b.MaxLat}
	se := Point{Lon: b.MaxLon, Lat: b.MinLat}
	return []Point{sw, nw, ne, se, sw}
}

// Centroid returns the geometric center of the boundary in (lat, lon) order.
// Lat-first is the map-display convention expected by the frontend, the
// reverse of GeoJSON coordinate order.
func (b Boundary) Centroid() (float64, float64) {
	lat := (b.MinLat + b.MaxLat) / 2
	lon := (b.MinLon + b.MaxLon) / 2
	return lat, lon
}

// Contains reports whether a point lies within the boundary (inclusive)
func (b Boundary) Contains(p Point) bool {
	return p.Lon >= b.MinLon && p.Lon <= b.MaxLon &&
		p.Lat >= b.MinLat && p.Lat <= b.MaxLat
}
