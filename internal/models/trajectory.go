package models

import (
	"github.com/palmto/trajgen-backend-go/internal/spatial"
)

// Trajectory represents one trip as an ordered list of (lon, lat) points.
// Timestamp is the epoch time of the first point; subsequent points are
// spaced at the recording interval.
type Trajectory struct {
	TripID    string
	Timestamp int64
	Geometry  []spatial.Point
}

// Points flattens the geometry of a trajectory set into a single point list
func Points(trajs []Trajectory) []spatial.Point {
	var points []spatial.Point
	for _, t := range trajs {
		points = append(points, t.Geometry...)
	}
	return points
}
