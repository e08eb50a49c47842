package models

import (
	"time"

	"github.com/palmto/trajgen-backend-go/internal/spatial"
)

// Generation method constants
const (
	MethodLengthConstrained = "length_constrained"
	MethodPointToPoint      = "point_to_point"
)

// GenerationConfig records one phase-2 generation request
type GenerationConfig struct {
	ID               int64     `json:"id" db:"id"`
	CellSize         int       `json:"cell_size" db:"cell_size"`
	NumTrajectories  int       `json:"num_trajectories" db:"num_trajectories"`
	TrajectoryLen    int       `json:"trajectory_len,omitempty" db:"trajectory_len"`
	GenerationMethod string    `json:"generation_method" db:"generation_method"`
	SourceFile       string    `json:"source_file,omitempty" db:"source_file"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// GeneratedTrajectory records one generated output file, linked to the
// configuration that produced it
type GeneratedTrajectory struct {
	ID        int64     `json:"id" db:"id"`
	ConfigID  int64     `json:"config_id" db:"config_id"`
	FilePath  string    `json:"file_path" db:"file_path"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PipelineStats summarizes a built model. The JSON keys match what the
// frontend stats panel reads.
type PipelineStats struct {
	CellsCreated   int `json:"cellsCreated"`
	UniqueBigrams  int `json:"uniqueBigrams"`
	UniqueTrigrams int `json:"uniqueTrigrams"`
}

// GenerationParams carries the phase-2 form fields
type GenerationParams struct {
	CacheFile        string // stored cache reference, empty when CacheUpload is set
	CacheUpload      []byte // freshly uploaded cache blob
	NumTrajectories  int
	GenerationMethod string
	TrajectoryLen    int
	DeleteCacheAfter bool
}

// VisualizationData is the map payload of a generation response
type VisualizationData struct {
	Original  *FeatureCollection `json:"original"`
	Generated *FeatureCollection `json:"generated"`
	Center    []float64          `json:"center"` // [lat, lon]
}

// HeatmapComparison holds side-by-side heatmaps of original and generated
// trajectories plus the leaflet viewport hints
type HeatmapComparison struct {
	Original  *spatial.HeatmapCollection `json:"original"`
	Generated *spatial.HeatmapCollection `json:"generated"`
	Center    []float64                  `json:"center"` // [lat, lon]
	Bounds    [][]float64                `json:"bounds"` // [[minLat, minLon], [maxLat, maxLon]]
}

// GenerationResult is the full phase-2 response payload
type GenerationResult struct {
	ID            int64              `json:"id"`
	GeneratedFile string             `json:"generated_file"`
	Visualization *VisualizationData `json:"visualization"`
	Heatmap       *HeatmapComparison `json:"heatmap"`
	Stats         PipelineStats      `json:"stats"`
}
