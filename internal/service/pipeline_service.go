package service

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/palmto/trajgen-backend-go/internal/cache"
	"github.com/palmto/trajgen-backend-go/internal/jobs"
	"github.com/palmto/trajgen-backend-go/internal/models"
	"github.com/palmto/trajgen-backend-go/internal/palmto"
	"github.com/palmto/trajgen-backend-go/internal/repository"
	"github.com/palmto/trajgen-backend-go/internal/spatial"
	"github.com/palmto/trajgen-backend-go/internal/storage"
)

// visualSampleLimit caps how many trajectories go into the map overlay
const visualSampleLimit = 1000

// PipelineService exposes the two-phase trajectory generation pipeline:
// BuildModel runs phase 1 on a background worker and streams progress;
// GenerateFromModel reloads the cached model and synthesizes trajectories.
type PipelineService struct {
	media     *storage.Media
	cache     *cache.Store
	jobs      *jobs.Store
	configs   *repository.ConfigRepository
	generated *repository.GeneratedRepository
}

// NewPipelineService creates a new pipeline service
func NewPipelineService(
	media *storage.Media,
	cacheStore *cache.Store,
	jobStore *jobs.Store,
	configs *repository.ConfigRepository,
	generated *repository.GeneratedRepository,
) *PipelineService {
	return &PipelineService{
		media:     media,
		cache:     cacheStore,
		jobs:      jobStore,
		configs:   configs,
		generated: generated,
	}
}

// BuildModel persists the uploaded trajectory data, allocates a job and runs
// phase-1 model building on a background worker. It returns the job ID
// immediately; all further outcomes are delivered as progress events.
func (s *PipelineService) BuildModel(upload io.Reader, cellSize int) (string, error) {
	if cellSize <= 0 {
		return "", fmt.Errorf("cell_size must be a positive integer, got %d", cellSize)
	}

	uploadName := fmt.Sprintf("upload_%s.csv", uuid.NewString())
	path, err := s.media.SaveUpload(uploadName, upload)
	if err != nil {
		return "", fmt.Errorf("failed to persist upload: %w", err)
	}

	jobID := s.jobs.Create()
	go s.runBuild(jobID, path, cellSize)

	return jobID, nil
}

// runBuild is the phase-1 worker. Each step publishes a progress event with
// a strictly increasing percentage; any failure publishes a single terminal
// error event and leaves no partial cache behind.
func (s *PipelineService) runBuild(jobID, uploadPath string, cellSize int) {
	progress := func(percent int, message string) {
		if err := s.jobs.Publish(jobID, jobs.Progress(percent, message)); err != nil {
			log.Printf("[PipelineService] Job %s: failed to publish progress: %v", jobID, err)
		}
	}
	fail := func(err error) {
		log.Printf("[PipelineService] Job %s failed: %v", jobID, err)
		if pubErr := s.jobs.Publish(jobID, jobs.Error(err.Error())); pubErr != nil {
			log.Printf("[PipelineService] Job %s: failed to publish error: %v", jobID, pubErr)
		}
	}

	progress(5, "Uploaded data saved")

	trajs, err := storage.ReadTrajectories(uploadPath)
	if err != nil {
		fail(fmt.Errorf("invalid input file: %w", err))
		return
	}
	progress(15, fmt.Sprintf("Loaded %d trajectories", len(trajs)))

	boundary, err := spatial.ExtractBoundary(models.Points(trajs))
	if err != nil {
		fail(fmt.Errorf("failed to compute study area: %w", err))
		return
	}
	progress(30, "Study area boundary computed")

	grid, sentences, err := palmto.CreateTokens(trajs, boundary, cellSize)
	if err != nil {
		fail(fmt.Errorf("failed to tokenize trajectories: %w", err))
		return
	}
	if len(sentences) == 0 {
		fail(fmt.Errorf("no trajectory produced any grid tokens"))
		return
	}
	progress(55, fmt.Sprintf("Grid created with %d cells", grid.NumCells()))

	model := palmto.BuildNgrams(sentences, grid)
	progress(80, "Sequence model built")

	stats := models.PipelineStats{
		CellsCreated:   grid.NumCells(),
		UniqueBigrams:  model.UniqueBigrams(),
		UniqueTrigrams: model.UniqueTrigrams(),
	}

	cacheFile, err := s.cache.Save(&cache.Blob{
		Grid:      grid,
		Ngrams:    model,
		Sentences: sentences,
		Boundary:  boundary,
		CellSize:  cellSize,
		Stats:     stats,
		CreatedAt: time.Now(),
	})
	if err != nil {
		fail(fmt.Errorf("failed to persist model cache: %w", err))
		return
	}
	progress(95, "Model cached")

	if err := s.jobs.Publish(jobID, jobs.Complete("Model building complete", cacheFile, stats)); err != nil {
		log.Printf("[PipelineService] Job %s: failed to publish completion: %v", jobID, err)
	}
	log.Printf("[PipelineService] Job %s complete: cache=%s cells=%d bigrams=%d trigrams=%d",
		jobID, cacheFile, stats.CellsCreated, stats.UniqueBigrams, stats.UniqueTrigrams)
}

// GenerateFromModel loads a cached model by reference or from an uploaded
// blob, synthesizes new trajectories, persists the output file and its
// records and assembles the visualization payloads.
func (s *PipelineService) GenerateFromModel(params models.GenerationParams) (*models.GenerationResult, error) {
	if params.NumTrajectories <= 0 {
		return nil, fmt.Errorf("num_trajectories must be a positive integer, got %d", params.NumTrajectories)
	}

	blob, err := s.loadBlob(params)
	if err != nil {
		return nil, err
	}

	generator := palmto.NewGenerator(blob.Ngrams, blob.Grid, time.Now().UnixNano())

	var newTrajs []models.Trajectory
	switch params.GenerationMethod {
	case models.MethodLengthConstrained:
		if params.TrajectoryLen < 2 {
			return nil, fmt.Errorf("trajectory_len must be at least 2, got %d", params.TrajectoryLen)
		}
		newTrajs, err = generator.GenerateWithLength(params.NumTrajectories, params.TrajectoryLen)
	case models.MethodPointToPoint:
		newTrajs, err = generator.GenerateOriginDestination(params.NumTrajectories)
	default:
		return nil, fmt.Errorf("unknown generation method %q", params.GenerationMethod)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate trajectories: %w", err)
	}

	generatedFile := fmt.Sprintf("generated_trajectories_%s.csv", uuid.NewString())
	generatedPath := s.media.Path(storage.GeneratedDir, generatedFile)
	if err := storage.WriteTrajectories(generatedPath, newTrajs); err != nil {
		return nil, fmt.Errorf("failed to save generated trajectories: %w", err)
	}

	config := &models.GenerationConfig{
		CellSize:         blob.CellSize,
		NumTrajectories:  params.NumTrajectories,
		TrajectoryLen:    params.TrajectoryLen,
		GenerationMethod: params.GenerationMethod,
		SourceFile:       params.CacheFile,
	}
	if err := s.configs.Create(config); err != nil {
		return nil, fmt.Errorf("failed to record generation config: %w", err)
	}
	if err := s.generated.Create(&models.GeneratedTrajectory{
		ConfigID: config.ID,
		FilePath: generatedPath,
	}); err != nil {
		return nil, fmt.Errorf("failed to record generated file: %w", err)
	}

	original := sentenceTrajectories(blob)

	visual, err := s.buildVisualization(original, newTrajs, blob.Boundary)
	if err != nil {
		return nil, err
	}
	heatmap, err := s.buildHeatmapComparison(original, newTrajs, blob, params.NumTrajectories)
	if err != nil {
		return nil, err
	}

	if params.DeleteCacheAfter && params.CacheFile != "" {
		if err := s.cache.Delete(params.CacheFile); err != nil {
			log.Printf("[PipelineService] Failed to delete cache %s: %v", params.CacheFile, err)
		}
	}

	return &models.GenerationResult{
		ID:            config.ID,
		GeneratedFile: generatedFile,
		Visualization: visual,
		Heatmap:       heatmap,
		Stats:         blob.Stats,
	}, nil
}

// StatsFromCache returns the summary statistics stored with a cached model
func (s *PipelineService) StatsFromCache(name string) (models.PipelineStats, error) {
	blob, err := s.cache.Load(name)
	if err != nil {
		return models.PipelineStats{}, err
	}
	return blob.Stats, nil
}

func (s *PipelineService) loadBlob(params models.GenerationParams) (*cache.Blob, error) {
	if len(params.CacheUpload) > 0 {
		return cache.LoadFrom(bytes.NewReader(params.CacheUpload))
	}
	if params.CacheFile == "" {
		return nil, fmt.Errorf("no cache file provided")
	}
	return s.cache.Load(params.CacheFile)
}

// sentenceTrajectories reconstructs the original trajectories from their
// token sequences using grid-cell centers. Exact input coordinates are not
// kept in the cache; cell centers are what the model saw.
func sentenceTrajectories(blob *cache.Blob) []models.Trajectory {
	trajs := make([]models.Trajectory, 0, len(blob.Sentences))
	ts := blob.CreatedAt.Unix()
	for _, sentence := range blob.Sentences {
		points := make([]spatial.Point, 0, len(sentence.Tokens))
		for _, tok := range sentence.Tokens {
			points = append(points, blob.Grid.CellCenter(tok))
		}
		trajs = append(trajs, models.Trajectory{
			TripID:    sentence.TripID,
			Timestamp: ts,
			Geometry:  points,
		})
	}
	return trajs
}

func (s *PipelineService) buildVisualization(original, generated []models.Trajectory, boundary spatial.Boundary) (*models.VisualizationData, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	lat, lon := boundary.Centroid()

	return &models.VisualizationData{
		Original:  trajectoryFeatures(sampleTrajectories(original, visualSampleLimit, rng)),
		Generated: trajectoryFeatures(sampleTrajectories(generated, visualSampleLimit, rng)),
		Center:    []float64{lat, lon},
	}, nil
}

func (s *PipelineService) buildHeatmapComparison(original, generated []models.Trajectory, blob *cache.Blob, sample int) (*models.HeatmapComparison, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	originalHeat, err := spatial.BuildHeatmap(
		models.Points(sampleTrajectories(original, sample, rng)), blob.Boundary, blob.CellSize)
	if err != nil {
		return nil, fmt.Errorf("failed to build original heatmap: %w", err)
	}

	generatedHeat, err := spatial.BuildHeatmap(
		models.Points(sampleTrajectories(generated, sample, rng)), blob.Boundary, blob.CellSize)
	if err != nil {
		return nil, fmt.Errorf("failed to build generated heatmap: %w", err)
	}

	lat, lon := blob.Boundary.Centroid()
	return &models.HeatmapComparison{
		Original:  originalHeat,
		Generated: generatedHeat,
		Center:    []float64{lat, lon},
		Bounds: [][]float64{
			{blob.Boundary.MinLat, blob.Boundary.MinLon},
			{blob.Boundary.MaxLat, blob.Boundary.MaxLon},
		},
	}, nil
}

func trajectoryFeatures(trajs []models.Trajectory) *models.FeatureCollection {
	fc := models.NewFeatureCollection()
	for _, t := range trajs {
		fc.Features = append(fc.Features, models.Feature{
			Type: "Feature",
			Geometry: models.Geometry{
				Type:        "LineString",
				Coordinates: models.LineStringCoords(t.Geometry),
			},
		})
	}
	return fc
}

// sampleTrajectories picks up to n trajectories without replacement
func sampleTrajectories(trajs []models.Trajectory, n int, rng *rand.Rand) []models.Trajectory {
	if n >= len(trajs) {
		return trajs
	}
	picked := rng.Perm(len(trajs))[:n]
	out := make([]models.Trajectory, 0, n)
	for _, idx := range picked {
		out = append(out, trajs[idx])
	}
	return out
}
