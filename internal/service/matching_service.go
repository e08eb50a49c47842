package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/palmto/trajgen-backend-go/internal/models"
	"github.com/palmto/trajgen-backend-go/internal/storage"
)

const (
	// matchSeed fixes the trajectory sampling so repeated requests over the
	// same file and percentage pick the same subset
	matchSeed = 404
	// matchFanout bounds concurrent requests against the routing service
	matchFanout = 4
)

// MatchingService snaps generated trajectories onto the road network through
// an external OSRM-compatible routing service
type MatchingService struct {
	media   *storage.Media
	baseURL string
	client  *http.Client
}

// NewMatchingService creates a matching service. timeout bounds each
// per-trajectory request.
func NewMatchingService(media *storage.Media, baseURL string, timeout time.Duration) *MatchingService {
	return &MatchingService{
		media:   media,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type osrmMatching struct {
	Confidence float64         `json:"confidence"`
	Distance   float64         `json:"distance"`
	Duration   float64         `json:"duration"`
	Geometry   models.Geometry `json:"geometry"`
}

type osrmResponse struct {
	Matchings []osrmMatching `json:"matchings"`
}

// MatchBatch map-matches a sampled percentage of a generated trajectory
// file. Individual failures (non-2xx, timeout, empty matchings) drop that
// trajectory from the result; they never fail the batch. The combined result
// is always written to a matched output file, even when empty.
func (s *MatchingService) MatchBatch(ctx context.Context, filename string, percentage float64) (*models.FeatureCollection, string, error) {
	trajs, err := storage.ReadTrajectories(s.media.Path(storage.GeneratedDir, filename))
	if err != nil {
		return nil, "", err
	}

	sampled := sampleFraction(trajs, percentage)

	results := make([]*models.Feature, len(sampled))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(matchFanout)

	for i, traj := range sampled {
		i, traj := i, traj
		g.Go(func() error {
			feature, err := s.matchOne(gCtx, traj)
			if err != nil {
				// Recovered locally: log and exclude this trajectory.
				log.Printf("[MatchingService] Skipping trip %s: %v", traj.TripID, err)
				return nil
			}
			results[i] = feature
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, "", fmt.Errorf("failed to run matching batch: %w", err)
	}

	collection := models.NewFeatureCollection()
	for _, feature := range results {
		if feature != nil {
			collection.Features = append(collection.Features, *feature)
		}
	}

	outputFile := fmt.Sprintf("matched_trajectories_%s.csv", uuid.NewString())
	if err := storage.WriteMatched(s.media.Path(storage.MatchedDir, outputFile), collection.Features); err != nil {
		return nil, "", fmt.Errorf("failed to save matched trajectories: %w", err)
	}

	log.Printf("[MatchingService] Matched %d/%d sampled trajectories from %s",
		len(collection.Features), len(sampled), filename)
	return collection, outputFile, nil
}

// matchOne issues a single map-matching request for one trajectory
func (s *MatchingService) matchOne(ctx context.Context, traj models.Trajectory) (*models.Feature, error) {
	coords := make([]string, 0, len(traj.Geometry))
	for _, p := range traj.Geometry {
		coords = append(coords,
			strconv.FormatFloat(p.Lon, 'f', -1, 64)+","+strconv.FormatFloat(p.Lat, 'f', -1, 64))
	}

	url := fmt.Sprintf("%s/match/v1/driving/%s?overview=full&annotations=true&geometries=geojson",
		s.baseURL, strings.Join(coords, ";"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build matching request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("matching request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routing service returned status %d", resp.StatusCode)
	}

	var matched osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&matched); err != nil {
		return nil, fmt.Errorf("failed to decode matching response: %w", err)
	}
	if len(matched.Matchings) == 0 {
		return nil, fmt.Errorf("no matching geometry returned")
	}

	matching := matched.Matchings[0]
	return &models.Feature{
		Type: "Feature",
		Properties: map[string]interface{}{
			"trip_id":    traj.TripID,
			"confidence": matching.Confidence,
			"distance":   matching.Distance,
			"duration":   matching.Duration,
		},
		Geometry: matching.Geometry,
	}, nil
}

// sampleFraction deterministically samples percentage% of the trajectories
func sampleFraction(trajs []models.Trajectory, percentage float64) []models.Trajectory {
	if percentage >= 100 {
		return trajs
	}
	if percentage <= 0 {
		return nil
	}

	n := int(float64(len(trajs)) * percentage / 100)
	if n == 0 && len(trajs) > 0 {
		n = 1
	}

	rng := rand.New(rand.NewSource(matchSeed))
	picked := rng.Perm(len(trajs))[:n]
	out := make([]models.Trajectory, 0, n)
	for _, idx := range picked {
		out = append(out, trajs[idx])
	}
	return out
}
