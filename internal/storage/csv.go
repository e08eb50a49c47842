package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/palmto/trajgen-backend-go/internal/models"
	"github.com/palmto/trajgen-backend-go/internal/spatial"
)

// TrajectoryHeader is the exact column contract for trajectory CSV files
var TrajectoryHeader = []string{"trip_id", "timestamp", "geometry"}

// MatchedHeader is the column layout of road-snapped trajectory files
var MatchedHeader = []string{"trip_id", "confidence", "distance", "duration", "geometry"}

// ReadTrajectories loads a trajectory CSV from disk
func ReadTrajectories(path string) ([]models.Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trajectory file: %w", err)
	}
	defer f.Close()

	return ReadTrajectoriesFrom(f)
}

// ReadTrajectoriesFrom parses trajectory CSV content. The header must be
// exactly trip_id, timestamp, geometry; geometry must decode to a list of
// [lon, lat] pairs; timestamp is epoch seconds.
func ReadTrajectoriesFrom(r io.Reader) ([]models.Trajectory, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if err := checkHeader(header, TrajectoryHeader); err != nil {
		return nil, err
	}

	var trajs []models.Trajectory
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}

		ts, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", record[1], err)
		}

		geometry, err := parseGeometry(record[2])
		if err != nil {
			return nil, fmt.Errorf("invalid geometry for trip %s: %w", record[0], err)
		}

		trajs = append(trajs, models.Trajectory{
			TripID:    strings.TrimSpace(record[0]),
			Timestamp: ts,
			Geometry:  geometry,
		})
	}

	if len(trajs) == 0 {
		return nil, fmt.Errorf("trajectory file contains no data rows")
	}

	return trajs, nil
}

// WriteTrajectories saves trajectories as a CSV with the input file shape
func WriteTrajectories(path string, trajs []models.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trajectory file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(TrajectoryHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, t := range trajs {
		geometry, err := encodeGeometry(t.Geometry)
		if err != nil {
			return fmt.Errorf("failed to encode geometry for trip %s: %w", t.TripID, err)
		}
		row := []string{t.TripID, strconv.FormatInt(t.Timestamp, 10), geometry}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// WriteMatched saves road-snapped trajectory features with their matching
// attributes
func WriteMatched(path string, features []models.Feature) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create matched file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(MatchedHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, feat := range features {
		coords, err := json.Marshal(feat.Geometry.Coordinates)
		if err != nil {
			return fmt.Errorf("failed to encode matched geometry: %w", err)
		}

		row := []string{
			fmt.Sprintf("%v", feat.Properties["trip_id"]),
			formatFloat(feat.Properties["confidence"]),
			formatFloat(feat.Properties["distance"]),
			formatFloat(feat.Properties["duration"]),
			string(coords),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("bad csv header %v, want %v", got, want)
	}
	for i := range want {
		if strings.TrimSpace(got[i]) != want[i] {
			return fmt.Errorf("bad csv header %v, want %v", got, want)
		}
	}
	return nil
}

func parseGeometry(field string) ([]spatial.Point, error) {
	var pairs [][]float64
	if err := json.Unmarshal([]byte(field), &pairs); err != nil {
		return nil, fmt.Errorf("geometry is not a coordinate list: %w", err)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("geometry is empty")
	}

	points := make([]spatial.Point, 0, len(pairs))
	for _, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("coordinate pair has %d values", len(pair))
		}
		points = append(points, spatial.Point{Lon: pair[0], Lat: pair[1]})
	}
	return points, nil
}

func encodeGeometry(points []spatial.Point) (string, error) {
	pairs := make([][]float64, 0, len(points))
	for _, p := range points {
		pairs = append(pairs, []float64{p.Lon, p.Lat})
	}
	out, err := json.Marshal(pairs)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func formatFloat(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
