package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palmto/trajgen-backend-go/internal/models"
	"github.com/palmto/trajgen-backend-go/internal/spatial"
)

const sampleCSV = `trip_id,timestamp,geometry
trip_1,1700000000,"[[-79.38, 43.65], [-79.39, 43.66]]"
trip_2,1700000300,"[[-79.40, 43.64]]"
`

func TestReadTrajectoriesFrom(t *testing.T) {
	trajs, err := ReadTrajectoriesFrom(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, trajs, 2)

	assert.Equal(t, "trip_1", trajs[0].TripID)
	assert.Equal(t, int64(1700000000), trajs[0].Timestamp)
	require.Len(t, trajs[0].Geometry, 2)
	assert.Equal(t, spatial.Point{Lon: -79.38, Lat: 43.65}, trajs[0].Geometry[0])
	assert.Equal(t, spatial.Point{Lon: -79.39, Lat: 43.66}, trajs[0].Geometry[1])

	require.Len(t, trajs[1].Geometry, 1)
}

func TestReadTrajectoriesFromRejectsBadHeader(t *testing.T) {
	csv := "id,time,coords\ntrip_1,1700000000,\"[[0,0]]\"\n"

	_, err := ReadTrajectoriesFrom(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad csv header")
}

func TestReadTrajectoriesFromRejectsEmptyFile(t *testing.T) {
	csv := "trip_id,timestamp,geometry\n"

	_, err := ReadTrajectoriesFrom(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data rows")
}

func TestReadTrajectoriesFromRejectsBadGeometry(t *testing.T) {
	for _, geometry := range []string{`"not json"`, `"[]"`, `"[[1,2,3]]"`} {
		csv := "trip_id,timestamp,geometry\ntrip_1,1700000000," + geometry + "\n"
		_, err := ReadTrajectoriesFrom(strings.NewReader(csv))
		assert.Error(t, err, "geometry %s should be rejected", geometry)
	}
}

func TestReadTrajectoriesFromRejectsBadTimestamp(t *testing.T) {
	csv := "trip_id,timestamp,geometry\ntrip_1,yesterday,\"[[0,0]]\"\n"

	_, err := ReadTrajectoriesFrom(strings.NewReader(csv))
	assert.Error(t, err)
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	want := []models.Trajectory{
		{
			TripID:    "gen_0",
			Timestamp: 1700000000,
			Geometry:  []spatial.Point{{Lon: -79.38, Lat: 43.65}, {Lon: -79.39, Lat: 43.66}},
		},
	}

	require.NoError(t, WriteTrajectories(path, want))

	got, err := ReadTrajectories(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteMatched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matched.csv")
	features := []models.Feature{
		{
			Type: "Feature",
			Geometry: models.Geometry{
				Type:        "LineString",
				Coordinates: [][]float64{{-79.38, 43.65}, {-79.39, 43.66}},
			},
			Properties: map[string]interface{}{
				"trip_id":    "gen_0",
				"confidence": 0.92,
				"distance":   1530.5,
				"duration":   240.0,
			},
		},
	}

	require.NoError(t, WriteMatched(path, features))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)

	assert.True(t, strings.HasPrefix(content, "trip_id,confidence,distance,duration,geometry"))
	assert.Contains(t, content, "gen_0")
	assert.Contains(t, content, "0.92")
	assert.Contains(t, content, "1530.5")
}

func TestMediaSaveUploadAndResolve(t *testing.T) {
	media, err := NewMedia(t.TempDir())
	require.NoError(t, err)

	path, err := media.SaveUpload("input.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = media.SaveUpload("../escape.csv", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestMediaResolve(t *testing.T) {
	media, err := NewMedia(t.TempDir())
	require.NoError(t, err)

	generated := media.Path(GeneratedDir, "generated_trajectories_x.csv")
	require.NoError(t, os.WriteFile(generated, []byte("data"), 0o644))

	got, err := media.Resolve("generated_trajectories_x.csv")
	require.NoError(t, err)
	assert.Equal(t, generated, got)

	_, err = media.Resolve("missing.csv")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = media.Resolve("../etc/passwd")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
