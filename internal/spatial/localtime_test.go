package spatial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationFor(t *testing.T) {
	loc, err := LocationFor(-79.38, 43.65) // downtown Toronto
	require.NoError(t, err)
	assert.Equal(t, "America/Toronto", loc.String())
}

func TestLocationForOpenOcean(t *testing.T) {
	_, err := LocationFor(-150.0, -45.0) // South Pacific
	assert.ErrorIs(t, err, ErrTimezoneNotFound)
}

func TestResolveLocalTime(t *testing.T) {
	got, err := ResolveLocalTime(-79.38, 43.65, 1700000000)
	require.NoError(t, err)

	parsed, err := time.Parse(LocalTimeLayout, got)
	require.NoError(t, err, "output must use the DD/MM/YYYY HH:MM:SS layout")
	assert.Equal(t, 2023, parsed.Year())
}

func TestResolveLocalTimeNoZone(t *testing.T) {
	_, err := ResolveLocalTime(-150.0, -45.0, 1700000000)
	assert.ErrorIs(t, err, ErrTimezoneNotFound)
}
