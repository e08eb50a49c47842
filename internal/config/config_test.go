package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DB_PATH", "MEDIA_ROOT", "OSRM_URL", "JWT_SECRET",
		"MATCH_TIMEOUT_SECONDS", "JOB_TTL_MINUTES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "./data/trajgen.db", cfg.DBPath)
	assert.Equal(t, "./media", cfg.MediaRoot)
	assert.Equal(t, 10*time.Second, cfg.MatchTimeout)
	assert.Equal(t, 30*time.Minute, cfg.JobTTL)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", ":9090")
	t.Setenv("MATCH_TIMEOUT_SECONDS", "3")
	t.Setenv("JOB_TTL_MINUTES", "5")

	cfg := Load()
	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.MatchTimeout)
	assert.Equal(t, 5*time.Minute, cfg.JobTTL)
}

func TestLoadIgnoresInvalidDurations(t *testing.T) {
	clearEnv(t)
	t.Setenv("MATCH_TIMEOUT_SECONDS", "soon")
	t.Setenv("JOB_TTL_MINUTES", "-1")

	cfg := Load()
	assert.Equal(t, 10*time.Second, cfg.MatchTimeout)
	assert.Equal(t, 30*time.Minute, cfg.JobTTL)
}
