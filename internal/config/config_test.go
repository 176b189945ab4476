package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdavenport/fairroster/pkg/core/difficulty"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_fairroster_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromPath_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
databaseURL: postgres://localhost:5432/fairroster
`)

	cfg, err := LoadFromPath(path)

	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost:5432/fairroster", cfg.DatabaseURL)
	assert.InDelta(t, difficulty.DefaultAlpha, cfg.AlphaValue(), 1e-9)
	assert.True(t, cfg.Strict())
	assert.Equal(t, difficulty.PolicyDiscard, cfg.Policy())
	assert.Empty(t, cfg.RecurringConstraints)
}

func TestLoadFromPath_ReadsOverrides(t *testing.T) {
	path := writeConfig(t, `
databaseURL: postgres://localhost:5432/fairroster
alpha: 0.7
strictCompleteness: false
ratingPolicy: normalize
generator:
  maxIterationsPerRole: 100
  maxDegenerateRuns: 5
recurringConstraints:
  - workerID: w1
    rrule: FREQ=WEEKLY;BYDAY=SU
    startTime: "09:00"
    durationHours: 8
`)

	cfg, err := LoadFromPath(path)

	require.NoError(t, err)
	assert.InDelta(t, 0.7, cfg.AlphaValue(), 1e-9)
	assert.False(t, cfg.Strict())
	assert.Equal(t, difficulty.PolicyNormalize, cfg.Policy())
	assert.Equal(t, 100, cfg.Generator.MaxIterationsPerRole)
	assert.Equal(t, 5, cfg.Generator.MaxDegenerateRuns)

	require.Len(t, cfg.RecurringConstraints, 1)
	assert.Equal(t, "w1", cfg.RecurringConstraints[0].WorkerID)
}

func TestLoadFromPath_MissingDatabaseURLFails(t *testing.T) {
	path := writeConfig(t, `
alpha: 0.5
`)

	_, err := LoadFromPath(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromPath_AlphaOutOfRangeFails(t *testing.T) {
	path := writeConfig(t, `
databaseURL: postgres://localhost:5432/fairroster
alpha: 1.5
`)

	_, err := LoadFromPath(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromPath_UnknownRatingPolicyFails(t *testing.T) {
	path := writeConfig(t, `
databaseURL: postgres://localhost:5432/fairroster
ratingPolicy: optimistic
`)

	_, err := LoadFromPath(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromPath_InvalidRRuleFails(t *testing.T) {
	path := writeConfig(t, `
databaseURL: postgres://localhost:5432/fairroster
recurringConstraints:
  - workerID: w1
    rrule: FREQ=OCCASIONALLY
    durationHours: 8
`)

	_, err := LoadFromPath(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule")
}

func TestLoadFromPath_MissingFileFails(t *testing.T) {
	_, err := LoadFromPath("/nonexistent/config.yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
