package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinlift/twinlift/internal/load"
)

// Test Plan for Pre-Flight Validation:
// - All checks pass with reachable backends and an existing input
// - A missing input path fails the input check only
// - Unavailable backends fail their checks and the overall report

func TestPreflight_AllChecksPass(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	loader := load.NewWithBackends(memRows{}, memVectors{}, cfg.Storage.OutputDirectory, 0.8)
	defer loader.Close()

	input := filepath.Join(t.TempDir(), "line-1.zip")
	require.NoError(t, os.WriteFile(input, []byte("PK\x03\x04"), 0o644))

	report := Preflight(cfg, loader, input)
	assert.True(t, report.OK)
	require.Len(t, report.Checks, 4)
	for _, check := range report.Checks {
		assert.True(t, check.OK, check.Name)
	}
}

func TestPreflight_MissingInput(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	loader := load.NewWithBackends(memRows{}, memVectors{}, cfg.Storage.OutputDirectory, 0.8)
	defer loader.Close()

	report := Preflight(cfg, loader, filepath.Join(t.TempDir(), "missing.zip"))
	assert.False(t, report.OK)
	assert.False(t, report.Checks[0].OK)
	assert.NotEmpty(t, report.Checks[0].Detail)
}

func TestPreflight_UnavailableBackends(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	loader := load.NewWithBackends(nil, nil, cfg.Storage.OutputDirectory, 0.8)
	defer loader.Close()

	report := Preflight(cfg, loader, "")
	assert.False(t, report.OK)

	failures := 0
	for _, check := range report.Checks {
		if !check.OK {
			failures++
		}
	}
	assert.Equal(t, 2, failures)
}
