package extract

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinlift/twinlift/internal/config"
	"github.com/twinlift/twinlift/internal/model"
)

// Test Plan for Tier 1:
// - A well-behaved engine's JSON output maps onto the extraction result
// - A hanging engine hits the timeout and maps to Tier1Timeout
// - Malformed JSON output maps to ParseFailure
// - A non-zero exit maps to ParseFailure
// - The extractor recovers all of the above by falling through to tier 3
// - Tier 1 is skipped entirely when the command does not exist

func testPipelineConfig() config.PipelineConfig {
	cfg := config.Default().Pipeline
	cfg.EnableLogging = false
	return cfg
}

// writeEngineScript creates an executable shell script acting as the
// external parsing engine.
func writeEngineScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("engine scripts are POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "engine.sh")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func packageFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pump.zip")
	writeZip(t, path, [][2]string{{"aasx/env.aas.json", jsonDescriptor}})
	return path
}

func TestTier1_ParsesEngineOutput(t *testing.T) {
	t.Parallel()

	engine := writeEngineScript(t, `cat <<'EOF'
{
  "assets": [{"id": "urn:aas:engine-1", "idShort": "Pump", "description": "From the engine", "kind": "Instance", "format": "aasx"}],
  "submodels": [{"id": "urn:sm:engine-1", "idShort": "Nameplate", "kind": "Instance", "format": "aasx"}],
  "documents": [{"filename": "manual.pdf", "size": 2048, "type": "application/pdf"}]
}
EOF`)

	tier := newTier1(engine, 5*time.Second)
	require.True(t, tier.Available())

	result, err := tier.Parse(context.Background(), ParseRequest{Path: packageFixture(t)})
	require.NoError(t, err)

	require.Len(t, result.Assets, 1)
	assert.Equal(t, "urn:aas:engine-1", result.Assets[0].ID)
	assert.Equal(t, "aasx", result.Assets[0].Provenance.Format)
	require.Len(t, result.Submodels, 1)
	assert.Equal(t, "Nameplate", result.Submodels[0].ShortID)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, int64(2048), result.Documents[0].Size)
}

func TestTier1_TimeoutMapsToTier1Timeout(t *testing.T) {
	t.Parallel()

	engine := writeEngineScript(t, "sleep 5")
	tier := newTier1(engine, 100*time.Millisecond)

	_, err := tier.Parse(context.Background(), ParseRequest{Path: packageFixture(t)})
	require.Error(t, err)
	assert.Equal(t, model.ErrTier1Timeout, model.CodeOf(err))
}

func TestTier1_MalformedJSONMapsToParseFailure(t *testing.T) {
	t.Parallel()

	engine := writeEngineScript(t, `echo "not json"`)
	tier := newTier1(engine, 5*time.Second)

	_, err := tier.Parse(context.Background(), ParseRequest{Path: packageFixture(t)})
	require.Error(t, err)
	assert.Equal(t, model.ErrParseFailure, model.CodeOf(err))
}

func TestTier1_NonZeroExitMapsToParseFailure(t *testing.T) {
	t.Parallel()

	engine := writeEngineScript(t, `echo "boom" >&2; exit 3`)
	tier := newTier1(engine, 5*time.Second)

	_, err := tier.Parse(context.Background(), ParseRequest{Path: packageFixture(t)})
	require.Error(t, err)
	assert.Equal(t, model.ErrParseFailure, model.CodeOf(err))
}

func TestExtractor_RecoversTier1FailureViaTier3(t *testing.T) {
	t.Parallel()

	cfg := testPipelineConfig()
	cfg.Tier1Command = writeEngineScript(t, `exit 1`)
	cfg.FileTimeout = 5 * time.Second

	result, err := New(cfg).Extract(context.Background(), packageFixture(t))
	require.NoError(t, err)

	assert.Equal(t, "tier3", result.Tier)
	require.Len(t, result.TierErrors, 1)
	assert.Contains(t, result.TierErrors[0], "tier1")
	assert.Len(t, result.Assets, 1)
}

func TestExtractor_SkipsMissingTier1Command(t *testing.T) {
	t.Parallel()

	cfg := testPipelineConfig()
	cfg.Tier1Command = "/nonexistent/aas-engine"

	result, err := New(cfg).Extract(context.Background(), packageFixture(t))
	require.NoError(t, err)

	// Unavailable tiers are skipped without recording an error.
	assert.Equal(t, "tier3", result.Tier)
	assert.Empty(t, result.TierErrors)
	assert.NotContains(t, result.TierTimings, "tier1")
}
