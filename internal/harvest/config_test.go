package harvest_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvestlab/newsharvest/internal/harvest"
)

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadConfigFile_YAML(t *testing.T) {
	p := writeTempConfig(t, "config.yaml", `
fetch:
  delaySeconds: 2.5
  timeoutSeconds: 30
  retries: 0
  userAgent: "custom-agent/2.0"
harvest:
  maxArticles: 25
  qualityThreshold: 0.75
`)
	fc, err := harvest.LoadConfigFile(p)
	require.NoError(t, err)

	cfg := harvest.DefaultConfig()
	fc.Apply(&cfg)

	assert.Equal(t, 2500*time.Millisecond, cfg.RequestDelay)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 0, cfg.MaxRetries, "explicit zero retries overrides the default")
	assert.Equal(t, "custom-agent/2.0", cfg.UserAgent)
	assert.Equal(t, 25, cfg.MaxArticles)
	assert.Equal(t, 0.75, cfg.QualityThreshold)
	assert.Equal(t, harvest.DefaultConfig().MinWords, cfg.MinWords, "absent fields keep defaults")
}

func TestLoadConfigFile_JSON(t *testing.T) {
	p := writeTempConfig(t, "config.json", `{"harvest": {"qualityThreshold": 0}}`)
	fc, err := harvest.LoadConfigFile(p)
	require.NoError(t, err)

	cfg := harvest.DefaultConfig()
	fc.Apply(&cfg)
	assert.Equal(t, 0.0, cfg.QualityThreshold, "explicit zero threshold overrides the default")
}

func TestLoadConfigFile_SparseOverlay(t *testing.T) {
	p := writeTempConfig(t, "config.yaml", `
fetch:
  cacheDir: /tmp/pages
`)
	fc, err := harvest.LoadConfigFile(p)
	require.NoError(t, err)

	cfg := harvest.DefaultConfig()
	fc.Apply(&cfg)
	assert.Equal(t, "/tmp/pages", cfg.CacheDir)
	assert.Equal(t, harvest.DefaultConfig().RequestDelay, cfg.RequestDelay)
	assert.Equal(t, harvest.DefaultConfig().UserAgent, cfg.UserAgent)
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := harvest.LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfigFile_Malformed(t *testing.T) {
	p := writeTempConfig(t, "config.yaml", "fetch: [not: a: mapping")
	_, err := harvest.LoadConfigFile(p)
	require.Error(t, err)
}
