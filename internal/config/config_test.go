package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bruceraup/glims-aster-gains/pkg/glims"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	assert := assert.New(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal("GLIMS_STARs_01Jan23-31Dec23(STARTool)_Final.csv", cfg.Files.Input)
	assert.Equal(21.667, cfg.Lookup.EqCrossingTime)
	assert.Equal(SourceService, cfg.Lookup.Source)
	assert.Equal("https://www.glims.org/cgi-bin/aster_gain.pl", cfg.Lookup.URL)
	assert.Equal(glims.DefaultSchema(), cfg.Schema())
	assert.Equal("\r\n", cfg.Output.LineTerminator())
	assert.Zero(cfg.Lookup.Timeout)
}

func TestLoad_File(t *testing.T) {
	assert := assert.New(t)
	path := writeConfig(t, `
files:
  input: stars.csv
  output: stars_{date}.csv
lookup:
  source: model
  eq_crossing_time: 22.5
  timeout: 30s
  rate_limit: 2.5
output:
  line_ending: lf
  compress: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal("stars.csv", cfg.Files.Input)
	assert.Equal("stars_2025-03-17.csv", cfg.Files.OutputName(time.Date(2025, 3, 17, 10, 0, 0, 0, time.UTC)))
	assert.Equal(SourceModel, cfg.Lookup.Source)
	assert.Equal(22.5, cfg.Lookup.EqCrossingTime)
	assert.Equal(30*time.Second, cfg.Lookup.Timeout)
	assert.Equal(2.5, cfg.Lookup.ClientOptions().RateLimit)
	assert.Equal("\n", cfg.Output.LineTerminator())
	assert.True(cfg.Output.Compress)

	// untouched sections keep their defaults
	assert.Equal(glims.DefaultSchema(), cfg.Schema())
	assert.Equal(100, cfg.Output.ProgressEvery)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("ASTERGAIN_LOOKUP_EQ_CROSSING_TIME", "21")
	t.Setenv("ASTERGAIN_FILES_INPUT", "env.csv")
	t.Setenv("ASTERGAIN_COLUMNS_SENTINEL_MARKER", "Section")
	t.Setenv("ASTERGAIN_LOGGING_DEBUG", "true")

	path := writeConfig(t, "files:\n  input: file.csv\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 21.0, cfg.Lookup.EqCrossingTime)
	assert.Equal(t, "env.csv", cfg.Files.Input)
	assert.Equal(t, "Section", cfg.Schema().SentinelMarker)
	assert.True(t, cfg.Logging.Debug)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"source":      "lookup:\n  source: oracle\n",
		"eq time":     "lookup:\n  eq_crossing_time: 25\n",
		"url":         "lookup:\n  url: not a url\n",
		"line ending": "output:\n  line_ending: cr\n",
		"input":       "files:\n  input: \"\"\n",
		"overlap":     "columns:\n  window_start: 18\n",
		"negative":    "columns:\n  gains: -1\n",
		"yaml":        "lookup: [",
	}
	for name, content := range tests {
		_, err := Load(writeConfig(t, content))
		assert.Error(t, err, name)
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFiles_OutputName(t *testing.T) {
	f := Default().Files
	assert.Equal(t, "GLIMS_STARs_Raup_Kargel_2025-03-17.csv", f.OutputName(time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)))

	f.Output = "fixed.csv"
	assert.Equal(t, "fixed.csv", f.OutputName(time.Now()))
}
