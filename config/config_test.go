package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config:
// - Default() is valid and carries the vocabulary defaults
// - Load() uses defaults when no config file exists
// - Load() merges a config file over defaults
// - Environment variables override the config file
// - Set flags override environment variables; unset flags do not
// - Load() fails for malformed YAML and for a missing explicit file
// - Validate() reports every invalid field wrapped in ErrInvalidConfig
// - TargetSet() prefers a targets file and its markers

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wikimelt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func emptyLoader(t *testing.T) *Loader {
	t.Helper()
	return NewLoader("").SearchPaths(t.TempDir())
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, DefaultPage, cfg.Source.Page)
	assert.Equal(t, []string{"México", "España", "Puerto Rico", "Guatemala"}, cfg.Extract.Targets)
	assert.Equal(t, "wikitable", cfg.Extract.TableClass)
	assert.Equal(t, 1, cfg.Extract.Concurrency)
	assert.Equal(t, 1000, cfg.Extract.Classifier.HitWeight)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "vocabulary", cfg.Output.Columns)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := emptyLoader(t).Load()
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.Source, cfg.Source)
	assert.Equal(t, d.Fetch, cfg.Fetch)
	assert.Equal(t, d.Extract.Targets, cfg.Extract.Targets)
	assert.Equal(t, d.Extract.Sentinels, cfg.Extract.Sentinels)
	assert.Equal(t, d.Extract.Classifier, cfg.Extract.Classifier)
	assert.Empty(t, cfg.Extract.HeadingLevels)
	assert.Equal(t, d.Output, cfg.Output)
	assert.Equal(t, d.Log, cfg.Log)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
source:
  page: "Anexo:Gentilicios"
fetch:
  timeout: 45s
extract:
  targets: [Chile, Perú]
  heading_levels: [2, 3]
  concurrency: 4
  classifier:
    hit_weight: 5000
output:
  format: jsonl
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Anexo:Gentilicios", cfg.Source.Page)
	assert.Equal(t, 45*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, []string{"Chile", "Perú"}, cfg.Extract.Targets)
	assert.Equal(t, []int{2, 3}, cfg.Extract.HeadingLevels)
	assert.Equal(t, 4, cfg.Extract.Concurrency)
	assert.Equal(t, 5000, cfg.Extract.Classifier.HitWeight)
	assert.Equal(t, 3, cfg.Extract.Classifier.MinLength, "unset keys keep defaults")
	assert.Equal(t, "jsonl", cfg.Output.Format)
	assert.Equal(t, "wikitable", cfg.Extract.TableClass)
}

func TestLoad_SearchPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wikimelt.yaml"), []byte("log:\n  level: debug\n"), 0o644))

	cfg, err := NewLoader("").SearchPaths(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: warn\nextract:\n  concurrency: 2\n")
	t.Setenv("WIKIMELT_LOG_LEVEL", "error")
	t.Setenv("WIKIMELT_EXTRACT_CONCURRENCY", "8")
	t.Setenv("WIKIMELT_STORE_SQLITE", "/tmp/runs.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 8, cfg.Extract.Concurrency)
	assert.Equal(t, "/tmp/runs.db", cfg.Store.SQLite)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("WIKIMELT_OUTPUT_FORMAT", "tsv")
	t.Setenv("WIKIMELT_LOG_LEVEL", "warn")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("format", "csv", "")
	fs.String("log-level", "info", "")
	require.NoError(t, fs.Parse([]string{"--format", "json"}))

	cfg, err := emptyLoader(t).
		BindFlag("output.format", fs.Lookup("format")).
		BindFlag("log.level", fs.Lookup("log-level")).
		Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format, "set flag wins")
	assert.Equal(t, "warn", cfg.Log.Level, "unset flag does not shadow env")
}

func TestLoad_Errors(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "extract: [unclosed\n")
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeConfig(t, "extract:\n  concurrency: 0\n")
		_, err := Load(path)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no source", func(c *Config) { c.Source = SourceConfig{} }, "source.page"},
		{"no targets", func(c *Config) { c.Extract.Targets = nil }, "extract.targets"},
		{"bad concurrency", func(c *Config) { c.Extract.Concurrency = -1 }, "extract.concurrency"},
		{"bad heading level", func(c *Config) { c.Extract.HeadingLevels = []int{7} }, "heading_levels"},
		{"bad classifier", func(c *Config) { c.Extract.Classifier.MaxLength = 1 }, "extract.classifier"},
		{"bad exclusion", func(c *Config) { c.Content.Exclusion = "everything" }, "content.exclusion"},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"bad columns", func(c *Config) { c.Output.Columns = "wide" }, "output.columns"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"negative timeout", func(c *Config) { c.Fetch.Timeout = -time.Second }, "fetch.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Extract.Concurrency = 0
	cfg.Output.Format = "xml"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract.concurrency")
	assert.Contains(t, err.Error(), "output.format")
}

func TestTargetSet(t *testing.T) {
	t.Run("inline targets", func(t *testing.T) {
		cfg := Default()
		set, markers, err := cfg.TargetSet()
		require.NoError(t, err)
		assert.Equal(t, 4, set.Len())
		assert.Equal(t, []string{"Artículo de Wikipedia"}, markers)
	})

	t.Run("targets file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "targets.yaml")
		require.NoError(t, os.WriteFile(path, []byte("targets: [Chile]\nmetadata_markers: [Fuente]\n"), 0o644))

		cfg := Default()
		cfg.Extract.TargetsFile = path
		set, markers, err := cfg.TargetSet()
		require.NoError(t, err)
		assert.True(t, set.Contains("chile"))
		assert.False(t, set.Contains("México"))
		assert.Equal(t, []string{"Fuente"}, markers)
	})

	t.Run("empty targets", func(t *testing.T) {
		cfg := Default()
		cfg.Extract.Targets = nil
		_, _, err := cfg.TargetSet()
		require.Error(t, err)
	})
}

func TestConversions(t *testing.T) {
	cfg := Default()
	assert.Equal(t, cfg.Fetch.Endpoint, cfg.FetchOptions().Endpoint)
	assert.Equal(t, 30, cfg.ClassifierConfig().MaxLength)
}
