package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xeptore/beatpulse/config"
	"github.com/xeptore/beatpulse/lint"
)

func TestFromString(t *testing.T) {
	t.Parallel()

	t.Run("empty_document_uses_defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := config.FromString("")
		require.NoError(t, err)
		require.Equal(t, config.Default(), *cfg)

		cat, err := cfg.Catalog()
		require.NoError(t, err)
		require.Len(t, cat.Tracks(), 3)
	})

	t.Run("overrides_keep_other_defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := config.FromString(`
session_file: /tmp/s.json
export_prefix: Batch7
autosave:
  debounce: 250ms
polish:
  model: other-model
  max_attempts: 5
lint:
  min_wow_words: 20
tracks:
  - id: 7
    artist: Someone
    title: Something
    sheet_name: Sheet A
    spotify_url: https://open.spotify.com/track/6N4ioa3XSbvjmwdVEERl8F
`)
		require.NoError(t, err)
		require.Equal(t, "/tmp/s.json", cfg.SessionFile)
		require.Equal(t, "Batch7", cfg.ExportPrefix)
		require.Equal(t, 250*time.Millisecond, cfg.AutosaveOptions().Debounce)
		require.Equal(t, config.Default().Autosave.MaxRetries, cfg.Autosave.MaxRetries)
		require.Equal(t, 20, cfg.Lint.MinWowWords)
		require.Equal(t, lint.DefaultRules().MaxTimelineEntries, cfg.Lint.MaxTimelineEntries)

		pc := cfg.PolishConfig("key")
		require.Equal(t, "other-model", pc.Model)
		require.Equal(t, 5, pc.MaxAttempts)
		require.Equal(t, "key", pc.APIKey)
		require.Equal(t, config.Default().Polish.Endpoint, pc.Endpoint)

		cat, err := cfg.Catalog()
		require.NoError(t, err)
		track, ok := cat.ByID(7)
		require.True(t, ok)
		require.Equal(t, "6N4ioa3XSbvjmwdVEERl8F", track.SpotifyID)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		for name, doc := range map[string]string{
			"empty_tracks":       "tracks: []",
			"duplicate_sheet":    "tracks: [{id: 1, sheet_name: A}, {id: 2, sheet_name: A}]",
			"bad_pattern":        "lint: {patterns: [{name: x, expr: '(', severity: warning, scope: all, message: m}]}",
			"bad_layout":         "export_layout: {annotator_cell: '??'}",
			"too_many_attempts":  "polish: {max_attempts: 11}",
			"empty_prefix":       "export_prefix: ''",
			"not_yaml":           "session_file: [",
			"negative_debounce":  "autosave: {debounce: -1s}",
			"zero_polish_tokens": "polish: {max_tokens: 0}",
		} {
			_, err := config.FromString(doc)
			require.Error(t, err, name)
		}
	})
}

func TestFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("export_dir: out\n"), 0o600))

	cfg, err := config.FromFile(path)
	require.NoError(t, err)
	require.Equal(t, "out", cfg.ExportDir)

	_, err = config.FromFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
