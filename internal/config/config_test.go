package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Research Office", "Example University")
	cfg.Matching.Threshold = 45
	cfg.Drafts.Autosave["claim"] = 250 * time.Millisecond

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Organization.Name, got.Organization.Name)
	assert.Equal(t, cfg.Organization.University, got.Organization.University)
	assert.InDelta(t, 45, got.Matching.Threshold, 0.001)
	assert.InDelta(t, cfg.Matching.FullName, got.Matching.FullName, 0.001)
	assert.Equal(t, cfg.Matching.NamePrefixLength, got.Matching.NamePrefixLength)
	assert.InDelta(t, cfg.Fees.ManagementRate, got.Fees.ManagementRate, 0.0001)
	assert.Equal(t, cfg.Drafts.Backend, got.Drafts.Backend)
	assert.Equal(t, cfg.Drafts.TTL, got.Drafts.TTL)
	assert.Equal(t, 500*time.Millisecond, got.AutosaveDelay("income"))
	assert.Equal(t, 250*time.Millisecond, got.AutosaveDelay("claim"))
	assert.Equal(t, cfg.Server.Addr, got.Server.Addr)
}

func TestDefaults(t *testing.T) {
	cfg := Default("Research Office", "Example University")

	assert.Equal(t, "Research Office", cfg.Organization.Name)
	assert.InDelta(t, 100, cfg.Matching.FullName, 0.001)
	assert.InDelta(t, 70, cfg.Matching.NamePrefix, 0.001)
	assert.Equal(t, 5, cfg.Matching.NamePrefixLength)
	assert.InDelta(t, 80, cfg.Matching.Manager, 0.001)
	assert.InDelta(t, 90, cfg.Matching.Partner, 0.001)
	assert.InDelta(t, 15, cfg.Matching.RecencyMax, 0.001)
	assert.Equal(t, 30, cfg.Matching.RecencyWindowDays)
	assert.InDelta(t, 30, cfg.Matching.Threshold, 0.001)
	assert.InDelta(t, 0.05, cfg.Fees.ManagementRate, 0.0001)
	assert.Equal(t, BackendFile, cfg.Drafts.Backend)
	assert.Equal(t, 500*time.Millisecond, cfg.AutosaveDelay("income"))
	assert.Zero(t, cfg.AutosaveDelay("claim"))
	assert.Zero(t, cfg.AutosaveDelay("unknown"))
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("Research Office", "Example University")
	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Research Office")
	assert.Contains(t, contents, "full_name: 100")
	assert.Contains(t, contents, "threshold: 30")
	assert.Contains(t, contents, "backend: file")
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("matching:\n  threshold: 50\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 50, cfg.Matching.Threshold, 0.001)
	assert.InDelta(t, 100, cfg.Matching.FullName, 0.001)
	assert.Equal(t, BackendFile, cfg.Drafts.Backend)
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default("Research Office", "")))

	t.Setenv("FUNDOPS_MATCHING_THRESHOLD", "42.5")
	t.Setenv("FUNDOPS_MATCHING_RECENCY_WINDOW_DAYS", "60")
	t.Setenv("FUNDOPS_LOG_LEVEL", "debug")
	t.Setenv("FUNDOPS_DRAFTS_TTL", "1h")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 42.5, cfg.Matching.Threshold, 0.001)
	assert.Equal(t, 60, cfg.Matching.RecencyWindowDays)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, time.Hour, cfg.Drafts.TTL)
	assert.Equal(t, "Research Office", cfg.Organization.Name)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative weight", func(c *Config) { c.Matching.Manager = -1 }},
		{"zero window", func(c *Config) { c.Matching.RecencyWindowDays = 0 }},
		{"zero prefix", func(c *Config) { c.Matching.NamePrefixLength = 0 }},
		{"rate above one", func(c *Config) { c.Fees.ManagementRate = 1.5 }},
		{"unknown backend", func(c *Config) { c.Drafts.Backend = "sqlite" }},
		{"redis without addr", func(c *Config) { c.Drafts.Backend = BackendRedis }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"history without author", func(c *Config) { c.History.Enabled = true; c.History.AuthorName = "" }},
		{"history bad email", func(c *Config) { c.History.Enabled = true; c.History.AuthorEmail = "office" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("x", "y")
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_HistoryDisabledIgnoresAuthor(t *testing.T) {
	cfg := Default("x", "y")
	cfg.History.AuthorEmail = "office"
	assert.NoError(t, cfg.Validate())

	cfg.History.Enabled = true
	cfg.History.AuthorEmail = "office@example.edu.cn"
	assert.NoError(t, cfg.Validate())
}
