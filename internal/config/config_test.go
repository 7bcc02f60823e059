package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/ranking"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "interim", cfg.Scoring)
	assert.Equal(t, "all", cfg.HiddenPolicy)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "cds", cfg.Redis.Prefix)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.TeamViews)
}

func TestParse(t *testing.T) {
	cfg, err := Parse("cds.cue", []byte(`
contest_id: "wf2026"
feed:       "events.ndjson"
log_level:  "debug"
scoring:    "official"
team_views: ["t1", "t2"]
redis: addr: "localhost:6379"
`))
	require.NoError(t, err)
	assert.Equal(t, "wf2026", cfg.ContestID)
	assert.Equal(t, "events.ndjson", cfg.Feed)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, []string{"t1", "t2"}, cfg.TeamViews)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "cds", cfg.Redis.Prefix)

	c := contest.New(cfg.ContestOptions()...)
	assert.Equal(t, ranking.Official, c.Scoring())
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad enum":      `log_level: "loud"`,
		"unknown field": `colour: "blue"`,
		"wrong type":    `team_views: "t1"`,
		"empty prefix":  `redis: prefix: ""`,
		"syntax":        `log_level: `,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("cds.cue", []byte(src))
			var ce *ConfigError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, "cds.cue", ce.Path)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cds.cue")
	require.NoError(t, os.WriteFile(path, []byte(`listen: ":9999"`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Listen)

	_, err = Load(filepath.Join(t.TempDir(), "missing.cue"))
	assert.Error(t, err)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvJournal, "/tmp/j.db")
	t.Setenv(EnvRedisAddr, "redis:6379")
	t.Setenv(EnvListen, ":7000")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, slog.LevelWarn, cfg.Level())
	assert.Equal(t, "/tmp/j.db", cfg.Journal)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, ":7000", cfg.Listen)

	t.Setenv(EnvLogLevel, "chatty")
	assert.Error(t, Default().ApplyEnv())
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CDS_TEST_LOADENV=from-file\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("CDS_TEST_LOADENV") })

	require.NoError(t, LoadEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("CDS_TEST_LOADENV"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.LogFormat = "json"
	cfg.NewLogger(&buf).Info("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	cfg.LogFormat = "text"
	cfg.NewLogger(&buf).Debug("hidden")
	assert.Empty(t, buf.String())
}
