package cli

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cds/internal/config"
)

const testFeed = "testdata/contest.ndjson"

// testRootOptions returns options with the default configuration already
// resolved, so commands run without reading the environment.
func testRootOptions(format string) *RootOptions {
	return &RootOptions{
		Format: format,
		cfg:    config.Default(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// execute runs cmd with args and returns stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "cds", cmd.Use)
	assert.Contains(t, cmd.Long, "contest event store")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"scoreboard", "replay", "purge", "test", "serve"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	assert.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, _, err := execute(t, NewRootCommand(), "--format", "yaml", "scoreboard", testFeed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootCommand_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cds.cue")
	require.NoError(t, os.WriteFile(path, []byte(`scoring: "fastest"`), 0644))

	_, _, err := execute(t, NewRootCommand(), "--config", path, "scoreboard", testFeed)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootCommand_ConfigAppliesToContest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cds.cue")
	require.NoError(t, os.WriteFile(path, []byte(`scoring: "official"`), 0644))

	out, _, err := execute(t, NewRootCommand(), "--config", path, "--format", "json", "scoreboard", testFeed)
	require.NoError(t, err)
	assert.Contains(t, out, `"scoring":"official"`)
}

func TestLoad_FlagOverridesLevel(t *testing.T) {
	opts := &RootOptions{Format: "text", LogLevel: "warn", Verbose: true}
	cmd := &cobra.Command{}
	cmd.SetErr(io.Discard)

	cfg, logger, err := opts.load(cmd)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.NotNil(t, logger)

	again, _, err := opts.load(cmd)
	require.NoError(t, err)
	assert.Same(t, cfg, again)
}
