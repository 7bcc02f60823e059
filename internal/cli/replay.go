package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/cds/internal/config"
	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/journal"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Journal string // SQLite journal; defaults to the configured one
	Session string // journal session to replay; defaults to the latest
}

// ReplayRun is the outcome of one load of the contest.
type ReplayRun struct {
	Source  string `json:"source"` // "feed" or "journal"
	Applied int    `json:"applied"`
	Hash    string `json:"hash"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Session       string      `json:"session,omitempty"`
	Runs          []ReplayRun `json:"runs"`
	Deterministic bool        `json:"deterministic"`
}

func (r ReplayResult) String() string {
	s := ""
	for i, run := range r.Runs {
		s += fmt.Sprintf("run %d (%s): %d applied, scoreboard %s\n", i+1, run.Source, run.Applied, run.Hash)
	}
	if r.Deterministic {
		return s + "Replay is deterministic."
	}
	return s + "Replay is NOT deterministic."
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [feed]",
		Short: "Rebuild the contest twice and verify determinism",
		Long: `Rebuild a contest from the same events twice and compare the canonical
scoreboard hashes.

With only a feed, the feed is loaded into two fresh contests. With a feed
and --journal, the first load is recorded into a new journal session that
is then replayed into a fresh contest. With only --journal, the selected
session is replayed twice.

Exit codes:
  0 - Both runs produced the same scoreboard
  1 - The scoreboards differ
  2 - Command error (feed or journal not found, etc.)

Examples:
  cds replay events.ndjson
  cds replay events.ndjson --journal ./cds.db
  cds replay --journal ./cds.db --session 0190...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runReplay(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal")
	cmd.Flags().StringVar(&opts.Session, "session", "", "journal session to replay (default latest)")

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	cfg, logger, err := opts.load(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	journalPath := opts.Journal
	if journalPath == "" {
		journalPath = cfg.Journal
	}
	if path == "" && journalPath == "" {
		return NewExitError(ExitCommandError, "replay needs a feed, a journal, or both")
	}
	if path == "-" && journalPath == "" {
		return NewExitError(ExitCommandError, "standard input can only be replayed through a journal")
	}

	var result ReplayResult
	if journalPath == "" {
		result, err = replayFeed(ctx, cmd, path, cfg, logger)
	} else {
		result, err = replayJournal(ctx, cmd, path, journalPath, opts.Session, cfg, logger)
	}
	if err != nil {
		return err
	}

	if err := opts.formatter(cmd).Success(result); err != nil {
		return err
	}
	if !result.Deterministic {
		return NewExitError(ExitFailure, "replay is not deterministic")
	}
	return nil
}

// replayFeed loads the feed into two fresh contests.
func replayFeed(ctx context.Context, cmd *cobra.Command, path string, cfg *config.Config, logger *slog.Logger) (ReplayResult, error) {
	var result ReplayResult
	for range 2 {
		c := newContest(cfg, logger)
		stats, err := loadFeed(ctx, cmd, path, c, logger)
		if err != nil {
			return result, err
		}
		run, err := replayRun("feed", int(stats.Applied), c)
		if err != nil {
			return result, err
		}
		result.Runs = append(result.Runs, run)
	}
	result.Deterministic = sameHash(result.Runs)
	return result, nil
}

// replayJournal records the feed, if any, into a new session and replays
// the session into fresh contests.
func replayJournal(ctx context.Context, cmd *cobra.Command, path, journalPath, session string, cfg *config.Config, logger *slog.Logger) (ReplayResult, error) {
	var result ReplayResult

	j, err := journal.Open(journalPath)
	if err != nil {
		return result, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			logger.Error("error closing journal", "error", closeErr)
		}
	}()

	if path != "" {
		c := newContest(cfg, logger)
		rec, err := journal.NewRecorder(ctx, j, nil, cfg.ContestID, logger)
		if err != nil {
			return result, WrapExitError(ExitCommandError, "failed to start journal session", err)
		}
		c.AddListener(rec)
		stats, err := loadFeed(ctx, cmd, path, c, logger)
		if err != nil {
			return result, err
		}
		run, err := replayRun("feed", int(stats.Applied), c)
		if err != nil {
			return result, err
		}
		result.Runs = append(result.Runs, run)
		session = rec.Session()
	}

	if session == "" {
		sessions, err := j.Sessions(ctx)
		if err != nil {
			return result, WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		if len(sessions) == 0 {
			return result, NewExitError(ExitCommandError, "journal has no sessions")
		}
		session = sessions[len(sessions)-1].ID
	}
	result.Session = session

	for len(result.Runs) < 2 {
		c := newContest(cfg, logger)
		applied, err := j.Replay(ctx, c, session)
		if err != nil {
			return result, WrapExitError(ExitCommandError, "failed to replay journal", err)
		}
		run, err := replayRun("journal", applied, c)
		if err != nil {
			return result, err
		}
		result.Runs = append(result.Runs, run)
	}
	result.Deterministic = sameHash(result.Runs)
	return result, nil
}

func replayRun(source string, applied int, c *contest.Contest) (ReplayRun, error) {
	hash, err := c.Scoreboard().Hash()
	if err != nil {
		return ReplayRun{}, fmt.Errorf("hash scoreboard: %w", err)
	}
	return ReplayRun{Source: source, Applied: applied, Hash: hash}, nil
}

func sameHash(runs []ReplayRun) bool {
	for _, r := range runs[1:] {
		if r.Hash != runs[0].Hash {
			return false
		}
	}
	return true
}
