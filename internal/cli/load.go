package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cds/internal/config"
	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/feed"
)

// openFeed opens the event feed at path; "-" reads standard input.
func openFeed(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	return f, nil
}

// newContest builds an empty contest configured from cfg.
func newContest(cfg *config.Config, logger *slog.Logger) *contest.Contest {
	opts := append(cfg.ContestOptions(),
		contest.WithName("blue"),
		contest.WithLogger(logger),
	)
	return contest.New(opts...)
}

// loadFeed reads the feed at path into c.
func loadFeed(ctx context.Context, cmd *cobra.Command, path string, c *contest.Contest, logger *slog.Logger) (feed.Stats, error) {
	r, err := openFeed(cmd, path)
	if err != nil {
		return feed.Stats{}, WrapExitError(ExitCommandError, "failed to read feed", err)
	}
	defer r.Close()

	stats, err := feed.Load(ctx, r, c, feed.WithLogger(logger))
	if err != nil {
		return stats, WrapExitError(ExitCommandError, "failed to load feed", err)
	}
	return stats, nil
}
