package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cds/internal/feed"
)

// PurgeOptions holds flags for the purge command.
type PurgeOptions struct {
	*RootOptions
	Output      string
	Hidden      bool
	OutOfWindow bool
	Unjudged    bool
}

// PurgeResult reports what a purge removed.
type PurgeResult struct {
	Hidden      int      `json:"hidden"`
	OutOfWindow int      `json:"out_of_window"`
	Unjudged    int      `json:"unjudged"`
	Remaining   int      `json:"remaining"`
	Problems    []string `json:"problems,omitempty"`
}

func (r PurgeResult) String() string {
	return fmt.Sprintf("removed %d hidden, %d out of window, %d unjudged; %d objects remain",
		r.Hidden, r.OutOfWindow, r.Unjudged, r.Remaining)
}

// NewPurgeCommand creates the purge command.
func NewPurgeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PurgeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "purge <feed>",
		Short: "Remove objects from a feed and write the result",
		Long: `Load an event feed, remove the selected objects together with everything
that depends on them, and write the remaining objects as a new feed.

--hidden removes teams in hidden groups with their members, submissions
and clarifications. --out-of-window removes submissions outside the
contest time. --unjudged removes submissions without a final verdict.

Examples:
  cds purge events.ndjson --hidden -o public.ndjson
  cds purge events.ndjson --unjudged --out-of-window > clean.ndjson`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPurge(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "-", "output feed path (- for stdout)")
	cmd.Flags().BoolVar(&opts.Hidden, "hidden", false, "remove hidden teams")
	cmd.Flags().BoolVar(&opts.OutOfWindow, "out-of-window", false, "remove submissions outside contest time")
	cmd.Flags().BoolVar(&opts.Unjudged, "unjudged", false, "remove submissions without a verdict")

	return cmd
}

func runPurge(opts *PurgeOptions, path string, cmd *cobra.Command) error {
	if !opts.Hidden && !opts.OutOfWindow && !opts.Unjudged {
		return NewExitError(ExitCommandError, "nothing to purge: pass at least one of --hidden, --out-of-window, --unjudged")
	}
	cfg, logger, err := opts.load(cmd)
	if err != nil {
		return err
	}

	c := newContest(cfg, logger)
	if _, err := loadFeed(commandContext(cmd), cmd, path, c, logger); err != nil {
		return err
	}

	var result PurgeResult
	if opts.Hidden {
		result.Hidden = c.RemoveHiddenTeams()
	}
	if opts.OutOfWindow {
		result.OutOfWindow = c.RemoveSubmissionsOutsideContestTime()
	}
	if opts.Unjudged {
		result.Unjudged = c.RemoveUnjudgedSubmissions()
	}
	result.Problems = c.Validate()
	for _, p := range result.Problems {
		logger.Warn("purged feed is inconsistent", "problem", p)
	}

	objs := c.Objects()
	result.Remaining = len(objs)
	if err := writeFeed(cmd, opts.Output, func(w io.Writer) error {
		return feed.EncodeAll(w, objs)
	}); err != nil {
		return WrapExitError(ExitCommandError, "failed to write feed", err)
	}

	// The summary goes to stderr when the feed itself is on stdout.
	f := opts.formatter(cmd)
	if opts.Output == "-" {
		f.Writer = cmd.ErrOrStderr()
	}
	return f.Success(result)
}

func writeFeed(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
