package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/cds/internal/config"
	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/feed"
	"github.com/roach88/cds/internal/journal"
	"github.com/roach88/cds/internal/model"
	"github.com/roach88/cds/internal/publish"
	"github.com/roach88/cds/internal/server"
	"github.com/roach88/cds/internal/views"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen string
	Teams  []string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve [feed]",
		Short: "Ingest a feed and serve role views over HTTP",
		Long: `Ingest an event feed in the background and serve the role projections
over a read-only HTTP API until interrupted.

When a journal is configured every accepted event is recorded to it. When
redis.addr is configured the public scoreboard is published to Redis after
every ranking change.

Examples:
  cds serve events.ndjson
  cds serve events.ndjson --listen :9090 --team 17 --team 42
  tail -f events.ndjson | cds serve - --config cds.cue`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runServe(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (default from config)")
	cmd.Flags().StringSliceVar(&opts.Teams, "team", nil, "team ids to build team views for")

	return cmd
}

func runServe(opts *ServeOptions, path string, cmd *cobra.Command) error {
	cfg, logger, err := opts.load(cmd)
	if err != nil {
		return err
	}
	if path == "" {
		path = cfg.Feed
	}
	listen := opts.Listen
	if listen == "" {
		listen = cfg.Listen
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	full := newContest(cfg, logger)

	if cfg.Journal != "" {
		closeJournal, err := attachJournal(ctx, full, cfg, logger)
		if err != nil {
			return err
		}
		defer closeJournal()
	}

	teams := append(append([]string(nil), cfg.TeamViews...), opts.Teams...)
	router := views.New(full,
		views.WithLogger(logger),
		views.WithTeams(teams...),
		views.WithTransitionHandler(func(t views.Transition, _ model.State) {
			if t == views.EndOfUpdates {
				logger.Info("contest data complete", "objects", len(full.Objects()))
			}
		}),
	)
	defer router.Close()

	if cfg.Redis.Addr != "" {
		public, err := router.Contest(views.RolePublic, "")
		if err != nil {
			return WrapExitError(ExitCommandError, "no public view", err)
		}
		closePublisher, err := attachPublisher(ctx, public, cfg, logger)
		if err != nil {
			return err
		}
		defer closePublisher()
	}

	if path != "" {
		if err := startIngest(ctx, cmd, path, full, logger); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s. Press Ctrl-C to stop.\n", listen)
	srv := server.New(router, server.WithLogger(logger))
	if err := srv.ListenAndServe(ctx, listen); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	return nil
}

// attachJournal records every change of c into a new journal session.
func attachJournal(ctx context.Context, c *contest.Contest, cfg *config.Config, logger *slog.Logger) (func(), error) {
	j, err := journal.Open(cfg.Journal)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	rec, err := journal.NewRecorder(ctx, j, nil, cfg.ContestID, logger)
	if err != nil {
		j.Close()
		return nil, WrapExitError(ExitCommandError, "failed to start journal session", err)
	}
	sub := c.AddListener(rec)
	return func() {
		c.RemoveListener(sub)
		logger.Info("journal closed", "session", rec.Session(), "last_seq", rec.LastSeq())
		if err := j.Close(); err != nil {
			logger.Error("error closing journal", "error", err)
		}
	}, nil
}

// attachPublisher mirrors the scoreboard of c into Redis.
func attachPublisher(ctx context.Context, c *contest.Contest, cfg *config.Config, logger *slog.Logger) (func(), error) {
	rdb, err := publish.NewClient(ctx, cfg.Redis.Addr)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to connect to redis", err)
	}
	pub := publish.New(rdb, c,
		publish.WithPrefix(cfg.Redis.Prefix),
		publish.WithLogger(logger),
	)
	if err := pub.Publish(ctx); err != nil {
		logger.Warn("initial publish failed", "error", err)
	}
	pub.Attach(ctx)
	return func() {
		pub.Detach()
		if err := rdb.Close(); err != nil {
			logger.Error("error closing redis client", "error", err)
		}
	}, nil
}

// startIngest feeds path into c on background goroutines. The ingester
// stops at end of input or when ctx is done.
func startIngest(ctx context.Context, cmd *cobra.Command, path string, c *contest.Contest, logger *slog.Logger) error {
	r, err := openFeed(cmd, path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read feed", err)
	}

	in := feed.NewIngester(c, feed.WithLogger(logger))
	go func() {
		if err := in.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("ingester stopped", "error", err)
		}
	}()
	go func() {
		defer r.Close()
		defer in.Close()
		n, err := in.ReadFrom(r)
		if err != nil {
			logger.Error("feed read failed", "error", err, "events", n)
			return
		}
		stats := in.Stats()
		logger.Info("feed read", "path", path, "events", n, "skipped", stats.Skipped)
	}()
	return nil
}
