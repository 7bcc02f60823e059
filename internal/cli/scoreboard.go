package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/cds/internal/views"
)

// ScoreboardOptions holds flags for the scoreboard command.
type ScoreboardOptions struct {
	*RootOptions
	Role string
	Team string
}

// NewScoreboardCommand creates the scoreboard command.
func NewScoreboardCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScoreboardOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scoreboard <feed>",
		Short: "Print the standings of a feed",
		Long: `Load an event feed and print the scoreboard as one role sees it.

Roles: blue (everything), trusted, balloon, public and team. The team
role needs --team.

Examples:
  cds scoreboard events.ndjson
  cds scoreboard events.ndjson --role public
  cds scoreboard events.ndjson --role team --team 42 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScoreboard(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Role, "role", "blue", "projection to print (blue|trusted|balloon|public|team)")
	cmd.Flags().StringVar(&opts.Team, "team", "", "team id for the team role")

	return cmd
}

func runScoreboard(opts *ScoreboardOptions, path string, cmd *cobra.Command) error {
	cfg, logger, err := opts.load(cmd)
	if err != nil {
		return err
	}
	role, err := views.ParseRole(opts.Role)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid role", err)
	}

	full := newContest(cfg, logger)
	var teams []string
	if opts.Team != "" {
		teams = append(teams, opts.Team)
	}
	router := views.New(full, views.WithLogger(logger), views.WithTeams(teams...))
	defer router.Close()

	stats, err := loadFeed(commandContext(cmd), cmd, path, full, logger)
	if err != nil {
		return err
	}

	view, err := router.Contest(role, opts.Team)
	if err != nil {
		return WrapExitError(ExitCommandError, "no such view", err)
	}
	sb := view.Scoreboard()

	f := opts.formatter(cmd)
	f.VerboseLog("applied %d events (%d unchanged, %d skipped)", stats.Applied, stats.Noops, stats.Skipped)
	if f.JSON() {
		return f.Success(sb)
	}
	return writeScoreboard(cmd.OutOrStdout(), sb)
}
