package commands

import (
	"github.com/spf13/cobra"

	"github.com/russellb/gerrymander/pkg/report"
)

type ReviewStatsCmd struct {
	deps *Deps

	projects []string
	days     int
	format   string
}

// NewReviewStatsCmd tallies review votes per reviewer.
func NewReviewStatsCmd(deps *Deps) *cobra.Command {
	rc := &ReviewStatsCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "patchreviewstats",
		Short: "Statistics on review votes cast per reviewer",
		RunE:  rc.run,
	}

	cmd.Flags().StringSliceVarP(&rc.projects, "project", "p", nil, "Project to query (repeatable)")
	cmd.Flags().IntVar(&rc.days, "days", 30, "Ignore votes older than this many days")
	cmd.Flags().StringVar(&rc.format, "format", "text", "Output format: text, xml or json")

	return cmd
}

func (rc *ReviewStatsCmd) run(cmd *cobra.Command, args []string) error {
	mode, err := report.ParseDisplayMode(rc.format)
	if err != nil {
		return err
	}

	rep, err := report.NewPatchReviewStats(rc.deps.Env, rc.deps.Client, report.PatchReviewStatsOptions{
		Projects:   rc.deps.projects(rc.projects),
		MaxAgeDays: rc.days,
		Teams:      rc.deps.Config.Teams,
		Bots:       rc.deps.Config.Bots,
	})
	if err != nil {
		return err
	}

	return report.Display(cmd.Context(), rep, mode, rc.deps.Out)
}
