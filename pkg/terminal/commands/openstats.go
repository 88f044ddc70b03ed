package commands

import (
	"github.com/spf13/cobra"

	"github.com/russellb/gerrymander/pkg/report"
)

type OpenStatsCmd struct {
	deps *Deps

	projects []string
	branch   string
	days     int
	format   string
}

// NewOpenStatsCmd summarizes wait times of open reviews.
func NewOpenStatsCmd(deps *Deps) *cobra.Command {
	oc := &OpenStatsCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "openreviewstats",
		Short: "Statistics on how long open changes have been waiting for review",
		RunE:  oc.run,
	}

	cmd.Flags().StringSliceVarP(&oc.projects, "project", "p", nil, "Project to query (repeatable)")
	cmd.Flags().StringVar(&oc.branch, "branch", "master", "Branch to query")
	cmd.Flags().IntVar(&oc.days, "days", 7, "Stale threshold in days")
	cmd.Flags().StringVar(&oc.format, "format", "text", "Output format: text, xml or json")

	return cmd
}

func (oc *OpenStatsCmd) run(cmd *cobra.Command, args []string) error {
	mode, err := report.ParseDisplayMode(oc.format)
	if err != nil {
		return err
	}

	rep, err := report.NewOpenReviewStats(oc.deps.Env, oc.deps.Client, report.OpenReviewStatsOptions{
		Projects: oc.deps.projects(oc.projects),
		Branch:   oc.branch,
		Days:     oc.days,
	})
	if err != nil {
		return err
	}

	return report.Display(cmd.Context(), rep, mode, oc.deps.Out)
}
