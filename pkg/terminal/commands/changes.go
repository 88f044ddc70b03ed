package commands

import (
	"github.com/spf13/cobra"

	"github.com/russellb/gerrymander/pkg/report"
)

type ChangesCmd struct {
	deps *Deps

	projects  []string
	owners    []string
	status    []string
	branches  []string
	reviewers []string
	messages  []string
	files     []string
	rawquery  string
	sortKey   string
	reverse   bool
	limit     int
	format    string
}

// NewChangesCmd lists changes matching the given filters.
func NewChangesCmd(deps *Deps) *cobra.Command {
	cc := &ChangesCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "changes",
		Short: "List changes matching the given filters",
		RunE:  cc.run,
	}

	cmd.Flags().StringSliceVarP(&cc.projects, "project", "p", nil, "Project to query (repeatable)")
	cmd.Flags().StringSliceVar(&cc.owners, "owner", nil, "Change owner (repeatable)")
	cmd.Flags().StringSliceVar(&cc.status, "status", nil, "Change status (repeatable)")
	cmd.Flags().StringSliceVar(&cc.branches, "branch", nil, "Branch (repeatable)")
	cmd.Flags().StringSliceVar(&cc.reviewers, "reviewer", nil, "Reviewer (repeatable)")
	cmd.Flags().StringSliceVar(&cc.messages, "message", nil, "Commit message term (repeatable)")
	cmd.Flags().StringSliceVar(&cc.files, "file", nil, "File path regular expression (repeatable)")
	cmd.Flags().StringVar(&cc.rawquery, "rawquery", "", "Extra raw query term")
	cmd.Flags().StringVar(&cc.sortKey, "sort", "", "Column to sort by")
	cmd.Flags().BoolVar(&cc.reverse, "reverse", false, "Reverse the sort order")
	cmd.Flags().IntVar(&cc.limit, "limit", 0, "Max rows to display (0 = all)")
	cmd.Flags().StringVar(&cc.format, "format", "text", "Output format: text, xml or json")

	return cmd
}

func (cc *ChangesCmd) run(cmd *cobra.Command, args []string) error {
	mode, err := report.ParseDisplayMode(cc.format)
	if err != nil {
		return err
	}

	rep, err := report.NewChangesReport(cc.deps.Env, cc.deps.Client, report.ChangesOptions{
		Projects:  cc.deps.projects(cc.projects),
		Owners:    cc.owners,
		Status:    cc.status,
		Branches:  cc.branches,
		Reviewers: cc.reviewers,
		Messages:  cc.messages,
		Files:     cc.files,
		RawQuery:  cc.rawquery,
	})
	if err != nil {
		return err
	}
	if cc.sortKey != "" {
		if err := rep.SetSortColumn(cc.sortKey, cc.reverse); err != nil {
			return err
		}
	}
	if cc.limit > 0 {
		rep.SetDataLimit(cc.limit)
	}

	return report.Display(cmd.Context(), rep, mode, cc.deps.Out)
}
