package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/russellb/gerrymander/pkg/report"
)

type ToDoCmd struct {
	deps *Deps

	projects []string
	username string
	limit    int
	format   string
}

// NewToDoCmd groups the to-do list report variants.
func NewToDoCmd(deps *Deps) *cobra.Command {
	tc := &ToDoCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "List open changes awaiting review attention",
	}

	cmd.PersistentFlags().StringSliceVarP(&tc.projects, "project", "p", nil, "Project to query (repeatable)")
	cmd.PersistentFlags().StringVarP(&tc.username, "user", "u", "", "Username the list is computed for")
	cmd.PersistentFlags().IntVar(&tc.limit, "limit", 0, "Max rows to display (0 = all)")
	cmd.PersistentFlags().StringVar(&tc.format, "format", "text", "Output format: text, xml or json")

	mine := &cobra.Command{
		Use:   "mine",
		Short: "Changes you reviewed before but whose current revision awaits your vote",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tc.display(cmd, func() (*report.ToDoListReport, error) {
				return report.NewToDoListMine(tc.deps.Env, tc.deps.Client, tc.username, tc.deps.projects(tc.projects))
			})
		},
	}
	others := &cobra.Command{
		Use:   "others",
		Short: "Changes you never reviewed but some other non-bot user has",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tc.display(cmd, func() (*report.ToDoListReport, error) {
				return report.NewToDoListOthers(tc.deps.Env, tc.deps.Client, tc.username,
					tc.deps.Config.Bots, tc.deps.projects(tc.projects))
			})
		},
	}
	anyones := &cobra.Command{
		Use:   "anyones",
		Short: "Changes some non-bot user reviewed where you are not a current reviewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tc.display(cmd, func() (*report.ToDoListReport, error) {
				return report.NewToDoListAnyones(tc.deps.Env, tc.deps.Client, tc.username,
					tc.deps.Config.Bots, tc.deps.projects(tc.projects))
			})
		},
	}
	noones := &cobra.Command{
		Use:   "noones",
		Short: "Changes no non-bot user has ever reviewed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tc.display(cmd, func() (*report.ToDoListReport, error) {
				return report.NewToDoListNoones(tc.deps.Env, tc.deps.Client,
					tc.deps.Config.Bots, tc.deps.projects(tc.projects))
			})
		},
	}

	for _, sub := range []*cobra.Command{mine, others, anyones} {
		sub.PreRunE = tc.requireUser
	}
	cmd.AddCommand(mine, others, anyones, noones)

	return cmd
}

func (tc *ToDoCmd) requireUser(cmd *cobra.Command, args []string) error {
	if tc.username == "" {
		return fmt.Errorf("%s requires --user", cmd.Name())
	}
	return nil
}

func (tc *ToDoCmd) display(cmd *cobra.Command, build func() (*report.ToDoListReport, error)) error {
	mode, err := report.ParseDisplayMode(tc.format)
	if err != nil {
		return err
	}
	rep, err := build()
	if err != nil {
		return err
	}
	if tc.limit > 0 {
		rep.SetDataLimit(tc.limit)
	}
	return report.Display(cmd.Context(), rep, mode, tc.deps.Out)
}
