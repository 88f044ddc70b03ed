package report

import (
	"context"
	"fmt"

	"github.com/russellb/gerrymander/pkg/models/review"
)

// ToDoListReport lists open changes awaiting review attention. The
// variants differ only in the reviewer query terms and the row filter they
// are configured with.
type ToDoListReport struct {
	*TableReport[*review.Change]
	projects  []string
	reviewers []string
	filter    func(*review.Change) bool
}

func newToDoList(env *Env, client Querier, projects, reviewers []string, filter func(*review.Change) bool) (*ToDoListReport, error) {
	base, err := NewTableReport(env, client, ChangeColumns(), "createdOn", false)
	if err != nil {
		return nil, err
	}
	return &ToDoListReport{
		TableReport: base,
		projects:    projects,
		reviewers:   reviewers,
		filter:      filter,
	}, nil
}

// NewToDoListMine lists changes where username reviewed an older revision
// and still owes feedback on the current one.
func NewToDoListMine(env *Env, client Querier, username string, projects []string) (*ToDoListReport, error) {
	return newToDoList(env, client, projects, []string{username},
		func(change *review.Change) bool {
			return !change.HasCurrentReviewers([]string{username})
		})
}

// NewToDoListOthers lists changes username has never reviewed but at least
// one other non-bot user has.
func NewToDoListOthers(env *Env, client Querier, username string, bots, projects []string) (*ToDoListReport, error) {
	// The query excludes changes username reviewed in any revision; the
	// filter drops changes with only bot reviews or none at all.
	return newToDoList(env, client, projects, []string{"!", username},
		func(change *review.Change) bool {
			return change.HasAnyOtherReviewers(bots)
		})
}

// NewToDoListAnyones lists changes reviewed by some non-bot user where
// username is not a current-revision reviewer.
func NewToDoListAnyones(env *Env, client Querier, username string, bots, projects []string) (*ToDoListReport, error) {
	return newToDoList(env, client, projects, nil,
		func(change *review.Change) bool {
			if change.HasCurrentReviewers([]string{username}) {
				return false
			}
			return change.HasAnyOtherReviewers(bots)
		})
}

// NewToDoListNoones lists changes no non-bot user has ever reviewed.
func NewToDoListNoones(env *Env, client Querier, bots, projects []string) (*ToDoListReport, error) {
	return newToDoList(env, client, projects, nil,
		func(change *review.Change) bool {
			return !change.HasAnyOtherReviewers(bots)
		})
}

// Generate runs the open-change query and assembles the to-do table.
func (r *ToDoListReport) Generate(ctx context.Context) (Output, error) {
	spec := review.QuerySpec{
		Terms: map[string][]string{
			"project":  r.projects,
			"status":   {review.StatusOpen},
			"reviewer": r.reviewers,
		},
		Patches:   review.PatchesAll,
		Approvals: true,
	}

	table := r.NewTable("Changes To Do List")
	err := r.client.Query(ctx, spec, func(change *review.Change) error {
		if r.filter == nil || r.filter(change) {
			table.AddRow(change)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("todo query failed: %w", err)
	}
	return table, nil
}
