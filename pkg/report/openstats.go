package report

import (
	"context"
	"fmt"
	"time"

	"github.com/russellb/gerrymander/pkg/format"
	"github.com/russellb/gerrymander/pkg/models/review"
)

// openSummary is the single row of the open-review totals list.
type openSummary struct {
	WaitSubmitter int
	WaitReviewer  int
}

func openSummaryColumns() []*Column[*openSummary] {
	return []*Column[*openSummary]{
		{Key: "nreviews", Label: "Total open reviews", Format: "%d",
			Value: func(env *Env, key string, row *openSummary) any { return row.WaitSubmitter + row.WaitReviewer }},
		{Key: "waitsubmitter", Label: "Waiting on submitter", Format: "%d",
			Value: func(env *Env, key string, row *openSummary) any { return row.WaitSubmitter }},
		{Key: "waitreviewer", Label: "Waiting on reviewer", Format: "%d",
			Value: func(env *Env, key string, row *openSummary) any { return row.WaitReviewer }},
	}
}

// ageSummary is the single row of a wait-time list: average and median age
// in seconds, plus an optional stale count.
type ageSummary struct {
	Average int64
	Median  int64
	Stale   int
}

func ageSummaryColumns(staleDays int) []*Column[*ageSummary] {
	cols := []*Column[*ageSummary]{
		{Key: "average", Label: "Average wait time",
			Value: func(env *Env, key string, row *ageSummary) any { return format.Delta(row.Average) }},
		{Key: "median", Label: "Median wait time",
			Value: func(env *Env, key string, row *ageSummary) any { return format.Delta(row.Median) }},
	}
	if staleDays > 0 {
		cols = append(cols, &Column[*ageSummary]{
			Key: "stale", Label: fmt.Sprintf("Older than %d days", staleDays), Format: "%d",
			Value: func(env *Env, key string, row *ageSummary) any { return row.Stale },
		})
	}
	return cols
}

// OpenReviewStatsOptions configures the open-review wait-time report.
type OpenReviewStatsOptions struct {
	Projects []string
	Branch   string
	Days     int              // stale threshold for the current-revision list
	Now      func() time.Time // defaults to time.Now
}

// OpenReviewStatsReport summarizes how long open changes have been waiting
// on reviewers, bucketed by whether the submitter or the reviewers owe the
// next action.
type OpenReviewStatsReport struct {
	*TableReport[*review.Change]
	opts OpenReviewStatsOptions
}

// NewOpenReviewStats builds the open-review wait-time report.
func NewOpenReviewStats(env *Env, client Querier, opts OpenReviewStatsOptions) (*OpenReviewStatsReport, error) {
	base, err := NewTableReport(env, client, ChangeColumns(), "createdOn", false)
	if err != nil {
		return nil, err
	}
	if opts.Branch == "" {
		opts.Branch = "master"
	}
	if opts.Days == 0 {
		opts.Days = 7
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &OpenReviewStatsReport{TableReport: base, opts: opts}, nil
}

// ageList builds one of the wait-time summary lists.
func (r *OpenReviewStatsReport) ageList(title string, staleDays int, ids []string, ages map[string]int64) Output {
	list := NewList(r.Env(), ageSummaryColumns(staleDays), title)
	list.SetRow(&ageSummary{
		Average: averageAge(ids, ages),
		Median:  medianAge(ids, ages),
		Stale:   olderThan(ids, ages, staleDays),
	})
	return list
}

// waitTable builds a "Longest waiting" table: the base change columns plus
// an age column the table is reverse-sorted on at render time.
func (r *OpenReviewStatsReport) waitTable(title string, age func(*review.Change) int64, ids []string, changes map[string]*review.Change, ages map[string]int64) Output {
	table := r.NewTable(title)
	table.AddColumn(&Column[*review.Change]{
		Key:   "age",
		Label: "Age",
		Value: func(env *Env, key string, row *review.Change) any { return format.Delta(age(row)) },
		Sort:  func(env *Env, key string, row *review.Change) any { return age(row) },
	})
	table.SortKey = "age"
	table.Reverse = true
	for _, id := range longestWaiting(ids, ages) {
		table.AddRow(changes[id])
	}
	return table
}

// Generate queries each project's open changes on the configured branch
// and assembles the wait-time compound report.
func (r *OpenReviewStatsReport) Generate(ctx context.Context) (Output, error) {
	now := r.opts.Now().Unix()

	ageCurrent := map[string]int64{}
	ageFirst := map[string]int64{}
	ageNonNacked := map[string]int64{}
	changes := map[string]*review.Change{}
	var waitReviewer []string
	var waitSubmitter []string

	for _, project := range r.opts.Projects {
		spec := review.QuerySpec{
			Terms: map[string][]string{
				"project": {project},
				"status":  {review.StatusOpen},
				"branch":  {r.opts.Branch},
			},
			Patches:   review.PatchesAll,
			Approvals: true,
		}
		err := r.client.Query(ctx, spec, func(change *review.Change) error {
			if change.Status != "NEW" {
				return nil
			}
			changes[change.ID] = change

			if change.CurrentPatch().IsNacked() {
				waitSubmitter = append(waitSubmitter, change.ID)
			} else {
				waitReviewer = append(waitReviewer, change.ID)
			}

			ageCurrent[change.ID] = change.CurrentAge(now)
			ageFirst[change.ID] = change.FirstAge(now)
			ageNonNacked[change.ID] = change.ReviewerNotNackedAge(now)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("open review query failed for project %q: %w", project, err)
		}
	}

	compound := NewCompound()

	summary := NewList(r.Env(), openSummaryColumns(), "Review summary")
	summary.SetRow(&openSummary{WaitSubmitter: len(waitSubmitter), WaitReviewer: len(waitReviewer)})
	compound.Add(summary)

	compound.Add(r.ageList("Summary since current revision", r.opts.Days, waitReviewer, ageCurrent))
	compound.Add(r.ageList("Summary since first revision", 0, waitReviewer, ageFirst))
	compound.Add(r.ageList("Summary since last revision without -1/-2 from reviewer", 0, waitReviewer, ageNonNacked))

	compound.Add(r.waitTable("Longest waiting since current revision",
		func(c *review.Change) int64 { return c.CurrentAge(now) },
		waitReviewer, changes, ageCurrent))
	compound.Add(r.waitTable("Longest waiting since first revision",
		func(c *review.Change) int64 { return c.FirstAge(now) },
		waitReviewer, changes, ageFirst))
	compound.Add(r.waitTable("Longest waiting since last revision without -1/-2 from reviewer",
		func(c *review.Change) int64 { return c.ReviewerNotNackedAge(now) },
		waitReviewer, changes, ageNonNacked))

	return compound, nil
}
