package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/russellb/gerrymander/pkg/models/review"
)

// Vote bucket column keys, named after the flag values they count.
const (
	voteMinus2 = "flag-m2"
	voteMinus1 = "flag-m1"
	votePlus1  = "flag-p1"
	votePlus2  = "flag-p2"
)

// reviewerStats is one row of the review-statistics table: a reviewer's
// vote buckets over the reporting window.
type reviewerStats struct {
	User  string
	Team  string
	Total int
	Votes map[string]int
}

func reviewerColumns() []*Column[*reviewerStats] {
	voteValue := func(env *Env, key string, row *reviewerStats) any {
		return row.Votes[key]
	}
	ratioValue := func(env *Env, key string, row *reviewerStats) any {
		positive := row.Votes[votePlus2] + row.Votes[votePlus1]
		negative := row.Votes[voteMinus2] + row.Votes[voteMinus1]
		return reviewRatio(positive, negative)
	}
	return []*Column[*reviewerStats]{
		{Key: "user", Label: "User", Value: func(env *Env, key string, row *reviewerStats) any { return row.User }},
		{Key: "team", Label: "Team", Value: func(env *Env, key string, row *reviewerStats) any { return row.Team }},
		{Key: "reviews", Label: "Reviews", Value: func(env *Env, key string, row *reviewerStats) any { return row.Total }, Align: AlignRight},
		{Key: voteMinus2, Label: "-2", Value: voteValue, Align: AlignRight},
		{Key: voteMinus1, Label: "-1", Value: voteValue, Align: AlignRight},
		{Key: votePlus1, Label: "+1", Value: voteValue, Align: AlignRight},
		{Key: votePlus2, Label: "+2", Value: voteValue, Align: AlignRight},
		{Key: "ratio", Label: "+/-", Value: ratioValue, Format: "%.0f%%", Align: AlignRight},
	}
}

// reviewSummary is the single row of the totals list.
type reviewSummary struct {
	Reviews   int
	Reviewers int
}

func reviewSummaryColumns() []*Column[*reviewSummary] {
	return []*Column[*reviewSummary]{
		{Key: "nreviews", Label: "Total reviews", Format: "%d",
			Value: func(env *Env, key string, row *reviewSummary) any { return row.Reviews }},
		{Key: "nreviewers", Label: "Total reviewers", Format: "%d",
			Value: func(env *Env, key string, row *reviewSummary) any { return row.Reviewers }},
	}
}

// PatchReviewStatsOptions configures the vote-statistics report.
type PatchReviewStatsOptions struct {
	Projects   []string
	MaxAgeDays int                 // approvals older than this are ignored
	Teams      map[string][]string // team name -> member usernames
	Bots       []string            // reviewers excluded from the tally
	Now        func() time.Time    // defaults to time.Now
}

// PatchReviewStatsReport tallies review votes per reviewer across the
// configured projects.
type PatchReviewStatsReport struct {
	*TableReport[*reviewerStats]
	opts PatchReviewStatsOptions
}

// NewPatchReviewStats builds the vote-statistics report, sorted by review
// count descending.
func NewPatchReviewStats(env *Env, client Querier, opts PatchReviewStatsOptions) (*PatchReviewStatsReport, error) {
	base, err := NewTableReport(env, client, reviewerColumns(), "reviews", true)
	if err != nil {
		return nil, err
	}
	if opts.MaxAgeDays == 0 {
		opts.MaxAgeDays = 30
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &PatchReviewStatsReport{TableReport: base, opts: opts}, nil
}

func (r *PatchReviewStatsReport) isBot(user string) bool {
	for _, bot := range r.opts.Bots {
		if strings.EqualFold(user, bot) {
			return true
		}
	}
	return false
}

func (r *PatchReviewStatsReport) team(user string) string {
	team := ""
	for name, members := range r.opts.Teams {
		for _, member := range members {
			if member == user {
				team = name
			}
		}
	}
	return team
}

// Generate queries each project individually (better cache hit rate when
// the report is re-run for different project combinations) and tallies the
// votes cast within the age window.
func (r *PatchReviewStatsReport) Generate(ctx context.Context) (Output, error) {
	cutoff := r.opts.Now().Unix() - int64(r.opts.MaxAgeDays)*24*60*60

	var reviews []*review.Approval
	for _, project := range r.opts.Projects {
		spec := review.QuerySpec{
			Terms:     map[string][]string{"project": {project}},
			Patches:   review.PatchesAll,
			Approvals: true,
		}
		err := r.client.Query(ctx, spec, func(change *review.Change) error {
			for _, patch := range change.Patches {
				for _, approval := range patch.Approvals {
					if approval.NewerThan(cutoff) {
						reviews = append(reviews, approval)
					}
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("review stats query failed for project %q: %w", project, err)
		}
	}

	buckets := map[int]string{-2: voteMinus2, -1: voteMinus1, 1: votePlus1, 2: votePlus2}
	reviewers := map[string]*reviewerStats{}
	var order []string
	for _, rv := range reviews {
		if !rv.IsReview() || rv.User == nil {
			continue
		}
		reviewer := rv.User.Username
		if reviewer == "" {
			reviewer = rv.User.Name
			if reviewer == "" {
				continue
			}
		}
		if r.isBot(reviewer) {
			continue
		}

		stats := reviewers[reviewer]
		if stats == nil {
			stats = &reviewerStats{
				User:  reviewer,
				Team:  r.team(reviewer),
				Votes: map[string]int{voteMinus2: 0, voteMinus1: 0, votePlus1: 0, votePlus2: 0},
			}
			reviewers[reviewer] = stats
			order = append(order, reviewer)
		}
		stats.Total++
		if bucket, ok := buckets[rv.Value]; ok {
			stats.Votes[bucket]++
		}
	}

	compound := NewCompound()
	table := r.NewTable("Review statistics")
	compound.Add(table)
	for _, reviewer := range order {
		table.AddRow(reviewers[reviewer])
	}

	summary := NewList(r.Env(), reviewSummaryColumns(), "Review summary")
	summary.SetRow(&reviewSummary{Reviews: len(reviews), Reviewers: len(reviewers)})
	compound.Add(summary)

	return compound, nil
}
