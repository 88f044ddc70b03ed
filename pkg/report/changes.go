package report

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/russellb/gerrymander/pkg/format"
	"github.com/russellb/gerrymander/pkg/models/review"
)

func ownerValue(env *Env, key string, row *review.Change) any {
	if row.Owner == nil || row.Owner.Username == "" {
		return "<unknown>"
	}
	return row.Owner.Username
}

func dateValue(env *Env, key string, row *review.Change) any {
	if key == "lastUpdated" {
		return format.Date(row.LastUpdated)
	}
	return format.Date(row.CreatedOn)
}

func dateSortValue(env *Env, key string, row *review.Change) any {
	if key == "lastUpdated" {
		return row.LastUpdated
	}
	return row.CreatedOn
}

// approvalsValue summarizes the current revision's votes grouped by action
// initial, e.g. "v=1 c=-1,2". Red marks an outstanding negative vote,
// green an approval above +1.
func approvalsValue(env *Env, key string, row *review.Change) any {
	patch := row.CurrentPatch()
	if patch == nil {
		env.Logger.Error().Str("change", row.ID).Msg("no current patch")
		return ""
	}

	vals := map[string][]string{}
	neg := false
	plus := false
	for _, approval := range patch.Approvals {
		kind := strings.ToLower(approval.Action)
		if kind != "" {
			kind = kind[:1]
		}
		vals[kind] = append(vals[kind], strconv.Itoa(approval.Value))
		if approval.IsReview() && approval.Value > 1 {
			plus = true
		}
		if approval.Value < 0 {
			neg = true
		}
	}

	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, strings.Join(vals[k], ",")))
	}
	data := strings.Join(parts, " ")

	switch {
	case neg && env.Color:
		return format.Color(data, "red")
	case plus && env.Color:
		return format.Color(data, "green")
	default:
		return data
	}
}

// ChangeColumns returns the column set shared by the change-listing
// reports. A fresh slice is built on every call so reports can extend
// their sets without aliasing each other.
func ChangeColumns() []*Column[*review.Change] {
	return []*Column[*review.Change]{
		{Key: "status", Label: "Status", Value: func(env *Env, key string, row *review.Change) any { return row.Status }},
		{Key: "topic", Label: "Topic", Value: func(env *Env, key string, row *review.Change) any { return row.Topic }, Hidden: true},
		{Key: "url", Label: "URL", Value: func(env *Env, key string, row *review.Change) any { return row.URL }},
		{Key: "owner", Label: "Owner", Value: ownerValue},
		{Key: "project", Label: "Project", Value: func(env *Env, key string, row *review.Change) any { return row.Project }, Hidden: true},
		{Key: "branch", Label: "Branch", Value: func(env *Env, key string, row *review.Change) any { return row.Branch }, Hidden: true},
		{Key: "subject", Label: "Subject", Value: func(env *Env, key string, row *review.Change) any { return row.Subject }, Truncate: 30},
		{Key: "createdOn", Label: "Created", Value: dateValue, Sort: dateSortValue},
		{Key: "lastUpdated", Label: "Updated", Value: dateValue, Sort: dateSortValue},
		{Key: "approvals", Label: "Approvals", Value: approvalsValue},
	}
}

// ChangesOptions configures a change-listing report. Files entries are
// regular expressions; a change is listed when any file of any fetched
// patch matches at least one of them.
type ChangesOptions struct {
	Projects  []string
	Owners    []string
	Status    []string
	Messages  []string
	Branches  []string
	Reviewers []string
	Files     []string
	RawQuery  string
}

// ChangesReport lists changes matching a filter specification.
type ChangesReport struct {
	*TableReport[*review.Change]
	opts  ChangesOptions
	files []*regexp.Regexp
}

// NewChangesReport builds a change-listing report sorted by creation date.
// Invalid file regular expressions fail construction.
func NewChangesReport(env *Env, client Querier, opts ChangesOptions) (*ChangesReport, error) {
	base, err := NewTableReport(env, client, ChangeColumns(), "createdOn", false)
	if err != nil {
		return nil, err
	}
	files := make([]*regexp.Regexp, 0, len(opts.Files))
	for _, expr := range opts.Files {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid file filter %q: %w", expr, err)
		}
		files = append(files, re)
	}
	return &ChangesReport{TableReport: base, opts: opts, files: files}, nil
}

func (r *ChangesReport) matchFiles(change *review.Change) bool {
	if len(r.files) == 0 {
		return true
	}
	for _, re := range r.files {
		for _, patch := range change.Patches {
			for _, file := range patch.Files {
				if re.MatchString(file.Path) {
					return true
				}
			}
		}
	}
	return false
}

// Generate runs the query and assembles the "Changes" table.
func (r *ChangesReport) Generate(ctx context.Context) (Output, error) {
	spec := review.QuerySpec{
		Terms: map[string][]string{
			"project":  r.opts.Projects,
			"owner":    r.opts.Owners,
			"message":  r.opts.Messages,
			"branch":   r.opts.Branches,
			"status":   r.opts.Status,
			"reviewer": r.opts.Reviewers,
		},
		RawQuery:  r.opts.RawQuery,
		Patches:   review.PatchesCurrent,
		Approvals: true,
		Files:     len(r.files) > 0,
	}

	table := r.NewTable("Changes")
	err := r.client.Query(ctx, spec, func(change *review.Change) error {
		if r.matchFiles(change) {
			table.AddRow(change)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("changes query failed: %w", err)
	}
	return table, nil
}
