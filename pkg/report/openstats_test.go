package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/russellb/gerrymander/pkg/models/review"
)

func TestOpenReviewStatsReport(t *testing.T) {
	now := time.Unix(1700000000, 0)
	day := int64(24 * 60 * 60)

	client := &fakeQuerier{changes: []*review.Change{
		{ID: "c-old", Status: "NEW", Subject: "old change",
			Patches: []*review.Patch{{Number: 1, CreatedOn: now.Unix() - 10*day}}},
		{ID: "c-new", Status: "NEW", Subject: "new change",
			Patches: []*review.Patch{{Number: 1, CreatedOn: now.Unix() - 2*day}}},
		{ID: "c-nacked", Status: "NEW", Subject: "nacked change",
			Patches: []*review.Patch{{Number: 1, CreatedOn: now.Unix() - 5*day,
				Approvals: []*review.Approval{vote(review.ActionReviewed, -1, "alice", now.Unix()-day)}}}},
		{ID: "c-merged", Status: "SUBMITTED", Subject: "already merged",
			Patches: []*review.Patch{{Number: 1, CreatedOn: now.Unix() - day}}},
	}}

	r, err := NewOpenReviewStats(NewEnv(), client, OpenReviewStatsOptions{
		Projects: []string{"nova"},
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)

	out, err := r.Generate(context.Background())
	require.NoError(t, err)

	require.Len(t, client.specs, 1)
	spec := client.specs[0]
	assert.Equal(t, []string{"nova"}, spec.Terms["project"])
	assert.Equal(t, []string{"open"}, spec.Terms["status"])
	assert.Equal(t, []string{"master"}, spec.Terms["branch"])
	assert.Equal(t, review.PatchesAll, spec.Patches)

	doc := renderJSONDoc(t, out)
	require.Len(t, doc, 7)

	summary := listContent(t, doc[0]["list"])
	assert.Equal(t, "3", summary["nreviews"])
	assert.Equal(t, "1", summary["waitsubmitter"])
	assert.Equal(t, "2", summary["waitreviewer"])

	// Waiting-on-reviewer ages are 10d and 2d: mean 6d, median the
	// upper-middle element, one change past the 7-day threshold.
	current := listContent(t, doc[1]["list"])
	assert.Equal(t, "6d", current["average"])
	assert.Equal(t, "10d", current["median"])
	assert.Equal(t, "1", current["stale"])

	first := listContent(t, doc[2]["list"])
	assert.Equal(t, "6d", first["average"])
	assert.NotContains(t, first, "stale")

	nonNacked := listContent(t, doc[3]["list"])
	assert.Equal(t, "6d", nonNacked["average"])

	// The longest-waiting tables surface the oldest change first and
	// exclude changes waiting on their submitter.
	waiting := tableRows(t, doc[4]["table"])
	require.Len(t, waiting, 2)
	assert.Equal(t, "old change", waiting[0]["subject"])
	assert.Equal(t, "10d", waiting[0]["age"])
	assert.Equal(t, "new change", waiting[1]["subject"])
	assert.Equal(t, "2d", waiting[1]["age"])
}

func TestOpenReviewStatsNonNackedWaitResetsOnNack(t *testing.T) {
	now := time.Unix(1700000000, 0)
	day := int64(24 * 60 * 60)

	// Revision 1 was nacked; revision 2 arrived 3 days ago and has been
	// waiting on reviewers since.
	client := &fakeQuerier{changes: []*review.Change{
		{ID: "c-respun", Status: "NEW", Subject: "respun change",
			Patches: []*review.Patch{
				{Number: 1, CreatedOn: now.Unix() - 9*day,
					Approvals: []*review.Approval{vote(review.ActionReviewed, -2, "alice", now.Unix()-8*day)}},
				{Number: 2, CreatedOn: now.Unix() - 3*day},
			}},
	}}

	r, err := NewOpenReviewStats(NewEnv(), client, OpenReviewStatsOptions{
		Projects: []string{"nova"},
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)

	out, err := r.Generate(context.Background())
	require.NoError(t, err)

	doc := renderJSONDoc(t, out)

	first := listContent(t, doc[2]["list"])
	assert.Equal(t, "9d", first["median"])

	nonNacked := listContent(t, doc[3]["list"])
	assert.Equal(t, "3d", nonNacked["median"])
}

func TestOpenReviewStatsDefaults(t *testing.T) {
	r, err := NewOpenReviewStats(NewEnv(), &fakeQuerier{}, OpenReviewStatsOptions{})
	require.NoError(t, err)
	assert.Equal(t, "master", r.opts.Branch)
	assert.Equal(t, 7, r.opts.Days)
	assert.NotNil(t, r.opts.Now)
}
