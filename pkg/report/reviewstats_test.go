package report

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/russellb/gerrymander/pkg/models/review"
)

func renderJSONDoc(t *testing.T, out Output) []map[string]map[string]json.RawMessage {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(out, ModeJSON, &buf))
	var doc []map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	return doc
}

func tableRows(t *testing.T, node map[string]json.RawMessage) []map[string]string {
	t.Helper()
	var rows []map[string]string
	require.NoError(t, json.Unmarshal(node["content"], &rows))
	return rows
}

func listContent(t *testing.T, node map[string]json.RawMessage) map[string]string {
	t.Helper()
	var content map[string]string
	require.NoError(t, json.Unmarshal(node["content"], &content))
	return content
}

func TestPatchReviewStatsReport(t *testing.T) {
	now := time.Unix(1700000000, 0)
	recent := now.Unix() - 3600
	stale := now.Unix() - 40*24*60*60

	client := &fakeQuerier{changes: []*review.Change{
		{ID: "I1", Patches: []*review.Patch{{Number: 1, Approvals: []*review.Approval{
			vote(review.ActionReviewed, 2, "alice", recent),
			vote(review.ActionReviewed, -1, "bob", recent),
		}}}},
		{ID: "I2", Patches: []*review.Patch{{Number: 1, Approvals: []*review.Approval{
			vote(review.ActionReviewed, 1, "alice", recent),
			vote(review.ActionReviewed, 2, "carol", stale),
		}}}},
	}}

	r, err := NewPatchReviewStats(NewEnv(), client, PatchReviewStatsOptions{
		Projects: []string{"nova"},
		Teams:    map[string][]string{"nova-core": {"alice"}},
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)

	out, err := r.Generate(context.Background())
	require.NoError(t, err)

	require.Len(t, client.specs, 1)
	spec := client.specs[0]
	assert.Equal(t, []string{"nova"}, spec.Terms["project"])
	assert.Equal(t, review.PatchesAll, spec.Patches)
	assert.True(t, spec.Approvals)

	doc := renderJSONDoc(t, out)
	require.Len(t, doc, 2)

	table := doc[0]["table"]
	require.NotNil(t, table)
	rows := tableRows(t, table)
	require.Len(t, rows, 2, "carol's vote is outside the reporting window")

	// Sorted by review count descending: alice (2) ahead of bob (1).
	assert.Equal(t, "alice", rows[0]["user"])
	assert.Equal(t, "nova-core", rows[0]["team"])
	assert.Equal(t, "2", rows[0]["reviews"])
	assert.Equal(t, "1", rows[0]["flag-p2"])
	assert.Equal(t, "1", rows[0]["flag-p1"])
	assert.Equal(t, "0", rows[0]["flag-m1"])
	assert.Equal(t, "100%", rows[0]["ratio"])

	assert.Equal(t, "bob", rows[1]["user"])
	assert.Equal(t, "", rows[1]["team"])
	assert.Equal(t, "1", rows[1]["reviews"])
	assert.Equal(t, "1", rows[1]["flag-m1"])
	assert.Equal(t, "0%", rows[1]["ratio"])

	list := doc[1]["list"]
	require.NotNil(t, list)
	content := listContent(t, list)
	assert.Equal(t, "3", content["nreviews"])
	assert.Equal(t, "2", content["nreviewers"])
}

func TestPatchReviewStatsSkipsBots(t *testing.T) {
	now := time.Unix(1700000000, 0)
	recent := now.Unix() - 3600

	client := &fakeQuerier{changes: []*review.Change{
		{ID: "I1", Patches: []*review.Patch{{Number: 1, Approvals: []*review.Approval{
			vote(review.ActionReviewed, 1, "alice", recent),
			vote(review.ActionReviewed, 1, "jenkins", recent),
		}}}},
	}}

	r, err := NewPatchReviewStats(NewEnv(), client, PatchReviewStatsOptions{
		Projects: []string{"nova"},
		Bots:     []string{"jenkins"},
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)

	out, err := r.Generate(context.Background())
	require.NoError(t, err)

	doc := renderJSONDoc(t, out)
	rows := tableRows(t, doc[0]["table"])
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0]["user"])
}

func TestPatchReviewStatsFallsBackToFullName(t *testing.T) {
	now := time.Unix(1700000000, 0)
	recent := now.Unix() - 3600

	client := &fakeQuerier{changes: []*review.Change{
		{ID: "I1", Patches: []*review.Patch{{Number: 1, Approvals: []*review.Approval{
			{Action: review.ActionReviewed, Value: 1, GrantedOn: recent,
				User: &review.Account{Name: "Ann Example"}},
			{Action: review.ActionReviewed, Value: 1, GrantedOn: recent,
				User: &review.Account{}},
		}}}},
	}}

	r, err := NewPatchReviewStats(NewEnv(), client, PatchReviewStatsOptions{
		Projects: []string{"nova"},
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)

	out, err := r.Generate(context.Background())
	require.NoError(t, err)

	doc := renderJSONDoc(t, out)
	rows := tableRows(t, doc[0]["table"])
	require.Len(t, rows, 1, "a vote with no identity at all cannot be attributed")
	assert.Equal(t, "Ann Example", rows[0]["user"])
}

func TestPatchReviewStatsQueriesEachProject(t *testing.T) {
	client := &fakeQuerier{}
	r, err := NewPatchReviewStats(NewEnv(), client, PatchReviewStatsOptions{
		Projects: []string{"nova", "neutron"},
	})
	require.NoError(t, err)

	_, err = r.Generate(context.Background())
	require.NoError(t, err)

	require.Len(t, client.specs, 2)
	assert.Equal(t, []string{"nova"}, client.specs[0].Terms["project"])
	assert.Equal(t, []string{"neutron"}, client.specs[1].Terms["project"])
}
