package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/russellb/gerrymander/pkg/models/review"
)

type fakeQuerier struct {
	specs   []review.QuerySpec
	changes []*review.Change
	err     error
}

func (f *fakeQuerier) Query(ctx context.Context, spec review.QuerySpec, fn func(*review.Change) error) error {
	f.specs = append(f.specs, spec)
	if f.err != nil {
		return f.err
	}
	for _, c := range f.changes {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

func vote(action string, value int, user string, granted int64) *review.Approval {
	return &review.Approval{
		Action:    action,
		Value:     value,
		GrantedOn: granted,
		User:      &review.Account{Username: user, Name: user},
	}
}

func TestNewTableReportRejectsUnknownSortKey(t *testing.T) {
	_, err := NewTableReport(NewEnv(), &fakeQuerier{}, ChangeColumns(), "no-such-column", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sort column")
}

func TestSetSortColumnRejectsUnknownKey(t *testing.T) {
	r, err := NewTableReport(NewEnv(), &fakeQuerier{}, ChangeColumns(), "createdOn", false)
	require.NoError(t, err)

	assert.Error(t, r.SetSortColumn("bogus", false))
	assert.NoError(t, r.SetSortColumn("lastUpdated", true))
}

func TestChangeColumnsAreIndependentPerCall(t *testing.T) {
	a := ChangeColumns()
	b := ChangeColumns()
	a[0].Hidden = !a[0].Hidden
	assert.NotEqual(t, a[0].Hidden, b[0].Hidden)
}

func TestChangesReportGenerate(t *testing.T) {
	client := &fakeQuerier{changes: []*review.Change{
		{ID: "I1", Subject: "first", CreatedOn: 100,
			Patches: []*review.Patch{{Number: 1, CreatedOn: 100}}},
		{ID: "I2", Subject: "second", CreatedOn: 200,
			Patches: []*review.Patch{{Number: 1, CreatedOn: 200}}},
	}}

	r, err := NewChangesReport(NewEnv(), client, ChangesOptions{
		Projects: []string{"nova"},
		Status:   []string{review.StatusOpen},
	})
	require.NoError(t, err)

	out, err := r.Generate(context.Background())
	require.NoError(t, err)

	table, ok := out.(*Table[*review.Change])
	require.True(t, ok)
	assert.Equal(t, "Changes", table.title)
	assert.Len(t, table.rows, 2)

	require.Len(t, client.specs, 1)
	spec := client.specs[0]
	assert.Equal(t, []string{"nova"}, spec.Terms["project"])
	assert.Equal(t, []string{"open"}, spec.Terms["status"])
	assert.Equal(t, review.PatchesCurrent, spec.Patches)
	assert.True(t, spec.Approvals)
	assert.False(t, spec.Files, "file details are only fetched when filtering on them")
}

func TestChangesReportFileFilter(t *testing.T) {
	client := &fakeQuerier{changes: []*review.Change{
		{ID: "I1", Patches: []*review.Patch{{Number: 1, Files: []*review.File{
			{Path: "nova/compute/manager.py"},
		}}}},
		{ID: "I2", Patches: []*review.Patch{{Number: 1, Files: []*review.File{
			{Path: "doc/source/index.rst"},
		}}}},
	}}

	r, err := NewChangesReport(NewEnv(), client, ChangesOptions{
		Files: []string{`compute/.*\.py$`},
	})
	require.NoError(t, err)

	out, err := r.Generate(context.Background())
	require.NoError(t, err)

	table := out.(*Table[*review.Change])
	require.Len(t, table.rows, 1)
	assert.Equal(t, "I1", table.rows[0].ID)
	assert.True(t, client.specs[0].Files)
}

func TestChangesReportRejectsInvalidFilePattern(t *testing.T) {
	_, err := NewChangesReport(NewEnv(), &fakeQuerier{}, ChangesOptions{
		Files: []string{"["},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid file filter")
}

func TestOwnerValueFallsBackToUnknown(t *testing.T) {
	env := NewEnv()
	assert.Equal(t, "<unknown>", ownerValue(env, "owner", &review.Change{}))
	assert.Equal(t, "<unknown>", ownerValue(env, "owner", &review.Change{Owner: &review.Account{Name: "No Username"}}))
	assert.Equal(t, "dan", ownerValue(env, "owner", &review.Change{Owner: &review.Account{Username: "dan"}}))
}

func TestApprovalsValueGroupsByActionInitial(t *testing.T) {
	env := NewEnv()
	change := &review.Change{
		ID: "I1",
		Patches: []*review.Patch{{Number: 1, Approvals: []*review.Approval{
			vote(review.ActionReviewed, -1, "alice", 10),
			vote(review.ActionVerified, 1, "jenkins", 11),
			vote(review.ActionReviewed, 2, "bob", 12),
		}}},
	}

	assert.Equal(t, "v=1 c=-1,2", approvalsValue(env, "approvals", change))
}

func TestApprovalsValueWithoutCurrentPatch(t *testing.T) {
	env := NewEnv()
	assert.Equal(t, "", approvalsValue(env, "approvals", &review.Change{ID: "I1"}))
}

func todoFixtures() []*review.Change {
	return []*review.Change{
		// dan reviewed revision 1, revision 2 still unreviewed.
		{ID: "stale-feedback", Owner: &review.Account{Username: "alice"}, Patches: []*review.Patch{
			{Number: 1, Approvals: []*review.Approval{vote(review.ActionReviewed, -1, "dan", 10)}},
			{Number: 2},
		}},
		// dan already voted on the current revision.
		{ID: "fresh-feedback", Owner: &review.Account{Username: "alice"}, Patches: []*review.Patch{
			{Number: 1, Approvals: []*review.Approval{vote(review.ActionReviewed, 1, "dan", 10)}},
		}},
		// Only a bot has looked at this one.
		{ID: "bots-only", Owner: &review.Account{Username: "alice"}, Patches: []*review.Patch{
			{Number: 1, Approvals: []*review.Approval{vote(review.ActionVerified, 1, "jenkins", 10)}},
		}},
		// A human other than the owner reviewed it, dan never did.
		{ID: "peer-reviewed", Owner: &review.Account{Username: "alice"}, Patches: []*review.Patch{
			{Number: 1, Approvals: []*review.Approval{vote(review.ActionReviewed, 1, "bob", 10)}},
		}},
	}
}

func generateTodoIDs(t *testing.T, r *ToDoListReport) []string {
	t.Helper()
	out, err := r.Generate(context.Background())
	require.NoError(t, err)
	table := out.(*Table[*review.Change])
	ids := make([]string, len(table.rows))
	for i, c := range table.rows {
		ids[i] = c.ID
	}
	return ids
}

func TestToDoListMine(t *testing.T) {
	client := &fakeQuerier{changes: todoFixtures()}
	r, err := NewToDoListMine(NewEnv(), client, "dan", nil)
	require.NoError(t, err)

	ids := generateTodoIDs(t, r)
	assert.Equal(t, []string{"stale-feedback", "bots-only", "peer-reviewed"}, ids)

	spec := client.specs[0]
	assert.Equal(t, []string{"dan"}, spec.Terms["reviewer"])
	assert.Equal(t, []string{"open"}, spec.Terms["status"])
	assert.Equal(t, review.PatchesAll, spec.Patches)
}

func TestToDoListOthers(t *testing.T) {
	client := &fakeQuerier{changes: todoFixtures()}
	r, err := NewToDoListOthers(NewEnv(), client, "dan", []string{"jenkins"}, nil)
	require.NoError(t, err)

	// The reviewer negation happens server-side; locally only changes with
	// a real human review survive.
	ids := generateTodoIDs(t, r)
	assert.Equal(t, []string{"stale-feedback", "fresh-feedback", "peer-reviewed"}, ids)
	assert.Equal(t, []string{"!", "dan"}, client.specs[0].Terms["reviewer"])
}

func TestToDoListAnyones(t *testing.T) {
	client := &fakeQuerier{changes: todoFixtures()}
	r, err := NewToDoListAnyones(NewEnv(), client, "dan", []string{"jenkins"}, nil)
	require.NoError(t, err)

	ids := generateTodoIDs(t, r)
	assert.Equal(t, []string{"stale-feedback", "peer-reviewed"}, ids)
	assert.Empty(t, client.specs[0].Terms["reviewer"])
}

func TestToDoListNoones(t *testing.T) {
	client := &fakeQuerier{changes: todoFixtures()}
	r, err := NewToDoListNoones(NewEnv(), client, []string{"jenkins"}, nil)
	require.NoError(t, err)

	ids := generateTodoIDs(t, r)
	assert.Equal(t, []string{"bots-only"}, ids)
}
