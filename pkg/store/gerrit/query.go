// Package gerrit implements the query collaborator: it executes
// "gerrit query" commands against a Gerrit server over SSH, streams the
// JSON result rows, and maps them onto the review domain model.
package gerrit

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/russellb/gerrymander/pkg/models/review"
)

// buildQueryCommand renders a QuerySpec as a gerrit query command line.
// Terms are emitted in sorted field order so the command is deterministic;
// a field whose first value is "!" negates the whole group.
func buildQueryCommand(spec review.QuerySpec, resumeKey string) string {
	args := []string{"gerrit", "query", "--format=JSON"}

	switch spec.Patches {
	case review.PatchesCurrent:
		args = append(args, "--current-patch-set")
	case review.PatchesAll:
		args = append(args, "--patch-sets")
	}
	if spec.Approvals {
		args = append(args, "--all-approvals")
	}
	if spec.Files {
		args = append(args, "--files")
	}

	fields := make([]string, 0, len(spec.Terms))
	for field, values := range spec.Terms {
		if len(values) > 0 {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)

	var terms []string
	for _, field := range fields {
		values := spec.Terms[field]
		negate := false
		if values[0] == "!" {
			negate = true
			values = values[1:]
		}
		if len(values) == 0 {
			continue
		}
		criteria := make([]string, 0, len(values))
		for _, value := range values {
			criteria = append(criteria, fmt.Sprintf("%s:%s", field, value))
		}
		group := "(" + strings.Join(criteria, " OR ") + ")"
		if negate {
			group = "NOT " + group
		}
		terms = append(terms, group)
	}
	if spec.RawQuery != "" {
		terms = append(terms, "("+spec.RawQuery+")")
	}
	if resumeKey != "" {
		terms = append(terms, fmt.Sprintf("resume_sortkey:%s", resumeKey))
	}

	args = append(args, strings.Join(terms, " "))
	return strings.Join(args, " ")
}

// Wire structs for the gerrit query JSON stream. Numeric fields arrive as
// strings on older servers, hence json.Number throughout.

type wireAccount struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type wireApproval struct {
	Type      string       `json:"type"`
	Value     json.Number  `json:"value"`
	GrantedOn int64        `json:"grantedOn"`
	By        *wireAccount `json:"by"`
}

type wireFile struct {
	File       string `json:"file"`
	Type       string `json:"type"`
	Insertions int    `json:"insertions"`
	Deletions  int    `json:"deletions"`
}

type wirePatchSet struct {
	Number    json.Number    `json:"number"`
	Revision  string         `json:"revision"`
	Ref       string         `json:"ref"`
	CreatedOn int64          `json:"createdOn"`
	Approvals []wireApproval `json:"approvals"`
	Files     []wireFile     `json:"files"`
}

type wireChange struct {
	Type            string         `json:"type"`
	ID              string         `json:"id"`
	Number          json.Number    `json:"number"`
	Status          string         `json:"status"`
	Topic           string         `json:"topic"`
	URL             string         `json:"url"`
	Owner           *wireAccount   `json:"owner"`
	Project         string         `json:"project"`
	Branch          string         `json:"branch"`
	Subject         string         `json:"subject"`
	CreatedOn       int64          `json:"createdOn"`
	LastUpdated     int64          `json:"lastUpdated"`
	SortKey         string         `json:"sortKey"`
	CurrentPatchSet *wirePatchSet  `json:"currentPatchSet"`
	PatchSets       []wirePatchSet `json:"patchSets"`
	RowCount        int            `json:"rowCount"`
	Message         string         `json:"message"`
}

func toInt(n json.Number) int {
	v, err := n.Int64()
	if err != nil {
		return 0
	}
	return int(v)
}

func (w *wireAccount) toModel() *review.Account {
	if w == nil {
		return nil
	}
	return &review.Account{Name: w.Name, Username: w.Username, Email: w.Email}
}

func (w *wirePatchSet) toModel() *review.Patch {
	patch := &review.Patch{
		Number:    toInt(w.Number),
		Revision:  w.Revision,
		Ref:       w.Ref,
		CreatedOn: w.CreatedOn,
	}
	for _, a := range w.Approvals {
		patch.Approvals = append(patch.Approvals, &review.Approval{
			Action:    a.Type,
			Value:     toInt(a.Value),
			GrantedOn: a.GrantedOn,
			User:      a.By.toModel(),
		})
	}
	for _, f := range w.Files {
		patch.Files = append(patch.Files, &review.File{
			Path:       f.File,
			Type:       f.Type,
			Insertions: f.Insertions,
			Deletions:  f.Deletions,
		})
	}
	return patch
}

func (w *wireChange) toModel() *review.Change {
	change := &review.Change{
		ID:          w.ID,
		Number:      toInt(w.Number),
		Status:      w.Status,
		Topic:       w.Topic,
		URL:         w.URL,
		Owner:       w.Owner.toModel(),
		Project:     w.Project,
		Branch:      w.Branch,
		Subject:     w.Subject,
		CreatedOn:   w.CreatedOn,
		LastUpdated: w.LastUpdated,
	}
	for i := range w.PatchSets {
		change.Patches = append(change.Patches, w.PatchSets[i].toModel())
	}
	if len(change.Patches) == 0 && w.CurrentPatchSet != nil {
		change.Patches = append(change.Patches, w.CurrentPatchSet.toModel())
	}
	return change
}
