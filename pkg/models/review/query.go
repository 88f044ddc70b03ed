package review

// PatchLevel selects how much revision history a query fetches.
type PatchLevel int

const (
	PatchesNone PatchLevel = iota
	PatchesCurrent
	PatchesAll
)

// Review states usable as "status" query terms.
const (
	StatusOpen      = "open"
	StatusMerged    = "merged"
	StatusAbandoned = "abandoned"
)

// QuerySpec describes a review query for the query collaborator. Terms maps
// a filter field (project, owner, status, branch, reviewer, message) to the
// set of values it may match; RawQuery is appended verbatim as an extra
// search term.
type QuerySpec struct {
	Terms     map[string][]string
	RawQuery  string
	Patches   PatchLevel
	Approvals bool
	Files     bool
}
