// Package review defines the domain entities produced by a Gerrit query:
// changes, their patch sets, and the review approvals cast on them. All
// accessors tolerate missing optional data and return zero values rather
// than panicking.
package review

// Approval actions as reported by Gerrit.
const (
	ActionReviewed  = "Code-Review"
	ActionVerified  = "Verified"
	ActionSubmitted = "SUBM"
)

// Account identifies a Gerrit user. Any field may be empty.
type Account struct {
	Name     string
	Username string
	Email    string
}

// Approval is a single reviewer vote on a patch set.
type Approval struct {
	Action    string
	Value     int
	GrantedOn int64 // Unix seconds
	User      *Account
}

// IsReview reports whether the approval is a code-review vote.
func (a *Approval) IsReview() bool {
	return a != nil && a.Action == ActionReviewed
}

// NewerThan reports whether the vote was granted after the cutoff.
func (a *Approval) NewerThan(cutoff int64) bool {
	return a != nil && a.GrantedOn > cutoff
}

// File is a single file touched by a patch set.
type File struct {
	Path       string
	Type       string
	Insertions int
	Deletions  int
}

// Patch is one revision of a change.
type Patch struct {
	Number    int
	Revision  string
	Ref       string
	CreatedOn int64 // Unix seconds
	Approvals []*Approval
	Files     []*File
}

// IsNacked reports whether the revision carries an outstanding negative
// code-review vote.
func (p *Patch) IsNacked() bool {
	if p == nil {
		return false
	}
	for _, a := range p.Approvals {
		if a.IsReview() && a.Value < 0 {
			return true
		}
	}
	return false
}

// Age returns the revision age in seconds at the given instant.
func (p *Patch) Age(now int64) int64 {
	if p == nil || p.CreatedOn == 0 || now < p.CreatedOn {
		return 0
	}
	return now - p.CreatedOn
}

// Change is a code review and its revision history.
type Change struct {
	ID          string
	Number      int
	Status      string
	Topic       string
	URL         string
	Owner       *Account
	Project     string
	Branch      string
	Subject     string
	CreatedOn   int64 // Unix seconds
	LastUpdated int64 // Unix seconds
	Patches     []*Patch
}

// CurrentPatch returns the newest revision, or nil when the change
// carries none.
func (c *Change) CurrentPatch() *Patch {
	if c == nil || len(c.Patches) == 0 {
		return nil
	}
	cur := c.Patches[0]
	for _, p := range c.Patches[1:] {
		if p.Number > cur.Number {
			cur = p
		}
	}
	return cur
}

// FirstPatch returns the oldest revision, or nil.
func (c *Change) FirstPatch() *Patch {
	if c == nil || len(c.Patches) == 0 {
		return nil
	}
	first := c.Patches[0]
	for _, p := range c.Patches[1:] {
		if p.Number < first.Number {
			first = p
		}
	}
	return first
}

// ReviewerNotNackedPatch returns the earliest revision submitted after the
// most recent nacked revision, or nil when the current revision itself is
// nacked. Callers treat nil as a zero wait time.
func (c *Change) ReviewerNotNackedPatch() *Patch {
	if c == nil {
		return nil
	}
	var candidate *Patch
	for _, p := range c.Patches {
		if candidate == nil {
			candidate = p
		}
		if p.IsNacked() {
			candidate = nil
		}
	}
	return candidate
}

// CurrentAge returns the age in seconds of the newest revision.
func (c *Change) CurrentAge(now int64) int64 {
	return c.CurrentPatch().Age(now)
}

// FirstAge returns the age in seconds of the oldest revision.
func (c *Change) FirstAge(now int64) int64 {
	return c.FirstPatch().Age(now)
}

// ReviewerNotNackedAge returns the age in seconds of the revision reviewers
// have been sitting on without a nack, or 0 when there is none.
func (c *Change) ReviewerNotNackedAge(now int64) int64 {
	return c.ReviewerNotNackedPatch().Age(now)
}

// HasCurrentReviewers reports whether any of the given users has cast a
// code-review vote on the current revision.
func (c *Change) HasCurrentReviewers(users []string) bool {
	cur := c.CurrentPatch()
	if cur == nil {
		return false
	}
	for _, a := range cur.Approvals {
		if !a.IsReview() || a.User == nil {
			continue
		}
		for _, u := range users {
			if a.User.Username == u {
				return true
			}
		}
	}
	return false
}

// HasAnyOtherReviewers reports whether any revision has ever received a
// code-review vote from someone other than the owner and the given bot
// accounts.
func (c *Change) HasAnyOtherReviewers(bots []string) bool {
	if c == nil {
		return false
	}
	owner := ""
	if c.Owner != nil {
		owner = c.Owner.Username
	}
	for _, p := range c.Patches {
		for _, a := range p.Approvals {
			if !a.IsReview() || a.User == nil {
				continue
			}
			user := a.User.Username
			if user == "" || user == owner {
				continue
			}
			if isBot(user, bots) {
				continue
			}
			return true
		}
	}
	return false
}

func isBot(user string, bots []string) bool {
	for _, b := range bots {
		if user == b {
			return true
		}
	}
	return false
}
