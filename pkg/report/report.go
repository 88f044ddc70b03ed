package report

import (
	"context"
	"fmt"
	"io"

	"github.com/russellb/gerrymander/pkg/models/review"
)

// Querier is the query collaborator. It invokes the callback once per
// matching change, in collaborator-defined order; a callback error aborts
// the run.
type Querier interface {
	Query(ctx context.Context, spec review.QuerySpec, fn func(*review.Change) error) error
}

// Generator produces a fresh output tree. Nothing is cached between calls.
type Generator interface {
	Generate(ctx context.Context) (Output, error)
}

// Display generates a report and renders it to w in the given mode.
func Display(ctx context.Context, g Generator, mode DisplayMode, w io.Writer) error {
	output, err := g.Generate(ctx)
	if err != nil {
		return err
	}
	return Render(output, mode, w)
}

// TableReport binds a query collaborator and an immutable column set, and
// carries the mutable sort/limit configuration shared by the concrete
// tabular reports.
type TableReport[R any] struct {
	env     *Env
	client  Querier
	columns []*Column[R]
	sortKey string
	reverse bool
	limit   int
}

// NewTableReport validates the sort key against the column set; an unknown
// key is a configuration error and fails immediately.
func NewTableReport[R any](env *Env, client Querier, columns []*Column[R], sortKey string, reverse bool) (*TableReport[R], error) {
	if env == nil {
		env = NewEnv()
	}
	r := &TableReport[R]{env: env, client: client, columns: columns}
	if err := r.SetSortColumn(sortKey, reverse); err != nil {
		return nil, err
	}
	return r, nil
}

// Env returns the report's injected environment.
func (r *TableReport[R]) Env() *Env {
	return r.env
}

// Columns returns the report's column set.
func (r *TableReport[R]) Columns() []*Column[R] {
	return r.columns
}

// Column returns the column with the given key, or nil.
func (r *TableReport[R]) Column(key string) *Column[R] {
	return findColumn(r.columns, key)
}

// HasColumn reports whether the column set contains the key.
func (r *TableReport[R]) HasColumn(key string) bool {
	return r.Column(key) != nil
}

// SetSortColumn changes the sort column; unknown keys are rejected.
func (r *TableReport[R]) SetSortColumn(key string, reverse bool) error {
	if findColumn(r.columns, key) == nil {
		return fmt.Errorf("unknown sort column %q", key)
	}
	r.sortKey = key
	r.reverse = reverse
	return nil
}

// SetDataLimit caps the number of rendered table rows; 0 means unlimited.
func (r *TableReport[R]) SetDataLimit(limit int) {
	r.limit = limit
}

// NewTable builds an output table configured with the report's columns,
// sort order and limit.
func (r *TableReport[R]) NewTable(title string) *Table[R] {
	return NewTable(r.env, r.columns, r.sortKey, r.reverse, r.limit, title)
}
