// Package report implements the reporting engine: formattable column
// projections over domain rows, a renderable output tree (lists, tables and
// compounds of both), three output encodings (text, XML, JSON), and the
// concrete review reports built on top of them.
package report

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Alignment controls column text alignment in the text renderer.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// Env carries the cross-cutting dependencies available to column
// callbacks: the logger and the colour toggle.
type Env struct {
	Logger zerolog.Logger
	Color  bool
}

// NewEnv returns an Env with a no-op logger and colour disabled.
func NewEnv() *Env {
	return &Env{Logger: zerolog.Nop()}
}

// ValueFunc extracts a raw value from a row. The column key is passed in so
// one function can serve several columns.
type ValueFunc[R any] func(env *Env, key string, row R) any

// Column is a named, formattable, sortable projection of a domain row.
// Keys must be unique within a column set.
type Column[R any] struct {
	Key      string
	Label    string
	Value    ValueFunc[R]
	Sort     ValueFunc[R] // optional; defaults to Value
	Format   string       // optional fmt verb applied to the raw value
	Truncate int          // max cell length in runes, 0 = unlimited
	Align    Alignment
	Hidden   bool // hidden columns never appear in any rendering
}

// CellValue formats the row's value for display. Nil values render as the
// empty string; values longer than Truncate runes are cut and suffixed
// with "...".
func (c *Column[R]) CellValue(env *Env, row R) string {
	raw := c.extract(env, c.Value, row)

	var val string
	switch {
	case raw == nil:
		val = ""
	case c.Format != "":
		val = fmt.Sprintf(c.Format, raw)
	default:
		val = fmt.Sprint(raw)
	}

	if c.Truncate > 0 {
		if runes := []rune(val); len(runes) > c.Truncate {
			val = string(runes[:c.Truncate]) + "..."
		}
	}
	return val
}

// SortValue returns the unformatted value used for row ordering, so that
// numeric and date columns sort numerically rather than on rendered text.
func (c *Column[R]) SortValue(env *Env, row R) any {
	if c.Sort != nil {
		return c.extract(env, c.Sort, row)
	}
	return c.extract(env, c.Value, row)
}

// extract shields rendering from callbacks that trip over rows with
// missing nested data: a panic is logged and degrades to an empty cell.
func (c *Column[R]) extract(env *Env, fn ValueFunc[R], row R) (val any) {
	defer func() {
		if r := recover(); r != nil {
			env.Logger.Error().
				Str("column", c.Key).
				Interface("cause", r).
				Msg("column extraction failed")
			val = nil
		}
	}()
	return fn(env, c.Key, row)
}

func findColumn[R any](columns []*Column[R], key string) *Column[R] {
	for _, col := range columns {
		if col.Key == key {
			return col
		}
	}
	return nil
}

func visibleColumns[R any](columns []*Column[R]) []*Column[R] {
	out := make([]*Column[R], 0, len(columns))
	for _, col := range columns {
		if !col.Hidden {
			out = append(out, col)
		}
	}
	return out
}
