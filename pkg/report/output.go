package report

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DisplayMode selects an output encoding.
type DisplayMode string

const (
	ModeText DisplayMode = "text"
	ModeXML  DisplayMode = "xml"
	ModeJSON DisplayMode = "json"
)

// ParseDisplayMode validates a mode name from a flag or request parameter.
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch DisplayMode(s) {
	case ModeText, ModeXML, ModeJSON:
		return DisplayMode(s), nil
	}
	return "", fmt.Errorf("unknown display mode %q", s)
}

// Output is a renderable node of a report tree. All three encodings carry
// the same headers, content and titles; only the surface syntax differs.
type Output interface {
	text() string
	xml(parent *treeNode)
	json(doc *[]any)
}

// treeNode is a dynamically named element of the structured document tree.
// Element names come from column keys, so the tree cannot be a static
// struct shape.
type treeNode struct {
	XMLName  xml.Name
	Text     string `xml:",chardata"`
	Children []*treeNode
}

func newNode(name string) *treeNode {
	return &treeNode{XMLName: xml.Name{Local: name}}
}

func (n *treeNode) add(name, text string) *treeNode {
	child := &treeNode{XMLName: xml.Name{Local: name}, Text: text}
	n.Children = append(n.Children, child)
	return child
}

// Render writes the output tree to w in the given mode. An unrecognized
// mode is an error.
func Render(o Output, mode DisplayMode, w io.Writer) error {
	switch mode {
	case ModeText:
		_, err := io.WriteString(w, o.text())
		return err
	case ModeXML:
		root := newNode("report")
		o.xml(root)
		data, err := xml.MarshalIndent(root, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report as xml: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s%s\n", xml.Header, data)
		return err
	case ModeJSON:
		doc := make([]any, 0)
		o.json(&doc)
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report as json: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	default:
		return fmt.Errorf("unknown display mode %q", mode)
	}
}

// Compound is an ordered sequence of sub-reports rendered by concatenation.
type Compound struct {
	reports []Output
}

// NewCompound returns an empty compound report.
func NewCompound() *Compound {
	return &Compound{}
}

// Add appends a sub-report.
func (c *Compound) Add(o Output) {
	c.reports = append(c.reports, o)
}

func (c *Compound) text() string {
	blocks := make([]string, 0, len(c.reports))
	for _, r := range c.reports {
		blocks = append(blocks, r.text())
	}
	return joinBlocks(blocks)
}

func (c *Compound) xml(parent *treeNode) {
	for _, r := range c.reports {
		r.xml(parent)
	}
}

func (c *Compound) json(doc *[]any) {
	for _, r := range c.reports {
		r.json(doc)
	}
}

// List renders one key/label/value triple per visible column for a single
// row.
type List[R any] struct {
	env     *Env
	title   string
	columns []*Column[R]
	row     R
}

// NewList builds a list over the given column set. The title may be empty.
func NewList[R any](env *Env, columns []*Column[R], title string) *List[R] {
	return &List[R]{env: env, columns: columns, title: title}
}

// SetRow sets the single row the list renders.
func (l *List[R]) SetRow(row R) {
	l.row = row
}

func (l *List[R]) xml(parent *treeNode) {
	lst := newNode("list")
	parent.Children = append(parent.Children, lst)
	if l.title != "" {
		lst.add("title", l.title)
	}
	headers := newNode("headers")
	content := newNode("content")
	lst.Children = append(lst.Children, headers, content)

	for _, col := range visibleColumns(l.columns) {
		headers.add(col.Key, col.Label)
	}
	for _, col := range visibleColumns(l.columns) {
		content.add(col.Key, col.CellValue(l.env, l.row))
	}
}

func (l *List[R]) json(doc *[]any) {
	headers := orderedmap.New[string, string]()
	content := orderedmap.New[string, string]()
	for _, col := range visibleColumns(l.columns) {
		headers.Set(col.Key, col.Label)
		content.Set(col.Key, col.CellValue(l.env, l.row))
	}

	node := orderedmap.New[string, any]()
	node.Set("headers", headers)
	node.Set("content", content)
	if l.title != "" {
		node.Set("title", l.title)
	}
	wrapper := orderedmap.New[string, any]()
	wrapper.Set("list", node)
	*doc = append(*doc, wrapper)
}

func (l *List[R]) text() string {
	return renderTextList(l.title, visibleCells(l))
}

func visibleCells[R any](l *List[R]) []labelValue {
	cols := visibleColumns(l.columns)
	cells := make([]labelValue, 0, len(cols))
	for _, col := range cols {
		cells = append(cells, labelValue{col.Label, col.CellValue(l.env, l.row)})
	}
	return cells
}

// Table renders an ordered sequence of rows. Rows are kept in insertion
// order; sorting happens lazily at render time, and Limit truncates the
// sorted sequence.
type Table[R any] struct {
	env     *Env
	title   string
	columns []*Column[R]
	rows    []R

	// SortKey names the column rows are ordered by. A key that resolves
	// to no column skips sorting silently and rows render in insertion
	// order.
	SortKey string
	Reverse bool
	Limit   int // 0 = unlimited
}

// NewTable builds a table over a copy of the given column set, so columns
// added later never alias another report's set.
func NewTable[R any](env *Env, columns []*Column[R], sortKey string, reverse bool, limit int, title string) *Table[R] {
	cols := make([]*Column[R], len(columns))
	copy(cols, columns)
	return &Table[R]{
		env:     env,
		title:   title,
		columns: cols,
		SortKey: sortKey,
		Reverse: reverse,
		Limit:   limit,
	}
}

// AddColumn appends a column to this table's set.
func (t *Table[R]) AddColumn(col *Column[R]) {
	t.columns = append(t.columns, col)
}

// AddRow appends a row in insertion order.
func (t *Table[R]) AddRow(row R) {
	t.rows = append(t.rows, row)
}

// renderRows resolves the sort column, stable-sorts a copy of the rows
// (descending when Reverse), and applies the limit.
func (t *Table[R]) renderRows() []R {
	rows := make([]R, len(t.rows))
	copy(rows, t.rows)

	if col := findColumn(t.columns, t.SortKey); col != nil {
		keys := make([]any, len(rows))
		for i, row := range rows {
			keys[i] = col.SortValue(t.env, row)
		}
		order := make([]int, len(rows))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			if t.Reverse {
				return sortLess(keys[order[j]], keys[order[i]])
			}
			return sortLess(keys[order[i]], keys[order[j]])
		})
		sorted := make([]R, len(rows))
		for i, idx := range order {
			sorted[i] = rows[idx]
		}
		rows = sorted
	}

	if t.Limit > 0 && len(rows) > t.Limit {
		rows = rows[:t.Limit]
	}
	return rows
}

func (t *Table[R]) xml(parent *treeNode) {
	table := newNode("table")
	parent.Children = append(parent.Children, table)
	if t.title != "" {
		table.add("title", t.title)
	}
	headers := newNode("headers")
	content := newNode("content")
	table.Children = append(table.Children, headers, content)

	cols := visibleColumns(t.columns)
	for _, col := range cols {
		headers.add(col.Key, col.Label)
	}
	for _, row := range t.renderRows() {
		xmlrow := newNode("row")
		for _, col := range cols {
			xmlrow.add(col.Key, col.CellValue(t.env, row))
		}
		content.Children = append(content.Children, xmlrow)
	}
}

func (t *Table[R]) json(doc *[]any) {
	cols := visibleColumns(t.columns)

	headers := orderedmap.New[string, string]()
	for _, col := range cols {
		headers.Set(col.Key, col.Label)
	}

	content := make([]any, 0, len(t.rows))
	for _, row := range t.renderRows() {
		data := orderedmap.New[string, string]()
		for _, col := range cols {
			data.Set(col.Key, col.CellValue(t.env, row))
		}
		content = append(content, data)
	}

	node := orderedmap.New[string, any]()
	node.Set("headers", headers)
	node.Set("content", content)
	if t.title != "" {
		node.Set("title", t.title)
	}
	wrapper := orderedmap.New[string, any]()
	wrapper.Set("table", node)
	*doc = append(*doc, wrapper)
}

func (t *Table[R]) text() string {
	cols := visibleColumns(t.columns)
	labels := make([]string, len(cols))
	aligns := make([]Alignment, len(cols))
	for i, col := range cols {
		labels[i] = col.Label
		aligns[i] = col.Align
	}
	var cells [][]string
	for _, row := range t.renderRows() {
		line := make([]string, len(cols))
		for i, col := range cols {
			line[i] = col.CellValue(t.env, row)
		}
		cells = append(cells, line)
	}
	return renderTextTable(t.title, labels, aligns, cells)
}
