package report

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/russellb/gerrymander/pkg/format"
)

type labelValue struct {
	label string
	value string
}

func joinBlocks(blocks []string) string {
	return strings.Join(blocks, "\n")
}

// renderTextList renders an aligned "label: value" block, one line per
// visible column, with an optional title banner.
func renderTextList(title string, cells []labelValue) string {
	width := 1
	for _, c := range cells {
		if w := runewidth.StringWidth(c.label); w > width {
			width = w
		}
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString(format.Title(title))
		sb.WriteString("\n")
	}
	for _, c := range cells {
		fmt.Fprintf(&sb, "  %*s: %s\n", width, c.label, c.value)
	}
	return sb.String()
}

// renderTextTable renders a column-aligned ASCII grid with one padding
// space per side, per-column alignment, and an optional title banner.
func renderTextTable(title string, labels []string, aligns []Alignment, rows [][]string) string {
	widths := make([]int, len(labels))
	for i, label := range labels {
		widths[i] = runewidth.StringWidth(label)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString(format.Title(title))
		sb.WriteString("\n")
	}
	writeSeparator(&sb, widths)
	writeGridRow(&sb, labels, widths, centered(len(labels)))
	writeSeparator(&sb, widths)
	for _, row := range rows {
		writeGridRow(&sb, row, widths, aligns)
	}
	writeSeparator(&sb, widths)
	return sb.String()
}

func centered(n int) []Alignment {
	aligns := make([]Alignment, n)
	for i := range aligns {
		aligns[i] = AlignCenter
	}
	return aligns
}

func writeSeparator(sb *strings.Builder, widths []int) {
	sb.WriteString("+")
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w+2))
		sb.WriteString("+")
	}
	sb.WriteString("\n")
}

func writeGridRow(sb *strings.Builder, cells []string, widths []int, aligns []Alignment) {
	sb.WriteString("|")
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		sb.WriteString(" ")
		sb.WriteString(alignCell(cell, w, aligns[i]))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

func alignCell(s string, width int, align Alignment) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", pad) + s
	case AlignCenter:
		left := pad / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
	default:
		return s + strings.Repeat(" ", pad)
	}
}
