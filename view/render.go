// Package view renders log tables for the terminal.
package view

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	nt "logtab/entity"
)

const defaultWidth = 24

// colFmt places a document field in a display column.
type colFmt struct {
	field int
	width int
	name  string
}

// Render renders the whole table as text, columns as configured.
func Render(tbl nt.Table, columns []nt.Column) string {

	fmts := layout(tbl.Header, columns)

	lgt := table.New()
	styleTable(lgt)
	lgt.Headers(headers(fmts)...)
	lgt.StyleFunc(styler(-1, fmts, tbl.Records))

	for _, record := range tbl.Records {
		lgt.Row(row(record, fmts)...)
	}

	return lgt.Render()
}

// RenderFooter renders a footer with metadata about the table.
func RenderFooter(current, total int, filename string, spec nt.SortSpec, filtered bool, width int) string {

	left := fmt.Sprintf("%d/%d", current, total)

	parts := []string{filename}
	if len(spec) > 0 {
		parts = append(parts, "sort "+spec.String())
	}
	if filtered {
		parts = append(parts, "filtered")
	}
	right := strings.Join(parts, "  ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return footerStyle.Render(left + strings.Repeat(" ", padding) + right)
}

// unexported

// layout resolves configured columns against a header by field name.
// With nothing configured, every field is shown at the default width.
func layout(header nt.Record, columns []nt.Column) (fmts []colFmt) {

	if len(columns) == 0 {
		for i, name := range header {
			fmts = append(fmts, colFmt{field: i, width: defaultWidth, name: name})
		}
		return
	}

	idxByName := map[string]int{}
	for i, name := range header {
		idxByName[name] = i
	}

	for _, col := range columns {
		idx, ok := idxByName[col.Field]
		if !ok || col.Hidden {
			continue
		}

		width := col.Width
		if width < 1 {
			width = defaultWidth
		}
		fmts = append(fmts, colFmt{field: idx, width: width, name: col.Field})
	}
	return
}

func headers(fmts []colFmt) []string {

	headers := make([]string, len(fmts))
	for i, cf := range fmts {
		headers[i] = fmt.Sprintf("%-*s", cf.width+1, cf.name)
	}
	return headers
}

func row(record nt.Record, fmts []colFmt) []string {

	row := make([]string, len(fmts))
	for i, cf := range fmts {
		if cf.field < len(record) {
			row[i] = truncate(record[cf.field], cf.width)
		}
	}
	return row
}

func truncate(in string, width int) string {

	runes := []rune(in)
	if len(runes) <= width {
		return in
	}

	truncated := string(runes[:width-1])
	ellipsis := mutedStyle.Render("…")
	return truncated + ellipsis
}
