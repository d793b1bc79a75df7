package view

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	nt "logtab/entity"
)

var (
	selectedBg = lipgloss.Color("235")

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	plainStyle  = lipgloss.NewStyle()
)

// levelStyles colors level cells by severity, apache and syslog names alike.
var levelStyles = map[string]lipgloss.Style{
	"emerg":   errorStyle,
	"alert":   errorStyle,
	"crit":    errorStyle,
	"error":   errorStyle,
	"warn":    warnStyle,
	"warning": warnStyle,
	"debug":   mutedStyle,
}

// styler highlights the selected row of a page and colors its level cells.
// Rows are page relative, the header row is never highlighted.
func styler(selected int, fmts []colFmt, page []nt.Record) table.StyleFunc {

	levelCol := -1
	for i, cf := range fmts {
		if cf.field == nt.Level {
			levelCol = i
		}
	}

	return func(row, col int) lipgloss.Style {

		style := plainStyle
		if col == levelCol && row >= 0 && row < len(page) && nt.Level < len(page[row]) {
			level, ok := levelStyles[strings.ToLower(page[row][nt.Level])]
			if ok {
				style = level
			}
		}

		if row >= 0 && row == selected {
			style = style.Background(selectedBg)
		}
		return style
	}
}

// styleTable draws only the rule under the header.
func styleTable(tbl *table.Table) {

	tbl.Border(lipgloss.Border{
		Top:         "─",
		Middle:      "─",
		MiddleLeft:  "─",
		MiddleRight: "─",
	}).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderStyle(borderStyle)
}
