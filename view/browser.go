package view

import (
	"context"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"logtab"
	nt "logtab/entity"
)

const (
	headerHeight = 2
	footerHeight = 1
)

// Loader reads a table afresh for each request.
type Loader interface {
	Table(ctx context.Context, req logtab.Request) (tbl nt.Table, err error)
}

// TableMsg carries a freshly read table.
type TableMsg struct {
	Table nt.Table
}

// ErrorMsg carries a failed read.
type ErrorMsg struct {
	Err error
}

// Browser pages through a table, re-reading it when the sort changes.
type Browser struct {
	selected int // Absolute position of selected record
	offset   int // Offset of page shown

	width  int
	height int

	req     logtab.Request
	columns []nt.Column
	table   nt.Table
	fmts    []colFmt
	errStr  string

	ctx    context.Context
	loader Loader
	logger nt.Logger
}

func NewBrowser(ctx context.Context, ldr Loader, req logtab.Request, columns []nt.Column, lgr nt.Logger) Browser {

	return Browser{
		req:     req,
		columns: columns,
		ctx:     ctx,
		loader:  ldr,
		logger:  lgr,
	}
}

func (brs Browser) Init() tea.Cmd {
	return brs.load()
}

func (brs Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case TableMsg:
		brs.table = msg.Table
		brs.fmts = layout(msg.Table.Header, brs.columns)
		brs.errStr = ""
		brs = brs.clamp()

	case ErrorMsg:
		brs.logger.Error(brs.ctx, "failed to read table", msg.Err, "path", brs.req.Path)
		brs.errStr = msg.Err.Error()

	case tea.WindowSizeMsg:
		brs.width = msg.Width
		brs.height = msg.Height
		brs = brs.clamp()

	case tea.KeyPressMsg:
		return brs.press(msg.String())
	}

	return brs, nil
}

func (brs Browser) View() tea.View {
	if brs.width == 0 {
		return tea.NewView("Loading...")
	}

	page := brs.page()

	lgt := table.New()
	styleTable(lgt)
	lgt.Headers(headers(brs.fmts)...)
	lgt.StyleFunc(styler(brs.selected-brs.offset, brs.fmts, page))

	for _, record := range page {
		lgt.Row(row(record, brs.fmts)...)
	}

	footer := RenderFooter(brs.selected+1, len(brs.table.Records), filepath.Base(brs.req.Path),
		brs.req.Sort, brs.table.Filtered, brs.width)
	if brs.errStr != "" {
		footer = errorStyle.Render(brs.errStr)
	}

	canvas := lipgloss.NewCanvas(brs.width, brs.height)
	canvas.Compose(lipgloss.NewLayer("screen", lgt.Render()))
	canvas.Compose(lipgloss.NewLayer("footer", footer).Y(brs.height - footerHeight))

	view := tea.NewView(canvas)
	view.AltScreen = true
	return view
}

// PageSize returns the number of records that fit on screen
func (brs Browser) PageSize() int {
	return brs.height - headerHeight - footerHeight
}

// unexported

func (brs Browser) press(key string) (Browser, tea.Cmd) {

	pageSize := brs.PageSize()
	total := len(brs.table.Records)

	switch key {
	case "ctrl+c", "q":
		return brs, tea.Quit

	case "up", "k":
		brs.selected--

	case "down", "j":
		brs.selected++

	case "pgup", "ctrl+u":
		brs.selected -= pageSize

	case "pgdown", "ctrl+d":
		brs.selected += pageSize

	case "g":
		brs.selected = 0

	case "G":
		brs.selected = total - 1

	case "0", "1", "2", "3", "4", "5":
		brs.req.Sort = brs.req.Sort.Toggle(int(key[0] - '0'))
		return brs, brs.load()
	}

	return brs.clamp(), nil
}

// clamp keeps the selection within the table and on the page shown.
func (brs Browser) clamp() Browser {

	total := len(brs.table.Records)
	if brs.selected >= total {
		brs.selected = total - 1
	}
	if brs.selected < 0 {
		brs.selected = 0
	}

	pageSize := brs.PageSize()
	if pageSize < 1 {
		pageSize = 1
	}

	if brs.selected < brs.offset {
		brs.offset = brs.selected
	} else if brs.selected >= brs.offset+pageSize {
		brs.offset = brs.selected - pageSize + 1
	}
	return brs
}

func (brs Browser) page() []nt.Record {

	end := brs.offset + brs.PageSize()
	if end > len(brs.table.Records) {
		end = len(brs.table.Records)
	}
	if brs.offset >= end {
		return nil
	}
	return brs.table.Records[brs.offset:end]
}

func (brs Browser) load() tea.Cmd {

	req := brs.req
	return func() tea.Msg {

		tbl, err := brs.loader.Table(brs.ctx, req)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return TableMsg{Table: tbl}
	}
}
