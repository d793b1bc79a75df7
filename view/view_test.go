package view

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logtab"
	nt "logtab/entity"
)

type nopLogger struct{}

func (nopLogger) Info(ctx context.Context, msg string, kv ...any)             {}
func (nopLogger) Error(ctx context.Context, msg string, err error, kv ...any) {}

type fakeLoader struct {
	tbl  nt.Table
	err  error
	reqs []logtab.Request
}

func (fl *fakeLoader) Table(ctx context.Context, req logtab.Request) (tbl nt.Table, err error) {
	fl.reqs = append(fl.reqs, req)
	return fl.tbl, fl.err
}

func records(count int) (tbl nt.Table) {

	tbl.Header = nt.Record{"LineId", "Time", "Level", "Content", "EventId"}
	for i := 0; i < count; i++ {
		tbl.Records = append(tbl.Records, nt.Record{
			string(rune('a' + i%26)), "Sun Dec 04 04:47:44 2005", "notice", "content", "E1",
		})
	}
	return
}

func TestTruncate(t *testing.T) {

	assert.Equal(t, "short", truncate("short", 5))
	assert.True(t, strings.HasPrefix(truncate("longer", 5), "long"))
	assert.True(t, strings.HasPrefix(truncate("ééééé é", 3), "éé"))
}

func TestLayout(t *testing.T) {

	header := nt.Record{"LineId", "Time", "Level", "Content"}

	fmts := layout(header, nil)
	require.Len(t, fmts, 4)
	assert.Equal(t, colFmt{field: 3, width: defaultWidth, name: "Content"}, fmts[3])

	fmts = layout(header, []nt.Column{
		{Field: "Content", Width: 40},
		{Field: "Level", Hidden: true},
		{Field: "Missing", Width: 5},
		{Field: "LineId"},
	})
	assert.Equal(t, []colFmt{
		{field: 3, width: 40, name: "Content"},
		{field: 0, width: defaultWidth, name: "LineId"},
	}, fmts)
}

func TestRender(t *testing.T) {

	tbl := nt.Table{
		Header: nt.Record{"LineId", "Level", "Content"},
		Records: []nt.Record{
			{"1", "notice", "workerEnv.init() ok"},
			{"2", "error", "mod_jk child workerEnv in error state 6"},
		},
	}

	out := Render(tbl, []nt.Column{{Field: "LineId", Width: 6}, {Field: "Content", Width: 10}})

	assert.Contains(t, out, "LineId")
	assert.Contains(t, out, "Content")
	assert.NotContains(t, out, "Level")
	assert.Contains(t, out, "workerEnv")
	assert.NotContains(t, out, "in error state")
}

func TestRenderFooter(t *testing.T) {

	out := RenderFooter(3, 10, "abc.csv", nt.SortSpec{{Field: 2, Desc: true}}, true, 60)

	assert.Contains(t, out, "3/10")
	assert.Contains(t, out, "abc.csv")
	assert.Contains(t, out, "sort -2")
	assert.Contains(t, out, "filtered")

	out = RenderFooter(1, 1, "abc.csv", nil, false, 60)
	assert.NotContains(t, out, "sort")
	assert.NotContains(t, out, "filtered")
}

func newBrowser(t *testing.T, fl *fakeLoader) Browser {
	t.Helper()

	brs := NewBrowser(context.Background(), fl, logtab.Request{Path: "data/abc.csv"}, nil, nopLogger{})

	msg := brs.Init()()
	model, _ := brs.Update(msg)
	model, _ = model.Update(tea.WindowSizeMsg{Width: 80, Height: 13})
	return model.(Browser)
}

func TestBrowserNavigate(t *testing.T) {

	brs := newBrowser(t, &fakeLoader{tbl: records(25)})
	require.Equal(t, 10, brs.PageSize())

	brs, _ = brs.press("k")
	assert.Equal(t, 0, brs.selected)

	brs, _ = brs.press("j")
	brs, _ = brs.press("j")
	assert.Equal(t, 2, brs.selected)
	assert.Equal(t, 0, brs.offset)

	brs, _ = brs.press("pgdown")
	assert.Equal(t, 12, brs.selected)
	assert.Equal(t, 3, brs.offset)
	assert.Len(t, brs.page(), 10)

	brs, _ = brs.press("G")
	assert.Equal(t, 24, brs.selected)
	assert.Equal(t, 15, brs.offset)

	brs, _ = brs.press("pgdown")
	assert.Equal(t, 24, brs.selected)

	brs, _ = brs.press("pgup")
	assert.Equal(t, 14, brs.selected)
	assert.Equal(t, 14, brs.offset)

	brs, _ = brs.press("g")
	assert.Equal(t, 0, brs.selected)
	assert.Equal(t, 0, brs.offset)
}

func TestBrowserSort(t *testing.T) {

	fl := &fakeLoader{tbl: records(3)}
	brs := newBrowser(t, fl)

	brs, cmd := brs.press("2")
	require.NotNil(t, cmd)
	_, ok := cmd().(TableMsg)
	assert.True(t, ok)

	brs, cmd = brs.press("2")
	cmd()
	brs, cmd = brs.press("0")
	cmd()

	require.Len(t, fl.reqs, 4)
	assert.Equal(t, nt.SortSpec{{Field: 2}}, fl.reqs[1].Sort)
	assert.Equal(t, nt.SortSpec{{Field: 2, Desc: true}}, fl.reqs[2].Sort)
	assert.Equal(t, nt.SortSpec{{Field: 0}, {Field: 2, Desc: true}}, fl.reqs[3].Sort)
	assert.Equal(t, "+0,-2", brs.req.Sort.String())
}

func TestBrowserError(t *testing.T) {

	fl := &fakeLoader{tbl: records(3)}
	brs := newBrowser(t, fl)

	fl.err = errors.Wrap(nt.ErrFilterFailed, "Error: Filtering failed.")
	_, cmd := brs.press("1")

	model, _ := brs.Update(cmd())
	brs = model.(Browser)
	assert.Contains(t, brs.errStr, "Filtering failed")
	assert.Len(t, brs.table.Records, 3)
}

func TestBrowserQuit(t *testing.T) {

	brs := newBrowser(t, &fakeLoader{})

	_, cmd := brs.press("q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestBrowserView(t *testing.T) {

	brs := NewBrowser(context.Background(), &fakeLoader{}, logtab.Request{}, nil, nopLogger{})
	assert.NotPanics(t, func() { brs.View() })

	brs = newBrowser(t, &fakeLoader{tbl: records(3)})
	assert.NotPanics(t, func() { brs.View() })
}

func TestStyler(t *testing.T) {

	header := nt.Record{"LineId", "Time", "Level", "Content"}
	fmts := layout(header, []nt.Column{{Field: "Level", Width: 8}, {Field: "Content", Width: 20}})
	page := []nt.Record{
		{"1", "Sun Dec 04 04:47:44 2005", "error", "mod_jk child in error state 6"},
		{"2", "Sun Dec 04 04:47:45 2005", "notice", "workerEnv.init() ok"},
		{"3", "Sun Dec 04 04:47:46 2005", "WARN", "workerEnv in error state 7"},
	}

	style := styler(1, fmts, page)

	assert.Equal(t, errorStyle.GetForeground(), style(0, 0).GetForeground())
	assert.Equal(t, plainStyle.GetForeground(), style(0, 1).GetForeground())
	assert.Equal(t, warnStyle.GetForeground(), style(2, 0).GetForeground())

	assert.Equal(t, selectedBg, style(1, 0).GetBackground())
	assert.Equal(t, selectedBg, style(1, 1).GetBackground())
	assert.NotEqual(t, selectedBg, style(0, 1).GetBackground())
	assert.NotEqual(t, selectedBg, style(-1, 0).GetBackground())
}
