package duck

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logtab/calendar"
	nt "logtab/entity"
)

type nopLogger struct{}

func (nopLogger) Info(ctx context.Context, msg string, kv ...any)             {}
func (nopLogger) Error(ctx context.Context, msg string, err error, kv ...any) {}

var table = nt.Table{
	Header: nt.Record{"LineId", "Time", "Level", "Content", "EventId"},
	Records: []nt.Record{
		{"1", "Sun Dec 04 04:47:44 2005", "notice", "workerEnv.init() ok", "E2"},
		{"2", "Sun Dec 04 04:47:44 2005", "error", "mod_jk child in error state 6", "E3"},
		{"3", "Sun Dec 04 04:47:47 2005", "notice", "jk2_init() Found child 6725", "E2"},
		{"4", "not a time", "error", "Directory index forbidden", ""},
	},
}

func newDuck(t *testing.T) (dk *Duck) {
	t.Helper()

	dk, err := New(nopLogger{})
	require.NoError(t, err)
	t.Cleanup(dk.Close)

	err = dk.Load(context.Background(), table)
	require.NoError(t, err)
	return
}

func TestSeries(t *testing.T) {

	dk := newDuck(t)

	points, err := dk.Series(context.Background())
	require.NoError(t, err)

	start, err := calendar.Seconds("Sun Dec 04 04:47:44 2005")
	require.NoError(t, err)

	expected := []Point{
		{Seconds: start, Count: 2},
		{Seconds: start + 1},
		{Seconds: start + 2},
		{Seconds: start + 3, Count: 1},
	}
	if diff := cmp.Diff(expected, points); diff != "" {
		t.Errorf("unexpected series (-want +got):\n%s", diff)
	}
	assert.Equal(t, "2005-12-04 04:47:47", calendar.Timestamp(points[3].Seconds))
}

func TestCounts(t *testing.T) {

	dk := newDuck(t)

	levels, err := dk.Counts(context.Background(), nt.Level)
	require.NoError(t, err)
	assert.Equal(t, []Count{{"error", 2}, {"notice", 2}}, levels)

	codes, err := dk.Counts(context.Background(), nt.EventId)
	require.NoError(t, err)
	assert.Equal(t, []Count{{"", 1}, {"E2", 2}, {"E3", 1}}, codes)

	_, err = dk.Counts(context.Background(), nt.Template)
	assert.True(t, errors.Is(err, nt.ErrInvalidSortKey))
}

func TestSummary(t *testing.T) {

	dk := newDuck(t)

	summary, err := dk.Summary(context.Background())
	require.NoError(t, err)

	assert.Len(t, summary.Events, 4)
	assert.Len(t, summary.Levels, 2)
	assert.Len(t, summary.EventCodes, 3)
}

func TestReload(t *testing.T) {

	dk := newDuck(t)

	err := dk.Load(context.Background(), nt.Table{
		Header:  nt.Record{"LineId", "Time", "Level"},
		Records: []nt.Record{{"1", "Mon Dec 05 03:15:40 2005", "warn"}},
	})
	require.NoError(t, err)

	levels, err := dk.Counts(context.Background(), nt.Level)
	require.NoError(t, err)
	assert.Equal(t, []Count{{"warn", 1}}, levels)

	_, err = dk.Counts(context.Background(), nt.EventId)
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {

	dk, err := New(nopLogger{})
	require.NoError(t, err)
	defer dk.Close()

	err = dk.Load(context.Background(), nt.Table{})
	assert.True(t, errors.Is(err, nt.ErrMalformedDocument))

	err = dk.Load(context.Background(), nt.Table{
		Header:  nt.Record{"a", "b"},
		Records: []nt.Record{{"1"}},
	})
	assert.True(t, errors.Is(err, nt.ErrMalformedDocument))
}
