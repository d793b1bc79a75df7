// Package duck aggregates a log table in an in-memory duckdb for plotting.
package duck

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"logtab/calendar"
	nt "logtab/entity"
)

// Point is the number of events logged in one second.
type Point struct {
	Seconds int64
	Count   int
}

// Count is the number of records having a field value.
type Count struct {
	Value string
	Count int
}

// Summary holds the plot data of a loaded table.
type Summary struct {
	Events     []Point
	Levels     []Count
	EventCodes []Count
}

type Duck struct {
	db     *sql.DB
	logger nt.Logger
	header nt.Record
}

func New(lgr nt.Logger) (dk *Duck, err error) {

	db, err := sql.Open("duckdb", "")
	if err != nil {
		err = errors.Wrapf(err, "failed to open memo duck")
		return
	}

	dk = &Duck{
		db:     db,
		logger: lgr,
	}

	return
}

func (dk *Duck) Close() {
	dk.db.Close()
}

// Load replaces the logs table with the records of tbl.
//
// Each field is stored as varchar in c0, c1, ... alongside the record's
// timestamp in seconds, null when it does not parse.
func (dk *Duck) Load(ctx context.Context, tbl nt.Table) (err error) {

	if len(tbl.Header) == 0 {
		err = errors.Wrapf(nt.ErrMalformedDocument, "cannot load table without header")
		return
	}

	err = createTable(ctx, dk.db, len(tbl.Header))
	if err != nil {
		return
	}

	skipped, err := insertRecords(ctx, dk.db, tbl)
	if err != nil {
		return
	}
	dk.header = tbl.Header

	if skipped > 0 {
		dk.logger.Info(ctx, "records without timestamp", "count", skipped)
	}
	dk.logger.Info(ctx, "loaded duck", "records", len(tbl.Records), "fields", len(tbl.Header))

	_, err = dk.db.ExecContext(ctx, "CREATE INDEX idx_seconds ON logs(seconds)")
	err = errors.Wrapf(err, "failed to create index")
	return
}

// Counts returns the number of records per value of field, ordered by value.
func (dk *Duck) Counts(ctx context.Context, field int) (counts []Count, err error) {

	if field < 0 || field >= len(dk.header) {
		err = errors.Wrapf(nt.ErrInvalidSortKey, "field %d not in loaded header of %d", field, len(dk.header))
		return
	}

	query := fmt.Sprintf("SELECT c%d, COUNT(*) FROM logs GROUP BY c%d ORDER BY c%d", field, field, field)

	rows, err := dk.db.QueryContext(ctx, query)
	if err != nil {
		err = errors.Wrapf(err, "failed to query counts")
		return
	}
	defer rows.Close()

	for rows.Next() {
		var count Count
		err = rows.Scan(&count.Value, &count.Count)
		if err != nil {
			err = errors.Wrapf(err, "failed to scan count")
			return
		}
		counts = append(counts, count)
	}

	err = rows.Err()
	err = errors.Wrapf(err, "error iterating counts")
	return
}

// Series returns events per second from the earliest to the latest
// timestamp, including seconds with no events.
func (dk *Duck) Series(ctx context.Context) (points []Point, err error) {

	rows, err := dk.db.QueryContext(ctx, `
		SELECT seconds, COUNT(*)
		FROM logs
		WHERE seconds IS NOT NULL
		GROUP BY seconds
		ORDER BY seconds
	`)
	if err != nil {
		err = errors.Wrapf(err, "failed to query series")
		return
	}
	defer rows.Close()

	for rows.Next() {
		var point Point
		err = rows.Scan(&point.Seconds, &point.Count)
		if err != nil {
			err = errors.Wrapf(err, "failed to scan point")
			return
		}

		if len(points) > 0 {
			for sec := points[len(points)-1].Seconds + 1; sec < point.Seconds; sec++ {
				points = append(points, Point{Seconds: sec})
			}
		}
		points = append(points, point)
	}

	err = rows.Err()
	err = errors.Wrapf(err, "error iterating series")
	return
}

// Summary gathers events over time along with level and event code distributions.
func (dk *Duck) Summary(ctx context.Context) (summary Summary, err error) {

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() (err error) {
		summary.Events, err = dk.Series(ctx)
		return
	})
	group.Go(func() (err error) {
		summary.Levels, err = dk.Counts(ctx, nt.Level)
		return
	})
	group.Go(func() (err error) {
		summary.EventCodes, err = dk.Counts(ctx, nt.EventId)
		return
	})

	err = group.Wait()
	err = errors.Wrapf(err, "failed to summarize")
	return
}

// unexported

func createTable(ctx context.Context, db *sql.DB, width int) (err error) {

	columns := make([]string, width)
	for i := range columns {
		columns[i] = fmt.Sprintf("c%d VARCHAR", i)
	}

	_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS logs")
	if err != nil {
		err = errors.Wrapf(err, "failed to drop table")
		return
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf("CREATE TABLE logs (%s, seconds BIGINT)", strings.Join(columns, ", ")))
	err = errors.Wrapf(err, "failed to create table")
	return
}

func insertRecords(ctx context.Context, db *sql.DB, tbl nt.Table) (skipped int, err error) {

	width := len(tbl.Header)
	marks := strings.Repeat("?, ", width) + "?"

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		err = errors.Wrapf(err, "failed to begin insert")
		return
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO logs VALUES (%s)", marks))
	if err != nil {
		err = errors.Wrapf(err, "failed to prepare insert")
		return
	}
	defer stmt.Close()

	for i, record := range tbl.Records {
		if len(record) != width {
			err = errors.Wrapf(nt.ErrMalformedDocument, "record %d has %d fields, header has %d", i+1, len(record), width)
			return
		}

		args := make([]any, 0, width+1)
		for _, value := range record {
			args = append(args, value)
		}
		args = append(args, seconds(record))
		if !args[width].(sql.NullInt64).Valid {
			skipped++
		}

		_, err = stmt.ExecContext(ctx, args...)
		if err != nil {
			err = errors.Wrapf(err, "failed to insert record %d", i+1)
			return
		}
	}

	err = tx.Commit()
	err = errors.Wrapf(err, "failed to commit insert")
	return
}

func seconds(record nt.Record) sql.NullInt64 {

	if len(record) <= nt.Time {
		return sql.NullInt64{}
	}

	sec, err := calendar.Seconds(record[nt.Time])
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: sec, Valid: true}
}
