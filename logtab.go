// Package logtab reads converted log documents for display and download,
// filtering, validating and sorting them on every read.
package logtab

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"logtab/csvdoc"
	nt "logtab/entity"
	"logtab/filter"
	"logtab/runner"
	"logtab/sorter"
)

// Filterer narrows the document at path to a date range, returning the filtered path.
type Filterer interface {
	Run(ctx context.Context, path string, rng nt.DateRange) (out string, err error)
}

// Request specifies a read of a document.
type Request struct {
	Path  string
	Sort  nt.SortSpec   // may be empty
	Range *nt.DateRange // nil for no filtering
}

// Config configures a Pipeline.
type Config struct {
	// Filter is used when no Filterer is passed to New.
	Filter  filter.Config `yaml:",inline"`
	Timeout time.Duration `yaml:"collaborator_timeout"`
}

// Pipeline composes filter, parse, validate and sort.
// Nothing is cached between calls, each read filters afresh.
type Pipeline struct {
	filter Filterer
	logger nt.Logger
}

// New creates a Pipeline filtering with flt, or when flt is nil with a
// Filter running the configured program, if any.
func (cfg *Config) New(flt Filterer, lgr nt.Logger) *Pipeline {

	if flt == nil && cfg.Filter.Program != "" {
		flt = cfg.Filter.New(&runner.Exec{Timeout: cfg.Timeout}, lgr)
	}

	return &Pipeline{
		filter: flt,
		logger: lgr,
	}
}

// Table returns the requested records for display.
func (pl *Pipeline) Table(ctx context.Context, req Request) (tbl nt.Table, err error) {

	tbl, _, err = pl.getData(ctx, req, false)
	return
}

// Download returns the path of a file holding the requested records.
//
// When sorting is requested the sorted records are written over the
// (possibly filtered) file, otherwise the file is passed through untouched.
func (pl *Pipeline) Download(ctx context.Context, req Request) (path string, err error) {

	_, path, err = pl.getData(ctx, req, true)
	return
}

// Timestamps returns the earliest and latest raw timestamps of a document.
func (pl *Pipeline) Timestamps(ctx context.Context, path string) (start, end string, err error) {

	tbl, err := pl.Table(ctx, Request{
		Path: path,
		Sort: nt.SortSpec{{Field: nt.Time}},
	})
	if err != nil {
		err = errors.Wrapf(err, "failed to read timestamps of %s", path)
		return
	}

	if len(tbl.Records) == 0 || len(tbl.Header) <= nt.Time {
		err = errors.Wrapf(nt.ErrMalformedDocument, "no timestamps in %s", path)
		return
	}

	start = tbl.Records[0][nt.Time]
	end = tbl.Records[len(tbl.Records)-1][nt.Time]
	return
}

// unexported

func (pl *Pipeline) getData(ctx context.Context, req Request, forDownload bool) (tbl nt.Table, path string, err error) {

	path = req.Path

	if req.Range != nil {
		if pl.filter == nil {
			err = errors.Wrapf(nt.ErrFilterFailed, "no filter configured")
			return
		}

		path, err = pl.filter.Run(ctx, path, *req.Range)
		if err != nil {
			err = errors.Wrapf(err, "failed to filter %s", req.Path)
			return
		}
	}

	if forDownload && len(req.Sort) == 0 {
		return
	}

	doc, err := csvdoc.ReadFile(path)
	if err != nil {
		return
	}

	err = csvdoc.Validate(doc)
	if err != nil {
		err = errors.Wrapf(err, "failed to validate %s", path)
		return
	}

	for _, key := range req.Sort {
		if key.Field >= len(doc.Header) {
			err = errors.Wrapf(nt.ErrInvalidSortKey, "field %d is not in header of %d fields in %s",
				key.Field, len(doc.Header), path)
			return
		}
	}

	doc.Records, err = sorter.Sort(doc.Records, req.Sort)
	if err != nil {
		err = errors.Wrapf(err, "failed to sort %s", path)
		return
	}

	pl.logger.Info(ctx, "read document", "path", path, "records", len(doc.Records),
		"sort", req.Sort.String(), "filtered", req.Range != nil)

	if !forDownload {
		tbl = nt.Table{
			Header:   doc.Header,
			Records:  doc.Records,
			Filtered: req.Range != nil,
		}
		return
	}

	err = csvdoc.WriteFile(path, doc)
	err = errors.Wrapf(err, "failed to write sorted records")
	return
}
