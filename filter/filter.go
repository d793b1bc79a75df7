// Package filter narrows a log document to a date range via an external program.
package filter

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"logtab/calendar"
	nt "logtab/entity"
	"logtab/runner"
)

const processedSuffix = ".processed.csv"

// Config configures a Filter.
type Config struct {
	Program string `yaml:"filter_program"`
}

// Filter invokes the range-filter program as
// program(input_path, output_path, start, end).
type Filter struct {
	program string
	runner  runner.Runner
	logger  nt.Logger
}

// New creates a Filter.
func (cfg *Config) New(rnr runner.Runner, lgr nt.Logger) *Filter {

	return &Filter{
		program: cfg.Program,
		runner:  rnr,
		logger:  lgr,
	}
}

// OutputPath returns the filtered file name co-located with path,
// "logs/123.csv" becomes "logs/123.processed.csv".
func OutputPath(path string) string {

	idx := strings.LastIndex(path, ".")
	if idx < 0 || strings.ContainsRune(path[idx:], os.PathSeparator) {
		return path + processedSuffix
	}
	return path[:idx] + processedSuffix
}

// IsOutput reports whether path names a filtered file.
func IsOutput(path string) bool {
	return strings.HasSuffix(path, processedSuffix)
}

// Run filters the document at path to rng and returns the filtered path.
// No output file is left behind when an error is returned.
func (flt *Filter) Run(ctx context.Context, path string, rng nt.DateRange) (out string, err error) {

	if !calendar.Valid(rng.Start) || !calendar.Valid(rng.End) {
		err = errors.Wrapf(nt.ErrInvalidDateRange, "start %q or end %q is not YYYY-MM-DD HH:MM:SS", rng.Start, rng.End)
		return
	}

	out = OutputPath(path)
	defer func() {
		if err != nil {
			flt.cleanup(ctx, out)
			out = ""
		}
	}()

	flt.logger.Info(ctx, "running filter", "program", flt.program, "input", path, "output", out,
		"start", rng.Start, "end", rng.End)

	result, err := flt.runner.Run(ctx, flt.program, path, out, rng.Start, rng.End)
	if err != nil {
		err = errors.Wrapf(nt.ErrFilterFailed, "%s", err)
		return
	}

	if result.ExitCode != 0 {
		flt.logger.Info(ctx, "filter failed", "exit_code", result.ExitCode, "stdout", result.Stdout, "stderr", result.Stderr)

		msg := runner.LastLine(result.Stderr)
		if msg == "" {
			msg = "Error: Filtering failed."
		}
		err = errors.Wrapf(nt.ErrFilterFailed, "%s", msg)
		return
	}

	lines, err := countLines(out, 2)
	if err != nil {
		return
	}
	if lines <= 1 {
		err = errors.Wrapf(nt.ErrEmptyFilterResult, "filter produced no records in %s", out)
		return
	}

	flt.logger.Info(ctx, "filter succeeded", "output", out)
	return
}

// unexported

func (flt *Filter) cleanup(ctx context.Context, out string) {

	err := os.Remove(out)
	if err != nil && !os.IsNotExist(err) {
		flt.logger.Error(ctx, "failed to remove filter output", err, "output", out)
	}
}

// countLines counts lines in path, stopping once limit is reached
func countLines(path string, limit int) (count int, err error) {

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		err = errors.Wrapf(nt.ErrEmptyFilterResult, "filter did not produce %s", path)
		return
	}
	if err != nil {
		err = errors.Wrapf(nt.ErrIO, "failed to open %s: %s", path, err)
		return
	}
	defer file.Close()

	rdr := bufio.NewReader(file)
	for count < limit {
		var line string
		line, err = rdr.ReadString('\n')
		if line != "" {
			count++
		}
		if err != nil {
			break
		}
	}

	if err != nil && err != io.EOF {
		err = errors.Wrapf(nt.ErrIO, "failed to read %s: %s", path, err)
		return
	}
	err = nil
	return
}
