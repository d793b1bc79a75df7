// Package convert turns a raw text log into a csv document via an external program.
package convert

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	nt "logtab/entity"
	"logtab/runner"
)

// Config configures a Converter.
type Config struct {
	Program      string `yaml:"parse_program"`
	ProcessedDir string `yaml:"processed_dir"`
}

// Converter invokes the parse program as program(log_path, csv_path).
type Converter struct {
	program string
	dir     string
	runner  runner.Runner
	logger  nt.Logger
	newId   func() string
}

// New creates a Converter.
func (cfg *Config) New(rnr runner.Runner, lgr nt.Logger) *Converter {

	return &Converter{
		program: cfg.Program,
		dir:     cfg.ProcessedDir,
		runner:  rnr,
		logger:  lgr,
		newId:   uuid.NewString,
	}
}

// Convert converts the log at logPath into "{id}.csv" in the processed dir.
// No csv is left behind when an error is returned.
func (cvt *Converter) Convert(ctx context.Context, logPath string) (id, csvPath string, err error) {

	err = os.MkdirAll(cvt.dir, 0o755)
	if err != nil {
		err = errors.Wrapf(nt.ErrIO, "failed to create %s: %s", cvt.dir, err)
		return
	}

	id = cvt.newId()
	csvPath = filepath.Join(cvt.dir, id+".csv")

	defer func() {
		if err != nil {
			rmErr := os.Remove(csvPath)
			if rmErr != nil && !os.IsNotExist(rmErr) {
				cvt.logger.Error(ctx, "failed to remove csv", rmErr, "csv", csvPath)
			}
			csvPath = ""
		}
	}()

	cvt.logger.Info(ctx, "running parser", "program", cvt.program, "log", logPath, "csv", csvPath)

	result, err := cvt.runner.Run(ctx, cvt.program, logPath, csvPath)
	if err != nil {
		err = errors.Wrapf(nt.ErrConvertFailed, "%s", err)
		return
	}

	if result.ExitCode != 0 {
		cvt.logger.Info(ctx, "parser failed", "exit_code", result.ExitCode, "stdout", result.Stdout, "stderr", result.Stderr)

		msg := runner.LastLine(result.Stderr)
		if msg == "" {
			msg = "Validation failed."
		}
		err = errors.Wrapf(nt.ErrConvertFailed, "%s", msg)
		return
	}

	_, err = os.Stat(csvPath)
	if err != nil {
		err = errors.Wrapf(nt.ErrConvertFailed, "parser did not produce %s", csvPath)
		return
	}

	cvt.logger.Info(ctx, "parser succeeded", "id", id, "csv", csvPath)
	return
}
