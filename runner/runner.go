// Package runner invokes external collaborator programs.
package runner

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Result is the outcome of a completed invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner invokes a program with args and reports how it exited.
// An error is returned only when the program could not be run at all.
type Runner interface {
	Run(ctx context.Context, program string, args ...string) (result Result, err error)
}

// Exec runs programs as child processes.
type Exec struct {
	// Timeout bounds each invocation when positive.
	Timeout time.Duration
}

// Run runs program, blocking until it exits or ctx is done.
func (ex *Exec) Run(ctx context.Context, program string, args ...string) (result Result, err error) {

	if ex.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ex.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case ctx.Err() != nil:
		err = errors.Wrapf(ctx.Err(), "%s did not complete", program)
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		err = nil
	default:
		err = errors.Wrapf(err, "failed to run %s", program)
	}
	return
}

// LastLine returns the last non-empty line of out, trimmed.
func LastLine(out string) string {

	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" {
			return line
		}
	}
	return ""
}
