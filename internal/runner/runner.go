// Package runner executes external processes with a wall-clock budget.
//
// Both output streams are drained concurrently, one goroutine each, so a child
// that fills one pipe while the other sits idle can never stall. When the
// budget runs out the whole process group is killed and the result is marked
// as timed out.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/wb-go/wbf/zlog"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of a single process run.
type Result struct {
	ExitStatus int
	Stdout     []byte
	Stderr     []byte
	TimedOut   bool
	Duration   time.Duration
}

// Success reports a zero exit within the time budget.
func (r *Result) Success() bool {
	return !r.TimedOut && r.ExitStatus == 0
}

// Runner spawns processes with a fixed timeout. A zero timeout is unbounded.
type Runner struct {
	timeout time.Duration
}

// New creates a Runner with the given timeout.
func New(timeout time.Duration) *Runner {
	return &Runner{timeout: timeout}
}

// Timeout returns the configured budget.
func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

// Run starts name with args, waits for it and collects both streams.
//
// The returned error is non-nil only when the process could not be started or
// ctx itself was cancelled. A non-zero exit or an expired budget is reported
// through the Result.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, name, args...)
	configure(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}

	var outBuf, errBuf bytes.Buffer
	var g errgroup.Group
	g.Go(func() error { return drain(&outBuf, stdout) })
	g.Go(func() error { return drain(&errBuf, stderr) })
	drainErr := g.Wait()

	waitErr := cmd.Wait()

	res := &Result{
		Stdout:   outBuf.Bytes(),
		Stderr:   errBuf.Bytes(),
		Duration: time.Since(start),
	}

	if waitErr != nil && ctx.Err() != nil {
		return res, ctx.Err()
	}

	if waitErr != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		res.ExitStatus = -1

		zlog.Logger.Warn().
			Str("command", name).
			Dur("timeout", r.timeout).
			Msg("process killed after timeout")

		return res, nil
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
		res.ExitStatus = 0
	case errors.As(waitErr, &exitErr):
		res.ExitStatus = exitErr.ExitCode()
	default:
		return res, fmt.Errorf("wait %s: %w", name, waitErr)
	}

	if drainErr != nil {
		return res, fmt.Errorf("read output of %s: %w", name, drainErr)
	}

	zlog.Logger.Debug().
		Str("command", name).
		Int("exit_status", res.ExitStatus).
		Dur("elapsed", res.Duration).
		Msg("process finished")

	return res, nil
}

func drain(dst *bytes.Buffer, src io.Reader) error {
	_, err := io.Copy(dst, src)
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}
