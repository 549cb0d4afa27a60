// Package process runs the external audio tools and classifies how they fail.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrTimeout reports that a tool outlived its invocation deadline.
var ErrTimeout = errors.New("process timed out")

// waitDelay bounds how long Wait blocks on inherited pipes after a kill.
const waitDelay = 2 * time.Second

// Runner launches a tool and waits for it to exit.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
	// Output is Run that also returns the tool's stdout.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Observer receives one record per invocation.
type Observer interface {
	RecordToolInvocation(tool, outcome string, duration time.Duration)
}

// ExitError is returned when a tool ran and exited nonzero.
type ExitError struct {
	Tool   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with code %d: %s", e.Tool, e.Code, e.Stderr)
	}
	return fmt.Sprintf("%s exited with code %d", e.Tool, e.Code)
}

// LaunchError is returned when a tool could not be started at all.
type LaunchError struct {
	Tool string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Tool, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExecRunner runs tools with os/exec.
type ExecRunner struct {
	timeout  time.Duration
	observer Observer
}

// NewExecRunner builds a runner. A zero timeout lets tools run until they exit.
func NewExecRunner(timeout time.Duration, observer Observer) *ExecRunner {
	return &ExecRunner{timeout: timeout, observer: observer}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	_, err := r.exec(ctx, false, name, args)
	return err
}

func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return r.exec(ctx, true, name, args)
}

func (r *ExecRunner) exec(ctx context.Context, capture bool, name string, args []string) ([]byte, error) {
	tool := filepath.Base(name)
	ctx, span := otel.Tracer("speech-gateway/process").Start(ctx, "exec "+tool)
	defer span.End()
	span.SetAttributes(
		attribute.String("process.executable.path", name),
		attribute.Int("process.args.count", len(args)),
	)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	if capture {
		cmd.Stdout = &stdout
	}
	cmd.Stderr = &stderr

	start := time.Now()
	err := classify(ctx, tool, cmd.Run(), &stderr)
	r.record(tool, err, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "OK")
	return stdout.Bytes(), nil
}

func classify(ctx context.Context, tool string, err error, stderr *bytes.Buffer) error {
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, tool)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Tool: tool, Code: exitErr.ExitCode(), Stderr: strings.TrimSpace(stderr.String())}
	}
	return &LaunchError{Tool: tool, Err: err}
}

func (r *ExecRunner) record(tool string, err error, elapsed time.Duration) {
	if r.observer == nil {
		return
	}
	r.observer.RecordToolInvocation(tool, Outcome(err), elapsed)
}

// Outcome labels err for metrics.
func Outcome(err error) string {
	var exitErr *ExitError
	var launchErr *LaunchError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.As(err, &exitErr):
		return "exit_error"
	case errors.As(err, &launchErr):
		return "launch_error"
	default:
		return "error"
	}
}

// Available reports whether path resolves to an executable.
func Available(path string) error {
	if _, err := exec.LookPath(path); err != nil {
		return fmt.Errorf("%s not available: %w", filepath.Base(path), err)
	}
	return nil
}
