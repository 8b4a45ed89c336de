package nix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Binary names of the Nix tools used by the pipeline.
const (
	// NixBinary is the unified nix command.
	NixBinary = "nix"
	// LegacyBuildBinary is the standalone builder used without flake support.
	LegacyBuildBinary = "nix-build"
)

// Command is a single invocation of an external tool.
type Command struct {
	// Binary is the tool name or path.
	Binary string
	// Args are passed to the tool verbatim.
	Args []string
	// Env entries (KEY=VALUE) are appended to the inherited environment.
	Env []string
	// CaptureStdout keeps standard output in the result; otherwise it is discarded.
	CaptureStdout bool
}

// String renders the command line for logs.
func (c *Command) String() string {
	if len(c.Args) == 0 {
		return c.Binary
	}

	return c.Binary + " " + strings.Join(c.Args, " ")
}

// Result is the outcome of a command that ran to completion.
type Result struct {
	// Stdout holds standard output when it was captured.
	Stdout []byte
	// ExitCode is nil when the process did not exit normally.
	ExitCode *int
}

// Success reports whether the process exited with code 0.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode != nil && *r.ExitCode == 0
}

// Runner executes external commands. A nonzero exit status is reported in
// the Result, not as an error; errors are *StartError or *WaitError.
type Runner interface {
	Run(ctx context.Context, cmd *Command) (*Result, error)
}

// StartError means the process could not be spawned.
type StartError struct {
	Command string
	Err     error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Command, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// WaitError means the process started but waiting for it or reading its output failed.
type WaitError struct {
	Command string
	Err     error
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("wait %s: %v", e.Command, e.Err)
}

func (e *WaitError) Unwrap() error { return e.Err }

// ExecRunner runs commands as local child processes.
type ExecRunner struct {
	// stderr receives the diagnostic output of every command.
	stderr io.Writer
	// lookup resolves a binary name to a path.
	lookup func(name string) (string, error)
}

// RunnerOption configures an ExecRunner.
type RunnerOption func(*ExecRunner)

// WithStderr redirects the standard error of child processes.
func WithStderr(w io.Writer) RunnerOption {
	return func(r *ExecRunner) {
		if w != nil {
			r.stderr = w
		}
	}
}

// NewExecRunner creates a runner that forwards child stderr to os.Stderr.
func NewExecRunner(opts ...RunnerOption) *ExecRunner {
	r := &ExecRunner{
		stderr: os.Stderr,
		lookup: FindBinary,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run spawns the command and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, c *Command) (*Result, error) {
	binaryPath, err := r.lookup(c.Binary)
	if err != nil {
		return nil, &StartError{Command: c.String(), Err: err}
	}

	cmd := exec.CommandContext(ctx, binaryPath, c.Args...)
	cmd.Stderr = r.stderr

	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout bytes.Buffer
	if c.CaptureStdout {
		cmd.Stdout = &stdout
	}

	if err = cmd.Start(); err != nil {
		return nil, &StartError{Command: c.String(), Err: err}
	}

	err = cmd.Wait()

	var exitErr *exec.ExitError

	switch {
	case err == nil:
		code := 0

		return &Result{Stdout: stdout.Bytes(), ExitCode: &code}, nil
	case errors.As(err, &exitErr):
		return &Result{Stdout: stdout.Bytes(), ExitCode: exitCode(exitErr.ProcessState)}, nil
	default:
		return nil, &WaitError{Command: c.String(), Err: err}
	}
}

// exitCode returns nil for processes terminated by a signal.
func exitCode(state *os.ProcessState) *int {
	if state == nil {
		return nil
	}

	code := state.ExitCode()
	if code < 0 {
		return nil
	}

	return &code
}
