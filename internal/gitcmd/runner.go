package gitcmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

var ErrGitNotAvailable = errors.New("git is not available on this system")

// Result holds the outcome of a finished git invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Ok reports whether the process exited cleanly.
func (r *Result) Ok() bool {
	return r.ExitCode == 0
}

// Runner executes git subcommands against a single working directory.
// Arguments are always passed as a typed slice, never as a shell string.
type Runner struct {
	workDir string
}

func NewRunner(workDir string) (*Runner, error) {
	if !systemGitAvailable() {
		return nil, ErrGitNotAvailable
	}
	return &Runner{workDir: workDir}, nil
}

func (r *Runner) WorkDir() string {
	return r.workDir
}

// Run invokes git synchronously and captures both output streams.
// An error is returned only when the process could not be spawned;
// a non-zero exit is reported through Result.ExitCode.
func (r *Runner) Run(ctx context.Context, args ...string) (*Result, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("git %s: %w", args[0], err)
	}

	res := &Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if !res.Ok() {
		slog.Debug("git exited non-zero", "args", strings.Join(args, " "), "code", res.ExitCode)
	}
	return res, nil
}

// Start invokes git with both output streams exposed as live pipes.
// The caller owns the returned stream and must call Wait.
func (r *Runner) Start(ctx context.Context, args ...string) (Stream, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.workDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("git %s: stdout pipe: %w", args[0], err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("git %s: stderr pipe: %w", args[0], err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("git %s: %w", args[0], err)
	}

	return &processStream{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

// systemGitAvailable checks if the "git" executable can be found in the system's PATH.
func systemGitAvailable() bool {
	_, err := exec.LookPath("git")
	return err == nil
}
